package handlers

import (
	"net/http"

	"solardryer/internal/telemetry"
)

// NewLiveHandler returns the GET /live handler. Missing metrics render the
// default display value instead of blocking the dashboard.
func NewLiveHandler(latest *telemetry.Latest) http.HandlerFunc {
	type response struct {
		DryerTempC     float64 `json:"dryer_temp_c"`
		CollectorTempC float64 `json:"collector_temp_c"`
		HumidityPct    float64 `json:"humidity_pct"`
		Loaded         bool    `json:"loaded"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		dryer, collector, humidity, loaded := latest.Display()
		writeJSON(w, http.StatusOK, response{
			DryerTempC:     dryer,
			CollectorTempC: collector,
			HumidityPct:    humidity,
			Loaded:         loaded,
		})
	}
}
