package models

// Telemetry is the normalized live reading. The device firmware publishes
// its own field names; adapters at the boundary translate into this shape so
// nothing downstream sees backend-specific naming. A nil field was absent
// from the upstream payload.
type Telemetry struct {
	DryerTempC     *float64 `json:"dryer_temp_c,omitempty"`
	CollectorTempC *float64 `json:"collector_temp_c,omitempty"`
	HumidityPct    *float64 `json:"humidity_pct,omitempty"`
}

// Complete reports whether all three readings are present.
func (t Telemetry) Complete() bool {
	return t.DryerTempC != nil && t.CollectorTempC != nil && t.HumidityPct != nil
}

// Device command actions.
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// DeviceCommand is the notification written for the physical device when a
// session starts or stops. Delivery is best effort.
type DeviceCommand struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
