package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"

	"solardryer/internal/models"
)

// DefaultReading is shown for a metric when no live data is available.
const DefaultReading float64 = 20

// rawReading is the payload shape published by the dryer firmware.
type rawReading struct {
	Hum   *float64 `json:"Hum"`
	Temp1 *float64 `json:"Temp1"`
	Temp2 *float64 `json:"Temp2"`
}

// Normalize translates a raw device payload into the canonical Telemetry
// shape. Temp1 is the dryer chamber probe, Temp2 the collector probe.
func Normalize(data []byte) (models.Telemetry, error) {
	var raw rawReading
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Telemetry{}, fmt.Errorf("telemetry: decode payload: %w", err)
	}
	return models.Telemetry{
		DryerTempC:     raw.Temp1,
		CollectorTempC: raw.Temp2,
		HumidityPct:    raw.Hum,
	}, nil
}

// Latest holds the most recent normalized reading. Loaded is reported true
// once a first value arrived, or once the subscription gave up waiting and
// degraded to the "no data" state.
type Latest struct {
	mu     sync.RWMutex
	value  models.Telemetry
	loaded bool
}

// NewLatest returns an empty holder.
func NewLatest() *Latest {
	return &Latest{}
}

// Set stores a reading and marks the holder loaded.
func (l *Latest) Set(t models.Telemetry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = t
	l.loaded = true
}

// MarkLoaded flips the loaded flag without storing a value.
func (l *Latest) MarkLoaded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = true
}

// Get returns the current reading and whether any data has been seen.
func (l *Latest) Get() (models.Telemetry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.loaded
}

// Display returns the three metrics with DefaultReading substituted for any
// missing field, plus the loaded flag.
func (l *Latest) Display() (dryer, collector, humidity float64, loaded bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	dryer, collector, humidity = DefaultReading, DefaultReading, DefaultReading
	if l.value.DryerTempC != nil {
		dryer = *l.value.DryerTempC
	}
	if l.value.CollectorTempC != nil {
		collector = *l.value.CollectorTempC
	}
	if l.value.HumidityPct != nil {
		humidity = *l.value.HumidityPct
	}
	return dryer, collector, humidity, l.loaded
}
