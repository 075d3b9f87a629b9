package telemetry

import (
	"testing"

	"solardryer/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	reading, err := Normalize([]byte(`{"Hum": 40.5, "Temp1": 25, "Temp2": 30.2}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if *reading.DryerTempC != 25 || *reading.CollectorTempC != 30.2 || *reading.HumidityPct != 40.5 {
		t.Fatalf("unexpected reading %+v", reading)
	}
	if !reading.Complete() {
		t.Fatalf("expected complete reading")
	}
}

func TestNormalizePartialPayload(t *testing.T) {
	reading, err := Normalize([]byte(`{"Temp1": 25}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if reading.CollectorTempC != nil || reading.HumidityPct != nil {
		t.Fatalf("expected missing fields to stay nil, got %+v", reading)
	}
	if reading.Complete() {
		t.Fatalf("partial reading must not be complete")
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	if _, err := Normalize([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := Normalize([]byte(`{"Temp1": "hot"}`)); err == nil {
		t.Fatalf("expected type error")
	}
}

func TestLatestDisplayDefaults(t *testing.T) {
	l := NewLatest()

	dryer, collector, humidity, loaded := l.Display()
	if dryer != DefaultReading || collector != DefaultReading || humidity != DefaultReading {
		t.Fatalf("expected placeholder readings, got %v %v %v", dryer, collector, humidity)
	}
	if loaded {
		t.Fatalf("holder must start unloaded")
	}

	l.Set(models.Telemetry{DryerTempC: ptr(25), HumidityPct: ptr(40)})
	dryer, collector, humidity, loaded = l.Display()
	if dryer != 25 || humidity != 40 {
		t.Fatalf("expected live values, got %v %v", dryer, humidity)
	}
	if collector != DefaultReading {
		t.Fatalf("missing metric should keep the placeholder, got %v", collector)
	}
	if !loaded {
		t.Fatalf("expected loaded after Set")
	}
}

func TestLatestMarkLoaded(t *testing.T) {
	l := NewLatest()
	l.MarkLoaded()

	reading, loaded := l.Get()
	if !loaded {
		t.Fatalf("expected loaded flag set")
	}
	if reading.Complete() {
		t.Fatalf("MarkLoaded must not fabricate a reading")
	}
}
