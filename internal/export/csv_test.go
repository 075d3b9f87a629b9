package export

import (
	"strings"
	"testing"
	"time"

	"solardryer/internal/models"
)

func ptr(v float64) *float64 { return &v }

func msPtr(v int64) *int64 { return &v }

func TestWriteSessionCSV(t *testing.T) {
	samples := []models.Sample{
		{
			SessionID:      "s1",
			DryerTempC:     ptr(25),
			CollectorTempC: ptr(30),
			HumidityPct:    ptr(40),
			TimestampMs:    msPtr(1000),
		},
		{
			SessionID:   "s1",
			DryerTempC:  ptr(25.5),
			HumidityPct: nil,
			TimestampMs: msPtr(2000),
		},
	}

	var buf strings.Builder
	if err := WriteSessionCSV(&buf, samples); err != nil {
		t.Fatalf("WriteSessionCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Timestamp,Dryer Temperature,Collector Temperature,Humidity (%)" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "1970-01-01T00:00:01.000Z,25,30,40" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if lines[2] != "1970-01-01T00:00:02.000Z,25.5,--,--" {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestWriteSessionCSVTimestampFallback(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	samples := []models.Sample{
		{DryerTempC: ptr(25), CollectorTempC: ptr(30), HumidityPct: ptr(40), CreatedAt: created},
		{DryerTempC: ptr(25), CollectorTempC: ptr(30), HumidityPct: ptr(40)},
	}

	var buf strings.Builder
	if err := WriteSessionCSV(&buf, samples); err != nil {
		t.Fatalf("WriteSessionCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.HasPrefix(lines[1], "2024-03-01 12:30:45,") {
		t.Fatalf("expected server-time fallback, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "--,") {
		t.Fatalf("expected placeholder timestamp, got %q", lines[2])
	}
}

func TestWriteSessionCSVEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteSessionCSV(&buf, nil); err != nil {
		t.Fatalf("WriteSessionCSV: %v", err)
	}
	if got := strings.TrimRight(buf.String(), "\n"); got != "Timestamp,Dryer Temperature,Collector Temperature,Humidity (%)" {
		t.Fatalf("expected header only, got %q", got)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("Experiment 3"); got != "Experiment 3.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := FileName(""); got != "session.csv" {
		t.Fatalf("unexpected default name %q", got)
	}
}
