package session

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	now := time.UnixMilli(10_000_000)

	cases := []struct {
		name    string
		startMs int64
		want    string
	}{
		{"just started", now.UnixMilli(), "00:00"},
		{"minute and seconds", now.UnixMilli() - 65000, "01:05"},
		{"past the hour", now.UnixMilli() - 3665000, "01:01:05"},
		{"start slightly ahead", now.UnixMilli() + 500, "00:00"},
	}

	for _, tc := range cases {
		if got := FormatElapsed(tc.startMs, now); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestExperimentNaming(t *testing.T) {
	if got := ExperimentName(4); got != "Experiment 4" {
		t.Fatalf("unexpected name %q", got)
	}

	if n, ok := ExperimentNumber("Experiment 12"); !ok || n != 12 {
		t.Fatalf("expected 12, got %d ok=%v", n, ok)
	}
	if n, ok := ExperimentNumber("experiment 5"); !ok || n != 5 {
		t.Fatalf("expected case-insensitive match, got %d ok=%v", n, ok)
	}
	if _, ok := ExperimentNumber("Run 3"); ok {
		t.Fatalf("expected no match for unrelated name")
	}
}
