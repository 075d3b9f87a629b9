package sampler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"solardryer/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	reading models.Telemetry
	loaded  bool
}

func (f *fakeSource) set(dryer, collector, humidity *float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = models.Telemetry{DryerTempC: dryer, CollectorTempC: collector, HumidityPct: humidity}
	f.loaded = true
}

func (f *fakeSource) Get() (models.Telemetry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reading, f.loaded
}

type fakeSampleWriter struct {
	mu      sync.Mutex
	samples []models.Sample
}

func (f *fakeSampleWriter) Insert(ctx context.Context, sample *models.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, *sample)
	return nil
}

func (f *fakeSampleWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func (f *fakeSampleWriter) at(index int) models.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples[index]
}

func ptr(v float64) *float64 { return &v }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestSamplerSkipsPartialReadings(t *testing.T) {
	source := &fakeSource{}
	writer := &fakeSampleWriter{}
	s := New(source, writer, zap.NewNop(), time.Second)
	s.SetActiveSession("x")
	defer s.Close()

	source.set(ptr(25), ptr(30), nil)
	s.tick(context.Background(), "x")

	if writer.count() != 0 {
		t.Fatalf("expected no sample for partial reading, got %d", writer.count())
	}

	source.set(ptr(25), ptr(30), ptr(40))
	s.tick(context.Background(), "x")

	if writer.count() != 1 {
		t.Fatalf("expected one sample for complete reading, got %d", writer.count())
	}
	sample := writer.at(0)
	if sample.SessionID != "x" || *sample.DryerTempC != 25 || *sample.CollectorTempC != 30 || *sample.HumidityPct != 40 {
		t.Fatalf("unexpected sample %+v", sample)
	}
	if sample.TimestampMs == nil {
		t.Fatalf("expected client capture time set")
	}
}

func TestSamplerDebouncesRapidTicks(t *testing.T) {
	source := &fakeSource{}
	source.set(ptr(25), ptr(30), ptr(40))
	writer := &fakeSampleWriter{}
	s := New(source, writer, zap.NewNop(), time.Second)

	now := time.UnixMilli(100000)
	s.now = func() time.Time { return now }

	s.SetActiveSession("x")
	defer s.Close()

	s.tick(context.Background(), "x")
	s.tick(context.Background(), "x")
	if writer.count() != 1 {
		t.Fatalf("expected debounce to drop the second tick, got %d samples", writer.count())
	}

	now = now.Add(999 * time.Millisecond)
	s.tick(context.Background(), "x")
	if writer.count() != 1 {
		t.Fatalf("expected tick inside the interval dropped, got %d samples", writer.count())
	}

	now = now.Add(time.Millisecond)
	s.tick(context.Background(), "x")
	if writer.count() != 2 {
		t.Fatalf("expected sample after a full interval, got %d samples", writer.count())
	}
}

func TestSamplerStopsWhenSessionCleared(t *testing.T) {
	source := &fakeSource{}
	source.set(ptr(25), ptr(30), ptr(40))
	writer := &fakeSampleWriter{}
	s := New(source, writer, zap.NewNop(), 10*time.Millisecond)

	s.SetActiveSession("x")
	waitFor(t, time.Second, func() bool { return writer.count() >= 1 })

	s.SetActiveSession("")
	settled := writer.count()
	time.Sleep(60 * time.Millisecond)

	// One in-flight tick may land after the teardown signal, never more.
	if count := writer.count(); count > settled+1 {
		t.Fatalf("sampler kept logging after teardown: %d then %d", settled, count)
	}
}

func TestSamplerRestartIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	source.set(ptr(25), ptr(30), ptr(40))
	writer := &fakeSampleWriter{}
	s := New(source, writer, zap.NewNop(), time.Second)

	now := time.UnixMilli(100000)
	s.now = func() time.Time { return now }

	s.SetActiveSession("x")
	defer s.Close()

	s.tick(context.Background(), "x")
	if writer.count() != 1 {
		t.Fatalf("expected initial sample")
	}

	// Re-entering with the running session id must not reset the debounce.
	s.SetActiveSession("x")
	s.tick(context.Background(), "x")
	if writer.count() != 1 {
		t.Fatalf("expected repeated SetActiveSession to be a no-op, got %d samples", writer.count())
	}

	// A new session starts fresh.
	s.SetActiveSession("y")
	s.tick(context.Background(), "y")
	if writer.count() != 2 {
		t.Fatalf("expected new session to log immediately, got %d samples", writer.count())
	}
}
