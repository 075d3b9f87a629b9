package localstate

import (
	"os"
	"path/filepath"
	"testing"
)

// writeBlockingFile drops a plain file where the store expects its directory,
// so every filesystem operation underneath it fails.
func writeBlockingFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("writeBlockingFile: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, Keys{})

	if _, _, _, ok := s.Read(); ok {
		t.Fatalf("expected empty store")
	}

	s.Write("abc", 12345, "Experiment 1")
	id, startMs, name, ok := s.Read()
	if !ok || id != "abc" || startMs != 12345 || name != "Experiment 1" {
		t.Fatalf("unexpected read %q %d %q %v", id, startMs, name, ok)
	}

	s.Clear()
	if _, _, _, ok := s.Read(); ok {
		t.Fatalf("expected cleared store")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	New(dir, Keys{}).Write("abc", 12345, "Experiment 1")

	id, startMs, name, ok := New(dir, Keys{}).Read()
	if !ok || id != "abc" || startMs != 12345 || name != "Experiment 1" {
		t.Fatalf("unexpected read after reopen %q %d %q %v", id, startMs, name, ok)
	}
}

func TestExperimentCounter(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, Keys{})

	for want := 1; want <= 3; want++ {
		if got := s.NextExperimentNumber(); got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}

	// A fresh store over the same directory continues the sequence.
	if got := New(dir, Keys{}).NextExperimentNumber(); got != 4 {
		t.Fatalf("expected counter 4 after reopen, got %d", got)
	}
}

func TestSyncCounterOnlyRaises(t *testing.T) {
	s := New(t.TempDir(), Keys{})

	s.SyncCounter(7)
	if got := s.NextExperimentNumber(); got != 8 {
		t.Fatalf("expected counter synced to 7, next 8, got %d", got)
	}

	s.SyncCounter(3)
	if got := s.NextExperimentNumber(); got != 9 {
		t.Fatalf("expected lower sync ignored, got %d", got)
	}
}

func TestStoreDegradesToMemory(t *testing.T) {
	// Point the store at a path that cannot be created.
	dir := filepath.Join(t.TempDir(), "blocked")
	writeBlockingFile(t, dir)

	s := New(dir, Keys{})
	s.Write("abc", 12345, "Experiment 1")
	id, startMs, name, ok := s.Read()
	if !ok || id != "abc" || startMs != 12345 || name != "Experiment 1" {
		t.Fatalf("expected in-memory fallback, got %q %d %q %v", id, startMs, name, ok)
	}

	if got := s.NextExperimentNumber(); got != 1 {
		t.Fatalf("expected in-memory counter 1, got %d", got)
	}
	if got := s.NextExperimentNumber(); got != 2 {
		t.Fatalf("expected in-memory counter 2, got %d", got)
	}
}
