package localstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Default entry names inside the state directory. They can be overridden via
// configuration so tests and parallel deployments do not collide.
const (
	DefaultActiveKey  = "solar_dryer_active_start"
	DefaultNameKey    = "solar_dryer_active_name"
	DefaultCounterKey = "solar_dryer_experiment_counter"
)

// Keys names the individual state entries.
type Keys struct {
	Active  string
	Name    string
	Counter string
}

type storedActive struct {
	ID      string `json:"id"`
	StartMs int64  `json:"start_ms"`
}

// Store persists the dashboard-local active-session pointer and the
// experiment counter as small files under a state directory. Every operation
// is best effort: storage failures are swallowed and the store degrades to
// in-memory state so session control keeps working on a read-only disk.
type Store struct {
	mu   sync.Mutex
	dir  string
	keys Keys

	// in-memory fallbacks used when the directory is not writable
	memActive  *storedActive
	memName    string
	memCounter int
	hasCounter bool
}

// New returns a store rooted at dir. Empty key names fall back to defaults.
func New(dir string, keys Keys) *Store {
	if keys.Active == "" {
		keys.Active = DefaultActiveKey
	}
	if keys.Name == "" {
		keys.Name = DefaultNameKey
	}
	if keys.Counter == "" {
		keys.Counter = DefaultCounterKey
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Store{dir: dir, keys: keys}
}

// Read returns the stored active-session pointer, or ok=false when nothing
// usable is stored.
func (s *Store) Read() (id string, startMs int64, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.readActive()
	if active == nil || active.ID == "" {
		return "", 0, "", false
	}
	return active.ID, active.StartMs, s.readName(), true
}

// Write persists the active-session pointer and display name.
func (s *Store) Write(id string, startMs int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := &storedActive{ID: id, StartMs: startMs}
	s.memActive = active
	if data, err := json.Marshal(active); err == nil {
		_ = os.WriteFile(s.path(s.keys.Active), data, 0o644)
	}
	if name != "" {
		s.memName = name
		_ = os.WriteFile(s.path(s.keys.Name), []byte(name), 0o644)
	}
}

// Clear removes the stored pointer and name.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memActive = nil
	s.memName = ""
	_ = os.Remove(s.path(s.keys.Active))
	_ = os.Remove(s.path(s.keys.Name))
}

// NextExperimentNumber increments the persisted experiment counter and
// returns the new value. Consecutive calls yield strictly increasing numbers
// even when the counter file cannot be written.
func (s *Store) NextExperimentNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.readCounter() + 1
	s.writeCounter(next)
	return next
}

// SyncCounter raises the stored counter to max if it currently lags behind.
// Used by the history view to keep numbering ahead of what other writers
// already created.
func (s *Store) SyncCounter(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readCounter() >= max {
		return
	}
	s.writeCounter(max)
}

func (s *Store) readActive() *storedActive {
	if data, err := os.ReadFile(s.path(s.keys.Active)); err == nil {
		var active storedActive
		if json.Unmarshal(data, &active) == nil && active.ID != "" {
			return &active
		}
		return nil
	}
	return s.memActive
}

func (s *Store) readName() string {
	if data, err := os.ReadFile(s.path(s.keys.Name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return s.memName
}

func (s *Store) readCounter() int {
	if data, err := os.ReadFile(s.path(s.keys.Counter)); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && n >= 0 {
			return n
		}
	}
	if s.hasCounter {
		return s.memCounter
	}
	return 0
}

func (s *Store) writeCounter(n int) {
	s.memCounter = n
	s.hasCounter = true
	_ = os.WriteFile(s.path(s.keys.Counter), []byte(strconv.Itoa(n)), 0o644)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}
