package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"solardryer/internal/models"
	"solardryer/internal/notify"
)

// PointerStore is the local persistence adapter consumed by the reconciler
// and dispatcher. Implementations are best effort and never return errors.
type PointerStore interface {
	Read() (id string, startMs int64, name string, ok bool)
	Write(id string, startMs int64, name string)
	Clear()
}

// Snapshot is one delivery of the running-session live query. A nil Session
// means no session is currently running.
type Snapshot struct {
	Session *models.Session
}

// Reconciler merges the locally stored active-session pointer with the
// authoritative running-session query result into a single activeSession
// view. Snapshots must be applied in delivery order.
type Reconciler struct {
	store    PointerStore
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	active    *models.ActiveSession
	lastStart int64
	listeners []func(*models.ActiveSession)
}

// NewReconciler builds a reconciler seeded from the stored pointer, so a
// restart shows the last known session until the first snapshot arrives.
func NewReconciler(store PointerStore, notifier notify.Notifier, logger *zap.Logger) *Reconciler {
	r := &Reconciler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	if id, startMs, name, ok := store.Read(); ok {
		r.active = &models.ActiveSession{ID: id, Name: name, StartTimestamp: startMs}
		r.lastStart = startMs
	}
	return r
}

// Active returns a copy of the reconciled active session, or nil.
func (r *Reconciler) Active() *models.ActiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil
	}
	active := *r.active
	return &active
}

// OnChange registers a listener invoked whenever the active session changes
// identity or start time. Listeners run outside the reconciler lock.
func (r *Reconciler) OnChange(fn func(*models.ActiveSession)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Apply reconciles one live-query snapshot.
//
// Absence is authoritative: no running session on the server clears both the
// in-memory state and the stored pointer. For a running session the start
// timestamp resolves, in order, from the stored pointer (same id), the
// document's server timestamp, the last locally remembered start, and
// finally "now" -- and is written back so re-applying an unchanged snapshot
// is a no-op.
func (r *Reconciler) Apply(snap Snapshot) {
	r.mu.Lock()

	if snap.Session == nil {
		changed := r.active != nil
		r.active = nil
		r.lastStart = 0
		r.store.Clear()
		listeners := r.listeners
		r.mu.Unlock()
		if changed {
			r.logger.Info("active session cleared by server")
			notifyListeners(listeners, nil)
		}
		return
	}

	doc := snap.Session
	var startMs int64
	if id, stored, _, ok := r.store.Read(); ok && id == doc.ID {
		startMs = stored
	}
	if startMs == 0 {
		switch {
		case doc.CreatedAt != nil:
			startMs = doc.CreatedAt.UnixMilli()
		case doc.CreatedAtClient != 0:
			startMs = doc.CreatedAtClient
		case r.lastStart != 0:
			startMs = r.lastStart
		default:
			startMs = r.now().UnixMilli()
		}
	}
	r.lastStart = startMs

	next := models.ActiveSession{ID: doc.ID, Name: doc.Name, StartTimestamp: startMs}
	changed := r.active == nil || *r.active != next
	r.active = &next
	r.store.Write(doc.ID, startMs, doc.Name)
	listeners := r.listeners
	r.mu.Unlock()

	if changed {
		r.logger.Info("active session reconciled",
			zap.String("session_id", next.ID),
			zap.Int64("start_ms", next.StartTimestamp))
		active := next
		notifyListeners(listeners, &active)
	}
}

// StartLocal installs the optimistic active session before any write has
// been confirmed.
func (r *Reconciler) StartLocal(active models.ActiveSession) {
	r.mu.Lock()
	r.active = &active
	r.lastStart = active.StartTimestamp
	r.store.Write(active.ID, active.StartTimestamp, active.Name)
	listeners := r.listeners
	r.mu.Unlock()

	copied := active
	notifyListeners(listeners, &copied)
}

// ClearLocal drops the active session immediately, ahead of the server
// confirming the stop.
func (r *Reconciler) ClearLocal() {
	r.mu.Lock()
	changed := r.active != nil
	r.active = nil
	r.lastStart = 0
	r.store.Clear()
	listeners := r.listeners
	r.mu.Unlock()

	if changed {
		notifyListeners(listeners, nil)
	}
}

// SubscriptionFailed is called when the live query cannot be established.
// The failure is reported to the user once, the in-memory view falls back to
// "no active session", but the stored pointer is kept; the server was never
// heard from, so it is not treated as authoritative for absence.
func (r *Reconciler) SubscriptionFailed() {
	r.notifier.Push("Failed to load active session status.")

	r.mu.Lock()
	changed := r.active != nil
	r.active = nil
	listeners := r.listeners
	r.mu.Unlock()

	if changed {
		notifyListeners(listeners, nil)
	}
}

// ElapsedLabel renders the running time of the active session, or "00:00"
// when nothing is active.
func (r *Reconciler) ElapsedLabel() string {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()

	if active == nil {
		return "00:00"
	}
	return FormatElapsed(active.StartTimestamp, r.now())
}

func notifyListeners(listeners []func(*models.ActiveSession), active *models.ActiveSession) {
	for _, fn := range listeners {
		fn(active)
	}
}
