package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solardryer/internal/models"
	"solardryer/internal/notify"
)

const defaultWriteTimeout = 10 * time.Second

// SessionWriter persists session lifecycle writes.
type SessionWriter interface {
	Create(ctx context.Context, session *models.Session) error
	Stop(ctx context.Context, id string, endedAt time.Time) error
}

// CommandSender pushes a command notification toward the physical device.
// Delivery is best effort; the dispatcher never waits for an acknowledgment.
type CommandSender interface {
	SendCommand(deviceID string, cmd models.DeviceCommand) error
}

// ChangePublisher signals session writes to live-query watchers.
type ChangePublisher interface {
	PublishSessionChange(ctx context.Context)
}

// ActiveCache mirrors the running session into a shared cache.
type ActiveCache interface {
	Save(ctx context.Context, deviceID, sessionID, name string, startMs int64) error
	Delete(ctx context.Context, deviceID string) error
}

// Counter produces strictly increasing experiment numbers.
type Counter interface {
	NextExperimentNumber() int
}

// Dispatcher handles the Turn On / Turn Off user actions: it updates the
// reconciled local state optimistically, then performs the server writes and
// the device command fire-and-forget. Write failures surface a notification
// but do not roll back the optimistic state; the next authoritative snapshot
// corrects any divergence.
type Dispatcher struct {
	rec       *Reconciler
	store     PointerStore
	counter   Counter
	writer    SessionWriter
	sender    CommandSender
	publisher ChangePublisher
	cache     ActiveCache
	notifier  notify.Notifier
	logger    *zap.Logger
	deviceID  string

	busy         atomic.Bool
	newID        func() string
	now          func() time.Time
	writeTimeout time.Duration
}

// DispatcherDeps groups dispatcher dependencies.
type DispatcherDeps struct {
	Reconciler *Reconciler
	Store      PointerStore
	Counter    Counter
	Writer     SessionWriter
	Sender     CommandSender
	Publisher  ChangePublisher
	Cache      ActiveCache
	Notifier   notify.Notifier
	Logger     *zap.Logger
	DeviceID   string
}

// NewDispatcher builds a dispatcher for one device.
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	return &Dispatcher{
		rec:          deps.Reconciler,
		store:        deps.Store,
		counter:      deps.Counter,
		writer:       deps.Writer,
		sender:       deps.Sender,
		publisher:    deps.Publisher,
		cache:        deps.Cache,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		deviceID:     deps.DeviceID,
		newID:        uuid.NewString,
		now:          time.Now,
		writeTimeout: defaultWriteTimeout,
	}
}

// TurnOn starts a new session. No-op while busy or while a session is
// already active.
func (d *Dispatcher) TurnOn() {
	if !d.busy.CompareAndSwap(false, true) {
		return
	}
	defer d.busy.Store(false)

	if d.rec.Active() != nil {
		return
	}

	name := ExperimentName(d.counter.NextExperimentNumber())
	id := d.newID()
	startMs := d.now().UnixMilli()

	// Reflect "running" before any network round trip.
	d.rec.StartLocal(models.ActiveSession{ID: id, Name: name, StartTimestamp: startMs})
	d.logger.Info("session started", zap.String("session_id", id), zap.String("name", name))

	go d.persistStart(id, name, startMs)
}

// TurnOff stops the active session. When in-memory state was lost the stored
// pointer is consulted before concluding there is nothing to stop.
func (d *Dispatcher) TurnOff() {
	if !d.busy.CompareAndSwap(false, true) {
		return
	}
	defer d.busy.Store(false)

	var id string
	if active := d.rec.Active(); active != nil {
		id = active.ID
	} else if storedID, _, _, ok := d.store.Read(); ok {
		id = storedID
	}
	if id == "" {
		return
	}

	endedAt := d.now().UTC()
	d.rec.ClearLocal()
	d.logger.Info("session stopped", zap.String("session_id", id))

	go d.persistStop(id, endedAt)
}

func (d *Dispatcher) persistStart(id, name string, startMs int64) {
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	session := &models.Session{
		ID:              id,
		Name:            name,
		Status:          models.StatusRunning,
		DeviceID:        d.deviceID,
		CreatedAtClient: startMs,
	}
	if err := d.writer.Create(ctx, session); err != nil {
		d.logger.Error("failed to create session", zap.String("session_id", id), zap.Error(err))
		d.notifier.Push("Failed to start the session.")
	} else {
		d.publisher.PublishSessionChange(ctx)
		if d.cache != nil {
			if err := d.cache.Save(ctx, d.deviceID, id, name, startMs); err != nil {
				d.logger.Warn("failed to cache active session", zap.Error(err))
			}
		}
	}

	cmd := models.DeviceCommand{Action: models.CommandStart, SessionID: id, Timestamp: startMs}
	if err := d.sender.SendCommand(d.deviceID, cmd); err != nil {
		d.logger.Warn("failed to send start command", zap.String("device_id", d.deviceID), zap.Error(err))
	}
}

func (d *Dispatcher) persistStop(id string, endedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	if err := d.writer.Stop(ctx, id, endedAt); err != nil {
		d.logger.Error("failed to stop session", zap.String("session_id", id), zap.Error(err))
		d.notifier.Push("Failed to stop the session.")
	} else {
		d.publisher.PublishSessionChange(ctx)
		if d.cache != nil {
			if err := d.cache.Delete(ctx, d.deviceID); err != nil {
				d.logger.Warn("failed to drop active session cache", zap.Error(err))
			}
		}
	}

	cmd := models.DeviceCommand{Action: models.CommandStop, SessionID: id, Timestamp: endedAt.UnixMilli()}
	if err := d.sender.SendCommand(d.deviceID, cmd); err != nil {
		d.logger.Warn("failed to send stop command", zap.String("device_id", d.deviceID), zap.Error(err))
	}
}
