package sampler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"solardryer/internal/models"
)

const (
	// DefaultInterval matches the firmware's one-second publish cadence.
	DefaultInterval = time.Second

	insertTimeout = 5 * time.Second
)

// TelemetrySource exposes the most recent live reading.
type TelemetrySource interface {
	Get() (models.Telemetry, bool)
}

// SampleWriter appends samples to a session.
type SampleWriter interface {
	Insert(ctx context.Context, sample *models.Sample) error
}

// Sampler logs one telemetry sample per interval while a session is active.
// Partial readings are skipped entirely, and a debounce guard keeps rapid
// re-fires from producing samples closer together than the interval.
type Sampler struct {
	source   TelemetrySource
	writer   SampleWriter
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	sessionID string
	cancel    context.CancelFunc
	lastLogMs int64
}

// New builds a sampler. A non-positive interval falls back to the default.
func New(source TelemetrySource, writer SampleWriter, logger *zap.Logger, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		source:   source,
		writer:   writer,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// SetActiveSession starts or stops the logging loop as the active session id
// changes. Re-entering with the current id is a no-op, so there is never
// more than one loop per session. An empty id tears the loop down.
func (s *Sampler) SetActiveSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.sessionID {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.sessionID = id
	s.lastLogMs = 0
	if id == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, id)
}

// Close stops any running loop.
func (s *Sampler) Close() {
	s.SetActiveSession("")
}

func (s *Sampler) run(ctx context.Context, sessionID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, sessionID)
		}
	}
}

func (s *Sampler) tick(ctx context.Context, sessionID string) {
	nowMs := s.now().UnixMilli()

	s.mu.Lock()
	if s.sessionID != sessionID {
		s.mu.Unlock()
		return
	}
	if s.lastLogMs != 0 && nowMs-s.lastLogMs < s.interval.Milliseconds() {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	reading, ok := s.source.Get()
	if !ok || !reading.Complete() {
		return
	}

	ts := nowMs
	sample := &models.Sample{
		SessionID:      sessionID,
		DryerTempC:     reading.DryerTempC,
		CollectorTempC: reading.CollectorTempC,
		HumidityPct:    reading.HumidityPct,
		TimestampMs:    &ts,
	}

	wctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	if err := s.writer.Insert(wctx, sample); err != nil {
		s.logger.Error("failed to log sample", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.sessionID == sessionID {
		s.lastLogMs = nowMs
	}
	s.mu.Unlock()
}
