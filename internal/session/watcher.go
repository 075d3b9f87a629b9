package session

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"solardryer/internal/models"
)

// RunningQuery executes the running-session lookup backing the live query.
type RunningQuery interface {
	GetRunning(ctx context.Context) (*models.Session, error)
}

// Watcher turns the session change feed into a stream of reconciler
// snapshots: one initial snapshot on subscribe, then one per change event.
// Events arrive in publish order, so snapshots are applied in order.
type Watcher struct {
	client  *redis.Client
	channel string
	query   RunningQuery
	rec     *Reconciler
	logger  *zap.Logger
}

// NewWatcher builds a watcher feeding the given reconciler.
func NewWatcher(client *redis.Client, channel string, query RunningQuery, rec *Reconciler, logger *zap.Logger) *Watcher {
	return &Watcher{
		client:  client,
		channel: channel,
		query:   query,
		rec:     rec,
		logger:  logger,
	}
}

// Run watches until ctx is cancelled. If the subscription cannot be
// established the failure is reported once and the reconciler falls back to
// "no active session"; there is no retry loop here, reconnection of a live
// subscription is the client library's job.
func (w *Watcher) Run(ctx context.Context) {
	sub := w.client.Subscribe(ctx, w.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("session change subscription failed", zap.Error(err))
			w.rec.SubscriptionFailed()
		}
		return
	}

	w.deliver(ctx)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					w.logger.Warn("session change channel closed")
					w.rec.SubscriptionFailed()
				}
				return
			}
			w.deliver(ctx)
		}
	}
}

func (w *Watcher) deliver(ctx context.Context) {
	running, err := w.query.GetRunning(ctx)
	if err != nil {
		// Keep the last reconciled state; the next change event runs the
		// query again.
		w.logger.Warn("running-session query failed", zap.Error(err))
		return
	}
	w.rec.Apply(Snapshot{Session: running})
}
