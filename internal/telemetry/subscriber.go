package telemetry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"solardryer/internal/notify"
)

const defaultFirstValueTimeout = 3 * time.Second

// Subscriber streams live readings from the telemetry channel into a Latest
// holder. The channel delivers messages in publish order; that ordering is
// what keeps the displayed reading current.
type Subscriber struct {
	client            *redis.Client
	channel           string
	latest            *Latest
	notifier          notify.Notifier
	logger            *zap.Logger
	firstValueTimeout time.Duration
}

// NewSubscriber builds a subscriber for the given channel.
func NewSubscriber(client *redis.Client, channel string, latest *Latest, notifier notify.Notifier, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		client:            client,
		channel:           channel,
		latest:            latest,
		notifier:          notifier,
		logger:            logger,
		firstValueTimeout: defaultFirstValueTimeout,
	}
}

// Run consumes readings until ctx is cancelled. A subscription failure is
// reported once and the display degrades to defaults; there is no retry
// beyond the client's own reconnection handling.
func (s *Subscriber) Run(ctx context.Context) {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("telemetry subscription failed", zap.String("channel", s.channel), zap.Error(err))
			s.notifier.Push("Failed to load live sensor data.")
		}
		s.latest.MarkLoaded()
		return
	}

	// If nothing arrives shortly after subscribing, show the empty state
	// instead of a loading indicator forever.
	timeout := time.NewTimer(s.firstValueTimeout)
	defer timeout.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timeout.C:
			s.latest.MarkLoaded()
		case msg, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					s.logger.Warn("telemetry channel closed", zap.String("channel", s.channel))
					s.notifier.Push("Failed to load live sensor data.")
				}
				s.latest.MarkLoaded()
				return
			}
			reading, err := Normalize([]byte(msg.Payload))
			if err != nil {
				s.logger.Warn("dropping malformed telemetry payload", zap.Error(err))
				continue
			}
			s.latest.Set(reading)
		}
	}
}
