package redisstore

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeFeed signals session writes to live-query watchers. Pub/sub delivers
// messages to each subscriber in publish order, which the reconciler relies
// on for snapshot ordering.
type ChangeFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewChangeFeed returns a feed publishing on the given channel.
func NewChangeFeed(client *redis.Client, channel string, logger *zap.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, channel: channel, logger: logger}
}

// PublishSessionChange emits one change event. Failures are logged and
// dropped; the next successful write re-triggers the watchers.
func (f *ChangeFeed) PublishSessionChange(ctx context.Context) {
	if err := f.client.Publish(ctx, f.channel, "changed").Err(); err != nil {
		f.logger.Warn("failed to publish session change", zap.Error(err))
	}
}
