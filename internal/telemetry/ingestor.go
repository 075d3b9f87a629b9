package telemetry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ingestor accepts raw frames from a connected device and republishes them
// on the telemetry channel. Frames that do not decode as a reading are
// rejected so garbage never reaches subscribers.
type Ingestor struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewIngestor builds an ingestor publishing to the given channel.
func NewIngestor(client *redis.Client, channel string, logger *zap.Logger) *Ingestor {
	return &Ingestor{client: client, channel: channel, logger: logger}
}

// Process implements the device frame processor contract.
func (i *Ingestor) Process(ctx context.Context, deviceID string, raw []byte) error {
	if _, err := Normalize(raw); err != nil {
		return err
	}
	if err := i.client.Publish(ctx, i.channel, raw).Err(); err != nil {
		return fmt.Errorf("telemetry: publish reading: %w", err)
	}
	i.logger.Debug("telemetry reading published", zap.String("device_id", deviceID))
	return nil
}
