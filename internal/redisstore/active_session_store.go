package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// activeSession is the cached running-session record, keyed by device.
type activeSession struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	StartMs   int64  `json:"start_ms"`
}

// ActiveStore mirrors the running session into redis for quick access by
// other consumers (device poller, future dashboards). The reconciler's
// file-backed pointer stays authoritative for the dashboard itself.
type ActiveStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewActiveStore returns redis-backed store.
func NewActiveStore(client *redis.Client, ttl time.Duration) *ActiveStore {
	return &ActiveStore{client: client, ttl: ttl}
}

func (s *ActiveStore) key(deviceID string) string {
	return fmt.Sprintf("dryer:active:%s", deviceID)
}

// Save caches the running session for the device.
func (s *ActiveStore) Save(ctx context.Context, deviceID, sessionID, name string, startMs int64) error {
	data, err := json.Marshal(activeSession{SessionID: sessionID, Name: name, StartMs: startMs})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(deviceID), data, s.ttl).Err()
}

// Delete removes the cached session for the device.
func (s *ActiveStore) Delete(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, s.key(deviceID)).Err()
}
