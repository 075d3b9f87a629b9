package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"solardryer/internal/models"
)

// Manager tracks connected dryer devices.
type Manager struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	pingInterval time.Duration
}

// NewManager builds connection manager.
func NewManager(pingInterval time.Duration) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		connections:  make(map[string]*Connection),
		pingInterval: pingInterval,
	}
}

// Add registers new connection.
func (m *Manager) Add(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.DeviceID()] = conn
}

// Remove removes connection.
func (m *Manager) Remove(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, deviceID)
}

// SendCommand delivers a command to the device if it is connected. The
// command is queued and the call returns without waiting for the device.
func (m *Manager) SendCommand(deviceID string, cmd models.DeviceCommand) error {
	m.mu.RLock()
	conn, ok := m.connections[deviceID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("ws: device %s not connected", deviceID)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	conn.Send(data)
	return nil
}

// Start begins ping loop to keep connections active.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			for _, conn := range m.connections {
				_ = conn.Ping()
			}
			m.mu.RUnlock()
		}
	}
}
