package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxPending = 32

// Notifier receives one-shot user-facing notices. Components report a
// failure exactly once and never block on delivery.
type Notifier interface {
	Push(message string)
}

// Notice is a single transient message for the dashboard.
type Notice struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Hub buffers recent notices until the dashboard drains them. Old notices
// are dropped when the buffer is full; a missed notice is not worth blocking
// a subscription callback for.
type Hub struct {
	mu      sync.Mutex
	logger  *zap.Logger
	pending []Notice
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger}
}

// Push appends a notice.
func (h *Hub) Push(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Info("notification", zap.String("message", message))
	if len(h.pending) >= maxPending {
		h.pending = h.pending[1:]
	}
	h.pending = append(h.pending, Notice{Message: message, CreatedAt: time.Now().UTC()})
}

// Drain returns and clears all pending notices.
func (h *Hub) Drain() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.pending
	h.pending = nil
	return out
}
