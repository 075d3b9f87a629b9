package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP connections to WebSockets for dryer devices.
type Server struct {
	manager      *Manager
	processor    FrameProcessor
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(manager *Manager, processor FrameProcessor, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		manager:      manager,
		processor:    processor,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for the /device/ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(deviceID, conn, s.processor, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
	})
	s.manager.Add(connection)
	s.logger.Info("device connected", zap.String("device_id", deviceID))

	go connection.Start(ctx)
}
