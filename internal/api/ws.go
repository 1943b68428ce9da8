package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/daywook/stockpilot/internal/engine"
	"github.com/daywook/stockpilot/pkg/logger"
)

// ProgressHub fans analysis progress events out to websocket clients
// ⭐ SSOT: 진행 상황 브로드캐스트는 여기서만
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewProgressHub creates a progress hub
func NewProgressHub(log *logger.Logger) *ProgressHub {
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 내부 도구 - 오리진 제한 없음
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeWS upgrades the connection and registers the client
func (h *ProgressHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Progress client connected")

	// Read loop only to detect close
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a progress event to all connected clients.
// engine.ProgressFunc으로 바로 쓸 수 있는 시그니처다.
func (h *ProgressHub) Broadcast(event engine.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *ProgressHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}
