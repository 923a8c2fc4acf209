package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusHandler pushes every published View's state to WebSocket clients
// as JSON {status, phase, running, timestamp}. Frames are not sent.
type StatusHandler struct {
	views  Viewer
	logger *zap.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(views Viewer, logger *zap.Logger) *StatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusHandler{views: views, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	views, cancel := h.views.Subscribe()
	defer cancel()

	// Read until the client goes away; incoming messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Only send when the state changes; frames arrive far more often.
	var last struct {
		status  string
		phase   string
		running bool
		sent    bool
	}

	for {
		select {
		case <-closed:
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			phase := v.Phase.String()
			if last.sent && last.status == v.Status && last.phase == phase && last.running == v.Running {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				return
			}
			last.status, last.phase, last.running, last.sent = v.Status, phase, v.Running, true
		}
	}
}
