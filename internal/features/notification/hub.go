package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the write surface of a websocket connection as the hub sees it.
// Satisfied by *websocket.Conn.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Hub tracks live websocket connections per user so notifications can be
// pushed without polling. A user may hold several connections (tabs).
// The websocket library allows one concurrent writer per connection, so
// each connection carries its own write mutex.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]*sync.Mutex
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[Conn]*sync.Mutex),
		logger: logger,
	}
}

func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]*sync.Mutex)
	}
	h.conns[userID][conn] = &sync.Mutex{}
}

func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Push sends the payload to every live connection of the user. Write
// failures drop the connection; the read loop cleans it up.
func (h *Hub) Push(userID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to marshal websocket payload", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, wmu := range h.conns[userID] {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		wmu.Unlock()
		if err != nil {
			h.logger.Debug("websocket push failed",
				zap.String("userId", userID),
				zap.Error(err))
		}
	}
}
