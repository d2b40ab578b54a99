package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
)

const writeWait = 10 * time.Second

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Client struct {
	conn   Conn
	userID int64
	// gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

func (c *Client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub keeps the live websocket connections of staff, grouped by role.
type Hub struct {
	mutex   sync.RWMutex
	clients map[domain.Role]map[*Client]struct{}
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[domain.Role]map[*Client]struct{}),
		log:     log,
	}
}

// PushMessage is the frame sent to clients for each new notification.
type PushMessage struct {
	Type         string              `json:"type"`
	Notification domain.Notification `json:"notification"`
}

func (h *Hub) Register(role domain.Role, userID int64, conn Conn) *Client {
	c := &Client{conn: conn, userID: userID}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[role] == nil {
		h.clients[role] = make(map[*Client]struct{})
	}
	h.clients[role][c] = struct{}{}
	return c
}

func (h *Hub) Unregister(role domain.Role, c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[role][c]; !ok {
		return
	}
	_ = c.conn.Close()
	delete(h.clients[role], c)
	if len(h.clients[role]) == 0 {
		delete(h.clients, role)
	}
}

// Push sends n to every client of role. Clients that fail are dropped.
func (h *Hub) Push(role domain.Role, n domain.Notification) {
	h.mutex.RLock()
	targets := make([]*Client, 0, len(h.clients[role]))
	for c := range h.clients[role] {
		targets = append(targets, c)
	}
	h.mutex.RUnlock()

	msg := PushMessage{Type: "notification", Notification: n}
	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{"role": role, "user_id": c.userID}).Debug("dropping websocket client")
			h.Unregister(role, c)
		}
	}
}

func (h *Hub) OnlineCount(role domain.Role) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[role])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for role, set := range h.clients {
		for c := range set {
			_ = c.conn.Close()
		}
		delete(h.clients, role)
	}
}

var _ Conn = (*websocket.Conn)(nil)
