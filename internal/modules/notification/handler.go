package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
	"hotelcore/internal/middleware"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/response"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

// NewHandler accepts websocket upgrades from allowedOrigins; an empty list
// accepts any origin.
func NewHandler(service *Service, hub *Hub, allowedOrigins []string, log *logrus.Logger) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Handler{
		service: service,
		hub:     hub,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// RegisterRoutes expects rg to be behind JWTAuth. The websocket endpoint
// takes the token from ?token= since browsers cannot set headers on upgrade.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	n := rg.Group("/notifications", middleware.StaffOnly())
	n.GET("", h.List)
	n.GET("/unread-count", h.UnreadCount)
	n.PATCH("/:id/read", h.MarkRead)
	n.POST("/read-all", h.MarkAllRead)
	n.DELETE("/:id", h.Deactivate)

	rg.GET("/ws/notifications", middleware.StaffOnly(), h.Stream)
}

// targetRole is the caller's role. Admins have no inbox of their own and pick
// one with ?role=, defaulting to manager.
func targetRole(c *gin.Context) (domain.Role, bool) {
	role := middleware.Role(c)
	if role != domain.RoleAdmin {
		return role, true
	}
	raw := c.Query("role")
	if raw == "" {
		return domain.RoleManager, true
	}
	r, err := domain.ParseRole(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid role")
		return "", false
	}
	return r, true
}

func (h *Handler) List(c *gin.Context) {
	role, ok := targetRole(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := h.service.ListForRole(c.Request.Context(), role, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": list})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	role, ok := targetRole(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	n, err := h.service.UnreadCount(c.Request.Context(), role, &userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": n})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_read": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	role, ok := targetRole(c)
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(c.Request.Context(), role)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": false})
}

// owned resolves :id to a notification addressed to the caller's role.
// Notifications of other roles are reported as missing.
func (h *Handler) owned(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}

	n, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return 0, false
	}
	role := middleware.Role(c)
	if role != domain.RoleAdmin && n.RecipientRole != role {
		response.FromError(c, apperror.NotFound("notification", id))
		return 0, false
	}
	return id, true
}

// Stream upgrades to a websocket and pushes new notifications for the
// caller's role until the client goes away.
func (h *Handler) Stream(c *gin.Context) {
	role, ok := targetRole(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := h.hub.Register(role, userID, conn)
	h.log.WithFields(logrus.Fields{"user_id": userID, "role": role}).Info("notification stream connected")
	defer func() {
		h.hub.Unregister(role, client)
		h.log.WithFields(logrus.Fields{"user_id": userID, "role": role}).Info("notification stream closed")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				client.mu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				client.mu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Clients only listen; inbound frames are read to process control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user_id", userID).Debug("notification stream error")
			}
			return
		}
	}
}
