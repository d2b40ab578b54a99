package roomstate

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelcore/internal/domain"
	"hotelcore/internal/middleware"
	"hotelcore/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/rooms", middleware.StaffOnly())
	rooms.GET("", h.ListRooms)
	rooms.GET("/:id", h.GetRoom)
	rooms.POST("/:id/housekeeping-events",
		middleware.RequireRoles(domain.RoleHousekeeping, domain.RoleMaintenance, domain.RoleManager),
		h.HousekeepingEvent)
	rooms.PATCH("/:id/price", middleware.RequireRoles(domain.RoleManager), h.UpdatePrice)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) HousekeepingEvent(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	var req HousekeepingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	trigger, err := ParseHousekeeping(req.Event)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}

	room, err := h.service.HandleHousekeeping(c.Request.Context(), HousekeepingEvent{
		RoomID:     id,
		Trigger:    trigger,
		TaskID:     req.TaskID,
		Issue:      req.Issue,
		OutOfOrder: req.OutOfOrder,
		ActorID:    middleware.UserID(c),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	room, err := h.service.UpdatePrice(c.Request.Context(), id, *req.PricePerNight)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return 0, false
	}
	return id, true
}
