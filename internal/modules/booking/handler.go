package booking

import (
	"context"
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

// RegisterRoutes expects rg to be behind JWTAuth. Writes go through limiter
// when it is non-nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	desk := middleware.RequireRoles(domain.RoleReceptionist, domain.RoleManager)
	write := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if limiter != nil {
			return []gin.HandlerFunc{limiter, desk, fn}
		}
		return []gin.HandlerFunc{desk, fn}
	}

	bookings := rg.Group("/bookings")
	bookings.POST("", write(h.CreateBooking)...)
	bookings.GET("/:id", middleware.StaffOnly(), h.GetBooking)
	bookings.POST("/:id/confirm", write(h.ConfirmBooking)...)
	bookings.POST("/:id/check-in", write(h.CheckIn)...)
	bookings.POST("/:id/check-out", write(h.CheckOut)...)
	bookings.POST("/:id/cancel", write(h.CancelBooking)...)
	bookings.POST("/:id/no-show", write(h.MarkNoShow)...)
	bookings.PATCH("/:id/payment-status", write(h.UpdatePaymentStatus)...)
	bookings.POST("/:id/feedback",
		middleware.RequireRoles(domain.RoleReceptionist, domain.RoleManager, domain.RoleGuest),
		h.SubmitFeedback)
	bookings.DELETE("/:id", middleware.RequireRoles(), h.DeleteBooking)

	rooms := rg.Group("/rooms", middleware.StaffOnly())
	rooms.GET("/:id/availability", h.GetOverlap)
	rooms.GET("/:id/busy", h.BusyRanges)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.move(c, h.service.ConfirmBooking)
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.move(c, h.service.CheckIn)
}

func (h *Handler) CheckOut(c *gin.Context) {
	h.move(c, h.service.CheckOut)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.move(c, h.service.MarkNoShow)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) move(c *gin.Context, fn func(ctx context.Context, id int64) (*domain.Booking, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}

	var guestID *int64
	if middleware.Role(c) == domain.RoleGuest {
		uid := middleware.UserID(c)
		guestID = &uid
	}

	b, err := h.service.SubmitFeedback(c.Request.Context(), id, guestID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// GetOverlap answers GET /rooms/:id/availability?check_in=&check_out=&exclude_id=.
func (h *Handler) GetOverlap(c *gin.Context) {
	roomID, ok := pathID(c)
	if !ok {
		return
	}

	var exclude *int64
	if raw := c.Query("exclude_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, CodeValidation, "Invalid exclude_id")
			return
		}
		exclude = &v
	}

	checkIn, checkOut := c.Query("check_in"), c.Query("check_out")
	overlap, err := h.service.GetOverlap(c.Request.Context(), roomID, checkIn, checkOut, exclude)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, OverlapResponse{
		RoomID:       roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Overlap:      overlap,
	})
}

func (h *Handler) BusyRanges(c *gin.Context) {
	roomID, ok := pathID(c)
	if !ok {
		return
	}
	ranges, err := h.service.BusyRanges(c.Request.Context(), roomID, c.Query("from"), c.Query("to"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"busy": ranges})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
