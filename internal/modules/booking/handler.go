package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supperclub/internal/modules/slot"
	"supperclub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.POST("/bookings/:id/guests", h.AddGuests)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.GET("/bookings/:id/cancel-preview", h.CancelPreview)
	rg.POST("/bookings/:id/confirm", h.ConfirmBooking)
	rg.POST("/bookings/:id/check-in", h.CheckIn)
	rg.POST("/bookings/:id/complete", h.Complete)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"booking": gin.H{
			"id":           b.ID,
			"seats":        b.Seats,
			"amount_total": b.AmountTotal,
			"status":       b.Status,
		},
	})
}

func (h *Handler) AddGuests(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req AddGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	before, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	b, err := h.service.AddGuests(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"seats":             b.Seats,
		"amount_total":      b.AmountTotal,
		"additional_amount": b.AmountTotal - before.AmountTotal,
	})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"refund_amount":     b.RefundAmount,
		"refund_percentage": b.RefundPercentage,
	})
}

func (h *Handler) CancelPreview(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	preview, err := h.service.CancelPreview(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, preview)
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": b.Status})
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"checked_in_at": b.CheckedInAt})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Complete(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": b.Status})
}

func (h *Handler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid booking request")
	case ErrNotEnoughSeats:
		response.Error(c, http.StatusBadRequest, response.CodeNotEnoughSeats, "not enough seats")
	case ErrSeatCapExceeded:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "seats per booking cap exceeded")
	case ErrEventStarted:
		response.Error(c, http.StatusBadRequest, response.CodeEventStarted, "event already started")
	case ErrEventNotEnded:
		response.Error(c, http.StatusBadRequest, response.CodeInvalidTransition, "event has not ended yet")
	case ErrOutsideWindow:
		response.Error(c, http.StatusBadRequest, response.CodeInvalidTransition, "outside check-in window")
	case ErrInvalidTransition:
		response.Error(c, http.StatusBadRequest, response.CodeInvalidTransition, "invalid booking state for this operation")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Not your booking")
	case ErrBookingNotFound:
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Booking not found")
	case slot.ErrSlotNotFound:
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Event slot not found")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Booking operation failed")
	}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid booking ID")
		return 0, false
	}
	return id, true
}
