package slot

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supperclub/internal/pkg/response"
)

// BookingCascade cancels a slot together with the live bookings on it, so
// hosts never strand paid guests in a dead slot.
type BookingCascade interface {
	CancelSlot(ctx context.Context, hostID, slotID int64) error
}

type Handler struct {
	service  *Service
	bookings BookingCascade
}

func NewHandler(service *Service, bookings BookingCascade) *Handler {
	return &Handler{service: service, bookings: bookings}
}

// RegisterPublicRoutes exposes read-only slot listing.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/slots", h.ListSlots)
	rg.GET("/slots/:id", h.GetSlot)
}

// RegisterHostRoutes exposes slot publishing for hosts.
func (h *Handler) RegisterHostRoutes(rg *gin.RouterGroup) {
	rg.POST("/slots", h.CreateSlot)
	rg.POST("/slots/:id/cancel", h.CancelSlot)
}

func (h *Handler) ListSlots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	slots, err := h.service.ListUpcoming(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to list slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid slot ID")
		return
	}

	slot, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Event slot not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	slot, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid slot parameters")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to create slot")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) CancelSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid slot ID")
		return
	}

	if err := h.bookings.CancelSlot(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		switch err {
		case ErrSlotNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Event slot not found")
		case ErrForbidden:
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "You don't host this slot")
		case ErrSlotCancelled:
			response.Error(c, http.StatusBadRequest, response.CodeInvalidTransition, "Slot is already cancelled")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to cancel slot")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
