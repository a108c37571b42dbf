package dispute

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supperclub/internal/modules/booking"
	"supperclub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.POST("/disputes", h.Open)
	rg.GET("/disputes", h.ListMine)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/disputes", h.ListOpen)
	rg.POST("/disputes/:id/escalate", h.Escalate)
	rg.POST("/disputes/:id/resolve", h.Resolve)
	rg.POST("/disputes/:id/close", h.Close)
}

func (h *Handler) Open(c *gin.Context) {
	var req OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	d, err := h.service.Open(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"dispute": d})
}

func (h *Handler) ListMine(c *gin.Context) {
	rows, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load disputes")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disputes": rows})
}

func (h *Handler) ListOpen(c *gin.Context) {
	rows, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load disputes")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disputes": rows})
}

func (h *Handler) Escalate(c *gin.Context) {
	id, ok := h.disputeID(c)
	if !ok {
		return
	}
	d, err := h.service.Escalate(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) Resolve(c *gin.Context) {
	id, ok := h.disputeID(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	d, err := h.service.Resolve(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) Close(c *gin.Context) {
	id, ok := h.disputeID(c)
	if !ok {
		return
	}
	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	d, err := h.service.Close(c.Request.Context(), c.GetInt64("user_id"), id, req.Resolution)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) disputeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid dispute id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid dispute request")
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Dispute not found")
	case booking.ErrBookingNotFound:
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Booking not found")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "You can only dispute your own bookings")
	case ErrInvalidTransition:
		response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "Dispute is not in a state that allows this action")
	case ErrRefundTooLarge:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Refund cannot exceed the booking amount")
	case ErrAlreadyDisputed:
		response.Error(c, http.StatusConflict, response.CodeValidation, "Booking already has an open dispute")
	case ErrNotDisputable:
		response.Error(c, http.StatusUnprocessableEntity, response.CodeInvalidTransition, "Booking cannot be disputed in its current state")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to process dispute")
	}
}
