package withdrawal

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supperclub/internal/domain"
	"supperclub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterHostRoutes mounts the host-facing payout endpoints.
func (h *Handler) RegisterHostRoutes(rg *gin.RouterGroup) {
	rg.POST("/withdrawals", h.Request)
	rg.GET("/withdrawals", h.ListMine)
}

// RegisterAdminRoutes mounts the review queue.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/withdrawals", h.ListQueue)
	rg.POST("/withdrawals/:id/approve", h.Approve)
	rg.POST("/withdrawals/:id/reject", h.Reject)
	rg.POST("/withdrawals/:id/paid", h.MarkPaid)
}

func (h *Handler) Request(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	wd, err := h.service.Request(c.Request.Context(), c.GetInt64("user_id"), req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"withdrawal": wd})
}

func (h *Handler) ListMine(c *gin.Context) {
	rows, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load withdrawals")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawals": rows})
}

func (h *Handler) ListQueue(c *gin.Context) {
	status := domain.WithdrawalStatus(c.Query("status"))
	rows, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load withdrawals")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawals": rows})
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid withdrawal id")
		return
	}
	wd, err := h.service.Approve(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": wd})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid withdrawal id")
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	wd, err := h.service.Reject(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": wd})
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid withdrawal id")
		return
	}
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	wd, err := h.service.MarkPaid(c.Request.Context(), c.GetInt64("user_id"), id, req.PaymentReference)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": wd})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid withdrawal request")
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Withdrawal not found")
	case ErrInvalidTransition:
		response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "Withdrawal is not in a state that allows this action")
	case ErrInsufficientFunds:
		response.Error(c, http.StatusUnprocessableEntity, response.CodeInsufficientFunds, "Wallet balance is too low for this withdrawal")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to process withdrawal")
	}
}
