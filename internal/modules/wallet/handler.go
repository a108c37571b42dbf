package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supperclub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wallet", h.GetWallet)
	rg.GET("/wallet/history", h.GetHistory)
}

func (h *Handler) GetWallet(c *gin.Context) {
	w, err := h.service.GetOrCreate(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load wallet")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": w})
}

func (h *Handler) GetHistory(c *gin.Context) {
	rows, err := h.service.History(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load wallet history")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": rows})
}
