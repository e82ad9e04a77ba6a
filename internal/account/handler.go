package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/server/middleware"
	"jobbuddy-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/account", h.deleteAccount)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	result, err := h.Svc.DeleteAccount(c.Request.Context(), userID)
	if err != nil {
		respond.Err(c, err, "failed to delete account")
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
