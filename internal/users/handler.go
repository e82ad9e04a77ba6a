package users

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches auth and profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
	rg.GET("/me/instructions", h.getInstructions)
	rg.PUT("/me/instructions", h.putInstructions)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	session, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respond.Err(c, err, "failed to register")
		return
	}
	respond.Created(c, session)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	session, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", ErrInvalidCredentials.Message, nil)
			return
		}
		respond.Err(c, err, "failed to log in")
		return
	}
	respond.OK(c, session)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Err(c, err, "failed to load user")
		return
	}
	respond.OK(c, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"hasInstructions": user.Instructions != "",
		"createdAt":       user.CreatedAt,
	})
}

func (h *Handler) getInstructions(c *gin.Context) {
	instructions, err := h.Svc.Instructions(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Err(c, err, "failed to load instructions")
		return
	}
	respond.OK(c, gin.H{
		"instructions": instructions,
		"isDefault":    instructions == "",
	})
}

func (h *Handler) putInstructions(c *gin.Context) {
	var req instructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.UpdateInstructions(c.Request.Context(), userID, req.Instructions); err != nil {
		respond.Err(c, err, "failed to save instructions")
		return
	}
	instructions, err := h.Svc.Instructions(c.Request.Context(), userID)
	if err != nil {
		respond.Err(c, err, "failed to load instructions")
		return
	}
	respond.OK(c, gin.H{
		"instructions": instructions,
		"isDefault":    instructions == "",
	})
}
