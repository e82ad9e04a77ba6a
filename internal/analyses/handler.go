package analyses

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/server/middleware"
	"jobbuddy-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/analyze", h.analyze)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.DELETE("/analyses/:id", h.delete)
}

type analyzeRequest struct {
	JobText   string `json:"jobText"`
	JobSource string `json:"jobSource"`
	Questions string `json:"questions"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	analysis, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), JobInput{
		Text:      req.JobText,
		Source:    req.JobSource,
		Questions: req.Questions,
	})
	if err != nil {
		respond.Err(c, err, "failed to analyze resume")
		return
	}
	c.Set("analysisId", analysis.ID)
	respond.Created(c, toResponse(analysis))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Err(c, err, "failed to list analyses")
		return
	}
	out := make([]SummaryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toSummary(item))
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Err(c, err, "failed to load analysis")
		return
	}
	respond.OK(c, toResponse(analysis))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.Err(c, err, "failed to delete analysis")
		return
	}
	respond.NoContent(c)
}
