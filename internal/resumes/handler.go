package resumes

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/server/middleware"
	"jobbuddy-backend/internal/shared/server/respond"
)

// multipart overhead on top of the file itself
const maxUploadRequest = MaxUploadBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.POST("/resumes/upload", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
}

type createRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Name, req.Content)
	if err != nil {
		respond.Err(c, err, "failed to create resume")
		return
	}
	respond.Created(c, toResponse(resume, true))
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequest)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file is too large", gin.H{
			"maxBytes": MaxUploadBytes,
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	resume, err := h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), c.PostForm("name"), fileHeader.Filename, data)
	if err != nil {
		respond.Err(c, err, "failed to upload resume")
		return
	}
	respond.Created(c, toResponse(resume, true))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := pageParams(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Err(c, err, "failed to list resumes")
		return
	}
	out := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item, false))
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Err(c, err, "failed to load resume")
		return
	}
	respond.OK(c, toResponse(resume, true))
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	resume, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), Update{
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		respond.Err(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(resume, true))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		respond.Err(c, err, "failed to delete resume")
		return
	}
	respond.NoContent(c)
}

// pageParams reads limit/offset query params; invalid values fall back to zero.
func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}
