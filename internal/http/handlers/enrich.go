package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/http/middleware"
	"github.com/oyster-ai/oyster-backend/internal/http/response"
	"github.com/oyster-ai/oyster-backend/internal/platform/ctxutil"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/services"
)

const (
	msgMissingInput = "Missing required syllabus or userRequest"
	msgEnrichFailed = "Failed to enrich course"
	msgInvalidBody  = "Invalid request body"
	msgBodyTooLarge = "Request body too large"
)

type EnrichHandler struct {
	log    *logger.Logger
	enrich services.EnrichmentService
}

func NewEnrichHandler(log *logger.Logger, enrich services.EnrichmentService) *EnrichHandler {
	return &EnrichHandler{log: log.With("handler", "EnrichHandler"), enrich: enrich}
}

type enrichCourseRequest struct {
	Syllabus    *course.Outline `json:"syllabus"`
	UserRequest string          `json:"userRequest"`
}

// POST /enrich-course, POST /api/enrich-course
func (h *EnrichHandler) EnrichCourse(c *gin.Context) {
	var req enrichCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.Is(err, io.EOF) {
			response.RespondFlatError(c, http.StatusBadRequest, msgMissingInput, "")
			return
		}
		if errors.As(err, &tooLarge) {
			response.RespondFlatError(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge, "")
			return
		}
		response.RespondFlatError(c, http.StatusBadRequest, msgInvalidBody, err.Error())
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	out, err := h.enrich.Enrich(ctx, enrich.Request{Syllabus: req.Syllabus, UserRequest: req.UserRequest})
	if err != nil {
		if errors.Is(err, enrich.ErrMissingInput) {
			response.RespondFlatError(c, http.StatusBadRequest, msgMissingInput, "")
			return
		}
		fields := append([]interface{}{"error", err, "duration_ms", time.Since(start).Milliseconds()}, ctxutil.TraceFields(ctx)...)
		h.log.Error("course enrichment failed", fields...)
		response.RespondFlatError(c, http.StatusInternalServerError, msgEnrichFailed, err.Error())
		return
	}

	c.Header(middleware.HeaderRunID, out.RunID.String())
	response.RespondOK(c, out.Result.Course)
}

// GET /api/capabilities
func (h *EnrichHandler) Capabilities(c *gin.Context) {
	response.RespondOK(c, gin.H{"capabilities": h.enrich.Capabilities()})
}
