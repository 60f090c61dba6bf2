package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oyster-ai/oyster-backend/internal/http/response"
	"github.com/oyster-ai/oyster-backend/internal/services"
)

type RunHandler struct {
	enrich services.EnrichmentService
}

func NewRunHandler(enrich services.EnrichmentService) *RunHandler {
	return &RunHandler{enrich: enrich}
}

// GET /api/enrichment-runs?limit=N
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	runs, err := h.enrich.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/enrichment-runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.enrich.GetRun(c.Request.Context(), runID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}
