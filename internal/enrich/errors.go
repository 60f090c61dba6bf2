package enrich

import (
	"errors"
	"net/http"

	"github.com/oyster-ai/oyster-backend/internal/platform/apierr"
)

var (
	// ErrMissingInput is returned before any adapter call when the outline or
	// the user request is absent.
	ErrMissingInput = apierr.BadRequest("missing_input", errors.New("Missing required syllabus or userRequest"))

	// ErrLLMUnavailable means no completion service is configured.
	ErrLLMUnavailable = apierr.New(http.StatusInternalServerError, "llm_unavailable", errors.New("llm adapter not configured"))

	// ErrInternal marks unexpected faults (recovered panics) escaping the pipeline.
	ErrInternal = errors.New("internal enrichment failure")
)
