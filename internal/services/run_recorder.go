package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/repos"
	"github.com/oyster-ai/oyster-backend/internal/types"
)

type RunRecord struct {
	ID          uuid.UUID
	UserRequest string
	Stats       enrich.Stats
	AudioURL    string
	Err         error
	Duration    time.Duration
	Metadata    map[string]any
}

// RunRecorder persists one row per enrichment run. Persistence is best-effort.
type RunRecorder struct {
	log  *logger.Logger
	repo repos.EnrichmentRunRepo
}

func NewRunRecorder(log *logger.Logger, repo repos.EnrichmentRunRepo) (*RunRecorder, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if repo == nil {
		return nil, fmt.Errorf("enrichment run repo required")
	}
	return &RunRecorder{log: log.With("service", "RunRecorder"), repo: repo}, nil
}

// Record returns nil when the run could not be stored.
func (r *RunRecorder) Record(ctx context.Context, rec RunRecord) *types.EnrichmentRun {
	if r == nil {
		return nil
	}
	run := newEnrichmentRun(rec)
	// The client may be gone by now; the row should still land.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	saved, err := r.repo.Create(ctx, nil, run)
	if err != nil {
		r.log.Warn("failed to record enrichment run", "error", err, "run_id", run.ID)
		return nil
	}
	return saved
}

func newEnrichmentRun(rec RunRecord) *types.EnrichmentRun {
	s := rec.Stats
	run := &types.EnrichmentRun{
		ID:                rec.ID,
		Status:            types.EnrichmentRunSucceeded,
		UserRequestHash:   hashUserRequest(rec.UserRequest),
		Sections:          s.Sections,
		Subsections:       s.Subsections,
		Topics:            s.Topics,
		Resources:         s.Resources,
		Questions:         s.Questions,
		ResourceFailures:  s.ResourceFailures,
		QuestionFailures:  s.QuestionFailures,
		SummaryFailed:     s.SummaryFailed,
		AudioGenerated:    s.AudioGenerated,
		AudioFailed:       s.AudioFailed,
		AudioURL:          rec.AudioURL,
		CapstoneGenerated: s.CapstoneGenerated,
		CapstoneFailed:    s.CapstoneFailed,
		DurationMS:        rec.Duration.Milliseconds(),
		Metadata:          datatypes.JSON([]byte("{}")),
	}
	if rec.Err != nil {
		run.Status = types.EnrichmentRunFailed
		run.Error = rec.Err.Error()
	}
	if len(rec.Metadata) > 0 {
		if raw, err := json.Marshal(rec.Metadata); err == nil {
			run.Metadata = datatypes.JSON(raw)
		}
	}
	return run
}

func hashUserRequest(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
