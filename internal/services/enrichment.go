package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/platform/apierr"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/repos"
	"github.com/oyster-ai/oyster-backend/internal/types"
)

var (
	ErrRunNotFound        = apierr.New(http.StatusNotFound, "run_not_found", errors.New("enrichment run not found"))
	ErrRunHistoryDisabled = apierr.New(http.StatusServiceUnavailable, "run_history_disabled", errors.New("enrichment run history is not configured"))
)

// Enricher is the orchestrator surface the service drives.
type Enricher interface {
	Enrich(ctx context.Context, req enrich.Request) (*enrich.Result, error)
	Capabilities() enrich.Capabilities
}

// AudioStore publishes narration audio and returns its public URL.
type AudioStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

type EnrichOutput struct {
	RunID  uuid.UUID
	Result *enrich.Result
}

type EnrichmentService interface {
	Enrich(ctx context.Context, req enrich.Request) (*EnrichOutput, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.EnrichmentRun, error)
	ListRuns(ctx context.Context, limit int) ([]*types.EnrichmentRun, error)
	Capabilities() enrich.Capabilities
}

type enrichmentService struct {
	log      *logger.Logger
	enricher Enricher
	audio    AudioStore
	recorder *RunRecorder
	runs     repos.EnrichmentRunRepo
	model    string
}

// NewEnrichmentService wraps the orchestrator. audio, recorder and runs may be
// nil: narration then stays inline only and run history is off.
func NewEnrichmentService(
	log *logger.Logger,
	enricher Enricher,
	audio AudioStore,
	recorder *RunRecorder,
	runs repos.EnrichmentRunRepo,
	model string,
) (EnrichmentService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if enricher == nil {
		return nil, fmt.Errorf("enricher required")
	}
	return &enrichmentService{
		log:      log.With("service", "EnrichmentService"),
		enricher: enricher,
		audio:    audio,
		recorder: recorder,
		runs:     runs,
		model:    model,
	}, nil
}

func (s *enrichmentService) Capabilities() enrich.Capabilities {
	return s.enricher.Capabilities()
}

func (s *enrichmentService) Enrich(ctx context.Context, req enrich.Request) (*EnrichOutput, error) {
	runID := uuid.New()
	start := time.Now()

	res, err := s.enricher.Enrich(ctx, req)
	if err != nil {
		// Bad input never reaches the run table.
		if !errors.Is(err, enrich.ErrMissingInput) {
			s.recorder.Record(ctx, RunRecord{
				ID:          runID,
				UserRequest: req.UserRequest,
				Err:         err,
				Duration:    time.Since(start),
				Metadata:    s.runMetadata(0),
			})
		}
		return nil, err
	}

	if len(res.Audio) > 0 && s.audio != nil {
		key := fmt.Sprintf("narration/%s.mp3", runID)
		url, upErr := s.audio.Upload(ctx, key, res.Audio)
		if upErr != nil {
			s.log.Warn("narration upload failed", "error", upErr, "run_id", runID)
		} else {
			res.Course.AudioURL = url
		}
	}

	s.recorder.Record(ctx, RunRecord{
		ID:          runID,
		UserRequest: req.UserRequest,
		Stats:       res.Stats,
		AudioURL:    res.Course.AudioURL,
		Duration:    time.Since(start),
		Metadata:    s.runMetadata(len(res.Audio)),
	})
	return &EnrichOutput{RunID: runID, Result: res}, nil
}

func (s *enrichmentService) runMetadata(audioBytes int) map[string]any {
	md := map[string]any{"capabilities": s.enricher.Capabilities()}
	if s.model != "" {
		md["model"] = s.model
	}
	if audioBytes > 0 {
		md["audio_bytes"] = audioBytes
	}
	return md
}

func (s *enrichmentService) GetRun(ctx context.Context, id uuid.UUID) (*types.EnrichmentRun, error) {
	if s.runs == nil {
		return nil, ErrRunHistoryDisabled
	}
	run, err := s.runs.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (s *enrichmentService) ListRuns(ctx context.Context, limit int) ([]*types.EnrichmentRun, error) {
	if s.runs == nil {
		return nil, ErrRunHistoryDisabled
	}
	return s.runs.ListRecent(ctx, nil, limit)
}
