package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/types"
)

const (
	DefaultRunListLimit = 20
	MaxRunListLimit     = 100
)

type EnrichmentRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.EnrichmentRun) (*types.EnrichmentRun, error)
	// GetByID returns nil, nil when the run does not exist.
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EnrichmentRun, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.EnrichmentRun, error)
}

type enrichmentRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrichmentRunRepo(db *gorm.DB, baseLog *logger.Logger) EnrichmentRunRepo {
	repoLog := baseLog.With("repo", "EnrichmentRunRepo")
	return &enrichmentRunRepo{db: db, log: repoLog}
}

func (r *enrichmentRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.EnrichmentRun) (*types.EnrichmentRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if run == nil {
		return nil, errors.New("run required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *enrichmentRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EnrichmentRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.EnrichmentRun
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *enrichmentRunRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.EnrichmentRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	if limit > MaxRunListLimit {
		limit = MaxRunListLimit
	}
	results := []*types.EnrichmentRun{}
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
