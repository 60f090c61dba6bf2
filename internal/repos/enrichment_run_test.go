package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/oyster-ai/oyster-backend/internal/db"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/types"
)

func newTestRepo(t *testing.T) EnrichmentRunRepo {
	t.Helper()
	svc, err := db.Open(logger.NewNop(), db.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return NewEnrichmentRunRepo(svc.DB(), logger.NewNop())
}

func TestEnrichmentRunCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	run, err := repo.Create(ctx, nil, &types.EnrichmentRun{
		Status:         types.EnrichmentRunSucceeded,
		Sections:       2,
		Topics:         3,
		Resources:      6,
		Questions:      15,
		AudioGenerated: true,
		DurationMS:     1234,
		Metadata:       datatypes.JSON([]byte(`{"model":"gpt-4o-mini"}`)),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, run.ID)

	got, err := repo.GetByID(ctx, nil, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, types.EnrichmentRunSucceeded, got.Status)
	require.Equal(t, 15, got.Questions)
	require.True(t, got.AudioGenerated)
	require.JSONEq(t, `{"model":"gpt-4o-mini"}`, string(got.Metadata))
}

func TestEnrichmentRunGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.GetByID(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = repo.GetByID(context.Background(), nil, uuid.Nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEnrichmentRunListRecent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run, err := repo.Create(ctx, nil, &types.EnrichmentRun{
			Status:    types.EnrichmentRunFailed,
			Error:     "boom",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := repo.ListRecent(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, ids[2], runs[0].ID)
	require.Equal(t, ids[1], runs[1].ID)

	runs, err = repo.ListRecent(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func TestEnrichmentRunCreateRejectsNil(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), nil, nil)
	require.Error(t, err)
}
