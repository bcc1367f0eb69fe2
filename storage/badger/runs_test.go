package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_RecentRuns(t *testing.T) {
	_, runs, _ := newTestRepos(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, label := range []string{"themealdb", "food.com", "schemaorg"} {
		stats := core.NewRunStats(label, 10, base.Add(time.Duration(i)*time.Hour))
		stats.Success = 10 - i
		if i > 0 {
			stats.AddError("Broken", errors.New("insert failed"))
		}
		stats.Finish(stats.StartTime.Add(time.Minute))
		require.NoError(t, runs.SaveRun(ctx, stats))
	}

	recent, err := runs.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "schemaorg", recent[0].Label)
	assert.Equal(t, "food.com", recent[1].Label)
	assert.Equal(t, 60.0, recent[0].Duration)
	assert.Len(t, recent[0].Errors, 1)

	all, err := runs.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = runs.RecentRuns(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestRunRepository_Empty(t *testing.T) {
	_, runs, _ := newTestRepos(t)

	recent, err := runs.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	assert.ErrorIs(t, runs.SaveRun(context.Background(), nil), storage.ErrInvalidQuery)
}
