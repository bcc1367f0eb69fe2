package ingestion

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogName(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("CET", 3600))
	stats := core.NewRunStats("x", 0, start)
	assert.Equal(t, "ingestion-20240102T020405.006Z.json", RunLogName(stats))
}

func TestWriteRunLog(t *testing.T) {
	dir := t.TempDir() + "/logs/nested"
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stats := core.NewRunStats("mealdb", 2, start)
	stats.Success = 1
	stats.AddError("Bad Pie", errors.New("write failed"))
	stats.Finish(start.Add(1500 * time.Millisecond))

	path, err := WriteRunLog(dir, stats)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded core.RunStats
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, 1, decoded.Failed)
	assert.Equal(t, 1.5, decoded.Duration)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, core.RunError{RecipeName: "Bad Pie", Error: "write failed"}, decoded.Errors[0])
	assert.True(t, start.Equal(decoded.StartTime))
}
