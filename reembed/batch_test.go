package reembed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/ai/huggingface"
	"github.com/poiesic/larder/ai/mock"
	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(sleeper backoff.Sleeper) *Config {
	return &Config{
		PageSize:       3,
		GroupSize:      2,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Dimension:      8,
		Normalize:      true,
		Sleeper:        sleeper,
	}
}

func testEmbedder() *mock.MockEmbedder {
	return &mock.MockEmbedder{Dimension: 8, ModelName: "test-model"}
}

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 3, nil)

	embedder := testEmbedder()
	processor := NewBatchProcessor(repo, embedder, testConfig(&backoff.RecordingSleeper{}), nil)

	outcome, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{Updated: 3}, outcome)

	for _, record := range records {
		stored, err := repo.GetRecipe(context.Background(), record.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Embedding, "embedding should be stored")
		assert.Equal(t, "test-model", stored.Embedding.ModelName)
		assert.Equal(t, ingestion.EmbeddingText(&record.Recipe), stored.Embedding.SourceText)
		assert.Len(t, stored.Embedding.Vector, 8)
		assert.InDelta(t, 1.0, magnitude(stored.Embedding.Vector), 1e-5)
	}
	assert.Len(t, embedder.Texts(), 3)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupTestDB(t)
	embedder := testEmbedder()
	processor := NewBatchProcessor(repo, embedder, testConfig(nil), nil)

	outcome, err := processor.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{}, outcome)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestBatchProcessor_ItemFailureIsolated(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 3, nil)

	var calls atomic.Int32
	embedder := testEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.HasPrefix(text, "Recipe 01") {
			calls.Add(1)
			return nil, errors.New("service unavailable")
		}
		return mock.Vector(text, 8), nil
	}

	sleeper := &backoff.RecordingSleeper{}
	processor := NewBatchProcessor(repo, embedder, testConfig(sleeper), nil)

	outcome, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{Updated: 2, Failed: 1}, outcome)
	assert.Equal(t, int32(3), calls.Load(), "failing text should use every attempt")
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeper.Delays())

	failed, err := repo.GetRecipe(context.Background(), records[1].ID)
	require.NoError(t, err)
	assert.Nil(t, failed.Embedding, "failed record keeps its previous embedding")

	ok, err := repo.GetRecipe(context.Background(), records[2].ID)
	require.NoError(t, err)
	assert.NotNil(t, ok.Embedding)
}

func TestBatchProcessor_Retry(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 2, nil)

	var mu sync.Mutex
	attempts := map[string]int{}
	embedder := testEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		mu.Lock()
		attempts[text]++
		n := attempts[text]
		mu.Unlock()
		if n < 2 {
			return nil, errors.New("cold start")
		}
		return mock.Vector(text, 8), nil
	}

	sleeper := &backoff.RecordingSleeper{}
	processor := NewBatchProcessor(repo, embedder, testConfig(sleeper), nil)

	outcome, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{Updated: 2}, outcome)
	for _, n := range attempts {
		assert.Equal(t, 2, n, "each text should succeed on the second attempt")
	}
	assert.Len(t, sleeper.Delays(), 2)
}

func TestBatchProcessor_PermanentErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "configuration", err: fmt.Errorf("%w: token rejected", core.ErrConfiguration)},
		{name: "empty text", err: ai.ErrEmptyText},
		{name: "dimension mismatch", err: fmt.Errorf("%w: got 4, want 8", ai.ErrDimensionMismatch)},
		{name: "non-finite values", err: fmt.Errorf("%w: index 2", ai.ErrNonFiniteValue)},
		{name: "rejected request", err: fmt.Errorf("%w: status 400", ai.ErrRequestRejected)},
		{name: "cold start exhausted", err: fmt.Errorf("%w after 4 attempts", ai.ErrColdStart)},
		{name: "timeout exhausted", err: fmt.Errorf("%w after 4 attempts", ai.ErrTimeout)},
		{name: "attempts exhausted", err: fmt.Errorf("%w after 4 attempts: reset", ai.ErrRetriesExhausted)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestDB(t)
			records := seedRecipes(t, repo, 2, nil)

			var calls atomic.Int32
			embedder := testEmbedder()
			embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
				calls.Add(1)
				return nil, tt.err
			}

			sleeper := &backoff.RecordingSleeper{}
			processor := NewBatchProcessor(repo, embedder, testConfig(sleeper), nil)

			outcome, err := processor.Process(context.Background(), records)
			require.NoError(t, err)
			assert.Equal(t, BatchOutcome{Failed: 2}, outcome)
			assert.Equal(t, int32(2), calls.Load(), "one call per record")
			assert.Empty(t, sleeper.Delays())
		})
	}
}

func TestBatchProcessor_RejectedByEmbeddingService(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "input too long"}`))
	}))
	t.Cleanup(server.Close)

	sleeper := &backoff.RecordingSleeper{}
	embedder, err := huggingface.NewEmbedder(ai.NewConfig(
		ai.WithEmbeddingHost(server.URL),
		ai.WithEmbeddingToken("hf_test"),
		ai.WithDimension(8),
		ai.WithRetryPolicy(2, time.Second, time.Second),
	), huggingface.WithSleeper(sleeper))
	require.NoError(t, err)

	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 3, nil)
	processor := NewBatchProcessor(repo, embedder, testConfig(sleeper), nil)

	outcome, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{Failed: 3}, outcome)
	assert.Equal(t, int32(3), requests.Load())
	assert.Empty(t, sleeper.Delays())
}

func TestBatchProcessor_DimensionMismatch(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 2, nil)

	config := testConfig(nil)
	config.Dimension = 16
	processor := NewBatchProcessor(repo, testEmbedder(), config, nil)

	outcome, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, BatchOutcome{Failed: 2}, outcome)

	stored, err := repo.GetRecipe(context.Background(), records[0].ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Embedding)
}

func TestBatchProcessor_WithoutNormalization(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 1, nil)

	embedder := testEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{3, 4, 0, 0, 0, 0, 0, 0}, nil
	}

	config := testConfig(nil)
	config.Normalize = false
	processor := NewBatchProcessor(repo, embedder, config, nil)

	_, err := processor.Process(context.Background(), records)
	require.NoError(t, err)

	stored, err := repo.GetRecipe(context.Background(), records[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Embedding)
	assert.Equal(t, []float32{3, 4, 0, 0, 0, 0, 0, 0}, stored.Embedding.Vector)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	records := seedRecipes(t, repo, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := testEmbedder()
	processor := NewBatchProcessor(repo, embedder, testConfig(nil), nil)

	_, err := processor.Process(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, embedder.CallCount())
}
