package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/larder/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder returns [len(text)] and fails for texts containing "bad".
type testEmbedder struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	seen     []string
}

func (e *testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	e.mu.Lock()
	e.seen = append(e.seen, text)
	e.mu.Unlock()

	if strings.Contains(text, "bad") {
		return nil, errors.New("embedding failed")
	}
	return []float32{float32(len(text))}, nil
}

func (e *testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *testEmbedder) Model() string { return "test-model" }

func TestEmbedBatch(t *testing.T) {
	embedder := &testEmbedder{}
	sleeper := &backoff.RecordingSleeper{}
	texts := []string{"a", "bb", "bad one", "dddd", "eeeee"}

	result, err := EmbedBatch(context.Background(), embedder, texts, BatchOptions{
		GroupSize:  2,
		GroupDelay: time.Second,
		Sleeper:    sleeper,
	})
	require.NoError(t, err)

	require.Len(t, result.Vectors, 5)
	assert.Equal(t, []float32{1}, result.Vectors[0])
	assert.Equal(t, []float32{2}, result.Vectors[1])
	assert.Nil(t, result.Vectors[2])
	assert.Equal(t, []float32{4}, result.Vectors[3])
	assert.Equal(t, []float32{5}, result.Vectors[4])

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Index)
	assert.Equal(t, 4, result.Succeeded())

	// Three groups, so two pauses.
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.Delays())
	assert.Equal(t, int32(5), embedder.calls.Load())
}

func TestEmbedBatch_BoundedByGroup(t *testing.T) {
	embedder := &testEmbedder{}
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	_, err := EmbedBatch(context.Background(), embedder, texts, BatchOptions{
		GroupSize: 3,
		PoolSize:  3,
		Sleeper:   &backoff.RecordingSleeper{},
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, embedder.peak.Load(), int32(3))
}

func TestEmbedBatch_InvalidGroupSize(t *testing.T) {
	_, err := EmbedBatch(context.Background(), &testEmbedder{}, []string{"a"}, BatchOptions{})
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestEmbedBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := backoff.SleeperFunc(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	embedder := &testEmbedder{}
	result, err := EmbedBatch(ctx, embedder, []string{"a", "b", "c", "d"}, BatchOptions{
		GroupSize:  2,
		GroupDelay: time.Millisecond,
		Sleeper:    sleeper,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(2), embedder.calls.Load())
	assert.NotNil(t, result.Vectors[0])
	assert.Nil(t, result.Vectors[3])
}

// cancelingEmbedder cancels the batch context after the first call.
type cancelingEmbedder struct {
	testEmbedder
	cancel context.CancelFunc
}

func (e *cancelingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	defer e.cancel()
	return e.testEmbedder.EmbedText(ctx, text)
}

func TestEmbedBatch_CanceledBetweenGroupsKeepsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	embedder := &cancelingEmbedder{cancel: cancel}

	result, err := EmbedBatch(ctx, embedder, []string{"bad one", "b", "c"}, BatchOptions{GroupSize: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), embedder.calls.Load())
	assert.Nil(t, result.Vectors[0])
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Index)
}

func TestEmbedBatch_Empty(t *testing.T) {
	result, err := EmbedBatch(context.Background(), &testEmbedder{}, nil, BatchOptions{GroupSize: 4})
	require.NoError(t, err)
	assert.Empty(t, result.Vectors)
	assert.Empty(t, result.Errors)
}

func TestCachingEmbedder(t *testing.T) {
	ctx := context.Background()
	inner := &testEmbedder{}
	cache, err := NewCachingEmbedder(inner, 8)
	require.NoError(t, err)

	first, err := cache.EmbedText(ctx, "pasta")
	require.NoError(t, err)
	second, err := cache.EmbedText(ctx, "pasta")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, cache.Len())

	// Mutating a returned vector must not corrupt the cache.
	second[0] = 99
	third, err := cache.EmbedText(ctx, "pasta")
	require.NoError(t, err)
	assert.Equal(t, []float32{5}, third)

	vecs, err := cache.EmbedTexts(ctx, []string{"pasta", "soup!"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{5}, {5}}, vecs)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, "test-model", cache.Model())
}

func TestCachingEmbedder_ErrorsNotCached(t *testing.T) {
	inner := &testEmbedder{}
	cache, err := NewCachingEmbedder(inner, 4)
	require.NoError(t, err)

	_, err = cache.EmbedText(context.Background(), "bad")
	require.Error(t, err)
	_, err = cache.EmbedText(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Zero(t, cache.Len())
}

func TestCachingEmbedder_InvalidSize(t *testing.T) {
	_, err := NewCachingEmbedder(&testEmbedder{}, 0)
	assert.Error(t, err)
}
