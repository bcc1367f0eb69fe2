package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/ai/mock"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
	"github.com/poiesic/larder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) storage.RecipeRepository {
	t.Helper()
	recipes, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		recipes.Close()
		backend.Close()
	})
	return recipes
}

func storeRecipe(t *testing.T, repo storage.RecipeRepository, recipe core.Recipe, vector []float32) *core.IngestionRecord {
	t.Helper()
	var emb *core.Embedding
	if vector != nil {
		emb = &core.Embedding{Vector: vector, ModelName: "test"}
	}
	if recipe.Source == "" {
		recipe.Source = "test"
	}
	record, err := repo.InsertRecipe(context.Background(), core.NewIngestionRecord(recipe, core.FallbackScore(), emb, time.Now()))
	require.NoError(t, err)
	return record
}

// fixedProvider embeds every query as the same vector.
func fixedProvider(vector []float32) ai.AIProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return mock.NewMockProviderWithServices(embedder, mock.NewMockScorer())
}

// recordingMonitor records the callbacks it receives.
type recordingMonitor struct {
	query    string
	semantic []core.ID
	hits     int
	textHits []string
	results  int
}

func (m *recordingMonitor) Start(query string) {
	m.query = query
}

func (m *recordingMonitor) AfterSemanticSearch(ids []core.ID) {
	m.semantic = ids
}

func (m *recordingMonitor) SemanticHit(_ *core.IngestionRecord, _ float32) {
	m.hits++
}

func (m *recordingMonitor) TextHit(record *core.IngestionRecord) {
	m.textHits = append(m.textHits, record.Recipe.Name)
}

func (m *recordingMonitor) Finish(results []*core.SearchResult) {
	m.results = len(results)
}

func TestNewSearcher(t *testing.T) {
	repo := setupRepository(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		_, err := NewSearcher(repo, provider, WithMinSimilarity(1.5))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrRecipeRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestFindSimilar_EmptyDatabase(t *testing.T) {
	searcher, err := NewSearcher(setupRepository(t), mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "banana bread", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_RanksBySimilarity(t *testing.T) {
	repo := setupRepository(t)
	storeRecipe(t, repo, core.Recipe{Name: "Lemon Tart", Ingredients: []string{"lemons"}}, []float32{0.1, 0.9, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Pound Cake", Ingredients: []string{"butter"}}, []float32{0.9, 0.1, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Sponge Cake", Ingredients: []string{"eggs"}}, []float32{0.8, 0.3, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Beef Stew", Ingredients: []string{"beef"}}, []float32{0, 0, 1})
	storeRecipe(t, repo, core.Recipe{Name: "No Vector", Ingredients: []string{"air"}}, nil)

	searcher, err := NewSearcher(repo, fixedProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "something sweet", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Pound Cake", results[0].Record.Recipe.Name)
	assert.Equal(t, "Sponge Cake", results[1].Record.Recipe.Name)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_TextBoost(t *testing.T) {
	repo := setupRepository(t)
	storeRecipe(t, repo, core.Recipe{Name: "Quick Bread", Ingredients: []string{"flour"}}, []float32{1, 0, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Banana-Bread", Tags: []string{"baking"}, Ingredients: []string{"bananas"}}, []float32{0.8, 0.6, 0})

	searcher, err := NewSearcher(repo, fixedProvider([]float32{1, 0, 0}))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.FindSimilarWithMonitor(context.Background(), "the Banana bread recipe", 5, monitor)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Banana-Bread", results[0].Record.Recipe.Name)
	assert.InDelta(t, 0.8+textBoost, results[0].Score, 1e-5)
	assert.InDelta(t, 1.0, results[1].Score, 1e-5)

	assert.Equal(t, "the Banana bread recipe", monitor.query)
	assert.Len(t, monitor.semantic, 2)
	assert.Equal(t, 2, monitor.hits)
	assert.Equal(t, []string{"Banana-Bread"}, monitor.textHits)
	assert.Equal(t, 2, monitor.results)
}

func TestFindSimilar_Threshold(t *testing.T) {
	repo := setupRepository(t)
	storeRecipe(t, repo, core.Recipe{Name: "Close", Ingredients: []string{"a"}}, []float32{1, 0.1})
	storeRecipe(t, repo, core.Recipe{Name: "Far", Ingredients: []string{"b"}}, []float32{0.1, 1})

	searcher, err := NewSearcher(repo, fixedProvider([]float32{1, 0}), WithMinSimilarity(0.9))
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "close", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Close", results[0].Record.Recipe.Name)
}

func TestFindSimilar_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	searcher, err := NewSearcher(setupRepository(t), mock.NewMockProviderWithServices(embedder, nil))
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "soup", 5)
	assert.ErrorContains(t, err, "embedding service down")
}

func TestFindSimilar_CachedEmbedder(t *testing.T) {
	repo := setupRepository(t)
	storeRecipe(t, repo, core.Recipe{Name: "Soup", Ingredients: []string{"water"}}, mock.Vector("soup", 384))

	provider := mock.NewMockProvider()
	inner := provider.(*mock.MockProvider).GetMockEmbedder()
	cached, err := ai.NewCachingEmbedder(inner, 16)
	require.NoError(t, err)

	searcher, err := NewSearcher(repo, provider, WithEmbedder(cached))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		results, err := searcher.FindSimilar(context.Background(), "soup", 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
	assert.Equal(t, 1, inner.CallCount())
}

func TestFindSimilar_ZeroHits(t *testing.T) {
	searcher, err := NewSearcher(setupRepository(t), mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRelated(t *testing.T) {
	repo := setupRepository(t)
	target := storeRecipe(t, repo, core.Recipe{Name: "Margherita", Ingredients: []string{"tomato"}}, []float32{1, 0, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Marinara", Ingredients: []string{"tomato"}}, []float32{0.9, 0.2, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Calzone", Ingredients: []string{"ricotta"}}, []float32{0.7, 0.4, 0})
	storeRecipe(t, repo, core.Recipe{Name: "Tiramisu", Ingredients: []string{"coffee"}}, []float32{0, 0, 1})

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.Related(context.Background(), target.UUID, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Marinara", results[0].Record.Recipe.Name)
	assert.Equal(t, "Calzone", results[1].Record.Recipe.Name)
}

func TestRelated_Errors(t *testing.T) {
	repo := setupRepository(t)
	bare := storeRecipe(t, repo, core.Recipe{Name: "Bare", Ingredients: []string{"x"}}, nil)

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = searcher.Related(context.Background(), bare.UUID, 5)
	assert.ErrorIs(t, err, ErrNoEmbedding)

	_, err = searcher.Related(context.Background(), "no-such-uuid", 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
