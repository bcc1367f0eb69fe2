package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
	"github.com/poiesic/larder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) storage.RecipeRepository {
	t.Helper()
	recipes, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		recipes.Close()
		backend.Close()
	})
	return recipes
}

func seedRecipes(t *testing.T, repo storage.RecipeRepository, n int, embedding *core.Embedding) []*core.IngestionRecord {
	t.Helper()
	out := make([]*core.IngestionRecord, 0, n)
	for i := 0; i < n; i++ {
		recipe := core.Recipe{
			Name:         fmt.Sprintf("Recipe %02d", i),
			Description:  "A plain loaf.",
			Ingredients:  []string{"500 g flour", "350 ml water", "10 g salt"},
			Instructions: []string{"Mix everything and bake for forty minutes."},
			Tags:         []string{},
			Images:       []string{},
			Source:       "test",
			SourceURL:    fmt.Sprintf("https://example.com/recipes/%d", i),
		}
		stored, err := repo.InsertRecipe(context.Background(), core.NewIngestionRecord(recipe, core.FallbackScore(), embedding, time.Now()))
		require.NoError(t, err)
		out = append(out, stored)
	}
	return out
}

func TestRecipeIterator_Basic(t *testing.T) {
	repo := setupTestDB(t)
	seedRecipes(t, repo, 10, nil)

	iterator := NewRecipeIterator(repo, 3)

	var sizes []int
	var ids []core.ID
	err := iterator.ForEach(context.Background(), func(page []*core.IngestionRecord) error {
		sizes = append(sizes, len(page))
		for _, record := range page {
			ids = append(ids, record.ID)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 3, 1}, sizes)
	require.Len(t, ids, 10)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "records should arrive in ID order")
	}
}

func TestRecipeIterator_PageSizes(t *testing.T) {
	tests := []struct {
		name     string
		records  int
		pageSize int
		pages    int
	}{
		{name: "exact multiple", records: 6, pageSize: 3, pages: 2},
		{name: "single page", records: 4, pageSize: 10, pages: 1},
		{name: "one per page", records: 3, pageSize: 1, pages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestDB(t)
			seedRecipes(t, repo, tt.records, nil)

			pages, seen := 0, 0
			err := NewRecipeIterator(repo, tt.pageSize).ForEach(context.Background(), func(page []*core.IngestionRecord) error {
				pages++
				seen += len(page)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.pages, pages)
			assert.Equal(t, tt.records, seen)
		})
	}
}

func TestRecipeIterator_EmptyDatabase(t *testing.T) {
	repo := setupTestDB(t)

	called := false
	err := NewRecipeIterator(repo, 5).ForEach(context.Background(), func([]*core.IngestionRecord) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "callback should not run without records")
}

func TestRecipeIterator_CallbackError(t *testing.T) {
	repo := setupTestDB(t)
	seedRecipes(t, repo, 10, nil)

	stop := errors.New("stop")
	pages := 0
	err := NewRecipeIterator(repo, 3).ForEach(context.Background(), func([]*core.IngestionRecord) error {
		pages++
		if pages == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, pages, "iteration should stop at the failing page")
}

func TestRecipeIterator_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	seedRecipes(t, repo, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	pages := 0
	err := NewRecipeIterator(repo, 3).ForEach(ctx, func([]*core.IngestionRecord) error {
		pages++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, pages)
}

func TestRecipeIterator_InvalidPageSize(t *testing.T) {
	repo := setupTestDB(t)
	assert.Equal(t, DefaultPageSize, NewRecipeIterator(repo, 0).pageSize)
	assert.Equal(t, DefaultPageSize, NewRecipeIterator(repo, -4).pageSize)
}
