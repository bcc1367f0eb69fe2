package badger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(name, source, url string) *core.IngestionRecord {
	return core.NewIngestionRecord(core.Recipe{
		Name:         name,
		Ingredients:  []string{"1 cup flour"},
		Instructions: []string{"Mix."},
		Source:       source,
		SourceURL:    url,
	}, core.QualityScore{Rating: 4, Reasoning: "fine"}, nil, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestInsertRecipe_AssignsIdentity(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	first, err := recipes.InsertRecipe(ctx, newRecord("Pancakes", "themealdb.com", ""))
	require.NoError(t, err)
	second, err := recipes.InsertRecipe(ctx, newRecord("Waffles", "themealdb.com", ""))
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	_, err = uuid.Parse(first.UUID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.UUID, second.UUID)
	assert.True(t, first.IsSystemRecipe)

	got, err := recipes.GetRecipe(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	byUUID, err := recipes.GetRecipeByUUID(ctx, second.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Waffles", byUUID.Recipe.Name)
}

func TestInsertRecipe_Duplicates(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := recipes.InsertRecipe(ctx, newRecord("Pancakes", "themealdb.com", "https://a.example/pancakes"))
	require.NoError(t, err)

	t.Run("same name and source", func(t *testing.T) {
		_, err := recipes.InsertRecipe(ctx, newRecord("Pancakes", "themealdb.com", ""))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("same url", func(t *testing.T) {
		_, err := recipes.InsertRecipe(ctx, newRecord("Fluffy Pancakes", "food.com", "https://a.example/pancakes"))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("same name other source", func(t *testing.T) {
		_, err := recipes.InsertRecipe(ctx, newRecord("Pancakes", "food.com", ""))
		assert.NoError(t, err)
	})

	t.Run("name match is exact", func(t *testing.T) {
		_, err := recipes.InsertRecipe(ctx, newRecord("pancakes", "themealdb.com", ""))
		assert.NoError(t, err)
	})

	count, err := recipes.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertRecipe_FailedInsertLeavesNoIndexes(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := recipes.InsertRecipe(ctx, newRecord("Pancakes", "a", "https://a.example/1"))
	require.NoError(t, err)

	// Rejected on the URL, so its name/source must not be indexed.
	_, err = recipes.InsertRecipe(ctx, newRecord("Crepes", "b", "https://a.example/1"))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	exists, err := recipes.ExistsByNameAndSource(ctx, "Crepes", "b")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertRecipe_FailedCommitLeavesRecordUntouched(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	// A UUID past badger's key size limit fails the write after an ID was
	// drawn for the record.
	record := &core.IngestionRecord{
		UUID: strings.Repeat("u", 70000),
		Recipe: core.Recipe{
			Name:        "Paella",
			Ingredients: []string{"rice"},
			Source:      "web",
		},
	}
	_, err := recipes.InsertRecipe(ctx, record)
	require.Error(t, err)

	assert.Zero(t, record.ID)
	assert.True(t, record.DiscoveredAt.IsZero())
	assert.True(t, record.UpdatedAt.IsZero())

	record.UUID = ""
	stored, err := recipes.InsertRecipe(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.NotEmpty(t, stored.UUID)
	assert.Zero(t, record.ID)
	assert.Empty(t, record.UUID)

	count, err := recipes.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExists(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := recipes.InsertRecipe(ctx, newRecord("Tacos", "web", "https://tacos.example/al-pastor"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		check  func() (bool, error)
		expect bool
	}{
		{"name and source", func() (bool, error) { return recipes.ExistsByNameAndSource(ctx, "Tacos", "web") }, true},
		{"other source", func() (bool, error) { return recipes.ExistsByNameAndSource(ctx, "Tacos", "food.com") }, false},
		{"url", func() (bool, error) { return recipes.ExistsBySourceURL(ctx, "https://tacos.example/al-pastor") }, true},
		{"url with spaces", func() (bool, error) { return recipes.ExistsBySourceURL(ctx, " https://tacos.example/al-pastor ") }, true},
		{"other url", func() (bool, error) { return recipes.ExistsBySourceURL(ctx, "https://tacos.example/other") }, false},
		{"empty url", func() (bool, error) { return recipes.ExistsBySourceURL(ctx, "") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestInsertRecipe_ConcurrentDuplicates(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = recipes.InsertRecipe(ctx, newRecord("Stew", "web", ""))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, storage.ErrDuplicateKey)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestGetRecipe_NotFound(t *testing.T) {
	recipes, _, _ := newTestRepos(t)

	_, err := recipes.GetRecipe(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = recipes.GetRecipeByUUID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListRecipes_Pages(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := recipes.InsertRecipe(ctx, newRecord(fmt.Sprintf("Recipe %d", i), "test", ""))
		require.NoError(t, err)
	}

	var names []string
	var after core.ID
	for {
		page, err := recipes.ListRecipes(ctx, after, 3)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 3)
		for _, rec := range page {
			assert.Greater(t, rec.ID, after)
			after = rec.ID
			names = append(names, rec.Recipe.Name)
		}
	}
	require.Len(t, names, 7)
	assert.Equal(t, "Recipe 0", names[0])
	assert.Equal(t, "Recipe 6", names[6])

	_, err := recipes.ListRecipes(ctx, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestUpdateEmbeddings(t *testing.T) {
	recipes, _, _ := newTestRepos(t)
	ctx := context.Background()

	rec, err := recipes.InsertRecipe(ctx, newRecord("Soup", "test", ""))
	require.NoError(t, err)
	assert.Nil(t, rec.Embedding)

	rec.Embedding = &core.Embedding{Vector: []float32{0.6, 0.8}, SourceText: "Soup", ModelName: "v2"}
	rec.Recipe.Name = "ignored rename"
	require.NoError(t, recipes.UpdateEmbeddings(ctx, rec))

	got, err := recipes.GetRecipe(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Recipe.Name)
	require.NotNil(t, got.Embedding)
	assert.Equal(t, "v2", got.Embedding.ModelName)
	assert.False(t, got.UpdatedAt.Before(got.DiscoveredAt))

	missing := newRecord("Ghost", "test", "")
	missing.ID = 12345
	err = recipes.UpdateEmbeddings(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecipes_Persist(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	recipes, err := NewRecipeRepository(backend)
	require.NoError(t, err)
	inserted, err := recipes.InsertRecipe(ctx, newRecord("Bread", "web", "https://bread.example"))
	require.NoError(t, err)
	require.NoError(t, recipes.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	recipes, err = NewRecipeRepository(backend)
	require.NoError(t, err)
	defer recipes.Close()

	exists, err := recipes.ExistsBySourceURL(ctx, "https://bread.example")
	require.NoError(t, err)
	assert.True(t, exists)

	next, err := recipes.InsertRecipe(ctx, newRecord("Rolls", "web", ""))
	require.NoError(t, err)
	assert.Greater(t, next.ID, inserted.ID)
}
