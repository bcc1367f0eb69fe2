package storage

import (
	"context"

	"github.com/poiesic/larder/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// RecipeRepository persists ingested recipes.
type RecipeRepository interface {
	Repository

	// ExistsByNameAndSource reports whether a recipe with exactly this name
	// was already stored for source.
	ExistsByNameAndSource(ctx context.Context, name, source string) (bool, error)

	// ExistsBySourceURL reports whether a recipe with this source URL exists.
	// An empty URL never exists.
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)

	// InsertRecipe stores the record and its name/source and URL index
	// entries in one transaction. ID and UUID are assigned when unset.
	// Returns ErrDuplicateKey if either index entry already exists.
	InsertRecipe(ctx context.Context, record *core.IngestionRecord) (*core.IngestionRecord, error)

	// GetRecipe retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecipe(ctx context.Context, id core.ID) (*core.IngestionRecord, error)

	// GetRecipeByUUID retrieves a record by its public identifier.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecipeByUUID(ctx context.Context, uuid string) (*core.IngestionRecord, error)

	// ListRecipes returns up to limit records with ID > after, in ID order.
	ListRecipes(ctx context.Context, after core.ID, limit int) ([]*core.IngestionRecord, error)

	// CountRecipes returns the number of stored records.
	CountRecipes(ctx context.Context) (int, error)

	// UpdateEmbeddings replaces the embedding of existing records.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateEmbeddings(ctx context.Context, records ...*core.IngestionRecord) error

	// FindSimilar finds records whose embedding has cosine similarity
	// >= minSimilarity with vector, best first, up to limit results.
	// Records without an embedding or with a different dimension are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// RunRepository keeps the history of ingestion runs.
type RunRepository interface {
	Repository

	// SaveRun stores the statistics of a finished run.
	SaveRun(ctx context.Context, stats *core.RunStats) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]*core.RunStats, error)
}
