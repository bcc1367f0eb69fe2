package reembed

import "errors"

var (
	// ErrRecipeRepositoryRequired is returned when no recipe repository is provided.
	ErrRecipeRepositoryRequired = errors.New("recipe repository is required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")
)
