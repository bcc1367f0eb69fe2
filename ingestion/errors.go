package ingestion

import "errors"

var (
	// ErrRecipeRepositoryRequired is returned when a recipe repository is not provided.
	ErrRecipeRepositoryRequired = errors.New("recipe repository required")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid ingestion option")
)
