package ai

import (
	"context"

	"github.com/poiesic/larder/core"
)

// Embedder turns text into dense vectors.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the text is empty or the vector fails validation.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model names the embedding model, stored alongside every vector.
	Model() string
}

// QualityScorer rates a recipe from 0 to 5.
type QualityScorer interface {
	// Score must tolerate requests with only some fields set.
	Score(ctx context.Context, req ScoreRequest) (core.QualityScore, error)
}

// AIProvider aggregates the AI services the pipeline needs.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QualityScorer returns the recipe scoring service.
	QualityScorer() QualityScorer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
