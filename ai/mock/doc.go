// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder, MockScorer and MockProvider let pipeline tests run without
// network access and with deterministic results.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	scorer := mock.NewMockScorer()
//	scorer.Default = core.QualityScore{Rating: 2.5, Reasoning: "thin"}
//
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns unit-length vectors derived from the text hash
//   - MockScorer: Returns a 4.0 rating
//   - MockProvider: Aggregates both
package mock
