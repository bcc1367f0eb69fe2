// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ai provides abstractions for the AI services used by the
// ingestion pipeline: text embeddings and recipe quality scoring.
//
// The core and ingestion packages depend on these interfaces, never on a
// concrete client:
//
//   - Embedder: Generates vector embeddings from text
//   - QualityScorer: Rates a recipe from 0 to 5 with a short justification
//   - AIProvider: Aggregates both services for convenient initialization
//
// # Implementation Packages
//
//   - ai/huggingface: Hosted feature-extraction embedder with cold-start aware retries
//   - ai/openai: Scorer and alternate embedder for OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, huggingface.NewEmbedder, etc.)
// return INTERFACE types. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockScorer) return CONCRETE types so tests can inject behavior
// and inspect call counts.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//	mockEmbed := mock.NewMockEmbedder()           // returns *mock.MockEmbedder
//
// # Helpers
//
// EmbedBatch embeds many texts in bounded groups on an ants pool.
// NewCachingEmbedder memoizes vectors for repeated texts. ValidateVector
// enforces the configured dimension and rejects non-finite components.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingToken(os.Getenv("HF_TOKEN")))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Spicy Arrabiata Penne")
//	score, err := provider.QualityScorer().Score(ctx, ai.ScoreRequest{Name: "Spicy Arrabiata Penne"})
package ai
