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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

const (
	// DefaultMinSimilarity is the lowest cosine similarity a hit may have.
	DefaultMinSimilarity = 0.35

	// textBoost is added when every query word appears in the recipe.
	textBoost = 0.3

	// candidateFactor widens the vector query so text boosts can reorder
	// results beyond the first maxHits.
	candidateFactor = 3
)

// Searcher finds recipes similar to a query or to another recipe.
type Searcher struct {
	recipes       storage.RecipeRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity threshold in [-1, 1].
func WithMinSimilarity(threshold float32) Option {
	return func(s *Searcher) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: min similarity %v", ErrInvalidOption, threshold)
		}
		s.minSimilarity = threshold
		return nil
	}
}

// WithEmbedder replaces the provider's embedder, e.g. with a cached one.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		if embedder != nil {
			s.embedder = embedder
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(recipes storage.RecipeRepository, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if recipes == nil {
		return nil, ErrRecipeRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		recipes:       recipes,
		embedder:      provider.Embedder(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// FindSimilar searches for recipes matching the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for recipes matching the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxHits < 1 {
		return []*core.SearchResult{}, nil
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.recipes.FindSimilar(ctx, embedding, s.minSimilarity, maxHits*candidateFactor)
	if err != nil {
		s.logger.Error("error querying for similar recipes", "err", err)
		return nil, err
	}

	ids := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.Record.ID)
	}
	monitor.AfterSemanticSearch(ids)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		monitor.SemanticHit(match.Record, match.Score)

		if containsAllQueryWords(searchableText(&match.Record.Recipe), query) {
			score += textBoost
			monitor.TextHit(match.Record)
		}

		results = append(results, &core.SearchResult{
			Record: match.Record,
			Score:  score,
		})
	}

	// Ties keep the similarity order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// Related returns the recipes closest to the recipe with the given UUID,
// excluding the recipe itself.
func (s *Searcher) Related(ctx context.Context, uuid string, maxHits int) ([]*core.SearchResult, error) {
	record, err := s.recipes.GetRecipeByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	vector := record.Vector()
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEmbedding, uuid)
	}
	if maxHits < 1 {
		return []*core.SearchResult{}, nil
	}

	matches, err := s.recipes.FindSimilar(ctx, vector, s.minSimilarity, maxHits+1)
	if err != nil {
		s.logger.Error("error querying for related recipes", "uuid", uuid, "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, maxHits)
	for _, match := range matches {
		if match.Record.ID == record.ID {
			continue
		}
		results = append(results, match)
		if len(results) == maxHits {
			break
		}
	}
	return results, nil
}
