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

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// PageSize is the number of records read and stored per batch
	PageSize int

	// GroupSize is the number of embeddings requested concurrently
	GroupSize int

	// GroupDelay is waited between embedding groups
	GroupDelay time.Duration

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Dimension rejects vectors of any other length. 0 accepts any length.
	Dimension int

	// Normalize scales vectors to unit length before storing them
	Normalize bool

	// OnlyMissing skips records that already have an embedding
	OnlyMissing bool

	// Sleeper performs retry and group delays. Defaults to a real timer.
	Sleeper backoff.Sleeper
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PageSize:       DefaultPageSize,
		GroupSize:      8,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Normalize:      true,
	}
}

// Result summarizes a reembedding run.
type Result struct {
	Total   int
	Scanned int
	Updated int
	Failed  int
	Skipped int
	Elapsed time.Duration
}

// Option configures a Reembedder.
type Option func(*Reembedder)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reembedder recomputes the embeddings of every stored recipe.
type Reembedder struct {
	repo     storage.RecipeRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewReembedder creates a new reembedder. A nil config uses DefaultConfig
// and a nil progress writer discards progress output.
func NewReembedder(repo storage.RecipeRepository, embedder ai.Embedder, config *Config, progress io.Writer, opts ...Option) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRecipeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reembedder")
	return r, nil
}

// Run reembeds the stored recipes page by page. Individual embedding
// failures are counted in the result; listing or update failures and
// cancellation stop the run and are returned with the partial result.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	total, err := r.repo.CountRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting recipes: %w", err)
	}

	result := &Result{Total: total}
	if total == 0 {
		fmt.Fprintf(r.progress, "No recipes found in database (0 records)\n")
		return result, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d recipes with %s (page size: %d)\n",
		total, r.embedder.Model(), r.config.PageSize)

	processor := NewBatchProcessor(r.repo, r.embedder, r.config, r.logger)
	iterator := NewRecipeIterator(r.repo, r.config.PageSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = iterator.ForEach(ctx, func(page []*core.IngestionRecord) error {
		pending := page
		if r.config.OnlyMissing {
			pending = withoutEmbedding(page)
			result.Skipped += len(page) - len(pending)
		}

		outcome, err := processor.Process(ctx, pending)
		result.Updated += outcome.Updated
		result.Failed += outcome.Failed
		if err != nil {
			return fmt.Errorf("processing page: %w", err)
		}

		result.Scanned += len(page)
		tracker.Update(result.Scanned, result.Failed)
		return nil
	})
	result.Elapsed = tracker.Elapsed()
	if err != nil {
		r.logger.Error("reembedding stopped", "scanned", result.Scanned, "updated", result.Updated, "err", err)
		return result, err
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Reembedding complete. Updated %d of %d recipes (%d failed, %d skipped) in %v\n",
		result.Updated, total, result.Failed, result.Skipped, result.Elapsed.Round(time.Second))
	r.logger.Info("reembedding complete", "updated", result.Updated, "failed", result.Failed, "skipped", result.Skipped)

	return result, nil
}

func withoutEmbedding(records []*core.IngestionRecord) []*core.IngestionRecord {
	var out []*core.IngestionRecord
	for _, record := range records {
		if record.Embedding == nil {
			out = append(out, record)
		}
	}
	return out
}
