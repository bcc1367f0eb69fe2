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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// DefaultBatchSize is the progress reporting interval used when none is given.
const DefaultBatchSize = 10

// IngestOptions controls a single run.
type IngestOptions struct {
	// BatchSize is how many records pass between progress reports.
	BatchSize int
	// RateLimitDelay is slept after every record except the last.
	RateLimitDelay time.Duration
	// StrictInstructions additionally rejects recipes without instructions.
	StrictInstructions bool
	// Label names the run in logs and run history, usually the source name.
	Label string
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.RateLimitDelay < 0 {
		o.RateLimitDelay = 0
	}
	return o
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Coordinator scores, embeds and stores recipes, accounting for every
// record in exactly one of success, skipped or failed.
type Coordinator struct {
	recipes        storage.RecipeRepository
	runs           storage.RunRepository
	scorer         ai.QualityScorer
	embedder       ai.Embedder
	dimension      int
	checkSourceURL bool
	checker        *DuplicateChecker
	sleeper        backoff.Sleeper
	runLogDir      string
	now            func() time.Time
	logger         *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithScorer sets the quality scorer. Without one every recipe gets the
// fallback score.
func WithScorer(scorer ai.QualityScorer) Option {
	return func(c *Coordinator) error {
		c.scorer = scorer
		return nil
	}
}

// WithEmbedder sets the embedding generator. Without one recipes are stored
// without vectors.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(c *Coordinator) error {
		c.embedder = embedder
		return nil
	}
}

// WithDimension rejects vectors whose length is not dim. Zero disables the
// length check; non-finite values are always rejected.
func WithDimension(dim int) Option {
	return func(c *Coordinator) error {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d", ErrInvalidOption, dim)
		}
		c.dimension = dim
		return nil
	}
}

// WithSourceURLCheck enables or disables duplicate detection by source URL.
// Enabled by default.
func WithSourceURLCheck(enabled bool) Option {
	return func(c *Coordinator) error {
		c.checkSourceURL = enabled
		return nil
	}
}

// WithSleeper sets the sleeper used for rate limiting.
// Default is backoff.TimerSleeper.
func WithSleeper(sleeper backoff.Sleeper) Option {
	return func(c *Coordinator) error {
		if sleeper == nil {
			sleeper = backoff.TimerSleeper{}
		}
		c.sleeper = sleeper
		return nil
	}
}

// WithRunLogDir writes a JSON run log into dir at the end of every run.
func WithRunLogDir(dir string) Option {
	return func(c *Coordinator) error {
		c.runLogDir = dir
		return nil
	}
}

// WithRunRepository saves finished runs to the run history.
func WithRunRepository(runs storage.RunRepository) Option {
	return func(c *Coordinator) error {
		c.runs = runs
		return nil
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) error {
		if now == nil {
			now = time.Now
		}
		c.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator storing into recipes.
func NewCoordinator(recipes storage.RecipeRepository, opts ...Option) (*Coordinator, error) {
	if recipes == nil {
		return nil, ErrRecipeRepositoryRequired
	}

	c := &Coordinator{
		recipes:        recipes,
		checkSourceURL: true,
		sleeper:        backoff.TimerSleeper{},
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.checker = NewDuplicateChecker(recipes, c.checkSourceURL)
	c.logger = c.logger.With("component", "ingestion")
	return c, nil
}

// Ingest processes recipes in order and returns the run statistics. It never
// fails as a whole: per-record problems end up in the statistics. Cancelling
// ctx stops the run between records and counts the rest as skipped.
func (c *Coordinator) Ingest(ctx context.Context, recipes []core.Recipe, opts IngestOptions) *core.RunStats {
	opts = opts.withDefaults()
	stats := core.NewRunStats(opts.Label, len(recipes), c.now())
	logger := c.logger.With("run", opts.Label)
	logger.Info("ingestion started", "records", len(recipes), "batch_size", opts.BatchSize)

	for i := range recipes {
		if err := ctx.Err(); err != nil {
			remaining := len(recipes) - i
			stats.Skipped += remaining
			stats.Errors = append(stats.Errors, core.RunError{
				RecipeName: recipes[i].Name,
				Error:      fmt.Sprintf("run canceled with %d records left: %v", remaining, err),
			})
			logger.Warn("ingestion canceled", "remaining", remaining)
			break
		}

		recipe := &recipes[i]
		// A started record always runs to completion.
		result, err := c.process(context.WithoutCancel(ctx), logger, recipe, opts.StrictInstructions)
		switch result {
		case outcomeSuccess:
			stats.Success++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeFailed:
			stats.AddError(recipe.Name, err)
			logger.Error("recipe failed", "recipe", recipe.Name, "error", err)
		}

		last := i == len(recipes)-1
		if (i+1)%opts.BatchSize == 0 || last {
			logger.Info("ingestion progress",
				"processed", stats.Processed(),
				"total", stats.Total,
				"success", stats.Success,
				"skipped", stats.Skipped,
				"failed", stats.Failed)
		}

		if !last && opts.RateLimitDelay > 0 {
			// A cancelled sleep is picked up at the top of the loop.
			_ = c.sleeper.Sleep(ctx, opts.RateLimitDelay)
		}
	}

	stats.Finish(c.now())
	c.recordRun(context.WithoutCancel(ctx), logger, stats)
	logger.Info("ingestion finished",
		"success", stats.Success,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration)
	return stats
}

// process runs one record through validation, dedupe, scoring, embedding
// and persistence. Only persistence problems fail a record.
func (c *Coordinator) process(ctx context.Context, logger *slog.Logger, recipe *core.Recipe, strict bool) (outcome, error) {
	if err := core.ValidateRecipe(recipe, strict); err != nil {
		logger.Debug("recipe skipped", "recipe", recipe.Name, "reason", err)
		return outcomeSkipped, nil
	}
	if issues := core.QualityIssues(recipe); len(issues) > 0 {
		logger.Debug("recipe quality issues", "recipe", recipe.Name, "issues", issues)
	}

	match, err := c.checker.Check(ctx, recipe)
	if err != nil {
		return outcomeFailed, fmt.Errorf("checking duplicates: %w", err)
	}
	if match != NoMatch {
		logger.Debug("recipe skipped", "recipe", recipe.Name, "reason", match)
		return outcomeSkipped, nil
	}

	score := c.score(ctx, logger, recipe)
	embedding := c.embed(ctx, logger, recipe)

	record := core.NewIngestionRecord(*recipe, score, embedding, c.now())
	if _, err := c.recipes.InsertRecipe(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Debug("recipe skipped", "recipe", recipe.Name, "reason", err)
			return outcomeSkipped, nil
		}
		return outcomeFailed, err
	}
	return outcomeSuccess, nil
}

func (c *Coordinator) score(ctx context.Context, logger *slog.Logger, recipe *core.Recipe) core.QualityScore {
	if c.scorer == nil {
		return core.FallbackScore()
	}
	score, err := c.scorer.Score(ctx, ai.NewScoreRequest(recipe))
	if err != nil {
		logger.Warn("quality scoring failed, using fallback", "recipe", recipe.Name, "error", err)
		return core.FallbackScore()
	}
	score.Rating = core.ClampRating(score.Rating)
	return score
}

func (c *Coordinator) embed(ctx context.Context, logger *slog.Logger, recipe *core.Recipe) *core.Embedding {
	if c.embedder == nil {
		return nil
	}
	text := EmbeddingText(recipe)
	vector, err := c.embedder.EmbedText(ctx, text)
	if err == nil {
		err = ai.ValidateVector(vector, c.dimension)
	}
	if err != nil {
		logger.Warn("embedding failed, storing without vector", "recipe", recipe.Name, "error", err)
		return nil
	}
	return &core.Embedding{
		Vector:     vector,
		SourceText: text,
		ModelName:  c.embedder.Model(),
	}
}

// recordRun writes the run log and run history. Failures are logged only.
func (c *Coordinator) recordRun(ctx context.Context, logger *slog.Logger, stats *core.RunStats) {
	if c.runLogDir != "" {
		path, err := WriteRunLog(c.runLogDir, stats)
		if err != nil {
			logger.Error("failed to write run log", "error", err)
		} else {
			stats.LogPath = path
			logger.Info("run log written", "path", path)
		}
	}
	if c.runs != nil {
		if err := c.runs.SaveRun(ctx, stats); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}
}
