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

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/ingestion"
)

// DefaultSourcePause separates consecutive sources.
const DefaultSourcePause = time.Second

// Source is a recipe source the orchestrator can run.
type Source interface {
	// Name identifies the source in logs and summaries.
	Name() string
	// Strict sources reject recipes without instructions.
	Strict() bool
	// Available reports whether downloaded data is already on disk.
	Available() bool
	// Download fetches the source data.
	Download(ctx context.Context) error
	// Load normalizes the downloaded data.
	Load(ctx context.Context) ([]core.Recipe, error)
}

// Ingester stores normalized recipes.
type Ingester interface {
	Ingest(ctx context.Context, recipes []core.Recipe, opts ingestion.IngestOptions) *core.RunStats
}

// SourceSummary is the outcome of one source.
type SourceSummary struct {
	Name string
	// Success is false when the source failed as a whole or any record failed.
	Success bool
	// Failed is the number of records that could not be stored.
	Failed int
	// Count is the number of recipes handed to ingestion.
	Count    int
	Stats    *core.RunStats
	Coverage core.Coverage
	Err      error
}

// Summary is the outcome of a run.
type Summary struct {
	Sources []SourceSummary
	// Success is true when every source succeeded.
	Success bool
}

// Orchestrator sequences sources through ingestion.
type Orchestrator struct {
	ingester       Ingester
	skipDownload   bool
	maxRecords     int
	batchSize      int
	rateLimitDelay time.Duration
	pause          time.Duration
	sleeper        backoff.Sleeper
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithSkipDownload reuses data already on disk instead of downloading it.
func WithSkipDownload(skip bool) Option {
	return func(o *Orchestrator) error {
		o.skipDownload = skip
		return nil
	}
}

// WithMaxRecords caps how many recipes of each source are ingested.
// Zero means no cap.
func WithMaxRecords(n int) Option {
	return func(o *Orchestrator) error {
		if n < 0 {
			return fmt.Errorf("%w: max records %d", ErrInvalidOption, n)
		}
		o.maxRecords = n
		return nil
	}
}

// WithBatchSize sets the progress reporting interval passed to ingestion.
func WithBatchSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size %d", ErrInvalidOption, size)
		}
		o.batchSize = size
		return nil
	}
}

// WithRateLimitDelay sets the delay between ingested records.
func WithRateLimitDelay(delay time.Duration) Option {
	return func(o *Orchestrator) error {
		if delay < 0 {
			return fmt.Errorf("%w: negative rate limit delay", ErrInvalidOption)
		}
		o.rateLimitDelay = delay
		return nil
	}
}

// WithSourcePause sets the pause between sources.
func WithSourcePause(pause time.Duration) Option {
	return func(o *Orchestrator) error {
		o.pause = pause
		return nil
	}
}

// WithSleeper sets the sleeper used for the pause between sources.
func WithSleeper(sleeper backoff.Sleeper) Option {
	return func(o *Orchestrator) error {
		if sleeper == nil {
			sleeper = backoff.TimerSleeper{}
		}
		o.sleeper = sleeper
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an orchestrator feeding ingester.
func New(ingester Ingester, opts ...Option) (*Orchestrator, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	o := &Orchestrator{
		ingester:  ingester,
		batchSize: ingestion.DefaultBatchSize,
		pause:     DefaultSourcePause,
		sleeper:   backoff.TimerSleeper{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o, nil
}

// Run processes sources in order. A failing source is recorded in the
// summary and the run continues, except for configuration errors, which
// abort the run. Cancellation stops the run after the current source.
func (o *Orchestrator) Run(ctx context.Context, sources []Source) (*Summary, error) {
	summary := &Summary{Success: true}

	for i, source := range sources {
		if i > 0 && o.pause > 0 {
			if err := o.sleeper.Sleep(ctx, o.pause); err != nil {
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := o.runSource(ctx, source)
		summary.Sources = append(summary.Sources, result)
		if !result.Success {
			summary.Success = false
		}
		if errors.Is(result.Err, core.ErrConfiguration) {
			return summary, result.Err
		}
	}

	o.logger.Info("run finished", "sources", len(summary.Sources), "success", summary.Success)
	return summary, nil
}

func (o *Orchestrator) runSource(ctx context.Context, source Source) SourceSummary {
	name := source.Name()
	logger := o.logger.With("source", name)
	result := SourceSummary{Name: name}

	fail := func(stage string, err error) SourceSummary {
		result.Err = fmt.Errorf("%s %s: %w", stage, name, err)
		logger.Error("source failed", "stage", stage, "error", err)
		return result
	}

	if o.skipDownload && source.Available() {
		logger.Info("using downloaded data")
	} else {
		logger.Info("downloading")
		if err := source.Download(ctx); err != nil {
			return fail("download", err)
		}
	}

	recipes, err := source.Load(ctx)
	if err != nil {
		return fail("load", err)
	}
	if o.maxRecords > 0 && len(recipes) > o.maxRecords {
		logger.Info("capping records", "loaded", len(recipes), "max", o.maxRecords)
		recipes = recipes[:o.maxRecords]
	}
	result.Count = len(recipes)
	result.Coverage = core.MeasureCoverage(recipes)
	logger.Info("recipes loaded",
		"count", result.Count,
		"with_images", result.Coverage.WithImages,
		"with_prep_time", result.Coverage.WithPrepTime,
		"with_cook_time", result.Coverage.WithCookTime,
		"with_servings", result.Coverage.WithServings)

	stats := o.ingester.Ingest(ctx, recipes, ingestion.IngestOptions{
		BatchSize:          o.batchSize,
		RateLimitDelay:     o.rateLimitDelay,
		StrictInstructions: source.Strict(),
		Label:              name,
	})
	result.Stats = stats
	result.Failed = stats.Failed
	result.Success = stats.Failed == 0
	return result
}
