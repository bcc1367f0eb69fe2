package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/ingestion"
	"github.com/poiesic/larder/similarity"
	"github.com/poiesic/larder/storage"
)

// BatchOutcome counts what happened to the records of one batch.
type BatchOutcome struct {
	Updated int
	Failed  int
}

// BatchProcessor embeds a batch of records and writes the new vectors back.
type BatchProcessor struct {
	repo      storage.RecipeRepository
	embedder  ai.Embedder
	model     string
	batch     ai.BatchOptions
	dimension int
	normalize bool
	logger    *slog.Logger
}

// NewBatchProcessor creates a processor from config. Embedding calls are
// retried config.MaxRetries times with exponential backoff.
func NewBatchProcessor(repo storage.RecipeRepository, embedder ai.Embedder, config *Config, logger *slog.Logger) *BatchProcessor {
	sleeper := config.Sleeper
	if sleeper == nil {
		sleeper = backoff.TimerSleeper{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		repo: repo,
		embedder: retryingEmbedder{
			Embedder: embedder,
			sleeper:  sleeper,
			attempts: max(config.MaxRetries, 1),
			delay:    config.RetryDelay,
		},
		model: embedder.Model(),
		batch: ai.BatchOptions{
			GroupSize:  max(config.GroupSize, 1),
			GroupDelay: config.GroupDelay,
			Sleeper:    sleeper,
		},
		dimension: config.Dimension,
		normalize: config.Normalize,
		logger:    logger.With("component", "reembed-batch"),
	}
}

// Process embeds every record and stores the vectors that passed validation
// in one update. Records that fail keep their previous embedding. Only a
// canceled context or a failed update is returned as an error.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.IngestionRecord) (BatchOutcome, error) {
	var outcome BatchOutcome
	if len(records) == 0 {
		return outcome, nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = ingestion.EmbeddingText(&record.Recipe)
	}

	result, err := ai.EmbedBatch(ctx, bp.embedder, texts, bp.batch)
	if err != nil {
		return outcome, err
	}
	for _, itemErr := range result.Errors {
		bp.logger.Warn("embedding failed", "recipe", records[itemErr.Index].Recipe.Name, "err", itemErr.Err)
	}

	updated := make([]*core.IngestionRecord, 0, len(records))
	for i, vec := range result.Vectors {
		if vec == nil {
			outcome.Failed++
			continue
		}
		if err := ai.ValidateVector(vec, bp.dimension); err != nil {
			bp.logger.Warn("discarding embedding", "recipe", records[i].Recipe.Name, "err", err)
			outcome.Failed++
			continue
		}
		if bp.normalize {
			vec = similarity.Normalize(vec)
		}
		records[i].Embedding = &core.Embedding{
			Vector:     vec,
			SourceText: texts[i],
			ModelName:  bp.model,
		}
		updated = append(updated, records[i])
	}

	if len(updated) == 0 {
		return outcome, nil
	}
	if err := bp.repo.UpdateEmbeddings(ctx, updated...); err != nil {
		return outcome, fmt.Errorf("updating %d embeddings: %w", len(updated), err)
	}
	outcome.Updated = len(updated)
	return outcome, nil
}

// retryingEmbedder retries single-text embeddings that failed transiently.
// Errors ai.Retryable rejects end the loop after one call.
type retryingEmbedder struct {
	ai.Embedder
	sleeper  backoff.Sleeper
	attempts int
	delay    time.Duration
}

func (e retryingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := backoff.Retry(ctx, e.sleeper, func() error {
		v, err := e.Embedder.EmbedText(ctx, text)
		if err != nil {
			if !ai.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		vec = v
		return nil
	}, e.attempts, e.delay)
	return vec, err
}
