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

package larder

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/ai/huggingface"
	"github.com/poiesic/larder/ai/openai"
	"github.com/poiesic/larder/ingestion"
	"github.com/poiesic/larder/reembed"
	"github.com/poiesic/larder/search"
	"github.com/poiesic/larder/storage"
	"github.com/poiesic/larder/storage/badger"
)

// Database ties the badger store to the AI services. The AI provider is
// built on first use, so commands that only read storage need no tokens.
type Database struct {
	backend  *badger.Backend
	recipes  storage.RecipeRepository
	runs     storage.RunRepository
	aiConfig *ai.Config
	logger   *slog.Logger

	providerOnce sync.Once
	provider     ai.AIProvider
	providerErr  error
	cacheSize    int
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	provider  ai.AIProvider
	inMemory  bool
	cacheSize int
	logger    *slog.Logger
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps the store in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithQueryCache caches up to size query embeddings in searchers.
func WithQueryCache(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.cacheSize = size
	}
}

func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	recipes, runs, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	db := &Database{
		backend:   backend,
		recipes:   recipes,
		runs:      runs,
		aiConfig:  options.aiConfig,
		logger:    options.logger,
		provider:  options.provider,
		cacheSize: options.cacheSize,
	}
	if db.provider != nil {
		db.providerOnce.Do(func() {})
	}
	return db, nil
}

// NewProvider builds the AI services described by config: the Hugging Face
// or OpenAI-compatible embedder and the OpenAI-compatible quality scorer.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.EmbeddingProvider == ai.ProviderOpenAI {
		return openai.NewProvider(config)
	}
	embedder, err := huggingface.NewEmbedder(config)
	if err != nil {
		return nil, err
	}
	return openai.NewProvider(config, openai.WithEmbedder(embedder))
}

// Provider returns the AI provider, building it on the first call.
func (db *Database) Provider() (ai.AIProvider, error) {
	db.providerOnce.Do(func() {
		db.provider, db.providerErr = NewProvider(db.aiConfig)
	})
	return db.provider, db.providerErr
}

func (db *Database) Close() error {
	var errs []error
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := db.recipes.Close(); err != nil {
		db.logger.Error("error closing recipe repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.runs.Close(); err != nil {
		db.logger.Error("error closing run repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) RecipeRepository() storage.RecipeRepository {
	return db.recipes
}

func (db *Database) RunRepository() storage.RunRepository {
	return db.runs
}

// NewCoordinator creates an ingestion coordinator that records its runs in
// the database. Scorer and embedder are left to opts.
func (db *Database) NewCoordinator(opts ...ingestion.Option) (*ingestion.Coordinator, error) {
	base := []ingestion.Option{
		ingestion.WithRunRepository(db.runs),
		ingestion.WithLogger(db.logger),
	}
	return ingestion.NewCoordinator(db.recipes, append(base, opts...)...)
}

// NewSearcher creates a searcher over the stored recipes. Query embeddings
// are cached when WithQueryCache was given.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	provider, err := db.Provider()
	if err != nil {
		return nil, err
	}
	base := []search.Option{search.WithLogger(db.logger)}
	if db.cacheSize > 0 {
		cached, err := ai.NewCachingEmbedder(provider.Embedder(), db.cacheSize)
		if err != nil {
			return nil, err
		}
		base = append(base, search.WithEmbedder(cached))
	}
	return search.NewSearcher(db.recipes, provider, append(base, opts...)...)
}

// NewReembedder creates a reembedder using the provider's embedder.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	provider, err := db.Provider()
	if err != nil {
		return nil, err
	}
	return reembed.NewReembedder(db.recipes, provider.Embedder(), config, progress, reembed.WithLogger(db.logger))
}
