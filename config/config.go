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

// Package config loads larder settings from a YAML file with environment
// overrides for credentials.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvHFToken        = "HF_TOKEN"
	EnvHuggingFaceKey = "HUGGINGFACE_API_KEY"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvKaggleUsername = "KAGGLE_USERNAME"
	EnvKaggleKey      = "KAGGLE_KEY"
)

// DefaultDatabasePath is used when no database path is configured.
const DefaultDatabasePath = "larder.db"

// Config is the root of the YAML document.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Sources   SourcesConfig   `yaml:"sources"`
	Search    SearchConfig    `yaml:"search"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig mirrors ai.Config. Tokens normally come from the environment.
type AIConfig struct {
	EmbeddingProvider string        `yaml:"embeddingProvider"`
	EmbeddingHost     string        `yaml:"embeddingHost"`
	EmbeddingModel    string        `yaml:"embeddingModel"`
	EmbeddingToken    string        `yaml:"embeddingToken"`
	Dimension         int           `yaml:"dimension"`
	ScorerHost        string        `yaml:"scorerHost"`
	ScorerModel       string        `yaml:"scorerModel"`
	ScorerToken       string        `yaml:"scorerToken"`
	Retries           int           `yaml:"retries"`
	Timeout           time.Duration `yaml:"timeout"`
	InitialDelay      time.Duration `yaml:"initialDelay"`
	WaitForColdStart  bool          `yaml:"waitForColdStart"`
	CacheSize         int           `yaml:"cacheSize"`
}

type IngestionConfig struct {
	BatchSize      int           `yaml:"batchSize"`
	RateLimitDelay time.Duration `yaml:"rateLimitDelay"`
	CheckSourceURL bool          `yaml:"checkSourceUrl"`
	RunLogDir      string        `yaml:"runLogDir"`
	SourcePause    time.Duration `yaml:"sourcePause"`
	MaxRecords     int           `yaml:"maxRecords"`
}

type SourcesConfig struct {
	DataDir         string          `yaml:"dataDir"`
	UserAgent       string          `yaml:"userAgent"`
	RequestInterval time.Duration   `yaml:"requestInterval"`
	MealDB          MealDBConfig    `yaml:"mealdb"`
	FoodCom         FoodComConfig   `yaml:"foodcom"`
	SchemaOrg       SchemaOrgConfig `yaml:"schemaorg"`
	Web             WebConfig       `yaml:"web"`
}

type MealDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	API     string `yaml:"api"`
	Strict  bool   `yaml:"strict"`
}

type FoodComConfig struct {
	Enabled  bool     `yaml:"enabled"`
	API      string   `yaml:"api"`
	Dataset  string   `yaml:"dataset"`
	Files    []string `yaml:"files"`
	Username string   `yaml:"username"`
	Key      string   `yaml:"key"`
	Strict   bool     `yaml:"strict"`
}

type SchemaOrgConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Strict  bool   `yaml:"strict"`
}

type WebConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Name     string   `yaml:"name"`
	Listings []string `yaml:"listings"`
	Pages    int      `yaml:"pages"`
	Limit    int      `yaml:"limit"`
	Corpus   string   `yaml:"corpus"`
	Strict   bool     `yaml:"strict"`
}

type SearchConfig struct {
	MinSimilarity float32 `yaml:"minSimilarity"`
	MaxHits       int     `yaml:"maxHits"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		AI: AIConfig{
			EmbeddingProvider: aiDefaults.EmbeddingProvider,
			EmbeddingHost:     aiDefaults.EmbeddingHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			Dimension:         aiDefaults.Dimension,
			ScorerHost:        aiDefaults.ScorerHost,
			ScorerModel:       aiDefaults.ScorerModel,
			Retries:           aiDefaults.Retries,
			Timeout:           aiDefaults.Timeout,
			InitialDelay:      aiDefaults.InitialDelay,
			WaitForColdStart:  aiDefaults.WaitForColdStart,
			CacheSize:         256,
		},
		Ingestion: IngestionConfig{
			BatchSize:      10,
			RateLimitDelay: 500 * time.Millisecond,
			CheckSourceURL: true,
			RunLogDir:      "logs",
			SourcePause:    time.Second,
		},
		Sources: SourcesConfig{
			DataDir:         "data",
			RequestInterval: 2 * time.Second,
			MealDB:          MealDBConfig{Enabled: true},
			FoodCom:         FoodComConfig{Files: []string{"RAW_recipes.csv"}},
			SchemaOrg:       SchemaOrgConfig{Name: "schema.org", Path: "data/schema_org_recipes.json"},
			Web:             WebConfig{Name: "web", Pages: 1, Corpus: "data/web_recipes.json"},
		},
		Search: SearchConfig{
			MinSimilarity: 0.35,
			MaxHits:       10,
		},
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file. Errors wrap core.ErrConfiguration.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", core.ErrConfiguration, path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", core.ErrConfiguration, path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos in the file surface immediately.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides credentials with non-empty environment values.
// HF_TOKEN wins over HUGGINGFACE_API_KEY. OPENAI_API_KEY sets the scorer
// token and, with the openai provider, the embedding token.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return v
	}

	openAIKey := get(EnvOpenAIKey)
	if openAIKey != "" {
		c.AI.ScorerToken = openAIKey
	}
	if c.AI.EmbeddingProvider == ai.ProviderOpenAI {
		if openAIKey != "" {
			c.AI.EmbeddingToken = openAIKey
		}
	} else if token := firstNonEmpty(get(EnvHFToken), get(EnvHuggingFaceKey)); token != "" {
		c.AI.EmbeddingToken = token
	}

	if v := get(EnvKaggleUsername); v != "" {
		c.Sources.FoodCom.Username = v
	}
	if v := get(EnvKaggleKey); v != "" {
		c.Sources.FoodCom.Key = v
	}
}

// Validate checks the values the pipeline cannot run without. Credentials
// are checked later, by the components that need them.
func (c *Config) Validate() error {
	var problem error
	switch {
	case c.Database.Path == "":
		problem = errors.New("database.path is required")
	case c.Ingestion.BatchSize < 1:
		problem = errors.New("ingestion.batchSize must be positive")
	case c.Ingestion.RateLimitDelay < 0:
		problem = errors.New("ingestion.rateLimitDelay must not be negative")
	case c.Ingestion.SourcePause < 0:
		problem = errors.New("ingestion.sourcePause must not be negative")
	case c.Ingestion.MaxRecords < 0:
		problem = errors.New("ingestion.maxRecords must not be negative")
	case c.Sources.RequestInterval < 0:
		problem = errors.New("sources.requestInterval must not be negative")
	case c.AI.CacheSize < 0:
		problem = errors.New("ai.cacheSize must not be negative")
	case c.Search.MinSimilarity < -1 || c.Search.MinSimilarity > 1:
		problem = errors.New("search.minSimilarity must be within [-1, 1]")
	}
	if problem != nil {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, problem)
	}
	return c.AIConfig().Validate()
}

// AIConfig converts the ai section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingProvider(c.AI.EmbeddingProvider),
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingToken(c.AI.EmbeddingToken),
		ai.WithDimension(c.AI.Dimension),
		ai.WithScorerHost(c.AI.ScorerHost),
		ai.WithScorerModel(c.AI.ScorerModel),
		ai.WithScorerToken(c.AI.ScorerToken),
		ai.WithRetryPolicy(c.AI.Retries, c.AI.Timeout, c.AI.InitialDelay),
		ai.WithWaitForColdStart(c.AI.WaitForColdStart),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
