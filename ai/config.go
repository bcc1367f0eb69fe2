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

package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/larder/core"
)

// Embedding provider names accepted in Config.EmbeddingProvider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

const (
	DefaultHuggingFaceHost = "https://api-inference.huggingface.co/pipeline/feature-extraction"
	DefaultEmbeddingModel  = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultDimension       = 384
	DefaultScorerHost      = "http://localhost:11434/v1"
	DefaultScorerModel     = "qwen2.5:3b"

	// MaxRetries bounds Config.Retries.
	MaxRetries = 10
)

// Config holds configuration for the embedding and scoring services.
type Config struct {
	// EmbeddingProvider selects the embedder implementation:
	// "huggingface" (default) or "openai" for any OpenAI-compatible server.
	EmbeddingProvider string

	// EmbeddingHost is the base URL for the embedding service API.
	// For Hugging Face the model name is appended as a path segment.
	EmbeddingHost string

	// EmbeddingModel is the model identifier used for text embeddings.
	EmbeddingModel string

	// EmbeddingToken authenticates embedding requests.
	EmbeddingToken string

	// Dimension is the expected embedding length. Every vector is checked against it.
	Dimension int

	// ScorerHost is the base URL of the OpenAI-compatible chat API used for scoring.
	ScorerHost string

	// ScorerModel is the chat model used to rate recipes.
	ScorerModel string

	// ScorerToken authenticates scoring requests. Local servers accept any value.
	ScorerToken string

	// Retries is the number of retries after the first embedding attempt.
	Retries int

	// Timeout bounds a single embedding request.
	Timeout time.Duration

	// InitialDelay is the base of the exponential backoff between attempts.
	InitialDelay time.Duration

	// WaitForColdStart asks the service to block until the model is loaded.
	WaitForColdStart bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingProvider selects the embedder implementation.
func WithEmbeddingProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingProvider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingToken sets the embedding API token.
func WithEmbeddingToken(token string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingToken = token
	}
}

// WithDimension sets the expected vector length.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithScorerHost sets the scoring service host URL.
func WithScorerHost(host string) ConfigOption {
	return func(c *Config) {
		c.ScorerHost = host
	}
}

// WithScorerModel sets the scoring model identifier.
func WithScorerModel(model string) ConfigOption {
	return func(c *Config) {
		c.ScorerModel = model
	}
}

// WithScorerToken sets the scoring API token.
func WithScorerToken(token string) ConfigOption {
	return func(c *Config) {
		c.ScorerToken = token
	}
}

// WithRetryPolicy sets retries, per-request timeout and initial backoff delay.
func WithRetryPolicy(retries int, timeout, initialDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.Retries = retries
		c.Timeout = timeout
		c.InitialDelay = initialDelay
	}
}

// WithWaitForColdStart toggles the wait_for_model request option.
func WithWaitForColdStart(wait bool) ConfigOption {
	return func(c *Config) {
		c.WaitForColdStart = wait
	}
}

// DefaultConfig returns a Config for the hosted Hugging Face inference API
// and a local OpenAI-compatible scorer.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingProvider: ProviderHuggingFace,
		EmbeddingHost:     DefaultHuggingFaceHost,
		EmbeddingModel:    DefaultEmbeddingModel,
		Dimension:         DefaultDimension,
		ScorerHost:        DefaultScorerHost,
		ScorerModel:       DefaultScorerModel,
		Retries:           3,
		Timeout:           30 * time.Second,
		InitialDelay:      time.Second,
		WaitForColdStart:  true,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingToken(os.Getenv("HF_TOKEN")),
//	    WithScorerModel("llama3.2"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix; the Hugging Face host only
// loses its trailing slash.
func (c *Config) Normalize() {
	c.EmbeddingProvider = strings.ToLower(strings.TrimSpace(c.EmbeddingProvider))
	if c.EmbeddingProvider == "" {
		c.EmbeddingProvider = ProviderHuggingFace
	}
	if c.EmbeddingProvider == ProviderOpenAI {
		c.EmbeddingHost = withV1(c.EmbeddingHost)
	} else {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
	}
	c.ScorerHost = withV1(c.ScorerHost)
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Errors wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	c.Normalize()

	var problem error
	switch {
	case c.EmbeddingProvider != ProviderHuggingFace && c.EmbeddingProvider != ProviderOpenAI:
		problem = fmt.Errorf("unknown embedding provider %q", c.EmbeddingProvider)
	case c.EmbeddingHost == "":
		problem = errors.New("EmbeddingHost is required")
	case c.EmbeddingModel == "":
		problem = errors.New("EmbeddingModel is required")
	case c.Dimension < 1:
		problem = errors.New("Dimension must be positive")
	case c.Retries < 0:
		problem = errors.New("Retries must not be negative")
	case c.Retries > MaxRetries:
		problem = fmt.Errorf("Retries must not exceed %d", MaxRetries)
	case c.Timeout <= 0:
		problem = errors.New("Timeout must be positive")
	case c.InitialDelay < 0:
		problem = errors.New("InitialDelay must not be negative")
	}
	if problem != nil {
		return fmt.Errorf("%w: ai config: %w", core.ErrConfiguration, problem)
	}
	return nil
}

// ValidateScorer checks the scorer settings. Scoring is optional, so these
// are only checked when a scorer is built.
func (c *Config) ValidateScorer() error {
	c.Normalize()
	if c.ScorerHost == "" {
		return fmt.Errorf("%w: ai config: ScorerHost is required", core.ErrConfiguration)
	}
	if c.ScorerModel == "" {
		return fmt.Errorf("%w: ai config: ScorerModel is required", core.ErrConfiguration)
	}
	return nil
}
