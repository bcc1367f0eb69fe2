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

package openai

import (
	"log/slog"

	"github.com/poiesic/larder/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The embedder can be swapped for another implementation, typically the
// Hugging Face one, while scoring stays on the chat API.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	scorer   *Scorer
	logger   *slog.Logger
}

// ProviderOption customizes NewProvider.
type ProviderOption func(*Provider)

// WithEmbedder replaces the OpenAI-compatible embedder.
func WithEmbedder(embedder ai.Embedder) ProviderOption {
	return func(p *Provider) {
		p.embedder = embedder
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "openai-provider"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.embedder == nil {
		embedder, err := newEmbedder(config)
		if err != nil {
			return nil, err
		}
		p.embedder = embedder
	}

	scorer, err := newScorer(config)
	if err != nil {
		return nil, err
	}
	p.scorer = scorer
	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// QualityScorer returns the recipe scoring service.
func (p *Provider) QualityScorer() ai.QualityScorer {
	return p.scorer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
