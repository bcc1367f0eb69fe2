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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder memoizes vectors for repeated texts.
type CachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps inner with an LRU cache holding up to size vectors.
func NewCachingEmbedder(inner Embedder, size int) (*CachingEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// EmbedText returns a cached vector or asks the wrapped embedder.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.inner.Model(), text)
	if vec, ok := c.cache.Get(key); ok {
		return slices.Clone(vec), nil
	}
	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(vec))
	return vec, nil
}

// EmbedTexts only sends cache misses to the wrapped embedder.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.inner.Model()
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(cacheKey(model, text)); ok {
			out[i] = slices.Clone(vec)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrInvalidResponse, len(missing), len(vecs))
	}
	for j, vec := range vecs {
		c.cache.Add(cacheKey(model, missing[j]), slices.Clone(vec))
		out[missingIdx[j]] = vec
	}
	return out, nil
}

// Model reports the wrapped embedder's model.
func (c *CachingEmbedder) Model() string {
	return c.inner.Model()
}

// Len is the number of cached vectors.
func (c *CachingEmbedder) Len() int {
	return c.cache.Len()
}
