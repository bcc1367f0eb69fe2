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
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/larder/backoff"
)

// BatchOptions controls EmbedBatch.
type BatchOptions struct {
	// GroupSize is the number of texts embedded concurrently before the barrier.
	GroupSize int

	// GroupDelay is slept after every group except the last.
	GroupDelay time.Duration

	// PoolSize bounds the worker pool. Defaults to min(GroupSize, NumCPU).
	PoolSize int

	// Sleeper performs GroupDelay. Defaults to a real timer.
	Sleeper backoff.Sleeper
}

// ItemError records a failed text by its input index.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("text %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// BatchResult holds one vector slot per input text. Failed slots are nil
// and listed in Errors in index order.
type BatchResult struct {
	Vectors [][]float32
	Errors  []ItemError
}

// Succeeded counts the texts that produced a vector.
func (r *BatchResult) Succeeded() int {
	return len(r.Vectors) - len(r.Errors)
}

// EmbedBatch embeds texts group by group. Items within a group run on an
// ants pool; the next group starts only after every item of the current one
// finished and GroupDelay elapsed. Only setup failures and context
// cancellation are returned as errors; per-item failures land in the result.
func EmbedBatch(ctx context.Context, embedder Embedder, texts []string, opts BatchOptions) (*BatchResult, error) {
	if opts.GroupSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if opts.Sleeper == nil {
		opts.Sleeper = backoff.TimerSleeper{}
	}
	poolSize := opts.PoolSize
	if poolSize < 1 {
		poolSize = min(opts.GroupSize, runtime.NumCPU())
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating embedding pool: %w", err)
	}
	defer pool.Release()

	result := &BatchResult{Vectors: make([][]float32, len(texts))}
	errs := make([]error, len(texts))

	for start := 0; start < len(texts); start += opts.GroupSize {
		if err := ctx.Err(); err != nil {
			collectErrors(result, errs)
			return result, err
		}
		end := min(start+opts.GroupSize, len(texts))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				vec, err := embedder.EmbedText(ctx, texts[i])
				if err != nil {
					errs[i] = err
					return
				}
				result.Vectors[i] = vec
			})
			if submitErr != nil {
				wg.Done()
				errs[i] = submitErr
			}
		}
		wg.Wait()

		if end < len(texts) && opts.GroupDelay > 0 {
			if err := opts.Sleeper.Sleep(ctx, opts.GroupDelay); err != nil {
				collectErrors(result, errs)
				return result, err
			}
		}
	}

	collectErrors(result, errs)
	return result, nil
}

func collectErrors(result *BatchResult, errs []error) {
	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Index: i, Err: err})
		}
	}
}
