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

package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
)

const maxErrorBody = 512

// Embedder implements ai.Embedder against the Hugging Face feature-extraction
// inference API.
type Embedder struct {
	client       *http.Client
	endpoint     string
	model        string
	token        string
	dimension    int
	retries      int
	timeout      time.Duration
	initialDelay time.Duration
	waitForModel bool
	sleeper      backoff.Sleeper
	logger       *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithHTTPClient sets the HTTP client. Default is a client without a global
// timeout; each attempt gets its own deadline.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Embedder) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		e.client = client
		return nil
	}
}

// WithSleeper sets how backoff delays are waited out.
func WithSleeper(sleeper backoff.Sleeper) Option {
	return func(e *Embedder) error {
		if sleeper == nil {
			return errors.New("sleeper cannot be nil")
		}
		e.sleeper = sleeper
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "hf-embedder")
		return nil
	}
}

// NewEmbedder creates an embedder for config.EmbeddingModel. A missing
// token is a configuration error.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config, opts ...Option) (ai.Embedder, error) {
	return newEmbedder(config, opts...)
}

func newEmbedder(config *ai.Config, opts ...Option) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(config.EmbeddingToken) == "" {
		return nil, ai.ErrMissingCredentials
	}

	e := &Embedder{
		client:       &http.Client{},
		endpoint:     config.EmbeddingHost + "/" + config.EmbeddingModel,
		model:        config.EmbeddingModel,
		token:        config.EmbeddingToken,
		dimension:    config.Dimension,
		retries:      config.Retries,
		timeout:      config.Timeout,
		initialDelay: config.InitialDelay,
		waitForModel: config.WaitForColdStart,
		sleeper:      backoff.TimerSleeper{},
		logger:       slog.Default().With("component", "hf-embedder"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
		}
	}
	return e, nil
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type request struct {
	Inputs  any            `json:"inputs"`
	Options requestOptions `json:"options"`
}

// EmbedText returns the vector for text. Blank text fails before any request.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ai.ErrEmptyText
	}

	body, err := e.post(ctx, request{Inputs: text, Options: requestOptions{WaitForModel: e.waitForModel}})
	if err != nil {
		return nil, err
	}
	vec, err := decodeSingle(body)
	if err != nil {
		return nil, err
	}
	if err := ai.ValidateVector(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedTexts sends all texts in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ai.ErrEmptyText
		}
	}

	body, err := e.post(ctx, request{Inputs: texts, Options: requestOptions{WaitForModel: e.waitForModel}})
	if err != nil {
		return nil, err
	}
	vecs, err := decodeMany(body, len(texts))
	if err != nil {
		return nil, err
	}
	for i, vec := range vecs {
		if err := ai.ValidateVector(vec, e.dimension); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return vecs, nil
}

// Model names the embedding model.
func (e *Embedder) Model() string {
	return e.model
}

// post runs the retry loop and returns the body of the first 200 response.
func (e *Embedder) post(ctx context.Context, payload request) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	state := newRetryState(e.retries, e.initialDelay)
	for {
		body, o := e.attempt(ctx, encoded)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := state.next(o)
		if o.kind == outcomeSuccess {
			return body, nil
		}
		if !d.retry {
			e.logger.Warn("embedding request failed", "attempts", state.attempts, "err", d.err)
			return nil, d.err
		}

		e.logger.Debug("retrying embedding request",
			"attempt", state.attempts,
			"status", o.statusCode,
			"delay", d.delay,
			"err", o.err)
		if err := e.sleeper.Sleep(ctx, d.delay); err != nil {
			return nil, err
		}
	}
}

// attempt performs one request under its own deadline and classifies it.
func (e *Embedder) attempt(ctx context.Context, encoded []byte) ([]byte, outcome) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, e.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, outcome{kind: outcomeFatal, err: err}
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, outcome{kind: outcomeTimeout, err: err}
		}
		return nil, outcome{kind: outcomeTransient, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, outcome{kind: outcomeTimeout, err: err}
		}
		return nil, outcome{kind: outcomeTransient, err: err}
	}

	return body, classify(resp.StatusCode, body)
}

func classify(status int, body []byte) outcome {
	switch {
	case status == http.StatusOK:
		return outcome{kind: outcomeSuccess, statusCode: status}
	case status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests:
		return outcome{kind: outcomeColdStart, statusCode: status, estimated: estimatedTime(body), err: statusError(status, body)}
	case status >= 500:
		return outcome{kind: outcomeTransient, statusCode: status, err: statusError(status, body)}
	default:
		return outcome{kind: outcomeFatal, statusCode: status, err: statusError(status, body)}
	}
}

func statusError(status int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &StatusError{StatusCode: status, Body: text}
}

// estimatedTime reads the "estimated_time" seconds a loading model reports.
func estimatedTime(body []byte) time.Duration {
	var loading struct {
		EstimatedTime float64 `json:"estimated_time"`
	}
	if err := json.Unmarshal(body, &loading); err != nil || loading.EstimatedTime <= 0 {
		return 0
	}
	return time.Duration(loading.EstimatedTime * float64(time.Second))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
