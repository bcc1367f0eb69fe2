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

package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"golang.org/x/time/rate"
)

const (
	// DefaultRequestInterval is the minimum spacing between requests.
	DefaultRequestInterval = 2 * time.Second
	// DefaultAttempts is how many times a request is tried.
	DefaultAttempts        = 3
	// DefaultRetryDelay is the delay before the first retry; it doubles after each attempt.
	DefaultRetryDelay      = time.Second

	defaultUserAgent = "larder/1.0 (+https://github.com/poiesic/larder)"
)

// Fetcher performs paced GET requests with retries. A 404 is returned
// immediately as ErrNotFound; 429, 5xx and transport errors are retried.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	sleeper      backoff.Sleeper
	attempts     int
	initialDelay time.Duration
	userAgent    string
	logger       *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher) error

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) error {
		if client == nil {
			return fmt.Errorf("%w: nil http client", ErrInvalidOption)
		}
		f.client = client
		return nil
	}
}

// WithRequestInterval spaces requests at least interval apart.
// Zero disables pacing.
func WithRequestInterval(interval time.Duration) FetcherOption {
	return func(f *Fetcher) error {
		if interval < 0 {
			return fmt.Errorf("%w: negative request interval", ErrInvalidOption)
		}
		if interval == 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return nil
		}
		f.limiter = rate.NewLimiter(rate.Every(interval), 1)
		return nil
	}
}

// WithRetry sets the attempt count and the initial retry delay.
func WithRetry(attempts int, initialDelay time.Duration) FetcherOption {
	return func(f *Fetcher) error {
		if attempts < 1 {
			return fmt.Errorf("%w: attempts must be positive", ErrInvalidOption)
		}
		f.attempts = attempts
		f.initialDelay = initialDelay
		return nil
	}
}

// WithFetchSleeper sets the sleeper used between retries.
func WithFetchSleeper(sleeper backoff.Sleeper) FetcherOption {
	return func(f *Fetcher) error {
		f.sleeper = sleeper
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) FetcherOption {
	return func(f *Fetcher) error {
		f.userAgent = userAgent
		return nil
	}
}

// WithFetchLogger sets a custom logger.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a fetcher with the default pacing and retry policy.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		client:       &http.Client{Timeout: time.Minute},
		limiter:      rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		sleeper:      backoff.TimerSleeper{},
		attempts:     DefaultAttempts,
		initialDelay: DefaultRetryDelay,
		userAgent:    defaultUserAgent,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "fetcher")
	return f, nil
}

// RequestOption modifies an outgoing request.
type RequestOption func(*http.Request)

// BasicAuth adds HTTP basic credentials.
func BasicAuth(username, password string) RequestOption {
	return func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
}

// Get returns the body of url.
func (f *Fetcher) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	var body []byte
	err := f.retry(ctx, url, func() error {
		resp, err := f.open(ctx, url, opts)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// Download streams url into path. The file only appears once the whole
// body was received.
func (f *Fetcher) Download(ctx context.Context, url, path string, opts ...RequestOption) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.retry(ctx, url, func() error {
		resp, err := f.open(ctx, url, opts)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
		if err != nil {
			return backoff.Permanent(err)
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, resp.Body); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return backoff.Permanent(err)
		}
		return os.Rename(tmp.Name(), path)
	})
}

func (f *Fetcher) retry(ctx context.Context, url string, op func() error) error {
	attempt := 0
	return backoff.Retry(ctx, f.sleeper, func() error {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := op()
		if err != nil && !backoff.IsPermanent(err) {
			f.logger.Warn("request failed", "url", url, "attempt", attempt, "error", err)
		}
		return err
	}, f.attempts, f.initialDelay)
}

// open issues the request and classifies the status. The caller closes
// the body of a returned response.
func (f *Fetcher) open(ctx context.Context, url string, opts []RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for _, opt := range opts {
		opt(req)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrNotFound, statusErr))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", core.ErrConfiguration, statusErr))
	case statusErr.Temporary():
		return nil, statusErr
	default:
		return nil, backoff.Permanent(statusErr)
	}
}

// IsNotFound reports whether err came from a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
