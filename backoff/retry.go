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

package backoff

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Retry gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// MaxDelay caps every delay returned by Exponential.
const MaxDelay = 10 * time.Minute

// Exponential returns base * 2^attempt for a zero-based attempt, saturating
// at MaxDelay.
func Exponential(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if base >= MaxDelay {
		return MaxDelay
	}
	delay := base
	for i := 0; i < attempt && delay > 0; i++ {
		if delay > MaxDelay/2 {
			return MaxDelay
		}
		delay *= 2
	}
	return delay
}

// Retry retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Errors wrapped with Permanent end the loop at once and are returned unwrapped.
// Returns the error from the last attempt if all attempts fail.
func Retry(ctx context.Context, sleeper Sleeper, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		if attempt == maxAttempts {
			break
		}

		if err := sleeper.Sleep(ctx, Exponential(baseDelay, attempt-1)); err != nil {
			return err
		}
	}

	return lastErr
}
