package huggingface

import (
	"fmt"

	"github.com/poiesic/larder/ai"
)

// RateLimitError is returned when every attempt was answered with 503
// (model loading) or 429 (rate limited).
type RateLimitError struct {
	Attempts   int
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v after %d attempts (last status %d)", ai.ErrColdStart, e.Attempts, e.StatusCode)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ai.ErrColdStart
}

// TimeoutError is returned when the last attempt timed out.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v after %d attempts", ai.ErrTimeout, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ai.ErrTimeout
}

// StatusError carries an unexpected HTTP status and a prefix of the body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("embedding service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("embedding service returned status %d: %s", e.StatusCode, e.Body)
}

// Is matches ai.ErrRequestRejected for client errors.
func (e *StatusError) Is(target error) bool {
	return target == ai.ErrRequestRejected && e.StatusCode >= 400 && e.StatusCode < 500
}
