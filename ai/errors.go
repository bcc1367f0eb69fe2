package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/larder/core"
)

var (
	// ErrEmptyText is returned before any request when asked to embed blank text.
	ErrEmptyText = errors.New("text to embed is empty")

	// ErrMissingCredentials is a configuration error: the service needs a token.
	ErrMissingCredentials = fmt.Errorf("%w: missing API credentials", core.ErrConfiguration)

	// ErrDimensionMismatch means the service returned a vector of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNonFiniteValue means the service returned NaN, Inf or null components.
	ErrNonFiniteValue = errors.New("embedding contains non-finite values")

	// ErrInvalidResponse means the service answered with a body that is not a vector.
	ErrInvalidResponse = errors.New("invalid embedding response")

	// ErrColdStart is matched by errors returned after the service stayed
	// loading or rate limited for every attempt.
	ErrColdStart = errors.New("embedding service unavailable (cold start or rate limited)")

	// ErrTimeout is matched by errors returned after every attempt timed out.
	ErrTimeout = errors.New("embedding request timed out")

	// ErrRequestRejected is matched by client errors (4xx) from the service.
	ErrRequestRejected = errors.New("embedding request rejected")

	// ErrRetriesExhausted is matched by errors returned after an embedder
	// used up its own attempts.
	ErrRetriesExhausted = errors.New("embedding failed")

	// ErrInvalidBatchSize is returned for batch group sizes below 1.
	ErrInvalidBatchSize = errors.New("batch group size must be at least 1")
)

// Retryable reports whether sending the same text again may succeed.
// Validation, configuration and rejected requests never do, and neither
// does an error from an embedder that already ran out of attempts.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		core.ErrConfiguration,
		ErrEmptyText,
		ErrDimensionMismatch,
		ErrNonFiniteValue,
		ErrInvalidResponse,
		ErrRequestRejected,
		ErrColdStart,
		ErrTimeout,
		ErrRetriesExhausted,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}
