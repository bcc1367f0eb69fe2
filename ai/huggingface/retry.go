package huggingface

import (
	"fmt"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/backoff"
)

// MinColdStartDelay is the shortest wait after a 503 or 429.
const MinColdStartDelay = 5 * time.Second

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeColdStart
	outcomeTimeout
	outcomeTransient
	outcomeFatal
)

// outcome classifies one finished attempt.
type outcome struct {
	kind       outcomeKind
	statusCode int
	// estimated is the service's own guess at the model load time.
	estimated time.Duration
	err       error
}

// retryState decides, after every attempt, whether to go again and how long
// to wait. It never sleeps itself.
type retryState struct {
	maxAttempts  int
	initialDelay time.Duration
	attempts     int
}

func newRetryState(retries int, initialDelay time.Duration) *retryState {
	return &retryState{maxAttempts: retries + 1, initialDelay: initialDelay}
}

// decision is what the caller should do next.
type decision struct {
	retry bool
	delay time.Duration
	// err is set when retry is false and the attempt failed.
	err error
}

// next records o and returns the decision for the following step.
func (s *retryState) next(o outcome) decision {
	s.attempts++
	switch o.kind {
	case outcomeSuccess:
		return decision{}
	case outcomeFatal:
		return decision{err: o.err}
	}

	if s.attempts >= s.maxAttempts {
		return decision{err: s.exhausted(o)}
	}

	delay := backoff.Exponential(s.initialDelay, s.attempts-1)
	if o.kind == outcomeColdStart {
		delay = max(delay, MinColdStartDelay, o.estimated)
	}
	return decision{retry: true, delay: delay}
}

func (s *retryState) exhausted(o outcome) error {
	switch o.kind {
	case outcomeColdStart:
		return &RateLimitError{Attempts: s.attempts, StatusCode: o.statusCode}
	case outcomeTimeout:
		return &TimeoutError{Attempts: s.attempts}
	default:
		return fmt.Errorf("%w after %d attempts: %w", ai.ErrRetriesExhausted, s.attempts, o.err)
	}
}
