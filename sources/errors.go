package sources

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for HTTP 404 responses. It is never retried.
	ErrNotFound = errors.New("resource not found")

	// ErrSourceMissing is returned by Load when the downloaded data is not on disk.
	ErrSourceMissing = errors.New("source data missing")

	// ErrInvalidOption is returned when a source or fetcher option is out of range.
	ErrInvalidOption = errors.New("invalid source option")
)

// StatusError is an unexpected HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
