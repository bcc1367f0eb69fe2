package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/larder/backoff"
	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T) (*Fetcher, *backoff.RecordingSleeper) {
	t.Helper()
	sleeper := &backoff.RecordingSleeper{}
	f, err := NewFetcher(WithRequestInterval(0), WithFetchSleeper(sleeper))
	require.NoError(t, err)
	return f, sleeper
}

func TestFetcher_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "larder")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	f, sleeper := newTestFetcher(t)
	body, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Empty(t, sleeper.Delays())
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f, sleeper := newTestFetcher(t)
	body, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.Delays())
}

func TestFetcher_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)
	_, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, int32(DefaultAttempts), calls.Load())
}

func TestFetcher_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	f, sleeper := newTestFetcher(t)
	_, err := f.Get(context.Background(), server.URL)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, sleeper.Delays())
}

func TestFetcher_UnauthorizedIsConfiguration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)
	_, err := f.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestFetcher_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)
	_, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcher_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cook" || pass != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)
	path := filepath.Join(t.TempDir(), "nested", "data.csv")

	err := f.Download(context.Background(), server.URL, path, BasicAuth("cook", "wrong"))
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.NoFileExists(t, path)

	require.NoError(t, f.Download(context.Background(), server.URL, path, BasicAuth("cook", "secret")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no partial files left behind")
}

func TestFetcher_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newTestFetcher(t)
	_, err := f.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFetcher_InvalidOptions(t *testing.T) {
	_, err := NewFetcher(WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewFetcher(WithRequestInterval(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewFetcher(WithHTTPClient(nil))
	assert.ErrorIs(t, err, ErrInvalidOption)
}
