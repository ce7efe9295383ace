package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503, URL: "https://example.com"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("bad input")
	err := Do(context.Background(), fastConfig(), "op", func(context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(context.Context) error {
		calls++
		return &StatusError{Code: 429, URL: "https://example.com"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.Code)
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Config{Attempts: 5, Backoff: time.Second}, "op", func(context.Context) error {
		calls++
		cancel()
		return &StatusError{Code: 503, URL: "https://example.com"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastConfig(), "op", func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", &StatusError{Code: 500, URL: "https://example.com"}
		}
		return "body", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "body", got)
	assert.Equal(t, 2, calls)
}

func TestTransient_Classification(t *testing.T) {
	t.Parallel()

	assert.False(t, Transient(nil))
	assert.False(t, Transient(errors.New("parse failure")))
	assert.False(t, Transient(&StatusError{Code: 404, URL: "u"}))

	assert.True(t, Transient(&StatusError{Code: 503, URL: "u"}))
	assert.True(t, Transient(&StatusError{Code: 429, URL: "u"}))
	assert.True(t, Transient(syscall.ECONNRESET))
	assert.True(t, Transient(&net.DNSError{Err: "timeout", IsTimeout: true}))
	assert.True(t, Transient(errors.New("read tcp: i/o timeout")))
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, RetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 403, 404} {
		assert.False(t, RetryableStatus(code), "status %d", code)
	}
}
