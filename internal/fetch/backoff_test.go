package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	r := NewResilient(nil, nil, nil, nil, Options{}, logger)

	assert.Equal(t, time.Second, r.backoff(0))
	assert.Equal(t, 2*time.Second, r.backoff(1))
	assert.Equal(t, 4*time.Second, r.backoff(2))
	assert.Equal(t, DefaultMaxDelay, r.backoff(10))
}

func TestErrorClassification(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}
	timeout := &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}

	assert.True(t, IsNetworkFailure(refused))
	assert.False(t, IsNetworkFailure(timeout))
	assert.True(t, IsTimeout(timeout))
	assert.False(t, IsNetworkFailure(&StatusError{Code: 500}))
	assert.False(t, IsNetworkFailure(ErrRateLimited))

	assert.True(t, IsTransient(refused))
	assert.True(t, IsTransient(&StatusError{Code: 503}))
	assert.True(t, IsTransient(ErrMalformed))
	assert.False(t, IsTransient(ErrRateLimited))
	assert.False(t, IsTransient(nil))
}
