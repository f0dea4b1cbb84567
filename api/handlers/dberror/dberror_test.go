package dberror

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp 127.0.0.1:5432: connection refused"), ErrorTypeConnectivity},
		{errors.New("unexpected EOF"), ErrorTypeConnectivity},
		{errors.New("FATAL: the database system is starting up"), ErrorTypeConnectivity},
		{errors.New("pool is closed"), ErrorTypeConnectivity},
		{context.DeadlineExceeded, ErrorTypeTimeout},
		{errors.New("ERROR: canceling statement due to statement timeout"), ErrorTypeTimeout},
		{errors.New("FATAL: password authentication failed for user"), ErrorTypeAuth},
		{errors.New("ERROR: permission denied for table prices"), ErrorTypeAuth},
		{errors.New(`ERROR: syntax error at or near "SELCT"`), ErrorTypeQuery},
		{errors.New(`ERROR: column "yearz" does not exist`), ErrorTypeQuery},
		{errors.New("something else entirely"), ErrorTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "error: %v", tt.err)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("connection refused")))
	assert.False(t, IsTransient(errors.New("syntax error")))
	assert.False(t, IsTransient(nil))
	// Cancelled contexts are the caller's decision, never retried.
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(fmt.Errorf("query: %w", context.DeadlineExceeded)))
}

func TestUserMessageHidesSQL(t *testing.T) {
	msg := UserMessage(errors.New(`ERROR: syntax error in "SELECT secret FROM users"`))
	assert.NotContains(t, msg, "SELECT")
	assert.NotEmpty(t, msg)
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		result, err := Retry(context.Background(), cfg, func() (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("connection refused")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up on permanent errors immediately", func(t *testing.T) {
		attempts := 0
		_, err := Retry(context.Background(), cfg, func() (string, error) {
			attempts++
			return "", errors.New("syntax error")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		attempts := 0
		_, err := Retry(context.Background(), cfg, func() (string, error) {
			attempts++
			return "", errors.New("connection reset")
		})
		require.Error(t, err)
		assert.Equal(t, cfg.MaxAttempts, attempts)
	})
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, calculateBackoff(200*time.Millisecond, 2*time.Second, 1))
	assert.Equal(t, 800*time.Millisecond, calculateBackoff(200*time.Millisecond, 2*time.Second, 2))
	assert.Equal(t, 2*time.Second, calculateBackoff(200*time.Millisecond, 2*time.Second, 10))
}
