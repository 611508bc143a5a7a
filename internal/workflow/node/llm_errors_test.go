package node

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"rate limit", errors.New("429 rate limit exceeded"), true},
		{"timeout", errors.New("request timed out"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"bad gateway", errors.New("upstream returned 502"), true},
		{"overloaded", errors.New("model overloaded, try later"), true},
		{"auth failure", errors.New("401 invalid api key"), false},
		{"bad request", errors.New("invalid request: missing messages"), false},
		{"wrapped retryable", fmt.Errorf("call failed: %w", errors.New("503 service unavailable")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
