package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "http 429", err: errors.New("API error 429: too many requests"), want: true},
		{name: "resource exhausted", err: errors.New("rpc error: RESOURCE_EXHAUSTED"), want: true},
		{name: "quota message", err: errors.New("quota exceeded for model"), want: true},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimitError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{name: "nil error", err: nil, want: 0},
		{name: "please retry phrasing", err: errors.New("429: Please retry in 7s"), want: 7 * time.Second},
		{name: "retryDelay field", err: errors.New("retryDelay: 12s"), want: 12 * time.Second},
		{name: "fractional seconds", err: errors.New("Please retry in 2.5s"), want: 2500 * time.Millisecond},
		{name: "no delay present", err: errors.New("429: too many requests"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRetryDelay(tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	config := NewDefaultRetryConfig()

	// Exponential growth from the initial backoff
	assert.Equal(t, 5*time.Second, config.CalculateBackoff(0, 0))
	assert.Equal(t, 10*time.Second, config.CalculateBackoff(1, 0))
	assert.Equal(t, 20*time.Second, config.CalculateBackoff(2, 0))

	// API-provided delay becomes the base, plus a small buffer
	assert.Equal(t, 9*time.Second, config.CalculateBackoff(0, 7*time.Second))

	// Capped at the maximum
	assert.Equal(t, DefaultMaxBackoff, config.CalculateBackoff(10, 0))
}
