package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialRetryPolicyShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(2, 10*time.Millisecond, 100*time.Millisecond)
	transport := &NetworkError{Endpoint: "sections", Err: errors.New("reset")}

	assert.False(t, p.ShouldRetry(nil, 0))
	assert.True(t, p.ShouldRetry(transport, 0))
	assert.True(t, p.ShouldRetry(fmt.Errorf("wrapped: %w", transport), 1))
	assert.False(t, p.ShouldRetry(transport, 2), "attempt budget exhausted")
	assert.True(t, p.ShouldRetry(&NetworkError{StatusCode: http.StatusTooManyRequests}, 0))
	assert.True(t, p.ShouldRetry(&NetworkError{StatusCode: http.StatusInternalServerError}, 0))
	assert.False(t, p.ShouldRetry(&NetworkError{StatusCode: http.StatusNotFound}, 0))
	assert.False(t, p.ShouldRetry(&MalformedResponseError{Endpoint: "sections"}, 0))
	assert.False(t, p.ShouldRetry(context.Canceled, 0))
	assert.False(t, p.ShouldRetry(errors.New("plain"), 0))
}

func TestExponentialRetryPolicyBackoffBounds(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(5, 10*time.Millisecond, 40*time.Millisecond)
	for attempt := 0; attempt < 6; attempt++ {
		d := p.Backoff(attempt)
		assert.GreaterOrEqual(t, d, 5*time.Millisecond)
		assert.LessOrEqual(t, d, 40*time.Millisecond)
	}
}

func TestNewExponentialRetryPolicyDefaults(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(-1, 0, 0)
	assert.Equal(t, 0, p.maxRetries)
	assert.Equal(t, 250*time.Millisecond, p.baseDelay)
	assert.Equal(t, 250*time.Millisecond, p.maxDelay)
}
