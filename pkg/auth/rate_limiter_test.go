package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_Allow(t *testing.T) {
	limiter := NewTokenBucketLimiter(2, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, allowed, "bucket should be empty after maxTokens requests")

	// Other keys keep their own buckets.
	allowed, err = limiter.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_Reset(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "client"))

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed, "reset should refill the bucket")
}

func TestNewIPRateLimiter_ClampsNonPositiveRate(t *testing.T) {
	for _, rate := range []int{0, -5} {
		limiter := NewIPRateLimiter(rate)

		allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "clamped limiter should still admit the first request")

		allowed, err = limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, allowed, "clamped rate is one request per minute")
	}
}
