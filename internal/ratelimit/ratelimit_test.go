package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLockerGrantsImmediately(t *testing.T) {
	var l *Locker
	release, err := l.Acquire(context.Background(), "order:1", time.Second, time.Second)
	require.NoError(t, err)
	assert.NotPanics(t, release)
	assert.NoError(t, l.Release(context.Background(), "order:1", "token"))
}

func TestNilConstructors(t *testing.T) {
	assert.Nil(t, NewLocker(nil))
	assert.Nil(t, NewTokenBucket(nil))
}

func TestPublicLimiterDisabledAllows(t *testing.T) {
	limiter := NewPublicLimiter(config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}, nil)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "orders", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNilTokenBucketErrors(t *testing.T) {
	var b *TokenBucket
	_, err := b.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestScriptValueConversion(t *testing.T) {
	assert.Equal(t, int64(1), toInt64(int64(1)))
	assert.Equal(t, 2.5, toFloat64("2.5"))
	assert.Equal(t, 0.0, toFloat64(nil))
}
