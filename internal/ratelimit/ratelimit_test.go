package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideAllowed(t *testing.T) {
	res := decide(true, 4.6, 2, 5)
	assert.True(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 4, res.Remaining)
	assert.Zero(t, res.RetryAfter)
}

func TestDecideDeniedComputesRetryAfter(t *testing.T) {
	res := decide(false, 0.5, 2, 5)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, time.Second, bucketTTL(1000, 1))
}

func TestScriptValueConversion(t *testing.T) {
	assert.Equal(t, int64(1), toInt(int64(1)))
	assert.Equal(t, int64(1), toInt("1"))
	assert.Equal(t, 3.25, toFloat("3.25"))
	assert.Equal(t, 2.0, toFloat(int64(2)))
	assert.Zero(t, toFloat(nil))
}

func TestQueryLimiterDisabledWithoutRedis(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.RateLimit.Rate = 10
	limiter := NewQueryLimiter(nil, config.StaticTuning(tuning))

	assert.False(t, limiter.Enabled())
	res, err := limiter.Allow(context.Background(), "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNilTokenBucketRefuses(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestIngestLockNoopWithoutRedis(t *testing.T) {
	release, err := NewIngestLock(nil).Acquire(context.Background())
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func TestLockerValidatesArguments(t *testing.T) {
	var l *Locker
	_, _, err := l.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.NoError(t, l.Release(context.Background(), "k", "token"))
}
