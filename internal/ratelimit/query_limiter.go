package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/retailsales/internal/config"
)

const keyQueryClient = "retailsales:ratelimit:query:%s"

// QueryLimiter applies a per-client token bucket to sales queries. Rate and
// burst are read from tuning on every call so reloads take effect at once.
type QueryLimiter struct {
	bucket *TokenBucket
	tuning *config.TuningHolder
}

func NewQueryLimiter(client *redis.Client, tuning *config.TuningHolder) *QueryLimiter {
	if client == nil {
		return &QueryLimiter{tuning: tuning}
	}
	return &QueryLimiter{bucket: NewTokenBucket(client), tuning: tuning}
}

// Enabled reports whether redis is configured and a positive rate is set.
func (l *QueryLimiter) Enabled() bool {
	return l != nil && l.bucket != nil && l.tuning != nil && l.tuning.Get().RateLimit.Rate > 0
}

func (l *QueryLimiter) Allow(ctx context.Context, clientID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	rl := l.tuning.Get().RateLimit
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQueryClient, clientID), rl.Rate, rl.Burst)
}
