package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	keyIngestLock = "retailsales:ingest:lock"
	ingestLockTTL = 30 * time.Minute
)

// IngestLock serializes ingestion runs across processes sharing a redis.
// Without redis it is a no-op.
type IngestLock struct {
	locker *Locker
	ttl    time.Duration
}

func NewIngestLock(client *redis.Client) *IngestLock {
	if client == nil {
		return &IngestLock{}
	}
	return &IngestLock{locker: NewLocker(client), ttl: ingestLockTTL}
}

func (l *IngestLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	if l == nil || l.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	return l.locker.Acquire(ctx, keyIngestLock, l.ttl)
}
