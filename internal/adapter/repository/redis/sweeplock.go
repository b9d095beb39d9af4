package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SweepLock is a best-effort distributed lock for the scheduled sweeps so
// that only one instance runs a given sweep per day.
type SweepLock struct {
	client *redis.Client
	prefix string
}

// NewSweepLock creates a new SweepLock.
func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{
		client: client,
		prefix: "sweep:lock:",
	}
}

// Acquire takes the named lock for the TTL. Returns false when another
// holder already has it.
func (l *SweepLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+name, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// Release drops the named lock early. Locks also expire on their own, so a
// crashed holder never blocks the next day's run.
func (l *SweepLock) Release(ctx context.Context, name string) error {
	return l.client.Del(ctx, l.prefix+name).Err()
}
