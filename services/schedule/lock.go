package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingLocker serializes bookings of one provider. The returned release
// function must be called exactly once.
type BookingLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock that was taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SETNX lock shared by every instance using the same Redis.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	wait      time.Duration
	pollEvery time.Duration
	logger    *zap.Logger
}

// NewRedisLocker holds locks for at most ttl and waits up to ttl to take one.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, wait: ttl, pollEvery: 50 * time.Millisecond, logger: logger}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(l.pollEvery):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger.Error("Failed to release booking lock", zap.String("key", key), zap.Error(err))
	}
}

// LocalLocker serializes bookings within one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: map[string]chan struct{}{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}
}
