package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKey        = "user-import:lock"
	defaultRetryEvery = 250 * time.Millisecond
	defaultTTL        = 15 * time.Minute
)

// Deletes or extends the key only while it still holds our token.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisImportLock serializes imports across every process sharing one Redis.
// The key expires after ttl unless the holder keeps refreshing it, so a
// crashed process cannot block imports forever.
type RedisImportLock struct {
	client     *redis.Client
	key        string
	ttl        time.Duration
	retryEvery time.Duration
}

func NewRedisImportLock(client *redis.Client, ttl time.Duration) *RedisImportLock {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisImportLock{
		client:     client,
		key:        defaultKey,
		ttl:        ttl,
		retryEvery: defaultRetryEvery,
	}
}

// Acquire polls until the key is set or ctx is done.
func (l *RedisImportLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire import lock: %w", err)
		}
		if ok {
			return l.hold(token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisImportLock) hold(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		l.refresh(token, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				slog.Error("release import lock", "error", err)
			}
		})
	}
}

func (l *RedisImportLock) refresh(token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
			n, err := refreshScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				slog.Warn("refresh import lock", "error", err)
				continue
			}
			if n == 0 {
				slog.Warn("import lock lost before release", "key", l.key)
				return
			}
		}
	}
}
