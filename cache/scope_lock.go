package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Articulate/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	scopeLockTTL   = 5 * time.Second       // 持有者崩溃后锁自动过期
	scopeLockWait  = 3 * time.Second       // 等待锁的最长时间
	scopeLockRetry = 25 * time.Millisecond // 轮询间隔
)

// ErrLockTimeout is returned when a scope stays locked longer than the wait budget.
var ErrLockTimeout = errors.New("scope lock wait timed out")

// 仅当值仍是自己的 token 时才删除，避免释放别人重新获取的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ScopeLock 基于 Redis SET NX 的互斥锁，用于串行化同一作用域的练习集编号
type ScopeLock struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewScopeLock 创建作用域锁
func NewScopeLock(client *redis.Client) *ScopeLock {
	return &ScopeLock{client: client, ttl: scopeLockTTL, wait: scopeLockWait, retry: scopeLockRetry}
}

// WithTimings overrides ttl and wait; used by tests and the CLI.
func (l *ScopeLock) WithTimings(ttl, wait time.Duration) *ScopeLock {
	cp := *l
	cp.ttl, cp.wait = ttl, wait
	return &cp
}

// Lock blocks until key is acquired, ctx ends, or the wait budget runs out.
func (l *ScopeLock) Lock(ctx context.Context, key string) (func(), error) {
	if l.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire scope lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *ScopeLock) release(key, token string) {
	// 请求上下文可能已取消，释放时使用独立的超时
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		logger.Warn("failed to release scope lock",
			logger.String("key", key),
			logger.ErrorField(err))
	}
}
