package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Articulate/config"

	"github.com/go-redis/redis/v8"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisErr    error
)

// Redis returns the client created by ConnectRedis. 只在 REDIS_ENABLED 时初始化
func Redis() *redis.Client {
	return redisClient
}

// ConnectRedis 初始化Redis连接；重复调用复用第一次的客户端和结果
func ConnectRedis(cfg *config.Config) error {
	redisOnce.Do(func() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			redisErr = fmt.Errorf("failed to connect to Redis: %w", err)
		}
	})
	return redisErr
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// TestRedis 测试Redis连接和基本操作
func TestRedis(ctx context.Context) error {
	if redisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	const key = "articulate:healthcheck"
	const want = "Redis connection successful!"

	if err := redisClient.Set(ctx, key, want, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}

	val, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if val != want {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}

	if err := redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}

	return nil
}
