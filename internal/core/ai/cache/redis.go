package cache

import (
	"context"
	"fmt"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore redis 快取後端
type RedisStore struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisStore 創建 redis 快取後端
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已初始化",
		zap.String("addr", cfg.Cache.RedisAddr),
		zap.Duration("存活時間", cfg.Cache.TTL),
	)

	return &RedisStore{
		client: client,
		config: &cfg.Cache,
	}, nil
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, prompt string) (string, error) {
	value, err := s.client.Get(ctx, cacheKey(prompt)).Result()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("redis", cacheKey(prompt))
			return "", common.ErrCacheDisabled
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("redis", cacheKey(prompt))
	return value, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, cacheKey(prompt), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
