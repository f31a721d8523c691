package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"chronos/internal/platform/config"
)

// NewRedis returns nil when REDIS_ADDR is unset; callers treat a nil client as
// "caching disabled".
func NewRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.StoreTimeout,
		ReadTimeout:  cfg.StoreTimeout,
		WriteTimeout: cfg.StoreTimeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
