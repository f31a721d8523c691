package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const deviceCachePrefix = "chronos:device:"

// CachedResolver is a read-through redis cache in front of device resolution.
// deviceUUID -> identity never changes after registration, so entries only expire.
// Redis failures fall back to the wrapped resolver.
type CachedResolver struct {
	next   DeviceResolver
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedResolver(next DeviceResolver, client *redis.Client, ttl time.Duration, logger *zap.Logger) DeviceResolver {
	if client == nil || ttl <= 0 {
		return next
	}
	return &CachedResolver{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedResolver) ResolveDevice(ctx context.Context, deviceUUID string) (Device, error) {
	key := deviceCachePrefix + NormalizeUUID(deviceUUID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var device Device
		if jsonErr := json.Unmarshal(raw, &device); jsonErr == nil {
			return device, nil
		}
		c.logger.Warn("device cache entry unreadable", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("device cache read failed", zap.String("key", key), zap.Error(err))
	}

	device, err := c.next.ResolveDevice(ctx, deviceUUID)
	if err != nil {
		return Device{}, err
	}
	if payload, err := json.Marshal(device); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("device cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return device, nil
}
