package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
)

const (
	// Redis key prefix for cached asset records
	assetKeyPrefix = "registry:asset:"

	defaultTTL = 5 * time.Minute
)

// RedisAssetCache fronts asset lookups with Redis. The durable store stays
// the source of truth; entries are dropped after every committed update or
// transfer and expire after the TTL otherwise.
type RedisAssetCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// RedisAssetCacheOption configures a RedisAssetCache instance.
type RedisAssetCacheOption func(*RedisAssetCache)

// WithTTL sets how long an entry may be served without a store read.
func WithTTL(ttl time.Duration) RedisAssetCacheOption {
	return func(c *RedisAssetCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisAssetCache constructs a Redis-backed asset cache.
func NewRedisAssetCache(client redis.Cmdable, opts ...RedisAssetCacheOption) *RedisAssetCache {
	c := &RedisAssetCache{
		client: client,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns false when the asset is not cached.
func (c *RedisAssetCache) Get(ctx context.Context, id domain.AssetID) (*models.AssetRecord, bool, error) {
	payload, err := c.client.Get(ctx, assetKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached asset: %w", err)
	}
	var record models.AssetRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, false, fmt.Errorf("decode cached asset: %w", err)
	}
	return &record, true, nil
}

func (c *RedisAssetCache) Set(ctx context.Context, record *models.AssetRecord) error {
	if record == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cached asset: %w", err)
	}
	if err := c.client.Set(ctx, assetKey(record.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached asset: %w", err)
	}
	return nil
}

func (c *RedisAssetCache) Invalidate(ctx context.Context, id domain.AssetID) error {
	if err := c.client.Del(ctx, assetKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate cached asset: %w", err)
	}
	return nil
}

func assetKey(id domain.AssetID) string {
	return assetKeyPrefix + id.String()
}
