package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"healthnudge/internal/models"
)

const redisKeyPrefix = "healthnudge:directory:"

// RedisCache is the shared-cache variant of MemoryCache for multi-instance
// deployments. TTL is enforced by Redis itself; cache failures degrade to
// the inner directory and are never fatal.
type RedisCache struct {
	inner  Directory
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(inner Directory, client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{inner: inner, client: client, ttl: ttl}
}

func (c *RedisCache) Search(ctx context.Context, params SearchParams) ([]models.Venue, error) {
	key := redisKeyPrefix + params.CacheKey()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var venues []models.Venue
		if err := json.Unmarshal(raw, &venues); err == nil {
			log.Debugf("directory cache: redis hit for %s", key)
			return venues, nil
		}
		log.Warnf("directory cache: corrupt redis entry for %s, refetching", key)
	} else if err != redis.Nil {
		log.Warnf("directory cache: redis get failed: %v", err)
	}

	venues, err := c.inner.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if raw, err := json.Marshal(venues); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warnf("directory cache: redis set failed: %v", err)
		}
	}
	return venues, nil
}
