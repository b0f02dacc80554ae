package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "auth_token:"

// Cache is the key/value store used in front of the token table.
// Get reports a miss with common.ErrorNotFound.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisCache implements Cache with go-redis.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return v, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// CachedRepository answers FindUserID from cache when it can and falls
// through to next otherwise. Tokens are never rotated, so a cached
// key -> user id pair stays correct; account state is still read from the
// user store on every request.
type CachedRepository struct {
	next   Repository
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedRepository(next Repository, cache Cache, ttl time.Duration, logger logging.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedRepository) GetOrCreate(ctx context.Context, userID string, key string) (*models.Token, error) {
	token, err := r.next.GetOrCreate(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, token.Key, token.UserID)
	return token, nil
}

func (r *CachedRepository) FindUserID(ctx context.Context, key string) (string, error) {
	userID, err := r.cache.Get(ctx, cacheKeyPrefix+key)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		r.logger.Warn(ctx, "token cache read failed", "error", err.Error())
	}

	userID, err = r.next.FindUserID(ctx, key)
	if err != nil {
		return "", err
	}
	r.remember(ctx, key, userID)
	return userID, nil
}

func (r *CachedRepository) remember(ctx context.Context, key, userID string) {
	if err := r.cache.Set(ctx, cacheKeyPrefix+key, userID, r.ttl); err != nil {
		r.logger.Warn(ctx, "token cache write failed", "error", err.Error())
	}
}
