package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amora-app/amora/internal/config"
	"github.com/redis/go-redis/v9"
)

// TTLs for the cached aggregates. Like counts refresh on access, ranked
// categories are short-lived because every recorded view can change them.
const (
	LikedByCountTTL  = time.Hour
	TopCategoriesTTL = 10 * time.Minute
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForLikedByCount is the cached "how many people liked me" counter.
func (c *RedisCache) KeyForLikedByCount(userID uint64) string {
	return fmt.Sprintf("likedby:count:%d", userID)
}

// KeyForTopCategories is the cached ranked category list feeding the
// personalized feed query.
func (c *RedisCache) KeyForTopCategories(userID uint64) string {
	return fmt.Sprintf("prefs:top:%d", userID)
}

func (c *RedisCache) GetLikedByCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForLikedByCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat unparsable value as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikedByCountTTL).Err()
	return n, true, nil
}

func (c *RedisCache) SetLikedByCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikedByCount(userID), count, LikedByCountTTL).Err()
}
