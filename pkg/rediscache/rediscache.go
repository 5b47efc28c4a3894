package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores JSON values in Redis. A Cache without a client is disabled and
// every call is a no-op miss.
//
// Entries are namespaced by a generation counter. Purge advances the
// generation, so a value computed before a purge and written after it with
// SetAt lands in a retired generation and is never read.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to url. An empty url returns a disabled cache.
func New(ctx context.Context, url, prefix string, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	c := &Cache{prefix: prefix, ttl: ttl, logger: logger}
	if url == "" {
		logger.Info("Redis cache disabled")
		return c, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis cache connected", zap.String("addr", opts.Addr), zap.Duration("ttl", ttl))
	c.client = client
	return c, nil
}

// Disabled returns a cache that never stores anything.
func Disabled() *Cache {
	return &Cache{logger: zap.NewNop()}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) generationKey() string {
	return c.prefix + "gen"
}

func (c *Cache) key(gen int64, k string) string {
	return c.prefix + strconv.FormatInt(gen, 10) + ":" + k
}

// Generation returns the current generation. Read it before loading the value
// that will be passed to SetAt.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetAt decodes the value stored under key in generation gen into dest and
// reports whether it was found.
func (c *Cache) GetAt(ctx context.Context, gen int64, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetAt stores value under key in generation gen. A write for a retired
// generation is skipped; one that races with Purge is never visible.
func (c *Cache) SetAt(ctx context.Context, gen int64, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	current, err := c.Generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err()
}

// Purge retires every cached value by advancing the generation, then deletes
// the keys of older generations.
func (c *Cache) Purge(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	gen, err := c.client.Incr(ctx, c.generationKey()).Result()
	if err != nil {
		return err
	}

	live := c.prefix + strconv.FormatInt(gen, 10) + ":"
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		k := iter.Val()
		if k == c.generationKey() || strings.HasPrefix(k, live) {
			continue
		}
		keys = append(keys, k)
		if len(keys) == 500 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
