package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"procurement-console/internal/core"

	"github.com/redis/go-redis/v9"
)

type lookupCache struct {
	rdb  *redis.Client
	next core.LookupService
	ttl  time.Duration
	log  *slog.Logger
}

// NewLookupCache wraps next so the list lookups are served from Redis for ttl.
// ItemsByID always reads through: it feeds server-side validation. Redis
// failures fall back to next.
func NewLookupCache(rdb *redis.Client, next core.LookupService, ttl time.Duration, log *slog.Logger) core.LookupService {
	return &lookupCache{rdb: rdb, next: next, ttl: ttl, log: log}
}

func (c *lookupCache) Vendors(ctx context.Context) ([]core.Vendor, error) {
	return cached(ctx, c, "vendors", c.next.Vendors)
}

func (c *lookupCache) Locations(ctx context.Context) ([]core.Location, error) {
	return cached(ctx, c, "locations", c.next.Locations)
}

func (c *lookupCache) Units(ctx context.Context) ([]core.Unit, error) {
	return cached(ctx, c, "units", c.next.Units)
}

func (c *lookupCache) Items(ctx context.Context) ([]core.Item, error) {
	return cached(ctx, c, "items", c.next.Items)
}

func (c *lookupCache) Users(ctx context.Context) ([]core.User, error) {
	return cached(ctx, c, "users", c.next.Users)
}

func (c *lookupCache) ItemsByID(ctx context.Context, ids []int) (map[int]core.Item, error) {
	return c.next.ItemsByID(ctx, ids)
}

func cached[T any](ctx context.Context, c *lookupCache, kind string, load func(context.Context) ([]T, error)) ([]T, error) {
	key := fmt.Sprintf(keyLookup, kind)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if jerr := json.Unmarshal(b, &out); jerr == nil {
			return out, nil
		}
		c.log.Warn("discarding undecodable lookup cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("lookup cache read failed", "key", key, "err", err)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("lookup cache write failed", "key", key, "err", err)
		}
	}
	return out, nil
}
