// Package cache keeps read-mostly lookups, POST idempotency keys and consumed
// event IDs in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// lookup:{kind} -> JSON array of active master records
	keyLookup = "lookup:%s"

	// idem:po:create:{idempotency key} -> purchase order ID, or "" while in flight
	keyIdemCreate = "idem:po:create:%s"

	// dedup:{consumer}:{event_id}
	keyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
