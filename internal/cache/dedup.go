package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Dedup remembers which events a consumer has already applied.
type Dedup struct {
	rdb      *redis.Client
	consumer string
}

func NewDedup(rdb *redis.Client, consumer string) *Dedup {
	return &Dedup{rdb: rdb, consumer: consumer}
}

func (d *Dedup) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, fmt.Sprintf(keyDedup, d.consumer, eventID)).Result()
	return n > 0, err
}

func (d *Dedup) Mark(ctx context.Context, eventID string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(keyDedup, d.consumer, eventID), "1", TTLDedup).Err()
}
