package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrInFlight is returned by Claim when another request holding the same key
// has not finished yet.
var ErrInFlight = errors.New("a request with this idempotency key is still in progress")

// Idempotency guards purchase order creation against client retries.
type Idempotency struct {
	rdb *redis.Client
}

func NewIdempotency(rdb *redis.Client) *Idempotency {
	return &Idempotency{rdb: rdb}
}

// Claim reserves key for a new create. It returns the ID of the order already
// created under key, or 0 when the caller now owns the key and must call
// Complete or Release.
func (i *Idempotency) Claim(ctx context.Context, key string) (int, error) {
	k := fmt.Sprintf(keyIdemCreate, key)
	ok, err := i.rdb.SetNX(ctx, k, "", TTLIdempotency).Result()
	if err != nil {
		return 0, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return 0, nil
	}

	v, err := i.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or released between the two calls; try once more.
		return i.Claim(ctx, key)
	}
	if err != nil {
		return 0, fmt.Errorf("read idempotency key: %w", err)
	}
	if v == "" {
		return 0, ErrInFlight
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("corrupt idempotency key %s: %w", k, err)
	}
	return id, nil
}

// Complete records the order created under key.
func (i *Idempotency) Complete(ctx context.Context, key string, poID int) error {
	return i.rdb.Set(ctx, fmt.Sprintf(keyIdemCreate, key), strconv.Itoa(poID), TTLIdempotency).Err()
}

// Release frees key after a failed create so the client may retry.
func (i *Idempotency) Release(ctx context.Context, key string) error {
	return i.rdb.Del(ctx, fmt.Sprintf(keyIdemCreate, key)).Err()
}
