package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyEvent = "dermanow:settled:%s"

// RedisDeduper claims event ids with SETNX so redelivered messages and
// parallel workers release each payment once.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, fmt.Sprintf(keyEvent, eventID), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming event: %w", err)
	}

	return ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, eventID string) error {
	if err := d.rdb.Del(ctx, fmt.Sprintf(keyEvent, eventID)).Err(); err != nil {
		return fmt.Errorf("forgetting event: %w", err)
	}

	return nil
}
