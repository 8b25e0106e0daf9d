package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dermanow/dermanow/internal/identity"
)

// keyRole is role:{wallet_address} -> role string.
const keyRole = "dermanow:role:%s"

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) GetRole(ctx context.Context, address string) (identity.Role, bool, error) {
	v, err := c.rdb.Get(ctx, fmt.Sprintf(keyRole, address)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return identity.RoleNone, false, nil
		}

		return identity.RoleNone, false, fmt.Errorf("reading role cache: %w", err)
	}

	role := identity.Role(v)
	if !role.Valid() {
		return identity.RoleNone, false, nil
	}

	return role, true, nil
}

func (c *Redis) SetRole(ctx context.Context, address string, role identity.Role) error {
	if err := c.rdb.Set(ctx, fmt.Sprintf(keyRole, address), string(role), c.ttl).Err(); err != nil {
		return fmt.Errorf("writing role cache: %w", err)
	}

	return nil
}
