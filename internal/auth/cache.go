package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	identityKeyPrefix = "identity:"
	DefaultCacheTTL   = 5 * time.Minute
)

// ProfileCache keeps resolved identities in Redis for a short time so that
// every request does not hit the profile database.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached identity, or nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, uid string) (*Identity, error) {
	raw, err := c.rdb.Get(ctx, identityKeyPrefix+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *ProfileCache) Set(ctx context.Context, id *Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, identityKeyPrefix+id.UserID, raw, c.ttl).Err()
}

func (c *ProfileCache) Invalidate(ctx context.Context, uid string) error {
	return c.rdb.Del(ctx, identityKeyPrefix+uid).Err()
}
