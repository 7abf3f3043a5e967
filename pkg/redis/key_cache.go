package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
)

// KeyCache is a short-TTL lookup cache from key hash to key record, in
// front of the registry database. Entries are invalidated whenever the
// record is mutated, so the TTL only bounds staleness across processes.
type KeyCache struct {
	ttl time.Duration
}

const keyCachePrefix = "api_key:"

var (
	setCacheValue = Set
	getCacheValue = Get
	delCacheValue = Del
)

// NewKeyCache creates a key lookup cache
func NewKeyCache(ttl time.Duration) *KeyCache {
	return &KeyCache{ttl: ttl}
}

// Lookup returns the cached record for a key hash, or (nil, nil) on a miss.
func (c *KeyCache) Lookup(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	if !Available() {
		return nil, nil
	}

	raw, err := getCacheValue(ctx, keyCachePrefix+keyHash)
	if err != nil {
		// Misses and transport errors are both treated as a miss; the
		// caller falls through to the database.
		return nil, nil
	}

	var key entities.ApiKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// Store caches a record under its key hash
func (c *KeyCache) Store(ctx context.Context, key *entities.ApiKey) error {
	if !Available() {
		return nil
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	return setCacheValue(ctx, keyCachePrefix+key.KeyHash, string(raw), c.ttl)
}

// Invalidate drops the cached record for a key hash
func (c *KeyCache) Invalidate(ctx context.Context, keyHash string) error {
	if !Available() {
		return nil
	}
	return delCacheValue(ctx, keyCachePrefix+keyHash)
}
