// Package sessions keeps the revocation list for access tokens in Redis.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hotelbook:revoked:"

var (
	mu              sync.RWMutex
	blacklistClient *redis.Client
)

// SetBlacklistClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable the feature.
func SetBlacklistClient(c *redis.Client) {
	mu.Lock()
	blacklistClient = c
	mu.Unlock()
}

func client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return blacklistClient
}

// BlacklistKey is the Redis key for token. Only a digest of the token is stored.
func BlacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// BlacklistAccessToken revokes token for ttl (normally its remaining lifetime).
// Without a configured client this is a no-op.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	c := client()
	if c == nil || ttl <= 0 {
		return nil
	}
	return c.Set(ctx, BlacklistKey(token), "1", ttl).Err()
}

// IsAccessTokenBlacklisted reports whether token was revoked.
// Without a configured client it returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	c := client()
	if c == nil {
		return false, nil
	}
	exists, err := c.Exists(ctx, BlacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
