package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/pkg/metrics"
)

// ProfileCache keeps fetched profiles in Redis keyed by a hash of the access
// token, so guarded routes don't hit the upstream profile endpoint on every
// request. Entries never outlive the token: the TTL is capped by the token's
// exp claim when the token is a JWT. A nil client degrades to always-miss.
type ProfileCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewProfileCache creates a cache with the given key prefix and max TTL.
// Prefix may be empty.
func NewProfileCache(client *redis.Client, prefix string, ttl time.Duration) *ProfileCache {
	if prefix == "" {
		prefix = "profile:"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProfileCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ProfileCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached profile for the token, or nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, token string) (*models.UserProfile, error) {
	if c == nil || c.client == nil || token == "" {
		return nil, nil
	}
	b, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.ProfileCache.WithLabelValues("miss").Inc()
			return nil, nil
		}
		return nil, err
	}
	var u models.UserProfile
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	metrics.ProfileCache.WithLabelValues("hit").Inc()
	return &u, nil
}

// Put stores the profile under the token's key.
func (c *ProfileCache) Put(ctx context.Context, token string, u models.UserProfile) error {
	if c == nil || c.client == nil || token == "" {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if exp, ok := tokenExpiry(token); ok {
		if rem := time.Until(exp); rem > 0 && rem < ttl {
			ttl = rem
		} else if rem <= 0 {
			return nil
		}
	}
	return c.client.Set(ctx, c.key(token), b, ttl).Err()
}

// Invalidate drops the cached profile for the token, used after profile
// mutations so the next guard pass refetches.
func (c *ProfileCache) Invalidate(ctx context.Context, token string) error {
	if c == nil || c.client == nil || token == "" {
		return nil
	}
	return c.client.Del(ctx, c.key(token)).Err()
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
