package session

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountgate/accountgate/internal/models"
)

func TestProfileCache_PutGetInvalidate(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	cache := NewProfileCache(client, "test:profile:", time.Minute)
	ctx := context.Background()

	u := models.UserProfile{ID: "1", Username: "alice", Roles: "user"}
	require.NoError(t, cache.Put(ctx, "tok-1", u))

	got, err := cache.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	// different token, different key
	miss, err := cache.Get(ctx, "tok-2")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Invalidate(ctx, "tok-1"))
	gone, err := cache.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestProfileCache_TTLExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	cache := NewProfileCache(client, "test:profile:", time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "tok-1", models.UserProfile{Username: "alice"}))
	m.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCache_TTLBoundedByTokenExp(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	cache := NewProfileCache(client, "test:profile:", time.Hour)
	ctx := context.Background()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(2 * time.Second).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, cache.Put(ctx, tok, models.UserProfile{Username: "alice"}))
	ttl := m.TTL(cache.key(tok))
	assert.LessOrEqual(t, ttl, 2*time.Second)
}

func TestProfileCache_ExpiredTokenNotStored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	cache := NewProfileCache(client, "test:profile:", time.Hour)
	ctx := context.Background()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, cache.Put(ctx, tok, models.UserProfile{Username: "alice"}))
	got, err := cache.Get(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCache_NilClientDegradesToMiss(t *testing.T) {
	cache := NewProfileCache(nil, "", time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "tok", models.UserProfile{Username: "alice"}))
	got, err := cache.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, cache.Invalidate(ctx, "tok"))
}
