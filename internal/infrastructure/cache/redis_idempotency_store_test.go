package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisIdempotencyStore_Unreachable(t *testing.T) {
	_, err := NewRedisIdempotencyStore(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestNewRedisIdempotencyStoreWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()

	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)

	custom := NewRedisIdempotencyStoreWithClient(client, "test:")
	assert.Equal(t, "test:", custom.keyPrefix)
}
