package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/domain"
)

// setupTestRedis creates a Redis-backed store for testing. Tests are skipped
// when no Redis server is reachable.
func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 9})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available: %v", err)
	}

	prefix := fmt.Sprintf("revdup-test:%d:", time.Now().UnixNano())
	s := NewRedisStoreWithClient(client, prefix, zap.NewNop())
	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		s.Close()
	})
	return s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	sess, err := s.Read(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Present())

	require.NoError(t, s.Write(ctx, "abc", domain.RoleAdmin))

	sess, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, domain.RoleAdmin, sess.Role)
}

func TestRedisStoreClearRemovesBothKeys(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "abc", domain.RoleCustomer))
	require.NoError(t, s.Clear(ctx))

	sess, err := s.Read(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Present())
}
