package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/matrix-leader/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestResultStore_Key(t *testing.T) {
	assert.Equal(t, "matrix-leader:build:42", NewResultStore(nil, "", time.Hour).Key("42"))
	assert.Equal(t, "ci:42", NewResultStore(nil, "ci:", time.Hour).Key("42"))
}

func TestResultStore_Save(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewResultStore(client, "", time.Hour)
	ctx := context.Background()

	vars := map[string]string{"BUILD_LEADER": "YES", "BUILD_AGGREGATE_STATUS": "others_failed"}
	require.NoError(t, store.Save(ctx, "42", vars))

	got, err := client.HGetAll(ctx, store.Key("42")).Result()
	require.NoError(t, err)
	assert.Equal(t, vars, got)

	ttl, err := client.TTL(ctx, store.Key("42")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestResultStore_SaveReplacesPreviousValues(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewResultStore(client, "", 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "7", map[string]string{"BUILD_LEADER": "YES", "BUILD_AGGREGATE_STATUS": "unknown"}))
	require.NoError(t, store.Save(ctx, "7", map[string]string{"BUILD_MINION": "YES"}))

	got, err := client.HGetAll(ctx, store.Key("7")).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BUILD_MINION": "YES"}, got)

	ttl, err := client.TTL(ctx, store.Key("7")).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "zero TTL keeps the key")
}

func TestResultStore_SaveValidation(t *testing.T) {
	store := NewResultStore(nil, "", time.Minute)
	assert.Error(t, store.Save(context.Background(), "", map[string]string{"A": "B"}))
	assert.NoError(t, store.Save(context.Background(), "1", nil))
}
