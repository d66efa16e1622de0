//go:build integration

package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
)

var redisClient *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run("redis", "7-alpine", nil)
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	if err := pool.Retry(func() error {
		redisClient = redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp")),
		})
		return redisClient.Ping(context.Background()).Err()
	}); err != nil {
		log.Fatalf("Could not connect to redis: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func TestRedisStore_Integration(t *testing.T) {
	ctx := context.Background()
	key := "test:history:" + t.Name()
	t.Cleanup(func() { redisClient.Del(ctx, key) })

	h := history.NewStore(NewRedisStore(redisClient, key), nil)

	assert.Empty(t, h.List(ctx))

	require.NoError(t, h.AddCity(ctx, "Paris"))
	require.NoError(t, h.AddCity(ctx, "paris"))
	require.NoError(t, h.AddCity(ctx, "Tokyo"))

	list := h.List(ctx)
	require.Len(t, list, 2)

	require.NoError(t, h.RemoveCity(ctx, list[0].ID))

	entries, err := NewRedisStore(redisClient, key).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []history.Entry{list[1]}, entries)
}
