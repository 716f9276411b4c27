//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida en modo -short")
	}
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := cache.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIntegracion_UserNameCache_SegundaConsultaDesdeRedis(t *testing.T) {
	client := startRedis(t)
	dir := newDirectory()
	c := cache.NewUserNameCache(client, dir, time.Minute, zerolog.Nop())
	ctx := context.Background()

	names, err := c.FindNames(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "Ana", "u2": "Luis"}, names)

	names, err = c.FindNames(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "Ana", "u2": "Luis", "u3": "Marta"}, names)

	assert.Equal(t, [][]string{{"u1", "u2"}, {"u3"}}, dir.history(), "sólo se delegan los ids ausentes")

	ttl, err := client.TTL(ctx, "stock-ledger:user-name:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestIntegracion_UserNameCache_DesconocidosNoSeCachean(t *testing.T) {
	client := startRedis(t)
	dir := newDirectory()
	c := cache.NewUserNameCache(client, dir, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		names, err := c.FindNames(ctx, []string{"fantasma"})
		require.NoError(t, err)
		assert.Empty(t, names)
	}
	assert.Len(t, dir.history(), 2)

	n, err := client.Exists(ctx, "stock-ledger:user-name:fantasma").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
