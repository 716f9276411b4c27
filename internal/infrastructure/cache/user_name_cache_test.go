package cache_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

// countingDirectory directorio en memoria que registra los ids pedidos en cada llamada.
type countingDirectory struct {
	mu    sync.Mutex
	names map[string]string
	calls [][]string
}

func (d *countingDirectory) FindNames(_ context.Context, ids []string) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	asked := append([]string(nil), ids...)
	sort.Strings(asked)
	d.calls = append(d.calls, asked)
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if n, ok := d.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (d *countingDirectory) history() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]string(nil), d.calls...)
}

func newDirectory() *countingDirectory {
	return &countingDirectory{names: map[string]string{"u1": "Ana", "u2": "Luis", "u3": "Marta"}}
}

func TestUserNameCache_RedisCaidoDegradaAlDirectorio(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	dir := newDirectory()
	c := cache.NewUserNameCache(client, dir, time.Minute, zerolog.Nop())

	names, err := c.FindNames(context.Background(), []string{"u1", "u2", "zz"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "Ana", "u2": "Luis"}, names)
	assert.Equal(t, [][]string{{"u1", "u2", "zz"}}, dir.history())
}

func TestUserNameCache_SinIdsNoConsulta(t *testing.T) {
	dir := newDirectory()
	c := cache.NewUserNameCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), dir, 0, zerolog.Nop())

	names, err := c.FindNames(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, dir.history())
}
