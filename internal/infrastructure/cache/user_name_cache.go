package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const userNameKeyPrefix = "stock-ledger:user-name:"

var _ repository.UserDirectory = (*UserNameCache)(nil)

// UserNameCache decorador read-through de UserDirectory sobre Redis.
// Una consulta en lote sigue siendo a lo sumo un MGET más una llamada al directorio real.
type UserNameCache struct {
	client *redis.Client
	next   repository.UserDirectory
	ttl    time.Duration
	log    zerolog.Logger
}

// NewUserNameCache envuelve next. ttl <= 0 usa cinco minutos.
func NewUserNameCache(client *redis.Client, next repository.UserDirectory, ttl time.Duration, log zerolog.Logger) *UserNameCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserNameCache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log.With().Str("component", "user_name_cache").Logger(),
	}
}

// NewRedisClient abre el cliente desde una URL redis:// y verifica la conexión.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// FindNames resuelve desde Redis y delega sólo los ids ausentes. Si Redis falla, degrada al directorio.
func (c *UserNameCache) FindNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userNameKeyPrefix + id
	}
	missing := ids
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn().Err(err).Msg("redis no disponible, consultando directorio")
	} else {
		missing = make([]string, 0, len(ids))
		for i, v := range vals {
			if s, ok := v.(string); ok {
				out[ids[i]] = s
				continue
			}
			missing = append(missing, ids[i])
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.next.FindNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, name := range fetched {
		out[id] = name
		pipe.Set(ctx, userNameKeyPrefix+id, name, c.ttl)
	}
	if len(fetched) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Warn().Err(err).Int("names", len(fetched)).Msg("no se pudo poblar la caché")
		}
	}
	return out, nil
}
