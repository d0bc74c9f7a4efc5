package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// updateRetries acota los reintentos de Update ante WATCH fallido.
const updateRetries = 16

// redisClient implementa Client usando Redis.
type redisClient struct {
	client *redis.Client
	prefix string
}

// NewRedis crea un cliente Redis a partir de cfg.URL y verifica la conexión.
func NewRedis(cfg Config) (*redisClient, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &redisClient{client: rdb, prefix: cfg.Prefix}, nil
}

// Redis expone el cliente subyacente (lo comparte el rate limiter).
func (c *redisClient) Redis() *redis.Client {
	return c.client
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, prefixed(c.prefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

// Take usa GETDEL (Redis >= 6.2), atómico en el servidor.
func (c *redisClient) Take(ctx context.Context, key string) (string, error) {
	val, err := c.client.GetDel(ctx, prefixed(c.prefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, prefixed(c.prefix, key), value, ttl).Err()
}

// Touch usa EXPIRE: el valor no se reescribe.
func (c *redisClient) Touch(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	k := prefixed(c.prefix, key)
	if ttl <= 0 {
		return c.client.Persist(ctx, k).Result()
	}
	return c.client.Expire(ctx, k, ttl).Result()
}

// Update es un check-and-set optimista: WATCH sobre la key y MULTI/EXEC
// para la escritura. Si otra conexión escribe en el medio, EXEC falla y se
// reintenta con el valor nuevo.
func (c *redisClient) Update(ctx context.Context, key string, ttl time.Duration, fn func(string) (string, error)) error {
	k := prefixed(c.prefix, key)
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, next, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := c.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, prefixed(c.prefix, key)).Err()
}

func (c *redisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, prefixed(c.prefix, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	return c.client.Close()
}

func (c *redisClient) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Driver: "redis", Keys: keys}
	if info, err := c.client.Info(ctx, "memory", "stats").Result(); err == nil {
		for _, line := range strings.Split(info, "\r\n") {
			k, v, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			switch k {
			case "used_memory_human":
				st.UsedMemory = v
			case "keyspace_hits":
				fmt.Sscanf(v, "%d", &st.Hits)
			case "keyspace_misses":
				fmt.Sscanf(v, "%d", &st.Misses)
			}
		}
	}
	return st, nil
}
