package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

// MemoryLimiter es el equivalente en proceso del RedisLimiter. Los contadores
// viven en go-cache y expiran con su ventana.
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())
	ttl := winStart.Add(l.window).Sub(now)

	// Add falla si el contador ya existe; en ese caso solo incrementamos.
	_ = l.c.Add(k, int64(0), ttl)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate: increment: %w", err)
	}
	return evaluate(hits, l.max, ttl), nil
}

// Config selecciona el backend del limitador.
type Config struct {
	Redis  *rdb.Client // nil → memoria
	Prefix string
	Max    int
	Window time.Duration
}

// New crea un limitador Redis si hay cliente, en memoria si no.
func New(cfg Config) Limiter {
	if cfg.Redis != nil {
		return NewRedisLimiter(cfg.Redis, cfg.Prefix, cfg.Max, cfg.Window)
	}
	return NewMemoryLimiter(cfg.Max, cfg.Window)
}
