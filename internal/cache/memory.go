package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache. El janitor de go-cache
// purga las entradas expiradas en background sin bloquear requests.
type memoryClient struct {
	prefix string
	c      *gocache.Cache

	// mu serializa las mutaciones para que Take, Touch y Update sean
	// lectura+escritura atómicas.
	mu     sync.Mutex
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory crea un cliente en memoria. cleanup <= 0 usa 1 minuto.
func NewMemory(prefix string, cleanup time.Duration) *memoryClient {
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, cleanup),
	}
}

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		m.misses.Add(1)
		return "", ErrNotFound
	}
	m.hits.Add(1)
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Take(_ context.Context, key string) (string, error) {
	k := prefixed(m.prefix, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		m.misses.Add(1)
		return "", ErrNotFound
	}
	m.c.Delete(k)
	m.hits.Add(1)
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.c.Set(prefixed(m.prefix, key), value, expiration(ttl))
	m.mu.Unlock()
	return nil
}

func (m *memoryClient) Touch(_ context.Context, key string, ttl time.Duration) (bool, error) {
	k := prefixed(m.prefix, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		return false, nil
	}
	m.c.Set(k, v, expiration(ttl))
	return true, nil
}

func (m *memoryClient) Update(_ context.Context, key string, ttl time.Duration, fn func(string) (string, error)) error {
	k := prefixed(m.prefix, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		m.misses.Add(1)
		return ErrNotFound
	}
	m.hits.Add(1)
	cur, _ := v.(string)
	next, err := fn(cur)
	if err != nil {
		return err
	}
	m.c.Set(k, next, expiration(ttl))
	return nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	m.c.Delete(prefixed(m.prefix, key))
	m.mu.Unlock()
	return nil
}

func (m *memoryClient) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(prefixed(m.prefix, key))
	return ok, nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}

func (m *memoryClient) Stats(context.Context) (Stats, error) {
	return Stats{
		Driver: "memory",
		Keys:   int64(m.c.ItemCount()),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

// Cleanup purga las entradas expiradas sin esperar al janitor.
func (m *memoryClient) Cleanup() {
	m.c.DeleteExpired()
}
