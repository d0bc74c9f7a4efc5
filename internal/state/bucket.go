package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
)

// ErrNotFound: registro ausente o expirado.
var ErrNotFound = cache.ErrNotFound

// Bucket es un conjunto de registros JSON con TTL bajo un namespace del
// mismo backend. state, qr_session y setu_request son Buckets.
type Bucket[T any] struct {
	kv  cache.Client
	ns  string
	ttl time.Duration
}

// NewBucket crea un namespace con TTL por defecto ttl.
func NewBucket[T any](kv cache.Client, namespace string, ttl time.Duration) *Bucket[T] {
	return &Bucket[T]{kv: kv, ns: namespace, ttl: ttl}
}

func (b *Bucket[T]) Namespace() string { return b.ns }

func (b *Bucket[T]) key(id string) string { return b.ns + ":" + id }

// Put guarda v. ttl <= 0 usa el TTL del bucket.
func (b *Bucket[T]) Put(ctx context.Context, id string, v T, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.ttl
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", b.ns, err)
	}
	err = b.kv.Set(ctx, b.key(id), string(raw), ttl)
	b.observe("put", err)
	return err
}

// Get retorna ErrNotFound si no existe.
func (b *Bucket[T]) Get(ctx context.Context, id string) (*T, error) {
	raw, err := b.kv.Get(ctx, b.key(id))
	b.observe("get", err)
	if err != nil {
		return nil, err
	}
	return b.decode(raw)
}

// Take lee y borra de forma atómica (redención única).
func (b *Bucket[T]) Take(ctx context.Context, id string) (*T, error) {
	raw, err := b.kv.Take(ctx, b.key(id))
	b.observe("take", err)
	if err != nil {
		return nil, err
	}
	return b.decode(raw)
}

// Update aplica fn sobre el registro actual y lo reescribe con el TTL del
// bucket, sin escrituras intercaladas. Si el registro no existe retorna
// (false, nil) sin crearlo. Un error devuelto por fn aborta la escritura.
func (b *Bucket[T]) Update(ctx context.Context, id string, fn func(*T) error) (bool, error) {
	err := b.kv.Update(ctx, b.key(id), b.ttl, func(raw string) (string, error) {
		cur, err := b.decode(raw)
		if err != nil {
			return "", err
		}
		if err := fn(cur); err != nil {
			return "", err
		}
		out, err := json.Marshal(cur)
		if err != nil {
			return "", fmt.Errorf("state: encode %s: %w", b.ns, err)
		}
		return string(out), nil
	})
	b.observe("update", err)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Touch renueva el TTL del registro sin reescribirlo.
func (b *Bucket[T]) Touch(ctx context.Context, id string) (bool, error) {
	ok, err := b.kv.Touch(ctx, b.key(id), b.ttl)
	b.observe("touch", err)
	return ok, err
}

func (b *Bucket[T]) Delete(ctx context.Context, id string) error {
	err := b.kv.Delete(ctx, b.key(id))
	b.observe("delete", err)
	return err
}

func (b *Bucket[T]) decode(raw string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("state: decode %s: %w", b.ns, err)
	}
	return &v, nil
}

func (b *Bucket[T]) observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "miss"
	case err != nil:
		result = "error"
	}
	metrics.StoreOp(b.ns, op, result)
}
