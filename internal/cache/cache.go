// Package cache provee el almacenamiento clave/valor con TTL que respalda
// al state store.
//
// Soporta:
//   - Memory (in-process, go-cache; desarrollo, tests, una sola réplica)
//   - Redis (compartido entre réplicas; producción)
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones del backend.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Take obtiene y elimina un valor de forma atómica: ante lecturas
	// concurrentes de la misma key, a lo sumo una obtiene el valor.
	Take(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl == 0 significa sin expiración.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key (no falla si no existe).
	Delete(ctx context.Context, key string) error

	// Touch renueva el TTL sin reescribir el valor. Retorna false si la key
	// no existe.
	Touch(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Update reemplaza el valor por fn(actual) sin que otra escritura de la
	// misma key se intercale entre la lectura y la escritura. Retorna
	// ErrNotFound si la key no existe; un error de fn aborta sin escribir.
	// fn puede ejecutarse más de una vez si hay conflicto.
	Update(ctx context.Context, key string, ttl time.Duration, fn func(cur string) (string, error)) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del backend.
type Stats struct {
	Driver     string
	Keys       int64
	UsedMemory string
	Hits       int64
	Misses     int64
}

// Config para crear un cliente.
type Config struct {
	Driver string // "memory" | "redis"
	URL    string // redis://[:password@]host:port/db
	Prefix string // prefijo para todas las keys

	// Intervalo del janitor del backend en memoria.
	CleanupInterval time.Duration
}

var (
	// ErrNotFound indica key ausente o expirada.
	ErrNotFound = errors.New("cache: key not found")
	// ErrConflict: Update agotó los reintentos ante escrituras concurrentes.
	ErrConflict = errors.New("cache: concurrent update conflict")
)

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente según la configuración. Un driver desconocido es error.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix, cfg.CleanupInterval), nil
	default:
		return nil, errors.New("cache: unknown driver " + cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
