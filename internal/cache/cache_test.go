package cache

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends devuelve memory siempre, y redis si REDIS_URL_TEST está seteada.
func backends(t *testing.T) map[string]Client {
	t.Helper()
	out := map[string]Client{"memory": NewMemory("t", 10*time.Millisecond)}
	if url := os.Getenv("REDIS_URL_TEST"); url != "" {
		rc, err := NewRedis(Config{URL: url, Prefix: "lockerbridge-test"})
		require.NoError(t, err)
		out["redis"] = rc
	}
	return out
}

func TestClient_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			_, err := c.Get(ctx, "missing")
			assert.True(t, IsNotFound(err))

			require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
			got, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)

			ok, err := c.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, c.Delete(ctx, "k"))
			_, err = c.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, c.Delete(ctx, "k"))
		})
	}
}

func TestClient_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()
			require.NoError(t, c.Set(ctx, "once", "payload", time.Minute))

			v, err := c.Take(ctx, "once")
			require.NoError(t, err)
			assert.Equal(t, "payload", v)

			_, err = c.Take(ctx, "once")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestClient_TakeConcurrent(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()
			require.NoError(t, c.Set(ctx, "race", "x", time.Minute))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.Take(ctx, "race"); err == nil {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.EqualValues(t, 1, wins.Load())
		})
	}
}

func TestClient_Touch(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			ok, err := c.Touch(ctx, "touch-missing", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)
			exists, err := c.Exists(ctx, "touch-missing")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, c.Set(ctx, "touch", "v1", 50*time.Millisecond))
			ok, err = c.Touch(ctx, "touch", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			time.Sleep(100 * time.Millisecond)
			got, err := c.Get(ctx, "touch")
			require.NoError(t, err)
			assert.Equal(t, "v1", got)
			require.NoError(t, c.Delete(ctx, "touch"))
		})
	}
}

func TestClient_Update(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		seed    bool
		fn      func(string) (string, error)
		wantErr error
		want    string
	}{
		{name: "missing", fn: func(s string) (string, error) { return s + "!", nil }, wantErr: ErrNotFound},
		{name: "rewrite", seed: true, fn: func(s string) (string, error) { return s + "!", nil }, want: "v!"},
		{name: "fn error keeps value", seed: true, fn: func(string) (string, error) { return "", boom }, wantErr: boom, want: "v"},
	}

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					key := "upd-" + tt.name
					_ = c.Delete(ctx, key)
					if tt.seed {
						require.NoError(t, c.Set(ctx, key, "v", time.Minute))
					}

					err := c.Update(ctx, key, time.Minute, tt.fn)
					if tt.wantErr != nil {
						assert.ErrorIs(t, err, tt.wantErr)
					} else {
						require.NoError(t, err)
					}

					got, err := c.Get(ctx, key)
					if tt.want == "" {
						assert.ErrorIs(t, err, ErrNotFound)
						return
					}
					require.NoError(t, err)
					assert.Equal(t, tt.want, got)
					require.NoError(t, c.Delete(ctx, key))
				})
			}
		})
	}
}

func TestClient_UpdateConcurrent(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()
			require.NoError(t, c.Set(ctx, "counter", "0", time.Minute))

			incr := func(cur string) (string, error) {
				n, err := strconv.Atoi(cur)
				if err != nil {
					return "", err
				}
				return strconv.Itoa(n + 1), nil
			}

			const workers = 8
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, c.Update(ctx, "counter", time.Minute, incr))
				}()
			}
			wg.Wait()

			got, err := c.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(workers), got)
			require.NoError(t, c.Delete(ctx, "counter"))
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("", 5*time.Millisecond)
	require.NoError(t, m.Set(ctx, "short", "v", 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)
	_, err := m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	m.Cleanup()
	st, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.EqualValues(t, 0, st.Keys)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "memcached"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}
