package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

type downStore struct{ cache.Client }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newCipher(t *testing.T) *cipher.Cipher {
	t.Helper()
	key, err := cipher.GenerateKey()
	assert.NoError(t, err)
	c, err := cipher.New(key)
	assert.NoError(t, err)
	return c
}

func TestCheck_Ready(t *testing.T) {
	kv := cache.NewMemory("test", time.Minute)
	t.Cleanup(func() { _ = kv.Close() })
	issuer := jwt.NewIssuer("secret")

	out := NewHealthService(Deps{
		Store:   kv,
		Cipher:  newCipher(t),
		Issuer:  issuer,
		Env:     environment.NewMock(issuer),
		Version: "1.2.3",
	}).Check(context.Background())

	assert.Equal(t, "ready", out.Status)
	assert.Equal(t, "mock", out.Environment)
	assert.Equal(t, "self_issued", out.GuardMode)
	assert.Equal(t, "ok", out.Components["store"].Status)
	assert.Equal(t, "ok", out.Components["cipher"].Status)
	assert.Equal(t, "ok", out.Components["jwt"].Status)
}

func TestCheck_StoreDownIsUnavailable(t *testing.T) {
	out := NewHealthService(Deps{Store: downStore{}, Cipher: newCipher(t)}).Check(context.Background())
	assert.Equal(t, "unavailable", out.Status)
	assert.Equal(t, "error", out.Components["store"].Status)
	assert.Equal(t, "disabled", out.Components["jwt"].Status)
}

func TestCheck_MissingCipherIsUnavailable(t *testing.T) {
	kv := cache.NewMemory("test", time.Minute)
	t.Cleanup(func() { _ = kv.Close() })
	out := NewHealthService(Deps{Store: kv}).Check(context.Background())
	assert.Equal(t, "unavailable", out.Status)
	assert.Equal(t, "error", out.Components["cipher"].Status)
}

func TestLive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := NewHealthService(Deps{Now: func() time.Time { return now }}).Live(context.Background())
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, now, out.Timestamp)
}
