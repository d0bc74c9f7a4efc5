package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	kv := cache.NewMemory("test", 5*time.Millisecond)
	t.Cleanup(func() { _ = kv.Close() })
	return New(kv)
}

func TestState_SingleUse(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.CreateState(ctx, "verifier-1", "https://app.example/cb")
	require.NoError(t, err)
	assert.Len(t, id, 32)

	rec, ok := s.ValidateState(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "verifier-1", rec.Verifier)
	assert.Equal(t, "https://app.example/cb", rec.CallbackURL)

	rec, ok = s.ValidateState(ctx, id)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestState_WithoutVerifier(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.CreateState(ctx, "", "")
	require.NoError(t, err)

	rec, ok := s.ValidateState(ctx, id)
	require.True(t, ok)
	assert.Empty(t, rec.Verifier)
	assert.Empty(t, rec.CallbackURL)
}

func TestState_UnknownAndEmpty(t *testing.T) {
	s := newStore(t)
	_, ok := s.ValidateState(context.Background(), "deadbeef")
	assert.False(t, ok)
	_, ok = s.ValidateState(context.Background(), "")
	assert.False(t, ok)
}

func TestState_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := NewID()
		require.NoError(t, err)
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestQR_UpdateMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	st := QRSuccess
	ok, err := s.UpdateQRSession(ctx, "nope", QRPatch{Status: &st})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetQRSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQR_Transitions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "q1", QRSession{Status: QRPending, Verifier: "v", CreatedAt: 1}, 0))

	success := QRSuccess
	tok := "at"
	exp := time.Now().Add(time.Hour).Unix()
	ok, err := s.UpdateQRSession(ctx, "q1", QRPatch{Status: &success, AccessToken: &tok, AccessTokenExpiresAt: &exp})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetQRSession(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, QRSuccess, got.Status)
	assert.Equal(t, "at", got.AccessToken)
	assert.Equal(t, "v", got.Verifier)

	failed := QRFailed
	_, err = s.UpdateQRSession(ctx, "q1", QRPatch{Status: &failed})
	assert.ErrorIs(t, err, ErrTransition)

	// TTL refresh on a terminal session is allowed.
	ok, err = s.UpdateQRSession(ctx, "q1", QRPatch{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQR_RepairSuccessWithoutTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "q2", QRSession{Status: QRSuccess}, 0))

	failed := QRFailed
	ok, err := s.UpdateQRSession(ctx, "q2", QRPatch{Status: &failed})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetQRSession(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, QRFailed, got.Status)
}

func TestQR_ExpiresToNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "q3", QRSession{Status: QRPending}, 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)
	_, err := s.GetQRSession(ctx, "q3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQR_Delete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "q4", QRSession{Status: QRPending}, 0))
	require.NoError(t, s.DeleteQRSession(ctx, "q4"))
	_, err := s.GetQRSession(ctx, "q4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBucket_Namespaces(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemory("", 0)
	a := NewBucket[map[string]string](kv, "a", time.Minute)
	b := NewBucket[map[string]string](kv, "b", time.Minute)

	require.NoError(t, a.Put(ctx, "id", map[string]string{"v": "a"}, 0))
	_, err := b.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := a.Take(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "a", (*got)["v"])
}

// interleavedKV ejecuta afterGet una vez, justo después de la primera
// lectura, para simular una escritura que cae entre la lectura de un poll y
// su escritura.
type interleavedKV struct {
	cache.Client
	once     sync.Once
	afterGet func()
}

func (k *interleavedKV) Get(ctx context.Context, key string) (string, error) {
	v, err := k.Client.Get(ctx, key)
	k.once.Do(k.afterGet)
	return v, err
}

func TestQR_PollRefreshDoesNotOverwriteConcurrentSuccess(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory("test", time.Minute)
	t.Cleanup(func() { _ = mem.Close() })

	kv := &interleavedKV{Client: mem}
	s := New(kv)
	require.NoError(t, s.StoreQRSession(ctx, "sid", QRSession{Status: QRPending, Verifier: "v"}, 0))

	success := QRSuccess
	tok := "at"
	exp := time.Now().Add(time.Hour).Unix()
	kv.afterGet = func() {
		ok, err := s.UpdateQRSession(ctx, "sid", QRPatch{Status: &success, AccessToken: &tok, AccessTokenExpiresAt: &exp})
		require.NoError(t, err)
		require.True(t, ok)
	}

	// El poll lee PENDING y luego refresca el TTL.
	polled, err := s.GetQRSession(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, QRPending, polled.Status)
	ok, err := s.UpdateQRSession(ctx, "sid", QRPatch{})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetQRSession(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, QRSuccess, got.Status)
	assert.Equal(t, "at", got.AccessToken)
}

func TestQR_ConcurrentTerminalPatchesSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "race", QRSession{Status: QRPending}, 0))

	var wins, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := QRFailed
			if i%2 == 0 {
				st = QRSuccess
			}
			tok := "at"
			exp := time.Now().Add(time.Hour).Unix()
			_, err := s.UpdateQRSession(ctx, "race", QRPatch{Status: &st, AccessToken: &tok, AccessTokenExpiresAt: &exp})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrTransition):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 15, rejected.Load())
}

func TestQR_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.StoreQRSession(ctx, "q5", QRSession{Status: QRSuccess, AccessToken: "at"}, 0))

	got, err := s.TakeQRSession(ctx, "q5")
	require.NoError(t, err)
	assert.Equal(t, "at", got.AccessToken)

	_, err = s.TakeQRSession(ctx, "q5")
	assert.ErrorIs(t, err, ErrNotFound)
}
