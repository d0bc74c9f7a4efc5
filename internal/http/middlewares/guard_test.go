package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockerbridge/internal/environment"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

var guardNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeRefresher struct {
	res   dto.RefreshResult
	calls atomic.Int32
}

func (f *fakeRefresher) Refresh(context.Context, string) dto.RefreshResult {
	f.calls.Add(1)
	return f.res
}

type fakeIdentity struct {
	err error
}

func (f fakeIdentity) Profile(_ context.Context, token string) (digilocker.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return digilocker.Profile{"sub": "user-of-" + token}, nil
}

func newFederated(t *testing.T, ref *fakeRefresher, id IdentityFetcher) (*Guard, *cipher.Cipher) {
	t.Helper()
	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	c, err := cipher.New(key)
	require.NoError(t, err)
	names := session.DefaultNames()
	return NewGuard(GuardDeps{
		Mode:     environment.Federated,
		Accessor: session.NewAccessor(names, c).WithClock(func() time.Time { return guardNow }),
		Writer:   session.NewWriter(session.WriterConfig{Names: names, Cipher: c, Now: func() time.Time { return guardNow }}),
		Refresh:  ref,
		Identity: id,
	}), c
}

func sessionRequest(token string, expiresAt time.Time, refresh string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "dl_token", Value: token})
	}
	if !expiresAt.IsZero() {
		r.AddCookie(&http.Cookie{Name: "dl_expires_at", Value: strconv.FormatInt(expiresAt.UnixMilli(), 10)})
	}
	if refresh != "" {
		r.AddCookie(&http.Cookie{Name: "dl_rtoken", Value: refresh})
	}
	return r
}

// echo responde con el subject y el token que dejó el guard.
func echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject", ClaimString(GetIdentity(r.Context()), "sub"))
		w.Header().Set("X-Token", GetAccessToken(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func cookieMap(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestGuardFederated_HappyPath(t *testing.T) {
	ref := &fakeRefresher{}
	g, _ := newFederated(t, ref, fakeIdentity{})

	rec := httptest.NewRecorder()
	g.RequireSession()(echo()).ServeHTTP(rec, sessionRequest("at-1", guardNow.Add(time.Minute), ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-of-at-1", rec.Header().Get("X-Subject"))
	assert.Equal(t, "at-1", rec.Header().Get("X-Token"))
	assert.Zero(t, ref.calls.Load())
	assert.Empty(t, rec.Result().Cookies())
}

func TestGuardFederated_RefreshPath(t *testing.T) {
	ref := &fakeRefresher{res: dto.RefreshResult{
		OK:          true,
		AccessToken: "at-2",
		Credentials: session.NewCredentials("at-2", 3600, "rt-2", guardNow),
	}}
	g, c := newFederated(t, ref, fakeIdentity{})
	enc, err := c.Encrypt("rt-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	g.RequireSession()(echo()).ServeHTTP(rec, sessionRequest("at-1", guardNow.Add(-time.Second), enc))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), ref.calls.Load())
	assert.Equal(t, "at-2", rec.Header().Get("X-Token"))
	assert.Equal(t, "user-of-at-2", rec.Header().Get("X-Subject"))

	cookies := cookieMap(rec)
	require.Contains(t, cookies, "dl_token")
	assert.Equal(t, "at-2", cookies["dl_token"].Value)
	require.Contains(t, cookies, "dl_rtoken")
	plain, err := c.Decrypt(cookies["dl_rtoken"].Value)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", plain)
}

func TestGuardFederated_Denials(t *testing.T) {
	cases := map[string]struct {
		req      func(c *cipher.Cipher) *http.Request
		ref      dto.RefreshResult
		identity IdentityFetcher
		cleared  bool
	}{
		"no access token": {
			req: func(*cipher.Cipher) *http.Request { return sessionRequest("", time.Time{}, "") },
		},
		"expired without refresh": {
			req: func(*cipher.Cipher) *http.Request { return sessionRequest("at", guardNow.Add(-time.Minute), "") },
		},
		"refresh rejected clears cookies": {
			req:     func(*cipher.Cipher) *http.Request { return sessionRequest("at", guardNow.Add(-time.Minute), "garbage") },
			ref:     dto.RefreshResult{Credentials: session.Cleared()},
			cleared: true,
		},
		"refresh transient keeps cookies": {
			req: func(*cipher.Cipher) *http.Request { return sessionRequest("at", guardNow.Add(-time.Minute), "blob") },
		},
		"identity fetch failure": {
			req:      func(*cipher.Cipher) *http.Request { return sessionRequest("at", guardNow.Add(time.Minute), "") },
			identity: fakeIdentity{err: errors.New("userinfo down")},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			id := tc.identity
			if id == nil {
				id = fakeIdentity{}
			}
			g, c := newFederated(t, &fakeRefresher{res: tc.ref}, id)

			rec := httptest.NewRecorder()
			g.RequireSession()(echo()).ServeHTTP(rec, tc.req(c))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "AUTHENTICATION_REQUIRED")
			cookies := cookieMap(rec)
			if tc.cleared {
				require.Contains(t, cookies, "dl_token")
				assert.Negative(t, cookies["dl_token"].MaxAge)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestGuardFederated_CredentialGateToleratesMissingIdentity(t *testing.T) {
	g, _ := newFederated(t, &fakeRefresher{}, fakeIdentity{err: errors.New("down")})

	rec := httptest.NewRecorder()
	g.RequireCredential()(echo()).ServeHTTP(rec, sessionRequest("at-1", guardNow.Add(time.Minute), ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Subject"))
	assert.Equal(t, "at-1", rec.Header().Get("X-Token"))
}

func TestGuardFederated_PanicBecomesDenial(t *testing.T) {
	g := NewGuard(GuardDeps{Mode: environment.Federated}) // sin accessor: nil deref

	rec := httptest.NewRecorder()
	g.RequireSession()(echo()).ServeHTTP(rec, sessionRequest("at", guardNow, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardSelfIssued(t *testing.T) {
	issuer := jwt.NewIssuer("secret")
	token, _, err := issuer.IssueAccess(map[string]any{"sub": "mock_user_123"})
	require.NoError(t, err)
	other, _, err := jwt.NewIssuer("other-secret").IssueAccess(map[string]any{"sub": "x"})
	require.NoError(t, err)

	g := NewGuard(GuardDeps{
		Mode:     environment.SelfIssued,
		Issuer:   issuer,
		Accessor: session.NewAccessor(session.DefaultNames(), nil),
	})
	h := g.RequireSession()(echo())

	// Bearer
	r := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock_user_123", rec.Header().Get("X-Subject"))

	// Cookie
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(token, time.Time{}, ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Firma ajena
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(other, time.Time{}, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Sin token
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDenialReason(t *testing.T) {
	assert.Equal(t, "refresh_failed", denialReason(ErrRefreshFailed))
	assert.Equal(t, "session_expired", denialReason(errors.New("other")))
}
