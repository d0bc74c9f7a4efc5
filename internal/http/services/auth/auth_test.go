package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/dropDatabas3/lockerbridge/internal/security/pkce"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

// fakeEnv es un entorno real (con PKCE) cuyo proveedor se controla por test.
type fakeEnv struct {
	exchange  func(code, verifier, redirectURI string) (*digilocker.Token, error)
	refresh   func(rt string) (*digilocker.Token, error)
	userinfo  func(at string) (digilocker.Profile, error)
	refreshes atomic.Int32
}

func (f *fakeEnv) Name() string                     { return "sandbox" }
func (f *fakeEnv) GuardMode() environment.GuardMode { return environment.Federated }
func (f *fakeEnv) SecureCookies() bool              { return true }
func (f *fakeEnv) RequiresVerifier() bool           { return true }
func (f *fakeEnv) ClientID() string                 { return "client-1" }
func (f *fakeEnv) Documents() environment.Documents { return nil }
func (f *fakeEnv) AuthorizeURL(state, verifier string) string {
	return "https://idp.example/authorize?state=" + state + "&code_challenge=" + pkce.Challenge(verifier)
}

func (f *fakeEnv) ExchangeCode(_ context.Context, code, verifier, redirectURI string) (*digilocker.Token, error) {
	if f.exchange == nil {
		return &digilocker.Token{AccessToken: "at-" + code, RefreshToken: "rt-1", ExpiresIn: 3600}, nil
	}
	return f.exchange(code, verifier, redirectURI)
}

func (f *fakeEnv) RefreshToken(_ context.Context, rt string) (*digilocker.Token, error) {
	f.refreshes.Add(1)
	return f.refresh(rt)
}

func (f *fakeEnv) UserInfo(_ context.Context, at string) (digilocker.Profile, error) {
	if f.userinfo == nil {
		return digilocker.Profile{"sub": "user-1"}, nil
	}
	return f.userinfo(at)
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newDeps(t *testing.T, env environment.Environment) Deps {
	t.Helper()
	kv := cache.NewMemory("test", 5*time.Millisecond)
	t.Cleanup(func() { _ = kv.Close() })
	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	c, err := cipher.New(key)
	require.NoError(t, err)
	return Deps{
		Env:       env,
		Store:     state.New(kv),
		Cipher:    c,
		PublicURL: "https://api.example/",
		Now:       func() time.Time { return fixedNow },
	}
}

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestLogin_StoresVerifierAndCallback(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, &fakeEnv{})
	svc := NewServices(d)

	res, err := svc.Login.Login(ctx, dto.LoginRequest{FrontendCallback: " https://app.example/done "})
	require.NoError(t, err)

	id := stateFrom(t, res.RedirectURL)
	st, ok := d.Store.ValidateState(ctx, id)
	require.True(t, ok)
	assert.NotEmpty(t, st.Verifier)
	assert.Equal(t, "https://app.example/done", st.CallbackURL)
	assert.Contains(t, res.RedirectURL, "code_challenge="+pkce.Challenge(st.Verifier))
}

func TestLogin_RejectsRelativeCallback(t *testing.T) {
	svc := NewLoginService(newDeps(t, &fakeEnv{}))
	_, err := svc.Login(context.Background(), dto.LoginRequest{FrontendCallback: "/relative"})
	assert.ErrorIs(t, err, ErrInvalidCallbackURL)
}

func TestLogin_MockCreatesStateWithoutVerifier(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, environment.NewMock(jwt.NewIssuer("secret")))

	res, err := NewLoginService(d).Login(ctx, dto.LoginRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.RedirectURL, "/auth/callback?"))

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	out, err := NewCallbackService(d).Callback(ctx, dto.CallbackRequest{
		Code:  u.Query().Get("code"),
		State: u.Query().Get("state"),
	})
	require.NoError(t, err)
	assert.Equal(t, DashboardPath, out.RedirectURL)
	assert.Equal(t, environment.MockRefreshToken, out.Credentials.RefreshToken)
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, &fakeEnv{})
	svc := NewServices(d)

	res, err := svc.Login.Login(ctx, dto.LoginRequest{})
	require.NoError(t, err)
	id := stateFrom(t, res.RedirectURL)

	out, err := svc.Callback.Callback(ctx, dto.CallbackRequest{Code: "c1", State: id})
	require.NoError(t, err)
	assert.Empty(t, out.RedirectURL)
	assert.Equal(t, "at-c1", out.Credentials.AccessToken)
	assert.Equal(t, fixedNow.Add(time.Hour), out.Credentials.ExpiresAt)
	assert.Equal(t, "rt-1", out.Token.RefreshToken)

	_, err = svc.Callback.Callback(ctx, dto.CallbackRequest{Code: "c1", State: id})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCallback_RedirectsToFrontendWithIDToken(t *testing.T) {
	ctx := context.Background()
	env := &fakeEnv{exchange: func(code, verifier, _ string) (*digilocker.Token, error) {
		if verifier == "" {
			return nil, errors.New("no verifier")
		}
		return &digilocker.Token{AccessToken: "at", IDToken: "idt", ExpiresIn: 60}, nil
	}}
	svc := NewServices(newDeps(t, env))

	res, err := svc.Login.Login(ctx, dto.LoginRequest{FrontendCallback: "https://app.example/cb?x=1"})
	require.NoError(t, err)
	id := stateFrom(t, res.RedirectURL)

	out, err := svc.Callback.Callback(ctx, dto.CallbackRequest{Code: "c", State: id})
	require.NoError(t, err)
	u, err := url.Parse(out.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "app.example", u.Host)
	assert.Equal(t, "1", u.Query().Get("x"))
	assert.Equal(t, id, u.Query().Get("state"))
	assert.Equal(t, "idt", u.Query().Get("id_token"))
}

func TestCallback_MissingVerifier(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, &fakeEnv{})
	id, err := d.Store.CreateState(ctx, "", "")
	require.NoError(t, err)

	_, err = NewCallbackService(d).Callback(ctx, dto.CallbackRequest{Code: "c", State: id})
	assert.ErrorIs(t, err, ErrMissingVerifier)
}

func TestCallback_ExchangeFailureKinds(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		err     error
		timeout bool
	}{
		"rejected": {err: digilocker.ErrRejected},
		"timeout":  {err: digilocker.ErrTimeout, timeout: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := &fakeEnv{exchange: func(string, string, string) (*digilocker.Token, error) { return nil, tc.err }}
			d := newDeps(t, env)
			id, err := d.Store.CreateState(ctx, "v", "")
			require.NoError(t, err)

			_, err = NewCallbackService(d).Callback(ctx, dto.CallbackRequest{Code: "c", State: id})
			assert.ErrorIs(t, err, ErrProviderExchangeFailed)
			assert.Equal(t, tc.timeout, errors.Is(err, ErrProviderTimeout))
		})
	}
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, &fakeEnv{})
	svc := NewExchangeService(d)

	_, err := svc.ExchangeCode(ctx, dto.ExchangeCodeRequest{State: "s"})
	assert.ErrorIs(t, err, ErrMissingCode)
	_, err = svc.ExchangeCode(ctx, dto.ExchangeCodeRequest{Code: "c"})
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.ExchangeCode(ctx, dto.ExchangeCodeRequest{Code: "c", State: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidState)

	id, err := d.Store.CreateState(ctx, "v", "")
	require.NoError(t, err)
	out, err := svc.ExchangeCode(ctx, dto.ExchangeCodeRequest{Code: "c", State: id})
	require.NoError(t, err)
	assert.Equal(t, "at-c", out.AccessToken)
	assert.Equal(t, int64(3600), out.ExpiresIn)
	assert.Equal(t, "user-1", out.UserInfo.Subject())
}

func TestRefresh_EmptyInputMakesNoCall(t *testing.T) {
	env := &fakeEnv{refresh: func(string) (*digilocker.Token, error) { t.Fatal("unexpected refresh"); return nil, nil }}
	res := NewRefreshService(newDeps(t, env)).Refresh(context.Background(), "  ")
	assert.False(t, res.OK)
	assert.True(t, res.Credentials.IsZero())
	assert.Zero(t, env.refreshes.Load())
}

func TestRefresh_DecryptFailureClears(t *testing.T) {
	env := &fakeEnv{}
	res := NewRefreshService(newDeps(t, env)).Refresh(context.Background(), "not-a-valid-blob")
	assert.False(t, res.OK)
	assert.True(t, res.Credentials.Clear)
	assert.Zero(t, env.refreshes.Load())
}

func TestRefresh_Outcomes(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		tok       *digilocker.Token
		err       error
		ok        bool
		clear     bool
		refreshed string
	}{
		"rotated":   {tok: &digilocker.Token{AccessToken: "new", RefreshToken: "rt-new", ExpiresIn: 60}, ok: true, refreshed: "rt-new"},
		"kept":      {tok: &digilocker.Token{AccessToken: "new", ExpiresIn: 60}, ok: true, refreshed: "rt-old"},
		"rejected":  {err: digilocker.ErrRejected, clear: true},
		"transient": {err: &digilocker.UpstreamError{Status: http.StatusBadGateway}},
		"timeout":   {err: digilocker.ErrTimeout},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := &fakeEnv{refresh: func(rt string) (*digilocker.Token, error) {
				assert.Equal(t, "rt-old", rt)
				return tc.tok, tc.err
			}}
			d := newDeps(t, env)
			enc, err := d.Cipher.Encrypt("rt-old")
			require.NoError(t, err)

			res := NewRefreshService(d).Refresh(ctx, enc)
			assert.Equal(t, tc.ok, res.OK)
			assert.Equal(t, tc.clear, res.Credentials.Clear)
			if tc.ok {
				assert.Equal(t, "new", res.AccessToken)
				assert.Equal(t, tc.refreshed, res.Credentials.RefreshToken)
				assert.Equal(t, fixedNow.Add(time.Minute), res.Credentials.ExpiresAt)
			} else if !tc.clear {
				assert.True(t, res.Credentials.IsZero())
			}
		})
	}
}

func TestLogout_AlwaysClears(t *testing.T) {
	svc := NewLogoutService()
	assert.True(t, svc.Logout(context.Background()).Clear)
	assert.True(t, svc.Logout(context.Background()).Clear)
}

func TestDebug_CheckEncryption(t *testing.T) {
	d := newDeps(t, &fakeEnv{})
	out := NewDebugService(d.Cipher).CheckEncryption(context.Background())
	assert.True(t, out.Success)
	assert.True(t, out.EncryptionMatch)
	assert.Equal(t, 32, out.KeyLength)

	out = NewDebugService(nil).CheckEncryption(context.Background())
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}
