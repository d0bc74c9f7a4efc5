package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "mock")
	t.Setenv("CONFIG_ENC_KEY", validKey())
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3007", c.Server.Addr)
	assert.Equal(t, "http://localhost:3007", c.Server.PublicURL)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, "dl_token", c.Cookies.AccessTokenName)
	assert.Equal(t, "dl_rtoken", c.Cookies.RefreshTokenName)
	assert.Equal(t, "dl_expires_at", c.Cookies.ExpiresAtName)
	assert.Equal(t, 7*24*time.Hour, c.Cookies.RefreshMaxAge)
	assert.Equal(t, "digilocker://auth", c.Provider.QRAuthEndpoint)
	assert.Equal(t, 5, c.Rate.RefreshLimit)
	assert.True(t, c.Metrics.Enabled)
	assert.True(t, c.IsMock())
	require.NoError(t, c.Validate())
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
app:
  env: sandbox
server:
  addr: ":9000"
provider:
  client_id: from-yaml
  redirect_uri: http://localhost:9000/auth/callback
  auth_url: https://idp.example/authorize
  token_url: https://idp.example/token
  userinfo_url: https://idp.example/userinfo
  api_base_url: https://api.example/v1
cookies:
  refresh_max_age: 48h
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("DIGILOCKER_CLIENT_ID", "from-env")
	t.Setenv("CONFIG_ENC_KEY", validKey())
	t.Setenv("DIGILOCKER_REFRESH_TOKEN_MAX_AGE", "3600000")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sandbox", c.App.Env)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, "from-env", c.Provider.ClientID)
	assert.Equal(t, time.Hour, c.Cookies.RefreshMaxAge)
	assert.False(t, c.IsMock())
	require.NoError(t, c.Validate())
}

func TestValidate_EncryptionKeyIsFatal(t *testing.T) {
	t.Setenv("APP_ENV", "mock")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, c.Validate(), "CONFIG_ENC_KEY is required")

	c.Security.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 16))
	assert.ErrorContains(t, c.Validate(), "CONFIG_ENC_KEY")
}

func TestValidate_RealEnvRequiresProvider(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CONFIG_ENC_KEY", validKey())

	c, err := Load("")
	require.NoError(t, err)
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DIGILOCKER_CLIENT_ID is required")
	assert.Contains(t, err.Error(), "DIGILOCKER_TOKEN_URL is required")
}

func TestIsMock_ClientIDOutsideProduction(t *testing.T) {
	var c Config
	c.App.Env = EnvDevelopment
	c.Provider.ClientID = MockClientID
	assert.True(t, c.IsMock())

	c.App.Env = EnvProduction
	assert.False(t, c.IsMock())
}

func TestValidate_UnknownEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("CONFIG_ENC_KEY", validKey())
	c, err := Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, c.Validate(), "Env")
}

func TestValidate_NonPositiveDurations(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		field string
	}{
		{name: "negative cleanup interval", env: "CACHE_CLEANUP_INTERVAL", value: "-1m", field: "CleanupInterval"},
		{name: "negative refresh window", env: "REFRESH_RATE_WINDOW", value: "-1h", field: "RefreshWindow"},
		{name: "negative provider timeout", env: "PROVIDER_TIMEOUT", value: "-5s", field: "Timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "mock")
			t.Setenv("CONFIG_ENC_KEY", validKey())
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv(tt.env, tt.value)

			c, err := Load("")
			require.NoError(t, err)
			err = c.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.field)
			assert.ErrorContains(t, err, `"gt"`)
		})
	}
}
