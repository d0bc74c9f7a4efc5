package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Entornos reconocidos en APP_ENV.
const (
	EnvDevelopment = "development"
	EnvMock        = "mock"
	EnvSandbox     = "sandbox"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// MockClientID activa el entorno mock fuera de producción aunque APP_ENV no
// sea "mock".
const MockClientID = "mock-client-id"

type Config struct {
	App struct {
		Env      string `yaml:"env" validate:"oneof=development mock sandbox production test"`
		LogLevel string `yaml:"log_level"`
		Version  string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr" validate:"required"`
		PublicURL          string   `yaml:"public_url" validate:"required,url"` // SERVER_URL
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Store struct {
		Driver          string        `yaml:"driver" validate:"oneof=memory redis"`
		RedisURL        string        `yaml:"redis_url" validate:"required_if=Driver redis"`
		Prefix          string        `yaml:"prefix"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" validate:"gt=0"`
	} `yaml:"store"`

	Security struct {
		EncryptionKey string `yaml:"encryption_key"` // CONFIG_ENC_KEY, base64 32 bytes
		JWTSecret     string `yaml:"jwt_secret"`
	} `yaml:"security"`

	Provider struct {
		ClientID       string        `yaml:"client_id"`
		ClientSecret   string        `yaml:"client_secret"`
		RedirectURI    string        `yaml:"redirect_uri"`
		AuthURL        string        `yaml:"auth_url"`
		TokenURL       string        `yaml:"token_url"`
		UserInfoURL    string        `yaml:"userinfo_url"`
		APIBaseURL     string        `yaml:"api_base_url"`
		QRAuthEndpoint string        `yaml:"qr_auth_endpoint"`
		Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"provider"`

	Cookies struct {
		AccessTokenName  string        `yaml:"access_token_name" validate:"required"`
		RefreshTokenName string        `yaml:"refresh_token_name" validate:"required"`
		ExpiresAtName    string        `yaml:"expires_at_name" validate:"required"`
		RefreshMaxAge    time.Duration `yaml:"refresh_max_age" validate:"gt=0"`
		Domain           string        `yaml:"domain"`
	} `yaml:"cookies"`

	Rate struct {
		RefreshLimit  int           `yaml:"refresh_limit" validate:"gte=0"`
		RefreshWindow time.Duration `yaml:"refresh_window" validate:"gt=0"`
	} `yaml:"rate"`

	Setu struct {
		BaseURL           string `yaml:"base_url"`
		ClientID          string `yaml:"client_id"`
		ClientSecret      string `yaml:"client_secret"`
		ProductInstanceID string `yaml:"product_instance_id"`
	} `yaml:"setu"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load lee el YAML opcional (path vacío = solo env), aplica defaults y
// overrides de entorno. No valida: llamar Validate.
func Load(path string) (*Config, error) {
	var c Config
	c.Metrics.Enabled = true
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = EnvDevelopment
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3007"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost:3007"
	}
	c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")
	if c.Store.Driver == "" {
		if c.Store.RedisURL != "" {
			c.Store.Driver = "redis"
		} else {
			c.Store.Driver = "memory"
		}
	}
	if c.Store.Prefix == "" {
		c.Store.Prefix = "lockerbridge"
	}
	if c.Store.CleanupInterval == 0 {
		c.Store.CleanupInterval = 5 * time.Minute
	}
	if c.Provider.QRAuthEndpoint == "" {
		c.Provider.QRAuthEndpoint = "digilocker://auth"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Cookies.AccessTokenName == "" {
		c.Cookies.AccessTokenName = "dl_token"
	}
	if c.Cookies.RefreshTokenName == "" {
		c.Cookies.RefreshTokenName = "dl_rtoken"
	}
	if c.Cookies.ExpiresAtName == "" {
		c.Cookies.ExpiresAtName = "dl_expires_at"
	}
	if c.Cookies.RefreshMaxAge == 0 {
		c.Cookies.RefreshMaxAge = 7 * 24 * time.Hour
	}
	if c.Rate.RefreshLimit == 0 {
		c.Rate.RefreshLimit = 5
	}
	if c.Rate.RefreshWindow == 0 {
		c.Rate.RefreshWindow = time.Hour
	}
}

// applyEnvOverrides: las variables de entorno pisan el YAML.
func (c *Config) applyEnvOverrides() {
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := getEnvStr(k); ok {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	setDur := func(dst *time.Duration, key string) {
		if v, ok := getEnvDur(key); ok {
			*dst = v
		}
	}

	setStr(&c.App.Env, "APP_ENV", "NODE_ENV")
	c.App.Env = strings.ToLower(c.App.Env)
	setStr(&c.App.LogLevel, "LOG_LEVEL")
	setStr(&c.App.Version, "APP_VERSION")

	setStr(&c.Server.Addr, "SERVER_ADDR")
	if c.Server.Addr == "" {
		if p, ok := getEnvInt("PORT"); ok {
			c.Server.Addr = ":" + strconv.Itoa(p)
		}
	}
	setStr(&c.Server.PublicURL, "SERVER_URL")
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	setStr(&c.Store.Driver, "CACHE_DRIVER")
	setStr(&c.Store.RedisURL, "REDIS_URL")
	setStr(&c.Store.Prefix, "CACHE_PREFIX")
	setDur(&c.Store.CleanupInterval, "CACHE_CLEANUP_INTERVAL")

	setStr(&c.Security.EncryptionKey, "CONFIG_ENC_KEY")
	setStr(&c.Security.JWTSecret, "JWT_SECRET")

	setStr(&c.Provider.ClientID, "DIGILOCKER_CLIENT_ID")
	setStr(&c.Provider.ClientSecret, "DIGILOCKER_CLIENT_SECRET")
	setStr(&c.Provider.RedirectURI, "DIGILOCKER_REDIRECT_URI")
	setStr(&c.Provider.AuthURL, "DIGILOCKER_AUTH_URL")
	setStr(&c.Provider.TokenURL, "DIGILOCKER_TOKEN_URL")
	setStr(&c.Provider.UserInfoURL, "DIGILOCKER_USERINFO_URL")
	setStr(&c.Provider.APIBaseURL, "DIGILOCKER_API_BASE_URL")
	setStr(&c.Provider.QRAuthEndpoint, "DIGILOCKER_QR_AUTH_ENDPOINT")
	setDur(&c.Provider.Timeout, "PROVIDER_TIMEOUT")

	setStr(&c.Cookies.AccessTokenName, "DIGILOCKER_COOKIE_ACCESS_TOKEN_NAME")
	setStr(&c.Cookies.RefreshTokenName, "DIGILOCKER_COOKIE_REFRESH_TOKEN_NAME")
	setStr(&c.Cookies.ExpiresAtName, "DIGILOCKER_COOKIE_EXPIRES_AT_NAME")
	setStr(&c.Cookies.Domain, "COOKIE_DOMAIN")
	setDur(&c.Cookies.RefreshMaxAge, "DIGILOCKER_REFRESH_TOKEN_MAX_AGE")

	if v, ok := getEnvInt("REFRESH_RATE_LIMIT"); ok {
		c.Rate.RefreshLimit = v
	}
	setDur(&c.Rate.RefreshWindow, "REFRESH_RATE_WINDOW")

	setStr(&c.Setu.BaseURL, "SETU_DIGILOCKER_BASE_URL")
	setStr(&c.Setu.ClientID, "SETU_CLIENT_ID")
	setStr(&c.Setu.ClientSecret, "SETU_CLIENT_SECRET")
	setStr(&c.Setu.ProductInstanceID, "SETU_PRODUCT_INSTANCE_ID")

	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

// IsProduction reporta APP_ENV=production.
func (c *Config) IsProduction() bool { return c.App.Env == EnvProduction }

// IsMock reporta si corre el entorno simulado: APP_ENV=mock, o el client id
// de prueba fuera de producción.
func (c *Config) IsMock() bool {
	if c.App.Env == EnvMock {
		return true
	}
	return !c.IsProduction() && c.Provider.ClientID == MockClientID
}

var validate = validator.New()

// Validate chequea la configuración. Un error aquí es fatal en el arranque:
// sin clave de cifrado válida el servicio no arranca.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("config: %s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if c.Security.EncryptionKey == "" {
		errs = append(errs, errors.New("config: CONFIG_ENC_KEY is required (generate one with `lockerbridge keygen`)"))
	} else if _, err := cipher.ParseKey(c.Security.EncryptionKey); err != nil {
		errs = append(errs, fmt.Errorf("config: CONFIG_ENC_KEY: %w", err))
	}

	if c.IsMock() {
		if c.Security.JWTSecret == "" {
			errs = append(errs, errors.New("config: JWT_SECRET is required in mock mode"))
		}
	} else {
		required := map[string]string{
			"DIGILOCKER_CLIENT_ID":    c.Provider.ClientID,
			"DIGILOCKER_REDIRECT_URI": c.Provider.RedirectURI,
			"DIGILOCKER_AUTH_URL":     c.Provider.AuthURL,
			"DIGILOCKER_TOKEN_URL":    c.Provider.TokenURL,
			"DIGILOCKER_USERINFO_URL": c.Provider.UserInfoURL,
			"DIGILOCKER_API_BASE_URL": c.Provider.APIBaseURL,
		}
		for _, k := range slices.Sorted(maps.Keys(required)) {
			if strings.TrimSpace(required[k]) == "" {
				errs = append(errs, fmt.Errorf("config: %s is required", k))
			}
		}
	}
	return errors.Join(errs...)
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// getEnvDur acepta duraciones Go ("168h") o milisegundos enteros.
func getEnvDur(key string) (time.Duration, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, true
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
