package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled: sin client_id el proveedor no se registra.
func (p ProviderConfig) Enabled() bool { return p.ClientID != "" }

type Config struct {
	App struct {
		// dev | prod | test
		Env     string `yaml:"env"`
		Version string `yaml:"-"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		BaseURL            string   `yaml:"base_url"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// TrustedProxies: IPs o CIDRs cuyo X-Forwarded-For se honra.
		TrustedProxies []string      `yaml:"trusted_proxies"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Auth struct {
		StateSecret  string        `yaml:"state_secret"`
		JWTSecret    string        `yaml:"jwt_secret"`
		Issuer       string        `yaml:"issuer"`
		AccessTTL    time.Duration `yaml:"access_ttl"`
		RefreshTTL   time.Duration `yaml:"refresh_ttl"`
		CookieSecure bool          `yaml:"cookie_secure"`
	} `yaml:"auth"`

	Relay struct {
		// memory | redis
		Driver        string        `yaml:"driver"`
		TTL           time.Duration `yaml:"ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		Redis         struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"relay"`

	Storage struct {
		// fs | postgres | memory
		Driver   string `yaml:"driver"`
		FSPath   string `yaml:"fs_path"`
		DSN      string `yaml:"dsn"`
		MaxConns int32  `yaml:"max_conns"`
	} `yaml:"storage"`

	Providers struct {
		Discord ProviderConfig `yaml:"discord"`
		Google  ProviderConfig `yaml:"google"`
	} `yaml:"providers"`

	Rate struct {
		ClaimPerMinute int `yaml:"claim_per_minute"`
		LoginPerMinute int `yaml:"login_per_minute"`
	} `yaml:"rate"`
}

// Load lee path (si no es vacío), aplica defaults y después las variables de
// entorno. El resultado no está validado: llamar a Validate.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "clickauth"
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = 24 * time.Hour
	}
	if c.Relay.Driver == "" {
		c.Relay.Driver = "memory"
	}
	if c.Relay.TTL == 0 {
		c.Relay.TTL = 10 * time.Second
	}
	if c.Relay.SweepInterval == 0 {
		c.Relay.SweepInterval = 5 * time.Second
	}
	if c.Relay.Redis.Prefix == "" {
		c.Relay.Redis.Prefix = "clickauth:relay:"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.Storage.FSPath == "" {
		c.Storage.FSPath = "data/accounts.json"
	}
	if c.Storage.MaxConns == 0 {
		c.Storage.MaxConns = 10
	}
	if c.Rate.ClaimPerMinute == 0 {
		c.Rate.ClaimPerMinute = 30
	}
	if c.Rate.LoginPerMinute == 0 {
		c.Rate.LoginPerMinute = 10
	}
	base := strings.TrimRight(c.Server.BaseURL, "/")
	if base == "" {
		base = "http://localhost" + c.Server.Addr
	}
	if c.Providers.Discord.RedirectURL == "" {
		c.Providers.Discord.RedirectURL = base + "/login/discord/callback"
	}
	if c.Providers.Google.RedirectURL == "" {
		c.Providers.Google.RedirectURL = base + "/login/google/callback"
	}
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
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("SERVER_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// AUTH
	if v, ok := getEnvStr("STATE_SECRET"); ok {
		c.Auth.StateSecret = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.Auth.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.Auth.RefreshTTL = v
	}
	if v, ok := getEnvBool("AUTH_COOKIE_SECURE"); ok {
		c.Auth.CookieSecure = v
	}

	// RELAY
	if v, ok := getEnvStr("RELAY_DRIVER"); ok {
		c.Relay.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvDur("RELAY_TTL"); ok {
		c.Relay.TTL = v
	}
	if v, ok := getEnvDur("RELAY_SWEEP_INTERVAL"); ok {
		c.Relay.SweepInterval = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Relay.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Relay.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Relay.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Relay.Redis.Prefix = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_FS_PATH"); ok {
		c.Storage.FSPath = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_CONNS"); ok {
		c.Storage.MaxConns = int32(v)
	}

	// PROVIDERS
	if v, ok := getEnvStr("DISCORD_CLIENT_ID"); ok {
		c.Providers.Discord.ClientID = v
	}
	if v, ok := getEnvStr("DISCORD_CLIENT_SECRET"); ok {
		c.Providers.Discord.ClientSecret = v
	}
	if v, ok := getEnvStr("DISCORD_REDIRECT_URL"); ok {
		c.Providers.Discord.RedirectURL = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Providers.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.Providers.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_REDIRECT_URL"); ok {
		c.Providers.Google.RedirectURL = v
	}

	// RATE
	if v, ok := getEnvInt("RATE_CLAIM_PER_MINUTE"); ok {
		c.Rate.ClaimPerMinute = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_PER_MINUTE"); ok {
		c.Rate.LoginPerMinute = v
	}
}

// Validate rechaza configuraciones con las que el servicio no puede arrancar.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.StateSecret == "" {
		errs = append(errs, errors.New("auth.state_secret (STATE_SECRET) is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("auth.access_ttl and auth.refresh_ttl must be positive"))
	} else if c.Auth.AccessTTL >= c.Auth.RefreshTTL {
		errs = append(errs, errors.New("auth.access_ttl must be shorter than auth.refresh_ttl"))
	}
	for _, p := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: %q is not an IP or CIDR", p))
		}
	}
	if c.Relay.TTL <= 0 {
		errs = append(errs, errors.New("relay.ttl must be positive"))
	}
	switch c.Relay.Driver {
	case "memory":
	case "redis":
		if c.Relay.Redis.Addr == "" {
			errs = append(errs, errors.New("relay.redis.addr is required with relay.driver=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("relay.driver %q not supported (memory|redis)", c.Relay.Driver))
	}
	switch c.Storage.Driver {
	case "fs":
		if c.Storage.FSPath == "" {
			errs = append(errs, errors.New("storage.fs_path is required with storage.driver=fs"))
		}
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required with storage.driver=postgres"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (fs|postgres|memory)", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
