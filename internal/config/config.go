// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is assembled in three layers: baked-in defaults, then the
// optional YAML file, then environment variables. Later layers win.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Inventory InventoryConfig `koanf:"inventory"`
	Features  FeaturesConfig  `koanf:"features"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

// InventoryConfig configures the upstream ticket inventory provider. An
// empty APIKey does not fail validation: the service degrades to the
// clearly-labeled demo source instead of crashing.
type InventoryConfig struct {
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url"`
	City           string        `koanf:"city"`
	Timeout        time.Duration `koanf:"timeout"`
	PageSize       int           `koanf:"page_size"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
}

// FeaturesConfig maps gated features onto their minimum subscription tier.
type FeaturesConfig struct {
	HotDealsMinTier string `koanf:"hot_deals_min_tier"`
	AlertsMinTier   string `koanf:"alerts_min_tier"`
	PushMinTier     string `koanf:"push_min_tier"`
}

// AlertsConfig holds the per-tier daily alert quotas. A limit of zero
// means unlimited.
type AlertsConfig struct {
	DailyLimits map[string]int `koanf:"daily_limits"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Load reads configuration from defaults, an optional YAML file and
// the environment, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "Rip City Dispatch",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "ripcity-dispatch",
		"jwt.audience":             "ripcity-dispatch-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",

		"inventory.base_url":         "https://app.ticketmaster.com/discovery/v2",
		"inventory.city":             "Portland",
		"inventory.timeout":          "15s",
		"inventory.page_size":        50,
		"inventory.requests_per_sec": 4.0,

		"features.hot_deals_min_tier": "pro",
		"features.alerts_min_tier":    "free",
		"features.push_min_tier":      "pro",

		"alerts.daily_limits": map[string]int{
			"free":       3,
			"pro":        15,
			"premium":    50,
			"enterprise": 0,
		},

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept", "Authorization", "Content-Type", "X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "ripcity-dispatch",
	}
}

// envKeyMap names every environment variable the service reads. Env
// keys outside this map are ignored rather than guessed at.
var envKeyMap = map[string]string{
	"DATABASE_URL": "database.url",
	"REDIS_URL":    "redis.url",
	"ENVIRONMENT":  "app.environment",
	"HOST":         "server.host",
	"PORT":         "server.port",
	"LOG_LEVEL":    "log.level",
	"LOG_FORMAT":   "log.format",

	"JWT_PRIVATE_KEY_PATH":     "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":      "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":  "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE": "jwt.refresh_token_expire",
	"JWT_ISSUER":               "jwt.issuer",
	"JWT_AUDIENCE":             "jwt.audience",

	"TICKETMASTER_KEY":   "inventory.api_key",
	"INVENTORY_API_KEY":  "inventory.api_key",
	"INVENTORY_BASE_URL": "inventory.base_url",
	"INVENTORY_CITY":     "inventory.city",
	"INVENTORY_TIMEOUT":  "inventory.timeout",

	"RATE_LIMIT_REQUESTS": "rate_limit.requests",
	"RATE_LIMIT_WINDOW":   "rate_limit.window",
	"RATE_LIMIT_BURST":    "rate_limit.burst",

	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	return envKeyMap[s]
}

func (c *Config) validate() error {
	required := []struct {
		value, name string
	}{
		{c.Database.URL, "DATABASE_URL"},
		{c.Redis.URL, "REDIS_URL"},
		{c.JWT.PrivateKeyPath, "JWT_PRIVATE_KEY_PATH"},
		{c.JWT.PublicKeyPath, "JWT_PUBLIC_KEY_PATH"},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}

	positive := []struct {
		value time.Duration
		name  string
	}{
		{c.Server.ReadTimeout, "server.read_timeout"},
		{c.Server.WriteTimeout, "server.write_timeout"},
		{c.Inventory.Timeout, "inventory.timeout"},
	}
	for _, f := range positive {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive", f.name)
		}
	}

	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		return fmt.Errorf("CORS wildcard '*' cannot be used with AllowCredentials")
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		return fmt.Errorf("OTEL_INSECURE must be false in production")
	}

	knownTiers := []string{"free", "pro", "premium", "enterprise"}
	for _, tier := range []string{
		c.Features.HotDealsMinTier,
		c.Features.AlertsMinTier,
		c.Features.PushMinTier,
	} {
		if !slices.Contains(knownTiers, tier) {
			return fmt.Errorf("unknown tier %q in features config", tier)
		}
	}

	return nil
}

// DemoMode reports whether the service runs against the fixture inventory
// source because no upstream API key was configured.
func (c *Config) DemoMode() bool {
	return c.Inventory.APIKey == ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
