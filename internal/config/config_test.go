// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Environment: "development"},
		Server: ServerConfig{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database:  DatabaseConfig{URL: "postgres://localhost/dispatch"},
		Redis:     RedisConfig{URL: "redis://localhost:6379"},
		JWT:       JWTConfig{PrivateKeyPath: "keys/private.pem", PublicKeyPath: "keys/public.pem"},
		Inventory: InventoryConfig{Timeout: 15 * time.Second},
		Features: FeaturesConfig{
			HotDealsMinTier: "pro",
			AlertsMinTier:   "free",
			PushMinTier:     "pro",
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts a complete config", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.validate())
	})

	t.Run("rejects missing database url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.URL = ""
		assert.ErrorContains(t, cfg.validate(), "DATABASE_URL")
	})

	t.Run("rejects wildcard origin with credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.CORS.AllowCredentials = true
		cfg.CORS.AllowedOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "wildcard")
	})

	t.Run("rejects insecure otel in production", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "production"
		cfg.Otel.Enabled = true
		cfg.Otel.Insecure = true
		assert.ErrorContains(t, cfg.validate(), "OTEL_INSECURE")
	})

	t.Run("rejects unknown feature tier", func(t *testing.T) {
		cfg := validConfig()
		cfg.Features.PushMinTier = "platinum"
		assert.ErrorContains(t, cfg.validate(), "platinum")
	})

	t.Run("missing inventory key is not an error", func(t *testing.T) {
		cfg := validConfig()
		cfg.Inventory.APIKey = ""
		require.NoError(t, cfg.validate())
		assert.True(t, cfg.DemoMode())
	})
}
