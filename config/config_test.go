package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PAYMENT_REDIRECT_DELAY_MS", "")
	t.Setenv("KAFKA_ENABLED", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 800*time.Millisecond, cfg.Business.PaymentRedirectDelay)
	assert.Equal(t, 30, cfg.Business.DefaultConnectionTimeout)
	assert.True(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "not-a-bool")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Redis.Enabled)
}

func TestValidateRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	assert.Equal(t, DevJWTSecret, cfg.Auth.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureJWTSecret)

	cfg.Auth.JWTSecret = "   "
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureJWTSecret)

	t.Setenv("JWT_SECRET", "a-long-private-secret")
	assert.NoError(t, Load().Validate())
}

func TestValidateAllowsDevSecretOutsideProduction(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	assert.NoError(t, Load().Validate())
}
