package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("LOCK_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := fromEnv()
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOCK_TTL", "250ms")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PROVISIONING", "queue")

	cfg := fromEnv()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "queue", cfg.Provisioning)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOCK_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")

	cfg := fromEnv()
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, App{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, App{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", App{Timezone: "UTC"}.Location().String())
}
