package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_API_KEY", "api-key")
	t.Setenv("FIREBASE_AUTH_DOMAIN", "project.firebaseapp.com")
	t.Setenv("FIREBASE_PROJECT_ID", "project")
	t.Setenv("FIREBASE_STORAGE_BUCKET", "project.appspot.com")
	t.Setenv("FIREBASE_MESSAGING_SENDER_ID", "123456")
	t.Setenv("FIREBASE_APP_ID", "1:123456:web:abc")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/service-account.json")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, "api-key", cfg.FirebaseAPIKey)
}

func TestLoadConfigMissingIdentifier(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FIREBASE_APP_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required environment variable: FIREBASE_APP_ID")
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
}

func TestLoadConfigBase64CredentialsAccepted(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "eyJmYWtlIjoidHJ1ZSJ9")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "eyJmYWtlIjoidHJ1ZSJ9", cfg.FirebaseServiceAccountJSONBase64)
}

func TestLoadConfigRejectsUnknownCacheBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}

func TestLoadConfigRedisBackendRequiresAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDRESS")

	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SESSION_TIMEOUT", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout)
}
