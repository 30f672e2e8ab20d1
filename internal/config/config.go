package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Firebase project identifiers. All six are required at startup; the
	// frontend receives them verbatim through GET /api/v1/config.
	FirebaseAPIKey            string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseAuthDomain        string `mapstructure:"FIREBASE_AUTH_DOMAIN"`
	FirebaseProjectID         string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket     string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	FirebaseMessagingSenderID string `mapstructure:"FIREBASE_MESSAGING_SENDER_ID"`
	FirebaseAppID             string `mapstructure:"FIREBASE_APP_ID"`

	// Server credentials for the Firebase Admin SDK. One of the two must be set.
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	ClientURL string `mapstructure:"CLIENT_URL"`

	// Cache backend selection: "memory" (default) or "redis".
	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	SessionTimeout time.Duration `mapstructure:"SESSION_TIMEOUT"`
}

// requiredIdentifiers are the Firebase project identifiers that must be present
// at startup. Absence of any is a fatal configuration error.
var requiredIdentifiers = []string{
	"FIREBASE_API_KEY",
	"FIREBASE_AUTH_DOMAIN",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_STORAGE_BUCKET",
	"FIREBASE_MESSAGING_SENDER_ID",
	"FIREBASE_APP_ID",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("SESSION_TIMEOUT", time.Hour)

	keys := []string{
		"PORT", "GIN_MODE",
		"GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"CLIENT_URL",
		"CACHE_BACKEND", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"CACHE_TTL", "SESSION_TIMEOUT",
	}
	keys = append(keys, requiredIdentifiers...)
	for _, key := range keys {
		v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	for _, key := range requiredIdentifiers {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"redis\", got %q", cfg.CacheBackend)
	}
	if cfg.CacheBackend == "redis" && cfg.RedisAddress == "" {
		return nil, errors.New("REDIS_ADDRESS is required when CACHE_BACKEND is \"redis\"")
	}

	return &cfg, nil
}
