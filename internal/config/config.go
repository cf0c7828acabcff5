package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath     string
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	SessionSecret    string
	BaseURL          string
	LogLevel         string
	Port             string

	AIEndpoint string
	AIAPIKey   string
	AIModel    string
	AITimeout  time.Duration

	AssignmentPolicyFile string
}

// Load reads the server configuration. A .env file in the working directory
// is picked up first when present.
func Load() (Config, error) {
	config, err := LoadWithoutSession()
	if err != nil {
		return Config{}, err
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	return config, nil
}

// LoadWithoutSession reads the configuration without requiring the session
// secret, for tools that never serve HTTP.
func LoadWithoutSession() (Config, error) {
	_ = godotenv.Load()

	config := Config{
		DatabasePath:         envOrDefault("DATABASE_PATH", "./data/family-planner.db"),
		OIDCIssuer:           os.Getenv("OIDC_ISSUER"),
		OIDCClientID:         os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret:     os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:      os.Getenv("OIDC_REDIRECT_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		BaseURL:              envOrDefault("BASE_URL", "http://localhost:8080"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		Port:                 envOrDefault("PORT", "8080"),
		AIEndpoint:           os.Getenv("AI_ENDPOINT"),
		AIAPIKey:             os.Getenv("AI_API_KEY"),
		AIModel:              os.Getenv("AI_MODEL"),
		AssignmentPolicyFile: os.Getenv("ASSIGNMENT_POLICY_FILE"),
	}

	timeout, err := time.ParseDuration(envOrDefault("AI_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing AI_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("AI_TIMEOUT must be positive, got %s", timeout)
	}
	config.AITimeout = timeout

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
