package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration, loaded once at startup.
type Config struct {
	Server    ServerConfig
	Primary   ProviderConfig
	Secondary ProviderConfig
	Scoring   ScoringConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      string
	APISecret string // shared secret expected in the X-API-Key header
	// MaxUploadBytes bounds multipart form parsing.
	MaxUploadBytes int64
}

// ProviderConfig identifies one OpenAI-compatible chat completions backend.
// An incompletely configured provider is skipped at call time, not at startup.
type ProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// Complete reports whether every field needed to attempt a call is set.
func (p ProviderConfig) Complete() bool {
	return p.APIKey != "" && p.BaseURL != "" && p.Model != ""
}

// ScoringConfig holds settings for the per-candidate scoring stage.
type ScoringConfig struct {
	Concurrency int
}

const openAIBaseURL = "https://api.openai.com/v1"

// Load reads configuration from the environment, preferring a .env file when
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			APISecret:      os.Getenv("API_SECRET_KEY"),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_SIZE", 32<<20),
		},
		Primary: ProviderConfig{
			Name:    "deepseek",
			APIKey:  os.Getenv("DS_API_KEY"),
			BaseURL: os.Getenv("DS_API_URL"),
			Model:   os.Getenv("DS_NAME"),
		},
		Secondary: ProviderConfig{
			Name:    "openai",
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: getEnv("OPENAI_API_URL", openAIBaseURL),
			Model:   os.Getenv("OPENAI_API_MODEL"),
		},
		Scoring: ScoringConfig{
			Concurrency: getEnvAsInt("SCORER_CONCURRENCY", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot run without. Provider
// credentials are deliberately not required here: a missing provider is a
// per-call failure that the fallback chain absorbs.
func (c *Config) Validate() error {
	if c.Server.APISecret == "" {
		return fmt.Errorf("API_SECRET_KEY is required")
	}
	if c.Scoring.Concurrency < 1 {
		return fmt.Errorf("SCORER_CONCURRENCY must be at least 1, got %d", c.Scoring.Concurrency)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}
