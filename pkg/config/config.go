// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Gemini        GeminiConfig
	Naver         NaverConfig
	Observability ObservabilityConfig
	LogLevel      string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

// GeminiConfig holds completion-service settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NaverConfig holds Naver Local Search API credentials. Both fields empty
// disables venue search; the pipelines degrade to candidate-free generation.
type NaverConfig struct {
	ClientID     string
	ClientSecret string
}

// ObservabilityConfig holds metrics settings.
type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from the environment. A missing .env file is not
// an error; exported variables always win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:               envOr("SERVER_ADDR", ":8080"),
			ReadTimeout:        envDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:       envDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout:    envDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			RateLimitPerSecond: envInt("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     envInt("RATE_LIMIT_BURST", 20),
			AllowedOrigins:     []string{envOr("CORS_ALLOWED_ORIGIN", "http://localhost:3000")},
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Naver: NaverConfig{
			ClientID:     os.Getenv("NAVER_CLIENT_ID"),
			ClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: envBool("METRICS_ENABLED", true),
		},
		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
