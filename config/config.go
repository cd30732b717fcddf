package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// General
	DefaultSource string
	RespectRobots bool

	// OzBargain feed
	FeedPages int

	// HTTP fetch behavior
	MaxRetries   int
	RetryDelayMs int
	RateLimitMs  int
	TimeoutMs    int

	// Ingestion
	MaxConcurrent int

	// Storage
	DBDSN string

	// HTTP server
	HTTPPort string
	APIKey   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultSource: "ozbargain",
		RespectRobots: true,
		FeedPages:     5,
		MaxRetries:    3,
		RetryDelayMs:  1000,
		RateLimitMs:   500,
		TimeoutMs:     30000,
		MaxConcurrent: 3,
		DBDSN:         "skrooge.db",
		HTTPPort:      "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("SKROOGE_SOURCE"); v != "" {
		c.DefaultSource = v
	}
	if v := os.Getenv("SKROOGE_FEED_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FeedPages = n
		}
	}
	if v := os.Getenv("SKROOGE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("SKROOGE_RETRY_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RetryDelayMs = n
		}
	}
	if v := os.Getenv("SKROOGE_RATE_LIMIT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RateLimitMs = n
		}
	}
	if v := os.Getenv("SKROOGE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutMs = n
		}
	}
	if v := os.Getenv("SKROOGE_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("SKROOGE_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("SKROOGE_DB"); v != "" {
		c.DBDSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("SKROOGE_API_KEY"); v != "" {
		c.APIKey = v
	}
}
