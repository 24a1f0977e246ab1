package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Upstream appointment API
	UpstreamBaseURL   string
	UpstreamTimeout   time.Duration
	DirectoryPageSize int

	// Session storage
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionCookie string
	SessionTTL    time.Duration
	CacheTTL      time.Duration
	SecureCookies bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		UpstreamBaseURL:   getEnv("UPSTREAM_BASE_URL", "https://appointment-manager-node.onrender.com/api/v1"),
		UpstreamTimeout:   getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		DirectoryPageSize: getEnvAsInt("DIRECTORY_PAGE_SIZE", 20),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionCookie: getEnv("SESSION_COOKIE", "portal_session"),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		SecureCookies: getEnvAsBool("SECURE_COOKIES", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
