package config

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port      string
	StaticDir string

	// Security
	AllowedOrigins []string

	// Rate Limiting
	RateLimitAPI    rate.Limit
	RateLimitWS     rate.Limit
	RateLimitEvents rate.Limit

	// Logging
	LogLevel string

	// WebSocket
	MaxMessageSize int

	// Lobbies
	LobbyCodeLength   int
	DefaultMinPlayers int
	DefaultMaxPlayers int
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:              "5001",
		StaticDir:         "./deploy/dist",
		AllowedOrigins:    []string{"*"},
		RateLimitAPI:      10,
		RateLimitWS:       5,
		RateLimitEvents:   60,
		LogLevel:          "info", // Options: debug, info, warn, error, silent
		MaxMessageSize:    domain.MaxMessageSize,
		LobbyCodeLength:   domain.LobbyCodeLength,
		DefaultMinPlayers: domain.DefaultMinPlayers,
		DefaultMaxPlayers: domain.DefaultMaxPlayers,
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	// Server
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if dir, ok := os.LookupEnv("STATIC_DIR"); ok {
		cfg.StaticDir = strings.TrimSpace(dir)
	}

	// Security
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	// Rate Limiting
	if val, ok := positiveInt("RATE_LIMIT_API"); ok {
		cfg.RateLimitAPI = rate.Limit(val)
	}

	if val, ok := positiveInt("RATE_LIMIT_WS"); ok {
		cfg.RateLimitWS = rate.Limit(val)
	}

	if val, ok := positiveInt("RATE_LIMIT_EVENTS"); ok {
		cfg.RateLimitEvents = rate.Limit(val)
	}

	// Logging
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	// WebSocket
	if val, ok := positiveInt("MAX_MESSAGE_SIZE"); ok {
		cfg.MaxMessageSize = val
	}

	// Lobbies
	if val, ok := positiveInt("LOBBY_CODE_LENGTH"); ok &&
		val >= domain.MinLobbyCodeLength && val <= domain.MaxLobbyCodeLength {
		cfg.LobbyCodeLength = val
	}

	if val, ok := positiveInt("DEFAULT_MIN_PLAYERS"); ok {
		cfg.DefaultMinPlayers = val
	}

	if val, ok := positiveInt("DEFAULT_MAX_PLAYERS"); ok {
		cfg.DefaultMaxPlayers = val
	}

	return cfg
}

// OriginAllowed checks if the origin is in the allowed list.
// Empty origin is allowed (same-origin and non-browser clients).
func (c *Config) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	return false
}

// positiveInt reads an integer variable, ignoring unset, malformed and non-positive values
func positiveInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}

// parseOrigins parses comma-separated origins
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
