package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings for synthesized descriptor sets.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	// Source analysis defaults.
	Workers          int
	DecodeFunctions  []string
	RespondFunctions []string

	// Request/response checking defaults.
	MaxBodySize int64
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from ROUTESPEC_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("ROUTESPEC_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("ROUTESPEC_CACHE_MAX_SIZE", 10),
		CacheTTL:           envDuration("ROUTESPEC_CACHE_TTL", 5*time.Minute),
		CacheSweepInterval: envDuration("ROUTESPEC_CACHE_SWEEP_INTERVAL", 60*time.Second),
		Workers:            envInt("ROUTESPEC_SYNTH_WORKERS", 0),
		DecodeFunctions:    envList("ROUTESPEC_DECODE_FUNCTIONS"),
		RespondFunctions:   envList("ROUTESPEC_RESPOND_FUNCTIONS"),
		MaxBodySize:        int64(envInt("ROUTESPEC_MAX_BODY_SIZE", 10<<20)),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

// envList parses a comma-separated list. An unset or empty var returns nil
// so the library defaults apply.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
