package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Crawler   CrawlerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Export    ExportConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// SiteConfig controls how the crawler talks to the archive portal.
type SiteConfig struct {
	// BaseURL is the portal root. Tests point this at an httptest server.
	BaseURL string // default: "https://www.portafontium.eu"

	// UserAgent identifies the crawler to the portal.
	UserAgent string

	// Timeout is the per-request deadline for every portal fetch.
	Timeout time.Duration // default: 30s

	// InsecureTLS disables certificate verification. The portal has a
	// history of broken TLS chains; keep this off unless it actually fails,
	// and expect a warning in the log when it is on.
	InsecureTLS bool // default: false
}

// CrawlerConfig controls pagination behavior.
type CrawlerConfig struct {
	// DefaultDelay is the pause between page fetches when a request does
	// not specify one.
	DefaultDelay time.Duration // default: 1s

	// MaxPages caps result pagination when a request does not specify a
	// limit. 0 means unbounded.
	MaxPages int // default: 0

	// EmptyStreak is the number of consecutive pages with zero extracted
	// links after the AJAX fallback that ends the crawl.
	EmptyStreak int // default: 2

	// NoNewStreak is the number of consecutive pages yielding only
	// already-seen links that ends the crawl. Drupal pagers repeat the last
	// page forever when the index runs past the end.
	NoNewStreak int // default: 2
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the discovered-form-schema cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached schemas.
	MaxEntries int // default: 64

	// TTL is how long a discovered schema stays valid. The Drupal
	// view_dom_id rotates, so this should stay short.
	TTL time.Duration // default: 10m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ExportConfig controls Linkliste file output.
type ExportConfig struct {
	// Dir is where export files are written.
	Dir string // default: "./exports"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("LINKLISTE_HOST", "0.0.0.0"),
			Port: envIntOr("LINKLISTE_PORT", 8080),
			Mode: envOr("LINKLISTE_MODE", "release"),
		},
		Site: SiteConfig{
			BaseURL:     envOr("LINKLISTE_BASE_URL", "https://www.portafontium.eu"),
			UserAgent:   envOr("LINKLISTE_USER_AGENT", "linkliste-crawler/1.0 (personal use)"),
			Timeout:     envDurationOr("LINKLISTE_TIMEOUT", 30*time.Second),
			InsecureTLS: envBoolOr("LINKLISTE_INSECURE_TLS", false),
		},
		Crawler: CrawlerConfig{
			DefaultDelay: envDurationOr("LINKLISTE_DELAY", time.Second),
			MaxPages:     envIntOr("LINKLISTE_MAX_PAGES", 0),
			EmptyStreak:  envIntOr("LINKLISTE_EMPTY_STREAK", 2),
			NoNewStreak:  envIntOr("LINKLISTE_NO_NEW_STREAK", 2),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("LINKLISTE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("LINKLISTE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LINKLISTE_RATE_RPS", 5.0),
			Burst:             envIntOr("LINKLISTE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LINKLISTE_SCHEMA_CACHE_ENTRIES", 64),
			TTL:        envDurationOr("LINKLISTE_SCHEMA_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("LINKLISTE_LOG_LEVEL", "info"),
			Format: envOr("LINKLISTE_LOG_FORMAT", "json"),
		},
		Export: ExportConfig{
			Dir: envOr("LINKLISTE_EXPORT_DIR", "./exports"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
