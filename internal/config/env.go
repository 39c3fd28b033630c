package config

import (
	"log/slog"
	"os"
	"strings"
)

// Env is the process environment the binaries read at startup
type Env struct {
	LogLevel    slog.Level
	LogFile     string
	RedisURL    string
	CachePrefix string
	SecretKey   string
	EventsFile  string
	MetricsAddr string
}

// LoadEnv reads LOG_LEVEL, LOG_FILE, REDIS_URL, CACHE_PREFIX,
// NOSTR_SECRET_KEY, EVENTS_FILE and METRICS_ADDR
func LoadEnv() Env {
	return Env{
		LogLevel:    ParseLogLevel(os.Getenv("LOG_LEVEL")),
		LogFile:     os.Getenv("LOG_FILE"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CachePrefix: envOr("CACHE_PREFIX", "nostr-feed:"),
		SecretKey:   strings.TrimSpace(os.Getenv("NOSTR_SECRET_KEY")),
		EventsFile:  os.Getenv("EVENTS_FILE"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}
}

// ParseLogLevel maps debug/info/warn/error to a slog level, defaulting to info
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
