package cache

import "time"

// Config holds cache TTL and sizing configuration
type Config struct {
	EventTTL         time.Duration
	ProfileTTL       time.Duration
	MemoryMaxEntries int
	CleanupInterval  time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		EventTTL:         0,             // events are immutable, keep until evicted
		ProfileTTL:       1 * time.Hour, // profiles are replaceable, refresh hourly
		MemoryMaxEntries: 50000,
		CleanupInterval:  2 * time.Minute,
	}
}
