// Package config loads the JSON configuration files and process
// environment for the feed.
package config

import (
	"log/slog"
	"sync"
	"time"

	"nostr-feed/internal/types"
)

// FeedConfig holds the viewer's display switches and engine limits
type FeedConfig struct {
	Reposts        bool `json:"reposts"`
	DirectMessages bool `json:"directMessages"`
	Reactions      bool `json:"reactions"`
	MaxDepth       int  `json:"maxDepth"`
	HoverDwellMs   int  `json:"hoverDwellMs"`
	OutboxSize     int  `json:"outboxSize"`
}

var (
	feedConfig     *FeedConfig
	feedConfigMu   sync.RWMutex
	feedConfigOnce sync.Once
)

// GetFeedConfig returns the current feed configuration (thread-safe)
func GetFeedConfig() *FeedConfig {
	feedConfigOnce.Do(func() {
		feedConfigMu.Lock()
		defer feedConfigMu.Unlock()
		if feedConfig == nil {
			feedConfig = loadFeedConfigFromFile()
		}
	})

	feedConfigMu.RLock()
	defer feedConfigMu.RUnlock()
	return feedConfig
}

// ReloadFeedConfig reloads the configuration from file
func ReloadFeedConfig() {
	newConfig := loadFeedConfigFromFile()
	feedConfigMu.Lock()
	defer feedConfigMu.Unlock()
	feedConfig = newConfig
	slog.Info("feed configuration reloaded")
}

func loadFeedConfigFromFile() *FeedConfig {
	configPath := envOr("FEED_CONFIG", "config/feed.json")

	// fields absent from the file keep their defaults
	config := getDefaultFeedConfig()
	if !readJSON(configPath, "feed", config) {
		return getDefaultFeedConfig()
	}
	config.normalize()

	slog.Info("loaded feed configuration",
		"path", configPath,
		"reposts", config.Reposts,
		"directMessages", config.DirectMessages,
		"reactions", config.Reactions,
		"maxDepth", config.MaxDepth)
	return config
}

func getDefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		Reposts:        true,
		DirectMessages: true,
		Reactions:      true,
		MaxDepth:       64,
		HoverDwellMs:   1000,
		OutboxSize:     64,
	}
}

func (c *FeedConfig) normalize() {
	def := getDefaultFeedConfig()
	if c.MaxDepth <= 0 {
		c.MaxDepth = def.MaxDepth
	}
	if c.HoverDwellMs < 0 {
		c.HoverDwellMs = 0
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = def.OutboxSize
	}
}

// Settings returns the display switches
func (c *FeedConfig) Settings() types.Settings {
	return types.Settings{
		Reposts:        c.Reposts,
		DirectMessages: c.DirectMessages,
		Reactions:      c.Reactions,
	}
}

// HoverDwell is how long a note must stay under the pointer to count as viewed
func (c *FeedConfig) HoverDwell() time.Duration {
	return time.Duration(c.HoverDwellMs) * time.Millisecond
}
