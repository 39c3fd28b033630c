package config

import (
	"log/slog"
	"sync"

	"nostr-feed/internal/nostr"
)

// RelaysConfig represents the JSON configuration for relay lists
type RelaysConfig struct {
	PublishRelays []string `json:"publishRelays"`
}

var (
	relaysConfig     *RelaysConfig
	relaysConfigMu   sync.RWMutex
	relaysConfigOnce sync.Once
)

// GetRelaysConfig returns the current relays configuration (thread-safe)
func GetRelaysConfig() *RelaysConfig {
	relaysConfigOnce.Do(func() {
		relaysConfigMu.Lock()
		defer relaysConfigMu.Unlock()
		if relaysConfig == nil {
			relaysConfig = loadRelaysConfigFromFile()
		}
	})

	relaysConfigMu.RLock()
	defer relaysConfigMu.RUnlock()
	return relaysConfig
}

// ReloadRelaysConfig reloads the configuration from file
func ReloadRelaysConfig() {
	newConfig := loadRelaysConfigFromFile()
	relaysConfigMu.Lock()
	defer relaysConfigMu.Unlock()
	relaysConfig = newConfig
	slog.Info("relays configuration reloaded")
}

func loadRelaysConfigFromFile() *RelaysConfig {
	configPath := envOr("RELAYS_CONFIG", "config/relays.json")

	var config RelaysConfig
	if !readJSON(configPath, "relays", &config) {
		return getDefaultRelaysConfig()
	}
	config.PublishRelays = normalizeRelays(config.PublishRelays)

	slog.Info("loaded relays configuration", "path", configPath, "publish", len(config.PublishRelays))
	return &config
}

func getDefaultRelaysConfig() *RelaysConfig {
	return &RelaysConfig{
		PublishRelays: []string{
			"wss://relay.damus.io",
			"wss://relay.primal.net",
			"wss://nos.lol",
		},
	}
}

// normalizeRelays canonicalizes URLs and drops duplicates and invalid entries
func normalizeRelays(relays []string) []string {
	seen := make(map[string]bool, len(relays))
	out := make([]string, 0, len(relays))
	for _, r := range relays {
		n := nostr.NormalizeRelayURL(r)
		if n == "" {
			slog.Warn("ignoring invalid relay URL", "url", r)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// PublishRelays returns the relays our reactions are sent to
func PublishRelays() []string {
	config := GetRelaysConfig()
	if len(config.PublishRelays) > 0 {
		return config.PublishRelays
	}
	return getDefaultRelaysConfig().PublishRelays
}
