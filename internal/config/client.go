package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"nostr-feed/internal/nips"
)

// ClientConfig represents the client.json configuration for NIP-89 client identification
type ClientConfig struct {
	Enabled   bool   `json:"enabled"`
	Name      string `json:"name"`
	Pubkey    string `json:"pubkey"`    // Hex or npub pubkey for the client
	Dtag      string `json:"dtag"`      // d-tag value for 31990 event
	RelayHint string `json:"relayHint"` // Optional relay hint
	TagKinds  []int  `json:"tagKinds"`  // Which kinds get the client tag
}

var (
	clientConfig     *ClientConfig
	clientConfigMu   sync.RWMutex
	clientConfigOnce sync.Once
)

// GetClientConfig returns the current client configuration (thread-safe)
func GetClientConfig() *ClientConfig {
	clientConfigOnce.Do(func() {
		clientConfigMu.Lock()
		defer clientConfigMu.Unlock()
		if clientConfig == nil {
			clientConfig = loadClientConfigFromFile()
		}
	})

	clientConfigMu.RLock()
	defer clientConfigMu.RUnlock()
	return clientConfig
}

// ReloadClientConfig reloads the configuration from file
func ReloadClientConfig() {
	newConfig := loadClientConfigFromFile()
	clientConfigMu.Lock()
	defer clientConfigMu.Unlock()
	clientConfig = newConfig
	slog.Info("client configuration reloaded", "enabled", newConfig.Enabled)
}

func loadClientConfigFromFile() *ClientConfig {
	configPath := envOr("CLIENT_CONFIG", "config/client.json")

	var config ClientConfig
	if !readJSON(configPath, "client", &config) {
		return getDefaultClientConfig()
	}
	if strings.HasPrefix(config.Pubkey, "npub1") {
		hexKey, err := nips.DecodePubkey(config.Pubkey)
		if err != nil {
			slog.Warn("client pubkey is not a valid npub", "error", err)
			hexKey = ""
		}
		config.Pubkey = hexKey
	}
	if config.Enabled && config.Pubkey == "" {
		slog.Warn("client identification enabled but pubkey not configured")
	}
	return &config
}

func getDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Name:     "nostr-feed",
		Dtag:     "nostr-feed",
		TagKinds: []int{7},
	}
}

// ShouldTagKind returns true if the given kind should have a client tag added
func (c *ClientConfig) ShouldTagKind(kind int) bool {
	if !c.Enabled || c.Pubkey == "" {
		return false
	}
	return slices.Contains(c.TagKinds, kind)
}

// ClientTag returns the client tag for events of kind, or nil if disabled
// Format: ["client", "31990:<pubkey>:<dtag>", "<relay-hint>"]
func (c *ClientConfig) ClientTag(kind int) []string {
	if !c.ShouldTagKind(kind) {
		return nil
	}

	reference := fmt.Sprintf("31990:%s:%s", c.Pubkey, c.Dtag)
	if c.RelayHint != "" {
		return []string{"client", reference, c.RelayHint}
	}
	return []string{"client", reference}
}

// readJSON decodes path into v. A missing or invalid file is logged and
// reported as false so callers fall back to defaults.
func readJSON(path, name string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug(name+" config file not found, using defaults", "path", path)
		} else {
			slog.Warn("could not read "+name+" config, using defaults", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Error("invalid JSON in "+name+" config, using defaults", "path", path, "error", err)
		return false
	}
	return true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
