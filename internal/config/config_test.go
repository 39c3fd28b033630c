package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostr-feed/internal/nips"
	"nostr-feed/internal/types"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFeedConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv("FEED_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg := loadFeedConfigFromFile()
	assert.Equal(t, getDefaultFeedConfig(), cfg)
	assert.Equal(t, time.Second, cfg.HoverDwell())
}

func TestFeedConfigPartialFile(t *testing.T) {
	t.Setenv("FEED_CONFIG", writeConfig(t, "feed.json", `{"reposts": false, "maxDepth": 0, "hoverDwellMs": 250}`))

	cfg := loadFeedConfigFromFile()
	assert.Equal(t, types.Settings{Reposts: false, DirectMessages: true, Reactions: true}, cfg.Settings())
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.Equal(t, 250*time.Millisecond, cfg.HoverDwell())
	assert.Equal(t, 64, cfg.OutboxSize)
}

func TestFeedConfigInvalidJSON(t *testing.T) {
	t.Setenv("FEED_CONFIG", writeConfig(t, "feed.json", `{"reposts": `))
	assert.Equal(t, getDefaultFeedConfig(), loadFeedConfigFromFile())
}

func TestRelaysConfigNormalizes(t *testing.T) {
	t.Setenv("RELAYS_CONFIG", writeConfig(t, "relays.json", `{"publishRelays": [
		"wss://Relay.Example.com/", "wss://relay.example.com", "https://nope.example.com", "ws://localhost:7777"
	]}`))

	cfg := loadRelaysConfigFromFile()
	assert.Equal(t, []string{"wss://relay.example.com", "ws://localhost:7777"}, cfg.PublishRelays)
}

func TestClientTag(t *testing.T) {
	t.Setenv("CLIENT_CONFIG", writeConfig(t, "client.json", `{"enabled": true, "pubkey": "abc", "dtag": "feed", "relayHint": "wss://r.example.com", "tagKinds": [7]}`))

	cfg := loadClientConfigFromFile()
	assert.Equal(t, []string{"client", "31990:abc:feed", "wss://r.example.com"}, cfg.ClientTag(types.KindReaction))
	assert.Nil(t, cfg.ClientTag(types.KindTextNote))
	assert.Nil(t, getDefaultClientConfig().ClientTag(types.KindReaction))
}

func TestClientPubkeyAcceptsNpub(t *testing.T) {
	hexKey := "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	npub, err := nips.EncodePubkey(hexKey)
	require.NoError(t, err)

	t.Setenv("CLIENT_CONFIG", writeConfig(t, "client.json", `{"enabled": true, "pubkey": "`+npub+`", "dtag": "feed", "tagKinds": [7]}`))
	cfg := loadClientConfigFromFile()
	assert.Equal(t, hexKey, cfg.Pubkey)
	assert.Equal(t, []string{"client", "31990:" + hexKey + ":feed"}, cfg.ClientTag(types.KindReaction))

	t.Setenv("CLIENT_CONFIG", writeConfig(t, "client.json", `{"enabled": true, "pubkey": "npub1broken", "tagKinds": [7]}`))
	cfg = loadClientConfigFromFile()
	assert.Empty(t, cfg.Pubkey)
	assert.Nil(t, cfg.ClientTag(types.KindReaction))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("NOSTR_SECRET_KEY", "  abc \n")
	t.Setenv("CACHE_PREFIX", "")

	env := LoadEnv()
	assert.Equal(t, slog.LevelDebug, env.LogLevel)
	assert.Equal(t, "abc", env.SecretKey)
	assert.Equal(t, "nostr-feed:", env.CachePrefix)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
