package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"nostr-feed/internal/types"
)

func mustJSON(t *testing.T, ev *types.Event) string {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return string(data)
}
