package note

import (
	"encoding/json"

	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// RepostShape classifies the payload of a kind 6 event
type RepostShape int

const (
	// PlainQuote renders the repost content like an ordinary note
	PlainQuote RepostShape = iota
	// EmbeddedNote carries the reposted event as JSON content
	EmbeddedNote
	// BareMention has empty content and points at the reposted note by tag
	BareMention
)

func (s RepostShape) String() string {
	switch s {
	case EmbeddedNote:
		return "embedded"
	case BareMention:
		return "mention"
	default:
		return "quote"
	}
}

// BareMentionContent stands in for the absent reposted content
const BareMentionContent = "#[0]"

// Repost is the classification of a repost event
type Repost struct {
	Shape RepostShape
	// Inner is the embedded event for EmbeddedNote
	Inner *types.Event
	// Verified reports whether Inner's id and signature check out
	Verified bool
	// Content is what the content renderer should display for the other shapes
	Content string
}

var embeddedFields = []string{"id", "pubkey", "created_at", "kind", "tags", "content", "sig"}

// parseEmbedded decodes content as a complete event; every NIP-01 field
// must be present
func parseEmbedded(content string) (*types.Event, bool) {
	if content == "" || content[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, false
	}
	for _, f := range embeddedFields {
		if _, ok := fields[f]; !ok {
			return nil, false
		}
	}
	var ev types.Event
	if err := json.Unmarshal([]byte(content), &ev); err != nil {
		return nil, false
	}
	return &ev, true
}

// ClassifyRepost is total over repost events. allowEmbed is false for
// notes that are themselves embedded, so unwrapping stops after one level.
func ClassifyRepost(ev *types.Event, allowEmbed bool) Repost {
	if allowEmbed {
		if inner, ok := parseEmbedded(ev.Content); ok {
			return Repost{Shape: EmbeddedNote, Inner: inner, Verified: nostr.VerifyEvent(inner)}
		}
	}
	if ev.Content == "" {
		return Repost{Shape: BareMention, Content: BareMentionContent}
	}
	return Repost{Shape: PlainQuote, Content: ev.Content}
}

// isPureRepost reports a repost without comment, whose avatar is shrunk to
// favor the reposted author
func isPureRepost(ev *types.Event) bool {
	if ev.Kind != types.KindRepost {
		return false
	}
	if ev.Content == "" {
		return true
	}
	_, ok := parseEmbedded(ev.Content)
	return ok
}
