package note

import (
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// MutedPlaceholder replaces the body of notes by muted authors
const MutedPlaceholder = "MUTED POST"

// ShouldRender is the kind gate. Text notes always render, reposts and
// direct messages only when enabled; every other kind is skipped.
func ShouldRender(ev *types.Event, settings types.Settings) bool {
	switch ev.Kind {
	case types.KindTextNote:
		return true
	case types.KindRepost:
		return settings.Reposts
	case types.KindEncryptedDirectMessage:
		return settings.DirectMessages
	default:
		return false
	}
}

// Muted reports whether the note keeps its slot but withholds content
func Muted(p types.Person) bool {
	return p.Muted > 0
}

// WarningGate returns the content-warning reason when ev declares one and
// the viewer has not approved it yet
func WarningGate(ev *types.Event, approved bool) (string, bool) {
	if approved {
		return "", false
	}
	return nostr.ContentWarning(ev)
}
