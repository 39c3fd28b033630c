// Package note resolves stored events into renderable note views and keeps
// the per-session presentation state: which notes were viewed or approved,
// their render modes and measured heights, the draft, the reply pointer
// and the active page.
package note

import "nostr-feed/internal/types"

// EventSource looks up stored events by hex id
type EventSource interface {
	Event(id string) (*types.Event, bool)
}

// PersonSource looks up authors by hex pubkey. A person unknown to the
// source is still returned with its key and mute level.
type PersonSource interface {
	Person(pubkey string) (types.Person, bool)
}

// ReplySource returns the direct replies to a note in render order
type ReplySource interface {
	Replies(id string) []string
}

// DeletionSource reports author deletions (NIP-09). author is the pubkey
// the caller believes wrote id; the source may know better.
type DeletionSource interface {
	Deletion(id, author string) (types.Deletion, bool)
}

// ReactionSource returns the aggregated reactions to a note
type ReactionSource interface {
	Reactions(id string) types.ReactionSet
}

// Sources bundles every lookup the walker needs; store.Store satisfies it
type Sources interface {
	EventSource
	PersonSource
	ReplySource
	DeletionSource
	ReactionSource
}

// QREncoder turns text into a printable QR code
type QREncoder interface {
	Text(content string) (string, error)
}

// Surface draws one note view and returns the height it occupied
type Surface interface {
	Draw(view NoteView) float64
}
