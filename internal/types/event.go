// Package types provides shared type definitions used across internal packages.
package types

// Event represents a Nostr event (NIP-01)
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Event kinds consumed by the feed
const (
	KindMetadata               = 0
	KindTextNote               = 1
	KindEncryptedDirectMessage = 4
	KindEventDeletion          = 5
	KindRepost                 = 6
	KindReaction               = 7
	KindMuteList               = 10000
)

// Deletion records that an event was deleted by its author (NIP-09).
// Deletions are never retracted.
type Deletion struct {
	Reason string `json:"reason"`
}

// DelegationState enumerates the outcomes of NIP-26 delegation resolution
type DelegationState int

const (
	NotDelegated DelegationState = iota
	DelegatedBy
	InvalidDelegation
)

// Delegation is the resolved delegation claim of a single event.
// Delegator is set for DelegatedBy, Reason for InvalidDelegation.
type Delegation struct {
	State     DelegationState
	Delegator string
	Reason    string
}

// Settings are the viewer's feed display switches
type Settings struct {
	Reposts        bool `json:"reposts"`
	DirectMessages bool `json:"directMessages"`
	Reactions      bool `json:"reactions"`
}
