package types

// ProfileInfo contains user profile metadata (kind 0)
type ProfileInfo struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Nip05       string `json:"nip05,omitempty"`
	About       string `json:"about,omitempty"`
}

// Person is the viewer-side record of an author, keyed by hex pubkey.
// Muted > 0 means the viewer muted this author.
type Person struct {
	PubKey    string       `json:"pubkey"`
	Profile   *ProfileInfo `json:"profile,omitempty"`
	UpdatedAt int64        `json:"updated_at"`
	Muted     int          `json:"muted"`
}

// UnknownPerson synthesizes a placeholder for an author we have no record of
func UnknownPerson(pubkey string) Person {
	return Person{PubKey: pubkey}
}

// BestName returns the display name, falling back to name, then empty
func (p Person) BestName() string {
	if p.Profile == nil {
		return ""
	}
	if p.Profile.DisplayName != "" {
		return p.Profile.DisplayName
	}
	return p.Profile.Name
}

// ReactionCount is one symbol bucket of an aggregated reaction set
type ReactionCount struct {
	Symbol rune
	Count  int
}

// ReactionSet is the aggregator's view of reactions to one note.
// SelfReacted reports whether the viewer reacted with the default symbol.
type ReactionSet struct {
	Counts      []ReactionCount
	SelfReacted bool
}

// DefaultReaction is the NIP-25 "like" symbol
const DefaultReaction = '+'
