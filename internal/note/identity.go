package note

import (
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// ResolveAuthor returns the effective author of ev and its delegation claim.
// A valid NIP-26 delegation attributes the note to the delegator; an invalid
// one keeps the signer as author and reports why.
func ResolveAuthor(ev *types.Event) (string, types.Delegation) {
	d := nostr.ResolveDelegation(ev)
	if d.State == types.DelegatedBy {
		return d.Delegator, d
	}
	return ev.PubKey, d
}

// resolvePerson looks up the effective author, synthesizing a placeholder
// when the directory has no record
func resolvePerson(people PersonSource, ev *types.Event) (types.Person, types.Delegation) {
	author, d := ResolveAuthor(ev)
	p, ok := people.Person(author)
	if !ok {
		muted := p.Muted
		p = types.UnknownPerson(author)
		p.Muted = muted
	}
	return p, d
}
