package nostr

import (
	"encoding/hex"
	"math/bits"
	"strconv"

	"nostr-feed/internal/types"
	"nostr-feed/internal/util"
)

// RepliesTo returns the id this event replies to (NIP-10).
// Marked "reply" e-tags win, then "root", then the last positional e-tag.
// Reposts never reply; their e-tag points at the reposted note.
func RepliesTo(evt *types.Event) (id string, relay string, ok bool) {
	if evt.Kind == types.KindRepost {
		return "", "", false
	}

	var root, positional []string
	for _, tag := range evt.Tags {
		if len(tag) < 2 || tag[0] != "e" {
			continue
		}
		marker := ""
		if len(tag) >= 4 {
			marker = tag[3]
		}
		switch marker {
		case "reply":
			return tag[1], tagRelay(tag), true
		case "root":
			if root == nil {
				root = tag
			}
		case "mention":
		default:
			positional = tag
		}
	}

	if root != nil {
		return root[1], tagRelay(root), true
	}
	if positional != nil {
		return positional[1], tagRelay(positional), true
	}
	return "", "", false
}

func tagRelay(tag []string) string {
	if len(tag) >= 3 {
		return tag[2]
	}
	return ""
}

// Subject returns the NIP-14 subject line
func Subject(evt *types.Event) (string, bool) {
	s := util.GetTagValue(evt.Tags, "subject")
	return s, s != ""
}

// ContentWarning returns the NIP-36 reason; ok is true even when the reason is empty
func ContentWarning(evt *types.Event) (string, bool) {
	tag, ok := util.GetTag(evt.Tags, "content-warning")
	if !ok {
		return "", false
	}
	if len(tag) >= 2 {
		return tag[1], true
	}
	return "", true
}

// LeadingZeroBits counts the leading zero bits of a hex id
func LeadingZeroBits(id string) int {
	raw, err := hex.DecodeString(id)
	if err != nil {
		return 0
	}
	total := 0
	for _, b := range raw {
		if b == 0 {
			total += 8
			continue
		}
		total += bits.LeadingZeros8(b)
		break
	}
	return total
}

// POW returns the NIP-13 difficulty of an event. Events without a nonce tag
// have none; a committed target caps the reported difficulty.
func POW(evt *types.Event) int {
	tag, ok := util.GetTag(evt.Tags, "nonce")
	if !ok {
		return 0
	}
	zeros := LeadingZeroBits(evt.ID)
	if len(tag) >= 3 {
		if target, err := strconv.Atoi(tag[2]); err == nil && target < zeros {
			return target
		}
	}
	return zeros
}
