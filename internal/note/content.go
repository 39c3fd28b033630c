package note

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nostr-feed/internal/nips"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// SegmentKind tells the surface how to style a piece of content
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	// SegmentNote is a "#[n]" reference to an e-tag
	SegmentNote
	// SegmentPerson is a "#[n]" reference to a p-tag
	SegmentPerson
)

// Segment is one run of note content
type Segment struct {
	Kind SegmentKind
	Text string
	// Ref is the hex id or pubkey behind a mention
	Ref string
}

var mentionRe = regexp.MustCompile(`#\[(\d+)\]`)

// Segments splits content into text and resolved "#[n]" mentions.
// Indexes that do not point at an e or p tag stay literal text.
func Segments(ev *types.Event, content string, people PersonSource) []Segment {
	var out []Segment
	last := 0
	for _, m := range mentionRe.FindAllStringSubmatchIndex(content, -1) {
		idx, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil || idx >= len(ev.Tags) || len(ev.Tags[idx]) < 2 {
			continue
		}
		seg, ok := mentionSegment(ev.Tags[idx], people)
		if !ok {
			continue
		}
		if m[0] > last {
			out = append(out, Segment{Kind: SegmentText, Text: content[last:m[0]]})
		}
		out = append(out, seg)
		last = m[1]
	}
	if last < len(content) {
		out = append(out, Segment{Kind: SegmentText, Text: content[last:]})
	}
	return out
}

func mentionSegment(tag []string, people PersonSource) (Segment, bool) {
	switch tag[0] {
	case "e":
		text, err := nips.EncodeEventID(tag[1])
		if err != nil {
			text = "#" + nostr.ShortID(tag[1])
		}
		return Segment{Kind: SegmentNote, Text: text, Ref: tag[1]}, true
	case "p":
		name := ""
		if people != nil {
			if p, ok := people.Person(tag[1]); ok {
				name = p.BestName()
			}
		}
		if name == "" {
			if npub, err := nips.EncodePubkey(tag[1]); err == nil {
				name = npub[:12] + "…"
			} else {
				name = nostr.ShortID(tag[1])
			}
		}
		return Segment{Kind: SegmentPerson, Text: "@" + name, Ref: tag[1]}, true
	}
	return Segment{}, false
}

// PlainText joins segments back into a string
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Ago formats the age of a unix timestamp relative to now, e.g. "5m"
func Ago(createdAt int64, now time.Time) string {
	secs := now.Unix() - createdAt
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	case secs < 30*86400:
		return fmt.Sprintf("%dd", secs/86400)
	case secs < 365*86400:
		return fmt.Sprintf("%dmo", secs/(30*86400))
	default:
		return fmt.Sprintf("%dy", secs/(365*86400))
	}
}
