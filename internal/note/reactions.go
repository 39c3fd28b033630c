package note

import (
	"fmt"
	"strings"

	"nostr-feed/internal/types"
)

// Like glyphs, filled once the viewer reacted with the default symbol
const (
	GlyphLiked   = "♥"
	GlyphUnliked = "♡"
)

// ReactionRow is the rendered reaction strip of a note
type ReactionRow struct {
	Glyph string
	// LikeCount is the default symbol's count; HasLikes is false when
	// nobody used it, in which case no count is shown
	LikeCount int
	HasLikes  bool
	Others    []types.ReactionCount
}

// Tally shapes an aggregated reaction set for display. It returns false
// when reactions are disabled and nothing should render.
func Tally(set types.ReactionSet, enabled bool) (ReactionRow, bool) {
	if !enabled {
		return ReactionRow{}, false
	}
	row := ReactionRow{Glyph: GlyphUnliked}
	if set.SelfReacted {
		row.Glyph = GlyphLiked
	}
	for _, c := range set.Counts {
		if c.Symbol == types.DefaultReaction {
			row.LikeCount += c.Count
			row.HasLikes = true
			continue
		}
		row.Others = append(row.Others, c)
	}
	return row, true
}

// String renders the row as "♡ 3  🔥 1  🤙 2"
func (r ReactionRow) String() string {
	var b strings.Builder
	b.WriteString(r.Glyph)
	if r.HasLikes {
		fmt.Fprintf(&b, " %d", r.LikeCount)
	}
	for _, c := range r.Others {
		fmt.Fprintf(&b, "  %c %d", c.Symbol, c.Count)
	}
	return b.String()
}
