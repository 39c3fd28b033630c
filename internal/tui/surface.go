package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"nostr-feed/internal/nips"
	"nostr-feed/internal/note"
)

const minBoxWidth = 24

// Block is one drawn note or marker
type Block struct {
	View   note.NoteView
	Text   string
	Height int
	// Index is the position among selectable blocks, -1 for markers
	Index int
}

// Surface draws note views as lipgloss boxes. It implements note.Surface.
type Surface struct {
	Width int
	// Selected is the index of the highlighted note among selectable blocks
	Selected int
	Keys     KeyMap

	blocks     []Block
	selectable int
}

// NewSurface creates a surface width columns wide
func NewSurface(width int, keys KeyMap) *Surface {
	return &Surface{Width: width, Keys: keys}
}

// Reset drops the blocks of the previous pass
func (s *Surface) Reset(width, selected int) {
	s.Width = width
	s.Selected = selected
	s.blocks = s.blocks[:0]
	s.selectable = 0
}

// Draw renders v and returns its height in lines
func (s *Surface) Draw(v note.NoteView) float64 {
	b := Block{View: v, Index: -1}
	if v.Marker == note.MarkerNone {
		b.Index = s.selectable
		s.selectable++
	}
	b.Text = s.render(v, b.Index >= 0 && b.Index == s.Selected)
	b.Height = lipgloss.Height(b.Text)
	s.blocks = append(s.blocks, b)
	return float64(b.Height)
}

// Blocks returns what was drawn since the last Reset, in draw order
func (s *Surface) Blocks() []Block {
	return s.blocks
}

// Selectable is the number of notes drawn since the last Reset
func (s *Surface) Selectable() int {
	return s.selectable
}

// indentCols converts a pixel indent to columns, keeping room for the note
func indentCols(px float64, width int) int {
	cols := int(math.Round(px / 5))
	if limit := width / 3; cols > limit {
		cols = limit
	}
	return cols
}

func (s *Surface) render(v note.NoteView, selected bool) string {
	indent := indentCols(v.Indent, s.Width)
	pad := strings.Repeat(" ", indent)

	switch v.Marker {
	case note.MarkerCycle:
		return pad + MarkerStyle.Render(v.DepthLabel+" ↻ already shown above")
	case note.MarkerDepthExceeded:
		return pad + MarkerStyle.Render(fmt.Sprintf("%s … %d more replies below the depth limit", v.DepthLabel, v.Hidden))
	}

	// border and padding take four columns
	inner := max(s.Width-indent-4, minBoxWidth)
	box := UnselectedStyle
	if selected {
		box = SelectedStyle
	}
	out := box.Width(inner + 2).Render(s.content(v, inner, selected))
	if indent == 0 {
		return out
	}
	return lipgloss.NewStyle().MarginLeft(indent).Render(out)
}

func (s *Surface) content(v note.NoteView, width int, selected bool) string {
	lines := []string{header(v, width)}
	if v.Muted {
		return strings.Join(append(lines, MutedStyle.Render(v.Body.Text)), "\n")
	}
	if v.Subject != "" {
		lines = append(lines, SubjectStyle.Render(v.Subject))
	}
	lines = append(lines, s.body(v, width))
	if v.Deleted {
		line := "deleted by author"
		if v.DeletionReason != "" {
			line += ": " + v.DeletionReason
		}
		lines = append(lines, ErrorStyle.Render(line))
	}
	if v.HasReactions {
		lines = append(lines, ReactionStyle.Render(v.Reactions.String()))
	}
	if selected && len(v.Actions) > 0 {
		lines = append(lines, s.hints(v.Actions, width))
	}
	return strings.Join(lines, "\n")
}

func header(v note.NoteView, width int) string {
	var parts []string
	if v.DepthLabel != "" {
		parts = append(parts, TimestampStyle.Render(v.DepthLabel))
	}
	parts = append(parts, AuthorStyle.Render(displayName(v)))
	if v.IsNew && !v.Nested {
		parts = append(parts, NewStyle.Render("●"))
	}
	if v.Age != "" {
		parts = append(parts, TimestampStyle.Render(v.Age))
	}
	if v.Delegation.Delegator != "" {
		parts = append(parts, TimestampStyle.Render("via "+shortKey(v.Delegation.Delegator)))
	}
	for _, b := range v.Badges {
		style := NoticeBadgeStyle
		if b.Tone == note.ToneWarning {
			style = WarningBadgeStyle
		}
		parts = append(parts, style.Render(b.Label))
	}
	if v.RepliesToLabel != "" {
		parts = append(parts, TimestampStyle.Render(v.RepliesToLabel))
	}
	return ansi.Truncate(strings.Join(parts, " "), width, "…")
}

func displayName(v note.NoteView) string {
	if name := v.Author.BestName(); name != "" {
		return name
	}
	return shortKey(v.Author.PubKey)
}

func shortKey(pubkey string) string {
	npub, err := nips.EncodePubkey(pubkey)
	if err != nil || len(npub) < 16 {
		if len(pubkey) > 12 {
			return pubkey[:12]
		}
		return pubkey
	}
	return npub[:16] + "…"
}

func (s *Surface) body(v note.NoteView, width int) string {
	b := v.Body
	switch b.Kind {
	case note.BodyRaw:
		if b.Err != nil {
			return ErrorStyle.Render("raw view unavailable: " + b.Err.Error())
		}
		return b.Text
	case note.BodyQR:
		if b.Err != nil {
			return ErrorStyle.Render(b.Err.Error())
		}
		if lipgloss.Width(b.Text) > width {
			return ErrorStyle.Render("terminal too narrow for QR code")
		}
		return b.Text
	case note.BodyWarning:
		hint := "press s to show post"
		if k, ok := s.Keys.Binding(note.ActionShowPost); ok {
			hint = "press " + k.Help().Key + " to show post"
		}
		return WarningStyle.Render(b.Text) + "\n" + HintStyle.Render(hint)
	case note.BodyEmbedded:
		inner := s.content(*b.Embedded, width-2, false)
		return EmbeddedStyle.Width(width - 1).Render(inner)
	case note.BodyMuted:
		return MutedStyle.Render(b.Text)
	}

	var sb strings.Builder
	for _, seg := range b.Segments {
		switch seg.Kind {
		case note.SegmentNote, note.SegmentPerson:
			sb.WriteString(MentionStyle.Render(seg.Text))
		default:
			sb.WriteString(seg.Text)
		}
	}
	if b.Struck {
		return DeletedStyle.Render(note.PlainText(b.Segments))
	}
	return ContentStyle.Render(sb.String())
}

func (s *Surface) hints(actions []note.Action, width int) string {
	var parts []string
	for _, a := range actions {
		if k, ok := s.Keys.Binding(a); ok {
			parts = append(parts, k.Help().Key+" "+a.String())
		}
	}
	return HintStyle.Width(width).Render(strings.Join(parts, " · "))
}
