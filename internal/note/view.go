package note

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// BadgeTone selects badge coloring
type BadgeTone int

const (
	ToneNotice BadgeTone = iota
	ToneWarning
)

// Badge is a short header marker such as DELEGATED or POW=12
type Badge struct {
	Label string
	Tone  BadgeTone
	// Hover carries extra detail, e.g. why a delegation is invalid
	Hover string
}

// BodyKind selects which variant of Body is populated
type BodyKind int

const (
	BodyContent BodyKind = iota
	BodyMuted
	BodyRaw
	BodyQR
	BodyWarning
	BodyEmbedded
)

// Body is the main content area of a note
type Body struct {
	Kind BodyKind
	// Segments for BodyContent; Struck when the note was deleted
	Segments []Segment
	Struck   bool
	// Text for BodyMuted, BodyRaw, BodyQR and BodyWarning
	Text string
	// Err is set when the QR code could not be produced
	Err error
	// Embedded is the unwrapped repost for BodyEmbedded
	Embedded *NoteView
	// Repost is the classification when the note is a repost
	Repost *Repost
}

// Marker flags leaves the walker emits instead of a note
type Marker int

const (
	MarkerNone Marker = iota
	// MarkerDepthExceeded stands in for replies below the depth limit
	MarkerDepthExceeded
	// MarkerCycle stands in for a note already drawn in this pass
	MarkerCycle
)

// NoteView is everything a surface needs to draw one note
type NoteView struct {
	ID     string
	Event  *types.Event
	Marker Marker
	// Hidden is the number of replies a depth marker stands for
	Hidden int

	Author     types.Person
	Delegation types.Delegation

	Depth      int
	Indent     float64
	DepthLabel string
	Threaded   bool

	IsNew     bool
	IsMain    bool
	AsReplyTo bool
	Nested    bool
	Muted     bool

	AvatarScale float64
	Badges      []Badge
	// RepliesTo is the hex id of the parent; RepliesToLabel its short link text
	RepliesTo      string
	RepliesToLabel string
	Age            string
	Subject        string

	Body           Body
	Deleted        bool
	DeletionReason string

	Reactions    ReactionRow
	HasReactions bool
	Actions      []Action
}

// Offers reports whether action a is available on this view
func (v *NoteView) Offers(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// builder assembles views for one render pass
type builder struct {
	src  Sources
	qr   QREncoder
	sess *Session
	now  time.Time
}

func (b *builder) view(ev *types.Event, p Params, nested bool) NoteView {
	author, delegation := resolvePerson(b.src, ev)
	st := b.sess.Views.Get(ev.ID)

	v := NoteView{
		ID:          ev.ID,
		Event:       ev,
		Author:      author,
		Delegation:  delegation,
		Depth:       p.Depth,
		Threaded:    p.Threaded,
		IsNew:       !st.Viewed,
		IsMain:      !nested && b.sess.IsMain(ev.ID),
		AsReplyTo:   p.AsReplyTo,
		Nested:      nested,
		AvatarScale: 1,
	}
	if p.Threaded && !nested {
		v.Indent = IndentPX(p.Depth)
		if p.Depth > 0 {
			v.DepthLabel = fmtDepth(p.Depth)
		}
	}

	if parent, _, ok := nostr.RepliesTo(ev); ok {
		v.RepliesTo = parent
		v.RepliesToLabel = "replies to #" + shortHex(parent)
	}

	if Muted(author) {
		v.Muted = true
		v.Body = Body{Kind: BodyMuted, Text: MutedPlaceholder}
		return v
	}

	if isPureRepost(ev) {
		v.AvatarScale = 100.0 / 180.0
	}
	v.Age = Ago(ev.CreatedAt, b.now)
	v.Subject, _ = nostr.Subject(ev)

	deletion, deleted := b.src.Deletion(ev.ID, ev.PubKey)
	v.Deleted = deleted
	if deleted {
		v.DeletionReason = deletion.Reason
	}
	v.Badges = badges(ev, delegation, deleted)

	v.Body = b.body(ev, st, deleted, nested)

	if !p.AsReplyTo && !nested {
		v.Reactions, v.HasReactions = Tally(b.src.Reactions(ev.ID), b.sess.Settings.Reactions)
	}
	if !nested {
		v.Actions = availableActions(&v)
	}
	return v
}

func (b *builder) body(ev *types.Event, st NoteState, deleted, nested bool) Body {
	switch st.Mode {
	case ModeRaw:
		pretty, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			return Body{Kind: BodyRaw, Err: err}
		}
		return Body{Kind: BodyRaw, Text: string(pretty)}
	case ModeQR:
		return b.qrBody(ev)
	}

	if reason, gated := WarningGate(ev, st.Approved); gated {
		return Body{Kind: BodyWarning, Text: "Content-Warning: " + reason}
	}

	if ev.Kind == types.KindRepost {
		// nested notes never unwrap again
		rp := ClassifyRepost(ev, !nested)
		if rp.Shape == EmbeddedNote {
			inner := b.view(rp.Inner, Params{ID: rp.Inner.ID}, true)
			if !rp.Verified {
				inner.Badges = append(inner.Badges, Badge{Label: "UNVERIFIED", Tone: ToneWarning})
			}
			return Body{Kind: BodyEmbedded, Embedded: &inner, Repost: &rp}
		}
		return Body{Kind: BodyContent, Segments: Segments(ev, rp.Content, b.src), Struck: deleted, Repost: &rp}
	}
	return Body{Kind: BodyContent, Segments: Segments(ev, ev.Content, b.src), Struck: deleted}
}

func (b *builder) qrBody(ev *types.Event) Body {
	if text, ok := b.sess.Views.QRText(ev.ID); ok {
		return Body{Kind: BodyQR, Text: text}
	}
	if b.qr == nil {
		return Body{Kind: BodyQR, Err: fmt.Errorf("%w: no QR encoder", ErrEncoding)}
	}
	text, err := b.qr.Text(trimmedContent(ev))
	if err != nil {
		return Body{Kind: BodyQR, Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
	}
	b.sess.Views.SetQRText(ev.ID, text)
	return Body{Kind: BodyQR, Text: text}
}

func badges(ev *types.Event, d types.Delegation, deleted bool) []Badge {
	var out []Badge
	if pow := nostr.POW(ev); pow > 0 {
		out = append(out, Badge{Label: fmt.Sprintf("POW=%d", pow), Tone: ToneNotice})
	}
	switch d.State {
	case types.InvalidDelegation:
		out = append(out, Badge{Label: "INVALID DELEGATION", Tone: ToneWarning, Hover: d.Reason})
	case types.DelegatedBy:
		out = append(out, Badge{Label: "DELEGATED", Tone: ToneNotice})
	}
	if deleted {
		out = append(out, Badge{Label: "DELETED", Tone: ToneWarning})
	}
	switch ev.Kind {
	case types.KindRepost:
		out = append(out, Badge{Label: "REPOSTED", Tone: ToneNotice})
	case types.KindEncryptedDirectMessage:
		out = append(out, Badge{Label: "ENCRYPTED DM", Tone: ToneNotice})
	}
	return out
}

func shortHex(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func trimmedContent(ev *types.Event) string {
	return strings.TrimSpace(ev.Content)
}
