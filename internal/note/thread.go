package note

import (
	"log/slog"
	"strconv"
	"time"

	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nostr"
)

// DefaultMaxDepth bounds thread recursion when no limit is configured
const DefaultMaxDepth = 64

// Params select one note and how it is rendered
type Params struct {
	ID    string
	Depth int
	// AsReplyTo renders the note as context for a reply: no action row
	// and no recursion into its replies
	AsReplyTo bool
	Threaded  bool
}

// IndentPX is the horizontal indent for a reply depth. It is 0 at depth 0,
// grows with depth and never reaches 1000.
func IndentPX(depth int) float64 {
	if depth < 0 {
		depth = 0
	}
	return 100 * (10 - 1000/(float64(depth)+100))
}

// Walker renders notes and their reply trees onto a surface
type Walker struct {
	src      Sources
	qr       QREncoder
	maxDepth int
	now      func() time.Time
}

// NewWalker creates a walker. maxDepth <= 0 selects DefaultMaxDepth.
func NewWalker(src Sources, qr QREncoder, maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Walker{src: src, qr: qr, maxDepth: maxDepth, now: time.Now}
}

// SetClock replaces the time source used for note ages
func (w *Walker) SetClock(now func() time.Time) {
	w.now = now
}

// Walk renders p.ID and, when threaded, its replies depth first in reply
// order. Missing and gated notes are skipped silently. Each drawn note's
// height is recorded in the session.
func (w *Walker) Walk(sess *Session, surface Surface, p Params) {
	b := &builder{src: w.src, qr: w.qr, sess: sess, now: w.now()}
	visited := make(map[string]struct{})
	w.walk(b, surface, p, visited)
}

// View builds the view for a single note without drawing it or recursing
func (w *Walker) View(sess *Session, p Params) (NoteView, bool) {
	ev, ok := w.src.Event(p.ID)
	if !ok || !ShouldRender(ev, sess.Settings) {
		return NoteView{}, false
	}
	b := &builder{src: w.src, qr: w.qr, sess: sess, now: w.now()}
	return b.view(ev, p, false), true
}

func (w *Walker) walk(b *builder, surface Surface, p Params, visited map[string]struct{}) {
	if _, seen := visited[p.ID]; seen {
		metrics.IncrementCycles()
		slog.Debug("reply cycle", "id", nostr.ShortID(p.ID), "depth", p.Depth)
		surface.Draw(w.marker(p, MarkerCycle, 0))
		return
	}

	ev, ok := w.src.Event(p.ID)
	if !ok {
		return
	}
	if !ShouldRender(ev, b.sess.Settings) {
		metrics.IncrementNotesGated()
		return
	}
	visited[p.ID] = struct{}{}

	view := b.view(ev, p, false)
	if view.Muted {
		metrics.IncrementNotesMuted()
	}
	height := surface.Draw(view)
	b.sess.Views.SetHeight(p.ID, height)
	metrics.IncrementNotesRendered()

	if !p.Threaded || p.AsReplyTo {
		return
	}
	replies := w.src.Replies(p.ID)
	if len(replies) == 0 {
		return
	}
	if p.Depth+1 > w.maxDepth {
		metrics.IncrementDepthExceeded()
		surface.Draw(w.marker(Params{ID: p.ID, Depth: p.Depth + 1, Threaded: true}, MarkerDepthExceeded, len(replies)))
		return
	}
	for _, reply := range replies {
		w.walk(b, surface, Params{ID: reply, Depth: p.Depth + 1, AsReplyTo: p.AsReplyTo, Threaded: p.Threaded}, visited)
	}
}

func (w *Walker) marker(p Params, m Marker, hidden int) NoteView {
	v := NoteView{ID: p.ID, Marker: m, Hidden: hidden, Depth: p.Depth, Threaded: p.Threaded}
	if p.Threaded {
		v.Indent = IndentPX(p.Depth)
		if p.Depth > 0 {
			v.DepthLabel = fmtDepth(p.Depth)
		}
	}
	return v
}

func fmtDepth(depth int) string {
	return strconv.Itoa(depth) + ">"
}
