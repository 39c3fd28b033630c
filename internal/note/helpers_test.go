package note

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nostr-feed/internal/store"
	"nostr-feed/internal/types"
)

const (
	signerSecret    = "0000000000000000000000000000000000000000000000000000000000000001"
	delegatorSecret = "0000000000000000000000000000000000000000000000000000000000000003"
	authorKey       = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	viewerKey       = "c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
)

var testNow = time.Unix(1700000000, 0)

func hexID(n int) string {
	return fmt.Sprintf("%064x", n)
}

func textNote(id string, createdAt int64, content string, tags ...[]string) *types.Event {
	return &types.Event{ID: id, PubKey: authorKey, CreatedAt: createdAt, Kind: types.KindTextNote, Content: content, Tags: tags}
}

func replyTo(id, parent string, createdAt int64) *types.Event {
	return textNote(id, createdAt, "re", []string{"e", parent, "", "reply"})
}

// newFixture builds an unsigned store holding evs and a session with every
// kind enabled
func newFixture(t *testing.T, evs ...*types.Event) (*store.Store, *Session) {
	t.Helper()
	s := store.New(nil, store.Options{AllowUnsigned: true, Viewer: viewerKey})
	for _, ev := range evs {
		require.NoError(t, s.Ingest(context.Background(), ev))
	}
	sess := NewSession(types.Settings{Reposts: true, DirectMessages: true, Reactions: true}, 0)
	return s, sess
}

func newTestWalker(src Sources, maxDepth int) *Walker {
	w := NewWalker(src, fakeQR{}, maxDepth)
	w.SetClock(func() time.Time { return testNow })
	return w
}

type recordingSurface struct {
	views  []NoteView
	height float64
}

func (r *recordingSurface) Draw(v NoteView) float64 {
	r.views = append(r.views, v)
	return r.height
}

type drawn struct {
	ID     string
	Depth  int
	Marker Marker
}

func (r *recordingSurface) order() []drawn {
	out := make([]drawn, len(r.views))
	for i, v := range r.views {
		out[i] = drawn{ID: v.ID, Depth: v.Depth, Marker: v.Marker}
	}
	return out
}

type fakeQR struct{ err error }

func (f fakeQR) Text(content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "QR[" + content + "]", nil
}

type fakeOutbox struct {
	sent []ReactMessage
	err  error
}

func (f *fakeOutbox) Send(msg ReactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeClipboard struct {
	text   string
	writes int
	err    error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	f.writes++
	return nil
}

var errBoom = errors.New("boom")
