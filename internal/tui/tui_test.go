package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostr-feed/internal/note"
	"nostr-feed/internal/store"
	"nostr-feed/internal/types"
)

const authorKey = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func hexID(n int) string {
	return fmt.Sprintf("%064x", n)
}

func textNote(id string, createdAt int64, content string, tags ...[]string) *types.Event {
	return &types.Event{ID: id, PubKey: authorKey, CreatedAt: createdAt, Kind: types.KindTextNote, Content: content, Tags: tags}
}

type fakeQR struct{}

func (fakeQR) Text(content string) (string, error) { return "QR", nil }

type fakeClipboard struct{ text string }

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return nil
}

var (
	noteA = hexID(0xa)
	noteB = hexID(0xb)
	noteC = hexID(0xc)
)

func newTestModel(t *testing.T, clip note.Clipboard) *Model {
	t.Helper()
	s := store.New(nil, store.Options{AllowUnsigned: true})
	for _, ev := range []*types.Event{
		textNote(noteA, 300, "newest"),
		textNote(noteB, 200, "older", []string{"content-warning", "spoilers"}),
		textNote(noteC, 400, "a reply", []string{"e", noteA, "", "reply"}),
	} {
		require.NoError(t, s.Ingest(context.Background(), ev))
	}

	sess := note.NewSession(types.Settings{Reposts: true, DirectMessages: true, Reactions: true}, 0)
	walker := note.NewWalker(s, fakeQR{}, 0)
	m := NewModel(sess, walker, note.NewDispatcher(nil, clip), s)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func viewIDs(m *Model) []string {
	ids := make([]string, len(m.views))
	for i, v := range m.views {
		ids[i] = v.ID
	}
	return ids
}

func TestFeedRendersTopLevelNotesNewestFirst(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, []string{noteA, noteB}, viewIDs(m))
	out := m.View()
	assert.True(t, strings.HasPrefix(out, TitleStyle.Render("feed")))
	assert.Contains(t, out, "newest")
	assert.Contains(t, out, "Content-Warning: spoilers")
	assert.NotContains(t, out, "older")
}

func TestThreadNavigationAndBack(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, "enter")
	assert.Equal(t, note.ThreadPage(noteA, noteA), m.session.Page)
	assert.Equal(t, []string{noteA, noteC}, viewIDs(m))
	assert.Equal(t, 1, m.views[1].Depth)
	assert.True(t, m.views[0].IsMain)

	press(m, "esc")
	assert.Equal(t, note.FeedPage(), m.session.Page)
	assert.Equal(t, []string{noteA, noteB}, viewIDs(m))
}

func TestMutedThreadShowsRepliedToContext(t *testing.T) {
	viewer := "c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	s := store.New(nil, store.Options{AllowUnsigned: true, Viewer: viewer})
	parent := &types.Event{ID: noteA, PubKey: viewer, CreatedAt: 100, Kind: types.KindTextNote, Content: "parent", Tags: [][]string{}}
	for _, ev := range []*types.Event{
		parent,
		textNote(noteC, 200, "muted reply", []string{"e", noteA, "", "reply"}),
		{ID: hexID(0x50), PubKey: viewer, CreatedAt: 10, Kind: types.KindMuteList, Tags: [][]string{{"p", authorKey}}},
	} {
		require.NoError(t, s.Ingest(context.Background(), ev))
	}
	sess := note.NewSession(types.Settings{Reposts: true, DirectMessages: true, Reactions: true}, 0)
	m := NewModel(sess, note.NewWalker(s, fakeQR{}, 0), note.NewDispatcher(nil, nil), s)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.navigate(note.ThreadPage(noteC, noteC))
	require.Equal(t, []string{noteA, noteC}, viewIDs(m))
	assert.True(t, m.views[0].AsReplyTo)
	assert.True(t, m.views[1].Muted)
	out := m.View()
	assert.Contains(t, out, "parent")
	assert.NotContains(t, out, "muted reply")
}

func TestShowPostRevealsWarnedContent(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, "down", "s")
	assert.True(t, m.session.Views.Get(noteB).Approved)
	assert.Contains(t, m.View(), "older")
}

func TestDismissRemovesNoteFromFeed(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, "x")
	assert.Equal(t, []string{noteB}, viewIDs(m))
	assert.Equal(t, "dismissed", m.session.Feedback.Message)
	assert.Equal(t, 0, m.cursor)
}

func TestCopyHexID(t *testing.T) {
	clip := &fakeClipboard{}
	m := newTestModel(t, clip)

	press(m, "down", "Y")
	assert.Equal(t, noteB, clip.text)
	assert.Contains(t, m.View(), "copied hex id")
}

func TestLikeWithoutKeyReportsError(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, "l")
	assert.ErrorIs(t, m.session.Feedback.Err, note.ErrActionUnavailable)
}

func TestTickMarksSelectedViewed(t *testing.T) {
	m := newTestModel(t, nil)
	require.False(t, m.session.Views.Get(noteA).Viewed)

	m.Update(tickMsg(time.Now()))
	assert.True(t, m.session.Views.Get(noteA).Viewed)
	assert.False(t, m.session.Views.Get(noteB).Viewed)
}

func TestFeedbackExpires(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, "x")
	require.NotEmpty(t, m.session.Feedback.Message)

	m.Update(tickMsg(time.Now().Add(feedbackLifetime + time.Second)))
	assert.Empty(t, m.session.Feedback.Message)
}

func TestSurfaceMarkersAreNotSelectable(t *testing.T) {
	s := NewSurface(80, DefaultKeyMap())
	s.Reset(80, 0)

	h := s.Draw(note.NoteView{ID: noteA, Marker: note.MarkerDepthExceeded, Hidden: 3, DepthLabel: "65>"})
	assert.Equal(t, float64(1), h)
	s.Draw(note.NoteView{ID: noteB, Body: note.Body{Kind: note.BodyMuted, Text: note.MutedPlaceholder}, Muted: true})

	blocks := s.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, -1, blocks[0].Index)
	assert.Contains(t, blocks[0].Text, "3 more replies")
	assert.Equal(t, 0, blocks[1].Index)
	assert.Contains(t, blocks[1].Text, note.MutedPlaceholder)
	assert.Equal(t, 1, s.Selectable())
}

func TestIndentCols(t *testing.T) {
	assert.Equal(t, 0, indentCols(note.IndentPX(0), 90))
	assert.Equal(t, 2, indentCols(note.IndentPX(1), 90))
	assert.Equal(t, 30, indentCols(note.IndentPX(1000), 90))
}
