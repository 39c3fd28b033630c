// Package tui is the interactive terminal front end: a bubbletea program
// that walks the feed, thread and person pages onto a lipgloss surface and
// turns key presses into note actions.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"nostr-feed/internal/nostr"
	"nostr-feed/internal/note"
)

const (
	tickInterval     = 250 * time.Millisecond
	feedbackLifetime = 4 * time.Second
	defaultWidth     = 80
	defaultHeight    = 24
)

// FeedSource lists the notes of the feed and person pages, newest first
type FeedSource interface {
	Feed() []string
	ByAuthor(pubkey string) []string
}

type tickMsg time.Time

// Model is the bubbletea model of the feed
type Model struct {
	session    *note.Session
	walker     *note.Walker
	dispatcher *note.Dispatcher
	feed       FeedSource
	keys       KeyMap
	surface    *Surface
	now        func() time.Time

	width, height int
	cursor        int
	top           int
	history       []note.Page

	// filled by render
	views   []note.NoteView
	offsets []int
	lines   []string
}

// NewModel creates the model; call Init through tea.NewProgram
func NewModel(sess *note.Session, walker *note.Walker, dispatcher *note.Dispatcher, feed FeedSource) *Model {
	keys := DefaultKeyMap()
	m := &Model{
		session:    sess,
		walker:     walker,
		dispatcher: dispatcher,
		feed:       feed,
		keys:       keys,
		surface:    NewSurface(defaultWidth, keys),
		now:        time.Now,
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.render()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the hover dwell ticker
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update handles window resizes, ticks and key presses
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.render()
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		changed := m.session.Hover(m.selectedID(), now, false)
		if fb := m.session.Feedback; !fb.At.IsZero() && now.Sub(fb.At) > feedbackLifetime {
			m.session.ClearFeedback()
			changed = true
		}
		if changed {
			m.render()
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.back()
		return m, nil
	case key.Matches(msg, m.keys.Home):
		m.navigate(note.FeedPage())
		return m, nil
	}

	if a, ok := m.keys.ActionFor(msg); ok {
		m.dispatch(a)
	}
	return m, nil
}

func (m *Model) move(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.views) {
		return
	}
	m.cursor = next
	// moving the cursor counts as scrolling and restarts the dwell timer
	m.session.Hover(m.selectedID(), m.now(), true)
	m.render()
}

func (m *Model) dispatch(a note.Action) {
	if m.cursor >= len(m.views) {
		return
	}
	v := m.views[m.cursor]
	before := m.session.Page
	if err := m.dispatcher.Dispatch(m.session, a, &v); err != nil {
		slog.Debug("action failed", "action", a.String(), "id", nostr.ShortID(v.ID), "error", err)
	}
	if m.session.Page != before {
		m.history = append(m.history, before)
		m.cursor, m.top = 0, 0
	}
	m.render()
}

func (m *Model) navigate(p note.Page) {
	if m.session.Page == p {
		return
	}
	m.history = append(m.history, m.session.Page)
	m.session.Navigate(p)
	m.cursor, m.top = 0, 0
	m.render()
}

func (m *Model) back() {
	if len(m.history) == 0 {
		return
	}
	p := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.session.Navigate(p)
	m.cursor, m.top = 0, 0
	m.render()
}

func (m *Model) selectedID() string {
	if m.cursor < len(m.views) {
		return m.views[m.cursor].ID
	}
	return ""
}

// render walks the current page onto the surface and caches its lines
func (m *Model) render() {
	m.draw()
	if n := m.surface.Selectable(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
		m.draw()
	}
	m.scroll()
}

func (m *Model) draw() {
	m.surface.Reset(m.width, m.cursor)
	sess := m.session

	switch sess.Page.Kind {
	case note.PageFeed:
		m.walkAll(m.feed.Feed())
	case note.PagePerson:
		m.walkAll(m.feed.ByAuthor(sess.Page.PubKey))
	case note.PageThread:
		if main, ok := m.walker.View(sess, note.Params{ID: sess.Page.ID}); ok && main.RepliesTo != "" {
			m.walker.Walk(sess, m.surface, note.Params{ID: main.RepliesTo, AsReplyTo: true})
		}
		m.walker.Walk(sess, m.surface, note.Params{ID: sess.Page.ID, Threaded: true})
	}

	m.views = m.views[:0]
	m.offsets = m.offsets[:0]
	m.lines = m.lines[:0]
	for _, b := range m.surface.Blocks() {
		if b.Index >= 0 {
			m.views = append(m.views, b.View)
			m.offsets = append(m.offsets, len(m.lines))
		}
		m.lines = append(m.lines, strings.Split(b.Text, "\n")...)
	}
}

func (m *Model) walkAll(ids []string) {
	for _, id := range ids {
		if m.session.IsDismissed(id) {
			continue
		}
		m.walker.Walk(m.session, m.surface, note.Params{ID: id})
	}
}

// scroll keeps the selected note inside the visible window
func (m *Model) scroll() {
	avail := m.bodyHeight()
	if m.cursor >= len(m.offsets) {
		m.top = 0
		return
	}
	start := m.offsets[m.cursor]
	end := len(m.lines)
	if m.cursor+1 < len(m.offsets) {
		end = m.offsets[m.cursor+1]
	}
	if start < m.top {
		m.top = start
	}
	if end > m.top+avail {
		m.top = min(start, end-avail)
	}
}

// title and status lines take two rows
func (m *Model) bodyHeight() int {
	return max(m.height-2, 1)
}

func (m *Model) title() string {
	switch p := m.session.Page; p.Kind {
	case note.PageThread:
		return "thread #" + nostr.ShortID(p.ID)
	case note.PagePerson:
		return "notes by " + shortKey(p.PubKey)
	}
	return "feed"
}

func (m *Model) status() string {
	sess := m.session
	var parts []string
	if fb := sess.Feedback; fb.Message != "" {
		if fb.Err != nil {
			parts = append(parts, ErrorStyle.Render(fb.Message))
		} else {
			parts = append(parts, fb.Message)
		}
	}
	if sess.ReplyingTo != "" {
		parts = append(parts, "replying to #"+nostr.ShortID(sess.ReplyingTo))
	}
	if sess.Draft != "" {
		parts = append(parts, "draft: "+sess.Draft)
	}
	if len(parts) == 0 {
		parts = append(parts, "j/k move · enter thread · esc back · q quit")
	}
	return StatusBarStyle.Render(ansi.Truncate(strings.Join(parts, " | "), m.width, "…"))
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(m.title()))
	sb.WriteByte('\n')

	end := min(m.top+m.bodyHeight(), len(m.lines))
	if m.top < end {
		sb.WriteString(strings.Join(m.lines[m.top:end], "\n"))
	} else if len(m.lines) == 0 {
		sb.WriteString(HintStyle.Render("nothing to show"))
	}
	sb.WriteByte('\n')
	sb.WriteString(m.status())
	return sb.String()
}

// Run starts a full screen program and blocks until the user quits or
// ctx is cancelled
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
