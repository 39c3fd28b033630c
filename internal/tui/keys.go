package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"nostr-feed/internal/note"
)

// KeyMap defines the key bindings of the feed
type KeyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Home key.Binding

	Like         key.Binding
	Reply        key.Binding
	Quote        key.Binding
	Dismiss      key.Binding
	CopyID       key.Binding // y: note1 id
	CopyIDHex    key.Binding // Y: hex id
	CopyContents key.Binding
	CopyRaw      key.Binding
	Thread       key.Binding
	RepliedTo    key.Binding
	Author       key.Binding
	Raw          key.Binding
	QR           key.Binding
	ShowPost     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Home: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "feed"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
		Quote: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "quote"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		CopyID: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		CopyIDHex: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy hex id"),
		),
		CopyContents: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "copy contents"),
		),
		CopyRaw: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "copy json"),
		),
		Thread: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "thread"),
		),
		RepliedTo: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "replied-to"),
		),
		Author: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "author"),
		),
		Raw: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "raw"),
		),
		QR: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "qr"),
		),
		ShowPost: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "show post"),
		),
	}
}

// actionBindings pairs each note action with the key that triggers it
func (k KeyMap) actionBindings() []struct {
	binding key.Binding
	action  note.Action
} {
	return []struct {
		binding key.Binding
		action  note.Action
	}{
		{k.Like, note.ActionLike},
		{k.Reply, note.ActionReply},
		{k.Quote, note.ActionQuote},
		{k.Dismiss, note.ActionDismiss},
		{k.CopyID, note.ActionCopyID},
		{k.CopyIDHex, note.ActionCopyIDHex},
		{k.CopyContents, note.ActionCopyContents},
		{k.CopyRaw, note.ActionCopyRaw},
		{k.Thread, note.ActionViewThread},
		{k.RepliedTo, note.ActionViewRepliedTo},
		{k.Author, note.ActionViewAuthor},
		{k.Raw, note.ActionToggleRaw},
		{k.QR, note.ActionToggleQR},
		{k.ShowPost, note.ActionShowPost},
	}
}

// ActionFor maps a key press to a note action
func (k KeyMap) ActionFor(msg tea.KeyMsg) (note.Action, bool) {
	for _, b := range k.actionBindings() {
		if key.Matches(msg, b.binding) {
			return b.action, true
		}
	}
	return 0, false
}

// Binding returns the key bound to action a
func (k KeyMap) Binding(a note.Action) (key.Binding, bool) {
	for _, b := range k.actionBindings() {
		if b.action == a {
			return b.binding, true
		}
	}
	return key.Binding{}, false
}
