package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nips"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

var (
	// ErrActionUnavailable is returned for actions a view does not offer
	ErrActionUnavailable = errors.New("action not available")
	// ErrEncoding is returned when an id or event cannot be turned into text
	ErrEncoding = errors.New("encoding failed")
)

// Action is a user gesture on a note
type Action int

const (
	ActionLike Action = iota
	ActionReply
	ActionQuote
	ActionDismiss
	ActionCopyID
	ActionCopyIDHex
	ActionCopyContents
	ActionCopyRaw
	ActionViewThread
	ActionViewRepliedTo
	ActionViewAuthor
	ActionToggleRaw
	ActionToggleQR
	ActionShowPost
)

var actionNames = map[Action]string{
	ActionLike:          "like",
	ActionReply:         "reply",
	ActionQuote:         "quote",
	ActionDismiss:       "dismiss",
	ActionCopyID:        "copy id",
	ActionCopyIDHex:     "copy id as hex",
	ActionCopyContents:  "copy contents",
	ActionCopyRaw:       "copy raw json",
	ActionViewThread:    "view thread",
	ActionViewRepliedTo: "view replied-to",
	ActionViewAuthor:    "view author",
	ActionToggleRaw:     "raw",
	ActionToggleQR:      "qr code",
	ActionShowPost:      "show post",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// availableActions lists the gestures a note offers. The menu actions are
// always present; the action row is left out for reply context notes.
func availableActions(v *NoteView) []Action {
	if v.Muted || v.Nested {
		return nil
	}
	isDM := v.Event.Kind == types.KindEncryptedDirectMessage

	var out []Action
	if !v.IsMain && !isDM {
		out = append(out, ActionViewThread)
	}
	out = append(out, ActionCopyID, ActionCopyIDHex, ActionDismiss, ActionViewAuthor)
	if v.RepliesTo != "" {
		out = append(out, ActionViewRepliedTo)
	}
	if v.Body.Kind == BodyWarning || (v.Body.Embedded != nil && v.Body.Embedded.Body.Kind == BodyWarning) {
		out = append(out, ActionShowPost)
	}
	if v.AsReplyTo {
		return out
	}

	out = append(out, ActionCopyContents, ActionCopyRaw, ActionQuote)
	if !isDM {
		out = append(out, ActionReply)
	}
	out = append(out, ActionToggleRaw, ActionToggleQR)
	if v.HasReactions {
		out = append(out, ActionLike)
	}
	return out
}

// ReactMessage asks the protocol engine to like NoteID, authored by AuthorKey
type ReactMessage struct {
	NoteID    string
	AuthorKey string
}

// Outbox accepts outbound reactions; delivery is best effort
type Outbox interface {
	Send(msg ReactMessage) error
}

// Clipboard is the OS clipboard sink
type Clipboard interface {
	WriteAll(text string) error
}

// Dispatcher turns gestures into session mutations, clipboard writes and
// outbound messages
type Dispatcher struct {
	outbox    Outbox
	clipboard Clipboard
	encodeID  func(hex string) (string, error)
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. A nil outbox disables likes.
func NewDispatcher(outbox Outbox, clipboard Clipboard) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		clipboard: clipboard,
		encodeID:  nips.EncodeEventID,
		now:       time.Now,
	}
}

// Dispatch applies a to the note shown by v. Failures affect only this
// action: they are recorded in sess.Feedback and returned.
func (d *Dispatcher) Dispatch(sess *Session, a Action, v *NoteView) error {
	if v == nil || v.Event == nil || !v.Offers(a) {
		return d.fail(sess, fmt.Errorf("%s: %w", a, ErrActionUnavailable))
	}
	ev := v.Event
	now := d.now()

	switch a {
	case ActionLike:
		if d.outbox == nil {
			return d.fail(sess, fmt.Errorf("like: no signing key configured: %w", ErrActionUnavailable))
		}
		// AuthorKey is the signing key, also for delegated notes
		if err := d.outbox.Send(ReactMessage{NoteID: ev.ID, AuthorKey: ev.PubKey}); err != nil {
			slog.Debug("like not queued", "id", nostr.ShortID(ev.ID), "error", err)
		}
		sess.succeed("liked", now)

	case ActionReply:
		sess.ReplyingTo = ev.ID
		sess.succeed("replying to "+shortHex(ev.ID), now)

	case ActionQuote:
		ref, err := d.encodeID(ev.ID)
		if err != nil {
			return d.fail(sess, fmt.Errorf("quote: %w: %v", ErrEncoding, err))
		}
		sess.Draft = AppendQuote(sess.Draft, ref)
		sess.succeed("quoted", now)

	case ActionDismiss:
		sess.Dismiss(ev.ID)
		sess.succeed("dismissed", now)

	case ActionCopyID:
		ref, err := d.encodeID(ev.ID)
		if err != nil {
			return d.fail(sess, fmt.Errorf("copy id: %w: %v", ErrEncoding, err))
		}
		return d.copy(sess, ref, "copied "+ref)

	case ActionCopyIDHex:
		return d.copy(sess, ev.ID, "copied hex id")

	case ActionCopyContents:
		text := ev.Content
		if sess.Views.Get(ev.ID).Mode == ModeRaw {
			raw, err := json.Marshal(ev)
			if err != nil {
				return d.fail(sess, fmt.Errorf("copy contents: %w: %v", ErrEncoding, err))
			}
			text = string(raw)
		}
		return d.copy(sess, text, "copied contents")

	case ActionCopyRaw:
		raw, err := json.Marshal(ev)
		if err != nil {
			return d.fail(sess, fmt.Errorf("copy raw: %w: %v", ErrEncoding, err))
		}
		return d.copy(sess, string(raw), "copied raw json")

	case ActionViewThread:
		sess.Navigate(ThreadPage(ev.ID, ev.ID))

	case ActionViewRepliedTo:
		sess.Navigate(ThreadPage(v.RepliesTo, ev.ID))

	case ActionViewAuthor:
		sess.Navigate(PersonPage(v.Author.PubKey))

	case ActionToggleRaw:
		sess.Views.ToggleRaw(ev.ID)
		sess.Views.ClearHeight(ev.ID)

	case ActionToggleQR:
		sess.Views.ToggleQR(ev.ID)
		sess.Views.ClearHeight(ev.ID)

	case ActionShowPost:
		sess.Views.Approve(ev.ID)
		if v.Body.Embedded != nil {
			sess.Views.Approve(v.Body.Embedded.ID)
			sess.Views.ClearHeight(ev.ID)
		}
	}
	return nil
}

func (d *Dispatcher) copy(sess *Session, text, msg string) error {
	if d.clipboard == nil {
		return d.fail(sess, fmt.Errorf("clipboard: %w", ErrActionUnavailable))
	}
	if err := d.clipboard.WriteAll(text); err != nil {
		return d.fail(sess, fmt.Errorf("clipboard: %w", err))
	}
	sess.succeed(msg, d.now())
	return nil
}

func (d *Dispatcher) fail(sess *Session, err error) error {
	metrics.IncrementActionFailures()
	sess.fail(err, d.now())
	return err
}

// AppendQuote appends ref to draft, separated by one space unless the
// draft is empty or already ends in a space
func AppendQuote(draft, ref string) string {
	if draft != "" && draft[len(draft)-1] != ' ' {
		draft += " "
	}
	return draft + ref
}
