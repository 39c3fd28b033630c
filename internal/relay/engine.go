package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/note"
	"nostr-feed/internal/types"
)

// ErrOutboxFull is returned by Send when the queue cannot take another message
var ErrOutboxFull = errors.New("outbox full")

// ErrClosed is returned by Send after Close
var ErrClosed = errors.New("outbox closed")

// LocalStore receives our own reactions so the aggregated tally picks them up
type LocalStore interface {
	Ingest(ctx context.Context, ev *types.Event) error
	Event(id string) (*types.Event, bool)
}

// Engine is the note.Outbox used by the dispatcher. Likes are queued on a
// bounded channel and turned into signed NIP-25 reactions by Run.
type Engine struct {
	queue     chan note.ReactMessage
	secret    string
	relays    []string
	publisher *Publisher
	store     LocalStore
	now       func() time.Time

	// ClientTag is appended to every reaction when set (NIP-89)
	ClientTag []string

	mu     sync.Mutex
	closed bool
}

// NewEngine validates the signing key and creates an engine with a queue of size
func NewEngine(secretHex string, relays []string, publisher *Publisher, store LocalStore, size int) (*Engine, error) {
	if _, err := nostr.PubKeyFromSecret(secretHex); err != nil {
		return nil, fmt.Errorf("outbox signing key: %w", err)
	}
	if size <= 0 {
		size = 1
	}
	return &Engine{
		queue:     make(chan note.ReactMessage, size),
		secret:    secretHex,
		relays:    relays,
		publisher: publisher,
		store:     store,
		now:       time.Now,
	}, nil
}

// Send queues msg without blocking
func (e *Engine) Send(msg note.ReactMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	select {
	case e.queue <- msg:
		metrics.IncrementLikesQueued()
		return nil
	default:
		metrics.IncrementLikesDropped()
		return ErrOutboxFull
	}
}

// Close stops accepting messages; Run drains what is queued and returns
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
}

// Run processes queued likes until the context is done or the engine is closed
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-e.queue:
			if !ok {
				return
			}
			if _, err := e.React(ctx, msg); err != nil {
				slog.Warn("reaction failed", "id", nostr.ShortID(msg.NoteID), "error", err)
			}
		}
	}
}

// React builds, signs, stores and publishes a like for msg
func (e *Engine) React(ctx context.Context, msg note.ReactMessage) (*types.Event, error) {
	ev := BuildReaction(msg, e.targetKind(msg.NoteID), e.now())
	if len(e.ClientTag) > 0 {
		ev.Tags = append(ev.Tags, e.ClientTag)
	}
	if err := nostr.Sign(ev, e.secret); err != nil {
		return nil, fmt.Errorf("sign reaction: %w", err)
	}

	if e.store != nil {
		if err := e.store.Ingest(ctx, ev); err != nil {
			return ev, fmt.Errorf("store reaction: %w", err)
		}
	}

	if e.publisher == nil || len(e.relays) == 0 {
		slog.Debug("reaction stored locally only", "id", nostr.ShortID(ev.ID))
		return ev, nil
	}

	accepted := 0
	for _, r := range e.publisher.PublishAll(ctx, e.relays, ev) {
		if r.Err == nil && r.Accepted {
			accepted++
		} else {
			metrics.IncrementPublishFailures()
		}
	}
	if accepted == 0 {
		return ev, fmt.Errorf("no relay accepted reaction %s", nostr.ShortID(ev.ID))
	}
	metrics.IncrementLikesPublished()
	slog.Info("reaction published", "id", nostr.ShortID(ev.ID), "target", nostr.ShortID(msg.NoteID), "relays", accepted)
	return ev, nil
}

func (e *Engine) targetKind(id string) int {
	if e.store == nil {
		return -1
	}
	if target, ok := e.store.Event(id); ok {
		return target.Kind
	}
	return -1
}

// BuildReaction returns an unsigned NIP-25 like. kind < 0 omits the k tag.
func BuildReaction(msg note.ReactMessage, kind int, at time.Time) *types.Event {
	tags := [][]string{{"e", msg.NoteID}, {"p", msg.AuthorKey}}
	if kind >= 0 {
		tags = append(tags, []string{"k", strconv.Itoa(kind)})
	}
	return &types.Event{
		CreatedAt: at.Unix(),
		Kind:      types.KindReaction,
		Tags:      tags,
		Content:   string(types.DefaultReaction),
	}
}
