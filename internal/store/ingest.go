package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"nostr-feed/internal/cache"
	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
	"nostr-feed/internal/util"
)

// Ingest verifies ev and folds it into the store. Kinds the feed does not
// consume are ignored without error. Re-ingesting a known event is a no-op.
func (s *Store) Ingest(ctx context.Context, ev *types.Event) error {
	if ev == nil {
		return fmt.Errorf("ingest: nil event")
	}
	if !s.opts.AllowUnsigned && !nostr.VerifyEvent(ev) {
		metrics.IncrementRejected()
		return fmt.Errorf("ingest %s: %w", nostr.ShortID(ev.ID), ErrInvalidSignature)
	}

	cp := *ev
	var persist func(context.Context) error

	s.mu.Lock()
	switch cp.Kind {
	case types.KindTextNote, types.KindEncryptedDirectMessage, types.KindRepost:
		if _, dup := s.events[cp.ID]; dup {
			s.mu.Unlock()
			return nil
		}
		stored := s.indexNote(&cp)
		persist = s.persistNote(stored)
	case types.KindMetadata:
		persist = s.applyProfile(&cp)
	case types.KindEventDeletion:
		s.applyDeletion(&cp)
	case types.KindReaction:
		s.applyReaction(&cp)
	case types.KindMuteList:
		s.applyMuteList(&cp)
	default:
		s.mu.Unlock()
		slog.Debug("ignoring event kind", "kind", cp.Kind, "id", nostr.ShortID(cp.ID))
		return nil
	}
	s.mu.Unlock()

	metrics.IncrementIngested()
	if persist != nil && s.backend != nil {
		if err := persist(ctx); err != nil {
			// The in-memory indexes already hold the event
			slog.Warn("persist failed", "id", nostr.ShortID(cp.ID), "kind", cp.Kind, "error", err)
		}
	}
	return nil
}

// indexNote stores a renderable event and links it under its parent.
// Caller holds the write lock.
func (s *Store) indexNote(ev *types.Event) *types.Event {
	if existing, ok := s.events[ev.ID]; ok {
		return existing
	}
	s.events[ev.ID] = ev
	delete(s.missingEvents, ev.ID)

	parent, _, ok := nostr.RepliesTo(ev)
	if !ok || parent == ev.ID {
		return ev
	}
	children := append(s.replies[parent], ev.ID)
	sort.SliceStable(children, func(i, j int) bool {
		a, b := s.events[children[i]], s.events[children[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	s.replies[parent] = children
	delete(s.missingReplies, parent)
	return ev
}

// persistNote returns the backend writes for a newly indexed note.
// Caller holds the write lock; the returned func must run without it.
func (s *Store) persistNote(ev *types.Event) func(context.Context) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return func(context.Context) error { return err }
	}
	items := map[string][]byte{cache.EventKey(ev.ID): eventJSON}

	var parentKey string
	var parentJSON []byte
	if parent, _, ok := nostr.RepliesTo(ev); ok {
		parentKey = cache.RepliesKey(parent)
		parentJSON, _ = json.Marshal(s.replies[parent])
	}
	ttl := s.opts.Cache.EventTTL

	return func(ctx context.Context) error {
		if err := s.backend.SetMultiple(ctx, items, ttl); err != nil {
			return err
		}
		if parentKey != "" {
			return s.backend.Set(ctx, parentKey, parentJSON, ttl)
		}
		return nil
	}
}

func (s *Store) applyProfile(ev *types.Event) func(context.Context) error {
	var info types.ProfileInfo
	if err := json.Unmarshal([]byte(ev.Content), &info); err != nil {
		slog.Debug("unparseable profile", "pubkey", nostr.ShortID(ev.PubKey), "error", err)
		return nil
	}
	if cur, ok := s.profiles[ev.PubKey]; ok && cur.createdAt >= ev.CreatedAt {
		return nil
	}
	s.profiles[ev.PubKey] = profileEntry{info: &info, createdAt: ev.CreatedAt}
	delete(s.missingPeople, ev.PubKey)

	data, err := json.Marshal(cachedProfile{Profile: &info, CreatedAt: ev.CreatedAt})
	if err != nil {
		return nil
	}
	key, ttl := cache.ProfileKey(ev.PubKey), s.opts.Cache.ProfileTTL
	return func(ctx context.Context) error {
		return s.backend.Set(ctx, key, data, ttl)
	}
}

// applyDeletion records claims for every e-tag. Whether a claim counts is
// decided at read time against the target's author, since the target may
// arrive later.
func (s *Store) applyDeletion(ev *types.Event) {
	for _, id := range util.GetTagValues(ev.Tags, "e") {
		s.claims[id] = append(s.claims[id], deletionClaim{pubkey: ev.PubKey, reason: ev.Content})
	}
}

// applyReaction counts one reaction per reactor and symbol on the last e-tag (NIP-25)
func (s *Store) applyReaction(ev *types.Event) {
	targets := util.GetTagValues(ev.Tags, "e")
	if len(targets) == 0 {
		return
	}
	target := targets[len(targets)-1]

	symbol := types.DefaultReaction
	for _, r := range ev.Content {
		symbol = r
		break
	}

	agg, ok := s.reactions[target]
	if !ok {
		agg = &reactionAgg{counts: make(map[rune]int), seen: make(map[string]struct{})}
		s.reactions[target] = agg
	}
	key := ev.PubKey + string(symbol)
	if _, dup := agg.seen[key]; dup {
		return
	}
	agg.seen[key] = struct{}{}
	if _, known := agg.counts[symbol]; !known {
		agg.order = append(agg.order, symbol)
	}
	agg.counts[symbol]++
	if symbol == types.DefaultReaction && s.opts.Viewer != "" && ev.PubKey == s.opts.Viewer {
		agg.self = true
	}
}

// applyMuteList replaces the muted set with the viewer's newest kind 10000 list
func (s *Store) applyMuteList(ev *types.Event) {
	if s.opts.Viewer == "" || ev.PubKey != s.opts.Viewer || ev.CreatedAt < s.muteAt {
		return
	}
	muted := make(map[string]struct{})
	for _, pk := range util.GetTagValues(ev.Tags, "p") {
		muted[pk] = struct{}{}
	}
	s.muted = muted
	s.muteAt = ev.CreatedAt
}
