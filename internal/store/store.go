// Package store holds the events the feed renders and the indexes derived
// from them: replies, deletions, reactions, profiles and the viewer's mute
// list. Note bodies, reply lists and profiles are persisted to a cache
// backend and loaded back on demand.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nostr-feed/internal/cache"
	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// ErrInvalidSignature is returned by Ingest for events whose id or signature
// does not verify
var ErrInvalidSignature = errors.New("invalid event signature")

const loadTimeout = 2 * time.Second

// Options configure a Store
type Options struct {
	// Viewer is the hex pubkey of the local user. Their kind 10000 list
	// mutes authors and their '+' reactions set SelfReacted.
	Viewer string
	// AllowUnsigned skips signature checks (fixtures and tests)
	AllowUnsigned bool
	Cache         cache.Config
}

type deletionClaim struct {
	pubkey string
	reason string
}

type reactionAgg struct {
	order  []rune
	counts map[rune]int
	seen   map[string]struct{} // reactor pubkey + symbol
	self   bool
}

type profileEntry struct {
	info      *types.ProfileInfo
	createdAt int64
}

// Store implements every read interface the note engine consumes.
// Reads take a read lock, so a write that completed before a render pass
// is visible to every read in it.
type Store struct {
	mu        sync.RWMutex
	events    map[string]*types.Event
	replies   map[string][]string
	claims    map[string][]deletionClaim
	reactions map[string]*reactionAgg
	profiles  map[string]profileEntry
	muted     map[string]struct{}
	muteAt    int64

	// ids already looked up in the backend without result
	missingEvents  map[string]struct{}
	missingReplies map[string]struct{}
	missingPeople  map[string]struct{}

	backend cache.CacheBackend
	opts    Options
	group   singleflight.Group
}

// New creates a store persisting to backend; backend may be nil
func New(backend cache.CacheBackend, opts Options) *Store {
	return &Store{
		events:         make(map[string]*types.Event),
		replies:        make(map[string][]string),
		claims:         make(map[string][]deletionClaim),
		reactions:      make(map[string]*reactionAgg),
		profiles:       make(map[string]profileEntry),
		muted:          make(map[string]struct{}),
		missingEvents:  make(map[string]struct{}),
		missingReplies: make(map[string]struct{}),
		missingPeople:  make(map[string]struct{}),
		backend:        backend,
		opts:           opts,
	}
}

// Viewer returns the configured viewer pubkey
func (s *Store) Viewer() string {
	return s.opts.Viewer
}

// Event returns a stored note, repost or direct message
func (s *Store) Event(id string) (*types.Event, bool) {
	s.mu.RLock()
	ev, ok := s.events[id]
	_, missing := s.missingEvents[id]
	s.mu.RUnlock()
	if ok {
		return ev, true
	}
	if missing || s.backend == nil {
		return nil, false
	}

	v, _, shared := s.group.Do(cache.EventKey(id), func() (interface{}, error) {
		return s.loadEvent(id), nil
	})
	if shared {
		slog.Debug("singleflight: shared event load", "id", nostr.ShortID(id))
	}
	ev, _ = v.(*types.Event)
	return ev, ev != nil
}

func (s *Store) loadEvent(id string) *types.Event {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	data, found, err := s.backend.Get(ctx, cache.EventKey(id))
	if err != nil {
		slog.Warn("event load failed", "id", nostr.ShortID(id), "error", err)
		return nil
	}
	if !found {
		metrics.IncrementCacheMiss()
		s.mu.Lock()
		s.missingEvents[id] = struct{}{}
		s.mu.Unlock()
		return nil
	}
	metrics.IncrementCacheHit()

	var ev types.Event
	if err := json.Unmarshal(data, &ev); err != nil || ev.ID != id {
		slog.Warn("cached event corrupt", "id", nostr.ShortID(id), "error", err)
		return nil
	}

	s.mu.Lock()
	stored := s.indexNote(&ev)
	s.mu.Unlock()
	return stored
}

// Replies returns the ids replying to id, oldest first
func (s *Store) Replies(id string) []string {
	s.mu.RLock()
	ids, ok := s.replies[id]
	_, missing := s.missingReplies[id]
	out := append([]string(nil), ids...)
	s.mu.RUnlock()
	if ok || missing || s.backend == nil {
		return out
	}

	s.group.Do(cache.RepliesKey(id), func() (interface{}, error) {
		s.loadReplies(id)
		return nil, nil
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.replies[id]...)
}

func (s *Store) loadReplies(parent string) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	data, found, err := s.backend.Get(ctx, cache.RepliesKey(parent))
	var ids []string
	if err == nil && found {
		err = json.Unmarshal(data, &ids)
	}
	if err != nil {
		slog.Warn("reply list load failed", "id", nostr.ShortID(parent), "error", err)
	}
	if !found || len(ids) == 0 {
		metrics.IncrementCacheMiss()
		s.mu.Lock()
		s.missingReplies[parent] = struct{}{}
		s.mu.Unlock()
		return
	}
	metrics.IncrementCacheHit()

	// children not yet in memory are fetched in one round trip; indexing
	// links each one under parent
	var keys []string
	s.mu.RLock()
	for _, child := range ids {
		if _, ok := s.events[child]; !ok {
			keys = append(keys, cache.EventKey(child))
		}
	}
	s.mu.RUnlock()

	var loaded map[string][]byte
	if len(keys) > 0 {
		loaded, err = s.backend.GetMultiple(ctx, keys)
		if err != nil {
			slog.Warn("reply batch load failed", "id", nostr.ShortID(parent), "error", err)
		}
	}

	s.mu.Lock()
	for key, data := range loaded {
		var ev types.Event
		if err := json.Unmarshal(data, &ev); err != nil || cache.EventKey(ev.ID) != key {
			slog.Warn("cached event corrupt", "key", key, "error", err)
			continue
		}
		s.indexNote(&ev)
	}
	if _, ok := s.replies[parent]; !ok {
		s.missingReplies[parent] = struct{}{}
	}
	s.mu.Unlock()
}

// Person returns the viewer-side record for pubkey. The bool reports
// whether a profile is known; Muted is set either way.
func (s *Store) Person(pubkey string) (types.Person, bool) {
	s.mu.RLock()
	p, known := s.personLocked(pubkey)
	_, missing := s.missingPeople[pubkey]
	s.mu.RUnlock()
	if known || missing || s.backend == nil {
		return p, known
	}

	s.group.Do(cache.ProfileKey(pubkey), func() (interface{}, error) {
		s.loadProfile(pubkey)
		return nil, nil
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personLocked(pubkey)
}

func (s *Store) personLocked(pubkey string) (types.Person, bool) {
	p := types.UnknownPerson(pubkey)
	if _, ok := s.muted[pubkey]; ok {
		p.Muted = 1
	}
	entry, ok := s.profiles[pubkey]
	if !ok {
		return p, false
	}
	p.Profile = entry.info
	p.UpdatedAt = entry.createdAt
	return p, true
}

type cachedProfile struct {
	Profile   *types.ProfileInfo `json:"profile"`
	CreatedAt int64              `json:"created_at"`
}

func (s *Store) loadProfile(pubkey string) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	data, found, err := s.backend.Get(ctx, cache.ProfileKey(pubkey))
	var cached cachedProfile
	if err == nil && found {
		err = json.Unmarshal(data, &cached)
	}
	if err != nil {
		slog.Warn("profile load failed", "pubkey", nostr.ShortID(pubkey), "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !found || cached.Profile == nil {
		metrics.IncrementCacheMiss()
		s.missingPeople[pubkey] = struct{}{}
		return
	}
	metrics.IncrementCacheHit()
	if cur, ok := s.profiles[pubkey]; !ok || cur.createdAt < cached.CreatedAt {
		s.profiles[pubkey] = profileEntry{info: cached.Profile, createdAt: cached.CreatedAt}
	}
}

// Deletion reports whether id was deleted by its own author (NIP-09).
// A stored event's author wins over the author the caller claims, which
// only counts for events the store never saw, such as notes embedded in
// reposts.
func (s *Store) Deletion(id, author string) (types.Deletion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ev, ok := s.events[id]; ok {
		author = ev.PubKey
	}
	if author == "" {
		return types.Deletion{}, false
	}
	for _, c := range s.claims[id] {
		if c.pubkey == author {
			return types.Deletion{Reason: c.reason}, true
		}
	}
	return types.Deletion{}, false
}

// Reactions returns the aggregated reactions to id in first-seen symbol order
func (s *Store) Reactions(id string) types.ReactionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.reactions[id]
	if !ok {
		return types.ReactionSet{}
	}
	set := types.ReactionSet{SelfReacted: agg.self}
	for _, sym := range agg.order {
		set.Counts = append(set.Counts, types.ReactionCount{Symbol: sym, Count: agg.counts[sym]})
	}
	return set
}

// Feed returns top-level notes, reposts and direct messages, newest first
func (s *Store) Feed() []string {
	return s.collect(func(ev *types.Event) bool {
		if ev.Kind == types.KindRepost {
			return true
		}
		_, _, isReply := nostr.RepliesTo(ev)
		return !isReply
	})
}

// ByAuthor returns every stored event signed by pubkey, newest first
func (s *Store) ByAuthor(pubkey string) []string {
	return s.collect(func(ev *types.Event) bool {
		return ev.PubKey == pubkey
	})
}

func (s *Store) collect(keep func(*types.Event) bool) []string {
	s.mu.RLock()
	var picked []*types.Event
	for _, ev := range s.events {
		if keep(ev) {
			picked = append(picked, ev)
		}
	}
	s.mu.RUnlock()

	sort.Slice(picked, func(i, j int) bool {
		if picked[i].CreatedAt != picked[j].CreatedAt {
			return picked[i].CreatedAt > picked[j].CreatedAt
		}
		return picked[i].ID < picked[j].ID
	})
	ids := make([]string, len(picked))
	for i, ev := range picked {
		ids[i] = ev.ID
	}
	return ids
}

// Len returns the number of stored renderable events
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
