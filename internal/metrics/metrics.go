// Package metrics keeps process-wide counters and serves them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

var startTime = time.Now()

// Render metrics
var (
	notesRendered  atomic.Int64
	notesGated     atomic.Int64
	notesMuted     atomic.Int64
	depthExceeded  atomic.Int64
	cyclesDetected atomic.Int64
	actionFailures atomic.Int64
	eventsIngested atomic.Int64
	eventsRejected atomic.Int64
)

// Outbox metrics
var (
	likesQueued     atomic.Int64
	likesDropped    atomic.Int64
	likesPublished  atomic.Int64
	publishFailures atomic.Int64
)

// Cache metrics
var (
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
)

// Cache backend type for build info ("redis" or "memory")
var cacheBackendType atomic.Value

func IncrementNotesRendered()  { notesRendered.Add(1) }
func IncrementNotesGated()     { notesGated.Add(1) }
func IncrementNotesMuted()     { notesMuted.Add(1) }
func IncrementDepthExceeded()  { depthExceeded.Add(1) }
func IncrementCycles()         { cyclesDetected.Add(1) }
func IncrementActionFailures() { actionFailures.Add(1) }
func IncrementIngested()       { eventsIngested.Add(1) }
func IncrementRejected()       { eventsRejected.Add(1) }

func IncrementLikesQueued()     { likesQueued.Add(1) }
func IncrementLikesDropped()    { likesDropped.Add(1) }
func IncrementLikesPublished()  { likesPublished.Add(1) }
func IncrementPublishFailures() { publishFailures.Add(1) }

// IncrementCacheHit increments the cache hit counter
func IncrementCacheHit() {
	cacheHitsTotal.Add(1)
}

// IncrementCacheMiss increments the cache miss counter
func IncrementCacheMiss() {
	cacheMissesTotal.Add(1)
}

// SetCacheBackend records which cache backend is active
func SetCacheBackend(kind string) {
	cacheBackendType.Store(kind)
}

// Snapshot is a point-in-time copy of the counters, used by tests and the
// thread-dump tool
type Snapshot struct {
	NotesRendered   int64
	NotesGated      int64
	NotesMuted      int64
	DepthExceeded   int64
	Cycles          int64
	ActionFailures  int64
	EventsIngested  int64
	EventsRejected  int64
	LikesQueued     int64
	LikesDropped    int64
	LikesPublished  int64
	PublishFailures int64
	CacheHits       int64
	CacheMisses     int64
}

// Read returns the current counter values
func Read() Snapshot {
	return Snapshot{
		NotesRendered:   notesRendered.Load(),
		NotesGated:      notesGated.Load(),
		NotesMuted:      notesMuted.Load(),
		DepthExceeded:   depthExceeded.Load(),
		Cycles:          cyclesDetected.Load(),
		ActionFailures:  actionFailures.Load(),
		EventsIngested:  eventsIngested.Load(),
		EventsRejected:  eventsRejected.Load(),
		LikesQueued:     likesQueued.Load(),
		LikesDropped:    likesDropped.Load(),
		LikesPublished:  likesPublished.Load(),
		PublishFailures: publishFailures.Load(),
		CacheHits:       cacheHitsTotal.Load(),
		CacheMisses:     cacheMissesTotal.Load(),
	}
}

func writeCounter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n\n", name, v)
}

// Handler serves Prometheus-compatible metrics
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	backend, _ := cacheBackendType.Load().(string)
	if backend == "" {
		backend = "none"
	}

	// Build info metric
	fmt.Fprintf(w, "# HELP nostr_feed_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE nostr_feed_build_info gauge\n")
	fmt.Fprintf(w, "nostr_feed_build_info{cache_backend=%q,go_version=%q} 1\n\n", backend, runtime.Version())

	// Process metrics
	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since process started\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n\n", time.Since(startTime).Seconds())

	fmt.Fprintf(w, "# HELP go_goroutines Number of active goroutines\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n\n", runtime.NumGoroutine())

	s := Read()

	// Render metrics
	writeCounter(w, "nostr_feed_notes_rendered_total", "Notes drawn to a surface", s.NotesRendered)
	writeCounter(w, "nostr_feed_notes_gated_total", "Notes skipped by the kind gate", s.NotesGated)
	writeCounter(w, "nostr_feed_notes_muted_total", "Notes replaced by the muted placeholder", s.NotesMuted)
	writeCounter(w, "nostr_feed_depth_exceeded_total", "Thread walks cut at the depth limit", s.DepthExceeded)
	writeCounter(w, "nostr_feed_cycles_total", "Reply cycles detected during thread walks", s.Cycles)
	writeCounter(w, "nostr_feed_action_failures_total", "User actions that failed", s.ActionFailures)

	// Store metrics
	writeCounter(w, "nostr_feed_events_ingested_total", "Events accepted into the store", s.EventsIngested)
	writeCounter(w, "nostr_feed_events_rejected_total", "Events rejected by the store", s.EventsRejected)

	// Outbox metrics
	writeCounter(w, "nostr_feed_likes_queued_total", "Likes accepted by the outbox", s.LikesQueued)
	writeCounter(w, "nostr_feed_likes_dropped_total", "Likes dropped due to a full outbox", s.LikesDropped)
	writeCounter(w, "nostr_feed_likes_published_total", "Likes accepted by at least one relay", s.LikesPublished)
	writeCounter(w, "nostr_feed_publish_failures_total", "Relay publish attempts that failed", s.PublishFailures)

	// Cache metrics
	writeCounter(w, "cache_hits_total", "Total cache hits", s.CacheHits)
	writeCounter(w, "cache_misses_total", "Total cache misses", s.CacheMisses)

	// Cache hit ratio (useful for alerting)
	var hitRatio float64
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		hitRatio = float64(s.CacheHits) / float64(total)
	}
	fmt.Fprintf(w, "# HELP cache_hit_ratio Cache hit ratio (0-1)\n")
	fmt.Fprintf(w, "# TYPE cache_hit_ratio gauge\n")
	fmt.Fprintf(w, "cache_hit_ratio %.4f\n", hitRatio)
}
