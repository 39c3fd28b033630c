// thread-dump prints a thread, or the whole feed, from a JSONL event file as
// indented plain text.
//
// Usage: thread-dump -events events.jsonl [-id note1...|hex] [-depth 64]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"nostr-feed/internal/config"
	"nostr-feed/internal/nips"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/note"
	"nostr-feed/internal/qr"
	"nostr-feed/internal/store"
	"nostr-feed/internal/types"
)

func main() {
	eventsFile := flag.String("events", "", "JSONL file of events (required)")
	id := flag.String("id", "", "note to print as a thread (note1 or hex); empty prints the feed")
	depth := flag.Int("depth", 0, "maximum reply depth (default from feed config)")
	unsigned := flag.Bool("unsigned", false, "accept events without valid signatures")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LoadEnv().LogLevel})))

	if *eventsFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(os.Stdout, *eventsFile, *id, *depth, *unsigned); err != nil {
		fmt.Fprintln(os.Stderr, "thread-dump:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, path, id string, depth int, unsigned bool) error {
	cfg := config.GetFeedConfig()
	if depth <= 0 {
		depth = cfg.MaxDepth
	}

	st := store.New(nil, store.Options{AllowUnsigned: unsigned})
	if _, err := st.ImportFile(context.Background(), path); err != nil {
		return err
	}

	sess := note.NewSession(cfg.Settings(), 0)
	walker := note.NewWalker(st, qr.NewEncoder(), depth)
	return dump(w, st, sess, walker, id)
}

var errNotFound = errors.New("note not found")

func dump(w io.Writer, st *store.Store, sess *note.Session, walker *note.Walker, id string) error {
	surface := &textSurface{w: w}
	if id == "" {
		for _, feedID := range st.Feed() {
			walker.Walk(sess, surface, note.Params{ID: feedID})
		}
		return surface.err
	}

	hexID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, ok := st.Event(hexID); !ok {
		return fmt.Errorf("%s: %w", nostr.ShortID(hexID), errNotFound)
	}
	sess.Navigate(note.ThreadPage(hexID, hexID))
	walker.Walk(sess, surface, note.Params{ID: hexID, Threaded: true})
	return surface.err
}

func parseID(id string) (string, error) {
	if strings.HasPrefix(id, "note1") {
		return nips.DecodeNote(id)
	}
	if len(id) != 64 {
		return "", fmt.Errorf("invalid note id %q", id)
	}
	return strings.ToLower(id), nil
}

// textSurface writes each view as indented lines; height is the line count
type textSurface struct {
	w   io.Writer
	err error
}

func (s *textSurface) Draw(v note.NoteView) float64 {
	lines := viewLines(v)
	pad := strings.Repeat("  ", v.Depth)
	for _, l := range lines {
		if s.err != nil {
			break
		}
		_, s.err = fmt.Fprintln(s.w, pad+l)
	}
	return float64(len(lines))
}

func viewLines(v note.NoteView) []string {
	switch v.Marker {
	case note.MarkerCycle:
		return []string{"(cycle: " + nostr.ShortID(v.ID) + " already shown)"}
	case note.MarkerDepthExceeded:
		return []string{fmt.Sprintf("(%d more replies below depth limit)", v.Hidden)}
	}

	head := []string{v.DepthLabel + name(v.Author), v.Age}
	if !v.Muted {
		head = append(head, "#"+nostr.ShortID(v.ID))
	}
	for _, b := range v.Badges {
		head = append(head, "["+b.Label+"]")
	}
	lines := []string{strings.Join(strings.Fields(strings.Join(head, " ")), " ")}
	if v.Subject != "" {
		lines = append(lines, "subject: "+v.Subject)
	}
	lines = append(lines, bodyLines(v.Body)...)
	if v.Deleted {
		lines = append(lines, "(deleted: "+v.DeletionReason+")")
	}
	if v.HasReactions {
		lines = append(lines, v.Reactions.String())
	}
	return lines
}

func bodyLines(b note.Body) []string {
	switch b.Kind {
	case note.BodyEmbedded:
		inner := viewLines(*b.Embedded)
		for i := range inner {
			inner[i] = "| " + inner[i]
		}
		return inner
	case note.BodyContent:
		return strings.Split(note.PlainText(b.Segments), "\n")
	}
	if b.Err != nil {
		return []string{"error: " + b.Err.Error()}
	}
	return strings.Split(b.Text, "\n")
}

func name(p types.Person) string {
	if n := p.BestName(); n != "" {
		return n
	}
	return nostr.ShortID(p.PubKey)
}
