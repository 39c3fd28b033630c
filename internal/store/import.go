package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"nostr-feed/internal/types"
)

// ImportStats summarizes an import run
type ImportStats struct {
	Ingested int
	Skipped  int
}

const maxLineSize = 4 * 1024 * 1024

// ImportJSONL reads one event per line. A line is either a bare event object
// or a relay frame ["EVENT", <subscription>, <event>]. Bad lines are logged
// and skipped.
func (s *Store) ImportJSONL(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		ev, err := decodeLine(raw)
		if err == nil {
			err = s.Ingest(ctx, ev)
		}
		if err != nil {
			stats.Skipped++
			slog.Debug("import: skipping line", "line", line, "error", err)
			continue
		}
		stats.Ingested++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("import: read line %d: %w", line+1, err)
	}
	return stats, nil
}

// ImportFile imports a JSONL file from disk
func (s *Store) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	stats, err := s.ImportJSONL(ctx, f)
	slog.Info("events imported", "path", path, "ingested", stats.Ingested, "skipped", stats.Skipped)
	return stats, err
}

func decodeLine(raw []byte) (*types.Event, error) {
	if raw[0] != '[' {
		var ev types.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	}

	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	if len(frame) < 2 {
		return nil, errors.New("short relay frame")
	}
	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil || label != "EVENT" {
		return nil, fmt.Errorf("unsupported relay frame %q", label)
	}

	var ev types.Event
	if err := json.Unmarshal(frame[len(frame)-1], &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
