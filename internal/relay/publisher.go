// Package relay publishes the viewer's own events to relays and owns the
// outbox that turns like gestures into signed reactions.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

// ErrUnsafeRelay is returned for relay URLs that point at private networks
var ErrUnsafeRelay = errors.New("relay URL not allowed")

const defaultPublishTimeout = 5 * time.Second

// PublishResult is one relay's answer to an EVENT message
type PublishResult struct {
	Relay    string
	Accepted bool
	Message  string
	Err      error
}

// Publisher sends events over short-lived websocket connections
type Publisher struct {
	dialer  *websocket.Dialer
	timeout time.Duration
	// checkURL guards against SSRF; tests may relax it
	checkURL func(string) bool
}

// NewPublisher creates a publisher waiting up to timeout for each relay's OK
func NewPublisher(timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Publisher{
		dialer:   websocket.DefaultDialer,
		timeout:  timeout,
		checkURL: IsRelayURLSafe,
	}
}

// Publish sends ["EVENT", ev] to relayURL and waits for the matching
// ["OK", id, accepted, message]
func (p *Publisher) Publish(ctx context.Context, relayURL string, ev *types.Event) PublishResult {
	res := PublishResult{Relay: relayURL}
	if !p.checkURL(relayURL) {
		res.Err = fmt.Errorf("%s: %w", relayURL, ErrUnsafeRelay)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, _, err := p.dialer.DialContext(ctx, relayURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("dial: %w", err)
		return res
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON([]interface{}{"EVENT", ev}); err != nil {
		res.Err = fmt.Errorf("write: %w", err)
		return res
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			res.Err = fmt.Errorf("read: %w", err)
			return res
		}

		var msg []json.RawMessage
		if err := json.Unmarshal(data, &msg); err != nil || len(msg) < 2 {
			continue
		}
		var label string
		json.Unmarshal(msg[0], &label)

		switch label {
		case "OK":
			var id string
			json.Unmarshal(msg[1], &id)
			if id != ev.ID || len(msg) < 3 {
				continue
			}
			json.Unmarshal(msg[2], &res.Accepted)
			if len(msg) >= 4 {
				json.Unmarshal(msg[3], &res.Message)
			}
			return res
		case "NOTICE":
			var notice string
			json.Unmarshal(msg[1], &notice)
			slog.Debug("relay notice", "relay", relayURL, "notice", notice)
		}
	}
}

// PublishAll publishes ev to every relay concurrently
func (p *Publisher) PublishAll(ctx context.Context, relays []string, ev *types.Event) []PublishResult {
	results := make([]PublishResult, len(relays))
	var wg sync.WaitGroup
	for i, relayURL := range relays {
		wg.Add(1)
		go func(i int, relayURL string) {
			defer wg.Done()
			results[i] = p.Publish(ctx, relayURL, ev)
			if r := results[i]; r.Err != nil || !r.Accepted {
				slog.Warn("failed to publish", "relay", relayURL, "id", nostr.ShortID(ev.ID), "error", r.Err, "message", r.Message)
			}
		}(i, relayURL)
	}
	wg.Wait()
	return results
}
