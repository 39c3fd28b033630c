package nostr

import (
	"testing"

	"nostr-feed/internal/types"
)

func TestRepliesTo(t *testing.T) {
	tests := []struct {
		name   string
		kind   int
		tags   [][]string
		want   string
		wantOK bool
	}{
		{"none", types.KindTextNote, nil, "", false},
		{"marked reply wins", types.KindTextNote, [][]string{
			{"e", "root", "", "root"},
			{"e", "parent", "wss://r", "reply"},
		}, "parent", true},
		{"root only", types.KindTextNote, [][]string{{"e", "root", "", "root"}}, "root", true},
		{"positional last", types.KindTextNote, [][]string{{"e", "a"}, {"e", "b"}}, "b", true},
		{"mentions ignored", types.KindTextNote, [][]string{{"e", "m", "", "mention"}}, "", false},
		{"reposts never reply", types.KindRepost, [][]string{{"e", "a"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &types.Event{Kind: tt.kind, Tags: tt.tags}
			got, _, ok := RepliesTo(evt)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("RepliesTo = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestContentWarningAndSubject(t *testing.T) {
	evt := &types.Event{Tags: [][]string{{"content-warning"}, {"subject", "hi"}}}
	reason, ok := ContentWarning(evt)
	if !ok || reason != "" {
		t.Fatalf("value-less content-warning must be present with empty reason, got (%q, %v)", reason, ok)
	}
	if s, ok := Subject(evt); !ok || s != "hi" {
		t.Fatalf("Subject = (%q, %v)", s, ok)
	}

	evt.Tags = [][]string{{"content-warning", "spoilers"}}
	if reason, _ := ContentWarning(evt); reason != "spoilers" {
		t.Fatalf("unexpected reason %q", reason)
	}
	if _, ok := Subject(evt); ok {
		t.Fatalf("no subject expected")
	}
}

func TestPOW(t *testing.T) {
	id := "000f" + "ff" + "000000000000000000000000000000000000000000000000000000000000"[:58]
	if got := LeadingZeroBits(id); got != 12 {
		t.Fatalf("LeadingZeroBits = %d, want 12", got)
	}

	evt := &types.Event{ID: id}
	if got := POW(evt); got != 0 {
		t.Fatalf("no nonce tag means no pow, got %d", got)
	}
	evt.Tags = [][]string{{"nonce", "42"}}
	if got := POW(evt); got != 12 {
		t.Fatalf("uncommitted pow = %d, want 12", got)
	}
	evt.Tags = [][]string{{"nonce", "42", "8"}}
	if got := POW(evt); got != 8 {
		t.Fatalf("committed target caps pow, got %d", got)
	}
}

func TestNormalizeRelayURL(t *testing.T) {
	cases := map[string]string{
		"wss://Relay.Damus.io/":   "wss://relay.damus.io",
		"ws://127.0.0.1:7777":     "ws://127.0.0.1:7777",
		"https://relay.damus.io":  "",
		"wss://relay.onion":       "",
		"wss://https://bad.relay": "",
		"  ":                      "",
	}
	for in, want := range cases {
		if got := NormalizeRelayURL(in); got != want {
			t.Errorf("NormalizeRelayURL(%q) = %q, want %q", in, got, want)
		}
	}
}
