package nips

import (
	"errors"
	"strings"
	"testing"
)

const (
	testPubkeyHex = "bbde6a0e8847e1cdb2ba5ec021cc949eb3cef125b8304a748fe11c0407990eec"
	testEventID   = "7f431bf32dcabd8630b529e25754bfb37b84b1e2a2bf01531b5db0d21180ba9f"
)

func TestEncodeDecodeEventID(t *testing.T) {
	note, err := EncodeEventID(testEventID)
	if err != nil {
		t.Fatalf("EncodeEventID failed: %v", err)
	}
	if !strings.HasPrefix(note, "note1") {
		t.Fatalf("expected note1 prefix, got %s", note)
	}

	back, err := DecodeNote(note)
	if err != nil {
		t.Fatalf("DecodeNote failed: %v", err)
	}
	if back != testEventID {
		t.Fatalf("round trip mismatch:\n  got:  %s\n  want: %s", back, testEventID)
	}
}

func TestEncodePubkeyKnownValue(t *testing.T) {
	// fiatjaf's well-known key from the NIP-19 examples
	npub, err := EncodePubkey("3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d")
	if err != nil {
		t.Fatalf("EncodePubkey failed: %v", err)
	}
	want := "npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6"
	if npub != want {
		t.Fatalf("unexpected npub:\n  got:  %s\n  want: %s", npub, want)
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	if _, err := EncodeEventID("zz"); err == nil {
		t.Fatalf("expected hex error")
	}
	_, err := EncodeEventID(testEventID[:62])
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	npub, err := EncodePubkey(testPubkeyHex)
	if err != nil {
		t.Fatalf("EncodePubkey failed: %v", err)
	}
	// flip the last checksum character
	last := npub[len(npub)-1]
	repl := byte('q')
	if last == 'q' {
		repl = 'p'
	}
	corrupted := npub[:len(npub)-1] + string(repl)
	if _, err := DecodePubkey(corrupted); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected checksum error, got %v", err)
	}
	if _, err := DecodeNote(npub); err == nil {
		t.Fatalf("npub must not decode as note")
	}
}
