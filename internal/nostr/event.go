package nostr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"nostr-feed/internal/types"
)

// ErrInvalidSecretKey is returned when a hex secret key cannot be used for signing
var ErrInvalidSecretKey = errors.New("invalid secret key")

// ValidateEventSignature verifies Schnorr signature for a Nostr event
func ValidateEventSignature(evt *types.Event) bool {
	if len(evt.Sig) != 128 || len(evt.PubKey) != 64 {
		return false
	}

	sigBytes, err := hex.DecodeString(evt.Sig)
	if err != nil {
		return false
	}
	pubKeyBytes, err := hex.DecodeString(evt.PubKey)
	if err != nil {
		return false
	}
	idBytes, err := hex.DecodeString(evt.ID)
	if err != nil {
		return false
	}

	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}
	pubKey, err := schnorr.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}

	return sig.Verify(idBytes, pubKey)
}

// VerifyEvent checks both the content-addressed id and the signature
func VerifyEvent(evt *types.Event) bool {
	id, err := ComputeID(evt)
	if err != nil || id != evt.ID {
		return false
	}
	return ValidateEventSignature(evt)
}

// ComputeID returns the NIP-01 id: sha256 of [0,pubkey,created_at,kind,tags,content]
func ComputeID(evt *types.Event) (string, error) {
	tags := evt.Tags
	if tags == nil {
		tags = [][]string{}
	}

	// json.Marshal escapes <, > and & which changes the hash
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]interface{}{0, evt.PubKey, evt.CreatedAt, evt.Kind, tags, evt.Content}); err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	hash := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(hash[:]), nil
}

// PubKeyFromSecret derives the x-only hex pubkey for a hex secret key
func PubKeyFromSecret(secretHex string) (string, error) {
	priv, err := parseSecret(secretHex)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())), nil
}

// Sign fills PubKey, ID and Sig of evt using the hex secret key
func Sign(evt *types.Event, secretHex string) error {
	priv, err := parseSecret(secretHex)
	if err != nil {
		return err
	}
	evt.PubKey = hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey()))

	id, err := ComputeID(evt)
	if err != nil {
		return err
	}
	idBytes, _ := hex.DecodeString(id)

	sig, err := schnorr.Sign(priv, idBytes)
	if err != nil {
		return fmt.Errorf("sign event: %w", err)
	}
	evt.ID = id
	evt.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}

// SignDigest signs an arbitrary 32-byte digest, used for delegation tokens
func SignDigest(digest []byte, secretHex string) (string, error) {
	priv, err := parseSecret(secretHex)
	if err != nil {
		return "", err
	}
	sig, err := schnorr.Sign(priv, digest)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

func parseSecret(secretHex string) (*btcec.PrivateKey, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidSecretKey
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	if priv == nil {
		return nil, ErrInvalidSecretKey
	}
	return priv, nil
}

// ShortID truncates ID/pubkey to 12 chars for logging
func ShortID(id string) string {
	if len(id) >= 12 {
		return id[:12]
	}
	return id
}
