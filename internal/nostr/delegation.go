package nostr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"nostr-feed/internal/types"
	"nostr-feed/internal/util"
)

// DelegationToken returns the NIP-26 digest signed by the delegator
func DelegationToken(delegatee, conditions string) []byte {
	sum := sha256.Sum256([]byte("nostr:delegation:" + delegatee + ":" + conditions))
	return sum[:]
}

// ResolveDelegation evaluates the first delegation tag of evt.
// A missing tag yields NotDelegated; any defect yields InvalidDelegation with a reason.
func ResolveDelegation(evt *types.Event) types.Delegation {
	tag, ok := util.GetTag(evt.Tags, "delegation")
	if !ok {
		return types.Delegation{State: types.NotDelegated}
	}
	if err := validateDelegationTag(evt, tag); err != nil {
		return types.Delegation{State: types.InvalidDelegation, Reason: err.Error()}
	}
	return types.Delegation{State: types.DelegatedBy, Delegator: tag[1]}
}

func validateDelegationTag(evt *types.Event, tag []string) error {
	if len(tag) < 4 {
		return fmt.Errorf("delegation tag has %d fields, want 4", len(tag))
	}
	delegator, conditions, token := tag[1], tag[2], tag[3]

	if !util.IsHex64(delegator) {
		return fmt.Errorf("delegator is not a hex pubkey")
	}
	pubKeyBytes, _ := hex.DecodeString(delegator)
	pubKey, err := schnorr.ParsePubKey(pubKeyBytes)
	if err != nil {
		return fmt.Errorf("delegator key: %v", err)
	}

	sigBytes, err := hex.DecodeString(token)
	if err != nil || len(sigBytes) != 64 {
		return fmt.Errorf("delegation token is not a 64-byte hex signature")
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("delegation token: %v", err)
	}
	if !sig.Verify(DelegationToken(evt.PubKey, conditions), pubKey) {
		return fmt.Errorf("delegation token signature does not verify")
	}

	return checkConditions(evt, conditions)
}

// checkConditions enforces kind=, created_at< and created_at> clauses.
// Several kind= clauses allow any of the listed kinds.
func checkConditions(evt *types.Event, conditions string) error {
	if conditions == "" {
		return nil
	}
	var kinds []int
	for _, clause := range strings.Split(conditions, "&") {
		switch {
		case strings.HasPrefix(clause, "kind="):
			k, err := strconv.Atoi(strings.TrimPrefix(clause, "kind="))
			if err != nil {
				return fmt.Errorf("bad condition %q", clause)
			}
			kinds = append(kinds, k)
		case strings.HasPrefix(clause, "created_at<"):
			limit, err := strconv.ParseInt(strings.TrimPrefix(clause, "created_at<"), 10, 64)
			if err != nil {
				return fmt.Errorf("bad condition %q", clause)
			}
			if evt.CreatedAt >= limit {
				return fmt.Errorf("created_at %d not before %d", evt.CreatedAt, limit)
			}
		case strings.HasPrefix(clause, "created_at>"):
			limit, err := strconv.ParseInt(strings.TrimPrefix(clause, "created_at>"), 10, 64)
			if err != nil {
				return fmt.Errorf("bad condition %q", clause)
			}
			if evt.CreatedAt <= limit {
				return fmt.Errorf("created_at %d not after %d", evt.CreatedAt, limit)
			}
		default:
			return fmt.Errorf("unsupported condition %q", clause)
		}
	}

	if len(kinds) == 0 {
		return nil
	}
	for _, k := range kinds {
		if k == evt.Kind {
			return nil
		}
	}
	return fmt.Errorf("kind %d not delegated", evt.Kind)
}
