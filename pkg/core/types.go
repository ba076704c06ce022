// Package core implements the collateral vault ledger: the Vault record,
// the Authority Registry, and the balance invariants that every operation
// must preserve. Nothing in this package performs I/O or token movement —
// it is the state machine only.
package core

import "encoding/hex"

// PubKey is a 32-byte identity: a vault owner, a delegate, a whitelisted
// withdrawal recipient, or an authorized program.
type PubKey [32]byte

// ZeroPubKey is the uninitialized key, used to detect an empty vault slot.
var ZeroPubKey PubKey

func (k PubKey) String() string {
	return hex.EncodeToString(k[:])
}

// ParsePubKey decodes the hex encoding String produces back into a PubKey.
func ParsePubKey(s string) (PubKey, error) {
	var k PubKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, err
	}
	if len(b) != len(k) {
		return k, hex.ErrLength
	}
	copy(k[:], b)
	return k, nil
}

// IsZero reports whether k is the zero key.
func (k PubKey) IsZero() bool {
	return k == ZeroPubKey
}

// Cardinality caps from spec.md §3.1/§3.2 — fixed at allocation time on the
// reference (Anchor) implementation so the account never needs to realloc.
const (
	MaxAuthorizedSigners = 10
	MaxDelegatedUsers    = 5
	MaxWhitelistEntries  = 20
	MaxAuthorizedProgram = 10
)

// Default rate-limit config applied by InitializeVault.
const (
	DefaultRateLimitWindowSeconds = 86400
)

// PendingWithdrawal is the two-phase withdrawal request in flight against a
// vault's timelock (spec.md §4.5).
type PendingWithdrawal struct {
	Amount       uint64
	RequestedAt  int64
	ExecutableAt int64
	Recipient    PubKey
}

// Vault is the per-owner custody record (spec.md §3.1). Field order matches
// original_source/program/programs/collateral_vault/src/state/vault.rs so a
// byte-level account decoder (§6.2) walks the same layout.
type Vault struct {
	Owner        PubKey
	TokenAccount PubKey
	Bump         uint8

	Total     uint64
	Locked    uint64
	Available uint64

	TotalDeposited    uint64
	TotalWithdrawn    uint64
	TotalYieldEarned  uint64

	CreatedAt          int64
	LastUpdate         int64
	LastYieldCompound  int64

	MultisigThreshold uint8
	AuthorizedSigners []PubKey

	DelegatedUsers []PubKey

	WithdrawalTimelock int64
	PendingWithdrawal  *PendingWithdrawal

	EmergencyMode bool

	YieldEnabled bool

	WhitelistEnabled    bool
	WithdrawalWhitelist []PubKey

	RateLimitAmount      uint64
	RateLimitWindow      int64
	RateLimitWindowStart int64
	RateLimitWithdrawn   uint64
}

// AuthorityRegistry is the process-wide singleton listing programs allowed
// to invoke restricted vault operations (spec.md §3.2).
type AuthorityRegistry struct {
	Admin              PubKey
	AuthorizedPrograms []PubKey
	Bump               uint8
}
