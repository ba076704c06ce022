package ports

import "github.com/clearvault/vault/pkg/core"

// EventType discriminates the typed records the engine appends to its
// event sink (spec.md §4.7): one event per logical mutation, except that
// InitializeVault, InitializeAuthority and ConfigureTimelock emit none.
type EventType int

const (
	EventDeposited EventType = iota
	EventWithdrawn
	EventLocked
	EventUnlocked
	EventTransferred
	EventMultisigConfigured
	EventDelegateAdded
	EventDelegateRemoved
	EventWithdrawalRequested
	EventWithdrawalCancelled
	EventWithdrawalExecuted
	EventYieldConfigured
	EventYieldCompounded
	EventEmergencyModeToggled
	EventWhitelistConfigured
	EventWhitelistEntryAdded
	EventWhitelistEntryRemoved
	EventRateLimitConfigured
	EventSignerAdded
	EventProgramAuthorized
	EventProgramDeauthorized
)

// Event is the envelope every payload travels in, mirroring
// BlockchainEvent{Type, Payload} from the teacher's adapter layer.
type Event struct {
	Type      EventType
	Timestamp int64
	Payload   interface{}
}

// DepositPayload accompanies EventDeposited.
type DepositPayload struct {
	Vault      core.PubKey
	Amount     uint64
	NewBalance uint64
}

// WithdrawPayload accompanies EventWithdrawn.
type WithdrawPayload struct {
	Vault      core.PubKey
	Recipient  core.PubKey
	Amount     uint64
	NewBalance uint64
}

// LockPayload accompanies EventLocked and EventUnlocked.
type LockPayload struct {
	Vault       core.PubKey
	Caller      core.PubKey
	Amount      uint64
	NewLocked   uint64
	NewAvailable uint64
}

// TransferPayload accompanies EventTransferred (vault-to-vault).
type TransferPayload struct {
	From   core.PubKey
	To     core.PubKey
	Amount uint64
	Caller core.PubKey
}

// MultisigConfiguredPayload accompanies EventMultisigConfigured.
type MultisigConfiguredPayload struct {
	Vault     core.PubKey
	Threshold uint8
	Signers   []core.PubKey
}

// DelegationPayload accompanies EventDelegateAdded/EventDelegateRemoved.
type DelegationPayload struct {
	Vault    core.PubKey
	Delegate core.PubKey
}

// WithdrawalRequestedPayload accompanies EventWithdrawalRequested.
type WithdrawalRequestedPayload struct {
	Vault        core.PubKey
	Recipient    core.PubKey
	Amount       uint64
	ExecutableAt int64
}

// WithdrawalLifecyclePayload accompanies EventWithdrawalCancelled and
// EventWithdrawalExecuted.
type WithdrawalLifecyclePayload struct {
	Vault     core.PubKey
	Recipient core.PubKey
	Amount    uint64
}

// YieldConfiguredPayload accompanies EventYieldConfigured.
type YieldConfiguredPayload struct {
	Vault   core.PubKey
	Enabled bool
}

// YieldCompoundedPayload accompanies EventYieldCompounded.
type YieldCompoundedPayload struct {
	Vault            core.PubKey
	Amount           uint64
	TotalYieldEarned uint64
	Caller           core.PubKey
}

// EmergencyModePayload accompanies EventEmergencyModeToggled.
type EmergencyModePayload struct {
	Vault   core.PubKey
	Enabled bool
}

// WhitelistConfiguredPayload accompanies EventWhitelistConfigured.
type WhitelistConfiguredPayload struct {
	Vault   core.PubKey
	Enabled bool
}

// WhitelistEntryPayload accompanies EventWhitelistEntryAdded/Removed.
type WhitelistEntryPayload struct {
	Vault   core.PubKey
	Address core.PubKey
}

// RateLimitConfiguredPayload accompanies EventRateLimitConfigured.
type RateLimitConfiguredPayload struct {
	Vault  core.PubKey
	Amount uint64
	Window int64
}

// SignerPayload accompanies EventSignerAdded.
type SignerPayload struct {
	Vault  core.PubKey
	Signer core.PubKey
}

// AuthorityProgramPayload accompanies EventProgramAuthorized and
// EventProgramDeauthorized.
type AuthorityProgramPayload struct {
	Program core.PubKey
	Admin   core.PubKey
}
