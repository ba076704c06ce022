package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// NewVault builds a freshly initialized vault (initialize_vault, spec.md
// §4.3): every balance at zero, advanced features at their documented
// defaults (Open Question #1 in SPEC_FULL.md §9.1 — always set, never left
// implicit).
func NewVault(owner, tokenAccount PubKey, bump uint8, now int64) *Vault {
	return &Vault{
		Owner:                owner,
		TokenAccount:         tokenAccount,
		Bump:                 bump,
		CreatedAt:            now,
		LastUpdate:           now,
		LastYieldCompound:    now,
		RateLimitAmount:      ^uint64(0),
		RateLimitWindow:      DefaultRateLimitWindowSeconds,
		RateLimitWindowStart: now,
	}
}

// Clone deep-copies a vault so an operation can mutate the copy and only
// commit it back on success — this is how every engine operation satisfies
// invariant #3 ("a would-be overflow aborts the operation with no
// mutation"): no in-place mutation is ever visible until it fully succeeds.
func (v *Vault) Clone() *Vault {
	cp := *v
	cp.AuthorizedSigners = cloneKeys(v.AuthorizedSigners)
	cp.DelegatedUsers = cloneKeys(v.DelegatedUsers)
	cp.WithdrawalWhitelist = cloneKeys(v.WithdrawalWhitelist)
	if v.PendingWithdrawal != nil {
		pw := *v.PendingWithdrawal
		cp.PendingWithdrawal = &pw
	}
	return &cp
}

// Hash returns a content-addressed identifier for the vault's balance
// fields, used by the gateway to detect whether a mirrored row is stale.
func (v *Vault) Hash() string {
	var buf [8 * 6]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.Total)
	binary.LittleEndian.PutUint64(buf[8:16], v.Locked)
	binary.LittleEndian.PutUint64(buf[16:24], v.Available)
	binary.LittleEndian.PutUint64(buf[24:32], v.TotalDeposited)
	binary.LittleEndian.PutUint64(buf[32:40], v.TotalWithdrawn)
	binary.LittleEndian.PutUint64(buf[40:48], v.TotalYieldEarned)
	h := sha256.Sum256(append(v.Owner[:], buf[:]...))
	return hex.EncodeToString(h[:])
}

// AddDeposit implements spec.md §4.1's add_deposit helper.
func (v *Vault) AddDeposit(amount uint64) error {
	total, ok := addChecked(v.Total, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "total overflow on deposit")
	}
	available, ok := addChecked(v.Available, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "available overflow on deposit")
	}
	deposited, ok := addChecked(v.TotalDeposited, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "total_deposited overflow")
	}
	v.Total, v.Available, v.TotalDeposited = total, available, deposited
	return nil
}

// SubWithdrawal implements spec.md §4.1's sub_withdrawal helper.
func (v *Vault) SubWithdrawal(amount uint64) error {
	if v.Available < amount {
		return newErr(ErrKindInsufficientAvailableBalance, "available balance too low")
	}
	total, ok := subChecked(v.Total, amount)
	if !ok {
		return newErr(ErrKindInsufficientBalance, "total balance too low")
	}
	available, ok := subChecked(v.Available, amount)
	if !ok {
		return newErr(ErrKindInsufficientAvailableBalance, "available balance too low")
	}
	withdrawn, ok := addChecked(v.TotalWithdrawn, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "total_withdrawn overflow")
	}
	v.Total, v.Available, v.TotalWithdrawn = total, available, withdrawn
	return nil
}

// Lock implements spec.md §4.1's lock helper.
func (v *Vault) Lock(amount uint64) error {
	if v.Available < amount {
		return newErr(ErrKindInsufficientAvailableBalance, "available balance too low to lock")
	}
	available, ok := subChecked(v.Available, amount)
	if !ok {
		return newErr(ErrKindInsufficientBalance, "available underflow")
	}
	locked, ok := addChecked(v.Locked, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "locked overflow")
	}
	v.Available, v.Locked = available, locked
	return nil
}

// Unlock implements spec.md §4.1's unlock helper.
func (v *Vault) Unlock(amount uint64) error {
	if v.Locked < amount {
		return newErr(ErrKindInsufficientBalance, "locked balance too low to unlock")
	}
	locked, ok := subChecked(v.Locked, amount)
	if !ok {
		return newErr(ErrKindInsufficientBalance, "locked underflow")
	}
	available, ok := addChecked(v.Available, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "available overflow")
	}
	v.Locked, v.Available = locked, available
	return nil
}

// AddYield implements spec.md §4.1's add_yield helper — yield is always
// liquid, it never lands in Locked.
func (v *Vault) AddYield(amount uint64) error {
	total, ok := addChecked(v.Total, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "total overflow on yield")
	}
	available, ok := addChecked(v.Available, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "available overflow on yield")
	}
	earned, ok := addChecked(v.TotalYieldEarned, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "total_yield_earned overflow")
	}
	v.Total, v.Available, v.TotalYieldEarned = total, available, earned
	return nil
}

// IsAuthorized implements spec.md §4.1's is_authorized helper.
func (v *Vault) IsAuthorized(user PubKey) bool {
	return user == v.Owner || containsKey(v.DelegatedUsers, user)
}

// IsWithdrawalAllowed implements spec.md §4.1's is_withdrawal_allowed
// helper.
func (v *Vault) IsWithdrawalAllowed(recipient PubKey) bool {
	if !v.WhitelistEnabled {
		return true
	}
	return containsKey(v.WithdrawalWhitelist, recipient)
}

// CheckAndUpdateRateLimit implements spec.md §4.1's
// check_and_update_rate_limit helper: a sliding window that resets once the
// window has elapsed, then admits the withdrawal only if the cumulative
// total for the (possibly just-reset) window stays within the cap.
func (v *Vault) CheckAndUpdateRateLimit(amount uint64, now int64) error {
	if now >= v.RateLimitWindowStart+v.RateLimitWindow {
		v.RateLimitWindowStart = now
		v.RateLimitWithdrawn = 0
	}
	newTotal, ok := addChecked(v.RateLimitWithdrawn, amount)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "rate limit accumulator overflow")
	}
	if newTotal > v.RateLimitAmount {
		return newErr(ErrKindRateLimitExceeded, "withdrawal rate limit exceeded for this window")
	}
	v.RateLimitWithdrawn = newTotal
	return nil
}

// AddDelegate implements add_delegated_user (owner excluded per spec.md
// §3.1: "never contains owner").
func (v *Vault) AddDelegate(user PubKey) error {
	if user == v.Owner {
		return newErr(ErrKindInvalidAuthority, "owner cannot be its own delegate")
	}
	set, err := insertUnique(v.DelegatedUsers, user, MaxDelegatedUsers,
		ErrKindUserAlreadyDelegated, ErrKindMaxDelegatedUsersReached)
	if err != nil {
		return err
	}
	v.DelegatedUsers = set
	return nil
}

// RemoveDelegate implements remove_delegated_user.
func (v *Vault) RemoveDelegate(user PubKey) error {
	set, err := removeExisting(v.DelegatedUsers, user, ErrKindUserNotDelegated)
	if err != nil {
		return err
	}
	v.DelegatedUsers = set
	return nil
}

// AddToWhitelist implements add_to_whitelist.
func (v *Vault) AddToWhitelist(addr PubKey) error {
	set, err := insertUnique(v.WithdrawalWhitelist, addr, MaxWhitelistEntries,
		ErrKindAddressAlreadyWhitelisted, ErrKindMaxWhitelistReached)
	if err != nil {
		return err
	}
	v.WithdrawalWhitelist = set
	return nil
}

// RemoveFromWhitelist implements the whitelist-side removal.
func (v *Vault) RemoveFromWhitelist(addr PubKey) error {
	set, err := removeExisting(v.WithdrawalWhitelist, addr, ErrKindAddressNotWhitelisted)
	if err != nil {
		return err
	}
	v.WithdrawalWhitelist = set
	return nil
}

// AddSigner implements add_signer.
func (v *Vault) AddSigner(signer PubKey) error {
	set, err := insertUnique(v.AuthorizedSigners, signer, MaxAuthorizedSigners,
		ErrKindSignerAlreadyAuthorized, ErrKindMaxSignersReached)
	if err != nil {
		return err
	}
	v.AuthorizedSigners = set
	return nil
}

// ConfigureMultisig replaces the signer set atomically (spec.md §4.4).
func (v *Vault) ConfigureMultisig(threshold uint8, signers []PubKey) error {
	if threshold == 0 {
		return newErr(ErrKindInvalidMultiSigThreshold, "threshold must be > 0")
	}
	if int(threshold) > len(signers) {
		return newErr(ErrKindInvalidMultiSigThreshold, "threshold exceeds signer count")
	}
	if len(signers) > MaxAuthorizedSigners {
		return newErr(ErrKindMaxSignersReached, "too many signers")
	}
	seen := make(map[PubKey]struct{}, len(signers))
	for _, s := range signers {
		if _, dup := seen[s]; dup {
			return newErr(ErrKindSignerAlreadyAuthorized, "duplicate signer in configure_multisig")
		}
		seen[s] = struct{}{}
	}
	v.MultisigThreshold = threshold
	v.AuthorizedSigners = cloneKeys(signers)
	return nil
}

// RequestWithdrawal implements spec.md §4.5's request_withdrawal.
func (v *Vault) RequestWithdrawal(amount uint64, recipient PubKey, now int64) error {
	if v.WithdrawalTimelock == 0 {
		return newErr(ErrKindFeatureNotEnabled, "two-phase withdrawal not enabled")
	}
	if v.PendingWithdrawal != nil {
		return newErr(ErrKindPendingWithdrawalExists, "a withdrawal request is already pending")
	}
	if v.Available < amount {
		return newErr(ErrKindInsufficientAvailableBalance, "available balance too low")
	}
	if v.WhitelistEnabled && !containsKey(v.WithdrawalWhitelist, recipient) {
		return newErr(ErrKindRecipientNotWhitelisted, "recipient not on withdrawal whitelist")
	}
	executableAt, ok := addChecked64(now, v.WithdrawalTimelock)
	if !ok {
		return newErr(ErrKindNumericalOverflow, "executable_at overflow")
	}
	v.PendingWithdrawal = &PendingWithdrawal{
		Amount:       amount,
		RequestedAt:  now,
		ExecutableAt: executableAt,
		Recipient:    recipient,
	}
	return nil
}

// CancelWithdrawal implements spec.md §4.5's cancel_withdrawal: fails once
// the timelock has elapsed, because at that point the recipient has a right
// to execute instead.
func (v *Vault) CancelWithdrawal(now int64) error {
	if v.PendingWithdrawal == nil {
		return newErr(ErrKindNoPendingWithdrawal, "no pending withdrawal to cancel")
	}
	if now >= v.PendingWithdrawal.ExecutableAt {
		return newErr(ErrKindCannotCancelExpiredWithdrawal, "timelock has elapsed, cannot cancel")
	}
	v.PendingWithdrawal = nil
	return nil
}

// ExecutePendingWithdrawal implements spec.md §4.5's execute_withdrawal.
// Emergency mode bypasses the timelock but never the whitelist — that
// distinction is load-bearing (Design Notes §9) and is already enforced at
// request time, not here.
func (v *Vault) ExecutePendingWithdrawal(recipient PubKey, now int64) (uint64, error) {
	pending := v.PendingWithdrawal
	if pending == nil {
		return 0, newErr(ErrKindNoPendingWithdrawal, "no pending withdrawal")
	}
	if !v.EmergencyMode && now < pending.ExecutableAt {
		return 0, newErr(ErrKindTimeLockNotExpired, "withdrawal timelock has not expired")
	}
	if pending.Recipient != recipient {
		return 0, newErr(ErrKindInvalidAuthority, "recipient does not match pending request")
	}
	amount := pending.Amount
	if err := v.SubWithdrawal(amount); err != nil {
		return 0, err
	}
	v.PendingWithdrawal = nil
	return amount, nil
}

func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

func subChecked(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

func addChecked64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
