package engine

import (
	"context"

	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

const maxBatchSize = 10

// DeriveVaultKey exposes the owner→vault_key mapping to callers (the
// gateway's read endpoints) that only have an owner address, not the
// derived key itself.
func (e *Engine) DeriveVaultKey(owner core.PubKey) core.PubKey {
	return e.signer.DeriveVaultKey(owner)
}

// InitializeVault implements spec.md §4.3: derives the vault's key from
// owner, seeds it with every advanced-feature default, and registers it.
func (e *Engine) InitializeVault(owner, tokenAccount core.PubKey, bump uint8) (core.PubKey, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := e.signer.DeriveVaultKey(owner)
	if _, exists := e.vaults[key]; exists {
		return key, core.ErrInvalidAuthority
	}
	e.vaults[key] = core.NewVault(owner, tokenAccount, bump, e.clock.Now())
	return key, nil
}

// Deposit implements spec.md §4's deposit op: token-account authority
// transfers a into vault custody; add_deposit(a) then fires.
func (e *Engine) Deposit(ctx context.Context, vaultKey, from core.PubKey, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	next := v.Clone()
	if err := next.AddDeposit(amount); err != nil {
		return err
	}
	if err := e.token.TransferIn(ctx, vaultKey, from, amount); err != nil {
		return err
	}
	next.LastUpdate = e.clock.Now()
	e.vaults[vaultKey] = next
	e.emit(ports.EventDeposited, ports.DepositPayload{Vault: vaultKey, Amount: amount, NewBalance: next.Total})
	return nil
}

// Withdraw implements spec.md §4's withdraw op: owner or delegate pulls a
// out of vault custody, subject to rate limit and whitelist if enabled.
func (e *Engine) Withdraw(ctx context.Context, vaultKey, caller, recipient core.PubKey, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	if !v.IsAuthorized(caller) {
		return core.ErrInvalidAuthority
	}
	if !v.IsWithdrawalAllowed(recipient) {
		return core.ErrRecipientNotWhitelisted
	}
	next := v.Clone()
	if err := next.CheckAndUpdateRateLimit(amount, e.clock.Now()); err != nil {
		return err
	}
	if err := next.SubWithdrawal(amount); err != nil {
		return err
	}
	if err := e.token.TransferOut(ctx, vaultKey, recipient, amount); err != nil {
		return err
	}
	next.LastUpdate = e.clock.Now()
	e.vaults[vaultKey] = next
	e.emit(ports.EventWithdrawn, ports.WithdrawPayload{Vault: vaultKey, Recipient: recipient, Amount: amount, NewBalance: next.Total})
	return nil
}

// LockCollateral implements spec.md §4's lock_collateral op: only an
// authorized program may call this.
func (e *Engine) LockCollateral(vaultKey, caller core.PubKey, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil || !e.registry.IsAuthorized(caller) {
		return core.ErrUnauthorizedProgram
	}
	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	next := v.Clone()
	if err := next.Lock(amount); err != nil {
		return err
	}
	next.LastUpdate = e.clock.Now()
	e.vaults[vaultKey] = next
	e.emit(ports.EventLocked, ports.LockPayload{Vault: vaultKey, Caller: caller, Amount: amount, NewLocked: next.Locked, NewAvailable: next.Available})
	return nil
}

// UnlockCollateral implements spec.md §4's unlock_collateral op: only an
// authorized program may call this.
func (e *Engine) UnlockCollateral(vaultKey, caller core.PubKey, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil || !e.registry.IsAuthorized(caller) {
		return core.ErrUnauthorizedProgram
	}
	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	next := v.Clone()
	if err := next.Unlock(amount); err != nil {
		return err
	}
	next.LastUpdate = e.clock.Now()
	e.vaults[vaultKey] = next
	e.emit(ports.EventUnlocked, ports.LockPayload{Vault: vaultKey, Caller: caller, Amount: amount, NewLocked: next.Locked, NewAvailable: next.Available})
	return nil
}

// TransferCollateral implements spec.md §4's transfer_collateral op:
// vault-to-vault, authorized program only. Both vaults are cloned and
// committed together under the engine's single write lock so a concurrent
// reader never observes one leg of the transfer without the other.
func (e *Engine) TransferCollateral(ctx context.Context, caller, from, to core.PubKey, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil || !e.registry.IsAuthorized(caller) {
		return core.ErrUnauthorizedProgram
	}
	fromVault, err := e.vault(from)
	if err != nil {
		return err
	}
	toVault, err := e.vault(to)
	if err != nil {
		return err
	}
	nextFrom := fromVault.Clone()
	nextTo := toVault.Clone()
	if err := nextFrom.SubWithdrawal(amount); err != nil {
		return err
	}
	if err := nextTo.AddDeposit(amount); err != nil {
		return err
	}
	if err := e.token.TransferBetween(ctx, from, to, amount); err != nil {
		return err
	}
	now := e.clock.Now()
	nextFrom.LastUpdate, nextTo.LastUpdate = now, now
	e.vaults[from] = nextFrom
	e.vaults[to] = nextTo
	e.emit(ports.EventTransferred, ports.TransferPayload{From: from, To: to, Amount: amount, Caller: caller})
	return nil
}

// BatchDeposit implements spec.md §4's batch_deposit op: one transfer +
// add_deposit per item, one DepositEvent per item.
func (e *Engine) BatchDeposit(ctx context.Context, vaultKey, from core.PubKey, amounts []uint64) error {
	if len(amounts) == 0 || len(amounts) > maxBatchSize {
		return core.ErrInvalidBatchOperation
	}
	for _, a := range amounts {
		if a == 0 {
			return core.ErrInvalidAmount
		}
	}
	for _, a := range amounts {
		if err := e.Deposit(ctx, vaultKey, from, a); err != nil {
			return err
		}
	}
	return nil
}

// BatchWithdraw implements spec.md §4's batch_withdraw op: the sum is
// checked against available balance and the rate limit before any transfer
// is made, so the whole batch fails atomically.
//
// The whitelist check here is against the vault owner, not each transfer's
// recipient — the source program's batch_withdraw instruction carries no
// per-item recipient argument at all, so per-item whitelist enforcement is
// not representable; Open Question #3 is resolved as owner-only.
func (e *Engine) BatchWithdraw(ctx context.Context, vaultKey, caller core.PubKey, amounts []uint64) error {
	if len(amounts) == 0 || len(amounts) > maxBatchSize {
		return core.ErrInvalidBatchOperation
	}
	var sum uint64
	for _, a := range amounts {
		if a == 0 {
			return core.ErrInvalidAmount
		}
		next, ok := addOverflowSafe(sum, a)
		if !ok {
			return core.ErrNumericalOverflow
		}
		sum = next
	}

	e.mu.Lock()
	v, err := e.vault(vaultKey)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !v.IsAuthorized(caller) {
		e.mu.Unlock()
		return core.ErrInvalidAuthority
	}
	if !v.IsWithdrawalAllowed(v.Owner) {
		e.mu.Unlock()
		return core.ErrRecipientNotWhitelisted
	}
	probe := v.Clone()
	if err := probe.CheckAndUpdateRateLimit(sum, e.clock.Now()); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := probe.SubWithdrawal(sum); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	for _, a := range amounts {
		if err := e.Withdraw(ctx, vaultKey, caller, v.Owner, a); err != nil {
			return err
		}
	}
	return nil
}

func addOverflowSafe(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
