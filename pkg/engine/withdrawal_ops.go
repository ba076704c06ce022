package engine

import (
	"context"

	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

// RequestWithdrawal implements spec.md §4.5: owner or delegate opens a
// two-phase withdrawal request against the vault's timelock.
func (e *Engine) RequestWithdrawal(vaultKey, caller, recipient core.PubKey, amount uint64) error {
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
	next := v.Clone()
	now := e.clock.Now()
	if err := next.RequestWithdrawal(amount, recipient, now); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventWithdrawalRequested, ports.WithdrawalRequestedPayload{
		Vault: vaultKey, Recipient: recipient, Amount: amount, ExecutableAt: next.PendingWithdrawal.ExecutableAt,
	})
	return nil
}

// CancelWithdrawal implements spec.md §4.5: fails if no pending request;
// fails once the timelock has elapsed, since the recipient then has a
// right to execute instead of racing a cancellation.
func (e *Engine) CancelWithdrawal(vaultKey, caller core.PubKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	if !v.IsAuthorized(caller) {
		return core.ErrInvalidAuthority
	}
	next := v.Clone()
	var pending core.PendingWithdrawal
	if next.PendingWithdrawal != nil {
		pending = *next.PendingWithdrawal
	}
	if err := next.CancelWithdrawal(e.clock.Now()); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventWithdrawalCancelled, ports.WithdrawalLifecyclePayload{
		Vault: vaultKey, Recipient: pending.Recipient, Amount: pending.Amount,
	})
	return nil
}

// ExecuteWithdrawal implements spec.md §4.5: anyone may call execute once
// the timelock has expired (or emergency mode is on); the funds only ever
// move to the recipient fixed at request time.
func (e *Engine) ExecuteWithdrawal(ctx context.Context, vaultKey, recipient core.PubKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	next := v.Clone()
	amount, err := next.ExecutePendingWithdrawal(recipient, e.clock.Now())
	if err != nil {
		return err
	}
	if err := e.token.TransferOut(ctx, vaultKey, recipient, amount); err != nil {
		return err
	}
	next.LastUpdate = e.clock.Now()
	e.vaults[vaultKey] = next
	e.emit(ports.EventWithdrawalExecuted, ports.WithdrawalLifecyclePayload{Vault: vaultKey, Recipient: recipient, Amount: amount})
	return nil
}
