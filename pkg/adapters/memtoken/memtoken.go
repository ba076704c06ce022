// Package memtoken is an in-memory TokenTransferer: a stand-in for the
// on-chain SPL-style token program the source relies on for custody
// transfers. It has no notion of challenge periods or fraud proofs — this
// domain's withdrawal safety comes entirely from the timelock, not from a
// dispute window.
package memtoken

import (
	"context"
	"fmt"
	"sync"

	"github.com/clearvault/vault/pkg/core"
)

// Ledger tracks plain uint64 balances per account, guarded by a mutex —
// the same shape as the teacher's VaultContract.balances map, retargeted
// from wallet balances to custody accounts.
type Ledger struct {
	mu       sync.Mutex
	balances map[core.PubKey]uint64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[core.PubKey]uint64)}
}

// Credit seeds an account's balance directly, used by tests and by any
// bootstrap flow that mints a user's initial token holdings.
func (l *Ledger) Credit(account core.PubKey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// TransferIn moves amount from a user's token account into vault custody.
func (l *Ledger) TransferIn(ctx context.Context, vault core.PubKey, from core.PubKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("memtoken: account %s has insufficient balance to deposit %d", from, amount)
	}
	l.balances[from] -= amount
	l.balances[vault] += amount
	return nil
}

// TransferOut moves amount from vault custody to a recipient.
func (l *Ledger) TransferOut(ctx context.Context, vault core.PubKey, to core.PubKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[vault] < amount {
		return fmt.Errorf("memtoken: vault %s custody balance too low to pay out %d", vault, amount)
	}
	l.balances[vault] -= amount
	l.balances[to] += amount
	return nil
}

// TransferBetween moves amount directly between two vault custody
// accounts, used by transfer_collateral.
func (l *Ledger) TransferBetween(ctx context.Context, from, to core.PubKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("memtoken: vault %s custody balance too low to transfer %d", from, amount)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// BalanceOf returns account's current custody balance.
func (l *Ledger) BalanceOf(ctx context.Context, account core.PubKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}
