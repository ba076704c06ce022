package engine

import (
	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

// ConfigureYield implements spec.md §4.6: owner-only toggle.
func (e *Engine) ConfigureYield(vaultKey, caller core.PubKey, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return err
	}
	if err := e.requireOwner(v, caller); err != nil {
		return err
	}
	next := v.Clone()
	next.ConfigureYield(enabled, e.clock.Now())
	e.vaults[vaultKey] = next
	e.emit(ports.EventYieldConfigured, ports.YieldConfiguredPayload{Vault: vaultKey, Enabled: enabled})
	return nil
}

// CompoundYield implements spec.md §4.6: owner or delegate may realize
// accrued yield explicitly.
func (e *Engine) CompoundYield(vaultKey, caller core.PubKey) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return 0, err
	}
	if !v.IsAuthorized(caller) {
		return 0, core.ErrInvalidAuthority
	}
	next := v.Clone()
	amount, err := next.CompoundYield(e.clock.Now())
	if err != nil {
		return 0, err
	}
	e.vaults[vaultKey] = next
	if amount > 0 {
		e.emit(ports.EventYieldCompounded, ports.YieldCompoundedPayload{
			Vault: vaultKey, Amount: amount, TotalYieldEarned: next.TotalYieldEarned, Caller: caller,
		})
	}
	return amount, nil
}

// AutoCompound implements spec.md §4.10 / Design Notes §9's permissionless
// keeper entrypoint: any caller may invoke it for any vault, gated only by
// the engine's minimum interval check inside core.Vault.AutoCompound —
// never by a caller allowlist.
func (e *Engine) AutoCompound(vaultKey, caller core.PubKey) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return 0, err
	}
	next := v.Clone()
	amount, err := next.AutoCompound(e.clock.Now())
	if err != nil {
		return 0, err
	}
	e.vaults[vaultKey] = next
	if amount > 0 {
		e.emit(ports.EventYieldCompounded, ports.YieldCompoundedPayload{
			Vault: vaultKey, Amount: amount, TotalYieldEarned: next.TotalYieldEarned, Caller: caller,
		})
	}
	return amount, nil
}

// VaultSnapshot returns a defensive copy of a vault's current state for
// read-only callers (the gateway's read endpoints, the keeper's scan loop).
func (e *Engine) VaultSnapshot(vaultKey core.PubKey) (*core.Vault, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, err := e.vault(vaultKey)
	if err != nil {
		return nil, err
	}
	return v.Clone(), nil
}

// VaultKeys returns every vault key currently tracked by the engine, for
// the keeper's and gateway's enumeration needs.
func (e *Engine) VaultKeys() []core.PubKey {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]core.PubKey, 0, len(e.vaults))
	for k := range e.vaults {
		keys = append(keys, k)
	}
	return keys
}
