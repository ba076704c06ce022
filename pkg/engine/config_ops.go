package engine

import (
	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

func (e *Engine) requireOwner(v *core.Vault, caller core.PubKey) error {
	if v.Owner != caller {
		return core.ErrInvalidAuthority
	}
	return nil
}

// ConfigureMultisig implements spec.md §4.4: owner-only, replaces the
// signer set atomically.
func (e *Engine) ConfigureMultisig(vaultKey, caller core.PubKey, threshold uint8, signers []core.PubKey) error {
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
	if err := next.ConfigureMultisig(threshold, signers); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventMultisigConfigured, ports.MultisigConfiguredPayload{Vault: vaultKey, Threshold: threshold, Signers: signers})
	return nil
}

// AddDelegate implements spec.md §4.4: owner-only.
func (e *Engine) AddDelegate(vaultKey, caller, delegate core.PubKey) error {
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
	if err := next.AddDelegate(delegate); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventDelegateAdded, ports.DelegationPayload{Vault: vaultKey, Delegate: delegate})
	return nil
}

// RemoveDelegate implements spec.md §4.4: owner-only.
func (e *Engine) RemoveDelegate(vaultKey, caller, delegate core.PubKey) error {
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
	if err := next.RemoveDelegate(delegate); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventDelegateRemoved, ports.DelegationPayload{Vault: vaultKey, Delegate: delegate})
	return nil
}

// AddToWhitelist implements spec.md §4.4: owner-only.
func (e *Engine) AddToWhitelist(vaultKey, caller, addr core.PubKey) error {
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
	if err := next.AddToWhitelist(addr); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventWhitelistEntryAdded, ports.WhitelistEntryPayload{Vault: vaultKey, Address: addr})
	return nil
}

// RemoveFromWhitelist implements spec.md §4.4: owner-only.
func (e *Engine) RemoveFromWhitelist(vaultKey, caller, addr core.PubKey) error {
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
	if err := next.RemoveFromWhitelist(addr); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventWhitelistEntryRemoved, ports.WhitelistEntryPayload{Vault: vaultKey, Address: addr})
	return nil
}

// ToggleWhitelist implements spec.md §4.4: owner-only.
func (e *Engine) ToggleWhitelist(vaultKey, caller core.PubKey, enabled bool) error {
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
	next.WhitelistEnabled = enabled
	e.vaults[vaultKey] = next
	e.emit(ports.EventWhitelistConfigured, ports.WhitelistConfiguredPayload{Vault: vaultKey, Enabled: enabled})
	return nil
}

// ConfigureRateLimit implements spec.md §4.4: owner-only; rejects a window
// that is not positive with InvalidRateLimitConfig, whatever the amount cap.
func (e *Engine) ConfigureRateLimit(vaultKey, caller core.PubKey, amount uint64, window int64) error {
	if window <= 0 {
		return core.ErrInvalidRateLimitConfig
	}
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
	next.RateLimitAmount = amount
	next.RateLimitWindow = window
	next.RateLimitWindowStart = e.clock.Now()
	next.RateLimitWithdrawn = 0
	e.vaults[vaultKey] = next
	e.emit(ports.EventRateLimitConfigured, ports.RateLimitConfiguredPayload{Vault: vaultKey, Amount: amount, Window: window})
	return nil
}

// ConfigureTimelock implements spec.md §4.5: owner-only; a zero value
// disables the two-phase withdrawal requirement.
func (e *Engine) ConfigureTimelock(vaultKey, caller core.PubKey, seconds int64) error {
	if seconds < 0 {
		return core.ErrInvalidRateLimitConfig
	}
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
	next.WithdrawalTimelock = seconds
	e.vaults[vaultKey] = next
	return nil
}

// ToggleEmergencyMode implements spec.md §4.5 / Design Notes §9: owner-only.
// Bypasses the timelock on execute, never the whitelist — the asymmetry is
// enforced in core.Vault.ExecutePendingWithdrawal and core.Vault.RequestWithdrawal,
// not here.
func (e *Engine) ToggleEmergencyMode(vaultKey, caller core.PubKey, enabled bool) error {
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
	next.EmergencyMode = enabled
	e.vaults[vaultKey] = next
	e.emit(ports.EventEmergencyModeToggled, ports.EmergencyModePayload{Vault: vaultKey, Enabled: enabled})
	return nil
}

// AddSigner implements spec.md §4.4: owner-only.
func (e *Engine) AddSigner(vaultKey, caller, signer core.PubKey) error {
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
	if err := next.AddSigner(signer); err != nil {
		return err
	}
	e.vaults[vaultKey] = next
	e.emit(ports.EventSignerAdded, ports.SignerPayload{Vault: vaultKey, Signer: signer})
	return nil
}
