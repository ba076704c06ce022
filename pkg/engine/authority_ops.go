package engine

import (
	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

// InitializeAuthority implements spec.md §4.2 / §6.1's
// initialize_authority([pubkey;≤10]): creates the singleton registry with
// admin as its sole administrator, seeded with an initial authorized-program
// list (capped and duplicate-free, same as a sequence of AddProgram calls).
// Calling it twice is rejected so an existing admin can never be silently
// replaced.
func (e *Engine) InitializeAuthority(admin core.PubKey, bump uint8, programs []core.PubKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry != nil {
		return core.ErrInvalidAuthority
	}
	registry, err := core.NewAuthorityRegistry(admin, bump, programs)
	if err != nil {
		return err
	}
	e.registry = registry
	return nil
}

// AddAuthorizedProgram implements spec.md §4.2: admin-only.
func (e *Engine) AddAuthorizedProgram(caller, program core.PubKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return core.ErrVaultNotInitialized
	}
	if e.registry.Admin != caller {
		return core.ErrInvalidAuthority
	}
	next := e.registry.Clone()
	if err := next.AddProgram(program); err != nil {
		return err
	}
	e.registry = next
	e.emit(ports.EventProgramAuthorized, ports.AuthorityProgramPayload{Program: program, Admin: caller})
	return nil
}

// RemoveAuthorizedProgram implements spec.md §4.2: admin-only.
func (e *Engine) RemoveAuthorizedProgram(caller, program core.PubKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return core.ErrVaultNotInitialized
	}
	if e.registry.Admin != caller {
		return core.ErrInvalidAuthority
	}
	next := e.registry.Clone()
	if err := next.RemoveProgram(program); err != nil {
		return err
	}
	e.registry = next
	e.emit(ports.EventProgramDeauthorized, ports.AuthorityProgramPayload{Program: program, Admin: caller})
	return nil
}

// IsAuthorizedProgram reports whether program is currently listed in the
// Authority Registry.
func (e *Engine) IsAuthorizedProgram(program core.PubKey) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.registry != nil && e.registry.IsAuthorized(program)
}

// AuthorizedPrograms returns a snapshot of every program currently listed
// in the Authority Registry, for the gateway's read-only registry view.
func (e *Engine) AuthorizedPrograms() []core.PubKey {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.registry == nil {
		return nil
	}
	out := make([]core.PubKey, len(e.registry.AuthorizedPrograms))
	copy(out, e.registry.AuthorizedPrograms)
	return out
}

// RegistryAdmin returns the Authority Registry's admin key, if the
// registry has been initialized.
func (e *Engine) RegistryAdmin() (core.PubKey, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.registry == nil {
		return core.ZeroPubKey, false
	}
	return e.registry.Admin, true
}
