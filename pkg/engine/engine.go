// Package engine implements the vault operations (spec.md §4): access
// control, invariant checks, token movement via a host collaborator, and
// event emission, all guarded by a single mutex over the in-memory vault
// set.
package engine

import (
	"sync"

	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

// Engine holds the live vault set and the Authority Registry singleton,
// and talks to its collaborators only through the ports interfaces.
type Engine struct {
	mu       sync.RWMutex
	vaults   map[core.PubKey]*core.Vault
	registry *core.AuthorityRegistry

	token  ports.TokenTransferer
	events ports.EventSink
	clock  ports.Clock
	signer ports.HostSigner
}

// New constructs an Engine with no vaults and no registry admin set;
// InitializeAuthority must be called once before any restricted operation.
func New(token ports.TokenTransferer, events ports.EventSink, clock ports.Clock, signer ports.HostSigner) *Engine {
	return &Engine{
		vaults: make(map[core.PubKey]*core.Vault),
		token:  token,
		events: events,
		clock:  clock,
		signer: signer,
	}
}

func (e *Engine) emit(t ports.EventType, payload interface{}) {
	e.events.Publish(ports.Event{Type: t, Timestamp: e.clock.Now(), Payload: payload})
}

// vault looks up a vault by key. It takes no lock itself: callers already
// hold e.mu (the read lock for snapshots, the write lock for the whole of
// any mutation), and mutators store a modified clone in the map rather
// than changing the returned pointer.
func (e *Engine) vault(key core.PubKey) (*core.Vault, error) {
	v, ok := e.vaults[key]
	if !ok {
		return nil, core.ErrVaultNotInitialized
	}
	return v, nil
}
