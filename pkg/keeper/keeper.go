// Package keeper implements the permissionless auto-compound automation
// (spec.md §4.10 / Design Notes §9's "Keeper pattern"). Grounded on the
// teacher's pkg/node.Node.Start goroutine: react on a ticker, no caller
// allowlist — the only guard is the engine's own minimum-interval check.
// It does not subscribe to the event bus; each tick asks the engine for
// its current vault keys.
package keeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clearvault/vault/pkg/core"
)

// Engine is the subset of engine.Engine the keeper depends on, kept as an
// interface so tests can swap in a fake without pulling in the full vault
// engine package.
type Engine interface {
	VaultKeys() []core.PubKey
	AutoCompound(vaultKey, caller core.PubKey) (uint64, error)
}

// Keeper ticks AutoCompound for every known vault. It never checks who is
// allowed to call it — permissionless automation is the point — it only
// throttles how often it tries, via the engine's own interval guard.
type Keeper struct {
	engine   Engine
	identity core.PubKey
	interval time.Duration
	log      *zap.Logger
}

// New builds a Keeper that identifies itself as identity in emitted events
// (any caller identity works; the engine does not gate on it) and polls
// every interval.
func New(engine Engine, identity core.PubKey, interval time.Duration, log *zap.Logger) *Keeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Keeper{engine: engine, identity: identity, interval: interval, log: log}
}

// Run polls until ctx is cancelled, attempting AutoCompound on every known
// vault each tick. A vault whose minimum interval has not elapsed yet, or
// whose yield is not enabled, just returns an error that Run logs and
// skips — it is not a reason to stop the loop.
func (k *Keeper) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.tick()
		}
	}
}

func (k *Keeper) tick() {
	for _, vaultKey := range k.engine.VaultKeys() {
		amount, err := k.engine.AutoCompound(vaultKey, k.identity)
		if err != nil {
			k.log.Debug("auto-compound skipped", zap.String("vault", vaultKey.String()), zap.Error(err))
			continue
		}
		if amount > 0 {
			k.log.Info("auto-compounded vault", zap.String("vault", vaultKey.String()), zap.Uint64("amount", amount))
		}
	}
}
