package keeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clearvault/vault/pkg/core"
)

type fakeEngine struct {
	keys     []core.PubKey
	calls    int32
	lastCall core.PubKey
	err      error
}

func (f *fakeEngine) VaultKeys() []core.PubKey { return f.keys }

func (f *fakeEngine) AutoCompound(vaultKey, caller core.PubKey) (uint64, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastCall = caller
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestKeeperTicksEveryKnownVault(t *testing.T) {
	var vaultA, vaultB core.PubKey
	vaultA[0], vaultB[0] = 1, 2
	fe := &fakeEngine{keys: []core.PubKey{vaultA, vaultB}}

	identity := core.PubKey{}
	identity[0] = 0xFF
	k := New(fe, identity, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	k.Run(ctx)

	if atomic.LoadInt32(&fe.calls) < 2 {
		t.Fatalf("expected at least one tick over both vaults, got %d calls", fe.calls)
	}
	if fe.lastCall != identity {
		t.Fatalf("keeper did not identify itself with its configured identity")
	}
}

func TestKeeperSkipsErroringVaultsWithoutStopping(t *testing.T) {
	var vaultA, vaultB core.PubKey
	vaultA[0], vaultB[0] = 1, 2
	fe := &fakeEngine{keys: []core.PubKey{vaultA, vaultB}, err: errors.New("auto-compound interval not yet elapsed")}
	k := New(fe, core.PubKey{}, time.Millisecond, nil)
	k.tick()
	if got := atomic.LoadInt32(&fe.calls); got != 2 {
		t.Fatalf("expected both vaults attempted despite errors, got %d calls", got)
	}
}
