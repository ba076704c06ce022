package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/clearvault/vault/pkg/adapters/memevents"
	"github.com/clearvault/vault/pkg/adapters/memtoken"
	"github.com/clearvault/vault/pkg/core"
)

func newTestEngine() (*Engine, *memtoken.Ledger, *fakeClock) {
	clock := &fakeClock{}
	token := memtoken.New()
	events := memevents.New(0)
	signer := NewDefaultSigner([]byte("test-seed"))
	return New(token, events, clock, signer), token, clock
}

func pubkeyFrom(b byte) core.PubKey {
	var k core.PubKey
	k[0] = b
	return k
}

func TestEngineHappyPathDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	e, token, _ := newTestEngine()
	owner := pubkeyFrom(1)
	user := pubkeyFrom(2)
	token.Credit(user, 1_000_000_000)

	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.Withdraw(ctx, vaultKey, owner, user, 500_000_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	snap, err := e.VaultSnapshot(vaultKey)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Total != 500_000_000 || snap.Available != 500_000_000 {
		t.Fatalf("got total=%d available=%d", snap.Total, snap.Available)
	}
}

func TestEngineInitializeAuthoritySeedsPrograms(t *testing.T) {
	e, _, _ := newTestEngine()
	admin := pubkeyFrom(1)
	program := pubkeyFrom(50)
	if err := e.InitializeAuthority(admin, 255, []core.PubKey{program}); err != nil {
		t.Fatalf("init authority: %v", err)
	}
	if !e.IsAuthorizedProgram(program) {
		t.Fatalf("program from initial list should be authorized")
	}
}

func TestEngineUnauthorizedLock(t *testing.T) {
	e, _, _ := newTestEngine()
	owner := pubkeyFrom(1)
	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	stranger := pubkeyFrom(99)
	if err := e.LockCollateral(vaultKey, stranger, 1); !errors.Is(err, core.ErrUnauthorizedProgram) {
		t.Fatalf("expected UnauthorizedProgram, got %v", err)
	}
}

func TestEngineAuthorizedLockUnlock(t *testing.T) {
	ctx := context.Background()
	e, token, _ := newTestEngine()
	admin := pubkeyFrom(1)
	program := pubkeyFrom(50)
	if err := e.InitializeAuthority(admin, 255, nil); err != nil {
		t.Fatalf("init authority: %v", err)
	}
	if err := e.AddAuthorizedProgram(admin, program); err != nil {
		t.Fatalf("add program: %v", err)
	}

	owner := pubkeyFrom(2)
	user := pubkeyFrom(3)
	token.Credit(user, 1_000_000)
	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 1_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.LockCollateral(vaultKey, program, 600_000); err != nil {
		t.Fatalf("lock: %v", err)
	}
	snap, _ := e.VaultSnapshot(vaultKey)
	if snap.Locked != 600_000 || snap.Available != 400_000 {
		t.Fatalf("got locked=%d available=%d", snap.Locked, snap.Available)
	}
	if err := e.UnlockCollateral(vaultKey, program, 600_000); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	snap, _ = e.VaultSnapshot(vaultKey)
	if snap.Locked != 0 || snap.Available != 1_000_000 {
		t.Fatalf("got locked=%d available=%d", snap.Locked, snap.Available)
	}
}

func TestEngineTimelockExecute(t *testing.T) {
	ctx := context.Background()
	e, token, clock := newTestEngine()
	owner := pubkeyFrom(1)
	user := pubkeyFrom(2)
	recipient := pubkeyFrom(3)
	token.Credit(user, 1_000_000_000)

	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.ConfigureTimelock(vaultKey, owner, 3600); err != nil {
		t.Fatalf("configure timelock: %v", err)
	}
	if err := e.RequestWithdrawal(vaultKey, owner, recipient, 500_000_000); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(1800)
	if err := e.ExecuteWithdrawal(ctx, vaultKey, recipient); !errors.Is(err, core.ErrTimeLockNotExpired) {
		t.Fatalf("expected TimeLockNotExpired, got %v", err)
	}
	clock.Advance(1800)
	if err := e.ExecuteWithdrawal(ctx, vaultKey, recipient); err != nil {
		t.Fatalf("execute at expiry: %v", err)
	}
	snap, _ := e.VaultSnapshot(vaultKey)
	if snap.Total != 500_000_000 {
		t.Fatalf("got total=%d", snap.Total)
	}
}

func TestEngineRateLimitViaBatchWithdraw(t *testing.T) {
	ctx := context.Background()
	e, token, _ := newTestEngine()
	owner := pubkeyFrom(1)
	user := pubkeyFrom(2)
	token.Credit(user, 10_000_000)

	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 10_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.ConfigureRateLimit(vaultKey, owner, 1_000_000, 60); err != nil {
		t.Fatalf("configure rate limit: %v", err)
	}
	before, _ := e.VaultSnapshot(vaultKey)
	if err := e.BatchWithdraw(ctx, vaultKey, owner, []uint64{600_000, 500_000}); !errors.Is(err, core.ErrRateLimitExceeded) {
		t.Fatalf("expected RateLimitExceeded, got %v", err)
	}
	after, _ := e.VaultSnapshot(vaultKey)
	if after.Total != before.Total || after.Available != before.Available {
		t.Fatalf("vault mutated despite atomically-failed batch withdrawal")
	}
}

func TestEngineYieldAccrual(t *testing.T) {
	ctx := context.Background()
	e, token, clock := newTestEngine()
	owner := pubkeyFrom(1)
	user := pubkeyFrom(2)
	token.Credit(user, 1_000_000_000_000)

	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.ConfigureYield(vaultKey, owner, true); err != nil {
		t.Fatalf("configure yield: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 1_000_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	clock.Advance(31_536)
	amount, err := e.CompoundYield(vaultKey, owner)
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	const wantYield = 1_000_000_000_000
	if amount != wantYield {
		t.Fatalf("got yield=%d want=%d", amount, wantYield)
	}
}

func TestEngineAutoCompoundPermissionless(t *testing.T) {
	ctx := context.Background()
	e, token, clock := newTestEngine()
	owner := pubkeyFrom(1)
	user := pubkeyFrom(2)
	stranger := pubkeyFrom(77)
	token.Credit(user, 1_000_000_000_000)

	vaultKey, err := e.InitializeVault(owner, owner, 255)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.ConfigureYield(vaultKey, owner, true); err != nil {
		t.Fatalf("configure yield: %v", err)
	}
	if err := e.Deposit(ctx, vaultKey, user, 1_000_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	clock.Advance(core.MinAutoCompoundInterval)
	if _, err := e.AutoCompound(vaultKey, stranger); err != nil {
		t.Fatalf("any caller should be able to trigger auto-compound, got %v", err)
	}
}
