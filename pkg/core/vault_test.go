package core

import (
	"errors"
	"reflect"
	"testing"
)

func testOwner() PubKey {
	var k PubKey
	k[0] = 0xAA
	return k
}

func testRecipient() PubKey {
	var k PubKey
	k[0] = 0xBB
	return k
}

// scenario 1: happy path deposit/withdraw.
func TestHappyPathDepositWithdraw(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	if err := v.AddDeposit(1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := v.SubWithdrawal(500_000_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if v.Total != 500_000_000 || v.Available != 500_000_000 {
		t.Fatalf("got total=%d available=%d", v.Total, v.Available)
	}
	if v.TotalDeposited != 1_000_000_000 || v.TotalWithdrawn != 500_000_000 {
		t.Fatalf("got total_deposited=%d total_withdrawn=%d", v.TotalDeposited, v.TotalWithdrawn)
	}
}

// scenario 2: withdraw exceeds available after a lock; state unchanged.
func TestWithdrawExceedsAvailableAfterLock(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	if err := v.AddDeposit(1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := v.Lock(600_000_000); err != nil {
		t.Fatalf("lock: %v", err)
	}
	before := *v
	if err := v.SubWithdrawal(400_000_001); !errors.Is(err, ErrInsufficientAvailableBalance) {
		t.Fatalf("expected InsufficientAvailableBalance, got %v", err)
	}
	if !reflect.DeepEqual(*v, before) {
		t.Fatalf("vault mutated on failed withdrawal")
	}
}

func TestLockUnlockIsIdentity(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	if err := v.AddDeposit(1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	before := *v
	if err := v.Lock(250_000_000); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := v.Unlock(250_000_000); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !reflect.DeepEqual(*v, before) {
		t.Fatalf("lock then unlock is not the identity: got %+v want %+v", v, before)
	}
}

func TestTotalEqualsLockedPlusAvailable(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	ops := []func() error{
		func() error { return v.AddDeposit(1_000_000) },
		func() error { return v.Lock(400_000) },
		func() error { return v.Unlock(100_000) },
		func() error { return v.SubWithdrawal(50_000) },
		func() error { return v.AddYield(10_000) },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		if v.Total != v.Locked+v.Available {
			t.Fatalf("invariant broken after op %d: total=%d locked=%d available=%d",
				i, v.Total, v.Locked, v.Available)
		}
	}
}

// scenario 3 is an authorization check at the engine layer (caller vs.
// Authority Registry); core.Vault has no notion of a calling program, so
// lock/unlock here only exercise the balance mechanics that engine's
// unauthorized-caller path never reaches.
func TestLockInsufficientAvailable(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	if err := v.Lock(1); !errors.Is(err, ErrInsufficientAvailableBalance) {
		t.Fatalf("expected InsufficientAvailableBalance, got %v", err)
	}
}

// scenario 4: timelock execute before and at expiry.
func TestTimelockExecuteBeforeAndAtExpiry(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.WithdrawalTimelock = 3600
	if err := v.AddDeposit(1_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	recipient := testRecipient()
	const requestTime = 1_000_000
	if err := v.RequestWithdrawal(500_000_000, recipient, requestTime); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := v.ExecutePendingWithdrawal(recipient, requestTime+1800); !errors.Is(err, ErrTimeLockNotExpired) {
		t.Fatalf("expected TimeLockNotExpired, got %v", err)
	}
	amount, err := v.ExecutePendingWithdrawal(recipient, requestTime+3600)
	if err != nil {
		t.Fatalf("execute at expiry: %v", err)
	}
	if amount != 500_000_000 {
		t.Fatalf("got amount=%d", amount)
	}
	if v.Total != 500_000_000 {
		t.Fatalf("got total=%d", v.Total)
	}
	if v.PendingWithdrawal != nil {
		t.Fatalf("pending withdrawal not cleared")
	}
}

func TestCancelWithdrawalFailsAfterExpiry(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.WithdrawalTimelock = 100
	_ = v.AddDeposit(1000)
	recipient := testRecipient()
	if err := v.RequestWithdrawal(500, recipient, 0); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := v.CancelWithdrawal(50); err != nil {
		t.Fatalf("cancel before expiry: %v", err)
	}
	if v.PendingWithdrawal != nil {
		t.Fatalf("pending withdrawal not cleared by cancel")
	}
	if err := v.RequestWithdrawal(500, recipient, 0); err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if err := v.CancelWithdrawal(100); !errors.Is(err, ErrCannotCancelExpiredWithdrawal) {
		t.Fatalf("expected CannotCancelExpiredWithdrawal, got %v", err)
	}
}

func TestEmergencyModeBypassesTimelockNotWhitelist(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.WithdrawalTimelock = 3600
	v.WhitelistEnabled = true
	_ = v.AddDeposit(1000)
	recipient := testRecipient()

	if err := v.RequestWithdrawal(500, recipient, 0); !errors.Is(err, ErrRecipientNotWhitelisted) {
		t.Fatalf("expected RecipientNotWhitelisted, got %v", err)
	}
	if err := v.AddToWhitelist(recipient); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if err := v.RequestWithdrawal(500, recipient, 0); err != nil {
		t.Fatalf("request after whitelisting: %v", err)
	}
	v.EmergencyMode = true
	if _, err := v.ExecutePendingWithdrawal(recipient, 10); err != nil {
		t.Fatalf("emergency execute should bypass timelock: %v", err)
	}
}

// scenario 5: rate limit.
func TestRateLimitWindow(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.RateLimitAmount = 1_000_000
	v.RateLimitWindow = 60
	v.RateLimitWindowStart = 0
	_ = v.AddDeposit(10_000_000)

	if err := v.CheckAndUpdateRateLimit(600_000, 0); err != nil {
		t.Fatalf("first withdrawal under limit: %v", err)
	}
	if err := v.CheckAndUpdateRateLimit(500_000, 10); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected RateLimitExceeded (600_000+500_000 > 1_000_000), got %v", err)
	}
	if v.RateLimitWithdrawn != 600_000 {
		t.Fatalf("rate limit accumulator mutated on rejected withdrawal: got %d", v.RateLimitWithdrawn)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.RateLimitAmount = 1_000_000
	v.RateLimitWindow = 60
	v.RateLimitWindowStart = 0
	if err := v.CheckAndUpdateRateLimit(900_000, 0); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := v.CheckAndUpdateRateLimit(900_000, 61); err != nil {
		t.Fatalf("after window reset, should succeed: %v", err)
	}
	if v.RateLimitWindowStart != 61 {
		t.Fatalf("window start not reset: got %d", v.RateLimitWindowStart)
	}
}

func TestInsertRemoveIsIdentityOnSets(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	before := *v
	delegate := testRecipient()
	if err := v.AddDelegate(delegate); err != nil {
		t.Fatalf("add delegate: %v", err)
	}
	if err := v.RemoveDelegate(delegate); err != nil {
		t.Fatalf("remove delegate: %v", err)
	}
	if len(v.DelegatedUsers) != len(before.DelegatedUsers) {
		t.Fatalf("delegate set not restored to identity")
	}

	addr := testRecipient()
	if err := v.AddToWhitelist(addr); err != nil {
		t.Fatalf("add whitelist: %v", err)
	}
	if err := v.RemoveFromWhitelist(addr); err != nil {
		t.Fatalf("remove whitelist: %v", err)
	}
	if len(v.WithdrawalWhitelist) != len(before.WithdrawalWhitelist) {
		t.Fatalf("whitelist set not restored to identity")
	}
}

func TestIsAuthorizedOwnerAndDelegate(t *testing.T) {
	owner := testOwner()
	v := NewVault(owner, owner, 255, 0)
	if !v.IsAuthorized(owner) {
		t.Fatalf("owner should be authorized")
	}
	stranger := testRecipient()
	if v.IsAuthorized(stranger) {
		t.Fatalf("stranger should not be authorized")
	}
	if err := v.AddDelegate(stranger); err != nil {
		t.Fatalf("add delegate: %v", err)
	}
	if !v.IsAuthorized(stranger) {
		t.Fatalf("delegate should be authorized")
	}
}

func TestOverflowLeavesVaultUnchanged(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.Total = ^uint64(0)
	v.Available = ^uint64(0)
	v.TotalDeposited = ^uint64(0)
	before := *v
	if err := v.AddDeposit(1); !errors.Is(err, ErrNumericalOverflow) {
		t.Fatalf("expected NumericalOverflow, got %v", err)
	}
	if !reflect.DeepEqual(*v, before) {
		t.Fatalf("vault mutated despite overflow")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	_ = v.AddDelegate(testRecipient())
	cp := v.Clone()
	var other PubKey
	other[0] = 0xCC
	if err := cp.AddDelegate(other); err != nil {
		t.Fatalf("add delegate to clone: %v", err)
	}
	if len(v.DelegatedUsers) == len(cp.DelegatedUsers) {
		t.Fatalf("clone shares backing array with original")
	}
}
