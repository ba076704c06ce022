package core

import "testing"

// scenario 6: yield accrual, literal inputs from spec.md §8.2.
func TestYieldAccrualLiteral(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.ConfigureYield(true, 0)
	if err := v.AddDeposit(1_000_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	const elapsed = 31_536
	amount, err := v.CompoundYield(elapsed)
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	// floor(1_000_000_000_000 * 10_000_000 * 31_536 / 10_000 / 31_536_000),
	// worked out in full: the elapsed/year ratio (1/1000) exactly cancels
	// the 10_000_000/10_000 rate factor (1000), leaving the deposited
	// amount itself.
	const want = 1_000_000_000_000
	if amount != want {
		t.Fatalf("got yield=%d want=%d", amount, want)
	}
	if v.TotalYieldEarned != want {
		t.Fatalf("got total_yield_earned=%d want=%d", v.TotalYieldEarned, want)
	}
	if v.Total != 1_000_000_000_000+want || v.Available != 1_000_000_000_000+want {
		t.Fatalf("total/available not increased by yield: total=%d available=%d", v.Total, v.Available)
	}
}

func TestComputeYieldZeroElapsed(t *testing.T) {
	amount, err := ComputeYield(1_000_000, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if amount != 0 {
		t.Fatalf("expected zero yield for zero elapsed time, got %d", amount)
	}
}

func TestComputeYieldLargeBalanceDoesNotOverflow(t *testing.T) {
	// At max balance the balance*rate product alone exceeds 64 bits; over
	// 1/1000 of a year the final yield is exactly the balance, which fits.
	amount, err := ComputeYield(^uint64(0), SecondsPerYear/1000)
	if err != nil {
		t.Fatalf("widened arithmetic should not overflow at max balance: %v", err)
	}
	if amount != ^uint64(0) {
		t.Fatalf("got yield=%d want=%d", amount, ^uint64(0))
	}
}

func TestAutoCompoundThrottled(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	v.ConfigureYield(true, 0)
	_ = v.AddDeposit(1_000_000_000_000)

	if _, err := v.AutoCompound(5); err == nil {
		t.Fatalf("expected throttle error before MinAutoCompoundInterval elapses")
	}
	if _, err := v.AutoCompound(MinAutoCompoundInterval); err != nil {
		t.Fatalf("auto-compound at interval boundary: %v", err)
	}
}

func TestCompoundYieldRequiresFeatureEnabled(t *testing.T) {
	v := NewVault(testOwner(), testOwner(), 255, 0)
	_ = v.AddDeposit(1000)
	if _, err := v.CompoundYield(100); err == nil {
		t.Fatalf("expected FeatureNotEnabled when yield is off")
	}
}
