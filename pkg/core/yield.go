package core

import "github.com/holiman/uint256"

// Yield accrual constants, grounded on
// original_source/program/programs/collateral_vault/src/instructions/yield_compound.rs.
const (
	// DefaultAnnualRateBP is the annual rate: over one year ComputeYield
	// returns balance * DefaultAnnualRateBP / rateDenominator (1e7/1e4 ==
	// 1000x the balance, i.e. 100,000% APR), matching the reference
	// implementation's literal constant.
	DefaultAnnualRateBP = 10_000_000
	rateDenominator     = 10_000
	// SecondsPerYear is the reference implementation's fixed divisor — a
	// 365-day year, not adjusted for leap years.
	SecondsPerYear = 31_536_000
	// MinAutoCompoundInterval throttles the permissionless keeper without
	// gating who may call it (spec.md §4.10's "no allowlist" invariant).
	MinAutoCompoundInterval = 10
)

// ComputeYield returns the yield accrued on balance over elapsedSeconds at
// DefaultAnnualRateBP, widening to 256 bits so the intermediate
// balance*rate*elapsed product cannot overflow even for a balance near
// math.MaxUint64 held for a full year. A final yield that does not fit in
// a uint64 is still reported as NumericalOverflow.
func ComputeYield(balance uint64, elapsedSeconds int64) (uint64, error) {
	if elapsedSeconds <= 0 {
		return 0, nil
	}
	bal := uint256.NewInt(balance)
	rate := uint256.NewInt(DefaultAnnualRateBP)
	elapsed := uint256.NewInt(uint64(elapsedSeconds))
	denom := uint256.NewInt(rateDenominator)
	secs := uint256.NewInt(SecondsPerYear)

	product, overflow := new(uint256.Int).MulOverflow(bal, rate)
	if overflow {
		return 0, newErr(ErrKindNumericalOverflow, "balance*rate overflow")
	}
	product, overflow = product.MulOverflow(product, elapsed)
	if overflow {
		return 0, newErr(ErrKindNumericalOverflow, "balance*rate*elapsed overflow")
	}
	product = product.Div(product, denom)
	product = product.Div(product, secs)

	if !product.IsUint64() {
		return 0, newErr(ErrKindNumericalOverflow, "yield result exceeds uint64")
	}
	return product.Uint64(), nil
}

// CompoundYield implements spec.md §4.6's compound_yield: accrues and
// applies yield only if Δt > 0, total > 0, and the computed yield rounds to
// something nonzero. Grounded on
// original_source/.../instructions/yield_compound.rs:24-27, LastYieldCompound
// (and LastUpdate) only advance inside that same guard — a vault that hasn't
// earned a whole unit yet keeps its accrual clock untouched, so a busy
// permissionless keeper re-ticking every MinAutoCompoundInterval can't reset
// the clock out from under yield that just hasn't rounded up yet.
func (v *Vault) CompoundYield(now int64) (uint64, error) {
	if !v.YieldEnabled {
		return 0, newErr(ErrKindFeatureNotEnabled, "yield accrual not enabled")
	}
	elapsed := now - v.LastYieldCompound
	if elapsed <= 0 || v.Total == 0 {
		return 0, nil
	}
	amount, err := ComputeYield(v.Total, elapsed)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, nil
	}
	if err := v.AddYield(amount); err != nil {
		return 0, err
	}
	v.LastYieldCompound = now
	v.LastUpdate = now
	return amount, nil
}

// AutoCompound implements spec.md §4.10's keeper entrypoint: the same
// accrual as CompoundYield, but additionally throttled to
// MinAutoCompoundInterval so a busy keeper cannot spin the vault's clock
// forward on every tick. This is the only gate — there is no caller
// allowlist, by design.
func (v *Vault) AutoCompound(now int64) (uint64, error) {
	if now-v.LastYieldCompound < MinAutoCompoundInterval {
		return 0, newErr(ErrKindOperationNotAllowed, "auto-compound interval not yet elapsed")
	}
	return v.CompoundYield(now)
}

// ConfigureYield implements spec.md §4.6's configure_yield: enabling
// resets the compounding clock so accrual starts clean from now.
func (v *Vault) ConfigureYield(enabled bool, now int64) {
	v.YieldEnabled = enabled
	if enabled {
		v.LastYieldCompound = now
	}
}
