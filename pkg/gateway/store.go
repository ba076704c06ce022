package gateway

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/clearvault/vault/pkg/core"
)

//go:embed schema.sql
var schemaSQL string

// Store is the relational mirror of on-chain vault state, grounded
// directly on the teacher's cmd/dstore (database/sql + duckdb-go/v2) and
// on original_source/backend/src/db/{models,snapshot}.rs for the table
// shape and the single-aggregating-query snapshot technique.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and creates if necessary) the DuckDB file at path and
// executes schema.sql against it.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to open database", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, wrapAPIError(KindDatabase, "failed to execute schema", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// VaultRecord mirrors original_source/backend/src/db/models.rs::VaultRecord.
type VaultRecord struct {
	VaultAddress     string
	Owner            string
	TotalBalance     int64
	LockedBalance    int64
	AvailableBalance int64
	TotalDeposited   int64
	TotalWithdrawn   int64
	TotalYieldEarned int64
	UpdatedAt        time.Time
}

// TransactionType enumerates the mirrored transaction kinds, mirroring
// original_source/backend/src/db/models.rs::TransactionType.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxLock       TransactionType = "lock"
	TxUnlock     TransactionType = "unlock"
	TxTransfer   TransactionType = "transfer"
	TxYield      TransactionType = "yield"
)

// UpsertVault inserts or refreshes a vault's mirrored row, keyed by
// vault_address, matching the source's ON CONFLICT (vault_address) upsert.
func (s *Store) UpsertVault(ctx context.Context, v core.PubKey, vr VaultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vaults (vault_address, owner, total_balance, locked_balance,
			available_balance, total_deposited, total_withdrawn, total_yield_earned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, current_timestamp)
		ON CONFLICT (vault_address) DO UPDATE SET
			total_balance = excluded.total_balance,
			locked_balance = excluded.locked_balance,
			available_balance = excluded.available_balance,
			total_deposited = excluded.total_deposited,
			total_withdrawn = excluded.total_withdrawn,
			total_yield_earned = excluded.total_yield_earned,
			updated_at = current_timestamp
	`, v.String(), vr.Owner, vr.TotalBalance, vr.LockedBalance, vr.AvailableBalance,
		vr.TotalDeposited, vr.TotalWithdrawn, vr.TotalYieldEarned)
	if err != nil {
		return wrapAPIError(KindDatabase, "failed to upsert vault", err)
	}
	return nil
}

// GetVault reads a single mirrored vault row.
func (s *Store) GetVault(ctx context.Context, vaultAddress string) (*VaultRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT vault_address, owner, total_balance, locked_balance, available_balance,
			total_deposited, total_withdrawn, total_yield_earned, updated_at
		FROM vaults WHERE vault_address = ?
	`, vaultAddress)
	var vr VaultRecord
	err := row.Scan(&vr.VaultAddress, &vr.Owner, &vr.TotalBalance, &vr.LockedBalance,
		&vr.AvailableBalance, &vr.TotalDeposited, &vr.TotalWithdrawn, &vr.TotalYieldEarned, &vr.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, newAPIError(KindVaultNotFound, "vault not found")
	}
	if err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to read vault", err)
	}
	return &vr, nil
}

// TransactionExists reports whether signature was already mirrored,
// implementing the source's dedup-by-signature check.
func (s *Store) TransactionExists(ctx context.Context, signature string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE signature = ?`, signature).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapAPIError(KindDatabase, "failed to check transaction existence", err)
	}
	return true, nil
}

// InsertTransaction idempotently records a mirrored transaction.
func (s *Store) InsertTransaction(ctx context.Context, signature, vaultAddress string, txType TransactionType, amount int64) error {
	exists, err := s.TransactionExists(ctx, signature)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, signature, vault_address, transaction_type, amount)
		VALUES (nextval('transactions_id_seq'), ?, ?, ?, ?)
	`, signature, vaultAddress, string(txType), amount)
	if err != nil {
		return wrapAPIError(KindDatabase, "failed to insert transaction", err)
	}
	return nil
}

// Transactions lists all mirrored transactions for a vault, most recent
// first.
func (s *Store) Transactions(ctx context.Context, vaultAddress string) ([]TransactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT signature, vault_address, transaction_type, amount, created_at
		FROM transactions WHERE vault_address = ? ORDER BY created_at DESC
	`, vaultAddress)
	if err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to list transactions", err)
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.Signature, &r.VaultAddress, &r.TransactionType, &r.Amount, &r.CreatedAt); err != nil {
			return nil, wrapAPIError(KindDatabase, "failed to scan transaction row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TransactionRow is a mirrored transaction read back for the API surface.
type TransactionRow struct {
	Signature       string
	VaultAddress    string
	TransactionType string
	Amount          int64
	CreatedAt       time.Time
}

// TVL mirrors original_source/backend/src/vault/manager.rs::get_tvl: a
// single aggregating query across every mirrored vault.
func (s *Store) TVL(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT SUM(total_balance) FROM vaults`).Scan(&total)
	if err != nil {
		return 0, wrapAPIError(KindDatabase, "failed to compute tvl", err)
	}
	return total.Int64, nil
}

// TakeSnapshot runs the single aggregating INSERT...SELECT grounded on
// original_source/backend/src/db/snapshot.rs::take_snapshot — every metric
// comes from one query so no two metrics can be read from different
// moments in time.
func (s *Store) TakeSnapshot(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tvl_snapshots (id, total_value_locked, total_users, active_vaults,
			total_deposited, total_withdrawn, average_balance)
		SELECT
			nextval('tvl_snapshots_id_seq'),
			COALESCE(SUM(total_balance), 0),
			COUNT(DISTINCT owner),
			COUNT(*),
			COALESCE(SUM(total_deposited), 0),
			COALESCE(SUM(total_withdrawn), 0),
			COALESCE(AVG(total_balance), 0)
		FROM vaults
	`)
	if err != nil {
		return wrapAPIError(KindDatabase, "failed to take snapshot", err)
	}
	return nil
}

// RunPeriodicSnapshot loops until ctx is cancelled, taking a snapshot every
// interval — grounded on snapshot.rs::run_periodic_snapshot ("1 minute
// interval for demo purposes - would be hourly or daily in prod").
func (s *Store) RunPeriodicSnapshot(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.TakeSnapshot(ctx)
		}
	}
}

// TVLSnapshot reads back the most recent snapshot row for the analytics
// chart endpoint.
type TVLSnapshot struct {
	SnapshotTime     time.Time
	TotalValueLocked int64
	TotalUsers       int64
	ActiveVaults     int64
	TotalDeposited   int64
	TotalWithdrawn   int64
	AverageBalance   float64
}

// TotalValueLocked sums total_balance across every mirrored vault,
// grounded on analytics.rs::get_overview's first sub-query.
func (s *Store) TotalValueLocked(ctx context.Context) (int64, error) {
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_balance), 0) FROM vaults`).Scan(&v)
	if err != nil {
		return 0, wrapAPIError(KindDatabase, "failed to sum tvl", err)
	}
	return v.Int64, nil
}

// UserCount counts distinct owners, grounded on get_overview's second
// sub-query.
func (s *Store) UserCount(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT owner) FROM vaults`).Scan(&v)
	if err != nil {
		return 0, wrapAPIError(KindDatabase, "failed to count users", err)
	}
	return v, nil
}

// DepositWithdrawTotals sums total_deposited/total_withdrawn across every
// vault, grounded on get_overview's third sub-query.
func (s *Store) DepositWithdrawTotals(ctx context.Context) (deposits, withdrawals int64, err error) {
	var d, wd sql.NullInt64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_deposited), 0), COALESCE(SUM(total_withdrawn), 0) FROM vaults
	`).Scan(&d, &wd)
	if err != nil {
		return 0, 0, wrapAPIError(KindDatabase, "failed to sum deposit/withdraw totals", err)
	}
	return d.Int64, wd.Int64, nil
}

// ActiveVaultCount counts vaults with a nonzero balance, grounded on
// get_overview's fourth sub-query.
func (s *Store) ActiveVaultCount(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults WHERE total_balance > 0`).Scan(&v)
	if err != nil {
		return 0, wrapAPIError(KindDatabase, "failed to count active vaults", err)
	}
	return v, nil
}

// BalanceBucket is one row of the owner balance-distribution histogram.
type BalanceBucket struct {
	Range      string
	UserCount  int64
	Percentage float64
}

// balanceRanges mirrors analytics.rs::get_user_distribution's fixed
// lamport ranges (6-decimal USDT).
var balanceRanges = []struct {
	label    string
	min, max int64
}{
	{"0-100", 1, 100_000_000},
	{"100-1000", 100_000_000, 1_000_000_000},
	{"1000-10000", 1_000_000_000, 10_000_000_000},
	{"10000+", 10_000_000_000, -1},
}

// UserDistribution buckets active vaults by total_balance.
func (s *Store) UserDistribution(ctx context.Context) ([]BalanceBucket, error) {
	var totalActive int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults WHERE total_balance > 0`).Scan(&totalActive); err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to count active vaults", err)
	}
	denom := totalActive
	if denom < 1 {
		denom = 1
	}

	out := make([]BalanceBucket, 0, len(balanceRanges))
	for _, rg := range balanceRanges {
		var count int64
		var err error
		if rg.max < 0 {
			err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults WHERE total_balance >= ?`, rg.min).Scan(&count)
		} else {
			err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults WHERE total_balance >= ? AND total_balance < ?`, rg.min, rg.max).Scan(&count)
		}
		if err != nil {
			return nil, wrapAPIError(KindDatabase, "failed to bucket vault balances", err)
		}
		out = append(out, BalanceBucket{
			Range:      rg.label,
			UserCount:  count,
			Percentage: float64(count) / float64(denom) * 100,
		})
	}
	return out, nil
}

// Utilization is the sum of total/locked/available balances across every
// mirrored vault.
type Utilization struct {
	TotalCollateral     int64
	LockedCollateral    int64
	AvailableCollateral int64
	UtilizationRate     float64
}

// UtilizationMetrics grounds on analytics.rs::get_utilization.
func (s *Store) UtilizationMetrics(ctx context.Context) (Utilization, error) {
	var u Utilization
	var total, locked, available sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_balance), 0), COALESCE(SUM(locked_balance), 0), COALESCE(SUM(available_balance), 0)
		FROM vaults
	`).Scan(&total, &locked, &available)
	if err != nil {
		return u, wrapAPIError(KindDatabase, "failed to compute utilization", err)
	}
	u.TotalCollateral, u.LockedCollateral, u.AvailableCollateral = total.Int64, locked.Int64, available.Int64
	if u.TotalCollateral > 0 {
		u.UtilizationRate = float64(u.LockedCollateral) / float64(u.TotalCollateral) * 100
	}
	return u, nil
}

// FlowPoint is one day's deposit/withdrawal activity.
type FlowPoint struct {
	Period           string
	Deposits         int64
	Withdrawals      int64
	NetFlow          int64
	DepositCount     int64
	WithdrawalCount  int64
}

// FlowMetrics grounds on analytics.rs::get_flow_metrics: per-day deposit
// and withdrawal totals over the trailing window, most recent first.
func (s *Store) FlowMetrics(ctx context.Context, days int) ([]FlowPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			CAST(created_at AS DATE) AS period,
			COALESCE(SUM(CASE WHEN transaction_type = 'deposit' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'withdrawal' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'deposit' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'withdrawal' THEN 1 ELSE 0 END), 0)
		FROM transactions
		WHERE created_at >= current_timestamp - (? * INTERVAL '1 day')
		GROUP BY period
		ORDER BY period DESC
	`, days)
	if err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to compute flow metrics", err)
	}
	defer rows.Close()

	var out []FlowPoint
	for rows.Next() {
		var p FlowPoint
		var period time.Time
		if err := rows.Scan(&period, &p.Deposits, &p.Withdrawals, &p.DepositCount, &p.WithdrawalCount); err != nil {
			return nil, wrapAPIError(KindDatabase, "failed to scan flow row", err)
		}
		p.Period = period.Format("2006-01-02")
		p.NetFlow = p.Deposits - p.Withdrawals
		out = append(out, p)
	}
	return out, rows.Err()
}

// TVLHistory returns up to limit most-recent snapshots, oldest first.
func (s *Store) TVLHistory(ctx context.Context, limit int) ([]TVLSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_time, total_value_locked, total_users, active_vaults,
			total_deposited, total_withdrawn, average_balance
		FROM tvl_snapshots ORDER BY snapshot_time DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapAPIError(KindDatabase, "failed to read tvl history", err)
	}
	defer rows.Close()

	var out []TVLSnapshot
	for rows.Next() {
		var snap TVLSnapshot
		if err := rows.Scan(&snap.SnapshotTime, &snap.TotalValueLocked, &snap.TotalUsers,
			&snap.ActiveVaults, &snap.TotalDeposited, &snap.TotalWithdrawn, &snap.AverageBalance); err != nil {
			return nil, wrapAPIError(KindDatabase, "failed to scan snapshot row", err)
		}
		out = append(out, snap)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}
