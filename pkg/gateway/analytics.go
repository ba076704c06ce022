package gateway

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// analyticsOverview mirrors analytics.rs::AnalyticsOverview.
type analyticsOverview struct {
	TotalValueLocked int64   `json:"total_value_locked"`
	TotalUsers       int64   `json:"total_users"`
	TotalDeposits    int64   `json:"total_deposits"`
	TotalWithdrawals int64   `json:"total_withdrawals"`
	ActiveVaults     int64   `json:"active_vaults"`
	AverageBalance   float64 `json:"average_balance"`
	TotalYieldEarned int64   `json:"total_yield_earned"`
}

// handleAnalyticsOverview implements GET /analytics/overview. Each
// sub-metric is its own query against the mirror, run concurrently with
// errgroup so the endpoint's latency is the slowest single query, not
// their sum — grounded on analytics.rs::get_overview's four independent
// sqlx queries.
func (g *Gateway) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var out analyticsOverview
	var deposits, withdrawals int64

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		out.TotalValueLocked, err = g.store.TotalValueLocked(gctx)
		return err
	})
	eg.Go(func() (err error) {
		out.TotalUsers, err = g.store.UserCount(gctx)
		return err
	})
	eg.Go(func() (err error) {
		deposits, withdrawals, err = g.store.DepositWithdrawTotals(gctx)
		return err
	})
	eg.Go(func() (err error) {
		out.ActiveVaults, err = g.store.ActiveVaultCount(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		writeError(w, asAPIError(err))
		return
	}
	out.TotalDeposits = deposits
	out.TotalWithdrawals = withdrawals
	if out.TotalUsers > 0 {
		out.AverageBalance = float64(out.TotalValueLocked) / float64(out.TotalUsers)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAnalyticsDistribution implements GET /analytics/distribution.
func (g *Gateway) handleAnalyticsDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := g.store.UserDistribution(r.Context())
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// handleAnalyticsUtilization implements GET /analytics/utilization.
func (g *Gateway) handleAnalyticsUtilization(w http.ResponseWriter, r *http.Request) {
	u, err := g.store.UtilizationMetrics(r.Context())
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleAnalyticsFlow implements GET /analytics/flow?days=N.
func (g *Gateway) handleAnalyticsFlow(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	points, err := g.store.FlowMetrics(r.Context(), days)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// yieldMetrics mirrors analytics.rs::YieldMetrics, computed live from the
// engine's vault set rather than the mirror, since yield accrual state
// lives only in core.Vault.
type yieldMetrics struct {
	TotalYieldEarned  uint64  `json:"total_yield_earned"`
	AverageAPYBP      uint64  `json:"average_apy_bp"`
	ActiveYieldVaults int     `json:"active_yield_vaults"`
	TotalYieldVaults  int     `json:"total_yield_vaults"`
}

// handleAnalyticsYield implements GET /analytics/yield.
func (g *Gateway) handleAnalyticsYield(w http.ResponseWriter, r *http.Request) {
	var m yieldMetrics
	for _, key := range g.engine.VaultKeys() {
		v, err := g.engine.VaultSnapshot(key)
		if err != nil {
			continue
		}
		m.TotalYieldVaults++
		m.TotalYieldEarned += v.TotalYieldEarned
		if v.YieldEnabled {
			m.ActiveYieldVaults++
		}
	}
	writeJSON(w, http.StatusOK, m)
}

// handleAnalyticsTVLChart implements GET /analytics/chart/tvl?days=N,
// grounded on analytics.rs::get_tvl_chart: the snapshot history, falling
// back to a single live point when no snapshots exist yet.
func (g *Gateway) handleAnalyticsTVLChart(w http.ResponseWriter, r *http.Request) {
	limit := 10_000
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n * 24 * 60 // one snapshot per minute, per Config.SnapshotInterval's 60-second default
		}
	}
	snaps, err := g.store.TVLHistory(r.Context(), limit)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	if len(snaps) == 0 {
		tvl, err := g.store.TotalValueLocked(r.Context())
		if err != nil {
			writeError(w, asAPIError(err))
			return
		}
		users, err := g.store.UserCount(r.Context())
		if err != nil {
			writeError(w, asAPIError(err))
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{{
			"tvl": tvl, "user_count": users,
		}})
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}
