package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/clearvault/vault/pkg/core"
)

type yieldOwnerCallerRequest struct {
	UserPubkey   string `json:"user_pubkey"`
	CallerPubkey string `json:"caller_pubkey"`
}

func (req yieldOwnerCallerRequest) parse() (vaultOwner, caller core.PubKey, err error) {
	vaultOwner, err = core.ParsePubKey(req.UserPubkey)
	if err != nil {
		return
	}
	if req.CallerPubkey == "" {
		caller = vaultOwner
		return
	}
	caller, err = core.ParsePubKey(req.CallerPubkey)
	return
}

// handleYieldCompound implements POST /yield/compound, grounded on
// api/yield.rs::compound_yield: owner or delegate realizes accrued yield.
func (g *Gateway) handleYieldCompound(w http.ResponseWriter, r *http.Request) {
	var req yieldOwnerCallerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, caller, err := req.parse()
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	amount, err := g.engine.CompoundYield(vaultKey, caller)
	if err != nil {
		writeError(w, fromCoreError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"compounded": amount})
}

// handleYieldAutoCompound implements POST /yield/auto-compound, grounded
// on api/yield.rs::auto_compound: permissionless, any caller identity may
// trigger it for any vault.
func (g *Gateway) handleYieldAutoCompound(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey   string `json:"user_pubkey"`
		CallerPubkey string `json:"caller_pubkey"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, err := core.ParsePubKey(body.UserPubkey)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid pubkey"))
		return
	}
	caller := owner
	if body.CallerPubkey != "" {
		caller, err = core.ParsePubKey(body.CallerPubkey)
		if err != nil {
			writeError(w, newAPIError(KindInvalidAmount, "invalid caller pubkey"))
			return
		}
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	amount, err := g.engine.AutoCompound(vaultKey, caller)
	if err != nil {
		writeError(w, fromCoreError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"compounded": amount})
}

// handleYieldConfigure implements POST /yield/configure, owner-only.
func (g *Gateway) handleYieldConfigure(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey string `json:"user_pubkey"`
		Enabled    bool   `json:"enabled"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, err := core.ParsePubKey(body.UserPubkey)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	if err := g.engine.ConfigureYield(vaultKey, owner, body.Enabled); err != nil {
		writeError(w, fromCoreError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
}

// handleYieldSync implements POST /yield/sync: refreshes the mirrored row
// after a yield-affecting operation, the same mirror-refresh path sync_tx
// uses for deposit/withdraw.
func (g *Gateway) handleYieldSync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey string `json:"user_pubkey"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, err := core.ParsePubKey(body.UserPubkey)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	vr, err := g.refreshMirror(r.Context(), vaultKey)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vault": vr})
}

// handleYieldInfo implements GET /yield/info/{user}: current accrued-yield
// view, computed live from the engine rather than the (possibly stale)
// mirror, since yield keeps accruing between syncs.
func (g *Gateway) handleYieldInfo(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	owner, err := core.ParsePubKey(user)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid owner pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	v, err := g.engine.VaultSnapshot(vaultKey)
	if err != nil {
		writeError(w, fromCoreError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"yield_enabled":        v.YieldEnabled,
		"total_yield_earned":   v.TotalYieldEarned,
		"last_yield_compound":  v.LastYieldCompound,
		"total_balance":        v.Total,
	})
}
