package gateway

import (
	"context"
	"net/http"

	"github.com/clearvault/vault/pkg/core"
)

// syncTxRequest mirrors api/vault.rs::SyncTxRequest: a client reports a
// confirmed signature and the gateway mirrors the vault's balances.
type syncTxRequest struct {
	UserPubkey      string  `json:"user_pubkey"`
	Signature       string  `json:"signature"`
	TransactionType string  `json:"transaction_type"`
	Amount          *int64  `json:"amount,omitempty"`
}

type syncTxResponse struct {
	Vault    *VaultRecord `json:"vault"`
	Recorded bool         `json:"recorded"`
}

// handleSyncTx implements POST /vault/sync, grounded on
// vault/manager.rs::sync_confirmed_tx: idempotent on signature, then
// refreshes the mirrored row from the engine's current view of the vault
// (the in-process stand-in for an on-chain account refetch).
func (g *Gateway) handleSyncTx(w http.ResponseWriter, r *http.Request) {
	var req syncTxRequest
	if err := decodeJSON(r, &req); err != nil || req.UserPubkey == "" || req.Signature == "" {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, err := core.ParsePubKey(req.UserPubkey)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid owner pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)

	var amount int64
	if req.Amount != nil {
		if *req.Amount <= 0 {
			writeError(w, newAPIError(KindInvalidAmount, "amount must be greater than zero"))
			return
		}
		amount = *req.Amount
	}
	if err := g.store.InsertTransaction(r.Context(), req.Signature, vaultKey.String(), TransactionType(req.TransactionType), amount); err != nil {
		writeError(w, asAPIError(err))
		return
	}
	vr, err := g.refreshMirror(r.Context(), vaultKey)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, syncTxResponse{Vault: vr, Recorded: true})
}

// forceSyncRequest mirrors api/vault.rs::ForceSyncRequest.
type forceSyncRequest struct {
	UserPubkey string `json:"user_pubkey"`
}

// handleForceSync implements POST /vault/force-sync, grounded on
// api/vault.rs::force_sync_vault: refreshes the mirror from current engine
// state without requiring a transaction signature, for bootstrapping
// vaults the mirror never saw created.
func (g *Gateway) handleForceSync(w http.ResponseWriter, r *http.Request) {
	var req forceSyncRequest
	if err := decodeJSON(r, &req); err != nil || req.UserPubkey == "" {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	owner, err := core.ParsePubKey(req.UserPubkey)
	if err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid owner pubkey"))
		return
	}
	vaultKey := g.engine.DeriveVaultKey(owner)
	vr, err := g.refreshMirror(r.Context(), vaultKey)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, syncTxResponse{Vault: vr, Recorded: true})
}

// refreshMirror reads the engine's current view of vaultKey and upserts it
// into the relational mirror, matching the source's balance-consistency
// assertion (total == locked + available) by construction: core.Vault
// maintains that invariant on every mutation, so no separate check is
// needed here.
func (g *Gateway) refreshMirror(ctx context.Context, vaultKey core.PubKey) (*VaultRecord, error) {
	v, err := g.engine.VaultSnapshot(vaultKey)
	if err != nil {
		return nil, fromCoreError(err)
	}
	vr := VaultRecord{
		VaultAddress:     vaultKey.String(),
		Owner:            v.Owner.String(),
		TotalBalance:     int64(v.Total),
		LockedBalance:    int64(v.Locked),
		AvailableBalance: int64(v.Available),
		TotalDeposited:   int64(v.TotalDeposited),
		TotalWithdrawn:   int64(v.TotalWithdrawn),
		TotalYieldEarned: int64(v.TotalYieldEarned),
	}
	if err := g.store.UpsertVault(ctx, vaultKey, vr); err != nil {
		return nil, err
	}
	return g.store.GetVault(ctx, vaultKey.String())
}
