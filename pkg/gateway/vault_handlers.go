package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/clearvault/vault/pkg/core"
)

// handleInitialize implements POST /vault/initialize, grounded on
// original_source/backend/src/api/vault.rs::build_initialize_vault_tx: it
// never touches the engine directly, only hands back an unsigned blob for
// the owner's wallet to sign and submit.
func (g *Gateway) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey string `json:"user_pubkey"`
	}
	if err := decodeJSON(r, &body); err != nil || body.UserPubkey == "" {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	writeJSON(w, http.StatusOK, g.BuildInitializeUnsigned(body.UserPubkey))
}

// handleDeposit implements POST /vault/deposit, mirroring
// build_deposit_tx's amount-positive check before ever building a blob.
func (g *Gateway) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey string `json:"user_pubkey"`
		Amount     uint64 `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil || body.UserPubkey == "" {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	if body.Amount == 0 {
		writeError(w, newAPIError(KindInvalidAmount, "amount must be greater than zero"))
		return
	}
	writeJSON(w, http.StatusOK, g.BuildDepositUnsigned(body.UserPubkey, body.Amount))
}

// handleWithdraw implements POST /vault/withdraw.
func (g *Gateway) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPubkey string `json:"user_pubkey"`
		Amount     uint64 `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil || body.UserPubkey == "" {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	if body.Amount == 0 {
		writeError(w, newAPIError(KindInvalidAmount, "amount must be greater than zero"))
		return
	}
	writeJSON(w, http.StatusOK, g.BuildWithdrawUnsigned(body.UserPubkey, body.Amount))
}

// ownerVaultAddress derives the vault key for an owner hex string and
// returns its hex encoding, the form the mirror store keys rows by.
func (g *Gateway) ownerVaultAddress(userHex string) (string, error) {
	owner, err := core.ParsePubKey(userHex)
	if err != nil {
		return "", newAPIError(KindInvalidAmount, "invalid owner pubkey")
	}
	return g.engine.DeriveVaultKey(owner).String(), nil
}

// handleBalance implements GET /vault/balance/{user}, grounded on
// api/vault.rs::get_balance: reads the mirrored row, never the engine
// directly, so a client sees exactly what the indexer last confirmed.
func (g *Gateway) handleBalance(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	vaultAddress, err := g.ownerVaultAddress(user)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	vr, err := g.store.GetVault(r.Context(), vaultAddress)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vault": vr})
}

// handleTransactions implements GET /vault/transactions/{user}.
func (g *Gateway) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	vaultAddress, err := g.ownerVaultAddress(user)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	txs, err := g.store.Transactions(r.Context(), vaultAddress)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// handleTVL implements GET /vault/tvl.
func (g *Gateway) handleTVL(w http.ResponseWriter, r *http.Request) {
	tvl, err := g.store.TVL(r.Context())
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_value_locked": tvl})
}
