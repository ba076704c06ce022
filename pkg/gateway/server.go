// Package gateway implements the HTTP front door (spec.md §6.3): unsigned
// transaction builders, a relational mirror of engine state, rate
// limiting, analytics, and a websocket notification feed. The
// /vault/initialize, /vault/deposit and /vault/withdraw routes only return
// an unsigned blob for a client wallet to sign. The /yield/compound,
// /yield/auto-compound and /yield/configure routes instead call the engine
// directly, acting as the owner or caller key named in the request body;
// no signature is checked.
package gateway

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/clearvault/vault/pkg/engine"
	"github.com/clearvault/vault/pkg/ports"
)

// Gateway bundles every collaborator an HTTP handler needs. Grounded on
// original_source/backend/src/main.rs's AppState{vault_manager, db_pool,
// mfa_service}.
type Gateway struct {
	Config *Config
	engine *engine.Engine
	store  *Store
	events ports.EventSink
	mfa    MFAService
	log    *zap.Logger

	router *mux.Router
}

// New wires a Gateway and its route table. Grounded on
// original_source/backend/src/main.rs's router construction: one
// mux.Router, rate-limit middleware per route group, CORS left permissive.
func New(cfg *Config, eng *engine.Engine, store *Store, events ports.EventSink, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		Config: cfg,
		engine: eng,
		store:  store,
		events: events,
		mfa:    NewTOTPService(),
		log:    log,
	}
	g.router = g.buildRouter()
	return g
}

func (g *Gateway) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsPermissive)

	r.HandleFunc("/health", g.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/config/public", g.handleConfigPublic).Methods(http.MethodGet)

	write := newTokenBucketLimiter(rate5PerSecond, 10)
	read := newTokenBucketLimiter(rate20PerSecond, 40)
	expensive := newTokenBucketLimiter(rate1Per2Seconds, 3)
	r.Handle("/config/programs", read.wrap(http.HandlerFunc(g.handleAuthorizedPrograms))).Methods(http.MethodGet)
	def := newTokenBucketLimiter(rate10PerSecond, 20)

	vault := r.PathPrefix("/vault").Subrouter()
	vault.Handle("/initialize", write.wrap(http.HandlerFunc(g.handleInitialize))).Methods(http.MethodPost)
	vault.Handle("/deposit", write.wrap(http.HandlerFunc(g.handleDeposit))).Methods(http.MethodPost)
	vault.Handle("/withdraw", write.wrap(http.HandlerFunc(g.handleWithdraw))).Methods(http.MethodPost)
	vault.Handle("/sync", write.wrap(http.HandlerFunc(g.handleSyncTx))).Methods(http.MethodPost)
	vault.Handle("/force-sync", expensive.wrap(http.HandlerFunc(g.handleForceSync))).Methods(http.MethodPost)
	vault.Handle("/balance/{user}", read.wrap(http.HandlerFunc(g.handleBalance))).Methods(http.MethodGet)
	vault.Handle("/transactions/{user}", read.wrap(http.HandlerFunc(g.handleTransactions))).Methods(http.MethodGet)
	vault.Handle("/tvl", read.wrap(http.HandlerFunc(g.handleTVL))).Methods(http.MethodGet)

	yield := r.PathPrefix("/yield").Subrouter()
	yield.Handle("/compound", write.wrap(http.HandlerFunc(g.handleYieldCompound))).Methods(http.MethodPost)
	yield.Handle("/auto-compound", write.wrap(http.HandlerFunc(g.handleYieldAutoCompound))).Methods(http.MethodPost)
	yield.Handle("/configure", write.wrap(http.HandlerFunc(g.handleYieldConfigure))).Methods(http.MethodPost)
	yield.Handle("/sync", write.wrap(http.HandlerFunc(g.handleYieldSync))).Methods(http.MethodPost)
	yield.Handle("/info/{user}", read.wrap(http.HandlerFunc(g.handleYieldInfo))).Methods(http.MethodGet)

	analytics := r.PathPrefix("/analytics").Subrouter()
	analytics.Handle("/overview", expensive.wrap(http.HandlerFunc(g.handleAnalyticsOverview))).Methods(http.MethodGet)
	analytics.Handle("/distribution", expensive.wrap(http.HandlerFunc(g.handleAnalyticsDistribution))).Methods(http.MethodGet)
	analytics.Handle("/utilization", expensive.wrap(http.HandlerFunc(g.handleAnalyticsUtilization))).Methods(http.MethodGet)
	analytics.Handle("/flow", expensive.wrap(http.HandlerFunc(g.handleAnalyticsFlow))).Methods(http.MethodGet)
	analytics.Handle("/yield", expensive.wrap(http.HandlerFunc(g.handleAnalyticsYield))).Methods(http.MethodGet)
	analytics.Handle("/chart/tvl", expensive.wrap(http.HandlerFunc(g.handleAnalyticsTVLChart))).Methods(http.MethodGet)

	m := r.PathPrefix("/mfa").Subrouter()
	m.Handle("/setup", def.wrap(http.HandlerFunc(g.handleMFASetup))).Methods(http.MethodPost)
	m.Handle("/verify-setup", def.wrap(http.HandlerFunc(g.handleMFAVerifySetup))).Methods(http.MethodPost)
	m.Handle("/disable", def.wrap(http.HandlerFunc(g.handleMFADisable))).Methods(http.MethodPost)
	m.Handle("/check", def.wrap(http.HandlerFunc(g.handleMFACheck))).Methods(http.MethodPost)
	m.Handle("/status/{vault_address}", def.wrap(http.HandlerFunc(g.handleMFAStatus))).Methods(http.MethodGet)

	r.Handle("/ws", def.wrap(http.HandlerFunc(g.handleWebsocket))).Methods(http.MethodGet)

	return r
}

func corsPermissive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP makes Gateway itself an http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleConfigPublic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ledger_rpc_url": g.Config.LedgerRPCURL,
		"program_id":     g.Config.ProgramID,
		"usdt_mint":      g.Config.USDTMint,
	})
}

// ListenAndServe starts the HTTP server, retrying on up to 10 successive
// ports starting from Config.Port if the chosen one is already bound —
// grounded on original_source/backend/src/main.rs's port-retry loop.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	const maxPortAttempts = 10
	var lastErr error
	for i := 0; i < maxPortAttempts; i++ {
		addr := net.JoinHostPort(g.Config.Host, strconv.Itoa(g.Config.Port+i))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		srv := &http.Server{Handler: g, ReadHeaderTimeout: 10 * time.Second}
		g.log.Info("gateway listening", zap.String("addr", addr))

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	}
	return wrapAPIError(KindConfig, "failed to bind any port in range", lastErr)
}
