// Command vaultd wires the vault engine, its in-memory collaborators, the
// relational mirror, the permissionless auto-compound keeper, and the HTTP
// gateway into one running process.
package main

import (
	"context"
	"crypto/rand"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clearvault/vault/pkg/adapters/memevents"
	"github.com/clearvault/vault/pkg/adapters/memtoken"
	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/engine"
	"github.com/clearvault/vault/pkg/gateway"
	"github.com/clearvault/vault/pkg/keeper"
)

// systemClock ticks off the wall clock, the ports.Clock the live process
// runs on (the engine tests use a fakeClock instead).
type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := gateway.FromEnv()

	token := memtoken.New()
	events := memevents.New(0)
	signer := engine.NewDefaultSigner([]byte(cfg.ProgramID))
	eng := engine.New(token, events, systemClock{}, signer)

	var admin core.PubKey
	if _, err := rand.Read(admin[:]); err != nil {
		log.Fatal("failed to generate admin key", zap.Error(err))
	}
	if err := eng.InitializeAuthority(admin, 0, nil); err != nil {
		log.Fatal("failed to initialize authority registry", zap.Error(err))
	}

	store, err := gateway.OpenStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open mirror store", zap.Error(err))
	}
	defer store.Close()

	var keeperIdentity core.PubKey
	if _, err := rand.Read(keeperIdentity[:]); err != nil {
		log.Fatal("failed to generate keeper identity", zap.Error(err))
	}
	k := keeper.New(eng, keeperIdentity, cfg.KeeperInterval, log)

	gw := gateway.New(cfg, eng, store, events, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go k.Run(ctx)
	go store.RunPeriodicSnapshot(ctx, cfg.SnapshotInterval)

	log.Info("vaultd starting", zap.Int("port", cfg.Port))
	if err := gw.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("gateway exited", zap.Error(err))
	}
	log.Info("vaultd stopped")
}
