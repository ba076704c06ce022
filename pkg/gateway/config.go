package gateway

import (
	"os"
	"strconv"
	"time"
)

// Config mirrors original_source/backend/src/config.rs's fields, read the
// same way: os.Getenv with a default, an empty DATABASE_URL treated as
// unset. The source's transaction_timeout_seconds/max_retry_attempts are
// not carried forward: sync.go never polls a separate ledger RPC for
// confirmation, since the in-process engine commits synchronously and its
// state is already authoritative by the time a sync request arrives.
type Config struct {
	Host             string
	Port             int
	LedgerRPCURL     string
	LedgerWSURL      string
	ProgramID        string
	PayerKeypairPath string
	USDTMint         string
	DatabaseURL      string
	SnapshotInterval time.Duration
	KeeperInterval   time.Duration
}

// FromEnv loads configuration with the same defaults as the source.
func FromEnv() *Config {
	cfg := &Config{
		Host:             getEnv("HOST", "0.0.0.0"),
		Port:             getEnvInt("PORT", 8080),
		LedgerRPCURL:     getEnv("LEDGER_RPC_URL", "http://127.0.0.1:8899"),
		LedgerWSURL:      getEnv("LEDGER_WS_URL", "ws://127.0.0.1:8900"),
		ProgramID:        getEnv("PROGRAM_ID", ""),
		PayerKeypairPath: getEnv("PAYER_KEYPAIR_PATH", ""),
		USDTMint:         getEnv("USDT_MINT", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SnapshotInterval: time.Duration(getEnvInt("SNAPSHOT_INTERVAL_SECONDS", 60)) * time.Second,
		KeeperInterval:   time.Duration(getEnvInt("KEEPER_INTERVAL_SECONDS", 15)) * time.Second,
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "vault.duckdb"
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
