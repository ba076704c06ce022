// Package ports declares the collaborator contracts the vault engine talks
// to: token custody, event emission, wall-clock time, and host-side
// signing. The engine never imports an adapter package directly.
package ports

import (
	"context"

	"github.com/clearvault/vault/pkg/core"
)

// TokenTransferer is the host's token-movement capability: the single
// CPI-style transfer primitive the source program invokes under a
// program-derived authority. One interface covers deposits (TransferIn),
// withdrawals (TransferOut), and the collateral-move primitive invoked by
// an authorized external program (TransferBetween).
type TokenTransferer interface {
	TransferIn(ctx context.Context, vault core.PubKey, from core.PubKey, amount uint64) error
	TransferOut(ctx context.Context, vault core.PubKey, to core.PubKey, amount uint64) error
	TransferBetween(ctx context.Context, from, to core.PubKey, amount uint64) error
	BalanceOf(ctx context.Context, account core.PubKey) (uint64, error)
}

// EventSink is the opaque, append-only sink the engine emits typed records
// into. Downstream consumption (gateway mirroring, websocket fanout) is out
// of scope for the engine itself — it only ever publishes.
type EventSink interface {
	Publish(evt Event)
	Subscribe() <-chan Event
}

// Clock abstracts wall-clock time so the engine and its tests can drive
// timelocks and rate-limit windows deterministically.
type Clock interface {
	Now() int64
}

// HostSigner derives a vault's deterministic key from its owner and proves
// authority to move funds out of the account that key controls — the
// abstract re-expression of program-derived-account binding (Design
// Notes §9).
type HostSigner interface {
	DeriveVaultKey(owner core.PubKey) core.PubKey
	VerifyCallerSignature(caller core.PubKey, msg, sig []byte) bool
}
