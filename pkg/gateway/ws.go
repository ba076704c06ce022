package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clearvault/vault/pkg/core"
	"github.com/clearvault/vault/pkg/ports"
)

// wsMessage mirrors ws/handler.rs::WsMessage's tagged-union shape. Events
// forwarded from the engine carry their native payload under Data rather
// than being flattened, since each EventType has its own payload shape.
type wsMessage struct {
	Type         string      `json:"type"`
	VaultAddress string      `json:"vault_address,omitempty"`
	Message      string      `json:"message,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// eventVaultAddress extracts the vault address an event payload carries,
// if any — the subset of ports.Event payloads a single vault connection
// cares about.
func eventVaultAddress(evt ports.Event) (core.PubKey, bool) {
	switch p := evt.Payload.(type) {
	case ports.DepositPayload:
		return p.Vault, true
	case ports.WithdrawPayload:
		return p.Vault, true
	case ports.LockPayload:
		return p.Vault, true
	case ports.YieldCompoundedPayload:
		return p.Vault, true
	case ports.WithdrawalLifecyclePayload:
		return p.Vault, true
	}
	return core.ZeroPubKey, false
}

// handleWebsocket implements GET /ws, grounded on ws/handler.rs's
// connect/subscribe/unsubscribe envelope. Unlike the source (stubbed
// pending a Redis pubsub layer), this forwards real engine events off
// ports.EventSink.Subscribe() — the in-process bus makes the external
// broadcaster the source deferred unnecessary for a single gateway
// instance.
func (g *Gateway) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	writeJSONMsg := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	if err := writeJSONMsg(wsMessage{Type: "connected", Message: "Connected to Collateral Vault WebSocket"}); err != nil {
		return
	}

	subscribed := struct {
		mu   sync.Mutex
		vaults map[string]bool
	}{vaults: make(map[string]bool)}

	events := g.events.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			subscribed.mu.Lock()
			switch msg.Type {
			case "Subscribe", "subscribe":
				subscribed.vaults[msg.VaultAddress] = true
			case "Unsubscribe", "unsubscribe":
				delete(subscribed.vaults, msg.VaultAddress)
			}
			subscribed.mu.Unlock()
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			if err := writeJSONMsg(wsMessage{Type: "ping"}); err != nil {
				return
			}
		case evt, ok := <-events:
			if !ok {
				return
			}
			vaultKey, has := eventVaultAddress(evt)
			if !has {
				continue
			}
			addr := vaultKey.String()
			subscribed.mu.Lock()
			wanted := subscribed.vaults[addr]
			subscribed.mu.Unlock()
			if !wanted {
				continue
			}
			out := wsMessage{Type: "transaction_notification", VaultAddress: addr, Data: evt.Payload}
			if err := writeJSONMsg(out); err != nil {
				return
			}
		}
	}
}
