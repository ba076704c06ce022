package gateway

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
)

// UnsignedTransaction is the shape returned to a client for local signing,
// grounded on original_source/backend/src/api/vault.rs's
// build_*_unsigned handlers: a thin collaborator that never talks to the
// ledger itself, it only encodes the instruction the client must sign.
type UnsignedTransaction struct {
	TransactionBase64 string `json:"transaction_base64"`
	RecentBlockhash   string `json:"recent_blockhash"`
	FeePayer          string `json:"fee_payer"`
}

type unsignedInstruction struct {
	Instruction string            `json:"instruction"`
	Args        map[string]string `json:"args"`
}

// BuildUnsigned encodes instruction and its arguments as a base64 blob the
// gateway can hand to a client wallet; no ledger round-trip happens here.
func (g *Gateway) BuildUnsigned(feePayer, instruction string, args map[string]string) UnsignedTransaction {
	payload, _ := json.Marshal(unsignedInstruction{Instruction: instruction, Args: args})
	return UnsignedTransaction{
		TransactionBase64: base64.StdEncoding.EncodeToString(payload),
		RecentBlockhash:   uuid.NewString(),
		FeePayer:          feePayer,
	}
}

// BuildInitializeUnsigned implements POST /vault/initialize.
func (g *Gateway) BuildInitializeUnsigned(owner string) UnsignedTransaction {
	return g.BuildUnsigned(owner, "initialize_vault", map[string]string{"owner": owner})
}

// BuildDepositUnsigned implements POST /vault/deposit; amount must be
// positive, enforced by the caller before this is ever reached.
func (g *Gateway) BuildDepositUnsigned(owner string, amount uint64) UnsignedTransaction {
	return g.BuildUnsigned(owner, "deposit", map[string]string{"owner": owner, "amount": strconv.FormatUint(amount, 10)})
}

// BuildWithdrawUnsigned implements POST /vault/withdraw.
func (g *Gateway) BuildWithdrawUnsigned(owner string, amount uint64) UnsignedTransaction {
	return g.BuildUnsigned(owner, "withdraw", map[string]string{"owner": owner, "amount": strconv.FormatUint(amount, 10)})
}
