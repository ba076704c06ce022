package engine

import (
	"github.com/clearvault/vault/pkg/core"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// DefaultSigner is the reference HostSigner: it derives a vault's key
// deterministically from its owner (the abstract stand-in for the source
// program's `("vault", owner)` PDA derivation) and verifies ECDSA
// signatures over secp256k1 via dcrd, the curve the teacher's dependency
// closet already carries for exactly this kind of key-derivation work.
type DefaultSigner struct {
	seed []byte
}

// NewDefaultSigner builds a signer whose derivation is namespaced by seed
// so two deployments never collide on the same owner key.
func NewDefaultSigner(seed []byte) *DefaultSigner {
	return &DefaultSigner{seed: seed}
}

// DeriveVaultKey implements the one-to-one owner→vault_key mapping
// (Design Notes §9) via Keccak256(seed || "vault" || owner).
func (s *DefaultSigner) DeriveVaultKey(owner core.PubKey) core.PubKey {
	h := sha3.NewLegacyKeccak256()
	h.Write(s.seed)
	h.Write([]byte("vault"))
	h.Write(owner[:])
	sum := h.Sum(nil)
	var key core.PubKey
	copy(key[:], sum)
	return key
}

// VerifyCallerSignature checks that sig is a valid DER-encoded secp256k1
// signature by caller over the SHA3-256 digest of msg. caller holds the
// 32-byte X coordinate of a compressed secp256k1 public key and is always
// read as the even-Y point; there is no way to name the odd-Y point, so a
// signature by a key whose point has odd Y never verifies.
func (s *DefaultSigner) VerifyCallerSignature(caller core.PubKey, msg, sig []byte) bool {
	compressed := append([]byte{0x02}, caller[:]...)
	pubKey, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return false
	}
	parsedSig, err := secp256k1.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha3.Sum256(msg)
	return parsedSig.Verify(digest[:], pubKey)
}
