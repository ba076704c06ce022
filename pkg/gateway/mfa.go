package gateway

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// MFAService implements RFC 6238 TOTP, grounded on
// original_source/backend/src/api/mfa.rs and db/mfa.rs for the
// setup/verify/disable/check/status surface. Standard-library exception:
// no repo in the retrieval pack imports a TOTP/HOTP library, so the check
// itself is built on crypto/hmac + crypto/sha1 directly — every other
// concern in this package still reaches for the pack's libraries.
type MFAService interface {
	Setup(vaultAddress string) (secretBase32 string, err error)
	VerifySetup(vaultAddress, code string) (bool, error)
	Disable(vaultAddress, code string) error
	Check(vaultAddress, code string) (bool, error)
	Status(vaultAddress string) (enabled bool)
}

type totpRecord struct {
	secret  []byte
	enabled bool
}

// TOTPService is the default in-memory MFAService.
type TOTPService struct {
	mu      sync.Mutex
	records map[string]*totpRecord
}

func NewTOTPService() *TOTPService {
	return &TOTPService{records: make(map[string]*totpRecord)}
}

func (s *TOTPService) Setup(vaultAddress string) (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", wrapAPIError(KindInternal, "failed to generate mfa secret", err)
	}
	s.mu.Lock()
	s.records[vaultAddress] = &totpRecord{secret: secret}
	s.mu.Unlock()
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

func (s *TOTPService) VerifySetup(vaultAddress, code string) (bool, error) {
	s.mu.Lock()
	rec, ok := s.records[vaultAddress]
	s.mu.Unlock()
	if !ok {
		return false, newAPIError(KindVaultNotFound, "mfa not set up for this vault")
	}
	if !verifyTOTP(rec.secret, code, time.Now()) {
		return false, nil
	}
	s.mu.Lock()
	rec.enabled = true
	s.mu.Unlock()
	return true, nil
}

func (s *TOTPService) Disable(vaultAddress, code string) error {
	s.mu.Lock()
	rec, ok := s.records[vaultAddress]
	s.mu.Unlock()
	if !ok || !rec.enabled {
		return newAPIError(KindVaultNotFound, "mfa not enabled for this vault")
	}
	if !verifyTOTP(rec.secret, code, time.Now()) {
		return newAPIError(KindInvalidAmount, "invalid mfa code")
	}
	s.mu.Lock()
	rec.enabled = false
	s.mu.Unlock()
	return nil
}

func (s *TOTPService) Check(vaultAddress, code string) (bool, error) {
	s.mu.Lock()
	rec, ok := s.records[vaultAddress]
	s.mu.Unlock()
	if !ok || !rec.enabled {
		return true, nil // MFA not configured, nothing to check
	}
	return verifyTOTP(rec.secret, code, time.Now()), nil
}

func (s *TOTPService) Status(vaultAddress string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[vaultAddress]
	return ok && rec.enabled
}

// verifyTOTP checks code against a 30-second-step, 6-digit TOTP derived
// from secret at now, allowing the adjacent step on either side for clock
// skew.
func verifyTOTP(secret []byte, code string, now time.Time) bool {
	for _, skew := range []int64{0, -1, 1} {
		step := now.Unix()/30 + skew
		if generateTOTP(secret, step) == code {
			return true
		}
	}
	return false
}

func generateTOTP(secret []byte, step int64) string {
	var counter [8]byte
	for i := 7; i >= 0; i-- {
		counter[i] = byte(step & 0xff)
		step >>= 8
	}
	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	sum := mac.Sum(nil)
	offset := sum[len(sum)-1] & 0x0f
	truncated := (uint32(sum[offset])&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])
	code := truncated % 1_000_000
	return zeroPad(int(code), 6)
}

func zeroPad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func (g *Gateway) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VaultAddress string `json:"vault_address"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	secret, err := g.mfa.Setup(body.VaultAddress)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"secret": secret})
}

func (g *Gateway) handleMFAVerifySetup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VaultAddress string `json:"vault_address"`
		Code         string `json:"code"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	ok, err := g.mfa.VerifySetup(body.VaultAddress, body.Code)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}

func (g *Gateway) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VaultAddress string `json:"vault_address"`
		Code         string `json:"code"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	if err := g.mfa.Disable(body.VaultAddress, body.Code); err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"disabled": true})
}

func (g *Gateway) handleMFACheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VaultAddress string `json:"vault_address"`
		Code         string `json:"code"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, newAPIError(KindInvalidAmount, "invalid request body"))
		return
	}
	ok, err := g.mfa.Check(body.VaultAddress, body.Code)
	if err != nil {
		writeError(w, asAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (g *Gateway) handleMFAStatus(w http.ResponseWriter, r *http.Request) {
	vaultAddress := mux.Vars(r)["vault_address"]
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": g.mfa.Status(vaultAddress)})
}
