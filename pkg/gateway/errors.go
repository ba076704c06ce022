package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clearvault/vault/pkg/core"
)

// APIKind is the gateway's own error taxonomy, which sets the HTTP status.
// It classifies gateway-local failures and, through fromCoreError, errors
// returned by the engine. Grounded field-for-field on
// original_source/backend/src/error.rs's VaultError enum.
type APIKind int

const (
	KindDatabase APIKind = iota
	KindLedgerClient
	KindVaultNotFound
	KindInsufficientBalance
	KindInvalidAmount
	KindTransactionFailed
	KindConfig
	KindInternal
	KindUserSignatureRequired
	KindRateLimited
)

// APIError is the one error type gateway handlers return; it is either a
// gateway-local failure or a wrapped *core.VaultError from the engine.
type APIError struct {
	Kind    APIKind
	Message string
	Wrapped error
}

func (e *APIError) Error() string {
	if e.Wrapped != nil {
		return e.Message + ": " + e.Wrapped.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Wrapped }

func newAPIError(kind APIKind, msg string) *APIError {
	return &APIError{Kind: kind, Message: msg}
}

func wrapAPIError(kind APIKind, msg string, err error) *APIError {
	return &APIError{Kind: kind, Message: msg, Wrapped: err}
}

// statusFor maps an APIKind to the exact status code the source's
// IntoResponse match produces.
func statusFor(kind APIKind) int {
	switch kind {
	case KindDatabase:
		return http.StatusInternalServerError
	case KindLedgerClient:
		return http.StatusBadGateway
	case KindVaultNotFound:
		return http.StatusNotFound
	case KindInsufficientBalance:
		return http.StatusBadRequest
	case KindInvalidAmount:
		return http.StatusBadRequest
	case KindTransactionFailed:
		return http.StatusBadRequest
	case KindConfig:
		return http.StatusInternalServerError
	case KindInternal:
		return http.StatusInternalServerError
	case KindUserSignatureRequired:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fromCoreError translates a core.VaultError into the matching gateway
// status: client-caused failures become 400, anything the engine could not
// reach (vault missing) becomes 404.
func fromCoreError(err error) *APIError {
	var ve *core.VaultError
	if errors.As(err, &ve) {
		if ve.Kind == core.ErrKindVaultNotInitialized {
			return wrapAPIError(KindVaultNotFound, "vault not found", err)
		}
		return wrapAPIError(KindInvalidAmount, ve.Kind.String(), err)
	}
	return wrapAPIError(KindInternal, "unexpected error", err)
}

// asAPIError coerces any error into an *APIError, wrapping anything that
// isn't already one as an internal failure — handlers call this instead of
// asserting the concrete type directly.
func asAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return wrapAPIError(KindInternal, "unexpected error", err)
}

// writeError writes the JSON {error, details} body the source's
// IntoResponse produces, at the status matching kind.
func writeError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err.Kind))
	_ = json.NewEncoder(w).Encode(struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}{
		Error:   err.Message,
		Details: err.Error(),
	})
}
