package core

import "fmt"

// ErrorKind is the closed taxonomy of core-level failures (spec.md §7).
// Every one aborts its operation before any mutation or token transfer —
// VaultError carries no partial-effect state.
type ErrorKind int

const (
	ErrKindInvalidAmount ErrorKind = iota
	ErrKindInsufficientBalance
	ErrKindInsufficientAvailableBalance
	ErrKindNumericalOverflow
	ErrKindUnauthorizedProgram
	ErrKindInvalidAuthority
	ErrKindVaultNotInitialized
	ErrKindInvalidTokenAccount
	ErrKindMaxSignersReached
	ErrKindMaxDelegatedUsersReached
	ErrKindMaxWhitelistReached
	ErrKindMaxAuthorizedProgramsReached
	ErrKindSignerAlreadyAuthorized
	ErrKindUserAlreadyDelegated
	ErrKindAddressAlreadyWhitelisted
	ErrKindProgramAlreadyAuthorized
	ErrKindUserNotDelegated
	ErrKindAddressNotWhitelisted
	ErrKindProgramNotAuthorized
	ErrKindInvalidMultiSigThreshold
	ErrKindFeatureNotEnabled
	ErrKindPendingWithdrawalExists
	ErrKindNoPendingWithdrawal
	ErrKindTimeLockNotExpired
	ErrKindCannotCancelExpiredWithdrawal
	ErrKindRateLimitExceeded
	ErrKindInvalidRateLimitConfig
	ErrKindRecipientNotWhitelisted
	ErrKindBatchLimitExceeded
	ErrKindInvalidBatchOperation
	ErrKindOperationNotAllowed
)

var kindNames = map[ErrorKind]string{
	ErrKindInvalidAmount:                 "InvalidAmount",
	ErrKindInsufficientBalance:           "InsufficientBalance",
	ErrKindInsufficientAvailableBalance:  "InsufficientAvailableBalance",
	ErrKindNumericalOverflow:             "NumericalOverflow",
	ErrKindUnauthorizedProgram:           "UnauthorizedProgram",
	ErrKindInvalidAuthority:              "InvalidAuthority",
	ErrKindVaultNotInitialized:           "VaultNotInitialized",
	ErrKindInvalidTokenAccount:           "InvalidTokenAccount",
	ErrKindMaxSignersReached:             "MaxSignersReached",
	ErrKindMaxDelegatedUsersReached:      "MaxDelegatedUsersReached",
	ErrKindMaxWhitelistReached:           "MaxWhitelistReached",
	ErrKindMaxAuthorizedProgramsReached:  "MaxAuthorizedProgramsReached",
	ErrKindSignerAlreadyAuthorized:       "SignerAlreadyAuthorized",
	ErrKindUserAlreadyDelegated:          "UserAlreadyDelegated",
	ErrKindAddressAlreadyWhitelisted:     "AddressAlreadyWhitelisted",
	ErrKindProgramAlreadyAuthorized:      "ProgramAlreadyAuthorized",
	ErrKindUserNotDelegated:              "UserNotDelegated",
	ErrKindAddressNotWhitelisted:         "AddressNotWhitelisted",
	ErrKindProgramNotAuthorized:          "ProgramNotAuthorized",
	ErrKindInvalidMultiSigThreshold:      "InvalidMultiSigThreshold",
	ErrKindFeatureNotEnabled:             "FeatureNotEnabled",
	ErrKindPendingWithdrawalExists:       "PendingWithdrawalExists",
	ErrKindNoPendingWithdrawal:           "NoPendingWithdrawal",
	ErrKindTimeLockNotExpired:            "TimeLockNotExpired",
	ErrKindCannotCancelExpiredWithdrawal: "CannotCancelExpiredWithdrawal",
	ErrKindRateLimitExceeded:             "RateLimitExceeded",
	ErrKindInvalidRateLimitConfig:        "InvalidRateLimitConfig",
	ErrKindRecipientNotWhitelisted:       "RecipientNotWhitelisted",
	ErrKindBatchLimitExceeded:            "BatchLimitExceeded",
	ErrKindInvalidBatchOperation:         "InvalidBatchOperation",
	ErrKindOperationNotAllowed:           "OperationNotAllowed",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// VaultError is the one error type the core ever returns.
type VaultError struct {
	Kind ErrorKind
	Msg  string
}

func (e *VaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets callers write errors.Is(err, core.ErrInsufficientBalance) against
// the sentinel values below.
func (e *VaultError) Is(target error) bool {
	t, ok := target.(*VaultError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, msg string) *VaultError {
	return &VaultError{Kind: kind, Msg: msg}
}

// Sentinel values for errors.Is comparisons; only Kind is compared.
var (
	ErrInvalidAmount                 = newErr(ErrKindInvalidAmount, "")
	ErrInsufficientBalance           = newErr(ErrKindInsufficientBalance, "")
	ErrInsufficientAvailableBalance  = newErr(ErrKindInsufficientAvailableBalance, "")
	ErrNumericalOverflow             = newErr(ErrKindNumericalOverflow, "")
	ErrUnauthorizedProgram           = newErr(ErrKindUnauthorizedProgram, "")
	ErrInvalidAuthority              = newErr(ErrKindInvalidAuthority, "")
	ErrVaultNotInitialized           = newErr(ErrKindVaultNotInitialized, "")
	ErrInvalidTokenAccount           = newErr(ErrKindInvalidTokenAccount, "")
	ErrMaxSignersReached             = newErr(ErrKindMaxSignersReached, "")
	ErrMaxDelegatedUsersReached      = newErr(ErrKindMaxDelegatedUsersReached, "")
	ErrMaxWhitelistReached           = newErr(ErrKindMaxWhitelistReached, "")
	ErrMaxAuthorizedProgramsReached  = newErr(ErrKindMaxAuthorizedProgramsReached, "")
	ErrSignerAlreadyAuthorized       = newErr(ErrKindSignerAlreadyAuthorized, "")
	ErrUserAlreadyDelegated          = newErr(ErrKindUserAlreadyDelegated, "")
	ErrAddressAlreadyWhitelisted     = newErr(ErrKindAddressAlreadyWhitelisted, "")
	ErrProgramAlreadyAuthorized      = newErr(ErrKindProgramAlreadyAuthorized, "")
	ErrUserNotDelegated              = newErr(ErrKindUserNotDelegated, "")
	ErrAddressNotWhitelisted         = newErr(ErrKindAddressNotWhitelisted, "")
	ErrProgramNotAuthorized          = newErr(ErrKindProgramNotAuthorized, "")
	ErrInvalidMultiSigThreshold      = newErr(ErrKindInvalidMultiSigThreshold, "")
	ErrFeatureNotEnabled             = newErr(ErrKindFeatureNotEnabled, "")
	ErrPendingWithdrawalExists       = newErr(ErrKindPendingWithdrawalExists, "")
	ErrNoPendingWithdrawal           = newErr(ErrKindNoPendingWithdrawal, "")
	ErrTimeLockNotExpired            = newErr(ErrKindTimeLockNotExpired, "")
	ErrCannotCancelExpiredWithdrawal = newErr(ErrKindCannotCancelExpiredWithdrawal, "")
	ErrRateLimitExceeded             = newErr(ErrKindRateLimitExceeded, "")
	ErrInvalidRateLimitConfig        = newErr(ErrKindInvalidRateLimitConfig, "")
	ErrRecipientNotWhitelisted       = newErr(ErrKindRecipientNotWhitelisted, "")
	ErrBatchLimitExceeded            = newErr(ErrKindBatchLimitExceeded, "")
	ErrInvalidBatchOperation         = newErr(ErrKindInvalidBatchOperation, "")
	ErrOperationNotAllowed           = newErr(ErrKindOperationNotAllowed, "")
)
