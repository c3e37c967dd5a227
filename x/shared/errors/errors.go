// Package errors holds the error taxonomy shared by the karma, balance tracker and
// marketplace modules. Module packages re-export these sentinels from their types
// package so callers can match them with errors.Is regardless of which module failed.
package errors

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// Codespace is the codespace shared by all mech marketplace modules.
const Codespace = "mech"

var (
	// Argument errors
	ErrZeroAddress = sdkerrors.Register(Codespace, 2, "zero address")
	ErrZeroValue   = sdkerrors.Register(Codespace, 3, "zero value")
	ErrOutOfBounds = sdkerrors.Register(Codespace, 4, "value out of bounds")
	ErrOverflow    = sdkerrors.Register(Codespace, 5, "value overflow")

	ErrWrongArrayLength = sdkerrors.Register(Codespace, 6, "wrong array length")

	// Funding errors
	ErrInsufficientBalance = sdkerrors.Register(Codespace, 10, "insufficient balance")

	// Caller identity errors
	ErrUnauthorizedAccount = sdkerrors.Register(Codespace, 20, "unauthorized account")
	ErrOwnerOnly           = sdkerrors.Register(Codespace, 21, "owner only")
	ErrMarketplaceOnly     = sdkerrors.Register(Codespace, 22, "marketplace only")

	// Request lifecycle errors
	ErrRequestIdNotFound           = sdkerrors.Register(Codespace, 30, "request id not found")
	ErrAlreadyDelivered            = sdkerrors.Register(Codespace, 31, "request already delivered")
	ErrPriorityMechResponseTimeout = sdkerrors.Register(Codespace, 32, "priority mech response timeout has not elapsed")
	ErrSignatureNotValidated       = sdkerrors.Register(Codespace, 33, "signature not validated")

	// Execution errors
	ErrReentrancyGuard = sdkerrors.Register(Codespace, 40, "reentrant call")
)

// ErrorWithRecovery wraps an error with an operator-facing recovery suggestion.
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithRecovery) Unwrap() error {
	return e.Err
}

// RecoverySuggestions maps each shared sentinel to actionable guidance.
var RecoverySuggestions = map[error]string{
	ErrZeroAddress:      "A required address was empty. Supply a valid bech32 address.",
	ErrZeroValue:        "A required amount, tag or payload was zero or empty. Check every numeric argument and the request payload.",
	ErrOutOfBounds:      "A timeout or rate is outside the configured bounds. Query marketplace params for min/max response timeout and the mech's delivery rate.",
	ErrOverflow:         "A value exceeds its fixed-width encoding or a delivery rate exceeds the reserved maximum. Lower the value or the reported rate.",
	ErrWrongArrayLength: "Batched arguments must have matching, non-zero lengths.",

	ErrInsufficientBalance: "Deposit funds, attach more value or top up subscription credits so the balance covers the maximum delivery rate.",

	ErrUnauthorizedAccount: "The caller is not authorized for this mech or factory. Check that the mech is active and that the caller owns the backing service.",
	ErrOwnerOnly:           "Only the configured owner may perform this action.",
	ErrMarketplaceOnly:     "Only an allow-listed marketplace may perform this action.",

	ErrRequestIdNotFound:           "The request id is unknown. Recompute it with getRequestId and the requester nonce used at submission.",
	ErrAlreadyDelivered:            "The request was already delivered. No action is required.",
	ErrPriorityMechResponseTimeout: "Only the priority mech may deliver before the response timeout. Wait for the deadline or let the priority mech deliver.",
	ErrSignatureNotValidated:       "Signatures are bound to request ids in order. Keep the batch in signing order and check the requester key or approved hash.",

	ErrReentrancyGuard: "A guarded operation was re-entered. Retry the call as a separate transaction.",
}

// WrapWithRecovery wraps err with a formatted message and, when one is known, a recovery suggestion.
func WrapWithRecovery(err error, msg string, args ...interface{}) error {
	wrapped := sdkerrors.Wrapf(err, msg, args...)

	if suggestion, ok := RecoverySuggestions[err]; ok {
		return &ErrorWithRecovery{
			Err:      wrapped,
			Recovery: suggestion,
		}
	}

	return wrapped
}

// GetRecoverySuggestion returns the recovery suggestion registered for the root cause of err.
func GetRecoverySuggestion(err error) string {
	var withRecovery *ErrorWithRecovery
	if errors.As(err, &withRecovery) {
		return withRecovery.Recovery
	}

	for sentinel, suggestion := range RecoverySuggestions {
		if errors.Is(err, sentinel) {
			return suggestion
		}
	}

	return "No recovery suggestion available. Check error message for details."
}

// RegisterRecoverySuggestion adds guidance for a module-specific sentinel.
func RegisterRecoverySuggestion(err error, suggestion string) {
	if _, ok := RecoverySuggestions[err]; !ok {
		RecoverySuggestions[err] = suggestion
	}
}
