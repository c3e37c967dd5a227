package types

import (
	sdkerrors "cosmossdk.io/errors"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

var (
	ErrZeroAddress         = sharederrors.ErrZeroAddress
	ErrZeroValue           = sharederrors.ErrZeroValue
	ErrOverflow            = sharederrors.ErrOverflow
	ErrInsufficientBalance = sharederrors.ErrInsufficientBalance
	ErrUnauthorizedAccount = sharederrors.ErrUnauthorizedAccount
)

// Ledger specific errors
var (
	ErrInsufficientAllowance = sdkerrors.Register(ModuleName, 2, "insufficient allowance")
	ErrUnknownService        = sdkerrors.Register(ModuleName, 3, "unknown service")
	ErrNegativeAmount        = sdkerrors.Register(ModuleName, 4, "negative amount")
)

func init() {
	sharederrors.RegisterRecoverySuggestion(ErrInsufficientAllowance, "Approve the spender for at least the transferred amount before retrying.")
	sharederrors.RegisterRecoverySuggestion(ErrUnknownService, "Register the service before referencing its id.")
}
