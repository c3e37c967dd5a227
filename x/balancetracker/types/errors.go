package types

import (
	sdkerrors "cosmossdk.io/errors"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

var (
	ErrZeroAddress         = sharederrors.ErrZeroAddress
	ErrZeroValue           = sharederrors.ErrZeroValue
	ErrOverflow            = sharederrors.ErrOverflow
	ErrWrongArrayLength    = sharederrors.ErrWrongArrayLength
	ErrInsufficientBalance = sharederrors.ErrInsufficientBalance
	ErrUnauthorizedAccount = sharederrors.ErrUnauthorizedAccount
	ErrOwnerOnly           = sharederrors.ErrOwnerOnly
	ErrMarketplaceOnly     = sharederrors.ErrMarketplaceOnly
	ErrReentrancyGuard     = sharederrors.ErrReentrancyGuard
)

// Balance tracker specific errors
var (
	ErrNoDepositAllowed    = sdkerrors.Register(ModuleName, 2, "deposit not allowed for this payment variant")
	ErrSubscriptionNotSet  = sdkerrors.Register(ModuleName, 3, "subscription not set")
	ErrTransferFailed      = sdkerrors.Register(ModuleName, 4, "asset transfer failed")
	ErrInvalidConfig       = sdkerrors.Register(ModuleName, 5, "invalid balance tracker config")
	ErrMechResolverMissing = sdkerrors.Register(ModuleName, 6, "mech resolver not set")
)

func init() {
	sharederrors.RegisterRecoverySuggestion(ErrNoDepositAllowed, "Subscription trackers are funded with subscription credits and token trackers pull allowance. Do not attach value.")
	sharederrors.RegisterRecoverySuggestion(ErrSubscriptionNotSet, "The tracker owner must call setSubscription before subscription requests are accepted.")
	sharederrors.RegisterRecoverySuggestion(ErrTransferFailed, "Check the payer balance, token allowance and module account permissions.")
}
