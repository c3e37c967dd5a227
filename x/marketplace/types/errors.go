package types

import (
	sdkerrors "cosmossdk.io/errors"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

var (
	ErrZeroAddress                 = sharederrors.ErrZeroAddress
	ErrZeroValue                   = sharederrors.ErrZeroValue
	ErrOutOfBounds                 = sharederrors.ErrOutOfBounds
	ErrOverflow                    = sharederrors.ErrOverflow
	ErrWrongArrayLength            = sharederrors.ErrWrongArrayLength
	ErrInsufficientBalance         = sharederrors.ErrInsufficientBalance
	ErrUnauthorizedAccount         = sharederrors.ErrUnauthorizedAccount
	ErrOwnerOnly                   = sharederrors.ErrOwnerOnly
	ErrMarketplaceOnly             = sharederrors.ErrMarketplaceOnly
	ErrRequestIdNotFound           = sharederrors.ErrRequestIdNotFound
	ErrAlreadyDelivered            = sharederrors.ErrAlreadyDelivered
	ErrPriorityMechResponseTimeout = sharederrors.ErrPriorityMechResponseTimeout
	ErrSignatureNotValidated       = sharederrors.ErrSignatureNotValidated
	ErrReentrancyGuard             = sharederrors.ErrReentrancyGuard
)

// Marketplace specific errors
var (
	ErrWrongPaymentType    = sdkerrors.Register(ModuleName, 2, "wrong payment type")
	ErrRequestIdCollision  = sdkerrors.Register(ModuleName, 3, "request id already exists")
	ErrWrongServiceState   = sdkerrors.Register(ModuleName, 4, "wrong service state")
	ErrUnknownMech         = sdkerrors.Register(ModuleName, 5, "unknown mech")
	ErrUnknownTracker      = sdkerrors.Register(ModuleName, 6, "unknown balance tracker")
	ErrUnknownFactory      = sdkerrors.Register(ModuleName, 7, "unknown mech factory")
	ErrMechAlreadyExists   = sdkerrors.Register(ModuleName, 8, "mech already exists")
	ErrUndeliveredMismatch = sdkerrors.Register(ModuleName, 9, "undelivered index mismatch")
)

func init() {
	sharederrors.RegisterRecoverySuggestion(ErrWrongPaymentType, "The payment type must match the priority mech's payment type. Query the mech record for its tag.")
	sharederrors.RegisterRecoverySuggestion(ErrRequestIdCollision, "A request with the same inputs and nonce exists. Query the requester nonce and resubmit.")
	sharederrors.RegisterRecoverySuggestion(ErrWrongServiceState, "The service does not exist or is not deployed in the service registry.")
	sharederrors.RegisterRecoverySuggestion(ErrUnknownTracker, "Bind the payment type to a registered balance tracker with setPaymentTypeBalanceTrackers.")
	sharederrors.RegisterRecoverySuggestion(ErrUnknownFactory, "The factory address is not known to this marketplace build.")
}
