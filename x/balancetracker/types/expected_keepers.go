package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// BankKeeper defines the expected bank keeper interface for native custody
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// TokenKeeper is the ERC20-like collaborator used by token variants.
type TokenKeeper = sharedkeeper.TokenV1

// SubscriptionKeeper is the multi-token credit collaborator used by subscription variants.
type SubscriptionKeeper = sharedkeeper.SubscriptionV1

// MechResolver resolves a mech to the account allowed to collect its payments.
type MechResolver interface {
	MechOperator(ctx context.Context, mech sdk.AccAddress) (sdk.AccAddress, error)
}
