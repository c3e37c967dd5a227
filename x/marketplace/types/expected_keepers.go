package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// BalanceTracker is the settlement capability the marketplace dispatches to by
// payment type.
type BalanceTracker interface {
	Address() sdk.AccAddress

	CheckAndRecordDeliveryRate(
		ctx context.Context,
		caller, requester sdk.AccAddress,
		maxDeliveryRate, attached math.Int,
		extraData []byte,
	) error

	FinalizeDeliveryRates(
		ctx context.Context,
		caller, mech sdk.AccAddress,
		requesters []sdk.AccAddress,
		actualRates, reservedRates []math.Int,
		feeBps uint64,
	) error

	AdjustMechRequesterBalances(
		ctx context.Context,
		caller, mech, requester sdk.AccAddress,
		reservedRates, actualRates []math.Int,
		feeBps uint64,
	) error
}

// KarmaKeeper defines the expected karma keeper interface
type KarmaKeeper interface {
	ChangeMechKarma(ctx context.Context, caller, mech sdk.AccAddress, delta int64) error
	ChangeRequesterMechKarma(ctx context.Context, caller, requester, mech sdk.AccAddress, delta int64) error
}

// ServiceRegistry resolves services to their controlling accounts.
type ServiceRegistry = sharedkeeper.ServiceRegistryV1
