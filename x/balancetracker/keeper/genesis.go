package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// InitGenesis initializes the tracker state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Subscription != nil && !k.config.Variant.IsSubscription() {
		return fmt.Errorf("%s cannot hold a subscription binding", k.config.Variant)
	}

	if data.Owner != "" {
		k.owners.Set(ctx, sdk.MustAccAddressFromBech32(data.Owner))
	}
	for _, b := range data.MechBalances {
		k.setMechBalance(ctx, sdk.MustAccAddressFromBech32(b.Address), b.Amount)
	}
	for _, b := range data.RequesterBalances {
		k.setRequesterBalance(ctx, sdk.MustAccAddressFromBech32(b.Address), b.Amount)
	}
	k.setCollectedFees(ctx, data.CollectedFees)
	k.setReserved(ctx, data.Reserved)
	if data.Subscription != nil {
		k.setSubscription(ctx, *data.Subscription)
	}

	return nil
}

// ExportGenesis returns the tracker's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := types.DefaultGenesis()
	gs.Owner = k.Owner(ctx).String()

	k.IterateMechBalances(ctx, func(mech sdk.AccAddress, amount math.Int) bool {
		gs.MechBalances = append(gs.MechBalances, types.AccountBalance{Address: mech.String(), Amount: amount})
		return false
	})
	k.IterateRequesterBalances(ctx, func(requester sdk.AccAddress, amount math.Int) bool {
		gs.RequesterBalances = append(gs.RequesterBalances, types.AccountBalance{Address: requester.String(), Amount: amount})
		return false
	})
	gs.CollectedFees = k.GetCollectedFees(ctx)
	gs.Reserved = k.GetReserved(ctx)
	if sub, found := k.GetSubscription(ctx); found {
		gs.Subscription = &sub
	}

	return gs
}
