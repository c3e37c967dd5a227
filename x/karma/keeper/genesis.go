package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/karma/types"
)

// InitGenesis initializes the karma module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	if data.Owner != "" {
		k.owners.Set(ctx, sdk.MustAccAddressFromBech32(data.Owner))
	}

	store := k.getStore(ctx)
	for _, m := range data.Marketplaces {
		store.Set(types.MarketplaceStatusKey(sdk.MustAccAddressFromBech32(m)), []byte{0x01})
	}
	for _, mk := range data.MechKarma {
		store.Set(types.MechKarmaKey(sdk.MustAccAddressFromBech32(mk.Mech)), encodeKarma(mk.Karma))
	}
	for _, rk := range data.RequesterMechKarma {
		key := types.RequesterMechKarmaKey(sdk.MustAccAddressFromBech32(rk.Requester), sdk.MustAccAddressFromBech32(rk.Mech))
		store.Set(key, encodeKarma(rk.Karma))
	}

	k.Logger(ctx).Info("karma genesis initialized",
		"marketplaces", len(data.Marketplaces),
		"mechs", len(data.MechKarma),
	)
	return nil
}

// ExportGenesis returns the karma module's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	gs.Owner = k.Owner(ctx).String()

	k.IterateMarketplaces(ctx, func(m sdk.AccAddress) bool {
		gs.Marketplaces = append(gs.Marketplaces, m.String())
		return false
	})
	k.IterateMechKarma(ctx, func(mech sdk.AccAddress, karma int64) bool {
		gs.MechKarma = append(gs.MechKarma, types.MechKarma{Mech: mech.String(), Karma: karma})
		return false
	})
	k.IterateRequesterMechKarma(ctx, func(requester, mech sdk.AccAddress, karma int64) bool {
		gs.RequesterMechKarma = append(gs.RequesterMechKarma, types.RequesterMechKarma{
			Requester: requester.String(),
			Mech:      mech.String(),
			Karma:     karma,
		})
		return false
	})

	if err := gs.Validate(); err != nil {
		return nil, fmt.Errorf("exported karma genesis is invalid: %w", err)
	}
	return gs, nil
}
