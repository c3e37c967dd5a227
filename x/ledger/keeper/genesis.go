package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/ledger/types"
)

// InitGenesis initializes the ledger module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	for _, b := range data.TokenBalances {
		k.setInt(ctx, types.TokenBalanceKey(sdk.MustAccAddressFromBech32(b.Token), sdk.MustAccAddressFromBech32(b.Owner)), b.Balance)
	}
	for _, a := range data.Allowances {
		key := types.AllowanceKey(sdk.MustAccAddressFromBech32(a.Token), sdk.MustAccAddressFromBech32(a.Owner), sdk.MustAccAddressFromBech32(a.Spender))
		k.setInt(ctx, key, a.Amount)
	}
	for _, c := range data.CreditBalances {
		key := types.SubscriptionBalanceKey(sdk.MustAccAddressFromBech32(c.Collection), sdk.MustAccAddressFromBech32(c.Owner), c.TokenID)
		k.setInt(ctx, key, c.Balance)
	}

	store := k.getStore(ctx)
	for _, s := range data.Services {
		store.Set(types.ServiceOwnerKey(s.ID), sdk.MustAccAddressFromBech32(s.Owner))
		if s.Deployed {
			store.Set(types.ServiceDeployedKey(s.ID), []byte{1})
		}
	}
	store.Set(types.NextServiceIDKey, sdk.Uint64ToBigEndian(data.NextServiceID))
	return nil
}

// ExportGenesis returns the ledger module's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := types.DefaultGenesis()

	k.IterateTokenBalances(ctx, func(token, owner sdk.AccAddress, balance math.Int) bool {
		gs.TokenBalances = append(gs.TokenBalances, types.TokenBalance{Token: token.String(), Owner: owner.String(), Balance: balance})
		return false
	})
	k.IterateAllowances(ctx, func(token, owner, spender sdk.AccAddress, amount math.Int) bool {
		gs.Allowances = append(gs.Allowances, types.Allowance{Token: token.String(), Owner: owner.String(), Spender: spender.String(), Amount: amount})
		return false
	})
	k.Subscriptions().IterateCredits(ctx, func(collection, owner sdk.AccAddress, tokenID uint64, balance math.Int) bool {
		gs.CreditBalances = append(gs.CreditBalances, types.CreditBalance{
			Collection: collection.String(),
			Owner:      owner.String(),
			TokenID:    tokenID,
			Balance:    balance,
		})
		return false
	})
	k.IterateServices(ctx, func(s types.Service) bool {
		gs.Services = append(gs.Services, s)
		return false
	})
	gs.NextServiceID = k.nextServiceID(ctx)
	return gs
}
