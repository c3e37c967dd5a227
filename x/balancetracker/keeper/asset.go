package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// pull moves amount of the settlement asset from an account into tracker custody.
// Token variants rely on an allowance granted to the tracker address.
func (k Keeper) pull(ctx context.Context, from sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}

	switch k.config.Variant.Asset {
	case types.AssetNative:
		coins := sdk.NewCoins(sdk.NewCoin(k.config.Denom, amount))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, k.name, coins); err != nil {
			return types.ErrInsufficientBalance.Wrapf("pull %s from %s: %s", coins, from, err)
		}
	case types.AssetToken:
		if err := k.tokenKeeper.TransferFrom(ctx, k.config.Token, k.address, from, k.address, amount); err != nil {
			return types.ErrTransferFailed.Wrapf("pull %s from %s: %s", amount, from, err)
		}
	}
	return nil
}

// push moves amount of the settlement asset out of tracker custody.
func (k Keeper) push(ctx context.Context, to sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}

	switch k.config.Variant.Asset {
	case types.AssetNative:
		coins := sdk.NewCoins(sdk.NewCoin(k.config.Denom, amount))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, k.name, to, coins); err != nil {
			return types.ErrTransferFailed.Wrapf("push %s to %s: %s", coins, to, err)
		}
	case types.AssetToken:
		if err := k.tokenKeeper.Transfer(ctx, k.config.Token, k.address, to, amount); err != nil {
			return types.ErrTransferFailed.Wrapf("push %s to %s: %s", amount, to, err)
		}
	}
	return nil
}

// Custody returns the amount of the settlement asset held by the tracker.
func (k Keeper) Custody(ctx context.Context) (math.Int, error) {
	switch k.config.Variant.Asset {
	case types.AssetNative:
		return k.bankKeeper.GetBalance(ctx, k.address, k.config.Denom).Amount, nil
	case types.AssetToken:
		return k.tokenKeeper.BalanceOf(ctx, k.config.Token, k.address)
	default:
		return math.ZeroInt(), types.ErrInvalidConfig.Wrapf("unknown asset %d", k.config.Variant.Asset)
	}
}

// toAsset converts an internal balance into the settlement asset amount.
func (k Keeper) toAsset(ctx context.Context, amount math.Int) (math.Int, error) {
	if !k.config.Variant.IsSubscription() {
		return amount, nil
	}

	sub, found := k.GetSubscription(ctx)
	if !found {
		return math.ZeroInt(), types.ErrSubscriptionNotSet
	}
	return sub.CreditsToAsset(amount), nil
}
