package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// GetParams returns the marketplace parameters, or the defaults if unset.
func (k Keeper) GetParams(ctx context.Context) types.Params {
	var params types.Params
	if !k.getJSON(ctx, types.ParamsKey, &params) {
		return types.DefaultParams()
	}
	return params
}

// SetParams stores validated parameters without an owner check.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.setJSON(ctx, types.ParamsKey, params)
	return nil
}

// ChangeMarketplaceParams updates fee and response timeout bounds. Owner only.
func (k Keeper) ChangeMarketplaceParams(ctx context.Context, caller sdk.AccAddress, fee, minResponseTimeout, maxResponseTimeout uint64) error {
	if err := sharedkeeper.ValidateOwner(k.Owner(ctx), caller); err != nil {
		return err
	}

	params := types.NewParams(fee, minResponseTimeout, maxResponseTimeout)
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeParamsChanged,
			sdk.NewAttribute(types.AttributeKeyFee, strconv.FormatUint(fee, 10)),
			sdk.NewAttribute(types.AttributeKeyMinTimeout, strconv.FormatUint(minResponseTimeout, 10)),
			sdk.NewAttribute(types.AttributeKeyMaxTimeout, strconv.FormatUint(maxResponseTimeout, 10)),
		),
	)
	return nil
}
