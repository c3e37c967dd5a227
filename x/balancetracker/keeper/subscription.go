package keeper

import (
	"context"
	"encoding/json"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// SetSubscription binds the tracker to a subscription collection and token id.
// The binding is final: once set, every further call fails with OwnerOnly.
func (k Keeper) SetSubscription(ctx context.Context, caller, collection sdk.AccAddress, tokenID uint64, ratio math.LegacyDec) error {
	if !k.config.Variant.IsSubscription() {
		return types.ErrInvalidConfig.Wrapf("%s is not a subscription tracker", k.config.Variant)
	}
	if _, found := k.GetSubscription(ctx); found {
		return types.ErrOwnerOnly.Wrap("subscription already set")
	}
	if err := sharedkeeper.ValidateOwner(k.Owner(ctx), caller); err != nil {
		return err
	}
	if collection.Empty() {
		return types.ErrZeroAddress.Wrap("subscription collection")
	}

	sub := types.Subscription{
		Collection:       collection.String(),
		TokenID:          tokenID,
		TokenCreditRatio: ratio,
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	k.setSubscription(ctx, sub)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSubscriptionSet,
			sdk.NewAttribute(types.AttributeKeyTracker, k.name),
			sdk.NewAttribute(types.AttributeKeyCollection, sub.Collection),
			sdk.NewAttribute(types.AttributeKeyTokenID, strconv.FormatUint(tokenID, 10)),
			sdk.NewAttribute(types.AttributeKeyCreditRatio, ratio.String()),
		),
	)
	return nil
}

// GetSubscription returns the subscription binding, if any.
func (k Keeper) GetSubscription(ctx context.Context) (types.Subscription, bool) {
	bz := k.getStore(ctx).Get(types.SubscriptionKey)
	if len(bz) == 0 {
		return types.Subscription{}, false
	}

	var sub types.Subscription
	if err := json.Unmarshal(bz, &sub); err != nil {
		panic(err)
	}
	return sub, true
}

func (k Keeper) setSubscription(ctx context.Context, sub types.Subscription) {
	bz, err := json.Marshal(sub)
	if err != nil {
		panic(err)
	}
	k.getStore(ctx).Set(types.SubscriptionKey, bz)
}
