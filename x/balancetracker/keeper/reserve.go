package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// CheckAndRecordDeliveryRate validates that requester can cover maxDeliveryRate
// and moves that amount from the requester balance into the reserved pool.
// attached is value sent along with the request; only native direct variants accept it.
func (k Keeper) CheckAndRecordDeliveryRate(
	ctx context.Context,
	caller, requester sdk.AccAddress,
	maxDeliveryRate, attached math.Int,
	extraData []byte,
) error {
	if err := k.checkMarketplace(caller); err != nil {
		return err
	}
	if maxDeliveryRate.IsNil() || !maxDeliveryRate.IsPositive() {
		return types.ErrZeroValue.Wrap("max delivery rate")
	}
	if attached.IsNil() {
		attached = math.ZeroInt()
	}

	err := k.atomic(ctx, func(ctx sdk.Context) error {
		return k.reserve(ctx, requester, maxDeliveryRate, attached)
	})
	if err != nil {
		return err
	}

	k.metrics.Reservations.WithLabelValues(k.name).Inc()
	return nil
}

// reserve must run inside atomic. Balance writes happen before any external call.
func (k Keeper) reserve(ctx sdk.Context, requester sdk.AccAddress, amount, attached math.Int) error {
	if attached.IsNegative() {
		return types.ErrZeroValue.Wrap("attached value")
	}
	if attached.IsPositive() && k.config.Variant != types.VariantFixedPriceNative {
		return types.ErrNoDepositAllowed.Wrapf("%s does not accept attached value", k.config.Variant)
	}

	balance := k.GetRequesterBalance(ctx, requester).Add(attached)
	shortfall := math.ZeroInt()
	if balance.LT(amount) {
		shortfall = amount.Sub(balance)
	}

	var external func() error
	switch {
	case shortfall.IsZero():
		if attached.IsPositive() {
			external = func() error { return k.pull(ctx, requester, attached) }
		}

	case k.config.Variant == types.VariantFixedPriceNative:
		return types.ErrInsufficientBalance.Wrapf("requester balance %s, required %s", balance, amount)

	case k.config.Variant == types.VariantFixedPriceToken:
		allowance, err := k.tokenKeeper.Allowance(ctx, k.config.Token, requester, k.address)
		if err != nil {
			return err
		}
		tokenBalance, err := k.tokenKeeper.BalanceOf(ctx, k.config.Token, requester)
		if err != nil {
			return err
		}
		if allowance.LT(shortfall) || tokenBalance.LT(shortfall) {
			return types.ErrInsufficientBalance.Wrapf("token shortfall %s, allowance %s, balance %s", shortfall, allowance, tokenBalance)
		}
		external = func() error { return k.pull(ctx, requester, shortfall) }

	default:
		sub, found := k.GetSubscription(ctx)
		if !found {
			return types.ErrSubscriptionNotSet
		}
		credits, err := k.subscriptionKeeper.BalanceOf(ctx, sub.CollectionAddress(), requester, sub.TokenID)
		if err != nil {
			return err
		}
		if credits.LT(shortfall) {
			return types.ErrInsufficientBalance.Wrapf("subscription credits %s, required %s", credits, shortfall)
		}
		external = func() error {
			return k.subscriptionKeeper.Burn(ctx, sub.CollectionAddress(), requester, sub.TokenID, shortfall)
		}
	}

	k.setRequesterBalance(ctx, requester, balance.Add(shortfall).Sub(amount))
	k.setReserved(ctx, k.GetReserved(ctx).Add(amount))

	if external != nil {
		if err := external(); err != nil {
			return err
		}
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeReserve,
			sdk.NewAttribute(types.AttributeKeyTracker, k.name),
			sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
			sdk.NewAttribute(types.AttributeKeyReserved, amount.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, shortfall.Add(attached).String()),
		),
	)
	return nil
}
