package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// ProcessPaymentByMultisig pays out the unsettled balance of mech to its backing
// identity. Only that identity may call it.
func (k Keeper) ProcessPaymentByMultisig(ctx context.Context, caller, mech sdk.AccAddress) (math.Int, error) {
	if k.resolver == nil {
		return math.ZeroInt(), types.ErrMechResolverMissing
	}

	var paid math.Int
	err := k.atomic(ctx, func(ctx sdk.Context) error {
		operator, err := k.resolver.MechOperator(ctx, mech)
		if err != nil {
			return err
		}
		if !operator.Equals(caller) {
			return types.ErrUnauthorizedAccount.Wrapf("%s is not the operator of mech %s", caller, mech)
		}

		balance := k.GetMechBalance(ctx, mech)
		if balance.IsZero() {
			return types.ErrZeroValue.Wrapf("mech %s has no balance", mech)
		}
		paid, err = k.toAsset(ctx, balance)
		if err != nil {
			return err
		}
		if paid.IsZero() {
			return types.ErrZeroValue.Wrapf("mech balance %s converts to zero", balance)
		}

		k.setMechBalance(ctx, mech, math.ZeroInt())
		if err := k.push(ctx, operator, paid); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePayout,
				sdk.NewAttribute(types.AttributeKeyTracker, k.name),
				sdk.NewAttribute(types.AttributeKeyMech, mech.String()),
				sdk.NewAttribute(types.AttributeKeyRecipient, operator.String()),
				sdk.NewAttribute(types.AttributeKeyCredits, balance.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, paid.String()),
			),
		)
		return nil
	})
	if err != nil {
		return math.ZeroInt(), err
	}

	k.metrics.Payouts.WithLabelValues(k.name).Inc()
	k.Logger(ctx).Info("mech payout processed", "mech", mech.String(), "amount", paid.String())
	return paid, nil
}

// Drain sweeps collected fees to the configured drainer.
func (k Keeper) Drain(ctx context.Context) (math.Int, error) {
	var drained math.Int
	err := k.atomic(ctx, func(ctx sdk.Context) error {
		fees := k.GetCollectedFees(ctx)
		if fees.IsZero() {
			return types.ErrZeroValue.Wrap("no collected fees")
		}

		var err error
		drained, err = k.toAsset(ctx, fees)
		if err != nil {
			return err
		}
		if drained.IsZero() {
			return types.ErrZeroValue.Wrapf("collected fees %s convert to zero", fees)
		}

		k.setCollectedFees(ctx, math.ZeroInt())
		if err := k.push(ctx, k.config.Drainer, drained); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeDrain,
				sdk.NewAttribute(types.AttributeKeyTracker, k.name),
				sdk.NewAttribute(types.AttributeKeyRecipient, k.config.Drainer.String()),
				sdk.NewAttribute(types.AttributeKeyCredits, fees.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, drained.String()),
			),
		)
		return nil
	})
	if err != nil {
		return math.ZeroInt(), err
	}

	k.metrics.Drains.WithLabelValues(k.name).Inc()
	return drained, nil
}

// Withdraw returns the caller's unused prepaid balance, or unused credits on
// subscription variants.
func (k Keeper) Withdraw(ctx context.Context, requester sdk.AccAddress) (math.Int, error) {
	return k.refund(ctx, requester)
}

// RedeemRequesterCredits hands unused credits back to requester. Anyone may
// trigger it; the credits always go to requester.
func (k Keeper) RedeemRequesterCredits(ctx context.Context, requester sdk.AccAddress) (math.Int, error) {
	return k.refund(ctx, requester)
}

func (k Keeper) refund(ctx context.Context, requester sdk.AccAddress) (math.Int, error) {
	if requester.Empty() {
		return math.ZeroInt(), types.ErrZeroAddress.Wrap("requester")
	}

	var amount math.Int
	err := k.atomic(ctx, func(ctx sdk.Context) error {
		amount = k.GetRequesterBalance(ctx, requester)
		if amount.IsZero() {
			return types.ErrZeroValue.Wrapf("requester %s has no balance", requester)
		}

		k.setRequesterBalance(ctx, requester, math.ZeroInt())

		if k.config.Variant.IsSubscription() {
			sub, found := k.GetSubscription(ctx)
			if !found {
				return types.ErrSubscriptionNotSet
			}
			if err := k.subscriptionKeeper.Mint(ctx, sub.CollectionAddress(), requester, sub.TokenID, amount); err != nil {
				return err
			}
		} else if err := k.push(ctx, requester, amount); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeWithdraw,
				sdk.NewAttribute(types.AttributeKeyTracker, k.name),
				sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return nil
	})
	if err != nil {
		return math.ZeroInt(), err
	}

	k.metrics.Refunds.WithLabelValues(k.name).Inc()
	return amount, nil
}
