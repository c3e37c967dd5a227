package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// Deposit prepays amount into the payer's own requester balance.
func (k Keeper) Deposit(ctx context.Context, payer sdk.AccAddress, amount math.Int) error {
	return k.DepositFor(ctx, payer, payer, amount)
}

// DepositFor prepays amount from payer into account's requester balance.
// Subscription variants are funded with credits and reject deposits.
func (k Keeper) DepositFor(ctx context.Context, payer, account sdk.AccAddress, amount math.Int) error {
	if k.config.Variant.IsSubscription() {
		return types.ErrNoDepositAllowed.Wrap(k.config.Variant.String())
	}
	if payer.Empty() || account.Empty() {
		return types.ErrZeroAddress.Wrap("depositor")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrZeroValue.Wrap("deposit amount")
	}

	err := k.atomic(ctx, func(ctx sdk.Context) error {
		k.setRequesterBalance(ctx, account, k.GetRequesterBalance(ctx, account).Add(amount))

		if err := k.pull(ctx, payer, amount); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeDeposit,
				sdk.NewAttribute(types.AttributeKeyTracker, k.name),
				sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			),
		)
		return nil
	})
	if err != nil {
		return err
	}

	k.metrics.Deposits.WithLabelValues(k.name).Inc()
	return nil
}
