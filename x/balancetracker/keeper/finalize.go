package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

// FinalizeDeliveryRates settles a batch of deliveries made by mech. For each entry
// the fee is taken from the actual rate, the rest is credited to the mech and the
// unused part of the reservation is returned to the requester balance.
func (k Keeper) FinalizeDeliveryRates(
	ctx context.Context,
	caller, mech sdk.AccAddress,
	requesters []sdk.AccAddress,
	actualRates, reservedRates []math.Int,
	feeBps uint64,
) error {
	if err := k.checkMarketplace(caller); err != nil {
		return err
	}
	if len(requesters) == 0 || len(requesters) != len(actualRates) || len(requesters) != len(reservedRates) {
		return types.ErrWrongArrayLength.Wrapf("%d requesters, %d actual rates, %d reserved rates",
			len(requesters), len(actualRates), len(reservedRates))
	}

	var totalFee math.Int
	err := k.atomic(ctx, func(ctx sdk.Context) error {
		var err error
		totalFee, err = k.finalize(ctx, mech, requesters, actualRates, reservedRates, feeBps)
		return err
	})
	if err != nil {
		return err
	}

	k.metrics.Finalizations.WithLabelValues(k.name).Add(float64(len(requesters)))
	k.metrics.FeesCollected.WithLabelValues(k.name).Add(amountToFloat(totalFee))
	return nil
}

// AdjustMechRequesterBalances reserves and settles deliveries that never went through
// CheckAndRecordDeliveryRate, such as requests signed off-chain.
func (k Keeper) AdjustMechRequesterBalances(
	ctx context.Context,
	caller, mech, requester sdk.AccAddress,
	reservedRates, actualRates []math.Int,
	feeBps uint64,
) error {
	if err := k.checkMarketplace(caller); err != nil {
		return err
	}
	if len(reservedRates) == 0 || len(reservedRates) != len(actualRates) {
		return types.ErrWrongArrayLength.Wrapf("%d reserved rates, %d actual rates", len(reservedRates), len(actualRates))
	}

	total := math.ZeroInt()
	requesters := make([]sdk.AccAddress, len(reservedRates))
	for i, rate := range reservedRates {
		if rate.IsNil() || !rate.IsPositive() {
			return types.ErrZeroValue.Wrapf("reserved rate %d", i)
		}
		next, err := total.SafeAdd(rate)
		if err != nil {
			return types.ErrOverflow.Wrapf("reserved rate %d", i)
		}
		total = next
		requesters[i] = requester
	}

	var totalFee math.Int
	err := k.atomic(ctx, func(ctx sdk.Context) error {
		if err := k.reserve(ctx, requester, total, math.ZeroInt()); err != nil {
			return err
		}

		var err error
		totalFee, err = k.finalize(ctx, mech, requesters, actualRates, reservedRates, feeBps)
		return err
	})
	if err != nil {
		return err
	}

	k.metrics.Reservations.WithLabelValues(k.name).Inc()
	k.metrics.Finalizations.WithLabelValues(k.name).Add(float64(len(reservedRates)))
	k.metrics.FeesCollected.WithLabelValues(k.name).Add(amountToFloat(totalFee))
	return nil
}

// finalize must run inside atomic.
func (k Keeper) finalize(
	ctx sdk.Context,
	mech sdk.AccAddress,
	requesters []sdk.AccAddress,
	actualRates, reservedRates []math.Int,
	feeBps uint64,
) (math.Int, error) {
	if feeBps > types.MaxFeeBps {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("fee %d bps exceeds %d", feeBps, types.MaxFeeBps)
	}

	mechBalance := k.GetMechBalance(ctx, mech)
	collected := k.GetCollectedFees(ctx)
	reserved := k.GetReserved(ctx)
	totalFee := math.ZeroInt()

	for i, requester := range requesters {
		actual, reservedRate := actualRates[i], reservedRates[i]
		if actual.IsNil() || actual.IsNegative() || reservedRate.IsNil() || reservedRate.IsNegative() {
			return math.ZeroInt(), types.ErrZeroValue.Wrapf("rate %d", i)
		}
		if actual.GT(reservedRate) {
			return math.ZeroInt(), types.ErrOverflow.Wrapf("actual rate %s exceeds reserved %s", actual, reservedRate)
		}
		if reservedRate.GT(reserved) {
			return math.ZeroInt(), types.ErrOverflow.Wrapf("reserved rate %s exceeds outstanding reservations %s", reservedRate, reserved)
		}

		fee := types.CalculateFee(actual, feeBps)
		leftover := reservedRate.Sub(actual)

		mechBalance = mechBalance.Add(actual.Sub(fee))
		collected = collected.Add(fee)
		reserved = reserved.Sub(reservedRate)
		totalFee = totalFee.Add(fee)
		if leftover.IsPositive() {
			k.setRequesterBalance(ctx, requester, k.GetRequesterBalance(ctx, requester).Add(leftover))
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFinalize,
				sdk.NewAttribute(types.AttributeKeyTracker, k.name),
				sdk.NewAttribute(types.AttributeKeyMech, mech.String()),
				sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
				sdk.NewAttribute(types.AttributeKeyActualRate, actual.String()),
				sdk.NewAttribute(types.AttributeKeyFee, fee.String()),
				sdk.NewAttribute(types.AttributeKeyLeftover, leftover.String()),
			),
		)
	}

	k.setMechBalance(ctx, mech, mechBalance)
	k.setCollectedFees(ctx, collected)
	k.setReserved(ctx, reserved)
	return totalFee, nil
}
