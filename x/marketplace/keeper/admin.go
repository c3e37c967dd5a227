package keeper

import (
	"context"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// Owner returns the current marketplace owner.
func (k Keeper) Owner(ctx context.Context) sdk.AccAddress {
	return k.owners.Get(ctx)
}

// ChangeOwner transfers ownership of the marketplace.
func (k Keeper) ChangeOwner(ctx context.Context, caller, newOwner sdk.AccAddress) error {
	if err := k.owners.Change(ctx, caller, newOwner); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOwnerChanged,
			sdk.NewAttribute(types.AttributeKeyOwner, newOwner.String()),
		),
	)
	return nil
}

// SetMechFactoryStatuses enables or disables mech factories. Owner only.
// Disabling a factory deactivates every mech it created.
func (k Keeper) SetMechFactoryStatuses(ctx context.Context, caller sdk.AccAddress, factories []sdk.AccAddress, statuses []bool) error {
	if err := sharedkeeper.ValidateOwner(k.Owner(ctx), caller); err != nil {
		return err
	}
	if len(factories) == 0 || len(factories) != len(statuses) {
		return types.ErrWrongArrayLength.Wrapf("%d factories, %d statuses", len(factories), len(statuses))
	}

	for i, factory := range factories {
		if factory.Empty() {
			return types.ErrZeroAddress.Wrapf("factory %d", i)
		}
		if _, known := k.factories[factory.String()]; !known {
			return types.ErrUnknownFactory.Wrap(factory.String())
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for i, factory := range factories {
		k.setFactoryStatus(ctx, factory, statuses[i])
		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeFactoryStatus,
				sdk.NewAttribute(types.AttributeKeyFactory, factory.String()),
				sdk.NewAttribute(types.AttributeKeyStatus, strconv.FormatBool(statuses[i])),
			),
		)
	}
	return nil
}

// IsFactoryActive reports whether factory may create mechs and back live mechs.
func (k Keeper) IsFactoryActive(ctx context.Context, factory sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.FactoryStatusKey(factory))
}

func (k Keeper) setFactoryStatus(ctx context.Context, factory sdk.AccAddress, active bool) {
	store := k.getStore(ctx)
	if active {
		store.Set(types.FactoryStatusKey(factory), []byte{1})
		return
	}
	store.Delete(types.FactoryStatusKey(factory))
}

// IterateFactoryStatuses iterates over active factories.
func (k Keeper) IterateFactoryStatuses(ctx context.Context, cb func(factory sdk.AccAddress) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.FactoryStatusPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		if cb(addressFromKey(iterator.Key(), len(types.FactoryStatusPrefix))) {
			break
		}
	}
}

// SetPaymentTypeBalanceTrackers binds payment types to balance trackers. Owner only.
func (k Keeper) SetPaymentTypeBalanceTrackers(ctx context.Context, caller sdk.AccAddress, paymentTypes []types.PaymentType, trackers []sdk.AccAddress) error {
	if err := sharedkeeper.ValidateOwner(k.Owner(ctx), caller); err != nil {
		return err
	}
	if len(paymentTypes) == 0 || len(paymentTypes) != len(trackers) {
		return types.ErrWrongArrayLength.Wrapf("%d payment types, %d trackers", len(paymentTypes), len(trackers))
	}

	for i := range paymentTypes {
		if paymentTypes[i].IsZero() {
			return types.ErrZeroValue.Wrapf("payment type %d", i)
		}
		if trackers[i].Empty() {
			return types.ErrZeroAddress.Wrapf("tracker %d", i)
		}
		if _, known := k.trackers[trackers[i].String()]; !known {
			return types.ErrUnknownTracker.Wrap(trackers[i].String())
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for i, pt := range paymentTypes {
		k.getStore(ctx).Set(types.PaymentTypeTrackerKey(pt), trackers[i])
		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeBalanceTrackerSet,
				sdk.NewAttribute(types.AttributeKeyPaymentType, pt.String()),
				sdk.NewAttribute(types.AttributeKeyTracker, trackers[i].String()),
			),
		)
	}
	return nil
}

// GetPaymentTypeBalanceTracker returns the tracker address bound to pt.
func (k Keeper) GetPaymentTypeBalanceTracker(ctx context.Context, pt types.PaymentType) (sdk.AccAddress, bool) {
	bz := k.getStore(ctx).Get(types.PaymentTypeTrackerKey(pt))
	if len(bz) == 0 {
		return nil, false
	}
	return sdk.AccAddress(bz), true
}

// balanceTracker resolves the tracker implementation for pt.
func (k Keeper) balanceTracker(ctx context.Context, pt types.PaymentType) (types.BalanceTracker, error) {
	addr, found := k.GetPaymentTypeBalanceTracker(ctx, pt)
	if !found {
		return nil, types.ErrZeroAddress.Wrapf("no balance tracker for payment type %s", pt)
	}
	tracker, known := k.trackers[addr.String()]
	if !known {
		return nil, types.ErrUnknownTracker.Wrap(addr.String())
	}
	return tracker, nil
}

// IteratePaymentTypeBalanceTrackers iterates over payment type bindings.
func (k Keeper) IteratePaymentTypeBalanceTrackers(ctx context.Context, cb func(pt types.PaymentType, tracker sdk.AccAddress) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.PaymentTypeTrackerPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pt types.PaymentType
		copy(pt[:], iterator.Key()[len(types.PaymentTypeTrackerPrefix):])
		if cb(pt, sdk.AccAddress(iterator.Value())) {
			break
		}
	}
}
