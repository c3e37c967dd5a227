package keeper

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/karma/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

func encodeKarma(v int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(v))
	return bz
}

func decodeKarma(bz []byte) int64 {
	if len(bz) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// addKarma adds delta to the counter at key and returns the new value.
func (k Keeper) addKarma(ctx context.Context, key []byte, delta int64) (int64, error) {
	store := k.getStore(ctx)
	current := decodeKarma(store.Get(key))

	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return 0, types.ErrOverflow.Wrapf("karma %d%+d", current, delta)
	}

	next := current + delta
	store.Set(key, encodeKarma(next))
	return next, nil
}

// SetMechMarketplaceStatuses updates the marketplace allow-list. Owner only.
func (k Keeper) SetMechMarketplaceStatuses(ctx context.Context, caller sdk.AccAddress, marketplaces []sdk.AccAddress, statuses []bool) error {
	if err := sharedkeeper.ValidateOwner(k.Owner(ctx), caller); err != nil {
		return err
	}
	if len(marketplaces) == 0 || len(marketplaces) != len(statuses) {
		return types.ErrWrongArrayLength.Wrapf("%d marketplaces, %d statuses", len(marketplaces), len(statuses))
	}
	for _, m := range marketplaces {
		if m.Empty() {
			return types.ErrZeroAddress.Wrap("marketplace")
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	store := k.getStore(ctx)
	for i, m := range marketplaces {
		if statuses[i] {
			store.Set(types.MarketplaceStatusKey(m), []byte{0x01})
		} else {
			store.Delete(types.MarketplaceStatusKey(m))
		}

		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeMarketplaceStatus,
				sdk.NewAttribute(types.AttributeKeyMarketplace, m.String()),
				sdk.NewAttribute(types.AttributeKeyStatus, strconv.FormatBool(statuses[i])),
			),
		)
	}
	return nil
}

// IsMarketplace reports whether the address is an allow-listed marketplace.
func (k Keeper) IsMarketplace(ctx context.Context, marketplace sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.MarketplaceStatusKey(marketplace))
}

func (k Keeper) checkMarketplace(ctx context.Context, caller sdk.AccAddress) error {
	if !k.IsMarketplace(ctx, caller) {
		return types.ErrMarketplaceOnly.Wrapf("%s is not an allow-listed marketplace", caller)
	}
	return nil
}

// ChangeMechKarma adjusts the karma of mech by delta. Marketplace only.
func (k Keeper) ChangeMechKarma(ctx context.Context, caller, mech sdk.AccAddress, delta int64) error {
	if err := k.checkMarketplace(ctx, caller); err != nil {
		return err
	}

	karma, err := k.addKarma(ctx, types.MechKarmaKey(mech), delta)
	if err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeMechKarma,
			sdk.NewAttribute(types.AttributeKeyMech, mech.String()),
			sdk.NewAttribute(types.AttributeKeyDelta, strconv.FormatInt(delta, 10)),
			sdk.NewAttribute(types.AttributeKeyKarma, strconv.FormatInt(karma, 10)),
		),
	)
	return nil
}

// ChangeRequesterMechKarma adjusts the karma a requester records for mech. Marketplace only.
func (k Keeper) ChangeRequesterMechKarma(ctx context.Context, caller, requester, mech sdk.AccAddress, delta int64) error {
	if err := k.checkMarketplace(ctx, caller); err != nil {
		return err
	}

	karma, err := k.addKarma(ctx, types.RequesterMechKarmaKey(requester, mech), delta)
	if err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRequesterMechKarma,
			sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
			sdk.NewAttribute(types.AttributeKeyMech, mech.String()),
			sdk.NewAttribute(types.AttributeKeyDelta, strconv.FormatInt(delta, 10)),
			sdk.NewAttribute(types.AttributeKeyKarma, strconv.FormatInt(karma, 10)),
		),
	)
	return nil
}

// GetMechKarma returns the karma of mech.
func (k Keeper) GetMechKarma(ctx context.Context, mech sdk.AccAddress) int64 {
	return decodeKarma(k.getStore(ctx).Get(types.MechKarmaKey(mech)))
}

// GetRequesterMechKarma returns the karma requester recorded for mech.
func (k Keeper) GetRequesterMechKarma(ctx context.Context, requester, mech sdk.AccAddress) int64 {
	return decodeKarma(k.getStore(ctx).Get(types.RequesterMechKarmaKey(requester, mech)))
}

// IterateMechKarma walks all mech karma counters.
func (k Keeper) IterateMechKarma(ctx context.Context, cb func(mech sdk.AccAddress, karma int64) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.MechKarmaPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(types.MechKarmaPrefix):]
		mech := sdk.AccAddress(key[1 : 1+int(key[0])])
		if cb(mech, decodeKarma(iterator.Value())) {
			return
		}
	}
}

// IterateRequesterMechKarma walks all (requester, mech) karma counters.
func (k Keeper) IterateRequesterMechKarma(ctx context.Context, cb func(requester, mech sdk.AccAddress, karma int64) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.RequesterMechKarmaPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		requester, mech := types.SplitRequesterMechKarmaKey(iterator.Key()[len(types.RequesterMechKarmaPrefix):])
		if cb(requester, mech, decodeKarma(iterator.Value())) {
			return
		}
	}
}

// IterateMarketplaces walks the marketplace allow-list.
func (k Keeper) IterateMarketplaces(ctx context.Context, cb func(marketplace sdk.AccAddress) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.MarketplaceStatusPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(types.MarketplaceStatusPrefix):]
		if cb(sdk.AccAddress(key[1 : 1+int(key[0])])) {
			return
		}
	}
}
