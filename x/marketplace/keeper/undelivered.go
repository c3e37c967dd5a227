package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// The undelivered set of a mech is a dense slot arena plus an id->slot index.
// Removal moves the last slot into the hole, so add and remove are O(1).

// NumUndeliveredRequests returns the number of pending requests naming mech as priority.
func (k Keeper) NumUndeliveredRequests(ctx context.Context, mech sdk.AccAddress) uint64 {
	return types.GetUint64FromBytes(k.getStore(ctx).Get(types.UndeliveredCountKey(mech)))
}

func (k Keeper) setNumUndelivered(ctx context.Context, mech sdk.AccAddress, n uint64) {
	store := k.getStore(ctx)
	if n == 0 {
		store.Delete(types.UndeliveredCountKey(mech))
		return
	}
	store.Set(types.UndeliveredCountKey(mech), types.GetUint64Bytes(n))
}

func (k Keeper) undeliveredAt(ctx context.Context, mech sdk.AccAddress, slot uint64) types.RequestID {
	var id types.RequestID
	copy(id[:], k.getStore(ctx).Get(types.UndeliveredSlotKey(mech, slot)))
	return id
}

func (k Keeper) addUndelivered(ctx context.Context, mech sdk.AccAddress, id types.RequestID) {
	store := k.getStore(ctx)
	slot := k.NumUndeliveredRequests(ctx, mech)

	store.Set(types.UndeliveredSlotKey(mech, slot), id[:])
	store.Set(types.UndeliveredIndexKey(mech, id), types.GetUint64Bytes(slot))
	k.setNumUndelivered(ctx, mech, slot+1)
}

func (k Keeper) removeUndelivered(ctx context.Context, mech sdk.AccAddress, id types.RequestID) error {
	store := k.getStore(ctx)
	bz := store.Get(types.UndeliveredIndexKey(mech, id))
	if bz == nil {
		return types.ErrUndeliveredMismatch.Wrapf("request %s is not pending for mech %s", id, mech)
	}

	slot := types.GetUint64FromBytes(bz)
	last := k.NumUndeliveredRequests(ctx, mech) - 1
	if slot != last {
		moved := k.undeliveredAt(ctx, mech, last)
		store.Set(types.UndeliveredSlotKey(mech, slot), moved[:])
		store.Set(types.UndeliveredIndexKey(mech, moved), types.GetUint64Bytes(slot))
	}

	store.Delete(types.UndeliveredSlotKey(mech, last))
	store.Delete(types.UndeliveredIndexKey(mech, id))
	k.setNumUndelivered(ctx, mech, last)
	return nil
}

// GetUndeliveredRequestIds pages over the pending requests of mech, most recent
// slot first. A zero size selects every remaining request.
func (k Keeper) GetUndeliveredRequestIds(ctx context.Context, mech sdk.AccAddress, size, offset uint64) ([]types.RequestID, error) {
	count := k.NumUndeliveredRequests(ctx, mech)
	if size == 0 {
		size = count
	}
	if offset > count || size > count-offset {
		return nil, types.ErrOverflow.Wrapf("size %d and offset %d exceed %d undelivered requests", size, offset, count)
	}

	ids := make([]types.RequestID, 0, size)
	for i := uint64(0); i < size; i++ {
		ids = append(ids, k.undeliveredAt(ctx, mech, count-1-offset-i))
	}
	return ids, nil
}

// iterateUndelivered walks the slots of mech in arena order.
func (k Keeper) iterateUndelivered(ctx context.Context, mech sdk.AccAddress, cb func(slot uint64, id types.RequestID) (stop bool)) {
	prefix := types.UndeliveredSlotMechPrefix(mech)
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var id types.RequestID
		copy(id[:], iterator.Value())
		if cb(types.GetUint64FromBytes(iterator.Key()[len(prefix):]), id) {
			break
		}
	}
}
