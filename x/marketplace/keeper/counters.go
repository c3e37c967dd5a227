package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// GetCounter returns an activity counter. kind is one of the Counter* constants.
func (k Keeper) GetCounter(ctx context.Context, kind byte, account sdk.AccAddress) uint64 {
	return types.GetUint64FromBytes(k.getStore(ctx).Get(types.CounterKey(kind, account)))
}

func (k Keeper) setCounter(ctx context.Context, kind byte, account sdk.AccAddress, value uint64) {
	k.getStore(ctx).Set(types.CounterKey(kind, account), types.GetUint64Bytes(value))
}

func (k Keeper) incrementCounter(ctx context.Context, kind byte, account sdk.AccAddress) {
	k.setCounter(ctx, kind, account, k.GetCounter(ctx, kind, account)+1)
}

// IterateCounters walks all counters of every kind.
func (k Keeper) IterateCounters(ctx context.Context, cb func(kind byte, account sdk.AccAddress, value uint64) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.CounterPrefix)
	defer iterator.Close()

	offset := len(types.CounterPrefix)
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		if cb(key[offset], addressFromKey(key, offset+1), types.GetUint64FromBytes(iterator.Value())) {
			break
		}
	}
}

// MapRequestCounts returns the number of requests submitted by requester.
func (k Keeper) MapRequestCounts(ctx context.Context, requester sdk.AccAddress) uint64 {
	return k.GetCounter(ctx, types.CounterRequests, requester)
}

// MapDeliveryCounts returns the number of deliveries received by requester.
func (k Keeper) MapDeliveryCounts(ctx context.Context, requester sdk.AccAddress) uint64 {
	return k.GetCounter(ctx, types.CounterDeliveries, requester)
}

// MapMechRequestCounts returns the number of requests naming mech as priority.
func (k Keeper) MapMechRequestCounts(ctx context.Context, mech sdk.AccAddress) uint64 {
	return k.GetCounter(ctx, types.CounterMechRequests, mech)
}

// MapMechDeliveryCounts returns the number of deliveries made by mech.
func (k Keeper) MapMechDeliveryCounts(ctx context.Context, mech sdk.AccAddress) uint64 {
	return k.GetCounter(ctx, types.CounterMechDeliveries, mech)
}

// MapMechServiceDeliveryCounts returns the deliveries made by all mechs of a service owner.
func (k Keeper) MapMechServiceDeliveryCounts(ctx context.Context, serviceOwner sdk.AccAddress) uint64 {
	return k.GetCounter(ctx, types.CounterServiceDeliveries, serviceOwner)
}

// NumTotalRequests returns the number of requests ever recorded.
func (k Keeper) NumTotalRequests(ctx context.Context) uint64 {
	return types.GetUint64FromBytes(k.getStore(ctx).Get(types.TotalRequestsKey))
}

func (k Keeper) setNumTotalRequests(ctx context.Context, n uint64) {
	k.getStore(ctx).Set(types.TotalRequestsKey, types.GetUint64Bytes(n))
}
