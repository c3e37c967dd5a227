package keeper

import (
	"context"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
)

func (k Keeper) getInt(ctx context.Context, key []byte) math.Int {
	bz := k.getStore(ctx).Get(key)
	if len(bz) == 0 {
		return math.ZeroInt()
	}

	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		panic(err)
	}
	return v
}

func (k Keeper) setInt(ctx context.Context, key []byte, v math.Int) {
	store := k.getStore(ctx)
	if v.IsZero() {
		store.Delete(key)
		return
	}

	bz, err := v.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set(key, bz)
}

// GetMechBalance returns the unsettled balance of mech.
func (k Keeper) GetMechBalance(ctx context.Context, mech sdk.AccAddress) math.Int {
	return k.getInt(ctx, types.MechBalanceKey(mech))
}

func (k Keeper) setMechBalance(ctx context.Context, mech sdk.AccAddress, v math.Int) {
	k.setInt(ctx, types.MechBalanceKey(mech), v)
}

// GetRequesterBalance returns the prepaid or leftover balance of requester.
func (k Keeper) GetRequesterBalance(ctx context.Context, requester sdk.AccAddress) math.Int {
	return k.getInt(ctx, types.RequesterBalanceKey(requester))
}

func (k Keeper) setRequesterBalance(ctx context.Context, requester sdk.AccAddress, v math.Int) {
	k.setInt(ctx, types.RequesterBalanceKey(requester), v)
}

// GetCollectedFees returns fees collected and not yet drained.
func (k Keeper) GetCollectedFees(ctx context.Context) math.Int {
	return k.getInt(ctx, types.CollectedFeesKey)
}

func (k Keeper) setCollectedFees(ctx context.Context, v math.Int) {
	k.setInt(ctx, types.CollectedFeesKey, v)
}

// GetReserved returns the amount reserved by pending requests.
func (k Keeper) GetReserved(ctx context.Context) math.Int {
	return k.getInt(ctx, types.ReservedKey)
}

func (k Keeper) setReserved(ctx context.Context, v math.Int) {
	k.setInt(ctx, types.ReservedKey, v)
}

func (k Keeper) iterateBalances(ctx context.Context, prefix []byte, cb func(addr sdk.AccAddress, amount math.Int) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var amount math.Int
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			panic(err)
		}
		if cb(types.AddressFromBalanceKey(iterator.Key()), amount) {
			return
		}
	}
}

// IterateMechBalances walks every non-zero mech balance.
func (k Keeper) IterateMechBalances(ctx context.Context, cb func(mech sdk.AccAddress, amount math.Int) (stop bool)) {
	k.iterateBalances(ctx, types.MechBalancePrefix, cb)
}

// IterateRequesterBalances walks every non-zero requester balance.
func (k Keeper) IterateRequesterBalances(ctx context.Context, cb func(requester sdk.AccAddress, amount math.Int) (stop bool)) {
	k.iterateBalances(ctx, types.RequesterBalancePrefix, cb)
}

// Liabilities returns sum(mech) + sum(requester) + collected fees + reserved.
func (k Keeper) Liabilities(ctx context.Context) math.Int {
	total := k.GetCollectedFees(ctx).Add(k.GetReserved(ctx))
	sum := func(_ sdk.AccAddress, amount math.Int) bool {
		total = total.Add(amount)
		return false
	}
	k.IterateMechBalances(ctx, sum)
	k.IterateRequesterBalances(ctx, sum)
	return total
}
