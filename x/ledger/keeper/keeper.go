package keeper

import (
	"context"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/ledger/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

var (
	_ sharedkeeper.TokenV1                   = Keeper{}
	_ sharedkeeper.SubscriptionV1            = SubscriptionLedger{}
	_ sharedkeeper.ServiceRegistryV1Extended = Keeper{}
)

// Keeper of the ledger store. It serves as the token ledger and the service
// registry; SubscriptionLedger exposes its credit ledger.
type Keeper struct {
	storeKey storetypes.StoreKey
}

// NewKeeper creates a new ledger Keeper instance
func NewKeeper(key storetypes.StoreKey) *Keeper {
	return &Keeper{storeKey: key}
}

// getStore returns the KVStore for the ledger module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

func (k Keeper) getInt(ctx context.Context, key []byte) math.Int {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
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

func (k Keeper) iterateInts(ctx context.Context, prefix []byte, cb func(key []byte, v math.Int) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var v math.Int
		if err := v.Unmarshal(iterator.Value()); err != nil {
			panic(err)
		}
		if cb(iterator.Key()[len(prefix):], v) {
			return
		}
	}
}

func emit(ctx context.Context, eventType string, attrs ...sdk.Attribute) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(eventType, attrs...))
}

func checkPositive(amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrNegativeAmount
	}
	if amount.IsZero() {
		return types.ErrZeroValue.Wrap("amount")
	}
	return nil
}
