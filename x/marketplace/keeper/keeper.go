package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
	"github.com/mechx-labs/mechx/x/shared/guard"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
	"github.com/mechx-labs/mechx/x/shared/nonce"
)

// Keeper of the marketplace store
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority sdk.AccAddress
	address   sdk.AccAddress

	karmaKeeper     types.KarmaKeeper
	serviceRegistry types.ServiceRegistry

	// trackers and factories are known implementations keyed by address.
	// Which of them are active is stored state.
	trackers  map[string]types.BalanceTracker
	factories map[string]types.MechFactory

	owners sharedkeeper.OwnerStore
	guard  guard.Guard
	nonces *nonce.Manager

	metrics *MarketplaceMetrics
}

// NewKeeper creates a new marketplace Keeper instance
func NewKeeper(
	key storetypes.StoreKey,
	authority sdk.AccAddress,
	karmaKeeper types.KarmaKeeper,
	serviceRegistry types.ServiceRegistry,
	trackers []types.BalanceTracker,
	factories []types.MechFactory,
) *Keeper {
	k := &Keeper{
		storeKey:        key,
		authority:       authority,
		address:         authtypes.NewModuleAddress(types.ModuleName),
		karmaKeeper:     karmaKeeper,
		serviceRegistry: serviceRegistry,
		trackers:        make(map[string]types.BalanceTracker, len(trackers)),
		factories:       make(map[string]types.MechFactory, len(factories)),
		owners:          sharedkeeper.NewOwnerStore(key, types.OwnerKey, authority),
		guard:           guard.New(key, types.GuardKey, types.ModuleName),
		nonces:          nonce.NewManager(key, types.NoncePrefix),
		metrics:         NewMarketplaceMetrics(),
	}

	for _, t := range trackers {
		addr := t.Address().String()
		if _, dup := k.trackers[addr]; dup {
			panic(fmt.Sprintf("duplicate balance tracker %s", addr))
		}
		k.trackers[addr] = t
	}
	for _, f := range factories {
		addr := f.Address().String()
		if _, dup := k.factories[addr]; dup {
			panic(fmt.Sprintf("duplicate mech factory %s", addr))
		}
		k.factories[addr] = f
	}

	return k
}

// getStore returns the KVStore for the marketplace module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// Address is the marketplace account that trackers and the karma ledger authorize.
func (k Keeper) Address() sdk.AccAddress {
	return k.address
}

// GetAuthority returns the module authority.
func (k Keeper) GetAuthority() sdk.AccAddress {
	return k.authority
}

// atomic runs fn in a cache context guarded against reentry and commits only on success.
func (k Keeper) atomic(ctx context.Context, fn func(ctx sdk.Context) error) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cacheCtx, writeCache := sdkCtx.CacheContext()

	if err := k.guard.Run(cacheCtx, func() error { return fn(cacheCtx) }); err != nil {
		return err
	}

	writeCache()
	return nil
}

func (k Keeper) getJSON(ctx context.Context, key []byte, v interface{}) bool {
	bz := k.getStore(ctx).Get(key)
	if len(bz) == 0 {
		return false
	}
	mustUnmarshal(key, bz, v)
	return true
}

func mustUnmarshal(key, bz []byte, v interface{}) {
	if err := json.Unmarshal(bz, v); err != nil {
		panic(fmt.Errorf("corrupt marketplace record at %X: %w", key, err))
	}
}

func (k Keeper) setJSON(ctx context.Context, key []byte, v interface{}) {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	k.getStore(ctx).Set(key, bz)
}
