package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/shared/guard"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// Keeper of one balance tracker instance. Each payment variant runs its own
// Keeper with its own store and module account.
type Keeper struct {
	storeKey storetypes.StoreKey
	config   types.Config
	name     string
	address  sdk.AccAddress

	bankKeeper         types.BankKeeper
	tokenKeeper        types.TokenKeeper
	subscriptionKeeper types.SubscriptionKeeper
	resolver           types.MechResolver

	owners sharedkeeper.OwnerStore
	guard  guard.Guard

	metrics *TrackerMetrics
}

// NewKeeper creates a balance tracker Keeper. Collaborators that the variant does
// not use may be nil. It panics on an invalid config, like other keeper constructors.
func NewKeeper(
	key storetypes.StoreKey,
	config types.Config,
	authority sdk.AccAddress,
	bankKeeper types.BankKeeper,
	tokenKeeper types.TokenKeeper,
	subscriptionKeeper types.SubscriptionKeeper,
) *Keeper {
	if err := config.Validate(); err != nil {
		panic(err)
	}
	if config.Variant.Asset == types.AssetNative && bankKeeper == nil {
		panic(fmt.Sprintf("%s requires a bank keeper", config.Variant))
	}
	if config.Variant.Asset == types.AssetToken && tokenKeeper == nil {
		panic(fmt.Sprintf("%s requires a token keeper", config.Variant))
	}
	if config.Variant.IsSubscription() && subscriptionKeeper == nil {
		panic(fmt.Sprintf("%s requires a subscription keeper", config.Variant))
	}

	name := types.InstanceName(config.Variant)
	return &Keeper{
		storeKey:           key,
		config:             config,
		name:               name,
		address:            authtypes.NewModuleAddress(name),
		bankKeeper:         bankKeeper,
		tokenKeeper:        tokenKeeper,
		subscriptionKeeper: subscriptionKeeper,
		owners:             sharedkeeper.NewOwnerStore(key, types.OwnerKey, authority),
		guard:              guard.New(key, types.GuardKey, name),
		metrics:            NewTrackerMetrics(),
	}
}

// SetMechResolver wires the component that maps mechs to their operators.
// The marketplace keeper is constructed after the trackers, so this is set late.
func (k *Keeper) SetMechResolver(resolver types.MechResolver) {
	k.resolver = resolver
}

// getStore returns the KVStore of this tracker instance
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName, "tracker", k.name)
}

// Address is the custody account of the tracker.
func (k Keeper) Address() sdk.AccAddress {
	return k.address
}

// Name is the module account and store name of the tracker.
func (k Keeper) Name() string {
	return k.name
}

// Variant returns the settlement strategy of the tracker.
func (k Keeper) Variant() types.Variant {
	return k.config.Variant
}

// Config returns the tracker configuration.
func (k Keeper) Config() types.Config {
	return k.config
}

// Owner returns the current owner.
func (k Keeper) Owner(ctx context.Context) sdk.AccAddress {
	return k.owners.Get(ctx)
}

// ChangeOwner transfers ownership of the tracker.
func (k Keeper) ChangeOwner(ctx context.Context, caller, newOwner sdk.AccAddress) error {
	return k.owners.Change(ctx, caller, newOwner)
}

func (k Keeper) checkMarketplace(caller sdk.AccAddress) error {
	if !caller.Equals(k.config.Marketplace) {
		return types.ErrMarketplaceOnly.Wrapf("%s is not the marketplace", caller)
	}
	return nil
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
