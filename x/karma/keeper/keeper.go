package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/karma/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// Keeper of the karma store
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority sdk.AccAddress
	owners    sharedkeeper.OwnerStore
}

// NewKeeper creates a new karma Keeper instance. authority is the initial owner.
func NewKeeper(key storetypes.StoreKey, authority sdk.AccAddress) *Keeper {
	return &Keeper{
		storeKey:  key,
		authority: authority,
		owners:    sharedkeeper.NewOwnerStore(key, types.OwnerKey, authority),
	}
}

// getStore returns the KVStore for the karma module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// GetAuthority returns the module authority.
func (k Keeper) GetAuthority() sdk.AccAddress {
	return k.authority
}

// Owner returns the current owner.
func (k Keeper) Owner(ctx context.Context) sdk.AccAddress {
	return k.owners.Get(ctx)
}

// ChangeOwner transfers ownership of the ledger.
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
