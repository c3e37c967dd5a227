package keeper

import (
	"context"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/ledger/types"
)

// RegisterService mints a new service identity owned by owner. New services are
// deployed.
func (k Keeper) RegisterService(ctx context.Context, owner sdk.AccAddress) (uint64, error) {
	if owner.Empty() {
		return 0, types.ErrZeroAddress.Wrap("service owner")
	}

	store := k.getStore(ctx)
	id := k.nextServiceID(ctx)
	store.Set(types.NextServiceIDKey, sdk.Uint64ToBigEndian(id+1))
	store.Set(types.ServiceOwnerKey(id), owner)
	store.Set(types.ServiceDeployedKey(id), []byte{1})

	emit(ctx, types.EventTypeServiceRegistered,
		sdk.NewAttribute(types.AttributeKeyServiceID, strconv.FormatUint(id, 10)),
		sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
	)
	return id, nil
}

func (k Keeper) nextServiceID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(types.NextServiceIDKey)
	if bz == nil {
		return 1
	}
	return sdk.BigEndianToUint64(bz)
}

// TransferService hands a service to newOwner. Only the current owner may call it.
func (k Keeper) TransferService(ctx context.Context, caller sdk.AccAddress, serviceID uint64, newOwner sdk.AccAddress) error {
	owner, err := k.OwnerOf(ctx, serviceID)
	if err != nil {
		return err
	}
	if !owner.Equals(caller) {
		return types.ErrUnauthorizedAccount.Wrapf("%s does not own service %d", caller, serviceID)
	}
	if newOwner.Empty() {
		return types.ErrZeroAddress.Wrap("new owner")
	}

	k.getStore(ctx).Set(types.ServiceOwnerKey(serviceID), newOwner)
	emit(ctx, types.EventTypeServiceTransferred,
		sdk.NewAttribute(types.AttributeKeyServiceID, strconv.FormatUint(serviceID, 10)),
		sdk.NewAttribute(types.AttributeKeyOwner, newOwner.String()),
	)
	return nil
}

// SetServiceDeployed toggles the deployment state of an existing service.
func (k Keeper) SetServiceDeployed(ctx context.Context, serviceID uint64, deployed bool) error {
	exists, _ := k.Exists(ctx, serviceID)
	if !exists {
		return types.ErrUnknownService.Wrapf("service %d", serviceID)
	}

	store := k.getStore(ctx)
	if deployed {
		store.Set(types.ServiceDeployedKey(serviceID), []byte{1})
	} else {
		store.Delete(types.ServiceDeployedKey(serviceID))
	}
	return nil
}

// OwnerOf returns the owner of a service.
func (k Keeper) OwnerOf(ctx context.Context, serviceID uint64) (sdk.AccAddress, error) {
	bz := k.getStore(ctx).Get(types.ServiceOwnerKey(serviceID))
	if bz == nil {
		return nil, types.ErrUnknownService.Wrapf("service %d", serviceID)
	}
	return sdk.AccAddress(bz), nil
}

// Exists reports whether serviceID has been registered.
func (k Keeper) Exists(ctx context.Context, serviceID uint64) (bool, error) {
	return k.getStore(ctx).Has(types.ServiceOwnerKey(serviceID)), nil
}

// IsDeployed reports whether serviceID is deployed.
func (k Keeper) IsDeployed(ctx context.Context, serviceID uint64) (bool, error) {
	return k.getStore(ctx).Has(types.ServiceDeployedKey(serviceID)), nil
}

// IterateServices walks every registered service in id order.
func (k Keeper) IterateServices(ctx context.Context, cb func(s types.Service) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.ServiceOwnerPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		id := sdk.BigEndianToUint64(iterator.Key()[len(types.ServiceOwnerPrefix):])
		s := types.Service{
			ID:       id,
			Owner:    sdk.AccAddress(iterator.Value()).String(),
			Deployed: store.Has(types.ServiceDeployedKey(id)),
		}
		if cb(s) {
			break
		}
	}
}
