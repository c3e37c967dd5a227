// Package keeper provides shared keeper interfaces and utilities for cross-module communication.
package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

// ValidateOwner checks that actual is the expected owner.
//
// Usage example:
//
//	if err := sharedkeeper.ValidateOwner(k.owners.Get(ctx), caller); err != nil {
//	    return err
//	}
func ValidateOwner(expected, actual sdk.AccAddress) error {
	if expected.Empty() || !expected.Equals(actual) {
		return sharederrors.ErrOwnerOnly.Wrapf(
			"expected %s, got %s",
			expected,
			actual,
		)
	}
	return nil
}

// OwnerStore persists a module owner under a single store key. An unset owner
// falls back to the module authority.
type OwnerStore struct {
	storeKey  storetypes.StoreKey
	key       []byte
	authority sdk.AccAddress
}

// NewOwnerStore creates an owner store at key with authority as the default owner.
func NewOwnerStore(storeKey storetypes.StoreKey, key []byte, authority sdk.AccAddress) OwnerStore {
	return OwnerStore{storeKey: storeKey, key: key, authority: authority}
}

// Get returns the current owner.
func (o OwnerStore) Get(ctx context.Context) sdk.AccAddress {
	bz := sdk.UnwrapSDKContext(ctx).KVStore(o.storeKey).Get(o.key)
	if len(bz) == 0 {
		return o.authority
	}
	return sdk.AccAddress(bz)
}

// Set stores owner without an authorization check (genesis only).
func (o OwnerStore) Set(ctx context.Context, owner sdk.AccAddress) {
	sdk.UnwrapSDKContext(ctx).KVStore(o.storeKey).Set(o.key, owner)
}

// Change transfers ownership to newOwner if caller is the current owner.
func (o OwnerStore) Change(ctx context.Context, caller, newOwner sdk.AccAddress) error {
	if err := ValidateOwner(o.Get(ctx), caller); err != nil {
		return err
	}
	if newOwner.Empty() {
		return sharederrors.ErrZeroAddress.Wrap("new owner")
	}
	o.Set(ctx, newOwner)
	return nil
}
