// Package guard provides a store-backed reentrancy lock for keeper entry points that
// call into externally supplied collaborators (token ledgers, subscription ledgers,
// identity resolution).
package guard

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

var lockedValue = []byte{0x01}

// Guard is an enter/exit flag persisted under a single key of a module store.
// The flag lives in the context's store, so it is rolled back together with
// any cache context it was entered in.
type Guard struct {
	storeKey storetypes.StoreKey
	key      []byte
	name     string
}

// New returns a guard that keeps its flag at key inside storeKey.
func New(storeKey storetypes.StoreKey, key []byte, name string) Guard {
	return Guard{storeKey: storeKey, key: key, name: name}
}

// Locked reports whether the guarded section is currently entered.
func (g Guard) Locked(ctx context.Context) bool {
	return sdk.UnwrapSDKContext(ctx).KVStore(g.storeKey).Has(g.key)
}

// Enter sets the flag or fails with ErrReentrancyGuard if it is already set.
func (g Guard) Enter(ctx context.Context) error {
	store := sdk.UnwrapSDKContext(ctx).KVStore(g.storeKey)
	if store.Has(g.key) {
		return sharederrors.ErrReentrancyGuard.Wrapf("%s already entered", g.name)
	}
	store.Set(g.key, lockedValue)
	return nil
}

// Exit clears the flag.
func (g Guard) Exit(ctx context.Context) {
	sdk.UnwrapSDKContext(ctx).KVStore(g.storeKey).Delete(g.key)
}

// Run executes fn inside the guarded section.
func (g Guard) Run(ctx context.Context, fn func() error) error {
	if err := g.Enter(ctx); err != nil {
		return err
	}
	defer g.Exit(ctx)

	return fn()
}
