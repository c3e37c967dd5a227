// Package nonce provides per-account monotonically increasing counters kept in a
// module store. The marketplace uses them as the requester nonce that feeds request ids.
package nonce

import (
	"encoding/binary"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

// MaxNonceValue is the last value a counter may hold.
const MaxNonceValue = ^uint64(0)

// Manager reads and advances counters stored under prefix|account.
type Manager struct {
	storeKey storetypes.StoreKey
	prefix   []byte
}

// NewManager creates a nonce manager persisting under prefix in storeKey.
func NewManager(storeKey storetypes.StoreKey, prefix []byte) *Manager {
	return &Manager{
		storeKey: storeKey,
		prefix:   prefix,
	}
}

// encodeNonce encodes a uint64 nonce to bytes
func encodeNonce(n uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, n)
	return bz
}

// decodeNonce decodes bytes to a uint64 nonce
func decodeNonce(bz []byte) uint64 {
	if len(bz) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

func (m *Manager) key(account sdk.AccAddress) []byte {
	key := make([]byte, 0, len(m.prefix)+len(account))
	key = append(key, m.prefix...)
	return append(key, account...)
}

// Current returns the next unused nonce of account.
func (m *Manager) Current(ctx sdk.Context, account sdk.AccAddress) uint64 {
	return decodeNonce(ctx.KVStore(m.storeKey).Get(m.key(account)))
}

// Set overwrites the counter of account.
func (m *Manager) Set(ctx sdk.Context, account sdk.AccAddress, value uint64) {
	ctx.KVStore(m.storeKey).Set(m.key(account), encodeNonce(value))
}

// Use returns the current nonce of account and advances the counter by one.
func (m *Manager) Use(ctx sdk.Context, account sdk.AccAddress) (uint64, error) {
	current := m.Current(ctx, account)
	if current == MaxNonceValue {
		return 0, sharederrors.ErrOverflow.Wrapf("nonce exhausted for %s", account)
	}
	m.Set(ctx, account, current+1)
	return current, nil
}

// Iterate walks every stored counter in key order.
func (m *Manager) Iterate(ctx sdk.Context, cb func(account sdk.AccAddress, value uint64) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(ctx.KVStore(m.storeKey), m.prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		account := sdk.AccAddress(iterator.Key()[len(m.prefix):])
		if cb(account, decodeNonce(iterator.Value())) {
			return
		}
	}
}
