package types

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "ledger"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// The ledger module hosts the external collaborators of the marketplace on a
// devnet: fungible tokens, subscription credits and the service registry.
var (
	TokenBalancePrefix        = []byte{0x01}
	AllowancePrefix           = []byte{0x02}
	SubscriptionBalancePrefix = []byte{0x03}
	ServiceOwnerPrefix        = []byte{0x04}
	ServiceDeployedPrefix     = []byte{0x05}
	NextServiceIDKey          = []byte{0x06}
)

func uint64Bytes(v uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return bz
}

func join(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte{}, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// TokenBalanceKey returns the balance key of owner for token.
func TokenBalanceKey(token, owner sdk.AccAddress) []byte {
	return join(TokenBalancePrefix, address.MustLengthPrefix(token), address.MustLengthPrefix(owner))
}

// AllowanceKey returns the allowance key of spender over owner's token balance.
func AllowanceKey(token, owner, spender sdk.AccAddress) []byte {
	return join(AllowancePrefix, address.MustLengthPrefix(token), address.MustLengthPrefix(owner), address.MustLengthPrefix(spender))
}

// SubscriptionBalanceKey returns the credit key of owner for (collection, tokenID).
func SubscriptionBalanceKey(collection, owner sdk.AccAddress, tokenID uint64) []byte {
	return join(SubscriptionBalancePrefix, address.MustLengthPrefix(collection), address.MustLengthPrefix(owner), uint64Bytes(tokenID))
}

// ServiceOwnerKey returns the owner key of a service.
func ServiceOwnerKey(serviceID uint64) []byte {
	return join(ServiceOwnerPrefix, uint64Bytes(serviceID))
}

// ServiceDeployedKey returns the deployment flag key of a service.
func ServiceDeployedKey(serviceID uint64) []byte {
	return join(ServiceDeployedPrefix, uint64Bytes(serviceID))
}

// SplitAddresses decodes consecutive length-prefixed addresses from key.
func SplitAddresses(key []byte, n int) ([]sdk.AccAddress, []byte) {
	addrs := make([]sdk.AccAddress, 0, n)
	for i := 0; i < n; i++ {
		size := int(key[0])
		addrs = append(addrs, sdk.AccAddress(key[1:1+size]))
		key = key[1+size:]
	}
	return addrs, key
}
