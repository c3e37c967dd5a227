package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name. Every tracker instance gets its own
	// store key and module account named ModuleName + "_" + variant.
	ModuleName = "balancetracker"
)

var (
	OwnerKey               = []byte{0x00}
	MechBalancePrefix      = []byte{0x01}
	RequesterBalancePrefix = []byte{0x02}
	CollectedFeesKey       = []byte{0x03}
	ReservedKey            = []byte{0x04}
	SubscriptionKey        = []byte{0x05}
	GuardKey               = []byte{0x06}
)

// InstanceName returns the store key and module account name of a tracker instance.
func InstanceName(v Variant) string {
	return ModuleName + "_" + v.String()
}

// MechBalanceKey returns the store key of a mech's unsettled balance.
func MechBalanceKey(mech sdk.AccAddress) []byte {
	return append(append([]byte{}, MechBalancePrefix...), address.MustLengthPrefix(mech)...)
}

// RequesterBalanceKey returns the store key of a requester's prepaid or leftover balance.
func RequesterBalanceKey(requester sdk.AccAddress) []byte {
	return append(append([]byte{}, RequesterBalancePrefix...), address.MustLengthPrefix(requester)...)
}

// AddressFromBalanceKey strips the prefix and length byte from a balance key.
func AddressFromBalanceKey(key []byte) sdk.AccAddress {
	key = key[1:]
	return sdk.AccAddress(key[1 : 1+int(key[0])])
}
