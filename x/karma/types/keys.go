package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "karma"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

var (
	OwnerKey                 = []byte{0x00}
	MarketplaceStatusPrefix  = []byte{0x01}
	MechKarmaPrefix          = []byte{0x02}
	RequesterMechKarmaPrefix = []byte{0x03}
)

// MarketplaceStatusKey returns the allow-list key for a marketplace.
func MarketplaceStatusKey(marketplace sdk.AccAddress) []byte {
	return append(append([]byte{}, MarketplaceStatusPrefix...), address.MustLengthPrefix(marketplace)...)
}

// MechKarmaKey returns the karma key of a mech.
func MechKarmaKey(mech sdk.AccAddress) []byte {
	return append(append([]byte{}, MechKarmaPrefix...), address.MustLengthPrefix(mech)...)
}

// RequesterMechKarmaKey returns the karma key of a (requester, mech) pair.
func RequesterMechKarmaKey(requester, mech sdk.AccAddress) []byte {
	key := append([]byte{}, RequesterMechKarmaPrefix...)
	key = append(key, address.MustLengthPrefix(requester)...)
	return append(key, address.MustLengthPrefix(mech)...)
}

// SplitRequesterMechKarmaKey recovers the pair from a RequesterMechKarmaKey without its prefix.
func SplitRequesterMechKarmaKey(key []byte) (requester, mech sdk.AccAddress) {
	requesterLen := int(key[0])
	requester = sdk.AccAddress(key[1 : 1+requesterLen])
	rest := key[1+requesterLen:]
	mechLen := int(rest[0])
	return requester, sdk.AccAddress(rest[1 : 1+mechLen])
}
