package types

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "marketplace"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

var (
	OwnerKey                 = []byte{0x00}
	ParamsKey                = []byte{0x01}
	FactoryStatusPrefix      = []byte{0x02}
	PaymentTypeTrackerPrefix = []byte{0x03}
	MechPrefix               = []byte{0x04}
	RequestPrefix            = []byte{0x05}
	UndeliveredSlotPrefix    = []byte{0x06}
	UndeliveredIndexPrefix   = []byte{0x07}
	UndeliveredCountPrefix   = []byte{0x08}
	NoncePrefix              = []byte{0x09}
	CounterPrefix            = []byte{0x0A}
	TotalRequestsKey         = []byte{0x0B}
	ApprovedHashPrefix       = []byte{0x0C}
	MechNonceKey             = []byte{0x0D}
	GuardKey                 = []byte{0x0E}
)

// Counter kinds stored under CounterPrefix.
const (
	CounterRequests          byte = 0x01 // per requester
	CounterDeliveries        byte = 0x02 // per requester
	CounterMechRequests      byte = 0x03 // per mech
	CounterMechDeliveries    byte = 0x04 // per mech
	CounterServiceDeliveries byte = 0x05 // per service owner
)

// GetUint64Bytes returns the big-endian encoding of id.
func GetUint64Bytes(id uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, id)
	return bz
}

// GetUint64FromBytes decodes a big-endian uint64, returning 0 on malformed input.
func GetUint64FromBytes(bz []byte) uint64 {
	if len(bz) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

func prefixed(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte{}, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// FactoryStatusKey returns the allow-list key of a mech factory.
func FactoryStatusKey(factory sdk.AccAddress) []byte {
	return prefixed(FactoryStatusPrefix, address.MustLengthPrefix(factory))
}

// PaymentTypeTrackerKey returns the tracker binding key of a payment type.
func PaymentTypeTrackerKey(pt PaymentType) []byte {
	return prefixed(PaymentTypeTrackerPrefix, pt[:])
}

// MechKey returns the record key of a mech.
func MechKey(mech sdk.AccAddress) []byte {
	return prefixed(MechPrefix, address.MustLengthPrefix(mech))
}

// RequestKey returns the record key of a request.
func RequestKey(id RequestID) []byte {
	return prefixed(RequestPrefix, id[:])
}

// UndeliveredSlotKey returns the key of slot in a mech's undelivered arena.
func UndeliveredSlotKey(mech sdk.AccAddress, slot uint64) []byte {
	return prefixed(UndeliveredSlotPrefix, address.MustLengthPrefix(mech), GetUint64Bytes(slot))
}

// UndeliveredSlotMechPrefix returns the prefix of all slots of a mech.
func UndeliveredSlotMechPrefix(mech sdk.AccAddress) []byte {
	return prefixed(UndeliveredSlotPrefix, address.MustLengthPrefix(mech))
}

// UndeliveredIndexKey returns the id -> slot index key.
func UndeliveredIndexKey(mech sdk.AccAddress, id RequestID) []byte {
	return prefixed(UndeliveredIndexPrefix, address.MustLengthPrefix(mech), id[:])
}

// UndeliveredCountKey returns the key of a mech's pending count.
func UndeliveredCountKey(mech sdk.AccAddress) []byte {
	return prefixed(UndeliveredCountPrefix, address.MustLengthPrefix(mech))
}

// CounterKey returns the key of a counter of the given kind for addr.
func CounterKey(kind byte, addr sdk.AccAddress) []byte {
	return prefixed(CounterPrefix, []byte{kind}, address.MustLengthPrefix(addr))
}

// ApprovedHashKey returns the key of a hash approved by signer.
func ApprovedHashKey(signer sdk.AccAddress, hash []byte) []byte {
	return prefixed(ApprovedHashPrefix, address.MustLengthPrefix(signer), hash)
}
