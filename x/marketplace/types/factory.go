package types

import (
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// MechFactory builds mech records from creation payloads. A factory must also be
// allow-listed in the marketplace before Create accepts it.
type MechFactory interface {
	Address() sdk.AccAddress
	PaymentType() PaymentType
	DynamicPricing() bool

	// ParseCreationData returns the max delivery rate encoded in payload.
	ParseCreationData(payload []byte) (math.Int, error)
}

// PaymentFactory is the built-in factory for one payment type. Its creation
// payload is the big-endian max delivery rate, at most 32 bytes.
type PaymentFactory struct {
	name        string
	paymentType PaymentType
	dynamic     bool
}

var _ MechFactory = PaymentFactory{}

// NewPaymentFactory creates a factory named name whose payment type is keccak256(paymentTypeName).
func NewPaymentFactory(name, paymentTypeName string, dynamicPricing bool) PaymentFactory {
	return PaymentFactory{
		name:        name,
		paymentType: PaymentTypeFromName(paymentTypeName),
		dynamic:     dynamicPricing,
	}
}

func (f PaymentFactory) Address() sdk.AccAddress {
	return authtypes.NewModuleAddress(ModuleName + "/factory/" + f.name)
}

func (f PaymentFactory) Name() string {
	return f.name
}

func (f PaymentFactory) PaymentType() PaymentType {
	return f.paymentType
}

func (f PaymentFactory) DynamicPricing() bool {
	return f.dynamic
}

func (f PaymentFactory) ParseCreationData(payload []byte) (math.Int, error) {
	if len(payload) == 0 {
		return math.ZeroInt(), ErrZeroValue.Wrap("empty creation payload")
	}
	if len(payload) > 32 {
		return math.ZeroInt(), ErrOverflow.Wrapf("creation payload is %d bytes", len(payload))
	}

	rate := math.NewIntFromBigInt(new(big.Int).SetBytes(payload))
	if rate.IsZero() {
		return math.ZeroInt(), ErrZeroValue.Wrap("max delivery rate")
	}
	return rate, nil
}

// EncodeCreationData encodes a max delivery rate as a PaymentFactory payload.
func EncodeCreationData(maxDeliveryRate math.Int) []byte {
	return maxDeliveryRate.BigInt().Bytes()
}
