package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Mech is a registered service-provider unit.
type Mech struct {
	Address         string      `json:"address"`
	ServiceID       uint64      `json:"service_id"`
	Factory         string      `json:"factory"`
	PaymentType     PaymentType `json:"payment_type"`
	MaxDeliveryRate math.Int    `json:"max_delivery_rate"`

	// DynamicPricing mechs report the rate on each delivery instead of
	// always charging MaxDeliveryRate.
	DynamicPricing bool  `json:"dynamic_pricing"`
	CreatedAt      int64 `json:"created_at"`
}

// MechAddress returns the parsed mech address.
func (m Mech) MechAddress() sdk.AccAddress {
	return sdk.MustAccAddressFromBech32(m.Address)
}

// FactoryAddress returns the parsed factory address.
func (m Mech) FactoryAddress() sdk.AccAddress {
	return sdk.MustAccAddressFromBech32(m.Factory)
}

// Validate performs stateless validation of a mech record.
func (m Mech) Validate() error {
	if _, err := sdk.AccAddressFromBech32(m.Address); err != nil {
		return fmt.Errorf("invalid mech address: %w", err)
	}
	if _, err := sdk.AccAddressFromBech32(m.Factory); err != nil {
		return fmt.Errorf("invalid factory address: %w", err)
	}
	if m.ServiceID == 0 {
		return fmt.Errorf("mech %s has zero service id", m.Address)
	}
	if m.PaymentType.IsZero() {
		return fmt.Errorf("mech %s has zero payment type", m.Address)
	}
	if m.MaxDeliveryRate.IsNil() || !m.MaxDeliveryRate.IsPositive() {
		return fmt.Errorf("mech %s max delivery rate must be positive", m.Address)
	}
	return nil
}
