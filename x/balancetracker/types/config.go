package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config describes one tracker instance.
type Config struct {
	Variant Variant

	// Denom is the bank denom settled by native variants.
	Denom string

	// Token is the token address settled by token variants.
	Token sdk.AccAddress

	// Marketplace is the only caller allowed to reserve and finalize.
	Marketplace sdk.AccAddress

	// Drainer receives collected fees.
	Drainer sdk.AccAddress
}

// Validate checks the config is usable for its variant.
func (c Config) Validate() error {
	if c.Marketplace.Empty() {
		return ErrInvalidConfig.Wrap("marketplace address is empty")
	}
	if c.Drainer.Empty() {
		return ErrInvalidConfig.Wrap("drainer address is empty")
	}

	switch c.Variant.Asset {
	case AssetNative:
		if err := sdk.ValidateDenom(c.Denom); err != nil {
			return ErrInvalidConfig.Wrapf("denom: %s", err)
		}
	case AssetToken:
		if c.Token.Empty() {
			return ErrInvalidConfig.Wrap("token address is empty")
		}
	default:
		return ErrInvalidConfig.Wrapf("unknown asset %d", c.Variant.Asset)
	}

	if c.Variant.Funding != FundingDirect && c.Variant.Funding != FundingSubscription {
		return ErrInvalidConfig.Wrapf("unknown funding %d", c.Variant.Funding)
	}
	return nil
}
