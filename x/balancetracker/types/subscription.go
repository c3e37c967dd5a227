package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Subscription binds a subscription tracker to a credit token and the
// asset value of one credit.
type Subscription struct {
	Collection       string         `json:"collection"`
	TokenID          uint64         `json:"token_id"`
	TokenCreditRatio math.LegacyDec `json:"token_credit_ratio"`
}

// Validate checks every field is set.
func (s Subscription) Validate() error {
	if _, err := sdk.AccAddressFromBech32(s.Collection); err != nil {
		return ErrZeroAddress.Wrapf("collection: %s", err)
	}
	if s.TokenID == 0 {
		return ErrZeroValue.Wrap("token id")
	}
	if s.TokenCreditRatio.IsNil() || !s.TokenCreditRatio.IsPositive() {
		return ErrZeroValue.Wrap("token credit ratio")
	}
	return nil
}

// CollectionAddress returns the parsed collection address.
func (s Subscription) CollectionAddress() sdk.AccAddress {
	return sdk.MustAccAddressFromBech32(s.Collection)
}

// CreditsToAsset converts credits into the settlement asset, rounding down.
func (s Subscription) CreditsToAsset(credits math.Int) math.Int {
	return s.TokenCreditRatio.MulInt(credits).TruncateInt()
}
