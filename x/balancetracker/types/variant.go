package types

import "fmt"

// Funding selects how a requester pays for a request.
type Funding uint8

const (
	// FundingDirect charges attached value or a prepaid deposit.
	FundingDirect Funding = iota
	// FundingSubscription charges subscription credits.
	FundingSubscription
)

// Asset selects the asset the tracker settles in.
type Asset uint8

const (
	// AssetNative settles in a bank denom.
	AssetNative Asset = iota
	// AssetToken settles in an ERC20-like token.
	AssetToken
)

// Variant is the settlement strategy of one tracker instance.
type Variant struct {
	Funding Funding
	Asset   Asset
}

var (
	VariantFixedPriceNative   = Variant{Funding: FundingDirect, Asset: AssetNative}
	VariantFixedPriceToken    = Variant{Funding: FundingDirect, Asset: AssetToken}
	VariantSubscriptionNative = Variant{Funding: FundingSubscription, Asset: AssetNative}
	VariantSubscriptionToken  = Variant{Funding: FundingSubscription, Asset: AssetToken}

	// AllVariants lists every supported variant in a stable order.
	AllVariants = []Variant{
		VariantFixedPriceNative,
		VariantFixedPriceToken,
		VariantSubscriptionNative,
		VariantSubscriptionToken,
	}
)

// IsSubscription reports whether requests are paid with subscription credits.
func (v Variant) IsSubscription() bool {
	return v.Funding == FundingSubscription
}

func (v Variant) String() string {
	switch v {
	case VariantFixedPriceNative:
		return "fixed_price_native"
	case VariantFixedPriceToken:
		return "fixed_price_token"
	case VariantSubscriptionNative:
		return "subscription_native"
	case VariantSubscriptionToken:
		return "subscription_token"
	default:
		return fmt.Sprintf("variant(%d,%d)", v.Funding, v.Asset)
	}
}

// PaymentTypeName is the name hashed into the marketplace payment type tag.
func (v Variant) PaymentTypeName() string {
	switch v {
	case VariantFixedPriceNative:
		return "FIXED_PRICE_NATIVE"
	case VariantFixedPriceToken:
		return "FIXED_PRICE_TOKEN"
	case VariantSubscriptionNative:
		return "SUBSCRIPTION_NATIVE"
	case VariantSubscriptionToken:
		return "SUBSCRIPTION_TOKEN"
	default:
		return ""
	}
}

// ParseVariant parses the String form of a variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range AllVariants {
		if v.String() == s {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown balance tracker variant %q", s)
}
