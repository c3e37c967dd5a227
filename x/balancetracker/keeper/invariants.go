package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInvariants registers the invariants of this tracker instance
func RegisterInvariants(ir sdk.InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(k.Name(), "custody", CustodyInvariant(k))
	ir.RegisterRoute(k.Name(), "non-negative", NonNegativeInvariant(k))
}

// AllInvariants runs all invariants of the tracker instance
func AllInvariants(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := NonNegativeInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return CustodyInvariant(k)(ctx)
	}
}

// CustodyInvariant checks that a direct-payment tracker holds at least what it owes:
// sum(mech) + sum(requester) + collected fees + reserved. Subscription trackers
// account in credits, so their custody is not comparable.
func CustodyInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		if k.Variant().IsSubscription() {
			return sdk.FormatInvariant(k.Name(), "custody", "subscription tracker, skipped"), false
		}

		custody, err := k.Custody(ctx)
		if err != nil {
			return sdk.FormatInvariant(k.Name(), "custody",
				fmt.Sprintf("error reading custody: %v", err)), true
		}

		liabilities := k.Liabilities(ctx)
		broken := custody.LT(liabilities)
		return sdk.FormatInvariant(k.Name(), "custody",
			fmt.Sprintf("custody %s, liabilities %s", custody, liabilities)), broken
	}
}

// NonNegativeInvariant checks that no stored balance is negative.
func NonNegativeInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		check := func(kind string) func(addr sdk.AccAddress, amount math.Int) bool {
			return func(addr sdk.AccAddress, amount math.Int) bool {
				if amount.IsNegative() {
					broken = true
					msg += fmt.Sprintf("%s %s has negative balance %s\n", kind, addr, amount)
				}
				return false
			}
		}
		k.IterateMechBalances(ctx, check("mech"))
		k.IterateRequesterBalances(ctx, check("requester"))

		if k.GetCollectedFees(ctx).IsNegative() {
			broken = true
			msg += "collected fees negative\n"
		}
		if k.GetReserved(ctx).IsNegative() {
			broken = true
			msg += "reserved negative\n"
		}

		return sdk.FormatInvariant(k.Name(), "non-negative", msg), broken
	}
}
