package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// RegisterInvariants registers all marketplace invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(types.ModuleName, "undelivered-index", UndeliveredIndexInvariant(k))
	ir.RegisterRoute(types.ModuleName, "delivered-requests", DeliveredRequestsInvariant(k))
}

// AllInvariants runs all invariants of the marketplace module
func AllInvariants(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := UndeliveredIndexInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return DeliveredRequestsInvariant(k)(ctx)
	}
}

// UndeliveredIndexInvariant checks that every mech's slot arena is dense, that each
// slot and index entry agree, and that only pending requests naming the mech as
// priority are indexed.
func UndeliveredIndexInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		k.IterateMechs(ctx, func(m types.Mech) bool {
			mech := m.MechAddress()
			count := k.NumUndeliveredRequests(ctx, mech)
			seen := uint64(0)

			k.iterateUndelivered(ctx, mech, func(slot uint64, id types.RequestID) bool {
				seen++
				if slot >= count {
					broken = true
					msg += fmt.Sprintf("mech %s slot %d beyond count %d\n", m.Address, slot, count)
				}

				bz := k.getStore(ctx).Get(types.UndeliveredIndexKey(mech, id))
				if bz == nil || types.GetUint64FromBytes(bz) != slot {
					broken = true
					msg += fmt.Sprintf("mech %s request %s index does not point at slot %d\n", m.Address, id, slot)
				}

				req, found := k.GetRequest(ctx, id)
				switch {
				case !found:
					broken = true
					msg += fmt.Sprintf("mech %s indexes unknown request %s\n", m.Address, id)
				case req.IsDelivered():
					broken = true
					msg += fmt.Sprintf("mech %s indexes delivered request %s\n", m.Address, id)
				case req.PriorityMech != m.Address:
					broken = true
					msg += fmt.Sprintf("mech %s indexes request %s of %s\n", m.Address, id, req.PriorityMech)
				}
				return false
			})

			if seen != count {
				broken = true
				msg += fmt.Sprintf("mech %s has %d slots, count %d\n", m.Address, seen, count)
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "undelivered-index", msg), broken
	}
}

// DeliveredRequestsInvariant checks that pending requests are indexed under their
// priority mech and that delivered ones carry a rate within their ceiling.
func DeliveredRequestsInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			broken bool
			msg    string
		)

		k.IterateRequests(ctx, func(req types.Request) bool {
			if req.IsDelivered() {
				if req.DeliveryRate.IsNil() || req.DeliveryRate.GT(req.MaxDeliveryRate) {
					broken = true
					msg += fmt.Sprintf("request %s delivered at %s above max %s\n", req.ID, req.DeliveryRate, req.MaxDeliveryRate)
				}
				return false
			}

			if !k.getStore(ctx).Has(types.UndeliveredIndexKey(req.PriorityMechAddress(), req.ID)) {
				broken = true
				msg += fmt.Sprintf("pending request %s missing from %s undelivered set\n", req.ID, req.PriorityMech)
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "delivered-requests", msg), broken
	}
}
