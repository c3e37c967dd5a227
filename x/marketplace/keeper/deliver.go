package keeper

import (
	"context"
	"encoding/hex"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/crypto/sha3"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// DeliverMarketplace records deliveries made by mech itself. The returned flags
// report which ids were newly delivered; already delivered ids are skipped.
func (k Keeper) DeliverMarketplace(ctx context.Context, mech sdk.AccAddress, requestIDs []types.RequestID, deliveryRates []sdkmath.Int) ([]bool, error) {
	m, err := k.CheckMech(ctx, mech)
	if err != nil {
		return nil, err
	}
	return k.deliver(ctx, m, requestIDs, nil, deliveryRates)
}

// DeliverToMarketplace records deliveries submitted by the operator of mech.
func (k Keeper) DeliverToMarketplace(
	ctx context.Context,
	operator, mech sdk.AccAddress,
	requestIDs []types.RequestID,
	payloads [][]byte,
	deliveryRates []sdkmath.Int,
) ([]bool, error) {
	m, err := k.checkMechOperator(ctx, operator, mech)
	if err != nil {
		return nil, err
	}
	if len(payloads) != len(requestIDs) {
		return nil, types.ErrWrongArrayLength.Wrapf("%d request ids, %d payloads", len(requestIDs), len(payloads))
	}
	return k.deliver(ctx, m, requestIDs, payloads, deliveryRates)
}

// chargedRate is the rate a mech charges for a delivery it reports at reported.
func chargedRate(m types.Mech, reported sdkmath.Int) sdkmath.Int {
	if m.DynamicPricing {
		return reported
	}
	return m.MaxDeliveryRate
}

func (k Keeper) deliver(
	ctx context.Context,
	m types.Mech,
	requestIDs []types.RequestID,
	payloads [][]byte,
	deliveryRates []sdkmath.Int,
) ([]bool, error) {
	if len(requestIDs) == 0 || len(requestIDs) != len(deliveryRates) {
		return nil, types.ErrWrongArrayLength.Wrapf("%d request ids, %d delivery rates", len(requestIDs), len(deliveryRates))
	}

	tracker, err := k.balanceTracker(ctx, m.PaymentType)
	if err != nil {
		return nil, err
	}
	serviceOwner, err := k.serviceRegistry.OwnerOf(ctx, m.ServiceID)
	if err != nil {
		return nil, err
	}

	mech := m.MechAddress()
	delivered := make([]bool, len(requestIDs))
	var numDelivered, numFallback int

	err = k.atomic(ctx, func(ctx sdk.Context) error {
		now := ctx.BlockTime()
		var (
			requesters    []sdk.AccAddress
			actualRates   []sdkmath.Int
			reservedRates []sdkmath.Int
		)

		for i, id := range requestIDs {
			req, found := k.GetRequest(ctx, id)
			if !found {
				return types.ErrRequestIdNotFound.Wrap(id.String())
			}
			if req.IsDelivered() {
				continue
			}
			if req.PaymentType != m.PaymentType {
				return types.ErrWrongPaymentType.Wrapf("request %s was paid with %s", id, req.PaymentType)
			}

			rate := chargedRate(m, deliveryRates[i])
			if rate.IsNil() || rate.IsNegative() {
				return types.ErrZeroValue.Wrapf("delivery rate %d", i)
			}
			if rate.GT(req.MaxDeliveryRate) {
				return types.ErrOverflow.Wrapf("delivery rate %s exceeds max %s for request %s", rate, req.MaxDeliveryRate, id)
			}

			priority := req.PriorityMechAddress()
			fallback := !priority.Equals(mech)
			if fallback && req.Status(now) != types.RequestStatusRequestedExpired {
				return types.ErrPriorityMechResponseTimeout.Wrapf("request %s is reserved for %s until %d", id, priority, req.ResponseDeadline)
			}

			if err := k.removeUndelivered(ctx, priority, id); err != nil {
				return err
			}
			req.DeliveryMech = m.Address
			req.DeliveryRate = rate
			k.SetRequest(ctx, req)

			requester := req.RequesterAddress()
			k.incrementCounter(ctx, types.CounterDeliveries, requester)
			k.incrementCounter(ctx, types.CounterMechDeliveries, mech)
			k.incrementCounter(ctx, types.CounterServiceDeliveries, serviceOwner)

			if err := k.karmaKeeper.ChangeMechKarma(ctx, k.address, mech, 1); err != nil {
				return err
			}
			if err := k.karmaKeeper.ChangeRequesterMechKarma(ctx, k.address, requester, mech, 1); err != nil {
				return err
			}
			if fallback {
				if err := k.karmaKeeper.ChangeMechKarma(ctx, k.address, priority, -1); err != nil {
					return err
				}
				numFallback++
			}

			requesters = append(requesters, requester)
			actualRates = append(actualRates, rate)
			reservedRates = append(reservedRates, req.MaxDeliveryRate)

			attrs := []sdk.Attribute{
				sdk.NewAttribute(types.AttributeKeyRequestID, id.String()),
				sdk.NewAttribute(types.AttributeKeyRequester, req.Requester),
				sdk.NewAttribute(types.AttributeKeyPriorityMech, req.PriorityMech),
				sdk.NewAttribute(types.AttributeKeyDeliveryMech, m.Address),
				sdk.NewAttribute(types.AttributeKeyDeliveryRate, rate.String()),
			}
			if payloads != nil {
				attrs = append(attrs, sdk.NewAttribute(types.AttributeKeyDataHash, dataHash(payloads[i])))
			}
			ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeDelivery, attrs...))

			delivered[i] = true
			numDelivered++
		}

		if numDelivered == 0 {
			return nil
		}
		return tracker.FinalizeDeliveryRates(ctx, k.address, mech, requesters, actualRates, reservedRates, k.GetParams(ctx).Fee)
	})
	if err != nil {
		return nil, err
	}

	k.metrics.Deliveries.WithLabelValues(deliveryPathDirect).Add(float64(numDelivered))
	k.metrics.FallbackDeliveries.Add(float64(numFallback))
	k.metrics.SkippedDeliveries.Add(float64(len(requestIDs) - numDelivered))
	return delivered, nil
}

// dataHash is the hex keccak256 of a payload, emitted instead of the payload itself.
func dataHash(payload []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
