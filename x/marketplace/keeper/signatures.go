package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// ApproveHash lets signer authorize a request id ahead of a signature-delegated
// delivery, for signers that cannot produce a plain-key signature.
func (k Keeper) ApproveHash(ctx context.Context, signer sdk.AccAddress, id types.RequestID) error {
	if signer.Empty() {
		return types.ErrZeroAddress.Wrap("signer")
	}

	k.getStore(ctx).Set(types.ApprovedHashKey(signer, id[:]), []byte{1})
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeHashApproved,
			sdk.NewAttribute(types.AttributeKeyRequester, signer.String()),
			sdk.NewAttribute(types.AttributeKeyHash, id.String()),
		),
	)
	return nil
}

// IsHashApproved reports whether signer has an unconsumed approval for id.
func (k Keeper) IsHashApproved(ctx context.Context, signer sdk.AccAddress, id types.RequestID) bool {
	return k.getStore(ctx).Has(types.ApprovedHashKey(signer, id[:]))
}

// validateSignature accepts a plain-key blob, or an empty signature backed by an
// approved hash. Approvals are single use.
func (k Keeper) validateSignature(ctx context.Context, requester sdk.AccAddress, id types.RequestID, sig []byte) error {
	if len(sig) == 0 {
		key := types.ApprovedHashKey(requester, id[:])
		store := k.getStore(ctx)
		if !store.Has(key) {
			return types.ErrSignatureNotValidated.Wrapf("no approval for request %s", id)
		}
		store.Delete(key)
		return nil
	}

	if !types.VerifyPlainKeySignature(requester, id, sig) {
		return types.ErrSignatureNotValidated.Wrapf("signature does not match request %s", id)
	}
	return nil
}

// DeliverMarketplaceWithSignatures records requests that requester signed off-chain
// and their deliveries in one step. Each item's id is computed with the next
// requester nonce, so items must be submitted in signing order.
func (k Keeper) DeliverMarketplaceWithSignatures(
	ctx context.Context,
	operator, mech, requester sdk.AccAddress,
	items []types.DeliverWithSignature,
	deliveryRates []sdkmath.Int,
) ([]types.RequestID, error) {
	m, err := k.checkMechOperator(ctx, operator, mech)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || len(items) != len(deliveryRates) {
		return nil, types.ErrWrongArrayLength.Wrapf("%d items, %d delivery rates", len(items), len(deliveryRates))
	}
	if requester.Empty() {
		return nil, types.ErrZeroAddress.Wrap("requester")
	}

	tracker, err := k.balanceTracker(ctx, m.PaymentType)
	if err != nil {
		return nil, err
	}
	serviceOwner, err := k.serviceRegistry.OwnerOf(ctx, m.ServiceID)
	if err != nil {
		return nil, err
	}

	ids := make([]types.RequestID, 0, len(items))
	err = k.atomic(ctx, func(ctx sdk.Context) error {
		actualRates := make([]sdkmath.Int, len(items))
		for i, item := range items {
			maxRate := deliveryRates[i]
			if maxRate.IsNil() || !maxRate.IsPositive() {
				return types.ErrZeroValue.Wrapf("delivery rate %d", i)
			}
			if len(item.RequestData) == 0 {
				return types.ErrZeroValue.Wrapf("request data %d", i)
			}

			nonce, err := k.nonces.Use(ctx, requester)
			if err != nil {
				return err
			}
			id := types.ComputeRequestID(mech, requester, item.RequestData, maxRate, m.PaymentType, nonce)
			if err := k.validateSignature(ctx, requester, id, item.Signature); err != nil {
				k.metrics.SignatureFailures.Inc()
				return err
			}
			if k.HasRequest(ctx, id) {
				return types.ErrRequestIdCollision.Wrap(id.String())
			}

			actual := chargedRate(m, maxRate)
			if actual.GT(maxRate) {
				return types.ErrOverflow.Wrapf("mech price %s exceeds signed rate %s", actual, maxRate)
			}
			actualRates[i] = actual

			k.SetRequest(ctx, types.Request{
				ID:               id,
				Requester:        requester.String(),
				PriorityMech:     m.Address,
				PaymentType:      m.PaymentType,
				MaxDeliveryRate:  maxRate,
				Nonce:            nonce,
				ResponseDeadline: uint32(ctx.BlockTime().Unix()),
				CreatedAt:        ctx.BlockTime().Unix(),
				DeliveryMech:     m.Address,
				DeliveryRate:     actual,
			})
			k.setNumTotalRequests(ctx, k.NumTotalRequests(ctx)+1)
			k.incrementCounter(ctx, types.CounterRequests, requester)
			k.incrementCounter(ctx, types.CounterMechRequests, mech)
			k.incrementCounter(ctx, types.CounterDeliveries, requester)
			k.incrementCounter(ctx, types.CounterMechDeliveries, mech)
			k.incrementCounter(ctx, types.CounterServiceDeliveries, serviceOwner)

			if err := k.karmaKeeper.ChangeMechKarma(ctx, k.address, mech, 1); err != nil {
				return err
			}
			if err := k.karmaKeeper.ChangeRequesterMechKarma(ctx, k.address, requester, mech, 1); err != nil {
				return err
			}

			ctx.EventManager().EmitEvent(
				sdk.NewEvent(
					types.EventTypeDeliverySignature,
					sdk.NewAttribute(types.AttributeKeyRequestID, id.String()),
					sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
					sdk.NewAttribute(types.AttributeKeyDeliveryMech, m.Address),
					sdk.NewAttribute(types.AttributeKeyDeliveryRate, actual.String()),
					sdk.NewAttribute(types.AttributeKeyDataHash, dataHash(item.DeliveryData)),
				),
			)
			ids = append(ids, id)
		}

		return tracker.AdjustMechRequesterBalances(ctx, k.address, mech, requester, deliveryRates, actualRates, k.GetParams(ctx).Fee)
	})
	if err != nil {
		return nil, err
	}

	k.metrics.Deliveries.WithLabelValues(deliveryPathSignature).Add(float64(len(ids)))
	return ids, nil
}
