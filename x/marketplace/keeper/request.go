package keeper

import (
	"context"
	"math"
	"strconv"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
	sharedkeeper "github.com/mechx-labs/mechx/x/shared/keeper"
)

// GetRequestId computes the id a request with these inputs would receive.
func (k Keeper) GetRequestId(
	mech, requester sdk.AccAddress,
	payload []byte,
	maxDeliveryRate sdkmath.Int,
	paymentType types.PaymentType,
	nonce uint64,
) types.RequestID {
	return types.ComputeRequestID(mech, requester, payload, maxDeliveryRate, paymentType, nonce)
}

// Request submits a single request and returns its id. attached is value sent along
// with the request, accepted only by the fixed-price native tracker.
func (k Keeper) Request(
	ctx context.Context,
	requester sdk.AccAddress,
	payload []byte,
	maxDeliveryRate sdkmath.Int,
	paymentType types.PaymentType,
	priorityMech sdk.AccAddress,
	responseTimeout uint64,
	attached sdkmath.Int,
	extraData []byte,
) (types.RequestID, error) {
	ids, err := k.RequestBatch(ctx, requester, [][]byte{payload}, maxDeliveryRate, paymentType, priorityMech, responseTimeout, attached, extraData)
	if err != nil {
		return types.RequestID{}, err
	}
	return ids[0], nil
}

// RequestBatch submits several requests to the same mech under one reservation of
// len(payloads) * maxDeliveryRate. Either every request is recorded or none is.
func (k Keeper) RequestBatch(
	ctx context.Context,
	requester sdk.AccAddress,
	payloads [][]byte,
	maxDeliveryRate sdkmath.Int,
	paymentType types.PaymentType,
	priorityMech sdk.AccAddress,
	responseTimeout uint64,
	attached sdkmath.Int,
	extraData []byte,
) ([]types.RequestID, error) {
	if requester.Empty() {
		return nil, types.ErrZeroAddress.Wrap("requester")
	}
	if err := k.checkRequestTimeout(ctx, responseTimeout); err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, types.ErrZeroValue.Wrap("no payloads")
	}
	for i, payload := range payloads {
		if len(payload) == 0 {
			return nil, types.ErrZeroValue.Wrapf("payload %d", i)
		}
	}

	mech, tracker, err := k.checkRequestTarget(ctx, maxDeliveryRate, paymentType, priorityMech)
	if err != nil {
		return nil, err
	}
	total, err := maxDeliveryRate.SafeMul(sdkmath.NewInt(int64(len(payloads))))
	if err != nil {
		return nil, types.ErrOverflow.Wrapf("%d requests at rate %s", len(payloads), maxDeliveryRate)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	deadline := uint32(uint64(sdkCtx.BlockTime().Unix()) + responseTimeout)

	ids := make([]types.RequestID, 0, len(payloads))
	err = k.atomic(ctx, func(ctx sdk.Context) error {
		for _, payload := range payloads {
			nonce, err := k.nonces.Use(ctx, requester)
			if err != nil {
				return err
			}

			id := types.ComputeRequestID(priorityMech, requester, payload, maxDeliveryRate, paymentType, nonce)
			if k.HasRequest(ctx, id) {
				return types.ErrRequestIdCollision.Wrap(id.String())
			}

			k.SetRequest(ctx, types.Request{
				ID:               id,
				Requester:        requester.String(),
				PriorityMech:     priorityMech.String(),
				PaymentType:      paymentType,
				MaxDeliveryRate:  maxDeliveryRate,
				Nonce:            nonce,
				ResponseDeadline: deadline,
				CreatedAt:        ctx.BlockTime().Unix(),
			})
			k.addUndelivered(ctx, priorityMech, id)
			k.incrementCounter(ctx, types.CounterRequests, requester)
			k.incrementCounter(ctx, types.CounterMechRequests, priorityMech)
			k.setNumTotalRequests(ctx, k.NumTotalRequests(ctx)+1)

			ctx.EventManager().EmitEvent(
				sdk.NewEvent(
					types.EventTypeRequest,
					sdk.NewAttribute(types.AttributeKeyRequestID, id.String()),
					sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
					sdk.NewAttribute(types.AttributeKeyPriorityMech, priorityMech.String()),
					sdk.NewAttribute(types.AttributeKeyPaymentType, paymentType.String()),
					sdk.NewAttribute(types.AttributeKeyMaxDeliveryRate, maxDeliveryRate.String()),
					sdk.NewAttribute(types.AttributeKeyResponseDeadline, strconv.FormatUint(uint64(deadline), 10)),
					sdk.NewAttribute(types.AttributeKeyNonce, strconv.FormatUint(nonce, 10)),
					sdk.NewAttribute(types.AttributeKeyDataHash, dataHash(payload)),
				),
			)
			ids = append(ids, id)
		}

		// Bookkeeping is complete before the tracker touches any external asset.
		return tracker.CheckAndRecordDeliveryRate(ctx, k.address, requester, total, attached, extraData)
	})
	if err != nil {
		return nil, err
	}

	k.metrics.RequestsSubmitted.WithLabelValues(mech.PaymentType.String()).Add(float64(len(ids)))
	k.Logger(ctx).Debug("requests recorded", "requester", requester.String(), "mech", priorityMech.String(), "count", len(ids))
	return ids, nil
}

func (k Keeper) checkRequestTimeout(ctx context.Context, responseTimeout uint64) error {
	now := uint64(sdk.UnwrapSDKContext(ctx).BlockTime().Unix())
	if responseTimeout > math.MaxUint32 || now+responseTimeout > math.MaxUint32 {
		return types.ErrOverflow.Wrapf("response deadline %d+%d does not fit 32 bits", now, responseTimeout)
	}

	params := k.GetParams(ctx)
	if responseTimeout < params.MinResponseTimeout || responseTimeout > params.MaxResponseTimeout {
		return types.ErrOutOfBounds.Wrapf("response timeout %d outside [%d, %d]",
			responseTimeout, params.MinResponseTimeout, params.MaxResponseTimeout)
	}
	return nil
}

func (k Keeper) checkRequestTarget(
	ctx context.Context,
	maxDeliveryRate sdkmath.Int,
	paymentType types.PaymentType,
	priorityMech sdk.AccAddress,
) (types.Mech, types.BalanceTracker, error) {
	if maxDeliveryRate.IsNil() || !maxDeliveryRate.IsPositive() {
		return types.Mech{}, nil, types.ErrZeroValue.Wrap("max delivery rate")
	}
	if paymentType.IsZero() {
		return types.Mech{}, nil, types.ErrZeroValue.Wrap("payment type")
	}
	if priorityMech.Empty() {
		return types.Mech{}, nil, types.ErrZeroAddress.Wrap("priority mech")
	}

	mech, err := k.CheckMech(ctx, priorityMech)
	if err != nil {
		return types.Mech{}, nil, err
	}
	if mech.PaymentType != paymentType {
		return types.Mech{}, nil, types.ErrWrongPaymentType.Wrapf("mech %s expects %s, got %s", mech.Address, mech.PaymentType, paymentType)
	}

	tracker, err := k.balanceTracker(ctx, paymentType)
	if err != nil {
		return types.Mech{}, nil, err
	}

	if !mech.DynamicPricing && mech.MaxDeliveryRate.GT(maxDeliveryRate) {
		return types.Mech{}, nil, types.ErrOutOfBounds.Wrapf("mech price %s exceeds max delivery rate %s", mech.MaxDeliveryRate, maxDeliveryRate)
	}
	return mech, tracker, nil
}

// GetRequest returns a stored request.
func (k Keeper) GetRequest(ctx context.Context, id types.RequestID) (types.Request, bool) {
	var req types.Request
	found := k.getJSON(ctx, types.RequestKey(id), &req)
	return req, found
}

// HasRequest reports whether id has been recorded.
func (k Keeper) HasRequest(ctx context.Context, id types.RequestID) bool {
	return k.getStore(ctx).Has(types.RequestKey(id))
}

// SetRequest stores a request.
func (k Keeper) SetRequest(ctx context.Context, req types.Request) {
	k.setJSON(ctx, types.RequestKey(req.ID), req)
}

// IterateRequests walks all requests in id order.
func (k Keeper) IterateRequests(ctx context.Context, cb func(req types.Request) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.RequestPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var req types.Request
		mustUnmarshal(iterator.Key(), iterator.Value(), &req)
		if cb(req) {
			break
		}
	}
}

// GetRequestStatus derives the status of id at the current block time.
func (k Keeper) GetRequestStatus(ctx context.Context, id types.RequestID) types.RequestStatus {
	req, found := k.GetRequest(ctx, id)
	if !found {
		return types.RequestStatusDoesNotExist
	}
	return req.Status(sdk.UnwrapSDKContext(ctx).BlockTime())
}

// GetNonce returns the nonce the next request or signed delivery of account will use.
func (k Keeper) GetNonce(ctx context.Context, account sdk.AccAddress) uint64 {
	return k.nonces.Current(sdk.UnwrapSDKContext(ctx), account)
}

// CheckRequester verifies that requester owns an existing service.
func (k Keeper) CheckRequester(ctx context.Context, requester sdk.AccAddress, serviceID uint64) error {
	exists, err := k.serviceRegistry.Exists(ctx, serviceID)
	if err != nil {
		return err
	}
	if !exists {
		return types.ErrWrongServiceState.Wrapf("service %d does not exist", serviceID)
	}

	if registry, ok := k.serviceRegistry.(sharedkeeper.ServiceRegistryV1Extended); ok {
		deployed, err := registry.IsDeployed(ctx, serviceID)
		if err != nil {
			return err
		}
		if !deployed {
			return types.ErrWrongServiceState.Wrapf("service %d is not deployed", serviceID)
		}
	}

	owner, err := k.serviceRegistry.OwnerOf(ctx, serviceID)
	if err != nil {
		return err
	}
	if !owner.Equals(requester) {
		return types.ErrOwnerOnly.Wrapf("%s does not own service %d", requester, serviceID)
	}
	return nil
}
