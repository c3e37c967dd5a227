package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// Create registers a new mech for serviceID through an active factory and returns
// its derived address.
func (k Keeper) Create(ctx context.Context, creator sdk.AccAddress, serviceID uint64, factoryAddr sdk.AccAddress, payload []byte) (sdk.AccAddress, error) {
	if factoryAddr.Empty() {
		return nil, types.ErrZeroAddress.Wrap("factory")
	}
	if !k.IsFactoryActive(ctx, factoryAddr) {
		return nil, types.ErrUnauthorizedAccount.Wrapf("factory %s is not active", factoryAddr)
	}
	factory, known := k.factories[factoryAddr.String()]
	if !known {
		return nil, types.ErrUnknownFactory.Wrap(factoryAddr.String())
	}
	if serviceID == 0 {
		return nil, types.ErrZeroValue.Wrap("service id")
	}

	exists, err := k.serviceRegistry.Exists(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.ErrWrongServiceState.Wrapf("service %d does not exist", serviceID)
	}

	maxDeliveryRate, err := factory.ParseCreationData(payload)
	if err != nil {
		return nil, err
	}

	var mechAddr sdk.AccAddress
	err = k.atomic(ctx, func(ctx sdk.Context) error {
		mechNonce := k.getMechNonce(ctx)
		mechAddr = address.Derive(factoryAddr, append(types.GetUint64Bytes(serviceID), types.GetUint64Bytes(mechNonce)...))
		if k.HasMech(ctx, mechAddr) {
			return types.ErrMechAlreadyExists.Wrap(mechAddr.String())
		}
		k.setMechNonce(ctx, mechNonce+1)

		k.SetMech(ctx, types.Mech{
			Address:         mechAddr.String(),
			ServiceID:       serviceID,
			Factory:         factoryAddr.String(),
			PaymentType:     factory.PaymentType(),
			MaxDeliveryRate: maxDeliveryRate,
			DynamicPricing:  factory.DynamicPricing(),
			CreatedAt:       ctx.BlockTime().Unix(),
		})

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeMechCreated,
				sdk.NewAttribute(types.AttributeKeyMech, mechAddr.String()),
				sdk.NewAttribute(types.AttributeKeyServiceID, strconv.FormatUint(serviceID, 10)),
				sdk.NewAttribute(types.AttributeKeyFactory, factoryAddr.String()),
				sdk.NewAttribute(types.AttributeKeyOwner, creator.String()),
				sdk.NewAttribute(types.AttributeKeyPaymentType, factory.PaymentType().String()),
				sdk.NewAttribute(types.AttributeKeyMaxDeliveryRate, maxDeliveryRate.String()),
			),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.metrics.MechsCreated.WithLabelValues(factory.PaymentType().String()).Inc()
	k.Logger(ctx).Info("mech created", "mech", mechAddr.String(), "service_id", serviceID)
	return mechAddr, nil
}

// GetMech returns a mech record.
func (k Keeper) GetMech(ctx context.Context, mech sdk.AccAddress) (types.Mech, bool) {
	var m types.Mech
	found := k.getJSON(ctx, types.MechKey(mech), &m)
	return m, found
}

// HasMech reports whether a mech record exists.
func (k Keeper) HasMech(ctx context.Context, mech sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.MechKey(mech))
}

// SetMech stores a mech record.
func (k Keeper) SetMech(ctx context.Context, m types.Mech) {
	k.setJSON(ctx, types.MechKey(m.MechAddress()), m)
}

// IterateMechs iterates over all mech records.
func (k Keeper) IterateMechs(ctx context.Context, cb func(m types.Mech) (stop bool)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.MechPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var m types.Mech
		mustUnmarshal(iterator.Key(), iterator.Value(), &m)
		if cb(m) {
			break
		}
	}
}

// CheckMech returns the record of mech if it exists and its factory is still active.
func (k Keeper) CheckMech(ctx context.Context, mech sdk.AccAddress) (types.Mech, error) {
	if mech.Empty() {
		return types.Mech{}, types.ErrZeroAddress.Wrap("mech")
	}
	m, found := k.GetMech(ctx, mech)
	if !found {
		return types.Mech{}, types.ErrUnauthorizedAccount.Wrapf("mech %s is not registered", mech)
	}
	if !k.IsFactoryActive(ctx, m.FactoryAddress()) {
		return types.Mech{}, types.ErrUnauthorizedAccount.Wrapf("mech %s factory %s is not active", mech, m.Factory)
	}
	return m, nil
}

// MechOperator returns the owner of the service backing mech. Payouts of deactivated
// mechs still resolve so earned balances are never stranded.
func (k Keeper) MechOperator(ctx context.Context, mech sdk.AccAddress) (sdk.AccAddress, error) {
	m, found := k.GetMech(ctx, mech)
	if !found {
		return nil, types.ErrUnauthorizedAccount.Wrapf("mech %s is not registered", mech)
	}
	return k.serviceRegistry.OwnerOf(ctx, m.ServiceID)
}

// checkMechOperator authorizes operator to act for an active mech.
func (k Keeper) checkMechOperator(ctx context.Context, operator, mech sdk.AccAddress) (types.Mech, error) {
	m, err := k.CheckMech(ctx, mech)
	if err != nil {
		return types.Mech{}, err
	}
	owner, err := k.serviceRegistry.OwnerOf(ctx, m.ServiceID)
	if err != nil {
		return types.Mech{}, err
	}
	if !owner.Equals(operator) {
		return types.Mech{}, types.ErrUnauthorizedAccount.Wrapf("%s is not the operator of mech %s", operator, mech)
	}
	return m, nil
}

// ChangeMaxDeliveryRate updates the rate a mech advertises. Operator only.
func (k Keeper) ChangeMaxDeliveryRate(ctx context.Context, operator, mech sdk.AccAddress, maxDeliveryRate math.Int) error {
	m, err := k.checkMechOperator(ctx, operator, mech)
	if err != nil {
		return err
	}
	if maxDeliveryRate.IsNil() || !maxDeliveryRate.IsPositive() {
		return types.ErrZeroValue.Wrap("max delivery rate")
	}

	m.MaxDeliveryRate = maxDeliveryRate
	k.SetMech(ctx, m)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeMaxDeliveryRateChanged,
			sdk.NewAttribute(types.AttributeKeyMech, mech.String()),
			sdk.NewAttribute(types.AttributeKeyMaxDeliveryRate, maxDeliveryRate.String()),
		),
	)
	return nil
}

// GetMechNonce returns the counter mixed into the next derived mech address.
func (k Keeper) GetMechNonce(ctx context.Context) uint64 {
	return k.getMechNonce(ctx)
}

func (k Keeper) getMechNonce(ctx context.Context) uint64 {
	return types.GetUint64FromBytes(k.getStore(ctx).Get(types.MechNonceKey))
}

func (k Keeper) setMechNonce(ctx context.Context, n uint64) {
	k.getStore(ctx).Set(types.MechNonceKey, types.GetUint64Bytes(n))
}
