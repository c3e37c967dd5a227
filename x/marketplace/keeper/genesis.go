package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// InitGenesis initializes the marketplace module's state from a genesis state.
// Pending requests are re-indexed under their priority mech in the given order.
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	if err := k.SetParams(ctx, data.Params); err != nil {
		return err
	}
	if data.Owner != "" {
		k.owners.Set(ctx, sdk.MustAccAddressFromBech32(data.Owner))
	}

	for _, fs := range data.FactoryStatuses {
		factory := sdk.MustAccAddressFromBech32(fs.Factory)
		if _, known := k.factories[factory.String()]; !known {
			return types.ErrUnknownFactory.Wrap(fs.Factory)
		}
		k.setFactoryStatus(ctx, factory, fs.Active)
	}
	for _, tb := range data.TrackerBindings {
		tracker := sdk.MustAccAddressFromBech32(tb.Tracker)
		if _, known := k.trackers[tracker.String()]; !known {
			return types.ErrUnknownTracker.Wrap(tb.Tracker)
		}
		k.getStore(ctx).Set(types.PaymentTypeTrackerKey(tb.PaymentType), tracker)
	}

	for _, m := range data.Mechs {
		k.SetMech(ctx, m)
	}
	for _, req := range data.Requests {
		k.SetRequest(ctx, req)
		if !req.IsDelivered() {
			k.addUndelivered(ctx, req.PriorityMechAddress(), req.ID)
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for _, n := range data.Nonces {
		k.nonces.Set(sdkCtx, sdk.MustAccAddressFromBech32(n.Account), n.Nonce)
	}
	for _, c := range data.Counters {
		k.setCounter(ctx, c.Kind, sdk.MustAccAddressFromBech32(c.Account), c.Value)
	}
	k.setNumTotalRequests(ctx, data.NumTotalRequests)
	k.setMechNonce(ctx, data.MechNonce)

	k.Logger(ctx).Info("marketplace genesis initialized",
		"mechs", len(data.Mechs),
		"requests", len(data.Requests),
	)
	return nil
}

// ExportGenesis returns the marketplace module's exported genesis. Pending requests
// are exported in slot order so a re-import rebuilds identical undelivered sets.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	gs.Params = k.GetParams(ctx)
	gs.Owner = k.Owner(ctx).String()

	k.IterateFactoryStatuses(ctx, func(factory sdk.AccAddress) bool {
		gs.FactoryStatuses = append(gs.FactoryStatuses, types.FactoryStatus{Factory: factory.String(), Active: true})
		return false
	})
	k.IteratePaymentTypeBalanceTrackers(ctx, func(pt types.PaymentType, tracker sdk.AccAddress) bool {
		gs.TrackerBindings = append(gs.TrackerBindings, types.TrackerBinding{PaymentType: pt, Tracker: tracker.String()})
		return false
	})

	var exportErr error
	k.IterateMechs(ctx, func(m types.Mech) bool {
		gs.Mechs = append(gs.Mechs, m)
		k.iterateUndelivered(ctx, m.MechAddress(), func(_ uint64, id types.RequestID) bool {
			req, found := k.GetRequest(ctx, id)
			if !found {
				exportErr = fmt.Errorf("undelivered request %s of mech %s not found", id, m.Address)
				return true
			}
			gs.Requests = append(gs.Requests, req)
			return false
		})
		return exportErr != nil
	})
	if exportErr != nil {
		return nil, exportErr
	}
	k.IterateRequests(ctx, func(req types.Request) bool {
		if req.IsDelivered() {
			gs.Requests = append(gs.Requests, req)
		}
		return false
	})

	k.nonces.Iterate(sdk.UnwrapSDKContext(ctx), func(account sdk.AccAddress, value uint64) bool {
		gs.Nonces = append(gs.Nonces, types.AccountNonce{Account: account.String(), Nonce: value})
		return false
	})
	k.IterateCounters(ctx, func(kind byte, account sdk.AccAddress, value uint64) bool {
		gs.Counters = append(gs.Counters, types.Counter{Kind: kind, Account: account.String(), Value: value})
		return false
	})
	gs.NumTotalRequests = k.NumTotalRequests(ctx)
	gs.MechNonce = k.getMechNonce(ctx)

	if err := gs.Validate(); err != nil {
		return nil, fmt.Errorf("exported marketplace genesis is invalid: %w", err)
	}
	return gs, nil
}
