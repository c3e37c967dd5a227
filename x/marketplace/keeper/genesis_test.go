package keeper_test

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/mechx-labs/mechx/app"
	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 10)
	other := keepertest.CreateMech(s.T(), s.app, s.ctx, keepertest.NewTestAccount("other").Address, bttypes.VariantFixedPriceNative, 20)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	ids := make([]types.RequestID, 4)
	for i := range ids {
		ids[i] = s.requestNative(mech, fmt.Sprintf("payload-%d", i), 10)
	}
	otherID := s.requestNative(other, "other", 20)

	_, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{ids[0]}, []math.Int{math.NewInt(10)})
	s.Require().NoError(err)

	exported, err := s.app.ExportGenesis()
	s.Require().NoError(err)

	fresh, err := app.New(log.NewNopLogger(), dbm.NewMemDB(), s.app.Config())
	s.Require().NoError(err)
	fresh.SetBlockTime(s.ctx.BlockTime())
	s.Require().NoError(fresh.InitChain(exported))
	ctx := fresh.NewContext()
	k := fresh.MarketplaceKeeper

	before, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 0, 0)
	s.Require().NoError(err)
	after, err := k.GetUndeliveredRequestIds(ctx, mech, 0, 0)
	s.Require().NoError(err)
	s.Require().Equal(before, after)
	s.Require().Len(after, 3)

	otherPending, err := k.GetUndeliveredRequestIds(ctx, other, 0, 0)
	s.Require().NoError(err)
	s.Require().Equal([]types.RequestID{otherID}, otherPending)

	s.Require().Equal(s.keeper.GetNonce(s.ctx, s.requester.Address), k.GetNonce(ctx, s.requester.Address))
	s.Require().Equal(uint64(5), k.NumTotalRequests(ctx))
	s.Require().Equal(uint64(5), k.MapRequestCounts(ctx, s.requester.Address))
	s.Require().Equal(uint64(1), k.MapDeliveryCounts(ctx, s.requester.Address))
	s.Require().Equal(uint64(1), k.MapMechDeliveryCounts(ctx, mech))
	s.Require().Equal(s.keeper.GetMechNonce(s.ctx), k.GetMechNonce(ctx))
	s.Require().Equal(s.keeper.GetParams(s.ctx), k.GetParams(ctx))

	tracker := fresh.Tracker(bttypes.VariantFixedPriceNative)
	s.Require().Equal(
		s.tracker(bttypes.VariantFixedPriceNative).GetMechBalance(s.ctx, mech),
		tracker.GetMechBalance(ctx, mech),
	)
	s.Require().NoError(fresh.CheckInvariants(ctx))

	// a second export of the imported state is identical
	reexported, err := fresh.ExportGenesis()
	s.Require().NoError(err)
	for _, name := range []string{types.ModuleName, bttypes.InstanceName(bttypes.VariantFixedPriceNative)} {
		s.Require().JSONEq(string(exported[name]), string(reexported[name]), name)
	}

	// the imported state keeps serving the marketplace
	_, err = k.DeliverMarketplace(ctx, mech, []types.RequestID{ids[2]}, []math.Int{math.NewInt(10)})
	s.Require().NoError(err)
	s.Require().Equal(uint64(2), k.NumUndeliveredRequests(ctx, mech))
}

func (s *KeeperTestSuite) TestGenesisValidate() {
	exported, err := s.app.ExportGenesis()
	s.Require().NoError(err)

	var gs types.GenesisState
	s.Require().NoError(json.Unmarshal(exported[types.ModuleName], &gs))
	s.Require().NoError(gs.Validate())

	gs.Params.MaxResponseTimeout = gs.Params.MinResponseTimeout - 1
	s.Require().Error(gs.Validate())
}
