package keeper_test

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestGetUndeliveredRequestIds() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 10)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	ids := make([]types.RequestID, 5)
	for i := range ids {
		ids[i] = s.requestNative(mech, fmt.Sprintf("payload-%d", i), 10)
	}

	all, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 5, 0)
	s.Require().NoError(err)
	s.Require().Equal([]types.RequestID{ids[4], ids[3], ids[2], ids[1], ids[0]}, all)

	whole, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 0, 0)
	s.Require().NoError(err)
	s.Require().Equal(all, whole)

	page, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 2, 1)
	s.Require().NoError(err)
	s.Require().Equal([]types.RequestID{ids[3], ids[2]}, page)

	_, err = s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 0, 5)
	s.Require().ErrorIs(err, types.ErrOverflow)

	_, err = s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 6, 0)
	s.Require().ErrorIs(err, types.ErrOverflow)

	_, err = s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 1, 6)
	s.Require().ErrorIs(err, types.ErrOverflow)
}

func (s *KeeperTestSuite) TestUndeliveredSwapRemove() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 10)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	ids := make([]types.RequestID, 4)
	for i := range ids {
		ids[i] = s.requestNative(mech, fmt.Sprintf("payload-%d", i), 10)
	}

	// removing from the middle moves the last slot into the hole
	_, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{ids[1]}, []math.Int{math.NewInt(10)})
	s.Require().NoError(err)

	remaining, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 0, 0)
	s.Require().NoError(err)
	s.Require().Equal([]types.RequestID{ids[2], ids[3], ids[0]}, remaining)
	s.requireInvariants()

	_, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{ids[0], ids[2], ids[3]}, []math.Int{math.NewInt(10), math.NewInt(10), math.NewInt(10)})
	s.Require().NoError(err)
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, mech))

	empty, err := s.keeper.GetUndeliveredRequestIds(s.ctx, mech, 0, 0)
	s.Require().NoError(err)
	s.Require().Empty(empty)
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestUndeliveredTracksPriorityMech() {
	priority := s.createMech(bttypes.VariantFixedPriceNative, 10)
	fallback := keepertest.CreateMech(s.T(), s.app, s.ctx, keepertest.NewTestAccount("fallback").Address, bttypes.VariantFixedPriceNative, 10)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	id := s.requestNative(priority, "payload", 10)
	s.Require().Equal(uint64(1), s.keeper.NumUndeliveredRequests(s.ctx, priority))
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, fallback))

	s.advance(time.Duration(defaultTimeout+1) * time.Second)
	_, err := s.keeper.DeliverMarketplace(s.ctx, fallback, []types.RequestID{id}, []math.Int{math.NewInt(10)})
	s.Require().NoError(err)
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, priority))
}

func (s *KeeperTestSuite) TestUndeliveredSetProperty() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 10)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)
	pt := s.app.PaymentType(bttypes.VariantFixedPriceNative)

	rapid.Check(s.T(), func(rt *rapid.T) {
		ctx, _ := s.ctx.CacheContext()
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		deliver := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "deliver")

		var delivered, pending []types.RequestID
		var rates []math.Int
		for i := 0; i < n; i++ {
			id, err := s.keeper.Request(ctx, s.requester.Address, []byte(fmt.Sprintf("payload-%d", i)), math.NewInt(10), pt, mech, defaultTimeout, math.NewInt(10), nil)
			require.NoError(rt, err)
			if deliver[i] {
				delivered = append(delivered, id)
				rates = append(rates, math.NewInt(10))
			} else {
				pending = append(pending, id)
			}
		}
		if len(delivered) > 0 {
			_, err := s.keeper.DeliverMarketplace(ctx, mech, delivered, rates)
			require.NoError(rt, err)
		}

		all, err := s.keeper.GetUndeliveredRequestIds(ctx, mech, 0, 0)
		require.NoError(rt, err)
		require.ElementsMatch(rt, pending, all)
		require.Equal(rt, uint64(len(pending)), s.keeper.NumUndeliveredRequests(ctx, mech))
		require.NoError(rt, s.app.CheckInvariants(ctx))

		if len(all) == 0 {
			return
		}
		offset := rapid.IntRange(0, len(all)-1).Draw(rt, "offset")
		size := rapid.IntRange(1, len(all)-offset).Draw(rt, "size")
		page, err := s.keeper.GetUndeliveredRequestIds(ctx, mech, uint64(size), uint64(offset))
		require.NoError(rt, err)
		require.Equal(rt, all[offset:offset+size], page)
	})
}
