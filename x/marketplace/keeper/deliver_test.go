package keeper_test

import (
	"time"

	"cosmossdk.io/math"

	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestDeliverFeeAndPayout() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 1000)
	tracker := s.tracker(bttypes.VariantFixedPriceNative)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	id := s.requestNative(mech, "payload", 1000)

	delivered, err := s.keeper.DeliverToMarketplace(s.ctx, s.operator.Address, mech,
		[]types.RequestID{id}, [][]byte{[]byte("result")}, []math.Int{math.NewInt(1000)})
	s.Require().NoError(err)
	s.Require().Equal([]bool{true}, delivered)

	// 10 bps of 1000
	s.Require().Equal(math.NewInt(1), tracker.GetCollectedFees(s.ctx))
	s.Require().Equal(math.NewInt(999), tracker.GetMechBalance(s.ctx, mech))
	s.Require().True(tracker.GetReserved(s.ctx).IsZero())
	s.Require().Equal(types.RequestStatusDelivered, s.keeper.GetRequestStatus(s.ctx, id))

	req, _ := s.keeper.GetRequest(s.ctx, id)
	s.Require().Equal(mech.String(), req.DeliveryMech)
	s.Require().Equal(math.NewInt(1000), req.DeliveryRate)

	paid, err := tracker.ProcessPaymentByMultisig(s.ctx, s.operator.Address, mech)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(999), paid)
	s.Require().Equal(math.NewInt(999), keepertest.NativeBalance(s.app, s.ctx, s.operator.Address))

	drained, err := tracker.Drain(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(1), drained)
	s.Require().Equal(math.NewInt(1), keepertest.NativeBalance(s.app, s.ctx, s.app.Config().Drainer))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestDeliverBelowMaxRate() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 500)
	tracker := s.tracker(bttypes.VariantFixedPriceNative)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	id := s.requestNative(mech, "payload", 1000)

	// fixed-price mechs charge their own price whatever they report
	_, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, []math.Int{math.NewInt(700)})
	s.Require().NoError(err)

	s.Require().Equal(math.NewInt(499), tracker.GetMechBalance(s.ctx, mech))
	s.Require().Equal(math.NewInt(1), tracker.GetCollectedFees(s.ctx))
	s.Require().Equal(math.NewInt(500), tracker.GetRequesterBalance(s.ctx, s.requester.Address))

	refund, err := tracker.Withdraw(s.ctx, s.requester.Address)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(500), refund)
	s.Require().Equal(math.NewInt(500), keepertest.NativeBalance(s.app, s.ctx, s.requester.Address))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestDeliverIdempotent() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceNative)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	first := s.requestNative(mech, "one", 100)
	second := s.requestNative(mech, "two", 100)

	delivered, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{first}, []math.Int{math.NewInt(100)})
	s.Require().NoError(err)
	s.Require().Equal([]bool{true}, delivered)
	balance := tracker.GetMechBalance(s.ctx, mech)

	delivered, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{first, second}, []math.Int{math.NewInt(100), math.NewInt(100)})
	s.Require().NoError(err)
	s.Require().Equal([]bool{false, true}, delivered)

	delivered, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{first, second}, []math.Int{math.NewInt(100), math.NewInt(100)})
	s.Require().NoError(err)
	s.Require().Equal([]bool{false, false}, delivered)

	s.Require().Equal(balance.MulRaw(2), tracker.GetMechBalance(s.ctx, mech))
	s.Require().Equal(uint64(2), s.keeper.MapDeliveryCounts(s.ctx, s.requester.Address))
	s.Require().Equal(uint64(2), s.keeper.MapMechDeliveryCounts(s.ctx, mech))
	s.Require().Equal(uint64(2), s.keeper.MapMechServiceDeliveryCounts(s.ctx, s.operator.Address))
	s.Require().Equal(int64(2), s.app.KarmaKeeper.GetMechKarma(s.ctx, mech))
	s.Require().Equal(int64(2), s.app.KarmaKeeper.GetRequesterMechKarma(s.ctx, s.requester.Address, mech))
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, mech))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestDeliverValidation() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)
	other := s.createMech(bttypes.VariantFixedPriceToken, 100)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)
	id := s.requestNative(mech, "payload", 100)
	rate := []math.Int{math.NewInt(100)}

	_, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, nil)
	s.Require().ErrorIs(err, types.ErrWrongArrayLength)

	_, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{{0x01}}, rate)
	s.Require().ErrorIs(err, types.ErrRequestIdNotFound)

	_, err = s.keeper.DeliverMarketplace(s.ctx, other, []types.RequestID{id}, rate)
	s.Require().ErrorIs(err, types.ErrWrongPaymentType)

	_, err = s.keeper.DeliverToMarketplace(s.ctx, s.requester.Address, mech, []types.RequestID{id}, [][]byte{[]byte("r")}, rate)
	s.Require().ErrorIs(err, types.ErrUnauthorizedAccount)

	_, err = s.keeper.DeliverToMarketplace(s.ctx, s.operator.Address, mech, []types.RequestID{id}, nil, rate)
	s.Require().ErrorIs(err, types.ErrWrongArrayLength)

	s.Require().Equal(types.RequestStatusRequestedPriority, s.keeper.GetRequestStatus(s.ctx, id))
	s.Require().Equal(uint64(1), s.keeper.NumUndeliveredRequests(s.ctx, mech))
}

func (s *KeeperTestSuite) TestDeliverDynamicRate() {
	mech := s.createMech(bttypes.VariantSubscriptionNative, 100)
	tracker := s.tracker(bttypes.VariantSubscriptionNative)
	keepertest.MintCredits(s.T(), s.app, s.ctx, s.requester.Address, 1000)
	pt := s.app.PaymentType(bttypes.VariantSubscriptionNative)

	id, err := s.keeper.Request(s.ctx, s.requester.Address, []byte("p"), math.NewInt(100), pt, mech, defaultTimeout, math.ZeroInt(), nil)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(900), keepertest.CreditBalance(s.T(), s.app, s.ctx, s.requester.Address))

	_, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, []math.Int{math.NewInt(101)})
	s.Require().ErrorIs(err, types.ErrOverflow)

	_, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, []math.Int{math.NewInt(-1)})
	s.Require().ErrorIs(err, types.ErrZeroValue)

	_, err = s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, []math.Int{math.NewInt(40)})
	s.Require().NoError(err)

	// minimum fee of one credit applies to small rates
	s.Require().Equal(math.NewInt(39), tracker.GetMechBalance(s.ctx, mech))
	s.Require().Equal(math.NewInt(60), tracker.GetRequesterBalance(s.ctx, s.requester.Address))

	redeemed, err := tracker.RedeemRequesterCredits(s.ctx, s.requester.Address)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(60), redeemed)
	s.Require().Equal(math.NewInt(960), keepertest.CreditBalance(s.T(), s.app, s.ctx, s.requester.Address))

	paid, err := tracker.ProcessPaymentByMultisig(s.ctx, s.operator.Address, mech)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(39), paid)
	s.Require().Equal(math.NewInt(39), keepertest.NativeBalance(s.app, s.ctx, s.operator.Address))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestFallbackDelivery() {
	priority := s.createMech(bttypes.VariantFixedPriceNative, 100)
	fallback := keepertest.CreateMech(s.T(), s.app, s.ctx, keepertest.NewTestAccount("fallback").Address, bttypes.VariantFixedPriceNative, 100)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	id := s.requestNative(priority, "payload", 100)
	rate := []math.Int{math.NewInt(100)}

	_, err := s.keeper.DeliverMarketplace(s.ctx, fallback, []types.RequestID{id}, rate)
	s.Require().ErrorIs(err, types.ErrPriorityMechResponseTimeout)

	// the deadline itself is still inside the priority window
	s.advance(defaultTimeout * time.Second)
	_, err = s.keeper.DeliverMarketplace(s.ctx, fallback, []types.RequestID{id}, rate)
	s.Require().ErrorIs(err, types.ErrPriorityMechResponseTimeout)

	s.advance(time.Second)
	delivered, err := s.keeper.DeliverMarketplace(s.ctx, fallback, []types.RequestID{id}, rate)
	s.Require().NoError(err)
	s.Require().Equal([]bool{true}, delivered)

	s.Require().Equal(int64(1), s.app.KarmaKeeper.GetMechKarma(s.ctx, fallback))
	s.Require().Equal(int64(-1), s.app.KarmaKeeper.GetMechKarma(s.ctx, priority))
	s.Require().Equal(int64(1), s.app.KarmaKeeper.GetRequesterMechKarma(s.ctx, s.requester.Address, fallback))
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, priority))
	s.Require().Equal(math.NewInt(99), s.tracker(bttypes.VariantFixedPriceNative).GetMechBalance(s.ctx, fallback))

	// the priority mech arriving late is a no-op
	delivered, err = s.keeper.DeliverMarketplace(s.ctx, priority, []types.RequestID{id}, rate)
	s.Require().NoError(err)
	s.Require().Equal([]bool{false}, delivered)
	s.Require().Equal(int64(-1), s.app.KarmaKeeper.GetMechKarma(s.ctx, priority))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestPriorityDeliveryAfterDeadline() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)
	id := s.requestNative(mech, "payload", 100)

	s.advance(time.Hour)
	_, err := s.keeper.DeliverMarketplace(s.ctx, mech, []types.RequestID{id}, []math.Int{math.NewInt(100)})
	s.Require().NoError(err)
	s.Require().Equal(int64(1), s.app.KarmaKeeper.GetMechKarma(s.ctx, mech))
}
