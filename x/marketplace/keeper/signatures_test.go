package keeper_test

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

// signedItems builds n items signed by the requester for consecutive nonces.
func (s *KeeperTestSuite) signedItems(mech sdk.AccAddress, v bttypes.Variant, n int, rate int64) ([]types.DeliverWithSignature, []math.Int) {
	return s.signedItemsAt(mech, v, n, math.NewInt(rate))
}

func (s *KeeperTestSuite) signedItemsAt(mech sdk.AccAddress, v bttypes.Variant, n int, rate math.Int) ([]types.DeliverWithSignature, []math.Int) {
	base := s.keeper.GetNonce(s.ctx, s.requester.Address)
	pt := s.app.PaymentType(v)

	items := make([]types.DeliverWithSignature, n)
	rates := make([]math.Int, n)
	for i := 0; i < n; i++ {
		data := []byte(fmt.Sprintf("request-%d", i))
		rates[i] = rate
		id := s.keeper.GetRequestId(mech, s.requester.Address, data, rates[i], pt, base+uint64(i))

		sig, err := types.SignRequestID(s.requester.PrivKey, id)
		s.Require().NoError(err)
		items[i] = types.DeliverWithSignature{
			RequestData:  data,
			Signature:    sig,
			DeliveryData: []byte(fmt.Sprintf("result-%d", i)),
		}
	}
	return items, rates
}

func (s *KeeperTestSuite) TestDeliverWithSignatures() {
	mech := s.createMech(bttypes.VariantFixedPriceToken, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceToken)
	keepertest.FundTokens(s.T(), s.app, s.ctx, s.requester.Address, tracker.Address(), 1000)

	items, rates := s.signedItems(mech, bttypes.VariantFixedPriceToken, 10, 100)

	ids, err := s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, items, rates)
	s.Require().NoError(err)
	s.Require().Len(ids, 10)
	s.Require().Equal(10, s.countEvents(types.EventTypeDeliverySignature))

	for _, id := range ids {
		s.Require().Equal(types.RequestStatusDelivered, s.keeper.GetRequestStatus(s.ctx, id))
	}
	s.Require().Equal(uint64(10), s.keeper.GetNonce(s.ctx, s.requester.Address))
	s.Require().Equal(uint64(10), s.keeper.NumTotalRequests(s.ctx))
	s.Require().Equal(uint64(10), s.keeper.MapMechDeliveryCounts(s.ctx, mech))
	s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, mech))
	s.Require().Equal(int64(10), s.app.KarmaKeeper.GetMechKarma(s.ctx, mech))

	s.Require().Equal(math.NewInt(10), tracker.GetCollectedFees(s.ctx))
	s.Require().Equal(math.NewInt(990), tracker.GetMechBalance(s.ctx, mech))
	s.Require().True(keepertest.TokenBalance(s.T(), s.app, s.ctx, s.requester.Address).IsZero())
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestDeliverWithSignaturesReordered() {
	mech := s.createMech(bttypes.VariantFixedPriceToken, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceToken)
	keepertest.FundTokens(s.T(), s.app, s.ctx, s.requester.Address, tracker.Address(), 1000)

	items, rates := s.signedItems(mech, bttypes.VariantFixedPriceToken, 10, 100)
	items[3], items[4] = items[4], items[3]

	_, err := s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, items, rates)
	s.Require().ErrorIs(err, types.ErrSignatureNotValidated)

	s.Require().Zero(s.keeper.GetNonce(s.ctx, s.requester.Address))
	s.Require().Zero(s.keeper.NumTotalRequests(s.ctx))
	s.Require().True(tracker.GetMechBalance(s.ctx, mech).IsZero())
	s.Require().Equal(math.NewInt(1000), keepertest.TokenBalance(s.T(), s.app, s.ctx, s.requester.Address))
}

func (s *KeeperTestSuite) TestDeliverWithSignaturesValidation() {
	mech := s.createMech(bttypes.VariantFixedPriceToken, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceToken)
	keepertest.FundTokens(s.T(), s.app, s.ctx, s.requester.Address, tracker.Address(), 1000)

	items, rates := s.signedItems(mech, bttypes.VariantFixedPriceToken, 2, 100)

	_, err := s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.requester.Address, mech, s.requester.Address, items, rates)
	s.Require().ErrorIs(err, types.ErrUnauthorizedAccount)

	_, err = s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, items, rates[:1])
	s.Require().ErrorIs(err, types.ErrWrongArrayLength)

	_, err = s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, nil, items, rates)
	s.Require().ErrorIs(err, types.ErrZeroAddress)

	// signed by someone else
	impostor := keepertest.NewTestAccount("impostor")
	id := s.keeper.GetRequestId(mech, s.requester.Address, items[0].RequestData, rates[0], s.app.PaymentType(bttypes.VariantFixedPriceToken), 0)
	forged, err := types.SignRequestID(impostor.PrivKey, id)
	s.Require().NoError(err)
	bad := []types.DeliverWithSignature{{RequestData: items[0].RequestData, Signature: forged}}
	_, err = s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, bad, rates[:1])
	s.Require().ErrorIs(err, types.ErrSignatureNotValidated)

	// a mech price above the signed rate
	cheap, cheapRates := s.signedItems(mech, bttypes.VariantFixedPriceToken, 1, 50)
	_, err = s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, cheap, cheapRates)
	s.Require().ErrorIs(err, types.ErrOverflow)

	// signed rates whose sum is wider than 256 bits
	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 255))
	wide, wideRates := s.signedItemsAt(mech, bttypes.VariantFixedPriceToken, 2, huge)
	_, err = s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, wide, wideRates)
	s.Require().ErrorIs(err, types.ErrOverflow)

	s.Require().Zero(s.keeper.GetNonce(s.ctx, s.requester.Address))
	s.Require().Zero(s.keeper.NumTotalRequests(s.ctx))
	s.Require().Zero(s.app.KarmaKeeper.GetMechKarma(s.ctx, mech))
	s.Require().Equal(math.NewInt(1000), keepertest.TokenBalance(s.T(), s.app, s.ctx, s.requester.Address))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestDeliverWithApprovedHash() {
	mech := s.createMech(bttypes.VariantFixedPriceToken, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceToken)
	keepertest.FundTokens(s.T(), s.app, s.ctx, s.requester.Address, tracker.Address(), 1000)

	data := []byte("approved request")
	rate := math.NewInt(100)
	id := s.keeper.GetRequestId(mech, s.requester.Address, data, rate, s.app.PaymentType(bttypes.VariantFixedPriceToken), 0)
	items := []types.DeliverWithSignature{{RequestData: data, DeliveryData: []byte("result")}}

	_, err := s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, items, []math.Int{rate})
	s.Require().ErrorIs(err, types.ErrSignatureNotValidated)

	s.Require().NoError(s.keeper.ApproveHash(s.ctx, s.requester.Address, id))
	s.Require().True(s.keeper.IsHashApproved(s.ctx, s.requester.Address, id))

	ids, err := s.keeper.DeliverMarketplaceWithSignatures(s.ctx, s.operator.Address, mech, s.requester.Address, items, []math.Int{rate})
	s.Require().NoError(err)
	s.Require().Equal([]types.RequestID{id}, ids)

	// approvals are single use
	s.Require().False(s.keeper.IsHashApproved(s.ctx, s.requester.Address, id))
}
