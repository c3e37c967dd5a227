package keeper_test

import (
	"encoding/json"
	"math/big"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/app"
	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestRequest() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 1000)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 5000)
	pt := s.app.PaymentType(bttypes.VariantFixedPriceNative)

	expected := s.keeper.GetRequestId(mech, s.requester.Address, []byte("what is 2+2"), math.NewInt(1000), pt, 0)
	id := s.requestNative(mech, "what is 2+2", 1000)
	s.Require().Equal(expected, id)

	req, found := s.keeper.GetRequest(s.ctx, id)
	s.Require().True(found)
	s.Require().Equal(s.requester.Address.String(), req.Requester)
	s.Require().Equal(mech.String(), req.PriorityMech)
	s.Require().Equal(uint32(keepertest.GenesisTime.Unix()+defaultTimeout), req.ResponseDeadline)
	s.Require().False(req.IsDelivered())

	s.Require().Equal(types.RequestStatusRequestedPriority, s.keeper.GetRequestStatus(s.ctx, id))
	s.Require().Equal(uint64(1), s.keeper.GetNonce(s.ctx, s.requester.Address))
	s.Require().Equal(uint64(1), s.keeper.NumTotalRequests(s.ctx))
	s.Require().Equal(uint64(1), s.keeper.MapRequestCounts(s.ctx, s.requester.Address))
	s.Require().Equal(uint64(1), s.keeper.MapMechRequestCounts(s.ctx, mech))
	s.Require().Equal(uint64(1), s.keeper.NumUndeliveredRequests(s.ctx, mech))

	// attached value is held by the tracker as a reservation
	tracker := s.tracker(bttypes.VariantFixedPriceNative)
	s.Require().Equal(math.NewInt(1000), tracker.GetReserved(s.ctx))
	s.Require().Equal(math.NewInt(4000), keepertest.NativeBalance(s.app, s.ctx, s.requester.Address))

	// identical inputs with the next nonce give a different id
	again := s.requestNative(mech, "what is 2+2", 1000)
	s.Require().NotEqual(id, again)

	s.advance((defaultTimeout + 1) * time.Second)
	s.Require().Equal(types.RequestStatusRequestedExpired, s.keeper.GetRequestStatus(s.ctx, id))
	s.Require().Equal(types.RequestStatusDoesNotExist, s.keeper.GetRequestStatus(s.ctx, types.RequestID{1}))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestRequestValidation() {
	native := s.createMech(bttypes.VariantFixedPriceNative, 1000)
	token := s.createMech(bttypes.VariantFixedPriceToken, 1000)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 5000)

	nativePT := s.app.PaymentType(bttypes.VariantFixedPriceNative)
	tokenPT := s.app.PaymentType(bttypes.VariantFixedPriceToken)

	tests := []struct {
		name      string
		requester sdk.AccAddress
		payload   []byte
		maxRate   math.Int
		pt        types.PaymentType
		mech      sdk.AccAddress
		timeout   uint64
		attached  math.Int
		err       error
	}{
		{"zero requester", nil, []byte("p"), math.NewInt(1000), nativePT, native, 60, math.NewInt(1000), types.ErrZeroAddress},
		{"timeout below min", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, native, 59, math.NewInt(1000), types.ErrOutOfBounds},
		{"timeout above max", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, native, 301, math.NewInt(1000), types.ErrOutOfBounds},
		{"deadline overflow", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, native, types.MaxTimeout, math.NewInt(1000), types.ErrOverflow},
		{"empty payload", s.requester.Address, nil, math.NewInt(1000), nativePT, native, 60, math.NewInt(1000), types.ErrZeroValue},
		{"zero rate", s.requester.Address, []byte("p"), math.ZeroInt(), nativePT, native, 60, math.NewInt(1000), types.ErrZeroValue},
		{"zero payment type", s.requester.Address, []byte("p"), math.NewInt(1000), types.PaymentType{}, native, 60, math.NewInt(1000), types.ErrZeroValue},
		{"zero mech", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, nil, 60, math.NewInt(1000), types.ErrZeroAddress},
		{"unknown mech", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, sdk.AccAddress("unknown_mech________"), 60, math.NewInt(1000), types.ErrUnauthorizedAccount},
		{"wrong payment type", s.requester.Address, []byte("p"), math.NewInt(1000), tokenPT, native, 60, math.NewInt(1000), types.ErrWrongPaymentType},
		{"rate below mech price", s.requester.Address, []byte("p"), math.NewInt(999), nativePT, native, 60, math.NewInt(999), types.ErrOutOfBounds},
		{"unfunded", s.requester.Address, []byte("p"), math.NewInt(1000), nativePT, native, 60, math.ZeroInt(), types.ErrInsufficientBalance},
		{"attached value on token mech", s.requester.Address, []byte("p"), math.NewInt(1000), tokenPT, token, 60, math.NewInt(1000), bttypes.ErrNoDepositAllowed},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := s.keeper.Request(s.ctx, tc.requester, tc.payload, tc.maxRate, tc.pt, tc.mech, tc.timeout, tc.attached, nil)
			s.Require().ErrorIs(err, tc.err)

			// nothing is recorded on failure
			s.Require().Zero(s.keeper.NumTotalRequests(s.ctx))
			s.Require().Zero(s.keeper.GetNonce(s.ctx, s.requester.Address))
			s.Require().Zero(s.keeper.NumUndeliveredRequests(s.ctx, native))
		})
	}
	s.Require().Equal(math.NewInt(5000), keepertest.NativeBalance(s.app, s.ctx, s.requester.Address))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestRequestBatch() {
	mech := s.createMech(bttypes.VariantFixedPriceToken, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceToken)
	keepertest.FundTokens(s.T(), s.app, s.ctx, s.requester.Address, tracker.Address(), 1000)

	payloads := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	ids, err := s.keeper.RequestBatch(s.ctx, s.requester.Address, payloads, math.NewInt(100),
		s.app.PaymentType(bttypes.VariantFixedPriceToken), mech, defaultTimeout, math.ZeroInt(), nil)
	s.Require().NoError(err)
	s.Require().Len(ids, 3)
	s.Require().Equal(3, s.countEvents(types.EventTypeRequest))

	// one reservation pulls the whole batch
	s.Require().Equal(math.NewInt(300), tracker.GetReserved(s.ctx))
	s.Require().Equal(math.NewInt(700), keepertest.TokenBalance(s.T(), s.app, s.ctx, s.requester.Address))
	s.Require().Equal(uint64(3), s.keeper.NumUndeliveredRequests(s.ctx, mech))

	// a batch beyond the allowance records nothing
	_, err = s.keeper.RequestBatch(s.ctx, s.requester.Address, [][]byte{[]byte("d"), []byte("e")}, math.NewInt(400),
		s.app.PaymentType(bttypes.VariantFixedPriceToken), mech, defaultTimeout, math.ZeroInt(), nil)
	s.Require().ErrorIs(err, types.ErrInsufficientBalance)
	s.Require().Equal(uint64(3), s.keeper.NumTotalRequests(s.ctx))
	s.Require().Equal(uint64(3), s.keeper.GetNonce(s.ctx, s.requester.Address))

	// a batch total wider than 256 bits records nothing
	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 255))
	_, err = s.keeper.RequestBatch(s.ctx, s.requester.Address, [][]byte{[]byte("f"), []byte("g")}, huge,
		s.app.PaymentType(bttypes.VariantFixedPriceToken), mech, defaultTimeout, math.ZeroInt(), nil)
	s.Require().ErrorIs(err, types.ErrOverflow)
	s.Require().Equal(uint64(3), s.keeper.NumTotalRequests(s.ctx))
	s.Require().Equal(uint64(3), s.keeper.GetNonce(s.ctx, s.requester.Address))
	s.Require().Equal(uint64(3), s.keeper.NumUndeliveredRequests(s.ctx, mech))
	s.Require().Equal(math.NewInt(300), tracker.GetReserved(s.ctx))
	s.requireInvariants()
}

// restartWithNonce rebuilds the app from exported state with the requester
// nonce forced back to nonce.
func (s *KeeperTestSuite) restartWithNonce(nonce uint64) (*app.MechApp, sdk.Context) {
	exported, err := s.app.ExportGenesis()
	s.Require().NoError(err)

	var gs types.GenesisState
	s.Require().NoError(json.Unmarshal(exported[types.ModuleName], &gs))
	for i := range gs.Nonces {
		if gs.Nonces[i].Account == s.requester.Address.String() {
			gs.Nonces[i].Nonce = nonce
		}
	}
	bz, err := json.Marshal(gs)
	s.Require().NoError(err)
	exported[types.ModuleName] = bz

	fresh, err := app.New(log.NewNopLogger(), dbm.NewMemDB(), s.app.Config())
	s.Require().NoError(err)
	fresh.SetBlockTime(s.ctx.BlockTime())
	s.Require().NoError(fresh.InitChain(exported))
	return fresh, fresh.NewContext()
}

func (s *KeeperTestSuite) TestRequestIdCollision() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 10)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)
	stored := s.requestNative(mech, "payload", 10)
	s.Require().Equal(uint64(1), s.keeper.GetNonce(s.ctx, s.requester.Address))

	fresh, ctx := s.restartWithNonce(0)
	k := fresh.MarketplaceKeeper
	tracker := fresh.Tracker(bttypes.VariantFixedPriceNative)
	pt := fresh.PaymentType(bttypes.VariantFixedPriceNative)
	reserved := tracker.GetReserved(ctx)
	balance := keepertest.NativeBalance(fresh, ctx, s.requester.Address)

	requireUnchanged := func() {
		s.Require().Zero(k.GetNonce(ctx, s.requester.Address))
		s.Require().Equal(uint64(1), k.NumTotalRequests(ctx))
		s.Require().Equal(uint64(1), k.NumUndeliveredRequests(ctx, mech))
		s.Require().Equal(types.RequestStatusRequestedPriority, k.GetRequestStatus(ctx, stored))
		s.Require().Equal(reserved, tracker.GetReserved(ctx))
		s.Require().Equal(balance, keepertest.NativeBalance(fresh, ctx, s.requester.Address))
		s.Require().NoError(fresh.CheckInvariants(ctx))
	}

	_, err := k.Request(ctx, s.requester.Address, []byte("payload"), math.NewInt(10), pt, mech, defaultTimeout, math.NewInt(10), nil)
	s.Require().ErrorIs(err, types.ErrRequestIdCollision)
	requireUnchanged()

	id := k.GetRequestId(mech, s.requester.Address, []byte("payload"), math.NewInt(10), pt, 0)
	s.Require().Equal(stored, id)
	sig, err := types.SignRequestID(s.requester.PrivKey, id)
	s.Require().NoError(err)
	items := []types.DeliverWithSignature{{RequestData: []byte("payload"), Signature: sig, DeliveryData: []byte("result")}}

	_, err = k.DeliverMarketplaceWithSignatures(ctx, s.operator.Address, mech, s.requester.Address, items, []math.Int{math.NewInt(10)})
	s.Require().ErrorIs(err, types.ErrRequestIdCollision)
	requireUnchanged()
}

func (s *KeeperTestSuite) TestRequestFromDeposit() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)
	tracker := s.tracker(bttypes.VariantFixedPriceNative)
	keepertest.FundNative(s.T(), s.app, s.ctx, s.requester.Address, 1000)

	s.Require().NoError(tracker.Deposit(s.ctx, s.requester.Address, math.NewInt(250)))

	pt := s.app.PaymentType(bttypes.VariantFixedPriceNative)
	for i := 0; i < 2; i++ {
		_, err := s.keeper.Request(s.ctx, s.requester.Address, []byte("p"), math.NewInt(100), pt, mech, defaultTimeout, math.ZeroInt(), nil)
		s.Require().NoError(err)
	}
	s.Require().Equal(math.NewInt(50), tracker.GetRequesterBalance(s.ctx, s.requester.Address))

	_, err := s.keeper.Request(s.ctx, s.requester.Address, []byte("p"), math.NewInt(100), pt, mech, defaultTimeout, math.ZeroInt(), nil)
	s.Require().ErrorIs(err, types.ErrInsufficientBalance)
	s.requireInvariants()
}
