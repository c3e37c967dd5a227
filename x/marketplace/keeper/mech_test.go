package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestCreate() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 1000)

	m, found := s.keeper.GetMech(s.ctx, mech)
	s.Require().True(found)
	s.Require().Equal(s.app.PaymentType(bttypes.VariantFixedPriceNative), m.PaymentType)
	s.Require().Equal(math.NewInt(1000), m.MaxDeliveryRate)
	s.Require().False(m.DynamicPricing)
	s.Require().Equal(uint64(1), s.keeper.GetMechNonce(s.ctx))
	s.Require().Equal(1, s.countEvents(types.EventTypeMechCreated))

	operator, err := s.keeper.MechOperator(s.ctx, mech)
	s.Require().NoError(err)
	s.Require().Equal(s.operator.Address, operator)

	// a second mech for the same service gets a fresh address
	second, err := s.keeper.Create(s.ctx, s.operator.Address, m.ServiceID,
		m.FactoryAddress(), types.EncodeCreationData(math.NewInt(5)))
	s.Require().NoError(err)
	s.Require().NotEqual(mech, second)

	sub := s.createMech(bttypes.VariantSubscriptionNative, 10)
	m, _ = s.keeper.GetMech(s.ctx, sub)
	s.Require().True(m.DynamicPricing)
}

func (s *KeeperTestSuite) TestCreateValidation() {
	serviceID := keepertest.RegisterService(s.T(), s.app, s.ctx, s.operator.Address)
	factory := s.app.Factories[bttypes.VariantFixedPriceToken].Address()
	payload := types.EncodeCreationData(math.NewInt(100))

	tests := []struct {
		name      string
		serviceID uint64
		factory   sdk.AccAddress
		payload   []byte
		err       error
	}{
		{"zero factory", serviceID, nil, payload, types.ErrZeroAddress},
		{"inactive factory", serviceID, sdk.AccAddress("not_a_factory_______"), payload, types.ErrUnauthorizedAccount},
		{"zero service", 0, factory, payload, types.ErrZeroValue},
		{"unknown service", serviceID + 100, factory, payload, types.ErrWrongServiceState},
		{"empty payload", serviceID, factory, nil, types.ErrZeroValue},
		{"zero rate", serviceID, factory, []byte{0}, types.ErrZeroValue},
		{"oversized payload", serviceID, factory, make([]byte, 33), types.ErrOverflow},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := s.keeper.Create(s.ctx, s.operator.Address, tc.serviceID, tc.factory, tc.payload)
			s.Require().ErrorIs(err, tc.err)
		})
	}
	s.Require().Zero(s.keeper.GetMechNonce(s.ctx))
}

func (s *KeeperTestSuite) TestChangeMaxDeliveryRate() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)

	err := s.keeper.ChangeMaxDeliveryRate(s.ctx, s.requester.Address, mech, math.NewInt(50))
	s.Require().ErrorIs(err, types.ErrUnauthorizedAccount)

	err = s.keeper.ChangeMaxDeliveryRate(s.ctx, s.operator.Address, mech, math.ZeroInt())
	s.Require().ErrorIs(err, types.ErrZeroValue)

	s.Require().NoError(s.keeper.ChangeMaxDeliveryRate(s.ctx, s.operator.Address, mech, math.NewInt(50)))
	m, _ := s.keeper.GetMech(s.ctx, mech)
	s.Require().Equal(math.NewInt(50), m.MaxDeliveryRate)
}

func (s *KeeperTestSuite) TestCheckRequester() {
	serviceID := keepertest.RegisterService(s.T(), s.app, s.ctx, s.requester.Address)

	s.Require().NoError(s.keeper.CheckRequester(s.ctx, s.requester.Address, serviceID))
	s.Require().ErrorIs(s.keeper.CheckRequester(s.ctx, s.operator.Address, serviceID), types.ErrOwnerOnly)
	s.Require().ErrorIs(s.keeper.CheckRequester(s.ctx, s.requester.Address, serviceID+1), types.ErrWrongServiceState)

	s.Require().NoError(s.app.LedgerKeeper.SetServiceDeployed(s.ctx, serviceID, false))
	s.Require().ErrorIs(s.keeper.CheckRequester(s.ctx, s.requester.Address, serviceID), types.ErrWrongServiceState)
}
