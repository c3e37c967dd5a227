package keeper_test

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	"github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *KeeperTestSuite) TestGenesisBindings() {
	for _, v := range bttypes.AllVariants {
		factory := s.app.Factories[v]
		s.Require().True(s.keeper.IsFactoryActive(s.ctx, factory.Address()), v.String())

		tracker, found := s.keeper.GetPaymentTypeBalanceTracker(s.ctx, factory.PaymentType())
		s.Require().True(found)
		s.Require().Equal(s.tracker(v).Address(), tracker)
	}
}

func (s *KeeperTestSuite) TestSetMechFactoryStatuses() {
	factory := s.app.Factories[bttypes.VariantFixedPriceNative].Address()

	tests := []struct {
		name      string
		caller    sdk.AccAddress
		factories []sdk.AccAddress
		statuses  []bool
		err       error
	}{
		{"non owner", s.operator.Address, []sdk.AccAddress{factory}, []bool{false}, types.ErrOwnerOnly},
		{"length mismatch", s.owner, []sdk.AccAddress{factory}, []bool{false, true}, types.ErrWrongArrayLength},
		{"empty", s.owner, nil, nil, types.ErrWrongArrayLength},
		{"zero factory", s.owner, []sdk.AccAddress{{}}, []bool{false}, types.ErrZeroAddress},
		{"unknown factory", s.owner, []sdk.AccAddress{sdk.AccAddress("unknown_factory_____")}, []bool{true}, types.ErrUnknownFactory},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(s.keeper.SetMechFactoryStatuses(s.ctx, tc.caller, tc.factories, tc.statuses), tc.err)
			s.Require().True(s.keeper.IsFactoryActive(s.ctx, factory))
		})
	}

	s.Require().NoError(s.keeper.SetMechFactoryStatuses(s.ctx, s.owner, []sdk.AccAddress{factory}, []bool{false}))
	s.Require().False(s.keeper.IsFactoryActive(s.ctx, factory))
}

func (s *KeeperTestSuite) TestDisabledFactoryDeactivatesMechs() {
	mech := s.createMech(bttypes.VariantFixedPriceNative, 100)
	factory := s.app.Factories[bttypes.VariantFixedPriceNative].Address()

	s.Require().NoError(s.keeper.SetMechFactoryStatuses(s.ctx, s.owner, []sdk.AccAddress{factory}, []bool{false}))

	_, err := s.keeper.CheckMech(s.ctx, mech)
	s.Require().ErrorIs(err, types.ErrUnauthorizedAccount)

	// the operator can still be resolved for payouts
	operator, err := s.keeper.MechOperator(s.ctx, mech)
	s.Require().NoError(err)
	s.Require().Equal(s.operator.Address, operator)
}

func (s *KeeperTestSuite) TestSetPaymentTypeBalanceTrackers() {
	pt := s.app.PaymentType(bttypes.VariantFixedPriceNative)
	other := s.tracker(bttypes.VariantFixedPriceToken).Address()

	tests := []struct {
		name     string
		caller   sdk.AccAddress
		pts      []types.PaymentType
		trackers []sdk.AccAddress
		err      error
	}{
		{"non owner", s.operator.Address, []types.PaymentType{pt}, []sdk.AccAddress{other}, types.ErrOwnerOnly},
		{"length mismatch", s.owner, []types.PaymentType{pt, pt}, []sdk.AccAddress{other}, types.ErrWrongArrayLength},
		{"zero payment type", s.owner, []types.PaymentType{{}}, []sdk.AccAddress{other}, types.ErrZeroValue},
		{"zero tracker", s.owner, []types.PaymentType{pt}, []sdk.AccAddress{{}}, types.ErrZeroAddress},
		{"unknown tracker", s.owner, []types.PaymentType{pt}, []sdk.AccAddress{sdk.AccAddress("unknown_tracker_____")}, types.ErrUnknownTracker},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(s.keeper.SetPaymentTypeBalanceTrackers(s.ctx, tc.caller, tc.pts, tc.trackers), tc.err)
		})
	}

	s.Require().NoError(s.keeper.SetPaymentTypeBalanceTrackers(s.ctx, s.owner, []types.PaymentType{pt}, []sdk.AccAddress{other}))
	bound, found := s.keeper.GetPaymentTypeBalanceTracker(s.ctx, pt)
	s.Require().True(found)
	s.Require().Equal(other, bound)
}
