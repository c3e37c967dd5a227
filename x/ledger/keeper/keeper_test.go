package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/mechx-labs/mechx/testutil/keeper"
	"github.com/mechx-labs/mechx/x/ledger/keeper"
	"github.com/mechx-labs/mechx/x/ledger/types"
)

type KeeperTestSuite struct {
	suite.Suite

	keeper *keeper.Keeper
	ctx    sdk.Context

	token   sdk.AccAddress
	alice   sdk.AccAddress
	bob     sdk.AccAddress
	spender sdk.AccAddress
}

func (s *KeeperTestSuite) SetupTest() {
	s.keeper, s.ctx = keepertest.LedgerKeeper(s.T())
	s.token = sdk.AccAddress("token_______________")
	s.alice = sdk.AccAddress("alice_______________")
	s.bob = sdk.AccAddress("bob_________________")
	s.spender = sdk.AccAddress("spender_____________")
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) balance(owner sdk.AccAddress) math.Int {
	b, err := s.keeper.BalanceOf(s.ctx, s.token, owner)
	s.Require().NoError(err)
	return b
}

func (s *KeeperTestSuite) TestMintAndTransfer() {
	s.Require().NoError(s.keeper.MintTokens(s.ctx, s.token, s.alice, math.NewInt(100)))
	s.Require().NoError(s.keeper.Transfer(s.ctx, s.token, s.alice, s.bob, math.NewInt(40)))

	s.Require().Equal(math.NewInt(60), s.balance(s.alice))
	s.Require().Equal(math.NewInt(40), s.balance(s.bob))

	err := s.keeper.Transfer(s.ctx, s.token, s.alice, s.bob, math.NewInt(61))
	s.Require().ErrorIs(err, types.ErrInsufficientBalance)
	s.Require().ErrorIs(s.keeper.Transfer(s.ctx, s.token, s.alice, s.bob, math.ZeroInt()), types.ErrZeroValue)
	s.Require().ErrorIs(s.keeper.Transfer(s.ctx, s.token, s.alice, nil, math.NewInt(1)), types.ErrZeroAddress)
	s.Require().ErrorIs(s.keeper.MintTokens(s.ctx, s.token, s.alice, math.NewInt(-1)), types.ErrNegativeAmount)

	other := sdk.AccAddress("other_token_________")
	b, err := s.keeper.BalanceOf(s.ctx, other, s.alice)
	s.Require().NoError(err)
	s.Require().True(b.IsZero())
}

func (s *KeeperTestSuite) TestTransferFrom() {
	s.Require().NoError(s.keeper.MintTokens(s.ctx, s.token, s.alice, math.NewInt(100)))

	err := s.keeper.TransferFrom(s.ctx, s.token, s.spender, s.alice, s.bob, math.NewInt(10))
	s.Require().ErrorIs(err, types.ErrInsufficientAllowance)

	s.Require().NoError(s.keeper.Approve(s.ctx, s.token, s.alice, s.spender, math.NewInt(150)))
	s.Require().NoError(s.keeper.TransferFrom(s.ctx, s.token, s.spender, s.alice, s.bob, math.NewInt(70)))

	allowance, err := s.keeper.Allowance(s.ctx, s.token, s.alice, s.spender)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(80), allowance)
	s.Require().Equal(math.NewInt(70), s.balance(s.bob))

	// allowance covers it, balance does not
	err = s.keeper.TransferFrom(s.ctx, s.token, s.spender, s.alice, s.bob, math.NewInt(31))
	s.Require().ErrorIs(err, types.ErrInsufficientBalance)

	allowance, err = s.keeper.Allowance(s.ctx, s.token, s.alice, s.spender)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(80), allowance)

	s.Require().ErrorIs(s.keeper.Approve(s.ctx, s.token, s.alice, s.spender, math.NewInt(-1)), types.ErrNegativeAmount)
	s.Require().NoError(s.keeper.Approve(s.ctx, s.token, s.alice, s.spender, math.ZeroInt()))
}

func (s *KeeperTestSuite) TestSubscriptionCredits() {
	credits := s.keeper.Subscriptions()
	collection := sdk.AccAddress("collection__________")

	s.Require().NoError(credits.Mint(s.ctx, collection, s.alice, 1, math.NewInt(50)))
	s.Require().NoError(credits.Mint(s.ctx, collection, s.alice, 2, math.NewInt(5)))
	s.Require().NoError(credits.Burn(s.ctx, collection, s.alice, 1, math.NewInt(20)))

	b, err := credits.BalanceOf(s.ctx, collection, s.alice, 1)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(30), b)

	b, err = credits.BalanceOf(s.ctx, collection, s.alice, 2)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(5), b)

	s.Require().ErrorIs(credits.Burn(s.ctx, collection, s.alice, 2, math.NewInt(6)), types.ErrInsufficientBalance)
	s.Require().ErrorIs(credits.Mint(s.ctx, collection, nil, 1, math.NewInt(1)), types.ErrZeroAddress)

	var holdings int
	credits.IterateCredits(s.ctx, func(c, owner sdk.AccAddress, tokenID uint64, balance math.Int) bool {
		s.Require().Equal(collection, c)
		s.Require().Equal(s.alice, owner)
		holdings++
		return false
	})
	s.Require().Equal(2, holdings)
}

func (s *KeeperTestSuite) TestServiceRegistry() {
	first, err := s.keeper.RegisterService(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), first)

	second, err := s.keeper.RegisterService(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Equal(uint64(2), second)

	deployed, err := s.keeper.IsDeployed(s.ctx, first)
	s.Require().NoError(err)
	s.Require().True(deployed)

	s.Require().NoError(s.keeper.SetServiceDeployed(s.ctx, first, false))
	deployed, err = s.keeper.IsDeployed(s.ctx, first)
	s.Require().NoError(err)
	s.Require().False(deployed)

	exists, err := s.keeper.Exists(s.ctx, first)
	s.Require().NoError(err)
	s.Require().True(exists)

	s.Require().ErrorIs(s.keeper.SetServiceDeployed(s.ctx, 9, true), types.ErrUnknownService)
	_, err = s.keeper.OwnerOf(s.ctx, 9)
	s.Require().ErrorIs(err, types.ErrUnknownService)
	_, err = s.keeper.RegisterService(s.ctx, nil)
	s.Require().ErrorIs(err, types.ErrZeroAddress)

	s.Require().ErrorIs(s.keeper.TransferService(s.ctx, s.bob, first, s.bob), types.ErrUnauthorizedAccount)
	s.Require().NoError(s.keeper.TransferService(s.ctx, s.alice, first, s.bob))
	owner, err := s.keeper.OwnerOf(s.ctx, first)
	s.Require().NoError(err)
	s.Require().Equal(s.bob, owner)
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	collection := sdk.AccAddress("collection__________")
	s.Require().NoError(s.keeper.MintTokens(s.ctx, s.token, s.alice, math.NewInt(100)))
	s.Require().NoError(s.keeper.Approve(s.ctx, s.token, s.alice, s.spender, math.NewInt(25)))
	s.Require().NoError(s.keeper.Subscriptions().Mint(s.ctx, collection, s.bob, 3, math.NewInt(9)))
	_, err := s.keeper.RegisterService(s.ctx, s.alice)
	s.Require().NoError(err)
	id, err := s.keeper.RegisterService(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().NoError(s.keeper.SetServiceDeployed(s.ctx, id, false))

	exported := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Services, 2)
	s.Require().False(exported.Services[1].Deployed)
	s.Require().Equal(uint64(3), exported.NextServiceID)

	fresh, ctx := keepertest.LedgerKeeper(s.T())
	s.Require().NoError(fresh.InitGenesis(ctx, *exported))

	b, err := fresh.BalanceOf(ctx, s.token, s.alice)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(100), b)
	allowance, err := fresh.Allowance(ctx, s.token, s.alice, s.spender)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(25), allowance)
	credits, err := fresh.Subscriptions().BalanceOf(ctx, collection, s.bob, 3)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(9), credits)

	next, err := fresh.RegisterService(ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), next)
}

func (s *KeeperTestSuite) TestGenesisValidate() {
	s.Require().NoError(types.DefaultGenesis().Validate())

	gs := types.DefaultGenesis()
	gs.Services = []types.Service{{ID: 1, Owner: s.alice.String()}}
	s.Require().Error(gs.Validate())

	gs.NextServiceID = 2
	s.Require().NoError(gs.Validate())

	gs.Services = append(gs.Services, types.Service{ID: 1, Owner: s.bob.String()})
	s.Require().Error(gs.Validate())

	gs = types.DefaultGenesis()
	gs.TokenBalances = []types.TokenBalance{{Token: s.token.String(), Owner: s.alice.String(), Balance: math.NewInt(-5)}}
	s.Require().Error(gs.Validate())
}

func (s *KeeperTestSuite) TestBalancesStayWithin256Bits() {
	half := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 255))

	s.Require().NoError(s.keeper.MintTokens(s.ctx, s.token, s.alice, half))
	s.Require().ErrorIs(s.keeper.MintTokens(s.ctx, s.token, s.alice, half), types.ErrOverflow)
	s.Require().Equal(half, s.balance(s.alice))

	s.Require().NoError(s.keeper.MintTokens(s.ctx, s.token, s.bob, half))
	s.Require().ErrorIs(s.keeper.Transfer(s.ctx, s.token, s.alice, s.bob, half), types.ErrOverflow)
	s.Require().Equal(half, s.balance(s.alice))
	s.Require().Equal(half, s.balance(s.bob))
	s.Require().NoError(s.keeper.Transfer(s.ctx, s.token, s.alice, s.alice, half))
	s.Require().Equal(half, s.balance(s.alice))

	credits := s.keeper.Subscriptions()
	collection := sdk.AccAddress("collection__________")
	s.Require().NoError(credits.Mint(s.ctx, collection, s.alice, 1, half))
	s.Require().ErrorIs(credits.Mint(s.ctx, collection, s.alice, 1, half), types.ErrOverflow)
	b, err := credits.BalanceOf(s.ctx, collection, s.alice, 1)
	s.Require().NoError(err)
	s.Require().Equal(half, b)
}
