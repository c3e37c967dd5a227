package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/mechx-labs/mechx/app"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

// GenesisTime is the block time every test app starts at.
var GenesisTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// TestAccount is a deterministic secp256k1 account.
type TestAccount struct {
	PrivKey *secp256k1.PrivKey
	Address sdk.AccAddress
}

// NewTestAccount derives an account from seed.
func NewTestAccount(seed string) TestAccount {
	priv := secp256k1.GenPrivKeyFromSecret([]byte(seed))
	return TestAccount{PrivKey: priv, Address: sdk.AccAddress(priv.PubKey().Address())}
}

// SetupTestApp initializes a test application with the devnet genesis. The
// returned context writes straight into the app's working state.
func SetupTestApp(t testing.TB) (*app.MechApp, sdk.Context) {
	return SetupTestAppWithGenesis(t, app.DefaultGenesisConfig())
}

// SetupTestAppWithGenesis initializes a test application from gc.
func SetupTestAppWithGenesis(t testing.TB, gc app.GenesisConfig) (*app.MechApp, sdk.Context) {
	cfg := app.DefaultConfig()
	cfg.ChainID = "mechx-test-1"

	testApp, err := app.New(log.NewNopLogger(), dbm.NewMemDB(), cfg)
	require.NoError(t, err)

	testApp.SetBlockTime(GenesisTime)
	require.NoError(t, testApp.InitChain(app.NewGenesisStateFromConfig(cfg, gc)))

	return testApp, testApp.NewContext()
}

// FundNative mints native coins to addr.
func FundNative(t testing.TB, a *app.MechApp, ctx sdk.Context, addr sdk.AccAddress, amount int64) {
	coins := sdk.NewCoins(sdk.NewInt64Coin(a.Config().Denom, amount))
	require.NoError(t, a.FundAccount(ctx, addr, coins))
}

// NativeBalance returns the native balance of addr.
func NativeBalance(a *app.MechApp, ctx sdk.Context, addr sdk.AccAddress) math.Int {
	return a.BankKeeper.GetBalance(ctx, addr, a.Config().Denom).Amount
}

// FundTokens mints payment tokens to addr and approves spender for the same amount.
func FundTokens(t testing.TB, a *app.MechApp, ctx sdk.Context, addr, spender sdk.AccAddress, amount int64) {
	token := a.Config().Token
	require.NoError(t, a.LedgerKeeper.MintTokens(ctx, token, addr, math.NewInt(amount)))
	if spender != nil {
		require.NoError(t, a.LedgerKeeper.Approve(ctx, token, addr, spender, math.NewInt(amount)))
	}
}

// TokenBalance returns the payment token balance of addr.
func TokenBalance(t testing.TB, a *app.MechApp, ctx sdk.Context, addr sdk.AccAddress) math.Int {
	balance, err := a.LedgerKeeper.BalanceOf(ctx, a.Config().Token, addr)
	require.NoError(t, err)
	return balance
}

// MintCredits mints subscription credits bound to the subscription trackers.
func MintCredits(t testing.TB, a *app.MechApp, ctx sdk.Context, addr sdk.AccAddress, amount int64) {
	gc := app.DefaultGenesisConfig()
	require.NoError(t, a.LedgerKeeper.Subscriptions().Mint(ctx, gc.CreditCollection, addr, gc.CreditTokenID, math.NewInt(amount)))
}

// CreditBalance returns the subscription credits of addr.
func CreditBalance(t testing.TB, a *app.MechApp, ctx sdk.Context, addr sdk.AccAddress) math.Int {
	gc := app.DefaultGenesisConfig()
	balance, err := a.LedgerKeeper.Subscriptions().BalanceOf(ctx, gc.CreditCollection, addr, gc.CreditTokenID)
	require.NoError(t, err)
	return balance
}

// RegisterService registers a deployed service owned by owner.
func RegisterService(t testing.TB, a *app.MechApp, ctx sdk.Context, owner sdk.AccAddress) uint64 {
	id, err := a.LedgerKeeper.RegisterService(ctx, owner)
	require.NoError(t, err)
	return id
}

// CreateMech registers a service for owner and creates a mech of variant v
// charging maxDeliveryRate.
func CreateMech(t testing.TB, a *app.MechApp, ctx sdk.Context, owner sdk.AccAddress, v bttypes.Variant, maxDeliveryRate int64) sdk.AccAddress {
	serviceID := RegisterService(t, a, ctx, owner)
	mech, err := a.MarketplaceKeeper.Create(ctx, owner, serviceID, a.Factories[v].Address(), mptypes.EncodeCreationData(math.NewInt(maxDeliveryRate)))
	require.NoError(t, err)
	return mech
}

// AdvanceTime moves the block time of ctx and of the app forward by d.
func AdvanceTime(a *app.MechApp, ctx sdk.Context, d time.Duration) sdk.Context {
	a.AdvanceTime(d)
	return ctx.WithBlockTime(ctx.BlockTime().Add(d))
}
