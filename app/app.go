// Package app composes the mech marketplace devnet application.
//
// MechApp mounts every module store on a single IAVL commit multistore and wires
// the keepers together:
//   - auth and bank settle the native payment variants
//   - the ledger module hosts tokens, subscription credits and services
//   - one balance tracker per payment variant
//   - the karma ledger and the marketplace
//
// All state transitions run through Execute, which serializes writers and commits
// each operation atomically, so the app behaves as a single sequential state machine.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authcodec "github.com/cosmos/cosmos-sdk/x/auth/codec"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	btkeeper "github.com/mechx-labs/mechx/x/balancetracker/keeper"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	karmakeeper "github.com/mechx-labs/mechx/x/karma/keeper"
	karmatypes "github.com/mechx-labs/mechx/x/karma/types"
	ledgerkeeper "github.com/mechx-labs/mechx/x/ledger/keeper"
	ledgertypes "github.com/mechx-labs/mechx/x/ledger/types"
	mpkeeper "github.com/mechx-labs/mechx/x/marketplace/keeper"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

const (
	Name = "mechx"

	// FaucetName is the module account that mints devnet funds.
	FaucetName = "faucet"
)

// DefaultNodeHome is the default home directory for the application daemon.
var DefaultNodeHome string

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	DefaultNodeHome = filepath.Join(userHomeDir, ".mechx")
}

// Config selects the accounts and assets the app is wired with.
type Config struct {
	ChainID string

	// Denom is the bank denom of the native payment variants.
	Denom string

	// Owner is the initial owner of the marketplace, karma ledger and trackers.
	Owner sdk.AccAddress

	// Drainer receives fees drained from every tracker.
	Drainer sdk.AccAddress

	// Token is the ledger token settled by the token payment variants.
	Token sdk.AccAddress
}

// DefaultConfig returns the devnet configuration.
func DefaultConfig() Config {
	return Config{
		ChainID: DefaultChainID,
		Denom:   BondDenom,
		Owner:   authtypes.NewModuleAddress(govtypes.ModuleName),
		Drainer: authtypes.NewModuleAddress("drainer"),
		Token:   authtypes.NewModuleAddress(Name + "/token"),
	}
}

// Validate checks that every configured account is set.
func (c Config) Validate() error {
	if c.ChainID == "" {
		return fmt.Errorf("chain id is required")
	}
	if err := sdk.ValidateDenom(c.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}
	if c.Owner.Empty() || c.Drainer.Empty() || c.Token.Empty() {
		return fmt.Errorf("owner, drainer and token addresses are required")
	}
	return nil
}

// MechApp is the devnet application. Keepers are exported for tests and tooling.
type MechApp struct {
	logger log.Logger
	config Config

	appCodec codec.Codec
	cms      storetypes.CommitMultiStore
	keys     map[string]*storetypes.KVStoreKey

	mu     sync.RWMutex
	header cmtproto.Header

	invariants *InvariantRegistry

	// keepers
	AccountKeeper     authkeeper.AccountKeeper
	BankKeeper        bankkeeper.BaseKeeper
	LedgerKeeper      *ledgerkeeper.Keeper
	KarmaKeeper       *karmakeeper.Keeper
	Trackers          map[bttypes.Variant]*btkeeper.Keeper
	Factories         map[bttypes.Variant]mptypes.PaymentFactory
	MarketplaceKeeper *mpkeeper.Keeper
}

// New returns an initialized MechApp backed by db.
func New(logger log.Logger, db dbm.DB, cfg Config) (*MechApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	SetConfig()

	encodingConfig := MakeEncodingConfig()
	appCodec := encodingConfig.Codec

	storeNames := []string{
		authtypes.StoreKey, banktypes.StoreKey,
		ledgertypes.StoreKey, karmatypes.StoreKey, mptypes.StoreKey,
	}
	for _, v := range bttypes.AllVariants {
		storeNames = append(storeNames, bttypes.InstanceName(v))
	}
	keys := storetypes.NewKVStoreKeys(storeNames...)

	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load latest version: %w", err)
	}

	app := &MechApp{
		logger:     logger,
		config:     cfg,
		appCodec:   appCodec,
		cms:        cms,
		keys:       keys,
		header:     cmtproto.Header{ChainID: cfg.ChainID, Height: cms.LastCommitID().Version + 1, Time: time.Now().UTC()},
		invariants: NewInvariantRegistry(),
		Trackers:   make(map[bttypes.Variant]*btkeeper.Keeper),
		Factories:  make(map[bttypes.Variant]mptypes.PaymentFactory),
	}

	app.AccountKeeper = authkeeper.NewAccountKeeper(
		appCodec, runtime.NewKVStoreService(keys[authtypes.StoreKey]), authtypes.ProtoBaseAccount, GetMaccPerms(), authcodec.NewBech32Codec(Bech32PrefixAccAddr), Bech32PrefixAccAddr, authtypes.NewModuleAddress(govtypes.ModuleName).String(),
	)

	app.BankKeeper = bankkeeper.NewBaseKeeper(
		appCodec, runtime.NewKVStoreService(keys[banktypes.StoreKey]), app.AccountKeeper, BlockedModuleAccountAddrs(), authtypes.NewModuleAddress(govtypes.ModuleName).String(), logger,
	)

	app.LedgerKeeper = ledgerkeeper.NewKeeper(keys[ledgertypes.StoreKey])
	app.KarmaKeeper = karmakeeper.NewKeeper(keys[karmatypes.StoreKey], cfg.Owner)

	marketplaceAddr := authtypes.NewModuleAddress(mptypes.ModuleName)
	trackers := make([]mptypes.BalanceTracker, 0, len(bttypes.AllVariants))
	factories := make([]mptypes.MechFactory, 0, len(bttypes.AllVariants))
	for _, v := range bttypes.AllVariants {
		tracker := btkeeper.NewKeeper(
			keys[bttypes.InstanceName(v)],
			bttypes.Config{
				Variant:     v,
				Denom:       cfg.Denom,
				Token:       cfg.Token,
				Marketplace: marketplaceAddr,
				Drainer:     cfg.Drainer,
			},
			cfg.Owner,
			app.BankKeeper,
			app.LedgerKeeper,
			app.LedgerKeeper.Subscriptions(),
		)
		app.Trackers[v] = tracker
		trackers = append(trackers, tracker)

		factory := mptypes.NewPaymentFactory(v.String(), v.PaymentTypeName(), v.IsSubscription())
		app.Factories[v] = factory
		factories = append(factories, factory)
	}

	app.MarketplaceKeeper = mpkeeper.NewKeeper(
		keys[mptypes.StoreKey],
		cfg.Owner,
		app.KarmaKeeper,
		app.LedgerKeeper,
		trackers,
		factories,
	)
	for _, tracker := range app.Trackers {
		tracker.SetMechResolver(app.MarketplaceKeeper)
	}

	mpkeeper.RegisterInvariants(app.invariants, app.MarketplaceKeeper)
	for _, v := range bttypes.AllVariants {
		btkeeper.RegisterInvariants(app.invariants, app.Trackers[v])
	}

	return app, nil
}

// Logger returns the app logger.
func (app *MechApp) Logger() log.Logger {
	return app.logger
}

// Config returns the app configuration.
func (app *MechApp) Config() Config {
	return app.config
}

// AppCodec returns the codec used by the auth and bank keepers.
func (app *MechApp) AppCodec() codec.Codec {
	return app.appCodec
}

// GetKey returns the KVStoreKey for the provided store key.
func (app *MechApp) GetKey(storeKey string) *storetypes.KVStoreKey {
	return app.keys[storeKey]
}

// Tracker returns the balance tracker of v.
func (app *MechApp) Tracker(v bttypes.Variant) *btkeeper.Keeper {
	return app.Trackers[v]
}

// PaymentType returns the marketplace payment type tag of v.
func (app *MechApp) PaymentType(v bttypes.Variant) mptypes.PaymentType {
	return app.Factories[v].PaymentType()
}

// NewContext returns a context writing straight into the working state. It does
// not take the app lock and is meant for single-goroutine tests and genesis.
func (app *MechApp) NewContext() sdk.Context {
	return sdk.NewContext(app.cms, app.header, false, app.logger)
}

// Execute runs fn as one atomic state transition. State is written only when fn
// succeeds. The emitted events are returned either way.
func (app *MechApp) Execute(fn func(ctx sdk.Context) error) (sdk.Events, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	cache := app.cms.CacheMultiStore()
	ctx := sdk.NewContext(cache, app.header, false, app.logger)
	if err := fn(ctx); err != nil {
		return ctx.EventManager().Events(), err
	}

	cache.Write()
	return ctx.EventManager().Events(), nil
}

// Query runs fn against a throwaway view of the current state.
func (app *MechApp) Query(fn func(ctx sdk.Context) error) error {
	app.mu.RLock()
	defer app.mu.RUnlock()

	ctx := sdk.NewContext(app.cms.CacheMultiStore(), app.header, false, app.logger)
	return fn(ctx)
}

// Commit persists the working state and opens the next block.
func (app *MechApp) Commit() storetypes.CommitID {
	app.mu.Lock()
	defer app.mu.Unlock()

	id := app.cms.Commit()
	app.header.Height = id.Version + 1
	app.logger.Debug("committed block", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id
}

// LastCommitID returns the id of the last committed block.
func (app *MechApp) LastCommitID() storetypes.CommitID {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return app.cms.LastCommitID()
}

// AdvanceTime moves block time forward. Response deadlines are measured against it.
func (app *MechApp) AdvanceTime(d time.Duration) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.header.Time = app.header.Time.Add(d)
}

// SetBlockTime sets the block time.
func (app *MechApp) SetBlockTime(t time.Time) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.header.Time = t.UTC()
}

// BlockHeader returns the header of the open block.
func (app *MechApp) BlockHeader() cmtproto.Header {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return app.header
}

// CheckInvariants runs every registered invariant and fails on the first broken one.
func (app *MechApp) CheckInvariants(ctx sdk.Context) error {
	return app.invariants.AssertAll(ctx)
}

// Invariants returns the invariant registry.
func (app *MechApp) Invariants() *InvariantRegistry {
	return app.invariants
}

// FundAccount mints coins from the faucet to addr.
func (app *MechApp) FundAccount(ctx sdk.Context, addr sdk.AccAddress, coins sdk.Coins) error {
	if err := app.BankKeeper.MintCoins(ctx, FaucetName, coins); err != nil {
		return err
	}
	return app.BankKeeper.SendCoinsFromModuleToAccount(ctx, FaucetName, addr, coins)
}

// GetMaccPerms returns a copy of the module account permissions
func GetMaccPerms() map[string][]string {
	dupMaccPerms := make(map[string][]string)
	for k, v := range maccPerms {
		dupMaccPerms[k] = v
	}
	for _, v := range bttypes.AllVariants {
		dupMaccPerms[bttypes.InstanceName(v)] = nil
	}

	return dupMaccPerms
}

// ModuleAccountNames returns every module account in a stable order.
func ModuleAccountNames() []string {
	names := make([]string, 0, len(maccPerms)+len(bttypes.AllVariants))
	for name := range GetMaccPerms() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BlockedModuleAccountAddrs returns all the app's blocked module account
// addresses.
func BlockedModuleAccountAddrs() map[string]bool {
	modAccAddrs := make(map[string]bool)
	for acc := range GetMaccPerms() {
		modAccAddrs[authtypes.NewModuleAddress(acc).String()] = true
	}

	return modAccAddrs
}

// module account permissions. Balance tracker accounts are added per variant.
var maccPerms = map[string][]string{
	authtypes.FeeCollectorName: nil,
	FaucetName:                 {authtypes.Minter},
}
