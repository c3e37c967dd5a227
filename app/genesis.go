package app

import (
	"encoding/json"
	"fmt"
	"os"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	karmatypes "github.com/mechx-labs/mechx/x/karma/types"
	ledgertypes "github.com/mechx-labs/mechx/x/ledger/types"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

// GenesisState represents the genesis state of the marketplace app, keyed by
// module or tracker instance name.
type GenesisState map[string]json.RawMessage

// GenesisConfig holds the devnet values baked into the default genesis.
type GenesisConfig struct {
	// CreditCollection and CreditTokenID identify the subscription credit token
	// both subscription trackers are bound to.
	CreditCollection sdk.AccAddress
	CreditTokenID    uint64

	// CreditRatio is the asset value of one credit.
	CreditRatio math.LegacyDec

	// CustodyFunding seeds the custody of each subscription tracker so credit
	// payouts can be settled.
	CustodyFunding math.Int

	Params mptypes.Params
}

// DefaultGenesisConfig returns the devnet genesis values.
func DefaultGenesisConfig() GenesisConfig {
	return GenesisConfig{
		CreditCollection: authtypes.NewModuleAddress(Name + "/credits"),
		CreditTokenID:    1,
		CreditRatio:      math.LegacyOneDec(),
		CustodyFunding:   math.NewInt(1_000_000_000_000),
		Params:           mptypes.DefaultParams(),
	}
}

// NewDefaultGenesisState returns the devnet genesis for cfg.
func NewDefaultGenesisState(cfg Config) GenesisState {
	return NewGenesisStateFromConfig(cfg, DefaultGenesisConfig())
}

// NewGenesisStateFromConfig builds a genesis in which every factory is active,
// every payment type is bound to its tracker and the subscription trackers are
// bound to the configured credit token.
func NewGenesisStateFromConfig(cfg Config, gc GenesisConfig) GenesisState {
	SetConfig()
	cdc := MakeEncodingConfig().Codec
	genesis := make(GenesisState)

	genesis[authtypes.ModuleName] = cdc.MustMarshalJSON(authtypes.DefaultGenesisState())

	ledgerGenesis := ledgertypes.DefaultGenesis()
	bankGenesis := banktypes.DefaultGenesisState()

	marketplaceGenesis := mptypes.DefaultGenesis()
	marketplaceGenesis.Params = gc.Params
	marketplaceGenesis.Owner = cfg.Owner.String()

	for _, v := range bttypes.AllVariants {
		trackerAddr := authtypes.NewModuleAddress(bttypes.InstanceName(v))
		factory := mptypes.NewPaymentFactory(v.String(), v.PaymentTypeName(), v.IsSubscription())

		marketplaceGenesis.FactoryStatuses = append(marketplaceGenesis.FactoryStatuses, mptypes.FactoryStatus{
			Factory: factory.Address().String(),
			Active:  true,
		})
		marketplaceGenesis.TrackerBindings = append(marketplaceGenesis.TrackerBindings, mptypes.TrackerBinding{
			PaymentType: factory.PaymentType(),
			Tracker:     trackerAddr.String(),
		})

		trackerGenesis := bttypes.DefaultGenesis()
		trackerGenesis.Owner = cfg.Owner.String()
		if v.IsSubscription() {
			// an empty collection leaves the binding to the tracker owner
			if !gc.CreditCollection.Empty() {
				trackerGenesis.Subscription = &bttypes.Subscription{
					Collection:       gc.CreditCollection.String(),
					TokenID:          gc.CreditTokenID,
					TokenCreditRatio: gc.CreditRatio,
				}
			}

			if gc.CustodyFunding.IsPositive() {
				switch v.Asset {
				case bttypes.AssetNative:
					bankGenesis.Balances = append(bankGenesis.Balances, banktypes.Balance{
						Address: trackerAddr.String(),
						Coins:   sdk.NewCoins(sdk.NewCoin(cfg.Denom, gc.CustodyFunding)),
					})
				case bttypes.AssetToken:
					ledgerGenesis.TokenBalances = append(ledgerGenesis.TokenBalances, ledgertypes.TokenBalance{
						Token:   cfg.Token.String(),
						Owner:   trackerAddr.String(),
						Balance: gc.CustodyFunding,
					})
				}
			}
		}
		genesis[bttypes.InstanceName(v)] = mustMarshalJSON(trackerGenesis)
	}

	genesis[banktypes.ModuleName] = cdc.MustMarshalJSON(bankGenesis)
	genesis[ledgertypes.ModuleName] = mustMarshalJSON(ledgerGenesis)
	genesis[karmatypes.ModuleName] = mustMarshalJSON(&karmatypes.GenesisState{
		Owner:              cfg.Owner.String(),
		Marketplaces:       []string{authtypes.NewModuleAddress(mptypes.ModuleName).String()},
		MechKarma:          []karmatypes.MechKarma{},
		RequesterMechKarma: []karmatypes.RequesterMechKarma{},
	})
	genesis[mptypes.ModuleName] = mustMarshalJSON(marketplaceGenesis)

	return genesis
}

// LoadGenesisFile reads a genesis written by ExportGenesis.
func LoadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}

	var genesis GenesisState
	if err := json.Unmarshal(bz, &genesis); err != nil {
		return nil, fmt.Errorf("failed to parse genesis file: %w", err)
	}
	return genesis, nil
}

// InitChain loads genesis into the store and commits the first block.
// Modules are initialized so that every collaborator exists before its users.
func (app *MechApp) InitChain(genesis GenesisState) error {
	_, err := app.Execute(func(ctx sdk.Context) error {
		authGenesis := authtypes.DefaultGenesisState()
		if bz, ok := genesis[authtypes.ModuleName]; ok {
			app.appCodec.MustUnmarshalJSON(bz, authGenesis)
		}
		app.AccountKeeper.InitGenesis(ctx, *authGenesis)

		for _, name := range ModuleAccountNames() {
			app.AccountKeeper.GetModuleAccount(ctx, name)
		}

		bankGenesis := banktypes.DefaultGenesisState()
		if bz, ok := genesis[banktypes.ModuleName]; ok {
			app.appCodec.MustUnmarshalJSON(bz, bankGenesis)
		}
		app.BankKeeper.InitGenesis(ctx, bankGenesis)

		ledgerGenesis := ledgertypes.DefaultGenesis()
		if err := unmarshalModule(genesis, ledgertypes.ModuleName, ledgerGenesis); err != nil {
			return err
		}
		if err := app.LedgerKeeper.InitGenesis(ctx, *ledgerGenesis); err != nil {
			return fmt.Errorf("ledger genesis: %w", err)
		}

		karmaGenesis := karmatypes.DefaultGenesis()
		if err := unmarshalModule(genesis, karmatypes.ModuleName, karmaGenesis); err != nil {
			return err
		}
		if err := app.KarmaKeeper.InitGenesis(ctx, *karmaGenesis); err != nil {
			return fmt.Errorf("karma genesis: %w", err)
		}

		for _, v := range bttypes.AllVariants {
			name := bttypes.InstanceName(v)
			trackerGenesis := bttypes.DefaultGenesis()
			if err := unmarshalModule(genesis, name, trackerGenesis); err != nil {
				return err
			}
			if err := app.Trackers[v].InitGenesis(ctx, *trackerGenesis); err != nil {
				return fmt.Errorf("%s genesis: %w", name, err)
			}
		}

		marketplaceGenesis := mptypes.DefaultGenesis()
		if err := unmarshalModule(genesis, mptypes.ModuleName, marketplaceGenesis); err != nil {
			return err
		}
		if err := app.MarketplaceKeeper.InitGenesis(ctx, *marketplaceGenesis); err != nil {
			return fmt.Errorf("marketplace genesis: %w", err)
		}

		return app.CheckInvariants(ctx)
	})
	if err != nil {
		return err
	}

	app.Commit()
	app.logger.Info("chain initialized", "chain_id", app.config.ChainID)
	return nil
}

// ExportGenesis exports the current state in the format accepted by InitChain.
func (app *MechApp) ExportGenesis() (GenesisState, error) {
	genesis := make(GenesisState)
	err := app.Query(func(ctx sdk.Context) error {
		genesis[authtypes.ModuleName] = app.appCodec.MustMarshalJSON(app.AccountKeeper.ExportGenesis(ctx))
		genesis[banktypes.ModuleName] = app.appCodec.MustMarshalJSON(app.BankKeeper.ExportGenesis(ctx))
		genesis[ledgertypes.ModuleName] = mustMarshalJSON(app.LedgerKeeper.ExportGenesis(ctx))

		karmaGenesis, err := app.KarmaKeeper.ExportGenesis(ctx)
		if err != nil {
			return fmt.Errorf("karma export: %w", err)
		}
		genesis[karmatypes.ModuleName] = mustMarshalJSON(karmaGenesis)

		for _, v := range bttypes.AllVariants {
			genesis[bttypes.InstanceName(v)] = mustMarshalJSON(app.Trackers[v].ExportGenesis(ctx))
		}

		marketplaceGenesis, err := app.MarketplaceKeeper.ExportGenesis(ctx)
		if err != nil {
			return fmt.Errorf("marketplace export: %w", err)
		}
		genesis[mptypes.ModuleName] = mustMarshalJSON(marketplaceGenesis)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genesis, nil
}

func unmarshalModule(genesis GenesisState, name string, v interface{}) error {
	bz, ok := genesis[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("failed to parse %s genesis: %w", name, err)
	}
	return nil
}

// Helper functions
func mustMarshalJSON(v interface{}) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}
