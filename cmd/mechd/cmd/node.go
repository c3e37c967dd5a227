package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/mechx-labs/mechx/app"
)

// openApp opens the node database and loads the app at its latest version. A
// fresh database is initialized from home/config/genesis.json, or from the
// devnet genesis when that file does not exist.
func openApp(logger log.Logger, cfg NodeConfig) (*app.MechApp, func() error, error) {
	db, err := dbm.NewDB("application", dbm.BackendType(cfg.DBBackend), cfg.DataDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	mechApp, err := app.New(logger, db, cfg.AppConfig())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	if mechApp.LastCommitID().Version == 0 {
		genesis, err := loadGenesis(cfg)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		mechApp.SetBlockTime(time.Now().UTC())
		if err := mechApp.InitChain(genesis); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to init chain: %w", err)
		}
		logger.Info("initialized chain from genesis", "chain_id", cfg.ChainID)
	}

	return mechApp, db.Close, nil
}

func loadGenesis(cfg NodeConfig) (app.GenesisState, error) {
	path := filepath.Join(cfg.ConfigDir(), genesisFileName)
	genesis, err := app.LoadGenesisFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return app.NewDefaultGenesisState(cfg.AppConfig()), nil
	}
	return genesis, err
}
