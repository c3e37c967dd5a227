package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mechx-labs/mechx/api"
	"github.com/mechx-labs/mechx/app"
	"github.com/mechx-labs/mechx/app/health"
	"github.com/mechx-labs/mechx/app/telemetry"
)

// ServeCmd runs the node: the REST API, the Prometheus endpoint and a block
// clock that commits state at a fixed interval.
func ServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the node and serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadNodeConfig(v)
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runNode(ctx, logger, cfg)
		},
	}
}

func runNode(ctx context.Context, logger log.Logger, cfg NodeConfig) error {
	mechApp, closeDB, err := openApp(logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	provider, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down telemetry", "error", err)
		}
	}()

	checker, err := health.NewChecker(logger.With("module", "health"), cfg.HealthCheckerConfig(), mechApp)
	if err != nil {
		return err
	}
	checker.AddProbe("telemetry", provider.HealthCheck)

	server, err := api.NewServer(mechApp, checker, &cfg.API)
	if err != nil {
		return err
	}

	errCh := make(chan error, 3)
	go func() { errCh <- server.Start(ctx) }()
	go func() { errCh <- runBlockClock(ctx, logger, mechApp, cfg) }()
	if cfg.Metrics.Enabled {
		go func() { errCh <- serveMetrics(ctx, logger, cfg.Metrics.Addr) }()
	}

	logger.Info("node started", "chain_id", cfg.ChainID, "height", mechApp.LastCommitID().Version)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	return nil
}

// runBlockClock advances block time and commits at every tick.
func runBlockClock(ctx context.Context, logger log.Logger, mechApp *app.MechApp, cfg NodeConfig) error {
	ticker := time.NewTicker(cfg.BlockTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			mechApp.SetBlockTime(now.UTC())
			if cfg.CheckInvariants {
				if err := mechApp.Query(mechApp.CheckInvariants); err != nil {
					return fmt.Errorf("invariant broken at height %d: %w", mechApp.BlockHeader().Height, err)
				}
			}
			id := mechApp.Commit()
			logger.Debug("block committed", "height", id.Version)
		}
	}
}

// serveMetrics exposes the default Prometheus registry.
func serveMetrics(ctx context.Context, logger log.Logger, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving prometheus metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// ExportCmd prints the current state as a genesis document.
func ExportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the latest committed state as genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadNodeConfig(v)
			if err != nil {
				return err
			}
			mechApp, closeDB, err := openApp(log.NewNopLogger(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			genesis, err := mechApp.ExportGenesis()
			if err != nil {
				return err
			}
			return printJSON(cmd, genesis)
		},
	}
}
