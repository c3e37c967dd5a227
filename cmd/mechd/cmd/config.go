package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mechx-labs/mechx/api"
	"github.com/mechx-labs/mechx/app"
	"github.com/mechx-labs/mechx/app/health"
	"github.com/mechx-labs/mechx/app/telemetry"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MECHD_API_PORT.
	EnvPrefix = "MECHD"

	configFileName  = "mechd.toml"
	genesisFileName = "genesis.json"
)

// Version is set at build time.
var Version = "dev"

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// HealthConfig configures the health checker.
type HealthConfig struct {
	MaxResponseTime time.Duration `mapstructure:"max-response-time"`
	CacheDuration   time.Duration `mapstructure:"cache-duration"`
}

// NodeConfig is the full mechd configuration, read from mechd.toml and
// MECHD_* environment variables.
type NodeConfig struct {
	Home      string `mapstructure:"home"`
	ChainID   string `mapstructure:"chain-id"`
	Denom     string `mapstructure:"denom"`
	DBBackend string `mapstructure:"db-backend"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	// BlockTime is the interval at which serve commits a block.
	BlockTime time.Duration `mapstructure:"block-time"`

	// CheckInvariants runs every registered invariant after each block.
	CheckInvariants bool `mapstructure:"check-invariants"`

	API       api.Config       `mapstructure:"api"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Health    HealthConfig     `mapstructure:"health"`
}

// DefaultNodeConfig returns the devnet node configuration.
func DefaultNodeConfig() NodeConfig {
	healthCfg := health.DefaultConfig()
	return NodeConfig{
		Home:      app.DefaultNodeHome,
		ChainID:   app.DefaultChainID,
		Denom:     app.BondDenom,
		DBBackend: string(dbm.GoLevelDBBackend),
		LogLevel:  "info",
		LogFormat: "plain",
		BlockTime: 5 * time.Second,
		API:       *api.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:26660",
		},
		Health: HealthConfig{
			MaxResponseTime: healthCfg.MaxResponseTime,
			CacheDuration:   healthCfg.CacheDuration,
		},
	}
}

// Validate checks the node settings and every embedded section.
func (c NodeConfig) Validate() error {
	if c.Home == "" {
		return errors.New("home directory is required")
	}
	if c.ChainID == "" {
		return errors.New("chain id is required")
	}
	if err := sdk.ValidateDenom(c.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "plain" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be plain or json, got %q", c.LogFormat)
	}
	if c.BlockTime <= 0 {
		return errors.New("block time must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics address is required when metrics are enabled")
	}
	if c.Health.MaxResponseTime <= 0 {
		return errors.New("health max response time must be positive")
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// AppConfig returns the app wiring for this node.
func (c NodeConfig) AppConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.ChainID = c.ChainID
	cfg.Denom = c.Denom
	return cfg
}

// HealthCheckerConfig returns the health checker settings.
func (c NodeConfig) HealthCheckerConfig() health.Config {
	return health.Config{
		Version:         Version,
		MaxResponseTime: c.Health.MaxResponseTime,
		CacheDuration:   c.Health.CacheDuration,
	}
}

// ConfigDir is the directory holding mechd.toml and genesis.json.
func (c NodeConfig) ConfigDir() string {
	return filepath.Join(c.Home, "config")
}

// DataDir is the directory holding the application database.
func (c NodeConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// NewLogger builds the node logger.
func (c NodeConfig) NewLogger() (log.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(level)}
	if c.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(os.Stderr, opts...), nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg NodeConfig) {
	v.SetDefault("home", cfg.Home)
	v.SetDefault("chain-id", cfg.ChainID)
	v.SetDefault("denom", cfg.Denom)
	v.SetDefault("db-backend", cfg.DBBackend)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("log-format", cfg.LogFormat)
	v.SetDefault("block-time", cfg.BlockTime)
	v.SetDefault("check-invariants", cfg.CheckInvariants)

	v.SetDefault("api.host", cfg.API.Host)
	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.cors-origins", cfg.API.CORSOrigins)
	v.SetDefault("api.rate-limit-rps", cfg.API.RateLimitRPS)
	v.SetDefault("api.rate-limit-burst", cfg.API.RateLimitBurst)
	v.SetDefault("api.read-timeout", cfg.API.ReadTimeout)
	v.SetDefault("api.write-timeout", cfg.API.WriteTimeout)
	v.SetDefault("api.request-timeout", cfg.API.RequestTimeout)
	v.SetDefault("api.shutdown-timeout", cfg.API.ShutdownTimeout)

	v.SetDefault("telemetry.enabled", cfg.Telemetry.Enabled)
	v.SetDefault("telemetry.otlp-endpoint", cfg.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.sample-rate", cfg.Telemetry.SampleRate)
	v.SetDefault("telemetry.environment", cfg.Telemetry.Environment)
	v.SetDefault("telemetry.prometheus", cfg.Telemetry.PrometheusEnabled)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)

	v.SetDefault("health.max-response-time", cfg.Health.MaxResponseTime)
	v.SetDefault("health.cache-duration", cfg.Health.CacheDuration)
}

// newViper returns a viper instance with defaults and MECHD_* overrides.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultNodeConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile merges home/config/mechd.toml when it exists.
func readConfigFile(v *viper.Viper) error {
	path := filepath.Join(v.GetString("home"), "config", configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// LoadNodeConfig decodes and validates the effective configuration.
func LoadNodeConfig(v *viper.Viper) (NodeConfig, error) {
	var cfg NodeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return NodeConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Telemetry.ServiceVersion = Version
	cfg.Telemetry.ChainID = cfg.ChainID
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fileKeys are the top-level settings persisted to mechd.toml. Home and
// command flags are never written.
var fileKeys = []string{
	"chain-id", "denom", "db-backend", "log-level", "log-format", "block-time",
	"check-invariants", "api", "telemetry", "metrics", "health",
}

// marshalSettings renders the effective settings as TOML with durations in
// their string form.
func marshalSettings(v *viper.Viper) ([]byte, error) {
	all := v.AllSettings()
	settings := make(map[string]interface{}, len(fileKeys))
	for _, key := range fileKeys {
		if value, ok := all[key]; ok {
			settings[key] = value
		}
	}
	return toml.Marshal(normalizeSettings(settings))
}

func normalizeSettings(settings map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(settings))
	for key, value := range settings {
		switch val := value.(type) {
		case map[string]interface{}:
			out[key] = normalizeSettings(val)
		case time.Duration:
			out[key] = cast.ToString(val)
		default:
			out[key] = val
		}
	}
	return out
}

// ConfigCmd groups configuration helpers.
func ConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the node configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := LoadNodeConfig(v); err != nil {
				return err
			}
			bz, err := marshalSettings(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(bz)
			return err
		},
	})
	return cmd
}
