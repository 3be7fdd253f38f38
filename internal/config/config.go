package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	marketengine "market-sim-go/internal/market-engine"
	"market-sim-go/internal/models"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig
	Metrics MetricsConfig
	Log     LogConfig
	Engine  marketengine.Params
	Archive ArchiveConfig

	// Instruments are registered at startup, after any SeedCSV rows.
	Instruments []models.InstrumentSeed
	SeedCSV     string
}

type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
}

// MetricsConfig controls the prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// ArchiveConfig enables the SQLite tick archive and CSV snapshots. Empty
// paths disable the respective sink.
type ArchiveConfig struct {
	SQLitePath       string        `mapstructure:"sqlite_path"`
	SnapshotDir      string        `mapstructure:"snapshot_dir"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
}

// raw mirrors the key layout; engine timing and model constants live in
// separate trees but decode into one Params.
type raw struct {
	Server      ServerConfig            `mapstructure:"server"`
	Metrics     MetricsConfig           `mapstructure:"metrics"`
	Log         LogConfig               `mapstructure:"log"`
	Engine      marketengine.Params     `mapstructure:"engine"`
	Model       marketengine.Params     `mapstructure:"model"`
	Stablecoins []string                `mapstructure:"stablecoins"`
	Instruments []models.InstrumentSeed `mapstructure:"instruments"`
	SeedCSV     string                  `mapstructure:"seed_csv"`
	Archive     ArchiveConfig           `mapstructure:"archive"`
}

func setDefaults(v *viper.Viper) {
	d := marketengine.DefaultParams()

	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("metrics.addr", ":9102")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("engine.interval", d.Interval)
	v.SetDefault("engine.cadence", string(d.Cadence))
	v.SetDefault("engine.history_limit", d.HistoryLimit)
	v.SetDefault("engine.order_book_depth", d.OrderBookDepth)
	v.SetDefault("engine.trade_tape_size", d.TradeTapeSize)

	v.SetDefault("model.base_drift", d.BaseDrift)
	v.SetDefault("model.sigma0", d.Sigma0)
	v.SetDefault("model.df", d.DF)
	v.SetDefault("model.garch_w", d.GarchW)
	v.SetDefault("model.garch_a", d.GarchA)
	v.SetDefault("model.garch_b", d.GarchB)
	v.SetDefault("model.variance_floor", d.VarianceFloor)
	v.SetDefault("model.jump_lambda", d.JumpLambda)
	v.SetDefault("model.jump_mu", d.JumpMu)
	v.SetDefault("model.jump_sigma", d.JumpSigma)
	v.SetDefault("model.theta_f", d.ThetaF)
	v.SetDefault("model.fund_drift", d.FundDrift)
	v.SetDefault("model.fund_vol", d.FundVol)
	v.SetDefault("model.ofi_impact", d.OFIImpact)
	v.SetDefault("model.common_rho", d.CommonRho)
	v.SetDefault("model.senti_persist", d.SentiPersist)
	v.SetDefault("model.senti_shock", d.SentiShock)
	v.SetDefault("model.market_senti_persist", d.MarketSentiPersist)
	v.SetDefault("model.market_senti_shock", d.MarketSentiShock)
	v.SetDefault("model.senti_clip", d.SentiClip)
	v.SetDefault("model.seasonal_amp", d.SeasonalAmp)
	v.SetDefault("model.vol_to_spread", d.VolToSpread)
	v.SetDefault("model.level_spacing_factor", d.LevelSpacingFactor)
	v.SetDefault("model.depth_decay", d.DepthDecay)
	v.SetDefault("model.level_size_sigma", d.LevelSizeSigma)
	v.SetDefault("model.min_level_size", d.MinLevelSize)
	v.SetDefault("model.stablecoin_decay", d.StablecoinDecay)
	v.SetDefault("model.stablecoin_band", d.StablecoinBand)

	v.SetDefault("stablecoins", d.StablecoinTokens)
	v.SetDefault("instruments", []map[string]any{})
	v.SetDefault("seed_csv", "")

	v.SetDefault("archive.sqlite_path", "")
	v.SetDefault("archive.snapshot_dir", "")
	v.SetDefault("archive.snapshot_interval", time.Minute)
}

// Load reads an optional YAML file and MARKET_* environment overrides
// (MARKET_ENGINE_INTERVAL=250ms, MARKET_MODEL_SIGMA0=0.01, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	params := r.Model
	params.Interval = r.Engine.Interval
	params.Cadence = r.Engine.Cadence
	params.HistoryLimit = r.Engine.HistoryLimit
	params.OrderBookDepth = r.Engine.OrderBookDepth
	params.TradeTapeSize = r.Engine.TradeTapeSize
	params.StablecoinTokens = r.Stablecoins

	cfg := &Config{
		Server:      r.Server,
		Metrics:     r.Metrics,
		Log:         r.Log,
		Engine:      params,
		Archive:     r.Archive,
		Instruments: r.Instruments,
		SeedCSV:     r.SeedCSV,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.GRPCAddr == "" {
		errs = append(errs, errors.New("server.grpc_addr must be set"))
	}
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Archive.SnapshotDir != "" && c.Archive.SnapshotInterval <= 0 {
		errs = append(errs, fmt.Errorf("archive.snapshot_interval must be > 0, got %s", c.Archive.SnapshotInterval))
	}
	for i, in := range c.Instruments {
		if strings.TrimSpace(in.Symbol) == "" || in.Price <= 0 {
			errs = append(errs, fmt.Errorf("instruments[%d]: need a symbol and a positive price, got %q at %v", i, in.Symbol, in.Price))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
