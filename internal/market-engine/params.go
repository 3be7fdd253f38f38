package marketengine

import (
	"fmt"
	"strings"
	"time"
)

// Cadence selects how the scheduler spaces cycles.
type Cadence string

const (
	// CadenceFixedDelay sleeps Interval after every cycle, so slow cycles
	// push the schedule back.
	CadenceFixedDelay Cadence = "fixed_delay"
	// CadenceFixedRate aims for one cycle start per Interval. A cycle that
	// overruns is followed immediately; no cycle is ever skipped.
	CadenceFixedRate Cadence = "fixed_rate"
)

// Params are the tunables of the tick model.
type Params struct {
	Interval       time.Duration `mapstructure:"interval"`
	Cadence        Cadence       `mapstructure:"cadence"`
	HistoryLimit   int           `mapstructure:"history_limit"`
	OrderBookDepth int           `mapstructure:"order_book_depth"`
	TradeTapeSize  int           `mapstructure:"trade_tape_size"`

	BaseDrift float64 `mapstructure:"base_drift"`
	Sigma0    float64 `mapstructure:"sigma0"`
	DF        float64 `mapstructure:"df"`

	GarchW        float64 `mapstructure:"garch_w"`
	GarchA        float64 `mapstructure:"garch_a"`
	GarchB        float64 `mapstructure:"garch_b"`
	VarianceFloor float64 `mapstructure:"variance_floor"`

	JumpLambda float64 `mapstructure:"jump_lambda"`
	JumpMu     float64 `mapstructure:"jump_mu"`
	JumpSigma  float64 `mapstructure:"jump_sigma"`

	ThetaF    float64 `mapstructure:"theta_f"`
	FundDrift float64 `mapstructure:"fund_drift"`
	FundVol   float64 `mapstructure:"fund_vol"`

	OFIImpact float64 `mapstructure:"ofi_impact"`
	CommonRho float64 `mapstructure:"common_rho"`

	SentiPersist       float64 `mapstructure:"senti_persist"`
	SentiShock         float64 `mapstructure:"senti_shock"`
	MarketSentiPersist float64 `mapstructure:"market_senti_persist"`
	MarketSentiShock   float64 `mapstructure:"market_senti_shock"`
	SentiClip          float64 `mapstructure:"senti_clip"`

	SeasonalAmp float64 `mapstructure:"seasonal_amp"`

	VolToSpread        float64 `mapstructure:"vol_to_spread"`
	LevelSpacingFactor float64 `mapstructure:"level_spacing_factor"`
	DepthDecay         float64 `mapstructure:"depth_decay"`
	LevelSizeSigma     float64 `mapstructure:"level_size_sigma"`
	MinLevelSize       float64 `mapstructure:"min_level_size"`

	StablecoinTokens []string `mapstructure:"stablecoin_tokens"`
	StablecoinDecay  float64  `mapstructure:"stablecoin_decay"`
	StablecoinBand   float64  `mapstructure:"stablecoin_band"`
}

// DefaultParams returns the stock model calibration.
func DefaultParams() Params {
	return Params{
		Interval:       500 * time.Millisecond,
		Cadence:        CadenceFixedDelay,
		HistoryLimit:   500,
		OrderBookDepth: 6,
		TradeTapeSize:  1000,

		BaseDrift: 0.00005,
		Sigma0:    0.004,
		DF:        6,

		GarchW:        1e-7,
		GarchA:        0.06,
		GarchB:        0.92,
		VarianceFloor: 1e-12,

		JumpLambda: 0.002,
		JumpMu:     0.0,
		JumpSigma:  0.02,

		ThetaF:    0.002,
		FundDrift: 0.0,
		FundVol:   0.0005,

		OFIImpact: 0.03,
		CommonRho: 0.45,

		SentiPersist:       0.98,
		SentiShock:         1e-4,
		MarketSentiPersist: 0.995,
		MarketSentiShock:   5e-5,
		SentiClip:          0.02,

		SeasonalAmp: 0.07,

		VolToSpread:        2.5,
		LevelSpacingFactor: 0.6,
		DepthDecay:         0.65,
		LevelSizeSigma:     0.35,
		MinLevelSize:       0.05,

		StablecoinTokens: []string{"USDT", "USDC", "DAI", "TUSD", "FDUSD", "USDP"},
		StablecoinDecay:  0.25,
		StablecoinBand:   0.003,
	}
}

// Validate rejects calibrations the recurrence cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Interval <= 0:
		return fmt.Errorf("interval must be > 0, got %s", p.Interval)
	case p.Cadence != CadenceFixedDelay && p.Cadence != CadenceFixedRate:
		return fmt.Errorf("unknown cadence %q", p.Cadence)
	case p.HistoryLimit <= 0:
		return fmt.Errorf("history_limit must be > 0, got %d", p.HistoryLimit)
	case p.OrderBookDepth <= 0:
		return fmt.Errorf("order_book_depth must be > 0, got %d", p.OrderBookDepth)
	case p.DF <= 2:
		return fmt.Errorf("df must be > 2 for unit-variance innovations, got %v", p.DF)
	case p.Sigma0 <= 0:
		return fmt.Errorf("sigma0 must be > 0, got %v", p.Sigma0)
	case p.GarchW < 0 || p.GarchA < 0 || p.GarchB < 0 || p.GarchA+p.GarchB >= 1:
		return fmt.Errorf("garch parameters must be non-negative with a+b < 1, got w=%v a=%v b=%v", p.GarchW, p.GarchA, p.GarchB)
	case p.VarianceFloor <= 0:
		return fmt.Errorf("variance_floor must be > 0, got %v", p.VarianceFloor)
	case p.CommonRho < 0 || p.CommonRho > 1:
		return fmt.Errorf("common_rho must be in [0,1], got %v", p.CommonRho)
	case p.SentiClip < 0:
		return fmt.Errorf("senti_clip must be >= 0, got %v", p.SentiClip)
	case p.StablecoinDecay <= 0 || p.StablecoinDecay >= 1:
		return fmt.Errorf("stablecoin_decay must be in (0,1), got %v", p.StablecoinDecay)
	case p.StablecoinBand <= 0:
		return fmt.Errorf("stablecoin_band must be > 0, got %v", p.StablecoinBand)
	case p.MinLevelSize <= 0:
		return fmt.Errorf("min_level_size must be > 0, got %v", p.MinLevelSize)
	}
	return nil
}

// DT is the cycle interval in seconds.
func (p Params) DT() float64 {
	return p.Interval.Seconds()
}

// IsStablecoin reports whether symbol carries a pegged-token marker.
func (p Params) IsStablecoin(symbol string) bool {
	upper := strings.ToUpper(symbol)
	for _, tok := range p.StablecoinTokens {
		if tok != "" && strings.Contains(upper, strings.ToUpper(tok)) {
			return true
		}
	}
	return false
}
