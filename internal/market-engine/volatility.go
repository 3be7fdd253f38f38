package marketengine

import "math"

// VolatilityState is the hidden per-symbol state of the price model.
type VolatilityState struct {
	// Variance is the GARCH conditional variance, always > 0.
	Variance float64
	// LastReturn is the realized log-return of the previous tick.
	LastReturn float64
	// FundamentalLog is the latent log-price anchor the price reverts to.
	FundamentalLog float64
	// Sentiment is the idiosyncratic AR(1) drift, clipped to ±SentiClip.
	Sentiment float64
	// LastBidVol and LastAskVol are the summed book depth each side showed
	// to the last tick, before the book was rebuilt around the new price.
	LastBidVol float64
	LastAskVol float64
}

// NewVolatilityState seeds state from an instrument's initial price.
func NewVolatilityState(initialPrice float64, p Params) *VolatilityState {
	return &VolatilityState{
		Variance:       p.Sigma0 * p.Sigma0,
		FundamentalLog: math.Log(math.Max(initialPrice, 1e-8)),
	}
}

// Sigma is the conditional standard deviation.
func (v *VolatilityState) Sigma() float64 {
	return math.Sqrt(v.Variance)
}

// NextVariance applies the GARCH(1,1) recurrence w + a*r² + b*σ², decays it
// for stablecoins and floors it above zero.
func NextVariance(prev, r float64, stablecoin bool, p Params) float64 {
	next := p.GarchW + p.GarchA*r*r + p.GarchB*prev
	if stablecoin {
		next *= p.StablecoinDecay
	}
	if math.IsNaN(next) || math.IsInf(next, 0) {
		next = p.Sigma0 * p.Sigma0
	}
	return math.Max(p.VarianceFloor, next)
}

// Update folds a realized return into the state.
func (v *VolatilityState) Update(r float64, stablecoin bool, p Params) {
	v.Variance = NextVariance(v.Variance, r, stablecoin, p)
	v.LastReturn = r
}

// ar1 advances a clipped AR(1) process.
func ar1(x, persist, shock, clip float64) float64 {
	x = persist*x + shock
	return math.Max(-clip, math.Min(clip, x))
}
