package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

type tickTier struct {
	upper float64
	tick  float64
}

var tickTiers = []tickTier{
	{upper: 1, tick: 0.0001},
	{upper: 10, tick: 0.001},
	{upper: 100, tick: 0.01},
	{upper: 1000, tick: 0.1},
	{upper: 20000, tick: 1.0},
	{upper: math.Inf(1), tick: 5.0},
}

// TickSize returns the minimum price increment for a price magnitude.
func TickSize(price float64) float64 {
	for _, t := range tickTiers {
		if price < t.upper {
			return t.tick
		}
	}
	return tickTiers[len(tickTiers)-1].tick
}

// RoundToTick rounds value to the nearest multiple of tick. The arithmetic
// runs in decimal so the float result prints as an exact grid value.
func RoundToTick(value, tick float64) float64 {
	if tick <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	t := decimal.NewFromFloat(tick)
	return decimal.NewFromFloat(value).DivRound(t, 0).Mul(t).InexactFloat64()
}

// Round snaps value to the tick implied by its own magnitude.
func Round(value float64) float64 {
	return RoundToTick(value, TickSize(value))
}

// StepTicks moves a grid price by n ticks without accumulating float error.
func StepTicks(price, tick float64, n int64) float64 {
	t := decimal.NewFromFloat(tick)
	return decimal.NewFromFloat(price).Add(t.Mul(decimal.NewFromInt(n))).InexactFloat64()
}

// IsTickAligned reports whether price is an exact multiple of tick.
func IsTickAligned(price, tick float64) bool {
	if tick <= 0 {
		return false
	}
	return decimal.NewFromFloat(price).Mod(decimal.NewFromFloat(tick)).IsZero()
}

// ClampToGrid clamps value into [lo, hi] and snaps it to the tick of the
// clamped magnitude, stepping one tick inward when rounding leaves the band.
// When the band is narrower than a tick the nearest grid point wins.
func ClampToGrid(value, lo, hi float64) float64 {
	v := math.Min(math.Max(value, lo), hi)
	tick := TickSize(v)
	p := RoundToTick(v, tick)
	switch {
	case p > hi:
		if q := StepTicks(p, TickSize(p), -1); q >= lo {
			p = q
		}
	case p < lo:
		if q := StepTicks(p, tick, 1); q <= hi {
			p = q
		}
	}
	return p
}
