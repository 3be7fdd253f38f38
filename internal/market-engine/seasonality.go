package marketengine

import (
	"math"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Seasonality is the intraday volatility multiplier for a cycle,
// 1 + amp*sin(2π·(step mod period)/period) with one period per simulated day.
func Seasonality(step uint64, interval time.Duration, amp float64) float64 {
	if interval <= 0 {
		return 1.0
	}
	period := uint64(secondsPerDay / interval.Seconds())
	if period == 0 {
		return 1.0
	}
	phase := 2 * math.Pi * float64(step%period) / float64(period)
	return 1.0 + amp*math.Sin(phase)
}
