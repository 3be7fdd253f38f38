package marketengine

import (
	"math"

	"market-sim-go/internal/models"
	"market-sim-go/internal/utils"
)

// minTick is the finest increment on the grid; no bid is floored below it.
var minTick = utils.TickSize(0)

// CreateOrderBook synthesizes a depth-level ladder around price. The spread
// widens with sigma and never drops below 1.5 ticks. Level sizes are
// log-normal around a base that shrinks with volatility, thinning by
// exp(-DepthDecay*i) with depth and floored at MinLevelSize.
//
// Spread and spacing come from the mid's tick, but every level is snapped to
// the tick of its own price, so a ladder crossing a tier boundary stays on
// the coarser grid past it.
func CreateOrderBook(price, sigma float64, depth int, p Params, s Sampler) *models.OrderBook {
	if depth <= 0 {
		depth = p.OrderBookDepth
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		sigma = p.Sigma0
	}

	tick := utils.TickSize(price)
	spread := math.Max(1.5*tick, p.VolToSpread*sigma*price)

	bestBid := math.Max(utils.Round(price-spread/2), minTick)
	bestAsk := utils.Round(price + spread/2)
	if bestAsk <= bestBid {
		bestAsk = utils.StepTicks(bestBid, utils.TickSize(bestBid), 1)
	}
	gap := math.Max(tick, p.LevelSpacingFactor*spread/float64(depth))

	// Squeeze the bid ladder toward one tick apart so it stays positive
	// while there is room for it.
	bidGap := gap
	if depth > 1 && bestBid-float64(depth-1)*gap < minTick {
		bidGap = math.Max(0, (bestBid-minTick)/float64(depth-1))
	}

	baseSize := 1.5 / math.Max(1.0, sigma*200.0)
	logBase := math.Log(baseSize)

	book := &models.OrderBook{
		Bids: make([]models.Level, 0, depth),
		Asks: make([]models.Level, 0, depth),
	}
	bid, ask := bestBid, bestAsk
	for i := 0; i < depth; i++ {
		decay := math.Exp(-p.DepthDecay * float64(i))
		if i > 0 {
			bid = nextBid(bid, bestBid-float64(i)*bidGap)
			ask = nextAsk(ask, bestAsk+float64(i)*gap)
		}

		book.Bids = append(book.Bids, models.Level{
			Price: bid,
			Size:  math.Max(p.MinLevelSize, s.LogNormal(logBase, p.LevelSizeSigma)*decay),
		})
		book.Asks = append(book.Asks, models.Level{
			Price: ask,
			Size:  math.Max(p.MinLevelSize, s.LogNormal(logBase, p.LevelSizeSigma)*decay),
		})
	}
	return book
}

// nextBid snaps target to its tier and keeps it strictly below prev. A step
// by prev's tick lands on the finer grid below a boundary as well.
func nextBid(prev, target float64) float64 {
	if px := utils.Round(target); px < prev {
		return px
	}
	return utils.StepTicks(prev, utils.TickSize(prev), -1)
}

// nextAsk snaps target to its tier and keeps it strictly above prev.
func nextAsk(prev, target float64) float64 {
	if px := utils.Round(target); px > prev {
		return px
	}
	return utils.StepTicks(prev, utils.TickSize(prev), 1)
}
