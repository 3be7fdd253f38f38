package marketengine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"market-sim-go/internal/models"
	"market-sim-go/internal/utils"
)

// cycleInputs are drawn once per cycle and shared by every instrument.
type cycleInputs struct {
	step         uint64
	now          time.Time
	common       float64
	seasonality  float64
	marketFactor float64
}

// tick advances one instrument by one cycle. It holds the instrument lock
// for the whole update and never fails: bad books are rebuilt, the variance
// is floored and the price is floored at one tick.
func (e *MarketEngine) tick(en *entry, in cycleInputs) (Quote, models.Trade) {
	p := e.params
	inst := en.inst

	inst.Mu.Lock()
	defer inst.Mu.Unlock()

	if en.vol == nil {
		en.vol = NewVolatilityState(inst.InitialPrice, p)
	}
	st := en.vol
	if !validPrice(inst.Price) {
		inst.Price = math.Max(inst.InitialPrice, utils.TickSize(inst.InitialPrice))
	}

	rho := math.Max(0, math.Min(1, p.CommonRho))
	eps := math.Sqrt(rho)*in.common + math.Sqrt(1-rho)*e.sampler.StudentT()

	if !inst.OrderBook.Valid() {
		inst.OrderBook = CreateOrderBook(inst.Price, st.Sigma()*in.seasonality, p.OrderBookDepth, p, e.sampler)
	}
	bidVol, askVol := inst.OrderBook.Depth()
	ofi := inst.OrderBook.Imbalance()

	dt := p.DT()
	st.Sentiment = ar1(st.Sentiment, p.SentiPersist, e.sampler.Normal(0, p.SentiShock), p.SentiClip)
	st.FundamentalLog += p.FundDrift*dt + e.sampler.Normal(0, p.FundVol*math.Sqrt(dt))

	logP := math.Log(math.Max(inst.Price, 1e-12))
	meanRev := p.ThetaF * (st.FundamentalLog - logP) * dt
	diffusion := st.Sigma() * math.Sqrt(dt) * in.seasonality * eps

	jump := 0.0
	if e.sampler.Uniform() < p.JumpLambda {
		jump = e.sampler.Normal(p.JumpMu, p.JumpSigma)
	}

	drift := p.BaseDrift*dt + st.Sentiment + in.marketFactor + p.OFIImpact*ofi
	r := drift + meanRev + diffusion + jump
	if math.IsNaN(r) || math.IsInf(r, 0) {
		r = 0
	}

	price := en.gridPrice(math.Exp(logP+r), p)

	size := math.Abs(r) * math.Max(1, price)
	inst.Price = price
	inst.Volume += size
	inst.AppendHistory(price, p.HistoryLimit)
	inst.UpdatedAt = in.now

	st.Update(r, en.stablecoin, p)
	st.LastBidVol, st.LastAskVol = bidVol, askVol
	inst.OrderBook = CreateOrderBook(price, st.Sigma()*in.seasonality, p.OrderBookDepth, p, e.sampler)

	side := models.SideBuy
	if r < 0 {
		side = models.SideSell
	}
	trade := models.Trade{
		ID:        "TRD-" + uuid.NewString(),
		Ticker:    inst.Symbol,
		Price:     price,
		Size:      size,
		Side:      side,
		Step:      in.step,
		Timestamp: in.now,
	}

	q := Quote{
		Symbol:  inst.Symbol,
		Price:   price,
		Volume:  inst.Volume,
		Return:  r,
		BestBid: inst.OrderBook.Bids[0].Price,
		BestAsk: inst.OrderBook.Asks[0].Price,
	}
	q.Microprice, _ = inst.OrderBook.Microprice()
	if inst.InitialPrice > 0 {
		q.ChangePct = (price - inst.InitialPrice) / inst.InitialPrice * 100
	}
	return q, trade
}
