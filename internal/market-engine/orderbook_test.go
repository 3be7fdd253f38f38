package marketengine

import (
	"testing"

	"pgregory.net/rapid"

	"market-sim-go/internal/models"
	"market-sim-go/internal/utils"
)

func TestCreateOrderBook_Reference(t *testing.T) {
	p := DefaultParams()
	book := CreateOrderBook(100, 0.004, 6, p, NewSampler(p.DF))

	if len(book.Bids) != 6 || len(book.Asks) != 6 {
		t.Fatalf("expected 6 levels per side, got %d/%d", len(book.Bids), len(book.Asks))
	}
	spread := book.Asks[0].Price - book.Bids[0].Price
	if spread < 0.15-1e-9 {
		t.Errorf("expected spread >= 0.15, got %v", spread)
	}
	checkBook(t, book, 6, p.MinLevelSize)
}

func TestCreateOrderBook_SpreadWidensWithVolatility(t *testing.T) {
	p := DefaultParams()
	s := fixedSampler{}
	calm := CreateOrderBook(1000, 0.001, 6, p, s)
	wild := CreateOrderBook(1000, 0.05, 6, p, s)

	calmSpread := calm.Asks[0].Price - calm.Bids[0].Price
	wildSpread := wild.Asks[0].Price - wild.Bids[0].Price
	if wildSpread <= calmSpread {
		t.Errorf("expected wider spread under volatility: calm=%v wild=%v", calmSpread, wildSpread)
	}
}

func TestCreateOrderBook_DeeperLevelsThinner(t *testing.T) {
	p := DefaultParams()
	book := CreateOrderBook(50, 0.004, 6, p, fixedSampler{})
	for i := 1; i < len(book.Bids); i++ {
		if book.Bids[i].Size > book.Bids[i-1].Size {
			t.Errorf("bid level %d thicker than level %d", i, i-1)
		}
	}
}

func TestCreateOrderBook_Properties(t *testing.T) {
	p := DefaultParams()
	s := NewSampler(p.DF)
	rapid.Check(t, func(t *rapid.T) {
		price := utils.Round(rapid.Float64Range(0.05, 200000).Draw(t, "price"))
		sigma := rapid.Float64Range(1e-6, 0.2).Draw(t, "sigma")
		depth := rapid.IntRange(1, 20).Draw(t, "depth")

		checkBook(t, CreateOrderBook(price, sigma, depth, p, s), depth, p.MinLevelSize)
	})
}

func TestCreateOrderBook_LevelsFollowOwnTier(t *testing.T) {
	p := DefaultParams()
	book := CreateOrderBook(99.99, 0.004, 6, p, fixedSampler{})
	checkBook(t, book, 6, p.MinLevelSize)

	for _, l := range book.Asks {
		if l.Price >= 100 && !utils.IsTickAligned(l.Price, 0.1) {
			t.Errorf("ask %v above 100 is finer than 0.1", l.Price)
		}
	}
	if last := book.Asks[len(book.Asks)-1].Price; last < 100 {
		t.Fatalf("expected the ladder to cross 100, deepest ask %v", last)
	}
}

func TestCreateOrderBook_TierEdges(t *testing.T) {
	p := DefaultParams()
	s := NewSampler(p.DF)
	edges := []float64{1, 10, 100, 1000, 20000}
	rapid.Check(t, func(t *rapid.T) {
		edge := rapid.SampledFrom(edges).Draw(t, "edge")
		fine := utils.TickSize(edge / 2)
		k := rapid.Int64Range(-30, 30).Draw(t, "ticks")
		price := utils.Round(utils.StepTicks(edge, fine, k))
		sigma := rapid.Float64Range(1e-6, 0.05).Draw(t, "sigma")
		depth := rapid.IntRange(1, 20).Draw(t, "depth")

		checkBook(t, CreateOrderBook(price, sigma, depth, p, s), depth, p.MinLevelSize)
	})
}

func TestCreateOrderBook_NearZero(t *testing.T) {
	p := DefaultParams()
	s := NewSampler(p.DF)
	rapid.Check(t, func(t *rapid.T) {
		price := utils.StepTicks(0, minTick, rapid.Int64Range(1, 500).Draw(t, "ticks"))
		sigma := rapid.Float64Range(1e-6, 0.2).Draw(t, "sigma")
		depth := rapid.IntRange(1, 20).Draw(t, "depth")

		checkBook(t, CreateOrderBook(price, sigma, depth, p, s), depth, p.MinLevelSize)
	})
}

func TestCreateOrderBook_FlooredBestBid(t *testing.T) {
	p := DefaultParams()
	book := CreateOrderBook(0.0001, 0.004, 6, p, fixedSampler{})
	checkBook(t, book, 6, p.MinLevelSize)

	if book.Bids[0].Price != 0.0001 {
		t.Fatalf("expected best bid floored at 0.0001, got %v", book.Bids[0].Price)
	}
	// Six strictly descending levels cannot all fit above zero here.
	if last := book.Bids[5].Price; last > 0 {
		t.Fatalf("expected deep bid at or below zero, got %v", last)
	}
}

func TestCreateOrderBook_SqueezesBidsAboveZero(t *testing.T) {
	p := DefaultParams()
	p.LevelSpacingFactor = 100
	book := CreateOrderBook(0.01, 0.004, 6, p, fixedSampler{})
	checkBook(t, book, 6, p.MinLevelSize)

	for i, l := range book.Bids {
		if l.Price < minTick {
			t.Fatalf("bid level %d at %v, expected >= %v", i, l.Price, minTick)
		}
	}
	askGap := book.Asks[1].Price - book.Asks[0].Price
	bidGap := book.Bids[0].Price - book.Bids[1].Price
	if bidGap >= askGap {
		t.Errorf("expected squeezed bid spacing, bid gap %v ask gap %v", bidGap, askGap)
	}
}

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// checkBook asserts the ladder shape and that every level sits on the grid of
// its own tier. Bids must stay positive whenever the best bid leaves ample
// room for depth one-tick levels.
func checkBook(t fataler, book *models.OrderBook, depth int, minSize float64) {
	t.Helper()
	if len(book.Bids) != depth || len(book.Asks) != depth {
		t.Fatalf("expected %d levels per side, got %d/%d", depth, len(book.Bids), len(book.Asks))
	}
	if book.Bids[0].Price >= book.Asks[0].Price {
		t.Fatalf("crossed book: bid %v >= ask %v", book.Bids[0].Price, book.Asks[0].Price)
	}
	if book.Bids[0].Price <= 0 {
		t.Fatalf("best bid %v not positive", book.Bids[0].Price)
	}
	roomy := book.Bids[0].Price >= utils.StepTicks(0, minTick, int64(2*depth))
	for i := range book.Bids {
		bid, ask := book.Bids[i].Price, book.Asks[i].Price
		if i > 0 && book.Bids[i].Price >= book.Bids[i-1].Price {
			t.Fatalf("bids not strictly descending at %d: %v >= %v", i, book.Bids[i].Price, book.Bids[i-1].Price)
		}
		if i > 0 && book.Asks[i].Price <= book.Asks[i-1].Price {
			t.Fatalf("asks not strictly ascending at %d: %v <= %v", i, book.Asks[i].Price, book.Asks[i-1].Price)
		}
		if book.Bids[i].Size < minSize || book.Asks[i].Size < minSize {
			t.Fatalf("level %d below size floor: %v/%v", i, book.Bids[i].Size, book.Asks[i].Size)
		}
		if !utils.IsTickAligned(bid, utils.TickSize(bid)) {
			t.Fatalf("bid level %d at %v off its %v grid", i, bid, utils.TickSize(bid))
		}
		if !utils.IsTickAligned(ask, utils.TickSize(ask)) {
			t.Fatalf("ask level %d at %v off its %v grid", i, ask, utils.TickSize(ask))
		}
		if roomy && bid <= 0 {
			t.Fatalf("bid level %d at %v with best bid %v", i, bid, book.Bids[0].Price)
		}
	}
}
