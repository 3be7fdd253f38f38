package marketengine

import (
	"errors"
	"math"
	"testing"
)

func TestRegistry_AddNormalizesAndSeeds(t *testing.T) {
	engine := newTestEngine(t)
	snap, err := engine.Registry().Add("  btc ", 65000.3, 12)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if snap.Symbol != "BTC" {
		t.Errorf("expected BTC, got %q", snap.Symbol)
	}
	if snap.Price != 65000 || snap.InitialPrice != 65000 {
		t.Errorf("expected price snapped to 65000, got %v/%v", snap.Price, snap.InitialPrice)
	}
	if snap.Volume != 12 {
		t.Errorf("expected volume 12, got %v", snap.Volume)
	}
	if len(snap.History) != 1 || snap.History[0] != 65000 {
		t.Errorf("expected history [65000], got %v", snap.History)
	}
	if !snap.OrderBook.Valid() {
		t.Error("expected seeded order book")
	}
	if _, ok := engine.Registry().Volatility("btc"); !ok {
		t.Error("expected paired volatility state")
	}
}

func TestRegistry_AddRejects(t *testing.T) {
	engine := newTestEngine(t)
	mustAdd(t, engine, "ETH", 3000)

	if _, err := engine.Registry().Add("eth", 3100, 0); !errors.Is(err, ErrInstrumentExists) {
		t.Errorf("expected ErrInstrumentExists, got %v", err)
	}
	if _, err := engine.Registry().Add("   ", 1, 0); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
	for _, px := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := engine.Registry().Add("BAD", px, 0); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("price %v: expected ErrInvalidPrice, got %v", px, err)
		}
	}
}

func TestRegistry_RemoveDropsState(t *testing.T) {
	engine := newTestEngine(t)
	mustAdd(t, engine, "A", 1)
	mustAdd(t, engine, "B", 2)
	mustAdd(t, engine, "C", 3)

	if _, err := engine.Registry().Remove("b"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := engine.Registry().Volatility("B"); ok {
		t.Error("volatility state left behind after removal")
	}
	if got := engine.Registry().Symbols(); len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Errorf("expected [A C], got %v", got)
	}
	if _, err := engine.Registry().Remove("B"); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}
	if _, err := engine.Registry().Get("B"); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}

	if _, err := engine.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if ev, _ := engine.Step(); len(ev.Quotes) != 2 {
		t.Errorf("expected 2 quotes after removal, got %d", len(ev.Quotes))
	}
}

func TestRegistry_SetPrice(t *testing.T) {
	engine := newTestEngine(t)
	mustAdd(t, engine, "SOL", 150)

	snap, err := engine.Registry().SetPrice("sol", 151.234)
	if err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if snap.Price != 151.2 {
		t.Errorf("expected 151.2, got %v", snap.Price)
	}
	if snap.InitialPrice != 150 {
		t.Errorf("initial price must not change, got %v", snap.InitialPrice)
	}
	if len(snap.History) != 2 || snap.History[1] != 151.2 {
		t.Errorf("expected history [150 151.2], got %v", snap.History)
	}
	if _, err := engine.Registry().SetPrice("NOPE", 1); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}
	if _, err := engine.Registry().SetPrice("SOL", -3); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestRegistry_SetPriceHoldsStablecoinBand(t *testing.T) {
	engine := newTestEngine(t)
	mustAdd(t, engine, "USDT", 1.0)
	band := engine.Params().StablecoinBand
	lo, hi := 1.0*(1-band), 1.0*(1+band)

	for _, px := range []float64{5, 0.2} {
		snap, err := engine.Registry().SetPrice("usdt", px)
		if err != nil {
			t.Fatalf("SetPrice failed: %v", err)
		}
		if snap.Price < lo || snap.Price > hi {
			t.Fatalf("override %v left band [%v, %v]: %v", px, lo, hi, snap.Price)
		}
		if last := snap.History[len(snap.History)-1]; last != snap.Price {
			t.Errorf("history recorded %v, price is %v", last, snap.Price)
		}
		if bid, ok := snap.OrderBook.BestBid(); !ok || bid.Price >= snap.Price {
			t.Errorf("book not rebuilt around %v, best bid %v", snap.Price, bid.Price)
		}
	}

	ev, err := engine.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	q := ev.Quotes[0]
	if q.Price < lo || q.Price > hi {
		t.Fatalf("tick after override left band: %v", q.Price)
	}
}

func TestRegistry_ListInRegistrationOrder(t *testing.T) {
	engine := newTestEngine(t)
	for _, s := range []string{"Z", "A", "M"} {
		mustAdd(t, engine, s, 10)
	}
	list := engine.Registry().List()
	if len(list) != 3 || list[0].Symbol != "Z" || list[1].Symbol != "A" || list[2].Symbol != "M" {
		t.Errorf("unexpected order %v", list)
	}
}
