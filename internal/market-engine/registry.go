package marketengine

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"market-sim-go/internal/models"
	"market-sim-go/internal/utils"
)

type entry struct {
	inst       *models.Instrument
	vol        *VolatilityState
	stablecoin bool
}

// Registry is the symbol → instrument map the tick worker iterates. Adding
// or removing symbols is guarded by the registry lock only; per-tick fields
// are guarded by each instrument's own lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	params  Params
	sampler Sampler
	clock   func() time.Time
}

func newRegistry(p Params, s Sampler, clock func() time.Time) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		params:  p,
		sampler: s,
		clock:   clock,
	}
}

// NormalizeSymbol trims and upper-cases a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

// Add registers a new instrument together with its volatility state. The
// price is snapped to its tick grid and becomes the immutable initial price.
func (r *Registry) Add(symbol string, price, volume float64) (models.Snapshot, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return models.Snapshot{}, fmt.Errorf("add %q: %w", symbol, ErrInvalidSymbol)
	}
	if !validPrice(price) {
		return models.Snapshot{}, fmt.Errorf("add %s at %v: %w", sym, price, ErrInvalidPrice)
	}
	if volume < 0 || math.IsNaN(volume) {
		volume = 0
	}

	px := math.Max(utils.Round(price), utils.TickSize(price))
	inst := &models.Instrument{
		Symbol:       sym,
		InitialPrice: px,
		Price:        px,
		Volume:       volume,
		History:      []float64{px},
		OrderBook:    CreateOrderBook(px, r.params.Sigma0, r.params.OrderBookDepth, r.params, r.sampler),
		UpdatedAt:    r.clock(),
	}
	e := &entry{
		inst:       inst,
		vol:        NewVolatilityState(px, r.params),
		stablecoin: r.params.IsStablecoin(sym),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[sym]; exists {
		return models.Snapshot{}, fmt.Errorf("add %s: %w", sym, ErrInstrumentExists)
	}
	r.entries[sym] = e
	r.order = append(r.order, sym)
	return inst.Snapshot(), nil
}

// Remove drops the instrument and its volatility state.
func (r *Registry) Remove(symbol string) (models.Snapshot, error) {
	sym := NormalizeSymbol(symbol)

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sym]
	if !ok {
		return models.Snapshot{}, fmt.Errorf("remove %s: %w", sym, ErrInstrumentNotFound)
	}
	delete(r.entries, sym)
	for i, s := range r.order {
		if s == sym {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return e.inst.Snapshot(), nil
}

// Get returns a snapshot of one instrument.
func (r *Registry) Get(symbol string) (models.Snapshot, error) {
	e, ok := r.lookup(symbol)
	if !ok {
		return models.Snapshot{}, fmt.Errorf("get %s: %w", NormalizeSymbol(symbol), ErrInstrumentNotFound)
	}
	return e.inst.Snapshot(), nil
}

// List returns snapshots in registration order.
func (r *Registry) List() []models.Snapshot {
	entries := r.entriesSnapshot()
	out := make([]models.Snapshot, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.inst.Snapshot())
	}
	return out
}

// gridPrice snaps raw onto the tick grid, holding stablecoins within
// StablecoinBand of their initial price, and floors it at one tick.
// Callers hold inst.Mu.
func (e *entry) gridPrice(raw float64, p Params) float64 {
	var price float64
	if e.stablecoin {
		band := p.StablecoinBand
		price = utils.ClampToGrid(raw, e.inst.InitialPrice*(1-band), e.inst.InitialPrice*(1+band))
	} else {
		price = utils.Round(raw)
	}
	if tick := utils.TickSize(price); price < tick {
		price = tick
	}
	return price
}

// Symbols returns the registered symbols in registration order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len is the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// SetPrice overrides an instrument's price by hand. The value is snapped to
// the grid, appended to history and the book is rebuilt around it.
// Stablecoins are held to the same band as a tick.
func (r *Registry) SetPrice(symbol string, price float64) (models.Snapshot, error) {
	if !validPrice(price) {
		return models.Snapshot{}, fmt.Errorf("set price %s at %v: %w", NormalizeSymbol(symbol), price, ErrInvalidPrice)
	}
	e, ok := r.lookup(symbol)
	if !ok {
		return models.Snapshot{}, fmt.Errorf("set price %s: %w", NormalizeSymbol(symbol), ErrInstrumentNotFound)
	}

	e.inst.Mu.Lock()
	px := e.gridPrice(price, r.params)
	sigma := r.params.Sigma0
	if e.vol != nil {
		sigma = e.vol.Sigma()
	}
	e.inst.Price = px
	e.inst.AppendHistory(px, r.params.HistoryLimit)
	e.inst.OrderBook = CreateOrderBook(px, sigma, r.params.OrderBookDepth, r.params, r.sampler)
	e.inst.UpdatedAt = r.clock()
	e.inst.Mu.Unlock()

	return e.inst.Snapshot(), nil
}

// Volatility returns a copy of the symbol's hidden state.
func (r *Registry) Volatility(symbol string) (VolatilityState, bool) {
	e, ok := r.lookup(symbol)
	if !ok {
		return VolatilityState{}, false
	}
	e.inst.Mu.RLock()
	defer e.inst.Mu.RUnlock()
	if e.vol == nil {
		return VolatilityState{}, false
	}
	return *e.vol, true
}

func (r *Registry) lookup(symbol string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[NormalizeSymbol(symbol)]
	return e, ok
}

// entriesSnapshot is the stable set the worker iterates for one cycle.
// Symbols added after this call are picked up next cycle.
func (r *Registry) entriesSnapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, r.entries[sym])
	}
	return out
}
