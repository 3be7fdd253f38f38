package marketengine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"market-sim-go/internal/models"
)

// State of the tick worker.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// CycleStats summarises one completed cycle for observers.
type CycleStats struct {
	Step         uint64
	Duration     time.Duration
	Instruments  int
	MarketFactor float64
	Overrun      bool
}

// Observer receives engine telemetry.
type Observer interface {
	ObserveCycle(CycleStats)
	ObserveDroppedSubscriber()
}

type nopObserver struct{}

func (nopObserver) ObserveCycle(CycleStats)   {}
func (nopObserver) ObserveDroppedSubscriber() {}

type Option func(*MarketEngine)

func WithLogger(l *zap.Logger) Option {
	return func(e *MarketEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *MarketEngine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithSampler replaces the random source, mostly for tests.
func WithSampler(s Sampler) Option {
	return func(e *MarketEngine) {
		if s != nil {
			e.sampler = s
		}
	}
}

// WithClock replaces the timestamp source of ticks and trade prints.
func WithClock(clock func() time.Time) Option {
	return func(e *MarketEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// MarketEngine owns all simulation state: the registry, the shared market
// factor, the cycle counter and the trade tape. A single worker executes
// cycles; it is the only writer of per-tick fields.
type MarketEngine struct {
	params   Params
	registry *Registry
	sampler  Sampler
	logger   *zap.Logger
	observer Observer
	clock    func() time.Time

	feed *Feed
	tape *tradeTape

	// cycleMu serialises cycles between the worker and Step callers.
	cycleMu      sync.Mutex
	marketFactor float64
	step         atomic.Uint64
	factorBits   atomic.Uint64

	stateMu sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds an engine with its own empty registry.
func New(params Params, opts ...Option) (*MarketEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine params: %w", err)
	}
	engine := &MarketEngine{
		params:   params,
		logger:   zap.NewNop(),
		observer: nopObserver{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.sampler == nil {
		engine.sampler = NewSampler(params.DF)
	}
	engine.registry = newRegistry(params, engine.sampler, engine.clock)
	engine.feed = newFeed(engine.logger, engine.observer)
	engine.tape = newTradeTape(params.TradeTapeSize)
	return engine, nil
}

// Registry is the registration surface for adding and removing symbols.
func (engine *MarketEngine) Registry() *Registry { return engine.registry }

// Feed is the per-cycle event fan-out.
func (engine *MarketEngine) Feed() *Feed { return engine.feed }

func (engine *MarketEngine) Params() Params { return engine.params }

// Cycle is the number of completed cycles.
func (engine *MarketEngine) Cycle() uint64 { return engine.step.Load() }

// MarketFactor is the shared sentiment value after the last cycle.
func (engine *MarketEngine) MarketFactor() float64 {
	return math.Float64frombits(engine.factorBits.Load())
}

func (engine *MarketEngine) State() State {
	engine.stateMu.Lock()
	defer engine.stateMu.Unlock()
	return engine.state
}

// CreateOrderBook synthesizes a book with the engine's calibration.
func (engine *MarketEngine) CreateOrderBook(price, sigma float64, depth int) *models.OrderBook {
	return CreateOrderBook(price, sigma, depth, engine.params, engine.sampler)
}

// LatestTrade returns the most recent trade print.
func (engine *MarketEngine) LatestTrade() (models.Trade, bool) { return engine.tape.latest() }

// RecentTrades returns up to n prints, newest last. n <= 0 returns all.
func (engine *MarketEngine) RecentTrades(n int) []models.Trade { return engine.tape.recent(n) }

// Step runs exactly one cycle synchronously.
func (engine *MarketEngine) Step() (CycleEvent, error) {
	if engine.State() == StateStopped {
		return CycleEvent{}, ErrEngineStopped
	}
	return engine.runCycle(), nil
}

// runCycle draws the shared shock and seasonality, advances the market
// factor once, then updates every instrument sequentially so all of them
// see the same factor and shock.
func (engine *MarketEngine) runCycle() CycleEvent {
	engine.cycleMu.Lock()
	defer engine.cycleMu.Unlock()

	start := time.Now()
	p := engine.params
	step := engine.step.Load()

	engine.marketFactor = ar1(engine.marketFactor, p.MarketSentiPersist,
		engine.sampler.Normal(0, p.MarketSentiShock), p.SentiClip)

	in := cycleInputs{
		step:         step,
		now:          engine.clock(),
		common:       engine.sampler.StudentT(),
		seasonality:  Seasonality(step, p.Interval, p.SeasonalAmp),
		marketFactor: engine.marketFactor,
	}

	entries := engine.registry.entriesSnapshot()
	ev := CycleEvent{
		Step:         step,
		Time:         in.now,
		Seasonality:  in.seasonality,
		MarketFactor: in.marketFactor,
		Quotes:       make([]Quote, 0, len(entries)),
		Trades:       make([]models.Trade, 0, len(entries)),
	}
	for _, en := range entries {
		q, trade := engine.tick(en, in)
		ev.Quotes = append(ev.Quotes, q)
		ev.Trades = append(ev.Trades, trade)
	}

	engine.factorBits.Store(math.Float64bits(engine.marketFactor))
	engine.step.Add(1)
	engine.tape.append(ev.Trades)

	elapsed := time.Since(start)
	engine.observer.ObserveCycle(CycleStats{
		Step:         step,
		Duration:     elapsed,
		Instruments:  len(entries),
		MarketFactor: in.marketFactor,
		Overrun:      elapsed > p.Interval,
	})
	engine.feed.publish(ev)
	return ev
}

// StartSimulation launches the tick worker. It is a no-op when already
// running and fails once the engine has been stopped.
func (engine *MarketEngine) StartSimulation(ctx context.Context) error {
	engine.stateMu.Lock()
	defer engine.stateMu.Unlock()

	switch engine.state {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrEngineStopped
	}

	runCtx, cancel := context.WithCancel(ctx)
	engine.cancel = cancel
	engine.done = make(chan struct{})
	engine.state = StateRunning

	engine.logger.Info("market simulation starting",
		zap.Duration("interval", engine.params.Interval),
		zap.String("cadence", string(engine.params.Cadence)),
		zap.Int("instruments", engine.registry.Len()),
	)
	go engine.run(runCtx, engine.done)
	return nil
}

// StopSimulation signals the worker and waits for the cycle in flight to
// finish. STOPPED is terminal.
func (engine *MarketEngine) StopSimulation() {
	engine.stateMu.Lock()
	cancel, done := engine.cancel, engine.done
	wasRunning := engine.state == StateRunning
	engine.state = StateStopped
	engine.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if wasRunning {
		engine.logger.Info("market simulation stopped", zap.Uint64("cycles", engine.Cycle()))
	}
}

func (engine *MarketEngine) run(ctx context.Context, done chan<- struct{}) {
	defer func() {
		engine.stateMu.Lock()
		engine.state = StateStopped
		engine.stateMu.Unlock()
		close(done)
	}()

	interval := engine.params.Interval
	timer := time.NewTimer(0)
	defer timer.Stop()
	next := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		engine.runCycle()

		wait := interval
		if engine.params.Cadence == CadenceFixedRate {
			next = next.Add(interval)
			wait = time.Until(next)
			if wait < 0 {
				engine.logger.Debug("cycle overran its slot", zap.Duration("behind", -wait))
				next = time.Now()
				wait = 0
			}
		}
		timer.Reset(wait)
	}
}
