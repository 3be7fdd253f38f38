package marketengine

import (
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fixedSampler returns mean+sd from Normal, zero shocks and no jumps, so a
// cycle is fully determined by the state it starts from.
type fixedSampler struct{}

func (fixedSampler) StudentT() float64                   { return 0 }
func (fixedSampler) Normal(mu, sd float64) float64       { return mu + sd }
func (fixedSampler) LogNormal(mu, sigma float64) float64 { return math.Exp(mu) }
func (fixedSampler) Uniform() float64                    { return 1 }

type countingObserver struct {
	mu      sync.Mutex
	cycles  []CycleStats
	dropped int
}

func (o *countingObserver) ObserveCycle(s CycleStats) {
	o.mu.Lock()
	o.cycles = append(o.cycles, s)
	o.mu.Unlock()
}

func (o *countingObserver) ObserveDroppedSubscriber() {
	o.mu.Lock()
	o.dropped++
	o.mu.Unlock()
}

func newTestEngine(t *testing.T, opts ...Option) *MarketEngine {
	t.Helper()
	return newTestEngineWithParams(t, DefaultParams(), opts...)
}

func newTestEngineWithParams(t *testing.T, p Params, opts ...Option) *MarketEngine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	engine, err := New(p, opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func mustAdd(t *testing.T, engine *MarketEngine, symbol string, price float64) {
	t.Helper()
	if _, err := engine.Registry().Add(symbol, price, 0); err != nil {
		t.Fatalf("Failed to add %s: %v", symbol, err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
