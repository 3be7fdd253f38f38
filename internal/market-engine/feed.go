package marketengine

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"market-sim-go/internal/models"
)

const defaultListenerBuf = 64

// Quote is one instrument's state at the end of a cycle.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Return    float64 `json:"return"`
	ChangePct float64 `json:"change_pct"`
	BestBid   float64 `json:"best_bid"`
	BestAsk   float64 `json:"best_ask"`
	// Microprice is the size-weighted touch of the book emitted with the quote.
	Microprice float64 `json:"microprice"`
}

// CycleEvent is published once per completed cycle.
type CycleEvent struct {
	Step         uint64         `json:"step"`
	Time         time.Time      `json:"time"`
	Seasonality  float64        `json:"seasonality"`
	MarketFactor float64        `json:"market_factor"`
	Quotes       []Quote        `json:"quotes"`
	Trades       []models.Trade `json:"trades"`
}

// Feed fans completed cycles out to subscribers. Slow subscribers are
// dropped rather than allowed to stall the tick worker.
type Feed struct {
	mu          sync.RWMutex
	subscribers map[int64]chan CycleEvent
	nextSubID   int64

	logger   *zap.Logger
	observer Observer
}

func newFeed(logger *zap.Logger, observer Observer) *Feed {
	return &Feed{
		subscribers: make(map[int64]chan CycleEvent),
		logger:      logger,
		observer:    observer,
	}
}

// Subscribe registers a buffered channel that receives cycle events.
func (f *Feed) Subscribe(buffer int) (int64, <-chan CycleEvent) {
	if buffer <= 0 {
		buffer = defaultListenerBuf
	}
	ch := make(chan CycleEvent, buffer)
	id := atomic.AddInt64(&f.nextSubID, 1)

	f.mu.Lock()
	f.subscribers[id] = ch
	f.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener. Unknown ids are ignored.
func (f *Feed) Unsubscribe(id int64) {
	f.mu.Lock()
	ch, ok := f.subscribers[id]
	if ok {
		delete(f.subscribers, id)
		close(ch)
	}
	f.mu.Unlock()
}

// Subscribers is the number of live listeners.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *Feed) publish(ev CycleEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subscribers {
		select {
		case ch <- ev:
		default:
			f.logger.Warn("dropping slow feed subscriber", zap.Int64("subscriber", id), zap.Uint64("step", ev.Step))
			close(ch)
			delete(f.subscribers, id)
			f.observer.ObserveDroppedSubscriber()
		}
	}
}
