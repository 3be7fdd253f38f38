package marketengine

import (
	"sync"

	"market-sim-go/internal/models"
)

// tradeTape keeps the most recent trade prints, oldest evicted first.
type tradeTape struct {
	mu     sync.RWMutex
	trades []models.Trade
	limit  int
}

func newTradeTape(limit int) *tradeTape {
	if limit <= 0 {
		limit = 1000
	}
	return &tradeTape{trades: make([]models.Trade, 0, limit), limit: limit}
}

func (t *tradeTape) append(batch []models.Trade) {
	if len(batch) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	running := append(t.trades, batch...)
	if over := len(running) - t.limit; over > 0 {
		running = append(running[:0:0], running[over:]...)
	}
	t.trades = running
}

func (t *tradeTape) latest() (models.Trade, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.trades) == 0 {
		return models.Trade{}, false
	}
	return t.trades[len(t.trades)-1], true
}

// recent returns up to n prints, newest last.
func (t *tradeTape) recent(n int) []models.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n <= 0 || n > len(t.trades) {
		n = len(t.trades)
	}
	return append([]models.Trade(nil), t.trades[len(t.trades)-n:]...)
}
