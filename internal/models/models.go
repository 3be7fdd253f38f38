package models

import (
	"sync"
	"time"
)

// Level is one rung of a synthetic order book ladder.
type Level struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type Trade struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Size      float64   `json:"size"`
	Side      string    `json:"side"`
	Step      uint64    `json:"step"`
	Timestamp time.Time `json:"timestamp"`
}

// InstrumentSeed is an instrument to register at startup, read from a seed
// CSV or the config file.
type InstrumentSeed struct {
	Symbol string  `mapstructure:"symbol"`
	Price  float64 `mapstructure:"price"`
	Volume float64 `mapstructure:"volume"`
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderBook holds bids in descending and asks in ascending price order.
type OrderBook struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// Valid reports whether both sides of the book are present.
func (b *OrderBook) Valid() bool {
	return b != nil && len(b.Bids) > 0 && len(b.Asks) > 0
}

// BestBid returns top-of-book bid.
func (b *OrderBook) BestBid() (Level, bool) {
	if b == nil || len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns top-of-book ask.
func (b *OrderBook) BestAsk() (Level, bool) {
	if b == nil || len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// Depth returns the summed size on each side.
func (b *OrderBook) Depth() (bidVol, askVol float64) {
	if b == nil {
		return 0, 0
	}
	for _, l := range b.Bids {
		bidVol += l.Size
	}
	for _, l := range b.Asks {
		askVol += l.Size
	}
	return bidVol, askVol
}

// Imbalance is the order-flow imbalance (bid-ask)/(bid+ask), with the
// denominator floored at 1 so an empty book reads as neutral.
func (b *OrderBook) Imbalance() float64 {
	bidVol, askVol := b.Depth()
	denom := bidVol + askVol
	if denom < 1 {
		denom = 1
	}
	return (bidVol - askVol) / denom
}

// Microprice weights the touch prices by the opposite side's size.
func (b *OrderBook) Microprice() (float64, bool) {
	bid, bok := b.BestBid()
	ask, aok := b.BestAsk()
	if !bok || !aok {
		return 0, false
	}
	denom := bid.Size + ask.Size
	if denom == 0 {
		denom = 1
	}
	return (ask.Price*bid.Size + bid.Price*ask.Size) / denom, true
}

// Clone returns a deep copy.
func (b *OrderBook) Clone() *OrderBook {
	if b == nil {
		return nil
	}
	return &OrderBook{
		Bids: append([]Level(nil), b.Bids...),
		Asks: append([]Level(nil), b.Asks...),
	}
}

// Instrument is a registered tradable symbol. The tick worker holds Mu while
// it mutates one instrument; readers take Mu.RLock through Snapshot and so see
// either the pre-tick or the post-tick state.
type Instrument struct {
	Mu sync.RWMutex

	Symbol       string
	InitialPrice float64
	Price        float64
	Volume       float64
	History      []float64
	OrderBook    *OrderBook
	UpdatedAt    time.Time
}

// AppendHistory appends p and evicts from the front beyond limit.
// Caller must hold Mu.
func (i *Instrument) AppendHistory(p float64, limit int) {
	i.History = append(i.History, p)
	if limit > 0 && len(i.History) > limit {
		i.History = append(i.History[:0:0], i.History[len(i.History)-limit:]...)
	}
}

// Snapshot is an immutable copy of an Instrument.
type Snapshot struct {
	Symbol       string     `json:"symbol"`
	InitialPrice float64    `json:"initial_price"`
	Price        float64    `json:"price"`
	Volume       float64    `json:"volume"`
	History      []float64  `json:"history"`
	OrderBook    *OrderBook `json:"order_book"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Snapshot copies the instrument under its read lock.
func (i *Instrument) Snapshot() Snapshot {
	i.Mu.RLock()
	defer i.Mu.RUnlock()
	return Snapshot{
		Symbol:       i.Symbol,
		InitialPrice: i.InitialPrice,
		Price:        i.Price,
		Volume:       i.Volume,
		History:      append([]float64(nil), i.History...),
		OrderBook:    i.OrderBook.Clone(),
		UpdatedAt:    i.UpdatedAt,
	}
}

// ChangePct is the move since the initial price, in percent.
func (s Snapshot) ChangePct() float64 {
	if s.InitialPrice == 0 {
		return 0
	}
	return (s.Price - s.InitialPrice) / s.InitialPrice * 100
}

// HighLow scans the retained history window.
func (s Snapshot) HighLow() (high, low float64) {
	if len(s.History) == 0 {
		return s.Price, s.Price
	}
	high, low = s.History[0], s.History[0]
	for _, p := range s.History[1:] {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low
}
