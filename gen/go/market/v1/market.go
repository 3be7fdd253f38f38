package marketv1

type TickerData struct {
	Symbol       string  `json:"symbol"`
	Price        float64 `json:"price"`
	InitialPrice float64 `json:"initial_price"`
	Volume       float64 `json:"volume"`
	ChangePct    float64 `json:"change_pct"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	BestBid      float64 `json:"best_bid"`
	BestAsk      float64 `json:"best_ask"`
	Microprice   float64 `json:"microprice"`
	UpdatedAt    string  `json:"updated_at"`
}

func (x *TickerData) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

func (x *TickerData) GetPrice() float64 {
	if x != nil {
		return x.Price
	}
	return 0
}

type OrderBookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type OrderBook struct {
	Bids []*OrderBookLevel `json:"bids"`
	Asks []*OrderBookLevel `json:"asks"`
}

func (x *OrderBook) GetBids() []*OrderBookLevel {
	if x != nil {
		return x.Bids
	}
	return nil
}

func (x *OrderBook) GetAsks() []*OrderBookLevel {
	if x != nil {
		return x.Asks
	}
	return nil
}

type GetTickersRequest struct{}

type GetTickersResponse struct {
	Tickers []*TickerData `json:"tickers"`
}

func (x *GetTickersResponse) GetTickers() []*TickerData {
	if x != nil {
		return x.Tickers
	}
	return nil
}

type GetTickerRequest struct {
	Symbol string `json:"symbol"`
}

func (x *GetTickerRequest) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

type GetTickerResponse struct {
	Ticker    *TickerData `json:"ticker"`
	OrderBook *OrderBook  `json:"order_book"`
	History   []float64   `json:"history"`
}

func (x *GetTickerResponse) GetTicker() *TickerData {
	if x != nil {
		return x.Ticker
	}
	return nil
}

func (x *GetTickerResponse) GetOrderBook() *OrderBook {
	if x != nil {
		return x.OrderBook
	}
	return nil
}

func (x *GetTickerResponse) GetHistory() []float64 {
	if x != nil {
		return x.History
	}
	return nil
}

type AddTickerRequest struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

func (x *AddTickerRequest) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

func (x *AddTickerRequest) GetPrice() float64 {
	if x != nil {
		return x.Price
	}
	return 0
}

func (x *AddTickerRequest) GetVolume() float64 {
	if x != nil {
		return x.Volume
	}
	return 0
}

type AddTickerResponse struct {
	Ticker *TickerData `json:"ticker"`
}

func (x *AddTickerResponse) GetTicker() *TickerData {
	if x != nil {
		return x.Ticker
	}
	return nil
}

type RemoveTickerRequest struct {
	Symbol string `json:"symbol"`
}

func (x *RemoveTickerRequest) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

type RemoveTickerResponse struct {
	Ticker *TickerData `json:"ticker"`
}

func (x *RemoveTickerResponse) GetTicker() *TickerData {
	if x != nil {
		return x.Ticker
	}
	return nil
}

type Candle struct {
	StartIndex    int64   `json:"start_index"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Count         int64   `json:"count"`
	BucketSeconds int64   `json:"bucket_size_seconds"`
	Granularity   string  `json:"granularity"`
}

type GetCandlesRequest struct {
	Symbol      string `json:"symbol"`
	Granularity string `json:"granularity"`
	// Archived reads the price series from the tick archive instead of
	// the in-memory history window.
	Archived bool  `json:"archived"`
	Limit    int32 `json:"limit"`
}

func (x *GetCandlesRequest) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

func (x *GetCandlesRequest) GetGranularity() string {
	if x != nil {
		return x.Granularity
	}
	return ""
}

func (x *GetCandlesRequest) GetArchived() bool {
	if x != nil {
		return x.Archived
	}
	return false
}

func (x *GetCandlesRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

type GetCandlesResponse struct {
	Symbol      string    `json:"symbol"`
	Granularity string    `json:"granularity"`
	Candles     []*Candle `json:"candles"`
}

func (x *GetCandlesResponse) GetCandles() []*Candle {
	if x != nil {
		return x.Candles
	}
	return nil
}

type StreamTickersRequest struct {
	Symbols []string `json:"symbols"`
}

func (x *StreamTickersRequest) GetSymbols() []string {
	if x != nil {
		return x.Symbols
	}
	return nil
}

type StreamTickersResponse struct {
	Step       uint64  `json:"step"`
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	ChangePct  float64 `json:"change_pct"`
	BestBid    float64 `json:"best_bid"`
	BestAsk    float64 `json:"best_ask"`
	Microprice float64 `json:"microprice"`
	Timestamp  string  `json:"timestamp"`
}

func (x *StreamTickersResponse) GetSymbol() string {
	if x != nil {
		return x.Symbol
	}
	return ""
}

func (x *StreamTickersResponse) GetPrice() float64 {
	if x != nil {
		return x.Price
	}
	return 0
}

type StreamTradesRequest struct {
	IntervalMs int32 `json:"interval_ms"`
}

func (x *StreamTradesRequest) GetIntervalMs() int32 {
	if x != nil {
		return x.IntervalMs
	}
	return 0
}

type StreamTradesResponse struct {
	Id        string  `json:"id"`
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Side      string  `json:"side"`
	Step      uint64  `json:"step"`
	Timestamp string  `json:"timestamp"`
}

func (x *StreamTradesResponse) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}
