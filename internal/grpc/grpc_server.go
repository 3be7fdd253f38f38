package grpcserver

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	marketv1 "market-sim-go/gen/go/market/v1"
	"market-sim-go/internal/history"
	marketengine "market-sim-go/internal/market-engine"
	"market-sim-go/internal/models"
)

const (
	timeFormatRFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
	defaultTradeIntervalMs = 100
	streamBuffer           = 256
)

// PriceArchive serves price series persisted outside the in-memory window.
type PriceArchive interface {
	LoadPrices(ctx context.Context, symbol string, limit int) ([]float64, error)
}

type MarketServer struct {
	marketv1.UnimplementedMarketServiceServer
	Engine *marketengine.MarketEngine

	// Archive is optional; without it archived candle requests fail.
	Archive    PriceArchive
	Aggregator *history.Aggregator
	Logger     *zap.Logger
}

func (server *MarketServer) log() *zap.Logger {
	if server.Logger == nil {
		return zap.NewNop()
	}
	return server.Logger
}

func (server *MarketServer) GetTickers(ctx context.Context, req *marketv1.GetTickersRequest) (*marketv1.GetTickersResponse, error) {
	snaps := server.Engine.Registry().List()
	res := make([]*marketv1.TickerData, 0, len(snaps))
	for _, s := range snaps {
		res = append(res, toTickerData(s))
	}
	return &marketv1.GetTickersResponse{Tickers: res}, nil
}

func (server *MarketServer) GetTicker(ctx context.Context, req *marketv1.GetTickerRequest) (*marketv1.GetTickerResponse, error) {
	snap, err := server.Engine.Registry().Get(req.GetSymbol())
	if err != nil {
		return nil, toStatus(err)
	}
	return &marketv1.GetTickerResponse{
		Ticker:    toTickerData(snap),
		OrderBook: toOrderBook(snap.OrderBook),
		History:   snap.History,
	}, nil
}

func (server *MarketServer) AddTicker(ctx context.Context, req *marketv1.AddTickerRequest) (*marketv1.AddTickerResponse, error) {
	snap, err := server.Engine.Registry().Add(req.GetSymbol(), req.GetPrice(), req.GetVolume())
	if err != nil {
		server.log().Warn("[AddTicker] rejected", zap.String("symbol", req.GetSymbol()), zap.Error(err))
		return nil, toStatus(err)
	}
	server.log().Info("[AddTicker] registered", zap.String("symbol", snap.Symbol), zap.Float64("price", snap.Price))
	return &marketv1.AddTickerResponse{Ticker: toTickerData(snap)}, nil
}

func (server *MarketServer) RemoveTicker(ctx context.Context, req *marketv1.RemoveTickerRequest) (*marketv1.RemoveTickerResponse, error) {
	snap, err := server.Engine.Registry().Remove(req.GetSymbol())
	if err != nil {
		return nil, toStatus(err)
	}
	server.log().Info("[RemoveTicker] removed", zap.String("symbol", snap.Symbol))
	return &marketv1.RemoveTickerResponse{Ticker: toTickerData(snap)}, nil
}

func (server *MarketServer) GetCandles(ctx context.Context, req *marketv1.GetCandlesRequest) (*marketv1.GetCandlesResponse, error) {
	symbol := marketengine.NormalizeSymbol(req.GetSymbol())
	limit := int(req.GetLimit())

	var prices []float64
	if req.GetArchived() {
		if server.Archive == nil {
			return nil, status.Error(codes.FailedPrecondition, "tick archive is not configured")
		}
		var err error
		prices, err = server.Archive.LoadPrices(ctx, symbol, limit)
		if err != nil {
			server.log().Error("[GetCandles] archive read failed", zap.String("symbol", symbol), zap.Error(err))
			return nil, status.Error(codes.Internal, "archive read failed")
		}
	} else {
		snap, err := server.Engine.Registry().Get(symbol)
		if err != nil {
			return nil, toStatus(err)
		}
		prices = snap.History
		if limit > 0 && len(prices) > limit {
			prices = prices[len(prices)-limit:]
		}
	}

	var (
		candles []history.Candle
		err     error
	)
	if server.Aggregator != nil {
		candles, err = server.Aggregator.Aggregate(prices, req.GetGranularity())
	} else {
		candles, err = history.Aggregate(prices, req.GetGranularity())
	}
	if err != nil {
		return nil, toStatus(err)
	}

	res := &marketv1.GetCandlesResponse{
		Symbol:      symbol,
		Granularity: req.GetGranularity(),
		Candles:     make([]*marketv1.Candle, 0, len(candles)),
	}
	for _, c := range candles {
		res.Candles = append(res.Candles, &marketv1.Candle{
			StartIndex:    int64(c.StartIndex),
			Open:          c.Open,
			High:          c.High,
			Low:           c.Low,
			Close:         c.Close,
			Count:         int64(c.Count),
			BucketSeconds: c.BucketSeconds,
			Granularity:   c.Granularity,
		})
	}
	return res, nil
}

// StreamTickers pushes a quote for every subscribed symbol after each cycle.
// Each message from the client replaces the subscription set.
func (server *MarketServer) StreamTickers(stream marketv1.MarketService_StreamTickersServer) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	feed := server.Engine.Feed()
	subID, events := feed.Subscribe(streamBuffer)
	defer feed.Unsubscribe(subID)

	var mu sync.RWMutex
	active := make(map[string]bool)
	logger := server.log()

	logger.Info("[StreamTickers] client connected")

	go func() {
		for {
			req, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					cancel()
				}
				logger.Debug("[StreamTickers] client closed send side", zap.Error(err))
				return
			}

			requested := make(map[string]bool)
			for _, s := range req.GetSymbols() {
				sym := marketengine.NormalizeSymbol(s)
				if _, err := server.Engine.Registry().Get(sym); err != nil {
					logger.Info("[StreamTickers] ticker unavailable", zap.String("symbol", sym))
					continue
				}
				requested[sym] = true
			}

			mu.Lock()
			var unsubscribed []string
			for sym := range active {
				if !requested[sym] {
					unsubscribed = append(unsubscribed, sym)
				}
			}
			active = requested
			mu.Unlock()

			if len(unsubscribed) > 0 {
				logger.Info("[StreamTickers] unsubscribing", zap.Strings("symbols", unsubscribed))
			}
			logger.Debug("[StreamTickers] subscription updated", zap.Int("symbols", len(requested)))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[StreamTickers] client disconnected")
			return nil
		case ev, ok := <-events:
			if !ok {
				logger.Warn("[StreamTickers] dropped by market feed")
				return status.Error(codes.ResourceExhausted, "stream fell behind the market feed")
			}
			mu.RLock()
			subscribed := active
			mu.RUnlock()
			if len(subscribed) == 0 {
				continue
			}
			ts := ev.Time.Format(timeFormatRFC3339Milli)
			for _, q := range ev.Quotes {
				if !subscribed[q.Symbol] {
					continue
				}
				update := &marketv1.StreamTickersResponse{
					Step:       ev.Step,
					Symbol:     q.Symbol,
					Price:      q.Price,
					Volume:     q.Volume,
					ChangePct:  q.ChangePct,
					BestBid:    q.BestBid,
					BestAsk:    q.BestAsk,
					Microprice: q.Microprice,
					Timestamp:  ts,
				}
				if err := stream.Send(update); err != nil {
					logger.Warn("[StreamTickers] send failed", zap.Error(err))
					return err
				}
			}
		}
	}
}

// StreamTrades polls the trade tape every interval_ms and sends the latest
// print whenever it changed.
func (server *MarketServer) StreamTrades(req *marketv1.StreamTradesRequest, stream marketv1.MarketService_StreamTradesServer) error {
	intervalMs := req.GetIntervalMs()
	if intervalMs <= 0 {
		intervalMs = defaultTradeIntervalMs
	}

	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	logger := server.log()
	logger.Info("[StreamTrades] client connected", zap.Int32("interval_ms", intervalMs))

	var lastID string
	for {
		select {
		case <-stream.Context().Done():
			logger.Info("[StreamTrades] client disconnected")
			return stream.Context().Err()
		case <-ticker.C:
			latest, ok := server.Engine.LatestTrade()
			if !ok || latest.ID == lastID {
				continue
			}
			lastID = latest.ID

			err := stream.Send(&marketv1.StreamTradesResponse{
				Id:        latest.ID,
				Ticker:    latest.Ticker,
				Price:     latest.Price,
				Size:      latest.Size,
				Side:      latest.Side,
				Step:      latest.Step,
				Timestamp: latest.Timestamp.Format(timeFormatRFC3339Milli),
			})
			if err != nil {
				logger.Warn("[StreamTrades] send failed", zap.Error(err))
				return err
			}
		}
	}
}

func toTickerData(s models.Snapshot) *marketv1.TickerData {
	high, low := s.HighLow()
	td := &marketv1.TickerData{
		Symbol:       s.Symbol,
		Price:        s.Price,
		InitialPrice: s.InitialPrice,
		Volume:       s.Volume,
		ChangePct:    s.ChangePct(),
		High:         high,
		Low:          low,
		UpdatedAt:    s.UpdatedAt.Format(timeFormatRFC3339Milli),
	}
	if bid, ok := s.OrderBook.BestBid(); ok {
		td.BestBid = bid.Price
	}
	if ask, ok := s.OrderBook.BestAsk(); ok {
		td.BestAsk = ask.Price
	}
	td.Microprice, _ = s.OrderBook.Microprice()
	return td
}

func toOrderBook(b *models.OrderBook) *marketv1.OrderBook {
	if b == nil {
		return &marketv1.OrderBook{}
	}
	out := &marketv1.OrderBook{
		Bids: make([]*marketv1.OrderBookLevel, 0, len(b.Bids)),
		Asks: make([]*marketv1.OrderBookLevel, 0, len(b.Asks)),
	}
	for _, l := range b.Bids {
		out.Bids = append(out.Bids, &marketv1.OrderBookLevel{Price: l.Price, Size: l.Size})
	}
	for _, l := range b.Asks {
		out.Asks = append(out.Asks, &marketv1.OrderBookLevel{Price: l.Price, Size: l.Size})
	}
	return out
}

// toStatus maps engine and aggregation errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, marketengine.ErrInstrumentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, marketengine.ErrInstrumentExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, marketengine.ErrInvalidPrice),
		errors.Is(err, marketengine.ErrInvalidSymbol),
		errors.Is(err, history.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, marketengine.ErrEngineStopped):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
