package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	marketv1 "market-sim-go/gen/go/market/v1"
)

func main() {
	addr := pflag.StringP("addr", "a", "localhost:50051", "market engine gRPC address")
	mode := pflag.StringP("mode", "m", "tickers", "tickers | book | stream | trades | candles | add | remove")
	symbols := pflag.StringSliceP("symbols", "s", nil, "symbols for book, stream, candles, add and remove")
	price := pflag.Float64("price", 0, "initial price for add")
	granularity := pflag.StringP("granularity", "g", "1m", "candle granularity")
	archived := pflag.Bool("archived", false, "read candles from the tick archive")
	intervalMs := pflag.Int32("interval-ms", 100, "trade polling interval")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	defer conn.Close()
	client := marketv1.NewMarketServiceClient(conn)

	switch *mode {
	case "tickers":
		err = printTickers(ctx, client)
	case "book":
		err = printBooks(ctx, client, *symbols)
	case "stream":
		err = streamTickers(ctx, client, *symbols)
	case "trades":
		err = streamTrades(ctx, client, *intervalMs)
	case "candles":
		err = printCandles(ctx, client, *symbols, *granularity, *archived)
	case "add":
		err = addTickers(ctx, client, *symbols, *price)
	case "remove":
		err = removeTickers(ctx, client, *symbols)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) && status.Code(err) != codes.Canceled {
		log.Fatalf("market-watch: %v", err)
	}
}

func printTickers(ctx context.Context, client marketv1.MarketServiceClient) error {
	res, err := client.GetTickers(ctx, &marketv1.GetTickersRequest{})
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %14s %9s %14s %14s %16s\n", "SYMBOL", "PRICE", "CHG%", "BID", "ASK", "VOLUME")
	for _, t := range res.GetTickers() {
		fmt.Printf("%-10s %14g %8.3f%% %14g %14g %16.4f\n", t.Symbol, t.Price, t.ChangePct, t.BestBid, t.BestAsk, t.Volume)
	}
	return nil
}

func printBooks(ctx context.Context, client marketv1.MarketServiceClient, symbols []string) error {
	for _, sym := range symbols {
		res, err := client.GetTicker(ctx, &marketv1.GetTickerRequest{Symbol: sym})
		if err != nil {
			return err
		}
		fmt.Printf("%s @ %g\n", res.GetTicker().GetSymbol(), res.GetTicker().GetPrice())
		book := res.GetOrderBook()
		for i := len(book.GetAsks()) - 1; i >= 0; i-- {
			fmt.Printf("  ask %14g  %10.4f\n", book.Asks[i].Price, book.Asks[i].Size)
		}
		for _, l := range book.GetBids() {
			fmt.Printf("  bid %14g  %10.4f\n", l.Price, l.Size)
		}
	}
	return nil
}

func streamTickers(ctx context.Context, client marketv1.MarketServiceClient, symbols []string) error {
	stream, err := client.StreamTickers(ctx)
	if err != nil {
		return err
	}
	if err := stream.Send(&marketv1.StreamTickersRequest{Symbols: symbols}); err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s #%d %-8s %14g (%+.3f%%) %g/%g micro %.6g\n",
			msg.Timestamp, msg.Step, msg.Symbol, msg.Price, msg.ChangePct, msg.BestBid, msg.BestAsk, msg.Microprice)
	}
}

func streamTrades(ctx context.Context, client marketv1.MarketServiceClient, intervalMs int32) error {
	stream, err := client.StreamTrades(ctx, &marketv1.StreamTradesRequest{IntervalMs: intervalMs})
	if err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s %-4s %-8s %14g x %.6f  %s\n", msg.Timestamp, msg.Side, msg.Ticker, msg.Price, msg.Size, msg.Id)
	}
}

func printCandles(ctx context.Context, client marketv1.MarketServiceClient, symbols []string, granularity string, archived bool) error {
	for _, sym := range symbols {
		res, err := client.GetCandles(ctx, &marketv1.GetCandlesRequest{Symbol: sym, Granularity: granularity, Archived: archived})
		if err != nil {
			return err
		}
		fmt.Printf("%s %s (%d candles)\n", res.Symbol, res.Granularity, len(res.GetCandles()))
		for _, c := range res.GetCandles() {
			fmt.Printf("  #%-6d O %-12g H %-12g L %-12g C %-12g n=%d\n", c.StartIndex, c.Open, c.High, c.Low, c.Close, c.Count)
		}
	}
	return nil
}

func addTickers(ctx context.Context, client marketv1.MarketServiceClient, symbols []string, price float64) error {
	for _, sym := range symbols {
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		res, err := client.AddTicker(callCtx, &marketv1.AddTickerRequest{Symbol: sym, Price: price})
		cancel()
		if err != nil {
			return fmt.Errorf("add %s: %w", sym, err)
		}
		fmt.Printf("added %s at %g\n", res.GetTicker().GetSymbol(), res.GetTicker().GetPrice())
	}
	return nil
}

func removeTickers(ctx context.Context, client marketv1.MarketServiceClient, symbols []string) error {
	for _, sym := range symbols {
		if _, err := client.RemoveTicker(ctx, &marketv1.RemoveTickerRequest{Symbol: strings.TrimSpace(sym)}); err != nil {
			return fmt.Errorf("remove %s: %w", sym, err)
		}
		fmt.Printf("removed %s\n", strings.ToUpper(strings.TrimSpace(sym)))
	}
	return nil
}
