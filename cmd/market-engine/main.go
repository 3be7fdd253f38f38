package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	marketv1 "market-sim-go/gen/go/market/v1"
	"market-sim-go/internal/archive"
	"market-sim-go/internal/config"
	grpcserver "market-sim-go/internal/grpc"
	"market-sim-go/internal/infrastructure/repository"
	"market-sim-go/internal/logging"
	marketengine "market-sim-go/internal/market-engine"
	"market-sim-go/internal/metrics"
	"market-sim-go/internal/models"
)

const shutdownTimeout = 5 * time.Second

var defaultSeeds = []models.InstrumentSeed{
	{Symbol: "BTC", Price: 65000},
	{Symbol: "ETH", Price: 3200},
	{Symbol: "SOL", Price: 145},
	{Symbol: "DOGE", Price: 0.12},
	{Symbol: "USDT", Price: 1},
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("market engine failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	engine, err := marketengine.New(cfg.Engine,
		marketengine.WithLogger(logger.Named("engine")),
		marketengine.WithObserver(m),
	)
	if err != nil {
		return err
	}
	if err := seedInstruments(engine, cfg, logger); err != nil {
		return err
	}

	server := &grpcserver.MarketServer{Engine: engine, Logger: logger.Named("grpc")}

	var archiveOpts []archive.Option
	if cfg.Archive.SQLitePath != "" {
		ticks, err := repository.NewTickArchive(cfg.Archive.SQLitePath)
		if err != nil {
			return err
		}
		defer ticks.Close()
		server.Archive = ticks
		archiveOpts = append(archiveOpts, archive.WithTickSink(ticks))
	}
	if cfg.Archive.SnapshotDir != "" {
		repo, err := repository.NewCsvInstrumentRepository(cfg.Archive.SnapshotDir)
		if err != nil {
			return err
		}
		archiveOpts = append(archiveOpts, archive.WithSnapshots(repo, cfg.Archive.SnapshotInterval))
	}

	var wg sync.WaitGroup
	if len(archiveOpts) > 0 {
		archiver := archive.New(engine, logger.Named("archive"), archiveOpts...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			archiver.Run(ctx)
		}()
	}

	listener, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr, err)
	}

	grpcServer := grpc.NewServer()
	marketv1.RegisterMarketServiceServer(grpcServer, server)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(marketv1.MarketService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", listener.Addr().String()))
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	if err := engine.StartSimulation(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server failed, shutting down", zap.Error(runErr))
	}

	healthServer.Shutdown()
	engine.StopSimulation()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop timed out, closing open streams")
		grpcServer.Stop()
	}

	if metricsServer != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := metricsServer.Shutdown(shutCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
		cancel()
	}

	stop()
	wg.Wait()
	logger.Info("market engine stopped", zap.Uint64("cycles", engine.Cycle()))
	return runErr
}

// seedInstruments registers the CSV seed rows, then the configured list.
// With neither, a small default basket is used.
func seedInstruments(engine *marketengine.MarketEngine, cfg *config.Config, logger *zap.Logger) error {
	var seeds []models.InstrumentSeed
	if cfg.SeedCSV != "" {
		rows, err := (&repository.CsvInstrumentRepository{}).ReadSeedCsv(cfg.SeedCSV)
		if err != nil {
			return err
		}
		seeds = rows
	}
	seeds = append(seeds, cfg.Instruments...)
	if len(seeds) == 0 {
		seeds = defaultSeeds
	}

	for _, s := range seeds {
		snap, err := engine.Registry().Add(s.Symbol, s.Price, s.Volume)
		switch {
		case errors.Is(err, marketengine.ErrInstrumentExists):
			logger.Warn("duplicate seed ignored", zap.String("symbol", s.Symbol))
		case err != nil:
			return fmt.Errorf("seed %s: %w", s.Symbol, err)
		default:
			logger.Debug("instrument registered", zap.String("symbol", snap.Symbol), zap.Float64("price", snap.Price))
		}
	}
	logger.Info("instruments seeded", zap.Strings("symbols", engine.Registry().Symbols()))
	return nil
}
