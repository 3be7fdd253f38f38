package archive

import (
	"context"
	"time"

	"go.uber.org/zap"

	marketengine "market-sim-go/internal/market-engine"
	"market-sim-go/internal/models"
)

const feedBuffer = 1024

// TickSink persists completed cycles.
type TickSink interface {
	SaveCycle(ctx context.Context, ev marketengine.CycleEvent) error
}

// SnapshotSink writes a point-in-time view of every instrument.
type SnapshotSink interface {
	SaveAll(snapshots []models.Snapshot, at time.Time) (string, error)
}

type Option func(*Archiver)

func WithTickSink(s TickSink) Option {
	return func(a *Archiver) { a.ticks = s }
}

// WithSnapshots writes a snapshot every interval and once more on shutdown.
func WithSnapshots(s SnapshotSink, interval time.Duration) Option {
	return func(a *Archiver) {
		a.snapshots = s
		a.interval = interval
	}
}

// Archiver drains the engine feed into the configured sinks.
type Archiver struct {
	engine    *marketengine.MarketEngine
	ticks     TickSink
	snapshots SnapshotSink
	interval  time.Duration
	logger    *zap.Logger
}

func New(engine *marketengine.MarketEngine, logger *zap.Logger, opts ...Option) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Archiver{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run blocks until ctx is cancelled. A subscription dropped by the feed is
// re-established; the cycles missed in between are not archived.
func (a *Archiver) Run(ctx context.Context) {
	feed := a.engine.Feed()
	subID, events := feed.Subscribe(feedBuffer)
	defer func() { feed.Unsubscribe(subID) }()

	var snapC <-chan time.Time
	if a.snapshots != nil && a.interval > 0 {
		t := time.NewTicker(a.interval)
		defer t.Stop()
		snapC = t.C
	}

	a.logger.Info("archiver started",
		zap.Bool("ticks", a.ticks != nil),
		zap.Bool("snapshots", a.snapshots != nil),
		zap.Duration("snapshot_interval", a.interval),
	)

	for {
		select {
		case <-ctx.Done():
			a.drain(events)
			a.snapshot()
			a.logger.Info("archiver stopped")
			return
		case ev, ok := <-events:
			if !ok {
				a.logger.Warn("archiver fell behind the feed, resubscribing", zap.Uint64("cycle", a.engine.Cycle()))
				subID, events = feed.Subscribe(feedBuffer)
				continue
			}
			a.save(ctx, ev)
		case <-snapC:
			a.snapshot()
		}
	}
}

// drain archives whatever is already buffered so a clean shutdown does not
// lose the last cycles.
func (a *Archiver) drain(events <-chan marketengine.CycleEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.save(context.Background(), ev)
		default:
			return
		}
	}
}

func (a *Archiver) save(ctx context.Context, ev marketengine.CycleEvent) {
	if a.ticks == nil {
		return
	}
	if err := a.ticks.SaveCycle(ctx, ev); err != nil {
		a.logger.Error("failed to archive cycle", zap.Uint64("step", ev.Step), zap.Error(err))
	}
}

func (a *Archiver) snapshot() {
	if a.snapshots == nil {
		return
	}
	path, err := a.snapshots.SaveAll(a.engine.Registry().List(), time.Now())
	if err != nil {
		a.logger.Error("failed to write snapshot", zap.Error(err))
		return
	}
	a.logger.Debug("snapshot written", zap.String("path", path))
}
