package janitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/internal/shared/rate"
)

// Sweeper is the cache side of the janitor.
type Sweeper interface {
	// SweepMemory removes expired memory entries and returns how many.
	SweepMemory() int
	// SweepDisk removes expired and then size-exceeding files and blocks until done.
	SweepDisk(ctx context.Context) (expired, exceeded int, err error)
}

type Janitor interface {
	JanitorMetrics() (sweeps, memoryRemoved, diskExpired, diskExceeded, errors int64)
	Close() error
}

// Worker sweeps memory every memoryInterval and runs a full sweep every cfg.Interval.
// The first full sweep happens on start.
type Worker struct {
	ctx            context.Context
	cancel         context.CancelFunc
	cfg            *config.JanitorCfg
	memoryInterval time.Duration
	sweeper        Sweeper
	logger         *slog.Logger
	counters       *janitorCounters
	wg             sync.WaitGroup
}

func New(
	ctx context.Context,
	cfg *config.JanitorCfg,
	memoryInterval time.Duration,
	logger *slog.Logger,
	sweeper Sweeper,
) Janitor {
	if !cfg.Enabled() {
		return &NoOpJanitor{}
	}
	if memoryInterval <= 0 || memoryInterval > cfg.Interval {
		memoryInterval = cfg.Interval
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&Worker{
		ctx:            ctx,
		cancel:         cancel,
		cfg:            cfg,
		memoryInterval: memoryInterval,
		sweeper:        sweeper,
		logger:         logger,
		counters:       newJanitorCounters(),
	}).run()
}

func (w *Worker) JanitorMetrics() (sweeps, memoryRemoved, diskExpired, diskExceeded, errors int64) {
	return w.counters.snapshot()
}

// Close stops the worker and waits for a running sweep to return.
func (w *Worker) Close() error {
	w.cancel()
	w.wg.Wait()
	return nil
}

func (w *Worker) run() *Worker {
	w.logger.Info("janitor is running",
		"interval", w.cfg.Interval.String(),
		"memory_interval", w.memoryInterval.String(),
	)

	w.wg.Go(w.full)
	if w.memoryInterval < w.cfg.Interval {
		w.wg.Go(w.memory)
	}
	go func() {
		<-w.ctx.Done()
		w.wg.Wait()
		w.logger.Info("janitor is stopped")
	}()

	return w
}

func (w *Worker) full() {
	every := rate.NewEvery(w.ctx, w.cfg.Interval)
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-every.Chan():
			if !ok || w.ctx.Err() != nil {
				return
			}
			w.sweepMemory()
			w.sweepDisk()
			w.counters.sweeps.Add(1)
		}
	}
}

func (w *Worker) memory() {
	every := rate.NewEvery(w.ctx, w.memoryInterval)
	<-every.Chan() // the full sweep covers start
	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-every.Chan():
			if !ok || w.ctx.Err() != nil {
				return
			}
			w.sweepMemory()
		}
	}
}

func (w *Worker) sweepMemory() {
	if n := w.sweeper.SweepMemory(); n > 0 {
		w.counters.memoryRemoved.Add(int64(n))
	}
}

func (w *Worker) sweepDisk() {
	expired, exceeded, err := w.sweeper.SweepDisk(w.ctx)
	w.counters.diskExpired.Add(int64(expired))
	w.counters.diskExceeded.Add(int64(exceeded))
	if err != nil {
		w.counters.errors.Add(1)
		if w.ctx.Err() == nil {
			w.logger.Error("janitor disk sweep failed", "err", err)
		}
	}
}
