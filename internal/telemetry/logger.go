package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/internal/janitor"
	"github.com/Borislavv/go-ash-netcache/internal/shared/bytes"
)

// Storage reports the current occupancy of both tiers.
type Storage interface {
	MemoryUsage() (entries int, cost int64)
	DiskUsageSync() (int64, error)
}

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	source   Source
	storage  Storage
	janitor  janitor.Janitor
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	source Source,
	storage Storage,
	janitor janitor.Janitor,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	var interval time.Duration
	if cfg.Telemetry.Enabled() {
		interval = cfg.Telemetry.Interval
	}
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		source:   source,
		storage:  storage,
		janitor:  janitor,
		interval: interval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.interval > 0 {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var costLimit = "INF"
	if l.cfg.Memory.TotalCostLimit > 0 {
		costLimit = bytes.FmtMem(uint64(l.cfg.Memory.TotalCostLimit))
	}

	s := newSampler(l.source, l.janitor)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur
			l.log(d, costLimit)
		}
	}
}

func (l *Logs) log(d snapshot, costLimit string) {
	common := []any{"interval", l.interval.String()}

	l.logger.Info("lookups",
		append(common,
			"memory_hits", int64(d.memoryHits),
			"disk_hits", int64(d.diskHits),
			"misses", int64(d.misses),
			"disk_write_failures", int64(d.diskWriteFailures),
		)...,
	)

	if l.cfg.Janitor.Enabled() {
		l.logger.Info("janitor",
			append(common,
				"sweeps", int64(d.sweeps),
				"memory_removed", int64(d.memoryRemoved),
				"disk_expired", int64(d.diskExpired),
				"disk_exceeded", int64(d.diskExceeded),
				"errors", int64(d.sweepErrors),
			)...,
		)
	}

	entries, cost := l.storage.MemoryUsage()
	l.logger.Info("memory",
		append(common,
			"size", bytes.FmtMem(uint64(max(cost, 0))),
			"entries", entries,
			"limit", costLimit,
		)...,
	)

	if l.cfg.Disk.Enabled() {
		var diskLimit = "INF"
		if l.cfg.Disk.SizeLimit > 0 {
			diskLimit = bytes.FmtMem(uint64(l.cfg.Disk.SizeLimit))
		}
		size, err := l.storage.DiskUsageSync()
		if err != nil {
			l.logger.Warn("disk", append(common, "err", err)...)
			return
		}
		l.logger.Info("disk",
			append(common,
				"size", bytes.FmtMem(uint64(max(size, 0))),
				"limit", diskLimit,
			)...,
		)
	}
}
