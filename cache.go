// Package netcache is a two-tier HTTP response cache: a bounded memory store in front of
// a persistent disk store. Memory operations are synchronous and never fail. Disk
// operations run in submission order on one serial I/O context per Cache and report
// through completion callbacks.
package netcache

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/internal/disk"
	"github.com/Borislavv/go-ash-netcache/internal/janitor"
	"github.com/Borislavv/go-ash-netcache/internal/memory"
	"github.com/Borislavv/go-ash-netcache/internal/shared/serial"
	"github.com/Borislavv/go-ash-netcache/internal/telemetry"
	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Source tells which tier served a lookup.
type Source uint8

const (
	SourceNone Source = iota
	SourceMemory
	SourceDisk
)

func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceDisk:
		return "disk"
	default:
		return "none"
	}
}

type Result struct {
	Source   Source
	Response *model.Response
}

type dependencies struct {
	clock      clock.Clock
	signals    SignalSource
	diskLogger *zerolog.Logger
}

// Dependency replaces a collaborator of the cache.
type Dependency func(*dependencies)

func WithClock(c clock.Clock) Dependency {
	return func(d *dependencies) { d.clock = c }
}

// WithSignals subscribes the cache to host lifecycle signals until Close.
func WithSignals(s SignalSource) Dependency {
	return func(d *dependencies) { d.signals = s }
}

func WithDiskLogger(l zerolog.Logger) Dependency {
	return func(d *dependencies) { d.diskLogger = &l }
}

type Cache struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Cache
	logger *slog.Logger
	clock  clock.Clock

	memory *memory.Store[*model.Response]
	disk   *disk.Store // nil when the disk tier is disabled
	io     *serial.Executor

	counters  *cacheCounters
	janitor   janitor.Janitor
	telemetry telemetry.Logger

	unsubscribe func()

	mu       sync.Mutex
	cleaned  map[uint64]func(removed []string)
	nextSub  uint64
	closeOne sync.Once
}

// New builds a cache. A disk directory that cannot be created is reported here.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger, deps ...Dependency) (*Cache, error) {
	return newCache(ctx, cfg, logger, false, deps...)
}

func newCache(ctx context.Context, cfg *config.Cache, logger *slog.Logger, bestEffort bool, deps ...Dependency) (*Cache, error) {
	if cfg == nil {
		cfg = &config.Cache{}
	}
	cfg.AdjustConfig()
	if logger == nil {
		logger = slog.Default()
	}

	d := dependencies{clock: clock.New()}
	for _, dep := range deps {
		dep(&d)
	}

	var store *disk.Store
	if cfg.Disk.Enabled() {
		if bestEffort {
			store = disk.NewBestEffort(cfg.Disk, d.clock, d.diskLogger)
		} else {
			var err error
			if store, err = disk.New(cfg.Disk, d.clock, d.diskLogger); err != nil {
				return nil, err
			}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Cache{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		clock:    d.clock,
		memory:   memory.New[*model.Response](cfg.Memory, d.clock),
		disk:     store,
		io:       serial.New(),
		counters: newCacheCounters(),
		cleaned:  make(map[uint64]func(removed []string)),
	}

	c.janitor = janitor.New(ctx, cfg.Janitor, cfg.Memory.CleanInterval, logger, c)
	c.telemetry = telemetry.New(ctx, cfg, logger, c, c, c.janitor)
	if d.signals != nil {
		c.unsubscribe = d.signals.Subscribe(c.onSignal)
	}

	return c, nil
}

// Close unsubscribes from signals, stops background workers and drains pending disk tasks.
func (c *Cache) Close() error {
	c.closeOne.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		_ = c.janitor.Close()
		_ = c.telemetry.Close()
		c.cancel()
		c.io.Close()
		if c.disk != nil {
			c.disk.Close()
		}
	})
	return nil
}

func (c *Cache) Namespace() string { return c.cfg.Namespace }

// DiskEnabled reports whether a usable disk tier exists.
func (c *Cache) DiskEnabled() bool { return c.disk != nil && c.disk.Ready() }

// Now is the instant expiration windows are judged against.
func (c *Cache) Now() time.Time { return c.clock.Now() }

// Store writes resp to memory and, if toDisk, schedules its serialization and disk write.
// A memory expiration already elapsed skips memory and drops the stale memory entry.
// done, if not nil, is called once the write finished; for memory-only stores, right away.
func (c *Cache) Store(resp *model.Response, key string, opts Options, toDisk bool, done func(error)) {
	c.memory.Put(key, resp, resp.Cost(), opts.MemoryExpiration)
	if !toDisk {
		complete(done, nil)
		return
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer = model.EnvelopeSerializer{}
	}
	c.onDisk(key, done, func() error {
		err := c.storeOnDisk(resp, key, serializer, opts.DiskExpiration)
		if err != nil {
			c.counters.diskWriteFailures.Add(1)
		}
		return err
	})
}

func (c *Cache) storeOnDisk(resp *model.Response, key string, serializer model.Serializer, exp *model.StorageExpiration) error {
	if c.disk == nil {
		return model.NewError(model.ErrDiskStorageNotReady, key, "", nil)
	}
	data, err := serializer.Serialize(resp)
	if err != nil {
		return model.NewError(model.ErrCannotConvertToData, key, "", err)
	}
	if len(data) == 0 {
		return model.NewError(model.ErrCannotSerializeResponse, key, "", nil)
	}
	return c.disk.Store(key, data, exp)
}

// Retrieve looks up memory, then disk. A disk hit is promoted into memory before done runs.
// A miss is reported as SourceNone with ErrResponseNotExisting.
func (c *Cache) Retrieve(key string, opts Options, done func(Result, error)) {
	if resp, ok := c.memory.Get(key, opts.MemoryAccessExtending); ok {
		c.counters.memoryHits.Add(1)
		done(Result{Source: SourceMemory, Response: resp}, nil)
		return
	}
	if opts.FromMemoryOnly {
		c.counters.misses.Add(1)
		done(Result{Source: SourceNone}, notExisting(key))
		return
	}

	c.loadFromDisk(key, opts, func(resp *model.Response, err error) {
		if err != nil {
			done(Result{Source: SourceNone}, err)
			return
		}
		c.memory.Put(key, resp, resp.Cost(), opts.MemoryExpiration)
		done(Result{Source: SourceDisk, Response: resp}, nil)
	})
}

// RetrieveInMemory is safe from any goroutine. A miss returns nil.
func (c *Cache) RetrieveInMemory(key string, opts Options) *model.Response {
	resp, ok := c.memory.Get(key, opts.MemoryAccessExtending)
	if !ok {
		c.counters.misses.Add(1)
		return nil
	}
	c.counters.memoryHits.Add(1)
	return resp
}

// RetrieveInDisk reads disk only, without promotion. A miss is ErrResponseNotExisting.
func (c *Cache) RetrieveInDisk(key string, opts Options, done func(*model.Response, error)) {
	c.loadFromDisk(key, opts, done)
}

func (c *Cache) loadFromDisk(key string, opts Options, done func(*model.Response, error)) {
	load := func() {
		resp, err := c.readDisk(key, opts)
		switch {
		case err != nil:
		case resp == nil:
			c.counters.misses.Add(1)
			err = notExisting(key)
		default:
			c.counters.diskHits.Add(1)
		}
		done(resp, err)
	}

	if opts.SynchronousDiskLoad {
		load()
		return
	}
	if !c.io.Go(load) {
		done(nil, model.NewError(model.ErrDiskStorageNotReady, key, "", nil))
	}
}

// readDisk returns nil without error on a miss. Without a disk tier everything is a miss.
func (c *Cache) readDisk(key string, opts Options) (*model.Response, error) {
	if c.disk == nil {
		return nil, nil
	}
	data, err := c.disk.Value(key, opts.diskExtending())
	if err != nil || data == nil {
		return nil, err
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer = model.EnvelopeSerializer{}
	}
	resp, err := serializer.Deserialize(200, data, nil, nil)
	if err != nil {
		return nil, model.NewError(model.ErrCannotConvertToData, key, c.disk.Path(key), err)
	}
	return resp, nil
}

func (c *Cache) Remove(key string, fromMemory, fromDisk bool, done func(error)) {
	if fromMemory {
		c.memory.Remove(key)
	}
	if !fromDisk || c.disk == nil {
		complete(done, nil)
		return
	}
	c.onDisk(key, done, func() error { return c.disk.Remove(key) })
}

func (c *Cache) ClearMemory() {
	c.memory.RemoveAll()
}

func (c *Cache) ClearDisk(done func(error)) {
	if c.disk == nil {
		complete(done, nil)
		return
	}
	c.onDisk("", done, func() error { return c.disk.RemoveAll(false) })
}

func (c *Cache) ClearAll(done func(error)) {
	c.ClearMemory()
	c.ClearDisk(done)
}

// CleanExpired sweeps memory synchronously, then disk on the I/O context.
// Removed disk files are announced to OnDiskCleaned subscribers.
func (c *Cache) CleanExpired(done func(error)) {
	c.memory.RemoveExpired()
	c.CleanExpiredDisk(done)
}

// CleanExpiredDisk removes expired files, then least recently accessed ones over the size limit.
func (c *Cache) CleanExpiredDisk(done func(error)) {
	if c.disk == nil {
		complete(done, nil)
		return
	}
	c.onDisk("", done, func() error {
		_, _, err := c.sweepDisk()
		return err
	})
}

// sweepDisk runs on the I/O context.
func (c *Cache) sweepDisk() (expired, exceeded int, err error) {
	byExpiration, expErr := c.disk.RemoveExpiredValues(c.clock.Now())
	bySize, sizeErr := c.disk.RemoveSizeExceededValues()

	removed := append(byExpiration, bySize...)
	if len(removed) > 0 {
		c.notifyCleaned(removed)
	}
	return len(byExpiration), len(bySize), errors.Join(expErr, sizeErr)
}

// SweepDisk runs the disk sweep on the I/O context and waits for it or for ctx.
func (c *Cache) SweepDisk(ctx context.Context) (expired, exceeded int, err error) {
	if c.disk == nil {
		return 0, 0, nil
	}
	type result struct {
		expired, exceeded int
		err               error
	}
	ch := make(chan result, 1)
	if !c.io.Go(func() {
		e, x, err := c.sweepDisk()
		ch <- result{e, x, err}
	}) {
		return 0, 0, model.NewError(model.ErrDiskStorageNotReady, "", c.disk.Dir(), nil)
	}

	select {
	case r := <-ch:
		return r.expired, r.exceeded, r.err
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

// SweepMemory removes expired memory entries.
func (c *Cache) SweepMemory() int {
	return len(c.memory.RemoveExpired())
}

// OnDiskCleaned registers fn for the names of files removed by disk sweeps.
// fn runs on the I/O context.
func (c *Cache) OnDiskCleaned(fn func(removed []string)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.cleaned[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.cleaned, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notifyCleaned(removed []string) {
	c.mu.Lock()
	subs := make([]func([]string), 0, len(c.cleaned))
	for _, fn := range c.cleaned {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.logger.Info("disk cache cleaned", "removed", len(removed))
	for _, fn := range subs {
		fn(removed)
	}
}

// CachedType reports the fastest tier holding a valid entry for key.
func (c *Cache) CachedType(key string) Source {
	if c.memory.IsCached(key) {
		return SourceMemory
	}
	if c.disk != nil && c.disk.IsCached(key, c.clock.Now()) {
		return SourceDisk
	}
	return SourceNone
}

func (c *Cache) IsCached(key string) bool {
	return c.CachedType(key) != SourceNone
}

// Hash is the name of the file that holds key on disk.
func (c *Cache) Hash(key string) string {
	if c.disk == nil {
		return model.HashString(key)
	}
	return filepath.Base(c.disk.Path(key))
}

// DiskPath is the file that holds key, or "" when the disk tier is disabled.
func (c *Cache) DiskPath(key string) string {
	if c.disk == nil {
		return ""
	}
	return c.disk.Path(key)
}

// DiskUsage reports the total size of the disk tier from the I/O context.
func (c *Cache) DiskUsage(done func(int64, error)) {
	if c.disk == nil {
		done(0, nil)
		return
	}
	if !c.io.Go(func() { done(c.disk.TotalSize()) }) {
		done(0, model.NewError(model.ErrDiskStorageNotReady, "", c.disk.Dir(), nil))
	}
}

// DiskUsageSync is DiskUsage waiting for its result.
func (c *Cache) DiskUsageSync() (int64, error) {
	type result struct {
		size int64
		err  error
	}
	ch := make(chan result, 1)
	c.DiskUsage(func(size int64, err error) { ch <- result{size, err} })
	r := <-ch
	return r.size, r.err
}

func (c *Cache) MemoryUsage() (entries int, cost int64) {
	return c.memory.Len(), c.memory.Cost()
}

func (c *Cache) CacheMetrics() (memoryHits, diskHits, misses, diskWriteFailures int64) {
	return c.counters.snapshot()
}

// Flush waits for every disk task submitted so far, metadata updates included.
func (c *Cache) Flush() {
	c.io.Barrier()
	if c.disk != nil {
		c.disk.Flush()
	}
}

// onDisk runs task on the I/O context and reports its error to done.
func (c *Cache) onDisk(key string, done func(error), task func() error) {
	if !c.io.Go(func() { complete(done, task()) }) {
		complete(done, model.NewError(model.ErrDiskStorageNotReady, key, "", nil))
	}
}

func complete(done func(error), err error) {
	if done != nil {
		done(err)
	}
}

func notExisting(key string) error {
	return model.NewError(model.ErrResponseNotExisting, key, "", nil)
}
