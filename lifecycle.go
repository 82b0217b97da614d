package netcache

import (
	"context"
	"sync"
)

// Signal is a host lifecycle event the cache reacts to.
type Signal uint8

const (
	// SignalMemoryWarning clears the memory tier.
	SignalMemoryWarning Signal = iota + 1
	// SignalTerminate sweeps expired and size-exceeding disk entries before exit.
	SignalTerminate
	// SignalBackground runs the same sweep bounded by the configured grace period.
	SignalBackground
)

func (s Signal) String() string {
	switch s {
	case SignalMemoryWarning:
		return "memory_warning"
	case SignalTerminate:
		return "terminate"
	case SignalBackground:
		return "background"
	default:
		return "unknown"
	}
}

// SignalSource delivers lifecycle signals. Handlers run on the emitting goroutine.
type SignalSource interface {
	Subscribe(fn func(ctx context.Context, s Signal)) (unsubscribe func())
}

// Broadcaster is a SignalSource the host application emits into.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[uint64]func(ctx context.Context, s Signal)
	next uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]func(ctx context.Context, s Signal))}
}

func (b *Broadcaster) Subscribe(fn func(ctx context.Context, s Signal)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Emit calls every subscriber and returns when all of them have.
func (b *Broadcaster) Emit(ctx context.Context, s Signal) {
	b.mu.RLock()
	handlers := make([]func(ctx context.Context, s Signal), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, s)
	}
}

// Subscribers is the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (c *Cache) onSignal(ctx context.Context, s Signal) {
	c.logger.Info("lifecycle signal received", "signal", s.String())

	switch s {
	case SignalMemoryWarning:
		c.ClearMemory()
	case SignalTerminate:
		if _, _, err := c.SweepDisk(ctx); err != nil {
			c.logger.Warn("disk sweep on terminate failed", "err", err)
		}
	case SignalBackground:
		ctx, cancel := context.WithTimeout(ctx, c.cfg.BackgroundGrace)
		defer cancel()
		if _, _, err := c.SweepDisk(ctx); err != nil {
			c.logger.Warn("disk sweep on background failed", "err", err)
		}
	}
}
