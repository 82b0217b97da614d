package netcache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Borislavv/go-ash-netcache/config"
)

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns a process-wide cache built from config.Default on first use.
// It never fails: an unusable disk directory leaves the disk tier not ready.
func Default() *Cache {
	defaultOnce.Do(func() {
		// best effort construction does not return errors
		defaultCache, _ = newCache(context.Background(), config.Default(), slog.Default(), true)
	})
	return defaultCache
}
