package netcache

import "sync/atomic"

type cacheCounters struct {
	memoryHits        atomic.Int64
	diskHits          atomic.Int64
	misses            atomic.Int64
	diskWriteFailures atomic.Int64
}

func newCacheCounters() *cacheCounters {
	return &cacheCounters{}
}

func (c *cacheCounters) snapshot() (memoryHits, diskHits, misses, diskWriteFailures int64) {
	memoryHits = c.memoryHits.Load()
	diskHits = c.diskHits.Load()
	misses = c.misses.Load()
	diskWriteFailures = c.diskWriteFailures.Load()
	return
}
