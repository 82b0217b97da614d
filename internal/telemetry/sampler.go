package telemetry

import "github.com/Borislavv/go-ash-netcache/internal/janitor"

// Source exposes the cumulative counters of the response cache.
type Source interface {
	CacheMetrics() (memoryHits, diskHits, misses, diskWriteFailures int64)
}

type sampler struct {
	cache   Source
	janitor janitor.Janitor
}

func newSampler(c Source, j janitor.Janitor) sampler {
	return sampler{cache: c, janitor: j}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	memoryHits        uint64
	diskHits          uint64
	misses            uint64
	diskWriteFailures uint64

	sweeps        uint64
	memoryRemoved uint64
	diskExpired   uint64
	diskExceeded  uint64
	sweepErrors   uint64
}

func (s sampler) snapshot() snapshot {
	memoryHits, diskHits, misses, writeFailures := s.cache.CacheMetrics()
	sweeps, memoryRemoved, diskExpired, diskExceeded, errs := s.janitor.JanitorMetrics()

	return snapshot{
		memoryHits:        uint64(max(memoryHits, 0)),
		diskHits:          uint64(max(diskHits, 0)),
		misses:            uint64(max(misses, 0)),
		diskWriteFailures: uint64(max(writeFailures, 0)),

		sweeps:        uint64(max(sweeps, 0)),
		memoryRemoved: uint64(max(memoryRemoved, 0)),
		diskExpired:   uint64(max(diskExpired, 0)),
		diskExceeded:  uint64(max(diskExceeded, 0)),
		sweepErrors:   uint64(max(errs, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		memoryHits:        delta(prev.memoryHits, cur.memoryHits),
		diskHits:          delta(prev.diskHits, cur.diskHits),
		misses:            delta(prev.misses, cur.misses),
		diskWriteFailures: delta(prev.diskWriteFailures, cur.diskWriteFailures),

		sweeps:        delta(prev.sweeps, cur.sweeps),
		memoryRemoved: delta(prev.memoryRemoved, cur.memoryRemoved),
		diskExpired:   delta(prev.diskExpired, cur.diskExpired),
		diskExceeded:  delta(prev.diskExceeded, cur.diskExceeded),
		sweepErrors:   delta(prev.sweepErrors, cur.sweepErrors),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
