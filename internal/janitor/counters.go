package janitor

import "sync/atomic"

type janitorCounters struct {
	sweeps        atomic.Int64 // completed sweep rounds
	memoryRemoved atomic.Int64 // expired memory entries removed
	diskExpired   atomic.Int64 // expired disk files removed
	diskExceeded  atomic.Int64 // files removed by the size sweep
	errors        atomic.Int64 // failed disk sweeps
}

func newJanitorCounters() *janitorCounters {
	return &janitorCounters{}
}

func (c *janitorCounters) snapshot() (sweeps, memoryRemoved, diskExpired, diskExceeded, errors int64) {
	sweeps = c.sweeps.Load()
	memoryRemoved = c.memoryRemoved.Load()
	diskExpired = c.diskExpired.Load()
	diskExceeded = c.diskExceeded.Load()
	errors = c.errors.Load()
	return
}
