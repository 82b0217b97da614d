package janitor

// NoOpJanitor is used when the janitor is disabled; sweeps then only happen on demand.
type NoOpJanitor struct{}

func (NoOpJanitor) JanitorMetrics() (sweeps, memoryRemoved, diskExpired, diskExceeded, errors int64) {
	return 0, 0, 0, 0, 0
}

func (NoOpJanitor) Close() error {
	return nil
}
