package config

import "time"

// Cache groups configuration of all cache subsystems.
// Optional components are disabled by setting them to nil.
type Cache struct {
	// Namespace is mixed into every derived cache key so that two applications
	// sharing a disk directory never read each other's entries.
	Namespace string `yaml:"namespace"`

	Memory MemoryCfg `yaml:"memory"`

	// Disk configures the persistent tier.
	// If nil, the cache works in memory only and disk operations report a not-ready storage.
	Disk *DiskCfg `yaml:"disk"`

	// Janitor configures the background sweep of expired and over-budget entries.
	// If nil, sweeps happen only on explicit calls and lifecycle signals.
	Janitor *JanitorCfg `yaml:"janitor"`

	// Telemetry enables periodic stats logs. If nil, nothing is logged periodically.
	Telemetry *TelemetryCfg `yaml:"telemetry"`

	// BackgroundGrace bounds how long the app-backgrounded disk sweep may run.
	BackgroundGrace time.Duration `yaml:"background_grace"`
}

type JanitorCfg struct {
	// Interval between two sweeps. Example: "2m".
	Interval time.Duration `yaml:"interval"`
}

func (cfg *JanitorCfg) Enabled() bool {
	return cfg != nil
}

type TelemetryCfg struct {
	Interval time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil
}
