package config

import (
	"time"

	"github.com/Borislavv/go-ash-netcache/model"
)

type MemoryCfg struct {
	// TotalCostLimit bounds the sum of entry costs (body bytes by default). 0 means unlimited.
	TotalCostLimit int64 `yaml:"total_cost_limit"`

	// CountLimit bounds the number of entries. 0 means unlimited.
	CountLimit int `yaml:"count_limit"`

	// Expiration applied to entries stored without a per-call override.
	// Example: "300s", "never". Missing or "0s" means the default; use "expired"
	// to keep entries out of memory unless a call overrides it.
	Expiration model.StorageExpiration `yaml:"expiration"`

	// CleanInterval is how often the janitor sweeps expired memory entries
	// when it runs faster than the disk sweep. 0 falls back to the janitor interval.
	CleanInterval time.Duration `yaml:"clean_interval"`
}
