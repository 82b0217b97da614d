package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Borislavv/go-ash-netcache/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNamespace       = "netcache"
	DefaultDiskName        = "default"
	DefaultTotalCostLimit  = 64 << 20 // 64MiB
	DefaultJanitorInterval = 2 * time.Minute
	DefaultTelemetryEvery  = 5 * time.Second
	DefaultBackgroundGrace = 10 * time.Second
)

var (
	DefaultMemoryExpiration = model.Seconds(300)
	DefaultDiskExpiration   = model.Days(7)
)

// Default returns the configuration used by the process-wide shared cache.
func Default() *Cache {
	cfg := &Cache{
		Memory:  MemoryCfg{TotalCostLimit: DefaultTotalCostLimit, Expiration: DefaultMemoryExpiration},
		Disk:    &DiskCfg{Name: DefaultDiskName, Expiration: DefaultDiskExpiration},
		Janitor: &JanitorCfg{Interval: DefaultJanitorInterval},
	}
	cfg.AdjustConfig()
	return cfg
}

func (cfg *Cache) AdjustConfig() {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.BackgroundGrace <= 0 {
		cfg.BackgroundGrace = DefaultBackgroundGrace
	}
	if cfg.Memory.TotalCostLimit < 0 {
		cfg.Memory.TotalCostLimit = 0
	}
	if cfg.Memory.CountLimit < 0 {
		cfg.Memory.CountLimit = 0
	}
	if cfg.Memory.Expiration == (model.StorageExpiration{}) {
		cfg.Memory.Expiration = DefaultMemoryExpiration
	}

	if cfg.Disk.Enabled() {
		if cfg.Disk.Name == "" {
			cfg.Disk.Name = DefaultDiskName
		}
		if cfg.Disk.Dir == "" {
			if dir, err := os.UserCacheDir(); err == nil {
				cfg.Disk.Dir = filepath.Join(dir, DefaultNamespace)
			} else {
				cfg.Disk.Dir = filepath.Join(os.TempDir(), DefaultNamespace)
			}
		}
		if cfg.Disk.SizeLimit < 0 {
			cfg.Disk.SizeLimit = 0
		}
		if cfg.Disk.Expiration == (model.StorageExpiration{}) {
			cfg.Disk.Expiration = DefaultDiskExpiration
		}
		if cfg.Disk.FileName == "" {
			cfg.Disk.FileName = FileNameHashed
		}
		cfg.Disk.IsHashed = cfg.Disk.FileName != FileNameRaw
	}

	if cfg.Janitor.Enabled() && cfg.Janitor.Interval <= 0 {
		cfg.Janitor.Interval = DefaultJanitorInterval
	}
	if cfg.Telemetry.Enabled() && cfg.Telemetry.Interval <= 0 {
		cfg.Telemetry.Interval = DefaultTelemetryEvery
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if cfg == nil {
		cfg = &Cache{}
	}
	cfg.AdjustConfig()

	return cfg, nil
}
