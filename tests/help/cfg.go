package help

import (
	"time"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/model"
)

// Cfg is a memory + disk configuration rooted at dir with background workers disabled.
func Cfg(dir string) *config.Cache {
	c := &config.Cache{
		Namespace: "test",
		Memory: config.MemoryCfg{
			TotalCostLimit: 1024 * 1024,
			Expiration:     model.Seconds(60),
		},
		Disk: &config.DiskCfg{
			Name:       "responses",
			Dir:        dir,
			SizeLimit:  1024 * 1024 * 8,
			Expiration: model.Days(1),
		},
	}
	c.AdjustConfig()
	return c
}

// MemoryOnlyCfg has no disk tier.
func MemoryOnlyCfg() *config.Cache {
	c := &config.Cache{
		Namespace: "test",
		Memory: config.MemoryCfg{
			CountLimit: 1024,
			Expiration: model.Seconds(60),
		},
	}
	c.AdjustConfig()
	return c
}

// JanitorCfg enables the janitor with a short interval.
func JanitorCfg(dir string) *config.Cache {
	c := Cfg(dir)
	c.Janitor = &config.JanitorCfg{Interval: 50 * time.Millisecond}
	c.AdjustConfig()
	return c
}
