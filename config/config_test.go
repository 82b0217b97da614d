package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadConfig_ParsesYAML reads every section and derives virtual fields.
func TestLoadConfig_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace: shop
memory:
  total_cost_limit: 1048576
  count_limit: 100
  expiration: 90s
disk:
  name: responses
  dir: /var/cache/shop
  size_limit: 10485760
  expiration: 3d
  file_name: raw
janitor:
  interval: 30s
telemetry:
  interval: 1m
background_grace: 5s
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "shop", cfg.Namespace)
	require.Equal(t, int64(1<<20), cfg.Memory.TotalCostLimit)
	require.Equal(t, 100, cfg.Memory.CountLimit)
	require.Equal(t, "90s", cfg.Memory.Expiration.String())
	require.Equal(t, "responses", cfg.Disk.Name)
	require.Equal(t, "/var/cache/shop", cfg.Disk.Dir)
	require.Equal(t, "3d", cfg.Disk.Expiration.String())
	require.False(t, cfg.Disk.IsHashed)
	require.Equal(t, 30*time.Second, cfg.Janitor.Interval)
	require.Equal(t, time.Minute, cfg.Telemetry.Interval)
	require.Equal(t, 5*time.Second, cfg.BackgroundGrace)
}

// TestLoadConfig_MissingFile wraps the stat error.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestAdjustConfig_Defaults fills defaults and leaves optional parts disabled.
func TestAdjustConfig_Defaults(t *testing.T) {
	cfg := &Cache{Disk: &DiskCfg{}}
	cfg.AdjustConfig()

	require.Equal(t, DefaultNamespace, cfg.Namespace)
	require.Equal(t, DefaultMemoryExpiration, cfg.Memory.Expiration)
	require.Equal(t, DefaultDiskName, cfg.Disk.Name)
	require.NotEmpty(t, cfg.Disk.Dir)
	require.Equal(t, FileNameHashed, cfg.Disk.FileName)
	require.True(t, cfg.Disk.IsHashed)
	require.False(t, cfg.Janitor.Enabled())
	require.False(t, cfg.Telemetry.Enabled())
}

// TestLoadConfig_ZeroExpirationFallsBack treats "0s" as unset and keeps "expired".
func TestLoadConfig_ZeroExpirationFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
memory:
  expiration: 0s
disk:
  expiration: expired
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultMemoryExpiration, cfg.Memory.Expiration)
	require.Equal(t, "expired", cfg.Disk.Expiration.String())
}

// TestDefault_EnablesDiskAndJanitor returns the shared-instance configuration.
func TestDefault_EnablesDiskAndJanitor(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Disk.Enabled())
	require.True(t, cfg.Janitor.Enabled())
	require.Equal(t, DefaultJanitorInterval, cfg.Janitor.Interval)
}
