package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// TestStorageExpiration_EstimatedExpiration maps every kind onto an instant.
func TestStorageExpiration_EstimatedExpiration(t *testing.T) {
	require.Equal(t, DistantFuture, Never().EstimatedExpiration(now))
	require.Equal(t, DistantPast, Expired().EstimatedExpiration(now))
	require.Equal(t, now.Add(30*time.Second), Seconds(30).EstimatedExpiration(now))
	require.Equal(t, now.Add(48*time.Hour), Days(2).EstimatedExpiration(now))

	date := now.Add(time.Hour)
	require.Equal(t, date, Date(date).EstimatedExpiration(now))
}

// TestStorageExpiration_FarFuture saturates instead of wrapping around.
func TestStorageExpiration_FarFuture(t *testing.T) {
	require.Equal(t, DistantFuture, Days(110000).EstimatedExpiration(now))
	require.Equal(t, DistantFuture, Days(100000).EstimatedExpiration(now))
	require.Equal(t, DistantFuture, Seconds(math.MaxInt64).EstimatedExpiration(now))
	require.Equal(t, DistantPast, Seconds(math.MinInt64).EstimatedExpiration(now))
	require.False(t, Days(110000).IsExpired(now))
	require.False(t, Seconds(math.MaxInt64).IsExpired(now))
	require.Equal(t, time.Duration(math.MaxInt64), Days(110000).TimeInterval(now))

	date := time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, date, Date(date).EstimatedExpiration(now))
	require.False(t, Date(date).IsExpired(now))
}

// TestStorageExpiration_IsExpired is true iff the remaining interval is not positive.
func TestStorageExpiration_IsExpired(t *testing.T) {
	require.False(t, Never().IsExpired(now))
	require.True(t, Expired().IsExpired(now))
	require.True(t, Seconds(0).IsExpired(now))
	require.False(t, Seconds(1).IsExpired(now))
	require.True(t, Date(now).IsExpired(now))
	require.True(t, Date(now.Add(-time.Second)).IsExpired(now))
	require.False(t, Date(now.Add(time.Second)).IsExpired(now))
}

// TestStorageExpiration_TimeInterval reports infinities for never and expired.
func TestStorageExpiration_TimeInterval(t *testing.T) {
	require.Equal(t, time.Duration(math.MaxInt64), Never().TimeInterval(now))
	require.Equal(t, time.Duration(math.MinInt64), Expired().TimeInterval(now))
	require.Equal(t, 3*24*time.Hour, Days(3).TimeInterval(now))
}

// TestDistantBounds_RoundTripUnixNano keeps the open ends representable as int64.
func TestDistantBounds_RoundTripUnixNano(t *testing.T) {
	require.Equal(t, int64(math.MaxInt64), DistantFuture.UnixNano())
	require.Equal(t, int64(math.MinInt64), DistantPast.UnixNano())
}

// TestParseStorageExpiration accepts every textual form used in config files.
func TestParseStorageExpiration(t *testing.T) {
	cases := map[string]StorageExpiration{
		"never":                Never(),
		"EXPIRED":              Expired(),
		"7d":                   Days(7),
		"90s":                  Seconds(90),
		"2h":                   Seconds(7200),
		"15":                   Seconds(15),
		"2026-10-14T12:00:00Z": Date(now),
	}
	for in, want := range cases {
		got, err := ParseStorageExpiration(in)
		require.NoError(t, err, in)
		require.Equal(t, want.String(), got.String(), in)
	}

	_, err := ParseStorageExpiration("soon")
	require.Error(t, err)
}

// TestStorageExpiration_UnmarshalYAML decodes scalars from yaml documents.
func TestStorageExpiration_UnmarshalYAML(t *testing.T) {
	var doc struct {
		Memory StorageExpiration `yaml:"memory"`
		Disk   StorageExpiration `yaml:"disk"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("memory: 5m\ndisk: 7d\n"), &doc))
	require.Equal(t, "300s", doc.Memory.String())
	require.Equal(t, "7d", doc.Disk.String())
}

// TestExpirationExtending_Resolve picks the expiration to re-apply on access.
func TestExpirationExtending_Resolve(t *testing.T) {
	_, ok := ExtendNone().Resolve(Seconds(10))
	require.False(t, ok)

	got, ok := ExtendCacheTime().Resolve(Seconds(10))
	require.True(t, ok)
	require.Equal(t, Seconds(10), got)

	got, ok = ExtendExplicit(Days(1)).Resolve(Seconds(10))
	require.True(t, ok)
	require.Equal(t, Days(1), got)

	require.True(t, ExpirationExtending{}.IsNone())
}
