package netcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/Borislavv/go-ash-netcache/tests/help"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func newSignalledCache(t *testing.T) (*Cache, *clock.Mock, *Broadcaster) {
	mock := clock.NewMock()
	mock.Set(epoch)
	signals := NewBroadcaster()
	c, err := New(t.Context(), help.Cfg(t.TempDir()), help.Logger(),
		WithClock(mock), WithSignals(signals), WithDiskLogger(help.DiskLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mock, signals
}

// TestSignal_MemoryWarning clears memory and keeps disk.
func TestSignal_MemoryWarning(t *testing.T) {
	c, _, signals := newSignalledCache(t)
	require.NoError(t, store(t, c, "k", response("v"), NewOptions(), true))

	signals.Emit(t.Context(), SignalMemoryWarning)

	entries, _ := c.MemoryUsage()
	require.Zero(t, entries)
	require.Equal(t, SourceDisk, c.CachedType("k"))
}

// TestSignal_TerminateAndBackground sweep expired disk entries before returning.
func TestSignal_TerminateAndBackground(t *testing.T) {
	for _, s := range []Signal{SignalTerminate, SignalBackground} {
		t.Run(s.String(), func(t *testing.T) {
			c, mock, signals := newSignalledCache(t)
			opts := NewOptions(DiskExpiration(model.Seconds(1)))
			require.NoError(t, store(t, c, "k", response("v"), opts, true))

			mock.Add(2 * time.Second)
			signals.Emit(t.Context(), s)

			require.NoFileExists(t, c.DiskPath("k"))
		})
	}
}

// TestSignal_CanceledContext returns without waiting for the sweep.
func TestSignal_CanceledContext(t *testing.T) {
	c, _, signals := newSignalledCache(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	c.io.Go(func() { time.Sleep(100 * time.Millisecond) })

	start := time.Now()
	signals.Emit(ctx, SignalTerminate)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

// TestCache_Close_Unsubscribes detaches from the signal source.
func TestCache_Close_Unsubscribes(t *testing.T) {
	c, _, signals := newSignalledCache(t)
	require.Equal(t, 1, signals.Subscribers())

	require.NoError(t, c.Close())
	require.Zero(t, signals.Subscribers())
}

// TestBroadcaster_Emit calls every live subscriber.
func TestBroadcaster_Emit(t *testing.T) {
	b := NewBroadcaster()
	var got []Signal
	unsubscribe := b.Subscribe(func(_ context.Context, s Signal) { got = append(got, s) })
	b.Subscribe(func(_ context.Context, s Signal) { got = append(got, s) })

	b.Emit(t.Context(), SignalBackground)
	require.Equal(t, []Signal{SignalBackground, SignalBackground}, got)

	unsubscribe()
	unsubscribe()
	b.Emit(t.Context(), SignalTerminate)
	require.Len(t, got, 3)
	require.Equal(t, 1, b.Subscribers())
}

// TestCache_Janitor sweeps expired disk entries in the background.
func TestCache_Janitor(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(epoch)
	c, err := New(t.Context(), help.JanitorCfg(t.TempDir()), help.Logger(), WithClock(mock), WithDiskLogger(help.DiskLogger()))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, store(t, c, "k", response("v"), NewOptions(DiskExpiration(model.Seconds(1))), true))
	mock.Add(2 * time.Second)

	require.Eventually(t, func() bool {
		_, err := os.Stat(c.DiskPath("k"))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}
