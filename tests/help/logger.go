package help

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
)

func Logger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}

	var out io.Writer = io.Discard
	if os.Getenv("NETCACHE_TEST_LOGS") != "" {
		out = os.Stdout
		opts.Level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(out, opts)

	return slog.New(h).With(
		slog.String("service", "netcache"),
		slog.String("env", "test"),
	)
}

// DiskLogger is the zerolog counterpart of Logger used by the disk tier.
func DiskLogger() zerolog.Logger {
	if os.Getenv("NETCACHE_TEST_LOGS") != "" {
		return zerolog.New(os.Stdout).With().Timestamp().Str("service", "netcache").Logger()
	}
	return zerolog.Nop()
}
