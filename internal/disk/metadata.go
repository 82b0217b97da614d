package disk

import (
	"os"
	"time"

	"github.com/Borislavv/go-ash-netcache/model"
)

// Expirations are recorded as the file modification time. Sentinels are mapped onto
// dates every filesystem can hold.
var (
	diskNever   = time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)
	diskExpired = time.Unix(0, 0)
)

func toDiskTime(t time.Time) time.Time {
	switch {
	case !t.Before(diskNever):
		return diskNever
	case !t.After(diskExpired):
		return diskExpired
	default:
		return t
	}
}

func fromDiskTime(t time.Time) time.Time {
	switch {
	case !t.Before(diskNever):
		return model.DistantFuture
	case !t.After(diskExpired):
		return model.DistantPast
	default:
		return t
	}
}

// touch records access at now and, if extending resolves, a new expiration.
// Runs on the metadata executor.
func (s *Store) touch(key, path string, now time.Time, extending model.ExpirationExtending) {
	info, err := statFile(path)
	if err != nil || info == nil {
		// removed meanwhile
		return
	}

	mtime := info.ModTime()
	if exp, ok := extending.Resolve(s.expiration); ok {
		mtime = toDiskTime(exp.EstimatedExpiration(now))
	}
	if err = os.Chtimes(path, now, mtime); err != nil {
		s.logger.Warn().
			Err(err).
			Str("store", s.name).
			Str("key", key).
			Msg("[disk] cannot update file metadata")
	}
}
