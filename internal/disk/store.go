// Package disk implements the persistent tier of the response cache: one file per key
// inside a directory owned by the named store. The file modification time holds the
// entry's expiration and the access time its last read, so no index file exists and
// every sweep is a full directory scan.
//
// Store methods are meant to be called from one serial context. Metadata updates caused
// by reads run on the store's own serial executor.
package disk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/internal/shared/serial"
	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type Store struct {
	name        string
	dir         string
	sizeLimit   int64
	expiration  model.StorageExpiration
	hashed      bool
	preserveExt bool

	clock  clock.Clock
	logger zerolog.Logger
	meta   *serial.Executor
	ready  atomic.Bool
}

// New creates the store directory Dir/Name and fails if it cannot.
// A nil logger means the global zerolog logger.
func New(cfg *config.DiskCfg, clk clock.Clock, logger *zerolog.Logger) (*Store, error) {
	s := newStore(cfg, clk, logger)
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		s.meta.Close()
		return nil, model.NewError(model.ErrCannotCreateDirectory, "", s.dir, err)
	}
	s.ready.Store(true)
	return s, nil
}

// NewBestEffort never fails. If the directory cannot be created the store stays
// unusable and every operation reports ErrDiskStorageNotReady.
func NewBestEffort(cfg *config.DiskCfg, clk clock.Clock, logger *zerolog.Logger) *Store {
	s := newStore(cfg, clk, logger)
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		s.logger.Error().
			Err(err).
			Str("store", s.name).
			Str("dir", s.dir).
			Msg("[disk] storage is not ready")
		return s
	}
	s.ready.Store(true)
	return s
}

func newStore(cfg *config.DiskCfg, clk clock.Clock, logger *zerolog.Logger) *Store {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = &log.Logger
	}
	return &Store{
		name:        cfg.Name,
		dir:         filepath.Join(cfg.Dir, cfg.Name),
		sizeLimit:   cfg.SizeLimit,
		expiration:  cfg.Expiration,
		hashed:      cfg.IsHashed,
		preserveExt: cfg.PreserveExtension,
		clock:       clk,
		logger:      *logger,
		meta:        serial.New(),
	}
}

func (s *Store) Name() string { return s.name }
func (s *Store) Dir() string  { return s.dir }
func (s *Store) Ready() bool  { return s.ready.Load() }

// Path is the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, s.fileName(key))
}

// Store writes data for key. The file is published by rename with its metadata already set.
func (s *Store) Store(key string, data []byte, exp *model.StorageExpiration) error {
	if !s.Ready() {
		return model.NewError(model.ErrDiskStorageNotReady, key, s.dir, nil)
	}
	expiration := s.expiration
	if exp != nil {
		expiration = *exp
	}
	path := s.Path(key)

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return model.NewError(model.ErrCannotCreateDirectory, key, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return model.NewError(model.ErrCannotCreateCacheFile, key, path, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, filePerm)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return model.NewError(model.ErrCannotCreateCacheFile, key, path, err)
	}

	now := s.clock.Now()
	if err = os.Chtimes(tmpName, now, toDiskTime(expiration.EstimatedExpiration(now))); err != nil {
		_ = os.Remove(tmpName)
		return model.NewError(model.ErrCannotSetCacheFileAttribute, key, path, err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return model.NewError(model.ErrCannotCreateCacheFile, key, path, err)
	}
	return nil
}

// Value returns the stored bytes, or nil without error if key is missing or expired.
// A hit records the access and applies extending asynchronously.
func (s *Store) Value(key string, extending model.ExpirationExtending) ([]byte, error) {
	if !s.Ready() {
		return nil, model.NewError(model.ErrDiskStorageNotReady, key, s.dir, nil)
	}
	path := s.Path(key)

	info, err := statFile(path)
	if err != nil {
		return nil, model.NewError(model.ErrInvalidURLResource, key, path, err)
	}
	now := s.clock.Now()
	if info == nil || !now.Before(fromDiskTime(info.ModTime())) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, model.NewError(model.ErrCannotLoadDataFromDisk, key, path, err)
	}

	s.meta.Go(func() { s.touch(key, path, now, extending) })
	return data, nil
}

// IsCached reports whether key has a file that is still valid at referenceDate.
func (s *Store) IsCached(key string, referenceDate time.Time) bool {
	if !s.Ready() {
		return false
	}
	info, err := statFile(s.Path(key))
	if err != nil || info == nil {
		return false
	}
	return referenceDate.Before(fromDiskTime(info.ModTime()))
}

// RecordedExpiration returns the expiration stored for key.
func (s *Store) RecordedExpiration(key string) (time.Time, bool) {
	info, err := statFile(s.Path(key))
	if err != nil || info == nil {
		return time.Time{}, false
	}
	return fromDiskTime(info.ModTime()), true
}

func (s *Store) Remove(key string) error {
	if !s.Ready() {
		return model.NewError(model.ErrDiskStorageNotReady, key, s.dir, nil)
	}
	path := s.Path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.NewError(model.ErrInvalidURLResource, key, path, err)
	}
	return nil
}

// RemoveAll deletes the store directory and, unless skipRecreatingDirectory, creates it again.
func (s *Store) RemoveAll(skipRecreatingDirectory bool) error {
	if !s.Ready() {
		return model.NewError(model.ErrDiskStorageNotReady, "", s.dir, nil)
	}
	s.meta.Barrier()

	if err := os.RemoveAll(s.dir); err != nil {
		return model.NewError(model.ErrInvalidURLResource, "", s.dir, err)
	}
	if skipRecreatingDirectory {
		return nil
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return model.NewError(model.ErrCannotCreateDirectory, "", s.dir, err)
	}
	return nil
}

type file struct {
	name       string
	size       int64
	expiration time.Time
	accessedAt time.Time
}

// files enumerates the cache files of the store directory. A missing directory is empty.
func (s *Store) files() ([]file, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, model.NewError(model.ErrFileEnumeratorCreationFailed, "", s.dir, err)
	}

	files := make([]file, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, model.NewError(model.ErrInvalidFileEnumeratorContent, "", filepath.Join(s.dir, entry.Name()), err)
		}
		files = append(files, file{
			name:       entry.Name(),
			size:       info.Size(),
			expiration: fromDiskTime(info.ModTime()),
			accessedAt: accessTime(info),
		})
	}
	return files, nil
}

// TotalSize sums the sizes of all cache files.
func (s *Store) TotalSize() (int64, error) {
	if !s.Ready() {
		return 0, model.NewError(model.ErrDiskStorageNotReady, "", s.dir, nil)
	}
	files, err := s.files()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

// RemoveExpiredValues deletes files whose expiration is at or before referenceDate
// and returns their names.
func (s *Store) RemoveExpiredValues(referenceDate time.Time) ([]string, error) {
	if !s.Ready() {
		return nil, model.NewError(model.ErrDiskStorageNotReady, "", s.dir, nil)
	}
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, f := range files {
		if f.expiration.After(referenceDate) {
			continue
		}
		if s.removeFile(f.name) {
			removed = append(removed, f.name)
		}
	}

	if len(removed) > 0 {
		s.logger.Info().
			Str("store", s.name).
			Int("removed", len(removed)).
			Msg("[disk] expired values removed")
	}
	return removed, nil
}

// RemoveSizeExceededValues deletes least recently accessed files until the total size
// is at most half of the limit, and returns their names. A zero limit disables it.
func (s *Store) RemoveSizeExceededValues() ([]string, error) {
	if !s.Ready() {
		return nil, model.NewError(model.ErrDiskStorageNotReady, "", s.dir, nil)
	}
	if s.sizeLimit <= 0 {
		return nil, nil
	}
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= s.sizeLimit {
		return nil, nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].accessedAt.Equal(files[j].accessedAt) {
			return files[i].name < files[j].name
		}
		return files[i].accessedAt.Before(files[j].accessedAt)
	})

	target := s.sizeLimit / 2
	var removed []string
	for _, f := range files {
		if total <= target {
			break
		}
		if s.removeFile(f.name) {
			total -= f.size
			removed = append(removed, f.name)
		}
	}

	s.logger.Info().
		Str("store", s.name).
		Int("removed", len(removed)).
		Int64("size", total).
		Int64("limit", s.sizeLimit).
		Msg("[disk] size exceeded values removed")
	return removed, nil
}

func (s *Store) removeFile(name string) bool {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().
			Err(err).
			Str("store", s.name).
			Str("file", name).
			Msg("[disk] cannot remove file")
		return false
	}
	return true
}

// Flush waits for the pending metadata updates.
func (s *Store) Flush() { s.meta.Barrier() }

// Close flushes metadata updates and stops the metadata executor.
func (s *Store) Close() { s.meta.Close() }

// statFile returns nil info without error when path does not exist or is a directory.
func statFile(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}
	return info, nil
}
