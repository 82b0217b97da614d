package model

import (
	"errors"
	"strings"
)

// Failure reasons of the cache domain. Compare with errors.Is.
var (
	ErrFileEnumeratorCreationFailed = errors.New("cannot create file enumerator")
	ErrInvalidFileEnumeratorContent = errors.New("invalid file enumerator content")
	ErrInvalidURLResource           = errors.New("invalid url resource")
	ErrCannotLoadDataFromDisk       = errors.New("cannot load data from disk")
	ErrCannotCreateDirectory        = errors.New("cannot create directory")
	ErrResponseNotExisting          = errors.New("response not existing in cache")
	ErrCannotConvertToData          = errors.New("cannot convert response to data")
	ErrCannotSerializeResponse      = errors.New("cannot serialize response")
	ErrCannotCreateCacheFile        = errors.New("cannot create cache file")
	ErrCannotSetCacheFileAttribute  = errors.New("cannot set cache file attribute")
	ErrDiskStorageNotReady          = errors.New("disk storage is not ready")

	// ErrRequestFailed is the reason every transport failure is normalized to.
	ErrRequestFailed = errors.New("request failed")
)

// CacheError is the single error type surfaced by the cache and the request resolver.
type CacheError struct {
	Reason error
	Key    string
	Path   string
	Err    error
}

func NewError(reason error, key, path string, err error) *CacheError {
	return &CacheError{Reason: reason, Key: key, Path: path, Err: err}
}

func (e *CacheError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason.Error())
	if e.Key != "" {
		b.WriteString(" (key: ")
		b.WriteString(e.Key)
		b.WriteString(")")
	}
	if e.Path != "" {
		b.WriteString(" (path: ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CacheError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// AsCacheError normalizes any error into a *CacheError; foreign errors get ErrRequestFailed.
func AsCacheError(err error) *CacheError {
	if err == nil {
		return nil
	}
	var ce *CacheError
	if errors.As(err, &ce) {
		return ce
	}
	return &CacheError{Reason: ErrRequestFailed, Err: err}
}
