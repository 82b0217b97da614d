package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DistantFuture and DistantPast are the estimated expirations of StorageExpiration
// values that never expire and that are already expired. Both round-trip through UnixNano.
var (
	DistantFuture = time.Unix(0, math.MaxInt64)
	DistantPast   = time.Unix(0, math.MinInt64)
)

const day = 24 * time.Hour

type expirationKind uint8

const (
	kindSeconds expirationKind = iota
	kindNever
	kindDays
	kindDate
	kindExpired
)

// StorageExpiration describes when a stored value stops being valid.
// The zero value is Seconds(0), which is already expired on arrival.
type StorageExpiration struct {
	kind expirationKind
	n    int64
	date time.Time
}

func Never() StorageExpiration           { return StorageExpiration{kind: kindNever} }
func Expired() StorageExpiration         { return StorageExpiration{kind: kindExpired} }
func Seconds(n int64) StorageExpiration  { return StorageExpiration{kind: kindSeconds, n: n} }
func Days(n int64) StorageExpiration     { return StorageExpiration{kind: kindDays, n: n} }
func Date(d time.Time) StorageExpiration { return StorageExpiration{kind: kindDate, date: d} }

// Duration is a convenience for Seconds with sub-second values rounded up.
func Duration(d time.Duration) StorageExpiration {
	return Seconds(int64(math.Ceil(d.Seconds())))
}

// EstimatedExpiration returns the instant the value expires when stored at since.
// Windows reaching past DistantFuture saturate to it.
func (e StorageExpiration) EstimatedExpiration(since time.Time) time.Time {
	switch e.kind {
	case kindNever:
		return DistantFuture
	case kindExpired:
		return DistantPast
	case kindDate:
		return e.date
	case kindDays:
		return addSaturated(since, e.n, day)
	default:
		return addSaturated(since, e.n, time.Second)
	}
}

func addSaturated(since time.Time, n int64, unit time.Duration) time.Time {
	switch {
	case n > math.MaxInt64/int64(unit):
		return DistantFuture
	case n < math.MinInt64/int64(unit):
		return DistantPast
	}
	t := since.Add(time.Duration(n) * unit)
	if t.After(DistantFuture) {
		return DistantFuture
	}
	return t
}

// TimeInterval is the remaining validity measured from now.
// Never and Expired report the maximum and minimum durations; others saturate at them.
func (e StorageExpiration) TimeInterval(now time.Time) time.Duration {
	switch e.kind {
	case kindNever:
		return time.Duration(math.MaxInt64)
	case kindExpired:
		return time.Duration(math.MinInt64)
	case kindDate:
		return e.date.Sub(now)
	case kindDays:
		return mulSaturated(e.n, day)
	default:
		return mulSaturated(e.n, time.Second)
	}
}

func mulSaturated(n int64, unit time.Duration) time.Duration {
	switch {
	case n > math.MaxInt64/int64(unit):
		return time.Duration(math.MaxInt64)
	case n < math.MinInt64/int64(unit):
		return time.Duration(math.MinInt64)
	}
	return time.Duration(n) * unit
}

// IsExpired reports whether the remaining interval is not positive.
func (e StorageExpiration) IsExpired(now time.Time) bool {
	return e.TimeInterval(now) <= 0
}

func (e StorageExpiration) IsNever() bool { return e.kind == kindNever }

func (e StorageExpiration) String() string {
	switch e.kind {
	case kindNever:
		return "never"
	case kindExpired:
		return "expired"
	case kindDate:
		return e.date.Format(time.RFC3339)
	case kindDays:
		return strconv.FormatInt(e.n, 10) + "d"
	default:
		return strconv.FormatInt(e.n, 10) + "s"
	}
}

// ParseStorageExpiration accepts "never", "expired", "<n>d", a Go duration ("90s", "2h")
// or an RFC3339 date.
func ParseStorageExpiration(s string) (StorageExpiration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "never":
		return Never(), nil
	case "expired":
		return Expired(), nil
	case "":
		return StorageExpiration{}, fmt.Errorf("empty storage expiration")
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "d"), 10, 64)
		if err != nil {
			return StorageExpiration{}, fmt.Errorf("parse days %q: %w", s, err)
		}
		return Days(n), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return Duration(d), nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
		return Date(t), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Seconds(n), nil
	}
	return StorageExpiration{}, fmt.Errorf("unknown storage expiration %q", s)
}

func (e *StorageExpiration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStorageExpiration(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e StorageExpiration) MarshalYAML() (any, error) { return e.String(), nil }

type extendingKind uint8

const (
	extendNone extendingKind = iota
	extendCacheTime
	extendExplicit
)

// ExpirationExtending tells a store how to push an entry's expiration forward on a read hit.
// The zero value is ExtendNone.
type ExpirationExtending struct {
	kind       extendingKind
	expiration StorageExpiration
}

func ExtendNone() ExpirationExtending      { return ExpirationExtending{} }
func ExtendCacheTime() ExpirationExtending { return ExpirationExtending{kind: extendCacheTime} }
func ExtendExplicit(e StorageExpiration) ExpirationExtending {
	return ExpirationExtending{kind: extendExplicit, expiration: e}
}

func (x ExpirationExtending) IsNone() bool      { return x.kind == extendNone }
func (x ExpirationExtending) IsCacheTime() bool { return x.kind == extendCacheTime }

// Resolve returns the expiration to re-apply from now. CacheTime re-applies original.
func (x ExpirationExtending) Resolve(original StorageExpiration) (StorageExpiration, bool) {
	switch x.kind {
	case extendCacheTime:
		return original, true
	case extendExplicit:
		return x.expiration, true
	default:
		return StorageExpiration{}, false
	}
}
