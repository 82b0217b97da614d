package memory

import (
	"container/list"
	"math"
	"sync/atomic"
	"time"

	"github.com/Borislavv/go-ash-netcache/model"
)

type entry[V any] struct {
	key   string
	value V
	cost  int64

	// expiration the entry was stored with; re-applied by ExtendCacheTime.
	expiration model.StorageExpiration

	estimatedExpiration int64 // atomic: unix nano, MaxInt64/MinInt64 for never/expired
	touchedAt           int64 // atomic: access sequence used for victim selection

	el *list.Element // guarded by the store write lock
}

func newEntry[V any](key string, value V, cost int64, exp model.StorageExpiration, now time.Time) *entry[V] {
	e := &entry[V]{key: key, value: value, cost: cost, expiration: exp}
	e.setExpiration(exp, now)
	return e
}

func (e *entry[V]) setExpiration(exp model.StorageExpiration, now time.Time) {
	atomic.StoreInt64(&e.estimatedExpiration, unixNano(exp.EstimatedExpiration(now)))
}

// unixNano clamps t to the int64 nanosecond range.
func unixNano(t time.Time) int64 {
	switch {
	case !t.Before(model.DistantFuture):
		return math.MaxInt64
	case !t.After(model.DistantPast):
		return math.MinInt64
	}
	return t.UnixNano()
}

// isExpired is true once now reaches the estimated expiration.
func (e *entry[V]) isExpired(now time.Time) bool {
	return now.UnixNano() >= atomic.LoadInt64(&e.estimatedExpiration)
}

// extend pushes the expiration forward from now according to x.
func (e *entry[V]) extend(x model.ExpirationExtending, now time.Time) {
	if exp, ok := x.Resolve(e.expiration); ok {
		e.setExpiration(exp, now)
	}
}

func (e *entry[V]) touch(seq int64)   { atomic.StoreInt64(&e.touchedAt, seq) }
func (e *entry[V]) TouchedAt() int64 { return atomic.LoadInt64(&e.touchedAt) }
