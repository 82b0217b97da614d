// Package memory implements the bounded in-process tier of the response cache.
// Lookups share a read lock; inserts, removals and evictions take the write lock.
package memory

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/Borislavv/go-ash-netcache/config"
	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/benbjohnson/clock"
)

// Store maps cache keys to cost-bearing values with per-entry expiration.
// Bounds are enforced on insert by evicting least recently accessed entries.
type Store[V any] struct {
	sync.RWMutex
	items map[string]*entry[V]
	lru   *list.List // front: most recently used

	costLimit  int64
	countLimit int
	expiration model.StorageExpiration
	clock      clock.Clock

	cost int64 // atomic: total cost of stored entries
	seq  int64 // atomic: access sequence
}

func New[V any](cfg config.MemoryCfg, clk clock.Clock) *Store[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &Store[V]{
		items:      make(map[string]*entry[V]),
		lru:        list.New(),
		costLimit:  cfg.TotalCostLimit,
		countLimit: cfg.CountLimit,
		expiration: cfg.Expiration,
		clock:      clk,
	}
}

func (s *Store[V]) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.items)
}

func (s *Store[V]) Cost() int64 { return atomic.LoadInt64(&s.cost) }

// Put stores value under key, replacing any previous entry. Evicts while over budget.
// A value already expired at insert replaces the previous entry with nothing; Put reports false.
func (s *Store[V]) Put(key string, value V, cost int64, exp *model.StorageExpiration) bool {
	expiration := s.expiration
	if exp != nil {
		expiration = *exp
	}
	if cost < 0 {
		cost = 0
	}
	now := s.clock.Now()
	e := newEntry(key, value, cost, expiration, now)

	s.Lock()
	defer s.Unlock()

	if e.isExpired(now) {
		s.removeUnlocked(key)
		return false
	}
	e.touch(s.nextSeq())

	if old, hit := s.items[key]; hit {
		s.lru.Remove(old.el)
		atomic.AddInt64(&s.cost, -old.cost)
	}
	e.el = s.lru.PushFront(e)
	s.items[key] = e
	atomic.AddInt64(&s.cost, cost)

	s.evictUnlocked(e)
	return true
}

// Get returns the value if present and not expired. A hit applies extending from now.
func (s *Store[V]) Get(key string, extending model.ExpirationExtending) (value V, ok bool) {
	now := s.clock.Now()

	s.RLock()
	e, hit := s.items[key]
	if !hit || e.isExpired(now) {
		s.RUnlock()
		return value, false
	}
	e.extend(extending, now)
	e.touch(s.nextSeq())
	value = e.value
	s.RUnlock()

	s.touchLRU(e)
	return value, true
}

// IsCached reports presence of a non-expired entry without touching it.
func (s *Store[V]) IsCached(key string) bool {
	now := s.clock.Now()
	s.RLock()
	defer s.RUnlock()
	e, hit := s.items[key]
	return hit && !e.isExpired(now)
}

func (s *Store[V]) Remove(key string) {
	s.Lock()
	defer s.Unlock()
	s.removeUnlocked(key)
}

func (s *Store[V]) RemoveAll() {
	s.Lock()
	defer s.Unlock()
	s.items = make(map[string]*entry[V])
	s.lru.Init()
	atomic.StoreInt64(&s.cost, 0)
}

// RemoveExpired sweeps every entry and returns the keys removed.
func (s *Store[V]) RemoveExpired() []string {
	now := s.clock.Now()

	s.Lock()
	defer s.Unlock()

	var removed []string
	for key, e := range s.items {
		if e.isExpired(now) {
			s.removeUnlocked(key)
			removed = append(removed, key)
		}
	}
	return removed
}

func (s *Store[V]) nextSeq() int64 { return atomic.AddInt64(&s.seq, 1) }

func (s *Store[V]) removeUnlocked(key string) {
	if e, hit := s.items[key]; hit {
		delete(s.items, key)
		s.lru.Remove(e.el)
		atomic.AddInt64(&s.cost, -e.cost)
	}
}

// touchLRU moves e to the front if the write lock is free. Readers never wait for it.
func (s *Store[V]) touchLRU(e *entry[V]) {
	if s.TryLock() {
		if cur, hit := s.items[e.key]; hit && cur == e {
			s.lru.MoveToFront(e.el)
		}
		s.Unlock()
	}
}
