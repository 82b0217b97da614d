package memory

import "sync/atomic"

// tailSample is how many entries from the LRU tail compete for eviction.
// Reads that skipped the list move still carry a fresh access sequence.
const tailSample = 8

func (s *Store[V]) overBudgetUnlocked() bool {
	if s.countLimit > 0 && len(s.items) > s.countLimit {
		return true
	}
	return s.costLimit > 0 && atomic.LoadInt64(&s.cost) > s.costLimit
}

// evictUnlocked removes victims until within budget. keep is never evicted.
func (s *Store[V]) evictUnlocked(keep *entry[V]) (freed, evicted int64) {
	for s.overBudgetUnlocked() && len(s.items) > 1 {
		victim := s.pickVictimUnlocked(keep)
		if victim == nil {
			return
		}
		s.removeUnlocked(victim.key)
		freed += victim.cost
		evicted++
	}
	return
}

// pickVictimUnlocked returns the least recently accessed entry among the LRU tail sample.
func (s *Store[V]) pickVictimUnlocked(keep *entry[V]) *entry[V] {
	var best *entry[V]
	el := s.lru.Back()
	for i := 0; i < tailSample && el != nil; i, el = i+1, el.Prev() {
		e := el.Value.(*entry[V])
		if e == keep {
			continue
		}
		if best == nil || e.TouchedAt() < best.TouchedAt() {
			best = e
		}
	}
	return best
}
