package queue

import "sync"

// Queue is a FIFO ring buffer. TryPush rejects when full; Push grows the buffer instead.
type Queue[T any] struct {
	mu         sync.Mutex
	buf        []T
	head, tail int
}

func (q *Queue[T]) Init(size int) {
	if size < 2 {
		size = 2
	}
	q.mu.Lock()
	q.buf = make([]T, size)
	q.head, q.tail = 0, 0
	q.mu.Unlock()
}

func (q *Queue[T]) TryPush(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isFullUnlocked() {
		return false
	}
	q.pushUnlocked(v)
	return true
}

// Push never fails: a full buffer is doubled preserving order.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isFullUnlocked() {
		q.growUnlocked()
	}
	q.pushUnlocked(v)
}

func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.head == q.tail {
		return zero, false
	}
	v := q.buf[q.tail]
	q.buf[q.tail] = zero // release reference
	q.tail = (q.tail + 1) % len(q.buf)
	return v, true
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0
	}
	return (q.head - q.tail + len(q.buf)) % len(q.buf)
}

func (q *Queue[T]) isFullUnlocked() bool {
	return len(q.buf) == 0 || (q.head+1)%len(q.buf) == q.tail
}

func (q *Queue[T]) pushUnlocked(v T) {
	q.buf[q.head] = v
	q.head = (q.head + 1) % len(q.buf)
}

func (q *Queue[T]) growUnlocked() {
	size := len(q.buf) * 2
	if size < 2 {
		size = 2
	}
	buf := make([]T, size)
	n := 0
	for i := q.tail; i != q.head; i = (i + 1) % len(q.buf) {
		buf[n] = q.buf[i]
		n++
	}
	q.buf, q.tail, q.head = buf, 0, n
}
