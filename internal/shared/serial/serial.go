// Package serial runs submitted tasks one at a time, in submission order, on a single goroutine.
package serial

import (
	"sync"

	"github.com/Borislavv/go-ash-netcache/internal/shared/queue"
)

const initialCap = 64

// Executor is a serial execution context. Submitting never blocks.
type Executor struct {
	mu     sync.Mutex
	wake   chan struct{}
	done   chan struct{}
	tasks  queue.Queue[func()]
	closed bool
}

func New() *Executor {
	e := &Executor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	e.tasks.Init(initialCap)
	go e.loop()
	return e
}

// Go schedules task. It reports false when the executor is already closed.
func (e *Executor) Go(task func()) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.tasks.Push(task)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return true
}

// Barrier blocks until every task submitted before the call has finished.
// Must not be called from a task of the same executor.
func (e *Executor) Barrier() {
	reached := make(chan struct{})
	if !e.Go(func() { close(reached) }) {
		<-e.done
		return
	}
	<-reached
}

// Close stops accepting tasks, drains the pending ones and waits for the loop to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	<-e.done
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		for {
			task, ok := e.tasks.TryPop()
			if !ok {
				break
			}
			task()
		}

		e.mu.Lock()
		closed, pending := e.closed, e.tasks.Len()
		e.mu.Unlock()
		if closed && pending == 0 {
			return
		}
		if pending > 0 {
			continue
		}
		<-e.wake
	}
}
