package rate

import (
	"context"
	"time"

	"go.uber.org/ratelimit"
)

// Every emits one signal per interval on Chan until its context ends.
type Every struct {
	ch chan struct{}
	l  ratelimit.Limiter
}

// NewEvery emits the first signal right away. Idle periods do not accumulate.
func NewEvery(ctx context.Context, interval time.Duration) *Every {
	every := &Every{
		ch: make(chan struct{}, 1),
		l:  ratelimit.New(1, ratelimit.Per(interval), ratelimit.WithoutSlack),
	}
	go every.provider(ctx)
	return every
}

func (e *Every) provider(ctx context.Context) {
	defer close(e.ch)
	for {
		e.l.Take()
		select {
		case <-ctx.Done():
			return
		case e.ch <- struct{}{}:
		}
	}
}

// Chan is closed once the context ends.
func (e *Every) Chan() <-chan struct{} {
	return e.ch
}
