package flux

import (
	"context"
	"sync"
)

type collectResult[T any] struct {
	values []T
	err    error
}

// Collect drains the publisher with unbounded demand into a slice, blocking
// until the stream terminates or the context is done. A cancelled context
// cancels the subscription.
func Collect[T any](ctx context.Context, p Publisher[T]) ([]T, error) {
	cs := &collectSubscriber[T]{out: make(chan collectResult[T], 1)}
	p.Subscribe(cs)

	select {
	case <-ctx.Done():
		cs.ref.terminate()
		return nil, ctx.Err()
	case res := <-cs.out:
		return res.values, res.err
	}
}

type collectSubscriber[T any] struct {
	ref    subscriptionRef
	mu     sync.Mutex
	values []T
	once   sync.Once
	out    chan collectResult[T]
}

func (c *collectSubscriber[T]) OnSubscribe(s Subscription) {
	if c.ref.setOnce(s) {
		s.Request(Unbounded)
	}
}

func (c *collectSubscriber[T]) OnNext(v T) {
	c.mu.Lock()
	c.values = append(c.values, v)
	c.mu.Unlock()
}

func (c *collectSubscriber[T]) OnError(err error) {
	c.finish(err)
}

func (c *collectSubscriber[T]) OnComplete() {
	c.finish(nil)
}

func (c *collectSubscriber[T]) finish(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		values := c.values
		c.mu.Unlock()
		c.out <- collectResult[T]{values: values, err: err}
	})
}
