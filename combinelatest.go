package flux

import (
	"sync"
	"sync/atomic"
)

// CombineLatest combines the latest value of every source through the
// combiner whenever any source emits, starting once every source has emitted
// at least once. The sources run unbounded; downstream demand is enforced by
// a serialized drain over the combination queue.
func CombineLatest[T, R any](combiner func([]T) (R, error), sources ...Publisher[T]) Publisher[R] {
	if len(sources) == 0 {
		panic(IllegalArgumentError("at least one source required"))
	}
	return &combineLatestPublisher[T, R]{combiner: combiner, sources: sources}
}

type combineLatestPublisher[T, R any] struct {
	combiner func([]T) (R, error)
	sources  []Publisher[T]
}

func (p *combineLatestPublisher[T, R]) Subscribe(s Subscriber[R]) {
	n := len(p.sources)
	c := &combineLatestCoordinator[T, R]{
		actual:   s,
		combiner: p.combiner,
		queue:    newMpscQueue[[]T](config().GetIntDefault("flux.prefetch", 32)),
		latest:   make([]T, n),
		has:      make([]bool, n),
	}
	c.inners = make([]*combineLatestInner[T, R], n)
	for i := range c.inners {
		c.inners[i] = &combineLatestInner[T, R]{parent: c, index: i}
	}
	s.OnSubscribe(c)
	for i, src := range p.sources {
		if c.cancelled.Load() || c.done.Load() {
			return
		}
		src.Subscribe(c.inners[i])
	}
}

type combineLatestCoordinator[T, R any] struct {
	actual   Subscriber[R]
	combiner func([]T) (R, error)
	inners   []*combineLatestInner[T, R]
	queue    *mpscQueue[[]T]

	mu          sync.Mutex
	latest      []T
	has         []bool
	active      int
	completions int
	err         error

	requested atomic.Int64
	wip       atomic.Int32
	cancelled atomic.Bool
	done      atomic.Bool
	terminal  atomic.Bool
}

func (c *combineLatestCoordinator[T, R]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		c.cancelSources()
		if !c.terminal.Swap(true) {
			c.actual.OnError(err)
		}
		return
	}
	addCap(&c.requested, n)
	c.drain()
}

func (c *combineLatestCoordinator[T, R]) Cancel() {
	if !c.cancelled.Swap(true) {
		c.cancelSources()
		if c.wip.Add(1) == 1 {
			c.queue.Clear()
		}
	}
}

func (c *combineLatestCoordinator[T, R]) cancelSources() {
	for _, inner := range c.inners {
		inner.ref.terminate()
	}
}

func (c *combineLatestCoordinator[T, R]) innerNext(index int, v T) {
	c.mu.Lock()
	if !c.has[index] {
		c.has[index] = true
		c.active++
	}
	c.latest[index] = v
	var snapshot []T
	if c.active == len(c.inners) {
		snapshot = append([]T(nil), c.latest...)
	}
	c.mu.Unlock()

	if snapshot != nil {
		c.queue.Offer(snapshot)
	}
	c.drain()
}

func (c *combineLatestCoordinator[T, R]) innerComplete(index int) {
	c.mu.Lock()
	terminal := false
	if !c.has[index] {
		// a source completing empty makes any combination impossible
		terminal = true
	} else {
		c.completions++
		terminal = c.completions == len(c.inners)
	}
	c.mu.Unlock()

	if terminal {
		c.done.Store(true)
		c.cancelSources()
	}
	c.drain()
}

func (c *combineLatestCoordinator[T, R]) innerError(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()

	c.done.Store(true)
	c.cancelSources()
	c.drain()
}

func (c *combineLatestCoordinator[T, R]) loadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *combineLatestCoordinator[T, R]) drain() {
	if c.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		r := c.requested.Load()
		var emitted int64

		for emitted != r {
			if c.checkTerminated(c.queue.IsEmpty()) {
				return
			}
			snapshot, ok := c.queue.Poll()
			if !ok {
				break
			}
			v, err := c.combiner(snapshot)
			if err != nil {
				c.cancelSources()
				c.queue.Clear()
				if !c.terminal.Swap(true) {
					c.actual.OnError(err)
				}
				return
			}
			c.actual.OnNext(v)
			emitted++
		}

		if emitted > 0 && r != Unbounded {
			c.requested.Add(-emitted)
		}

		if c.checkTerminated(c.queue.IsEmpty()) {
			return
		}

		missed = c.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (c *combineLatestCoordinator[T, R]) checkTerminated(empty bool) bool {
	if c.cancelled.Load() {
		c.queue.Clear()
		return true
	}
	if c.done.Load() {
		if e := c.loadErr(); e != nil {
			c.queue.Clear()
			if !c.terminal.Swap(true) {
				c.actual.OnError(e)
			}
			return true
		}
		if empty {
			if !c.terminal.Swap(true) {
				c.actual.OnComplete()
			}
			return true
		}
	}
	return false
}

type combineLatestInner[T, R any] struct {
	parent *combineLatestCoordinator[T, R]
	index  int
	ref    subscriptionRef
}

func (i *combineLatestInner[T, R]) OnSubscribe(s Subscription) {
	if i.ref.setOnce(s) {
		s.Request(Unbounded)
	}
}

func (i *combineLatestInner[T, R]) OnNext(v T) {
	i.parent.innerNext(i.index, v)
}

func (i *combineLatestInner[T, R]) OnError(err error) {
	i.parent.innerError(err)
}

func (i *combineLatestInner[T, R]) OnComplete() {
	i.parent.innerComplete(i.index)
}
