package flux

import (
	"sync"
	"sync/atomic"
)

// NewDirectProcessor returns a processor that forwards signals to its
// current subscribers without buffering across subscribers. Delivery to each
// subscriber is serialized by a per-subscriber WIP drain, so producers may
// signal from any goroutine. A subscriber without outstanding demand
// receives an overflow error.
func NewDirectProcessor[T any]() Processor[T, T] {
	return &directProcessor[T]{}
}

type directProcessor[T any] struct {
	mu   sync.Mutex
	subs []*directInner[T]
	done bool
	err  error
}

func (d *directProcessor[T]) OnSubscribe(s Subscription) {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done {
		s.Cancel()
		return
	}
	s.Request(Unbounded)
}

func (d *directProcessor[T]) Subscribe(s Subscriber[T]) {
	inner := &directInner[T]{
		parent: d,
		actual: s,
		queue:  newMpscQueue[T](config().GetIntDefault("flux.prefetch", 32)),
	}
	d.mu.Lock()
	if d.done {
		err := d.err
		d.mu.Unlock()
		if err != nil {
			emitEmptyError(s, err)
			return
		}
		emitEmptyComplete(s)
		return
	}
	d.subs = append(d.subs, inner)
	d.mu.Unlock()
	s.OnSubscribe(inner)
}

func (d *directProcessor[T]) OnNext(v T) {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		onNextDropped(v)
		return
	}
	subs := make([]*directInner[T], len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, inner := range subs {
		inner.next(v)
	}
}

func (d *directProcessor[T]) OnError(err error) {
	subs, first := d.terminate(err)
	if !first {
		onErrorDropped(err)
		return
	}
	for _, inner := range subs {
		inner.error(err)
	}
}

func (d *directProcessor[T]) OnComplete() {
	subs, first := d.terminate(nil)
	if !first {
		return
	}
	for _, inner := range subs {
		inner.complete()
	}
}

func (d *directProcessor[T]) terminate(err error) ([]*directInner[T], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return nil, false
	}
	d.done = true
	d.err = err
	subs := d.subs
	d.subs = nil
	return subs, true
}

func (d *directProcessor[T]) remove(inner *directInner[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s == inner {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// directInner serializes downstream delivery with the canonical WIP drain;
// values arriving from any producer goroutine are queued and emitted by the
// single active drainer.
type directInner[T any] struct {
	parent *directProcessor[T]
	actual Subscriber[T]
	queue  *mpscQueue[T]

	requested atomic.Int64
	wip       atomic.Int32
	cancelled atomic.Bool
	done      atomic.Bool
	terminal  atomic.Bool

	errMu sync.Mutex
	err   error
}

func (i *directInner[T]) next(v T) {
	if i.cancelled.Load() {
		onNextDropped(v)
		return
	}
	i.queue.Offer(v)
	i.drain()
}

func (i *directInner[T]) error(err error) {
	i.errMu.Lock()
	if i.err == nil {
		i.err = err
	}
	i.errMu.Unlock()
	i.done.Store(true)
	i.drain()
}

func (i *directInner[T]) complete() {
	i.done.Store(true)
	i.drain()
}

func (i *directInner[T]) loadErr() error {
	i.errMu.Lock()
	defer i.errMu.Unlock()
	return i.err
}

func (i *directInner[T]) drain() {
	if i.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		for {
			empty := i.queue.IsEmpty()
			if i.checkTerminated(empty) {
				return
			}
			if empty {
				break
			}
			if i.requested.Load() == 0 {
				i.overflow()
				return
			}
			v, ok := i.queue.Poll()
			if !ok {
				break
			}
			i.actual.OnNext(v)
			produced(&i.requested, 1)
		}
		missed = i.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

// overflow runs inside the drain, so the error is serialized against any
// in-flight OnNext.
func (i *directInner[T]) overflow() {
	i.queue.Clear()
	i.cancelled.Store(true)
	i.parent.remove(i)
	if !i.terminal.Swap(true) {
		i.actual.OnError(OverflowError("can't deliver value due to lack of requests"))
	}
}

func (i *directInner[T]) checkTerminated(empty bool) bool {
	if i.cancelled.Load() {
		i.queue.Clear()
		return true
	}
	if i.done.Load() {
		if e := i.loadErr(); e != nil {
			i.queue.Clear()
			if !i.terminal.Swap(true) {
				i.actual.OnError(e)
			}
			return true
		}
		if empty {
			if !i.terminal.Swap(true) {
				i.actual.OnComplete()
			}
			return true
		}
	}
	return false
}

func (i *directInner[T]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		i.parent.remove(i)
		i.error(err)
		return
	}
	addCap(&i.requested, n)
	i.drain()
}

func (i *directInner[T]) Cancel() {
	if !i.cancelled.Swap(true) {
		i.parent.remove(i)
		if i.wip.Add(1) == 1 {
			i.queue.Clear()
		}
	}
}
