package flux

import "sync/atomic"

// OnBackpressureLatest runs the source unbounded and emits only the latest
// value when the downstream can't keep up.
func OnBackpressureLatest[T any](source Publisher[T]) Publisher[T] {
	return &latestPublisher[T]{source: source}
}

type latestPublisher[T any] struct {
	source Publisher[T]
}

func (p *latestPublisher[T]) Subscribe(s Subscriber[T]) {
	p.source.Subscribe(&latestSubscriber[T]{actual: s})
}

type latestSubscriber[T any] struct {
	actual    Subscriber[T]
	s         Subscription
	requested atomic.Int64
	wip       atomic.Int32
	err       error
	done      atomic.Bool
	cancelled atomic.Bool
	value     atomic.Pointer[T]
}

func (l *latestSubscriber[T]) OnSubscribe(s Subscription) {
	if !validateSubscription(l.s, s) {
		return
	}
	l.s = s
	l.actual.OnSubscribe(l)
	s.Request(Unbounded)
}

func (l *latestSubscriber[T]) OnNext(v T) {
	l.value.Store(&v)
	l.drain()
}

func (l *latestSubscriber[T]) OnError(err error) {
	l.err = err
	l.done.Store(true)
	l.drain()
}

func (l *latestSubscriber[T]) OnComplete() {
	l.done.Store(true)
	l.drain()
}

func (l *latestSubscriber[T]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		l.s.Cancel()
		l.OnError(err)
		return
	}
	addCap(&l.requested, n)
	l.drain()
}

func (l *latestSubscriber[T]) Cancel() {
	if !l.cancelled.Swap(true) {
		l.s.Cancel()
		if l.wip.Add(1) == 1 {
			l.value.Store(nil)
		}
	}
}

func (l *latestSubscriber[T]) drain() {
	if l.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		if l.checkTerminated(l.done.Load(), l.value.Load() == nil) {
			return
		}

		r := l.requested.Load()
		for r != 0 {
			d := l.done.Load()
			v := l.value.Swap(nil)
			empty := v == nil

			if l.checkTerminated(d, empty) {
				return
			}
			if empty {
				break
			}

			l.actual.OnNext(*v)

			if r != Unbounded {
				r = l.requested.Add(-1)
			}
		}

		if l.checkTerminated(l.done.Load(), l.value.Load() == nil) {
			return
		}

		missed = l.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (l *latestSubscriber[T]) checkTerminated(d, empty bool) bool {
	if l.cancelled.Load() {
		l.value.Store(nil)
		return true
	}
	if d {
		if e := l.err; e != nil {
			l.value.Store(nil)
			l.actual.OnError(e)
			return true
		}
		if empty {
			l.actual.OnComplete()
			return true
		}
	}
	return false
}
