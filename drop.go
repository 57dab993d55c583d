package flux

import "sync/atomic"

// OnBackpressureDrop runs the source unbounded and silently discards values
// the downstream has no demand for.
func OnBackpressureDrop[T any](source Publisher[T]) Publisher[T] {
	return OnBackpressureDropWith[T](source, nil)
}

// OnBackpressureDropWith invokes onDrop for every discarded value. An error
// returned by onDrop cancels the upstream and travels downstream.
func OnBackpressureDropWith[T any](source Publisher[T], onDrop func(T) error) Publisher[T] {
	return &dropPublisher[T]{source: source, onDrop: onDrop}
}

type dropPublisher[T any] struct {
	source Publisher[T]
	onDrop func(T) error
}

func (p *dropPublisher[T]) Subscribe(s Subscriber[T]) {
	p.source.Subscribe(&dropSubscriber[T]{actual: s, onDrop: p.onDrop})
}

type dropSubscriber[T any] struct {
	actual    Subscriber[T]
	onDrop    func(T) error
	s         Subscription
	requested atomic.Int64
	done      bool
}

func (d *dropSubscriber[T]) OnSubscribe(s Subscription) {
	if !validateSubscription(d.s, s) {
		return
	}
	d.s = s
	d.actual.OnSubscribe(d)
	s.Request(Unbounded)
}

func (d *dropSubscriber[T]) OnNext(v T) {
	if d.done {
		if d.onDrop != nil {
			if err := d.onDrop(v); err != nil {
				onNextDropped(v)
			}
			return
		}
		onNextDropped(v)
		return
	}

	if d.requested.Load() != 0 {
		d.actual.OnNext(v)
		produced(&d.requested, 1)
		return
	}

	if d.onDrop != nil {
		if err := d.onDrop(v); err != nil {
			d.Cancel()
			d.OnError(err)
		}
	}
}

func (d *dropSubscriber[T]) OnError(err error) {
	if d.done {
		onErrorDropped(err)
		return
	}
	d.done = true
	d.actual.OnError(err)
}

func (d *dropSubscriber[T]) OnComplete() {
	if d.done {
		return
	}
	d.done = true
	d.actual.OnComplete()
}

func (d *dropSubscriber[T]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		d.Cancel()
		d.OnError(err)
		return
	}
	addCap(&d.requested, n)
}

func (d *dropSubscriber[T]) Cancel() {
	d.s.Cancel()
}
