package flux

import "errors"

// PeekCallbacks taps the lifecycle signals of a sequence. All callbacks are
// optional. A non-nil error from a non-terminal callback cancels the
// upstream and travels downstream; a failing OnAfterTerminate is joined with
// the original terminal error and re-reported.
type PeekCallbacks[T any] struct {
	OnSubscribe      func(Subscription) error
	OnNext           func(T) error
	OnError          func(error)
	OnComplete       func() error
	OnAfterTerminate func() error
	OnRequest        func(int64) error
	OnCancel         func() error
}

// Peek invokes the given callbacks around the signals of the source. When
// the upstream grants fusion, OnNext fires from within Poll; a Sync-mode
// Poll draining to empty fires OnComplete and OnAfterTerminate exactly once.
func Peek[T any](source Publisher[T], callbacks PeekCallbacks[T]) Publisher[T] {
	return &peekPublisher[T]{source: source, cb: callbacks}
}

type peekPublisher[T any] struct {
	source Publisher[T]
	cb     PeekCallbacks[T]
}

func (p *peekPublisher[T]) Subscribe(s Subscriber[T]) {
	if cs, ok := s.(ConditionalSubscriber[T]); ok {
		sub := &peekConditionalSubscriber[T]{actualC: cs}
		sub.actual = cs
		sub.cb = p.cb
		p.source.Subscribe(sub)
		return
	}
	p.source.Subscribe(&peekSubscriber[T]{actual: s, cb: p.cb})
}

type peekSubscriber[T any] struct {
	actual Subscriber[T]
	cb     PeekCallbacks[T]
	s      Subscription
	qs     QueueSubscription[T]
	mode   int
	done   bool
}

func (p *peekSubscriber[T]) OnSubscribe(s Subscription) {
	p.onSubscribe(s, p)
}

// onSubscribe installs the upstream and hands self downstream, so that the
// conditional wrapper stays visible to conditional-aware sources.
func (p *peekSubscriber[T]) onSubscribe(s Subscription, self Subscription) {
	if !validateSubscription(p.s, s) {
		return
	}
	if p.cb.OnSubscribe != nil {
		if err := p.cb.OnSubscribe(s); err != nil {
			s.Cancel()
			p.actual.OnSubscribe(EmptySubscription)
			p.OnError(err)
			return
		}
	}
	p.s = s
	p.qs, _ = s.(QueueSubscription[T])
	p.actual.OnSubscribe(self)
}

func (p *peekSubscriber[T]) OnNext(v T) {
	if p.mode == FusionAsync {
		var zero T
		p.actual.OnNext(zero)
		return
	}
	if p.done {
		onNextDropped(v)
		return
	}
	if p.cb.OnNext != nil {
		if err := p.cb.OnNext(v); err != nil {
			p.Cancel()
			p.OnError(err)
			return
		}
	}
	p.actual.OnNext(v)
}

func (p *peekSubscriber[T]) OnError(err error) {
	if p.done {
		onErrorDropped(err)
		return
	}
	p.done = true
	if p.cb.OnError != nil {
		p.cb.OnError(err)
	}
	p.actual.OnError(err)
	p.afterTerminate(err)
}

func (p *peekSubscriber[T]) OnComplete() {
	if p.done {
		return
	}
	if p.cb.OnComplete != nil {
		if err := p.cb.OnComplete(); err != nil {
			p.OnError(err)
			return
		}
	}
	p.done = true
	p.actual.OnComplete()
	p.afterTerminate(nil)
}

func (p *peekSubscriber[T]) afterTerminate(original error) {
	if p.cb.OnAfterTerminate == nil {
		return
	}
	if err := p.cb.OnAfterTerminate(); err != nil {
		if original != nil {
			err = errors.Join(err, original)
		}
		if p.cb.OnError != nil {
			p.cb.OnError(err)
		}
		p.actual.OnError(err)
	}
}

func (p *peekSubscriber[T]) Request(n int64) {
	if p.cb.OnRequest != nil {
		if err := p.cb.OnRequest(n); err != nil {
			p.Cancel()
			p.OnError(err)
			return
		}
	}
	p.s.Request(n)
}

func (p *peekSubscriber[T]) Cancel() {
	if p.cb.OnCancel != nil {
		if err := p.cb.OnCancel(); err != nil {
			p.s.Cancel()
			p.OnError(err)
			return
		}
	}
	p.s.Cancel()
}

func (p *peekSubscriber[T]) RequestFusion(requested int) int {
	if p.qs == nil || requested&FusionThreadBarrier != 0 {
		p.mode = FusionNone
		return FusionNone
	}
	p.mode = p.qs.RequestFusion(requested)
	return p.mode
}

func (p *peekSubscriber[T]) Poll() (T, bool, error) {
	var zero T
	if p.qs == nil {
		return zero, false, nil
	}
	v, ok, err := p.qs.Poll()
	if err != nil {
		return zero, false, err
	}
	if ok {
		if p.cb.OnNext != nil {
			if cerr := p.cb.OnNext(v); cerr != nil {
				return zero, false, cerr
			}
		}
		return v, true, nil
	}
	if p.mode == FusionSync && !p.done {
		p.done = true
		if p.cb.OnComplete != nil {
			if cerr := p.cb.OnComplete(); cerr != nil {
				return zero, false, cerr
			}
		}
		if p.cb.OnAfterTerminate != nil {
			if cerr := p.cb.OnAfterTerminate(); cerr != nil {
				return zero, false, cerr
			}
		}
	}
	return zero, false, nil
}

func (p *peekSubscriber[T]) IsEmpty() bool {
	return p.qs == nil || p.qs.IsEmpty()
}

func (p *peekSubscriber[T]) Clear() {
	if p.qs != nil {
		p.qs.Clear()
	}
}

func (p *peekSubscriber[T]) Size() int {
	if p.qs == nil {
		return 0
	}
	return p.qs.Size()
}

func (p *peekSubscriber[T]) Drop() {
	if p.qs != nil {
		p.qs.Drop()
	}
}

type peekConditionalSubscriber[T any] struct {
	peekSubscriber[T]
	actualC ConditionalSubscriber[T]
}

func (p *peekConditionalSubscriber[T]) OnSubscribe(s Subscription) {
	p.onSubscribe(s, p)
}

// TryOnNext counts a value whose callback failed as produced; the failure
// itself travels via OnError.
func (p *peekConditionalSubscriber[T]) TryOnNext(v T) bool {
	if p.done {
		onNextDropped(v)
		return true
	}
	if p.cb.OnNext != nil {
		if err := p.cb.OnNext(v); err != nil {
			p.Cancel()
			p.OnError(err)
			return true
		}
	}
	return p.actualC.TryOnNext(v)
}
