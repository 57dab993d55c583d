package flux

import "sync/atomic"

type emptySubscription struct{}

func (emptySubscription) Request(int64) {}
func (emptySubscription) Cancel()       {}

// EmptySubscription is handed to subscribers that terminate before any
// demand can be expressed.
var EmptySubscription Subscription = emptySubscription{}

func emitEmptyComplete[T any](s Subscriber[T]) {
	s.OnSubscribe(EmptySubscription)
	s.OnComplete()
}

func emitEmptyError[T any](s Subscriber[T], err error) {
	s.OnSubscribe(EmptySubscription)
	s.OnError(err)
}

// validateRequest rejects non-positive demand. The caller surfaces the
// returned error via OnError.
func validateRequest(n int64) error {
	if n <= 0 {
		return errInvalidRequest(n)
	}
	return nil
}

// validateSubscription enforces single upstream assignment for operators
// holding the upstream in a plain field. A duplicate arrival is cancelled and
// reported to the dropped-signal sink.
func validateSubscription(current, next Subscription) bool {
	if next == nil {
		onErrorDropped(NullValueError("subscription must not be nil"))
		return false
	}
	if current != nil {
		next.Cancel()
		onErrorDropped(IllegalArgumentError("subscription already set"))
		return false
	}
	return true
}

// scalarSubscription delivers a single known value on first demand. It
// supports sync fusion.
type scalarSubscription[T any] struct {
	actual Subscriber[T]
	value  T
	once   atomic.Int32 // 0 idle, 1 consumed, 2 cancelled
}

func (s *scalarSubscription[T]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		if s.once.CompareAndSwap(0, 2) {
			s.actual.OnError(err)
		}
		return
	}
	if s.once.CompareAndSwap(0, 1) {
		s.actual.OnNext(s.value)
		if s.once.Load() != 2 {
			s.actual.OnComplete()
		}
	}
}

func (s *scalarSubscription[T]) Cancel() {
	s.once.Store(2)
}

func (s *scalarSubscription[T]) RequestFusion(requested int) int {
	if requested&FusionSync != 0 {
		return FusionSync
	}
	return FusionNone
}

func (s *scalarSubscription[T]) Poll() (T, bool, error) {
	if s.once.CompareAndSwap(0, 1) {
		return s.value, true, nil
	}
	var zero T
	return zero, false, nil
}

func (s *scalarSubscription[T]) IsEmpty() bool {
	return s.once.Load() != 0
}

func (s *scalarSubscription[T]) Clear() {
	s.once.Store(1)
}

func (s *scalarSubscription[T]) Size() int {
	if s.once.Load() == 0 {
		return 1
	}
	return 0
}

func (s *scalarSubscription[T]) Drop() {
	s.once.Store(1)
}

type refSlot struct {
	s Subscription
}

var refCancelled = new(refSlot)

// subscriptionRef is a single-assignment upstream subscription cell with
// empty, set and cancelled states, plus demand deferral for subscribers that
// may receive Request before the upstream arrives.
type subscriptionRef struct {
	slot     atomic.Pointer[refSlot]
	deferred atomic.Int64
}

func (r *subscriptionRef) get() Subscription {
	if p := r.slot.Load(); p != nil && p != refCancelled {
		return p.s
	}
	return nil
}

func (r *subscriptionRef) isCancelled() bool {
	return r.slot.Load() == refCancelled
}

// setOnce installs s into an empty cell. A cancelled cell cancels s; an
// occupied cell cancels s and reports the protocol violation.
func (r *subscriptionRef) setOnce(s Subscription) bool {
	if r.slot.CompareAndSwap(nil, &refSlot{s: s}) {
		return true
	}
	s.Cancel()
	if r.slot.Load() != refCancelled {
		onErrorDropped(IllegalArgumentError("subscription already set"))
	}
	return false
}

// replace swaps in s, cancelling the previous subscription if any. A
// cancelled cell cancels s instead.
func (r *subscriptionRef) replace(s Subscription) bool {
	next := &refSlot{s: s}
	for {
		cur := r.slot.Load()
		if cur == refCancelled {
			s.Cancel()
			return false
		}
		if r.slot.CompareAndSwap(cur, next) {
			if cur != nil && cur.s != nil {
				cur.s.Cancel()
			}
			return true
		}
	}
}

// terminate moves the cell to the cancelled state, cancelling the current
// subscription if one was set. Returns true the first time only.
func (r *subscriptionRef) terminate() bool {
	cur := r.slot.Swap(refCancelled)
	if cur == refCancelled {
		return false
	}
	if cur != nil && cur.s != nil {
		cur.s.Cancel()
	}
	return true
}

// deferredSetOnce installs s and drains any demand accumulated before the
// upstream arrived.
func (r *subscriptionRef) deferredSetOnce(s Subscription) bool {
	if !r.setOnce(s) {
		return false
	}
	if n := r.deferred.Swap(0); n != 0 {
		s.Request(n)
	}
	return true
}

// deferredRequest forwards demand to the upstream when present, accumulating
// it otherwise.
func (r *subscriptionRef) deferredRequest(n int64) {
	if s := r.get(); s != nil {
		s.Request(n)
		return
	}
	addCap(&r.deferred, n)
	if s := r.get(); s != nil {
		if m := r.deferred.Swap(0); m != 0 {
			s.Request(m)
		}
	}
}
