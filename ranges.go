package flux

import "sync/atomic"

// Range emits count consecutive integers starting at start. The source is
// sync-fuseable and serves ConditionalSubscriber downstreams without
// scheduling overhead.
func Range(start, count int) Publisher[int] {
	if count < 0 {
		panic(IllegalArgumentError("count >= 0 required but it was %d", count))
	}
	return &rangePublisher{start: int64(start), end: int64(start) + int64(count)}
}

type rangePublisher struct {
	start, end int64
}

func (p *rangePublisher) Subscribe(s Subscriber[int]) {
	if p.start == p.end {
		emitEmptyComplete[int](s)
		return
	}
	if p.start+1 == p.end {
		s.OnSubscribe(&scalarSubscription[int]{actual: s, value: int(p.start)})
		return
	}
	if cs, ok := s.(ConditionalSubscriber[int]); ok {
		sub := &rangeSubscriptionConditional{actual: cs, end: p.end}
		sub.index.Store(p.start)
		cs.OnSubscribe(sub)
		return
	}
	sub := &rangeSubscription{actual: s, end: p.end}
	sub.index.Store(p.start)
	s.OnSubscribe(sub)
}

type rangeSubscription struct {
	actual    Subscriber[int]
	end       int64
	index     atomic.Int64
	cancelled atomic.Bool
	requested atomic.Int64
}

func (r *rangeSubscription) Request(n int64) {
	if err := validateRequest(n); err != nil {
		if !r.cancelled.Swap(true) {
			r.actual.OnError(err)
		}
		return
	}
	if addCap(&r.requested, n) == 0 {
		if n == Unbounded {
			r.fastPath()
		} else {
			r.slowPath(n)
		}
	}
}

func (r *rangeSubscription) Cancel() {
	r.cancelled.Store(true)
}

func (r *rangeSubscription) fastPath() {
	for i := r.index.Load(); i != r.end; i++ {
		if r.cancelled.Load() {
			return
		}
		r.actual.OnNext(int(i))
	}
	if r.cancelled.Load() {
		return
	}
	r.actual.OnComplete()
}

func (r *rangeSubscription) slowPath(n int64) {
	i := r.index.Load()
	var e int64
	for {
		if r.cancelled.Load() {
			return
		}
		for e != n && i != r.end {
			r.actual.OnNext(int(i))
			if r.cancelled.Load() {
				return
			}
			e++
			i++
		}
		if r.cancelled.Load() {
			return
		}
		if i == r.end {
			r.actual.OnComplete()
			return
		}
		n = r.requested.Load()
		if n == e {
			r.index.Store(i)
			n = r.requested.Add(-e)
			if n == 0 {
				return
			}
			e = 0
		}
	}
}

func (r *rangeSubscription) RequestFusion(requested int) int {
	if requested&FusionSync != 0 {
		return FusionSync
	}
	return FusionNone
}

func (r *rangeSubscription) Poll() (int, bool, error) {
	i := r.index.Load()
	if i == r.end {
		return 0, false, nil
	}
	r.index.Store(i + 1)
	return int(i), true, nil
}

func (r *rangeSubscription) IsEmpty() bool {
	return r.index.Load() == r.end
}

func (r *rangeSubscription) Clear() {
	r.index.Store(r.end)
}

func (r *rangeSubscription) Size() int {
	return int(r.end - r.index.Load())
}

func (r *rangeSubscription) Drop() {
	r.index.Add(1)
}

type rangeSubscriptionConditional struct {
	actual    ConditionalSubscriber[int]
	end       int64
	index     atomic.Int64
	cancelled atomic.Bool
	requested atomic.Int64
}

func (r *rangeSubscriptionConditional) Request(n int64) {
	if err := validateRequest(n); err != nil {
		if !r.cancelled.Swap(true) {
			r.actual.OnError(err)
		}
		return
	}
	if addCap(&r.requested, n) == 0 {
		if n == Unbounded {
			r.fastPath()
		} else {
			r.slowPath(n)
		}
	}
}

func (r *rangeSubscriptionConditional) Cancel() {
	r.cancelled.Store(true)
}

func (r *rangeSubscriptionConditional) fastPath() {
	for i := r.index.Load(); i != r.end; i++ {
		if r.cancelled.Load() {
			return
		}
		r.actual.TryOnNext(int(i))
	}
	if r.cancelled.Load() {
		return
	}
	r.actual.OnComplete()
}

func (r *rangeSubscriptionConditional) slowPath(n int64) {
	i := r.index.Load()
	var e int64
	for {
		if r.cancelled.Load() {
			return
		}
		for e != n && i != r.end {
			accepted := r.actual.TryOnNext(int(i))
			if r.cancelled.Load() {
				return
			}
			if accepted {
				e++
			}
			i++
		}
		if r.cancelled.Load() {
			return
		}
		if i == r.end {
			r.actual.OnComplete()
			return
		}
		n = r.requested.Load()
		if n == e {
			r.index.Store(i)
			n = r.requested.Add(-e)
			if n == 0 {
				return
			}
			e = 0
		}
	}
}

func (r *rangeSubscriptionConditional) RequestFusion(requested int) int {
	if requested&FusionSync != 0 {
		return FusionSync
	}
	return FusionNone
}

func (r *rangeSubscriptionConditional) Poll() (int, bool, error) {
	i := r.index.Load()
	if i == r.end {
		return 0, false, nil
	}
	r.index.Store(i + 1)
	return int(i), true, nil
}

func (r *rangeSubscriptionConditional) IsEmpty() bool {
	return r.index.Load() == r.end
}

func (r *rangeSubscriptionConditional) Clear() {
	r.index.Store(r.end)
}

func (r *rangeSubscriptionConditional) Size() int {
	return int(r.end - r.index.Load())
}

func (r *rangeSubscriptionConditional) Drop() {
	r.index.Add(1)
}
