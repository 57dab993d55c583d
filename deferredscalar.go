package flux

import "sync/atomic"

const (
	sdsNoRequestNoValue int32 = iota
	sdsNoRequestHasValue
	sdsHasRequestNoValue
	sdsHasRequestHasValue
	sdsCancelled
)

// deferredScalar resolves the request-before-value / value-before-request
// race for operators that emit at most one value at completion time.
type deferredScalar[R any] struct {
	actual Subscriber[R]
	state  atomic.Int32
	value  R
}

func (d *deferredScalar[R]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		if d.state.Swap(sdsCancelled) != sdsCancelled {
			d.actual.OnError(err)
		}
		return
	}
	for {
		s := d.state.Load()
		switch s {
		case sdsHasRequestNoValue, sdsHasRequestHasValue, sdsCancelled:
			return
		case sdsNoRequestHasValue:
			if d.state.CompareAndSwap(s, sdsHasRequestHasValue) {
				d.actual.OnNext(d.value)
				d.actual.OnComplete()
			}
			return
		default:
			if d.state.CompareAndSwap(s, sdsHasRequestNoValue) {
				return
			}
		}
	}
}

func (d *deferredScalar[R]) Cancel() {
	d.state.Store(sdsCancelled)
}

// complete publishes the single value, emitting it right away when demand
// already exists.
func (d *deferredScalar[R]) complete(value R) {
	for {
		s := d.state.Load()
		switch s {
		case sdsNoRequestHasValue, sdsHasRequestHasValue, sdsCancelled:
			return
		case sdsHasRequestNoValue:
			if d.state.CompareAndSwap(s, sdsHasRequestHasValue) {
				d.actual.OnNext(value)
				d.actual.OnComplete()
			}
			return
		default:
			d.value = value
			if d.state.CompareAndSwap(s, sdsNoRequestHasValue) {
				return
			}
		}
	}
}

// fail terminates with an error unless a value was already delivered.
func (d *deferredScalar[R]) fail(err error) {
	old := d.state.Swap(sdsCancelled)
	if old == sdsCancelled || old == sdsHasRequestHasValue {
		onErrorDropped(err)
		return
	}
	d.actual.OnError(err)
}
