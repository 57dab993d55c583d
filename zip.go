package flux

import "reflect"

// Iterator yields elements of an iterable sequence. HasNext probes for a
// further element without consuming it.
type Iterator[U any] interface {
	HasNext() (bool, error)
	Next() (U, error)
}

// Iterable produces a fresh Iterator per subscription.
type Iterable[U any] func() (Iterator[U], error)

// SliceIterable adapts a slice into an Iterable.
func SliceIterable[U any](values []U) Iterable[U] {
	return func() (Iterator[U], error) {
		return &sliceIterator[U]{values: values}, nil
	}
}

type sliceIterator[U any] struct {
	values []U
	index  int
}

func (it *sliceIterator[U]) HasNext() (bool, error) {
	return it.index < len(it.values), nil
}

func (it *sliceIterator[U]) Next() (U, error) {
	v := it.values[it.index]
	it.index++
	return v, nil
}

// ZipWithIterable pairwise combines elements of the source and an iterable
// sequence through the zipper. The iterator is acquired and probed before
// subscribing: an empty iterable completes immediately, a failing or nil
// iterator errors immediately.
func ZipWithIterable[T, U, R any](source Publisher[T], other Iterable[U], zipper func(T, U) (R, error)) Publisher[R] {
	return &zipIterablePublisher[T, U, R]{source: source, other: other, zipper: zipper}
}

type zipIterablePublisher[T, U, R any] struct {
	source Publisher[T]
	other  Iterable[U]
	zipper func(T, U) (R, error)
}

func (p *zipIterablePublisher[T, U, R]) Subscribe(s Subscriber[R]) {
	it, err := p.other()
	if err != nil {
		emitEmptyError[R](s, err)
		return
	}
	if it == nil {
		emitEmptyError[R](s, NullValueError("the iterable produced a nil iterator"))
		return
	}

	b, err := it.HasNext()
	if err != nil {
		emitEmptyError[R](s, err)
		return
	}
	if !b {
		emitEmptyComplete[R](s)
		return
	}

	p.source.Subscribe(&zipIterableSubscriber[T, U, R]{actual: s, it: it, zipper: p.zipper})
}

type zipIterableSubscriber[T, U, R any] struct {
	actual Subscriber[R]
	it     Iterator[U]
	zipper func(T, U) (R, error)
	s      Subscription
	done   bool
}

func (z *zipIterableSubscriber[T, U, R]) OnSubscribe(s Subscription) {
	if !validateSubscription(z.s, s) {
		return
	}
	z.s = s
	z.actual.OnSubscribe(z)
}

func (z *zipIterableSubscriber[T, U, R]) OnNext(t T) {
	if z.done {
		onNextDropped(t)
		return
	}

	u, err := z.it.Next()
	if err != nil {
		z.terminate(err)
		return
	}

	r, err := z.zipper(t, u)
	if err != nil {
		z.terminate(err)
		return
	}
	if isNilValue(r) {
		z.terminate(NullValueError("the zipper returned a nil value"))
		return
	}

	z.actual.OnNext(r)

	b, err := z.it.HasNext()
	if err != nil {
		z.terminate(err)
		return
	}
	if !b {
		z.done = true
		z.s.Cancel()
		z.actual.OnComplete()
	}
}

func (z *zipIterableSubscriber[T, U, R]) terminate(err error) {
	if z.done {
		onErrorDropped(err)
		return
	}
	z.done = true
	z.s.Cancel()
	z.actual.OnError(err)
}

func (z *zipIterableSubscriber[T, U, R]) OnError(err error) {
	if z.done {
		onErrorDropped(err)
		return
	}
	z.done = true
	z.actual.OnError(err)
}

func (z *zipIterableSubscriber[T, U, R]) OnComplete() {
	if z.done {
		return
	}
	z.done = true
	z.actual.OnComplete()
}

func (z *zipIterableSubscriber[T, U, R]) Request(n int64) {
	if err := validateRequest(n); err != nil {
		z.terminate(err)
		return
	}
	z.s.Request(n)
}

func (z *zipIterableSubscriber[T, U, R]) Cancel() {
	z.s.Cancel()
}

// isNilValue reports whether v boxes a nil of a nilable kind. Value kinds
// have no nil and always pass.
func isNilValue(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
