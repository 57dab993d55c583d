package flux

// HasElements emits whether the source signals at least one value. The
// upstream is cancelled as soon as the answer is known.
func HasElements[T any](source Publisher[T]) Publisher[bool] {
	return &hasElementsPublisher[T]{source: source}
}

type hasElementsPublisher[T any] struct {
	source Publisher[T]
}

func (p *hasElementsPublisher[T]) Subscribe(s Subscriber[bool]) {
	sub := &hasElementsSubscriber[T]{}
	sub.actual = s
	p.source.Subscribe(sub)
}

type hasElementsSubscriber[T any] struct {
	deferredScalar[bool]
	s Subscription
}

func (h *hasElementsSubscriber[T]) OnSubscribe(s Subscription) {
	if !validateSubscription(h.s, s) {
		return
	}
	h.s = s
	h.actual.OnSubscribe(h)
	s.Request(Unbounded)
}

func (h *hasElementsSubscriber[T]) OnNext(T) {
	h.s.Cancel()
	h.complete(true)
}

func (h *hasElementsSubscriber[T]) OnError(err error) {
	h.fail(err)
}

func (h *hasElementsSubscriber[T]) OnComplete() {
	h.complete(false)
}

func (h *hasElementsSubscriber[T]) Cancel() {
	h.deferredScalar.Cancel()
	h.s.Cancel()
}
