package flux

// Never emits no signal after OnSubscribe.
func Never[T any]() Publisher[T] {
	return neverPublisher[T]{}
}

type neverPublisher[T any] struct{}

func (neverPublisher[T]) Subscribe(s Subscriber[T]) {
	s.OnSubscribe(EmptySubscription)
}
