package flux

// Fusion mode mask negotiated once per subscription via RequestFusion.
const (
	// FusionNone disables fusion; elements travel the push path.
	FusionNone = 0
	// FusionSync marks a fully known source: Poll returns ok == false exactly
	// when the stream completes, and no terminal push signals are used.
	FusionSync = 1
	// FusionAsync marks a concurrently filled queue: terminal signals still
	// arrive on the push path, and the producer wakes the consumer by calling
	// OnNext with the zero value of T.
	FusionAsync = 2
	FusionAny   = FusionSync | FusionAsync
	// FusionThreadBarrier forbids sync fusion across a thread boundary.
	FusionThreadBarrier = 4
)

// QueueSubscription is the fusion side-channel: a subscription that
// additionally exposes a queue interface so adjacent stages can exchange
// elements by pulling instead of pushing.
//
// A non-nil error from Poll is the pull-path equivalent of OnError on the
// consuming stage.
type QueueSubscription[T any] interface {
	Subscription

	RequestFusion(requested int) int
	Poll() (T, bool, error)
	IsEmpty() bool
	Clear()
	Size() int
	Drop()
}

// ConditionalSubscriber is an optional downstream capability. TryOnNext
// reports whether the value was accepted; sources use the result to decide
// whether the element counted against demand.
type ConditionalSubscriber[T any] interface {
	Subscriber[T]

	TryOnNext(T) bool
}
