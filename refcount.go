package flux

import "sync"

// RefCount connects the given connectable once n subscribers have attached
// and disconnects when the last of them leaves.
func RefCount[T any](source ConnectablePublisher[T], n int) Publisher[T] {
	if n <= 0 {
		panic(IllegalArgumentError("n > 0 required but it was %d", n))
	}
	return &refCountPublisher[T]{source: source, n: n}
}

type refCountPublisher[T any] struct {
	source ConnectablePublisher[T]
	n      int

	mu          sync.Mutex
	subscribers int
	disconnect  func()
}

func (p *refCountPublisher[T]) Subscribe(s Subscriber[T]) {
	inner := &refCountInner[T]{parent: p, actual: s}
	p.source.Subscribe(inner)

	p.mu.Lock()
	p.subscribers++
	connect := p.subscribers == p.n && p.disconnect == nil
	p.mu.Unlock()

	if connect {
		d := p.source.Connect()
		p.mu.Lock()
		if p.subscribers > 0 {
			p.disconnect = d
			p.mu.Unlock()
			return
		}
		// the connection ran to completion while we were connecting
		p.mu.Unlock()
		d()
	}
}

func (p *refCountPublisher[T]) release() {
	p.mu.Lock()
	p.subscribers--
	var d func()
	if p.subscribers == 0 {
		d = p.disconnect
		p.disconnect = nil
	}
	p.mu.Unlock()
	if d != nil {
		d()
	}
}

type refCountInner[T any] struct {
	parent *refCountPublisher[T]
	actual Subscriber[T]
	ref    subscriptionRef
	once   sync.Once
}

func (i *refCountInner[T]) OnSubscribe(s Subscription) {
	if i.ref.setOnce(s) {
		i.actual.OnSubscribe(i)
	}
}

func (i *refCountInner[T]) OnNext(v T) {
	i.actual.OnNext(v)
}

func (i *refCountInner[T]) OnError(err error) {
	i.actual.OnError(err)
	i.release()
}

func (i *refCountInner[T]) OnComplete() {
	i.actual.OnComplete()
	i.release()
}

func (i *refCountInner[T]) Request(n int64) {
	i.ref.deferredRequest(n)
}

func (i *refCountInner[T]) Cancel() {
	i.ref.terminate()
	i.release()
}

func (i *refCountInner[T]) release() {
	i.once.Do(i.parent.release)
}
