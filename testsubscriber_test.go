package flux

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testSubscriber records every signal it receives. A positive initial demand
// is requested from within OnSubscribe.
type testSubscriber[T any] struct {
	initial int64

	mu          sync.Mutex
	sub         Subscription
	values      []T
	errs        []error
	completions int
}

func newTestSubscriber[T any](initial int64) *testSubscriber[T] {
	return &testSubscriber[T]{initial: initial}
}

func (ts *testSubscriber[T]) OnSubscribe(s Subscription) {
	ts.mu.Lock()
	ts.sub = s
	ts.mu.Unlock()
	if ts.initial > 0 {
		s.Request(ts.initial)
	}
}

func (ts *testSubscriber[T]) OnNext(v T) {
	ts.mu.Lock()
	ts.values = append(ts.values, v)
	ts.mu.Unlock()
}

func (ts *testSubscriber[T]) OnError(err error) {
	ts.mu.Lock()
	ts.errs = append(ts.errs, err)
	ts.mu.Unlock()
}

func (ts *testSubscriber[T]) OnComplete() {
	ts.mu.Lock()
	ts.completions++
	ts.mu.Unlock()
}

func (ts *testSubscriber[T]) subscription() Subscription {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.sub
}

func (ts *testSubscriber[T]) request(n int64) {
	ts.subscription().Request(n)
}

func (ts *testSubscriber[T]) cancel() {
	ts.subscription().Cancel()
}

func (ts *testSubscriber[T]) Values() []T {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]T(nil), ts.values...)
}

func (ts *testSubscriber[T]) Errors() []error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]error(nil), ts.errs...)
}

func (ts *testSubscriber[T]) Completions() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.completions
}

func (ts *testSubscriber[T]) assertValues(t *testing.T, expected ...T) {
	t.Helper()
	assert.Equal(t, expected, ts.Values())
}

func (ts *testSubscriber[T]) assertNoValues(t *testing.T) {
	t.Helper()
	assert.Empty(t, ts.Values())
}

func (ts *testSubscriber[T]) assertComplete(t *testing.T) {
	t.Helper()
	assert.Equal(t, 1, ts.Completions())
	assert.Empty(t, ts.Errors())
}

func (ts *testSubscriber[T]) assertNotTerminated(t *testing.T) {
	t.Helper()
	assert.Zero(t, ts.Completions())
	assert.Empty(t, ts.Errors())
}

func (ts *testSubscriber[T]) assertError(t *testing.T, expected error) {
	t.Helper()
	errs := ts.Errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, expected, errs[0])
	}
	assert.Zero(t, ts.Completions())
}

// conditionalTestSubscriber accepts only values matching the predicate.
type conditionalTestSubscriber[T any] struct {
	*testSubscriber[T]
	accept func(T) bool
}

func newConditionalTestSubscriber[T any](initial int64, accept func(T) bool) *conditionalTestSubscriber[T] {
	return &conditionalTestSubscriber[T]{
		testSubscriber: newTestSubscriber[T](initial),
		accept:         accept,
	}
}

func (cs *conditionalTestSubscriber[T]) TryOnNext(v T) bool {
	if cs.accept(v) {
		cs.OnNext(v)
		return true
	}
	return false
}

// probeSubscription records the demand and cancels it receives.
type probeSubscription struct {
	mu       sync.Mutex
	requests []int64
	cancels  int
}

func (p *probeSubscription) Request(n int64) {
	p.mu.Lock()
	p.requests = append(p.requests, n)
	p.mu.Unlock()
}

func (p *probeSubscription) Cancel() {
	p.mu.Lock()
	p.cancels++
	p.mu.Unlock()
}

func (p *probeSubscription) Requests() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.requests...)
}

func (p *probeSubscription) Cancels() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancels
}

// manualPublisher hands its probe to every subscriber and keeps the last
// subscriber for direct signalling.
type manualPublisher[T any] struct {
	probe      *probeSubscription
	subscriber Subscriber[T]
	subscribes int
}

func newManualPublisher[T any]() *manualPublisher[T] {
	return &manualPublisher[T]{probe: &probeSubscription{}}
}

func (m *manualPublisher[T]) Subscribe(s Subscriber[T]) {
	m.subscriber = s
	m.subscribes++
	s.OnSubscribe(m.probe)
}
