package flux

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeZero(t *testing.T) {
	source := newManualPublisher[int]()
	ts := newTestSubscriber[int](Unbounded)
	Take[int](source, 0).Subscribe(ts)

	ts.assertNoValues(t)
	ts.assertComplete(t)
	assert.Equal(t, 1, source.probe.Cancels())
}

func TestTakeLimitsSource(t *testing.T) {
	values, err := Collect(context.Background(), Take(Range(1, 5), 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestTakeMoreThanSource(t *testing.T) {
	values, err := Collect(context.Background(), Take(Range(1, 3), 10))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestTakeBackpressure(t *testing.T) {
	ts := newTestSubscriber[int](2)
	Take(Range(1, 10), 5).Subscribe(ts)
	ts.assertValues(t, 1, 2)
	ts.assertNotTerminated(t)

	ts.request(3)
	ts.assertValues(t, 1, 2, 3, 4, 5)
	ts.assertComplete(t)
}

func TestTakeRequestPromotion(t *testing.T) {
	source := newManualPublisher[int]()
	ts := newTestSubscriber[int](10)
	Take[int](source, 3).Subscribe(ts)

	// the first demand covering n is promoted to unbounded
	assert.Equal(t, []int64{Unbounded}, source.probe.Requests())
}

func TestTakeSmallFirstRequestIsForwarded(t *testing.T) {
	source := newManualPublisher[int]()
	ts := newTestSubscriber[int](2)
	Take[int](source, 5).Subscribe(ts)
	ts.request(7)

	assert.Equal(t, []int64{2, 7}, source.probe.Requests())
}

func TestTakeNegativePanics(t *testing.T) {
	assert.Panics(t, func() { Take(Range(0, 1), -1) })
}

func TestTakeInvalidRequest(t *testing.T) {
	source := newManualPublisher[int]()
	ts := newTestSubscriber[int](0)
	Take[int](source, 3).Subscribe(ts)
	ts.request(0)

	errs := ts.Errors()
	require.Len(t, errs, 1)
	assert.IsType(t, IllegalArgumentErr{}, errs[0])
	assert.Equal(t, 1, source.probe.Cancels())
}

func TestTakeDropsAfterDone(t *testing.T) {
	var dropped []interface{}
	SetNextDroppedHook(func(v interface{}) { dropped = append(dropped, v) })
	defer ResetDroppedHooks()

	source := newManualPublisher[int]()
	ts := newTestSubscriber[int](Unbounded)
	Take[int](source, 1).Subscribe(ts)

	source.subscriber.OnNext(1)
	source.subscriber.OnNext(2)

	ts.assertValues(t, 1)
	ts.assertComplete(t)
	assert.Equal(t, []interface{}{2}, dropped)
}
