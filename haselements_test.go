package flux

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasElementsTrue(t *testing.T) {
	source := newManualPublisher[int]()
	ts := newTestSubscriber[bool](Unbounded)
	HasElements[int](source).Subscribe(ts)

	source.subscriber.OnNext(42)

	ts.assertValues(t, true)
	ts.assertComplete(t)
	assert.Equal(t, 1, source.probe.Cancels())
}

func TestHasElementsFalse(t *testing.T) {
	values, err := Collect(context.Background(), HasElements(Range(0, 0)))
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, values)
}

func TestHasElementsWaitsForDemand(t *testing.T) {
	ts := newTestSubscriber[bool](0)
	HasElements(Range(1, 3)).Subscribe(ts)

	ts.assertNoValues(t)

	ts.request(1)
	ts.assertValues(t, true)
	ts.assertComplete(t)
}

func TestHasElementsError(t *testing.T) {
	boom := errors.New("boom")
	source := newManualPublisher[int]()
	ts := newTestSubscriber[bool](Unbounded)
	HasElements[int](source).Subscribe(ts)

	source.subscriber.OnError(boom)
	ts.assertError(t, boom)
}
