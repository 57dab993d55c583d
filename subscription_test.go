package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, validateRequest(1))
	assert.NoError(t, validateRequest(Unbounded))
	assert.Error(t, validateRequest(0))
	assert.Error(t, validateRequest(-5))
	assert.IsType(t, IllegalArgumentErr{}, validateRequest(0))
}

func TestSubscriptionRefSetOnce(t *testing.T) {
	var violations []error
	SetErrorDroppedHook(func(err error) { violations = append(violations, err) })
	defer ResetDroppedHooks()

	first := &probeSubscription{}
	second := &probeSubscription{}

	var ref subscriptionRef
	assert.True(t, ref.setOnce(first))
	assert.Equal(t, Subscription(first), ref.get())

	assert.False(t, ref.setOnce(second))
	assert.Equal(t, 1, second.Cancels())
	assert.Zero(t, first.Cancels())
	assert.Len(t, violations, 1)
}

func TestSubscriptionRefTerminate(t *testing.T) {
	first := &probeSubscription{}

	var ref subscriptionRef
	ref.setOnce(first)

	assert.True(t, ref.terminate())
	assert.Equal(t, 1, first.Cancels())
	assert.False(t, ref.terminate())
	assert.Equal(t, 1, first.Cancels())
	assert.True(t, ref.isCancelled())
}

func TestSubscriptionRefSetAfterTerminate(t *testing.T) {
	var violations []error
	SetErrorDroppedHook(func(err error) { violations = append(violations, err) })
	defer ResetDroppedHooks()

	var ref subscriptionRef
	ref.terminate()

	late := &probeSubscription{}
	assert.False(t, ref.setOnce(late))
	assert.Equal(t, 1, late.Cancels())
	assert.Empty(t, violations)
}

func TestSubscriptionRefReplace(t *testing.T) {
	first := &probeSubscription{}
	second := &probeSubscription{}

	var ref subscriptionRef
	ref.setOnce(first)
	assert.True(t, ref.replace(second))
	assert.Equal(t, 1, first.Cancels())
	assert.Equal(t, Subscription(second), ref.get())

	ref.terminate()
	third := &probeSubscription{}
	assert.False(t, ref.replace(third))
	assert.Equal(t, 1, third.Cancels())
}

func TestSubscriptionRefDeferredRequest(t *testing.T) {
	var ref subscriptionRef
	ref.deferredRequest(5)
	ref.deferredRequest(3)

	probe := &probeSubscription{}
	assert.True(t, ref.deferredSetOnce(probe))
	assert.Equal(t, []int64{8}, probe.Requests())

	ref.deferredRequest(2)
	assert.Equal(t, []int64{8, 2}, probe.Requests())
}
