package flux

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddCapAccumulates(t *testing.T) {
	var requested atomic.Int64
	assert.Equal(t, int64(0), addCap(&requested, 5))
	assert.Equal(t, int64(5), requested.Load())
	assert.Equal(t, int64(5), addCap(&requested, 3))
	assert.Equal(t, int64(8), requested.Load())
}

func TestAddCapSaturates(t *testing.T) {
	var requested atomic.Int64
	requested.Store(Unbounded - 1)
	addCap(&requested, 10)
	assert.Equal(t, int64(Unbounded), requested.Load())
	addCap(&requested, 1)
	assert.Equal(t, int64(Unbounded), requested.Load())
}

func TestAddCapUnboundedIsAbsorbing(t *testing.T) {
	var requested atomic.Int64
	addCap(&requested, Unbounded)
	assert.Equal(t, int64(Unbounded), requested.Load())
	assert.Equal(t, int64(Unbounded), addCap(&requested, 7))
	assert.Equal(t, int64(Unbounded), requested.Load())
}

func TestProducedSubtracts(t *testing.T) {
	var requested atomic.Int64
	requested.Store(5)
	assert.Equal(t, int64(3), produced(&requested, 2))
	assert.Equal(t, int64(0), produced(&requested, 7))
}

func TestProducedKeepsUnbounded(t *testing.T) {
	var requested atomic.Int64
	requested.Store(Unbounded)
	assert.Equal(t, int64(Unbounded), produced(&requested, 100))
	assert.Equal(t, int64(Unbounded), requested.Load())
}
