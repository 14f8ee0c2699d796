package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/diffevo/monitor"
)

func TestWrapFunctionCountsAndRecords(t *testing.T) {
	assert := assert.New(t)

	mon := monitor.New(8)
	cost := func(x []float64) (float64, error) { return x[0] * 2, nil }

	counter, wrapped := WrapFunction(cost, nil, nil, mon)
	assert.Equal(0, counter.Load())

	v, err := wrapped([]float64{3})
	assert.NoError(err)
	assert.Equal(6.0, v)
	assert.Equal(1, counter.Load())
	assert.Equal(1, mon.Len())

	_, _ = wrapped([]float64{4})
	assert.Equal(2, counter.Load())
}

func TestWrapFunctionUsesExtraCost(t *testing.T) {
	assert := assert.New(t)
	extra := func(x []float64, e interface{}) (float64, error) {
		return x[0] + e.(float64), nil
	}

	counter, wrapped := WrapFunction(nil, extra, 10.0, nil)
	v, err := wrapped([]float64{5})
	assert.NoError(err)
	assert.Equal(15.0, v)
	assert.Equal(1, counter.Load())
}
