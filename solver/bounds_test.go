package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func identityCost(calls *int) CostFunc {
	return func(x []float64) (float64, error) {
		*calls++
		return x[0], nil
	}
}

func TestWrapBoundsHardRejectsWithoutCalling(t *testing.T) {
	assert := assert.New(t)
	calls := 0
	f := WrapBoundsHard(identityCost(&calls), []float64{0}, []float64{1})

	v, err := f([]float64{5})
	assert.NoError(err)
	assert.True(math.IsInf(v, 1))
	assert.Equal(0, calls)

	v, err = f([]float64{0.5})
	assert.NoError(err)
	assert.Equal(0.5, v)
	assert.Equal(1, calls)
}

func TestWrapBoundsClipProjectsThenCalls(t *testing.T) {
	assert := assert.New(t)
	calls := 0
	f := WrapBoundsClip(identityCost(&calls), []float64{0}, []float64{1})

	v, err := f([]float64{5})
	assert.NoError(err)
	assert.Equal(1.0, v)
	assert.Equal(1, calls)
}

func TestWrapBoundsNilIsNoop(t *testing.T) {
	assert := assert.New(t)
	calls := 0
	f := WrapBoundsHard(identityCost(&calls), nil, nil)
	v, err := f([]float64{5})
	assert.NoError(err)
	assert.Equal(5.0, v)
}
