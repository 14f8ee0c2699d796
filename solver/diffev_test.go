package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/diffevo/rand"
)

func TestDiffevWithExplicitPoint(t *testing.T) {
	assert := assert.New(t)

	rng, err := rand.NewGenerator(11)
	assert.NoError(err)

	result, err := Diffev(sphere, Point([]float64{3, -2, 1}), DiffevOptions{
		NP:                   20,
		Strategy:             Best1Bin,
		CrossoverProbability: 0.9,
		ScalingFactor:        0.8,
		MaxIter:              -1,
		MaxFun:               -1,
		FTol:                 1e-8,
		Rng:                  rng,
	})
	assert.NoError(err)
	assert.Less(result.Fopt, 1e-6)
	assert.Equal(0, result.WarnFlag)
}

func TestDiffevWithRandomBoundsAndAllVecs(t *testing.T) {
	assert := assert.New(t)

	rng, err := rand.NewGenerator(12)
	assert.NoError(err)

	result, err := Diffev(sphere, RandomBounds([]float64{-5, -5}, []float64{5, 5}), DiffevOptions{
		NP:                   20,
		Strategy:             Rand1Bin,
		CrossoverProbability: 0.9,
		ScalingFactor:        0.8,
		MaxIter:              -1,
		MaxFun:               -1,
		FTol:                 1e-8,
		GTol:                 50,
		TrackAllVecs:         true,
		Rng:                  rng,
	})
	assert.NoError(err)
	assert.NotEmpty(result.AllVecs)
	assert.Equal(len(result.AllVecs), result.Iter)
}

func TestDiffevMaxFunWarnFlag(t *testing.T) {
	assert := assert.New(t)

	rng, err := rand.NewGenerator(13)
	assert.NoError(err)

	result, err := Diffev(sphere, Point([]float64{10, 10}), DiffevOptions{
		NP:       10,
		Strategy: Best1Bin,
		CrossoverProbability: 0.9,
		ScalingFactor:        0.8,
		MaxIter:              -1,
		MaxFun:               25,
		FTol:                 1e-300,
		Rng:                  rng,
	})
	assert.NoError(err)
	assert.Equal(1, result.WarnFlag)
}
