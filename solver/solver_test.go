package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/diffevo/collapse"
	"github.com/CraigKelly/diffevo/monitor"
	"github.com/CraigKelly/diffevo/rand"
	"github.com/CraigKelly/diffevo/termination"
)

func rosenbrock(x []float64) (float64, error) {
	return 100*math.Pow(x[1]-x[0]*x[0], 2) + math.Pow(1-x[0], 2), nil
}

func sphere(x []float64) (float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

func newTestSolver(t *testing.T, d, np int, seed int64) *AbstractSolver {
	rng, err := rand.NewGenerator(seed)
	assert.NoError(t, err)
	base, err := NewAbstractSolver(d, np, rng)
	assert.NoError(t, err)
	return base
}

func TestRosenbrock2D(t *testing.T) {
	assert := assert.New(t)

	base := newTestSolver(t, 2, 40, 1)
	assert.NoError(base.SetStrictRanges([]float64{-5, -5}, []float64{5, 5}))
	assert.NoError(base.SetRandomInitialPoints([]float64{-5, -5}, []float64{5, 5}))
	base.SetEvaluationLimits(2000, -1)

	opts := DefaultOptions()
	opts.Strategy = Best1Exp
	opts.CrossoverProbability = 0.9
	opts.ScalingFactor = 0.8

	seq := NewSequential(base, opts)
	_, err := seq.Solve(rosenbrock, termination.VTR(1e-6))
	assert.NoError(err)

	assert.Less(base.BestEnergy, 1e-6)
	assert.InDelta(1.0, base.BestVector[0], 1e-2)
	assert.InDelta(1.0, base.BestVector[1], 1e-2)
}

func TestSphere5D(t *testing.T) {
	assert := assert.New(t)

	base := newTestSolver(t, 5, 30, 2)
	lb := []float64{-10, -10, -10, -10, -10}
	ub := []float64{10, 10, 10, 10, 10}
	assert.NoError(base.SetStrictRanges(lb, ub))
	assert.NoError(base.SetRandomInitialPoints(lb, ub))

	opts := DefaultOptions()
	seq := NewSequential(base, opts)
	_, err := seq.Solve(sphere, termination.ChangeOverGeneration(1e-8, 50))
	assert.NoError(err)

	assert.Less(base.BestEnergy, 1e-6)
	for _, v := range base.BestVector {
		assert.Less(math.Abs(v), 1e-2)
	}
}

func TestParameterCollapse(t *testing.T) {
	assert := assert.New(t)

	base := newTestSolver(t, 6, 20, 3)
	base.StepMonitor = monitor.New(200)
	lb := make([]float64, 6)
	ub := make([]float64, 6)
	for i := range lb {
		lb[i], ub[i] = -5, 5
	}
	assert.NoError(base.SetStrictRanges(lb, ub))
	assert.NoError(base.SetRandomInitialPoints(lb, ub))
	base.SetEvaluationLimits(200, -1)

	opts := DefaultOptions()
	opts.Strategy = Best1Bin
	seq := NewSequential(base, opts)
	_, err := seq.Solve(sphere, noopTermination)
	assert.NoError(err)

	result, err := collapse.At(seq.StepMonitor, []float64{0, 0, 0, 0, 0, 0}, 1e-2, 50, nil)
	assert.NoError(err)
	for i := range result.Indices {
		assert.Less(math.Abs(base.BestVector[i]), 1e-1)
	}
}

func pairCost(x []float64) (float64, error) {
	sum := (x[0] - x[1]) * (x[0] - x[1])
	for i := 2; i < len(x); i++ {
		sum += x[i] * x[i]
	}
	return sum, nil
}

func TestPairCollapse(t *testing.T) {
	assert := assert.New(t)

	base := newTestSolver(t, 4, 30, 4)
	base.StepMonitor = monitor.New(200)
	lb := []float64{-5, -5, -5, -5}
	ub := []float64{5, 5, 5, 5}
	assert.NoError(base.SetStrictRanges(lb, ub))
	assert.NoError(base.SetRandomInitialPoints(lb, ub))
	base.SetEvaluationLimits(300, -1)

	opts := DefaultOptions()
	seq := NewSequential(base, opts)
	_, err := seq.Solve(pairCost, noopTermination)
	assert.NoError(err)

	result, err := collapse.As(seq.StepMonitor, false, 1e-1, 50, nil)
	assert.NoError(err)
	assert.True(result.Pairs[collapse.NewPair(0, 1)])
}

func TestInvariantGenerationEquivalence(t *testing.T) {
	assert := assert.New(t)

	build := func(mapper Mapper) *InvariantGeneration {
		base := newTestSolver(t, 3, 12, 99)
		lb := []float64{-5, -5, -5}
		ub := []float64{5, 5, 5}
		assert.NoError(base.SetStrictRanges(lb, ub))
		assert.NoError(base.SetRandomInitialPoints(lb, ub))
		base.SetEvaluationLimits(50, -1)
		opts := DefaultOptions()
		return NewInvariantGeneration(base, opts, mapper)
	}

	seq := build(SequentialMapper{})
	_, err := seq.Solve(sphere, noopTermination)
	assert.NoError(err)

	par := build(ErrgroupMapper{Limit: 4})
	_, err = par.Solve(sphere, noopTermination)
	assert.NoError(err)

	assert.Equal(seq.BestEnergy, par.BestEnergy)
	assert.Equal(seq.EnergyHistory, par.EnergyHistory)
	for i := range seq.Population {
		assert.Equal(seq.Population[i], par.Population[i])
	}
}

func TestTerminationReasonRoundtrip(t *testing.T) {
	assert := assert.New(t)

	base := newTestSolver(t, 4, 20, 5)
	base.StepMonitor = monitor.New(200)
	lb := []float64{-5, -5, -5, -5}
	ub := []float64{5, 5, 5, 5}
	assert.NoError(base.SetStrictRanges(lb, ub))
	assert.NoError(base.SetRandomInitialPoints(lb, ub))
	base.SetEvaluationLimits(300, -1)

	opts := DefaultOptions()
	seq := NewSequential(base, opts)

	term := termination.Or(
		termination.VTR(1e-3),
		termination.CollapseAt([]float64{0, 0, 0, 0}, 1e-2, 50),
	)
	reason, err := seq.Solve(sphere, term)
	assert.NoError(err)
	assert.NotEmpty(reason)

	decoded, derr := collapse.Decode(reason)
	if derr == nil {
		if r, ok := decoded["CollapseAt"]; ok {
			fresh, ferr := collapse.At(seq.StepMonitor, []float64{0, 0, 0, 0}, 1e-2, 50, nil)
			assert.NoError(ferr)
			assert.Equal(fresh.Indices, r.Indices)
		}
	}
}

func noopTermination(*termination.State) string { return "" }
