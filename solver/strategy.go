package solver

import (
	"github.com/CraigKelly/diffevo/rand"
	"github.com/CraigKelly/diffevo/vector"
)

// Strategy names one of the ten required mutation-strategy/crossover
// combinations from §4.2.
type Strategy int

const (
	Best1Exp Strategy = iota
	Rand1Exp
	RandToBest1Exp
	Best2Exp
	Rand2Exp
	Best1Bin
	Rand1Bin
	RandToBest1Bin
	Best2Bin
	Rand2Bin
)

func (s Strategy) String() string {
	switch s {
	case Best1Exp:
		return "Best1Exp"
	case Rand1Exp:
		return "Rand1Exp"
	case RandToBest1Exp:
		return "RandToBest1Exp"
	case Best2Exp:
		return "Best2Exp"
	case Rand2Exp:
		return "Rand2Exp"
	case Best1Bin:
		return "Best1Bin"
	case Rand1Bin:
		return "Rand1Bin"
	case RandToBest1Bin:
		return "RandToBest1Bin"
	case Best2Bin:
		return "Best2Bin"
	case Rand2Bin:
		return "Rand2Bin"
	default:
		return "Unknown"
	}
}

type baseKind int

const (
	baseBest baseKind = iota
	baseRand
	baseRandToBest
)

type strategySpec struct {
	base  baseKind
	diffs int // 1 or 2
	exp   bool
}

var strategyTable = map[Strategy]strategySpec{
	Best1Exp:       {baseBest, 1, true},
	Rand1Exp:       {baseRand, 1, true},
	RandToBest1Exp: {baseRandToBest, 1, true},
	Best2Exp:       {baseBest, 2, true},
	Rand2Exp:       {baseRand, 2, true},
	Best1Bin:       {baseBest, 1, false},
	Rand1Bin:       {baseRand, 1, false},
	RandToBest1Bin: {baseRandToBest, 1, false},
	Best2Bin:       {baseBest, 2, false},
	Rand2Bin:       {baseRand, 2, false},
}

// Mutate builds the trial vector for population member target using
// strategy, given the frozen population, the current best vector, the
// scaling factor f and crossover probability cr. rng is the sole source of
// randomness, so a run is reproducible from its seed.
func Mutate(strategy Strategy, population [][]float64, best []float64, target int, f, cr float64, rng *rand.Generator) []float64 {
	spec, ok := strategyTable[strategy]
	if !ok {
		panic("solver: unknown strategy")
	}

	np := len(population)
	needed := spec.diffs * 2
	if spec.base == baseRand {
		needed++ // also needs a distinct base member, r0
	}
	picks := rng.DistinctIntn(np, needed, target)

	var mutant []float64

	switch spec.base {
	case baseBest:
		mutant = vector.Clone(best)
	case baseRand:
		mutant = vector.Clone(population[picks[0]])
		picks = picks[1:]
	case baseRandToBest:
		mutant = vector.Clone(population[target])
		for i := range mutant {
			mutant[i] += f * (best[i] - population[target][i])
		}
	}

	for d := 0; d < spec.diffs; d++ {
		a, b := population[picks[2*d]], population[picks[2*d+1]]
		for i := range mutant {
			mutant[i] += f * (a[i] - b[i])
		}
	}

	if spec.exp {
		return exponentialCrossover(population[target], mutant, cr, rng)
	}
	return binomialCrossover(population[target], mutant, cr, rng)
}

// exponentialCrossover copies mutated components consecutively starting
// from a random index while a Bernoulli(cr) trial succeeds, copying at
// least one component, wrapping around at D.
func exponentialCrossover(target, mutant []float64, cr float64, rng *rand.Generator) []float64 {
	d := len(target)
	trial := vector.Clone(target)

	start := rng.Intn(d)
	i := start
	for n := 0; n < d; n++ {
		if n > 0 && rng.Float64() >= cr {
			break
		}
		trial[i] = mutant[i]
		i = (i + 1) % d
	}
	return trial
}

// binomialCrossover copies each mutated component independently with
// probability cr, forcing at least one component (chosen uniformly) to
// always come from the mutant.
func binomialCrossover(target, mutant []float64, cr float64, rng *rand.Generator) []float64 {
	d := len(target)
	trial := vector.Clone(target)
	forced := rng.Intn(d)

	for i := 0; i < d; i++ {
		if i == forced || rng.Float64() < cr {
			trial[i] = mutant[i]
		}
	}
	return trial
}
