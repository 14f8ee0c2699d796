package solver

import (
	"github.com/CraigKelly/diffevo/termination"
)

// InvariantGeneration is the double-buffered DE solver from §4.7: the
// entire generation is frozen while all NP trials are built, the cost
// evaluation for all of them is delegated to Mapper (possibly in parallel),
// and replacements are applied only after every evaluation completes.
type InvariantGeneration struct {
	*AbstractSolver
	Options Options
	Mapper  Mapper
}

// NewInvariantGeneration builds an InvariantGeneration solver. mapper may be
// nil, in which case SequentialMapper{} is used.
func NewInvariantGeneration(base *AbstractSolver, opts Options, mapper Mapper) *InvariantGeneration {
	if mapper == nil {
		mapper = SequentialMapper{}
	}
	return &InvariantGeneration{AbstractSolver: base, Options: opts, Mapper: mapper}
}

// Solve runs generations the same way Sequential.Solve does, except the
// whole generation's trials are built against the frozen population, mapped
// for cost in one batch, and only then applied.
func (s *InvariantGeneration) Solve(cost CostFunc, term termination.Predicate) (string, error) {
	clipCost := WrapBoundsClip(cost, s.LB, s.UB)
	if err := s.initializeEnergies(clipCost); err != nil {
		return "", err
	}

	counter, counted := WrapFunction(cost, nil, nil, s.EvalMonitor)
	s.fcalls = counter
	wrapped := WrapBoundsHard(counted, s.LB, s.UB)

	maxIter, maxFun := s.resolvedLimits()
	log := s.Options.logger()

	reason := ""
	for gen := 0; gen < maxIter; gen++ {
		s.StepMonitor.Record(s.BestVector, s.BestEnergy)
		if s.Options.Verbose {
			log.Infof("generation %d best=%g", gen, s.BestEnergy)
		}

		if s.fcalls.Load() >= maxFun {
			break
		}

		frozen := make([][]float64, len(s.Population))
		for i := range s.Population {
			frozen[i] = append([]float64{}, s.Population[i]...)
		}

		trials := make([][]float64, s.NP)
		for i := 0; i < s.NP; i++ {
			trials[i] = Mutate(s.Options.Strategy, frozen, s.BestVector, i, s.Options.ScalingFactor, s.Options.CrossoverProbability, s.rng)
		}

		energies, err := s.Mapper.Map(trials, wrapped)
		if err != nil {
			return "", err
		}

		for i := 0; i < s.NP; i++ {
			if energies[i] < s.Energies[i] {
				s.Population[i] = trials[i]
				s.Energies[i] = energies[i]
				s.Genealogy[i] = append(s.Genealogy[i], trials[i])
				s.updateBest(trials[i], energies[i])
			}
		}

		s.EnergyHistory = append(s.EnergyHistory, s.BestEnergy)
		if s.Options.UserCallback != nil {
			s.Options.UserCallback(s.BestVector)
		}
		s.Generations = gen + 1

		state := &termination.State{
			BestEnergy:    s.BestEnergy,
			BestVector:    s.BestVector,
			EnergyHistory: s.EnergyHistory,
			Generations:   s.Generations,
			FCalls:        s.fcalls.Load(),
			Monitor:       s.StepMonitor,
			Population:    s.Population,
			Energies:      s.Energies,
		}

		if s.Cancel.Cancelled() {
			break
		}
		if r := term(state); r != "" {
			reason = r
			break
		}
	}

	s.Options.logTerminationSummary(reason, s.BestEnergy, s.Generations, s.fcalls.Load(), maxIter, maxFun)
	return reason, nil
}
