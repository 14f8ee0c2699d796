package solver

import (
	"github.com/CraigKelly/diffevo/termination"
)

// Sequential is the in-place DE solver from §4.6: a trial immediately
// replaces its parent when it improves on it, so later candidates within
// the same generation see the update.
type Sequential struct {
	*AbstractSolver
	Options Options
}

// NewSequential builds a Sequential solver around the given AbstractSolver.
func NewSequential(base *AbstractSolver, opts Options) *Sequential {
	return &Sequential{AbstractSolver: base, Options: opts}
}

// Solve runs generations until termination fires, the cancel token fires,
// or max_fun/max_iter is exceeded. It returns the termination reason string
// (empty unless a termination predicate fired).
func (s *Sequential) Solve(cost CostFunc, term termination.Predicate) (string, error) {
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

		for i := 0; i < s.NP; i++ {
			if s.fcalls.Load() >= maxFun {
				break
			}

			trial := Mutate(s.Options.Strategy, s.Population, s.BestVector, i, s.Options.ScalingFactor, s.Options.CrossoverProbability, s.rng)
			trialCost, err := wrapped(trial)
			if err != nil {
				return "", err
			}

			if trialCost < s.Energies[i] {
				s.Population[i] = trial
				s.Energies[i] = trialCost
				s.Genealogy[i] = append(s.Genealogy[i], trial)
				s.updateBest(trial, trialCost)
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
		if s.fcalls.Load() >= maxFun {
			break
		}
	}

	s.Options.logTerminationSummary(reason, s.BestEnergy, s.Generations, s.fcalls.Load(), maxIter, maxFun)
	return reason, nil
}
