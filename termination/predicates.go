package termination

import (
	"fmt"
	"math"

	"github.com/CraigKelly/diffevo/vector"
)

// VTR ("value to reach") stops when best_energy<=ftol.
func VTR(ftol float64) Predicate {
	return func(s *State) string {
		if s.BestEnergy <= ftol {
			return fmt.Sprintf("VTR at %g", ftol)
		}
		return ""
	}
}

// ChangeOverGeneration stops when the best energy has improved by no more
// than ftol over the last gtol generations. Requires at least gtol+1
// recorded energy-history entries; otherwise it continues.
func ChangeOverGeneration(ftol float64, gtol int) Predicate {
	return func(s *State) string {
		h := s.EnergyHistory
		if len(h) < gtol+1 {
			return ""
		}
		delta := math.Abs(h[len(h)-1-gtol] - h[len(h)-1])
		if delta <= ftol {
			return fmt.Sprintf("ChangeOverGeneration at %g", ftol)
		}
		return ""
	}
}

// NormalizedChangeOverGeneration is ChangeOverGeneration but the delta is
// divided by |best_energy| (guarded against a zero denominator).
func NormalizedChangeOverGeneration(ftol float64, gtol int) Predicate {
	return func(s *State) string {
		h := s.EnergyHistory
		if len(h) < gtol+1 {
			return ""
		}
		denom := math.Abs(h[len(h)-1])
		if denom == 0 {
			denom = 1
		}
		delta := math.Abs(h[len(h)-1-gtol]-h[len(h)-1]) / denom
		if delta <= ftol {
			return fmt.Sprintf("NormalizedChangeOverGeneration at %g", ftol)
		}
		return ""
	}
}

// CandidateRelativeTolerance stops when every population member is within
// xtol (Linf) and ftol (energy) of population member 0.
func CandidateRelativeTolerance(xtol, ftol float64) Predicate {
	return func(s *State) string {
		if len(s.Population) == 0 {
			return ""
		}
		x0, e0 := s.Population[0], s.Energies[0]
		for i := 1; i < len(s.Population); i++ {
			if vector.LInfDistance(s.Population[i], x0) > xtol {
				return ""
			}
			if math.Abs(s.Energies[i]-e0) > ftol {
				return ""
			}
		}
		return fmt.Sprintf("CandidateRelativeTolerance at (%g,%g)", xtol, ftol)
	}
}

// SolutionImprovement stops when the best-energy delta over the last
// iteration is below tol.
func SolutionImprovement(tol float64) Predicate {
	return func(s *State) string {
		h := s.EnergyHistory
		if len(h) < 2 {
			return ""
		}
		delta := h[len(h)-2] - h[len(h)-1]
		if delta < tol {
			return fmt.Sprintf("SolutionImprovement at %g", tol)
		}
		return ""
	}
}

// Or short-circuits on the first predicate that stops, returning its reason
// unchanged.
func Or(preds ...Predicate) Predicate {
	return func(s *State) string {
		for _, p := range preds {
			if r := p(s); r != "" {
				return r
			}
		}
		return ""
	}
}

// And stops only when every predicate stops, concatenating all of their
// reasons with "; ". It short-circuits: predicates after the first one that
// continues are not evaluated.
func And(preds ...Predicate) Predicate {
	return func(s *State) string {
		reasons := make([]string, 0, len(preds))
		for _, p := range preds {
			r := p(s)
			if r == "" {
				return ""
			}
			reasons = append(reasons, r)
		}
		out := ""
		for i, r := range reasons {
			if i > 0 {
				out += "; "
			}
			out += r
		}
		return out
	}
}

// When wraps p unchanged; it exists so termination expressions can name a
// guard predicate the way mystic's `when` decorator does, without altering
// behavior.
func When(p Predicate) Predicate {
	return p
}
