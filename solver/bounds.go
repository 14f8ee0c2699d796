package solver

import (
	"math"

	"github.com/CraigKelly/diffevo/vector"
)

// WrapBoundsHard returns f unchanged but guarded: any x outside [lb,ub]
// returns +Inf without calling f. This is the mode the solver's main loop
// uses, per §4.4, since a rejected trial should never perturb fcalls with a
// cost-function call it has no intention of accepting.
func WrapBoundsHard(f CostFunc, lb, ub []float64) CostFunc {
	if lb == nil || ub == nil {
		return f
	}
	return func(x []float64) (float64, error) {
		if !vector.InBounds(x, lb, ub) {
			return math.Inf(1), nil
		}
		return f(x)
	}
}

// WrapBoundsClip returns a CostFunc that projects x into [lb,ub] before
// calling f. This is the mode used to repair initial populations, which
// must always land in-bounds rather than be discarded.
func WrapBoundsClip(f CostFunc, lb, ub []float64) CostFunc {
	if lb == nil || ub == nil {
		return f
	}
	return func(x []float64) (float64, error) {
		return f(vector.Clip(x, lb, ub))
	}
}
