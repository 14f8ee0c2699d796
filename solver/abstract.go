package solver

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/CraigKelly/diffevo/monitor"
	"github.com/CraigKelly/diffevo/rand"
	"github.com/CraigKelly/diffevo/vector"
)

// AbstractSolver holds everything the two concrete DE solvers share:
// population, per-member energies, best-so-far, genealogy, evaluation
// limits, bounds, and the cancellation token. It is never used directly;
// embed it in Sequential or InvariantGeneration.
type AbstractSolver struct {
	id uuid.UUID

	D  int
	NP int

	Population [][]float64
	Energies   []float64

	BestVector []float64
	BestEnergy float64

	Genealogy     [][][]float64
	EnergyHistory []float64

	LB, UB []float64

	MaxIter, MaxFun int // -1 means "unset": solver supplies its default

	Generations int
	fcalls      *Counter

	rng *rand.Generator

	Cancel CancelToken

	EvalMonitor monitor.ReadWriter
	StepMonitor monitor.ReadWriter
}

// NewAbstractSolver constructs a solver for dimension d and population size
// np, seeded from rng. The teacher's convention is to take an already-built
// generator rather than a raw seed, so callers share one RNG across several
// solvers/samplers if they want reproducibility tied together.
func NewAbstractSolver(d, np int, rng *rand.Generator) (*AbstractSolver, error) {
	if d < 1 {
		return nil, errors.Errorf("dimension must be positive, got %d", d)
	}
	if np < 1 {
		return nil, errors.Errorf("population size must be positive, got %d", np)
	}
	if rng == nil {
		return nil, errors.New("rng is required")
	}

	return &AbstractSolver{
		id:          uuid.New(),
		D:           d,
		NP:          np,
		Population:  make([][]float64, np),
		Energies:    make([]float64, np),
		Genealogy:   make([][][]float64, np),
		MaxIter:     -1,
		MaxFun:      -1,
		rng:         rng,
		Cancel:      NeverCancel{},
		fcalls:      &Counter{},
		EvalMonitor: monitor.New(1),
		StepMonitor: monitor.New(64),
	}, nil
}

// ID returns this solver's run identifier. Its monitors carry their own,
// separate identifiers (monitor.Monitor.ID).
func (a *AbstractSolver) ID() uuid.UUID { return a.id }

// FCalls returns the number of times the wrapped cost function has been
// called so far.
func (a *AbstractSolver) FCalls() int { return a.fcalls.Load() }

// SetInitialPoints fills every population slot with x0 plus small jitter;
// slot 0 is set to x0 exactly, matching §4.1.
func (a *AbstractSolver) SetInitialPoints(x0 []float64) error {
	if len(x0) != a.D {
		return errors.Errorf("initial point has length %d, want %d", len(x0), a.D)
	}

	a.Population[0] = vector.Clone(x0)
	for i := 1; i < a.NP; i++ {
		p := make([]float64, a.D)
		for j := range p {
			jitter := a.rng.UniformRange(-0.05, 0.05) * (1 + absf(x0[j]))
			p[j] = x0[j] + jitter
		}
		a.Population[i] = p
	}
	return nil
}

// SetRandomInitialPoints fills every population slot with a uniform random
// draw within [lb,ub]. Per the documented resolution of §9's first open
// question, this does not consult any bounds previously installed by
// SetStrictRanges: the source clips on first evaluation, not at assignment,
// so the two calls are independent until the first Solve.
func (a *AbstractSolver) SetRandomInitialPoints(lb, ub []float64) error {
	if len(lb) != a.D || len(ub) != a.D {
		return errors.Errorf("bounds must have length %d", a.D)
	}

	for i := 0; i < a.NP; i++ {
		p := make([]float64, a.D)
		for j := range p {
			p[j] = a.rng.UniformRange(lb[j], ub[j])
		}
		a.Population[i] = p
	}
	return nil
}

// Sampler draws one initial population member into s, which has length D.
type Sampler interface {
	Sample(s []float64) error
}

// SetSampledInitialPoints fills every population slot by delegating to
// sampler, per §4.1's pluggable-sampler entry point.
func (a *AbstractSolver) SetSampledInitialPoints(sampler Sampler) error {
	for i := 0; i < a.NP; i++ {
		p := make([]float64, a.D)
		if err := sampler.Sample(p); err != nil {
			return errors.Wrap(err, "sampling initial point")
		}
		a.Population[i] = p
	}
	return nil
}

// SetStrictRanges installs bounds lb/ub. Existing population members are
// not retroactively clipped; the next evaluation wrap will clip or reject
// them, per §4.1's invariant.
func (a *AbstractSolver) SetStrictRanges(lb, ub []float64) error {
	if len(lb) != a.D || len(ub) != a.D {
		return errors.Errorf("bounds must have length %d", a.D)
	}
	var errs error
	for i := range lb {
		if lb[i] > ub[i] {
			errs = multierr.Append(errs, errors.Errorf("lb[%d]=%g > ub[%d]=%g", i, lb[i], i, ub[i]))
		}
	}
	if errs != nil {
		return errs
	}
	a.LB, a.UB = vector.Clone(lb), vector.Clone(ub)
	return nil
}

// SetEvaluationLimits installs max_iter/max_fun. Either may be passed as -1
// to mean "unset", in which case the solver's defaults (D*NP*10, D*NP*1000)
// apply once Solve begins.
func (a *AbstractSolver) SetEvaluationLimits(maxIter, maxFun int) {
	a.MaxIter, a.MaxFun = maxIter, maxFun
}

func (a *AbstractSolver) resolvedLimits() (maxIter, maxFun int) {
	maxIter, maxFun = a.MaxIter, a.MaxFun
	if maxIter < 0 {
		maxIter = a.D * a.NP * 10
	}
	if maxFun < 0 {
		maxFun = a.D * a.NP * 1000
	}
	return
}

// updateBest replaces BestVector/BestEnergy if candidate improves on it.
func (a *AbstractSolver) updateBest(candidate []float64, energy float64) {
	if a.BestVector == nil || energy < a.BestEnergy {
		a.BestVector = vector.Clone(candidate)
		a.BestEnergy = energy
	}
}

// initializeEnergies clips the initial population into bounds (if set),
// then evaluates cost over it, seeding Energies and BestVector before the
// generation loop starts. Per §4.4, the initial population is clipped
// rather than hard-rejected.
func (a *AbstractSolver) initializeEnergies(cost CostFunc) error {
	a.Energies = make([]float64, a.NP)
	for i, x := range a.Population {
		if a.LB != nil {
			x = vector.Clip(x, a.LB, a.UB)
			a.Population[i] = x
		}
		e, err := cost(x)
		if err != nil {
			return err
		}
		a.Energies[i] = e
		a.updateBest(x, e)
	}
	return nil
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
