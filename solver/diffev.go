package solver

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CraigKelly/diffevo/rand"
	"github.com/CraigKelly/diffevo/termination"
)

// InitialPointsKind discriminates the two InitialPoints shapes Diffev
// accepts, replacing the source's shape-sniffing of x0 with a tagged
// variant built by the Point/RandomBounds constructors.
type InitialPointsKind int

const (
	// PointKind is a single explicit vector, jittered per SetInitialPoints.
	PointKind InitialPointsKind = iota
	// RandomBoundsKind is a (min,max) pair per dimension for random init.
	RandomBoundsKind
)

// InitialPoints is the tagged x0 variant consumed by Diffev.
type InitialPoints struct {
	Kind     InitialPointsKind
	Vector   []float64 // PointKind
	LB, UB   []float64 // RandomBoundsKind
}

// Point builds a PointKind InitialPoints from an explicit vector.
func Point(x []float64) InitialPoints {
	return InitialPoints{Kind: PointKind, Vector: x}
}

// RandomBounds builds a RandomBoundsKind InitialPoints from per-dimension
// (min,max) bounds.
func RandomBounds(lb, ub []float64) InitialPoints {
	return InitialPoints{Kind: RandomBoundsKind, LB: lb, UB: ub}
}

func (p InitialPoints) dim() int {
	switch p.Kind {
	case PointKind:
		return len(p.Vector)
	default:
		return len(p.LB)
	}
}

// DiffevOptions configures the Diffev minimal functional wrapper.
type DiffevOptions struct {
	NP                   int
	Strategy             Strategy
	CrossoverProbability float64
	ScalingFactor        float64
	LB, UB               []float64 // strict ranges, optional
	MaxIter, MaxFun      int       // -1 means unset
	GTol                 int       // >0 selects ChangeOverGeneration; else VTR
	FTol                 float64
	TrackAllVecs         bool
	Disp                 bool // recovers the original's disp convergence message
	Logger               *zap.SugaredLogger
	Rng                  *rand.Generator
}

// DiffevResult is the scipy-style tuple form Diffev returns.
type DiffevResult struct {
	X        []float64
	Fopt     float64
	Iter     int
	FCalls   int
	WarnFlag int
	AllVecs  [][]float64
}

// Diffev is the minimal functional wrapper from §6: given a cost function
// and initial points, runs a Sequential solver to completion and returns
// the full result tuple, with best_vector in its X field. There is no option
// that returns best_vector alone.
func Diffev(cost CostFunc, x0 InitialPoints, opts DiffevOptions) (*DiffevResult, error) {
	rng := opts.Rng
	if rng == nil {
		r, err := rand.NewGenerator(1)
		if err != nil {
			return nil, err
		}
		rng = r
	}

	base, err := NewAbstractSolver(x0.dim(), opts.NP, rng)
	if err != nil {
		return nil, err
	}
	base.SetEvaluationLimits(opts.MaxIter, opts.MaxFun)

	if opts.LB != nil {
		if err := base.SetStrictRanges(opts.LB, opts.UB); err != nil {
			return nil, err
		}
	}

	switch x0.Kind {
	case PointKind:
		if err := base.SetInitialPoints(x0.Vector); err != nil {
			return nil, err
		}
	case RandomBoundsKind:
		if err := base.SetRandomInitialPoints(x0.LB, x0.UB); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("diffev: invalid InitialPoints")
	}

	var allVecs [][]float64
	solveOpts := Options{
		Strategy:             opts.Strategy,
		CrossoverProbability: opts.CrossoverProbability,
		ScalingFactor:        opts.ScalingFactor,
		Verbose:              opts.Disp,
		Logger:               opts.Logger,
	}
	if opts.TrackAllVecs {
		solveOpts.UserCallback = func(best []float64) {
			allVecs = append(allVecs, append([]float64{}, best...))
		}
	}

	seq := NewSequential(base, solveOpts)

	var term termination.Predicate
	if opts.GTol > 0 {
		term = termination.ChangeOverGeneration(opts.FTol, opts.GTol)
	} else {
		term = termination.VTR(opts.FTol)
	}

	reason, err := seq.Solve(cost, term)
	if err != nil {
		return nil, err
	}

	maxIter, maxFun := base.resolvedLimits()
	warnflag := 0
	switch {
	case base.FCalls() >= maxFun:
		warnflag = 1
	case base.Generations >= maxIter:
		warnflag = 2
	case reason != "":
		warnflag = 0
	}

	return &DiffevResult{
		X:        base.BestVector,
		Fopt:     base.BestEnergy,
		Iter:     base.Generations,
		FCalls:   base.FCalls(),
		WarnFlag: warnflag,
		AllVecs:  allVecs,
	}, nil
}
