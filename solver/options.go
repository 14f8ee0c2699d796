// Package solver implements the AbstractSolver base and the two concrete DE
// solvers (sequential, invariant-generation) from grample's sampler
// abstractions (Sampler/Chain), generalized from discrete PGM sampling to
// continuous differential evolution over a bounded population.
package solver

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

// CostFunc evaluates a candidate vector. Errors propagate to the caller
// unwrapped and unretried, per the error-handling contract: a cost function
// failure is a runtime outcome of the user's problem, not a solver bug.
type CostFunc func(x []float64) (float64, error)

// ExtraCostFunc is a CostFunc that also receives the solve-time extra
// argument the caller supplied.
type ExtraCostFunc func(x []float64, extra interface{}) (float64, error)

// Options replaces solve()'s historical dynamic-kwargs surface with an
// explicit structure listing exactly what the generation loop consults.
type Options struct {
	Strategy             Strategy
	CrossoverProbability float64 // CR, in [0,1]
	ScalingFactor        float64 // F, in (0,2]
	UserCallback         func(bestVector []float64)
	Verbose              bool
	Logger               *zap.SugaredLogger
}

// DefaultOptions returns the Options a caller gets by not configuring
// anything: Best1Bin, CR=0.9, F=0.8, a nop logger, no callback.
func DefaultOptions() Options {
	return Options{
		Strategy:             Best1Bin,
		CrossoverProbability: 0.9,
		ScalingFactor:        0.8,
		Logger:               zap.NewNop().Sugar(),
	}
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop().Sugar()
}

// logTerminationSummary emits the end-of-Solve message recovering the
// original's disp convergence messages ("Optimization terminated
// successfully" / warnflag text), once per Solve call, when Verbose is set.
func (o Options) logTerminationSummary(reason string, bestEnergy float64, generations, fcalls, maxIter, maxFun int) {
	if !o.Verbose {
		return
	}
	log := o.logger()
	switch {
	case fcalls >= maxFun:
		log.Infof("Warning: Maximum number of function evaluations has been exceeded (fval=%g, iter=%d, fcalls=%d)", bestEnergy, generations, fcalls)
	case generations >= maxIter:
		log.Infof("Warning: Maximum number of iterations has been exceeded (fval=%g, iter=%d, fcalls=%d)", bestEnergy, generations, fcalls)
	default:
		log.Infof("Optimization terminated successfully (fval=%g, iter=%d, fcalls=%d, reason=%q)", bestEnergy, generations, fcalls, reason)
	}
}

// CancelToken is the injected replacement for §9's process-level signal
// handler: the solver polls Cancelled() once at the end of each generation
// and never mid-evaluation, so population and energies stay consistent.
type CancelToken interface {
	Cancelled() bool
}

// NeverCancel is a CancelToken that never fires.
type NeverCancel struct{}

// Cancelled always returns false.
func (NeverCancel) Cancelled() bool { return false }

// ctxToken adapts a context.Context to a CancelToken.
type ctxToken struct {
	ctx context.Context
}

// Cancelled reports whether the context has been cancelled.
func (c ctxToken) Cancelled() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// FromContext adapts ctx to a CancelToken.
func FromContext(ctx context.Context) CancelToken {
	return ctxToken{ctx: ctx}
}

// SignalCancelToken returns a CancelToken that fires on SIGINT, the default
// adapter §9 calls for translating OS interrupts to the injected token on
// platforms where that is appropriate. Call stop when the solver run ends
// to release the signal notification.
func SignalCancelToken() (token CancelToken, stop func()) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return FromContext(ctx), cancel
}
