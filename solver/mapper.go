package solver

import "golang.org/x/sync/errgroup"

// Mapper evaluates cost over every trial and returns the parallel energies
// slice, in the same order as trials. Correctness requires order
// preservation and freedom from cross-trial side effects, per §5.
type Mapper interface {
	Map(trials [][]float64, cost CostFunc) ([]float64, error)
}

// SequentialMapper evaluates trials one at a time, in order. It is the
// Mapper an InvariantGeneration solver gets by default.
type SequentialMapper struct{}

// Map implements Mapper.
func (SequentialMapper) Map(trials [][]float64, cost CostFunc) ([]float64, error) {
	out := make([]float64, len(trials))
	for i, t := range trials {
		e, err := cost(t)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ErrgroupMapper evaluates trials concurrently via golang.org/x/sync/errgroup,
// bounded to Limit goroutines in flight (Limit<=0 means unbounded). Each
// trial is written to its own index of the output slice, so ordering is
// preserved regardless of completion order.
type ErrgroupMapper struct {
	Limit int
}

// Map implements Mapper.
func (m ErrgroupMapper) Map(trials [][]float64, cost CostFunc) ([]float64, error) {
	out := make([]float64, len(trials))

	g := new(errgroup.Group)
	if m.Limit > 0 {
		g.SetLimit(m.Limit)
	}

	for i, t := range trials {
		i, t := i, t
		g.Go(func() error {
			e, err := cost(t)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
