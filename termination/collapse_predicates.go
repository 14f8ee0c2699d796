package termination

import (
	"sync"

	"github.com/CraigKelly/diffevo/collapse"
)

// cache memoizes a detector-backed predicate's result for the current
// generation, so that evaluating the same composite predicate twice within
// one generation (e.g. once directly, once inside an And/Or tree) runs the
// detector only once, per §4.3's idempotence contract.
type cache struct {
	mu  sync.Mutex
	gen int
	set bool
	val string
}

func (c *cache) get(gen int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set && c.gen == gen {
		return c.val, true
	}
	return "", false
}

func (c *cache) put(gen int, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen, c.val, c.set = gen, val, true
}

// CollapseAt stops as soon as collapse.At reports a non-empty set of frozen
// parameter indices.
func CollapseAt(target []float64, tolerance collapse.Tolerance, n int) Predicate {
	c := &cache{}
	return func(s *State) string {
		if v, ok := c.get(s.Generations); ok {
			return v
		}
		result, err := collapse.At(s.Monitor, target, tolerance, n, nil)
		reason := collapseReason(err, "CollapseAt", result, len(result.Indices))
		c.put(s.Generations, reason)
		return reason
	}
}

// CollapseAs stops as soon as collapse.As reports a non-empty set of
// collapsed index pairs.
func CollapseAs(offset bool, tolerance float64, n int) Predicate {
	c := &cache{}
	return func(s *State) string {
		if v, ok := c.get(s.Generations); ok {
			return v
		}
		result, err := collapse.As(s.Monitor, offset, tolerance, n, nil)
		reason := collapseReason(err, "CollapseAs", result, len(result.Pairs))
		c.put(s.Generations, reason)
		return reason
	}
}

// CollapseWeight stops as soon as collapse.Weight reports a non-empty
// per-measure set of collapsed weight indices.
func CollapseWeight(tolerance float64, n int) Predicate {
	c := &cache{}
	return func(s *State) string {
		if v, ok := c.get(s.Generations); ok {
			return v
		}
		result, err := collapse.Weight(s.Monitor, tolerance, n, nil)
		reason := collapseReason(err, "CollapseWeight", result, countPerMeasure(result))
		c.put(s.Generations, reason)
		return reason
	}
}

// CollapsePosition stops as soon as collapse.Position reports a non-empty
// per-measure set of collapsed position indices.
func CollapsePosition(tolerance float64, n int) Predicate {
	c := &cache{}
	return func(s *State) string {
		if v, ok := c.get(s.Generations); ok {
			return v
		}
		result, err := collapse.Position(s.Monitor, tolerance, n, nil)
		reason := collapseReason(err, "CollapsePosition", result, countPerMeasure(result))
		c.put(s.Generations, reason)
		return reason
	}
}

func countPerMeasure(r *collapse.Result) int {
	n := 0
	for _, idxs := range r.PerMeasure {
		n += len(idxs)
	}
	return n
}

// collapseReason turns a detector call into a predicate result: a bad mask
// is a programmer mistake and panics (detectors here never receive a
// caller-supplied mask, so this can only fire from an internal bug); an
// empty result means "continue".
func collapseReason(err error, name string, result *collapse.Result, count int) string {
	if err != nil {
		panic(err)
	}
	if count == 0 {
		return ""
	}
	return collapse.Encode(name, result)
}
