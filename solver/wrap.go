package solver

import (
	"sync/atomic"

	"github.com/CraigKelly/diffevo/monitor"
)

// Counter is an atomically-incremented call count, visible to termination
// predicates as State.FCalls.
type Counter struct {
	n int64
}

// Add increments the counter by one.
func (c *Counter) Add() { atomic.AddInt64(&c.n, 1) }

// Load returns the current count.
func (c *Counter) Load() int { return int(atomic.LoadInt64(&c.n)) }

// WrapFunction wraps cost so that every call increments counter, then feeds
// (x, result) to evalMonitor synchronously, then returns the result. extra
// is passed through to an ExtraCostFunc unchanged; nil extra and a plain
// CostFunc are both supported via extraCost being nil.
func WrapFunction(cost CostFunc, extraCost ExtraCostFunc, extra interface{}, evalMonitor monitor.Writer) (*Counter, CostFunc) {
	counter := &Counter{}
	wrapped := func(x []float64) (float64, error) {
		counter.Add()

		var result float64
		var err error
		if extraCost != nil {
			result, err = extraCost(x, extra)
		} else {
			result, err = cost(x)
		}
		if err != nil {
			return 0, err
		}

		if evalMonitor != nil {
			if merr := evalMonitor.Record(x, result); merr != nil {
				return 0, merr
			}
		}
		return result, nil
	}
	return counter, wrapped
}
