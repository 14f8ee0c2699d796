package collapse

import (
	"math"

	"github.com/CraigKelly/diffevo/monitor"
	"github.com/CraigKelly/diffevo/vector"
)

// DefaultWindow is the default number of trailing generations a detector
// mines when the caller does not specify N, per §4.8.
const DefaultWindow = 50

// Tolerance is either a single float64 applied to every index, or a
// []float64 giving one tolerance per index. Any other type is a programmer
// error and panics at first use.
type Tolerance interface{}

func toleranceAt(tol Tolerance, i int) float64 {
	switch t := tol.(type) {
	case float64:
		return t
	case []float64:
		return t[i]
	default:
		panic("collapse: tolerance must be float64 or []float64")
	}
}

// At returns the set of parameter indices that have stopped varying over the
// last n generations (n<=0 uses DefaultWindow): either within tolerance of
// target (if non-nil) or within a tolerance-wide range of each other (if
// target is nil). mask, if non-nil, must be KindIndices, and its entries are
// removed from the result; the result's Kind always matches mask's Kind when
// a mask was given, and is KindIndices otherwise, per §4.8's "container type
// determines return container type" rule. Returns the empty (non-nil)
// KindIndices result if the monitor holds fewer than n generations.
func At(reader monitor.Reader, target []float64, tolerance Tolerance, n int, mask *Result) (*Result, error) {
	if err := checkKind("CollapseAt", mask, KindIndices); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultWindow
	}

	sols := reader.Solutions(n)
	found := map[int]bool{}
	if len(sols) < n || len(sols) == 0 {
		return &Result{Kind: KindIndices, Indices: found}, nil
	}

	d := len(sols[0])
	for i := 0; i < d; i++ {
		col := make([]float64, len(sols))
		for k, s := range sols {
			col[k] = s[i]
		}

		var collapsed bool
		if target == nil {
			collapsed = vector.PTP(col) <= toleranceAt(tolerance, i)
		} else {
			max := 0.0
			for _, v := range col {
				if av := math.Abs(v - target[i]); av > max {
					max = av
				}
			}
			collapsed = max <= toleranceAt(tolerance, i)
		}
		if collapsed {
			found[i] = true
		}
	}

	return &Result{Kind: KindIndices, Indices: subtractIndices(found, mask)}, nil
}

// As returns the set of index pairs (i,j), i<j, whose difference trajectory
// has stopped varying over the last n generations: max|x_i-x_j|<=tolerance
// if offset is false, or ptp(x_i-x_j)<=tolerance if offset is true. mask, if
// non-nil, must be KindPairs.
func As(reader monitor.Reader, offset bool, tolerance float64, n int, mask *Result) (*Result, error) {
	if err := checkKind("CollapseAs", mask, KindPairs); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultWindow
	}

	sols := reader.Solutions(n)
	found := map[Pair]bool{}
	if len(sols) < n || len(sols) == 0 {
		return &Result{Kind: KindPairs, Pairs: found}, nil
	}

	d := len(sols[0])
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			diff := make([]float64, len(sols))
			for k, s := range sols {
				diff[k] = s[i] - s[j]
			}

			var collapsed bool
			if offset {
				collapsed = vector.PTP(diff) <= tolerance
			} else {
				collapsed = vector.LInfNorm(diff) <= tolerance
			}
			if collapsed {
				found[NewPair(i, j)] = true
			}
		}
	}

	return &Result{Kind: KindPairs, Pairs: subtractPairs(found, mask)}, nil
}

// Weight returns, for a product-measure problem, the measure/index pairs
// whose weight has stayed <= tolerance over the last n generations. The
// output (and accepted mask) Kind mirrors mask's Kind: KindPerMeasure by
// default, KindPairs for the alternate "set<(measure,index)>" shape, or
// KindWhere for the flattened parallel-slice shape.
func Weight(reader monitor.Reader, tolerance float64, n int, mask *Result) (*Result, error) {
	return measureCollapse(reader.Weights, "CollapseWeight", tolerance, n, mask)
}

// Position returns, for a product-measure problem, the measure/index pairs
// whose position has stayed <= tolerance over the last n generations. Same
// output/mask Kind contract as Weight.
func Position(reader monitor.Reader, tolerance float64, n int, mask *Result) (*Result, error) {
	return measureCollapse(reader.Positions, "CollapsePosition", tolerance, n, mask)
}

func measureCollapse(fetch func(int) [][][]float64, name string, tolerance float64, n int, mask *Result) (*Result, error) {
	if err := checkKind(name, mask, KindPerMeasure, KindPairs, KindWhere); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultWindow
	}

	outKind := KindPerMeasure
	if mask != nil {
		outKind = mask.Kind
	}

	samples := fetch(n)
	found := map[int]map[int]bool{}
	if len(samples) < n || len(samples) == 0 {
		return emptyMeasureResult(outKind), nil
	}

	numMeasures := len(samples[0])
	for m := 0; m < numMeasures; m++ {
		d := len(samples[0][m])
		for i := 0; i < d; i++ {
			col := make([]float64, len(samples))
			for k, s := range samples {
				col[k] = s[m][i]
			}
			if vector.LInfNorm(col) <= tolerance {
				if found[m] == nil {
					found[m] = map[int]bool{}
				}
				found[m][i] = true
			}
		}
	}

	switch outKind {
	case KindPerMeasure:
		return &Result{Kind: KindPerMeasure, PerMeasure: subtractPerMeasure(found, mask)}, nil
	case KindPairs:
		flat := flattenPairsToMeasureIndex(found)
		return &Result{Kind: KindPairs, Pairs: subtractPairs(flat, maskAsPairs(mask))}, nil
	case KindWhere:
		trimmed := found
		if mask != nil {
			trimmed = subtractPerMeasure(found, fromWhereMask(mask))
		}
		axis0, axis1 := toWhere(trimmed)
		return &Result{Kind: KindWhere, WhereAxis0: axis0, WhereAxis1: axis1}, nil
	default:
		panic("collapse: unreachable mask kind")
	}
}

func emptyMeasureResult(kind Kind) *Result {
	switch kind {
	case KindPairs:
		return &Result{Kind: KindPairs, Pairs: map[Pair]bool{}}
	case KindWhere:
		return &Result{Kind: KindWhere}
	default:
		return &Result{Kind: KindPerMeasure, PerMeasure: map[int]map[int]bool{}}
	}
}

// maskAsPairs returns mask unchanged if it is already KindPairs, else nil
// (no masking in the pair domain to apply).
func maskAsPairs(mask *Result) *Result {
	if mask != nil && mask.Kind == KindPairs {
		return mask
	}
	return nil
}

// fromWhereMask converts a KindWhere mask into a per-measure map so it can
// be subtracted with subtractPerMeasure; nil for any other kind.
func fromWhereMask(mask *Result) *Result {
	if mask == nil || mask.Kind != KindWhere {
		return nil
	}
	return &Result{Kind: KindPerMeasure, PerMeasure: fromWhere(mask.WhereAxis0, mask.WhereAxis1)}
}
