// Package collapse implements the dimensional-collapse detectors: functions
// that mine a monitor's recent history for parameters, pairs, weights, or
// positions that have stopped varying. It is grounded on mystic's
// collapse.py, with the runtime type-dispatch on mask/result shape
// ("container type determines return container type") replaced by the
// tagged Result variant below, per the REDESIGN FLAGS.
package collapse

import (
	"sort"

	"github.com/pkg/errors"
)

// Kind discriminates the four Result/Mask container shapes from mystic's
// collapse.py: a bare set of indices, a set of index pairs, a per-measure
// map of index sets, and the flattened "where" pair of parallel slices.
type Kind int

const (
	KindIndices Kind = iota
	KindPairs
	KindPerMeasure
	KindWhere
)

func (k Kind) String() string {
	switch k {
	case KindIndices:
		return "Indices"
	case KindPairs:
		return "Pairs"
	case KindPerMeasure:
		return "PerMeasure"
	case KindWhere:
		return "Where"
	default:
		return "Unknown"
	}
}

// Pair is an index pair; NewPair normalizes it so I<=J. Besides collapse_as's
// genuine index pairs (always I<J there, since i ranges below j), the same
// type does double duty as collapse_weight's "set<(measure,index)>"
// alternate shape, where I is the measure and J the index, not normalized,
// and I==J is a perfectly ordinary measure-0/index-0 entry.
type Pair struct{ I, J int }

// NewPair returns the pair (a,b) normalized so I<=J.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{I: a, J: b}
}

// Result is both a detector result and, fed back in, a mask: the same
// container that comes out of one call can be passed as the mask of the
// next, by construction, without conversion. A nil *Result means "no mask" /
// "nothing collapsed" as appropriate to context.
type Result struct {
	Kind Kind

	// KindIndices
	Indices map[int]bool

	// KindPairs: explicit pairs, plus bare indices widened (when used as a
	// mask) to "every pair touching this index".
	Pairs    map[Pair]bool
	Touching map[int]bool

	// KindPerMeasure
	PerMeasure map[int]map[int]bool

	// KindWhere: parallel slices, equal length.
	WhereAxis0 []int
	WhereAxis1 []int
}

// BadMaskError reports a mask of a kind a detector does not accept, or a
// malformed mask (e.g. unequal where-slice lengths). Raised synchronously
// before any monitor history is read, per the error-handling contract: shape
// mistakes are programmer errors, not runtime outcomes.
type BadMaskError struct {
	Detector string
	Got      Kind
	Want     []Kind
	Reason   string
}

func (e *BadMaskError) Error() string {
	if e.Reason != "" {
		return "collapse: bad mask for " + e.Detector + ": " + e.Reason
	}
	return "collapse: bad mask for " + e.Detector + ": got " + e.Got.String()
}

// NoMask is the empty mask: it never removes anything, and is kind-agnostic
// so any detector accepts it.
func NoMask() *Result { return nil }

// IndicesMask builds a KindIndices mask/result from explicit indices.
func IndicesMask(idx ...int) *Result {
	m := map[int]bool{}
	for _, i := range idx {
		m[i] = true
	}
	return &Result{Kind: KindIndices, Indices: m}
}

// PairsMask builds a KindPairs mask from explicit pairs plus bare indices
// widened to "every pair touching this index", per §7's error-handling rule.
func PairsMask(pairs []Pair, touching ...int) *Result {
	p := map[Pair]bool{}
	for _, pr := range pairs {
		p[pr] = true
	}
	var t map[int]bool
	if len(touching) > 0 {
		t = map[int]bool{}
		for _, i := range touching {
			t[i] = true
		}
	}
	return &Result{Kind: KindPairs, Pairs: p, Touching: t}
}

// PerMeasureMask builds a KindPerMeasure mask from a measure->indices map.
func PerMeasureMask(m map[int][]int) *Result {
	out := map[int]map[int]bool{}
	for measure, idxs := range m {
		s := map[int]bool{}
		for _, i := range idxs {
			s[i] = true
		}
		out[measure] = s
	}
	return &Result{Kind: KindPerMeasure, PerMeasure: out}
}

// WhereMask builds a KindWhere mask from two parallel slices. Panics if
// their lengths differ, since that is a caller programming error.
func WhereMask(axis0, axis1 []int) *Result {
	if len(axis0) != len(axis1) {
		panic("collapse: where mask axes must be equal length")
	}
	return &Result{Kind: KindWhere, WhereAxis0: append([]int{}, axis0...), WhereAxis1: append([]int{}, axis1...)}
}

// checkKind validates that mask is nil or one of the accepted kinds (and, for
// KindWhere, that its two slices have equal length), returning a
// *BadMaskError otherwise.
func checkKind(detector string, mask *Result, accepted ...Kind) error {
	if mask == nil {
		return nil
	}
	for _, k := range accepted {
		if mask.Kind == k {
			if k == KindWhere && len(mask.WhereAxis0) != len(mask.WhereAxis1) {
				return errors.WithStack(&BadMaskError{Detector: detector, Got: mask.Kind, Want: accepted, Reason: "where mask axes must be equal length"})
			}
			return nil
		}
	}
	return errors.WithStack(&BadMaskError{Detector: detector, Got: mask.Kind, Want: accepted})
}

// pairTouches reports whether pair p touches any index in touching.
func pairTouches(p Pair, touching map[int]bool) bool {
	return touching[p.I] || touching[p.J]
}

// subtractIndices removes masked indices, returning a new set.
func subtractIndices(found map[int]bool, mask *Result) map[int]bool {
	out := map[int]bool{}
	for i := range found {
		if mask != nil && mask.Indices[i] {
			continue
		}
		out[i] = true
	}
	return out
}

// subtractPairs removes masked pairs (explicit or touching-widened),
// returning a new set.
func subtractPairs(found map[Pair]bool, mask *Result) map[Pair]bool {
	out := map[Pair]bool{}
	for p := range found {
		if mask != nil {
			if mask.Pairs[p] || pairTouches(p, mask.Touching) {
				continue
			}
		}
		out[p] = true
	}
	return out
}

// subtractPerMeasure removes masked (measure,index) entries, returning a new
// map with any now-empty measures dropped.
func subtractPerMeasure(found map[int]map[int]bool, mask *Result) map[int]map[int]bool {
	out := map[int]map[int]bool{}
	for measure, idxs := range found {
		kept := map[int]bool{}
		for i := range idxs {
			if mask != nil && mask.PerMeasure[measure][i] {
				continue
			}
			kept[i] = true
		}
		if len(kept) > 0 {
			out[measure] = kept
		}
	}
	return out
}

// toWhere flattens a measure->indices map into sorted parallel slices, for
// detectors whose default/requested output kind is KindWhere.
func toWhere(found map[int]map[int]bool) ([]int, []int) {
	var measures, indices []int
	keys := make([]int, 0, len(found))
	for m := range found {
		keys = append(keys, m)
	}
	sort.Ints(keys)
	for _, m := range keys {
		idxKeys := make([]int, 0, len(found[m]))
		for i := range found[m] {
			idxKeys = append(idxKeys, i)
		}
		sort.Ints(idxKeys)
		for _, i := range idxKeys {
			measures = append(measures, m)
			indices = append(indices, i)
		}
	}
	return measures, indices
}

// fromWhere rebuilds a measure->indices map from parallel slices.
func fromWhere(axis0, axis1 []int) map[int]map[int]bool {
	out := map[int]map[int]bool{}
	for i := range axis0 {
		m, idx := axis0[i], axis1[i]
		if out[m] == nil {
			out[m] = map[int]bool{}
		}
		out[m][idx] = true
	}
	return out
}

// flattenPairsToMeasureIndex reinterprets a found (measure,index) set built
// for collapse_weight as a KindPairs result, used when the caller passes a
// KindPairs mask (the "set<(measure,index)>" alternate shape from §4.8).
// Unlike NewPair, this never swaps I and J: the first component is always
// the measure and the second always the index, even when index < measure.
func flattenPairsToMeasureIndex(found map[int]map[int]bool) map[Pair]bool {
	out := map[Pair]bool{}
	for m, idxs := range found {
		for i := range idxs {
			out[Pair{I: m, J: i}] = true
		}
	}
	return out
}

