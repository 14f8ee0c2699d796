// Package vector provides the small set of vector-arithmetic helpers shared
// by the mutation strategies, termination predicates, and collapse
// detectors: difference vectors, norms, and clipping against a box. Built on
// gonum/floats the way go.viam.com/rdk leans on gonum across its test and
// estimation code (e.g. lidar/measurement_test.go, pointcloud/pointcloud_test.go).
package vector

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Clone returns a copy of x.
func Clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

// Sub returns a-b, element-wise.
func Sub(a, b []float64) []float64 {
	out := Clone(a)
	floats.SubTo(out, a, b)
	return out
}

// LInfNorm returns the infinity norm (max absolute component) of x.
func LInfNorm(x []float64) float64 {
	max := 0.0
	for _, v := range x {
		if av := math.Abs(v); av > max {
			max = av
		}
	}
	return max
}

// LInfDistance returns ||a-b||_inf.
func LInfDistance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// MaxAbsDiff returns max(|a[i]-b[i]|).
func MaxAbsDiff(a, b []float64) float64 {
	return LInfDistance(a, b)
}

// PTP ("peak to peak") returns max(x)-min(x) for a non-empty slice.
func PTP(x []float64) float64 {
	return floats.Max(x) - floats.Min(x)
}

// InBounds reports whether lb[i] <= x[i] <= ub[i] for every component.
func InBounds(x, lb, ub []float64) bool {
	for i := range x {
		if x[i] < lb[i] || x[i] > ub[i] {
			return false
		}
	}
	return true
}

// Clip projects x into the box [lb,ub], component-wise, returning a new slice.
func Clip(x, lb, ub []float64) []float64 {
	out := Clone(x)
	for i := range out {
		if out[i] < lb[i] {
			out[i] = lb[i]
		} else if out[i] > ub[i] {
			out[i] = ub[i]
		}
	}
	return out
}

// SameLength returns an error-free bool; kept trivial and local rather than
// pulled into every caller's error-handling path.
func SameLength(a, b []float64) bool {
	return len(a) == len(b)
}
