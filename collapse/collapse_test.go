package collapse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/diffevo/monitor"
)

// fakeReader is a minimal monitor.Reader stand-in so the detectors can be
// tested without driving a real solver.
type fakeReader struct {
	sols []([]float64)
	wts  [][][]float64
	pos  [][][]float64
}

func (f *fakeReader) Len() int                       { return len(f.sols) }
func (f *fakeReader) Records(n int) []monitor.Record { return nil }
func (f *fakeReader) Solutions(n int) [][]float64 {
	return lastN(f.sols, n)
}
func (f *fakeReader) Weights(n int) [][][]float64   { return lastNNested(f.wts, n) }
func (f *fakeReader) Positions(n int) [][][]float64 { return lastNNested(f.pos, n) }

func lastN(xs [][]float64, n int) [][]float64 {
	if n > len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

func lastNNested(xs [][][]float64, n int) [][][]float64 {
	if n > len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

func constantColumnReader(n, d int, frozenIdx int, frozenVal float64) *fakeReader {
	r := &fakeReader{}
	for k := 0; k < n; k++ {
		row := make([]float64, d)
		for i := 0; i < d; i++ {
			if i == frozenIdx {
				row[i] = frozenVal
			} else {
				row[i] = float64(k) // varies every step
			}
		}
		r.sols = append(r.sols, row)
	}
	return r
}

func TestAtDetectsFrozenIndex(t *testing.T) {
	assert := assert.New(t)

	r := constantColumnReader(50, 4, 2, 1.0)
	result, err := At(r, nil, 1e-9, 50, nil)
	assert.NoError(err)
	assert.Equal(KindIndices, result.Kind)
	assert.True(result.Indices[2])
	assert.Len(result.Indices, 1)
}

func TestAtEmptyWhenNotEnoughHistory(t *testing.T) {
	assert := assert.New(t)

	r := constantColumnReader(10, 4, 2, 1.0)
	result, err := At(r, nil, 1e-9, 50, nil)
	assert.NoError(err)
	assert.Empty(result.Indices)
}

func TestAtMaskSubtraction(t *testing.T) {
	assert := assert.New(t)

	r := constantColumnReader(50, 4, 2, 1.0)
	prior, err := At(r, nil, 1e-9, 50, nil)
	assert.NoError(err)

	again, err := At(r, nil, 1e-9, 50, prior)
	assert.NoError(err)
	assert.Empty(again.Indices)
}

func TestAtRejectsWrongMaskKind(t *testing.T) {
	assert := assert.New(t)
	r := constantColumnReader(50, 4, 2, 1.0)
	_, err := At(r, nil, 1e-9, 50, PairsMask(nil))
	assert.Error(err)
	var badMask *BadMaskError
	assert.ErrorAs(err, &badMask)
}

func TestAsDetectsCollapsedPair(t *testing.T) {
	assert := assert.New(t)

	r := &fakeReader{}
	for k := 0; k < 50; k++ {
		x0 := float64(k)
		r.sols = append(r.sols, []float64{x0, x0, float64(k) * 2, -float64(k)})
	}

	result, err := As(r, false, 1e-9, 50, nil)
	assert.NoError(err)
	assert.True(result.Pairs[NewPair(0, 1)])
	assert.Len(result.Pairs, 1)
}

func TestAsTouchingMaskWidensToAllPairs(t *testing.T) {
	assert := assert.New(t)

	r := &fakeReader{}
	for k := 0; k < 50; k++ {
		r.sols = append(r.sols, []float64{1, 1, 1})
	}
	mask := PairsMask(nil, 0) // widen to every pair touching index 0

	result, err := As(r, false, 1e-9, 50, mask)
	assert.NoError(err)
	assert.False(result.Pairs[NewPair(0, 1)])
	assert.False(result.Pairs[NewPair(0, 2)])
	assert.True(result.Pairs[NewPair(1, 2)])
}

func TestWeightDefaultShapeIsPerMeasure(t *testing.T) {
	assert := assert.New(t)

	r := &fakeReader{}
	for k := 0; k < 50; k++ {
		r.wts = append(r.wts, [][]float64{{0.0, float64(k)}})
	}

	result, err := Weight(r, 1e-9, 50, nil)
	assert.NoError(err)
	assert.Equal(KindPerMeasure, result.Kind)
	assert.True(result.PerMeasure[0][0])
	assert.False(result.PerMeasure[0][1])
}

func TestWeightSetShapeEchoesMaskKind(t *testing.T) {
	assert := assert.New(t)

	r := &fakeReader{}
	for k := 0; k < 50; k++ {
		r.wts = append(r.wts, [][]float64{{0.0, float64(k)}})
	}

	result, err := Weight(r, 1e-9, 50, PairsMask(nil))
	assert.NoError(err)
	assert.Equal(KindPairs, result.Kind)
	assert.True(result.Pairs[NewPair(0, 0)])
}

func TestDetectorMonotonicityUnderTolerance(t *testing.T) {
	assert := assert.New(t)

	r := constantColumnReader(50, 3, 1, 0.0)
	// overwrite to make a small-but-nonzero spread at index 1
	for k := range r.sols {
		r.sols[k][1] = float64(k%3) * 0.001
	}

	tight, err := At(r, nil, 0.0005, 50, nil)
	assert.NoError(err)
	loose, err := At(r, nil, 0.01, 50, nil)
	assert.NoError(err)

	for i := range tight.Indices {
		assert.True(loose.Indices[i])
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	assert := assert.New(t)

	cases := []*Result{
		IndicesMask(1, 3, 5),
		PairsMask([]Pair{NewPair(0, 1), NewPair(2, 3)}),
		PerMeasureMask(map[int][]int{0: {1, 2}, 3: {4}}),
		WhereMask([]int{0, 0, 1}, []int{2, 5, 1}),
		IndicesMask(), // empty
	}

	for _, c := range cases {
		encoded := Encode("CollapseAt", c)
		decoded, err := Decode(encoded)
		assert.NoError(err)
		got := decoded["CollapseAt"]
		assert.Equal(c.Kind, got.Kind)

		// Structural comparison, not just the re-rendered string: this is
		// the actual decode(encode(result)) == result roundtrip property.
		if diff := cmp.Diff(c, got); diff != "" {
			t.Errorf("roundtrip mismatch for kind %s (-want +got):\n%s", c.Kind, diff)
		}
	}
}

func TestDecodeMultipleClauses(t *testing.T) {
	assert := assert.New(t)

	reason := Join(Encode("VTR", IndicesMask()), Encode("CollapseAt", IndicesMask(2, 4)))
	decoded, err := Decode(reason)
	assert.NoError(err)
	assert.Len(decoded, 2)
	assert.True(decoded["CollapseAt"].Indices[2])
	assert.True(decoded["CollapseAt"].Indices[4])
}
