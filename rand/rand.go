package rand

import (
	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers ahead of
// demand. Used as the sole source of randomness for population
// initialization, mutation strategies, and crossover coin flips, so that an
// entire solver run is reproducible from a single seed.
type Generator struct {
	ch chan int64
}

// NewGeneratorSlice starts a new background PRNG based on the given seed
// slice. If the slice has only one entry, then the MT generator is
// initialized with Seed. Otherwise SeedFromSlice is used
func NewGeneratorSlice(seed []uint64) (*Generator, error) {
	if len(seed) < 1 {
		return nil, errors.Errorf("Invalid generator seed array %v", seed)
	}

	numChan := make(chan int64, 1024)

	r := mt19937.New()
	if len(seed) == 1 {
		r.Seed(int64(seed[0]))
	} else {
		r.SeedFromSlice(seed)
	}

	go func() {
		for {
			numChan <- r.Int63()
		}
	}()

	g := &Generator{
		ch: numChan,
	}

	return g, nil
}

// NewGenerator is a helper wrapper around NewGeneratorSlice
func NewGenerator(seed int64) (*Generator, error) {
	return NewGeneratorSlice([]uint64{uint64(seed)})
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return <-g.ch
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Int31 is just a copy of the golang impl
func (g *Generator) Int31() int32 {
	return int32(g.Int63() >> 32)
}

// Int31n is just a copy of the golang impL
func (g *Generator) Int31n(n int32) int32 {
	if n <= 0 {
		panic("invalid argument to Int31n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int31() & (n - 1)
	}

	max := int32((1 << 31) - 1 - (1<<31)%uint32(n))
	v := g.Int31()

	for v > max {
		v = g.Int31()
	}

	return v % n
}

// Float64 uses the commented, simpler implmentation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// Intn returns a non-negative int in [0,n).
func (g *Generator) Intn(n int) int {
	return int(g.Int63n(int64(n)))
}

// UniformRange returns a float64 uniformly distributed in [lo,hi).
func (g *Generator) UniformRange(lo, hi float64) float64 {
	return lo + g.Float64()*(hi-lo)
}

// DistinctIntn picks count distinct ints from [0,n), excluding any index in
// exclude. Panics if the pool of eligible indices is smaller than count,
// since that is a configuration error (NP too small for the strategy), not a
// runtime condition to recover from.
func (g *Generator) DistinctIntn(n, count int, exclude ...int) []int {
	excluded := make(map[int]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}

	picked := make(map[int]bool, count)
	out := make([]int, 0, count)
	for len(out) < count {
		if len(picked)+len(excluded) >= n {
			panic("rand: not enough distinct indices available")
		}
		i := g.Intn(n)
		if excluded[i] || picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, i)
	}
	return out
}
