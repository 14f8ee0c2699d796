// Package monitor implements the append-only time-series recorder the
// solver publishes per-iteration telemetry through, and that the collapse
// detectors mine. It replaces grample's expvar-based process monitor
// (cmd/monitor.go) - that one reported live counters over HTTP for a CLI
// that is out of scope here - with the in-core "Sow" style recorder from
// the original differential-evolution solver, given a typed Go home.
//
// Per the REDESIGN FLAGS, the monitor is not a global passed everywhere: the
// solver holds a Writer, and hands detectors a read-only Reader.
package monitor

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/CraigKelly/diffevo/ringbuf"
)

// Record is one (parameter_vector, cost, step_index) tuple, optionally
// carrying the product-measure weights/positions recorded alongside it.
type Record struct {
	Vector    []float64
	Cost      float64
	Step      int
	Weights   [][]float64 // per-measure weight vectors, product-measure problems only
	Positions [][]float64 // per-measure position vectors, product-measure problems only
}

// Writer is the append-only half of the monitor capability.
type Writer interface {
	// Record appends one telemetry sample.
	Record(x []float64, cost float64) error
	// RecordMeasures attaches product-measure weights/positions to the most
	// recently recorded sample. Returns an error if nothing has been
	// recorded yet.
	RecordMeasures(weights, positions [][]float64) error
}

// Reader is the read-only half of the monitor capability; it is the only
// thing collapse detectors ever receive.
type Reader interface {
	Len() int
	// Records returns up to the last n recorded samples, oldest first. n<=0
	// returns nil.
	Records(n int) []Record
	// Solutions returns up to the last n recorded parameter vectors, oldest
	// first.
	Solutions(n int) [][]float64
	// Weights returns up to the last n recorded per-measure weight sets,
	// oldest first. Entries with no recorded weights are omitted.
	Weights(n int) [][][]float64
	// Positions returns up to the last n recorded per-measure position
	// sets, oldest first. Entries with no recorded positions are omitted.
	Positions(n int) [][][]float64
}

// ReadWriter is the full monitor capability; AbstractSolver holds one of
// these per monitor it owns (evaluation monitor, step monitor).
type ReadWriter interface {
	Writer
	Reader
}

// Monitor is the concrete ReadWriter implementation. The zero value is not
// usable; construct with New or NewVerbose.
//
// A Monitor is safe for concurrent use: §4.7's invariant-generation solver
// evaluates trials through a parallel Mapper, and every trial's evaluation
// records into the same EvalMonitor from its own goroutine, so every method
// below takes mu.
type Monitor struct {
	mu sync.Mutex

	id      uuid.UUID
	buf     *ringbuf.Ring[Record]
	step    int
	verbose bool
	sink    io.Writer
	stride  int
}

// New creates a silent monitor that records in memory only, with the given
// sliding-window capacity (detectors default to needing the last 50
// generations, so callers should size capacity at least that large, per
// the default collapse detector window).
func New(capacity int) *Monitor {
	return &Monitor{
		id:  uuid.New(),
		buf: ringbuf.New[Record](capacity),
	}
}

// NewVerbose creates a monitor that, in addition to recording in memory,
// writes every stride-th entry to sink. Per the design decision recorded in
// DESIGN.md (the source was ambiguous about timing), the verbose write
// happens at the same time as the record that feeds the step monitor, not
// one step later.
func NewVerbose(capacity int, sink io.Writer, stride int) *Monitor {
	if stride < 1 {
		stride = 1
	}
	m := New(capacity)
	m.verbose = true
	m.sink = sink
	m.stride = stride
	return m
}

// ID returns the run identifier tagging this monitor's records, so that
// multiple concurrent solver runs sharing one trace sink can be told apart.
func (m *Monitor) ID() uuid.UUID { return m.id }

// Record implements Writer.
func (m *Monitor) Record(x []float64, cost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{Vector: append([]float64{}, x...), Cost: cost, Step: m.step}
	m.buf.Add(rec)
	m.step++

	if m.verbose && (m.step%m.stride == 0) {
		fmt.Fprintf(m.sink, "[%s] step=%d cost=%.6g x=%v\n", m.id, rec.Step, cost, rec.Vector)
	}
	return nil
}

// RecordMeasures implements Writer.
func (m *Monitor) RecordMeasures(weights, positions [][]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buf.Count == 0 {
		return errors.New("monitor: RecordMeasures called before any Record")
	}
	// The ring buffer holds values, not pointers, so the stored records are
	// rebuilt with the latest one amended to attach the measures.
	recs := m.buf.All()
	recs[len(recs)-1].Weights = weights
	recs[len(recs)-1].Positions = positions
	total := m.buf.TotalSeen
	m.buf = ringbuf.New[Record](m.buf.Cap)
	for _, r := range recs {
		m.buf.Add(r)
	}
	m.buf.TotalSeen = total // amending, not a new sample
	return nil
}

// Len implements Reader.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Count
}

// Records implements Reader.
func (m *Monitor) Records(n int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Last(n)
}

// Solutions implements Reader.
func (m *Monitor) Solutions(n int) [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.buf.Last(n)
	out := make([][]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Vector
	}
	return out
}

// Weights implements Reader.
func (m *Monitor) Weights(n int) [][][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.buf.Last(n)
	out := make([][][]float64, 0, len(recs))
	for _, r := range recs {
		if r.Weights != nil {
			out = append(out, r.Weights)
		}
	}
	return out
}

// Positions implements Reader.
func (m *Monitor) Positions(n int) [][][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.buf.Last(n)
	out := make([][][]float64, 0, len(recs))
	for _, r := range recs {
		if r.Positions != nil {
			out = append(out, r.Positions)
		}
	}
	return out
}
