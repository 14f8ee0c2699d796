// Package termination implements the stop-condition predicates the solver
// evaluates at the end of every generation, and the And/Or/When combinators
// that compose them. Grounded on mystic's termination.py, with the
// string-concatenation-and-eval reason encoding replaced by the structured
// collapse.Result payloads from the collapse package, projected to text only
// at the interface boundary (§9's REDESIGN FLAGS).
package termination

import "github.com/CraigKelly/diffevo/monitor"

// State is the read-only view of solver state a predicate evaluates. The
// solver builds one fresh each generation; predicates must not retain it
// past the call in which they receive it.
type State struct {
	BestEnergy    float64
	BestVector    []float64
	EnergyHistory []float64
	Generations   int
	FCalls        int
	Monitor       monitor.Reader
	Population    [][]float64
	Energies      []float64
}

// Predicate is a pure function of solver state. It returns "" to mean
// "continue"; any non-empty string is the stop reason, built from the
// "name at payload" clause grammar.
type Predicate func(*State) string
