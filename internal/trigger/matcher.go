// Package trigger implements the sliding-window prefix matcher that arms a
// fault once a cell's recent operation history matches a trigger sequence.
package trigger

import "github.com/sarchlab/marchfault/internal/march"

// Record is a single observed operation on a cell, along with the cell's
// value immediately before the operation was applied.
type Record struct {
	Before int
	Op     march.Operation
}

func (r Record) equalOp(op march.Operation) bool {
	return r.Op.Kind == op.Kind && r.Op.Value == op.Value
}

// Matcher is a fixed-capacity ring buffer over the last len(Seq) operation
// records on one cell, used to evaluate a trigger sequence.
type Matcher struct {
	initial int // TV
	seq     []march.Operation
	window  []Record // capacity len(seq); oldest at index 0
}

// New creates a matcher for the trigger (initial value TV, sequence S).
// A nil or empty seq means a pure value-equality trigger.
func New(initial int, seq []march.Operation) *Matcher {
	return &Matcher{
		initial: initial,
		seq:     append([]march.Operation(nil), seq...),
	}
}

// Reset clears the sliding window. It does not forget the configured
// trigger (initial value, sequence) — only per-element history.
func (m *Matcher) Reset() {
	m.window = nil
}

// Observe records a new operation on the matcher's cell and returns
// whether the trigger now matches.
//
// currentValue is the live value of the cell at the moment of observation
// (used only for the pure value-equality case, where history is ignored).
func (m *Matcher) Observe(rec Record, currentValue int) bool {
	if len(m.seq) == 0 {
		return currentValue == m.initial
	}

	m.window = append(m.window, rec)
	if len(m.window) > len(m.seq) {
		m.window = m.window[len(m.window)-len(m.seq):]
	}

	return m.matches()
}

func (m *Matcher) matches() bool {
	if len(m.window) != len(m.seq) {
		return false
	}
	if m.window[0].Before != m.initial {
		return false
	}
	for i, want := range m.seq {
		if !m.window[i].equalOp(want) {
			return false
		}
	}
	return true
}
