// Package generator implements the pruned depth-first March-sequence
// search: it looks for a short candidate operation
// sequence that, once wrapped in the canonical six-element skeleton,
// detects every subcase in a fault catalogue.
package generator

import (
	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/march"
	"github.com/sarchlab/marchfault/internal/sim"
)

// alphabet is tried in this fixed lexicographic order at every recursion
// depth.
var alphabet = []march.Operation{
	{Kind: march.Write, Value: 0},
	{Kind: march.Write, Value: 1},
	{Kind: march.Read, Value: 0},
	{Kind: march.Read, Value: 1},
}

// pruned reports whether next may not follow prev in a candidate
// sequence: a read cannot profitably follow a write or read of the
// opposite value on the same cell.
func pruned(prev, next march.Operation) bool {
	switch {
	case prev.Kind == march.Write && prev.Value == 0 && next.Kind == march.Read && next.Value == 1:
		return true
	case prev.Kind == march.Write && prev.Value == 1 && next.Kind == march.Read && next.Value == 0:
		return true
	case prev.Kind == march.Read && prev.Value == 0 && next.Kind == march.Read && next.Value == 1:
		return true
	case prev.Kind == march.Read && prev.Value == 1 && next.Kind == march.Read && next.Value == 0:
		return true
	}
	return false
}

// Generate searches for a length-L candidate sequence whose wrapped
// program detects every subcase of cat. It returns the
// first accepted program in the pruned lexicographic search order, or
// false if none exists.
func Generate(d *sim.Driver, cat fault.Catalogue, length int) (march.Program, bool) {
	candidate := make([]march.Operation, 0, length)
	return search(d, cat, candidate, length)
}

func search(d *sim.Driver, cat fault.Catalogue, candidate []march.Operation, length int) (march.Program, bool) {
	if len(candidate) == length {
		prog := Wrap(candidate)
		if accepts(d, cat, prog) {
			return prog, true
		}
		return march.Program{}, false
	}

	for _, op := range alphabet {
		if len(candidate) > 0 && pruned(candidate[len(candidate)-1], op) {
			continue
		}
		next := append(candidate, op)
		if prog, ok := search(d, cat, next, length); ok {
			return prog, true
		}
	}
	return march.Program{}, false
}

func accepts(d *sim.Driver, cat fault.Catalogue, prog march.Program) bool {
	report := d.Run(cat, prog, sim.RunMetadata{})
	for _, rec := range report.Records {
		if !rec.Detection.AnyDetected() {
			return false
		}
	}
	return true
}

// Wrap builds the canonical six-element March program around candidate
// sequence s. An empty s wraps into the bare skeleton
// with Dk defaulting to 0.
func Wrap(s []march.Operation) march.Program {
	dk := 0
	if len(s) > 0 {
		dk = s[len(s)-1].Value
	}
	notDk := 1 - dk

	notS := make([]march.Operation, len(s))
	for i, op := range s {
		notS[i] = op.Flipped()
	}

	w := func(v int) march.Operation { return march.Operation{Kind: march.Write, Value: v} }
	r := func(v int) march.Operation { return march.Operation{Kind: march.Read, Value: v} }

	const x, notX = 0, 1

	return march.Program{
		Name: "generated",
		Elements: []march.Element{
			{Order: march.Any, Ops: []march.Operation{w(notDk)}},
			{Order: march.Ascending, Ops: append([]march.Operation{r(notDk), w(x)}, s...)},
			{Order: march.Ascending, Ops: append([]march.Operation{r(dk), w(notX)}, notS...)},
			{Order: march.Descending, Ops: append([]march.Operation{r(notDk), w(x)}, s...)},
			{Order: march.Descending, Ops: append([]march.Operation{r(dk), w(notX)}, notS...)},
			{Order: march.Any, Ops: []march.Operation{r(notDk)}},
		},
	}
}
