// Package alloc implements the address allocator that places a victim (and,
// for coupling subcases, an aggressor) inside a rectangular memory grid.
package alloc

import "github.com/sarchlab/marchfault/internal/fault"

// RandSource is the minimal random-number interface the allocator needs,
// so tests can inject a deterministic or mocked source instead of a live
// *rand.Rand.
type RandSource interface {
	Intn(n int) int
}

// Grid describes a rectangular memory of Rows*Cols addresses, numbered
// row-major from 0.
type Grid struct {
	Rows, Cols int
}

// Size returns the total number of addresses.
func (g Grid) Size() int { return g.Rows * g.Cols }

// Placement is the result of one allocation: Victim is always set; Aggr is
// valid only for two-cell subcases.
type Placement struct {
	Victim  int
	Aggr    int
	HasAggr bool
}

// Allocate samples a victim (and, for a TwoCellSubcase, an aggressor)
// address.
func Allocate(rnd RandSource, grid Grid, sub fault.Subcase) Placement {
	switch s := sub.(type) {
	case fault.OneCellSubcase:
		return Placement{Victim: rnd.Intn(grid.Size())}
	case fault.TwoCellSubcase:
		return allocateTwoCell(rnd, grid, s.Position)
	default:
		panic("alloc: unknown subcase type")
	}
}

func allocateTwoCell(rnd RandSource, grid Grid, pos fault.Position) Placement {
	switch pos {
	case fault.AggBeforeVic:
		return allocateBefore(rnd, grid)
	case fault.AggAfterVic:
		return allocateAfter(rnd, grid)
	default:
		panic("alloc: unknown position code")
	}
}

// allocateBefore samples victim in [1, rows*cols-1], aggressor = the left
// neighbour (victim-1) or top neighbour (victim-cols), chosen uniformly
// when both exist, else whichever exists.
func allocateBefore(rnd RandSource, grid Grid) Placement {
	total := grid.Size()
	victim := 1 + rnd.Intn(total-1)

	row := victim / grid.Cols
	col := victim % grid.Cols

	hasLeft := col > 0
	hasTop := row > 0

	var aggr int
	switch {
	case hasLeft && hasTop:
		if rnd.Intn(2) == 0 {
			aggr = victim - 1
		} else {
			aggr = victim - grid.Cols
		}
	case hasLeft:
		aggr = victim - 1
	case hasTop:
		aggr = victim - grid.Cols
	default:
		panic("alloc: victim has neither a left nor a top neighbour")
	}

	return Placement{Victim: victim, Aggr: aggr, HasAggr: true}
}

// allocateAfter samples victim in [0, rows*cols-2], aggressor = the right
// neighbour (victim+1) or bottom neighbour (victim+cols), symmetric to
// allocateBefore.
func allocateAfter(rnd RandSource, grid Grid) Placement {
	total := grid.Size()
	victim := rnd.Intn(total - 1)

	row := victim / grid.Cols
	col := victim % grid.Cols

	hasRight := col < grid.Cols-1
	hasBottom := row < grid.Rows-1

	var aggr int
	switch {
	case hasRight && hasBottom:
		if rnd.Intn(2) == 0 {
			aggr = victim + 1
		} else {
			aggr = victim + grid.Cols
		}
	case hasRight:
		aggr = victim + 1
	case hasBottom:
		aggr = victim + grid.Cols
	default:
		panic("alloc: victim has neither a right nor a bottom neighbour")
	}

	return Placement{Victim: victim, Aggr: aggr, HasAggr: true}
}
