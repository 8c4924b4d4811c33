// Package exec implements the sequence executor: it applies a March
// program to a fault engine in the correct address order.
package exec

import (
	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/march"
)

// Run applies prog to engine, address by address within each element, in
// the element's address order, clearing the trigger window at every
// element boundary.
func Run(engine fault.Engine, prog march.Program) {
	ascending := engine.OwnedAddresses()

	for ei, el := range prog.Elements {
		addrs := ascending
		if el.Order == march.Descending {
			addrs = reversed(ascending)
		}

		for _, addr := range addrs {
			for oi, op := range el.Ops {
				id := march.ID{ElementIndex: ei, OpIndex: oi}
				switch op.Kind {
				case march.Write:
					engine.OnWrite(id, addr, op)
				case march.Read:
					engine.OnRead(id, addr, op)
				}
			}
		}

		engine.ClearElementWindow()
	}
}

func reversed(addrs []int) []int {
	out := make([]int, len(addrs))
	for i, a := range addrs {
		out[len(addrs)-1-i] = a
	}
	return out
}
