package fault

import (
	"fmt"

	"github.com/sarchlab/marchfault/internal/march"
	"github.com/sarchlab/marchfault/internal/trigger"
)

// Detection is the per-subcase detection record: a dense
// per-operation detected flag plus the set of addresses where detection
// fired.
type Detection struct {
	Flags     map[march.ID]bool
	Addresses map[int]struct{}
}

// NewDetection returns an empty detection record.
func NewDetection() Detection {
	return Detection{
		Flags:     make(map[march.ID]bool),
		Addresses: make(map[int]struct{}),
	}
}

// recordRead materializes a (possibly negative) detection entry for a read
// operation, OR-accumulating across every address the op was applied to.
func (d Detection) recordRead(id march.ID, addr int, detected bool) {
	if _, ok := d.Flags[id]; !ok {
		d.Flags[id] = false
	}
	if detected {
		d.Flags[id] = true
		d.Addresses[addr] = struct{}{}
	}
}

// AnyDetected reports whether at least one operation identifier detected
// the fault.
func (d Detection) AnyDetected() bool {
	for _, v := range d.Flags {
		if v {
			return true
		}
	}
	return false
}

// Merge returns the union of a and b: for every operation id, the
// merged flag is true if either contributor recorded it as true.
func Merge(a, b Detection) Detection {
	out := NewDetection()
	for id, v := range a.Flags {
		out.Flags[id] = v
	}
	for id, v := range b.Flags {
		out.Flags[id] = out.Flags[id] || v
	}
	for addr := range a.Addresses {
		out.Addresses[addr] = struct{}{}
	}
	for addr := range b.Addresses {
		out.Addresses[addr] = struct{}{}
	}
	return out
}

// Engine is a fault engine: it owns one or two memory cells for the
// duration of one subcase and injects the configured fault when its
// trigger arms.
type Engine interface {
	// Reset restores the engine to the state it had right after
	// construction: cell values back to their initial values, trigger
	// history cleared, detection record emptied.
	Reset()
	// ClearElementWindow clears trigger history without touching cell
	// values or the detection record so far. Called at every March
	// element boundary.
	ClearElementWindow()
	// OwnedAddresses returns, in ascending order, the addresses this
	// engine materializes.
	OwnedAddresses() []int
	OnWrite(id march.ID, addr int, op march.Operation)
	OnRead(id march.ID, addr int, op march.Operation)
	Detection() Detection
}

type oneCellEngine struct {
	addr         int
	initialValue int
	value        int
	matcher      *trigger.Matcher
	finalF       int
	finalR       *int
	detection    Detection
}

// NewOneCellEngine builds a single-cell fault engine for the victim at
// addr, starting the cell at initialValue (the driver's current sweep
// value, not necessarily sub.VI).
func NewOneCellEngine(addr, initialValue int, sub OneCellSubcase) Engine {
	return &oneCellEngine{
		addr:         addr,
		initialValue: initialValue,
		value:        initialValue,
		matcher:      trigger.New(sub.VI, sub.SeqV),
		finalF:       sub.FinalF,
		finalR:       sub.FinalR,
		detection:    NewDetection(),
	}
}

func (e *oneCellEngine) Reset() {
	e.value = e.initialValue
	e.matcher.Reset()
	e.detection = NewDetection()
}

func (e *oneCellEngine) ClearElementWindow() {
	e.matcher.Reset()
}

func (e *oneCellEngine) OwnedAddresses() []int {
	return []int{e.addr}
}

func (e *oneCellEngine) OnWrite(id march.ID, addr int, op march.Operation) {
	if addr != e.addr {
		panic(fmt.Sprintf("fault: engine does not own address %d", addr))
	}

	before := e.value
	e.value = op.Value
	if e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.value) {
		e.value = e.finalF
	}
}

func (e *oneCellEngine) OnRead(id march.ID, addr int, op march.Operation) {
	if addr != e.addr {
		panic(fmt.Sprintf("fault: engine does not own address %d", addr))
	}

	before := e.value
	armedNow := e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.value)
	if armedNow {
		e.value = e.finalF
	}

	returned := e.value
	if armedNow && e.finalR != nil {
		returned = *e.finalR
	}

	e.detection.recordRead(id, addr, returned != op.Value)
}

func (e *oneCellEngine) Detection() Detection {
	return e.detection
}

type twoCellEngine struct {
	aggrAddr, vicAddr       int
	initialAggr, initialVic int
	aggrValue, vicValue     int
	matcher                 *trigger.Matcher
	coord                   CoordTag
	sidePredicateInitial    int
	finalF                  int
	finalR                  *int
	detection               Detection
}

// NewTwoCellEngine builds a coupling fault engine. Both cells start at
// initialValue, the driver's current sweep value; sub.AI/sub.VI are used
// only as the matcher's required initial value and the side predicate.
func NewTwoCellEngine(aggrAddr, vicAddr, initialValue int, sub TwoCellSubcase) Engine {
	e := &twoCellEngine{
		aggrAddr:    aggrAddr,
		vicAddr:     vicAddr,
		initialAggr: initialValue,
		initialVic:  initialValue,
		aggrValue:   initialValue,
		vicValue:    initialValue,
		coord:       sub.Coord,
		finalF:      sub.FinalF,
		finalR:      sub.FinalR,
		detection:   NewDetection(),
	}

	switch sub.Coord {
	case Saa:
		e.matcher = trigger.New(sub.AI, sub.Seq)
		e.sidePredicateInitial = sub.VI
	case Svv:
		e.matcher = trigger.New(sub.VI, sub.Seq)
		e.sidePredicateInitial = sub.AI
	}

	return e
}

func (e *twoCellEngine) Reset() {
	e.aggrValue = e.initialAggr
	e.vicValue = e.initialVic
	e.matcher.Reset()
	e.detection = NewDetection()
}

func (e *twoCellEngine) ClearElementWindow() {
	e.matcher.Reset()
}

func (e *twoCellEngine) OwnedAddresses() []int {
	if e.aggrAddr < e.vicAddr {
		return []int{e.aggrAddr, e.vicAddr}
	}
	return []int{e.vicAddr, e.aggrAddr}
}

func (e *twoCellEngine) OnWrite(id march.ID, addr int, op march.Operation) {
	switch addr {
	case e.vicAddr:
		before := e.vicValue
		e.vicValue = op.Value
		if e.coord == Svv {
			if e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.vicValue) && e.aggrValue == e.sidePredicateInitial {
				e.vicValue = e.finalF
			}
		}
	case e.aggrAddr:
		before := e.aggrValue
		e.aggrValue = op.Value
		if e.coord == Saa {
			if e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.aggrValue) && e.vicValue == e.sidePredicateInitial {
				e.vicValue = e.finalF
			}
		}
	default:
		panic(fmt.Sprintf("fault: engine does not own address %d", addr))
	}
}

func (e *twoCellEngine) OnRead(id march.ID, addr int, op march.Operation) {
	switch addr {
	case e.vicAddr:
		before := e.vicValue
		armedNow := false
		if e.coord == Svv {
			if e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.vicValue) && e.aggrValue == e.sidePredicateInitial {
				e.vicValue = e.finalF
				armedNow = true
			}
		}
		returned := e.vicValue
		if armedNow && e.finalR != nil {
			returned = *e.finalR
		}
		e.detection.recordRead(id, addr, returned != op.Value)
	case e.aggrAddr:
		before := e.aggrValue
		if e.coord == Saa {
			if e.matcher.Observe(trigger.Record{Before: before, Op: op}, e.aggrValue) && e.vicValue == e.sidePredicateInitial {
				e.vicValue = e.finalF
			}
		}
		returned := e.aggrValue
		e.detection.recordRead(id, addr, returned != op.Value)
	default:
		panic(fmt.Sprintf("fault: engine does not own address %d", addr))
	}
}

func (e *twoCellEngine) Detection() Detection {
	return e.detection
}
