// Package sim implements the simulator driver: for every catalogued
// subcase, it instantiates the appropriate fault engine at both initial
// memory values, runs the executor, and aggregates the detection records
// into a Report.
package sim

import (
	"github.com/sarchlab/marchfault/internal/alloc"
	"github.com/sarchlab/marchfault/internal/exec"
	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/logging"
	"github.com/sarchlab/marchfault/internal/march"
)

// Driver owns the random source and grid dimensions for one run and
// executes the full catalogue against a single March program.
type Driver struct {
	Rand   alloc.RandSource
	Grid   alloc.Grid
	Logger *logging.Logger // optional; nil disables logging
}

// NewDriver builds a Driver over the given random source and grid.
func NewDriver(rnd alloc.RandSource, grid alloc.Grid) *Driver {
	return &Driver{Rand: rnd, Grid: grid}
}

// Run simulates every subcase of cat against prog and returns the
// aggregated report. Per subcase, the driver sweeps both initial memory
// values and unions the resulting detection flags. meta's
// Rows/Cols/ProgramName are overwritten from d.Grid and prog; RunID and
// Seed are left as given by the caller.
func (d *Driver) Run(cat fault.Catalogue, prog march.Program, meta RunMetadata) Report {
	records := make([]SubcaseRecord, 0)

	for _, entry := range cat.Entries {
		for si, sub := range entry.Subcases {
			merged := fault.NewDetection()

			for _, initial := range [2]int{0, 1} {
				placement := alloc.Allocate(d.Rand, d.Grid, sub)
				engine := d.buildEngine(placement, initial, sub)
				exec.Run(engine, prog)
				merged = fault.Merge(merged, engine.Detection())
			}

			if d.Logger != nil {
				d.Logger.Debug("subcase simulated",
					"fault", entry.Name,
					"subcase", si,
					"detected", merged.AnyDetected(),
				)
			}

			records = append(records, SubcaseRecord{
				FaultName:    entry.Name,
				SubcaseIndex: si,
				Subcase:      sub,
				Detection:    merged,
			})
		}
	}

	meta.Rows = d.Grid.Rows
	meta.Cols = d.Grid.Cols
	meta.ProgramName = prog.Name

	return Report{Meta: meta, Records: records}
}

func (d *Driver) buildEngine(p alloc.Placement, initial int, sub fault.Subcase) fault.Engine {
	switch s := sub.(type) {
	case fault.OneCellSubcase:
		return fault.NewOneCellEngine(p.Victim, initial, s)
	case fault.TwoCellSubcase:
		return fault.NewTwoCellEngine(p.Aggr, p.Victim, initial, s)
	default:
		panic("sim: unknown subcase type")
	}
}
