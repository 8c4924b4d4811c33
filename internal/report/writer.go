// Package report renders a simulator Report into the canonical text file
// format, plus a condensed console table as a convenience.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/march"
	"github.com/sarchlab/marchfault/internal/sim"
)

// WriteText renders rep in the plain text report format: for every
// subcase, its identifying tuple, the concatenated detection syndrome in
// binary and hex, the detected positions, and an "undetected" marker when
// nothing fired.
func WriteText(w io.Writer, prog march.Program, rep sim.Report) {
	ids := sim.ReadIDs(prog)

	fmt.Fprintf(w, "march program: %s\n", rep.Meta.ProgramName)
	fmt.Fprintf(w, "seed: %d  grid: %dx%d  run: %s\n\n", rep.Meta.Seed, rep.Meta.Rows, rep.Meta.Cols, rep.Meta.RunID)

	for _, rec := range rep.Records {
		binary, hex := sim.Syndrome(rec.Detection, ids)
		positions := sim.DetectedPositions(rec.Detection, ids)

		fmt.Fprintf(w, "%s[%d] %s\n", rec.FaultName, rec.SubcaseIndex, formatSubcase(rec.Subcase))
		fmt.Fprintf(w, "  syndrome: %s (0x%s)\n", binary, hex)
		if len(positions) == 0 {
			fmt.Fprintln(w, "  undetected")
		} else {
			fmt.Fprintf(w, "  detected at: %s\n", joinIDs(positions))
		}
		fmt.Fprintln(w)
	}
}

// SaveText writes rep to a named file, overwriting it if present.
func SaveText(path string, prog march.Program, rep sim.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %q: %w", path, err)
	}
	defer f.Close()

	WriteText(f, prog, rep)
	return nil
}

// PrintTable renders a condensed go-pretty ASCII table of rep to w. This is
// a supplementary convenience; the text file from WriteText/SaveText is
// the canonical report format.
func PrintTable(w io.Writer, prog march.Program, rep sim.Report) {
	ids := sim.ReadIDs(prog)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"fault", "subcase", "syndrome", "hex", "status"})

	for _, rec := range rep.Records {
		binary, hex := sim.Syndrome(rec.Detection, ids)
		status := "detected"
		if !rec.Detection.AnyDetected() {
			status = "undetected"
		}
		t.AppendRow(table.Row{rec.FaultName, rec.SubcaseIndex, binary, hex, status})
	}

	t.Render()
}

func formatSubcase(sub fault.Subcase) string {
	switch s := sub.(type) {
	case fault.OneCellSubcase:
		return fmt.Sprintf("<%d %s/%d/%s>", s.VI, opsString(s.SeqV), s.FinalF, optionalString(s.FinalR))
	case fault.TwoCellSubcase:
		before, tag := s.AI, "Saa"
		if s.Coord == fault.Svv {
			before, tag = s.VI, "Svv"
		}
		return fmt.Sprintf("<%d %s/%d/%s> %s", before, opsString(s.Seq), s.FinalF, optionalString(s.FinalR), tag)
	default:
		panic("report: unknown subcase type")
	}
}

func opsString(ops []march.Operation) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(op.String())
	}
	return b.String()
}

func optionalString(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func joinIDs(ids []march.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
