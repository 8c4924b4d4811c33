package sim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/march"
)

// RunMetadata identifies a run without relying on wall-clock time inside
// the deterministic core; the CLI stamps wall-clock time separately.
type RunMetadata struct {
	RunID       string
	Seed        int64
	Rows, Cols  int
	ProgramName string
}

// SubcaseRecord is one catalogue subcase's aggregated detection outcome.
type SubcaseRecord struct {
	FaultName    string
	SubcaseIndex int
	Subcase      fault.Subcase
	Detection    fault.Detection
}

// Report is the full outcome of one driver run over a catalogue.
type Report struct {
	Meta    RunMetadata
	Records []SubcaseRecord
}

// ReadIDs returns every read operation identifier in prog, in document
// order (element index, then op index). This is the canonical order used
// to render a subcase's detection syndrome.
func ReadIDs(prog march.Program) []march.ID {
	var ids []march.ID
	for ei, el := range prog.Elements {
		for oi, op := range el.Ops {
			if op.Kind == march.Read {
				ids = append(ids, march.ID{ElementIndex: ei, OpIndex: oi})
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].ElementIndex != ids[j].ElementIndex {
			return ids[i].ElementIndex < ids[j].ElementIndex
		}
		return ids[i].OpIndex < ids[j].OpIndex
	})
	return ids
}

// Syndrome renders det's detection bits over ids, in order, as a binary
// string and its hexadecimal equivalent. Missing ids render as "0".
func Syndrome(det fault.Detection, ids []march.ID) (binary, hex string) {
	var b strings.Builder
	for _, id := range ids {
		if det.Flags[id] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	binary = b.String()
	if binary == "" {
		return "", "0"
	}

	v, err := strconv.ParseUint(binary, 2, 64)
	if err != nil {
		// len(ids) can exceed 64 in principle; fall back to a per-nibble
		// conversion so arbitrarily long syndromes still render.
		return binary, hexFromBinary(binary)
	}
	width := (len(binary) + 3) / 4
	hex = strconv.FormatUint(v, 16)
	for len(hex) < width {
		hex = "0" + hex
	}
	return binary, hex
}

// DetectedPositions returns the subset of ids, in order, for which det
// recorded a true flag.
func DetectedPositions(det fault.Detection, ids []march.ID) []march.ID {
	var out []march.ID
	for _, id := range ids {
		if det.Flags[id] {
			out = append(out, id)
		}
	}
	return out
}

func hexFromBinary(binary string) string {
	var b strings.Builder
	for len(binary)%4 != 0 {
		binary = "0" + binary
	}
	for i := 0; i < len(binary); i += 4 {
		v, _ := strconv.ParseUint(binary[i:i+4], 2, 8)
		b.WriteString(strconv.FormatUint(v, 16))
	}
	return b.String()
}
