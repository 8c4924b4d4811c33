// Package fault implements the fault catalogue model and the one-cell and
// two-cell fault engines that inject catalogued faults into a simulated
// memory during a March test run.
package fault

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/marchfault/internal/march"
)

// Position is the relational placement of the aggressor relative to the
// victim in a two-cell (coupling) subcase.
type Position int

const (
	// AggBeforeVic places the aggressor at a lower address than the victim.
	AggBeforeVic Position = iota
	// AggAfterVic places the aggressor at a higher address than the victim.
	AggAfterVic
)

// CoordTag names which cell the trigger matcher is attached to in a
// two-cell subcase.
type CoordTag int

const (
	// Saa attaches the matcher to the aggressor.
	Saa CoordTag = iota
	// Svv attaches the matcher to the victim.
	Svv
)

// Subcase is either a OneCellSubcase or a TwoCellSubcase.
type Subcase interface {
	isSubcase()
}

// OneCellSubcase models a single-cell fault parameterization.
type OneCellSubcase struct {
	VI     int
	SeqV   []march.Operation
	FinalF int
	FinalR *int // nil means unset
}

func (OneCellSubcase) isSubcase() {}

// TwoCellSubcase models a coupling-fault parameterization.
type TwoCellSubcase struct {
	Position Position
	AI       int
	VI       int
	Seq      []march.Operation
	Coord    CoordTag
	FinalF   int
	FinalR   *int
}

func (TwoCellSubcase) isSubcase() {}

// Entry is a named fault primitive with its ordered subcases.
type Entry struct {
	Name     string
	Subcases []Subcase
}

// Catalogue is an ordered list of fault primitives.
type Catalogue struct {
	Entries []Entry
}

type catalogueFile struct {
	Faults []struct {
		Name     string   `json:"name"`
		Subcases []string `json:"subcases"`
	} `json:"faults"`
}

// LoadCatalogue reads and parses a fault catalogue JSON document.
func LoadCatalogue(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("fault: reading catalogue %q: %w", path, err)
	}

	var raw catalogueFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Catalogue{}, fmt.Errorf("fault: parsing catalogue %q: %w", path, err)
	}

	cat := Catalogue{Entries: make([]Entry, 0, len(raw.Faults))}
	for _, f := range raw.Faults {
		entry := Entry{Name: f.Name}
		for i, text := range f.Subcases {
			sc, err := ParseSubcase(text)
			if err != nil {
				return Catalogue{}, fmt.Errorf("fault: %q subcase %d: %w", f.Name, i, err)
			}
			entry.Subcases = append(entry.Subcases, sc)
		}
		if len(entry.Subcases) == 0 {
			return Catalogue{}, fmt.Errorf("fault: %q has no subcases", f.Name)
		}
		cat.Entries = append(cat.Entries, entry)
	}

	return cat, nil
}

// ParseSubcase parses one textual subcase condition.
//
// Fields are comma-separated at the top level; a non-empty operation
// sequence is written bracketed and comma-joined, e.g. "[W1,R1]", to
// disambiguate it from the outer tuple's own commas. An empty sequence is
// written "-".
//
// Five fields (single cell):   VI,seqV,D,finalF,finalR
// Eight fields (coupling):     A,AI,VI,seqA,seqV,D,finalF,finalR
func ParseSubcase(text string) (Subcase, error) {
	fields := splitTopLevel(text)

	switch len(fields) {
	case 5:
		return parseOneCell(fields)
	case 8:
		return parseTwoCell(fields)
	default:
		return nil, fmt.Errorf("bad field count %d in subcase %q", len(fields), text)
	}
}

func parseOneCell(f []string) (Subcase, error) {
	vi, err := parseValue(f[0])
	if err != nil {
		return nil, fmt.Errorf("VI: %w", err)
	}
	seq, err := parseSeqField(f[1])
	if err != nil {
		return nil, fmt.Errorf("seqV: %w", err)
	}
	// f[2] is D, informational, unused.
	finalF, err := parseValue(f[3])
	if err != nil {
		return nil, fmt.Errorf("finalF: %w", err)
	}
	finalR, err := parseOptionalValue(f[4])
	if err != nil {
		return nil, fmt.Errorf("finalR: %w", err)
	}

	return OneCellSubcase{VI: vi, SeqV: seq, FinalF: finalF, FinalR: finalR}, nil
}

func parseTwoCell(f []string) (Subcase, error) {
	posCode, err := parseValue(f[0])
	if err != nil {
		return nil, fmt.Errorf("A: %w", err)
	}
	var pos Position
	switch posCode {
	case 0:
		pos = AggBeforeVic
	case 1:
		pos = AggAfterVic
	default:
		return nil, fmt.Errorf("A: unknown position code %d", posCode)
	}

	ai, err := parseValue(f[1])
	if err != nil {
		return nil, fmt.Errorf("AI: %w", err)
	}
	vi, err := parseValue(f[2])
	if err != nil {
		return nil, fmt.Errorf("VI: %w", err)
	}
	seqA, err := parseSeqField(f[3])
	if err != nil {
		return nil, fmt.Errorf("seqA: %w", err)
	}
	seqV, err := parseSeqField(f[4])
	if err != nil {
		return nil, fmt.Errorf("seqV: %w", err)
	}
	// f[5] is D, informational, unused.
	finalF, err := parseValue(f[6])
	if err != nil {
		return nil, fmt.Errorf("finalF: %w", err)
	}
	finalR, err := parseOptionalValue(f[7])
	if err != nil {
		return nil, fmt.Errorf("finalR: %w", err)
	}

	switch {
	case len(seqA) > 0 && len(seqV) > 0:
		return nil, fmt.Errorf("both seqA and seqV present; exactly one is required")
	case len(seqA) > 0:
		return TwoCellSubcase{Position: pos, AI: ai, VI: vi, Seq: seqA, Coord: Saa, FinalF: finalF, FinalR: finalR}, nil
	case len(seqV) > 0:
		return TwoCellSubcase{Position: pos, AI: ai, VI: vi, Seq: seqV, Coord: Svv, FinalF: finalF, FinalR: finalR}, nil
	default:
		return nil, fmt.Errorf("neither seqA nor seqV present")
	}
}

func parseValue(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || (v != 0 && v != 1) {
		return 0, fmt.Errorf("expected 0 or 1, got %q", s)
	}
	return v, nil
}

func parseOptionalValue(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return nil, nil
	}
	v, err := parseValue(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseSeqField(s string) ([]march.Operation, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return nil, nil
	}

	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	tokens := strings.Split(s, ",")

	seq := make([]march.Operation, 0, len(tokens))
	for _, tok := range tokens {
		op, err := march.ParseToken(tok)
		if err != nil {
			return nil, err
		}
		seq = append(seq, op)
	}
	return seq, nil
}

// Textualize renders sub back into the grammar ParseSubcase accepts, for
// the round-trip property (parse → textualize → parse yields an
// equivalent subcase).
func Textualize(sub Subcase) string {
	switch s := sub.(type) {
	case OneCellSubcase:
		return strings.Join([]string{
			strconv.Itoa(s.VI), seqField(s.SeqV), "0",
			strconv.Itoa(s.FinalF), optField(s.FinalR),
		}, ",")
	case TwoCellSubcase:
		seqA, seqV := "-", "-"
		switch s.Coord {
		case Saa:
			seqA = seqField(s.Seq)
		case Svv:
			seqV = seqField(s.Seq)
		}
		posCode := "0"
		if s.Position == AggAfterVic {
			posCode = "1"
		}
		return strings.Join([]string{
			posCode, strconv.Itoa(s.AI), strconv.Itoa(s.VI), seqA, seqV, "0",
			strconv.Itoa(s.FinalF), optField(s.FinalR),
		}, ",")
	default:
		panic("fault: unknown subcase type")
	}
}

func seqField(ops []march.Operation) string {
	if len(ops) == 0 {
		return "-"
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func optField(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// splitTopLevel splits s on commas that are not nested inside [ ].
func splitTopLevel(s string) []string {
	var fields []string
	depth := 0
	start := 0

	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, s[start:i])
				start = i + 1
			}
		}
	}
	fields = append(fields, s[start:])

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
