package march

import (
	"encoding/json"
	"fmt"
	"os"
)

// libraryFile is the on-disk JSON shape of a March-program library:
//
//	{"programs": [{"name": "marchC-", "text": "a(w0);a(r0,w1);..."}]}
type libraryFile struct {
	Programs []struct {
		Name string `json:"name"`
		Text string `json:"text"`
	} `json:"programs"`
}

// Library is a named, ordered collection of March programs, presented to
// the caller as a numbered list.
type Library struct {
	Programs []Program
}

// LoadLibrary reads a March-program library file and parses every entry.
func LoadLibrary(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, fmt.Errorf("march: reading library %q: %w", path, err)
	}

	var raw libraryFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Library{}, fmt.Errorf("march: parsing library %q: %w", path, err)
	}

	lib := Library{Programs: make([]Program, 0, len(raw.Programs))}
	for _, entry := range raw.Programs {
		prog, err := ParseProgram(entry.Name, entry.Text)
		if err != nil {
			return Library{}, fmt.Errorf("march: program %q: %w", entry.Name, err)
		}
		lib.Programs = append(lib.Programs, prog)
	}

	if len(lib.Programs) == 0 {
		return Library{}, fmt.Errorf("march: library %q contains no programs", path)
	}

	return lib, nil
}

// Names returns the numbered list of program names for interactive display.
func (l Library) Names() []string {
	names := make([]string, len(l.Programs))
	for i, p := range l.Programs {
		names[i] = p.Name
	}
	return names
}

// At returns the program at a 1-based index, as presented to the user.
func (l Library) At(oneBased int) (Program, error) {
	idx := oneBased - 1
	if idx < 0 || idx >= len(l.Programs) {
		return Program{}, fmt.Errorf("march: program index %d out of range [1,%d]", oneBased, len(l.Programs))
	}
	return l.Programs[idx], nil
}
