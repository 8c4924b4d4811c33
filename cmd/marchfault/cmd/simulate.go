package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sarchlab/marchfault/internal/alloc"
	"github.com/sarchlab/marchfault/internal/config"
	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/logging"
	"github.com/sarchlab/marchfault/internal/march"
	"github.com/sarchlab/marchfault/internal/report"
	"github.com/sarchlab/marchfault/internal/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <catalogue.json> <programs.json>",
	Short: "Run the fault simulator over a catalogue and a chosen March program",
	Args:  cobra.ExactArgs(2),
	RunE:  runSimulate,
}

func runSimulate(_ *cobra.Command, args []string) error {
	cat, err := fault.LoadCatalogue(args[0])
	if err != nil {
		return err
	}
	lib, err := march.LoadLibrary(args[1])
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText})

	rl, err := readline.NewEx(&readline.Config{Prompt: "program> "})
	if err != nil {
		return fmt.Errorf("cmd: opening prompt: %w", err)
	}
	defer rl.Close()

	fmt.Println("Available programs:")
	for i, name := range lib.Names() {
		fmt.Printf("  %d) %s\n", i+1, name)
	}

	idx, err := readInt(rl, "program> ")
	if err != nil {
		return err
	}
	prog, err := lib.At(idx)
	if err != nil {
		return err
	}

	rows, cols, err := readDimensions(rl)
	if err != nil {
		return err
	}

	cfg := config.NewRunConfigBuilder().WithRows(rows).WithCols(cols).WithSeed(seed).Build()

	driver := sim.NewDriver(rand.New(rand.NewSource(cfg.Seed)), alloc.Grid{Rows: cfg.Rows, Cols: cfg.Cols})
	driver.Logger = logger

	rep := driver.Run(cat, prog, sim.RunMetadata{RunID: logger.RunID(), Seed: cfg.Seed})

	outPath := prog.Name + ".report.txt"
	if err := report.SaveText(outPath, prog, rep); err != nil {
		return err
	}
	report.PrintTable(os.Stdout, prog, rep)
	fmt.Printf("report written to %s\n", outPath)
	return nil
}

func readInt(rl *readline.Instance, prompt string) (int, error) {
	rl.SetPrompt(prompt)
	line, err := rl.Readline()
	if err != nil {
		return 0, fmt.Errorf("cmd: reading input: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("cmd: expected an integer, got %q", line)
	}
	return v, nil
}

func readDimensions(rl *readline.Instance) (rows, cols int, err error) {
	rl.SetPrompt("rows cols> ")
	line, err := rl.Readline()
	if err != nil {
		return 0, 0, fmt.Errorf("cmd: reading dimensions: %w", err)
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("cmd: expected two positive integers \"rows cols\", got %q", line)
	}
	rows, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("cmd: bad rows value %q", fields[0])
	}
	cols, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("cmd: bad cols value %q", fields[1])
	}
	return rows, cols, nil
}
