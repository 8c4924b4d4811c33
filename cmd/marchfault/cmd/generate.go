package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/marchfault/internal/alloc"
	"github.com/sarchlab/marchfault/internal/fault"
	"github.com/sarchlab/marchfault/internal/generator"
	"github.com/sarchlab/marchfault/internal/logging"
	"github.com/sarchlab/marchfault/internal/report"
	"github.com/sarchlab/marchfault/internal/sim"
)

var generateLength int
var generateRows int
var generateCols int

var generateCmd = &cobra.Command{
	Use:   "generate <catalogue.json>",
	Short: "Search for a March program that fully detects a fault catalogue",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateLength, "length", 6, "candidate operation sequence length")
	generateCmd.Flags().IntVar(&generateRows, "rows", 4, "memory grid rows used while evaluating candidates")
	generateCmd.Flags().IntVar(&generateCols, "cols", 4, "memory grid cols used while evaluating candidates")
}

func runGenerate(_ *cobra.Command, args []string) error {
	cat, err := fault.LoadCatalogue(args[0])
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText})

	driver := sim.NewDriver(rand.New(rand.NewSource(seed)), alloc.Grid{Rows: generateRows, Cols: generateCols})
	driver.Logger = logger

	prog, ok := generator.Generate(driver, cat, generateLength)
	if !ok {
		fmt.Println("none found")
		return nil
	}

	fmt.Printf("accepted program: %s\n", prog.String())

	rep := driver.Run(cat, prog, sim.RunMetadata{RunID: logger.RunID(), Seed: seed})

	outPath := "generated.report.txt"
	if err := report.SaveText(outPath, prog, rep); err != nil {
		return err
	}
	report.PrintTable(os.Stdout, prog, rep)
	fmt.Printf("report written to %s\n", outPath)
	return nil
}
