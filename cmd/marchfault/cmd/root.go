// Package cmd implements the marchfault command-line tool: a March-test
// fault simulator and sequence generator.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/marchfault/internal/config"
)

var seed int64

var rootCmd = &cobra.Command{
	Use:   "marchfault",
	Short: "March-test fault simulator and sequence generator",
	Long: `marchfault simulates March-test fault coverage against a catalogue of
single-cell and coupling faults, and can search for a March sequence that
achieves full catalogue coverage.`,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", config.DefaultSeed,
		"seed for the address allocator's PRNG")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(generateCmd)
}

// Execute runs the command tree and terminates the process with the
// matching exit code.
func Execute() {
	defer atexit.Exit(0)
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "marchfault: internal error:", r)
			atexit.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "marchfault:", err)
		atexit.Exit(1)
	}
}
