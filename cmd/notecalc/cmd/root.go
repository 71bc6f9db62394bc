package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "notecalc",
	Short: "Notebook calculator engine",
	Long: `notecalc is a notebook-style calculator: free-form lines of text are
parsed into typed expressions and evaluated against a reactive store of
named values.

It understands physical units, currencies, percentages, dates, durations,
lists, user-defined functions and unit aliases, and a single-unknown
equation solver.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
