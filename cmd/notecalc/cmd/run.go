package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmaxcom/smartpad-go/internal/engine"
)

var (
	evalExpr  string
	showDeps  bool
	showTrace bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Evaluate a sheet file or inline expression",
	Long: `Evaluate a calculation sheet from a file or an inline expression and
print each line's rendering.

Examples:
  # Evaluate a sheet file
  notecalc run sheet.txt

  # Evaluate a single expression
  notecalc run -e "100 ft to m =>"

  # Print the variable dependency graph after evaluation
  notecalc run --show-deps sheet.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSheet,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate an inline expression instead of a file")
	runCmd.Flags().BoolVar(&showDeps, "show-deps", false, "print the dependency graph in Graphviz DOT form")
	runCmd.Flags().BoolVar(&showTrace, "trace", false, "write per-line evaluation traces to stderr")
}

func runSheet(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	var opts []engine.Option
	if showTrace {
		opts = append(opts, engine.WithTrace(cmd.ErrOrStderr()))
	}
	e := engine.New(opts...)
	nodes, err := e.EvaluateSheet(input)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		fmt.Fprintln(cmd.OutOrStdout(), node.DisplayText)
	}
	if showDeps {
		fmt.Fprint(cmd.OutOrStdout(), e.DependencyDOT())
	}
	return nil
}

func readInput(args []string) (string, error) {
	if evalExpr != "" {
		return evalExpr, nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("either provide a file path or use -e for an inline expression")
}
