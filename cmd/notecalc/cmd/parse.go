package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/engine"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a sheet and dump the classified line nodes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args)
		if err != nil {
			return err
		}
		e := engine.New()
		prog := e.ParseContent(input)

		if parseJSON {
			fmt.Fprintln(cmd.OutOrStdout(), ProgramJSON(prog))
			return nil
		}
		for _, line := range prog.Lines {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d %-20s %s\n", line.Pos().Line, lineKind(line), line.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse an inline expression instead of a file")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "emit the parsed lines as JSON")
}

// ProgramJSON renders the classified lines as a pretty-printed JSON array.
func ProgramJSON(prog *ast.Program) string {
	items := make([]string, 0, len(prog.Lines))
	for _, line := range prog.Lines {
		obj := "{}"
		obj, _ = sjson.Set(obj, "line", line.Pos().Line)
		obj, _ = sjson.Set(obj, "kind", lineKind(line))
		obj, _ = sjson.Set(obj, "text", line.String())
		items = append(items, obj)
	}
	out := "[" + strings.Join(items, ",") + "]"
	return strings.TrimSpace(string(pretty.Pretty([]byte(out))))
}

func lineKind(line ast.Line) string {
	switch line.(type) {
	case *ast.PlainTextLine:
		return "plainText"
	case *ast.VariableAssignmentLine:
		return "variableAssignment"
	case *ast.ExpressionLine:
		return "expression"
	case *ast.CombinedAssignmentLine:
		return "combinedAssignment"
	case *ast.FunctionDefinitionLine:
		return "functionDefinition"
	case *ast.EquationLine:
		return "equation"
	case *ast.SolveLine:
		return "solve"
	case *ast.ErrorLine:
		return "error"
	default:
		return "unknown"
	}
}
