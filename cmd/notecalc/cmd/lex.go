package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nmaxcom/smartpad-go/internal/lexer"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a sheet and dump the token stream",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(input, "\n") {
			for _, tok := range lexer.Tokenize(line, i+1) {
				if tok.Kind == lexer.EOF {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok.String())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize an inline expression instead of a file")
}
