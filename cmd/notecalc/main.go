package main

import (
	"os"

	"github.com/nmaxcom/smartpad-go/cmd/notecalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
