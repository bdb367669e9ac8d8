package main

import (
	"fmt"
	"os"

	"github.com/xupit3r/subword/cmd/subword/commands"
	"github.com/xupit3r/subword/internal/tui"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.Error("Error: "+err.Error()))
		os.Exit(1)
	}
}
