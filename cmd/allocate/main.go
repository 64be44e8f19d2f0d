// Command allocate evaluates the momentum strategy offline, from a JSON bundle or a history database.
package main

import (
	"os"

	"github.com/aristath/momentum/cmd/allocate/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
