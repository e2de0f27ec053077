package main

import (
	"fmt"
	"os"

	"convfs/cmd/convfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
