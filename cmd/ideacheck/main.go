package main

import (
	"fmt"
	"os"

	"idea-validator-app/cmd/ideacheck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
