package main

import (
	"os"

	"github.com/expenso-dev/expenso/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
