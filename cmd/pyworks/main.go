package main

import (
	"os"

	"github.com/jeryldev/pyworks/cmd/pyworks/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.Status(err))
	}
}
