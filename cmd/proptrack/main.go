package main

import (
	"os"

	"github.com/rustyeddy/proptrack/cmd/proptrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
