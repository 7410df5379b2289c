package main

import (
	"os"

	"github.com/wrenb/go-stream-lens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
