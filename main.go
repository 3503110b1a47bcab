package main

import (
	"os"

	"github.com/smartcommute/smartcommute/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
