package main

import (
	"os"

	"github.com/cpascale43/minipack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
