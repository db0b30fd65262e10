package main

import (
	"os"

	"github.com/enoplan/bessim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
