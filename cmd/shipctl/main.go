package main

import (
	"os"

	"github.com/shipgen/shipctl/cmd/shipctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
