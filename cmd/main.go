package main

import (
	"os"

	"github.com/obelisklab/obelisksim/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
