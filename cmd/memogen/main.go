package main

import (
	"os"

	"github.com/prism-labs/memogen/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
