// Package main is the entry point for the aggql binary.
package main

import (
	"os"

	"github.com/hugr-lab/aggql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
