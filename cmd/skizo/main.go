// Command skizo is the reference host for the runtime: it reads a source
// file, creates a domain, runs its entry point, and reports the result.
// Mirrors funxy's cmd/funxy/main.go in spirit — main stays a thin driver,
// all real work lives in pkg/cli.
package main

import (
	"os"

	"github.com/skizo-lang/skizo/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
