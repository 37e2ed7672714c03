// Command pasvm compiles Pascal-dialect source files to stack-machine
// assembly (spec.md §6.4), the thin driver sitting outside the core
// lexer/parser/analyzer/codegen pipeline.
package main

import (
	"os"

	"github.com/nunor04/pasvm/cmd/pasvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
