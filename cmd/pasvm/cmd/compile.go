package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nunor04/pasvm/internal/codegen"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/lexer"
	"github.com/nunor04/pasvm/internal/parser"
	"github.com/nunor04/pasvm/internal/semantic"
)

var (
	outputFile     string
	emitLabelsOnly bool
	noColor        bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Pascal source file to VM assembly",
	Long: `Compile runs the full pipeline (lexer, parser, semantic analyzer,
code generator) over a single source file and writes the emitted
assembly listing to a .vm output file (spec.md §6.4).

Examples:
  # Compile a program, writing hello.vm next to it
  pasvm compile hello.pas

  # Compile to an explicit output path
  pasvm compile hello.pas -o out/hello.vm

  # Dump only the label table, for debugging a control-flow lowering
  pasvm compile hello.pas --emit-labels-only`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "out", "o", "", "output file (default: <input> with its extension replaced by .vm)")
	compileCmd.Flags().BoolVar(&emitLabelsOnly, "emit-labels-only", false, "print only the label table instead of writing the .vm file")
	compileCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI color in diagnostic output")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	bag := diag.NewBag(source)

	l := lexer.New(source)
	program := parser.ParseProgram(l, bag)
	if bag.HasErrors() {
		return reportAndFail(bag)
	}

	analyzer := semantic.NewAnalyzer(bag)
	if !analyzer.Analyze(program) {
		return reportAndFail(bag)
	}

	lines, ok := codegen.Generate(program, analyzer.Global(), bag)
	if !ok {
		return reportAndFail(bag)
	}

	if emitLabelsOnly {
		for _, line := range lines {
			if strings.HasSuffix(line, ":") {
				fmt.Println(line)
			}
		}
		return nil
	}

	out := outputFile
	if out == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			out = strings.TrimSuffix(filename, ext) + ".vm"
		} else {
			out = filename + ".vm"
		}
	}

	listing := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(out, []byte(listing), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", out, err)
	}

	fmt.Printf("Compiled %s -> %s\n", filename, out)
	return nil
}

// reportAndFail renders every diagnostic accumulated in bag and returns a
// non-nil error so cobra exits non-zero (spec.md §6.4), without a .vm file
// being written — compilation halts at the first pass that fails (spec.md
// §1: "There is no back-edge; a failure at any stage halts the pipeline").
func reportAndFail(bag *diag.Bag) error {
	fmt.Fprint(os.Stderr, bag.Render(!noColor))
	return fmt.Errorf("compilation failed with %d diagnostic(s)", len(bag.Diagnostics()))
}
