// Package semantic implements the single static-analysis pass of spec.md
// §4.3: scope population, type checking, use-before-init tracking, and
// variant-record validation. It walks the AST built by internal/parser and
// produces the annotated scope tree internal/codegen needs, reporting every
// problem it finds through a shared internal/diag.Bag.
//
// Like the parser, this pass does not attempt recovery: per Open Question 3
// the same policy extends to semantic analysis (spec.md §7 — "all other
// errors are terminal"), so the first diagnostic raised here latches
// Analyzer.failed and every subsequent analyze* call short-circuits.
package semantic

import (
	"strings"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/constfold"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// Analyzer walks a parsed program, building the scope tree and reporting
// diagnostics to bag.
type Analyzer struct {
	bag    *diag.Bag
	failed bool

	global *scope.Scope

	// namedConsts maps a const symbol's canonical (lowercased) name to the
	// expression that defines it, so constfold can resolve a chain of named
	// constants (array bounds referencing another const, etc.) regardless of
	// which scope originally declared it.
	namedConsts map[string]ast.Expression

	// recordSeq gives an anonymous record type (one declared inline in a var
	// or field group rather than via a `type` section) a distinct identity,
	// since types.Equal compares records by Name only.
	recordSeq int

	// currentFunc is the symbol of the function whose body is currently being
	// analyzed, used to recognize `f := expr` as a return-value assignment
	// rather than an ordinary variable assignment. nil outside a function body
	// (and while analyzing a procedure body).
	currentFunc *scope.Symbol

	// initialized tracks, for the use-before-init rule (spec.md §4.3), which
	// var symbols have been definitely assigned somewhere in their scope's
	// control flow reached so far. Constants, enum members, and parameters
	// are marked initialized the moment they're declared; plain locals and
	// globals are marked only on assignment.
	initialized map[*scope.Symbol]bool
}

// NewAnalyzer creates an Analyzer with a root scope pre-populated with the
// built-in callables spec.md §4.3 "Declarations" names: write, writeln,
// read, readln, real, and the other scalar-type casts. These are recognized
// by name in analyzeCall rather than modeled as ordinary scope.Symbol
// entries with real parameter lists, since their arities are variadic or
// their "parameters" are casts, not calls; populating the scope means
// a user program simply cannot redeclare one without tripping the ordinary
// redeclaration check.
func NewAnalyzer(bag *diag.Bag) *Analyzer {
	a := &Analyzer{
		bag:         bag,
		global:      scope.New(),
		namedConsts: make(map[string]ast.Expression),
		initialized: make(map[*scope.Symbol]bool),
	}
	for _, name := range []string{"write", "writeln", "read", "readln", "real", "integer", "boolean", "char"} {
		a.global.Define(&scope.Symbol{Name: name, Kind: scope.KindProcedure})
	}
	return a
}

// Global returns the root scope, populated by Analyze; internal/codegen
// reads declared symbols, frame layout, and types from it.
func (a *Analyzer) Global() *scope.Scope { return a.global }

func (a *Analyzer) markInitialized(sym *scope.Symbol) {
	a.initialized[sym] = true
}

func (a *Analyzer) isInitialized(sym *scope.Symbol) bool {
	switch sym.Kind {
	case scope.KindConst, scope.KindEnumMember:
		return true
	default:
		return a.initialized[sym]
	}
}

// Analyze runs the pass over prog. It returns true if analysis completed
// without error; on false the bag holds at least one diagnostic and the
// driver must not proceed to code generation.
func (a *Analyzer) Analyze(prog *ast.Program) bool {
	a.analyzeBlock(prog.Block, a.global)
	return !a.failed
}

// errorf reports kind at line and latches the analyzer so every later
// analyze* call returns immediately.
func (a *Analyzer) errorf(kind diag.Kind, line int, format string, args ...interface{}) {
	if a.failed {
		return
	}
	a.failed = true
	a.bag.Addf(kind, line, format, args...)
}

// constLookup adapts namedConsts to constfold.Lookup.
func (a *Analyzer) constLookup(name string) (ast.Expression, bool) {
	e, ok := a.namedConsts[canon(name)]
	return e, ok
}

func canon(name string) string {
	return strings.ToLower(name)
}

// sameName reports whether a and b are the same identifier under the
// language's case-insensitivity rule.
func sameName(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

// widensToReal reports whether a value of type from may be used where a
// value of type to is expected via the one numeric widening spec.md §4.3
// allows: an integer actual where a real is expected.
func widensToReal(from, to *types.Type) bool {
	return to.Kind == types.Real && from.Kind == types.Integer
}

// textCharArrayCompatible reports whether from may be passed as to in a call
// argument under the texto/char-array call-argument allowance (spec.md §4.3
// "Calls and casts" — this exception is scoped to call arguments only, never
// to plain assignment).
func textCharArrayCompatible(from, to *types.Type) bool {
	isCharArray := func(t *types.Type) bool {
		return t.Kind == types.Array && t.Elem != nil && t.Elem.Kind == types.Char
	}
	if from.Kind == types.Text && isCharArray(to) {
		return true
	}
	if isCharArray(from) && to.Kind == types.Text {
		return true
	}
	return false
}

// assignable reports whether a value of type from may be assigned/bound to a
// variable or parameter of type to, under plain assignment rules (no
// call-argument text/char-array allowance).
func assignable(from, to *types.Type) bool {
	return types.Equal(from, to) || widensToReal(from, to)
}

// foldConstExpr folds expr (as produced by Parser.parseConstExpr) to an
// ast-level constfold.Value using the analyzer's accumulated named-constant
// table, reporting a declaration error on failure.
func (a *Analyzer) foldConstExpr(expr ast.Expression) (constfold.Value, bool) {
	v, err := constfold.Eval(expr, a.constLookup)
	if err != nil {
		a.errorf(diag.SemanticDeclaration, expr.Line(), "%s", err)
		return constfold.Value{}, false
	}
	return v, true
}

func (a *Analyzer) foldConstInt(expr ast.Expression) (int64, bool) {
	n, err := constfold.EvalInt(expr, a.constLookup)
	if err != nil {
		a.errorf(diag.SemanticDeclaration, expr.Line(), "%s", err)
		return 0, false
	}
	return n, true
}
