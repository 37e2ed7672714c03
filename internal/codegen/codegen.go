// Package codegen implements the two-pass code generator of spec.md §4.4: a
// symbol-population pass that assigns storage to every global declaration,
// followed by an emission walk that lowers the already-analyzed AST into
// textual stack-machine assembly (spec.md §6.3).
//
// This pass does not reuse the semantic analyzer's checking logic (spec.md
// §9 "Mutual recursion between passes" — the two stay decoupled and each
// performs its own full traversal of the program). It does, however, consume
// the *scope.Scope the analyzer built: spec.md's own description of that
// scope ("internal/codegen reads declared symbols, frame layout, and types
// from it") is the documented hand-off between the two passes, exactly like
// a real pipeline stage consuming its predecessor's materialized output. The
// generator never re-derives a type or re-runs a check the analyzer already
// performed; it only reads types off resolved symbols and computes the
// storage-layout facts (offsets, labels, record field slots) that belong to
// code generation alone.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// Generator holds the code-generator state of spec.md §3: the emitted
// instruction list, the global-offset allocator, the label counter, the
// subroutine table, and the named-constant table.
type Generator struct {
	bag    *diag.Bag
	failed bool

	global *scope.Scope

	code         []string
	labelCounter int
	nextGlobal   int

	// currentUnit names the subroutine currently being emitted ("MAIN" for
	// the program body), used to namespace user goto/label targets so two
	// subroutines that each declare `label 1;` don't collide in this VM's
	// flat, textual label namespace.
	currentUnit string

	// consts holds every named constant's defining expression, keyed by
	// canonical name, so a reference re-generates the expression in place
	// (gerador_codigo.py's gen_var 'const' case) rather than loading from
	// storage — named constants have no runtime slot.
	consts map[string]ast.Expression

	// subroutines maps a canonical subroutine name to its entry label and
	// declared arity, populated before any body is emitted so forward and
	// recursive calls both resolve.
	subroutines map[string]*subroutine

	// layouts memoizes the field-offset layout computed for a record type,
	// keyed by the type's identity (two distinct record declarations are
	// never unified, per types.Equal's Name-based identity for Record).
	layouts map[*types.Type]*recordLayout

	// funcDecls/procDecls let the emission walk find every declared
	// subroutine body once populateGlobals has finished scanning. Only
	// top-level declarations (direct children of the program block) are
	// collected: the semantic analyzer's nested per-subroutine scopes are
	// ephemeral and don't survive past analysis, so a nested subroutine's
	// resolved signature (params, return type) is unrecoverable here — see
	// populateLocals' matching rejection of a nested FuncDecl/ProcDecl.
	funcDecls []*ast.FuncDecl
	procDecls []*ast.ProcDecl
}

type subroutine struct {
	label  string
	arity  int
	isFunc bool
}

// recordLayout is the per-record field-offset table codegen computes for
// itself: field order is not something types.Type preserves (Fields is an
// unordered map, built purely for type-equality and field-type lookup), and
// the VM has no notion of field names at all, so codegen assigns offsets by
// sorting canonical field names — deterministic across runs, but not
// necessarily the declaration order. No external code ever inspects a
// compiled record's layout, so this is a safe, documented simplification
// rather than a faithful struct layout.
type recordLayout struct {
	offset map[string]int
	size   int
}

// Generate runs both passes over prog against the scope the semantic
// analyzer populated, returning the emitted instruction lines. ok is false
// on an internal inconsistency (the emission walk assumes a semantically
// valid AST) and also when the program uses a construct this generator
// cannot lower: a set variable, a scalar var parameter, or a subroutine
// declared inside another subroutine. Either way a CodeGenInternal
// diagnostic is recorded; by the time codegen runs, the driver must already
// have confirmed Analyzer.Analyze succeeded.
func Generate(prog *ast.Program, global *scope.Scope, bag *diag.Bag) (lines []string, ok bool) {
	g := &Generator{
		bag:         bag,
		global:      global,
		consts:      make(map[string]ast.Expression),
		subroutines: make(map[string]*subroutine),
		layouts:     make(map[*types.Type]*recordLayout),
	}
	g.populateGlobals(prog.Block.Declarations)
	if g.failed {
		return nil, false
	}
	g.currentUnit = "MAIN"
	g.emit("START")
	g.genStatement(prog.Block.Body, nil)
	if g.failed {
		return nil, false
	}
	g.emit("STOP")
	for _, fd := range g.funcDecls {
		g.genSubroutineBody(fd.Name, fd.Body)
		if g.failed {
			return nil, false
		}
	}
	for _, pd := range g.procDecls {
		g.genSubroutineBody(pd.Name, pd.Body)
		if g.failed {
			return nil, false
		}
	}
	return g.code, true
}

func (g *Generator) emit(instr string) {
	g.code = append(g.code, instr)
}

func (g *Generator) emitf(format string, args ...interface{}) {
	g.emit(fmt.Sprintf(format, args...))
}

func (g *Generator) fail(line int, format string, args ...interface{}) {
	if g.failed {
		return
	}
	g.failed = true
	g.bag.Addf(diag.CodeGenInternal, line, format, args...)
}

func canon(name string) string {
	return strings.ToLower(name)
}

func (g *Generator) nextLabel() int {
	i := g.labelCounter
	g.labelCounter++
	return i
}

// populateGlobals is the symbol-population pass of spec.md §4.4.1. It scans
// the program's top-level declarations in order, recording named constants,
// top-level subroutine entry points (nested subroutine blocks are not
// scanned; see collectSubroutines), and global variable storage —
// emitting the `PUSHI size; ALLOCN; STOREG off` preamble for every array or
// record global exactly as gerador_codigo.py's build_symtab does for
// arrays, generalized to records via the same heap-block-plus-base-pointer
// scheme.
func (g *Generator) populateGlobals(decls []ast.Node) {
	g.collectSubroutines(decls)
	if g.failed {
		return
	}
	for _, decl := range decls {
		if g.failed {
			return
		}
		switch d := decl.(type) {
		case *ast.ConstSection:
			for _, item := range d.Items {
				g.consts[canon(item.Name)] = item.Expr
			}
		case *ast.VarSection:
			for _, group := range d.Groups {
				for _, name := range group.Names {
					g.allocGlobal(name, group.Line())
					if g.failed {
						return
					}
				}
			}
		}
	}
}

// collectSubroutines scans decls — the program's own top-level declaration
// list only — registering each function/procedure under a flat,
// case-insensitive label namespace before any body is emitted (so forward
// references and mutual recursion both resolve). A function or procedure
// declared inside another subroutine's own block is not seen here; it is
// rejected by populateLocals when the enclosing subroutine's body is
// emitted: this generator only supports subroutines declared at the
// program's top level (see the funcDecls/procDecls doc comment above for
// why).
func (g *Generator) collectSubroutines(decls []ast.Node) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := canon(d.Name)
			if _, dup := g.subroutines[name]; dup {
				g.fail(d.Line(), "subroutine %q already has a registered entry point", d.Name)
				return
			}
			g.subroutines[name] = &subroutine{label: strings.ToUpper(d.Name), arity: ast.TotalParamCount(d.Params), isFunc: true}
			g.funcDecls = append(g.funcDecls, d)
		case *ast.ProcDecl:
			name := canon(d.Name)
			if _, dup := g.subroutines[name]; dup {
				g.fail(d.Line(), "subroutine %q already has a registered entry point", d.Name)
				return
			}
			g.subroutines[name] = &subroutine{label: strings.ToUpper(d.Name), arity: ast.TotalParamCount(d.Params), isFunc: false}
			g.procDecls = append(g.procDecls, d)
		}
	}
}

// allocGlobal assigns storage to the already-declared global variable named
// name, mutating its scope.Symbol in place (spec.md §3: "a global-variable
// allocator that hands out monotonically increasing offsets").
func (g *Generator) allocGlobal(name string, line int) {
	sym, ok := g.global.Resolve(name)
	if !ok {
		g.fail(line, "internal error: global variable %q has no symbol", name)
		return
	}
	switch sym.Type.Kind {
	case types.Array:
		size := sym.Type.High - sym.Type.Low + 1
		g.emitf("PUSHI %d", size)
		g.emit("ALLOCN")
		g.emitf("STOREG %d", g.nextGlobal)
	case types.Record:
		layout := g.recordLayout(sym.Type)
		g.emitf("PUSHI %d", layout.size)
		g.emit("ALLOCN")
		g.emitf("STOREG %d", g.nextGlobal)
	case types.Set:
		g.fail(line, "set-typed variable %q has no runtime representation in this VM's instruction set", name)
		return
	}
	sym.Global = true
	sym.Index = g.nextGlobal
	g.nextGlobal++
}

// recordLayout returns (computing and memoizing on first use) the
// deterministic field-offset table for a record type.
func (g *Generator) recordLayout(t *types.Type) *recordLayout {
	if l, ok := g.layouts[t]; ok {
		return l
	}
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	l := &recordLayout{offset: make(map[string]int, len(names)), size: len(names)}
	for i, name := range names {
		l.offset[name] = i
	}
	g.layouts[t] = l
	return l
}
