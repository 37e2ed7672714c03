package codegen

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/constfold"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// localVar is a parameter or body-local variable bound to a frame-relative
// slot inside a subroutine.
type localVar struct {
	index int
	typ   *types.Type
}

// frame is codegen's own per-subroutine symbol table — deliberately
// separate from the semantic analyzer's (now-discarded) nested scopes,
// since this pass does its own full traversal (spec.md §9). It also carries
// the with-statement field aliases active at a given point: a plain
// identifier that spec.md §4.3 says "with... their fields are introduced
// into a child scope" compiles as if it were a field-access expression on
// the with-target, so an alias is stored as the already-built ast.Expression
// a bare reference should compile as instead.
type frame struct {
	locals  map[string]*localVar
	consts  map[string]ast.Expression
	aliases map[string]ast.Expression
	outer   *frame

	// retIndex is the local slot holding a function's return value (-1 in a
	// procedure frame), so genSubroutineBody knows which slot to push before
	// RETURN. `f := expr` itself needs no special case anywhere else: the
	// function's own name is bound in locals like any other local, so an
	// assignment to it is just an ordinary STOREL.
	retIndex  int
	nextLocal int
}

func newFrame(outer *frame) *frame {
	return &frame{
		locals:   make(map[string]*localVar),
		consts:   make(map[string]ast.Expression),
		aliases:  make(map[string]ast.Expression),
		outer:    outer,
		retIndex: -1,
	}
}

func (f *frame) resolveAlias(name string) (ast.Expression, bool) {
	for cur := f; cur != nil; cur = cur.outer {
		if e, ok := cur.aliases[canon(name)]; ok {
			return e, true
		}
	}
	return nil, false
}

func (f *frame) resolveLocal(name string) (*localVar, bool) {
	for cur := f; cur != nil; cur = cur.outer {
		if v, ok := cur.locals[canon(name)]; ok {
			return v, true
		}
	}
	return nil, false
}

func (f *frame) resolveConst(name string) (ast.Expression, bool) {
	for cur := f; cur != nil; cur = cur.outer {
		if e, ok := cur.consts[canon(name)]; ok {
			return e, true
		}
	}
	return nil, false
}

// newSubroutineFrame builds the parameter/return-slot bindings for name,
// reusing the already-resolved signature the semantic analyzer recorded on
// the subroutine's scope.Symbol.
//
// gerador_codigo.py's commented-out (and never compiled) gen_function
// sketch binds params at indices 0..n-1 and the return slot at n, but that
// is inconsistent with spec.md §4.4's own call rule — "PUSHI 0 as return
// slot, evaluate each argument, PUSHA LABEL; CALL" — which pushes the
// reserved slot *before* the arguments, so the callee's local slot 0 is the
// return value and the parameters occupy 1..n, not the other way around.
// scenario 6 of spec.md §8 pins the call-site order down: `PUSHI 0; PUSHI
// 41; PUSHA F; CALL`. This generator follows that order rather than the
// original's disabled sketch. Procedures never push a reserved slot (they
// have no return value and this VM has no instruction to discard an unused
// one), so their parameters occupy 0..n-1 with no shift.
func (g *Generator) newSubroutineFrame(sym *scope.Symbol, isFunc bool) *frame {
	f := newFrame(nil)
	base := 0
	if isFunc {
		f.locals[canon(sym.Name)] = &localVar{index: 0, typ: sym.ReturnType}
		f.retIndex = 0
		base = 1
	}
	for i, p := range sym.Params {
		f.locals[canon(p.Name)] = &localVar{index: base + i, typ: p.Type}
	}
	f.nextLocal = base + len(sym.Params)
	return f
}

// populateLocals scans a subroutine body's own declarations, assigning
// frame-relative slots to every local variable and recording local named
// constants, mirroring populateGlobals but against f instead of the global
// offset allocator. Local array/record variables need a fresh heap block on
// every call, so their ALLOCN preamble is emitted here (into the body,
// right after the entry label) rather than once at program start.
func (g *Generator) populateLocals(decls []ast.Node, f *frame) {
	for _, decl := range decls {
		if g.failed {
			return
		}
		switch d := decl.(type) {
		case *ast.ConstSection:
			for _, item := range d.Items {
				f.consts[canon(item.Name)] = item.Expr
			}
		case *ast.VarSection:
			for _, group := range d.Groups {
				t := g.resolveLocalType(group.Type, f)
				if g.failed {
					return
				}
				for _, name := range group.Names {
					idx := f.nextLocal
					f.nextLocal++
					f.locals[canon(name)] = &localVar{index: idx, typ: t}
					switch t.Kind {
					case types.Array:
						size := t.High - t.Low + 1
						g.emitf("PUSHI %d", size)
						g.emit("ALLOCN")
						g.emitf("STOREL %d", idx)
					case types.Record:
						layout := g.recordLayout(t)
						g.emitf("PUSHI %d", layout.size)
						g.emit("ALLOCN")
						g.emitf("STOREL %d", idx)
					case types.Set:
						g.fail(group.Line(), "set-typed local variable %q has no runtime representation in this VM's instruction set", name)
						return
					}
				}
			}
		case *ast.FuncDecl, *ast.ProcDecl:
			g.fail(decl.Line(), "nested function/procedure declarations are not supported by this code generator")
			return
		}
	}
}

// resolveLocalType normalizes a type expression appearing inside a
// subroutine body. Named types resolve through the global scope the
// semantic analyzer already populated (reusing its resolved types.Type, not
// re-deriving it); anonymous record/enum shapes are only supported at the
// top level via a named `type` declaration — a deliberate, narrower scope
// than the semantic analyzer's, since nothing in the supported subroutine
// surface needs a function-body-local record/enum type.
func (g *Generator) resolveLocalType(te ast.TypeExpr, f *frame) *types.Type {
	switch t := te.(type) {
	case *ast.SimpleType:
		switch t.Name {
		case "integer":
			return types.IntegerType
		case "real":
			return types.RealType
		case "boolean":
			return types.BooleanType
		case "char":
			return types.CharType
		default:
			g.fail(t.Line(), "internal error: unknown built-in type %q", t.Name)
			return types.UnknownType
		}
	case *ast.IDType:
		sym, ok := g.global.Resolve(t.Name)
		if !ok || sym.Kind != scope.KindType {
			g.fail(t.Line(), "internal error: undeclared type %q", t.Name)
			return types.UnknownType
		}
		return sym.Type
	case *ast.PackedType:
		return g.resolveLocalType(t.Inner, f)
	case *ast.SubrangeType:
		return types.IntegerType
	case *ast.ArrayType:
		low, err1 := constfold.EvalInt(t.Lower, g.constLookup(f))
		high, err2 := constfold.EvalInt(t.Upper, g.constLookup(f))
		elem := g.resolveLocalType(t.Element, f)
		if err1 != nil || err2 != nil {
			g.fail(t.Line(), "internal error: non-constant array bound")
			return types.UnknownType
		}
		return types.NewArray(low, high, elem)
	case *ast.SetType:
		return types.NewSet(g.resolveLocalType(t.Element, f))
	case *ast.FileType:
		return types.NewFile(g.resolveLocalType(t.Element, f))
	default:
		g.fail(te.Line(), "anonymous record/enum types are not supported inside a subroutine body")
		return types.UnknownType
	}
}

// constLookup adapts the frame-aware local/global named-constant tables to
// constfold.Lookup.
func (g *Generator) constLookup(f *frame) constfold.Lookup {
	return func(name string) (ast.Expression, bool) {
		if f != nil {
			if e, ok := f.resolveConst(name); ok {
				return e, true
			}
		}
		e, ok := g.consts[canon(name)]
		return e, ok
	}
}
