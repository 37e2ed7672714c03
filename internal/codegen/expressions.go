package codegen

import (
	"fmt"
	"strings"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// genExpr emits the instructions that leave expr's value on top of the
// stack, against frame f (nil at the program's top level). Grounded on
// gerador_codigo.py's gen_expr dispatch, generalized to every expression
// shape spec.md's grammar defines.
func (g *Generator) genExpr(expr ast.Expression, f *frame) {
	if g.failed {
		return
	}
	switch e := expr.(type) {
	case *ast.ConstLiteral:
		g.genConst(e)

	case *ast.Ident:
		g.genIdentRead(e, f)

	case *ast.ArrayAccess:
		g.genArrayAddressPrefix(e, f)
		if g.failed {
			return
		}
		g.emit("LOADN")

	case *ast.FieldAccess:
		g.genFieldAddressPrefix(e, f)
		if g.failed {
			return
		}
		g.emit("LOADN")

	case *ast.BinaryExpr:
		g.genBinary(e, f)

	case *ast.NotExpr:
		g.genExpr(e.Expr, f)
		if g.failed {
			return
		}
		g.emit("NOT")

	case *ast.CallExpr:
		g.genCall(e, f)

	case *ast.FormatExpr:
		// Width/precision only ever mattered to a richer WRITE family; this
		// VM's instruction set (spec.md §6.3) has none, so the dispatch rule
		// (spec.md §4.4's supplemented write/writeln section) is to fall back
		// to WRITEI and simply drop them here.
		g.genExpr(e.Expr, f)

	case *ast.SetLiteral:
		g.fail(e.Line(), "internal error: a set value has no standalone runtime representation outside of 'in'")

	default:
		g.fail(expr.Line(), "internal error: unhandled expression shape in code generation")
	}
}

// genConst emits the literal-push instruction for a scalar constant.
// Embedded double quotes in a text literal are doubled rather than
// backslash-escaped, mirroring gerador_codigo.py's own quoting convention
// for PUSHS operands.
func (g *Generator) genConst(c *ast.ConstLiteral) {
	switch c.Kind {
	case ast.LitInteger:
		g.emitf("PUSHI %d", c.IntVal)
	case ast.LitReal:
		g.emitf("PUSHF %s", formatReal(c.FloatVal))
	case ast.LitBoolean:
		if c.BoolVal {
			g.emit("PUSHI 1")
		} else {
			g.emit("PUSHI 0")
		}
	case ast.LitChar:
		g.emitf("PUSHI %d", ord(c.Text))
	default:
		g.emitf("PUSHS \"%s\"", strings.ReplaceAll(c.Text, `"`, `""`))
	}
}

func formatReal(v float64) string {
	return fmt.Sprintf("%g", v)
}

func ord(s string) int64 {
	if s == "" {
		return 0
	}
	return int64(s[0])
}

// genIdentRead compiles a bare identifier reference, in the same precedence
// order typeOf and resolveLValue-equivalent lookups use: a with-statement
// field alias first, then a frame-local (including a function's own
// return-slot binding), then a local or global named constant (re-evaluated
// in place — named constants have no runtime storage), an enum member's
// ordinal, and finally a global variable's slot.
func (g *Generator) genIdentRead(e *ast.Ident, f *frame) {
	if alias, ok := f.resolveAlias(e.Name); ok {
		g.genExpr(alias, f)
		return
	}
	if lv, ok := f.resolveLocal(e.Name); ok {
		g.emitf("PUSHL %d", lv.index)
		return
	}
	if expr2, ok := f.resolveConst(e.Name); ok {
		g.genExpr(expr2, f)
		return
	}
	if expr2, ok := g.consts[canon(e.Name)]; ok {
		g.genExpr(expr2, f)
		return
	}
	sym, ok := g.global.Resolve(e.Name)
	if !ok {
		g.fail(e.Line(), "internal error: undeclared name %q reached code generation", e.Name)
		return
	}
	switch sym.Kind {
	case scope.KindEnumMember:
		g.emitf("PUSHI %d", sym.ConstValue.(int64))
	case scope.KindVar:
		if !sym.Global {
			g.fail(e.Line(), "internal error: variable %q has no assigned storage", e.Name)
			return
		}
		g.emitf("PUSHG %d", sym.Index)
	default:
		g.fail(e.Line(), "internal error: %q does not denote a value", e.Name)
	}
}

// genArrayAddressPrefix pushes an array element's base pointer and the
// CHECK-guarded, zero-based index, leaving the stack ready for a LOADN or
// STOREN. Reading any variable — scalar, array, or record — is a plain
// PUSHG/PUSHL of its own slot; for an array or record variable that slot
// already holds the heap pointer populated by its ALLOCN preamble, so the
// base expression compiles through the ordinary recursive expression path
// with no separate addressing abstraction needed.
func (g *Generator) genArrayAddressPrefix(e *ast.ArrayAccess, f *frame) *types.Type {
	baseType := g.typeOf(e.Base, f)
	if g.failed {
		return types.UnknownType
	}
	if baseType.Kind != types.Array {
		g.fail(e.Line(), "internal error: indexing a non-array value")
		return types.UnknownType
	}
	g.genExpr(e.Base, f)
	if g.failed {
		return types.UnknownType
	}
	g.genExpr(e.Index, f)
	if g.failed {
		return types.UnknownType
	}
	if baseType.Low != 0 {
		g.emitf("PUSHI %d", baseType.Low)
		g.emit("SUB")
	}
	size := baseType.High - baseType.Low + 1
	g.emitf("CHECK 0,%d", size-1)
	return baseType.Elem
}

// genFieldAddressPrefix pushes a record field's base pointer and
// CHECK-guarded constant offset, leaving the stack ready for a LOADN or
// STOREN. Field offsets come from the generator's memoized, alphabetically
// assigned recordLayout (this VM has no field-name-addressed instruction to
// ground a different scheme on).
func (g *Generator) genFieldAddressPrefix(e *ast.FieldAccess, f *frame) (*recordLayout, int) {
	baseType := g.typeOf(e.Base, f)
	if g.failed {
		return nil, 0
	}
	if baseType.Kind != types.Record {
		g.fail(e.Line(), "internal error: field access on a non-record value")
		return nil, 0
	}
	layout := g.recordLayout(baseType)
	off, ok := layout.offset[canon(e.Field)]
	if !ok {
		g.fail(e.Line(), "internal error: unknown field %q", e.Field)
		return nil, 0
	}
	g.genExpr(e.Base, f)
	if g.failed {
		return nil, 0
	}
	g.emitf("PUSHI %d", off)
	g.emitf("CHECK 0,%d", layout.size-1)
	return layout, off
}

func ifReal(isReal bool, realInstr, intInstr string) string {
	if isReal {
		return realInstr
	}
	return intInstr
}

// genBinary emits left, right, and the instruction selected from the
// integer/float/boolean tables spec.md §4.2 lists, using typeOf's real
// operand type rather than gerador_codigo.py's "is either side a real
// literal" syntactic heuristic. `/` always yields real (spec.md), so it
// forces the float table even over two integer-typed operands; whenever
// the chosen table is float but an operand is integer-typed, this emits an
// ITOF right after that operand is pushed — the original never performs
// this conversion, which would otherwise hand FADD/FDIV/etc. a raw integer
// cell where a float cell is expected.
func (g *Generator) genBinary(e *ast.BinaryExpr, f *frame) {
	if e.Op == ast.OpIn {
		g.genIn(e, f)
		return
	}

	lt := g.typeOf(e.Left, f)
	if g.failed {
		return
	}
	rt := g.typeOf(e.Right, f)
	if g.failed {
		return
	}

	forceReal := e.Op == ast.OpDiv
	isReal := forceReal || lt.Kind == types.Real || rt.Kind == types.Real
	isBool := lt.Kind == types.Boolean && rt.Kind == types.Boolean
	convert := isReal && (e.Op == ast.OpAdd || e.Op == ast.OpSub || e.Op == ast.OpMul || e.Op == ast.OpDiv || e.Op == ast.OpEq || e.Op == ast.OpNe)

	g.genExpr(e.Left, f)
	if g.failed {
		return
	}
	if convert && lt.Kind == types.Integer {
		g.emit("ITOF")
	}
	g.genExpr(e.Right, f)
	if g.failed {
		return
	}
	if convert && rt.Kind == types.Integer {
		g.emit("ITOF")
	}

	switch e.Op {
	case ast.OpAdd:
		g.emit(ifReal(isReal, "FADD", "ADD"))
	case ast.OpSub:
		g.emit(ifReal(isReal, "FSUB", "SUB"))
	case ast.OpMul:
		g.emit(ifReal(isReal, "FMUL", "MUL"))
	case ast.OpDiv:
		g.emit("FDIV")
	case ast.OpDivInt:
		g.emit("DIV")
	case ast.OpMod:
		g.emit("MOD")
	case ast.OpEq:
		g.emit("EQUAL")
	case ast.OpNe:
		// spec.md's boolean-operator table gives <> a dedicated NE
		// instruction; the int/real tables have no NE entry, so numeric <>
		// lowers as the general "EQUAL; NOT" rule instead.
		if isBool {
			g.emit("NE")
		} else {
			g.emit("EQUAL")
			g.emit("NOT")
		}
	case ast.OpLt:
		g.emit(ifReal(isReal, "FINF", "INF"))
	case ast.OpLe:
		g.emit(ifReal(isReal, "FINFEQ", "INFEQ"))
	case ast.OpGt:
		g.emit(ifReal(isReal, "FSUP", "SUP"))
	case ast.OpGe:
		g.emit(ifReal(isReal, "FSUPEQ", "SUPEQ"))
	case ast.OpAnd:
		g.emit("AND")
	case ast.OpOr:
		g.emit("OR")
	default:
		g.fail(e.Line(), "internal error: unhandled binary operator in code generation")
	}
}

// genIn compiles `x in S`. This VM has no set-representation opcode at all
// (spec.md §6.3), so only a literal set on the right is supported: an empty
// literal is always false without evaluating the left operand (no
// observable effect is possible from a pure read), and a non-empty literal
// lowers to an OR-chain of EQUAL tests — re-evaluating the left operand once
// per element, since this instruction set has neither DUP nor POP to
// evaluate it just once and reuse or discard the result.
func (g *Generator) genIn(e *ast.BinaryExpr, f *frame) {
	set, ok := e.Right.(*ast.SetLiteral)
	if !ok {
		g.fail(e.Line(), "internal error: 'in' is only supported by this code generator against a set literal")
		return
	}
	if len(set.Elements) == 0 {
		g.emit("PUSHI 0")
		return
	}
	for i, el := range set.Elements {
		g.genExpr(e.Left, f)
		if g.failed {
			return
		}
		g.genExpr(el, f)
		if g.failed {
			return
		}
		g.emit("EQUAL")
		if i > 0 {
			g.emit("OR")
		}
	}
}

func isCharArrayType(t *types.Type) bool {
	return t.Kind == types.Array && t.Elem != nil && t.Elem.Kind == types.Char
}

// genCall dispatches a call expression to a scalar cast, a write/writeln or
// read/readln built-in, or a user-declared function/procedure.
func (g *Generator) genCall(e *ast.CallExpr, f *frame) {
	lname := canon(e.Name)
	if _, ok := builtinCastTypes[lname]; ok {
		g.genCast(lname, e.Args[0], f)
		return
	}
	switch lname {
	case "write", "writeln":
		g.genWriteCall(lname, e.Args, f)
	case "read", "readln":
		for _, arg := range e.Args {
			g.genReadTarget(arg, f)
			if g.failed {
				return
			}
		}
	default:
		g.genUserCall(e, f)
	}
}

// genCast compiles real(x)/integer(x)/boolean(x)/char(x). Only real and
// integer casts move between distinct runtime representations (spec.md
// §4.4: "real(e) emits e; ITOF. integer(e) emits e; FTOI."); boolean and
// char already share the integer/ordinal representation on this VM's stack,
// so those casts compile to nothing beyond evaluating the argument. No
// conversion is emitted at all when the argument already has the target
// type (e.g. real(someRealVar)).
func (g *Generator) genCast(lname string, arg ast.Expression, f *frame) {
	argType := g.typeOf(arg, f)
	if g.failed {
		return
	}
	g.genExpr(arg, f)
	if g.failed {
		return
	}
	switch lname {
	case "real":
		if argType.Kind == types.Integer {
			g.emit("ITOF")
		}
	case "integer":
		if argType.Kind == types.Real {
			g.emit("FTOI")
		}
	}
}

// genWriteCall compiles write/writeln: spec.md's supplemented dispatch rule
// is that only a bare text-literal argument emits WRITES, and every other
// argument — including one wrapped in a format expression — emits WRITEI,
// since this instruction set defines no richer formatted-output family.
func (g *Generator) genWriteCall(lname string, args []ast.Expression, f *frame) {
	for _, arg := range args {
		if lit, ok := arg.(*ast.ConstLiteral); ok && lit.Kind == ast.LitText {
			g.genExpr(arg, f)
			if g.failed {
				return
			}
			g.emit("WRITES")
			continue
		}
		g.genExpr(arg, f)
		if g.failed {
			return
		}
		g.emit("WRITEI")
	}
	if lname == "writeln" {
		g.emit("WRITELN")
	}
}

// genReadTarget compiles one read/readln destination: READ, then CHARAT or
// ATOI depending on the target's type, then the matching store. Open
// Question 4's resolution scopes acceptable destinations to integer/char
// scalars or array/field slots of those types — this VM has no ATOF, so a
// real destination (allowed by an earlier, looser reading of the grammar)
// is rejected here rather than silently mis-compiled.
func (g *Generator) genReadTarget(target ast.Expression, f *frame) {
	if id, ok := target.(*ast.Ident); ok {
		if alias, ok := f.resolveAlias(id.Name); ok {
			g.genReadTarget(alias, f)
			return
		}
	}
	switch e := target.(type) {
	case *ast.Ident:
		t := g.typeOf(e, f)
		if g.failed {
			return
		}
		g.emit("READ")
		g.emitReadConvert(t, e.Line())
		if g.failed {
			return
		}
		if lv, ok := f.resolveLocal(e.Name); ok {
			g.emitf("STOREL %d", lv.index)
			return
		}
		sym, ok := g.global.Resolve(e.Name)
		if !ok {
			g.fail(e.Line(), "internal error: undeclared read target %q", e.Name)
			return
		}
		g.emitf("STOREG %d", sym.Index)

	case *ast.ArrayAccess:
		elemType := g.genArrayAddressPrefix(e, f)
		if g.failed {
			return
		}
		g.emit("READ")
		g.emitReadConvert(elemType, e.Line())
		if g.failed {
			return
		}
		g.emit("STOREN")

	case *ast.FieldAccess:
		baseType := g.typeOf(e.Base, f)
		if g.failed {
			return
		}
		if baseType.Kind != types.Record {
			g.fail(e.Line(), "internal error: field read target base is not a record")
			return
		}
		layout := g.recordLayout(baseType)
		off, ok := layout.offset[canon(e.Field)]
		if !ok {
			g.fail(e.Line(), "internal error: unknown field %q", e.Field)
			return
		}
		fieldType := baseType.Fields[canon(e.Field)]
		g.genExpr(e.Base, f)
		if g.failed {
			return
		}
		g.emitf("PUSHI %d", off)
		g.emitf("CHECK 0,%d", layout.size-1)
		g.emit("READ")
		g.emitReadConvert(fieldType, e.Line())
		if g.failed {
			return
		}
		g.emit("STOREN")

	default:
		g.fail(target.Line(), "internal error: unsupported read/readln target shape")
	}
}

func (g *Generator) emitReadConvert(t *types.Type, line int) {
	switch t.Kind {
	case types.Char:
		g.emit("CHARAT")
	case types.Integer:
		g.emit("ATOI")
	default:
		g.fail(line, "read/readln target must be integer or char, got %s", t)
	}
}

// genUserCall compiles a call to a user-declared function or procedure:
// only a function pushes the reserved return-value slot before its
// arguments (spec.md §8 scenario 6: `PUSHI 0; PUSHI 41; PUSHA F; CALL`); a
// procedure has no return value and this VM has no instruction to discard
// an unwanted one, so it skips the reservation entirely (see
// newSubroutineFrame's doc comment for the matching frame-layout half of
// this rule). Integer arguments widen to real exactly like plain assignment
// when the matching parameter is real.
//
// A `var` parameter over an array or record already gets reference semantics
// for free: that slot holds a heap pointer, and passing the pointer's value
// is exactly what sharing the callee's writes back to the caller needs. A
// `var` parameter over a scalar has no such pointer to share — this
// instruction set has no address-of-a-variable-slot opcode (`PUSHA` only
// takes a subroutine label) — so it's rejected here rather than silently
// compiled as pass-by-value, which would drop every write the callee makes.
// `const` parameters never need this: the callee can't write through them,
// so passing the value (or, for a composite, its pointer) is observationally
// identical to true reference passing either way.
func (g *Generator) genUserCall(e *ast.CallExpr, f *frame) {
	sub, ok := g.subroutines[canon(e.Name)]
	if !ok {
		g.fail(e.Line(), "internal error: undeclared subroutine %q reached code generation", e.Name)
		return
	}
	sym, ok := g.global.Resolve(e.Name)
	if !ok {
		g.fail(e.Line(), "internal error: subroutine %q has no symbol", e.Name)
		return
	}
	if sub.isFunc {
		g.emit("PUSHI 0")
	}
	for i, arg := range e.Args {
		if i < len(sym.Params) {
			param := sym.Params[i]
			if param.Mode == scope.PassByRef && param.Type.Kind != types.Array && param.Type.Kind != types.Record {
				g.fail(arg.Line(), "passing a scalar %q by reference is not supported by this code generator (no address-of-variable instruction exists)", param.Name)
				return
			}
		}
		g.genExpr(arg, f)
		if g.failed {
			return
		}
		if i >= len(sym.Params) {
			continue
		}
		paramT := sym.Params[i].Type
		argT := g.typeOf(arg, f)
		if g.failed {
			return
		}
		if paramT.Kind == types.Real && argT.Kind == types.Integer {
			g.emit("ITOF")
			continue
		}
		textMismatch := (paramT.Kind == types.Text || isCharArrayType(paramT)) &&
			(argT.Kind == types.Text || isCharArrayType(argT)) &&
			!types.Equal(paramT, argT)
		if textMismatch {
			g.fail(arg.Line(), "passing a %s value where a %s parameter is expected is not supported by this code generator", argT, paramT)
			return
		}
	}
	g.emitf("PUSHA %s", sub.label)
	g.emit("CALL")
}
