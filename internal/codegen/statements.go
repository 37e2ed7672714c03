package codegen

import (
	"fmt"
	"strings"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/types"
)

// genStatement dispatches a single statement to its emitter. Grounded on
// gerador_codigo.py's gen_stmt dispatch, generalized to every statement
// shape spec.md's grammar defines — repeat, case, with, goto, and labeled have no
// counterpart in the original (its own sketches for them were never
// finished), so those five are fresh designs built directly on this VM's
// primitive instruction set.
func (g *Generator) genStatement(stmt ast.Statement, f *frame) {
	if g.failed {
		return
	}
	switch s := stmt.(type) {
	case *ast.EmptyStmt:
		// nothing to emit
	case *ast.CompoundStmt:
		g.genStatementList(s.Statements, f)
	case *ast.AssignStmt:
		g.genAssign(s, f)
	case *ast.CallStmt:
		g.genCall(s.Call, f)
	case *ast.IfStmt:
		g.genIf(s, f)
	case *ast.WhileStmt:
		g.genWhile(s, f)
	case *ast.RepeatStmt:
		g.genRepeat(s, f)
	case *ast.ForStmt:
		g.genFor(s, f)
	case *ast.CaseStmt:
		g.genCase(s, f)
	case *ast.WithStmt:
		g.genWith(s, f)
	case *ast.GotoStmt:
		g.genGoto(s, f)
	case *ast.LabeledStmt:
		g.genLabeled(s, f)
	default:
		g.fail(stmt.Line(), "internal error: unhandled statement shape in code generation")
	}
}

func (g *Generator) genStatementList(stmts []ast.Statement, f *frame) {
	for _, s := range stmts {
		if g.failed {
			return
		}
		g.genStatement(s, f)
	}
}

// convertIfWidening emits an ITOF after rhs's already-pushed value if lhsType
// is real and rhs is integer-typed — the one numeric widening spec.md §4.3
// allows on assignment (and, by the same rule, on `f := expr` return-value
// assignment, which reuses this path since the function's own name is just
// an ordinary local binding). A no-op whenever the types already match,
// which is always the case for the strict-equality return-value assignment.
func (g *Generator) convertIfWidening(lhsType *types.Type, rhs ast.Expression, f *frame) {
	if lhsType.Kind != types.Real {
		return
	}
	rt := g.typeOf(rhs, f)
	if g.failed {
		return
	}
	if rt.Kind == types.Integer {
		g.emit("ITOF")
	}
}

// genAssign compiles `lvalue := expr`. Address-computation instructions
// (base pointer, index/offset arithmetic, CHECK) are emitted before the
// right-hand side, which is emitted before the final STOREN — matching
// gerador_codigo.py's gen_assign ordering for an array-indexed target. A
// with-exposed plain identifier is first rewritten to the field-access
// expression it aliases, so every lvalue shape below ultimately sees only
// Ident/ArrayAccess/FieldAccess.
func (g *Generator) genAssign(s *ast.AssignStmt, f *frame) {
	lhs := s.LHS
	if id, ok := lhs.(*ast.Ident); ok {
		if alias, ok := f.resolveAlias(id.Name); ok {
			lhs = alias
		}
	}
	switch e := lhs.(type) {
	case *ast.Ident:
		lhsType := g.typeOf(e, f)
		if g.failed {
			return
		}
		g.genExpr(s.RHS, f)
		if g.failed {
			return
		}
		g.convertIfWidening(lhsType, s.RHS, f)
		if g.failed {
			return
		}
		if lv, ok := f.resolveLocal(e.Name); ok {
			g.emitf("STOREL %d", lv.index)
			return
		}
		sym, ok := g.global.Resolve(e.Name)
		if !ok {
			g.fail(e.Line(), "internal error: undeclared assignment target %q", e.Name)
			return
		}
		g.emitf("STOREG %d", sym.Index)

	case *ast.ArrayAccess:
		elemType := g.genArrayAddressPrefix(e, f)
		if g.failed {
			return
		}
		g.genExpr(s.RHS, f)
		if g.failed {
			return
		}
		g.convertIfWidening(elemType, s.RHS, f)
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
			g.fail(e.Line(), "internal error: assignment target base is not a record")
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
		g.genExpr(s.RHS, f)
		if g.failed {
			return
		}
		g.convertIfWidening(fieldType, s.RHS, f)
		if g.failed {
			return
		}
		g.emit("STOREN")

	default:
		g.fail(s.Line(), "internal error: unsupported assignment target shape")
	}
}

// genIf compiles `if cond then then [else else]` using the label scheme
// spec.md's supplemented emission rules pin down: `L<i>ELSE`/`L<i>ENDIF`.
func (g *Generator) genIf(s *ast.IfStmt, f *frame) {
	i := g.nextLabel()
	elseLabel := fmt.Sprintf("L%dELSE", i)
	endLabel := fmt.Sprintf("L%dENDIF", i)

	g.genExpr(s.Cond, f)
	if g.failed {
		return
	}
	g.emitf("JZ %s", elseLabel)
	g.genStatement(s.Then, f)
	if g.failed {
		return
	}
	g.emitf("JUMP %s", endLabel)
	g.emit(elseLabel + ":")
	if s.Else != nil {
		g.genStatement(s.Else, f)
		if g.failed {
			return
		}
	}
	g.emit(endLabel + ":")
}

// genWhile compiles `while cond do body` using the `L<i>WHILE`/`L<i>ENDWHILE`
// label scheme.
func (g *Generator) genWhile(s *ast.WhileStmt, f *frame) {
	i := g.nextLabel()
	startLabel := fmt.Sprintf("L%dWHILE", i)
	endLabel := fmt.Sprintf("L%dENDWHILE", i)

	g.emit(startLabel + ":")
	g.genExpr(s.Cond, f)
	if g.failed {
		return
	}
	g.emitf("JZ %s", endLabel)
	g.genStatement(s.Body, f)
	if g.failed {
		return
	}
	g.emitf("JUMP %s", startLabel)
	g.emit(endLabel + ":")
}

// genRepeat compiles `repeat body until cond` — a fresh design, since
// neither spec.md §4.4's emission rules nor the original generator cover
// repeat/until. A single label suffices: the loop continues (jumps back)
// while cond is still false, and falls straight through once it's true, so
// no separate end label is needed.
func (g *Generator) genRepeat(s *ast.RepeatStmt, f *frame) {
	i := g.nextLabel()
	startLabel := fmt.Sprintf("L%dREPEAT", i)

	g.emit(startLabel + ":")
	g.genStatementList(s.Body, f)
	if g.failed {
		return
	}
	g.genExpr(s.Cond, f)
	if g.failed {
		return
	}
	g.emitf("JZ %s", startLabel)
}

// varStoreLoad resolves name (a for-loop control variable, which the
// semantic analyzer permits to be either a local or a global) to the
// PUSHx/STOREx mnemonic pair and frame-relative or global slot to use for
// it.
func (g *Generator) varStoreLoad(name string, f *frame) (load, store string, index int, ok bool) {
	if lv, ok2 := f.resolveLocal(name); ok2 {
		return "PUSHL", "STOREL", lv.index, true
	}
	sym, ok2 := g.global.Resolve(name)
	if !ok2 {
		return "", "", 0, false
	}
	return "PUSHG", "STOREG", sym.Index, true
}

// genFor compiles `for var := start (to|downto) end do body` per spec.md
// §4.4: INFEQ/SUPEQ for the bound test and ADD/SUB for the step, selected by
// direction, using the `L<i>FOR`/`L<i>ENDFOR` label scheme.
func (g *Generator) genFor(s *ast.ForStmt, f *frame) {
	load, store, idx, ok := g.varStoreLoad(s.Var, f)
	if !ok {
		g.fail(s.Line(), "internal error: undeclared for-loop variable %q", s.Var)
		return
	}

	g.genExpr(s.Start, f)
	if g.failed {
		return
	}
	g.emitf("%s %d", store, idx)

	i := g.nextLabel()
	startLabel := fmt.Sprintf("L%dFOR", i)
	endLabel := fmt.Sprintf("L%dENDFOR", i)

	g.emit(startLabel + ":")
	g.emitf("%s %d", load, idx)
	g.genExpr(s.End, f)
	if g.failed {
		return
	}
	if s.Direction == ast.ForTo {
		g.emit("INFEQ")
	} else {
		g.emit("SUPEQ")
	}
	g.emitf("JZ %s", endLabel)

	g.genStatement(s.Body, f)
	if g.failed {
		return
	}

	g.emitf("%s %d", load, idx)
	g.emit("PUSHI 1")
	if s.Direction == ast.ForTo {
		g.emit("ADD")
	} else {
		g.emit("SUB")
	}
	g.emitf("%s %d", store, idx)
	g.emitf("JUMP %s", startLabel)
	g.emit(endLabel + ":")
}

// genCase compiles `case scrutinee of arms end` — a fresh design, since case
// has no counterpart in spec.md §4.4's emission rules or in the original
// generator. The scrutinee is evaluated once into a hidden global temporary
// (this instruction set has neither DUP nor POP, so it can't be pushed once
// and reused or discarded any other way); each arm tests its label set as an
// OR-chain of EQUAL comparisons against the temporary and falls through to
// the next arm's check on failure.
func (g *Generator) genCase(s *ast.CaseStmt, f *frame) {
	tempIdx := g.nextGlobal
	g.nextGlobal++

	g.genExpr(s.Scrutinee, f)
	if g.failed {
		return
	}
	g.emitf("STOREG %d", tempIdx)

	i := g.nextLabel()
	endLabel := fmt.Sprintf("L%dENDCASE", i)

	for idx, arm := range s.Arms {
		checkLabel := fmt.Sprintf("L%dCHECK%d", i, idx)
		g.emit(checkLabel + ":")
		for li, label := range arm.Labels {
			g.emitf("PUSHG %d", tempIdx)
			g.genExpr(label, f)
			if g.failed {
				return
			}
			g.emit("EQUAL")
			if li > 0 {
				g.emit("OR")
			}
		}
		next := endLabel
		if idx+1 < len(s.Arms) {
			next = fmt.Sprintf("L%dCHECK%d", i, idx+1)
		}
		g.emitf("JZ %s", next)
		g.genStatementList(arm.Body, f)
		if g.failed {
			return
		}
		g.emitf("JUMP %s", endLabel)
	}
	g.emit(endLabel + ":")
}

// genWith compiles `with v1, v2, ... do body` — a fresh design grounded on
// how the semantic analyzer itself models with (analyzeWith: each field
// becomes directly resolvable in a nested scope). Since codegen builds its
// own frame rather than reusing the analyzer's discarded scopes, it
// reproduces the same effect at the AST level instead: every field of each
// with-target is registered as an alias that a later plain identifier
// reference resolves to in place of an ordinary local/global lookup (see
// frame.resolveAlias), so the rest of code generation never needs a
// dedicated "with-scope" concept. Chaining (`with a, b do` where b is
// itself a field of a) works because each step bases its aliases on
// whatever the with-target identifier itself already resolves to — its own
// alias if one was just introduced, or the plain identifier otherwise.
func (g *Generator) genWith(s *ast.WithStmt, f *frame) {
	cur := f
	for _, v := range s.Vars {
		var base ast.Expression = v
		if alias, ok := cur.resolveAlias(v.Name); ok {
			base = alias
		}
		baseType := g.typeOf(base, cur)
		if g.failed {
			return
		}
		if baseType.Kind != types.Record {
			g.fail(v.Line(), "internal error: with-statement target %q is not a record", v.Name)
			return
		}
		nested := newFrame(cur)
		for fieldName := range baseType.Fields {
			nested.aliases[fieldName] = ast.NewFieldAccess(v.Line(), base, fieldName)
		}
		cur = nested
	}
	g.genStatement(s.Body, cur)
}

// userLabel namespaces a declared numeric label by the subroutine currently
// being emitted, since this VM's labels are flat, global, textual names and
// two different subroutines may each declare the same numeric label.
func (g *Generator) userLabel(n int64) string {
	return fmt.Sprintf("LBL_%s_%d", g.currentUnit, n)
}

func (g *Generator) genGoto(s *ast.GotoStmt, f *frame) {
	g.emitf("JUMP %s", g.userLabel(s.Label))
}

func (g *Generator) genLabeled(s *ast.LabeledStmt, f *frame) {
	g.emit(g.userLabel(s.Label) + ":")
	g.genStatement(s.Stmt, f)
}

// genSubroutineBody emits one function or procedure's entry label, local
// declarations, body, and return sequence. A function ends by pushing its
// return slot's current value and RETURN; a procedure (retIndex == -1) just
// returns.
func (g *Generator) genSubroutineBody(name string, body *ast.Block) {
	sub, ok := g.subroutines[canon(name)]
	if !ok {
		g.fail(body.Line(), "internal error: subroutine %q has no registered entry point", name)
		return
	}
	sym, ok := g.global.Resolve(name)
	if !ok {
		g.fail(body.Line(), "internal error: subroutine %q has no symbol", name)
		return
	}

	g.currentUnit = strings.ToUpper(name)
	g.emit(sub.label + ":")

	frm := g.newSubroutineFrame(sym, sub.isFunc)
	g.populateLocals(body.Declarations, frm)
	if g.failed {
		return
	}
	g.genStatement(body.Body, frm)
	if g.failed {
		return
	}
	if sub.isFunc {
		g.emitf("PUSHL %d", frm.retIndex)
	}
	g.emit("RETURN")
}
