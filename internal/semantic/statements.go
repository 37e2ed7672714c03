package semantic

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/constfold"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

func (a *Analyzer) analyzeCompound(c *ast.CompoundStmt, sc *scope.Scope) {
	for _, s := range c.Statements {
		if a.failed {
			return
		}
		a.analyzeStatement(s, sc)
	}
}

func (a *Analyzer) analyzeStatementList(stmts []ast.Statement, sc *scope.Scope) {
	for _, s := range stmts {
		if a.failed {
			return
		}
		a.analyzeStatement(s, sc)
	}
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement, sc *scope.Scope) {
	if a.failed {
		return
	}
	switch s := stmt.(type) {
	case *ast.EmptyStmt:
		// nothing to check
	case *ast.CompoundStmt:
		a.analyzeCompound(s, sc)
	case *ast.AssignStmt:
		a.analyzeAssign(s, sc)
	case *ast.CallStmt:
		a.analyzeExpression(s.Call, sc)
	case *ast.IfStmt:
		a.analyzeIf(s, sc)
	case *ast.WhileStmt:
		a.analyzeWhile(s, sc)
	case *ast.RepeatStmt:
		a.analyzeRepeat(s, sc)
	case *ast.ForStmt:
		a.analyzeFor(s, sc)
	case *ast.CaseStmt:
		a.analyzeCase(s, sc)
	case *ast.WithStmt:
		a.analyzeWith(s, sc)
	case *ast.GotoStmt:
		a.analyzeGoto(s, sc)
	case *ast.LabeledStmt:
		a.analyzeLabeled(s, sc)
	default:
		a.errorf(diag.CodeGenInternal, stmt.Line(), "unhandled statement node in semantic analysis")
	}
}

// resolveLValue type-checks an assignment target, returning its type and the
// root variable symbol that ultimately holds the storage (used for
// use-before-init bookkeeping on array/field lvalues, which are tracked at
// whole-variable granularity).
func (a *Analyzer) resolveLValue(expr ast.Expression, sc *scope.Scope) (*types.Type, *scope.Symbol) {
	switch e := expr.(type) {
	case *ast.Ident:
		sym, ok := sc.Resolve(e.Name)
		if !ok {
			a.errorf(diag.SemanticDeclaration, e.Line(), "undeclared name %q", e.Name)
			return types.UnknownType, nil
		}
		if sym.Kind == scope.KindConst || sym.Kind == scope.KindEnumMember {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot assign to constant %q", e.Name)
			return types.UnknownType, nil
		}
		if sym.Kind != scope.KindVar {
			a.errorf(diag.SemanticTyping, e.Line(), "%q is not assignable", e.Name)
			return types.UnknownType, nil
		}
		return sym.Type, sym

	case *ast.ArrayAccess:
		baseType, sym := a.resolveLValue(e.Base, sc)
		if a.failed {
			return types.UnknownType, nil
		}
		if baseType.Kind != types.Array {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot index a non-array value")
			return types.UnknownType, nil
		}
		idxType := a.analyzeExpression(e.Index, sc)
		if a.failed {
			return types.UnknownType, nil
		}
		if idxType.Kind != types.Integer {
			a.errorf(diag.SemanticTyping, e.Line(), "array index must be of type integer")
			return types.UnknownType, nil
		}
		return baseType.Elem, sym

	case *ast.FieldAccess:
		baseType, sym := a.resolveLValue(e.Base, sc)
		if a.failed {
			return types.UnknownType, nil
		}
		if baseType.Kind != types.Record {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot select a field of a non-record value")
			return types.UnknownType, nil
		}
		fieldType, ok := baseType.Fields[canon(e.Field)]
		if !ok {
			a.errorf(diag.SemanticDeclaration, e.Line(), "record type %s has no field %q", baseType, e.Field)
			return types.UnknownType, nil
		}
		return fieldType, sym

	default:
		a.errorf(diag.SemanticTyping, expr.Line(), "expression is not assignable")
		return types.UnknownType, nil
	}
}

func (a *Analyzer) analyzeAssign(s *ast.AssignStmt, sc *scope.Scope) {
	// A reference to the enclosing function's own name is the return-value
	// assignment, not an ordinary variable write (spec.md §4.3).
	if id, ok := s.LHS.(*ast.Ident); ok && a.currentFunc != nil && sameName(id.Name, a.currentFunc.Name) {
		rhsType := a.analyzeExpression(s.RHS, sc)
		if a.failed {
			return
		}
		if !types.Equal(rhsType, a.currentFunc.ReturnType) {
			a.errorf(diag.SemanticTyping, s.Line(), "return value of type %s does not match declared return type %s", rhsType, a.currentFunc.ReturnType)
		}
		return
	}

	lhsType, sym := a.resolveLValue(s.LHS, sc)
	if a.failed {
		return
	}
	rhsType := a.analyzeExpression(s.RHS, sc)
	if a.failed {
		return
	}
	if !assignable(rhsType, lhsType) {
		a.errorf(diag.SemanticTyping, s.Line(), "cannot assign %s to a variable of type %s", rhsType, lhsType)
		return
	}
	if sym != nil {
		a.markInitialized(sym)
	}
}

func (a *Analyzer) requireBoolean(expr ast.Expression, sc *scope.Scope) {
	t := a.analyzeExpression(expr, sc)
	if a.failed {
		return
	}
	if t.Kind != types.Boolean {
		a.errorf(diag.SemanticTyping, expr.Line(), "condition must be of type boolean, got %s", t)
	}
}

func (a *Analyzer) analyzeIf(s *ast.IfStmt, sc *scope.Scope) {
	a.requireBoolean(s.Cond, sc)
	if a.failed {
		return
	}
	a.analyzeStatement(s.Then, sc)
	if a.failed || s.Else == nil {
		return
	}
	a.analyzeStatement(s.Else, sc)
}

func (a *Analyzer) analyzeWhile(s *ast.WhileStmt, sc *scope.Scope) {
	a.requireBoolean(s.Cond, sc)
	if a.failed {
		return
	}
	a.analyzeStatement(s.Body, sc)
}

func (a *Analyzer) analyzeRepeat(s *ast.RepeatStmt, sc *scope.Scope) {
	a.analyzeStatementList(s.Body, sc)
	if a.failed {
		return
	}
	a.requireBoolean(s.Cond, sc)
}

func (a *Analyzer) analyzeFor(s *ast.ForStmt, sc *scope.Scope) {
	sym, ok := sc.Resolve(s.Var)
	if !ok || sym.Kind != scope.KindVar {
		a.errorf(diag.SemanticDeclaration, s.Line(), "undeclared for-loop variable %q", s.Var)
		return
	}
	if sym.Type.Kind != types.Integer {
		a.errorf(diag.SemanticTyping, s.Line(), "for-loop control variable %q must be of type integer", s.Var)
		return
	}
	startType := a.analyzeExpression(s.Start, sc)
	if a.failed {
		return
	}
	endType := a.analyzeExpression(s.End, sc)
	if a.failed {
		return
	}
	if startType.Kind != types.Integer || endType.Kind != types.Integer {
		a.errorf(diag.SemanticTyping, s.Line(), "for-loop bounds must be of type integer")
		return
	}
	a.markInitialized(sym)
	a.analyzeStatement(s.Body, sc)
}

func (a *Analyzer) analyzeCase(s *ast.CaseStmt, sc *scope.Scope) {
	scrutType := a.analyzeExpression(s.Scrutinee, sc)
	if a.failed {
		return
	}
	switch scrutType.Kind {
	case types.Integer, types.Char, types.Enum:
	default:
		a.errorf(diag.SemanticTyping, s.Line(), "case scrutinee must be of integer, char, or enum type, got %s", scrutType)
		return
	}

	seen := make(map[interface{}]bool)
	for _, arm := range s.Arms {
		for _, label := range arm.Labels {
			if a.failed {
				return
			}
			v, ok := a.foldConstExpr(label)
			if !ok {
				return
			}
			if !a.caseLabelMatchesScrutinee(v, scrutType, label) {
				return
			}
			key := v.Int
			if v.Kind == ast.LitChar {
				key = int64(v.Text[0])
			}
			if seen[key] {
				a.errorf(diag.SemanticTyping, label.Line(), "duplicate case label")
				return
			}
			seen[key] = true
		}
		a.analyzeStatementList(arm.Body, sc)
		if a.failed {
			return
		}
	}
}

// caseLabelMatchesScrutinee checks a folded case label's kind against the
// scrutinee's type, reporting and returning false on mismatch.
func (a *Analyzer) caseLabelMatchesScrutinee(v constfold.Value, scrutType *types.Type, label ast.Expression) bool {
	ok := false
	switch scrutType.Kind {
	case types.Integer:
		ok = v.Kind == ast.LitInteger
	case types.Char:
		ok = v.Kind == ast.LitChar
	case types.Enum:
		ok = v.Kind == ast.LitInteger
	}
	if !ok {
		a.errorf(diag.SemanticTyping, label.Line(), "case label type does not match the scrutinee's type %s", scrutType)
	}
	return ok
}

func (a *Analyzer) analyzeWith(s *ast.WithStmt, sc *scope.Scope) {
	inner := sc
	for _, v := range s.Vars {
		t, sym := a.resolveLValue(v, sc)
		if a.failed {
			return
		}
		if t.Kind != types.Record {
			a.errorf(diag.SemanticTyping, v.Line(), "with-statement target %q must be a record", v.Name)
			return
		}
		if sym != nil && !a.isInitialized(sym) {
			a.errorf(diag.UseBeforeInit, v.Line(), "use of possibly uninitialized variable %q", v.Name)
			return
		}
		nested := inner.Nested()
		for fieldName, fieldType := range t.Fields {
			fsym := &scope.Symbol{Name: fieldName, Kind: scope.KindVar, Type: fieldType}
			nested.Define(fsym)
			a.markInitialized(fsym)
		}
		inner = nested
	}
	a.analyzeStatement(s.Body, inner)
}

func (a *Analyzer) analyzeGoto(s *ast.GotoStmt, sc *scope.Scope) {
	name := labelName(s.Label)
	if _, ok := sc.Resolve(name); !ok {
		a.errorf(diag.SemanticDeclaration, s.Line(), "goto target label %d is not declared in an enclosing label section", s.Label)
	}
}

func (a *Analyzer) analyzeLabeled(s *ast.LabeledStmt, sc *scope.Scope) {
	name := labelName(s.Label)
	if _, ok := sc.Resolve(name); !ok {
		a.errorf(diag.SemanticDeclaration, s.Line(), "label %d is not declared in an enclosing label section", s.Label)
		return
	}
	a.analyzeStatement(s.Stmt, sc)
}
