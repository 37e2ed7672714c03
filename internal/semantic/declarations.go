package semantic

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// analyzeBlock processes every declaration section of block in source order,
// then the compound statement body, all against sc.
func (a *Analyzer) analyzeBlock(block *ast.Block, sc *scope.Scope) {
	for _, decl := range block.Declarations {
		if a.failed {
			return
		}
		switch d := decl.(type) {
		case *ast.ConstSection:
			a.analyzeConstSection(d, sc)
		case *ast.TypeSection:
			a.analyzeTypeSection(d, sc)
		case *ast.LabelSection:
			a.analyzeLabelSection(d, sc)
		case *ast.VarSection:
			a.analyzeVarSection(d, sc)
		case *ast.FuncDecl:
			a.analyzeFuncDecl(d, sc)
		case *ast.ProcDecl:
			a.analyzeProcDecl(d, sc)
		}
	}
	if a.failed {
		return
	}
	a.analyzeCompound(block.Body, sc)
}

func (a *Analyzer) defineOrRedeclare(sc *scope.Scope, sym *scope.Symbol, line int) bool {
	if _, dup := sc.DefinedHere(sym.Name); dup {
		a.errorf(diag.SemanticDeclaration, line, "%q is already declared in this scope", sym.Name)
		return false
	}
	sc.Define(sym)
	return true
}

func (a *Analyzer) analyzeConstSection(cs *ast.ConstSection, sc *scope.Scope) {
	for _, item := range cs.Items {
		if a.failed {
			return
		}
		t := a.analyzeExpression(item.Expr, sc)
		if a.failed {
			return
		}
		if !a.defineOrRedeclare(sc, &scope.Symbol{Name: item.Name, Kind: scope.KindConst, Type: t}, cs.Line()) {
			return
		}
		a.namedConsts[canon(item.Name)] = item.Expr
	}
}

func (a *Analyzer) analyzeTypeSection(ts *ast.TypeSection, sc *scope.Scope) {
	for _, item := range ts.Items {
		if a.failed {
			return
		}
		resolved := a.resolveType(item.Type, sc, item.Name)
		if a.failed {
			return
		}
		if !a.defineOrRedeclare(sc, &scope.Symbol{Name: item.Name, Kind: scope.KindType, Type: resolved}, ts.Line()) {
			return
		}
		if enumNode, ok := item.Type.(*ast.EnumType); ok {
			for i, member := range enumNode.Members {
				if !a.defineOrRedeclare(sc, &scope.Symbol{
					Name:       member,
					Kind:       scope.KindEnumMember,
					Type:       resolved,
					ConstValue: int64(i),
				}, enumNode.Line()) {
					return
				}
				// Registering the member's ordinal as a named constant lets
				// constfold resolve it wherever a case label or array bound
				// references it by name, the same path a `const` uses.
				a.namedConsts[canon(member)] = ast.NewIntLiteral(enumNode.Line(), int64(i))
			}
		}
	}
}

func (a *Analyzer) analyzeLabelSection(ls *ast.LabelSection, sc *scope.Scope) {
	for _, label := range ls.Labels {
		if a.failed {
			return
		}
		name := labelName(label)
		if !a.defineOrRedeclare(sc, &scope.Symbol{Name: name, Kind: scope.KindLabel, Type: types.LabelType, ConstValue: label}, ls.Line()) {
			return
		}
	}
}

func labelName(label int64) string {
	// Labels are numeric but share the same namespace machinery as every
	// other symbol kind, so they get a synthetic textual name; goto/labeled
	// statements resolve by this same encoding.
	return "#label#" + itoa(label)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (a *Analyzer) analyzeVarSection(vs *ast.VarSection, sc *scope.Scope) {
	for _, group := range vs.Groups {
		if a.failed {
			return
		}
		t := a.resolveType(group.Type, sc, "")
		if a.failed {
			return
		}
		for _, name := range group.Names {
			if outer, ok := sc.Resolve(name); ok && outer.Kind == scope.KindConst {
				a.errorf(diag.SemanticDeclaration, group.Line(), "variable %q would shadow a constant of the same name", name)
				return
			}
			if !a.defineOrRedeclare(sc, &scope.Symbol{Name: name, Kind: scope.KindVar, Type: t}, group.Line()) {
				return
			}
		}
	}
}

// resolveParams converts a parsed parameter-group list into scope.Param
// signature entries, without defining anything in any scope yet.
func (a *Analyzer) resolveParams(params []*ast.Param, sc *scope.Scope) []scope.Param {
	var out []scope.Param
	for _, pg := range params {
		t := a.resolveType(pg.Type, sc, "")
		if a.failed {
			return nil
		}
		mode := scope.PassValue
		switch pg.Kind {
		case ast.ParamVar:
			mode = scope.PassByRef
		case ast.ParamConst:
			mode = scope.PassConstRef
		}
		for _, name := range pg.Names {
			out = append(out, scope.Param{Name: name, Mode: mode, Type: t})
		}
	}
	return out
}

func (a *Analyzer) analyzeFuncDecl(fd *ast.FuncDecl, sc *scope.Scope) {
	params := a.resolveParams(fd.Params, sc)
	if a.failed {
		return
	}
	retType := a.resolveType(fd.ReturnType, sc, "")
	if a.failed {
		return
	}
	sym := &scope.Symbol{Name: fd.Name, Kind: scope.KindFunction, Params: params, ReturnType: retType}
	if !a.defineOrRedeclare(sc, sym, fd.Line()) {
		return
	}

	inner := sc.Nested()
	for _, p := range params {
		psym := &scope.Symbol{Name: p.Name, Kind: scope.KindVar, Type: p.Type}
		inner.Define(psym)
		a.markInitialized(psym)
	}

	prevFunc := a.currentFunc
	a.currentFunc = sym
	a.analyzeBlock(fd.Body, inner)
	a.currentFunc = prevFunc
}

func (a *Analyzer) analyzeProcDecl(pd *ast.ProcDecl, sc *scope.Scope) {
	params := a.resolveParams(pd.Params, sc)
	if a.failed {
		return
	}
	sym := &scope.Symbol{Name: pd.Name, Kind: scope.KindProcedure, Params: params}
	if !a.defineOrRedeclare(sc, sym, pd.Line()) {
		return
	}

	inner := sc.Nested()
	for _, p := range params {
		psym := &scope.Symbol{Name: p.Name, Kind: scope.KindVar, Type: p.Type}
		inner.Define(psym)
		a.markInitialized(psym)
	}

	prevFunc := a.currentFunc
	a.currentFunc = nil
	a.analyzeBlock(pd.Body, inner)
	a.currentFunc = prevFunc
}
