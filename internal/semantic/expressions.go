package semantic

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// analyzeExpression type-checks expr and returns its inferred type. On
// failure it latches the analyzer and the returned type is types.UnknownType
// (the caller is expected to check a.failed immediately afterward, not to
// rely on the placeholder type).
func (a *Analyzer) analyzeExpression(expr ast.Expression, sc *scope.Scope) *types.Type {
	if a.failed {
		return types.UnknownType
	}
	switch e := expr.(type) {
	case *ast.ConstLiteral:
		return literalType(e)

	case *ast.Ident:
		sym, ok := sc.Resolve(e.Name)
		if !ok {
			a.errorf(diag.SemanticDeclaration, e.Line(), "undeclared name %q", e.Name)
			return types.UnknownType
		}
		switch sym.Kind {
		case scope.KindVar:
			if !a.isInitialized(sym) {
				a.errorf(diag.UseBeforeInit, e.Line(), "use of possibly uninitialized variable %q", e.Name)
				return types.UnknownType
			}
			return sym.Type
		case scope.KindConst, scope.KindEnumMember:
			return sym.Type
		default:
			a.errorf(diag.SemanticTyping, e.Line(), "%q does not denote a value", e.Name)
			return types.UnknownType
		}

	case *ast.ArrayAccess:
		t, _ := a.resolveLValue(e, sc)
		return t

	case *ast.FieldAccess:
		t, _ := a.resolveLValue(e, sc)
		return t

	case *ast.BinaryExpr:
		return a.analyzeBinary(e, sc)

	case *ast.NotExpr:
		t := a.analyzeExpression(e.Expr, sc)
		if a.failed {
			return types.UnknownType
		}
		if t.Kind != types.Boolean {
			a.errorf(diag.SemanticTyping, e.Line(), "'not' requires a boolean operand, got %s", t)
			return types.UnknownType
		}
		return types.BooleanType

	case *ast.CallExpr:
		return a.analyzeCall(e, sc)

	case *ast.FormatExpr:
		return a.analyzeFormat(e, sc)

	case *ast.SetLiteral:
		return a.analyzeSetLiteral(e, sc)

	default:
		a.errorf(diag.CodeGenInternal, expr.Line(), "unhandled expression node in semantic analysis")
		return types.UnknownType
	}
}

func literalType(c *ast.ConstLiteral) *types.Type {
	switch c.Kind {
	case ast.LitInteger:
		return types.IntegerType
	case ast.LitReal:
		return types.RealType
	case ast.LitBoolean:
		return types.BooleanType
	case ast.LitChar:
		return types.CharType
	default:
		return types.TextType
	}
}

func (a *Analyzer) analyzeBinary(e *ast.BinaryExpr, sc *scope.Scope) *types.Type {
	lt := a.analyzeExpression(e.Left, sc)
	if a.failed {
		return types.UnknownType
	}
	rt := a.analyzeExpression(e.Right, sc)
	if a.failed {
		return types.UnknownType
	}

	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.errorf(diag.SemanticTyping, e.Line(), "operator %s requires numeric operands, got %s and %s", e.Op, lt, rt)
			return types.UnknownType
		}
		if lt.Kind == types.Real || rt.Kind == types.Real {
			return types.RealType
		}
		return types.IntegerType

	case ast.OpDiv:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.errorf(diag.SemanticTyping, e.Line(), "operator / requires numeric operands, got %s and %s", lt, rt)
			return types.UnknownType
		}
		return types.RealType

	case ast.OpDivInt, ast.OpMod:
		if lt.Kind != types.Integer || rt.Kind != types.Integer {
			a.errorf(diag.SemanticTyping, e.Line(), "operator %s requires integer operands, got %s and %s", e.Op, lt, rt)
			return types.UnknownType
		}
		return types.IntegerType

	case ast.OpEq, ast.OpNe:
		if !(lt.IsNumeric() && rt.IsNumeric()) && !types.Equal(lt, rt) {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot compare %s and %s for equality", lt, rt)
			return types.UnknownType
		}
		return types.BooleanType

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		orderable := lt.Kind == types.Integer || lt.Kind == types.Real || lt.Kind == types.Char || lt.Kind == types.Text
		if !orderable || !types.Equal(lt, rt) {
			a.errorf(diag.SemanticTyping, e.Line(), "operator %s requires identical orderable operand types, got %s and %s", e.Op, lt, rt)
			return types.UnknownType
		}
		return types.BooleanType

	case ast.OpIn:
		if rt.Kind != types.Set {
			a.errorf(diag.SemanticTyping, e.Line(), "right operand of 'in' must be a set, got %s", rt)
			return types.UnknownType
		}
		if !types.Equal(lt, rt.Elem) {
			a.errorf(diag.SemanticTyping, e.Line(), "left operand of 'in' (%s) does not match the set's element type (%s)", lt, rt.Elem)
			return types.UnknownType
		}
		return types.BooleanType

	case ast.OpAnd, ast.OpOr:
		if lt.Kind != types.Boolean || rt.Kind != types.Boolean {
			a.errorf(diag.SemanticTyping, e.Line(), "operator %s requires boolean operands, got %s and %s", e.Op, lt, rt)
			return types.UnknownType
		}
		return types.BooleanType

	default:
		a.errorf(diag.CodeGenInternal, e.Line(), "unhandled binary operator in semantic analysis")
		return types.UnknownType
	}
}

func (a *Analyzer) analyzeFormat(e *ast.FormatExpr, sc *scope.Scope) *types.Type {
	inner := a.analyzeExpression(e.Expr, sc)
	if a.failed {
		return types.UnknownType
	}
	width := a.analyzeExpression(e.Width, sc)
	if a.failed {
		return types.UnknownType
	}
	if width.Kind != types.Integer {
		a.errorf(diag.SemanticTyping, e.Line(), "format width must be of type integer, got %s", width)
		return types.UnknownType
	}
	if e.Precision != nil {
		prec := a.analyzeExpression(e.Precision, sc)
		if a.failed {
			return types.UnknownType
		}
		if prec.Kind != types.Integer {
			a.errorf(diag.SemanticTyping, e.Line(), "format precision must be of type integer, got %s", prec)
			return types.UnknownType
		}
	}
	return inner
}

func (a *Analyzer) analyzeSetLiteral(e *ast.SetLiteral, sc *scope.Scope) *types.Type {
	if len(e.Elements) == 0 {
		return types.NewSet(types.UnknownType)
	}
	elemType := a.analyzeExpression(e.Elements[0], sc)
	if a.failed {
		return types.UnknownType
	}
	for _, el := range e.Elements[1:] {
		t := a.analyzeExpression(el, sc)
		if a.failed {
			return types.UnknownType
		}
		if !types.Equal(t, elemType) {
			a.errorf(diag.SemanticTyping, el.Line(), "set elements must share a single type; got %s after %s", t, elemType)
			return types.UnknownType
		}
	}
	if !elemType.IsOrdinal() {
		a.errorf(diag.SemanticTyping, e.Line(), "set element type must be ordinal, got %s", elemType)
		return types.UnknownType
	}
	return types.NewSet(elemType)
}

var builtinCastTypes = map[string]*types.Type{
	"integer": types.IntegerType,
	"real":    types.RealType,
	"boolean": types.BooleanType,
	"char":    types.CharType,
}

func (a *Analyzer) analyzeCall(e *ast.CallExpr, sc *scope.Scope) *types.Type {
	lname := canon(e.Name)

	if castTo, ok := builtinCastTypes[lname]; ok {
		if len(e.Args) != 1 {
			a.errorf(diag.SemanticDeclaration, e.Line(), "cast to %s takes exactly one argument", lname)
			return types.UnknownType
		}
		argType := a.analyzeExpression(e.Args[0], sc)
		if a.failed {
			return types.UnknownType
		}
		if !argType.IsNumeric() && argType.Kind != types.Char && argType.Kind != types.Boolean {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot cast %s to %s", argType, lname)
			return types.UnknownType
		}
		if lname == "real" && !argType.IsNumeric() {
			a.errorf(diag.SemanticTyping, e.Line(), "cannot cast %s to %s", argType, lname)
			return types.UnknownType
		}
		return castTo
	}

	switch lname {
	case "write", "writeln":
		for _, arg := range e.Args {
			t := a.analyzeExpression(arg, sc)
			if a.failed {
				return types.UnknownType
			}
			isCharArray := t.Kind == types.Array && t.Elem != nil && t.Elem.Kind == types.Char
			if !isCharArray && (t.Kind == types.Array || t.Kind == types.Record || t.Kind == types.Set || t.Kind == types.File) {
				a.errorf(diag.SemanticTyping, arg.Line(), "%s cannot print a value of type %s", lname, t)
				return types.UnknownType
			}
		}
		return types.UnknownType

	case "read", "readln":
		for _, arg := range e.Args {
			t, sym := a.resolveLValue(arg, sc)
			if a.failed {
				return types.UnknownType
			}
			if t.Kind != types.Integer && t.Kind != types.Char {
				a.errorf(diag.SemanticTyping, arg.Line(), "%s target must be an integer or char, got %s", lname, t)
				return types.UnknownType
			}
			if sym != nil {
				a.markInitialized(sym)
			}
		}
		return types.UnknownType
	}

	sym, ok := sc.Resolve(e.Name)
	if !ok {
		a.errorf(diag.SemanticDeclaration, e.Line(), "undeclared subroutine %q", e.Name)
		return types.UnknownType
	}
	if sym.Kind != scope.KindFunction && sym.Kind != scope.KindProcedure {
		a.errorf(diag.SemanticTyping, e.Line(), "%q is not callable", e.Name)
		return types.UnknownType
	}
	if len(e.Args) != len(sym.Params) {
		a.errorf(diag.SemanticDeclaration, e.Line(), "%q expects %d argument(s), got %d", e.Name, len(sym.Params), len(e.Args))
		return types.UnknownType
	}
	for i, arg := range e.Args {
		param := sym.Params[i]
		argType := a.analyzeExpression(arg, sc)
		if a.failed {
			return types.UnknownType
		}
		if param.Mode != scope.PassValue {
			if _, ok := arg.(*ast.Ident); !ok {
				if _, ok := arg.(*ast.ArrayAccess); !ok {
					if _, ok := arg.(*ast.FieldAccess); !ok {
						a.errorf(diag.SemanticTyping, arg.Line(), "argument %d of %q must be a variable reference", i+1, e.Name)
						return types.UnknownType
					}
				}
			}
		}
		if types.Equal(argType, param.Type) {
			continue
		}
		if widensToReal(argType, param.Type) {
			continue
		}
		if textCharArrayCompatible(argType, param.Type) {
			continue
		}
		a.errorf(diag.SemanticTyping, arg.Line(), "argument %d of %q has type %s, expected %s", i+1, e.Name, argType, param.Type)
		return types.UnknownType
	}
	return sym.ReturnType
}
