package codegen

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// typeOf computes expr's type against frame f (nil at the program's top
// level). The program is already known semantically valid by the time
// codegen runs, so unlike the analyzer's analyzeExpression this never
// reports a diagnostic for an ordinary type mismatch — only a structural
// impossibility (an expression shape resolveLoc/typeOf doesn't recognize at
// all) is a CodeGenInternal failure. Its real job is recovering the one
// piece of information code generation needs that the AST doesn't carry
// directly: which operand of a binary expression is real, which identifier
// denotes which kind of storage, and so on — grounded in gerador_codigo.py's
// gen_binop, but using the operand's actual type instead of that function's
// syntactic "is either side a real literal" heuristic, which misclassifies
// e.g. `x + 1` for a real-typed variable x as an integer operation.
func (g *Generator) typeOf(expr ast.Expression, f *frame) *types.Type {
	if g.failed {
		return types.UnknownType
	}
	switch e := expr.(type) {
	case *ast.ConstLiteral:
		return literalType(e)

	case *ast.Ident:
		if alias, ok := f.resolveAlias(e.Name); ok {
			return g.typeOf(alias, f)
		}
		if lv, ok := f.resolveLocal(e.Name); ok {
			return lv.typ
		}
		if expr2, ok := f.resolveConst(e.Name); ok {
			return g.typeOf(expr2, f)
		}
		if expr2, ok := g.consts[canon(e.Name)]; ok {
			return g.typeOf(expr2, f)
		}
		sym, ok := g.global.Resolve(e.Name)
		if !ok {
			g.fail(e.Line(), "internal error: undeclared name %q reached code generation", e.Name)
			return types.UnknownType
		}
		return sym.Type

	case *ast.ArrayAccess:
		baseType := g.typeOf(e.Base, f)
		if g.failed {
			return types.UnknownType
		}
		if baseType.Kind != types.Array {
			g.fail(e.Line(), "internal error: indexing a non-array value")
			return types.UnknownType
		}
		return baseType.Elem

	case *ast.FieldAccess:
		baseType := g.typeOf(e.Base, f)
		if g.failed {
			return types.UnknownType
		}
		if baseType.Kind != types.Record {
			g.fail(e.Line(), "internal error: field access on a non-record value")
			return types.UnknownType
		}
		ft, ok := baseType.Fields[canon(e.Field)]
		if !ok {
			g.fail(e.Line(), "internal error: unknown field %q", e.Field)
			return types.UnknownType
		}
		return ft

	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpDiv, ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr, ast.OpIn:
			return g.binaryResultType(e, f)
		default: // + - * div mod
			return g.binaryResultType(e, f)
		}

	case *ast.NotExpr:
		return types.BooleanType

	case *ast.CallExpr:
		return g.callResultType(e, f)

	case *ast.FormatExpr:
		return g.typeOf(e.Expr, f)

	case *ast.SetLiteral:
		if len(e.Elements) == 0 {
			return types.NewSet(types.UnknownType)
		}
		return types.NewSet(g.typeOf(e.Elements[0], f))

	default:
		g.fail(expr.Line(), "internal error: unhandled expression shape in code generation")
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

func (g *Generator) binaryResultType(e *ast.BinaryExpr, f *frame) *types.Type {
	switch e.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr, ast.OpIn:
		return types.BooleanType
	case ast.OpDiv:
		return types.RealType
	case ast.OpDivInt, ast.OpMod:
		return types.IntegerType
	default: // + - *
		lt := g.typeOf(e.Left, f)
		rt := g.typeOf(e.Right, f)
		if lt.Kind == types.Real || rt.Kind == types.Real {
			return types.RealType
		}
		return types.IntegerType
	}
}

var builtinCastTypes = map[string]*types.Type{
	"integer": types.IntegerType,
	"real":    types.RealType,
	"boolean": types.BooleanType,
	"char":    types.CharType,
}

func (g *Generator) callResultType(e *ast.CallExpr, f *frame) *types.Type {
	lname := canon(e.Name)
	if t, ok := builtinCastTypes[lname]; ok {
		return t
	}
	switch lname {
	case "write", "writeln", "read", "readln":
		return types.UnknownType
	}
	sym, ok := g.global.Resolve(e.Name)
	if !ok || sym.Kind != scope.KindFunction {
		return types.UnknownType
	}
	return sym.ReturnType
}
