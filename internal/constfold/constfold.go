// Package constfold evaluates compile-time constant expressions, grounded
// on the original implementation's `extrair_valor_constante` (ana_sin.py /
// gerador_codigo.py): a literal folds to itself, a named-constant reference
// folds by recursively folding the referenced constant's own expression,
// and a binary expression over arithmetic operators folds both operands
// then applies the operator. Used by array-bound and subrange-bound
// evaluation, and by the code generator's ALLOCN sizing.
package constfold

import (
	"fmt"

	"github.com/nunor04/pasvm/internal/ast"
)

// Value is a folded constant: exactly one of its fields is meaningful,
// selected by Kind.
type Value struct {
	Kind ast.LiteralKind
	Int  int64
	Real float64
	Bool bool
	Text string
}

// Lookup resolves a named constant to its (unfolded) defining expression,
// as recorded by the semantic analyzer while populating scopes.
type Lookup func(name string) (ast.Expression, bool)

// Eval folds expr to a constant Value, or returns an error describing why it
// isn't one. Only literals, named-constant references, and arithmetic
// binary expressions over constants are foldable — exactly the set the
// original's extrair_valor_constante handles.
func Eval(expr ast.Expression, lookup Lookup) (Value, error) {
	switch e := expr.(type) {
	case *ast.ConstLiteral:
		return literalValue(e), nil

	case *ast.Ident:
		ref, ok := lookup(e.Name)
		if !ok {
			return Value{}, fmt.Errorf("undefined constant %q", e.Name)
		}
		return Eval(ref, lookup)

	case *ast.BinaryExpr:
		left, err := Eval(e.Left, lookup)
		if err != nil {
			return Value{}, err
		}
		right, err := Eval(e.Right, lookup)
		if err != nil {
			return Value{}, err
		}
		return foldBinary(e.Op, left, right)

	default:
		return Value{}, fmt.Errorf("expression is not a compile-time constant")
	}
}

func literalValue(c *ast.ConstLiteral) Value {
	switch c.Kind {
	case ast.LitInteger:
		return Value{Kind: ast.LitInteger, Int: c.IntVal}
	case ast.LitReal:
		return Value{Kind: ast.LitReal, Real: c.FloatVal}
	case ast.LitBoolean:
		return Value{Kind: ast.LitBoolean, Bool: c.BoolVal}
	case ast.LitChar:
		return Value{Kind: ast.LitChar, Text: c.Text}
	default:
		return Value{Kind: ast.LitText, Text: c.Text}
	}
}

func foldBinary(op ast.BinaryOp, l, r Value) (Value, error) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return foldArith(op, l, r)
	case ast.OpDivInt, ast.OpMod:
		if l.Kind != ast.LitInteger || r.Kind != ast.LitInteger {
			return Value{}, fmt.Errorf("'div'/'mod' require integer constant operands")
		}
		if r.Int == 0 {
			return Value{}, fmt.Errorf("division by zero in constant expression")
		}
		if op == ast.OpDivInt {
			return Value{Kind: ast.LitInteger, Int: l.Int / r.Int}, nil
		}
		return Value{Kind: ast.LitInteger, Int: l.Int % r.Int}, nil
	default:
		return Value{}, fmt.Errorf("operator %s is not supported in a constant expression", op)
	}
}

func foldArith(op ast.BinaryOp, l, r Value) (Value, error) {
	if l.Kind != ast.LitInteger && l.Kind != ast.LitReal {
		return Value{}, fmt.Errorf("arithmetic on a non-numeric constant")
	}
	if r.Kind != ast.LitInteger && r.Kind != ast.LitReal {
		return Value{}, fmt.Errorf("arithmetic on a non-numeric constant")
	}
	if op == ast.OpDiv {
		lf, rf := asFloat(l), asFloat(r)
		if rf == 0 {
			return Value{}, fmt.Errorf("division by zero in constant expression")
		}
		return Value{Kind: ast.LitReal, Real: lf / rf}, nil
	}
	if l.Kind == ast.LitInteger && r.Kind == ast.LitInteger {
		switch op {
		case ast.OpAdd:
			return Value{Kind: ast.LitInteger, Int: l.Int + r.Int}, nil
		case ast.OpSub:
			return Value{Kind: ast.LitInteger, Int: l.Int - r.Int}, nil
		case ast.OpMul:
			return Value{Kind: ast.LitInteger, Int: l.Int * r.Int}, nil
		}
	}
	lf, rf := asFloat(l), asFloat(r)
	switch op {
	case ast.OpAdd:
		return Value{Kind: ast.LitReal, Real: lf + rf}, nil
	case ast.OpSub:
		return Value{Kind: ast.LitReal, Real: lf - rf}, nil
	case ast.OpMul:
		return Value{Kind: ast.LitReal, Real: lf * rf}, nil
	}
	return Value{}, fmt.Errorf("unreachable arithmetic operator %s", op)
}

func asFloat(v Value) float64 {
	if v.Kind == ast.LitInteger {
		return float64(v.Int)
	}
	return v.Real
}

// EvalInt folds expr and requires the result to be an integer, as every
// array/subrange bound must be (spec.md §3 invariant (d)).
func EvalInt(expr ast.Expression, lookup Lookup) (int64, error) {
	v, err := Eval(expr, lookup)
	if err != nil {
		return 0, err
	}
	if v.Kind != ast.LitInteger {
		return 0, fmt.Errorf("expected an integer constant expression")
	}
	return v.Int, nil
}
