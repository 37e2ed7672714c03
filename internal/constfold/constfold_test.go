package constfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunor04/pasvm/internal/ast"
)

func TestEval_IntegerLiteral(t *testing.T) {
	v, err := Eval(ast.NewIntLiteral(1, 42), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)
}

func TestEval_NamedConstantChain(t *testing.T) {
	consts := map[string]ast.Expression{
		"base": ast.NewIntLiteral(1, 10),
		"n":    ast.NewIdent(1, "base"),
	}
	lookup := func(name string) (ast.Expression, bool) {
		e, ok := consts[name]
		return e, ok
	}
	v, err := Eval(ast.NewIdent(1, "n"), lookup)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.Int)
}

func TestEval_BinaryOverNamedConstant(t *testing.T) {
	consts := map[string]ast.Expression{
		"n": ast.NewIntLiteral(1, 5),
	}
	lookup := func(name string) (ast.Expression, bool) {
		e, ok := consts[name]
		return e, ok
	}
	expr := ast.NewBinaryExpr(1, ast.OpMul, ast.NewIdent(1, "n"), ast.NewIntLiteral(1, 2))
	n, err := EvalInt(expr, lookup)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestEval_DivisionByZero(t *testing.T) {
	expr := ast.NewBinaryExpr(1, ast.OpDivInt, ast.NewIntLiteral(1, 1), ast.NewIntLiteral(1, 0))
	_, err := Eval(expr, nil)
	assert.Error(t, err)
}

func TestEval_UndefinedConstant(t *testing.T) {
	lookup := func(name string) (ast.Expression, bool) { return nil, false }
	_, err := Eval(ast.NewIdent(1, "missing"), lookup)
	assert.Error(t, err)
}

func TestEvalInt_RejectsReal(t *testing.T) {
	_, err := EvalInt(ast.NewRealLiteral(1, 1.5), nil)
	assert.Error(t, err)
}
