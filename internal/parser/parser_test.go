package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(src)
	prog := ParseProgram(lexer.New(src), bag)
	return prog, bag
}

func TestParser_HelloWorld(t *testing.T) {
	prog, bag := parse(t, `program H; begin writeln('hello') end.`)
	require.False(t, bag.HasErrors())
	require.NotNil(t, prog)
	assert.Equal(t, "h", prog.Name)
	require.Len(t, prog.Block.Body.Statements, 1)
	call, ok := prog.Block.Body.Statements[0].(*ast.CallStmt)
	require.True(t, ok)
	assert.Equal(t, "writeln", call.Call.Name)
}

func TestParser_ArithmeticPrecedence(t *testing.T) {
	prog, bag := parse(t, `program A; var x: integer; begin x := 2+3*4 end.`)
	require.False(t, bag.HasErrors())
	require.NotNil(t, prog)
	assign := prog.Block.Body.Statements[0].(*ast.AssignStmt)
	bin := assign.RHS.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParser_DanglingElseBindsInnermost(t *testing.T) {
	prog, bag := parse(t, `program D; var a,b: boolean;
begin
  if a then if b then a := true else a := false
end.`)
	require.False(t, bag.HasErrors())
	outer := prog.Block.Body.Statements[0].(*ast.IfStmt)
	inner := outer.Then.(*ast.IfStmt)
	assert.NotNil(t, inner.Else)
	assert.Nil(t, outer.Else)
}

func TestParser_ArrayDeclAndAccess(t *testing.T) {
	prog, bag := parse(t, `program B; const n=5; var a: array[1..n] of integer;
begin a[1] := 7 end.`)
	require.False(t, bag.HasErrors())
	varSec := prog.Block.Declarations[1].(*ast.VarSection)
	arrType := varSec.Groups[0].Type.(*ast.ArrayType)
	upper := arrType.Upper.(*ast.Ident)
	assert.Equal(t, "n", upper.Name)

	assign := prog.Block.Body.Statements[0].(*ast.AssignStmt)
	access := assign.LHS.(*ast.ArrayAccess)
	base := access.Base.(*ast.Ident)
	assert.Equal(t, "a", base.Name)
}

func TestParser_ForDowntoAndWhile(t *testing.T) {
	prog, bag := parse(t, `program C; var i: integer;
begin
  for i := 10 downto 1 do writeln(i);
  while i > 0 do i := i - 1
end.`)
	require.False(t, bag.HasErrors())
	forStmt := prog.Block.Body.Statements[0].(*ast.ForStmt)
	assert.Equal(t, ast.ForDownto, forStmt.Direction)
	whileStmt := prog.Block.Body.Statements[1].(*ast.WhileStmt)
	assert.NotNil(t, whileStmt.Cond)
}

func TestParser_FormatExpressionCollapse(t *testing.T) {
	prog, bag := parse(t, `program F; var x: real;
begin writeln(x:8:2) end.`)
	require.False(t, bag.HasErrors())
	call := prog.Block.Body.Statements[0].(*ast.CallStmt)
	fmtExpr := call.Call.Args[0].(*ast.FormatExpr)
	require.NotNil(t, fmtExpr.Width)
	require.NotNil(t, fmtExpr.Precision)
}

func TestParser_FunctionWithReturn(t *testing.T) {
	src := `program E;
function f(x:integer):integer;
begin f := x+1 end;
var y:integer;
begin y := f(41) end.`
	prog, bag := parse(t, src)
	require.False(t, bag.HasErrors())
	fn := prog.Block.Declarations[0].(*ast.FuncDecl)
	assert.Equal(t, "f", fn.Name)
	assert.Len(t, fn.Params, 1)
}

func TestParser_UnexpectedTokenReportsSyntaxError(t *testing.T) {
	_, bag := parse(t, `program X; begin x := end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.Syntactic, bag.Diagnostics()[0].Kind)
}

func TestParser_CaseInsensitiveKeywords(t *testing.T) {
	prog1, bag1 := parse(t, `program P; Begin WriteLn('x') End.`)
	prog2, bag2 := parse(t, `PROGRAM p; begin writeln('x') end.`)
	require.False(t, bag1.HasErrors())
	require.False(t, bag2.HasErrors())
	assert.Equal(t, prog1.Name, "p")
	assert.Equal(t, prog2.Name, "p")
}
