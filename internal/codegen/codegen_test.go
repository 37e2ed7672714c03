package codegen

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/lexer"
	"github.com/nunor04/pasvm/internal/parser"
	"github.com/nunor04/pasvm/internal/semantic"
)

// compile runs the full front end (lexer, parser, semantic analysis) and
// then this package's Generate, mirroring the pipeline spec.md §2 describes
// as a single linear flow with no back-edge.
func compile(t *testing.T, src string) ([]string, *diag.Bag, bool) {
	t.Helper()
	bag := diag.NewBag(src)
	prog := parser.ParseProgram(lexer.New(src), bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Diagnostics())

	an := semantic.NewAnalyzer(bag)
	if !an.Analyze(prog) {
		return nil, bag, false
	}

	lines, ok := Generate(prog, an.Global(), bag)
	return lines, bag, ok
}

func joined(lines []string) string {
	return strings.Join(lines, "\n")
}

func TestGenerate_HelloWorld(t *testing.T) {
	lines, bag, ok := compile(t, `program H; begin writeln('hello') end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Equal(t, "START", lines[0])
	assert.Equal(t, "STOP", lines[len(lines)-1])
	assert.Contains(t, src, `PUSHS "hello"`)
	assert.Contains(t, src, "WRITES")
	assert.Contains(t, src, "WRITELN")
}

func TestGenerate_IntegerArithmetic(t *testing.T) {
	lines, bag, ok := compile(t, `program A; var x: integer; begin x := 2+3*4; writeln(x) end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	snaps.MatchSnapshot(t, joined(lines))
}

func TestGenerate_ArrayBounds(t *testing.T) {
	lines, bag, ok := compile(t, `program B; const n=5; var a: array[1..n] of integer; begin a[1]:=7; writeln(a[1]) end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Contains(t, src, "PUSHI 5")
	assert.Contains(t, src, "ALLOCN")
	assert.Contains(t, src, "PUSHI 1\nSUB\nCHECK 0,4")
}

func TestGenerate_ForLoopDescending(t *testing.T) {
	lines, bag, ok := compile(t, `program C; var i: integer; begin for i:=10 downto 1 do writeln(i) end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Contains(t, src, "SUPEQ")
	assert.NotContains(t, src, "INFEQ")
	assert.Contains(t, src, "SUB")
}

func TestGenerate_UndeclaredVariableFails(t *testing.T) {
	bag := diag.NewBag(`program D; begin x := 1 end.`)
	prog := parser.ParseProgram(lexer.New(`program D; begin x := 1 end.`), bag)
	require.False(t, bag.HasErrors())

	an := semantic.NewAnalyzer(bag)
	ok := an.Analyze(prog)
	require.False(t, ok)
	require.True(t, bag.HasErrors())
}

func TestGenerate_FunctionWithReturn(t *testing.T) {
	src := `program E;
function f(x:integer):integer;
begin
  f := x+1
end;
var y:integer;
begin
  y := f(41);
  writeln(y)
end.`
	lines, bag, ok := compile(t, src)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	out := joined(lines)

	fIdx := indexOf(lines, "F:")
	require.GreaterOrEqual(t, fIdx, 0)
	for _, l := range lines[fIdx:] {
		assert.NotEqual(t, "STOP", l)
	}
	snaps.MatchSnapshot(t, out)
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}

func TestGenerate_StartStopBracketMainSegment(t *testing.T) {
	lines, bag, ok := compile(t, `program P;
procedure greet;
begin
  writeln('hi')
end;
begin
  greet
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	assert.Equal(t, "START", lines[0])
	stopIdx := indexOf(lines, "STOP")
	require.GreaterOrEqual(t, stopIdx, 0)
	// the subroutine body is appended after the main segment's STOP.
	labelIdx := indexOf(lines, "GREET:")
	require.Greater(t, labelIdx, stopIdx)
}

func TestGenerate_IfEmitsMatchingLabelPair(t *testing.T) {
	lines, bag, ok := compile(t, `program F; var x: integer;
begin
  x := 1;
  if x = 1 then writeln(1) else writeln(0)
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)

	jzCount := strings.Count(src, "JZ L0ELSE")
	assert.Equal(t, 1, jzCount)
	assert.Contains(t, src, "L0ELSE:")
	assert.Contains(t, src, "L0ENDIF:")
}

func TestGenerate_RealArithmeticWidensIntegerOperand(t *testing.T) {
	lines, bag, ok := compile(t, `program G; var x: real;
begin
  x := 1 + 2.5;
  writeln(x)
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Contains(t, src, "PUSHI 1\nITOF")
	assert.Contains(t, src, "FADD")
}

func TestGenerate_RecordFieldAccessUsesCheckedOffset(t *testing.T) {
	lines, bag, ok := compile(t, `program H;
type point = record x, y: integer end;
var p: point;
begin
  p.x := 1;
  writeln(p.x)
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Contains(t, src, "ALLOCN")
	assert.Contains(t, src, "CHECK 0,1")
}

func TestGenerate_CaseInsensitivityLaw(t *testing.T) {
	lower, _, ok1 := compile(t, `program A; var x: integer; begin x := 2+3*4; writeln(x) end.`)
	require.True(t, ok1)
	upper, _, ok2 := compile(t, `PROGRAM A; VAR X: INTEGER; BEGIN X := 2+3*4; WRITELN(X) END.`)
	require.True(t, ok2)
	assert.Equal(t, lower, upper)
}

func TestGenerate_WhileLoopLabels(t *testing.T) {
	lines, bag, ok := compile(t, `program I; var x: integer;
begin
  x := 0;
  while x < 5 do x := x + 1
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Contains(t, src, "L0WHILE:")
	assert.Contains(t, src, "L0ENDWHILE:")
	assert.Contains(t, src, "JUMP L0WHILE")
}

func TestGenerate_SetInLiteralLowersToEqualOrChain(t *testing.T) {
	lines, bag, ok := compile(t, `program J; var x: integer;
begin
  x := 1;
  if x in [1,2,3] then writeln(1)
end.`)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	src := joined(lines)
	assert.Equal(t, 3, strings.Count(src, "EQUAL"))
	assert.Equal(t, 2, strings.Count(src, "\nOR\n"))
}

func TestGenerate_ProcedureHasNoReservedReturnSlot(t *testing.T) {
	src := `program K;
procedure greet(x: integer);
begin
  writeln(x)
end;
begin
  greet(5)
end.`
	lines, bag, ok := compile(t, src)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	out := joined(lines)
	assert.NotContains(t, out, "PUSHI 0\nPUSHA GREET")

	greetIdx := indexOf(lines, "GREET:")
	require.GreaterOrEqual(t, greetIdx, 0)
	snaps.MatchSnapshot(t, out)
}

func TestGenerate_ScalarVarParameterIsRejected(t *testing.T) {
	src := `program L;
procedure bump(var x: integer);
begin
  x := x + 1
end;
var y: integer;
begin
  y := 0;
  bump(y)
end.`
	bag := diag.NewBag(src)
	prog := parser.ParseProgram(lexer.New(src), bag)
	require.False(t, bag.HasErrors())

	an := semantic.NewAnalyzer(bag)
	require.True(t, an.Analyze(prog), "diagnostics: %v", bag.Diagnostics())

	_, ok := Generate(prog, an.Global(), bag)
	assert.False(t, ok)
	assert.True(t, bag.HasErrors())
}

func TestGenerate_ArrayVarParameterSharesHeapPointer(t *testing.T) {
	src := `program M;
procedure zeroFirst(var a: array[1..3] of integer);
begin
  a[1] := 0
end;
var nums: array[1..3] of integer;
begin
  nums[1] := 9;
  zeroFirst(nums)
end.`
	lines, bag, ok := compile(t, src)
	require.True(t, ok, "diagnostics: %v", bag.Diagnostics())
	out := joined(lines)
	assert.Contains(t, out, "PUSHA ZEROFIRST\nCALL")
}
