package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/lexer"
	"github.com/nunor04/pasvm/internal/parser"
)

func check(t *testing.T, src string) *diag.Bag {
	t.Helper()
	bag := diag.NewBag(src)
	prog := parser.ParseProgram(lexer.New(src), bag)
	require.False(t, bag.HasErrors(), "unexpected parse error: %v", bag.Diagnostics())
	require.NotNil(t, prog)
	NewAnalyzer(bag).Analyze(prog)
	return bag
}

func TestAnalyze_HelloWorldHasNoErrors(t *testing.T) {
	bag := check(t, `program H; begin writeln('hello, world') end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_UseBeforeInitIsRejected(t *testing.T) {
	bag := check(t, `program U; var x: integer; begin writeln(x) end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.UseBeforeInit, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_AssignmentInitializesVariable(t *testing.T) {
	bag := check(t, `program I; var x: integer; begin x := 1; writeln(x) end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_IntegerWidensToReal(t *testing.T) {
	bag := check(t, `program W; var r: real; begin r := 3 end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_RealDoesNotNarrowToInteger(t *testing.T) {
	bag := check(t, `program N; var n: integer; begin n := 3.5 end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_AssignToConstantIsRejected(t *testing.T) {
	bag := check(t, `program C; const k = 5; begin k := 6 end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_UndeclaredNameIsRejected(t *testing.T) {
	bag := check(t, `program D; begin writeln(missing) end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticDeclaration, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_DuplicateDeclarationIsRejected(t *testing.T) {
	bag := check(t, `program R; var x: integer; x: real; begin end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticDeclaration, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_ArrayIndexMustBeInteger(t *testing.T) {
	bag := check(t, `program A;
var a: array[1..10] of integer; x: real;
begin a[1] := 1; x := 1.0; a[x] := 2 end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_FunctionReturnAssignmentChecksType(t *testing.T) {
	bag := check(t, `program F;
function square(n: integer): integer;
begin square := n * n end;
var y: integer;
begin y := square(5) end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_FunctionReturnTypeMismatchIsRejected(t *testing.T) {
	bag := check(t, `program F;
function bad(n: integer): integer;
begin bad := true end;
begin end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_CaseLabelTypeMustMatchScrutinee(t *testing.T) {
	bag := check(t, `program S;
var x: integer;
begin x := 1;
case x of
  1: writeln('one');
  2: writeln('two')
end end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_DuplicateCaseLabelIsRejected(t *testing.T) {
	bag := check(t, `program S;
var x: integer;
begin x := 1;
case x of
  1: writeln('one');
  1: writeln('one again')
end end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_EnumMembersAreOrdinalConstants(t *testing.T) {
	bag := check(t, `program E;
type color = (red, green, blue);
var c: color;
begin c := red;
case c of
  red: writeln('r');
  green: writeln('g');
  blue: writeln('b')
end end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_WithStatementExposesRecordFields(t *testing.T) {
	bag := check(t, `program W;
type point = record x, y: integer end;
var p: point;
begin p.x := 1; p.y := 2;
with p do writeln(x + y)
end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_GotoRequiresDeclaredLabel(t *testing.T) {
	bag := check(t, `program G;
begin goto 1 end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticDeclaration, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_LabeledStatementAndGotoAgree(t *testing.T) {
	bag := check(t, `program G;
label 1;
begin
  goto 1;
  1: writeln('here')
end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_SetLiteralRequiresHomogeneousElements(t *testing.T) {
	bag := check(t, `program S;
var ok: boolean;
begin ok := 1 in [1, 2, 3] end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_SetLiteralRejectsMixedElementTypes(t *testing.T) {
	bag := check(t, `program S;
var ok: boolean;
begin ok := true in [1, true] end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}

func TestAnalyze_TextCharArrayCallArgumentAllowance(t *testing.T) {
	bag := check(t, `program T;
procedure greet(name: array[1..5] of char);
begin writeln(name) end;
begin greet('hello') end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_IntegerCastFromReal(t *testing.T) {
	bag := check(t, `program C;
var r: real; n: integer;
begin r := 3.7; n := integer(r) end.`)
	assert.False(t, bag.HasErrors())
}

func TestAnalyze_ForLoopVariableMustBeInteger(t *testing.T) {
	bag := check(t, `program F;
var r: real;
begin for r := 1 to 10 do writeln(r) end.`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.SemanticTyping, bag.Diagnostics()[0].Kind)
}
