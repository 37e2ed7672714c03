package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestLexer_KeywordsCaseInsensitive(t *testing.T) {
	for _, src := range []string{"PROGRAM", "Program", "program", "PrOgRaM"} {
		toks := allTokens(t, src)
		require.Len(t, toks, 2)
		assert.Equal(t, PROGRAM, toks[0].Type)
		assert.Equal(t, "program", toks[0].Literal)
	}
}

func TestLexer_IdentifierVsKeyword(t *testing.T) {
	toks := allTokens(t, "programmer")
	require.Len(t, toks, 2)
	assert.Equal(t, IDENT, toks[0].Type)
	assert.Equal(t, "programmer", toks[0].Literal)
}

func TestLexer_IntegerAndRealLiterals(t *testing.T) {
	toks := allTokens(t, "42 3.14 2.5e10 2.5E-3 1..10")
	require.Len(t, toks, 8)
	assert.Equal(t, INT, toks[0].Type)
	assert.EqualValues(t, 42, toks[0].IntVal)

	assert.Equal(t, REAL, toks[1].Type)
	assert.InDelta(t, 3.14, toks[1].FloatVal, 1e-9)

	assert.Equal(t, REAL, toks[2].Type)
	assert.InDelta(t, 2.5e10, toks[2].FloatVal, 1)

	assert.Equal(t, REAL, toks[3].Type)
	assert.InDelta(t, 2.5e-3, toks[3].FloatVal, 1e-9)

	// "1..10" must NOT be scanned as a malformed real; RANGE wins by
	// longest-match over a lone DOT, and 1 / 10 stay separate integers.
	assert.Equal(t, INT, toks[4].Type)
	assert.Equal(t, RANGE, toks[5].Type)
	assert.Equal(t, INT, toks[6].Type)
}

func TestLexer_CharAndStringLiterals(t *testing.T) {
	toks := allTokens(t, `'a' 'hello' 'it''s' ''''`)
	require.Len(t, toks, 5)
	assert.Equal(t, CHARLIT, toks[0].Type)
	assert.Equal(t, "a", toks[0].Literal)

	assert.Equal(t, STRING, toks[1].Type)
	assert.Equal(t, "hello", toks[1].Literal)

	assert.Equal(t, STRING, toks[2].Type)
	assert.Equal(t, "it's", toks[2].Literal)

	// A single escaped quote is one character -> CHARLIT.
	assert.Equal(t, CHARLIT, toks[3].Type)
	assert.Equal(t, "'", toks[3].Literal)
}

func TestLexer_CommentsBothForms(t *testing.T) {
	toks := allTokens(t, "a { this is a comment } b (* another *) c")
	require.Len(t, toks, 4)
	assert.Equal(t, "a", toks[0].Literal)
	assert.Equal(t, "b", toks[1].Literal)
	assert.Equal(t, "c", toks[2].Literal)
}

func TestLexer_LineCounting(t *testing.T) {
	toks := allTokens(t, "a\nb\n\nc")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 4, toks[2].Line)
}

func TestLexer_IllegalCharacterSkipsOneByte(t *testing.T) {
	l := New("a @ b")
	first := l.NextToken()
	second := l.NextToken()
	third := l.NextToken()

	assert.Equal(t, IDENT, first.Type)
	assert.Equal(t, ILLEGAL, second.Type)
	assert.Equal(t, IDENT, third.Type)
	assert.Equal(t, "b", third.Literal)

	require.Len(t, l.Errors(), 1)
	assert.Contains(t, l.Errors()[0].Message, "@")
}

func TestLexer_Punctuation(t *testing.T) {
	toks := allTokens(t, ":= <> <= >= : < > = + - * / ( ) [ ] ; , .")
	types := make([]TokenType, 0, len(toks)-1)
	for _, tok := range toks {
		if tok.Type != EOF {
			types = append(types, tok.Type)
		}
	}
	assert.Equal(t, []TokenType{
		ASSIGN, NE, LE, GE, COLON, LT, GT, EQ, PLUS, MINUS, TIMES, SLASH,
		LPAREN, RPAREN, LBRACKET, RBRACKET, SEMI, COMMA, DOT,
	}, types)
}

func TestLexer_BooleanLiterals(t *testing.T) {
	toks := allTokens(t, "true FALSE")
	require.Len(t, toks, 3)
	assert.Equal(t, TRUE, toks[0].Type)
	assert.Equal(t, FALSE, toks[1].Type)
}
