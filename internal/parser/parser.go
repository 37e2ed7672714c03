// Package parser builds an AST from a lexer.Lexer's token stream, following
// the operator-precedence grammar and dangling-else rule of spec.md §4.2.
//
// Grounded on the teacher's Pratt-parser shape (CWBudde-go-dws/internal/parser),
// simplified to this grammar's single precedence ladder and to the one
// Open Question decision recorded in DESIGN.md: no panic-mode recovery — the
// first syntax error halts parsing and a nil AST is returned alongside the
// accumulated diagnostics.
package parser

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/lexer"
)

// Precedence levels for the infix operator ladder (§4.2). `not` is a prefix
// operator and needs no slot here; `:` sits above everything else so that
// `write(x:5:2)`'s two format operands chain left-associatively.
const (
	_ int = iota
	LOWEST
	OR
	AND
	COMPARISON
	SUM
	PRODUCT
	FORMAT
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:    OR,
	lexer.AND:   AND,
	lexer.EQ:    COMPARISON,
	lexer.NE:    COMPARISON,
	lexer.LT:    COMPARISON,
	lexer.LE:    COMPARISON,
	lexer.GT:    COMPARISON,
	lexer.GE:    COMPARISON,
	lexer.IN:    COMPARISON,
	lexer.PLUS:  SUM,
	lexer.MINUS: SUM,
	lexer.TIMES: PRODUCT,
	lexer.SLASH: PRODUCT,
	lexer.DIV:   PRODUCT,
	lexer.MOD:   PRODUCT,
	lexer.COLON: FORMAT,
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS:  ast.OpAdd,
	lexer.MINUS: ast.OpSub,
	lexer.TIMES: ast.OpMul,
	lexer.SLASH: ast.OpDiv,
	lexer.DIV:   ast.OpDivInt,
	lexer.MOD:   ast.OpMod,
	lexer.EQ:    ast.OpEq,
	lexer.NE:    ast.OpNe,
	lexer.LT:    ast.OpLt,
	lexer.LE:    ast.OpLe,
	lexer.GT:    ast.OpGt,
	lexer.GE:    ast.OpGe,
	lexer.IN:    ast.OpIn,
	lexer.AND:   ast.OpAnd,
	lexer.OR:    ast.OpOr,
}

// Parser is a hand-written recursive-descent/Pratt parser over one token
// stream. It halts at the first syntax error (no recovery, per Open
// Question 3) and records it in the shared diagnostic Bag.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	bag    *diag.Bag
	failed bool
}

// New creates a Parser reading from l, recording diagnostics into bag.
func New(l *lexer.Lexer, bag *diag.Bag) *Parser {
	p := &Parser{l: l, bag: bag}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool {
	return p.cur.Type == tt
}

func (p *Parser) peekIs(tt lexer.TokenType) bool {
	return p.peek.Type == tt
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// expect consumes the current token if it matches tt, else reports a
// syntactic diagnostic and halts the parse.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.failed {
		return false
	}
	if p.curIs(tt) {
		p.next()
		return true
	}
	p.errorUnexpected(tt)
	return false
}

func (p *Parser) errorUnexpected(want lexer.TokenType) {
	if p.failed {
		return
	}
	p.failed = true
	if p.curIs(lexer.EOF) {
		p.bag.Addf(diag.Syntactic, p.cur.Line, "unexpected end of input, expected %s", want)
		return
	}
	p.bag.Addf(diag.Syntactic, p.cur.Line, "unexpected token %q, expected %s", p.cur.Literal, want)
}

func (p *Parser) errorf(format string, args ...interface{}) {
	if p.failed {
		return
	}
	p.failed = true
	p.bag.Addf(diag.Syntactic, p.cur.Line, format, args...)
}

// Failed reports whether a syntax error halted the parse.
func (p *Parser) Failed() bool {
	return p.failed
}

// ParseProgram parses `program id ';' block '.'`, returning nil if any
// syntax error was encountered (Open Question 3: no recovery attempted).
func ParseProgram(l *lexer.Lexer, bag *diag.Bag) *ast.Program {
	p := New(l, bag)
	prog := p.parseProgram()
	for _, le := range l.Errors() {
		bag.Addf(diag.Lexical, le.Line, "%s", le.Message)
	}
	if p.failed {
		return nil
	}
	return prog
}

func (p *Parser) parseProgram() *ast.Program {
	line := p.cur.Line
	if !p.expect(lexer.PROGRAM) {
		return nil
	}
	if !p.curIs(lexer.IDENT) {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	name := p.cur.Literal
	p.next()
	if !p.expect(lexer.SEMI) {
		return nil
	}
	block := p.parseBlock()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.DOT) {
		return nil
	}
	return ast.NewProgram(line, name, block)
}

