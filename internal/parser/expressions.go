package parser

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/lexer"
)

// parseConstExpr parses the grammar's restricted `const_expr` production: a
// single literal or a named-constant reference, used for array/subrange
// bounds and case/variant labels. Binary combinations of named constants
// (e.g. `array[1..n*2]`) are only valid inside a `const` section's own
// right-hand side, parsed as a full expression and folded later by
// internal/constfold.
func (p *Parser) parseConstExpr() ast.Expression {
	if p.failed {
		return nil
	}
	line := p.cur.Line
	switch p.cur.Type {
	case lexer.INT:
		v := p.cur.IntVal
		p.next()
		return ast.NewIntLiteral(line, v)
	case lexer.REAL:
		v := p.cur.FloatVal
		p.next()
		return ast.NewRealLiteral(line, v)
	case lexer.TRUE:
		p.next()
		return ast.NewBoolLiteral(line, true)
	case lexer.FALSE:
		p.next()
		return ast.NewBoolLiteral(line, false)
	case lexer.CHARLIT:
		v := p.cur.Literal
		p.next()
		return ast.NewCharLiteral(line, v)
	case lexer.STRING:
		v := p.cur.Literal
		p.next()
		return ast.NewTextLiteral(line, v)
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return ast.NewIdent(line, name)
	case lexer.MINUS:
		// Negative numeric bound, e.g. `array[-5..5]`.
		p.next()
		switch p.cur.Type {
		case lexer.INT:
			v := p.cur.IntVal
			p.next()
			return ast.NewIntLiteral(line, -v)
		case lexer.REAL:
			v := p.cur.FloatVal
			p.next()
			return ast.NewRealLiteral(line, -v)
		default:
			p.errorf("unexpected token %q in constant expression", p.cur.Literal)
			return nil
		}
	default:
		p.errorf("unexpected token %q, expected a constant expression", p.cur.Literal)
		return nil
	}
}

// parseExpression parses a full expression using precedence climbing, then
// applies the post-parse `:` rewrite into a FormatExpr (§4.2). By
// convention p.cur sits on the expression's first token when this is
// called, and on return it sits on the first token after the expression —
// i.e. the loop tests p.cur itself (already advanced past each operand) for
// a following operator, rather than a separate peek slot.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if p.failed {
		return nil
	}
	for !p.failed && precedences[p.cur.Type] > minPrec {
		opTok := p.cur
		p.next() // move past operator to RHS start
		if opTok.Type == lexer.COLON {
			left = p.finishFormat(left, opTok.Line)
			continue
		}
		right := p.parseExpression(precedences[opTok.Type])
		if p.failed {
			return nil
		}
		op, ok := binaryOps[opTok.Type]
		if !ok {
			p.errorf("unexpected operator %q", opTok.Literal)
			return nil
		}
		left = ast.NewBinaryExpr(opTok.Line, op, left, right)
	}
	return left
}

// finishFormat parses the width (and optional `:precision`) operand(s) of a
// `:` chain and folds them into a single FormatExpr, collapsing
// `(E:W):P` into one node with both width and precision per §4.2.
func (p *Parser) finishFormat(expr ast.Expression, line int) ast.Expression {
	width := p.parseExpression(FORMAT)
	if p.failed {
		return nil
	}
	if fe, ok := expr.(*ast.FormatExpr); ok && fe.Precision == nil {
		fe.Precision = width
		return fe
	}
	return ast.NewFormatExpr(line, expr, width, nil)
}

// parsePrefix parses a prefix expression: `not`, unary `+`/`-`, or a primary.
func (p *Parser) parsePrefix() ast.Expression {
	if p.failed {
		return nil
	}
	line := p.cur.Line
	switch p.cur.Type {
	case lexer.NOT:
		p.next()
		operand := p.parseExpression(AND)
		if p.failed {
			return nil
		}
		return ast.NewNotExpr(line, operand)
	case lexer.MINUS:
		p.next()
		operand := p.parseExpression(PRODUCT)
		if p.failed {
			return nil
		}
		return ast.NewBinaryExpr(line, ast.OpSub, ast.NewIntLiteral(line, 0), operand)
	case lexer.PLUS:
		p.next()
		return p.parseExpression(PRODUCT)
	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses a literal, identifier (with trailing []/./ chains),
// parenthesized expression, set literal, or call.
func (p *Parser) parsePrimary() ast.Expression {
	if p.failed {
		return nil
	}
	line := p.cur.Line
	switch p.cur.Type {
	case lexer.INT:
		v := p.cur.IntVal
		p.next()
		return ast.NewIntLiteral(line, v)
	case lexer.REAL:
		v := p.cur.FloatVal
		p.next()
		return ast.NewRealLiteral(line, v)
	case lexer.TRUE:
		p.next()
		return ast.NewBoolLiteral(line, true)
	case lexer.FALSE:
		p.next()
		return ast.NewBoolLiteral(line, false)
	case lexer.CHARLIT:
		v := p.cur.Literal
		p.next()
		return ast.NewCharLiteral(line, v)
	case lexer.STRING:
		v := p.cur.Literal
		p.next()
		return ast.NewTextLiteral(line, v)
	case lexer.LPAREN:
		p.next()
		inner := p.parseExpression(LOWEST)
		if p.failed {
			return nil
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return inner
	case lexer.LBRACKET:
		return p.parseSetLiteral(line)
	case lexer.IDENT:
		return p.parseIdentChain(line)
	case lexer.INTEGER, lexer.REALTYPE, lexer.BOOLEAN, lexer.CHARTYPE:
		name := p.cur.Literal
		p.next()
		if !p.curIs(lexer.LPAREN) {
			p.errorUnexpected(lexer.LPAREN)
			return nil
		}
		return p.parseCallArgs(line, name)
	default:
		p.errorf("unexpected token %q in expression", p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseSetLiteral(line int) ast.Expression {
	p.next() // consume '['
	var elems []ast.Expression
	if !p.curIs(lexer.RBRACKET) {
		for {
			elems = append(elems, p.parseExpression(LOWEST))
			if p.failed {
				return nil
			}
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return ast.NewSetLiteral(line, elems)
}

// parseIdentChain parses a bare identifier, call, and any trailing
// `[index]`/`.field` suffixes, e.g. `rec.items[i].tag`.
func (p *Parser) parseIdentChain(line int) ast.Expression {
	name := p.cur.Literal
	p.next()

	var expr ast.Expression
	if p.curIs(lexer.LPAREN) {
		expr = p.parseCallArgs(line, name)
	} else {
		expr = ast.NewIdent(line, name)
	}
	if p.failed {
		return nil
	}

	for {
		switch p.cur.Type {
		case lexer.LBRACKET:
			p.next()
			idx := p.parseExpression(LOWEST)
			if p.failed {
				return nil
			}
			if !p.expect(lexer.RBRACKET) {
				return nil
			}
			expr = ast.NewArrayAccess(line, expr, idx)
		case lexer.DOT:
			p.next()
			if !p.curIs(lexer.IDENT) {
				p.errorUnexpected(lexer.IDENT)
				return nil
			}
			field := p.cur.Literal
			p.next()
			expr = ast.NewFieldAccess(line, expr, field)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallArgs(line int, name string) ast.Expression {
	p.next() // consume '('
	var args []ast.Expression
	if !p.curIs(lexer.RPAREN) {
		for {
			args = append(args, p.parseExpression(LOWEST))
			if p.failed {
				return nil
			}
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return ast.NewCallExpr(line, name, args)
}
