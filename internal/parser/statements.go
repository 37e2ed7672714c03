package parser

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/lexer"
)

// parseStatementList parses a `;`-separated statement list, stopping before
// a terminator the caller recognizes (END/UNTIL).
func (p *Parser) parseStatementList() []ast.Statement {
	var stmts []ast.Statement
	for {
		stmts = append(stmts, p.parseStatement())
		if p.failed {
			return nil
		}
		if p.curIs(lexer.SEMI) {
			p.next()
			continue
		}
		break
	}
	return stmts
}

// parseStatement parses one statement, including an optional `label:` prefix.
func (p *Parser) parseStatement() ast.Statement {
	if p.failed {
		return nil
	}
	line := p.cur.Line

	if p.curIs(lexer.INT) && p.peekIs(lexer.COLON) {
		label := p.cur.IntVal
		p.next() // consume label
		p.next() // consume ':'
		inner := p.parseStatement()
		if p.failed {
			return nil
		}
		return ast.NewLabeledStmt(line, label, inner)
	}

	switch p.cur.Type {
	case lexer.BEGIN:
		return p.parseCompound()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.REPEAT:
		return p.parseRepeat()
	case lexer.FOR:
		return p.parseFor()
	case lexer.CASE:
		return p.parseCase()
	case lexer.WITH:
		return p.parseWith()
	case lexer.GOTO:
		p.next()
		if !p.curIs(lexer.INT) {
			p.errorUnexpected(lexer.INT)
			return nil
		}
		label := p.cur.IntVal
		p.next()
		return ast.NewGotoStmt(line, label)
	case lexer.SEMI, lexer.END, lexer.UNTIL:
		return ast.NewEmptyStmt(line)
	case lexer.IDENT:
		return p.parseAssignOrCall(line)
	default:
		p.errorf("unexpected token %q starting a statement", p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseCompound() *ast.CompoundStmt {
	line := p.cur.Line
	p.next() // consume 'begin'
	stmts := p.parseStatementList()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.END) {
		return nil
	}
	return ast.NewCompoundStmt(line, stmts)
}

func (p *Parser) parseIf() *ast.IfStmt {
	line := p.cur.Line
	p.next() // consume 'if'
	cond := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	if !p.expect(lexer.THEN) {
		return nil
	}
	thenStmt := p.parseStatement()
	if p.failed {
		return nil
	}
	var elseStmt ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		elseStmt = p.parseStatement()
		if p.failed {
			return nil
		}
	}
	return ast.NewIfStmt(line, cond, thenStmt, elseStmt)
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	line := p.cur.Line
	p.next() // consume 'while'
	cond := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	if !p.expect(lexer.DO) {
		return nil
	}
	body := p.parseStatement()
	if p.failed {
		return nil
	}
	return ast.NewWhileStmt(line, cond, body)
}

func (p *Parser) parseRepeat() *ast.RepeatStmt {
	line := p.cur.Line
	p.next() // consume 'repeat'
	stmts := p.parseStatementList()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.UNTIL) {
		return nil
	}
	cond := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	return ast.NewRepeatStmt(line, stmts, cond)
}

func (p *Parser) parseFor() *ast.ForStmt {
	line := p.cur.Line
	p.next() // consume 'for'
	if !p.curIs(lexer.IDENT) {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	varName := p.cur.Literal
	p.next()
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	start := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	direction := ast.ForTo
	switch p.cur.Type {
	case lexer.TO:
		p.next()
	case lexer.DOWNTO:
		direction = ast.ForDownto
		p.next()
	default:
		p.errorf("expected %s or %s in for-statement", lexer.TO, lexer.DOWNTO)
		return nil
	}
	end := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	if !p.expect(lexer.DO) {
		return nil
	}
	body := p.parseStatement()
	if p.failed {
		return nil
	}
	return ast.NewForStmt(line, varName, start, end, direction, body)
}

func (p *Parser) parseCase() *ast.CaseStmt {
	line := p.cur.Line
	p.next() // consume 'case'
	scrutinee := p.parseExpression(LOWEST)
	if p.failed {
		return nil
	}
	if !p.expect(lexer.OF) {
		return nil
	}
	var arms []ast.CaseArm
	for !p.curIs(lexer.END) {
		var labels []ast.Expression
		for {
			labels = append(labels, p.parseConstExpr())
			if p.failed {
				return nil
			}
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		if !p.expect(lexer.COLON) {
			return nil
		}
		body := p.parseStatement()
		if p.failed {
			return nil
		}
		arms = append(arms, ast.CaseArm{Labels: labels, Body: []ast.Statement{body}})
		if p.curIs(lexer.SEMI) {
			p.next()
		}
	}
	if !p.expect(lexer.END) {
		return nil
	}
	return ast.NewCaseStmt(line, scrutinee, arms)
}

func (p *Parser) parseWith() *ast.WithStmt {
	withLine := p.cur.Line
	p.next() // consume 'with'
	var vars []*ast.Ident
	for {
		line := p.cur.Line
		if !p.curIs(lexer.IDENT) {
			p.errorUnexpected(lexer.IDENT)
			return nil
		}
		vars = append(vars, ast.NewIdent(line, p.cur.Literal))
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.DO) {
		return nil
	}
	body := p.parseStatement()
	if p.failed {
		return nil
	}
	return ast.NewWithStmt(withLine, vars, body)
}

// parseAssignOrCall parses a statement starting with an identifier: either
// an assignment `lvalue := expr` or a bare procedure call.
func (p *Parser) parseAssignOrCall(line int) ast.Statement {
	expr := p.parseIdentChain(line)
	if p.failed {
		return nil
	}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		rhs := p.parseExpression(LOWEST)
		if p.failed {
			return nil
		}
		return ast.NewAssignStmt(line, expr, rhs)
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		// A bare variable reference used as a statement is not meaningful;
		// the grammar only allows this as a zero-argument procedure call.
		if id, ok := expr.(*ast.Ident); ok {
			call = ast.NewCallExpr(line, id.Name, nil)
		} else {
			p.errorf("expected a procedure call or assignment")
			return nil
		}
	}
	return ast.NewCallStmt(line, call)
}
