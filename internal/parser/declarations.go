package parser

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/lexer"
)

// parseBlock parses `declarations BEGIN statement_list END`.
func (p *Parser) parseBlock() *ast.Block {
	line := p.cur.Line
	var decls []ast.Node

	for !p.failed {
		switch p.cur.Type {
		case lexer.CONST:
			decls = append(decls, p.parseConstSection())
		case lexer.TYPE:
			decls = append(decls, p.parseTypeSection())
		case lexer.LABEL:
			decls = append(decls, p.parseLabelSection())
		case lexer.VAR:
			decls = append(decls, p.parseVarSection())
		case lexer.FUNCTION:
			decls = append(decls, p.parseFuncDecl())
		case lexer.PROCEDURE:
			decls = append(decls, p.parseProcDecl())
		default:
			goto body
		}
	}
body:
	if p.failed {
		return nil
	}
	if !p.expect(lexer.BEGIN) {
		return nil
	}
	stmts := p.parseStatementList()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.END) {
		return nil
	}
	return ast.NewBlock(line, decls, ast.NewCompoundStmt(line, stmts))
}

func (p *Parser) parseConstSection() *ast.ConstSection {
	line := p.cur.Line
	p.next() // consume 'const'
	var items []ast.ConstItem
	for p.curIs(lexer.IDENT) {
		name := p.cur.Literal
		p.next()
		if !p.expect(lexer.EQ) {
			return nil
		}
		expr := p.parseExpression(LOWEST)
		if p.failed {
			return nil
		}
		if !p.expect(lexer.SEMI) {
			return nil
		}
		items = append(items, ast.ConstItem{Name: name, Expr: expr})
	}
	return ast.NewConstSection(line, items)
}

func (p *Parser) parseTypeSection() *ast.TypeSection {
	line := p.cur.Line
	p.next() // consume 'type'
	var items []ast.TypeItem
	for p.curIs(lexer.IDENT) {
		name := p.cur.Literal
		p.next()
		if !p.expect(lexer.EQ) {
			return nil
		}
		typ := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		if !p.expect(lexer.SEMI) {
			return nil
		}
		items = append(items, ast.TypeItem{Name: name, Type: typ})
	}
	return ast.NewTypeSection(line, items)
}

func (p *Parser) parseLabelSection() *ast.LabelSection {
	line := p.cur.Line
	p.next() // consume 'label'
	var labels []int64
	for {
		if !p.curIs(lexer.INT) {
			p.errorUnexpected(lexer.INT)
			return nil
		}
		labels = append(labels, p.cur.IntVal)
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return ast.NewLabelSection(line, labels)
}

func (p *Parser) parseVarSection() *ast.VarSection {
	line := p.cur.Line
	p.next() // consume 'var'
	var groups []*ast.VarGroup
	for p.curIs(lexer.IDENT) {
		groupLine := p.cur.Line
		names := p.parseIdentList()
		if p.failed {
			return nil
		}
		if !p.expect(lexer.COLON) {
			return nil
		}
		typ := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		if !p.expect(lexer.SEMI) {
			return nil
		}
		groups = append(groups, ast.NewVarGroup(groupLine, names, typ))
	}
	return ast.NewVarSection(line, groups)
}

// parseParamList parses the optional `(params)` formal parameter list of a
// function/procedure header.
func (p *Parser) parseParamList() []*ast.Param {
	if !p.curIs(lexer.LPAREN) {
		return nil
	}
	p.next() // consume '('
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) {
		kind := ast.ParamVal
		switch p.cur.Type {
		case lexer.VAR:
			kind = ast.ParamVar
			p.next()
		case lexer.CONST:
			kind = ast.ParamConst
			p.next()
		}
		names := p.parseIdentList()
		if p.failed {
			return nil
		}
		if !p.expect(lexer.COLON) {
			return nil
		}
		typ := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		params = append(params, &ast.Param{Kind: kind, Names: names, Type: typ})
		if p.curIs(lexer.SEMI) {
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	line := p.cur.Line
	p.next() // consume 'function'
	if !p.curIs(lexer.IDENT) {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	name := p.cur.Literal
	p.next()
	params := p.parseParamList()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.COLON) {
		return nil
	}
	retType := p.parseTypeExpr()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	body := p.parseBlock()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return ast.NewFuncDecl(line, name, params, retType, body)
}

func (p *Parser) parseProcDecl() *ast.ProcDecl {
	line := p.cur.Line
	p.next() // consume 'procedure'
	if !p.curIs(lexer.IDENT) {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	name := p.cur.Literal
	p.next()
	params := p.parseParamList()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	body := p.parseBlock()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return ast.NewProcDecl(line, name, params, body)
}
