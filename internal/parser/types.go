package parser

import (
	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/lexer"
)

// parseTypeExpr parses a type expression: a built-in scalar name, a
// previously declared type name, or one of array/enum/subrange/record/
// set/file/packed.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	if p.failed {
		return nil
	}
	line := p.cur.Line

	switch {
	case p.cur.Type.IsTypeKeyword():
		name := p.cur.Type.String()
		p.next()
		return ast.NewSimpleType(line, name)

	case p.curIs(lexer.IDENT):
		name := p.cur.Literal
		p.next()
		return ast.NewIDType(line, name)

	case p.curIs(lexer.PACKED):
		p.next()
		inner := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		return &ast.PackedType{Inner: inner}

	case p.curIs(lexer.ARRAY):
		return p.parseArrayType(line)

	case p.curIs(lexer.SET):
		p.next()
		if !p.expect(lexer.OF) {
			return nil
		}
		elem := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		return &ast.SetType{Element: elem}

	case p.curIs(lexer.FILETYPE):
		p.next()
		if !p.expect(lexer.OF) {
			return nil
		}
		elem := p.parseTypeExpr()
		if p.failed {
			return nil
		}
		return &ast.FileType{Element: elem}

	case p.curIs(lexer.RECORD):
		return p.parseRecordType(line)

	case p.curIs(lexer.LPAREN):
		return p.parseEnumType(line)

	default:
		// Anything else at type position must be a subrange's lower bound:
		// a constant expression, e.g. `1..10` or `low..high`.
		lower := p.parseConstExpr()
		if p.failed {
			return nil
		}
		if !p.expect(lexer.RANGE) {
			return nil
		}
		upper := p.parseConstExpr()
		if p.failed {
			return nil
		}
		return &ast.SubrangeType{Lower: lower, Upper: upper}
	}
}

func (p *Parser) parseArrayType(line int) ast.TypeExpr {
	p.next() // consume 'array'
	if !p.expect(lexer.LBRACKET) {
		return nil
	}
	lower := p.parseConstExpr()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.RANGE) {
		return nil
	}
	upper := p.parseConstExpr()
	if p.failed {
		return nil
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	if !p.expect(lexer.OF) {
		return nil
	}
	elem := p.parseTypeExpr()
	if p.failed {
		return nil
	}
	return &ast.ArrayType{Lower: lower, Upper: upper, Element: elem}
}

func (p *Parser) parseEnumType(line int) ast.TypeExpr {
	p.next() // consume '('
	var members []string
	for {
		if !p.curIs(lexer.IDENT) {
			p.errorUnexpected(lexer.IDENT)
			return nil
		}
		members = append(members, p.cur.Literal)
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return &ast.EnumType{Members: members}
}

func (p *Parser) parseRecordType(line int) ast.TypeExpr {
	p.next() // consume 'record'
	var fields []*ast.RecordField
	var variant *ast.VariantPart

	for !p.curIs(lexer.END) && !p.curIs(lexer.CASE) && !p.failed {
		fields = append(fields, p.parseFieldGroup())
		if p.curIs(lexer.SEMI) {
			p.next()
		} else {
			break
		}
	}

	if p.curIs(lexer.CASE) {
		variant = p.parseVariantPart()
	}

	if !p.expect(lexer.END) {
		return nil
	}
	return &ast.RecordType{Fields: fields, Variant: variant}
}

func (p *Parser) parseFieldGroup() *ast.RecordField {
	line := p.cur.Line
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
	return ast.NewVarGroup(line, names, typ)
}

func (p *Parser) parseVariantPart() *ast.VariantPart {
	p.next() // consume 'case'
	if !p.curIs(lexer.IDENT) {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	discriminant := p.cur.Literal
	p.next()
	if !p.expect(lexer.COLON) {
		return nil
	}
	if !p.curIs(lexer.IDENT) && !p.cur.Type.IsTypeKeyword() {
		p.errorUnexpected(lexer.IDENT)
		return nil
	}
	discType := p.cur.Literal
	if p.cur.Type.IsTypeKeyword() {
		discType = p.cur.Type.String()
	}
	p.next()
	if !p.expect(lexer.OF) {
		return nil
	}

	var branches []ast.VariantBranch
	for !p.curIs(lexer.END) && !p.failed {
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
		if !p.expect(lexer.LPAREN) {
			return nil
		}
		var fields []*ast.RecordField
		for !p.curIs(lexer.RPAREN) && !p.failed {
			fields = append(fields, p.parseFieldGroup())
			if p.curIs(lexer.SEMI) {
				p.next()
			} else {
				break
			}
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		branches = append(branches, ast.VariantBranch{Labels: labels, Fields: fields})
		if p.curIs(lexer.SEMI) {
			p.next()
		}
	}
	return &ast.VariantPart{Discriminant: discriminant, DiscriminantType: discType, Branches: branches}
}

// parseIdentList parses a comma-separated list of identifiers, as used by
// var/field/param name groups.
func (p *Parser) parseIdentList() []string {
	var names []string
	for {
		if !p.curIs(lexer.IDENT) {
			p.errorUnexpected(lexer.IDENT)
			return nil
		}
		names = append(names, p.cur.Literal)
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return names
}
