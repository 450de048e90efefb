package parser

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/lexer"
)

var primitiveNames = map[string]ast.PrimitiveKind{
	"Int":        ast.PrimInt,
	"Bool":       ast.PrimBool,
	"String":     ast.PrimString,
	"None":       ast.PrimNone,
	"LinExpr":    ast.PrimLinExpr,
	"Constraint": ast.PrimConstraint,
	"Never":      ast.PrimNever,
}

// parseType parses a full type expression, including top-level unions.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	start := p.cur.Start
	first, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	if !p.curIs(lexer.PIPE) {
		return first, nil
	}
	members := []ast.TypeExpr{first}
	for p.curIs(lexer.PIPE) {
		p.next()
		m, err := p.parseTypeAtom()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return &ast.UnionType{Members: members, Sp: p.span(start)}, nil
}

// parseTypeAtom parses everything except a top-level union: primitives,
// named paths, ?T, [T], (T1, T2, ...), {name: T, ...}.
func (p *Parser) parseTypeAtom() (ast.TypeExpr, error) {
	start := p.cur.Start

	switch p.cur.Type {
	case lexer.QUESTION:
		p.next()
		inner, err := p.parseTypeAtom()
		if err != nil {
			return nil, err
		}
		return &ast.OptionalType{Inner: inner, Sp: p.span(start)}, nil

	case lexer.LBRACKET:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ListType{Elem: elem, Sp: p.span(start)}, nil

	case lexer.LPAREN:
		p.next()
		first, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.curIs(lexer.COMMA) {
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return first, nil
		}
		elems := []ast.TypeExpr{first}
		for p.curIs(lexer.COMMA) {
			p.next()
			if p.curIs(lexer.RPAREN) {
				break
			}
			m, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, m)
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.TupleType{Elems: elems, Sp: p.span(start)}, nil

	case lexer.LBRACE:
		p.next()
		var fields []ast.StructFieldType
		for !p.curIs(lexer.RBRACE) {
			nameTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return nil, err
			}
			fieldType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.StructFieldType{Name: nameTok.Literal, Type: fieldType})
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		return &ast.StructType{Fields: fields, Sp: p.span(start)}, nil

	case lexer.IDENT:
		segments := []string{p.cur.Literal}
		p.next()
		for p.curIs(lexer.DCOLON) {
			p.next()
			seg, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg.Literal)
		}
		if len(segments) == 1 {
			if kind, ok := primitiveNames[segments[0]]; ok {
				return &ast.PrimitiveType{Kind: kind, Sp: p.span(start)}, nil
			}
		}
		return &ast.NamedType{Segments: segments, Sp: p.span(start)}, nil

	default:
		return nil, p.errorf("PAR003", "expected a type, found %s %q", p.cur.Type, p.cur.Literal)
	}
}
