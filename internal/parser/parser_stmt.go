package parser

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/lexer"
)

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.TYPE:
		return p.parseTypeStmt()
	case lexer.ENUM:
		return p.parseEnumStmt()
	case lexer.REIFY:
		return p.parseReifyStmt()
	case lexer.IMPORT:
		return p.parseImportStmt()
	default:
		return nil, p.errorf("PAR005", "expected let/type/enum/reify/import, found %s %q", p.cur.Type, p.cur.Literal)
	}
}

func (p *Parser) parsePub() bool {
	if p.curIs(lexer.PUB) {
		p.next()
		return true
	}
	return false
}

// parseLetStmt parses "let [pub] name(param: T, ...) -> T = expr;". A
// preceding "##" doc comment, if any, is attached as Doc.
func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	start := p.cur.Start
	doc := p.docBuf
	p.docBuf = ""
	p.next() // consume 'let'
	pub := p.parsePub()

	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.FuncParam
	for !p.curIs(lexer.RPAREN) {
		pnameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.FuncParam{Name: pnameTok.Literal, Type: ptype})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.LetStmt{
		Pub: pub, Name: nameTok.Literal, Params: params, ReturnType: retType,
		Body: body, Doc: doc, Sp: p.span(start),
	}, nil
}

// parseTypeStmt parses "type [pub] Name = T;".
func (p *Parser) parseTypeStmt() (ast.Stmt, error) {
	start := p.cur.Start
	p.next() // consume 'type'
	pub := p.parsePub()
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	underlying, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.TypeStmt{Pub: pub, Name: nameTok.Literal, Underlying: underlying, Sp: p.span(start)}, nil
}

// parseEnumStmt parses "enum [pub] Name { Variant, Variant(T), Variant{f:T} }".
func (p *Parser) parseEnumStmt() (ast.Stmt, error) {
	start := p.cur.Start
	p.next() // consume 'enum'
	pub := p.parsePub()
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	for !p.curIs(lexer.RBRACE) {
		v, err := p.parseEnumVariant()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.EnumStmt{Pub: pub, Name: nameTok.Literal, Variants: variants, Sp: p.span(start)}, nil
}

func (p *Parser) parseEnumVariant() (ast.EnumVariant, error) {
	vstart := p.cur.Start
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return ast.EnumVariant{}, err
	}

	switch {
	case p.curIs(lexer.LPAREN):
		p.next()
		var fields []ast.TypeExpr
		for !p.curIs(lexer.RPAREN) {
			t, err := p.parseType()
			if err != nil {
				return ast.EnumVariant{}, err
			}
			fields = append(fields, t)
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return ast.EnumVariant{}, err
		}
		return ast.EnumVariant{Name: nameTok.Literal, Kind: ast.VariantTuple, TupleFields: fields, Sp: p.span(vstart)}, nil

	case p.curIs(lexer.LBRACE):
		p.next()
		var fields []ast.StructFieldType
		for !p.curIs(lexer.RBRACE) {
			fnameTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return ast.EnumVariant{}, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return ast.EnumVariant{}, err
			}
			ftype, err := p.parseType()
			if err != nil {
				return ast.EnumVariant{}, err
			}
			fields = append(fields, ast.StructFieldType{Name: fnameTok.Literal, Type: ftype})
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RBRACE); err != nil {
			return ast.EnumVariant{}, err
		}
		return ast.EnumVariant{Name: nameTok.Literal, Kind: ast.VariantStruct, StructFields: fields, Sp: p.span(vstart)}, nil

	default:
		return ast.EnumVariant{Name: nameTok.Literal, Kind: ast.VariantUnit, Sp: p.span(vstart)}, nil
	}
}

// parseReifyStmt parses "reify f as $Name;" or "reify f as $[Name];".
func (p *Parser) parseReifyStmt() (ast.Stmt, error) {
	start := p.cur.Start
	p.next() // consume 'reify'
	funcTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.AS); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DOLLAR); err != nil {
		return nil, err
	}
	isList := false
	if p.curIs(lexer.LBRACKET) {
		isList = true
		p.next()
	}
	varNameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if isList {
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReifyStmt{Func: funcTok.Literal, VarName: varNameTok.Literal, IsList: isList, Sp: p.span(start)}, nil
}

// parseImportStmt parses "import mod;", "import mod as alias;", and
// "import mod.*;".
func (p *Parser) parseImportStmt() (ast.Stmt, error) {
	start := p.cur.Start
	p.next() // consume 'import'
	firstTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	path := []string{firstTok.Literal}
	for p.curIs(lexer.DCOLON) {
		p.next()
		seg, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		path = append(path, seg.Literal)
	}

	wildcard := false
	alias := ""
	switch {
	case p.curIs(lexer.DOT):
		p.next()
		if _, err := p.expect(lexer.STAR); err != nil {
			return nil, err
		}
		wildcard = true
	case p.curIs(lexer.AS):
		p.next()
		aliasTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Literal
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ImportStmt{ModulePath: path, Alias: alias, Wildcard: wildcard, Sp: p.span(start)}, nil
}
