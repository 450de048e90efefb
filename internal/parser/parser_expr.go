package parser

import (
	"strings"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/lexer"
)

// parseExpr is the Pratt entry point: parse a prefix expression, apply the
// postfix (field/index/cast) chain, then fold in infix operators whose
// precedence exceeds minPrec.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, p.errorf("PAR004", "unexpected token %s %q in expression", p.cur.Type, p.cur.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}
	left, err = p.parsePostfix(left)
	if err != nil {
		return nil, err
	}
	for minPrec < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
		left, err = p.parsePostfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parsePostfix applies the tight-binding chain of field/tuple-index/
// list-index segments and `as`/`cast?`/`cast!` casts immediately following a
// primary expression. These always bind tighter than any binary operator, so
// they live outside the main Pratt infix table.
func (p *Parser) parsePostfix(base ast.Expr) (ast.Expr, error) {
	start := base.Span().Start

	var segs []ast.Segment
segLoop:
	for {
		switch {
		case p.curIs(lexer.DOT):
			segStart := p.cur.Start
			p.next()
			if p.curIs(lexer.INT) {
				idx, err := p.parseIntLiteralValue(p.cur.Literal)
				if err != nil {
					return nil, err
				}
				p.next()
				segs = append(segs, &ast.TupleIndexSeg{Index: int(idx), Sp: p.span(segStart)})
				continue
			}
			nameTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			segs = append(segs, &ast.FieldSeg{Name: nameTok.Literal, Sp: p.span(segStart)})

		case p.curIs(lexer.LBRACKET):
			segStart := p.cur.Start
			p.next()
			idx, err := p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			segs = append(segs, &ast.ListIndexFallibleSeg{Index: idx, Sp: p.span(segStart)})

		case p.curIs(lexer.BANG) && p.peekIs(lexer.LBRACKET):
			segStart := p.cur.Start
			p.next() // consume !
			p.next() // consume [
			idx, err := p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			segs = append(segs, &ast.ListIndexPanicSeg{Index: idx, Sp: p.span(segStart)})

		default:
			break segLoop
		}
	}

	result := base
	if len(segs) > 0 {
		result = &ast.PathExpr{Base: base, Segments: segs, Sp: p.span(start)}
	}

	for {
		switch {
		case p.curIs(lexer.AS):
			p.next()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			result = &ast.ExplicitType{Value: result, Type: t, Sp: p.span(start)}

		case p.curIs(lexer.CAST) && p.peekIs(lexer.QUESTION):
			p.next() // consume cast
			p.next() // consume ?
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			result = &ast.CastFallible{Value: result, Type: t, Sp: p.span(start)}

		case p.curIs(lexer.CAST) && p.peekIs(lexer.BANG):
			p.next() // consume cast
			p.next() // consume !
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			result = &ast.CastPanic{Value: result, Type: t, Sp: p.span(start)}

		default:
			return result, nil
		}
	}
}

// --- prefix parsers ---

func (p *Parser) parseIntLit() (ast.Expr, error) {
	start := p.cur.Start
	lit := p.cur.Literal
	v, err := p.parseIntLiteralValue(lit)
	if err != nil {
		return nil, err
	}
	p.next()
	return &ast.IntLit{Value: v, Sp: p.span(start)}, nil
}

func (p *Parser) parseStringLit() (ast.Expr, error) {
	start := p.cur.Start
	v := p.cur.Literal
	p.next()
	return &ast.StringLit{Value: v, Sp: p.span(start)}, nil
}

func (p *Parser) parseBoolLit() (ast.Expr, error) {
	start := p.cur.Start
	v := p.curIs(lexer.TRUE)
	p.next()
	return &ast.BoolLit{Value: v, Sp: p.span(start)}, nil
}

func (p *Parser) parseNoneLit() (ast.Expr, error) {
	start := p.cur.Start
	p.next()
	return &ast.NoneLit{Sp: p.span(start)}, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	start := p.cur.Start
	negate := p.curIs(lexer.MINUS)
	p.next()
	val, err := p.parseExpr(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Negate: negate, Value: val, Sp: p.span(start)}, nil
}

// parseIdentOrCall parses a dotted path and, depending on what follows,
// turns it into a module-qualified variable call ("mod::$V(...)"), a
// GenericCall ("path(args)"), a StructCall ("path{f=x,...}"), or a bare
// IdentPath.
func (p *Parser) parseIdentOrCall() (ast.Expr, error) {
	start := p.cur.Start
	segments := []string{p.cur.Literal}
	p.next()

	for p.curIs(lexer.DCOLON) && !p.peekIs(lexer.DOLLAR) {
		p.next()
		seg, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg.Literal)
	}

	if p.curIs(lexer.DCOLON) && p.peekIs(lexer.DOLLAR) {
		p.next() // consume ::
		mod := strings.Join(segments, "::")
		return p.parseVarCallTail(&mod, start)
	}

	path := &ast.Path{Segments: segments, Sp: p.span(start)}
	switch {
	case p.curIs(lexer.LPAREN):
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.GenericCall{Path: path, Args: args, Sp: p.span(start)}, nil
	case p.curIs(lexer.LBRACE) && !p.noBrace:
		fields, err := p.parseStructFieldList()
		if err != nil {
			return nil, err
		}
		return &ast.StructCall{Path: path, Fields: fields, Sp: p.span(start)}, nil
	default:
		return &ast.IdentPath{Path: path, Sp: p.span(start)}, nil
	}
}

// parseVarCall handles the unqualified "$V(...)" / "$[V](...)" forms.
func (p *Parser) parseVarCall() (ast.Expr, error) {
	start := p.cur.Start
	return p.parseVarCallTail(nil, start)
}

// parseVarCallTail assumes p.cur is the leading '$' and parses the rest of
// a variable-call expression, optionally module-qualified.
func (p *Parser) parseVarCallTail(module *string, start int) (ast.Expr, error) {
	p.next() // consume $
	if p.curIs(lexer.LBRACKET) {
		p.next() // consume [
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.VarListCall{Module: module, Name: nameTok.Literal, Args: args, Sp: p.span(start)}, nil
	}
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.VarCall{Module: module, Name: nameTok.Literal, Args: args, Sp: p.span(start)}, nil
}

func (p *Parser) parseGlobalList() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'global'
	if _, err := p.expect(lexer.DCOLON); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.GlobalList{Type: t, Sp: p.span(start)}, nil
}

// parseArgList assumes p.cur is '(' and parses a comma-separated list of
// expressions up to and including the matching ')'.
func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) {
		e, err := p.parseExprAllowBrace(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseStructFieldList assumes p.cur is '{' and parses "f = x, ..." up to
// and including the matching '}'.
func (p *Parser) parseStructFieldList() ([]ast.StructFieldExpr, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.StructFieldExpr
	for !p.curIs(lexer.RBRACE) {
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		val, err := p.parseExprAllowBrace(LOWEST)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructFieldExpr{Name: nameTok.Literal, Value: val})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Parser) parseStructLiteral() (ast.Expr, error) {
	start := p.cur.Start
	fields, err := p.parseStructFieldList()
	if err != nil {
		return nil, err
	}
	return &ast.StructLiteral{Fields: fields, Sp: p.span(start)}, nil
}

// parseGroupedOrTuple handles "(e)" (grouping, transparent) and
// "(e1, e2, ...)" (TupleLiteral, n >= 2).
func (p *Parser) parseGroupedOrTuple() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume (
	first, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.curIs(lexer.COMMA) {
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}
	elems := []ast.Expr{first}
	for p.curIs(lexer.COMMA) {
		p.next()
		if p.curIs(lexer.RPAREN) {
			break
		}
		e, err := p.parseExprAllowBrace(LOWEST)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.TupleLiteral{Elems: elems, Sp: p.span(start)}, nil
}

// parseListLike handles "[]", "[<T>]" (empty typed list), "[a, b, c]",
// "[a..b]" (range) and "[body for x in xs ... if p]" (comprehension).
func (p *Parser) parseListLike() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume [

	if p.curIs(lexer.RBRACKET) {
		p.next()
		return &ast.ListLiteral{Sp: p.span(start)}, nil
	}

	if p.curIs(lexer.LT) {
		p.next() // consume <
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.GT); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ListLiteral{ElemType: t, Sp: p.span(start)}, nil
	}

	first, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}

	switch {
	case p.curIs(lexer.DOTDOT):
		p.next()
		end, err := p.parseExprAllowBrace(LOWEST)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ListRange{Start: first, End: end, Sp: p.span(start)}, nil

	case p.curIs(lexer.FOR):
		var clauses []ast.CompClause
		for p.curIs(lexer.FOR) {
			p.next()
			varTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.IN); err != nil {
				return nil, err
			}
			coll, err := p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, ast.CompClause{Var: varTok.Literal, Collection: coll})
		}
		var filter ast.Expr
		if p.curIs(lexer.IF) {
			p.next()
			filter, err = p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ListComprehension{Body: first, Clauses: clauses, Filter: filter, Sp: p.span(start)}, nil

	default:
		elems := []ast.Expr{first}
		for p.curIs(lexer.COMMA) {
			p.next()
			if p.curIs(lexer.RBRACKET) {
				break
			}
			e, err := p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ListLiteral{Elems: elems, Sp: p.span(start)}, nil
	}
}

func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'if'
	cond, err := p.parseExprNoBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	then, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ELSE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	els, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Sp: p.span(start)}, nil
}

// parseLetIn handles the expression form "let x = e in body" (distinct from
// the top-level LetStmt, which parseStmt intercepts before expression
// parsing ever sees the 'let' keyword).
func (p *Parser) parseLetIn() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'let'
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Let{Name: nameTok.Literal, Value: val, Body: body, Sp: p.span(start)}, nil
}

func (p *Parser) parseMatch() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'match'
	scrutinee, err := p.parseExprNoBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var branches []ast.MatchBranch
	for !p.curIs(lexer.RBRACE) {
		bstart := p.cur.Start
		binderTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		var asType ast.TypeExpr
		if p.curIs(lexer.AS) {
			p.next()
			asType, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
		var where ast.Expr
		if p.curIs(lexer.WHERE) {
			p.next()
			where, err = p.parseExprAllowBrace(LOWEST)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.FATARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExprAllowBrace(LOWEST)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.MatchBranch{
			Binder: binderTok.Literal, AsType: asType, Where: where, Body: body, Sp: p.span(bstart),
		})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Match{Scrutinee: scrutinee, Branches: branches, Sp: p.span(start)}, nil
}

func (p *Parser) parseSum() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'sum'
	varTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	coll, err := p.parseExprNoBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.curIs(lexer.WHERE) {
		p.next()
		where, err = p.parseExprNoBrace(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Sum{Var: varTok.Literal, Collection: coll, Where: where, Body: body, Sp: p.span(start)}, nil
}

func (p *Parser) parseForall() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'forall'
	varTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	coll, err := p.parseExprNoBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.curIs(lexer.WHERE) {
		p.next()
		where, err = p.parseExprNoBrace(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Forall{Var: varTok.Literal, Collection: coll, Where: where, Body: body, Sp: p.span(start)}, nil
}

func (p *Parser) parseFold() (ast.Expr, error) {
	start := p.cur.Start
	reversed := p.curIs(lexer.RFOLD)
	p.next() // consume 'fold'/'rfold'
	varTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	accTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	coll, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.parseExprNoBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.curIs(lexer.WHERE) {
		p.next()
		where, err = p.parseExprNoBrace(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Fold{
		Var: varTok.Literal, Acc: accTok.Literal, Collection: coll, Init: init,
		Where: where, Body: body, Reversed: reversed, Sp: p.span(start),
	}, nil
}

func (p *Parser) parsePanic() (ast.Expr, error) {
	start := p.cur.Start
	p.next() // consume 'panic'
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	val, err := p.parseExprAllowBrace(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Panic{Value: val, Sp: p.span(start)}, nil
}

// --- infix parsers ---

var binOpFor = map[lexer.TokenType]ast.BinOp{
	lexer.AND: ast.OpAnd, lexer.OR: ast.OpOr,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq,
	lexer.LT: ast.OpLt, lexer.LTE: ast.OpLeq, lexer.GT: ast.OpGt, lexer.GTE: ast.OpGeq,
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub,
	lexer.STAR: ast.OpMul, lexer.DSLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod,
}

func (p *Parser) parseBinary(left ast.Expr) (ast.Expr, error) {
	start := left.Span().Start
	opTok := p.cur
	prec := precedences[opTok.Type]
	p.next()
	right, err := p.parseExpr(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: binOpFor[opTok.Type], Left: left, Right: right, Sp: p.span(start)}, nil
}

func (p *Parser) parseNullCoalesce(left ast.Expr) (ast.Expr, error) {
	start := left.Span().Start
	prec := precedences[lexer.QQ]
	p.next()
	right, err := p.parseExpr(prec - 1)
	if err != nil {
		return nil, err
	}
	return &ast.NullCoalesce{Left: left, Right: right, Sp: p.span(start)}, nil
}

var constraintOpFor = map[lexer.TokenType]ast.ConstraintOp{
	lexer.EQEQEQ: ast.ConstraintEq, lexer.LTEQEQ: ast.ConstraintLeq, lexer.GTEQEQ: ast.ConstraintGeq,
}

func (p *Parser) parseConstraint(left ast.Expr) (ast.Expr, error) {
	start := left.Span().Start
	opTok := p.cur
	prec := precedences[opTok.Type]
	p.next()
	right, err := p.parseExpr(prec)
	if err != nil {
		return nil, err
	}
	return &ast.ConstraintExpr{Op: constraintOpFor[opTok.Type], Left: left, Right: right, Sp: p.span(start)}, nil
}
