// Package parser turns a collomatique DSL token stream into an internal/ast
// tree.
//
// Grounded on the teacher's internal/parser/parser.go: same technique (one
// token of lookahead, a Pratt precedence-climbing expression parser, parse
// errors collected as internal/errors.Report values rather than panicking),
// retargeted at this DSL's grammar (§6).
package parser

import (
	"fmt"
	"strconv"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/lexer"
)

// Precedence levels, lowest to highest. The constraint-builder operators
// (===, <==, >==) bind tighter than comparisons but looser than + and -, so
// their operands are the arithmetic expressions on either side.
const (
	_ int = iota
	LOWEST
	NULLCOALESCE // ??
	LOGICOR      // or
	LOGICAND     // and
	EQUALITY     // == !=
	COMPARISON   // < <= > >=
	CONSTRAINT   // === <== >==
	ADDITIVE     // + -
	MULTIPLICATIVE
	UNARY // -x, not x
)

var precedences = map[lexer.TokenType]int{
	lexer.QQ:     NULLCOALESCE,
	lexer.OR:     LOGICOR,
	lexer.AND:    LOGICAND,
	lexer.EQ:     EQUALITY,
	lexer.NEQ:    EQUALITY,
	lexer.LT:     COMPARISON,
	lexer.LTE:    COMPARISON,
	lexer.GT:     COMPARISON,
	lexer.GTE:    COMPARISON,
	lexer.EQEQEQ: CONSTRAINT,
	lexer.LTEQEQ: CONSTRAINT,
	lexer.GTEQEQ: CONSTRAINT,
	lexer.PLUS:   ADDITIVE,
	lexer.MINUS:  ADDITIVE,
	lexer.STAR:   MULTIPLICATIVE,
	lexer.DSLASH: MULTIPLICATIVE,
	lexer.PERCENT: MULTIPLICATIVE,
}

type (
	prefixParseFn func() (ast.Expr, error)
	infixParseFn  func(ast.Expr) (ast.Expr, error)
)

// Parser consumes a lexer.Lexer's token stream and builds an ast.Module.
type Parser struct {
	l       *lexer.Lexer
	file    string
	cur     lexer.Token
	peek    lexer.Token
	lastEnd int // End offset of the most recently consumed token, for span()
	errs    []*errors.Report
	docBuf  string // pending "##" doc comment, attached to the next LetStmt

	// noBrace suppresses treating a following '{' as the start of a struct
	// call/literal. It is set while parsing an if/match/quantifier
	// condition or collection expression that is itself immediately
	// followed by a mandatory '{' block, the same ambiguity Go resolves by
	// banning composite literals in if/for/switch headers. Entering any
	// bracketed sub-expression (call args, grouping, list literal, struct
	// field values) clears it again, since those have unambiguous
	// terminators.
	noBrace bool

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l. filename is used only for diagnostics.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, file: filename}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:    p.parseIdentOrCall,
		lexer.INT:      p.parseIntLit,
		lexer.STRING:   p.parseStringLit,
		lexer.TRUE:     p.parseBoolLit,
		lexer.FALSE:    p.parseBoolLit,
		lexer.NONE:     p.parseNoneLit,
		lexer.LPAREN:   p.parseGroupedOrTuple,
		lexer.LBRACKET: p.parseListLike,
		lexer.LBRACE:   p.parseStructLiteral,
		lexer.MINUS:    p.parseUnary,
		lexer.NOT:      p.parseUnary,
		lexer.IF:       p.parseIf,
		lexer.LET:      p.parseLetIn,
		lexer.MATCH:    p.parseMatch,
		lexer.SUM:      p.parseSum,
		lexer.FORALL:   p.parseForall,
		lexer.FOLD:     p.parseFold,
		lexer.RFOLD:    p.parseFold,
		lexer.PANIC:    p.parsePanic,
		lexer.DOLLAR:   p.parseVarCall,
		lexer.GLOBAL:   p.parseGlobalList,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.QQ:     p.parseNullCoalesce,
		lexer.OR:     p.parseBinary,
		lexer.AND:    p.parseBinary,
		lexer.EQ:     p.parseBinary,
		lexer.NEQ:    p.parseBinary,
		lexer.LT:     p.parseBinary,
		lexer.LTE:    p.parseBinary,
		lexer.GT:     p.parseBinary,
		lexer.GTE:    p.parseBinary,
		lexer.EQEQEQ: p.parseConstraint,
		lexer.LTEQEQ: p.parseConstraint,
		lexer.GTEQEQ: p.parseConstraint,
		lexer.PLUS:   p.parseBinary,
		lexer.MINUS:  p.parseBinary,
		lexer.STAR:   p.parseBinary,
		lexer.DSLASH: p.parseBinary,
		lexer.PERCENT: p.parseBinary,
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.lastEnd = p.cur.End
	p.cur = p.peek
	for {
		p.peek = p.l.NextToken()
		if p.peek.Type != lexer.COMMENT {
			break
		}
		p.docBuf = p.peek.Literal
	}
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// span builds the span of a node that has just finished parsing: start is
// the byte offset where the node began, and the end is the end of the last
// token consumed (p.cur has already moved on to the next unconsumed token).
func (p *Parser) span(start int) ast.Span {
	return ast.Span{Start: start, End: p.lastEnd}
}

// parseExprNoBrace parses an expression in a context that is itself
// immediately followed by a mandatory '{' (an if/match/quantifier header),
// so a bare `ident{...}` must not be read as a StructCall.
func (p *Parser) parseExprNoBrace(prec int) (ast.Expr, error) {
	saved := p.noBrace
	p.noBrace = true
	defer func() { p.noBrace = saved }()
	return p.parseExpr(prec)
}

// parseExprAllowBrace parses an expression inside a bracketed sub-context
// (call args, grouping, list/struct literal fields) where '{' is no longer
// ambiguous, temporarily lifting any enclosing noBrace restriction.
func (p *Parser) parseExprAllowBrace(prec int) (ast.Expr, error) {
	saved := p.noBrace
	p.noBrace = false
	defer func() { p.noBrace = saved }()
	return p.parseExpr(prec)
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// expect asserts p.cur.Type == t, consumes it, and advances.
func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.cur.Type != t {
		return lexer.Token{}, p.errorf("PAR001", "expected %s, found %s %q", t, p.cur.Type, p.cur.Literal)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *Parser) errorf(code, format string, args ...any) error {
	sp := ast.Span{Start: p.cur.Start, End: p.cur.End}
	rep := errors.New("PAR", code, fmt.Sprintf(format, args...), &sp)
	p.errs = append(p.errs, rep)
	return errors.WrapReport(rep)
}

// Errors returns every structured parse error accumulated so far.
func (p *Parser) Errors() []*errors.Report { return p.errs }

// ParseModule parses a complete source file into an ast.Module, collecting
// as many statement-level errors as possible before returning. name is the
// module's own name (derived from the filename by the caller).
func (p *Parser) ParseModule(name string) (*ast.Module, []*errors.Report) {
	mod := &ast.Module{Name: name}
	for !p.curIs(lexer.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			p.synchronize()
			continue
		}
		if stmt != nil {
			mod.Stmts = append(mod.Stmts, stmt)
		}
	}
	return mod, p.errs
}

// synchronize skips tokens up to and including the next statement-terminating
// ';', or the start of the next top-level keyword, so that one malformed
// statement does not prevent reporting errors in the rest of the file.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.next()
			return
		}
		switch p.cur.Type {
		case lexer.LET, lexer.TYPE, lexer.ENUM, lexer.REIFY, lexer.IMPORT:
			return
		}
		p.next()
	}
}

func (p *Parser) parseIntLiteralValue(lit string) (int64, error) {
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return 0, p.errorf("PAR002", "invalid integer literal %q", lit)
	}
	return v, nil
}
