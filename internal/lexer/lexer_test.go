package lexer

import "testing"

func TestNextTokenCoversDollarAndBang(t *testing.T) {
	src := `$V(x) ![2] !y`
	want := []TokenType{
		DOLLAR, IDENT, LPAREN, IDENT, RPAREN, BANG, LBRACKET, INT, RBRACKET,
		BANG, IDENT, EOF,
	}
	l := New(string(Normalize([]byte(src))), "t.cml")
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}

func TestScansBasicExpression(t *testing.T) {
	l := New("let f(x: Int) -> Int = x + 1;", "t.cml")
	want := []TokenType{
		LET, IDENT, LPAREN, IDENT, COLON, IDENT, RPAREN, ARROW, IDENT,
		ASSIGN, IDENT, PLUS, INT, SEMICOLON, EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}

func TestConstraintOperatorsMaximalMunch(t *testing.T) {
	l := New("a === b <== c >== d == e <= f >= g = h", "t.cml")
	want := []TokenType{
		IDENT, EQEQEQ, IDENT, LTEQEQ, IDENT, GTEQEQ, IDENT,
		EQ, IDENT, LTE, IDENT, GTE, IDENT, ASSIGN, IDENT, EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}

func TestStringEscapesAndComments(t *testing.T) {
	l := New("\"a\\nb\" # trailing comment\n\"plain\"", "t.cml")
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "a\nb" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != STRING || tok.Literal != "plain" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal)
	}
}

func TestDocCommentEmitsCommentToken(t *testing.T) {
	l := New("## computes total capacity\nlet f", "t.cml")
	tok := l.NextToken()
	if tok.Type != COMMENT || tok.Literal != "computes total capacity" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != LET {
		t.Fatalf("got %s, want LET", tok.Type)
	}
}

func TestDivisionOperatorNotConfusedWithComment(t *testing.T) {
	l := New("a // b", "t.cml")
	want := []TokenType{IDENT, DSLASH, IDENT, EOF}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, w)
		}
	}
}

func TestDoubleColonAndDotDot(t *testing.T) {
	l := New("a::b [1..2] x.0 y?? z", "t.cml")
	want := []TokenType{
		IDENT, DCOLON, IDENT, LBRACKET, INT, DOTDOT, INT, RBRACKET,
		IDENT, DOT, INT, IDENT, QQ, IDENT, EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}

func TestPipeForUnionTypes(t *testing.T) {
	l := New("Int | Bool | None", "t.cml")
	want := []TokenType{IDENT, PIPE, IDENT, PIPE, IDENT, EOF}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}

func TestSpanOffsetsAreByteRanges(t *testing.T) {
	l := New("let x", "t.cml")
	first := l.NextToken()
	if first.Start != 0 || first.End != 3 {
		t.Fatalf("LET span = [%d,%d), want [0,3)", first.Start, first.End)
	}
	second := l.NextToken()
	if second.Start != 4 || second.End != 5 {
		t.Fatalf("x span = [%d,%d), want [4,5)", second.Start, second.End)
	}
}

func TestKeywordsRecognised(t *testing.T) {
	src := "let pub type enum reify import as if else match where in for sum forall fold rfold cast none true false and or not panic global"
	want := []TokenType{
		LET, PUB, TYPE, ENUM, REIFY, IMPORT, AS, IF, ELSE, MATCH, WHERE,
		IN, FOR, SUM, FORALL, FOLD, RFOLD, CAST, NONE, TRUE, FALSE, AND,
		OR, NOT, PANIC, GLOBAL, EOF,
	}
	l := New(src, "t.cml")
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
}
