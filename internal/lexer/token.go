package lexer

import "fmt"

// TokenType identifies the lexical category of a Token.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	IDENT
	INT
	STRING

	// Keywords
	LET
	PUB
	TYPE
	ENUM
	REIFY
	IMPORT
	AS
	IF
	ELSE
	MATCH
	WHERE
	IN
	FOR
	SUM
	FORALL
	FOLD
	RFOLD
	CAST
	NONE
	TRUE
	FALSE
	AND
	OR
	NOT
	PANIC
	GLOBAL

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	DSLASH    // //
	PERCENT   // %
	EQ        // ==
	NEQ       // !=
	LT        // <
	GT        // >
	LTE       // <=
	GTE       // >=
	EQEQEQ    // ===
	LTEQEQ    // <==
	GTEQEQ    // >==
	QQ        // ??
	ASSIGN    // =
	ARROW     // ->
	FATARROW  // =>
	COLON     // :
	DCOLON    // ::
	BANG      // !
	QUESTION  // ?
	DOLLAR    // $
	DOTDOT    // ..
	DOT       // .
	PIPE      // |

	// Delimiters
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMICOLON
)

var tokens = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	LET: "let", PUB: "pub", TYPE: "type", ENUM: "enum", REIFY: "reify",
	IMPORT: "import", AS: "as", IF: "if", ELSE: "else", MATCH: "match",
	WHERE: "where", IN: "in", FOR: "for", SUM: "sum", FORALL: "forall",
	FOLD: "fold", RFOLD: "rfold", CAST: "cast", NONE: "none", TRUE: "true",
	FALSE: "false", AND: "and", OR: "or", NOT: "not", PANIC: "panic", GLOBAL: "global",

	PLUS: "+", MINUS: "-", STAR: "*", DSLASH: "//", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	EQEQEQ: "===", LTEQEQ: "<==", GTEQEQ: ">==", QQ: "??",
	ASSIGN: "=", ARROW: "->", FATARROW: "=>", COLON: ":", DCOLON: "::",
	BANG: "!", QUESTION: "?", DOLLAR: "$", DOTDOT: "..", DOT: ".", PIPE: "|",

	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMICOLON: ";",
}

func (t TokenType) String() string {
	if s, ok := tokens[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

var keywords = map[string]TokenType{
	"let": LET, "pub": PUB, "type": TYPE, "enum": ENUM, "reify": REIFY,
	"import": IMPORT, "as": AS, "if": IF, "else": ELSE, "match": MATCH,
	"where": WHERE, "in": IN, "for": FOR, "sum": SUM, "forall": FORALL,
	"fold": FOLD, "rfold": RFOLD, "cast": CAST, "none": NONE, "true": TRUE,
	"false": FALSE, "and": AND, "or": OR, "not": NOT, "panic": PANIC, "global": GLOBAL,
}

// LookupIdent classifies ident as a keyword token, or IDENT otherwise.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is one lexical token, carrying both a human-readable line/column
// position and the byte offsets needed to build an ast.Span.
type Token struct {
	Type    TokenType
	Literal string
	Start   int // byte offset of the first rune
	End     int // byte offset just past the last rune
	Line    int
	Column  int
	File    string
}

func (t Token) Position() string {
	return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %s}", t.Type, t.Literal, t.Position())
}

// IsKeyword reports whether t.Type is a reserved word rather than an
// operator, delimiter or literal.
func (t Token) IsKeyword() bool {
	switch t.Type {
	case LET, PUB, TYPE, ENUM, REIFY, IMPORT, AS, IF, ELSE, MATCH, WHERE,
		IN, FOR, SUM, FORALL, FOLD, RFOLD, CAST, NONE, TRUE, FALSE, AND, OR, NOT, PANIC, GLOBAL:
		return true
	}
	return false
}
