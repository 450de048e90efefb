package ast

import (
	"fmt"
	"strings"
)

// Stmt is a top-level module statement.
type Stmt interface {
	Node
	stmtNode()
}

// FuncParam is one `name: T` parameter of a `let` function.
type FuncParam struct {
	Name string
	Type TypeExpr
}

// LetStmt declares a function: `let [pub] name(params) -> T = expr;`
type LetStmt struct {
	Pub        bool
	Name       string
	Params     []FuncParam
	ReturnType TypeExpr
	Body       Expr
	Doc        string
	Sp         Span
}

func (s *LetStmt) Span() Span { return s.Sp }
func (s *LetStmt) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	pub := ""
	if s.Pub {
		pub = "pub "
	}
	return fmt.Sprintf("let %s%s(%s) -> %s = %s;", pub, s.Name, strings.Join(parts, ", "), s.ReturnType, s.Body)
}
func (s *LetStmt) stmtNode() {}

// TypeStmt declares a type alias: `type [pub] Name = T;`
type TypeStmt struct {
	Pub        bool
	Name       string
	Underlying TypeExpr
	Sp         Span
}

func (s *TypeStmt) Span() Span { return s.Sp }
func (s *TypeStmt) String() string {
	pub := ""
	if s.Pub {
		pub = "pub "
	}
	return fmt.Sprintf("type %s%s = %s;", pub, s.Name, s.Underlying)
}
func (s *TypeStmt) stmtNode() {}

// EnumVariantKind distinguishes a unit/tuple/struct-shaped enum variant.
type EnumVariantKind int

const (
	VariantUnit EnumVariantKind = iota
	VariantTuple
	VariantStruct
)

// EnumVariant is one case of an `enum` declaration.
type EnumVariant struct {
	Name        string
	Kind        EnumVariantKind
	TupleFields []TypeExpr        // VariantTuple
	StructFields []StructFieldType // VariantStruct
	Sp          Span
}

// EnumStmt declares an algebraic enum: `enum [pub] Name { Variant, ... }`
type EnumStmt struct {
	Pub      bool
	Name     string
	Variants []EnumVariant
	Sp       Span
}

func (s *EnumStmt) Span() Span { return s.Sp }
func (s *EnumStmt) String() string {
	names := make([]string, len(s.Variants))
	for i, v := range s.Variants {
		names[i] = v.Name
	}
	pub := ""
	if s.Pub {
		pub = "pub "
	}
	return fmt.Sprintf("enum %s%s { %s }", pub, s.Name, strings.Join(names, ", "))
}
func (s *EnumStmt) stmtNode() {}

// ReifyStmt projects a Constraint-returning function into a named reified
// variable: `reify f as $Name;` or `reify f as $[Name];` for variable lists.
type ReifyStmt struct {
	Func    string
	VarName string
	IsList  bool
	Sp      Span
}

func (s *ReifyStmt) Span() Span { return s.Sp }
func (s *ReifyStmt) String() string {
	if s.IsList {
		return fmt.Sprintf("reify %s as $[%s];", s.Func, s.VarName)
	}
	return fmt.Sprintf("reify %s as $%s;", s.Func, s.VarName)
}
func (s *ReifyStmt) stmtNode() {}

// ImportStmt is `import mod;`, `import mod as alias;`, or `import mod.*;`.
type ImportStmt struct {
	ModulePath []string
	Alias      string // empty if none
	Wildcard   bool
	Sp         Span
}

func (s *ImportStmt) Span() Span { return s.Sp }
func (s *ImportStmt) String() string {
	path := strings.Join(s.ModulePath, "::")
	switch {
	case s.Wildcard:
		return fmt.Sprintf("import %s.*;", path)
	case s.Alias != "":
		return fmt.Sprintf("import %s as %s;", path, s.Alias)
	default:
		return fmt.Sprintf("import %s;", path)
	}
}
func (s *ImportStmt) stmtNode() {}

// Module is a single compiled source file / DSL module: an ordered list of
// top-level statements plus the module's own name.
type Module struct {
	Name  string
	Stmts []Stmt
}
