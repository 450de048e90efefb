package ast

import (
	"fmt"
	"strings"
)

// Expr is the closed tagged variant of expression nodes (§4.1).
type Expr interface {
	Node
	exprNode()
}

// Path is a dotted identifier, e.g. "mod::foo::bar". The first segments that
// name a module are resolved by internal/module; the rest name a symbol
// within that module's symbol table.
type Path struct {
	Segments []string
	Sp       Span
}

func (p *Path) Span() Span     { return p.Sp }
func (p *Path) String() string { return strings.Join(p.Segments, "::") }

// --- literals ---

type NoneLit struct{ Sp Span }

func (e *NoneLit) Span() Span     { return e.Sp }
func (e *NoneLit) String() string { return "none" }
func (e *NoneLit) exprNode()      {}

type BoolLit struct {
	Value bool
	Sp    Span
}

func (e *BoolLit) Span() Span { return e.Sp }
func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *BoolLit) exprNode() {}

type IntLit struct {
	Value int64
	Sp    Span
}

func (e *IntLit) Span() Span     { return e.Sp }
func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *IntLit) exprNode()      {}

type StringLit struct {
	Value string
	Sp    Span
}

func (e *StringLit) Span() Span     { return e.Sp }
func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *StringLit) exprNode()      {}

// IdentPath is a bare path used as a value expression.
type IdentPath struct {
	Path *Path
	Sp   Span
}

func (e *IdentPath) Span() Span     { return e.Sp }
func (e *IdentPath) String() string { return e.Path.String() }
func (e *IdentPath) exprNode()      {}

// --- path segments (field/index access) ---

// Segment is one step of a PathExpr chain.
type Segment interface {
	Node
	segmentNode()
}

type FieldSeg struct {
	Name string
	Sp   Span
}

func (s *FieldSeg) Span() Span     { return s.Sp }
func (s *FieldSeg) String() string { return "." + s.Name }
func (s *FieldSeg) segmentNode()   {}

type TupleIndexSeg struct {
	Index int
	Sp    Span
}

func (s *TupleIndexSeg) Span() Span     { return s.Sp }
func (s *TupleIndexSeg) String() string { return fmt.Sprintf(".%d", s.Index) }
func (s *TupleIndexSeg) segmentNode()   {}

// ListIndexFallibleSeg is `e[i]`: returns none out of bounds.
type ListIndexFallibleSeg struct {
	Index Expr
	Sp    Span
}

func (s *ListIndexFallibleSeg) Span() Span     { return s.Sp }
func (s *ListIndexFallibleSeg) String() string { return "[" + s.Index.String() + "]" }
func (s *ListIndexFallibleSeg) segmentNode()   {}

// ListIndexPanicSeg is `e![i]`: raises on out-of-bounds.
type ListIndexPanicSeg struct {
	Index Expr
	Sp    Span
}

func (s *ListIndexPanicSeg) Span() Span     { return s.Sp }
func (s *ListIndexPanicSeg) String() string { return "![" + s.Index.String() + "]" }
func (s *ListIndexPanicSeg) segmentNode()   {}

// PathExpr chains Field/TupleIndex/ListIndex segments off a base expression.
type PathExpr struct {
	Base     Expr
	Segments []Segment
	Sp       Span
}

func (e *PathExpr) Span() Span { return e.Sp }
func (e *PathExpr) String() string {
	var b strings.Builder
	b.WriteString(e.Base.String())
	for _, s := range e.Segments {
		b.WriteString(s.String())
	}
	return b.String()
}
func (e *PathExpr) exprNode() {}

// --- container literals ---

type ListLiteral struct {
	Elems    []Expr
	ElemType TypeExpr // non-nil only for the empty typed literal `[<T>]`
	Sp       Span
}

func (e *ListLiteral) Span() Span { return e.Sp }
func (e *ListLiteral) String() string {
	if e.ElemType != nil && len(e.Elems) == 0 {
		return "[<" + e.ElemType.String() + ">]"
	}
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ListLiteral) exprNode() {}

// ListRange is `[start..end)`, producing Int list [start, end).
type ListRange struct {
	Start Expr
	End   Expr
	Sp    Span
}

func (e *ListRange) Span() Span { return e.Sp }
func (e *ListRange) String() string {
	return "[" + e.Start.String() + ".." + e.End.String() + "]"
}
func (e *ListRange) exprNode() {}

type TupleLiteral struct {
	Elems []Expr
	Sp    Span
}

func (e *TupleLiteral) Span() Span { return e.Sp }
func (e *TupleLiteral) String() string {
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (e *TupleLiteral) exprNode() {}

type StructFieldExpr struct {
	Name  string
	Value Expr
}

type StructLiteral struct {
	Fields []StructFieldExpr
	Sp     Span
}

func (e *StructLiteral) Span() Span { return e.Sp }
func (e *StructLiteral) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + " = " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (e *StructLiteral) exprNode() {}

// StructCall is `T{f=x, ...}` or `T(x)` used as a constructor for an Object,
// a Custom type, or a Struct.
type StructCall struct {
	Path   *Path
	Fields []StructFieldExpr
	Args   []Expr // positional form T(x, y)
	Sp     Span
}

func (e *StructCall) Span() Span { return e.Sp }
func (e *StructCall) String() string {
	if len(e.Args) > 0 {
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return e.Path.String() + "(" + strings.Join(parts, ", ") + ")"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + "=" + f.Value.String()
	}
	return e.Path.String() + "{" + strings.Join(parts, ", ") + "}"
}
func (e *StructCall) exprNode() {}

// --- casts ---

// ExplicitType is a type annotation `x as T`: a no-op at runtime.
type ExplicitType struct {
	Value Expr
	Type  TypeExpr
	Sp    Span
}

func (e *ExplicitType) Span() Span     { return e.Sp }
func (e *ExplicitType) String() string { return e.Value.String() + " as " + e.Type.String() }
func (e *ExplicitType) exprNode()      {}

// ComplexTypeCast is a constructor cast of Args to Type. The parser never
// builds one: `T(x)` parses as a GenericCall and `T{...}` as a StructCall.
type ComplexTypeCast struct {
	Type TypeExpr
	Args []Expr
	Sp   Span
}

func (e *ComplexTypeCast) Span() Span { return e.Sp }
func (e *ComplexTypeCast) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Type.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (e *ComplexTypeCast) exprNode() {}

// CastFallible is `x cast? T`, returning `?T`.
type CastFallible struct {
	Value Expr
	Type  TypeExpr
	Sp    Span
}

func (e *CastFallible) Span() Span { return e.Sp }
func (e *CastFallible) String() string {
	return e.Value.String() + " cast? " + e.Type.String()
}
func (e *CastFallible) exprNode() {}

// CastPanic is `x cast! T`, panicking on failure.
type CastPanic struct {
	Value Expr
	Type  TypeExpr
	Sp    Span
}

func (e *CastPanic) Span() Span { return e.Sp }
func (e *CastPanic) String() string {
	return e.Value.String() + " cast! " + e.Type.String()
}
func (e *CastPanic) exprNode() {}

// --- control flow ---

type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Sp   Span
}

func (e *If) Span() Span { return e.Sp }
func (e *If) String() string {
	return fmt.Sprintf("if %s { %s } else { %s }", e.Cond, e.Then, e.Else)
}
func (e *If) exprNode() {}

// MatchBranch is one arm of a Match expression.
type MatchBranch struct {
	Binder string
	AsType TypeExpr // optional narrowing type guard
	Where  Expr     // optional where-clause
	Body   Expr
	Sp     Span
}

type Match struct {
	Scrutinee Expr
	Branches  []MatchBranch
	Sp        Span
}

func (e *Match) Span() Span { return e.Sp }
func (e *Match) String() string {
	parts := make([]string, len(e.Branches))
	for i, b := range e.Branches {
		parts[i] = fmt.Sprintf("%s => %s", b.Binder, b.Body)
	}
	return fmt.Sprintf("match %s { %s }", e.Scrutinee, strings.Join(parts, ", "))
}
func (e *Match) exprNode() {}

// --- quantifiers ---

type Sum struct {
	Var        string
	Collection Expr
	Where      Expr // optional filter
	Body       Expr
	Sp         Span
}

func (e *Sum) Span() Span { return e.Sp }
func (e *Sum) String() string {
	return fmt.Sprintf("sum %s in %s { %s }", e.Var, e.Collection, e.Body)
}
func (e *Sum) exprNode() {}

type Forall struct {
	Var        string
	Collection Expr
	Where      Expr
	Body       Expr
	Sp         Span
}

func (e *Forall) Span() Span { return e.Sp }
func (e *Forall) String() string {
	return fmt.Sprintf("forall %s in %s { %s }", e.Var, e.Collection, e.Body)
}
func (e *Forall) exprNode() {}

type Fold struct {
	Var        string
	Acc        string
	Collection Expr
	Init       Expr
	Where      Expr
	Body       Expr
	Reversed   bool // true for rfold
	Sp         Span
}

func (e *Fold) Span() Span { return e.Sp }
func (e *Fold) String() string {
	kw := "fold"
	if e.Reversed {
		kw = "rfold"
	}
	return fmt.Sprintf("%s %s, %s in %s = %s { %s }", kw, e.Var, e.Acc, e.Collection, e.Init, e.Body)
}
func (e *Fold) exprNode() {}

// CompClause is one `for var in collection` clause of a ListComprehension.
type CompClause struct {
	Var        string
	Collection Expr
}

type ListComprehension struct {
	Body    Expr
	Clauses []CompClause
	Filter  Expr // optional
	Sp      Span
}

func (e *ListComprehension) Span() Span { return e.Sp }
func (e *ListComprehension) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Body.String())
	for _, c := range e.Clauses {
		fmt.Fprintf(&b, " for %s in %s", c.Var, c.Collection)
	}
	if e.Filter != nil {
		fmt.Fprintf(&b, " if %s", e.Filter)
	}
	b.WriteString("]")
	return b.String()
}
func (e *ListComprehension) exprNode() {}

// --- let binding ---

type Let struct {
	Name  string
	Value Expr
	Body  Expr
	Sp    Span
}

func (e *Let) Span() Span     { return e.Sp }
func (e *Let) String() string { return fmt.Sprintf("let %s = %s in %s", e.Name, e.Value, e.Body) }
func (e *Let) exprNode()      {}

// --- operators ---

// BinOp is the kind of a binary operator node.
type BinOp int

const (
	OpAnd BinOp = iota
	OpOr
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var binOpNames = map[BinOp]string{
	OpAnd: "and", OpOr: "or", OpEq: "==", OpNeq: "!=",
	OpLt: "<", OpLeq: "<=", OpGt: ">", OpGeq: ">=",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "//", OpMod: "%",
}

func (o BinOp) String() string { return binOpNames[o] }

type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Sp    Span
}

func (e *BinaryExpr) Span() Span { return e.Sp }
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *BinaryExpr) exprNode() {}

type UnaryExpr struct {
	Negate bool // true: "-", false: "not"
	Value  Expr
	Sp     Span
}

func (e *UnaryExpr) Span() Span { return e.Sp }
func (e *UnaryExpr) String() string {
	if e.Negate {
		return "-" + e.Value.String()
	}
	return "not " + e.Value.String()
}
func (e *UnaryExpr) exprNode() {}

// NullCoalesce is `a ?? b`.
type NullCoalesce struct {
	Left  Expr
	Right Expr
	Sp    Span
}

func (e *NullCoalesce) Span() Span     { return e.Sp }
func (e *NullCoalesce) String() string { return fmt.Sprintf("(%s ?? %s)", e.Left, e.Right) }
func (e *NullCoalesce) exprNode()      {}

// ConstraintOp is the kind of constraint-builder operator.
type ConstraintOp int

const (
	ConstraintEq ConstraintOp = iota
	ConstraintLeq
	ConstraintGeq
)

var constraintOpNames = map[ConstraintOp]string{
	ConstraintEq: "===", ConstraintLeq: "<==", ConstraintGeq: ">==",
}

func (o ConstraintOp) String() string { return constraintOpNames[o] }

// ConstraintExpr is `a === b`, `a <== b`, or `a >== b`: coerces both sides to
// LinExpr and produces a single-element Constraint list.
type ConstraintExpr struct {
	Op    ConstraintOp
	Left  Expr
	Right Expr
	Sp    Span
}

func (e *ConstraintExpr) Span() Span { return e.Sp }
func (e *ConstraintExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *ConstraintExpr) exprNode() {}

// Panic is `panic(e)`.
type Panic struct {
	Value Expr
	Sp    Span
}

func (e *Panic) Span() Span     { return e.Sp }
func (e *Panic) String() string { return "panic(" + e.Value.String() + ")" }
func (e *Panic) exprNode()      {}

// --- symbolic variable access ---

// VarCall is `$V(args)` or `$mod::V(args)`: access to an external or
// reified variable.
type VarCall struct {
	Module *string
	Name   string
	Args   []Expr
	Sp     Span
}

func (e *VarCall) Span() Span { return e.Sp }
func (e *VarCall) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	prefix := "$"
	if e.Module != nil {
		prefix = *e.Module + "::$"
	}
	return fmt.Sprintf("%s%s(%s)", prefix, e.Name, strings.Join(parts, ", "))
}
func (e *VarCall) exprNode() {}

// VarListCall is `$[V](args)` or `$mod::[V](args)`.
type VarListCall struct {
	Module *string
	Name   string
	Args   []Expr
	Sp     Span
}

func (e *VarListCall) Span() Span { return e.Sp }
func (e *VarListCall) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	prefix := "$["
	if e.Module != nil {
		prefix = *e.Module + "::$["
	}
	return fmt.Sprintf("%s%s](%s)", prefix, e.Name, strings.Join(parts, ", "))
}
func (e *VarListCall) exprNode() {}

// GenericCall is `path(args)`: resolved by C4 as either a function call or a
// type cast, depending on what `path` resolves to.
type GenericCall struct {
	Path *Path
	Args []Expr
	Sp   Span
}

func (e *GenericCall) Span() Span { return e.Sp }
func (e *GenericCall) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Path, strings.Join(parts, ", "))
}
func (e *GenericCall) exprNode() {}

// GlobalList yields every external object whose declared object-type matches
// any variant of Type.
type GlobalList struct {
	Type TypeExpr
	Sp   Span
}

func (e *GlobalList) Span() Span     { return e.Sp }
func (e *GlobalList) String() string { return "global::" + e.Type.String() }
func (e *GlobalList) exprNode()      {}
