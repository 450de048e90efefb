package ast

import "strings"

// TypeExpr is the syntax a user writes for a type annotation, before C2/C3
// resolve it into a structural typesys.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Node is the common interface for every AST node: it carries a source span
// and a debug string for golden output.
type Node interface {
	Span() Span
	String() string
}

// PrimitiveKind enumerates the primitive type keywords recognised by the
// parser (§6: "Primitive / keyword names the parser must recognise").
type PrimitiveKind int

const (
	PrimInt PrimitiveKind = iota
	PrimBool
	PrimString
	PrimNone
	PrimLinExpr
	PrimConstraint
	PrimNever
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimInt:
		return "Int"
	case PrimBool:
		return "Bool"
	case PrimString:
		return "String"
	case PrimNone:
		return "None"
	case PrimLinExpr:
		return "LinExpr"
	case PrimConstraint:
		return "Constraint"
	case PrimNever:
		return "Never"
	default:
		return "?"
	}
}

// PrimitiveType is a bare primitive keyword used as a type.
type PrimitiveType struct {
	Kind PrimitiveKind
	Sp   Span
}

func (t *PrimitiveType) Span() Span      { return t.Sp }
func (t *PrimitiveType) String() string  { return t.Kind.String() }
func (t *PrimitiveType) typeExprNode()   {}

// NamedType is a dotted path referring to a custom type, object type, or
// (specialised) enum variant, e.g. "mymod::Shift::Morning".
type NamedType struct {
	Segments []string
	Sp       Span
}

func (t *NamedType) Span() Span     { return t.Sp }
func (t *NamedType) String() string { return strings.Join(t.Segments, "::") }
func (t *NamedType) typeExprNode()  {}

// OptionalType is `?T`, sugar for `T | None`.
type OptionalType struct {
	Inner TypeExpr
	Sp    Span
}

func (t *OptionalType) Span() Span     { return t.Sp }
func (t *OptionalType) String() string { return "?" + t.Inner.String() }
func (t *OptionalType) typeExprNode()  {}

// UnionType is `A | B | ...` as the user wrote it (pre-flattening).
type UnionType struct {
	Members []TypeExpr
	Sp      Span
}

func (t *UnionType) Span() Span { return t.Sp }
func (t *UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (t *UnionType) typeExprNode() {}

// ListType is `[T]`.
type ListType struct {
	Elem TypeExpr
	Sp   Span
}

func (t *ListType) Span() Span     { return t.Sp }
func (t *ListType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ListType) typeExprNode()  {}

// TupleType is `(T1, T2, ...)` with n >= 2 members.
type TupleType struct {
	Elems []TypeExpr
	Sp    Span
}

func (t *TupleType) Span() Span { return t.Sp }
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) typeExprNode() {}

// StructFieldType is one `name: T` entry of a StructType.
type StructFieldType struct {
	Name string
	Type TypeExpr
}

// StructType is `{name: T, ...}`.
type StructType struct {
	Fields []StructFieldType
	Sp     Span
}

func (t *StructType) Span() Span { return t.Sp }
func (t *StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (t *StructType) typeExprNode() {}
