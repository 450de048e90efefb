// Package typesys implements collomatique's structural type algebra (§4.2,
// "Type Algebra"): primitives, containers, custom algebraic types, and closed
// unions, with subtyping, coercion, and runtime membership checks.
//
// The shape mirrors the teacher's internal/types package (TCon/TList/TTuple/
// TRecord as the model for Primitive/List/Tuple/Struct) but replaces its
// Hindley-Milner inference machinery with the spec's simpler structural
// subtype lattice: there is no unification, no type variables, no type
// classes. Every type is fully concrete by construction.
package typesys

import (
	"sort"
	"strings"
)

// Kind discriminates the variant of a Type.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindNone
	KindLinExpr
	KindConstraint
	KindNever
	KindList
	KindTuple
	KindStruct
	KindObject
	KindCustom
	KindUnion
)

// Type is a structural collomatique type. Zero value is invalid; use the
// constructors below.
type Type struct {
	Kind Kind

	// KindList
	Elem *Type

	// KindTuple
	Elems []*Type

	// KindStruct
	Fields map[string]*Type

	// KindObject
	ObjectName string

	// KindCustom
	Module  string
	Root    string
	Variant string // "" means unspecialised (the whole enum)

	// KindUnion: a closed set of non-union variants, canonically ordered.
	Variants []*Type
}

var (
	Int        = &Type{Kind: KindInt}
	Bool       = &Type{Kind: KindBool}
	String     = &Type{Kind: KindString}
	None       = &Type{Kind: KindNone}
	LinExpr    = &Type{Kind: KindLinExpr}
	Constraint = &Type{Kind: KindConstraint}
	Never      = &Type{Kind: KindNever}
)

// List constructs List(elem).
func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

// Tuple constructs Tuple(elems...); n must be >= 2 per the spec but this
// constructor does not enforce it so callers can build incrementally.
func Tuple(elems ...*Type) *Type { return &Type{Kind: KindTuple, Elems: elems} }

// Struct constructs Struct({name->T}).
func Struct(fields map[string]*Type) *Type { return &Type{Kind: KindStruct, Fields: fields} }

// Object constructs Object(name), referring to an externally declared record
// type with a fixed schema managed by the environment collaborator.
func Object(name string) *Type { return &Type{Kind: KindObject, ObjectName: name} }

// Custom constructs Custom(module, root, variant?).
func Custom(module, root, variant string) *Type {
	return &Type{Kind: KindCustom, Module: module, Root: root, Variant: variant}
}

// Optional is `?T`, sugar for T | None.
func Optional(t *Type) *Type { return Union(t, None) }

// Union constructs a closed sum from variants. Per §4.2: a union never
// contains another union (members are flattened), constructing from a single
// variant returns that variant, and constructing from zero variants returns
// Never. Duplicate variants are removed and the result is canonically
// ordered.
func Union(variants ...*Type) *Type {
	var flat []*Type
	for _, v := range variants {
		if v == nil {
			continue
		}
		if v.Kind == KindUnion {
			flat = append(flat, v.Variants...)
		} else {
			flat = append(flat, v)
		}
	}
	flat = dedupVariants(flat)
	sortVariants(flat)

	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	default:
		return &Type{Kind: KindUnion, Variants: flat}
	}
}

func dedupVariants(in []*Type) []*Type {
	out := make([]*Type, 0, len(in))
	for _, t := range in {
		dup := false
		for _, o := range out {
			if t.Equal(o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

func sortVariants(ts []*Type) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].canonKey() < ts[j].canonKey() })
}

// canonKey gives a deterministic total order over non-union variants so
// union construction and display are reproducible (§9 Determinism).
func (t *Type) canonKey() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

func (t *Type) writeKey(b *strings.Builder) {
	switch t.Kind {
	case KindList:
		b.WriteString("List<")
		t.Elem.writeKey(b)
		b.WriteString(">")
	case KindTuple:
		b.WriteString("Tuple<")
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(",")
			}
			e.writeKey(b)
		}
		b.WriteString(">")
	case KindStruct:
		b.WriteString("Struct<")
		names := make([]string, 0, len(t.Fields))
		for n := range t.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		for i, n := range names {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(n)
			b.WriteString(":")
			t.Fields[n].writeKey(b)
		}
		b.WriteString(">")
	case KindObject:
		b.WriteString("Object<" + t.ObjectName + ">")
	case KindCustom:
		b.WriteString("Custom<" + t.Module + "::" + t.Root)
		if t.Variant != "" {
			b.WriteString("::" + t.Variant)
		}
		b.WriteString(">")
	default:
		b.WriteString(t.String())
	}
}

// String renders the type for diagnostics, matching the DSL surface syntax
// where possible.
func (t *Type) String() string {
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindNone:
		return "None"
	case KindLinExpr:
		return "LinExpr"
	case KindConstraint:
		return "Constraint"
	case KindNever:
		return "Never"
	case KindList:
		return "[" + t.Elem.String() + "]"
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		names := make([]string, 0, len(t.Fields))
		for n := range t.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = n + ": " + t.Fields[n].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindObject:
		return t.ObjectName
	case KindCustom:
		if t.Variant != "" {
			return t.Module + "::" + t.Root + "::" + t.Variant
		}
		return t.Module + "::" + t.Root
	case KindUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	default:
		return "?"
	}
}

// Equal is structural equality, used after canonicalisation.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		return t.Elem.Equal(o.Elem)
	case KindTuple:
		if len(t.Elems) != len(o.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for n, f := range t.Fields {
			of, ok := o.Fields[n]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	case KindObject:
		return t.ObjectName == o.ObjectName
	case KindCustom:
		return t.Module == o.Module && t.Root == o.Root && t.Variant == o.Variant
	case KindUnion:
		if len(t.Variants) != len(o.Variants) {
			return false
		}
		for i := range t.Variants {
			if !t.Variants[i].Equal(o.Variants[i]) {
				return false
			}
		}
		return true
	default:
		return true // primitive kinds, no payload
	}
}

// GetVariants decomposes a type into its non-union variants: a union yields
// its members, anything else yields itself as a single-element slice.
func (t *Type) GetVariants() []*Type {
	if t.Kind == KindUnion {
		return t.Variants
	}
	return []*Type{t}
}

// IsInt, IsBool, etc. are the C2 kind predicates used by the checker and
// evaluator to decide quantifier carriers and coercions.
func (t *Type) IsInt() bool        { return t.Kind == KindInt }
func (t *Type) IsBool() bool       { return t.Kind == KindBool }
func (t *Type) IsLinExpr() bool    { return t.Kind == KindLinExpr }
func (t *Type) IsConstraint() bool { return t.Kind == KindConstraint }
func (t *Type) IsList() bool       { return t.Kind == KindList }
func (t *Type) IsNone() bool       { return t.Kind == KindNone }

// IsListOfConstraints reports whether t is List(Constraint).
func (t *Type) IsListOfConstraints() bool {
	return t.Kind == KindList && t.Elem != nil && t.Elem.Kind == KindConstraint
}
