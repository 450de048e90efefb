// Package eval implements C6 (the evaluator) and C7 (the call-history
// cache): interpreting a type-checked *ast.Module against a runtime value
// universe, producing ordinary values or symbolic LinExpr/Constraint terms.
//
// Grounded on original_source/collo-ml/src/eval/local_env.rs's eval_expr
// match (the per-node evaluation rules) and on the teacher's internal/eval
// package for the overall shape of a tree-walking evaluator split across a
// value type, an environment, and a core `eval` entry point
// (value.go/env.go/eval_core.go there become value.go/history.go/eval.go
// here). The teacher's value universe (closures, ADTs, effects) does not
// match this DSL's (no first-class functions, but symbolic LinExpr and
// Constraint in their place), so Value is a new type built to this DSL's
// runtime data model (spec.md §3 "Values") rather than a port of the
// teacher's eval.Value.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/linexpr"
	"github.com/collomatique/colloml/internal/typesys"
)

// LinExpr and Constraint are this repository's sole instantiation of the
// generic C5 algebra: every symbolic value flowing through the evaluator is
// indexed by ilpvar.IlpVar.
type LinExpr = linexpr.LinExpr[ilpvar.IlpVar]
type Constraint = linexpr.Constraint[ilpvar.IlpVar]

// ConstraintTerm pairs an emitted constraint with the Origin that produced
// it (spec.md §3 "Constraint(c…) — a list of (Constraint<IlpVar>, Origin)
// pairs").
type ConstraintTerm struct {
	C      *Constraint
	Origin ilpvar.Origin
}

// ObjectHandle is an opaque reference into the external environment
// (spec.md §3 "Object(handle)"). TypeName identifies which declared object
// type the handle belongs to; ID is environment-defined and only ever
// compared for equality or passed back to the Environment collaborator.
type ObjectHandle struct {
	TypeName string
	ID       string
}

func (h ObjectHandle) String() string { return h.TypeName + "#" + h.ID }

// ValueKind discriminates the runtime cases of Value.
type ValueKind int

const (
	VNone ValueKind = iota
	VBool
	VInt
	VString
	VList
	VTuple
	VStruct
	VObject
	VCustom
	VLinExpr
	VConstraint
)

// CustomValue wraps an inner value under a user-defined algebraic type or
// enum variant (spec.md §3 "Custom{module, type_name, variant?, content}").
type CustomValue struct {
	Module  string
	Type    string
	Variant string // "" if this is a type alias rather than an enum variant
	Content *Value
}

// Value is the C6 runtime value universe (spec.md §3 "Values"). It is a
// closed tagged union, mirrored on typesys.Type's own struct-plus-Kind
// shape rather than a Go interface, so that the evaluator's switch
// statements read the same way the checker's do over *typesys.Type.
type Value struct {
	Kind ValueKind

	Bool int8 // VBool: 0/1, avoids zero-value ambiguity with plain bool only in debug prints
	Int  int64
	Str  string

	List   []*Value // VList, VTuple (Tuple reuses the same slice field via Kind)
	Struct map[string]*Value

	Object ObjectHandle
	Custom *CustomValue

	Lin    *LinExpr
	Constr []ConstraintTerm
}

func NoneValue() *Value                { return &Value{Kind: VNone} }
func BoolValue(b bool) *Value          { return &Value{Kind: VBool, Bool: boolToInt8(b)} }
func IntValue(i int64) *Value          { return &Value{Kind: VInt, Int: i} }
func StringValue(s string) *Value      { return &Value{Kind: VString, Str: s} }
func ListValue(elems []*Value) *Value  { return &Value{Kind: VList, List: elems} }
func TupleValue(elems []*Value) *Value { return &Value{Kind: VTuple, List: elems} }
func StructValue(fields map[string]*Value) *Value {
	return &Value{Kind: VStruct, Struct: fields}
}
func ObjectValue(h ObjectHandle) *Value { return &Value{Kind: VObject, Object: h} }
func CustomValueOf(c *CustomValue) *Value {
	return &Value{Kind: VCustom, Custom: c}
}
func LinExprValue(e *LinExpr) *Value { return &Value{Kind: VLinExpr, Lin: e} }
func ConstraintValue(terms []ConstraintTerm) *Value {
	return &Value{Kind: VConstraint, Constr: terms}
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

// AsBool reports whether v is a VBool carrying true.
func (v *Value) AsBool() bool { return v.Kind == VBool && v.Bool != 0 }

// unwrapCustom strips successive Custom wrappers, per §9 "Custom values are
// transparent for . and […] access".
func unwrapCustom(v *Value) *Value {
	for v.Kind == VCustom {
		v = v.Custom.Content
	}
	return v
}

// Equal is structural equality over ExprValue, used by ==/!= and by
// NullCoalesce's None check.
func (v *Value) Equal(o *Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VNone:
		return true
	case VBool:
		return v.Bool == o.Bool
	case VInt:
		return v.Int == o.Int
	case VString:
		return v.Str == o.Str
	case VList, VTuple:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case VStruct:
		if len(v.Struct) != len(o.Struct) {
			return false
		}
		for k, fv := range v.Struct {
			ov, ok := o.Struct[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	case VObject:
		return v.Object == o.Object
	case VCustom:
		return v.Custom.Module == o.Custom.Module && v.Custom.Type == o.Custom.Type &&
			v.Custom.Variant == o.Custom.Variant && v.Custom.Content.Equal(o.Custom.Content)
	case VLinExpr:
		return v.Lin.Sub(o.Lin).Cleaned().Constant() == 0 && len(v.Lin.Sub(o.Lin).Cleaned().Variables()) == 0
	case VConstraint:
		if len(v.Constr) != len(o.Constr) {
			return false
		}
		for i := range v.Constr {
			if v.Constr[i].C.String() != o.Constr[i].C.String() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders v for diagnostics (panic messages, cast-failure errors,
// debug logging).
func (v *Value) String() string {
	switch v.Kind {
	case VNone:
		return "none"
	case VBool:
		return fmt.Sprintf("%t", v.AsBool())
	case VInt:
		return fmt.Sprintf("%d", v.Int)
	case VString:
		return fmt.Sprintf("%q", v.Str)
	case VList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTuple:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VStruct:
		names := make([]string, 0, len(v.Struct))
		for n := range v.Struct {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = n + "=" + v.Struct[n].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VObject:
		return v.Object.String()
	case VCustom:
		if v.Custom.Variant != "" {
			return fmt.Sprintf("%s::%s(%s)", v.Custom.Type, v.Custom.Variant, v.Custom.Content)
		}
		return fmt.Sprintf("%s(%s)", v.Custom.Type, v.Custom.Content)
	case VLinExpr:
		return v.Lin.String()
	case VConstraint:
		parts := make([]string, len(v.Constr))
		for i, c := range v.Constr {
			parts[i] = c.C.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

// FitsInTyp is the runtime-membership half of C2's "fits_in_typ": whether v
// is a valid member of t, used by cast?/cast! and by Match's `as T` guard.
// Structural kinds recurse; Custom values narrow by matching
// module/root/variant against t's Custom specialisation (an unspecialised
// Custom(m,r,"") matches any variant of that root).
func (v *Value) FitsInTyp(t *typesys.Type) bool {
	if t.Kind == typesys.KindUnion {
		for _, variant := range t.Variants {
			if v.FitsInTyp(variant) {
				return true
			}
		}
		return false
	}

	switch v.Kind {
	case VNone:
		return t.Kind == typesys.KindNone
	case VBool:
		return t.Kind == typesys.KindBool
	case VInt:
		return t.Kind == typesys.KindInt || t.Kind == typesys.KindLinExpr
	case VString:
		return t.Kind == typesys.KindString
	case VLinExpr:
		return t.Kind == typesys.KindLinExpr
	case VConstraint:
		return t.Kind == typesys.KindConstraint
	case VObject:
		return t.Kind == typesys.KindObject && t.ObjectName == v.Object.TypeName
	case VList:
		if t.Kind != typesys.KindList {
			return false
		}
		for _, e := range v.List {
			if !e.FitsInTyp(t.Elem) {
				return false
			}
		}
		return true
	case VTuple:
		if t.Kind != typesys.KindTuple || len(t.Elems) != len(v.List) {
			return false
		}
		for i, e := range v.List {
			if !e.FitsInTyp(t.Elems[i]) {
				return false
			}
		}
		return true
	case VStruct:
		if t.Kind != typesys.KindStruct {
			return false
		}
		for name, ft := range t.Fields {
			fv, ok := v.Struct[name]
			if !ok || !fv.FitsInTyp(ft) {
				return false
			}
		}
		return true
	case VCustom:
		if t.Kind != typesys.KindCustom || t.Module != v.Custom.Module || t.Root != v.Custom.Type {
			return false
		}
		return t.Variant == "" || t.Variant == v.Custom.Variant
	default:
		return false
	}
}

// ConvertToUnchecked performs the C6 coercion operation: converts v (of a
// type already known to be a subtype of target under AllowIntToLinExpr) to
// target's runtime representation. Int->LinExpr becomes a constant LinExpr;
// container coercions recurse element-wise; every other case is the
// identity, since the checker has already established the subtype
// relationship (spec.md §4.6 "Coercion").
func ConvertToUnchecked(v *Value, target *typesys.Type) *Value {
	if v.Kind == VInt && target.Kind == typesys.KindLinExpr {
		return LinExprValue(linexpr.New[ilpvar.IlpVar](float64(v.Int)))
	}
	if v.Kind == VList && target.Kind == typesys.KindList {
		out := make([]*Value, len(v.List))
		for i, e := range v.List {
			out[i] = ConvertToUnchecked(e, target.Elem)
		}
		return ListValue(out)
	}
	if v.Kind == VTuple && target.Kind == typesys.KindTuple {
		out := make([]*Value, len(v.List))
		for i, e := range v.List {
			out[i] = ConvertToUnchecked(e, target.Elems[i])
		}
		return TupleValue(out)
	}
	return v
}
