// Package ilpvar implements the ILP variable identity model (§3 "ILP
// variables"): the two-level Base/Script namespace that every LinExpr and
// Constraint in this repository is indexed by.
//
// Grounded on the original_source/collo-ml/src/eval/local_env.rs call sites
// for ExternVar::new / ScriptVar::new (VarCall/VarListCall evaluation,
// §4.6). Unlike the Rust original, where ExternVar/ScriptVar carry a
// Vec<ExprValue> of call arguments directly, this package canonicalises
// arguments into a single ordered string at construction time: IlpVar must
// satisfy Go's structural `comparable` constraint so it can be used as the
// map key inside internal/linexpr's LinExpr[V], and a struct with a slice
// field is not comparable in Go. Callers (internal/eval) are expected to
// pass each argument's deterministic String() form.
package ilpvar

import (
	"strconv"
	"strings"
)

// EncodeParams canonicalises a call's argument values (already rendered to
// their deterministic string form by the caller) into the single string
// stored on ExternVar/ScriptVar. Encoding escapes the field separator so
// distinct argument vectors never collide.
func EncodeParams(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = strconv.Quote(a)
	}
	return strings.Join(escaped, ",")
}

// ExternVar identifies a user-declared, externally addressable ILP
// variable: `name(params...)` as written in an external variable
// declaration.
type ExternVar struct {
	Name   string
	Params string // EncodeParams output
}

func (v ExternVar) String() string {
	if v.Params == "" {
		return v.Name
	}
	return v.Name + "(" + v.Params + ")"
}

// ScriptVar identifies a variable private to script evaluation: a call to
// an internal (non-`pub`) function that returns LinExpr/Constraint, or one
// element of a variable list. Index is meaningful only when HasIndex is
// true (the call originated from a VarListCall element).
type ScriptVar struct {
	Module   string
	Name     string
	HasIndex bool
	Index    int
	Params   string
}

func (v ScriptVar) String() string {
	s := v.Module + "::" + v.Name
	if v.HasIndex {
		s += "[" + strconv.Itoa(v.Index) + "]"
	}
	if v.Params != "" {
		s += "(" + v.Params + ")"
	}
	return s
}

// Kind discriminates the two IlpVar cases.
type Kind int

const (
	KindBase Kind = iota
	KindScript
)

// IlpVar is Base(ExternVar) | Script(ScriptVar) (§3). It is the variable
// type instantiated into internal/linexpr.LinExpr and Constraint during
// evaluation (C6), before problem-building (C8) lowers it further into
// ProblemVar.
type IlpVar struct {
	Kind   Kind
	Base   ExternVar
	Script ScriptVar
}

// NewBase builds an IlpVar addressing an external variable.
func NewBase(name string, params []string) IlpVar {
	return IlpVar{Kind: KindBase, Base: ExternVar{Name: name, Params: EncodeParams(params)}}
}

// NewScript builds an IlpVar addressing a private script variable.
// hasIndex/index describe a VarListCall element; pass hasIndex=false for a
// plain VarCall.
func NewScript(module, name string, hasIndex bool, index int, params []string) IlpVar {
	return IlpVar{
		Kind: KindScript,
		Script: ScriptVar{
			Module:   module,
			Name:     name,
			HasIndex: hasIndex,
			Index:    index,
			Params:   EncodeParams(params),
		},
	}
}

func (v IlpVar) String() string {
	switch v.Kind {
	case KindBase:
		return v.Base.String()
	case KindScript:
		return v.Script.String()
	default:
		return "?"
	}
}

// IsBase and IsScript are the §3 discrimination predicates used by the
// problem builder when deciding whether a variable is externally owned.
func (v IlpVar) IsBase() bool   { return v.Kind == KindBase }
func (v IlpVar) IsScript() bool { return v.Kind == KindScript }
