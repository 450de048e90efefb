// Package problem implements C8: the problem builder that drives C6/C7
// evaluation across one or more constraint and objective entry points,
// harvests the private reified variables discovered along the way, lowers
// every collected symbolic constraint through C9, and assembles a
// normalised ILP Problem ready for a solver collaborator.
//
// Grounded on original_source/collo-ml/src/problem.rs's ProblemBuilder. That
// file's evaluate_recursively drives a work queue of pending reifications
// back and forth across incrementally-compiled "scripts", because in the
// original a script's AST might not exist yet when another script first
// references one of its public reified variables. This port's
// internal/module builds every module's AST up front in one pass
// (module.Build), so a $Name(...) reference into any module is resolved and
// evaluated immediately and recursively by internal/eval — there is no
// later module whose compilation could still be pending. The multi-round
// backward-scanning driver therefore collapses to a single evaluation pass
// per ProblemBuilder; see DESIGN.md for the full account of this
// simplification.
package problem

import (
	"strconv"

	"github.com/collomatique/colloml/internal/ilpvar"
)

// Kind discriminates the three cases of a lowered problem variable (spec.md
// §4.8 "every ILP variable mentioned in any collected Constraint is either
// a Base... ReifiedPublic... ReifiedPrivate... or a Helper").
//
// This port drops the ReifiedPublic/ReifiedPrivate distinction the original
// makes: there, a reified variable is "public" if some other script may
// reference it by name before its defining script has run, which requires
// tracking a separate pending-reification queue. Here every $Name(...) call
// resolves its backing function eagerly (internal/eval.evalVarCall looks it
// up in the already-fully-built GlobalEnv regardless of which module
// declared it), so every reified variable behaves like the original's
// "private" case: identified by the ilpvar.ScriptVar of the function that
// backs it, never by the declared reify name. See DESIGN.md.
type Kind int

const (
	KindBase Kind = iota
	KindReified
	KindHelper
)

// Var is a lowered ILP variable: the comparable key type instantiated into
// internal/linexpr and internal/reify for problem-building. It wraps
// internal/ilpvar's identity types directly rather than redefining
// name/params encoding, since ilpvar.ExternVar/ScriptVar already canonicalise
// call arguments into comparable structs.
type Var struct {
	Kind   Kind
	Base   ilpvar.ExternVar
	Script ilpvar.ScriptVar
	Helper uint64
}

func BaseVar(v ilpvar.ExternVar) Var    { return Var{Kind: KindBase, Base: v} }
func ReifiedVar(v ilpvar.ScriptVar) Var { return Var{Kind: KindReified, Script: v} }
func HelperVar(id uint64) Var           { return Var{Kind: KindHelper, Helper: id} }

func (v Var) String() string {
	switch v.Kind {
	case KindBase:
		return v.Base.String()
	case KindReified:
		return "$" + v.Script.String()
	default:
		return "helper#" + strconv.FormatUint(v.Helper, 10)
	}
}

// ConstraintKind discriminates the three constraint descriptors spec.md
// §4.8 attaches to every collected constraint.
type ConstraintKind int

const (
	DescInScript ConstraintKind = iota
	DescReified
	DescObjectify
)

// Desc is a constraint's provenance descriptor (spec.md §4.8
// "InScript | Reified{var_name} | Objectify").
type Desc struct {
	Kind    ConstraintKind
	VarName string // set when Kind == DescReified
	Origin  ilpvar.Origin
}
