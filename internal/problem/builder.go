package problem

import (
	"math"
	"sort"

	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/linexpr"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/reify"
	"github.com/collomatique/colloml/internal/typesys"
)

// Environment is C8's external collaborator (spec.md §6): everything
// internal/eval needs (embedded) plus the base-variable enumeration C8
// needs to seed the variable-definition map and check every base variable
// has an integer domain before building starts.
type Environment interface {
	eval.Environment

	// BaseVariables enumerates every concrete external (base) variable this
	// environment defines, paired with its ILP domain (spec.md §6
	// "vars(env) -> {base var -> Variable{kind, bounds}}").
	BaseVariables() map[ilpvar.ExternVar]reify.Domain
}

// Entry is one constraint or objective call site: a function to invoke
// with caller-supplied arguments.
type Entry struct {
	Module string
	Func   string
	Args   []*eval.Value
}

// ObjectiveEntry is an Entry plus the weighting spec.md §4.8 attaches to an
// objective entry point ("a set of objective entry points
// (script, function, args, weight, sense)").
type ObjectiveEntry struct {
	Entry
	Weight   float64
	Maximize bool
}

type constraintEntry struct {
	C    *linexpr.Constraint[Var]
	Desc Desc
}

type pendingReify struct {
	Var         Var
	Name        string
	Constraints []*linexpr.Constraint[Var]
	Origin      ilpvar.Origin
}

// Builder is C8's ProblemBuilder: it owns the shared evaluator/call-history
// cache for one batch, the incrementally assembled constraint list, the
// variable-definition map, and the composite objective.
type Builder struct {
	env  Environment
	mod  *module.GlobalEnv
	eval *eval.Evaluator

	varsDesc  map[Var]reify.Domain
	helperSeq uint64

	constraints  []constraintEntry
	pendingReify []pendingReify
	objective    reify.Objective[Var]
}

// New builds a Builder bound to env. Every base variable env declares must
// have an integer (binary or integer) domain, or this returns
// NonIntegerVariable (spec.md §4.8 "ProblemBuilder::new").
func New(env Environment, mod *module.GlobalEnv) (*Builder, error) {
	base := env.BaseVariables()
	varsDesc := make(map[Var]reify.Domain, len(base))
	for v, d := range base {
		if d.Kind == reify.Continuous {
			return nil, errNonIntegerVariable(v.String())
		}
		varsDesc[BaseVar(v)] = d
	}
	return &Builder{
		env:       env,
		mod:       mod,
		eval:      eval.New(mod, env),
		varsDesc:  varsDesc,
		objective: reify.NewObjective[Var](),
	}, nil
}

func isConstraintCompatible(t *typesys.Type) bool {
	return t.IsConstraint() || t.IsListOfConstraints()
}

func isObjectiveCompatible(t *typesys.Type) bool {
	if t.IsLinExpr() || t.IsConstraint() {
		return true
	}
	if t.IsList() && t.Elem != nil {
		for _, v := range t.Elem.GetVariants() {
			if !v.IsLinExpr() && !v.IsConstraint() {
				return false
			}
		}
		return true
	}
	return false
}

func (b *Builder) lookupFunc(mod, name string) (*module.FuncDesc, error) {
	fd, ok := b.mod.Functions[module.FuncKey{Module: mod, Name: name}]
	if !ok {
		return nil, errUnknownFunction(name)
	}
	return fd, nil
}

func panicOrErr(err error) error {
	if pe, ok := err.(*eval.PanicError); ok {
		return &PanicError{Inner: pe}
	}
	return err
}

// cleanVar lowers an ilpvar.IlpVar (C6's variable identity) into this
// package's Var (C8's lowered identity) — the Go analogue of
// ProblemBuilder::clean_var, simplified because this port has no
// EvalVar/EvalObject generic conversion layer to thread through: ilpvar's
// Base/Script cases map onto Var's Base/Reified cases directly.
func cleanVar(v ilpvar.IlpVar) Var {
	if v.Kind == ilpvar.KindBase {
		return BaseVar(v.Base)
	}
	return ReifiedVar(v.Script)
}

func cleanLinExpr(e *eval.LinExpr) *linexpr.LinExpr[Var] {
	return linexpr.Transmute(e, cleanVar)
}

func cleanConstraint(c *eval.Constraint) *linexpr.Constraint[Var] {
	return linexpr.TransmuteConstraint(c, cleanVar)
}

// extractConstraints pulls the []eval.ConstraintTerm out of a function's
// result, accepting a bare Constraint value or (when allowList) a list all
// of whose elements are Constraint values, matching
// eval_constraint_in_history's ExprValue::Constraint | ExprValue::List
// match.
func extractConstraints(fn string, v *eval.Value, allowList bool) ([]eval.ConstraintTerm, error) {
	switch v.Kind {
	case eval.VConstraint:
		return v.Constr, nil
	case eval.VList:
		if !allowList {
			break
		}
		out := make([]eval.ConstraintTerm, 0, len(v.List))
		for _, el := range v.List {
			if el.Kind != eval.VConstraint {
				return nil, errUnexpectedReturnValue(fn, el.String())
			}
			out = append(out, el.Constr...)
		}
		return out, nil
	}
	return nil, errUnexpectedReturnValue(fn, v.String())
}

func (b *Builder) callEntry(e Entry) (*eval.Value, error) {
	v, err := b.eval.CallEntryPoint(e.Module, e.Func, e.Args)
	if err != nil {
		return nil, panicOrErr(err)
	}
	return v, nil
}

// AddConstraints runs each entry's function and records the constraints it
// produces as InScript (spec.md §4.8 driver step 1).
func (b *Builder) AddConstraints(entries []Entry) error {
	for _, e := range entries {
		fd, err := b.lookupFunc(e.Module, e.Func)
		if err != nil {
			return err
		}
		if !isConstraintCompatible(fd.Output) {
			return errWrongReturnType(e.Func, fd.Output.String(), "Constraint")
		}
		if len(fd.Args) != len(e.Args) {
			return errArgumentCountMismatch(e.Func, len(fd.Args), len(e.Args))
		}
		val, err := b.callEntry(e)
		if err != nil {
			return err
		}
		terms, err := extractConstraints(e.Func, val, true)
		if err != nil {
			return err
		}
		for _, t := range terms {
			b.constraints = append(b.constraints, constraintEntry{
				C:    cleanConstraint(t.C),
				Desc: Desc{Kind: DescInScript, Origin: t.Origin},
			})
		}
	}
	return nil
}

// AddObjective runs each objective entry's function, objectifying any
// Constraint values it returns and adding every LinExpr term to the
// composite objective under the entry's weight and sense (spec.md §4.8
// driver step 2, §4.9 "objective composition").
func (b *Builder) AddObjective(entries []ObjectiveEntry) error {
	for _, e := range entries {
		fd, err := b.lookupFunc(e.Module, e.Func)
		if err != nil {
			return err
		}
		if !isObjectiveCompatible(fd.Output) {
			return errWrongReturnType(e.Func, fd.Output.String(), "LinExpr")
		}
		if len(fd.Args) != len(e.Args) {
			return errArgumentCountMismatch(e.Func, len(fd.Args), len(e.Args))
		}
		val, err := b.callEntry(e.Entry)
		if err != nil {
			return err
		}

		var values []*eval.Value
		switch val.Kind {
		case eval.VLinExpr, eval.VConstraint:
			values = []*eval.Value{val}
		case eval.VList:
			values = val.List
		default:
			return errUnexpectedReturnValue(e.Func, val.String())
		}

		sign := 1.0
		if e.Maximize {
			sign = -1.0
		}
		weight := e.Weight * sign

		for _, item := range values {
			switch item.Kind {
			case eval.VLinExpr:
				b.objective = b.objective.Add(cleanLinExpr(item.Lin).MulConst(weight))
			case eval.VConstraint:
				cleaned := make([]*linexpr.Constraint[Var], len(item.Constr))
				origin := ilpvar.Origin{}
				for i, t := range item.Constr {
					cleaned[i] = cleanConstraint(t.C)
					origin = t.Origin
				}
				obj, constraints := b.lowerer().ObjectifyMany(cleaned, Desc{Kind: DescObjectify, Origin: origin})
				b.objective = b.objective.Add(obj.Expr.MulConst(weight))
				for _, lc := range constraints {
					b.constraints = append(b.constraints, constraintEntry{C: lc.C, Desc: lc.Desc})
				}
			default:
				return errUnexpectedReturnValue(e.Func, item.String())
			}
		}
	}
	return nil
}

// newHelper mints a fresh helper Var, registering its domain into the
// variable-definition map (spec.md "generate_helper_var" /
// "generate_helper_continuous_var").
func (b *Builder) newHelper(continuous bool) Var {
	v := HelperVar(b.helperSeq)
	b.helperSeq++
	d := reify.Domain{Kind: reify.Binary, Min: 0, Max: 1}
	if continuous {
		d = reify.Domain{Kind: reify.Continuous, Min: 0, Max: math.Inf(1)}
	}
	b.varsDesc[v] = d
	return v
}

func (b *Builder) domainOf(v Var) (reify.Domain, bool) {
	switch v.Kind {
	case KindReified, KindHelper:
		if d, ok := b.varsDesc[v]; ok && v.Kind == KindHelper {
			return d, true
		}
		return reify.Domain{Kind: reify.Binary, Min: 0, Max: 1}, true
	default:
		if d, ok := b.varsDesc[v]; ok {
			return d, true
		}
		if fixed, ok := b.env.ExternVarFix(v.Base); ok {
			return reify.Domain{Kind: reify.Integer, Min: fixed, Max: fixed}, true
		}
		return reify.Domain{}, false
	}
}

func (b *Builder) lowerer() *reify.Lowerer[Var, Desc] {
	return &reify.Lowerer[Var, Desc]{DomainOf: b.domainOf, NewHelper: b.newHelper}
}

// harvestReified records one reified ScriptVar's backing constraint list
// for later lowering.
func (b *Builder) harvestReified(iv ilpvar.IlpVar, body *eval.Value, origin ilpvar.Origin) error {
	terms, err := extractConstraints(iv.Script.Name, body, true)
	if err != nil {
		return err
	}
	v := ReifiedVar(iv.Script)
	b.varsDesc[v] = reify.Domain{Kind: reify.Binary, Min: 0, Max: 1}
	cleaned := make([]*linexpr.Constraint[Var], len(terms))
	for i, t := range terms {
		cleaned[i] = cleanConstraint(t.C)
	}
	b.pendingReify = append(b.pendingReify, pendingReify{Var: v, Name: iv.Script.Name, Constraints: cleaned, Origin: origin})
	return nil
}

// harvestAll walks every ILP variable touched during evaluation
// (EvalHistory.Vars/VarList) and queues the reified-private ones for
// lowering (spec.md §4.8 driver step 4: "collect from the history all
// private reified variables / variable lists observed during evaluation").
func (b *Builder) harvestAll() error {
	handledLists := map[string]bool{}
	for _, iv := range b.eval.Hist.Vars() {
		if iv.Kind != ilpvar.KindScript {
			continue // base vars are referenced directly, never reified
		}
		if iv.Script.HasIndex {
			key := iv.Script.Module + "::" + iv.Script.Name + "(" + iv.Script.Params + ")"
			if handledLists[key] {
				continue
			}
			handledLists[key] = true
			body, origin, ok := b.eval.Hist.LookupByArgsKey(iv.Script.Module, iv.Script.Name, iv.Script.Params)
			if !ok {
				continue
			}
			for _, elemVar := range b.eval.Hist.VarList(iv.Script.Module, iv.Script.Name) {
				if elemVar.Script.Params != iv.Script.Params {
					continue
				}
				if elemVar.Script.Index >= len(body.List) {
					continue
				}
				if err := b.harvestReified(elemVar, body.List[elemVar.Script.Index], origin); err != nil {
					return err
				}
			}
			continue
		}
		body, origin, ok := b.eval.Hist.LookupByArgsKey(iv.Script.Module, iv.Script.Name, iv.Script.Params)
		if !ok {
			continue
		}
		if err := b.harvestReified(iv, body, origin); err != nil {
			return err
		}
	}
	return nil
}

// reifyPending lowers every harvested reified variable's constraint list
// against its helper (spec.md §4.8 driver step 5), in deterministic,
// name-sorted order (spec.md §9 determinism).
func (b *Builder) reifyPending() error {
	pending := b.pendingReify
	b.pendingReify = nil
	sort.Slice(pending, func(i, j int) bool { return pending[i].Var.String() < pending[j].Var.String() })
	for _, p := range pending {
		desc := Desc{Kind: DescReified, VarName: p.Name, Origin: p.Origin}
		lowered, err := b.lowerer().Reify(p.Constraints, desc, p.Var)
		if err != nil {
			return err
		}
		for _, lc := range lowered {
			b.constraints = append(b.constraints, constraintEntry{C: lc.C, Desc: lc.Desc})
		}
	}
	return nil
}

// Problem is C8's output: the finalised variable-definition map, the
// normalised constraint list with provenance, and the composite objective
// (spec.md §4.8 "Outputs").
type Problem struct {
	Vars                   map[Var]reify.Domain
	Constraints            []ConstraintEntry
	ReificationConstraints []ConstraintEntry
	Objective              *linexpr.LinExpr[Var]
}

// ConstraintEntry pairs a normalised constraint with its provenance.
type ConstraintEntry struct {
	C    *linexpr.Constraint[Var]
	Desc Desc
}

// Build finalises the problem: harvests and reifies every variable touched
// during evaluation, substitutes fixed base variables, drops trivially-true
// constraints, and copies the reification-defining constraints into their
// own list; they also stay in Constraints (spec.md §4.8 "Finalisation
// (build)").
func (b *Builder) Build() (*Problem, error) {
	if err := b.harvestAll(); err != nil {
		return nil, err
	}
	if err := b.reifyPending(); err != nil {
		return nil, err
	}

	fixed := map[Var]float64{}
	for v := range b.varsDesc {
		if v.Kind != KindBase {
			continue
		}
		if val, ok := b.env.ExternVarFix(v.Base); ok {
			fixed[v] = val
		}
	}

	out := make([]ConstraintEntry, 0, len(b.constraints))
	reificationOut := make([]ConstraintEntry, 0)
	for _, ce := range b.constraints {
		c := ce.C
		if len(fixed) > 0 {
			c = reify.Reduce(c, fixed)
		}
		if reify.IsTriviallyTrue(c) {
			continue
		}
		out = append(out, ConstraintEntry{C: c, Desc: ce.Desc})
		if ce.Desc.Kind == DescReified || ce.Desc.Kind == DescObjectify {
			reificationOut = append(reificationOut, ConstraintEntry{C: c, Desc: ce.Desc})
		}
	}

	objective := b.objective.Expr
	if len(fixed) > 0 {
		objective = objective.Reduce(fixed)
	}

	return &Problem{
		Vars:                   b.varsDesc,
		Constraints:            out,
		ReificationConstraints: reificationOut,
		Objective:              objective,
	}, nil
}
