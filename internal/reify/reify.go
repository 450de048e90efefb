// Package reify implements C9: lowering symbolic Constraint values produced
// by script evaluation into normalised ILP constraints, plus objectification
// of soft constraints and mixed LinExpr/Constraint lists into a weighted
// objective.
//
// Grounded on original_source/collo-ml/src/problem.rs's
// objectify_single_constraint/objectify_constraints/reify_single_constraint/
// reify_constraint. Unlike that file, which bundles reification into the
// problem builder itself (tangled with ProblemVar/Script bookkeeping), this
// package depends only on internal/linexpr and is generic over the variable
// type: internal/problem supplies its own ProblemVar as V and wires the two
// collaborators (domain lookup, helper minting) the lowering math needs.
// That split keeps C9's state "local to C9" (spec.md §4.9) while still
// letting C8 own the variable-definition map the domain lookups read from.
package reify

import (
	"math"

	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/linexpr"
)

// Kind classifies a variable's ILP domain, just enough for the reification
// math to special-case binary variables and require finite bounds elsewhere.
type Kind int

const (
	Binary Kind = iota
	Integer
	Continuous
)

// Domain is a variable's kind plus its closed bounds (possibly unbounded in
// either direction via math.Inf).
type Domain struct {
	Kind     Kind
	Min, Max float64
}

func (d Domain) IsBinary() bool { return d.Kind == Binary }

// IsTriviallyTrue reports whether c has no remaining variables and its
// constant term satisfies its own relation against zero — the "drop
// constraints that become trivially true" check spec.md §4.8 runs after
// substituting fixed base variables.
func IsTriviallyTrue[V linexpr.Var](c *linexpr.Constraint[V]) bool {
	if len(c.Variables()) != 0 {
		return false
	}
	k := c.Expr.Constant()
	if c.Symbol == linexpr.Equals {
		return math.Abs(k) < linexpr.Epsilon
	}
	return k <= linexpr.Epsilon
}

// Reduce substitutes values for the variables they cover and returns the
// resulting constraint, preserving the relational symbol — the Constraint
// analogue of LinExpr.Reduce, which the stdlib linexpr package does not
// expose directly since a Constraint's symbol carries no reduction logic of
// its own.
func Reduce[V linexpr.Var](c *linexpr.Constraint[V], values map[V]float64) *linexpr.Constraint[V] {
	return &linexpr.Constraint[V]{Symbol: c.Symbol, Expr: c.Expr.Reduce(values)}
}

// Big-M epsilon: keeps the two inequalities of a <= reification from
// touching at the boundary (spec.md §4.9 "small ε to keep strict
// inequalities safely separated").
const epsilon = 0.1

// Lowerer holds the collaborators C9 needs from its caller: a way to look up
// an existing variable's domain, and a way to mint a fresh helper variable
// (binary or continuous) that the caller registers into its own
// variable-definition map before returning it.
type Lowerer[V linexpr.Var, D any] struct {
	DomainOf  func(V) (Domain, bool)
	NewHelper func(continuous bool) V
}

// Labeled pairs a lowered constraint with the caller-supplied descriptor to
// attach to it.
type Labeled[V linexpr.Var, D any] struct {
	C    *linexpr.Constraint[V]
	Desc D
}

func rfyErr(code, msg string) error {
	return errors.WrapReport(errors.New("RFY", code, msg, nil))
}

// trivialEval reduces c fully against values (which must cover every
// variable c references) and reports whether the resulting constant
// satisfies c's relation against zero.
func trivialEval[V linexpr.Var](c *linexpr.Constraint[V], values map[V]float64) bool {
	reduced := c.Expr.Reduce(values)
	k := reduced.Constant()
	if c.Symbol == linexpr.Equals {
		return math.Abs(k) < linexpr.Epsilon
	}
	return k <= linexpr.Epsilon
}

// computeRange returns the finite range of e given a domain for every
// variable it mentions; ok is false if any variable is unknown or has an
// infinite bound on the side that matters.
func computeRange[V linexpr.Var](e *linexpr.LinExpr[V], domainOf func(V) (Domain, bool)) (min, max float64, ok bool) {
	min, max = e.Constant(), e.Constant()
	for _, t := range e.Coefficients() {
		d, known := domainOf(t.Var)
		if !known {
			return 0, 0, false
		}
		lo, hi := d.Min, d.Max
		if t.Coef >= 0 {
			min += t.Coef * lo
			max += t.Coef * hi
		} else {
			min += t.Coef * hi
			max += t.Coef * lo
		}
	}
	if math.IsInf(min, -1) || math.IsInf(max, 1) || math.IsNaN(min) || math.IsNaN(max) {
		return min, max, false
	}
	return min, max, true
}

// ReifySingle reifies one constraint against helper v (spec.md §4.9
// "single-constraint reification"): v becomes the binary truth value of c.
func (l *Lowerer[V, D]) ReifySingle(c *linexpr.Constraint[V], desc D, v V) ([]Labeled[V, D], error) {
	vars := c.Variables()

	if len(vars) == 0 {
		target := float64(0)
		if trivialEval(c, map[V]float64{}) {
			target = 1
		}
		eq := linexpr.Eq(linexpr.VarExpr(v), linexpr.New[V](target))
		return []Labeled[V, D]{{C: eq, Desc: desc}}, nil
	}

	if len(vars) == 1 {
		single := vars[0]
		if dom, ok := l.DomainOf(single); ok && dom.IsBinary() {
			fTrue := trivialEval(c, map[V]float64{single: 1})
			fFalse := trivialEval(c, map[V]float64{single: 0})
			orig := linexpr.VarExpr(single)
			vexpr := linexpr.VarExpr(v)
			one := linexpr.New[V](1)
			zero := linexpr.New[V](0)
			var target *linexpr.LinExpr[V]
			switch {
			case fTrue && fFalse:
				target = one
			case !fTrue && !fFalse:
				target = zero
			case fTrue && !fFalse:
				target = orig
			default:
				target = one.Sub(orig)
			}
			return []Labeled[V, D]{{C: linexpr.Eq(vexpr, target), Desc: desc}}, nil
		}
	}

	switch c.Symbol {
	case linexpr.LessThan:
		min, max, ok := computeRange(c.Expr, l.DomainOf)
		if !ok {
			return nil, rfyErr(errors.RFY001, "linear expression has no finite range for Big-M reification")
		}
		one := linexpr.New[V](1)
		eps := linexpr.New[V](epsilon)
		vexpr := linexpr.VarExpr(v)
		rhs1 := one.Sub(vexpr).MulConst(max).Add(eps)
		rhs2 := vexpr.MulConst(min - 1).AddConst(1).Sub(eps)
		return []Labeled[V, D]{
			{C: linexpr.Leq(c.Expr, rhs1), Desc: desc},
			{C: linexpr.Geq(c.Expr, rhs2), Desc: desc},
		}, nil

	default: // Equals
		v1 := l.NewHelper(false)
		v2 := l.NewHelper(false)
		zero := linexpr.New[V](0)
		c1 := linexpr.Leq(c.Expr, zero)
		c2 := linexpr.Geq(c.Expr, zero)
		out, err := l.ReifySingle(c1, desc, v1)
		if err != nil {
			return nil, err
		}
		more, err := l.ReifySingle(c2, desc, v2)
		if err != nil {
			return nil, err
		}
		out = append(out, more...)

		vexpr := linexpr.VarExpr(v)
		e1 := linexpr.VarExpr(v1)
		e2 := linexpr.VarExpr(v2)
		out = append(out,
			Labeled[V, D]{C: linexpr.Leq(vexpr, e1), Desc: desc},
			Labeled[V, D]{C: linexpr.Leq(vexpr, e2), Desc: desc},
			Labeled[V, D]{C: linexpr.Leq(e1.Add(e2), vexpr.AddConst(1)), Desc: desc},
		)
		return out, nil
	}
}

// Reify reifies a conjunction of constraints against a single helper v
// (spec.md §4.9 "multi-constraint reification (AND)").
func (l *Lowerer[V, D]) Reify(constraints []*linexpr.Constraint[V], desc D, v V) ([]Labeled[V, D], error) {
	switch len(constraints) {
	case 0:
		return []Labeled[V, D]{{C: linexpr.Eq(linexpr.VarExpr(v), linexpr.New[V](1)), Desc: desc}}, nil
	case 1:
		return l.ReifySingle(constraints[0], desc, v)
	}

	var out []Labeled[V, D]
	helpers := make([]V, 0, len(constraints))
	for _, c := range constraints {
		h := l.NewHelper(false)
		helpers = append(helpers, h)
		lowered, err := l.ReifySingle(c, desc, h)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}

	vexpr := linexpr.VarExpr(v)
	sum := linexpr.New[V](0)
	for _, h := range helpers {
		he := linexpr.VarExpr(h)
		out = append(out, Labeled[V, D]{C: linexpr.Leq(vexpr, he), Desc: desc})
		sum = sum.Add(he)
	}
	rhs := vexpr.AddConst(float64(len(helpers) - 1))
	out = append(out, Labeled[V, D]{C: linexpr.Leq(sum, rhs), Desc: desc})
	return out, nil
}

// Objective is a single-term linear objective: a LinExpr plus the sense it
// is combined under (Minimize is the ambient convention; Maximize terms are
// pre-negated by the caller before being summed here, matching
// ObjectiveSense flipping in spec.md §4.8).
type Objective[V linexpr.Var] struct {
	Expr *linexpr.LinExpr[V]
}

func NewObjective[V linexpr.Var]() Objective[V] { return Objective[V]{Expr: linexpr.New[V](0)} }

func (o Objective[V]) Add(e *linexpr.LinExpr[V]) Objective[V] {
	return Objective[V]{Expr: o.Expr.Add(e)}
}

func (o Objective[V]) Scale(k float64) Objective[V] {
	return Objective[V]{Expr: o.Expr.MulConst(k)}
}

// ObjectifySingle introduces a continuous non-negative slack u with
// lhs <= u (and, for equalities, lhs >= -u), contributing u to the
// objective (spec.md §4.9 "single-constraint objectification").
func (l *Lowerer[V, D]) ObjectifySingle(c *linexpr.Constraint[V], desc D) (Objective[V], []Labeled[V, D]) {
	u := l.NewHelper(true)
	uexpr := linexpr.VarExpr(u)
	lhs := c.Expr
	constraints := []Labeled[V, D]{{C: linexpr.Leq(lhs, uexpr), Desc: desc}}
	if c.Symbol == linexpr.Equals {
		constraints = append(constraints, Labeled[V, D]{C: linexpr.Geq(lhs, uexpr.Neg()), Desc: desc})
	}
	return Objective[V]{Expr: uexpr}, constraints
}

// ObjectifyMany lowers a list of constraints treated as a combined soft
// objective (spec.md §4.9 "objective composition", the k>1 branch): a
// shared continuous upper bound weighted by k, one slack per constraint
// bounded by it, scaled so the global contributed weight is 1.
func (l *Lowerer[V, D]) ObjectifyMany(constraints []*linexpr.Constraint[V], desc D) (Objective[V], []Labeled[V, D]) {
	if len(constraints) == 0 {
		return NewObjective[V](), nil
	}
	if len(constraints) == 1 {
		return l.ObjectifySingle(constraints[0], desc)
	}

	k := float64(len(constraints))
	global := l.NewHelper(true)
	globalExpr := linexpr.VarExpr(global)
	obj := Objective[V]{Expr: globalExpr.MulConst(k)}
	var out []Labeled[V, D]
	for _, c := range constraints {
		u := l.NewHelper(true)
		uexpr := linexpr.VarExpr(u)
		out = append(out, Labeled[V, D]{C: linexpr.Leq(uexpr, globalExpr), Desc: desc})
		cObj, cConstraints := l.ObjectifySingle(c, desc)
		obj = obj.Add(cObj.Expr)
		out = append(out, cConstraints...)
	}
	obj = obj.Scale(0.5 / k)
	return obj, out
}
