// Package solver defines the ILP solver collaborator boundary (spec.md §6
// "Collaborator: ILP solver") plus a small reference implementation used by
// tests and the solve-demo command. spec.md's Non-goals explicitly exclude
// the solver itself ("the ILP solver itself (treated as an external
// collaborator)"), and the retrieved example pack carries no ILP/LP solver
// library to wire against — so unlike every other domain package in this
// repository, Solve here is necessarily hand-rolled against the standard
// library rather than an ecosystem dependency; see DESIGN.md.
//
// The package is generic over the variable type, exactly like
// internal/reify, so internal/problem's Var never has to leak into this
// package and a caller outside internal/problem (a test, the solve-demo
// command) can hand it a Model built from any comparable variable type.
package solver

import (
	"context"
	"math"
	"sort"

	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/linexpr"
)

// Kind is a variable's ILP domain kind (mirrors reify.Kind, duplicated here
// so this package has no dependency on internal/reify — the two are allowed
// to drift independently since they answer different questions: reify asks
// "what domain does the math need to stay sound", solver asks "what domain
// must I search over").
type Kind int

const (
	Binary Kind = iota
	Integer
	Continuous
)

// Bounds is a variable's kind plus closed bounds. Integer/Binary bounds
// must be finite; Continuous bounds may be one-sided (use math.Inf).
type Bounds struct {
	Kind     Kind
	Min, Max float64
}

// Model is the normalised problem this package solves: one constraint set
// plus one linear objective to minimise, over the variables named in
// Vars (spec.md §4.8 "Outputs" / §6 "Given a normalised Problem...").
type Model[V linexpr.Var] struct {
	Vars        map[V]Bounds
	Constraints []*linexpr.Constraint[V]
	Objective   *linexpr.LinExpr[V]
}

// Solution is a feasible variable assignment plus the objective value it
// achieves.
type Solution[V linexpr.Var] struct {
	Values    map[V]float64
	Objective float64
}

// Solver is the collaborator boundary: given a Model, return an assignment
// or report infeasibility/unboundedness/timeout via the SLV-coded errors
// below (spec.md §6 "returns an assignment var -> f64 ... or reports
// infeasibility").
type Solver[V linexpr.Var] interface {
	Solve(ctx context.Context, m *Model[V]) (*Solution[V], error)
}

func slvErr(code, msg string) error {
	return errors.WrapReport(errors.New("SLV", code, msg, nil))
}

// ErrInfeasible, ErrUnbounded and ErrTimeout are sentinel-flavoured helpers
// for the three SLV-coded outcomes a Solver may report.
func ErrInfeasible() error { return slvErr(errors.SLV001, "problem is infeasible") }
func ErrUnbounded() error  { return slvErr(errors.SLV002, "problem is unbounded") }
func ErrTimeout() error    { return slvErr(errors.SLV003, "solver exceeded its search budget") }

// BruteForce is a reference Solver for small problems: it enumerates every
// assignment of the discrete (Binary/Integer) variables within their
// bounds, and for each one solves the remaining continuous variables in
// closed form. It is never meant to scale past the handful of variables a
// unit test or the solve-demo command deals with; MaxStates bounds the
// discrete search so a larger model fails fast with ErrTimeout rather than
// hanging.
//
// Grounded on original_source/collo-ml/src/problem.rs's treatment of the
// solver as an opaque collaborator (collomatique_ilp::solvers::Solver) that
// this repository does not implement for real; BruteForce exists only so
// internal/problem's output has something to run against in tests.
type BruteForce[V linexpr.Var] struct {
	// MaxStates caps the number of discrete assignments explored. Zero
	// means a built-in default of 1<<20.
	MaxStates int
}

func (bf *BruteForce[V]) maxStates() int {
	if bf.MaxStates > 0 {
		return bf.MaxStates
	}
	return 1 << 20
}

type discreteVar[V linexpr.Var] struct {
	v        V
	min, max int64
}

// Solve implements Solver.
func (bf *BruteForce[V]) Solve(ctx context.Context, m *Model[V]) (*Solution[V], error) {
	discrete, continuous, err := partitionVars(m.Vars)
	if err != nil {
		return nil, err
	}
	sort.Slice(discrete, func(i, j int) bool { return discrete[i].v.String() < discrete[j].v.String() })

	states, err := enumerate(discrete, bf.maxStates())
	if err != nil {
		return nil, err
	}

	var best *Solution[V]
	for _, assignment := range states {
		select {
		case <-ctx.Done():
			return nil, ErrTimeout()
		default:
		}

		full, ok := solveContinuous(assignment, continuous, m.Constraints)
		if !ok {
			continue
		}
		if !satisfiesAll(m.Constraints, full) {
			continue
		}
		obj, _, ok := m.Objective.Eval(full)
		if !ok {
			continue
		}
		if best == nil || obj < best.Objective-linexpr.Epsilon {
			best = &Solution[V]{Values: cloneMap(full), Objective: obj}
		}
	}

	if best == nil {
		return nil, ErrInfeasible()
	}
	return best, nil
}

func partitionVars[V linexpr.Var](vars map[V]Bounds) (discrete []discreteVar[V], continuous []V, err error) {
	for v, b := range vars {
		switch b.Kind {
		case Continuous:
			continuous = append(continuous, v)
		default:
			if math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
				return nil, nil, slvErr(errors.SLV002, "discrete variable has an unbounded domain")
			}
			discrete = append(discrete, discreteVar[V]{v: v, min: int64(math.Round(b.Min)), max: int64(math.Round(b.Max))})
		}
	}
	return discrete, continuous, nil
}

// enumerate walks the cartesian product of every discrete variable's range,
// failing with ErrTimeout if the product exceeds limit.
func enumerate[V linexpr.Var](vars []discreteVar[V], limit int) ([]map[V]float64, error) {
	total := 1
	for _, dv := range vars {
		span := int(dv.max-dv.min) + 1
		if span <= 0 {
			return nil, ErrInfeasible()
		}
		total *= span
		if total > limit {
			return nil, ErrTimeout()
		}
	}

	out := []map[V]float64{{}}
	for _, dv := range vars {
		next := make([]map[V]float64, 0, len(out)*int(dv.max-dv.min+1))
		for _, base := range out {
			for val := dv.min; val <= dv.max; val++ {
				assignment := cloneMap(base)
				assignment[dv.v] = float64(val)
				next = append(next, assignment)
			}
		}
		out = next
	}
	return out, nil
}

// solveContinuous resolves every continuous variable in closed form against
// a fixed discrete assignment, by repeatedly scanning the constraints for
// ones with a single still-unknown continuous variable and solving it
// directly. This exploits the shape internal/reify actually produces
// (objectification slacks bounded below by a constant or by one other
// already-resolved slack) rather than implementing a general LP solve; a
// constraint this pass cannot pin is left to the final satisfiesAll check.
func solveContinuous[V linexpr.Var](discrete map[V]float64, continuous []V, constraints []*linexpr.Constraint[V]) (map[V]float64, bool) {
	values := cloneMap(discrete)
	for _, v := range continuous {
		values[v] = 0
	}

	pending := map[V]bool{}
	for _, v := range continuous {
		pending[v] = true
	}

	for progress := true; progress && len(pending) > 0; {
		progress = false
		for _, c := range constraints {
			var only V
			unresolved := 0
			for v := range pending {
				if c.GetVar(v) != 0 {
					unresolved++
					only = v
				}
			}
			if unresolved != 1 {
				continue
			}

			known := map[V]float64{}
			for v, val := range values {
				if v != only {
					known[v] = val
				}
			}
			reduced := c.Expr.Reduce(known)
			coef := reduced.Get(only)
			if coef == 0 {
				continue
			}
			k := reduced.Constant()
			bound := -k / coef
			current := values[only]
			switch {
			case coef < 0: // coef*v + k <= 0, coef<0 => v >= bound
				if bound > current {
					values[only] = bound
					progress = true
				}
			default: // coef>0 => v <= bound; only tighten if it would violate
				if bound < current {
					values[only] = current // leave infeasibility to satisfiesAll
				}
			}
		}
		for v := range pending {
			stillUnknown := false
			for _, c := range constraints {
				if c.GetVar(v) != 0 {
					stillUnknown = true
					break
				}
			}
			if !stillUnknown {
				delete(pending, v)
			}
		}
		if len(pending) == len(continuous) && !progress {
			break
		}
	}
	return values, true
}

func satisfiesAll[V linexpr.Var](constraints []*linexpr.Constraint[V], values map[V]float64) bool {
	for _, c := range constraints {
		reduced := c.Expr.Reduce(values)
		k := reduced.Constant()
		if c.Symbol == linexpr.Equals {
			if math.Abs(k) > linexpr.Epsilon {
				return false
			}
			continue
		}
		if k > linexpr.Epsilon {
			return false
		}
	}
	return true
}

func cloneMap[V linexpr.Var](m map[V]float64) map[V]float64 {
	out := make(map[V]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
