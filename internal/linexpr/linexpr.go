// Package linexpr implements the linear-expression algebra (§4.5, C5):
// affine combinations of an abstract variable type V plus a constant, and
// the inequality/equality constraints built from them.
//
// This is a direct port of the teacher-independent reference
// implementation at original_source/ilp/src/linexpr.rs: a BTreeMap-backed
// affine map there becomes a Go map here, with a separately recomputed
// sorted-key slice standing in for BTreeMap's built-in ordering so that
// every iteration over coefficients remains deterministic (§9).
package linexpr

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Var is the constraint a LinExpr's variable type must satisfy: it must be
// usable as a map key, and it must render deterministically so that
// coefficient iteration order does not depend on Go's randomised map
// iteration.
type Var interface {
	comparable
	String() string
}

// Epsilon below which a coefficient or constant is treated as zero by
// Clean. Mirrors the tolerance used throughout reification (§4.9).
const Epsilon = 1e-9

// LinExpr is an affine combination: constant + sum(coef_i * var_i).
// The zero value is the constant expression 0.
type LinExpr[V Var] struct {
	coefs    map[V]float64
	constant float64
}

// New builds the constant expression c.
func New[V Var](c float64) *LinExpr[V] {
	return &LinExpr[V]{coefs: make(map[V]float64), constant: c}
}

// VarExpr builds the single-variable expression 1*v.
func VarExpr[V Var](v V) *LinExpr[V] {
	e := New[V](0)
	e.coefs[v] = 1
	return e
}

// Constant returns the constant term.
func (e *LinExpr[V]) Constant() float64 { return e.constant }

// Get returns the coefficient of v (0 if v does not appear).
func (e *LinExpr[V]) Get(v V) float64 { return e.coefs[v] }

// Variables returns the set of variables with a nonzero coefficient, sorted
// by their String() form for determinism.
func (e *LinExpr[V]) Variables() []V {
	out := make([]V, 0, len(e.coefs))
	for v := range e.coefs {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Coefficient pairs a variable with its coefficient, as yielded by
// Coefficients in deterministic order.
type Coefficient[V Var] struct {
	Var  V
	Coef float64
}

// Coefficients returns (var, coef) pairs in deterministic, key-sorted order.
func (e *LinExpr[V]) Coefficients() []Coefficient[V] {
	vars := e.Variables()
	out := make([]Coefficient[V], len(vars))
	for i, v := range vars {
		out[i] = Coefficient[V]{Var: v, Coef: e.coefs[v]}
	}
	return out
}

// clone makes a deep-enough copy (coefs map is copied, values are floats).
func (e *LinExpr[V]) clone() *LinExpr[V] {
	c := &LinExpr[V]{coefs: make(map[V]float64, len(e.coefs)), constant: e.constant}
	for v, k := range e.coefs {
		c.coefs[v] = k
	}
	return c
}

// Clean removes coefficients that are within Epsilon of zero, in place, and
// returns the receiver for chaining.
func (e *LinExpr[V]) Clean() *LinExpr[V] {
	for v, k := range e.coefs {
		if math.Abs(k) < Epsilon {
			delete(e.coefs, v)
		}
	}
	if math.Abs(e.constant) < Epsilon {
		e.constant = 0
	}
	return e
}

// Cleaned returns a cleaned copy, leaving the receiver untouched.
func (e *LinExpr[V]) Cleaned() *LinExpr[V] { return e.clone().Clean() }

// Add returns e + o.
func (e *LinExpr[V]) Add(o *LinExpr[V]) *LinExpr[V] {
	r := e.clone()
	r.constant += o.constant
	for v, k := range o.coefs {
		r.coefs[v] += k
	}
	return r
}

// Sub returns e - o.
func (e *LinExpr[V]) Sub(o *LinExpr[V]) *LinExpr[V] {
	r := e.clone()
	r.constant -= o.constant
	for v, k := range o.coefs {
		r.coefs[v] -= k
	}
	return r
}

// Neg returns -e.
func (e *LinExpr[V]) Neg() *LinExpr[V] {
	r := New[V](-e.constant)
	for v, k := range e.coefs {
		r.coefs[v] = -k
	}
	return r
}

// MulConst returns e * k.
func (e *LinExpr[V]) MulConst(k float64) *LinExpr[V] {
	r := New[V](e.constant * k)
	for v, c := range e.coefs {
		r.coefs[v] = c * k
	}
	return r
}

// AddConst returns e + k.
func (e *LinExpr[V]) AddConst(k float64) *LinExpr[V] {
	r := e.clone()
	r.constant += k
	return r
}

// Sum adds a variadic list of expressions together, starting from 0.
func Sum[V Var](exprs ...*LinExpr[V]) *LinExpr[V] {
	r := New[V](0)
	for _, e := range exprs {
		r = r.Add(e)
	}
	return r
}

// Reduce performs a partial evaluation: every variable present in values is
// substituted by its numeric value and folded into the constant; variables
// absent from values are left untouched. The receiver is not modified.
func (e *LinExpr[V]) Reduce(values map[V]float64) *LinExpr[V] {
	r := New[V](e.constant)
	for v, k := range e.coefs {
		if val, ok := values[v]; ok {
			r.constant += k * val
		} else {
			r.coefs[v] = k
		}
	}
	return r
}

// Eval fully evaluates e given a value for every variable it references. ok
// is false (and the returned LinExpr is the partial reduction) if values is
// missing one or more of e's variables.
func (e *LinExpr[V]) Eval(values map[V]float64) (result float64, partial *LinExpr[V], ok bool) {
	r := e.Reduce(values)
	if len(r.coefs) == 0 {
		return r.constant, nil, true
	}
	return 0, r, false
}

// Transmute remaps every variable through f, producing an expression over a
// (possibly different) variable type W. Coefficients for variables that
// collapse onto the same W value are summed.
//
// Go methods cannot introduce their own type parameters, so this is a
// top-level function rather than a method on LinExpr, unlike the Rust
// original.
func Transmute[V Var, W Var](e *LinExpr[V], f func(V) W) *LinExpr[W] {
	r := New[W](e.constant)
	for v, k := range e.coefs {
		w := f(v)
		r.coefs[w] += k
	}
	return r
}

// String renders e as "c0 + c1*v1 + c2*v2 + ...", matching the Rust
// Display impl closely enough for diagnostics and golden tests.
func (e *LinExpr[V]) String() string {
	terms := e.Coefficients()
	if len(terms) == 0 {
		return formatFloat(e.constant)
	}
	var b strings.Builder
	first := true
	if math.Abs(e.constant) >= Epsilon {
		b.WriteString(formatFloat(e.constant))
		first = false
	}
	for _, t := range terms {
		if !first {
			if t.Coef < 0 {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
		} else if t.Coef < 0 {
			b.WriteString("-")
		}
		coef := math.Abs(t.Coef)
		if math.Abs(coef-1) >= Epsilon {
			b.WriteString(formatFloat(coef))
			b.WriteString("*")
		}
		b.WriteString(t.Var.String())
		first = false
	}
	return b.String()
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
