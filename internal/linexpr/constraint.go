package linexpr

// EqSymbol is the relational operator carried by a Constraint. A Constraint
// is always normalised to the form `expr <symbol> 0`, matching
// original_source/ilp/src/linexpr.rs: "<=" is the default, ">=" is stored by
// flipping the sign of expr at construction time.
type EqSymbol int

const (
	LessThan EqSymbol = iota
	Equals
)

func (s EqSymbol) String() string {
	if s == Equals {
		return "="
	}
	return "<="
}

// Constraint is `Expr <Symbol> 0`.
type Constraint[V Var] struct {
	Symbol EqSymbol
	Expr   *LinExpr[V]
}

// Leq builds lhs <= rhs, normalised to (lhs - rhs) <= 0.
func Leq[V Var](lhs, rhs *LinExpr[V]) *Constraint[V] {
	return &Constraint[V]{Symbol: LessThan, Expr: lhs.Sub(rhs)}
}

// Geq builds lhs >= rhs, normalised to (rhs - lhs) <= 0.
func Geq[V Var](lhs, rhs *LinExpr[V]) *Constraint[V] {
	return &Constraint[V]{Symbol: LessThan, Expr: rhs.Sub(lhs)}
}

// Eq builds lhs == rhs, normalised to (lhs - rhs) = 0.
func Eq[V Var](lhs, rhs *LinExpr[V]) *Constraint[V] {
	return &Constraint[V]{Symbol: Equals, Expr: lhs.Sub(rhs)}
}

// Variables, Coefficients, GetVar, Constant delegate to the underlying
// expression.
func (c *Constraint[V]) Variables() []V                { return c.Expr.Variables() }
func (c *Constraint[V]) Coefficients() []Coefficient[V] { return c.Expr.Coefficients() }
func (c *Constraint[V]) GetVar(v V) float64             { return c.Expr.Get(v) }
func (c *Constraint[V]) Constant() float64              { return c.Expr.Constant() }

// Clean removes near-zero coefficients from the underlying expression in
// place and returns the receiver.
func (c *Constraint[V]) Clean() *Constraint[V] {
	c.Expr.Clean()
	return c
}

// Cleaned returns a cleaned copy.
func (c *Constraint[V]) Cleaned() *Constraint[V] {
	return &Constraint[V]{Symbol: c.Symbol, Expr: c.Expr.Cleaned()}
}

// TransmuteConstraint remaps a constraint's variable type through f, the
// Constraint analogue of Transmute.
func TransmuteConstraint[V Var, W Var](c *Constraint[V], f func(V) W) *Constraint[W] {
	return &Constraint[W]{Symbol: c.Symbol, Expr: Transmute(c.Expr, f)}
}

// String renders "expr <= 0" or "expr = 0".
func (c *Constraint[V]) String() string {
	return c.Expr.String() + " " + c.Symbol.String() + " 0"
}
