package linexpr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/linexpr"
)

// strVar is a minimal Var implementation for testing: a plain string name.
type strVar string

func (s strVar) String() string { return string(s) }

func TestConstantExpr(t *testing.T) {
	e := linexpr.New[strVar](3)
	require.Equal(t, 3.0, e.Constant())
	require.Empty(t, e.Variables())
}

func TestAddSubNeg(t *testing.T) {
	x := linexpr.VarExpr[strVar]("x")
	y := linexpr.VarExpr[strVar]("y")

	sum := x.Add(y).AddConst(1)
	require.Equal(t, 1.0, sum.Constant())
	require.Equal(t, 1.0, sum.Get("x"))
	require.Equal(t, 1.0, sum.Get("y"))

	diff := x.Sub(y)
	require.Equal(t, 1.0, diff.Get("x"))
	require.Equal(t, -1.0, diff.Get("y"))

	neg := x.Neg()
	require.Equal(t, -1.0, neg.Get("x"))
}

func TestMulConstAndClean(t *testing.T) {
	x := linexpr.VarExpr[strVar]("x")
	scaled := x.MulConst(0).AddConst(1e-12)
	cleaned := scaled.Cleaned()
	require.Equal(t, 0.0, cleaned.Constant())
	require.Empty(t, cleaned.Variables())
}

func TestVariablesSortedDeterministically(t *testing.T) {
	e := linexpr.Sum(
		linexpr.VarExpr[strVar]("zeta"),
		linexpr.VarExpr[strVar]("alpha"),
		linexpr.VarExpr[strVar]("mu"),
	)
	require.Equal(t, []strVar{"alpha", "mu", "zeta"}, e.Variables())
}

func TestReduceAndEval(t *testing.T) {
	x := linexpr.VarExpr[strVar]("x")
	y := linexpr.VarExpr[strVar]("y")
	e := x.Add(y.MulConst(2)).AddConst(1)

	partial := e.Reduce(map[strVar]float64{"x": 3})
	require.Equal(t, 4.0, partial.Constant())
	require.Equal(t, 2.0, partial.Get("y"))

	val, rest, ok := e.Eval(map[strVar]float64{"x": 3, "y": 5})
	require.True(t, ok)
	require.Nil(t, rest)
	require.Equal(t, 14.0, val)

	_, rest, ok = e.Eval(map[strVar]float64{"x": 3})
	require.False(t, ok)
	require.NotNil(t, rest)
}

func TestTransmuteRemapsAndMergesCollisions(t *testing.T) {
	e := linexpr.Sum(
		linexpr.VarExpr[strVar]("a1"),
		linexpr.VarExpr[strVar]("a2"),
	)
	// Both a1 and a2 collapse onto "a" under this mapping.
	remapped := linexpr.Transmute(e, func(v strVar) strVar { return "a" })
	require.Equal(t, 2.0, remapped.Get("a"))
}

func TestConstraintConstructors(t *testing.T) {
	x := linexpr.VarExpr[strVar]("x")
	five := linexpr.New[strVar](5)

	leq := linexpr.Leq(x, five)
	require.Equal(t, linexpr.LessThan, leq.Symbol)
	require.Equal(t, -5.0, leq.Constant())

	geq := linexpr.Geq(x, five)
	require.Equal(t, linexpr.LessThan, geq.Symbol)
	require.Equal(t, 5.0, geq.Constant())
	require.Equal(t, -1.0, geq.GetVar("x"))

	eq := linexpr.Eq(x, five)
	require.Equal(t, linexpr.Equals, eq.Symbol)
}

func TestConstraintString(t *testing.T) {
	x := linexpr.VarExpr[strVar]("x")
	c := linexpr.Leq(x, linexpr.New[strVar](5))
	require.Equal(t, "-5 + x <= 0", c.String())
}
