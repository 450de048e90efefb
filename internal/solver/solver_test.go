package solver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/linexpr"
	"github.com/collomatique/colloml/internal/solver"
)

type strVar string

func (s strVar) String() string { return string(s) }

func TestBruteForcePicksBestDiscreteAssignment(t *testing.T) {
	a, b := strVar("a"), strVar("b")
	sum := linexpr.VarExpr(a).Add(linexpr.VarExpr(b))
	atMostOne := linexpr.Leq(sum, linexpr.New[strVar](1))
	// minimise -2a - 3b subject to a+b<=1, a,b in {0,1}: best is b=1, a=0.
	objective := linexpr.VarExpr(a).MulConst(-2).Add(linexpr.VarExpr(b).MulConst(-3))

	m := &solver.Model[strVar]{
		Vars: map[strVar]solver.Bounds{
			a: {Kind: solver.Binary, Min: 0, Max: 1},
			b: {Kind: solver.Binary, Min: 0, Max: 1},
		},
		Constraints: []*linexpr.Constraint[strVar]{atMostOne},
		Objective:   objective,
	}

	bf := &solver.BruteForce[strVar]{}
	sol, err := bf.Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, -3.0, sol.Objective)
	require.Equal(t, 0.0, sol.Values[a])
	require.Equal(t, 1.0, sol.Values[b])
}

func TestBruteForceInfeasible(t *testing.T) {
	a := strVar("a")
	// a <= -1 with a in {0,1} is infeasible.
	c := linexpr.Leq(linexpr.VarExpr[strVar](a), linexpr.New[strVar](-1))
	m := &solver.Model[strVar]{
		Vars:        map[strVar]solver.Bounds{a: {Kind: solver.Binary, Min: 0, Max: 1}},
		Constraints: []*linexpr.Constraint[strVar]{c},
		Objective:   linexpr.VarExpr[strVar](a),
	}

	bf := &solver.BruteForce[strVar]{}
	_, err := bf.Solve(context.Background(), m)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.SLV001, rep.Code)
}

func TestBruteForceTimeoutOnLargeSearch(t *testing.T) {
	vars := map[strVar]solver.Bounds{}
	for i := 0; i < 30; i++ {
		vars[strVar(string(rune('a'+i)))] = solver.Bounds{Kind: solver.Integer, Min: 0, Max: 1000}
	}
	m := &solver.Model[strVar]{Vars: vars, Objective: linexpr.New[strVar](0)}

	bf := &solver.BruteForce[strVar]{MaxStates: 1000}
	_, err := bf.Solve(context.Background(), m)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.SLV003, rep.Code)
}

func TestBruteForceSolvesContinuousSlack(t *testing.T) {
	x, s := strVar("x"), strVar("s")
	// s - x <= 0, s continuous >= 0, x binary: minimising s forces s == x.
	c := linexpr.Leq(linexpr.VarExpr(x).Neg().Add(linexpr.VarExpr(s)), linexpr.New[strVar](0))
	m := &solver.Model[strVar]{
		Vars: map[strVar]solver.Bounds{
			x: {Kind: solver.Binary, Min: 0, Max: 1},
			s: {Kind: solver.Continuous, Min: 0, Max: 1e9},
		},
		Constraints: []*linexpr.Constraint[strVar]{c},
		Objective:   linexpr.VarExpr[strVar](s),
	}

	bf := &solver.BruteForce[strVar]{}
	sol, err := bf.Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, 0.0, sol.Values[x])
	require.InDelta(t, 0.0, sol.Values[s], linexpr.Epsilon)
}
