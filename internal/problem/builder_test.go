package problem_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/problem"
	"github.com/collomatique/colloml/internal/reify"
	"github.com/collomatique/colloml/internal/typesys"
)

// testEnv is a minimal problem.Environment: one declared base variable X
// and no objects or fixed values, matching internal/eval's own fakeEnv
// pattern.
type testEnv struct {
	domains map[ilpvar.ExternVar]reify.Domain
	fixed   map[ilpvar.ExternVar]float64
}

func (e *testEnv) ObjectsWithType(string) []eval.ObjectHandle                { return nil }
func (e *testEnv) ObjectField(eval.ObjectHandle, string) (*eval.Value, bool) { return nil, false }
func (e *testEnv) ExternVarFix(v ilpvar.ExternVar) (float64, bool) {
	f, ok := e.fixed[v]
	return f, ok
}
func (e *testEnv) BaseVariables() map[ilpvar.ExternVar]reify.Domain { return e.domains }

func buildGlobalEnv(t *testing.T, src string) *module.GlobalEnv {
	t.Helper()
	l := lexer.New(src, "main.cml")
	mod, perrs := parser.New(l, "main.cml").ParseModule("main")
	require.Empty(t, perrs)

	externalVars := map[string][]*typesys.Type{"X": {}}
	genv, berrs, _ := module.Build(map[string]*ast.Module{"main": mod}, map[string]module.ObjectFields{}, externalVars)
	require.Empty(t, berrs)
	return genv
}

func TestNewRejectsNonIntegerBaseVariable(t *testing.T) {
	genv := buildGlobalEnv(t, `let pub c() -> Constraint = ($X() <== 5);`)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Continuous, Min: 0, Max: 10},
	}}
	_, err := problem.New(env, genv)
	require.Error(t, err)
}

func TestAddConstraintsCleansBaseVariableReferences(t *testing.T) {
	genv := buildGlobalEnv(t, `let pub c() -> Constraint = ($X() <== 5);`)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Integer, Min: 0, Max: 10},
	}}
	b, err := problem.New(env, genv)
	require.NoError(t, err)

	require.NoError(t, b.AddConstraints([]problem.Entry{{Module: "main", Func: "c"}}))

	out, err := b.Build()
	require.NoError(t, err)
	require.Len(t, out.Constraints, 1)
	require.Equal(t, problem.DescInScript, out.Constraints[0].Desc.Kind)
	x := problem.BaseVar(ilpvar.ExternVar{Name: "X"})
	require.Equal(t, 1.0, out.Constraints[0].C.GetVar(x))
}

func TestAddConstraintsUnknownFunction(t *testing.T) {
	genv := buildGlobalEnv(t, `let pub c() -> Constraint = ($X() <== 5);`)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Integer, Min: 0, Max: 10},
	}}
	b, err := problem.New(env, genv)
	require.NoError(t, err)

	err = b.AddConstraints([]problem.Entry{{Module: "main", Func: "nope"}})
	require.Error(t, err)
}

func TestBuildReifiesPrivateFunctionReferencedByVarCall(t *testing.T) {
	src := `
		let isSmall() -> Constraint = ($X() <== 5);
		reify isSmall as $Open;
		let pub useOpen() -> Constraint = ($Open() <== 1);
	`
	genv := buildGlobalEnv(t, src)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Integer, Min: 0, Max: 10},
	}}
	b, err := problem.New(env, genv)
	require.NoError(t, err)

	require.NoError(t, b.AddConstraints([]problem.Entry{{Module: "main", Func: "useOpen"}}))

	out, err := b.Build()
	require.NoError(t, err)

	sawReified := false
	for _, ce := range out.Constraints {
		if ce.Desc.Kind == problem.DescReified {
			sawReified = true
		}
	}
	require.True(t, sawReified, "expected at least one reification-defining constraint")

	for v, dom := range out.Vars {
		if v.Kind == problem.KindReified {
			require.True(t, dom.IsBinary())
		}
	}
}

func TestBuildVariableDomainsMatchDeclaredBaseDomains(t *testing.T) {
	genv := buildGlobalEnv(t, `let pub c() -> Constraint = ($X() <== 5);`)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Integer, Min: 0, Max: 10},
	}}
	b, err := problem.New(env, genv)
	require.NoError(t, err)
	require.NoError(t, b.AddConstraints([]problem.Entry{{Module: "main", Func: "c"}}))

	out, err := b.Build()
	require.NoError(t, err)

	x := problem.BaseVar(ilpvar.ExternVar{Name: "X"})
	want := reify.Domain{Kind: reify.Integer, Min: 0, Max: 10}
	if diff := cmp.Diff(want, out.Vars[x]); diff != "" {
		t.Errorf("base variable domain mismatch (-want +got):\n%s", diff)
	}
}

func TestAddObjectiveWeightsAndSense(t *testing.T) {
	src := `let pub obj() -> LinExpr = $X();`
	genv := buildGlobalEnv(t, src)
	env := &testEnv{domains: map[ilpvar.ExternVar]reify.Domain{
		{Name: "X"}: {Kind: reify.Integer, Min: 0, Max: 10},
	}}
	b, err := problem.New(env, genv)
	require.NoError(t, err)

	require.NoError(t, b.AddObjective([]problem.ObjectiveEntry{
		{Entry: problem.Entry{Module: "main", Func: "obj"}, Weight: 2, Maximize: true},
	}))

	out, err := b.Build()
	require.NoError(t, err)
	x := problem.BaseVar(ilpvar.ExternVar{Name: "X"})
	require.Equal(t, -2.0, out.Objective.Get(x))
}
