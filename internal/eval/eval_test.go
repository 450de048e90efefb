package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/typesys"
)

// fakeEnv is a minimal Environment stub: no objects, no fixed externs.
type fakeEnv struct{}

func (fakeEnv) ObjectsWithType(string) []eval.ObjectHandle                { return nil }
func (fakeEnv) ObjectField(eval.ObjectHandle, string) (*eval.Value, bool) { return nil, false }
func (fakeEnv) ExternVarFix(ilpvar.ExternVar) (float64, bool)             { return 0, false }

func buildEnv(t *testing.T, src string) *module.GlobalEnv {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), "main.cml")
	p := parser.New(l, "main.cml")
	mod, perrs := p.ParseModule("main")
	require.Empty(t, perrs)

	env, berrs, _ := module.Build(map[string]*ast.Module{"main": mod}, map[string]module.ObjectFields{}, map[string][]*typesys.Type{})
	require.Empty(t, berrs)
	return env
}

func runFunc(t *testing.T, src, fn string, args ...*eval.Value) (*eval.Value, error) {
	t.Helper()
	env := buildEnv(t, src)
	ev := eval.New(env, fakeEnv{})
	return ev.CallEntryPoint("main", fn, args)
}

func TestEvalArithmetic(t *testing.T) {
	v, err := runFunc(t, `let f() -> Int = 1 + 2 * 3;`, "f")
	require.NoError(t, err)
	require.Equal(t, int64(7), v.Int)
}

func TestEvalIfBranch(t *testing.T) {
	v, err := runFunc(t, `let f(b: Bool) -> Int = if b { 1 } else { 2 };`, "f", eval.BoolValue(false))
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int)
}

func TestEvalSumOverInts(t *testing.T) {
	v, err := runFunc(t, `let f() -> Int = sum v in [1, 2, 3] { v };`, "f")
	require.NoError(t, err)
	require.Equal(t, int64(6), v.Int)
}

func TestEvalSumOverEmptyListCoercesToZero(t *testing.T) {
	v, err := runFunc(t, `let f() -> LinExpr = sum v in [<Int>] { v };`, "f")
	require.NoError(t, err)
	require.Equal(t, eval.VLinExpr, v.Kind)
	require.Equal(t, float64(0), v.Lin.Constant())
}

func TestEvalForallOverEmptyListIsVacuouslyTrue(t *testing.T) {
	v, err := runFunc(t, `let f() -> Bool = forall v in [<Int>] { v > 0 };`, "f")
	require.NoError(t, err)
	require.True(t, v.AsBool())
}

func TestEvalForallRejectsAnyFalseElement(t *testing.T) {
	v, err := runFunc(t, `let f() -> Bool = forall v in [1, -1] { v > 0 };`, "f")
	require.NoError(t, err)
	require.False(t, v.AsBool())
}

func TestEvalConstraintExprBuildsLeq(t *testing.T) {
	v, err := runFunc(t, `let f() -> Constraint = (1 <== 2);`, "f")
	require.NoError(t, err)
	require.Equal(t, eval.VConstraint, v.Kind)
	require.Len(t, v.Constr, 1)
	require.Equal(t, "-1 <= 0", v.Constr[0].C.String())
}

func TestEvalCastPanicFailureRaisesPanicError(t *testing.T) {
	_, err := runFunc(t, `
		let f(x: Int | Bool) -> Int = x cast! Int;
	`, "f", eval.BoolValue(true))
	require.Error(t, err)
	var pe *eval.PanicError
	require.ErrorAs(t, err, &pe)
}

func TestEvalCastFallibleReturnsNoneOnMismatch(t *testing.T) {
	v, err := runFunc(t, `
		let f(x: Int | Bool) -> ?Int = x cast? Int;
	`, "f", eval.BoolValue(true))
	require.NoError(t, err)
	require.Equal(t, eval.VNone, v.Kind)
}

func TestEvalListIndexPanicOnOutOfBounds(t *testing.T) {
	_, err := runFunc(t, `let f() -> Int = [1, 2, 3]![10];`, "f")
	require.Error(t, err)
	var pe *eval.PanicError
	require.ErrorAs(t, err, &pe)
}

func TestEvalListIndexFallibleReturnsNone(t *testing.T) {
	v, err := runFunc(t, `let f() -> ?Int = [1, 2, 3][10];`, "f")
	require.NoError(t, err)
	require.Equal(t, eval.VNone, v.Kind)
}

func TestEvalFunctionCallIsMemoizedAcrossCallers(t *testing.T) {
	env := buildEnv(t, `
		let helper(x: Int) -> Int = x + 1;
		let f() -> Int = helper(1) + helper(1);
	`)
	ev := eval.New(env, fakeEnv{})
	v, err := ev.CallEntryPoint("main", "f", nil)
	require.NoError(t, err)
	require.Equal(t, int64(4), v.Int)
	_, _, cached := ev.Hist.Lookup("main", "helper", []*eval.Value{eval.IntValue(1)})
	require.True(t, cached)
}
