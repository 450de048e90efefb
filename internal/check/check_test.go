package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/check"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/typesys"
)

func TestCheckAllAcceptsWellTypedBodies(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"arithmetic returns Int", `let f() -> Int = 1 + 2;`},
		{"comparison returns Bool", `let f(x: Int) -> Bool = x < 10;`},
		{"constraint operator coerces Int to LinExpr", `let f() -> Constraint = (1 === 2);`},
		{"if branches unify", `let f(b: Bool) -> Int = if b { 1 } else { 2 };`},
		{"let binding", `let f() -> Int = let x = 1 in x + 1;`},
		{"sum over a list", `let f(xs: [Int]) -> Int = sum v in xs { v };`},
		{"forall over a list", `let f(xs: [Int]) -> Bool = forall v in xs { v > 0 };`},
		{"list comprehension", `let f(xs: [Int]) -> [Int] = [v + 1 for v in xs];`},
		{"function call", `let g(x: Int) -> Int = x; let f() -> Int = g(1);`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err, _ := buildAndCheck(t, tt.src)
			require.NoError(t, err)
		})
	}
}

func TestCheckReturnTypeMismatchRejected(t *testing.T) {
	_, err, _ := buildAndCheck(t, `let f() -> Bool = 1;`)
	requireHasCode(t, err, "CHK001")
}

func TestCheckUnboundIdentifierRejected(t *testing.T) {
	// y resolves through the shared module.ResolvePath routine, which reports
	// an unknown path as MOD003 regardless of whether C4 or C6 is the caller.
	_, err, _ := buildAndCheck(t, `let f() -> Int = y;`)
	requireHasCode(t, err, "MOD003")
}

func TestCheckWrongArgumentCountRejected(t *testing.T) {
	_, err, _ := buildAndCheck(t, `
		let g(x: Int) -> Int = x;
		let f() -> Int = g(1, 2);
	`)
	requireHasCode(t, err, "CHK003")
}

func TestCheckQuantifierOverNonListRejected(t *testing.T) {
	_, err, _ := buildAndCheck(t, `let f(x: Int) -> Int = sum v in x { v };`)
	requireHasCode(t, err, "CHK006")
}

func TestCheckConstraintOperandNotCoercibleRejected(t *testing.T) {
	_, err, _ := buildAndCheck(t, `let f() -> Constraint = (true === 1);`)
	requireHasCode(t, err, "CHK007")
}

func TestCheckFieldAccessOnWrongTypeRejected(t *testing.T) {
	_, err, _ := buildAndCheck(t, `let f(x: Int) -> Int = x.missing;`)
	requireHasCode(t, err, "CHK008")
}

func TestCheckMarksFunctionsAndVariablesUsed(t *testing.T) {
	env, err, warns := buildAndCheck(t, `
		let pub helper() -> Int = 1;
		let pub f() -> Int = helper();
		let pub feasible() -> Constraint = (1 === 1);
		reify feasible as $Main;
		let pub used_var() -> Constraint = ($Main === $Main);
	`)
	require.NoError(t, err)

	fd, ok := env.Functions[module.FuncKey{Module: "main", Name: "helper"}]
	require.True(t, ok)
	require.True(t, fd.Used)

	for _, w := range warns {
		require.NotContains(t, w.Message, "$Main")
	}
}

func buildAndCheck(t *testing.T, src string) (*module.GlobalEnv, error, []module.Warning) {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), "main.cml")
	p := parser.New(l, "main.cml")
	mod, perrs := p.ParseModule("main")
	require.Empty(t, perrs)

	env, berrs, _ := module.Build(map[string]*ast.Module{"main": mod}, map[string]module.ObjectFields{}, map[string][]*typesys.Type{})
	require.Empty(t, berrs)

	err, warns := check.New(env).CheckAll()
	return env, err, warns
}

func requireHasCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Contains(t, err.Error(), code)
}
