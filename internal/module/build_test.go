package module_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/typesys"
)

func mustParseModule(t *testing.T, name, src string) *ast.Module {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), name+".cml")
	p := parser.New(l, name+".cml")
	mod, errs := p.ParseModule(name)
	require.Empty(t, errs, "parse errors in module %q: %v", name, errs)
	return mod
}

func buildModules(t *testing.T, srcs map[string]string) (*module.GlobalEnv, []*errors.Report, []module.Warning) {
	t.Helper()
	mods := make(map[string]*ast.Module, len(srcs))
	for name, src := range srcs {
		mods[name] = mustParseModule(t, name, src)
	}
	env, errs, warns := module.Build(mods, map[string]module.ObjectFields{}, map[string][]*typesys.Type{})
	return env, errs, warns
}

func TestBuildSimpleModuleHappyPath(t *testing.T) {
	env, errs, _ := buildModules(t, map[string]string{
		"main": `
			type pub Weekday = Int;
			let pub is_weekend(d: Int) -> Bool = d == 6 or d == 0;
			let pub feasible() -> Constraint = (1 === 1);
			reify feasible as $Main;
		`,
	})
	require.Empty(t, errs)

	_, ok := env.CustomTypes[module.TypeKey{Module: "main", Name: "Weekday"}]
	require.True(t, ok)

	fd, ok := env.Functions[module.FuncKey{Module: "main", Name: "is_weekend"}]
	require.True(t, ok)
	require.True(t, fd.Public)
	require.Len(t, fd.Args, 1)

	vd, ok := env.InternalVariables[module.VarKey{Module: "main", Name: "Main"}]
	require.True(t, ok)
	require.Equal(t, "feasible", vd.Func.Name)
}

func TestBuildReifyListVariable(t *testing.T) {
	env, errs, _ := buildModules(t, map[string]string{
		"main": `
			let pub feasible(x: Int) -> Constraint = (x === 1);
			reify feasible as $[Main];
		`,
	})
	require.Empty(t, errs)
	vd, ok := env.VariableLists[module.VarKey{Module: "main", Name: "Main"}]
	require.True(t, ok)
	require.Len(t, vd.Args, 1)
}

func TestBuildDuplicateFunctionRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `
			let f() -> Int = 1;
			let f() -> Int = 2;
		`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD001")
}

func TestBuildDuplicateTypeRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `
			type A = Int;
			type A = Bool;
		`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD002")
}

func TestBuildShadowingPrimitiveRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `type Int = Bool;`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD002")
}

func TestBuildUnguardedRecursiveTypeRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `type A = Int | A;`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD008")
}

func TestBuildGuardedRecursiveTypeAccepted(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `type A = Int | [A];`,
	})
	require.Empty(t, errs)
}

func TestBuildUnguardedRecursiveEnumVariantRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `enum A { Leaf, Node(A::Node) }`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD008")
}

func TestBuildEnumSelfReferenceViaRootAccepted(t *testing.T) {
	// A variant referencing the enclosing enum's root name inside a list
	// ([A]) is guarded by the list, so the unguarded-reference check accepts
	// it like any other guarded recursive reference.
	_, errs, _ := buildModules(t, map[string]string{
		"main": `enum A { Leaf, Node([A]) }`,
	})
	require.Empty(t, errs)
}

func TestBuildReifyWrongReturnTypeRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `
			let f() -> Int = 1;
			reify f as $Name;
		`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD006")
}

func TestBuildDuplicateVariableNameRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `
			let f() -> Constraint = (1 === 1);
			let g() -> Constraint = (2 === 2);
			reify f as $Name;
			reify g as $Name;
		`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD009")
}

func TestBuildWildcardImportExposesPublicSymbols(t *testing.T) {
	env, errs, _ := buildModules(t, map[string]string{
		"lib": `
			type pub Colour = Int;
			let pub shade(c: Int) -> Int = c;
		`,
		"main": `
			import lib.*;
			let pub f(c: Colour) -> Int = shade(c);
		`,
	})
	require.Empty(t, errs)

	fd, ok := env.Functions[module.FuncKey{Module: "main", Name: "f"}]
	require.True(t, ok)
	require.Len(t, fd.Args, 1)
	require.Equal(t, "lib", fd.Args[0].Module)
}

func TestBuildUnknownModuleImportRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"main": `import nope;`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD004")
}

func TestBuildAliasImportConflictRejected(t *testing.T) {
	_, errs, _ := buildModules(t, map[string]string{
		"a":    `type pub Shared = Int;`,
		"b":    `type pub Shared = Bool;`,
		"main": `
			import a as lib;
			import b as lib;
		`,
	})
	require.NotEmpty(t, errs)
	requireHasCode(t, errs, "MOD005")
}

func requireHasCode(t *testing.T, errs []*errors.Report, code string) {
	t.Helper()
	for _, e := range errs {
		if e.Code == code {
			return
		}
	}
	t.Fatalf("expected an error with code %s, got: %v", code, errs)
}
