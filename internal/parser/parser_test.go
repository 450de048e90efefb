package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/parser"
)

func parseOneStmt(t *testing.T, src string) ast.Stmt {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), "t.cml")
	p := parser.New(l, "t.cml")
	mod, errs := p.ParseModule("t")
	require.Empty(t, errs, "parse errors for %q", src)
	require.Len(t, mod.Stmts, 1)
	return mod.Stmts[0]
}

func TestParseLetStmtBasic(t *testing.T) {
	stmt := parseOneStmt(t, `let f(x: Int) -> Int = x + 1;`)
	let, ok := stmt.(*ast.LetStmt)
	require.True(t, ok)
	require.Equal(t, "f", let.Name)
	require.False(t, let.Pub)
	require.Len(t, let.Params, 1)
	require.Equal(t, "x", let.Params[0].Name)
	require.Equal(t, "Int", let.Params[0].Type.String())
	require.Equal(t, "Int", let.ReturnType.String())
	require.Equal(t, "(x + 1)", let.Body.String())
}

func TestParseLetStmtPubAndDoc(t *testing.T) {
	src := "## total room capacity\nlet pub capacity(room: String) -> Int = 10;"
	l := lexer.New(string(lexer.Normalize([]byte(src))), "t.cml")
	p := parser.New(l, "t.cml")
	mod, errs := p.ParseModule("t")
	require.Empty(t, errs)
	require.Len(t, mod.Stmts, 1)
	let := mod.Stmts[0].(*ast.LetStmt)
	require.True(t, let.Pub)
	require.Equal(t, "total room capacity", let.Doc)
}

func TestParseLetStmtMultipleParams(t *testing.T) {
	stmt := parseOneStmt(t, `let g(a: Int, b: Bool, c: String) -> Bool = b;`)
	let := stmt.(*ast.LetStmt)
	require.Len(t, let.Params, 3)
	require.Equal(t, "a", let.Params[0].Name)
	require.Equal(t, "b", let.Params[1].Name)
	require.Equal(t, "c", let.Params[2].Name)
}

func TestParseTypeStmtUnion(t *testing.T) {
	stmt := parseOneStmt(t, `type Status = Int | Bool | None;`)
	ts := stmt.(*ast.TypeStmt)
	require.Equal(t, "Status", ts.Name)
	require.Equal(t, "Int | Bool | None", ts.Underlying.String())
}

func TestParseTypeStmtOptionalAndList(t *testing.T) {
	stmt := parseOneStmt(t, `type pub Maybe = ?[Int];`)
	ts := stmt.(*ast.TypeStmt)
	require.True(t, ts.Pub)
	require.Equal(t, "?[Int]", ts.Underlying.String())
}

func TestParseTypeStmtTupleAndStruct(t *testing.T) {
	stmt := parseOneStmt(t, `type Pair = (Int, Bool);`)
	ts := stmt.(*ast.TypeStmt)
	require.Equal(t, "(Int, Bool)", ts.Underlying.String())

	stmt2 := parseOneStmt(t, `type Rec = {x: Int, y: Bool};`)
	ts2 := stmt2.(*ast.TypeStmt)
	require.Equal(t, "{x: Int, y: Bool}", ts2.Underlying.String())
}

func TestParseTypeStmtNamedPath(t *testing.T) {
	stmt := parseOneStmt(t, `type Shift = scheduling::Shift;`)
	ts := stmt.(*ast.TypeStmt)
	require.Equal(t, "scheduling::Shift", ts.Underlying.String())
}

func TestParseEnumUnitVariants(t *testing.T) {
	stmt := parseOneStmt(t, `enum pub Shift { Morning, Afternoon, Evening }`)
	es := stmt.(*ast.EnumStmt)
	require.True(t, es.Pub)
	require.Len(t, es.Variants, 3)
	for _, v := range es.Variants {
		require.Equal(t, ast.VariantUnit, v.Kind)
	}
	require.Equal(t, "Morning", es.Variants[0].Name)
}

func TestParseEnumTupleAndStructVariants(t *testing.T) {
	stmt := parseOneStmt(t, `enum Shape { Circle(Int), Rect{w: Int, h: Int} }`)
	es := stmt.(*ast.EnumStmt)
	require.Len(t, es.Variants, 2)
	require.Equal(t, ast.VariantTuple, es.Variants[0].Kind)
	require.Len(t, es.Variants[0].TupleFields, 1)
	require.Equal(t, ast.VariantStruct, es.Variants[1].Kind)
	require.Len(t, es.Variants[1].StructFields, 2)
}

func TestParseReifyStmtSingle(t *testing.T) {
	stmt := parseOneStmt(t, `reify isOpen as $Open;`)
	rs := stmt.(*ast.ReifyStmt)
	require.Equal(t, "isOpen", rs.Func)
	require.Equal(t, "Open", rs.VarName)
	require.False(t, rs.IsList)
}

func TestParseReifyStmtList(t *testing.T) {
	stmt := parseOneStmt(t, `reify slotsFor as $[Slots];`)
	rs := stmt.(*ast.ReifyStmt)
	require.Equal(t, "slotsFor", rs.Func)
	require.Equal(t, "Slots", rs.VarName)
	require.True(t, rs.IsList)
}

func TestParseImportVariants(t *testing.T) {
	stmt := parseOneStmt(t, `import scheduling;`)
	is := stmt.(*ast.ImportStmt)
	require.Equal(t, []string{"scheduling"}, is.ModulePath)
	require.False(t, is.Wildcard)
	require.Empty(t, is.Alias)

	stmt2 := parseOneStmt(t, `import scheduling as sched;`)
	is2 := stmt2.(*ast.ImportStmt)
	require.Equal(t, "sched", is2.Alias)

	stmt3 := parseOneStmt(t, `import scheduling.*;`)
	is3 := stmt3.(*ast.ImportStmt)
	require.True(t, is3.Wildcard)
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	stmt := parseOneStmt(t, `let f() -> Int = `+src+`;`)
	return stmt.(*ast.LetStmt).Body
}

func TestParseArithmeticPrecedence(t *testing.T) {
	e := parseExpr(t, `1 + 2 * 3`)
	require.Equal(t, "(1 + (2 * 3))", e.String())
}

func TestParseComparisonAndLogic(t *testing.T) {
	e := parseExpr(t, `a < b and c >= d or not e`)
	require.Equal(t, "(((a < b) and (c >= d)) or not e)", e.String())
}

func TestParseNullCoalesce(t *testing.T) {
	e := parseExpr(t, `x ?? y ?? z`)
	require.Equal(t, "(x ?? (y ?? z))", e.String())
}

func TestParseConstraintOperators(t *testing.T) {
	e := parseExpr(t, `x === y`)
	require.Equal(t, "(x === y)", e.String())
	e2 := parseExpr(t, `x + 1 <== y`)
	require.Equal(t, "((x + 1) <== y)", e2.String())
}

func TestParseFieldTupleAndIndexAccess(t *testing.T) {
	e := parseExpr(t, `r.field`)
	require.Equal(t, "r.field", e.String())
	e2 := parseExpr(t, `t.0`)
	require.Equal(t, "t.0", e2.String())
	e3 := parseExpr(t, `xs[0]`)
	require.Equal(t, "xs[0]", e3.String())
	e4 := parseExpr(t, `xs![0]`)
	require.Equal(t, "xs![0]", e4.String())
}

func TestParseChainedPathSegments(t *testing.T) {
	e := parseExpr(t, `r.a.b[0].c`)
	require.Equal(t, "r.a.b[0].c", e.String())
}

func TestParseCasts(t *testing.T) {
	e := parseExpr(t, `x as Int`)
	require.Equal(t, "x as Int", e.String())
	e2 := parseExpr(t, `x cast? Int`)
	require.Equal(t, "x cast? Int", e2.String())
	e3 := parseExpr(t, `x cast! Int`)
	require.Equal(t, "x cast! Int", e3.String())
}

func TestParseIfElse(t *testing.T) {
	e := parseExpr(t, `if a { 1 } else { 2 }`)
	require.Equal(t, "if a { 1 } else { 2 }", e.String())
}

func TestParseLetIn(t *testing.T) {
	e := parseExpr(t, `let y = 1 in y + 1`)
	require.Equal(t, "let y = 1 in (y + 1)", e.String())
}

func TestParseMatchWithTypeAndWhere(t *testing.T) {
	e := parseExpr(t, `match v { x as Int where x > 0 => x, y => 0 }`)
	m, ok := e.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Branches, 2)
	require.Equal(t, "Int", m.Branches[0].AsType.String())
	require.NotNil(t, m.Branches[0].Where)
	require.Nil(t, m.Branches[1].Where)
}

func TestParseMatchScrutineeStructCallNeedsParens(t *testing.T) {
	e := parseExpr(t, `match lookup(Key{id=1}) { x => x, y => 0 }`)
	m, ok := e.(*ast.Match)
	require.True(t, ok)
	call, ok := m.Scrutinee.(*ast.GenericCall)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	require.IsType(t, &ast.StructCall{}, call.Args[0])
}

func TestParseIfCondWithNestedStructCall(t *testing.T) {
	e := parseExpr(t, `if valid(Point{x=1, y=2}) { 1 } else { 2 }`)
	i, ok := e.(*ast.If)
	require.True(t, ok)
	call, ok := i.Cond.(*ast.GenericCall)
	require.True(t, ok)
	require.IsType(t, &ast.StructCall{}, call.Args[0])
}

func TestParseQuantifiers(t *testing.T) {
	e := parseExpr(t, `sum x in xs { x }`)
	s, ok := e.(*ast.Sum)
	require.True(t, ok)
	require.Equal(t, "x", s.Var)
	require.Nil(t, s.Where)

	e2 := parseExpr(t, `forall x in xs where x > 0 { x === 1 }`)
	f, ok := e2.(*ast.Forall)
	require.True(t, ok)
	require.NotNil(t, f.Where)

	e3 := parseExpr(t, `fold x, acc in xs = 0 { acc + x }`)
	fo, ok := e3.(*ast.Fold)
	require.True(t, ok)
	require.False(t, fo.Reversed)

	e4 := parseExpr(t, `rfold x, acc in xs = 0 { acc + x }`)
	fo2, ok := e4.(*ast.Fold)
	require.True(t, ok)
	require.True(t, fo2.Reversed)
}

func TestParseListComprehension(t *testing.T) {
	e := parseExpr(t, `[x for x in xs for y in ys if x > y]`)
	lc, ok := e.(*ast.ListComprehension)
	require.True(t, ok)
	require.Len(t, lc.Clauses, 2)
	require.NotNil(t, lc.Filter)
}

func TestParseListRangeAndEmptyTyped(t *testing.T) {
	e := parseExpr(t, `[1..10]`)
	require.Equal(t, "[1..10]", e.String())
	e2 := parseExpr(t, `[<Int>]`)
	ll, ok := e2.(*ast.ListLiteral)
	require.True(t, ok)
	require.Equal(t, "Int", ll.ElemType.String())
	require.Empty(t, ll.Elems)
}

func TestParseTupleLiteralAndStructLiteral(t *testing.T) {
	e := parseExpr(t, `(1, 2, 3)`)
	require.Equal(t, "(1, 2, 3)", e.String())
	e2 := parseExpr(t, `{x = 1, y = 2}`)
	require.Equal(t, "{x = 1, y = 2}", e2.String())
}

func TestParseStructCallAndGenericCall(t *testing.T) {
	e := parseExpr(t, `scheduling::Shift{start=1, end=2}`)
	sc, ok := e.(*ast.StructCall)
	require.True(t, ok)
	require.Equal(t, "scheduling::Shift", sc.Path.String())

	e2 := parseExpr(t, `Int(42)`)
	gc, ok := e2.(*ast.GenericCall)
	require.True(t, ok)
	require.Equal(t, "Int", gc.Path.String())
	require.Len(t, gc.Args, 1)
}

func TestParseVarCallAndVarListCall(t *testing.T) {
	e := parseExpr(t, `$Capacity("room1")`)
	vc, ok := e.(*ast.VarCall)
	require.True(t, ok)
	require.Nil(t, vc.Module)
	require.Equal(t, "Capacity", vc.Name)

	e2 := parseExpr(t, `scheduling::$Capacity("room1")`)
	vc2, ok := e2.(*ast.VarCall)
	require.True(t, ok)
	require.NotNil(t, vc2.Module)
	require.Equal(t, "scheduling", *vc2.Module)

	e3 := parseExpr(t, `$[Slots]("room1")`)
	vlc, ok := e3.(*ast.VarListCall)
	require.True(t, ok)
	require.Equal(t, "Slots", vlc.Name)
}

func TestParseGlobalList(t *testing.T) {
	e := parseExpr(t, `global::Room`)
	gl, ok := e.(*ast.GlobalList)
	require.True(t, ok)
	require.Equal(t, "Room", gl.Type.String())
}

func TestParsePanic(t *testing.T) {
	e := parseExpr(t, `panic("bad state")`)
	require.Equal(t, `panic("bad state")`, e.String())
}

func TestParseUnaryMinusAndNot(t *testing.T) {
	e := parseExpr(t, `-x + 1`)
	require.Equal(t, "(-x + 1)", e.String())
	e2 := parseExpr(t, `not a and b`)
	require.Equal(t, "(not a and b)", e2.String())
}

func TestParseErrorsAccumulateAcrossStatements(t *testing.T) {
	src := "let f(x: Int) -> Int = ;\nlet g(y: Int) -> Int = y;\n"
	l := lexer.New(string(lexer.Normalize([]byte(src))), "t.cml")
	p := parser.New(l, "t.cml")
	mod, errs := p.ParseModule("t")
	require.NotEmpty(t, errs)
	require.Len(t, mod.Stmts, 1)
	require.Equal(t, "g", mod.Stmts[0].(*ast.LetStmt).Name)
}
