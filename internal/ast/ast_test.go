package ast_test

import (
	"testing"

	"github.com/collomatique/colloml/internal/ast"
)

func TestExprStringRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			name: "int literal",
			expr: &ast.IntLit{Value: 42},
			want: "42",
		},
		{
			name: "bool literal",
			expr: &ast.BoolLit{Value: true},
			want: "true",
		},
		{
			name: "none literal",
			expr: &ast.NoneLit{},
			want: "none",
		},
		{
			name: "null coalesce",
			expr: &ast.NullCoalesce{Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}},
			want: "(1 ?? 2)",
		},
		{
			name: "constraint builder",
			expr: &ast.ConstraintExpr{Op: ast.ConstraintEq, Left: &ast.IntLit{Value: 5}, Right: &ast.IntLit{Value: 10}},
			want: "(5 === 10)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.expr.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	p := &ast.Path{Segments: []string{"mod", "foo", "bar"}}
	if got, want := p.String(), "mod::foo::bar"; got != want {
		t.Errorf("Path.String() = %q, want %q", got, want)
	}
}

func TestSpanJoin(t *testing.T) {
	a := ast.Span{Start: 3, End: 7}
	b := ast.Span{Start: 0, End: 5}
	got := a.Join(b)
	want := ast.Span{Start: 0, End: 7}
	if got != want {
		t.Errorf("Join = %+v, want %+v", got, want)
	}
}

func TestListIndexSegmentRendering(t *testing.T) {
	idx := &ast.IntLit{Value: 2}
	fallible := &ast.ListIndexFallibleSeg{Index: idx}
	panicking := &ast.ListIndexPanicSeg{Index: idx}

	if got, want := fallible.String(), "[2]"; got != want {
		t.Errorf("fallible.String() = %q, want %q", got, want)
	}
	if got, want := panicking.String(), "![2]"; got != want {
		t.Errorf("panic.String() = %q, want %q", got, want)
	}
}
