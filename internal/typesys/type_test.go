package typesys_test

import (
	"testing"

	"github.com/collomatique/colloml/internal/typesys"
)

func TestUnionCollapsesSingleVariant(t *testing.T) {
	u := typesys.Union(typesys.Int)
	if !u.Equal(typesys.Int) {
		t.Errorf("Union(Int) = %s, want Int", u)
	}
}

func TestUnionOfZeroIsNever(t *testing.T) {
	u := typesys.Union()
	if !u.Equal(typesys.Never) {
		t.Errorf("Union() = %s, want Never", u)
	}
}

func TestUnionFlattensAndDedups(t *testing.T) {
	inner := typesys.Union(typesys.Int, typesys.Bool)
	outer := typesys.Union(inner, typesys.Bool, typesys.String)
	if len(outer.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d (%s)", len(outer.Variants), outer)
	}
}

func TestOptionalIsUnionWithNone(t *testing.T) {
	opt := typesys.Optional(typesys.Int)
	if opt.Kind != typesys.KindUnion || len(opt.Variants) != 2 {
		t.Fatalf("Optional(Int) = %s, want a 2-variant union", opt)
	}
}

func TestNeverIsSubtypeOfEverything(t *testing.T) {
	if !typesys.Never.IsSubtypeOf(typesys.Int, typesys.Strict) {
		t.Error("Never should be a subtype of Int")
	}
	if !typesys.Never.IsSubtypeOf(typesys.Union(typesys.Bool, typesys.String), typesys.Strict) {
		t.Error("Never should be a subtype of any union")
	}
}

func TestIntPromotesToLinExprOnlyWhenAllowed(t *testing.T) {
	if typesys.Int.IsSubtypeOf(typesys.LinExpr, typesys.Strict) {
		t.Error("Int <= LinExpr should not hold in strict context")
	}
	if !typesys.Int.IsSubtypeOf(typesys.LinExpr, typesys.AllowIntToLinExpr) {
		t.Error("Int <= LinExpr should hold when coercion is allowed")
	}
}

func TestListCovariance(t *testing.T) {
	a := typesys.List(typesys.Int)
	b := typesys.List(typesys.Union(typesys.Int, typesys.Bool))
	if !a.IsSubtypeOf(b, typesys.Strict) {
		t.Errorf("%s should be a subtype of %s", a, b)
	}
	if b.IsSubtypeOf(a, typesys.Strict) {
		t.Errorf("%s should not be a subtype of %s", b, a)
	}
}

func TestTupleArityMismatchFails(t *testing.T) {
	a := typesys.Tuple(typesys.Int, typesys.Bool)
	b := typesys.Tuple(typesys.Int, typesys.Bool, typesys.String)
	if a.IsSubtypeOf(b, typesys.Strict) {
		t.Error("tuples of different arity should not be subtypes")
	}
}

func TestStructCovarianceRequiresSameFieldSet(t *testing.T) {
	a := typesys.Struct(map[string]*typesys.Type{"x": typesys.Int})
	b := typesys.Struct(map[string]*typesys.Type{"x": typesys.Union(typesys.Int, typesys.Bool)})
	c := typesys.Struct(map[string]*typesys.Type{"x": typesys.Int, "y": typesys.Bool})

	if !a.IsSubtypeOf(b, typesys.Strict) {
		t.Error("covariant field type should subtype")
	}
	if a.IsSubtypeOf(c, typesys.Strict) || c.IsSubtypeOf(a, typesys.Strict) {
		t.Error("different field sets should not be subtypes of one another")
	}
}

func TestCustomVariantSpecialisation(t *testing.T) {
	whole := typesys.Custom("m", "Shift", "")
	variant := typesys.Custom("m", "Shift", "Morning")
	if !variant.IsSubtypeOf(whole, typesys.Strict) {
		t.Error("a specialised variant should subtype its unspecialised root")
	}
	if whole.IsSubtypeOf(variant, typesys.Strict) {
		t.Error("the unspecialised root should not subtype one specific variant")
	}
}

func TestUnionOnLeftRequiresEveryVariant(t *testing.T) {
	u := typesys.Union(typesys.Int, typesys.Bool)
	wide := typesys.Union(typesys.Int, typesys.Bool, typesys.String)
	narrow := typesys.Union(typesys.Int, typesys.String)

	if !u.IsSubtypeOf(wide, typesys.Strict) {
		t.Error("union should subtype a wider union")
	}
	if u.IsSubtypeOf(narrow, typesys.Strict) {
		t.Error("union should not subtype a union missing one of its variants")
	}
}
