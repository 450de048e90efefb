package typesys

// CoercionContext says whether the current syntactic position allows the
// Int-to-LinExpr promotion (§4.2: "not in strict typing positions"). Strict
// positions include list-literal homogeneity checks before an explicit cast;
// permissive positions include arithmetic with a LinExpr operand, constraint
// operators, and cast targets.
type CoercionContext int

const (
	Strict CoercionContext = iota
	AllowIntToLinExpr
)

// IsSubtypeOf decides T <= U under the given coercion context (§4.2).
func (t *Type) IsSubtypeOf(u *Type, ctx CoercionContext) bool {
	if t.Kind == KindNever {
		return true
	}
	if ctx == AllowIntToLinExpr && t.Kind == KindInt && u.Kind == KindLinExpr {
		return true
	}

	// Unions on the left require every variant to fit.
	if t.Kind == KindUnion {
		for _, v := range t.Variants {
			if !v.IsSubtypeOf(u, ctx) {
				return false
			}
		}
		return true
	}

	// A <= B | C iff A <= B or A <= C.
	if u.Kind == KindUnion {
		for _, v := range u.Variants {
			if t.IsSubtypeOf(v, ctx) {
				return true
			}
		}
		return false
	}

	if t.Kind != u.Kind {
		return false
	}

	switch t.Kind {
	case KindList:
		return t.Elem.IsSubtypeOf(u.Elem, ctx)
	case KindTuple:
		if len(t.Elems) != len(u.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].IsSubtypeOf(u.Elems[i], ctx) {
				return false
			}
		}
		return true
	case KindStruct:
		// Covariant field types; same field set (§4.2: "same names").
		if len(t.Fields) != len(u.Fields) {
			return false
		}
		for name, ft := range t.Fields {
			uft, ok := u.Fields[name]
			if !ok || !ft.IsSubtypeOf(uft, ctx) {
				return false
			}
		}
		return true
	case KindObject:
		return t.ObjectName == u.ObjectName
	case KindCustom:
		if t.Module != u.Module || t.Root != u.Root {
			return false
		}
		// Custom(m,r,Some(v)) <= Custom(m,r,None).
		if u.Variant == "" {
			return true
		}
		return t.Variant == u.Variant
	default:
		// Primitives: invariant, exact kind match already checked above.
		return true
	}
}

// FitsInTyp is the type-level form of the cast?/cast! membership check
// (§4.2): does a value whose concrete type is valueType fit in u? It is
// IsSubtypeOf with Int-to-LinExpr coercion allowed and takes a type, not a
// runtime value; the evaluator's runtime check is eval.Value.FitsInTyp.
func FitsInTyp(valueType *Type, u *Type) bool {
	return valueType.IsSubtypeOf(u, AllowIntToLinExpr)
}
