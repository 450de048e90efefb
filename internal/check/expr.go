package check

import (
	"fmt"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/typesys"
)

func chkErr(code, msg string, sp ast.Span) error {
	return errors.WrapReport(errors.New("CHK", code, msg, &sp))
}

// checkExpr infers expr's type within the current module, given the local
// bindings visible so far, returning the first CHK### mismatch it finds.
func (c *Checker) checkExpr(mod string, local *localEnv, expr ast.Expr) (*typesys.Type, error) {
	switch e := expr.(type) {
	case *ast.NoneLit:
		return typesys.None, nil
	case *ast.BoolLit:
		return typesys.Bool, nil
	case *ast.IntLit:
		return typesys.Int, nil
	case *ast.StringLit:
		return typesys.String, nil

	case *ast.IdentPath:
		return c.checkIdentPath(mod, local, e)

	case *ast.PathExpr:
		return c.checkPathExpr(mod, local, e)

	case *ast.ListLiteral:
		return c.checkListLiteral(mod, local, e)

	case *ast.ListRange:
		if _, err := c.expect(mod, local, e.Start, typesys.Int, "start of list range"); err != nil {
			return nil, err
		}
		if _, err := c.expect(mod, local, e.End, typesys.Int, "end of list range"); err != nil {
			return nil, err
		}
		return typesys.List(typesys.Int), nil

	case *ast.TupleLiteral:
		elems := make([]*typesys.Type, len(e.Elems))
		for i, el := range e.Elems {
			t, err := c.checkExpr(mod, local, el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return typesys.Tuple(elems...), nil

	case *ast.StructLiteral:
		fields := map[string]*typesys.Type{}
		for _, f := range e.Fields {
			t, err := c.checkExpr(mod, local, f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = t
		}
		return typesys.Struct(fields), nil

	case *ast.StructCall:
		return c.checkStructCall(mod, local, e)

	case *ast.ExplicitType:
		t, err := c.checkExpr(mod, local, e.Value)
		if err != nil {
			return nil, err
		}
		want, rerr := c.env.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		if !t.IsSubtypeOf(want, typesys.AllowIntToLinExpr) {
			return nil, chkErr(errors.CHK001, fmt.Sprintf("expression has type %s, annotated as %s", t, want), e.Sp)
		}
		return want, nil

	case *ast.CastFallible:
		if _, err := c.checkExpr(mod, local, e.Value); err != nil {
			return nil, err
		}
		target, rerr := c.env.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		return typesys.Optional(target), nil

	case *ast.CastPanic:
		if _, err := c.checkExpr(mod, local, e.Value); err != nil {
			return nil, err
		}
		target, rerr := c.env.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		return target, nil

	case *ast.If:
		if _, err := c.expect(mod, local, e.Cond, typesys.Bool, "if condition"); err != nil {
			return nil, err
		}
		thenT, err := c.checkExpr(mod, local, e.Then)
		if err != nil {
			return nil, err
		}
		elseT, err := c.checkExpr(mod, local, e.Else)
		if err != nil {
			return nil, err
		}
		if thenT.IsSubtypeOf(elseT, typesys.AllowIntToLinExpr) {
			return elseT, nil
		}
		if elseT.IsSubtypeOf(thenT, typesys.AllowIntToLinExpr) {
			return thenT, nil
		}
		return typesys.Union(thenT, elseT), nil

	case *ast.Match:
		return c.checkMatch(mod, local, e)

	case *ast.Sum:
		return c.checkSum(mod, local, e)

	case *ast.Forall:
		return c.checkForall(mod, local, e)

	case *ast.Fold:
		return c.checkFold(mod, local, e)

	case *ast.ListComprehension:
		return c.checkListComprehension(mod, local, e)

	case *ast.Let:
		valT, err := c.checkExpr(mod, local, e.Value)
		if err != nil {
			return nil, err
		}
		local.bind(e.Name, valT)
		local.pushScope()
		defer local.popScope()
		return c.checkExpr(mod, local, e.Body)

	case *ast.BinaryExpr:
		return c.checkBinary(mod, local, e)

	case *ast.UnaryExpr:
		t, err := c.checkExpr(mod, local, e.Value)
		if err != nil {
			return nil, err
		}
		if e.Negate {
			if !t.IsInt() && !t.IsLinExpr() {
				return nil, chkErr(errors.CHK001, fmt.Sprintf("unary - expects Int or LinExpr, found %s", t), e.Sp)
			}
			return t, nil
		}
		if !t.IsBool() {
			return nil, chkErr(errors.CHK001, fmt.Sprintf("not expects Bool, found %s", t), e.Sp)
		}
		return typesys.Bool, nil

	case *ast.NullCoalesce:
		leftT, err := c.checkExpr(mod, local, e.Left)
		if err != nil {
			return nil, err
		}
		rightT, err := c.checkExpr(mod, local, e.Right)
		if err != nil {
			return nil, err
		}
		return typesys.Union(stripNone(leftT), rightT), nil

	case *ast.ConstraintExpr:
		if _, err := c.expectCoercible(mod, local, e.Left, typesys.LinExpr, "constraint operand"); err != nil {
			return nil, err
		}
		if _, err := c.expectCoercible(mod, local, e.Right, typesys.LinExpr, "constraint operand"); err != nil {
			return nil, err
		}
		return typesys.Constraint, nil

	case *ast.Panic:
		if _, err := c.checkExpr(mod, local, e.Value); err != nil {
			return nil, err
		}
		return typesys.Never, nil

	case *ast.VarCall:
		modName := ""
		if e.Module != nil {
			modName = *e.Module
		}
		return c.checkVarCall(mod, local, modName, e.Name, e.Args, e.Sp, false)

	case *ast.VarListCall:
		modName := ""
		if e.Module != nil {
			modName = *e.Module
		}
		return c.checkVarCall(mod, local, modName, e.Name, e.Args, e.Sp, true)

	case *ast.GenericCall:
		return c.checkGenericCall(mod, local, e)

	case *ast.GlobalList:
		t, rerr := c.env.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		return typesys.List(t), nil

	default:
		sp := expr.Span()
		return nil, chkErr(errors.CHK001, fmt.Sprintf("unsupported expression %T", expr), sp)
	}
}

func (c *Checker) expect(mod string, local *localEnv, expr ast.Expr, want *typesys.Type, what string) (*typesys.Type, error) {
	t, err := c.checkExpr(mod, local, expr)
	if err != nil {
		return nil, err
	}
	if !t.IsSubtypeOf(want, typesys.Strict) {
		return nil, chkErr(errors.CHK001, fmt.Sprintf("%s expects %s, found %s", what, want, t), expr.Span())
	}
	return t, nil
}

func (c *Checker) expectCoercible(mod string, local *localEnv, expr ast.Expr, want *typesys.Type, what string) (*typesys.Type, error) {
	t, err := c.checkExpr(mod, local, expr)
	if err != nil {
		return nil, err
	}
	if !t.IsSubtypeOf(want, typesys.AllowIntToLinExpr) {
		return nil, chkErr(errors.CHK007, fmt.Sprintf("%s expects %s (or Int), found %s", what, want, t), expr.Span())
	}
	return t, nil
}

func stripNone(t *typesys.Type) *typesys.Type {
	variants := t.GetVariants()
	kept := make([]*typesys.Type, 0, len(variants))
	for _, v := range variants {
		if !v.IsNone() {
			kept = append(kept, v)
		}
	}
	return typesys.Union(kept...)
}

func (c *Checker) checkIdentPath(mod string, local *localEnv, e *ast.IdentPath) (*typesys.Type, error) {
	res, rerr := c.env.ResolvePath(mod, e.Path.Segments, local.names())
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}
	switch res.Kind {
	case module.ResolvedLocalVariable:
		t, ok := local.lookup(res.Name)
		if !ok {
			return nil, chkErr(errors.CHK002, fmt.Sprintf("unbound identifier %q", res.Name), e.Sp)
		}
		return t, nil
	case module.ResolvedType:
		return res.Type, nil
	default:
		return nil, chkErr(errors.CHK002, fmt.Sprintf("%q does not name a value", e.Path), e.Sp)
	}
}

func (c *Checker) checkPathExpr(mod string, local *localEnv, e *ast.PathExpr) (*typesys.Type, error) {
	cur, err := c.checkExpr(mod, local, e.Base)
	if err != nil {
		return nil, err
	}
	for _, seg := range e.Segments {
		switch s := seg.(type) {
		case *ast.FieldSeg:
			fields, ok := c.fieldsOf(cur)
			if !ok {
				return nil, chkErr(errors.CHK008, fmt.Sprintf("field access on non-struct/object type %s", cur), s.Sp)
			}
			ft, ok := fields[s.Name]
			if !ok {
				return nil, chkErr(errors.CHK008, fmt.Sprintf("type %s has no field %q", cur, s.Name), s.Sp)
			}
			cur = ft
		case *ast.TupleIndexSeg:
			if cur.Kind != typesys.KindTuple || s.Index < 0 || s.Index >= len(cur.Elems) {
				return nil, chkErr(errors.CHK008, fmt.Sprintf("index .%d invalid on type %s", s.Index, cur), s.Sp)
			}
			cur = cur.Elems[s.Index]
		case *ast.ListIndexFallibleSeg:
			if cur.Kind != typesys.KindList {
				return nil, chkErr(errors.CHK008, fmt.Sprintf("index access on non-list type %s", cur), s.Sp)
			}
			if _, err := c.expect(mod, local, s.Index, typesys.Int, "list index"); err != nil {
				return nil, err
			}
			cur = typesys.Optional(cur.Elem)
		case *ast.ListIndexPanicSeg:
			if cur.Kind != typesys.KindList {
				return nil, chkErr(errors.CHK008, fmt.Sprintf("index access on non-list type %s", cur), s.Sp)
			}
			if _, err := c.expect(mod, local, s.Index, typesys.Int, "list index"); err != nil {
				return nil, err
			}
			cur = cur.Elem
		}
	}
	return cur, nil
}

func (c *Checker) fieldsOf(t *typesys.Type) (map[string]*typesys.Type, bool) {
	switch t.Kind {
	case typesys.KindStruct:
		return t.Fields, true
	case typesys.KindObject:
		fields, ok := c.env.ObjectTypes[t.ObjectName]
		return map[string]*typesys.Type(fields), ok
	default:
		return nil, false
	}
}

func (c *Checker) checkListLiteral(mod string, local *localEnv, e *ast.ListLiteral) (*typesys.Type, error) {
	if len(e.Elems) == 0 {
		if e.ElemType != nil {
			et, rerr := c.env.ResolveType(mod, e.ElemType)
			if rerr != nil {
				return nil, errors.WrapReport(rerr)
			}
			return typesys.List(et), nil
		}
		return typesys.List(typesys.Never), nil
	}
	var elemT *typesys.Type
	for _, el := range e.Elems {
		t, err := c.checkExpr(mod, local, el)
		if err != nil {
			return nil, err
		}
		if elemT == nil {
			elemT = t
		} else if !t.Equal(elemT) {
			elemT = typesys.Union(elemT, t)
		}
	}
	return typesys.List(elemT), nil
}

func (c *Checker) checkStructCall(mod string, local *localEnv, e *ast.StructCall) (*typesys.Type, error) {
	res, rerr := c.env.ResolvePath(mod, e.Path.Segments, nil)
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}
	if res.Kind != module.ResolvedType {
		return nil, chkErr(errors.CHK005, fmt.Sprintf("%q is not a type", e.Path), e.Sp)
	}
	for _, f := range e.Fields {
		if _, err := c.checkExpr(mod, local, f.Value); err != nil {
			return nil, err
		}
	}
	for _, a := range e.Args {
		if _, err := c.checkExpr(mod, local, a); err != nil {
			return nil, err
		}
	}
	return res.Type, nil
}

func (c *Checker) checkMatch(mod string, local *localEnv, e *ast.Match) (*typesys.Type, error) {
	scrT, err := c.checkExpr(mod, local, e.Scrutinee)
	if err != nil {
		return nil, err
	}
	var branchTypes []*typesys.Type
	for _, br := range e.Branches {
		binderT := scrT
		if br.AsType != nil {
			at, rerr := c.env.ResolveType(mod, br.AsType)
			if rerr != nil {
				return nil, errors.WrapReport(rerr)
			}
			binderT = at
		}
		local.bind(br.Binder, binderT)
		local.pushScope()
		if br.Where != nil {
			if _, err := c.expect(mod, local, br.Where, typesys.Bool, "match where-clause"); err != nil {
				local.popScope()
				return nil, err
			}
		}
		bodyT, err := c.checkExpr(mod, local, br.Body)
		local.popScope()
		if err != nil {
			return nil, err
		}
		branchTypes = append(branchTypes, bodyT)
	}
	if len(branchTypes) == 0 {
		sp := e.Sp
		return nil, chkErr(errors.CHK004, "match has no branches", sp)
	}
	return typesys.Union(branchTypes...), nil
}

func (c *Checker) checkSum(mod string, local *localEnv, e *ast.Sum) (*typesys.Type, error) {
	collT, err := c.checkExpr(mod, local, e.Collection)
	if err != nil {
		return nil, err
	}
	if collT.Kind != typesys.KindList {
		return nil, chkErr(errors.CHK006, fmt.Sprintf("sum expects a list, found %s", collT), e.Collection.Span())
	}
	local.bind(e.Var, collT.Elem)
	local.pushScope()
	defer local.popScope()
	if e.Where != nil {
		if _, err := c.expect(mod, local, e.Where, typesys.Bool, "sum where-clause"); err != nil {
			return nil, err
		}
	}
	bodyT, err := c.checkExpr(mod, local, e.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case bodyT.IsInt(), bodyT.IsLinExpr(), bodyT.Kind == typesys.KindList, bodyT.Kind == typesys.KindString:
		return bodyT, nil
	default:
		return nil, chkErr(errors.CHK006, fmt.Sprintf("sum body must be Int, LinExpr, String or a list, found %s", bodyT), e.Body.Span())
	}
}

func (c *Checker) checkForall(mod string, local *localEnv, e *ast.Forall) (*typesys.Type, error) {
	collT, err := c.checkExpr(mod, local, e.Collection)
	if err != nil {
		return nil, err
	}
	if collT.Kind != typesys.KindList {
		return nil, chkErr(errors.CHK006, fmt.Sprintf("forall expects a list, found %s", collT), e.Collection.Span())
	}
	local.bind(e.Var, collT.Elem)
	local.pushScope()
	defer local.popScope()
	if e.Where != nil {
		if _, err := c.expect(mod, local, e.Where, typesys.Bool, "forall where-clause"); err != nil {
			return nil, err
		}
	}
	bodyT, err := c.checkExpr(mod, local, e.Body)
	if err != nil {
		return nil, err
	}
	if !bodyT.IsBool() && !bodyT.IsConstraint() {
		return nil, chkErr(errors.CHK006, fmt.Sprintf("forall body must be Bool or Constraint, found %s", bodyT), e.Body.Span())
	}
	return bodyT, nil
}

func (c *Checker) checkFold(mod string, local *localEnv, e *ast.Fold) (*typesys.Type, error) {
	collT, err := c.checkExpr(mod, local, e.Collection)
	if err != nil {
		return nil, err
	}
	if collT.Kind != typesys.KindList {
		return nil, chkErr(errors.CHK006, fmt.Sprintf("fold expects a list, found %s", collT), e.Collection.Span())
	}
	initT, err := c.checkExpr(mod, local, e.Init)
	if err != nil {
		return nil, err
	}
	local.bind(e.Var, collT.Elem)
	local.bind(e.Acc, initT)
	local.pushScope()
	defer local.popScope()
	if e.Where != nil {
		if _, err := c.expect(mod, local, e.Where, typesys.Bool, "fold where-clause"); err != nil {
			return nil, err
		}
	}
	bodyT, err := c.checkExpr(mod, local, e.Body)
	if err != nil {
		return nil, err
	}
	if !bodyT.IsSubtypeOf(initT, typesys.AllowIntToLinExpr) {
		return nil, chkErr(errors.CHK006, fmt.Sprintf("fold body has type %s, accumulator is %s", bodyT, initT), e.Body.Span())
	}
	return initT, nil
}

func (c *Checker) checkListComprehension(mod string, local *localEnv, e *ast.ListComprehension) (*typesys.Type, error) {
	for _, cl := range e.Clauses {
		collT, err := c.checkExpr(mod, local, cl.Collection)
		if err != nil {
			return nil, err
		}
		if collT.Kind != typesys.KindList {
			return nil, chkErr(errors.CHK006, fmt.Sprintf("list comprehension expects a list, found %s", collT), cl.Collection.Span())
		}
		local.bind(cl.Var, collT.Elem)
		local.pushScope()
		defer local.popScope()
	}
	if e.Filter != nil {
		if _, err := c.expect(mod, local, e.Filter, typesys.Bool, "list comprehension filter"); err != nil {
			return nil, err
		}
	}
	bodyT, err := c.checkExpr(mod, local, e.Body)
	if err != nil {
		return nil, err
	}
	return typesys.List(bodyT), nil
}

func (c *Checker) checkBinary(mod string, local *localEnv, e *ast.BinaryExpr) (*typesys.Type, error) {
	leftT, err := c.checkExpr(mod, local, e.Left)
	if err != nil {
		return nil, err
	}
	rightT, err := c.checkExpr(mod, local, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		if !leftT.IsBool() || !rightT.IsBool() {
			return nil, chkErr(errors.CHK001, fmt.Sprintf("%s expects Bool operands, found %s and %s", e.Op, leftT, rightT), e.Sp)
		}
		return typesys.Bool, nil
	case ast.OpEq, ast.OpNeq:
		return typesys.Bool, nil
	case ast.OpLt, ast.OpLeq, ast.OpGt, ast.OpGeq:
		if !leftT.IsInt() || !rightT.IsInt() {
			return nil, chkErr(errors.CHK001, fmt.Sprintf("%s expects Int operands, found %s and %s", e.Op, leftT, rightT), e.Sp)
		}
		return typesys.Bool, nil
	case ast.OpAdd, ast.OpSub, ast.OpMul:
		if leftT.Kind == typesys.KindList && rightT.Kind == typesys.KindList && e.Op != ast.OpMul {
			return typesys.List(typesys.Union(leftT.Elem, rightT.Elem)), nil
		}
		if leftT.IsInt() && rightT.IsInt() {
			return typesys.Int, nil
		}
		if (leftT.IsInt() || leftT.IsLinExpr()) && (rightT.IsInt() || rightT.IsLinExpr()) {
			return typesys.LinExpr, nil
		}
		if e.Op == ast.OpAdd && leftT.IsSubtypeOf(typesys.String, typesys.Strict) && rightT.IsSubtypeOf(typesys.String, typesys.Strict) {
			return typesys.String, nil
		}
		return nil, chkErr(errors.CHK001, fmt.Sprintf("%s not defined for %s and %s", e.Op, leftT, rightT), e.Sp)
	case ast.OpDiv, ast.OpMod:
		if !leftT.IsInt() || !rightT.IsInt() {
			return nil, chkErr(errors.CHK001, fmt.Sprintf("%s expects Int operands, found %s and %s", e.Op, leftT, rightT), e.Sp)
		}
		return typesys.Int, nil
	default:
		return nil, chkErr(errors.CHK001, fmt.Sprintf("unsupported operator %s", e.Op), e.Sp)
	}
}

func (c *Checker) checkVarCall(mod string, local *localEnv, modName, name string, args []ast.Expr, sp ast.Span, isList bool) (*typesys.Type, error) {
	target := mod
	if modName != "" {
		res, rerr := c.env.ResolvePath(mod, []string{modName}, nil)
		if rerr != nil || res.Kind != module.ResolvedModule {
			return nil, chkErr(errors.CHK002, fmt.Sprintf("unknown module %q", modName), sp)
		}
		target = res.Module
	}

	var vd *module.VarDesc
	var ok bool
	if isList {
		vd, ok = c.env.VariableLists[module.VarKey{Module: target, Name: name}]
	} else {
		vd, ok = c.env.InternalVariables[module.VarKey{Module: target, Name: name}]
	}
	if !ok {
		if extArgs, extOK := c.env.ExternalVariables[name]; extOK && !isList {
			if len(args) != len(extArgs) {
				return nil, chkErr(errors.CHK003, fmt.Sprintf("variable %q expects %d arguments, found %d", name, len(extArgs), len(args)), sp)
			}
			for i, a := range args {
				if _, err := c.expect(mod, local, a, extArgs[i], "variable argument"); err != nil {
					return nil, err
				}
			}
			return typesys.LinExpr, nil
		}
		return nil, chkErr(errors.CHK002, fmt.Sprintf("unknown variable %q", name), sp)
	}

	if len(args) != len(vd.Args) {
		return nil, chkErr(errors.CHK003, fmt.Sprintf("variable %q expects %d arguments, found %d", name, len(vd.Args), len(args)), sp)
	}
	for i, a := range args {
		if _, err := c.expect(mod, local, a, vd.Args[i], "variable argument"); err != nil {
			return nil, err
		}
	}
	c.env.MarkVarUsed(target, name, isList)
	if isList {
		return typesys.List(typesys.LinExpr), nil
	}
	return typesys.LinExpr, nil
}

func (c *Checker) checkGenericCall(mod string, local *localEnv, e *ast.GenericCall) (*typesys.Type, error) {
	res, rerr := c.env.ResolvePath(mod, e.Path.Segments, nil)
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}

	switch res.Kind {
	case module.ResolvedFunction:
		fd, ok := c.env.Functions[module.FuncKey{Module: res.Module, Name: res.Name}]
		if !ok {
			return nil, chkErr(errors.CHK002, fmt.Sprintf("unknown function %q", e.Path), e.Sp)
		}
		if len(e.Args) != len(fd.Args) {
			return nil, chkErr(errors.CHK003, fmt.Sprintf("function %q expects %d arguments, found %d", e.Path, len(fd.Args), len(e.Args)), e.Sp)
		}
		for i, a := range e.Args {
			if _, err := c.expect(mod, local, a, fd.Args[i], "function argument"); err != nil {
				return nil, err
			}
		}
		c.env.MarkFnUsed(res.Module, res.Name)
		return fd.Output, nil

	case module.ResolvedType:
		for _, a := range e.Args {
			if _, err := c.checkExpr(mod, local, a); err != nil {
				return nil, err
			}
		}
		return res.Type, nil

	default:
		return nil, chkErr(errors.CHK002, fmt.Sprintf("%q is neither a function nor a type", e.Path), e.Sp)
	}
}
