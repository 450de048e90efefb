package eval

import (
	"fmt"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/linexpr"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/typesys"
)

// Evaluator is C6: it interprets a type-checked *ast.Module's function
// bodies against an Environment, building LinExpr/Constraint values and
// recording ILP variables through EvalHistory (C7) as it goes.
//
// Grounded throughout on original_source/collo-ml/src/eval/local_env.rs's
// eval_expr match, adapted node-for-node to this port's internal/ast shapes
// (which has no Cardinality or In expression, unlike the original).
type Evaluator struct {
	Mod  *module.GlobalEnv
	Hist *EvalHistory
}

// New builds an Evaluator for one batch: a fresh call-history cache stamped
// with its own UUID (spec.md §5 "independent batches... each with its own
// environment").
func New(mod *module.GlobalEnv, env Environment) *Evaluator {
	return &Evaluator{Mod: mod, Hist: NewEvalHistory(env)}
}

// CallEntryPoint evaluates a top-level constraint/objective entry point
// (spec.md §4.8): the function named (mod, name) applied to args, under a
// freshly rooted Origin.
func (ev *Evaluator) CallEntryPoint(mod, name string, args []*Value) (*Value, error) {
	origin := ilpvar.NewOrigin(ev.Hist.BatchID, mod, name)
	return ev.evalCall(mod, name, args, origin, ast.Span{})
}

// Eval interprets expr within module mod, against the bindings visible in
// local, attributing any emitted constraint to origin.
func (ev *Evaluator) Eval(mod string, local *LocalEvalEnv, expr ast.Expr, origin ilpvar.Origin) (*Value, error) {
	switch e := expr.(type) {
	case *ast.NoneLit:
		return NoneValue(), nil
	case *ast.BoolLit:
		return BoolValue(e.Value), nil
	case *ast.IntLit:
		return IntValue(e.Value), nil
	case *ast.StringLit:
		return StringValue(e.Value), nil

	case *ast.IdentPath:
		return ev.evalIdentPath(mod, local, e)

	case *ast.PathExpr:
		return ev.evalPathExpr(mod, local, e, origin)

	case *ast.ListLiteral:
		elems := make([]*Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ev.Eval(mod, local, el, origin)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return ListValue(elems), nil

	case *ast.ListRange:
		start, err := ev.Eval(mod, local, e.Start, origin)
		if err != nil {
			return nil, err
		}
		end, err := ev.Eval(mod, local, e.End, origin)
		if err != nil {
			return nil, err
		}
		var elems []*Value
		for i := start.Int; i < end.Int; i++ {
			elems = append(elems, IntValue(i))
		}
		return ListValue(elems), nil

	case *ast.TupleLiteral:
		elems := make([]*Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ev.Eval(mod, local, el, origin)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return TupleValue(elems), nil

	case *ast.StructLiteral:
		fields := map[string]*Value{}
		for _, f := range e.Fields {
			v, err := ev.Eval(mod, local, f.Value, origin)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
		}
		return StructValue(fields), nil

	case *ast.StructCall:
		res, rerr := ev.Mod.ResolvePath(mod, e.Path.Segments, nil)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		if res.Kind != module.ResolvedType {
			return nil, evlErr(errors.EVL005, fmt.Sprintf("%q is not a type", e.Path), e.Sp)
		}
		return ev.evalConstructor(mod, local, res.Type, e.Fields, e.Args, origin)

	case *ast.ExplicitType:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		target, rerr := ev.Mod.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		return ConvertToUnchecked(v, target), nil

	case *ast.ComplexTypeCast:
		target, rerr := ev.Mod.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		return ev.evalConstructor(mod, local, target, nil, e.Args, origin)

	case *ast.CastFallible:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		target, rerr := ev.Mod.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		if !v.FitsInTyp(target) {
			return NoneValue(), nil
		}
		return ConvertToUnchecked(v, target), nil

	case *ast.CastPanic:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		target, rerr := ev.Mod.ResolveType(mod, e.Type)
		if rerr != nil {
			return nil, errors.WrapReport(rerr)
		}
		if !v.FitsInTyp(target) {
			return nil, castPanic(v, target.String(), e.Sp)
		}
		return ConvertToUnchecked(v, target), nil

	case *ast.If:
		cond, err := ev.Eval(mod, local, e.Cond, origin)
		if err != nil {
			return nil, err
		}
		if cond.AsBool() {
			return ev.Eval(mod, local, e.Then, origin)
		}
		return ev.Eval(mod, local, e.Else, origin)

	case *ast.Match:
		return ev.evalMatch(mod, local, e, origin)

	case *ast.Sum:
		return ev.evalSum(mod, local, e, origin)

	case *ast.Forall:
		return ev.evalForall(mod, local, e, origin)

	case *ast.Fold:
		return ev.evalFold(mod, local, e, origin)

	case *ast.ListComprehension:
		elems, err := ev.evalComprehension(mod, local, e.Clauses, e.Filter, e.Body, origin)
		if err != nil {
			return nil, err
		}
		return ListValue(elems), nil

	case *ast.Let:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		local.Bind(e.Name, v)
		local.PushScope()
		defer local.PopScope()
		return ev.Eval(mod, local, e.Body, origin)

	case *ast.BinaryExpr:
		return ev.evalBinary(mod, local, e, origin)

	case *ast.UnaryExpr:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		if e.Negate {
			if v.Kind == VLinExpr {
				return LinExprValue(v.Lin.Neg()), nil
			}
			return IntValue(-v.Int), nil
		}
		return BoolValue(!v.AsBool()), nil

	case *ast.NullCoalesce:
		left, err := ev.Eval(mod, local, e.Left, origin)
		if err != nil {
			return nil, err
		}
		if left.Kind == VNone {
			return ev.Eval(mod, local, e.Right, origin)
		}
		return left, nil

	case *ast.ConstraintExpr:
		return ev.evalConstraintExpr(mod, local, e, origin)

	case *ast.Panic:
		v, err := ev.Eval(mod, local, e.Value, origin)
		if err != nil {
			return nil, err
		}
		return nil, &PanicError{Value: v}

	case *ast.VarCall:
		return ev.evalVarCall(mod, local, e, origin)

	case *ast.VarListCall:
		return ev.evalVarListCall(mod, local, e, origin)

	case *ast.GenericCall:
		return ev.evalGenericCall(mod, local, e, origin)

	case *ast.GlobalList:
		return ev.evalGlobalList(mod, e)

	default:
		return nil, evlErr(errors.EVL005, fmt.Sprintf("unsupported expression %T", expr), expr.Span())
	}
}

func (ev *Evaluator) evalIdentPath(mod string, local *LocalEvalEnv, e *ast.IdentPath) (*Value, error) {
	res, rerr := ev.Mod.ResolvePath(mod, e.Path.Segments, local.Names())
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}
	if res.Kind != module.ResolvedLocalVariable {
		return nil, evlErr(errors.EVL005, fmt.Sprintf("%q does not name a runtime value", e.Path), e.Sp)
	}
	v, ok := local.Lookup(res.Name)
	if !ok {
		return nil, evlErr(errors.EVL005, fmt.Sprintf("unbound identifier %q", res.Name), e.Sp)
	}
	return v, nil
}

func (ev *Evaluator) evalPathExpr(mod string, local *LocalEvalEnv, e *ast.PathExpr, origin ilpvar.Origin) (*Value, error) {
	cur, err := ev.Eval(mod, local, e.Base, origin)
	if err != nil {
		return nil, err
	}
	for _, seg := range e.Segments {
		switch s := seg.(type) {
		case *ast.FieldSeg:
			u := unwrapCustom(cur)
			switch u.Kind {
			case VStruct:
				fv, ok := u.Struct[s.Name]
				if !ok {
					return nil, evlErr(errors.EVL005, fmt.Sprintf("no field %q", s.Name), s.Sp)
				}
				cur = fv
			case VObject:
				fv, ok := ev.Hist.Env.ObjectField(u.Object, s.Name)
				if !ok {
					return nil, lookupErr("object field", s.Name, s.Sp)
				}
				cur = fv
			default:
				return nil, evlErr(errors.EVL005, fmt.Sprintf("field access on %s", u), s.Sp)
			}
		case *ast.TupleIndexSeg:
			u := unwrapCustom(cur)
			if u.Kind != VTuple || s.Index < 0 || s.Index >= len(u.List) {
				return nil, evlErr(errors.EVL005, fmt.Sprintf("tuple index .%d invalid", s.Index), s.Sp)
			}
			cur = u.List[s.Index]
		case *ast.ListIndexFallibleSeg:
			idxV, err := ev.Eval(mod, local, s.Index, origin)
			if err != nil {
				return nil, err
			}
			u := unwrapCustom(cur)
			i := int(idxV.Int)
			if i < 0 || i >= len(u.List) {
				cur = NoneValue()
			} else {
				cur = u.List[i]
			}
		case *ast.ListIndexPanicSeg:
			idxV, err := ev.Eval(mod, local, s.Index, origin)
			if err != nil {
				return nil, err
			}
			u := unwrapCustom(cur)
			i := int(idxV.Int)
			if i < 0 || i >= len(u.List) {
				return nil, listIndexPanic(i, len(u.List), s.Sp)
			}
			cur = u.List[i]
		}
	}
	return cur, nil
}

// evalConstructor builds a Struct/Tuple/None value from fields/args and, if
// target names a Custom type, wraps it under that type's module/root/variant
// (spec.md §3 "Custom{module, type_name, variant?, content}").
func (ev *Evaluator) evalConstructor(mod string, local *LocalEvalEnv, target *typesys.Type, fields []ast.StructFieldExpr, args []ast.Expr, origin ilpvar.Origin) (*Value, error) {
	underlying := target
	isCustom := target.Kind == typesys.KindCustom
	if isCustom {
		name := target.Root
		if target.Variant != "" {
			name = target.Root + "::" + target.Variant
		}
		td, ok := ev.Mod.CustomTypes[module.TypeKey{Module: target.Module, Name: name}]
		if !ok {
			return nil, evlErr(errors.EVL005, fmt.Sprintf("unknown custom type %s", target), ast.Span{})
		}
		underlying = td.Underlying
	}

	var inner *Value
	switch {
	case len(fields) > 0 || underlying.Kind == typesys.KindStruct:
		fvals := map[string]*Value{}
		for _, f := range fields {
			v, err := ev.Eval(mod, local, f.Value, origin)
			if err != nil {
				return nil, err
			}
			fvals[f.Name] = v
		}
		inner = StructValue(fvals)
	case underlying.Kind == typesys.KindTuple || len(args) > 1:
		avals := make([]*Value, len(args))
		for i, a := range args {
			v, err := ev.Eval(mod, local, a, origin)
			if err != nil {
				return nil, err
			}
			avals[i] = v
		}
		inner = TupleValue(avals)
	case len(args) == 1:
		v, err := ev.Eval(mod, local, args[0], origin)
		if err != nil {
			return nil, err
		}
		inner = v
	default:
		inner = NoneValue()
	}

	if !isCustom {
		return inner, nil
	}
	return CustomValueOf(&CustomValue{Module: target.Module, Type: target.Root, Variant: target.Variant, Content: inner}), nil
}

func (ev *Evaluator) evalMatch(mod string, local *LocalEvalEnv, e *ast.Match, origin ilpvar.Origin) (*Value, error) {
	scr, err := ev.Eval(mod, local, e.Scrutinee, origin)
	if err != nil {
		return nil, err
	}
	for _, br := range e.Branches {
		if br.AsType != nil {
			at, rerr := ev.Mod.ResolveType(mod, br.AsType)
			if rerr != nil {
				return nil, errors.WrapReport(rerr)
			}
			if !scr.FitsInTyp(at) {
				continue
			}
		}
		local.Bind(br.Binder, scr)
		local.PushScope()
		if br.Where != nil {
			wv, err := ev.Eval(mod, local, br.Where, origin)
			if err != nil {
				local.PopScope()
				return nil, err
			}
			if !wv.AsBool() {
				local.PopScope()
				continue
			}
		}
		bv, err := ev.Eval(mod, local, br.Body, origin)
		local.PopScope()
		return bv, err
	}
	return nil, fmt.Errorf("match at %s: no branch matched %s", e.Sp, scr)
}

func (ev *Evaluator) evalSum(mod string, local *LocalEvalEnv, e *ast.Sum, origin ilpvar.Origin) (*Value, error) {
	coll, err := ev.Eval(mod, local, e.Collection, origin)
	if err != nil {
		return nil, err
	}
	var acc *Value
	for _, el := range coll.List {
		local.Bind(e.Var, el)
		local.PushScope()
		if e.Where != nil {
			wv, err := ev.Eval(mod, local, e.Where, origin)
			if err != nil {
				local.PopScope()
				return nil, err
			}
			if !wv.AsBool() {
				local.PopScope()
				continue
			}
		}
		bv, err := ev.Eval(mod, local, e.Body, origin)
		local.PopScope()
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = bv
			continue
		}
		acc, err = combineSum(acc, bv)
		if err != nil {
			return nil, err
		}
	}
	if acc == nil {
		return IntValue(0), nil
	}
	return acc, nil
}

func combineSum(a, b *Value) (*Value, error) {
	switch {
	case a.Kind == VInt && b.Kind == VInt:
		return IntValue(a.Int + b.Int), nil
	case a.Kind == VString && b.Kind == VString:
		return StringValue(a.Str + b.Str), nil
	case a.Kind == VList && b.Kind == VList:
		return ListValue(append(append([]*Value{}, a.List...), b.List...)), nil
	case (a.Kind == VInt || a.Kind == VLinExpr) && (b.Kind == VInt || b.Kind == VLinExpr):
		return LinExprValue(toLinExpr(a).Add(toLinExpr(b))), nil
	default:
		return nil, fmt.Errorf("sum: cannot combine %s and %s", a, b)
	}
}

func (ev *Evaluator) evalForall(mod string, local *LocalEvalEnv, e *ast.Forall, origin ilpvar.Origin) (*Value, error) {
	coll, err := ev.Eval(mod, local, e.Collection, origin)
	if err != nil {
		return nil, err
	}
	var terms []ConstraintTerm
	allBool := true
	for _, el := range coll.List {
		local.Bind(e.Var, el)
		local.PushScope()
		if e.Where != nil {
			wv, err := ev.Eval(mod, local, e.Where, origin)
			if err != nil {
				local.PopScope()
				return nil, err
			}
			if !wv.AsBool() {
				local.PopScope()
				continue
			}
		}
		bv, err := ev.Eval(mod, local, e.Body, origin)
		local.PopScope()
		if err != nil {
			return nil, err
		}
		switch bv.Kind {
		case VBool:
			if !bv.AsBool() {
				return BoolValue(false), nil
			}
		case VConstraint:
			allBool = false
			terms = append(terms, bv.Constr...)
		default:
			return nil, fmt.Errorf("forall: body must be Bool or Constraint, found %s", bv)
		}
	}
	if allBool {
		return BoolValue(true), nil
	}
	return ConstraintValue(terms), nil
}

func (ev *Evaluator) evalFold(mod string, local *LocalEvalEnv, e *ast.Fold, origin ilpvar.Origin) (*Value, error) {
	coll, err := ev.Eval(mod, local, e.Collection, origin)
	if err != nil {
		return nil, err
	}
	acc, err := ev.Eval(mod, local, e.Init, origin)
	if err != nil {
		return nil, err
	}
	order := coll.List
	if e.Reversed {
		rev := make([]*Value, len(order))
		for i, v := range order {
			rev[len(order)-1-i] = v
		}
		order = rev
	}
	for _, el := range order {
		local.Bind(e.Var, el)
		local.Bind(e.Acc, acc)
		local.PushScope()
		if e.Where != nil {
			wv, err := ev.Eval(mod, local, e.Where, origin)
			if err != nil {
				local.PopScope()
				return nil, err
			}
			if !wv.AsBool() {
				local.PopScope()
				continue
			}
		}
		bv, err := ev.Eval(mod, local, e.Body, origin)
		local.PopScope()
		if err != nil {
			return nil, err
		}
		acc = bv
	}
	return acc, nil
}

func (ev *Evaluator) evalComprehension(mod string, local *LocalEvalEnv, clauses []ast.CompClause, filter ast.Expr, body ast.Expr, origin ilpvar.Origin) ([]*Value, error) {
	if len(clauses) == 0 {
		if filter != nil {
			fv, err := ev.Eval(mod, local, filter, origin)
			if err != nil {
				return nil, err
			}
			if !fv.AsBool() {
				return nil, nil
			}
		}
		bv, err := ev.Eval(mod, local, body, origin)
		if err != nil {
			return nil, err
		}
		return []*Value{bv}, nil
	}

	cl := clauses[0]
	coll, err := ev.Eval(mod, local, cl.Collection, origin)
	if err != nil {
		return nil, err
	}
	var out []*Value
	for _, el := range coll.List {
		local.Bind(cl.Var, el)
		local.PushScope()
		sub, err := ev.evalComprehension(mod, local, clauses[1:], filter, body, origin)
		local.PopScope()
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (ev *Evaluator) evalBinary(mod string, local *LocalEvalEnv, e *ast.BinaryExpr, origin ilpvar.Origin) (*Value, error) {
	switch e.Op {
	case ast.OpAnd:
		l, err := ev.Eval(mod, local, e.Left, origin)
		if err != nil {
			return nil, err
		}
		if !l.AsBool() {
			return BoolValue(false), nil
		}
		r, err := ev.Eval(mod, local, e.Right, origin)
		if err != nil {
			return nil, err
		}
		return BoolValue(r.AsBool()), nil
	case ast.OpOr:
		l, err := ev.Eval(mod, local, e.Left, origin)
		if err != nil {
			return nil, err
		}
		if l.AsBool() {
			return BoolValue(true), nil
		}
		r, err := ev.Eval(mod, local, e.Right, origin)
		if err != nil {
			return nil, err
		}
		return BoolValue(r.AsBool()), nil
	}

	l, err := ev.Eval(mod, local, e.Left, origin)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(mod, local, e.Right, origin)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEq:
		return BoolValue(l.Equal(r)), nil
	case ast.OpNeq:
		return BoolValue(!l.Equal(r)), nil
	case ast.OpLt:
		return BoolValue(l.Int < r.Int), nil
	case ast.OpLeq:
		return BoolValue(l.Int <= r.Int), nil
	case ast.OpGt:
		return BoolValue(l.Int > r.Int), nil
	case ast.OpGeq:
		return BoolValue(l.Int >= r.Int), nil
	case ast.OpAdd, ast.OpSub, ast.OpMul:
		return evalArith(e.Op, l, r)
	case ast.OpDiv, ast.OpMod:
		if r.Int == 0 {
			return nil, divByZero(e.Sp)
		}
		q, m := floorDivMod(l.Int, r.Int)
		if e.Op == ast.OpDiv {
			return IntValue(q), nil
		}
		return IntValue(m), nil
	default:
		return nil, evlErr(errors.EVL005, fmt.Sprintf("unsupported operator %s", e.Op), e.Sp)
	}
}

func evalArith(op ast.BinOp, l, r *Value) (*Value, error) {
	if l.Kind == VList && r.Kind == VList {
		switch op {
		case ast.OpAdd:
			return ListValue(append(append([]*Value{}, l.List...), r.List...)), nil
		case ast.OpSub:
			return ListValue(listDiff(l.List, r.List)), nil
		}
	}
	if l.Kind == VString && r.Kind == VString && op == ast.OpAdd {
		return StringValue(l.Str + r.Str), nil
	}
	if l.Kind == VInt && r.Kind == VInt {
		switch op {
		case ast.OpAdd:
			return IntValue(l.Int + r.Int), nil
		case ast.OpSub:
			return IntValue(l.Int - r.Int), nil
		case ast.OpMul:
			return IntValue(l.Int * r.Int), nil
		}
	}
	if (l.Kind == VInt || l.Kind == VLinExpr) && (r.Kind == VInt || r.Kind == VLinExpr) {
		le, re := toLinExpr(l), toLinExpr(r)
		switch op {
		case ast.OpAdd:
			return LinExprValue(le.Add(re)), nil
		case ast.OpSub:
			return LinExprValue(le.Sub(re)), nil
		case ast.OpMul:
			if len(le.Variables()) == 0 {
				return LinExprValue(re.MulConst(le.Constant())), nil
			}
			if len(re.Variables()) == 0 {
				return LinExprValue(le.MulConst(re.Constant())), nil
			}
			return nil, fmt.Errorf("cannot multiply two non-constant linear expressions (%s * %s)", le, re)
		}
	}
	return nil, fmt.Errorf("%s not defined for %s and %s", op, l, r)
}

func listDiff(a, b []*Value) []*Value {
	removed := make([]bool, len(b))
	var out []*Value
	for _, x := range a {
		found := false
		for i, y := range b {
			if !removed[i] && x.Equal(y) {
				removed[i] = true
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}

func toLinExpr(v *Value) *LinExpr {
	if v.Kind == VLinExpr {
		return v.Lin
	}
	return linexpr.New[ilpvar.IlpVar](float64(v.Int))
}

func floorDivMod(a, b int64) (q, r int64) {
	q, r = a/b, a%b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

func (ev *Evaluator) evalConstraintExpr(mod string, local *LocalEvalEnv, e *ast.ConstraintExpr, origin ilpvar.Origin) (*Value, error) {
	l, err := ev.Eval(mod, local, e.Left, origin)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(mod, local, e.Right, origin)
	if err != nil {
		return nil, err
	}
	le, re := toLinExpr(l), toLinExpr(r)
	var c *Constraint
	switch e.Op {
	case ast.ConstraintEq:
		c = linexpr.Eq[ilpvar.IlpVar](le, re)
	case ast.ConstraintLeq:
		c = linexpr.Leq[ilpvar.IlpVar](le, re)
	case ast.ConstraintGeq:
		c = linexpr.Geq[ilpvar.IlpVar](le, re)
	}
	return ConstraintValue([]ConstraintTerm{{C: c, Origin: origin}}), nil
}

func (ev *Evaluator) evalGlobalList(mod string, e *ast.GlobalList) (*Value, error) {
	t, rerr := ev.Mod.ResolveType(mod, e.Type)
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}
	var typeNames []string
	switch {
	case t.Kind == typesys.KindObject:
		typeNames = []string{t.ObjectName}
	case t.Kind == typesys.KindUnion:
		for _, v := range t.Variants {
			if v.Kind == typesys.KindObject {
				typeNames = append(typeNames, v.ObjectName)
			}
		}
	}
	var out []*Value
	for _, tn := range typeNames {
		for _, h := range ev.Hist.Env.ObjectsWithType(tn) {
			out = append(out, ObjectValue(h))
		}
	}
	return ListValue(out), nil
}

func valueStrings(vs []*Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// resolveModuleRef turns a VarCall/VarListCall's optional module prefix
// into a concrete module name, defaulting to mod itself.
func (ev *Evaluator) resolveModuleRef(mod string, ref *string, sp ast.Span) (string, error) {
	if ref == nil {
		return mod, nil
	}
	res, rerr := ev.Mod.ResolvePath(mod, []string{*ref}, nil)
	if rerr != nil || res.Kind != module.ResolvedModule {
		return "", evlErr(errors.EVL005, fmt.Sprintf("unknown module %q", *ref), sp)
	}
	return res.Module, nil
}

// evalCall invokes a named function, memoising through EvalHistory so a
// second call with identical arguments within this batch is served from
// cache (spec.md §4.7 "at most one evaluation of (f, args) per batch").
func (ev *Evaluator) evalCall(target, name string, argVals []*Value, origin ilpvar.Origin, sp ast.Span) (*Value, error) {
	if v, _, ok := ev.Hist.Lookup(target, name, argVals); ok {
		return v, nil
	}
	fd, ok := ev.Mod.Functions[module.FuncKey{Module: target, Name: name}]
	if !ok {
		return nil, unknownFunction(target, name, sp)
	}
	if len(argVals) != len(fd.Args) {
		return nil, argCountMismatch(target, name, len(fd.Args), len(argVals), sp)
	}
	callLocal := NewLocalEvalEnv()
	for i, an := range fd.ArgNames {
		callLocal.Bind(an, argVals[i])
	}
	callLocal.PushScope()
	nestedOrigin := origin.Extend(name)
	result, err := ev.Eval(target, callLocal, fd.Body, nestedOrigin)
	callLocal.PopScope()
	if err != nil {
		return nil, err
	}
	result = ConvertToUnchecked(result, fd.Output)
	ev.Hist.Store(target, name, argVals, result, nestedOrigin)
	return result, nil
}

func (ev *Evaluator) evalGenericCall(mod string, local *LocalEvalEnv, e *ast.GenericCall, origin ilpvar.Origin) (*Value, error) {
	res, rerr := ev.Mod.ResolvePath(mod, e.Path.Segments, nil)
	if rerr != nil {
		return nil, errors.WrapReport(rerr)
	}
	switch res.Kind {
	case module.ResolvedFunction:
		argVals := make([]*Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.Eval(mod, local, a, origin)
			if err != nil {
				return nil, err
			}
			argVals[i] = v
		}
		return ev.evalCall(res.Module, res.Name, argVals, origin, e.Sp)
	case module.ResolvedType:
		return ev.evalConstructor(mod, local, res.Type, nil, e.Args, origin)
	default:
		return nil, evlErr(errors.EVL005, fmt.Sprintf("%q is neither a function nor a type", e.Path), e.Sp)
	}
}

// evalVarCall resolves $name(args)/$mod::name(args) to a fresh symbolic ILP
// variable reference, evaluating and memoising the backing function (for an
// internal/reified variable) purely so internal/problem can later harvest
// its body as the thing this variable gets reified against (spec.md §4.6,
// §4.8). The expression's own value is always the variable reference
// itself, never the function's body value.
func (ev *Evaluator) evalVarCall(mod string, local *LocalEvalEnv, e *ast.VarCall, origin ilpvar.Origin) (*Value, error) {
	target, err := ev.resolveModuleRef(mod, e.Module, e.Sp)
	if err != nil {
		return nil, err
	}
	argVals := make([]*Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.Eval(mod, local, a, origin)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
	}

	if vd, ok := ev.Mod.InternalVariables[module.VarKey{Module: target, Name: e.Name}]; ok {
		if _, err := ev.evalCall(vd.Func.Module, vd.Func.Name, argVals, origin, e.Sp); err != nil {
			return nil, err
		}
		iv := ilpvar.NewScript(vd.Func.Module, vd.Func.Name, false, 0, valueStrings(argVals))
		ev.Hist.RecordVar(iv, origin)
		return LinExprValue(linexpr.VarExpr(iv)), nil
	}

	if extArgs, ok := ev.Mod.ExternalVariables[e.Name]; ok {
		_ = extArgs
		iv := ilpvar.NewBase(e.Name, valueStrings(argVals))
		if fixed, ok := ev.Hist.Env.ExternVarFix(iv.Base); ok {
			return LinExprValue(linexpr.New[ilpvar.IlpVar](fixed)), nil
		}
		ev.Hist.RecordVar(iv, origin)
		return LinExprValue(linexpr.VarExpr(iv)), nil
	}

	return nil, lookupErr("variable", e.Name, e.Sp)
}

// evalVarListCall resolves $[name](args): the backing function returns a
// list, each element of which becomes its own indexed ScriptVar.
func (ev *Evaluator) evalVarListCall(mod string, local *LocalEvalEnv, e *ast.VarListCall, origin ilpvar.Origin) (*Value, error) {
	target, err := ev.resolveModuleRef(mod, e.Module, e.Sp)
	if err != nil {
		return nil, err
	}
	argVals := make([]*Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.Eval(mod, local, a, origin)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
	}

	vd, ok := ev.Mod.VariableLists[module.VarKey{Module: target, Name: e.Name}]
	if !ok {
		return nil, lookupErr("variable list", e.Name, e.Sp)
	}
	body, err := ev.evalCall(vd.Func.Module, vd.Func.Name, argVals, origin, e.Sp)
	if err != nil {
		return nil, err
	}

	elems := make([]*Value, len(body.List))
	for i := range body.List {
		iv := ilpvar.NewScript(vd.Func.Module, vd.Func.Name, true, i, valueStrings(argVals))
		ev.Hist.RecordVar(iv, origin)
		ev.Hist.RecordVarListElem(vd.Func.Module, vd.Func.Name, iv)
		elems[i] = LinExprValue(linexpr.VarExpr(iv))
	}
	return ListValue(elems), nil
}
