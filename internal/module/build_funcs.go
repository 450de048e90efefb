package module

import (
	"fmt"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/typesys"
)

func (b *builder) pass2aRegisterFunctionSignatures(errs *[]*errors.Report, warns *[]Warning) {
	for _, name := range b.names {
		mod := b.modules[name]
		for _, stmt := range mod.Stmts {
			let, ok := stmt.(*ast.LetStmt)
			if !ok {
				continue
			}
			b.registerFunctionSignature(name, let, errs, warns)
		}
	}
}

func (b *builder) registerFunctionSignature(module string, let *ast.LetStmt, errs *[]*errors.Report, warns *[]Warning) {
	key := FuncKey{Module: module, Name: let.Name}
	if _, ok := b.g.lookupFn(module, let.Name); ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD001, fmt.Sprintf("function %q is already defined in this module", let.Name), &let.Sp))
		return
	}
	if suggestion, ok := namingSuggestion(let.Name, snakeCase); ok {
		*warns = append(*warns, Warning{Module: module, Message: fmt.Sprintf("function %q should be named %s (snake_case)", let.Name, suggestion), Sp: let.Sp})
	}

	seen := map[string]ast.Span{}
	argTypes := make([]*typesys.Type, 0, len(let.Params))
	argNames := make([]string, 0, len(let.Params))
	errorInTypes := false
	for _, p := range let.Params {
		pt, err := b.g.ResolveType(module, p.Type)
		if err != nil {
			*errs = append(*errs, err)
			errorInTypes = true
		} else {
			argTypes = append(argTypes, pt)
		}
		argNames = append(argNames, p.Name)

		if prevSp, dup := seen[p.Name]; dup {
			_ = prevSp
			*errs = append(*errs, errors.New("MOD", errors.MOD007, fmt.Sprintf("parameter %q is already declared", p.Name), &let.Sp))
		} else {
			seen[p.Name] = let.Sp
			if suggestion, ok := namingSuggestion(p.Name, snakeCase); ok {
				*warns = append(*warns, Warning{Module: module, Message: fmt.Sprintf("parameter %q should be named %s (snake_case)", p.Name, suggestion), Sp: let.Sp})
			}
		}
	}

	outType, err := b.g.ResolveType(module, let.ReturnType)
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	if errorInTypes {
		return
	}

	b.g.Functions[key] = &FuncDesc{
		Args: argTypes, ArgNames: argNames, Output: outType,
		Public: let.Pub, Body: let.Body, Doc: let.Doc, Sp: let.Sp,
	}
}

func (b *builder) pass2aPopulateFunctionSymbols(errs *[]*errors.Report) {
	for _, name := range b.names {
		mod := b.modules[name]
		b.importFunctionSymbols(name, name, "", nil, errs)
		for _, stmt := range mod.Stmts {
			imp, ok := stmt.(*ast.ImportStmt)
			if !ok {
				continue
			}
			source := pathJoin(imp.ModulePath)
			if !b.g.ModuleExists(source) || source == name {
				continue
			}
			prefix := ""
			if !imp.Wildcard {
				prefix = imp.Alias
			}
			b.importFunctionSymbols(name, source, prefix, &imp.Sp, errs)
		}
	}
}

func (b *builder) importFunctionSymbols(target, source, prefix string, importSpan *ast.Span, errs *[]*errors.Report) {
	table := b.g.symbolTable(target)
	for key := range b.g.Functions {
		if key.Module != source {
			continue
		}
		fd := b.g.Functions[key]
		if importSpan != nil && !fd.Public {
			continue
		}
		segs := makeSymbolPath(prefix, key.Name)
		path := symbolPath(segs)
		if existing, ok := table[path]; ok {
			b.reportSymbolConflict(path, existing, importSpan, errs)
			continue
		}
		table[path] = Symbol{Kind: SymFunction, Module: source, Name: key.Name}
	}
}

func (b *builder) pass2bProcessReifyStatements(errs *[]*errors.Report, warns *[]Warning) {
	for _, name := range b.names {
		mod := b.modules[name]
		for _, stmt := range mod.Stmts {
			rs, ok := stmt.(*ast.ReifyStmt)
			if !ok {
				continue
			}
			b.processReify(name, rs, errs, warns)
		}
	}
}

func (b *builder) processReify(module string, rs *ast.ReifyStmt, errs *[]*errors.Report, warns *[]Warning) {
	sym, ok := b.g.lookupSymbol(module, []string{rs.Func})
	if !ok || sym.Kind != SymFunction {
		*errs = append(*errs, errors.New("MOD", errors.MOD003, fmt.Sprintf("reify target %q is not a known function", rs.Func), &rs.Sp))
		return
	}

	fd, ok := b.g.lookupFn(sym.Module, sym.Name)
	if !ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD003, fmt.Sprintf("reify target %q is not a known function", rs.Func), &rs.Sp))
		return
	}

	wantOutput := typesys.Constraint
	if rs.IsList {
		wantOutput = typesys.List(typesys.Constraint)
	}
	if !fd.Output.Equal(wantOutput) {
		*errs = append(*errs, errors.New("MOD", errors.MOD006,
			fmt.Sprintf("reify target %q must return %s, found %s", rs.Func, wantOutput, fd.Output), &rs.Sp))
		return
	}

	b.g.MarkFnUsed(sym.Module, sym.Name)

	if rs.IsList {
		if _, dup := b.g.lookupVarList(module, rs.VarName); dup {
			*errs = append(*errs, errors.New("MOD", errors.MOD009, fmt.Sprintf("variable list %q is already defined", rs.VarName), &rs.Sp))
			return
		}
		if suggestion, ok := namingSuggestion(rs.VarName, pascalCase); ok {
			*warns = append(*warns, Warning{Module: module, Message: fmt.Sprintf("variable list %q should be named %s (PascalCase)", rs.VarName, suggestion), Sp: rs.Sp})
		}
		b.g.VariableLists[VarKey{Module: module, Name: rs.VarName}] = &VarDesc{
			Args: fd.Args, Public: false, Func: FuncKey{Module: sym.Module, Name: sym.Name}, Sp: rs.Sp,
		}
		return
	}

	if _, dup := b.g.lookupVar(module, rs.VarName); dup {
		*errs = append(*errs, errors.New("MOD", errors.MOD009, fmt.Sprintf("variable %q is already defined", rs.VarName), &rs.Sp))
		return
	}
	if suggestion, ok := namingSuggestion(rs.VarName, pascalCase); ok {
		*warns = append(*warns, Warning{Module: module, Message: fmt.Sprintf("variable %q should be named %s (PascalCase)", rs.VarName, suggestion), Sp: rs.Sp})
	}
	b.g.InternalVariables[VarKey{Module: module, Name: rs.VarName}] = &VarDesc{
		Args: fd.Args, Public: false, Func: FuncKey{Module: sym.Module, Name: sym.Name}, Sp: rs.Sp,
	}
}

func (b *builder) pass2bPopulateVariableSymbols(errs *[]*errors.Report) {
	for _, name := range b.names {
		mod := b.modules[name]
		b.importVariableSymbols(name, name, "", nil, errs)
		for _, stmt := range mod.Stmts {
			imp, ok := stmt.(*ast.ImportStmt)
			if !ok {
				continue
			}
			source := pathJoin(imp.ModulePath)
			if !b.g.ModuleExists(source) || source == name {
				continue
			}
			prefix := ""
			if !imp.Wildcard {
				prefix = imp.Alias
			}
			b.importVariableSymbols(name, source, prefix, &imp.Sp, errs)
		}
	}
}

func (b *builder) importVariableSymbols(target, source, prefix string, importSpan *ast.Span, errs *[]*errors.Report) {
	table := b.g.symbolTable(target)

	for key := range b.g.InternalVariables {
		if key.Module != source {
			continue
		}
		vd := b.g.InternalVariables[key]
		if importSpan != nil && !vd.Public {
			continue
		}
		segs := makeSymbolPath(prefix, "$"+key.Name)
		path := symbolPath(segs)
		if existing, ok := table[path]; ok {
			b.reportSymbolConflict(path, existing, importSpan, errs)
			continue
		}
		table[path] = Symbol{Kind: SymVariable, Module: source, Name: key.Name}
	}

	for key := range b.g.VariableLists {
		if key.Module != source {
			continue
		}
		vd := b.g.VariableLists[key]
		if importSpan != nil && !vd.Public {
			continue
		}
		segs := makeSymbolPath(prefix, "$["+key.Name+"]")
		path := symbolPath(segs)
		if existing, ok := table[path]; ok {
			b.reportSymbolConflict(path, existing, importSpan, errs)
			continue
		}
		table[path] = Symbol{Kind: SymVariableList, Module: source, Name: key.Name}
	}
}

// MarkVarUsed flags an internal variable or variable list as referenced.
func (g *GlobalEnv) MarkVarUsed(module, name string, isList bool) {
	if isList {
		if vd, ok := g.VariableLists[VarKey{Module: module, Name: name}]; ok {
			vd.Used = true
		}
		return
	}
	if vd, ok := g.InternalVariables[VarKey{Module: module, Name: name}]; ok {
		vd.Used = true
	}
}

// CollectUnusedWarnings reports every non-public function or internal
// variable/variable-list never marked used, after C4 has finished
// type-checking every body (§4.3 "Finally, unused private functions and
// variables emit warnings").
func (g *GlobalEnv) CollectUnusedWarnings() []Warning {
	var warns []Warning
	for key, fd := range g.Functions {
		if !fd.Public && !fd.Used {
			warns = append(warns, Warning{Module: key.Module, Message: fmt.Sprintf("unused private function %s::%s", key.Module, key.Name), Sp: fd.Sp})
		}
	}
	for key, vd := range g.InternalVariables {
		if !vd.Public && !vd.Used {
			warns = append(warns, Warning{Module: key.Module, Message: fmt.Sprintf("unused private variable %s::$%s", key.Module, key.Name), Sp: vd.Sp})
		}
	}
	for key, vd := range g.VariableLists {
		if !vd.Public && !vd.Used {
			warns = append(warns, Warning{Module: key.Module, Message: fmt.Sprintf("unused private variable list %s::$[%s]", key.Module, key.Name), Sp: vd.Sp})
		}
	}
	return warns
}
