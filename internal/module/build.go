package module

import (
	"fmt"
	"sort"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/typesys"
)

// Warning is a non-fatal C3/C4 diagnostic (unused declarations, naming
// conventions): collected separately from *errors.Report since warnings never
// abort compilation.
type Warning struct {
	Module  string
	Message string
	Sp      ast.Span
}

// Build constructs a GlobalEnv from a set of parsed modules, following §4.3's
// phases 1a-2b+ / original_source's GlobalEnv::new: 1a register type
// placeholders, 1b populate type symbols, 1c resolve underlying types, 2a
// register function signatures, 2a+ populate function symbols, 2b process
// reify statements, 2b+ populate variable symbols. Phase 2c (type-checking
// function bodies) and the final unused-declaration pass are C4's
// responsibility (internal/check), which walks Functions/InternalVariables
// itself and calls MarkFnUsed/MarkVarUsed as it resolves references, then
// calls CollectUnusedWarnings once every body has been checked.
// modules is keyed by module name; iteration order is made deterministic by
// sorting the names, matching the original's BTreeMap<&str, File> ordering
// guarantee.
func Build(modules map[string]*ast.Module, objectTypes map[string]ObjectFields, externalVars map[string][]*typesys.Type) (*GlobalEnv, []*errors.Report, []Warning) {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	g := newGlobalEnv(objectTypes, externalVars, names)
	var errs []*errors.Report
	var warns []Warning

	b := &builder{g: g, modules: modules, names: names}

	b.pass1aRegisterTypePlaceholders(&errs)
	b.pass1bPopulateTypeSymbols(&errs)
	b.pass1cResolveUnderlyingTypes(&errs)
	b.pass2aRegisterFunctionSignatures(&errs, &warns)
	b.pass2aPopulateFunctionSymbols(&errs)
	b.pass2bProcessReifyStatements(&errs, &warns)
	b.pass2bPopulateVariableSymbols(&errs)

	return g, errs, warns
}

type builder struct {
	g       *GlobalEnv
	modules map[string]*ast.Module
	names   []string
}

func (b *builder) pass1aRegisterTypePlaceholders(errs *[]*errors.Report) {
	for _, name := range b.names {
		mod := b.modules[name]
		for _, stmt := range mod.Stmts {
			switch s := stmt.(type) {
			case *ast.TypeStmt:
				b.registerTypePlaceholder(name, s.Pub, s.Name, s.Sp, errs)
			case *ast.EnumStmt:
				b.registerEnumPlaceholders(name, s, errs)
			}
		}
	}
}

func (b *builder) registerTypePlaceholder(module string, public bool, name string, sp ast.Span, errs *[]*errors.Report) {
	if isPrimitiveTypeName(name) {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("type %q shadows a primitive type", name), &sp))
		return
	}
	if _, ok := b.g.ObjectTypes[name]; ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("type %q shadows an externally declared object type", name), &sp))
		return
	}
	key := TypeKey{Module: module, Name: name}
	if _, ok := b.g.CustomTypes[key]; ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("type %q is already declared in this module", name), &sp))
		return
	}
	b.g.CustomTypes[key] = TypeDesc{Underlying: typesys.Never, Public: public}
}

func (b *builder) registerEnumPlaceholders(module string, s *ast.EnumStmt, errs *[]*errors.Report) {
	if isPrimitiveTypeName(s.Name) {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("enum %q shadows a primitive type", s.Name), &s.Sp))
		return
	}
	if _, ok := b.g.ObjectTypes[s.Name]; ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("enum %q shadows an externally declared object type", s.Name), &s.Sp))
		return
	}
	rootKey := TypeKey{Module: module, Name: s.Name}
	if _, ok := b.g.CustomTypes[rootKey]; ok {
		*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("enum %q is already declared in this module", s.Name), &s.Sp))
		return
	}

	failed := false
	for _, v := range s.Variants {
		qualified := s.Name + "::" + v.Name
		vk := TypeKey{Module: module, Name: qualified}
		if _, ok := b.g.CustomTypes[vk]; ok {
			*errs = append(*errs, errors.New("MOD", errors.MOD002, fmt.Sprintf("variant %q is already declared", qualified), &v.Sp))
			failed = true
		}
	}
	if failed {
		return
	}

	b.g.CustomTypes[rootKey] = TypeDesc{Underlying: typesys.Never, Public: s.Pub}
	for _, v := range s.Variants {
		qualified := s.Name + "::" + v.Name
		b.g.CustomTypes[TypeKey{Module: module, Name: qualified}] = TypeDesc{Underlying: typesys.Never, Public: s.Pub}
	}
}

func (b *builder) pass1bPopulateTypeSymbols(errs *[]*errors.Report) {
	for _, name := range b.names {
		mod := b.modules[name]
		b.importTypeSymbols(name, name, "", nil, errs)
		for _, stmt := range mod.Stmts {
			imp, ok := stmt.(*ast.ImportStmt)
			if !ok {
				continue
			}
			source := pathJoin(imp.ModulePath)
			if !b.g.ModuleExists(source) {
				*errs = append(*errs, errors.New("MOD", errors.MOD004, fmt.Sprintf("unknown module %q", source), &imp.Sp))
				continue
			}
			if source == name {
				*errs = append(*errs, errors.New("MOD", errors.MOD004, "a module cannot import itself", &imp.Sp))
				continue
			}
			prefix := ""
			if !imp.Wildcard {
				prefix = imp.Alias
			}
			b.importTypeSymbols(name, source, prefix, &imp.Sp, errs)
		}
	}
}

func (b *builder) importTypeSymbols(target, source, prefix string, importSpan *ast.Span, errs *[]*errors.Report) {
	table := b.g.symbolTable(target)

	if prefix != "" {
		path := symbolPath([]string{prefix})
		if existing, ok := table[path]; ok {
			b.reportSymbolConflict(prefix, existing, importSpan, errs)
		} else {
			table[path] = Symbol{Kind: SymModule, Module: source}
		}
	}

	for key, desc := range b.g.CustomTypes {
		if key.Module != source {
			continue
		}
		if importSpan != nil && !desc.Public {
			continue
		}
		segs := makeSymbolPath(prefix, key.Name)
		path := symbolPath(segs)
		if existing, ok := table[path]; ok {
			b.reportSymbolConflict(path, existing, importSpan, errs)
			continue
		}
		table[path] = Symbol{Kind: SymCustomType, Module: source, Name: key.Name}
	}
}

func (b *builder) reportSymbolConflict(path string, existing Symbol, importSpan *ast.Span, errs *[]*errors.Report) {
	if importSpan == nil {
		return
	}
	*errs = append(*errs, errors.New("MOD", errors.MOD005,
		fmt.Sprintf("symbol %q already refers to module %q", path, existing.OwningModule()), importSpan))
}

func (b *builder) pass1cResolveUnderlyingTypes(errs *[]*errors.Report) {
	for _, name := range b.names {
		mod := b.modules[name]
		for _, stmt := range mod.Stmts {
			switch s := stmt.(type) {
			case *ast.TypeStmt:
				b.resolveTypeDeclPass2(name, s.Name, s.Underlying, errs)
			case *ast.EnumStmt:
				b.resolveEnumDeclPass2(name, s, errs)
			}
		}
	}
}

func (b *builder) resolveTypeDeclPass2(module, name string, underlying ast.TypeExpr, errs *[]*errors.Report) {
	key := TypeKey{Module: module, Name: name}
	desc, ok := b.g.CustomTypes[key]
	if !ok {
		return
	}
	ut, err := b.g.ResolveType(module, underlying)
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	if b.hasUnguardedReference(ut, module, name) {
		sp := underlying.Span()
		*errs = append(*errs, errors.New("MOD", errors.MOD008, fmt.Sprintf("unguarded recursive type %q", name), &sp))
		return
	}
	b.g.CustomTypes[key] = TypeDesc{Underlying: ut, Public: desc.Public}
}

func (b *builder) resolveEnumDeclPass2(module string, s *ast.EnumStmt, errs *[]*errors.Report) {
	rootKey := TypeKey{Module: module, Name: s.Name}
	desc, ok := b.g.CustomTypes[rootKey]
	if !ok {
		return
	}

	var variantTypes []*typesys.Type
	for _, v := range s.Variants {
		qualified := s.Name + "::" + v.Name
		vk := TypeKey{Module: module, Name: qualified}
		if _, ok := b.g.CustomTypes[vk]; !ok {
			continue
		}

		var ut *typesys.Type
		switch v.Kind {
		case ast.VariantUnit:
			ut = typesys.None
		case ast.VariantTuple:
			switch len(v.TupleFields) {
			case 0:
				ut = typesys.None
			case 1:
				rt, err := b.g.ResolveType(module, v.TupleFields[0])
				if err != nil {
					*errs = append(*errs, err)
					continue
				}
				ut = rt
			default:
				elems := make([]*typesys.Type, 0, len(v.TupleFields))
				failed := false
				for _, f := range v.TupleFields {
					ft, err := b.g.ResolveType(module, f)
					if err != nil {
						*errs = append(*errs, err)
						failed = true
						break
					}
					elems = append(elems, ft)
				}
				if failed {
					continue
				}
				ut = typesys.Tuple(elems...)
			}
		case ast.VariantStruct:
			fields := map[string]*typesys.Type{}
			failed := false
			for _, f := range v.StructFields {
				ft, err := b.g.ResolveType(module, f.Type)
				if err != nil {
					*errs = append(*errs, err)
					failed = true
					break
				}
				fields[f.Name] = ft
			}
			if failed {
				continue
			}
			ut = typesys.Struct(fields)
		}

		if b.hasUnguardedReference(ut, module, qualified) {
			*errs = append(*errs, errors.New("MOD", errors.MOD008, fmt.Sprintf("unguarded recursive type %q", qualified), &v.Sp))
			continue
		}
		b.g.CustomTypes[vk] = TypeDesc{Underlying: ut, Public: desc.Public}
		variantTypes = append(variantTypes, typesys.Custom(module, s.Name, v.Name))
	}

	if len(variantTypes) > 0 {
		b.g.CustomTypes[rootKey] = TypeDesc{Underlying: typesys.Union(variantTypes...), Public: desc.Public}
	}
}

// hasUnguardedReference detects `type A = Int | A;` (direct union membership)
// while allowing `type A = Int | [A];` (guarded by a container).
func (b *builder) hasUnguardedReference(t *typesys.Type, module, name string) bool {
	for _, variant := range t.GetVariants() {
		if b.simpleHasUnguardedReference(variant, module, name) {
			return true
		}
	}
	return false
}

func (b *builder) simpleHasUnguardedReference(t *typesys.Type, module, name string) bool {
	if t.Kind != typesys.KindCustom {
		return false
	}
	key := t.Root
	if t.Variant != "" {
		key = t.Root + "::" + t.Variant
	}
	if t.Module == module && key == name {
		return true
	}
	desc, ok := b.g.CustomTypes[TypeKey{Module: t.Module, Name: key}]
	if !ok || desc.Underlying == typesys.Never {
		return false
	}
	return b.hasUnguardedReference(desc.Underlying, module, name)
}

func pathJoin(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}
