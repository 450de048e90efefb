package module

import (
	"fmt"
	"strings"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/typesys"
)

// ResolveType turns a parsed ast.TypeExpr into a structural typesys.Type
// within module's scope, following the symbol table for named references
// (custom types, enum roots, enum variants) and consulting ObjectTypes
// directly for externally declared record types, which are visible from any
// module without qualification.
func (g *GlobalEnv) ResolveType(module string, t ast.TypeExpr) (*typesys.Type, *errors.Report) {
	switch n := t.(type) {
	case *ast.PrimitiveType:
		return primitiveTypesysType(n.Kind), nil

	case *ast.NamedType:
		return g.resolveNamedType(module, n)

	case *ast.OptionalType:
		inner, err := g.ResolveType(module, n.Inner)
		if err != nil {
			return nil, err
		}
		return typesys.Optional(inner), nil

	case *ast.UnionType:
		members := make([]*typesys.Type, 0, len(n.Members))
		for _, m := range n.Members {
			mt, err := g.ResolveType(module, m)
			if err != nil {
				return nil, err
			}
			members = append(members, mt)
		}
		return typesys.Union(members...), nil

	case *ast.ListType:
		elem, err := g.ResolveType(module, n.Elem)
		if err != nil {
			return nil, err
		}
		return typesys.List(elem), nil

	case *ast.TupleType:
		elems := make([]*typesys.Type, 0, len(n.Elems))
		for _, e := range n.Elems {
			et, err := g.ResolveType(module, e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, et)
		}
		return typesys.Tuple(elems...), nil

	case *ast.StructType:
		fields := make(map[string]*typesys.Type, len(n.Fields))
		for _, f := range n.Fields {
			ft, err := g.ResolveType(module, f.Type)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ft
		}
		return typesys.Struct(fields), nil

	default:
		sp := t.Span()
		return nil, errors.New("MOD", errors.MOD010, fmt.Sprintf("unrecognised type expression %T", t), &sp)
	}
}

func primitiveTypesysType(k ast.PrimitiveKind) *typesys.Type {
	switch k {
	case ast.PrimInt:
		return typesys.Int
	case ast.PrimBool:
		return typesys.Bool
	case ast.PrimString:
		return typesys.String
	case ast.PrimNone:
		return typesys.None
	case ast.PrimLinExpr:
		return typesys.LinExpr
	case ast.PrimConstraint:
		return typesys.Constraint
	default:
		return typesys.Never
	}
}

func (g *GlobalEnv) resolveNamedType(module string, n *ast.NamedType) (*typesys.Type, *errors.Report) {
	if len(n.Segments) == 1 {
		if fields, ok := g.ObjectTypes[n.Segments[0]]; ok {
			_ = fields
			return typesys.Object(n.Segments[0]), nil
		}
	}

	sym, ok := g.lookupSymbol(module, n.Segments)
	if !ok || sym.Kind != SymCustomType {
		sp := n.Sp
		return nil, errors.New("MOD", errors.MOD003, fmt.Sprintf("unknown type %q", strings.Join(n.Segments, "::")), &sp)
	}

	root, variant := splitRootVariant(sym.Name)
	return typesys.Custom(sym.Module, root, variant), nil
}

func splitRootVariant(name string) (root, variant string) {
	if i := strings.Index(name, "::"); i >= 0 {
		return name[:i], name[i+2:]
	}
	return name, ""
}

// ResolvedKind discriminates what a generic dotted path resolves to, for use
// by the checker (C4) and evaluator (C6) alike.
type ResolvedKind int

const (
	ResolvedLocalVariable ResolvedKind = iota
	ResolvedFunction
	ResolvedType
	ResolvedModule
	ResolvedExternalVariable
	ResolvedInternalVariable
	ResolvedVariableList
)

// Resolved is the outcome of ResolvePath.
type Resolved struct {
	Kind   ResolvedKind
	Module string // owning module, for Function/InternalVariable/VariableList/Type
	Name   string // bare name within Module
	Type   *typesys.Type
}

// ResolvePath resolves a dotted path within module's scope. localNames, if
// non-nil, is checked first (a local binding always shadows a module-level
// symbol). This is the single resolution routine shared by C4 and C6, per
// §4.3 "Path resolution is pure and reusable by both the checker and the
// evaluator."
func (g *GlobalEnv) ResolvePath(module string, segments []string, localNames map[string]bool) (Resolved, *errors.Report) {
	if len(segments) == 1 && localNames != nil && localNames[segments[0]] {
		return Resolved{Kind: ResolvedLocalVariable, Name: segments[0]}, nil
	}

	if len(segments) == 1 {
		if _, ok := g.ExternalVariables[segments[0]]; ok {
			return Resolved{Kind: ResolvedExternalVariable, Name: segments[0]}, nil
		}
	}

	sym, ok := g.lookupSymbol(module, segments)
	if !ok {
		return Resolved{}, errors.New("MOD", errors.MOD003, fmt.Sprintf("unknown identifier %q", strings.Join(segments, "::")), nil)
	}

	switch sym.Kind {
	case SymModule:
		return Resolved{Kind: ResolvedModule, Module: sym.Module}, nil
	case SymCustomType:
		root, variant := splitRootVariant(sym.Name)
		return Resolved{Kind: ResolvedType, Module: sym.Module, Name: sym.Name, Type: typesys.Custom(sym.Module, root, variant)}, nil
	case SymFunction:
		return Resolved{Kind: ResolvedFunction, Module: sym.Module, Name: sym.Name}, nil
	case SymVariable:
		return Resolved{Kind: ResolvedInternalVariable, Module: sym.Module, Name: sym.Name}, nil
	case SymVariableList:
		return Resolved{Kind: ResolvedVariableList, Module: sym.Module, Name: sym.Name}, nil
	default:
		return Resolved{}, errors.New("MOD", errors.MOD003, "unresolvable symbol kind", nil)
	}
}
