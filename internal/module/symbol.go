package module

import "strings"

// SymbolKind discriminates what a dotted path segment chain resolves to in a
// module's symbol table.
type SymbolKind int

const (
	SymModule SymbolKind = iota
	SymCustomType
	SymFunction
	SymVariable
	SymVariableList
)

// Symbol is one entry of a per-module symbol table: a path maps to exactly
// one of these kinds, carrying the module that actually owns the underlying
// declaration (which may differ from the module whose table holds the entry,
// via import).
type Symbol struct {
	Kind   SymbolKind
	Module string // owning module
	Name   string // bare name within Module (meaningless for SymModule)
}

// OwningModule names the module that actually declared the symbol, for
// SymbolConflict diagnostics.
func (s Symbol) OwningModule() string { return s.Module }

// symbolPath renders a dotted segment list as the flat string key used by the
// per-module symbol table. Segments already include any "$"/"$[...]" marker
// for variables, and enum-variant paths are multi-segment ("Result", "Ok").
func symbolPath(segments []string) string { return strings.Join(segments, "::") }

// makeSymbolPath builds the segment list for a declaration name, optionally
// under an import prefix, splitting "::"-qualified names (enum variants) into
// separate segments the way the original module_processing.rs's
// make_symbol_path does.
func makeSymbolPath(prefix, name string) []string {
	var segs []string
	if prefix != "" {
		segs = append(segs, prefix)
	}
	if strings.Contains(name, "::") {
		segs = append(segs, strings.Split(name, "::")...)
	} else {
		segs = append(segs, name)
	}
	return segs
}

func (g *GlobalEnv) symbolTable(module string) map[string]Symbol {
	t, ok := g.Symbols[module]
	if !ok {
		t = map[string]Symbol{}
		g.Symbols[module] = t
	}
	return t
}

// lookupSymbol resolves segments within module's own symbol table (§4.3
// "Path resolution"): the full path is tried first; failing that, if the
// first segment names a SymModule entry, that segment is consumed and the
// remainder is looked up in that module's table, one segment at a time.
func (g *GlobalEnv) lookupSymbol(module string, segments []string) (Symbol, bool) {
	table, ok := g.Symbols[module]
	if !ok {
		return Symbol{}, false
	}
	if sym, ok := table[symbolPath(segments)]; ok {
		return sym, true
	}
	if len(segments) > 1 {
		if head, ok := table[segments[0]]; ok && head.Kind == SymModule {
			return g.lookupSymbol(head.Module, segments[1:])
		}
	}
	return Symbol{}, false
}
