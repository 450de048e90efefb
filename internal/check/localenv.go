package check

import "github.com/collomatique/colloml/internal/typesys"

// localEnv tracks the types of local bindings (function parameters, let
// bindings, quantifier variables, match binders) during a single function
// body's check. It mirrors the push/pop/pending-scope shape of
// original_source's LocalEvalEnv (internal/eval's evaluator uses the same
// shape at runtime): a binding registered via bind is not visible until the
// following pushScope, so a quantifier's own variable can never shadow
// itself mid-registration.
type localEnv struct {
	module  string
	scopes  []map[string]*typesys.Type
	pending map[string]*typesys.Type
}

func newLocalEnv(module string) *localEnv {
	return &localEnv{module: module, pending: map[string]*typesys.Type{}}
}

func (l *localEnv) bind(name string, t *typesys.Type) {
	l.pending[name] = t
}

func (l *localEnv) pushScope() {
	l.scopes = append(l.scopes, l.pending)
	l.pending = map[string]*typesys.Type{}
}

func (l *localEnv) popScope() {
	n := len(l.scopes)
	l.scopes = l.scopes[:n-1]
}

func (l *localEnv) lookup(name string) (*typesys.Type, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if t, ok := l.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (l *localEnv) has(name string) bool {
	_, ok := l.lookup(name)
	return ok
}

func (l *localEnv) names() map[string]bool {
	out := map[string]bool{}
	for _, s := range l.scopes {
		for name := range s {
			out[name] = true
		}
	}
	return out
}
