package eval

// LocalEvalEnv tracks the runtime values of local bindings (function
// parameters, let bindings, quantifier variables, match binders) during a
// single evaluation. It mirrors check.localEnv's push/pop/pending-scope
// shape exactly (internal/check/localenv.go), and in turn
// original_source/collo-ml/src/eval/local_env.rs's LocalEvalEnv: a binding
// registered via Bind is not visible until the following PushScope, so a
// quantifier's own variable can never shadow itself mid-registration.
type LocalEvalEnv struct {
	scopes  []map[string]*Value
	pending map[string]*Value
}

func NewLocalEvalEnv() *LocalEvalEnv {
	return &LocalEvalEnv{pending: map[string]*Value{}}
}

func (l *LocalEvalEnv) Bind(name string, v *Value) {
	l.pending[name] = v
}

func (l *LocalEvalEnv) PushScope() {
	l.scopes = append(l.scopes, l.pending)
	l.pending = map[string]*Value{}
}

func (l *LocalEvalEnv) PopScope() {
	n := len(l.scopes)
	l.scopes = l.scopes[:n-1]
}

func (l *LocalEvalEnv) Lookup(name string) (*Value, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if v, ok := l.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names mirrors check.localEnv.names: the set of currently-visible local
// bindings, needed by module.ResolvePath to distinguish a local variable
// from a module-level symbol of the same name.
func (l *LocalEvalEnv) Names() map[string]bool {
	out := map[string]bool{}
	for _, s := range l.scopes {
		for name := range s {
			out[name] = true
		}
	}
	return out
}
