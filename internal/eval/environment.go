package eval

import "github.com/collomatique/colloml/internal/ilpvar"

// Environment is the C6 external collaborator (spec.md §6 "External
// Interfaces"): the dataset that VarCall/VarListCall, object field access
// and GlobalList consult. internal/problem supplies the concrete
// implementation backed by whatever the caller's dataset actually is;
// internal/eval only depends on this narrow interface, the same way the
// teacher's internal/eval depends on its own Host/effects abstraction
// rather than a concrete runtime.
type Environment interface {
	// ObjectsWithType returns every object handle of the given declared
	// object type, in a stable, deterministic order (spec.md §9
	// "determinism via key order").
	ObjectsWithType(typeName string) []ObjectHandle

	// ObjectField resolves a field of a previously returned ObjectHandle.
	ObjectField(obj ObjectHandle, field string) (*Value, bool)

	// ExternVarFix reports whether a base ILP variable has been pinned to a
	// fixed value ahead of evaluation (spec.md §6 "extern_var_fix"); if so,
	// VarCall substitutes the constant instead of emitting a symbolic term.
	ExternVarFix(v ilpvar.ExternVar) (float64, bool)
}
