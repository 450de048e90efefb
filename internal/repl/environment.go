package repl

import (
	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
)

// StubEnvironment is a tiny, in-memory eval.Environment for the REPL: no
// declared object types, no externally bound variables, nothing pinned.
// spec.md §6 treats the dataset as an external collaborator the core
// never defines the shape of; the REPL's stub is intentionally the
// simplest thing that satisfies the interface, not a stand-in for a real
// dataset loader (out of scope per spec.md §1 Non-goals: "CSV loaders").
type StubEnvironment struct {
	vars    map[string]ilpvar.ExternVar
	fixed   map[ilpvar.ExternVar]float64
	objects map[string][]eval.ObjectHandle
	fields  map[eval.ObjectHandle]map[string]*eval.Value
}

// NewStubEnvironment returns an empty StubEnvironment. Declare vars with
// Fix before starting a REPL session that references them.
func NewStubEnvironment() *StubEnvironment {
	return &StubEnvironment{
		vars:    map[string]ilpvar.ExternVar{},
		fixed:   map[ilpvar.ExternVar]float64{},
		objects: map[string][]eval.ObjectHandle{},
		fields:  map[eval.ObjectHandle]map[string]*eval.Value{},
	}
}

// Fix pins v to value, registering it so ExternVarFix reports it and so
// ":env" can list it.
func (s *StubEnvironment) Fix(v ilpvar.ExternVar, value float64) {
	s.vars[v.String()] = v
	s.fixed[v] = value
}

// AddObject registers obj with its field values, so a later ObjectsWithType
// /ObjectField call against obj.TypeName can see it.
func (s *StubEnvironment) AddObject(obj eval.ObjectHandle, fields map[string]*eval.Value) {
	s.objects[obj.TypeName] = append(s.objects[obj.TypeName], obj)
	s.fields[obj] = fields
}

func (s *StubEnvironment) ObjectsWithType(typeName string) []eval.ObjectHandle {
	return s.objects[typeName]
}

func (s *StubEnvironment) ObjectField(obj eval.ObjectHandle, field string) (*eval.Value, bool) {
	fields, ok := s.fields[obj]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

func (s *StubEnvironment) ExternVarFix(v ilpvar.ExternVar) (float64, bool) {
	val, ok := s.fixed[v]
	return val, ok
}
