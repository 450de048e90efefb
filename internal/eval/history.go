package eval

import (
	"github.com/google/uuid"

	"github.com/collomatique/colloml/internal/ilpvar"
)

// callKey identifies a memoised function call (module, function, rendered
// argument values). Args is Value.String() of each argument joined the same
// way ilpvar.EncodeParams joins ILP variable parameters, since both need the
// same "distinct argument vectors never collide" guarantee.
type callKey struct {
	Module string
	Name   string
	Args   string
}

type cacheEntry struct {
	Value  *Value
	Origin ilpvar.Origin
}

// EvalHistory is C7: the per-batch call-history cache. It owns the
// memoisation table that guarantees at most one evaluation of (function,
// args) per batch (spec.md §4.7), and accumulates the private reified
// variables and variable-list elements that VarCall/VarListCall touch along
// the way, so internal/problem can harvest them once the script finishes
// evaluating instead of re-walking the AST.
//
// Grounded on original_source/collo-ml/src/eval/local_env.rs's EvalHistory:
// add_fn_to_call_history, the vars/var_lists accumulators and the
// var_str_cache. BatchID is stamped from a fresh UUID per history instance
// (google/uuid), matching SPEC_FULL.md's batch-identity wiring for
// ilpvar.Origin.
type EvalHistory struct {
	Env     Environment
	BatchID string

	cache map[callKey]cacheEntry

	privateVars    map[string]ilpvar.IlpVar // keyed by IlpVar.String(), insertion order in privateOrder
	privateOrder   []ilpvar.IlpVar
	privateVarList map[string][]ilpvar.IlpVar // keyed by "module::name"

	strCache map[string]string
}

func NewEvalHistory(env Environment) *EvalHistory {
	return &EvalHistory{
		Env:            env,
		BatchID:        uuid.NewString(),
		cache:          map[callKey]cacheEntry{},
		privateVars:    map[string]ilpvar.IlpVar{},
		privateVarList: map[string][]ilpvar.IlpVar{},
		strCache:       map[string]string{},
	}
}

func argsKey(args []*Value) string {
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = a.String()
	}
	return ilpvar.EncodeParams(rendered)
}

// Lookup returns a previously cached evaluation of (module, name, args), if
// any call-history entry exists for it.
func (h *EvalHistory) Lookup(module, name string, args []*Value) (*Value, ilpvar.Origin, bool) {
	e, ok := h.cache[callKey{Module: module, Name: name, Args: argsKey(args)}]
	return e.Value, e.Origin, ok
}

// LookupByArgsKey is Lookup's counterpart for callers that already hold an
// ilpvar-encoded argument string (internal/problem harvesting the body
// backing a ScriptVar via its IlpVar.Script.Params, which is encoded by the
// same ilpvar.EncodeParams(valueStrings(...)) pair as argsKey uses here).
func (h *EvalHistory) LookupByArgsKey(module, name, argsKey string) (*Value, ilpvar.Origin, bool) {
	e, ok := h.cache[callKey{Module: module, Name: name, Args: argsKey}]
	return e.Value, e.Origin, ok
}

// Store records the result of evaluating (module, name, args) under origin,
// so a later call with the same arguments within this batch is served from
// cache rather than re-evaluated.
func (h *EvalHistory) Store(module, name string, args []*Value, v *Value, origin ilpvar.Origin) {
	h.cache[callKey{Module: module, Name: name, Args: argsKey(args)}] = cacheEntry{Value: v, Origin: origin}
}

// RecordVar registers an ILP variable produced by a VarCall/VarListCall
// evaluation, deduplicated by its canonical string form.
func (h *EvalHistory) RecordVar(v ilpvar.IlpVar, origin ilpvar.Origin) {
	key := v.String()
	if _, ok := h.privateVars[key]; ok {
		return
	}
	h.privateVars[key] = v
	h.privateOrder = append(h.privateOrder, v)
	_ = origin
}

// RecordVarListElem appends one element of a VarListCall evaluation under
// "module::name", preserving the order elements were produced in.
func (h *EvalHistory) RecordVarListElem(module, name string, v ilpvar.IlpVar) {
	key := module + "::" + name
	h.privateVarList[key] = append(h.privateVarList[key], v)
}

// Vars returns every distinct ILP variable touched so far, in first-touched
// order, for internal/problem to harvest once a script finishes evaluating.
func (h *EvalHistory) Vars() []ilpvar.IlpVar {
	out := make([]ilpvar.IlpVar, len(h.privateOrder))
	copy(out, h.privateOrder)
	return out
}

// VarList returns the accumulated elements of a named variable list.
func (h *EvalHistory) VarList(module, name string) []ilpvar.IlpVar {
	return h.privateVarList[module+"::"+name]
}

// InternString caches a value's rendered form, since the same ILP variable
// name is typically stringified many times while building a batch's
// problem (mirrors var_str_cache in local_env.rs).
func (h *EvalHistory) InternString(key string, compute func() string) string {
	if s, ok := h.strCache[key]; ok {
		return s
	}
	s := compute()
	h.strCache[key] = s
	return s
}
