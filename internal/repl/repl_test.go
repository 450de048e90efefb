package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
)

// These tests exercise the REPL's per-line evaluation logic directly rather
// than through Start: Start's read loop is driven by peterh/liner, which
// (like the teacher's own Start) talks to the real terminal regardless of
// the io.Reader passed in, so it cannot be driven by a string buffer.

func TestStubEnvironmentFixAndObjects(t *testing.T) {
	env := NewStubEnvironment()
	v := ilpvar.ExternVar{Name: "Capacity"}
	env.Fix(v, 42)

	got, ok := env.ExternVarFix(v)
	require.True(t, ok)
	require.Equal(t, 42.0, got)

	_, ok = env.ExternVarFix(ilpvar.ExternVar{Name: "Other"})
	require.False(t, ok)

	handle := eval.ObjectHandle{TypeName: "Room", ID: "1"}
	env.AddObject(handle, map[string]*eval.Value{"capacity": eval.IntValue(30)})

	handles := env.ObjectsWithType("Room")
	require.Equal(t, []eval.ObjectHandle{handle}, handles)

	field, ok := env.ObjectField(handle, "capacity")
	require.True(t, ok)
	require.Equal(t, int64(30), field.Int)

	_, ok = env.ObjectField(handle, "missing")
	require.False(t, ok)
}

func TestREPLEvalLineArithmetic(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.evalLine("1 + 2 * 3", &out)
	require.Contains(t, out.String(), "7")
}

func TestREPLEvalLineBooleanComparison(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.evalLine("2 > 1", &out)
	require.Contains(t, out.String(), "true")
}

func TestREPLTypeOfPicksFirstMatchingCandidate(t *testing.T) {
	r := New()
	typ, err := r.typeOf("1 + 2")
	require.NoError(t, err)
	require.Equal(t, "Int", typ.String())
}

func TestREPLTypeOfReportsErrorForUntypeableExpression(t *testing.T) {
	r := New()
	_, err := r.typeOf("$Nope()")
	require.Error(t, err)
}

func TestREPLHandleCommandHelp(t *testing.T) {
	r := New()
	var out bytes.Buffer
	quit := r.handleCommand(":help", &out)
	require.False(t, quit)
	require.Contains(t, out.String(), ":help")
}

func TestREPLHandleCommandQuit(t *testing.T) {
	r := New()
	var out bytes.Buffer
	require.True(t, r.handleCommand(":quit", &out))
}

func TestREPLHandleCommandUnknown(t *testing.T) {
	r := New()
	var out bytes.Buffer
	quit := r.handleCommand(":bogus", &out)
	require.False(t, quit)
	require.Contains(t, out.String(), "unknown command")
}

func TestREPLEnvCommandListsFixedVariables(t *testing.T) {
	r := &REPL{env: func() *StubEnvironment {
		e := NewStubEnvironment()
		e.Fix(ilpvar.ExternVar{Name: "Capacity"}, 10)
		return e
	}()}
	var out bytes.Buffer
	r.handleCommand(":env", &out)
	require.Contains(t, out.String(), "Capacity")
}
