package ilpvar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/ilpvar"
)

func TestBaseVarString(t *testing.T) {
	v := ilpvar.NewBase("capacity", []string{"room1", "monday"})
	require.Equal(t, `capacity("room1","monday")`, v.String())
	require.True(t, v.IsBase())
	require.False(t, v.IsScript())
}

func TestBaseVarNoParams(t *testing.T) {
	v := ilpvar.NewBase("total", nil)
	require.Equal(t, "total", v.String())
}

func TestScriptVarWithIndex(t *testing.T) {
	v := ilpvar.NewScript("scheduling", "slot_ok", true, 3, []string{"m1"})
	require.Equal(t, `scheduling::slot_ok[3]("m1")`, v.String())
}

func TestIlpVarEqualityIsStructural(t *testing.T) {
	a := ilpvar.NewBase("x", []string{"1"})
	b := ilpvar.NewBase("x", []string{"1"})
	c := ilpvar.NewBase("x", []string{"2"})
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestIlpVarUsableAsMapKey(t *testing.T) {
	m := map[ilpvar.IlpVar]int{}
	v := ilpvar.NewScript("mod", "f", false, 0, nil)
	m[v] = 42
	require.Equal(t, 42, m[ilpvar.NewScript("mod", "f", false, 0, nil)])
}

func TestOriginExtend(t *testing.T) {
	o := ilpvar.NewOrigin("batch-1", "sched", "top_fn")
	nested := o.Extend("helper")
	require.Equal(t, "top_fn.helper", nested.CallPath)
	require.Equal(t, "top_fn", o.CallPath, "Extend must not mutate the receiver")
}
