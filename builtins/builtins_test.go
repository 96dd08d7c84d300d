package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/model"
)

func TestNewPopulatesCoreScalarTypes(t *testing.T) {
	mod := New()
	for _, name := range []string{"int", "str", "float", "bool", "bytes", "list", "dict", "set", "tuple", "NoneType", "object"} {
		v, ok := mod.Member(name)
		require.Truef(t, ok, "missing builtin type %q", name)
		assert.Equal(t, model.KindClass, v.Kind())
	}
}

func TestEveryScalarTypeDerivesFromObject(t *testing.T) {
	mod := New()
	object := mod.Members()["object"].(*model.Class)
	str := mod.Members()["str"].(*model.Class)
	require.Len(t, str.Bases(), 1)
	assert.Same(t, object, str.Bases()[0])
	assert.Empty(t, object.Bases())
}

func TestStringUpperReturnsStrInstance(t *testing.T) {
	mod := New()
	str := mod.Members()["str"].(*model.Class)
	upper, ok := str.Member("upper")
	require.True(t, ok)
	fn := upper.(*model.Function)
	returns := fn.Overloads()[0].EnsureReturnTypes()
	require.Len(t, returns, 1)
	inst := returns[0].(*model.Instance)
	assert.Equal(t, "str", inst.Class.Name())
}

func TestListPopHasNoDeterminedReturnType(t *testing.T) {
	mod := New()
	list := mod.Members()["list"].(*model.Class)
	pop, ok := list.Member("pop")
	require.True(t, ok)
	fn := pop.(*model.Function)
	assert.Empty(t, fn.Overloads()[0].EnsureReturnTypes())
}

func TestNewReturnsIndependentModulesPerCall(t *testing.T) {
	a := New()
	b := New()
	assert.NotSame(t, a.Members()["str"], b.Members()["str"])
}
