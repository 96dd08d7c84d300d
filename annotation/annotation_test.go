package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/scope"
)

func newStackWithBuiltins() (*scope.Stack, *model.Module) {
	builtins := model.NewBuiltinModule()
	for _, name := range []string{"int", "str", "bytes", "NoneType", "type"} {
		builtins.SetMember(name, model.NewClass(name, builtins), false)
	}
	return scope.New(builtins), builtins
}

func TestLookupNameResolvesClass(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{Kind: ExprName, Name: "int"})
	cls, ok := result.(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "int", cls.Name())
}

func TestUndefinedNameYieldsUnknown(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{Kind: ExprName, Name: "DoesNotExist"})
	assert.True(t, model.IsUnknown(result))
}

func TestFinalizeStripsModuleWrapper(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	other := model.NewSourceModule("helpers")
	stack.Global()["helpers"] = other
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{Kind: ExprName, Name: "helpers"})
	assert.True(t, model.IsUnknown(result), "a bare module name is not a valid type")
}

func TestAttributeChainThroughModule(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	other := model.NewSourceModule("helpers")
	widget := model.NewClass("Widget", other)
	other.SetMember("Widget", widget, false)
	stack.Global()["helpers"] = other
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{
		Kind:   ExprAttribute,
		Object: &Expr{Kind: ExprName, Name: "helpers"},
		Attr:   "Widget",
	})
	assert.Same(t, widget, result)
}

func TestMakeGenericListAndDict(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	listResult := ev.Evaluate(&Expr{
		Kind:   ExprSubscript,
		Object: &Expr{Kind: ExprName, Name: "List"},
		Args:   []*Expr{{Kind: ExprName, Name: "int"}},
	})
	seq, ok := listResult.(*model.Sequence)
	require.True(t, ok)
	require.Len(t, seq.ElementTypes, 1)

	dictResult := ev.Evaluate(&Expr{
		Kind:   ExprSubscript,
		Object: &Expr{Kind: ExprName, Name: "Dict"},
		Args:   []*Expr{{Kind: ExprName, Name: "str"}, {Kind: ExprName, Name: "int"}},
	})
	lookup, ok := dictResult.(*model.Lookup)
	require.True(t, ok)
	assert.Len(t, lookup.KeyTypes, 1)
	assert.Len(t, lookup.ValueTypes, 1)
}

func TestMakeGenericOptionalUnwraps(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{
		Kind:   ExprSubscript,
		Object: &Expr{Kind: ExprName, Name: "Optional"},
		Args:   []*Expr{{Kind: ExprName, Name: "int"}},
	})
	cls, ok := result.(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "int", cls.Name())
}

func TestMakeGenericByteStringIsBytes(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{Kind: ExprSubscript, Object: &Expr{Kind: ExprName, Name: "ByteString"}})
	cls, ok := result.(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "bytes", cls.Name())
}

func TestMakeGenericUnionViaBinOr(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{
		Kind:  ExprBinOr,
		Left:  &Expr{Kind: ExprName, Name: "int"},
		Right: &Expr{Kind: ExprName, Name: "str"},
	})
	types := GetUnionTypes(result)
	assert.Len(t, types, 2)
}

func TestTypeFactoryForUserClassIsSynthetic(t *testing.T) {
	stack, builtins := newStackWithBuiltins()
	mod := model.NewSourceModule("pkg")
	widget := model.NewClass("Widget", mod)
	stack.Global()["Widget"] = widget
	ev := NewEvaluator(stack, builtins)

	result := ev.Evaluate(&Expr{
		Kind:   ExprSubscript,
		Object: &Expr{Kind: ExprName, Name: "Type"},
		Args:   []*Expr{{Kind: ExprName, Name: "Widget"}},
	})
	factory, ok := result.(*model.Class)
	require.True(t, ok)
	assert.True(t, factory.IsClassFactory)
	assert.Same(t, widget, factory.Base())
}
