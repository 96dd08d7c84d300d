package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/model"
)

func TestPropertyDecoratorProducesProperty(t *testing.T) {
	code := `
class Widget:
    @property
    def name(self):
        return "widget"
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["Widget"].(*model.Class)
	v, ok := cls.Member("name")
	require.True(t, ok)
	prop, ok := v.(*model.Property)
	require.True(t, ok)
	assert.True(t, prop.IsReadOnly())
}

func TestSetterDecoratorMarksPropertyWritable(t *testing.T) {
	code := `
class Widget:
    @property
    def name(self):
        return "widget"

    @name.setter
    def name(self, value):
        pass
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["Widget"].(*model.Class)
	v, ok := cls.Member("name")
	require.True(t, ok)
	prop := v.(*model.Property)
	assert.False(t, prop.IsReadOnly())
}

func TestClassMethodAndStaticMethodFlags(t *testing.T) {
	code := `
class Factory:
    @classmethod
    def create(cls):
        pass

    @staticmethod
    def helper():
        pass
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["Factory"].(*model.Class)

	create := cls.Members()["create"].(*model.Function)
	assert.True(t, create.IsClassMethod)
	assert.False(t, create.IsStatic)

	helper := cls.Members()["helper"].(*model.Function)
	assert.True(t, helper.IsStatic)
	assert.False(t, helper.IsClassMethod)
}

func TestRepeatedDefinitionAccumulatesOverloads(t *testing.T) {
	code := `
from typing import overload

@overload
def handle(x: int) -> int: ...
@overload
def handle(x: str) -> str: ...
def handle(x):
    return x
`
	mod, _ := walkCode(t, "m", code)
	fn := mod.Members()["handle"].(*model.Function)
	assert.Len(t, fn.Overloads(), 3)
}

func TestMethodBindsSelfToInstanceOfOwningClass(t *testing.T) {
	code := `
class Box:
    def get(self):
        return self
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["Box"].(*model.Class)
	fn := cls.Members()["get"].(*model.Function)
	returns := fn.Overloads()[0].EnsureReturnTypes()
	require.Len(t, returns, 1)
	inst, ok := returns[0].(*model.Instance)
	require.True(t, ok)
	assert.Same(t, cls, inst.Class)
}

func TestStaticMethodDoesNotBindSelf(t *testing.T) {
	code := `
class Box:
    @staticmethod
    def make():
        return Box()
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["Box"].(*model.Class)
	fn := cls.Members()["make"].(*model.Function)
	returns := fn.Overloads()[0].EnsureReturnTypes()
	require.Len(t, returns, 1)
	inst := returns[0].(*model.Instance)
	assert.Same(t, cls, inst.Class)
}

func TestFunctionDocstringCaptured(t *testing.T) {
	code := `
def greet():
    """Say hello."""
    pass
`
	mod, _ := walkCode(t, "m", code)
	fn := mod.Members()["greet"].(*model.Function)
	assert.Contains(t, fn.Overloads()[0].Doc, "Say hello")
}

func TestReturnAnnotationCapturedAsSourceText(t *testing.T) {
	code := `
def count() -> int:
    return 0
`
	mod, _ := walkCode(t, "m", code)
	fn := mod.Members()["count"].(*model.Function)
	assert.Equal(t, "int", fn.Overloads()[0].ReturnAnnotation)
}
