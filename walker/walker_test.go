package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/model"
)

func TestPrePassResolvesForwardReference(t *testing.T) {
	code := `
def make():
    return Widget()

class Widget:
    pass
`
	mod, _ := walkCode(t, "m", code)

	fn, ok := mod.Member("make")
	require.True(t, ok)
	function, ok := fn.(*model.Function)
	require.True(t, ok)
	require.Len(t, function.Overloads(), 1)

	returns := function.Overloads()[0].EnsureReturnTypes()
	require.Len(t, returns, 1)
	inst, ok := returns[0].(*model.Instance)
	require.True(t, ok)
	assert.Equal(t, "Widget", inst.Class.Name())
}

func TestPrePassAliasesBareAssignmentToKnownName(t *testing.T) {
	code := `
def helper():
    pass

alias = helper
`
	mod, _ := walkCode(t, "m", code)

	original, ok := mod.Member("helper")
	require.True(t, ok)
	aliased, ok := mod.Member("alias")
	require.True(t, ok)
	assert.Same(t, original, aliased)
}

func TestAnnotatedAssignmentBindsConstantType(t *testing.T) {
	code := `count: int = 0`
	mod, _ := walkCode(t, "m", code)

	v, ok := mod.Member("count")
	require.True(t, ok)
	multi, ok := v.(*model.MultipleMember)
	require.True(t, ok, "expected the annotation constant fused with the rhs value, got %T", v)
	require.Len(t, multi.Elements, 2)
	constant, ok := multi.Elements[0].(*model.Constant)
	require.True(t, ok, "expected the annotation constant first, got %T", multi.Elements[0])
	require.Len(t, constant.Types, 1)
	assert.Equal(t, "int", constant.Types[0].Name())
	inst, ok := multi.Elements[1].(*model.Instance)
	require.True(t, ok, "expected the rhs value second, got %T", multi.Elements[1])
	assert.Equal(t, "int", inst.Class.Name())
}

func TestAnnotatedAssignmentWithNoValueBindsConstant(t *testing.T) {
	code := `
class C:
    name: str
`
	mod, _ := walkCode(t, "m", code)
	cls := mod.Members()["C"].(*model.Class)
	v, ok := cls.Member("name")
	require.True(t, ok)
	_, ok = v.(*model.Constant)
	assert.True(t, ok, "expected a Constant for an annotation-only binding, got %T", v)
}

func TestEllipsisAssignmentIsUnknown(t *testing.T) {
	code := `stub = ...`
	mod, _ := walkCode(t, "m", code)
	v, ok := mod.Member("stub")
	require.True(t, ok)
	assert.True(t, model.IsUnknown(v))
}

func TestPlainImportBindsLazyNestedModule(t *testing.T) {
	code := `import os.path`
	mod, _ := walkCode(t, "m", code)
	v, ok := mod.Member("os")
	require.True(t, ok)
	nested, ok := v.(*model.Module)
	require.True(t, ok)
	assert.Equal(t, model.NestedModuleFlavor, nested.Flavor)
}

func TestAliasedImportBindsUnderAlias(t *testing.T) {
	code := `import numpy as np`
	mod, _ := walkCode(t, "m", code)
	_, ok := mod.Member("numpy")
	assert.False(t, ok)
	v, ok := mod.Member("np")
	require.True(t, ok)
	assert.Equal(t, "np", v.Name())
}

func TestFromImportBindsMemberThroughLazyLookup(t *testing.T) {
	target := model.NewSourceModule("pkg.util")
	target.SetMember("helper", model.NewFunction("helper", target, nil), false)

	load := func(name string) *model.Module {
		if name == "pkg.util" {
			return target
		}
		return nil
	}
	mod, _ := func() (*model.Module, *recordingReporter) {
		w, root, reporter := newTestWalker(t, "m", "from pkg.util import helper", load)
		w.Walk(root)
		return w.Module, reporter
	}()

	v, ok := mod.Member("helper")
	require.True(t, ok)
	resolved := model.Resolve(v)
	fn, ok := resolved.(*model.Function)
	require.True(t, ok)
	assert.Equal(t, "helper", fn.Name())
}

func TestFromImportSelfOnlyBindsExplicitAlias(t *testing.T) {
	code := `
def thing():
    pass

from m import thing as alias
`
	mod, _ := walkCode(t, "m", code)
	_, hasPlain := mod.Member("thing")
	assert.True(t, hasPlain)
	aliased, ok := mod.Member("alias")
	require.True(t, ok)
	assert.Equal(t, "thing", aliased.Name())
}

func TestFutureImportIsIgnored(t *testing.T) {
	code := `from __future__ import annotations`
	mod, reporter := walkCode(t, "m", code)
	assert.Empty(t, mod.Members())
	assert.Empty(t, reporter.traces)
}

func TestTypingImportMaterializesShimClass(t *testing.T) {
	code := `from typing import Optional`
	mod, _ := walkCode(t, "m", code)
	v, ok := mod.Member("Optional")
	require.True(t, ok)
	_, ok = v.(*model.Class)
	assert.True(t, ok)
}

func TestStubModuleDropsTypingImportsOnCompletion(t *testing.T) {
	code := `from typing import Optional`
	w, root, _ := newTestWalker(t, "pkg", code, nil)
	w.IsStub = true
	w.Walk(root)
	_, ok := w.Module.Member("Optional")
	assert.False(t, ok, "typing-imported names must not survive into a stub module's public table")
}

func TestWildcardImportSkipsUnderscoreNames(t *testing.T) {
	source := model.NewSourceModule("pkg.all")
	source.SetMember("Public", model.NewClass("Public", source), false)
	source.SetMember("_Private", model.NewClass("_Private", source), false)

	load := func(name string) *model.Module {
		if name == "pkg.all" {
			return source
		}
		return nil
	}
	w, root, _ := newTestWalker(t, "m", "from pkg.all import *", load)
	w.Walk(root)

	_, ok := w.Module.Member("Public")
	assert.True(t, ok)
	_, ok = w.Module.Member("_Private")
	assert.False(t, ok)
}

func TestRelativeImportClimbsPackageLevels(t *testing.T) {
	sibling := model.NewSourceModule("pkg.sibling")
	sibling.SetMember("thing", model.NewFunction("thing", sibling, nil), false)

	var requested string
	load := func(name string) *model.Module {
		requested = name
		if name == "pkg.sibling" {
			return sibling
		}
		return nil
	}
	w, root, _ := newTestWalker(t, "pkg.sub.mod", "from ..sibling import thing", load)
	w.Walk(root)

	v, ok := w.Module.Member("thing")
	assert.True(t, ok)
	model.Resolve(v) // the from-import is lazy; resolving it runs Load
	assert.Equal(t, "pkg.sibling", requested)
}

func TestVersionGuardWalksMatchingBranchOnly(t *testing.T) {
	code := `
import sys

if sys.version_info >= (3, 8):
    def feature():
        pass
else:
    def feature():
        return 1
`
	mod, _ := walkCode(t, "m", code)
	v, ok := mod.Member("feature")
	require.True(t, ok)
	fn := v.(*model.Function)
	returns := fn.Overloads()[0].EnsureReturnTypes()
	assert.Empty(t, returns, "the >= 3.8 branch (walker's test version is 3.11) has a bare `pass` body")
}

func TestVersionGuardFallsBackToAllBranchesWhenUnrecognised(t *testing.T) {
	code := `
import sys

if sys.version_info.major == 3:
    def a():
        pass
else:
    def b():
        pass
`
	mod, _ := walkCode(t, "m", code)
	_, hasA := mod.Member("a")
	_, hasB := mod.Member("b")
	assert.True(t, hasA)
	assert.True(t, hasB)
}

func TestImportNotFoundIsReported(t *testing.T) {
	mod, reporter := walkCode(t, "m", "import does_not_exist")
	v, ok := mod.Member("does_not_exist")
	require.True(t, ok)
	model.Resolve(v) // triggers the lazy resolution that reports ImportNotFound
	assert.True(t, reporter.has(diagnostic.ImportNotFound))
}
