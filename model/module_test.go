package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleFullyQualifiedName(t *testing.T) {
	m := NewSourceModule("myapp.utils.helpers")
	assert.Equal(t, "myapp.utils.helpers", m.FullyQualifiedName())
	assert.Equal(t, "helpers", m.Name())
}

func TestModuleSetMemberOverwriteVsMerge(t *testing.T) {
	m := NewSourceModule("pkg")
	first := NewConstant("x", Location{}, nil)
	second := NewConstant("x", Location{}, nil)

	m.SetMember("x", first, false)
	m.SetMember("x", second, false)
	v, ok := m.Member("x")
	require.True(t, ok)
	assert.Same(t, second, v, "overwrite mode should replace unconditionally")

	m.SetMember("x", first, false)
	m.SetMember("x", second, true)
	v, ok = m.Member("x")
	require.True(t, ok)
	multi, ok := v.(*MultipleMember)
	require.True(t, ok, "merge mode should fuse two distinct bindings into MultipleMember")
	assert.Len(t, multi.Elements, 2)
}

func TestModuleSetMemberNilDeletes(t *testing.T) {
	m := NewSourceModule("pkg")
	m.SetMember("x", NewConstant("x", Location{}, nil), false)
	m.SetMember("x", nil, false)
	_, ok := m.Member("x")
	assert.False(t, ok)
}

func TestBuiltinModuleHidesNamesFromMembers(t *testing.T) {
	m := NewBuiltinModule()
	m.SetMember("__builtins_dunder__", NewConstant("__builtins_dunder__", Location{}, nil), false)
	m.SetMember("len", NewConstant("len", Location{}, nil), false)
	m.HideName("__builtins_dunder__")

	_, ok := m.Member("__builtins_dunder__")
	assert.True(t, ok, "Member() still reaches hidden names directly")

	members := m.Members()
	_, hidden := members["__builtins_dunder__"]
	assert.False(t, hidden, "Members() must filter hidden names")
	_, visible := members["len"]
	assert.True(t, visible)
}

func TestNestedModuleResolvesLazilyOnce(t *testing.T) {
	var calls int
	var mu sync.Mutex
	target := NewSourceModule("pkg.sibling")
	nested := NewNestedModule("sibling", "pkg.sibling", func() *Module {
		mu.Lock()
		calls++
		mu.Unlock()
		return target
	})

	nested.SetMember("x", NewConstant("x", Location{}, nil), false)
	v, ok := target.Member("x")
	require.True(t, ok)
	assert.IsType(t, &Constant{}, v)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nested.Member("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls, "resolution must happen exactly once regardless of concurrent access")
}

func TestChildModuleIsCreatedOnce(t *testing.T) {
	parent := NewSourceModule("pkg")
	var created int
	makeChild := func() *Module {
		created++
		return NewSourceModule("pkg.sub")
	}

	first := parent.ChildModule("sub", makeChild)
	second := parent.ChildModule("sub", makeChild)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Contains(t, parent.ChildrenModules(), "sub")
}
