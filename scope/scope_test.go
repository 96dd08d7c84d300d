package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/model"
)

func TestPushPopScope(t *testing.T) {
	s := New(nil)
	inner := s.PushScope(nil)
	inner["x"] = model.NewConstant("x", model.Location{}, nil)

	popped := s.PopScope()
	_, ok := popped["x"]
	assert.True(t, ok)
}

func TestSetInScopeMergeFusesExistingBinding(t *testing.T) {
	s := New(nil)
	a := model.NewConstant("x", model.Location{}, nil)
	b := model.NewConstant("x", model.Location{}, nil)

	s.SetInScope("x", a, true, nil)
	s.SetInScope("x", b, true, nil)

	v, ok := s.GetInScope("x", nil)
	require.True(t, ok)
	multi, ok := v.(*model.MultipleMember)
	require.True(t, ok)
	assert.Len(t, multi.Elements, 2)
}

func TestSetInScopeReplacesUnknownUnconditionally(t *testing.T) {
	s := New(nil)
	s.SetInScope("x", model.NewUnknown("x", model.Location{}, "undefined"), true, nil)
	concrete := model.NewConstant("x", model.Location{}, nil)
	s.SetInScope("x", concrete, true, nil)

	v, ok := s.GetInScope("x", nil)
	require.True(t, ok)
	assert.Same(t, concrete, v)
}

func TestSetInScopeNilDeletes(t *testing.T) {
	s := New(nil)
	s.SetInScope("x", model.NewConstant("x", model.Location{}, nil), false, nil)
	s.SetInScope("x", nil, false, nil)

	_, ok := s.GetInScope("x", nil)
	assert.False(t, ok)
}

func TestLookupNameSingleScopeGlobalOrLocalBothWork(t *testing.T) {
	s := New(nil)
	s.SetInScope("x", model.NewConstant("x", model.Location{}, nil), false, nil)

	_, ok := s.LookupName("x", Local)
	assert.True(t, ok)
	_, ok = s.LookupName("x", Global)
	assert.True(t, ok)
	_, ok = s.LookupName("x", Nonlocal)
	assert.False(t, ok, "a single-table stack has no nonlocal range")
}

func TestLookupNameThreeLevelOrdering(t *testing.T) {
	s := New(nil)
	s.Global()["g"] = model.NewConstant("g", model.Location{}, nil)
	middle := s.PushScope(nil)
	middle["m"] = model.NewConstant("m", model.Location{}, nil)
	s.PushScope(nil)
	s.Local()["l"] = model.NewConstant("l", model.Location{}, nil)

	_, ok := s.LookupName("l", Local)
	assert.True(t, ok)
	_, ok = s.LookupName("m", Nonlocal)
	assert.True(t, ok)
	_, ok = s.LookupName("g", Global)
	assert.True(t, ok)

	_, ok = s.LookupName("m", Local)
	assert.False(t, ok, "Local alone must not see the nonlocal range")
	_, ok = s.LookupName("g", Nonlocal)
	assert.False(t, ok, "Nonlocal must not see the global range")
}

type fakeBuiltins struct {
	members map[string]model.Member
}

func (f *fakeBuiltins) Member(name string) (model.Member, bool) {
	v, ok := f.members[name]
	return v, ok
}
func (f *fakeBuiltins) Members() map[string]model.Member { return f.members }
func (f *fakeBuiltins) SetMember(name string, v model.Member, merge bool) {
	f.members[name] = v
}

func TestLookupNameFallsBackToBuiltins(t *testing.T) {
	builtins := &fakeBuiltins{members: map[string]model.Member{
		"len": model.NewConstant("len", model.Location{}, nil),
	}}
	s := New(builtins)

	_, ok := s.LookupName("len", Local)
	assert.False(t, ok)
	_, ok = s.LookupName("len", Local|Builtins)
	assert.True(t, ok)
}

func TestLookupNameSuppressBuiltins(t *testing.T) {
	builtins := &fakeBuiltins{members: map[string]model.Member{
		"len": model.NewConstant("len", model.Location{}, nil),
	}}
	s := New(builtins)
	s.SuppressBuiltins(true)

	_, ok := s.LookupName("len", Local|Builtins)
	assert.False(t, ok)
}

func TestCloneSharesTablesWithoutCopy(t *testing.T) {
	s := New(nil)
	s.Global()["g"] = model.NewConstant("g", model.Location{}, nil)

	clone := s.Clone(false)
	clone.Global()["h"] = model.NewConstant("h", model.Location{}, nil)

	_, ok := s.GetInScope("h", s.Global())
	assert.True(t, ok, "shared clone must observe mutations through either handle")
}

func TestCloneDeepCopiesWhenRequested(t *testing.T) {
	s := New(nil)
	s.Global()["g"] = model.NewConstant("g", model.Location{}, nil)

	clone := s.Clone(true)
	clone.Global()["h"] = model.NewConstant("h", model.Location{}, nil)

	_, ok := s.GetInScope("h", s.Global())
	assert.False(t, ok, "deep copy must not leak mutations back to the original")
}
