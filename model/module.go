package model

import "sync"

// ModuleFlavor distinguishes the five ways a Module can come into existence
// (§3 "Module"). All five share the same Member capability (Kind() ==
// KindModule); the flavor only changes how the member table gets populated
// and how FullyQualifiedName/children behave.
type ModuleFlavor int

const (
	// SourceModuleFlavor is parsed from a .py/.pyi file by the walker (C3).
	SourceModuleFlavor ModuleFlavor = iota
	// NestedModuleFlavor is a named placeholder bound by an import before
	// the target has been resolved; resolved on first access.
	NestedModuleFlavor
	// BuiltinModuleFlavor holds scraped builtin names plus a hidden-name set
	// (invariant 6: hidden names never appear in public enumeration).
	BuiltinModuleFlavor
	// ScrapedModuleFlavor is loaded from a textual introspection dump cached
	// on disk (compiled/native extensions, §4.7 "Compiled").
	ScrapedModuleFlavor
	// SentinelModuleFlavor marks an in-flight import placeholder (§5).
	// Package modcache does not create modules of this flavor: it tracks
	// in-flight imports with its own private sentinel type.
	SentinelModuleFlavor
)

// Module is a symbolic module: a file, a scraped dump, a builtin, a lazily
// resolved nested name, or an in-flight sentinel. Its member table is
// exclusively owned (§3 "Relationships & ownership") and protected by its own
// lock so concurrent imports of sibling modules never contend on a single
// global lock (§5 "Each class and scraped module protects its member table
// with an instance lock").
type Module struct {
	base
	Flavor ModuleFlavor

	FullName string // fully qualified dotted name, e.g. "myapp.utils.helpers"
	Doc      string
	Locs     []Location

	mu              sync.RWMutex
	members         map[string]Member
	childrenModules map[string]*Module // directory siblings, attached lazily
	hiddenNames     map[string]bool    // BuiltinModuleFlavor only (invariant 6)

	// resolveOnce backs NestedModuleFlavor: the first access triggers
	// resolution and every subsequent access observes the same target.
	resolveOnce sync.Once
	resolveFn   func() *Module
	resolved    *Module
}

// NewSourceModule creates a Module populated by the walker from a parsed file.
func NewSourceModule(fullName string) *Module {
	return &Module{
		base:     base{name: lastComponent(fullName)},
		Flavor:   SourceModuleFlavor,
		FullName: fullName,
		members:  make(map[string]Member),
	}
}

// NewNestedModule creates a lazy placeholder bound by an import statement
// before the target module has actually been loaded (§4.2 "Imports").
func NewNestedModule(localName, fullName string, resolve func() *Module) *Module {
	return &Module{
		base:      base{name: localName},
		Flavor:    NestedModuleFlavor,
		FullName:  fullName,
		members:   make(map[string]Member),
		resolveFn: resolve,
	}
}

// NewBuiltinModule creates the distinguished builtins module.
func NewBuiltinModule() *Module {
	return &Module{
		base:        base{name: "builtins"},
		Flavor:      BuiltinModuleFlavor,
		FullName:    "builtins",
		members:     make(map[string]Member),
		hiddenNames: make(map[string]bool),
	}
}

// NewScrapedModule creates a module populated from an interpreter
// introspection dump (compiled/native extensions, §4.7).
func NewScrapedModule(fullName string) *Module {
	return &Module{
		base:     base{name: lastComponent(fullName)},
		Flavor:   ScrapedModuleFlavor,
		FullName: fullName,
		members:  make(map[string]Member),
	}
}

// NewSentinelModule creates an in-flight import placeholder module for
// fullName. It has no member table; package modcache does not use it.
func NewSentinelModule(fullName string) *Module {
	return &Module{
		base:     base{name: lastComponent(fullName)},
		Flavor:   SentinelModuleFlavor,
		FullName: fullName,
	}
}

func (m *Module) Kind() Kind                { return KindModule }
func (m *Module) Locations() []Location     { return m.Locs }
func (m *Module) FullyQualifiedName() string { return m.FullName }

// target follows a NestedModuleFlavor module to what it actually points at,
// running resolution exactly once (sync.Once) regardless of how many
// goroutines call in concurrently — this is the "Lazy<M>" pattern of §9
// applied to modules specifically.
func (m *Module) target() *Module {
	if m.Flavor != NestedModuleFlavor || m.resolveFn == nil {
		return m
	}
	m.resolveOnce.Do(func() {
		m.resolved = m.resolveFn()
	})
	if m.resolved != nil {
		return m.resolved
	}
	return m
}

// Member looks up a name in the module's own table. Hidden names are not
// filtered here: a direct lookup still reaches them; only Members() leaves
// them out (invariant 6).
func (m *Module) Member(name string) (Member, bool) {
	t := m.target()
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.members[name]
	return v, ok
}

// Members returns a snapshot of the module's public member table. For the
// builtins module, hidden names (dunder aliases) are filtered out per
// invariant 6.
func (m *Module) Members() map[string]Member {
	t := m.target()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Member, len(t.members))
	for k, v := range t.members {
		if t.hiddenNames != nil && t.hiddenNames[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// SetMember installs or fuses a member. merge=true applies the §4.6 fusion
// rule when a prior binding exists; merge=false overwrites unconditionally
// (used when the walker installs the finished global scope and in stub
// "exclusive" mode).
func (m *Module) SetMember(name string, v Member, merge bool) {
	t := m.target()
	t.mu.Lock()
	defer t.mu.Unlock()
	if v == nil {
		delete(t.members, name)
		return
	}
	if merge {
		if existing, ok := t.members[name]; ok {
			t.members[name] = Fuse(existing, v)
			return
		}
	}
	t.members[name] = v
}

// HideName marks a builtins-module name as hidden (e.g. a dunder alias that
// CPython's builtins module exposes but that should not appear in
// completion). Only meaningful on BuiltinModuleFlavor.
func (m *Module) HideName(name string) {
	t := m.target()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hiddenNames == nil {
		t.hiddenNames = make(map[string]bool)
	}
	t.hiddenNames[name] = true
}

// ChildModule returns (and lazily creates) a nested/sibling module attached
// to this one, as happens when a package directory contains sub-packages
// that were discovered but not yet imported.
func (m *Module) ChildModule(name string, create func() *Module) *Module {
	t := m.target()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.childrenModules == nil {
		t.childrenModules = make(map[string]*Module)
	}
	if existing, ok := t.childrenModules[name]; ok {
		return existing
	}
	child := create()
	t.childrenModules[name] = child
	return child
}

// ChildrenModules returns the directory-discovered sibling modules attached
// so far.
func (m *Module) ChildrenModules() map[string]*Module {
	t := m.target()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]*Module, len(t.childrenModules))
	for k, v := range t.childrenModules {
		out[k] = v
	}
	return out
}

func lastComponent(dotted string) string {
	last := dotted
	for i := len(dotted) - 1; i >= 0; i-- {
		if dotted[i] == '.' {
			last = dotted[i+1:]
			break
		}
	}
	return last
}
