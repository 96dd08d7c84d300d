// Package scope implements the nested mutable name tables used while
// walking a module or function body (§4.1 "Scope stack & name-lookup
// context"). A Stack is owned exclusively by one walker goroutine — it is
// never shared across concurrent tasks, so none of its operations take a
// lock (§8 "The scope stack is not shared across tasks; each walker owns its
// stack").
package scope

import "github.com/pysymtab/engine/model"

// LookupOptions is the {Local, Nonlocal, Global, Builtins} bitset that
// lookup_name filters its scan with.
type LookupOptions uint8

const (
	Local LookupOptions = 1 << iota
	Nonlocal
	Global
	Builtins
)

func (o LookupOptions) has(flag LookupOptions) bool { return o&flag != 0 }

// Table is one level of the scope stack: a flat, mutable name->member map.
type Table map[string]model.Member

// Stack is the nested sequence of Tables a walker pushes and pops as it
// descends into class and function bodies. The innermost table is Local,
// the outermost is Global; everything between is Nonlocal (§4.1).
type Stack struct {
	tables           []Table
	builtins         model.MemberContainer
	suppressBuiltins bool
}

// New creates a stack with a single (global) table and the given builtins
// container for Builtins-scope fallback.
func New(builtins model.MemberContainer) *Stack {
	return &Stack{tables: []Table{{}}, builtins: builtins}
}

// SuppressBuiltins turns off the Builtins fallback of LookupName — used
// while walking the builtins module itself, which must not resolve its own
// names circularly through "itself as builtins" (§4.1 "if ... suppress-
// builtins is not active").
func (s *Stack) SuppressBuiltins(suppress bool) { s.suppressBuiltins = suppress }

// PushScope pushes either a caller-supplied table or a fresh one and
// returns it.
func (s *Stack) PushScope(table Table) Table {
	if table == nil {
		table = Table{}
	}
	s.tables = append(s.tables, table)
	return table
}

// PopScope removes and returns the innermost table. Popping the last
// remaining table succeeds and leaves the stack empty, after which Global,
// Local and the default-table forms of SetInScope/GetInScope panic; popping
// an already empty stack panics — a well-formed walker always pushes before
// it pops.
func (s *Stack) PopScope() Table {
	n := len(s.tables)
	top := s.tables[n-1]
	s.tables = s.tables[:n-1]
	return top
}

func (s *Stack) top() Table { return s.tables[len(s.tables)-1] }

// SetInScope binds name in scope (defaulting to the innermost table when
// scope is nil). merge=true fuses with an existing non-Unknown binding via
// the MultipleMember rules; an existing Unknown binding is always replaced
// outright; v == nil deletes the binding (§4.1).
func (s *Stack) SetInScope(name string, v model.Member, merge bool, table Table) {
	if table == nil {
		table = s.top()
	}
	if v == nil {
		delete(table, name)
		return
	}
	if merge {
		if existing, ok := table[name]; ok && !model.IsUnknown(existing) {
			table[name] = model.Fuse(existing, v)
			return
		}
	}
	table[name] = v
}

// GetInScope looks up name directly in one table (defaulting to the
// innermost) without walking outer scopes.
func (s *Stack) GetInScope(name string, table Table) (model.Member, bool) {
	if table == nil {
		table = s.top()
	}
	v, ok := table[name]
	return v, ok
}

// Global returns the outermost table (the module-level scope).
func (s *Stack) Global() Table { return s.tables[0] }

// Local returns the innermost table.
func (s *Stack) Local() Table { return s.top() }

// LookupName resolves name per the §4.1 ordering: with exactly one table on
// the stack, Global alone or Local alone both mean "that table"; with two or
// more, the innermost is Local, the outermost Global, everything between
// Nonlocal. Ranges not selected by opts are skipped entirely before
// scanning starts in innermost-to-outermost order; Builtins is consulted
// last, only if requested and not suppressed.
func (s *Stack) LookupName(name string, opts LookupOptions) (model.Member, bool) {
	n := len(s.tables)
	for i := n - 1; i >= 0; i-- {
		switch {
		case n == 1:
			if !opts.has(Local) && !opts.has(Global) {
				continue
			}
		case i == n-1:
			if !opts.has(Local) {
				continue
			}
		case i == 0:
			if !opts.has(Global) {
				continue
			}
		default:
			if !opts.has(Nonlocal) {
				continue
			}
		}
		if v, ok := s.tables[i][name]; ok {
			return v, true
		}
	}
	if opts.has(Builtins) && !s.suppressBuiltins && s.builtins != nil {
		if v, ok := s.builtins.Member(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Clone snapshots the stack for a function's private walk (§4.1
// "preserving enclosing bindings"). With copyContents=false the new stack
// shares every existing table by reference, so a binding made through
// either stack in a shared table is visible through the other; no fresh
// table is pushed. With copyContents=true every table is deep-copied
// instead, for callers that must not observe any mutation performed
// through the clone.
func (s *Stack) Clone(copyContents bool) *Stack {
	clone := &Stack{builtins: s.builtins, suppressBuiltins: s.suppressBuiltins}
	clone.tables = make([]Table, len(s.tables))
	for i, t := range s.tables {
		if !copyContents {
			clone.tables[i] = t
			continue
		}
		copied := make(Table, len(t))
		for k, v := range t {
			copied[k] = v
		}
		clone.tables[i] = copied
	}
	return clone
}
