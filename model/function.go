package model

import "sync"

// ParameterKind is the closed set from §6 "Parameter kinds".
type ParameterKind int

const (
	ParamPositional ParameterKind = iota
	ParamVarPositional
	ParamKeyword
	ParamVarKeyword
)

// Parameter is one formal parameter of an Overload. Once an Overload is
// constructed its Parameters slice is never mutated again (invariant 3); the
// walker builds the full slice before handing it to NewOverload.
type Parameter struct {
	Name       string
	Types      []Member // annotation types, possibly empty (no annotation)
	HasDefault bool
	Default    string // source text; "..." is normalised away (HasDefault=false)
	Kind       ParameterKind
}

func (p Parameter) IsVarPositional() bool { return p.Kind == ParamVarPositional }
func (p Parameter) IsVarKeyword() bool    { return p.Kind == ParamVarKeyword }

// Overload is one signature of a Function. Its parameter list is fixed at
// construction time; its return-type set is filled in lazily by the deferred
// function walker (C5) the first time a caller needs it.
type Overload struct {
	Parameters       []Parameter
	ReturnAnnotation string // source text of "-> T", empty if absent
	Doc              string

	mu             sync.Mutex
	returnTypes    []Member
	returnComputed bool
	triggerOnce    sync.Once
	trigger        func() // registered by the deferred walker set
}

// NewOverload creates an overload with a fixed parameter list.
func NewOverload(params []Parameter) *Overload {
	return &Overload{Parameters: append([]Parameter(nil), params...)}
}

// SetTrigger registers the deferred-walk callback (C5) that computes this
// overload's return types on demand. Safe to call once per overload; the
// deferred walker set itself guarantees it is never invoked concurrently
// with another walk of the same function (§4.5 "removes the entry before
// invoking the walker").
func (o *Overload) SetTrigger(trigger func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trigger = trigger
}

// EnsureReturnTypes runs the registered trigger at most once and returns the
// resulting (possibly still empty, if the function has no return statement
// and no annotation) return-type set. Idempotent and safe for concurrent
// callers — only the first caller actually walks the body.
func (o *Overload) EnsureReturnTypes() []Member {
	o.triggerOnce.Do(func() {
		o.mu.Lock()
		t := o.trigger
		o.mu.Unlock()
		if t != nil {
			t()
		}
	})
	return o.ReturnTypes()
}

// AddReturnType adds one element to the return-type set (called by the
// deferred walker as it processes `return expr` statements). Duplicate
// fully-qualified names collapse into one entry.
func (o *Overload) AddReturnType(m Member) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.returnComputed = true
	key := memberKey(m)
	for _, existing := range o.returnTypes {
		if memberKey(existing) == key {
			return
		}
	}
	o.returnTypes = append(o.returnTypes, m)
}

// ReturnTypes returns the currently known return-type set without triggering
// a deferred walk — used by diagnostics and re-entrant lookups that must not
// recurse into body-walking.
func (o *Overload) ReturnTypes() []Member {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Member, len(o.returnTypes))
	copy(out, o.returnTypes)
	return out
}

func memberKey(m Member) string {
	if m == nil {
		return "<nil>"
	}
	if q, ok := m.(QualifiedNamer); ok {
		return q.FullyQualifiedName()
	}
	return m.Kind().String() + ":" + m.Name()
}

// Function is a symbolic function or method: zero declaring class means a
// module-level function; a non-nil one makes it a method (§3 "Function").
type Function struct {
	base
	DeclaringModule *Module
	DeclaringClass  *Class // weak reference
	Doc             string
	IsStatic        bool
	IsClassMethod   bool

	mu        sync.Mutex
	overloads []*Overload
}

// NewFunction creates a function with no overloads yet; AddOverload appends
// the first one.
func NewFunction(name string, declaringModule *Module, declaringClass *Class) *Function {
	return &Function{
		base:            base{name: name},
		DeclaringModule: declaringModule,
		DeclaringClass:  declaringClass,
	}
}

func (f *Function) Kind() Kind {
	if f.DeclaringClass != nil {
		return KindMethod
	}
	return KindFunction
}

func (f *Function) FullyQualifiedName() string {
	prefix := ""
	if f.DeclaringModule != nil {
		prefix = f.DeclaringModule.FullName
	}
	if f.DeclaringClass != nil {
		prefix += "." + f.DeclaringClass.Name()
	}
	if prefix == "" {
		return f.name
	}
	return prefix + "." + f.name
}

// Documentation returns Doc, falling back to the declaring class's docstring
// for __init__ (§3 "For __init__, docstring falls back to the declaring
// class").
func (f *Function) Documentation() string {
	if f.Doc != "" {
		return f.Doc
	}
	if f.name == "__init__" && f.DeclaringClass != nil {
		return f.DeclaringClass.Doc
	}
	return ""
}

// AddOverload appends an overload under the function's own lock (§5
// "Function overload lists are append-only under a per-function lock").
func (f *Function) AddOverload(o *Overload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overloads = append(f.overloads, o)
}

// Overloads returns a snapshot of the overload list.
func (f *Function) Overloads() []*Overload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Overload, len(f.overloads))
	copy(out, f.overloads)
	return out
}
