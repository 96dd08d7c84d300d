package model

// Member is the capability every symbolic entity supports (§3, §9 "tagged
// variant with a small capability trait"). Concrete kinds layer additional
// capability interfaces (MemberContainer, Located, QualifiedNamer) on top.
type Member interface {
	Kind() Kind
	Name() string
}

// Located is implemented by members that carry source positions. Builtin and
// scraped members typically have none, so this is a capability, not a
// guarantee of the base Member interface.
type Located interface {
	Locations() []Location
}

// QualifiedNamer is implemented by members that can report a fully qualified
// dotted name (module path + declaring class + own name).
type QualifiedNamer interface {
	FullyQualifiedName() string
}

// MemberContainer is implemented by anything that owns a name table: Module
// and Class. Lookups and insertions on a container must go through these
// methods so every container can apply invariant 1 (stored name matches key)
// and the fusion rule of §4.6 uniformly.
type MemberContainer interface {
	Member(name string) (Member, bool)
	Members() map[string]Member
	SetMember(name string, m Member, merge bool)
}

// base is embedded by every concrete member kind to avoid repeating the name
// field and its accessor.
type base struct {
	name string
}

func (b base) Name() string { return b.name }

// UnknownMember represents a name that could not be resolved: an
// unresolved import, a failed lookup, a malformed annotation. It always
// carries the location of the expression that produced it so diagnostics can
// point somewhere (§4.8).
type UnknownMember struct {
	base
	Loc    Location
	Reason string
}

// NewUnknown creates an Unknown-typed constant tied to a source location.
func NewUnknown(name string, loc Location, reason string) *UnknownMember {
	return &UnknownMember{base: base{name: name}, Loc: loc, Reason: reason}
}

func (u *UnknownMember) Kind() Kind            { return KindUnknown }
func (u *UnknownMember) Locations() []Location { return []Location{u.Loc} }

// IsUnknown reports whether m is nil or an UnknownMember — the two states
// set_in_scope and lookup_name treat identically per §4.1/§4.6.
func IsUnknown(m Member) bool {
	if m == nil {
		return true
	}
	_, ok := m.(*UnknownMember)
	return ok
}

// LazyMember is a one-shot memoised producer (§9 "Generator-like lazy
// lookup"): the first Get() call runs producer and caches the result;
// subsequent calls return the cached value. Safe for concurrent use.
type LazyMember struct {
	base
	mu       chanMutex
	produced bool
	value    Member
	producer func() Member
}

// chanMutex is a single-slot mutex implemented with a channel so LazyMember
// stays allocation-light. Every Get takes it, including after the value has
// been produced.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}

func (c chanMutex) Lock()   { <-c }
func (c chanMutex) Unlock() { c <- struct{}{} }

// NewLazy wraps producer in a one-shot memoised Member.
func NewLazy(name string, producer func() Member) *LazyMember {
	return &LazyMember{base: base{name: name}, mu: newChanMutex(), producer: producer}
}

func (l *LazyMember) Kind() Kind { return KindLazy }

// Get materialises the wrapped value on first call and caches it; the cached
// value replaces the lazy node atomically from the caller's point of view —
// every subsequent Get() returns the same instance (§5 ordering guarantees).
func (l *LazyMember) Get() Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.produced {
		l.value = l.producer()
		l.produced = true
		l.producer = nil
	}
	return l.value
}

// Resolve follows Lazy members to their produced value; any other Member is
// returned unchanged. Use this whenever a consumer needs a concrete Member
// and does not care whether it arrived lazily.
func Resolve(m Member) Member {
	for {
		lazy, ok := m.(*LazyMember)
		if !ok {
			return m
		}
		m = lazy.Get()
	}
}
