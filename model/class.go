package model

import (
	"reflect"
	"sync"
)

// Class is a symbolic Python class: name, declaring module, docstring,
// location, ordered bases, an owned member table, a lazily computed MRO, and
// a builtin-type tag used to recognise e.g. `list`/`dict` subclasses for the
// annotation evaluator (§3 "Class").
type Class struct {
	base
	DeclaringModule *Module // weak reference: relation only, no ownership
	Doc             string
	Locs            []Location
	TypeID          BuiltinTypeID
	IsClassFactory  bool // true when this Class stands for Type[T]

	mu      sync.RWMutex
	bases   []Member // ordered; each is *Class, *MultipleMember, or Unknown
	members map[string]Member

	basesSet    bool
	mroOnce     sync.Once
	mroCache    []*Class
	dunderMRO   *Sequence       // materialised __mro__ tuple, cached on first access
	inProgress  map[*Class]bool // per-lookup cycle guard, set by MarkInProgress
	inProgressM sync.Mutex
}

// NewClass creates an empty class bound to its declaring module.
func NewClass(name string, declaringModule *Module) *Class {
	return &Class{
		base:            base{name: name},
		DeclaringModule: declaringModule,
		members:         make(map[string]Member),
	}
}

func (c *Class) Kind() Kind            { return KindClass }
func (c *Class) Locations() []Location { return c.Locs }

func (c *Class) FullyQualifiedName() string {
	if c.DeclaringModule != nil {
		return c.DeclaringModule.FullName + "." + c.name
	}
	return c.name
}

// Bases returns the ordered list of direct base members (invariant 8: set
// exactly once, atomically, together with Base()).
func (c *Class) Bases() []Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Member, len(c.bases))
	copy(out, c.bases)
	return out
}

// Base returns the first base (Python's `__base__`), or nil for a class with
// no bases (only `object` itself, in a fully resolved model).
func (c *Class) Base() Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.bases) == 0 {
		return nil
	}
	return c.bases[0]
}

// SetBases installs the bases list exactly once (invariant 8). A second call
// with an equal list is a documented no-op (§8 "Idempotence"); a second call
// with a *different* list is a programmer error — walkers must not recompute
// bases on re-walk. Neither case asserts: an identical re-set is a no-op
// (stub+source fusion can legitimately re-derive the same bases for the same
// class object), and a divergent re-set is ignored, keeping the first list.
func (c *Class) SetBases(bases []Member) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.basesSet {
		if basesEqual(c.bases, bases) {
			return
		}
		// Divergent re-set: keep the first (idempotence is defined only for
		// equal input); last-writer-wins would violate "set once".
		return
	}
	c.bases = append([]Member(nil), bases...)
	c.basesSet = true
}

func basesEqual(a, b []Member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// DirectBaseClasses filters Bases() down to concrete *Class entries (used by
// the C3-linearisation in package mro); Unknown and MultipleMember bases are
// dropped from linearisation input but still reported by Bases().
func (c *Class) DirectBaseClasses() []*Class {
	bases := c.Bases()
	out := make([]*Class, 0, len(bases))
	for _, b := range bases {
		if cls, ok := Resolve(b).(*Class); ok {
			out = append(out, cls)
		}
	}
	return out
}

// Member looks up name in the class's own table only (no MRO walk). Use
// package mro's MemberThroughMRO for the full §4.4 lookup.
func (c *Class) Member(name string) (Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.members[name]
	return v, ok
}

func (c *Class) Members() map[string]Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Member, len(c.members))
	for k, v := range c.members {
		out[k] = v
	}
	return out
}

// SetMember installs or fuses a member in the class's own table.
func (c *Class) SetMember(name string, v Member, merge bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == nil {
		delete(c.members, name)
		return
	}
	if merge {
		if existing, ok := c.members[name]; ok {
			c.members[name] = Fuse(existing, v)
			return
		}
	}
	c.members[name] = v
}

// ReplaceMembers installs every entry of members at once, overwriting
// same-named existing entries; names not in members are kept — used by the
// walker's class post-walk step (§4.2 "pop the scope and add its contents
// as class members (with overwrite)").
func (c *Class) ReplaceMembers(members map[string]Member) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range members {
		c.members[k] = v
	}
}

// CachedMRO/SetCachedMRO back package mro's memoisation of the linearised
// MRO and the materialised __mro__ tuple (§4.4 "materialise ... on first
// access and cache it").
func (c *Class) CachedMRO() ([]*Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mroCache, c.mroCache != nil
}

func (c *Class) SetCachedMRO(mro []*Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mroCache == nil {
		c.mroCache = mro
	}
}

func (c *Class) CachedDunderMRO() (*Sequence, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dunderMRO, c.dunderMRO != nil
}

func (c *Class) SetCachedDunderMRO(seq *Sequence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dunderMRO == nil {
		c.dunderMRO = seq
	}
}

// MarkInProgress/ClearInProgress implement the per-class in-progress flag
// §4.4 uses to short-circuit recursive member lookups on the same class
// (e.g. a property whose getter references the owning class's own name).
// Returns false if the class was already in progress (caller should treat
// this as "no non-null member found" rather than recursing further).
func (c *Class) MarkInProgress(caller *Class) bool {
	c.inProgressM.Lock()
	defer c.inProgressM.Unlock()
	if c.inProgress == nil {
		c.inProgress = make(map[*Class]bool)
	}
	if c.inProgress[caller] {
		return false
	}
	c.inProgress[caller] = true
	return true
}

func (c *Class) ClearInProgress(caller *Class) {
	c.inProgressM.Lock()
	defer c.inProgressM.Unlock()
	delete(c.inProgress, caller)
}
