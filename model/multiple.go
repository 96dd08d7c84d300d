package model

// MultipleMember represents a name bound to more than one distinct value —
// typically because a .py source file and its .pyi stub both define it, or
// because two branches of a conditional import bind it differently (§4.6
// "Fusion rules"). Elements are deduplicated by fully-qualified identity (or,
// failing that, by pointer/value equality) and keep the order they were
// fused in.
type MultipleMember struct {
	base
	Elements []Member
}

func (m *MultipleMember) Kind() Kind { return KindMultiple }

// Member/Members/SetMember give a MultipleMember the same MemberContainer
// capability as a Module or Class whenever every element is itself one
// (§4.6 "modules union their children and members"; "member lookup returns
// the union of non-null results" for a type-shaped union). A name found in
// more than one element fuses the same way an ordinary container merge
// would. Elements that aren't containers (e.g. a fused function/constant
// set) simply contribute nothing here — callers reach those through
// Overloads/MajorityClass instead.
func (m *MultipleMember) Member(name string) (Member, bool) {
	var result Member
	found := false
	for _, el := range m.Elements {
		container, ok := Resolve(el).(MemberContainer)
		if !ok {
			continue
		}
		v, ok := container.Member(name)
		if !ok {
			continue
		}
		if !found {
			result, found = v, true
			continue
		}
		result = Fuse(result, v)
	}
	return result, found
}

func (m *MultipleMember) Members() map[string]Member {
	out := make(map[string]Member)
	for _, el := range m.Elements {
		container, ok := Resolve(el).(MemberContainer)
		if !ok {
			continue
		}
		for k, v := range container.Members() {
			if existing, ok := out[k]; ok {
				out[k] = Fuse(existing, v)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

// SetMember is a no-op: a MultipleMember is a read-only fused view over its
// elements, not a table callers install new names into directly.
func (m *MultipleMember) SetMember(name string, v Member, merge bool) {}

// Overloads reports whether every element of m is function-shaped (a
// *Function, or another function-shaped MultipleMember) and, if so, the
// union of all of their overloads (§4.6 "functions union overloads ... and
// declaring types/modules"). A single non-function element disqualifies the
// whole union.
func (m *MultipleMember) Overloads() ([]*Overload, bool) {
	var overloads []*Overload
	for _, el := range m.Elements {
		switch v := Resolve(el).(type) {
		case *Function:
			overloads = append(overloads, v.Overloads()...)
		case *MultipleMember:
			sub, ok := v.Overloads()
			if !ok {
				return nil, false
			}
			overloads = append(overloads, sub...)
		default:
			return nil, false
		}
	}
	return overloads, len(overloads) > 0
}

// MajorityClass reports whether every element of m is class-shaped (a
// *Class, or another class-shaped MultipleMember) and, if so, the element
// whose BuiltinTypeID occurs most often among them (§4.6 "types pick the
// majority TypeId"). Ties keep the first class reaching the winning count.
func (m *MultipleMember) MajorityClass() (*Class, bool) {
	var classes []*Class
	counts := make(map[BuiltinTypeID]int)
	for _, el := range m.Elements {
		switch v := Resolve(el).(type) {
		case *Class:
			classes = append(classes, v)
			counts[v.TypeID]++
		case *MultipleMember:
			sub, ok := v.MajorityClass()
			if !ok {
				return nil, false
			}
			classes = append(classes, sub)
			counts[sub.TypeID]++
		default:
			return nil, false
		}
	}
	if len(classes) == 0 {
		return nil, false
	}
	best, bestCount := classes[0], -1
	for _, c := range classes {
		if n := counts[c.TypeID]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, true
}

// Fuse combines an existing binding with a newly discovered one for the same
// name, per §4.6:
//
//  1. If either side is Unknown, the other side wins outright — Unknown never
//     survives a fusion once something concrete is known.
//  2. If both sides are the same value (by fully-qualified identity), return
//     either one — fusing a value with itself is a no-op, not a Multiple.
//  3. If the existing side is not already a MultipleMember, wrap both sides
//     in a new MultipleMember.
//  4. If the existing side is already a MultipleMember, append the new value
//     to its element set (deduplicated), unless the new value is itself a
//     MultipleMember, in which case the two element sets are unioned.
//
// Fuse never mutates either argument; it always returns a fresh value (or an
// existing one, never re-sliced in place) so concurrent fusers never race on
// shared state.
func Fuse(existing, incoming Member) Member {
	existing = Resolve(existing)
	incoming = Resolve(incoming)

	if IsUnknown(existing) {
		return incoming
	}
	if IsUnknown(incoming) {
		return existing
	}
	if sameMember(existing, incoming) {
		return existing
	}

	existingMulti, existingIsMulti := existing.(*MultipleMember)
	incomingMulti, incomingIsMulti := incoming.(*MultipleMember)

	switch {
	case existingIsMulti && incomingIsMulti:
		return &MultipleMember{
			base:     base{name: existing.Name()},
			Elements: unionMembers(existingMulti.Elements, incomingMulti.Elements),
		}
	case existingIsMulti:
		return &MultipleMember{
			base:     base{name: existing.Name()},
			Elements: unionMembers(existingMulti.Elements, []Member{incoming}),
		}
	case incomingIsMulti:
		return &MultipleMember{
			base:     base{name: incoming.Name()},
			Elements: unionMembers([]Member{existing}, incomingMulti.Elements),
		}
	default:
		return &MultipleMember{
			base:     base{name: existing.Name()},
			Elements: []Member{existing, incoming},
		}
	}
}

func sameMember(a, b Member) bool {
	if a == b {
		return true
	}
	qa, aok := a.(QualifiedNamer)
	qb, bok := b.(QualifiedNamer)
	if aok && bok {
		return qa.FullyQualifiedName() == qb.FullyQualifiedName()
	}
	return false
}

func unionMembers(a, b []Member) []Member {
	out := make([]Member, 0, len(a)+len(b))
	add := func(m Member) {
		for _, existing := range out {
			if sameMember(existing, m) {
				return
			}
		}
		out = append(out, m)
	}
	for _, m := range a {
		add(m)
	}
	for _, m := range b {
		add(m)
	}
	return out
}
