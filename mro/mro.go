// Package mro computes and caches Python's C3 method-resolution order over
// the symbolic class graph in package model (§4.4 "Method resolution
// order"). Linearisation is memoised on the *model.Class itself so it only
// ever runs once per class, and member lookups walk the cached order with a
// per-class in-progress guard to survive self-referential properties and
// metaclass cycles.
package mro

import "github.com/pysymtab/engine/model"

// CycleError is returned when linearising a class would require the class's
// own (still in-progress) linearisation as an input — a base-class cycle
// that cannot occur in real Python but can appear transiently while walking
// partially-resolved or hand-edited stubs. It is also returned when the C3
// merge finds no consistent order (an inconsistent hierarchy).
type CycleError struct {
	Class *model.Class
}

func (e *CycleError) Error() string {
	return "mro: base-class cycle detected at " + e.Class.FullyQualifiedName()
}

// Linearize returns c's C3 linearisation, computing it on first call and
// reusing the cached result afterwards (§4.4 "materialise ... on first
// access and cache it"). object (a class with no bases) linearises to just
// itself. A base-class cycle or an inconsistent hierarchy never fails the
// call: per §4.4 step 2/3 and §8's unconditional "C.mro[0] == C" invariant,
// Linearize always returns a usable (and cached) linearisation — in the
// degenerate case just `[c]` — and reports the condition through the
// returned error as a side channel for the caller to trace/warn about.
func Linearize(c *model.Class) ([]*model.Class, error) {
	if cached, ok := c.CachedMRO(); ok {
		return cached, nil
	}
	result, err := linearize(c, map[*model.Class]bool{})
	c.SetCachedMRO(result)
	return result, err
}

func linearize(c *model.Class, visiting map[*model.Class]bool) ([]*model.Class, error) {
	if cached, ok := c.CachedMRO(); ok {
		return cached, nil
	}
	if visiting[c] {
		return []*model.Class{c}, &CycleError{Class: c}
	}
	visiting[c] = true
	defer delete(visiting, c)

	bases := c.DirectBaseClasses()
	if len(bases) == 0 {
		return []*model.Class{c}, nil
	}

	var warn error
	sequences := make([][]*model.Class, 0, len(bases)+1)
	for _, b := range bases {
		lin, err := linearize(b, visiting)
		if err != nil && warn == nil {
			warn = err
		}
		sequences = append(sequences, append([]*model.Class(nil), lin...))
	}
	sequences = append(sequences, append([]*model.Class(nil), bases...))

	merged, ok := merge(sequences)
	if !ok {
		return []*model.Class{c}, &CycleError{Class: c}
	}
	for _, m := range merged {
		if m == c {
			// c reached itself through its own bases: a cycle.
			return []*model.Class{c}, &CycleError{Class: c}
		}
	}
	return append([]*model.Class{c}, merged...), warn
}

// merge implements the C3 merge step: repeatedly take the head of the first
// sequence that does not appear in the tail of any other sequence, then
// strip it from every sequence, until all are empty.
func merge(sequences [][]*model.Class) ([]*model.Class, bool) {
	var result []*model.Class
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			return result, true
		}

		var candidate *model.Class
		for _, seq := range sequences {
			head := seq[0]
			if !inAnyTail(sequences, head) {
				candidate = head
				break
			}
		}
		if candidate == nil {
			return nil, false // no consistent linearisation exists
		}
		result = append(result, candidate)
		sequences = removeHead(sequences, candidate)
	}
}

func dropEmpty(sequences [][]*model.Class) [][]*model.Class {
	out := sequences[:0]
	for _, s := range sequences {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func inAnyTail(sequences [][]*model.Class, c *model.Class) bool {
	for _, seq := range sequences {
		for _, other := range seq[1:] {
			if other == c {
				return true
			}
		}
	}
	return false
}

func removeHead(sequences [][]*model.Class, c *model.Class) [][]*model.Class {
	out := make([][]*model.Class, 0, len(sequences))
	for _, seq := range sequences {
		if len(seq) > 0 && seq[0] == c {
			seq = seq[1:]
		}
		out = append(out, seq)
	}
	return out
}

// DunderMRO materialises the linearisation as the `__mro__` tuple value
// exposed to annotation evaluation, caching the result on c.
func DunderMRO(c *model.Class) (*model.Sequence, error) {
	if cached, ok := c.CachedDunderMRO(); ok {
		return cached, nil
	}
	lin, err := Linearize(c)
	elems := make([]model.Member, len(lin))
	for i, cls := range lin {
		elems[i] = cls
	}
	seq := model.NewSequence("__mro__", elems)
	c.SetCachedDunderMRO(seq)
	return seq, err
}

// MemberThroughMRO looks up name by walking c's linearisation in order,
// returning the first class that defines it. A class already marked
// in-progress for this same lookup chain (self-referential property
// resolution) is skipped rather than recursed into again (§4.4 "short-
// circuit recursive lookups on the same class").
func MemberThroughMRO(c *model.Class, name string) (model.Member, bool) {
	lin, _ := Linearize(c) // always non-empty; a cycle/inconsistency degrades to [c]
	for _, cls := range lin {
		if !cls.MarkInProgress(c) {
			continue
		}
		v, ok := cls.Member(name)
		cls.ClearInProgress(c)
		if ok {
			return v, true
		}
	}
	return nil, false
}
