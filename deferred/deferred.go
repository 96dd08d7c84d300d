// Package deferred implements the function-body walker set (§4.5 "Deferred
// function walker set (C5)"): a registry mapping a function definition to
// the closure that will walk its body, drained to a fixpoint after the
// owning module's main walk completes. Constructors are always processed
// first so class-variable initialisation inside `__init__`/`__new__` is
// visible to every other method's return-type resolution.
package deferred

import "sync"

// Walker is the closure registered for one function definition. It is
// expected to walk the function body against a private scope clone and
// populate the function's overload return-type set as a side effect — the
// set itself is opaque to this package.
type Walker func()

// entry pairs a walker with the flag that routes constructors first.
type entry struct {
	key           interface{}
	walker        Walker
	isConstructor bool
}

// Set is the deferred walker registry for one module's walk. It is not
// safe for concurrent use from multiple goroutines — like package scope's
// Stack, a Set belongs to exactly one walker (§5 "The scope stack is not
// shared across tasks").
type Set struct {
	mu      sync.Mutex
	order   []interface{}
	entries map[interface{}]entry
}

// New creates an empty deferred walker set.
func New() *Set {
	return &Set{entries: make(map[interface{}]entry)}
}

// Add registers (or replaces, keeping the original position) the walker for
// key — typically the function-definition AST node's identity. isConstructor
// marks `__init__`/`__new__` definitions for priority draining.
func (s *Set) Add(key interface{}, isConstructor bool, w Walker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = entry{key: key, walker: w, isConstructor: isConstructor}
}

// ProcessFunction drains only the entry for key, if present. The entry is
// removed before the walker runs so a walker that re-enters ProcessSet (or
// re-registers the same key) never recurses into itself (§4.5 "removes the
// entry before invoking the walker").
func (s *Set) ProcessFunction(key interface{}) {
	w, ok := s.take(key)
	if ok {
		w()
	}
}

func (s *Set) take(key interface{}) (Walker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	delete(s.entries, key)
	return e.walker, true
}

// ProcessSet drains every remaining entry: all constructors first (in
// registration order), then everything else (also in registration order,
// since "arbitrary" still needs to be deterministic for reproducible
// diagnostics). New entries added by a walker while draining (e.g. a nested
// function discovered while processing its enclosing one) are picked up in
// the same pass.
func (s *Set) ProcessSet() {
	for {
		key, ok := s.nextKey()
		if !ok {
			return
		}
		w, ok := s.take(key)
		if ok {
			w()
		}
	}
}

// nextKey returns a pending constructor key if any remain, else any pending
// key, else ok=false.
func (s *Set) nextKey() (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fallback interface{}
	haveFallback := false
	for _, k := range s.order {
		e, ok := s.entries[k]
		if !ok {
			continue // already processed
		}
		if e.isConstructor {
			return k, true
		}
		if !haveFallback {
			fallback = k
			haveFallback = true
		}
	}
	return fallback, haveFallback
}

// Len reports how many entries remain pending.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
