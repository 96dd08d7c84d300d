package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessSetRunsConstructorsFirst(t *testing.T) {
	s := New()
	var order []string

	s.Add("method", false, func() { order = append(order, "method") })
	s.Add("__init__", true, func() { order = append(order, "__init__") })
	s.Add("other", false, func() { order = append(order, "other") })
	s.Add("__new__", true, func() { order = append(order, "__new__") })

	s.ProcessSet()

	assert.Equal(t, []string{"__init__", "__new__", "method", "other"}, order)
}

func TestProcessFunctionDrainsOnlyThatEntry(t *testing.T) {
	s := New()
	var ran []string
	s.Add("a", false, func() { ran = append(ran, "a") })
	s.Add("b", false, func() { ran = append(ran, "b") })

	s.ProcessFunction("a")

	assert.Equal(t, []string{"a"}, ran)
	assert.Equal(t, 1, s.Len())
}

func TestEntryRemovedBeforeWalkerRunsPreventsReentrancy(t *testing.T) {
	s := New()
	var calls int
	s.Add("a", false, func() {
		calls++
		s.ProcessFunction("a") // re-entrant call must be a no-op: entry is already gone
	})

	s.ProcessFunction("a")

	assert.Equal(t, 1, calls)
}

func TestAddReplacesExistingEntryKeepingPosition(t *testing.T) {
	s := New()
	var order []string
	s.Add("a", false, func() { order = append(order, "first") })
	s.Add("b", false, func() { order = append(order, "b") })
	s.Add("a", false, func() { order = append(order, "second") })

	s.ProcessSet()

	assert.Equal(t, []string{"second", "b"}, order)
}

func TestProcessSetPicksUpEntriesAddedDuringDraining(t *testing.T) {
	s := New()
	var order []string
	s.Add("a", false, func() {
		order = append(order, "a")
		s.Add("b", false, func() { order = append(order, "b") })
	})

	s.ProcessSet()

	assert.Equal(t, []string{"a", "b"}, order)
}
