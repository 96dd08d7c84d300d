package model

// Sequence, Iterable, Iterator and Lookup are the generic-container members
// produced by the annotation evaluator (§4.3 "MakeGeneric") for tuple/list/
// set/dict-shaped annotations and by the MRO cache for the materialised
// `__mro__` tuple. None of them own a member table; they are plain value
// members carrying one or two element-type sets.

// Sequence models a fixed-or-homogeneous ordered container: `tuple[...]`,
// `list[T]`, `Sequence[T]`, and the materialised `__mro__` tuple.
type Sequence struct {
	base
	ElementTypes []Member
}

func NewSequence(name string, elementTypes []Member) *Sequence {
	return &Sequence{base: base{name: name}, ElementTypes: elementTypes}
}

func (s *Sequence) Kind() Kind { return KindSequence }

// Iterable models `Iterable[T]`: anything that supports `for x in ...`
// without necessarily being indexable or sized.
type Iterable struct {
	base
	ElementTypes []Member
}

func NewIterable(name string, elementTypes []Member) *Iterable {
	return &Iterable{base: base{name: name}, ElementTypes: elementTypes}
}

func (i *Iterable) Kind() Kind { return KindIterable }

// Iterator models `Iterator[T]`: the object returned by `iter(...)`.
type Iterator struct {
	base
	ElementTypes []Member
}

func NewIterator(name string, elementTypes []Member) *Iterator {
	return &Iterator{base: base{name: name}, ElementTypes: elementTypes}
}

func (i *Iterator) Kind() Kind { return KindIterator }

// Lookup models `dict[K, V]` / `Mapping[K, V]`: a key-type set and an
// independent value-type set.
type Lookup struct {
	base
	KeyTypes   []Member
	ValueTypes []Member
}

func NewLookup(name string, keyTypes, valueTypes []Member) *Lookup {
	return &Lookup{base: base{name: name}, KeyTypes: keyTypes, ValueTypes: valueTypes}
}

func (l *Lookup) Kind() Kind { return KindLookup }
