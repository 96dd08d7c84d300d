package model

// Kind is the closed set of symbolic entity tags (§3). Every Member reports
// exactly one Kind; MultipleMember reports Multiple regardless of what its
// fused elements are, so a caller can always branch on Kind() without a type
// switch over every concrete Go type.
type Kind int

const (
	KindUnknown Kind = iota
	KindModule
	KindClass
	KindFunction
	KindMethod
	KindProperty
	KindConstant
	KindInstance
	KindSequence
	KindIterable
	KindIterator
	KindLookup
	KindMultiple
	KindLazy
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindClass:
		return "Class"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindProperty:
		return "Property"
	case KindConstant:
		return "Constant"
	case KindInstance:
		return "Instance"
	case KindSequence:
		return "Sequence"
	case KindIterable:
		return "Iterable"
	case KindIterator:
		return "Iterator"
	case KindLookup:
		return "Lookup"
	case KindMultiple:
		return "Multiple"
	case KindLazy:
		return "Lazy"
	default:
		return "Unknown"
	}
}

// BuiltinTypeID tags a Class with the concrete builtin container/scalar it
// represents, when it represents one. Classes that are ordinary user-defined
// types carry BuiltinUnknown.
type BuiltinTypeID int

const (
	BuiltinUnknown BuiltinTypeID = iota
	BuiltinInt
	BuiltinLong
	BuiltinFloat
	BuiltinComplex
	BuiltinBool
	BuiltinStr
	BuiltinBytes
	BuiltinNoneType
	BuiltinEllipsis
	BuiltinList
	BuiltinTuple
	BuiltinSet
	BuiltinDict
	BuiltinType
	BuiltinFunction
	BuiltinMethod
	BuiltinProperty
	BuiltinModule
)

func (b BuiltinTypeID) String() string {
	names := map[BuiltinTypeID]string{
		BuiltinUnknown:  "Unknown",
		BuiltinInt:      "int",
		BuiltinLong:     "long",
		BuiltinFloat:    "float",
		BuiltinComplex:  "complex",
		BuiltinBool:     "bool",
		BuiltinStr:      "str",
		BuiltinBytes:    "bytes",
		BuiltinNoneType: "NoneType",
		BuiltinEllipsis: "ellipsis",
		BuiltinList:     "list",
		BuiltinTuple:    "tuple",
		BuiltinSet:      "set",
		BuiltinDict:     "dict",
		BuiltinType:     "type",
		BuiltinFunction: "function",
		BuiltinMethod:   "method",
		BuiltinProperty: "property",
		BuiltinModule:   "module",
	}
	if s, ok := names[b]; ok {
		return s
	}
	return "Unknown"
}
