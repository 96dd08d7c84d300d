// Package builtins materialises the "builtins" pseudo-module every other
// module's scope stack consults last (§4.1 "Builtins is consulted last").
// It is hand-populated rather than scraped from a live interpreter, the way
// the teacher's graph/callgraph/registry package hand-populates a table of
// builtin types and their common methods for type inference — adapted here
// to build real *model.Function/*model.Class members instead of the
// teacher's separate TypeInfo/BuiltinMethod records.
package builtins

import "github.com/pysymtab/engine/model"

// New builds a fresh builtins module. Each call returns an independent
// Module so tests never share mutable state; the CLI builds exactly one and
// passes it to every Walker for the run (§4.7 "Builtins" is process-wide in
// practice, but nothing in this package assumes a singleton).
func New() *model.Module {
	mod := model.NewBuiltinModule()

	classes := make(map[string]*model.Class, len(typeNames))
	for _, name := range typeNames {
		cls := model.NewClass(name, mod)
		cls.TypeID = typeIDs[name]
		classes[name] = cls
	}
	// object has no bases; every other scalar/collection type's single base
	// is object, matching CPython's actual MRO root.
	object := classes["object"]
	for _, name := range typeNames {
		if name == "object" {
			continue
		}
		classes[name].SetBases([]model.Member{object})
	}
	classes["type"] = model.NewClass("type", mod)
	classes["type"].TypeID = model.BuiltinType
	classes["type"].SetBases([]model.Member{object})

	for typeName, methods := range methodTable {
		cls := classes[typeName]
		for methodName, returnType := range methods {
			cls.SetMember(methodName, methodFunction(mod, cls, methodName, classes[returnType]), false)
		}
	}

	for name, cls := range classes {
		mod.SetMember(name, cls, false)
	}
	return mod
}

// methodFunction builds a single-overload Function whose return type is
// already known (an Instance of returnCls), or an empty return-type set if
// returnCls is nil — methods like list.pop() whose return type depends on
// the container's element type, which this hand-populated table does not
// track.
func methodFunction(mod *model.Module, owner *model.Class, name string, returnCls *model.Class) *model.Function {
	fn := model.NewFunction(name, mod, owner)
	overload := model.NewOverload([]model.Parameter{{Name: "self", Kind: model.ParamPositional}})
	if returnCls != nil {
		overload.AddReturnType(model.NewInstance(returnCls))
	}
	fn.AddOverload(overload)
	return fn
}

var typeNames = []string{
	"object", "int", "float", "bool", "str", "bytes",
	"list", "dict", "set", "tuple", "NoneType",
}

// typeIDs tags each constructed class with the BuiltinTypeID annotation.go's
// makeClassFactory consults to decide whether Type[T] collapses to the
// shared "type" class instead of synthesising a standalone factory. object
// has no dedicated constant, so it's left at the BuiltinUnknown zero value.
var typeIDs = map[string]model.BuiltinTypeID{
	"int":      model.BuiltinInt,
	"float":    model.BuiltinFloat,
	"bool":     model.BuiltinBool,
	"str":      model.BuiltinStr,
	"bytes":    model.BuiltinBytes,
	"list":     model.BuiltinList,
	"dict":     model.BuiltinDict,
	"set":      model.BuiltinSet,
	"tuple":    model.BuiltinTuple,
	"NoneType": model.BuiltinNoneType,
}

// methodTable mirrors the teacher's per-type method-return-type groupings,
// flattened to name -> name instead of name -> *TypeInfo.
var methodTable = map[string]map[string]string{
	"str": joinGroups(
		namesTo("str", "capitalize", "casefold", "center", "expandtabs", "format",
			"format_map", "join", "ljust", "lower", "lstrip", "replace",
			"rjust", "rstrip", "strip", "swapcase", "title", "translate",
			"upper", "zfill"),
		namesTo("bool", "isalnum", "isalpha", "isascii", "isdecimal", "isdigit",
			"isidentifier", "islower", "isnumeric", "isprintable",
			"isspace", "istitle", "isupper", "startswith", "endswith"),
		namesTo("int", "count", "find", "index", "rfind", "rindex"),
		namesTo("list", "split", "rsplit", "splitlines", "partition", "rpartition"),
		namesTo("bytes", "encode"),
	),
	"bytes": joinGroups(
		namesTo("bytes", "capitalize", "center", "expandtabs", "join", "ljust",
			"lower", "lstrip", "replace", "rjust", "rstrip", "strip",
			"swapcase", "title", "translate", "upper", "zfill"),
		namesTo("bool", "isalnum", "isalpha", "isascii", "isdigit", "islower",
			"isspace", "istitle", "isupper", "startswith", "endswith"),
		namesTo("int", "count", "find", "index", "rfind", "rindex"),
		namesTo("list", "split", "rsplit", "splitlines", "partition", "rpartition"),
	),
	"list": joinGroups(
		namesTo("NoneType", "append", "extend", "insert", "remove", "clear", "sort", "reverse"),
		namesTo("int", "count", "index"),
		namesTo("list", "copy"),
		namesTo("", "pop"),
	),
	"dict": joinGroups(
		namesTo("NoneType", "clear", "update"),
		namesTo("dict", "copy"),
		namesTo("", "get", "pop", "popitem", "setdefault"),
	),
	"set": joinGroups(
		namesTo("NoneType", "add", "remove", "discard", "clear", "update",
			"intersection_update", "difference_update", "symmetric_difference_update"),
		namesTo("set", "copy", "union", "intersection", "difference", "symmetric_difference"),
		namesTo("bool", "isdisjoint", "issubset", "issuperset"),
		namesTo("", "pop"),
	),
	"tuple": joinGroups(
		namesTo("int", "count", "index"),
	),
	"int": joinGroups(
		namesTo("int", "bit_length", "bit_count", "conjugate", "from_bytes"),
		namesTo("bytes", "to_bytes"),
	),
	"float": joinGroups(
		namesTo("float", "conjugate", "fromhex"),
		namesTo("bool", "is_integer"),
		namesTo("str", "hex"),
	),
}

func namesTo(returnType string, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = returnType
	}
	return out
}

func joinGroups(groups ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, g := range groups {
		for k, v := range g {
			out[k] = v
		}
	}
	return out
}
