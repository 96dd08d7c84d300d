// Package annotation evaluates parsed type-annotation expressions into
// symbolic types (§4.3 "Annotation evaluator (C4)"). Unlike package scope's
// general expression evaluator, annotation expressions are never executed —
// a Name resolves to the *type* it names, a Subscript applies a typing
// generic, and a bare module name appearing where a type was expected
// collapses to Unknown rather than being treated as a value.
package annotation

import (
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/scope"
)

// ExprKind is the annotation-expression shape vocabulary: Name, Attribute,
// Subscript (`Base[Args...]`), BinOr (PEP 604 `X | Y`), and the handful of
// literal forms an annotation can contain (`None`, `...`, a forward-
// reference string).
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprAttribute
	ExprSubscript
	ExprBinOr
	ExprNone
	ExprEllipsis
	ExprForwardRef
)

// Expr is one annotation expression node.
type Expr struct {
	Kind ExprKind

	Name string // ExprName / ExprForwardRef (forward-ref source text)

	Object *Expr // ExprAttribute / ExprSubscript base
	Attr   string

	Args []*Expr // ExprSubscript index args (tuple subscript is pre-split)

	Left, Right *Expr // ExprBinOr
}

// Evaluator evaluates annotation expressions against a name-lookup scope and
// a builtins container used to resolve generic base names.
type Evaluator struct {
	Stack    *scope.Stack
	Builtins model.MemberContainer
}

func NewEvaluator(stack *scope.Stack, builtins model.MemberContainer) *Evaluator {
	return &Evaluator{Stack: stack, Builtins: builtins}
}

// Evaluate resolves e to a type, or a set of types (as a MultipleMember) in
// the Union case. Finalize has already been applied by the time Evaluate
// returns — callers never see a bare Module wrapper.
func (ev *Evaluator) Evaluate(e *Expr) model.Member {
	return ev.Finalize(ev.evalRaw(e))
}

func (ev *Evaluator) evalRaw(e *Expr) model.Member {
	if e == nil {
		return model.NewUnknown("", model.Location{}, "nil annotation")
	}
	switch e.Kind {
	case ExprName:
		return ev.LookupName(e.Name)
	case ExprAttribute:
		base := model.Resolve(ev.evalRaw(e.Object))
		if container, ok := base.(model.MemberContainer); ok {
			if m, ok := container.Member(e.Attr); ok {
				return model.Resolve(m)
			}
		}
		return model.NewUnknown(e.Attr, model.Location{}, "unknown annotation member")
	case ExprSubscript:
		return ev.evalSubscript(e)
	case ExprBinOr:
		left := ev.Evaluate(e.Left)
		right := ev.Evaluate(e.Right)
		return ev.MakeUnion([]model.Member{left, right})
	case ExprNone:
		return ev.builtinClass("NoneType")
	case ExprEllipsis:
		return model.NewUnknown("", model.Location{}, "ellipsis annotation")
	case ExprForwardRef:
		// Forward-reference strings would need re-parsing the embedded
		// source, which is out of scope here; treat the name as a direct
		// lookup, which resolves the common case (a plain class name in
		// quotes) and falls back to Unknown for anything more exotic.
		return ev.LookupName(e.Name)
	default:
		return model.NewUnknown("", model.Location{}, "unrecognised annotation kind")
	}
}

// Finalize strips Module wrappers (a bare module name is never itself a
// valid type) and otherwise returns m unchanged (§4.3 "Finalize(t)").
func (ev *Evaluator) Finalize(m model.Member) model.Member {
	resolved := model.Resolve(m)
	if mod, ok := resolved.(*model.Module); ok {
		return model.NewUnknown(mod.Name(), model.Location{}, "module used where a type was expected")
	}
	return resolved
}

// LookupName resolves n with Global+Builtins scope (§4.3 "lookup_name with
// Global+Builtins"). A module result is returned as-is here (still wrapped)
// so attribute chaining (`a.b.C`) can walk through it; Finalize strips it
// at the very end of the chain.
func (ev *Evaluator) LookupName(n string) model.Member {
	if ev.Stack != nil {
		if v, ok := ev.Stack.LookupName(n, scope.Global|scope.Builtins); ok {
			return model.Resolve(v)
		}
	}
	return model.NewUnknown(n, model.Location{}, "undefined annotation name")
}

func (ev *Evaluator) builtinClass(name string) model.Member {
	if ev.Builtins == nil {
		return model.NewUnknown(name, model.Location{}, "builtins not available")
	}
	if m, ok := ev.Builtins.Member(name); ok {
		return model.Resolve(m)
	}
	return model.NewUnknown(name, model.Location{}, "builtin type not scraped")
}

// MakeUnion wraps ts as a union type exposing its members for downstream
// fusion (§4.3 "a union is a special type that exposes its members"). A
// single-element input collapses to that element; duplicates collapse too.
func (ev *Evaluator) MakeUnion(ts []model.Member) model.Member {
	if len(ts) == 0 {
		return model.NewUnknown("", model.Location{}, "empty union")
	}
	result := ts[0]
	for _, t := range ts[1:] {
		result = model.Fuse(result, t)
	}
	return result
}

// GetUnionTypes returns the member elements of a union-shaped type (a
// MultipleMember), or a single-element slice for anything else.
func GetUnionTypes(m model.Member) []model.Member {
	if multi, ok := m.(*model.MultipleMember); ok {
		return multi.Elements
	}
	return []model.Member{m}
}

func (ev *Evaluator) evalSubscript(e *Expr) model.Member {
	baseName := subscriptBaseName(e.Object)
	args := make([]model.Member, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, ev.Evaluate(a))
	}
	return ev.MakeGeneric(baseName, args)
}

// subscriptBaseName extracts the dotted/bare name of a subscript's base
// expression (`typing.List` or `List`) without resolving it — MakeGeneric
// only needs the name to pick a recognised form.
func subscriptBaseName(e *Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprName:
		return e.Name
	case ExprAttribute:
		return e.Attr
	default:
		return ""
	}
}

func hasStringArg(args []model.Member) bool {
	for _, a := range args {
		if inst, ok := a.(*model.Instance); ok && inst.Class != nil {
			if inst.Class.Name() == "str" || inst.Class.Name() == "bytes" {
				return true
			}
		}
	}
	return false
}

// MakeGeneric applies one of the recognised typing-generic forms (§4.3). An
// unrecognised base name is returned unchanged: it is looked up through
// LookupName and finalized, and the type arguments are dropped. A verbose
// trace is left to the caller to emit if it wants one.
func (ev *Evaluator) MakeGeneric(base string, args []model.Member) model.Member {
	switch base {
	case "Tuple", "tuple":
		return model.NewSequence("tuple", args)
	case "Sequence":
		return model.NewSequence("Sequence", args)
	case "List", "list":
		return model.NewSequence("list", args)
	case "Set", "set", "FrozenSet", "frozenset":
		return model.NewSequence("set", args)
	case "Iterable":
		name := "Iterable"
		if hasStringArg(args) {
			name = "Iterable[str]"
		}
		return model.NewIterable(name, args)
	case "Iterator":
		name := "Iterator"
		if hasStringArg(args) {
			name = "Iterator[str]"
		}
		return model.NewIterator(name, args)
	case "Dict", "dict", "Mapping":
		if len(args) == 2 {
			return model.NewLookup("dict", []model.Member{args[0]}, []model.Member{args[1]})
		}
		return model.NewLookup("dict", nil, args)
	case "Optional":
		if len(args) == 0 {
			return model.NewUnknown("Optional", model.Location{}, "empty Optional")
		}
		return args[0]
	case "Union":
		return ev.MakeUnion(args)
	case "ByteString":
		return ev.builtinClass("bytes")
	case "Type", "type":
		return ev.makeClassFactory(args)
	case "Any":
		if len(args) > 0 {
			return args[0]
		}
		return model.NewUnknown("Any", model.Location{}, "Any")
	default:
		if resolved := ev.Finalize(ev.LookupName(base)); !model.IsUnknown(resolved) {
			return resolved
		}
		return model.NewUnknown(base, model.Location{}, "unrecognised generic form")
	}
}

// makeClassFactory implements Type[T]: if T is a builtin class, reuse its
// own `type` (the "type" BuiltinTypeID) class; otherwise synthesize a
// factory class standing for "the type object of T" (§4.3 "Type[T]").
func (ev *Evaluator) makeClassFactory(args []model.Member) model.Member {
	if len(args) == 0 {
		return model.NewUnknown("Type", model.Location{}, "empty Type[]")
	}
	target, ok := args[0].(*model.Class)
	if !ok {
		return model.NewUnknown("Type", model.Location{}, "Type[] of non-class")
	}
	if target.TypeID != model.BuiltinUnknown {
		return ev.builtinClass("type")
	}
	factory := model.NewClass("Type["+target.Name()+"]", target.DeclaringModule)
	factory.IsClassFactory = true
	factory.SetBases([]model.Member{target})
	return factory
}
