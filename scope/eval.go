package scope

import (
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/mro"
)

// ExprKind is the small, parser-agnostic expression shape vocabulary the
// walker translates tree-sitter nodes into before handing them to Evaluate
// (§4.1 "expression evaluation to a member": Name, Member-access, Call,
// Index, Unary, Binary, Conditional, and the literal forms).
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprAttribute
	ExprCall
	ExprIndex
	ExprUnary
	ExprBinary
	ExprConditional
	ExprLiteral
)

// LiteralKind distinguishes the literal forms the evaluator type-tags
// directly instead of resolving through a scope lookup.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralComplex
	LiteralStr
	LiteralBytes
	LiteralBool
	LiteralNone
	LiteralEllipsis
	LiteralList
	LiteralTuple
	LiteralSet
	LiteralDict
)

// Expr is one evaluable expression node.
type Expr struct {
	Kind ExprKind

	// ExprName
	Name       string
	LookupOpts LookupOptions

	// ExprAttribute / ExprCall / ExprIndex / ExprUnary
	Object *Expr
	Attr   string
	Args   []*Expr
	Index  *Expr

	// ExprBinary / ExprConditional
	Left  *Expr
	Right *Expr
	Test  *Expr
	Op    string // ExprBinary: operator source text, or "comparison" for a chained comparison_operator node

	// ExprLiteral
	Literal  LiteralKind
	Elements []*Expr // List/Tuple/Set elements, or alternating Dict key/value pairs
}

// Evaluator resolves expressions against a Stack and a builtins module,
// producing the symbolic member each expression's value would have (or an
// Unknown placeholder when resolution fails — never an error, per §6
// "lookup failures ... yield an Unknown-typed constant").
type Evaluator struct {
	Stack    *Stack
	Builtins model.MemberContainer
}

// NewEvaluator creates an evaluator bound to stack, using stack's own
// builtins container for literal typing.
func NewEvaluator(stack *Stack) *Evaluator {
	return &Evaluator{Stack: stack, Builtins: stack.builtins}
}

// Evaluate resolves e to a member. model.NewUnknown is used throughout for
// the many "could not resolve" exits; the reason ends up on the Unknown's
// Reason field for diagnostics.
func (ev *Evaluator) Evaluate(e *Expr) model.Member {
	if e == nil {
		return model.NewUnknown("", model.Location{}, "nil expression")
	}
	switch e.Kind {
	case ExprName:
		if v, ok := ev.Stack.LookupName(e.Name, e.LookupOpts); ok {
			return model.Resolve(v)
		}
		return model.NewUnknown(e.Name, model.Location{}, "undefined name")
	case ExprAttribute:
		return ev.evalAttribute(e)
	case ExprCall:
		return ev.evalCall(e)
	case ExprIndex:
		return ev.evalIndex(e)
	case ExprUnary:
		return ev.Evaluate(e.Object) // unary ops never change the operand's type
	case ExprBinary:
		return ev.evalBinary(e)
	case ExprConditional:
		left := ev.Evaluate(e.Left)
		right := ev.Evaluate(e.Right)
		return model.Fuse(left, right) // either branch could run: union the two
	case ExprLiteral:
		return ev.evalLiteral(e)
	default:
		return model.NewUnknown("", model.Location{}, "unrecognised expression kind")
	}
}

func (ev *Evaluator) evalAttribute(e *Expr) model.Member {
	base := model.Resolve(ev.Evaluate(e.Object))
	switch v := base.(type) {
	case model.MemberContainer:
		if m, ok := v.Member(e.Attr); ok {
			return ev.finishAttribute(m)
		}
	case *model.Instance:
		if v.Class != nil {
			if m, ok := mro.MemberThroughMRO(v.Class, e.Attr); ok {
				return ev.finishAttribute(m)
			}
		}
	}
	return model.NewUnknown(e.Attr, model.Location{}, "unknown member")
}

// finishAttribute applies §4.1's "if the result is a property, substitute
// its return type" step after a member lookup resolves to something; every
// other kind of member passes through unchanged.
func (ev *Evaluator) finishAttribute(m model.Member) model.Member {
	resolved := model.Resolve(m)
	if prop, ok := resolved.(*model.Property); ok {
		return ev.resultFromOverloads(prop.Name(), prop.Getter.Overloads())
	}
	return resolved
}

func (ev *Evaluator) evalCall(e *Expr) model.Member {
	callee := model.Resolve(ev.Evaluate(e.Object))
	switch v := callee.(type) {
	case *model.Class:
		return model.NewInstance(v)
	case *model.Function:
		return ev.resultFromOverloads(v.Name(), v.Overloads())
	case *model.MultipleMember:
		if overloads, ok := v.Overloads(); ok {
			return ev.resultFromOverloads(v.Name(), overloads)
		}
		if cls, ok := v.MajorityClass(); ok {
			return model.NewInstance(cls)
		}
		return model.NewUnknown(v.Name(), model.Location{}, "uncallable")
	default:
		return model.NewUnknown("", model.Location{}, "uncallable")
	}
}

// resultFromOverloads runs §4.1's "Call"/property-substitution return-type
// logic shared by a plain function, a property getter, and a fused
// (stub+code) function's unioned overload set: trigger each overload's
// deferred body walk and fuse every resulting return type together.
func (ev *Evaluator) resultFromOverloads(name string, overloads []*model.Overload) model.Member {
	if len(overloads) == 0 {
		return model.NewUnknown(name, model.Location{}, "no overload")
	}
	var result model.Member = model.NewUnknown(name, model.Location{}, "unresolved return type")
	for _, o := range overloads {
		for _, rt := range o.EnsureReturnTypes() {
			result = model.Fuse(result, rt)
		}
	}
	return result
}

func (ev *Evaluator) evalIndex(e *Expr) model.Member {
	base := model.Resolve(ev.Evaluate(e.Object))
	switch v := base.(type) {
	case *model.Sequence:
		return v // typing-originated shape: indexing yields the shape itself
	case *model.Iterable:
		return v
	case *model.Iterator:
		return v
	case *model.Lookup:
		return v
	case *model.Instance:
		if v.Class != nil {
			switch v.Class.TypeID {
			case model.BuiltinBytes:
				return ev.builtinInstance("int") // Python 3: bytes[i] -> int
			case model.BuiltinStr:
				return v // str[i] -> the same string type
			}
		}
	case *model.Class:
		return v // coarse generic handling: indexing a class yields the class
	}
	return model.NewUnknown("", model.Location{}, "unknown index result")
}

func (ev *Evaluator) evalBinary(e *Expr) model.Member {
	if isComparisonOrLogicalOp(e.Op) {
		return ev.builtinInstance("bool")
	}
	// Otherwise: try the left operand's type, falling back to the right's.
	left := ev.Evaluate(e.Left)
	if !model.IsUnknown(left) {
		return left
	}
	return ev.Evaluate(e.Right)
}

func isComparisonOrLogicalOp(op string) bool {
	switch op {
	case "comparison", "and", "or",
		"==", "!=", "<", ">", "<=", ">=",
		"in", "not in", "is", "is not":
		return true
	default:
		return false
	}
}

func (ev *Evaluator) evalLiteral(e *Expr) model.Member {
	switch e.Literal {
	case LiteralList:
		return model.NewSequence("list", ev.evalAll(e.Elements))
	case LiteralTuple:
		return model.NewSequence("tuple", ev.evalAll(e.Elements))
	case LiteralSet:
		return model.NewIterable("set", ev.evalAll(e.Elements))
	case LiteralDict:
		keys, values := ev.evalPairs(e.Elements)
		return model.NewLookup("dict", keys, values)
	default:
		return ev.builtinInstance(literalTypeName(e.Literal))
	}
}

func literalTypeName(l LiteralKind) string {
	switch l {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralComplex:
		return "complex"
	case LiteralStr:
		return "str"
	case LiteralBytes:
		return "bytes"
	case LiteralBool:
		return "bool"
	case LiteralNone:
		return "NoneType"
	case LiteralEllipsis:
		return "ellipsis"
	default:
		return ""
	}
}

func (ev *Evaluator) builtinInstance(typeName string) model.Member {
	if typeName == "" || ev.Builtins == nil {
		return model.NewUnknown("", model.Location{}, "unrecognised literal")
	}
	if m, ok := ev.Builtins.Member(typeName); ok {
		if cls, ok := model.Resolve(m).(*model.Class); ok {
			return model.NewInstance(cls)
		}
	}
	return model.NewUnknown(typeName, model.Location{}, "builtin type not scraped")
}

func (ev *Evaluator) evalAll(exprs []*Expr) []model.Member {
	out := make([]model.Member, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, ev.Evaluate(e))
	}
	return out
}

func (ev *Evaluator) evalPairs(exprs []*Expr) (keys, values []model.Member) {
	for i := 0; i+1 < len(exprs); i += 2 {
		keys = append(keys, ev.Evaluate(exprs[i]))
		values = append(values, ev.Evaluate(exprs[i+1]))
	}
	return keys, values
}
