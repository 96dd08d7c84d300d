package walker

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pysymtab/engine/internal/pyast"
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/scope"
)

// handleFunctionDefinition implements §4.2 "Function definition
// (non-lambda)": decorator inspection in order (property, `<name>.setter`,
// then the ordinary function/method path), registering the body with the
// deferred walker set (C5) rather than recursing into it immediately.
func (w *Walker) handleFunctionDefinition(node *sitter.Node, decorators []string) {
	name := pyast.FieldText(node, "name", w.src)
	if name == "" {
		return
	}

	if pyast.HasDecorator(decorators, "property") || pyast.HasDecorator(decorators, "abc.abstractproperty") {
		w.registerProperty(node, name)
		return
	}

	if owner, ok := pyast.DecoratorWithSuffix(decorators, "setter"); ok && owner == name {
		if existing, found := w.scopes.GetInScope(name, nil); found {
			if prop, ok := model.Resolve(existing).(*model.Property); ok {
				prop.MarkWritable()
				return
			}
		}
		return
	}

	cls, _ := w.currentClass()
	fn := w.reuseOrCreateFunction(name, cls)
	fn.IsClassMethod = pyast.HasDecorator(decorators, "classmethod")
	fn.IsStatic = pyast.HasDecorator(decorators, "staticmethod")

	overload := model.NewOverload(w.parseParameters(node.ChildByFieldName("parameters")))
	w.evalReturnAnnotation(node, overload)
	overload.Doc = w.docstring(node)
	w.registerBodyWalk(node, overload, fn, cls)
	fn.AddOverload(overload)

	w.scopes.SetInScope(name, fn, false, nil)
}

// reuseOrCreateFunction looks up an existing function of this name in the
// local scope to append a new overload to it, creating one otherwise.
func (w *Walker) reuseOrCreateFunction(name string, cls *model.Class) *model.Function {
	if existing, ok := w.scopes.GetInScope(name, nil); ok {
		if fn, ok := model.Resolve(existing).(*model.Function); ok {
			return fn
		}
	}
	return model.NewFunction(name, w.Module, cls)
}

// registerProperty implements the `@property`/`@abc.abstractproperty`
// decorator case: the function becomes a Property wrapping a single getter
// overload, and is not itself registered as a callable Function name.
func (w *Walker) registerProperty(node *sitter.Node, name string) {
	cls, _ := w.currentClass()
	getter := model.NewFunction(name, w.Module, cls)
	overload := model.NewOverload(w.parseParameters(node.ChildByFieldName("parameters")))
	w.evalReturnAnnotation(node, overload)
	overload.Doc = w.docstring(node)
	w.registerBodyWalk(node, overload, getter, cls)
	getter.AddOverload(overload)

	prop := model.NewProperty(name, cls, getter)
	w.scopes.SetInScope(name, prop, false, nil)
}

// evalReturnAnnotation captures a function's `-> T` return annotation both as
// source text (for display) and, per §4.5 "annotation-declared return is
// honoured when present", as an evaluated type added to the overload's
// return-type set immediately — it does not wait for the deferred body walk,
// since a function with an annotated return and no `return` statement (e.g.
// a stub's `def f() -> T: ...`) would otherwise never populate one at all.
func (w *Walker) evalReturnAnnotation(node *sitter.Node, overload *model.Overload) {
	ret := node.ChildByFieldName("return_type")
	if ret == nil {
		return
	}
	overload.ReturnAnnotation = w.text(ret)
	evaluator := w.annotationEvaluator()
	overload.AddReturnType(evaluator.Evaluate(w.buildAnnotationExpr(ret)))
}

// registerBodyWalk registers the function body with the deferred walker set
// (C5), to be drained after the enclosing module walk completes. The
// closure walks the body against a private clone of the enclosing scope
// stack and feeds every `return expr` it finds to the overload's return-type
// set.
func (w *Walker) registerBodyWalk(node *sitter.Node, overload *model.Overload, fn *model.Function, cls *model.Class) {
	body := node.ChildByFieldName("body")
	isConstructor := pyast.IsConstructorName(fn.Name())
	overload.SetTrigger(func() {
		inner := w.newBodyWalker(body, overload, fn, cls)
		inner.walkBody(body)
	})
	// The deferred-set entry forces the body to be walked at least once
	// during C5's drain (§4.5), even if nothing ever calls EnsureReturnTypes
	// directly; the trigger itself is idempotent (sync.Once-backed).
	w.deferred.Add(node, isConstructor, func() { overload.EnsureReturnTypes() })
}

// bodyWalker walks one function body against a private scope clone (§4.1
// "preserving enclosing bindings"); it shares the enclosing Walker's
// deferred set so nested function definitions register correctly.
type bodyWalker struct {
	*Walker
	overload *model.Overload
	fn       *model.Function
}

func (w *Walker) newBodyWalker(body *sitter.Node, overload *model.Overload, fn *model.Function, cls *model.Class) *bodyWalker {
	clone := *w
	clone.scopes = w.scopes.Clone(true)
	clone.evaluator = scope.NewEvaluator(clone.scopes)
	inner := &bodyWalker{Walker: &clone, overload: overload, fn: fn}
	if !fn.IsStatic && cls != nil {
		self := model.NewInstance(cls)
		if len(overload.Parameters) > 0 {
			inner.scopes.SetInScope(overload.Parameters[0].Name, self, false, nil)
		}
	}
	return inner
}

func (b *bodyWalker) walkBody(body *sitter.Node) {
	for _, stmt := range namedChildren(body) {
		b.walkBodyStatement(stmt)
	}
}

// walkBodyStatement extends walkStatement with `return expr` handling and
// generic recursion into every compound-statement body, since a function
// body commonly nests for/while/try/with/if far more than module level does.
func (b *bodyWalker) walkBodyStatement(stmt *sitter.Node) {
	switch stmt.Type() {
	case "return_statement":
		b.handleReturn(stmt)
	case "if_statement":
		b.handleIfBody(stmt)
	case "for_statement", "while_statement", "with_statement", "try_statement":
		for _, c := range namedChildren(stmt) {
			if c.Type() == "block" {
				for _, s := range namedChildren(c) {
					b.walkBodyStatement(s)
				}
			}
		}
	case "block":
		for _, c := range namedChildren(stmt) {
			b.walkBodyStatement(c)
		}
	case "else_clause":
		if body := stmt.ChildByFieldName("body"); body != nil {
			b.walkBodyStatement(body)
		}
	default:
		b.Walker.walkStatement(stmt)
	}
}

func (b *bodyWalker) handleIfBody(stmt *sitter.Node) {
	consequence := stmt.ChildByFieldName("consequence")
	alternative := stmt.ChildByFieldName("alternative")
	if branch, ok := b.versionGuardBranch(stmt.ChildByFieldName("condition")); ok {
		if branch {
			b.walkBodyStatement(consequence)
		} else if alternative != nil {
			b.walkBodyStatement(alternative)
		}
		return
	}
	b.walkBodyStatement(consequence)
	if alternative != nil {
		b.walkBodyStatement(alternative)
	}
}

func (b *bodyWalker) handleReturn(stmt *sitter.Node) {
	value := firstNamedChild(stmt)
	if value == nil {
		return
	}
	result := b.evaluator.Evaluate(b.buildScopeExpr(value))
	b.overload.AddReturnType(result)
}

// docstring extracts a function/class body's leading string-literal
// expression statement, if present.
func (w *Walker) docstring(node *sitter.Node) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	inner := firstNamedChild(first)
	if inner == nil || inner.Type() != "string" {
		return ""
	}
	return w.text(inner)
}

func (w *Walker) currentClass() (*model.Class, bool) {
	if v, ok := w.scopes.GetInScope("__class__", nil); ok {
		cls, ok := model.Resolve(v).(*model.Class)
		return cls, ok
	}
	return nil, false
}
