package walker

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/internal/pyast"
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/mro"
)

// handleClassDefinition implements §4.2 "Class definition".
func (w *Walker) handleClassDefinition(node *sitter.Node, decorators []string) {
	name := pyast.FieldText(node, "name", w.src)
	_ = decorators // class-level decorators (e.g. @dataclass) are not modelled
	if name == "" {
		return
	}

	cls := w.reuseOrCreateClass(node, name)

	bases := w.classBases(node, cls)
	cls.SetBases(bases)
	w.checkMRO(cls, node)

	w.scopes.PushScope(nil)
	w.scopes.SetInScope("__class__", cls, false, nil)
	for _, stmt := range childrenOf(node, "body") {
		w.walkStatement(stmt)
	}
	body := w.scopes.PopScope()
	cls.ReplaceMembers(body)

	w.scopes.SetInScope(name, cls, false, nil)
}

// reuseOrCreateClass looks for the pre-pass placeholder for this exact class
// node (same name and declaration site); anything else — a re-bind of the
// name to an unrelated class — creates a fresh Class.
func (w *Walker) reuseOrCreateClass(node *sitter.Node, name string) *model.Class {
	if existing, ok := w.scopes.GetInScope(name, nil); ok {
		if cls, ok := model.Resolve(existing).(*model.Class); ok {
			if w.nodeStarts[cls] == int(node.StartByte()) {
				return cls
			}
		}
	}
	cls := model.NewClass(name, w.Module)
	w.nodeStarts[cls] = int(node.StartByte())
	return cls
}

// checkMRO eagerly materialises cls's C3 linearisation (§4.4) right after its
// bases are set, so a base-class cycle is reported at the class definition
// that introduced it rather than silently surfacing later at the first
// attribute lookup that happens to walk the MRO.
func (w *Walker) checkMRO(cls *model.Class, node *sitter.Node) {
	if _, err := mro.Linearize(cls); err != nil {
		w.report(diagnostic.Trace{
			Event:    diagnostic.MROCycle,
			Detail:   err.Error(),
			Location: w.loc(node),
			Target:   cls.FullyQualifiedName(),
		})
	}
}

// classBases evaluates each non-keyword base expression as an annotation
// (§4.2 "Compute base types by treating each non-keyword base expression as
// an annotation and evaluating via C4").
func (w *Walker) classBases(node *sitter.Node, cls *model.Class) []model.Member {
	super := node.ChildByFieldName("superclasses")
	if super == nil {
		return nil
	}
	evaluator := w.annotationEvaluator()
	var bases []model.Member
	for _, arg := range namedChildren(super) {
		if arg.Type() == "keyword_argument" {
			continue // e.g. metaclass=... is not a base type
		}
		bases = append(bases, evaluator.Evaluate(w.buildAnnotationExpr(arg)))
	}
	return bases
}

func childrenOf(node *sitter.Node, field string) []*sitter.Node {
	body := node.ChildByFieldName(field)
	return namedChildren(body)
}
