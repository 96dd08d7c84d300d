package walker

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pysymtab/engine/annotation"
	"github.com/pysymtab/engine/scope"
)

// buildScopeExpr translates a value-position expression node into package
// scope's parser-agnostic vocabulary (§4.1). Node shapes not recognised
// collapse to a name lookup of the node's own text, which for most
// unhandled forms (e.g. a raw string literal used as a type comment) still
// gives the evaluator something sane to chew on.
func (w *Walker) buildScopeExpr(n *sitter.Node) *scope.Expr {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &scope.Expr{Kind: scope.ExprName, Name: w.text(n), LookupOpts: scope.Local | scope.Nonlocal | scope.Global | scope.Builtins}
	case "attribute":
		return &scope.Expr{
			Kind:   scope.ExprAttribute,
			Object: w.buildScopeExpr(n.ChildByFieldName("object")),
			Attr:   w.text(n.ChildByFieldName("attribute")),
		}
	case "call":
		e := &scope.Expr{Kind: scope.ExprCall, Object: w.buildScopeExpr(n.ChildByFieldName("function"))}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for _, a := range namedChildren(args) {
				e.Args = append(e.Args, w.buildScopeExpr(a))
			}
		}
		return e
	case "subscript":
		return &scope.Expr{
			Kind:   scope.ExprIndex,
			Object: w.buildScopeExpr(n.ChildByFieldName("value")),
			Index:  w.buildScopeExpr(n.ChildByFieldName("subscript")),
		}
	case "not_operator":
		return &scope.Expr{Kind: scope.ExprUnary, Object: w.buildScopeExpr(n.ChildByFieldName("argument"))}
	case "unary_operator":
		return &scope.Expr{Kind: scope.ExprUnary, Object: w.buildScopeExpr(n.ChildByFieldName("argument"))}
	case "binary_operator", "boolean_operator":
		return &scope.Expr{
			Kind:  scope.ExprBinary,
			Op:    w.text(n.ChildByFieldName("operator")),
			Left:  w.buildScopeExpr(n.ChildByFieldName("left")),
			Right: w.buildScopeExpr(n.ChildByFieldName("right")),
		}
	case "comparison_operator":
		// A chained comparison (`a < b < c`) has more than one operator
		// token and no single "operator" field; category alone (never a
		// specific symbol) is enough for evalBinary to yield bool.
		return &scope.Expr{
			Kind:  scope.ExprBinary,
			Op:    "comparison",
			Left:  w.buildScopeExpr(n.ChildByFieldName("left")),
			Right: w.buildScopeExpr(n.ChildByFieldName("right")),
		}
	case "conditional_expression":
		children := namedChildren(n)
		e := &scope.Expr{Kind: scope.ExprConditional}
		if len(children) >= 1 {
			e.Left = w.buildScopeExpr(children[0])
		}
		if len(children) >= 2 {
			e.Test = w.buildScopeExpr(children[1])
		}
		if len(children) >= 3 {
			e.Right = w.buildScopeExpr(children[2])
		}
		return e
	case "parenthesized_expression":
		return w.buildScopeExpr(firstNamedChild(n))
	case "integer":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralInt}
	case "float":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralFloat}
	case "string":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralStr}
	case "true", "false":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralBool}
	case "none":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralNone}
	case "ellipsis":
		return &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralEllipsis}
	case "list", "list_pattern":
		e := &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralList}
		for _, c := range namedChildren(n) {
			e.Elements = append(e.Elements, w.buildScopeExpr(c))
		}
		return e
	case "tuple":
		e := &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralTuple}
		for _, c := range namedChildren(n) {
			e.Elements = append(e.Elements, w.buildScopeExpr(c))
		}
		return e
	case "set":
		e := &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralSet}
		for _, c := range namedChildren(n) {
			e.Elements = append(e.Elements, w.buildScopeExpr(c))
		}
		return e
	case "dictionary":
		e := &scope.Expr{Kind: scope.ExprLiteral, Literal: scope.LiteralDict}
		for _, c := range namedChildren(n) {
			if c.Type() != "pair" {
				continue
			}
			e.Elements = append(e.Elements,
				w.buildScopeExpr(c.ChildByFieldName("key")),
				w.buildScopeExpr(c.ChildByFieldName("value")))
		}
		return e
	default:
		return &scope.Expr{Kind: scope.ExprName, Name: w.text(n), LookupOpts: scope.Local | scope.Nonlocal | scope.Global | scope.Builtins}
	}
}

// buildAnnotationExpr translates a type-annotation expression node into
// package annotation's vocabulary (§4.3). Forward references (quoted
// strings used as a type) are passed through with their quotes stripped.
func (w *Walker) buildAnnotationExpr(n *sitter.Node) *annotation.Expr {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &annotation.Expr{Kind: annotation.ExprName, Name: w.text(n)}
	case "attribute":
		return &annotation.Expr{
			Kind:   annotation.ExprAttribute,
			Object: w.buildAnnotationExpr(n.ChildByFieldName("object")),
			Attr:   w.text(n.ChildByFieldName("attribute")),
		}
	case "subscript":
		e := &annotation.Expr{Kind: annotation.ExprSubscript, Object: w.buildAnnotationExpr(n.ChildByFieldName("value"))}
		sub := n.ChildByFieldName("subscript")
		if sub != nil && sub.Type() == "tuple" {
			for _, c := range namedChildren(sub) {
				e.Args = append(e.Args, w.buildAnnotationExpr(c))
			}
		} else {
			e.Args = append(e.Args, w.buildAnnotationExpr(sub))
		}
		return e
	case "binary_operator":
		if w.text(n.ChildByFieldName("operator")) == "|" || strings.Contains(w.text(n), "|") {
			return &annotation.Expr{
				Kind:  annotation.ExprBinOr,
				Left:  w.buildAnnotationExpr(n.ChildByFieldName("left")),
				Right: w.buildAnnotationExpr(n.ChildByFieldName("right")),
			}
		}
		return &annotation.Expr{Kind: annotation.ExprName, Name: w.text(n)}
	case "none":
		return &annotation.Expr{Kind: annotation.ExprNone}
	case "ellipsis":
		return &annotation.Expr{Kind: annotation.ExprEllipsis}
	case "string":
		return &annotation.Expr{Kind: annotation.ExprForwardRef, Name: strings.Trim(w.text(n), "\"'")}
	case "parenthesized_expression":
		return w.buildAnnotationExpr(firstNamedChild(n))
	default:
		return &annotation.Expr{Kind: annotation.ExprName, Name: w.text(n)}
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}
