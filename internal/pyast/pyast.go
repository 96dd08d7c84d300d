// Package pyast holds the low-level tree-sitter node helpers the walker
// builds on: decorator extraction, field-name lookups and node-shape
// predicates over the Python grammar. These are split out of package walker
// so the grammar-facing glue (node types, field names) stays in one place,
// mirroring how the teacher's graph/parser_python.go keeps its own
// decorator/constant-name helpers separate from the traversal itself.
package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Text returns the source text a node spans.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// FieldText returns the text of a named field child, or "".
func FieldText(n *sitter.Node, field string, src []byte) string {
	if n == nil {
		return ""
	}
	return Text(n.ChildByFieldName(field), src)
}

// Decorators collects the decorator names on a decorated_definition node, in
// source order, with any `(...)` argument list and the leading `@` stripped.
func Decorators(decorated *sitter.Node, src []byte) []string {
	if decorated == nil || decorated.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := 0; i < int(decorated.ChildCount()); i++ {
		child := decorated.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(child.Content(src), "@")
		if idx := strings.Index(text, "("); idx != -1 {
			text = text[:idx]
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

// HasDecorator reports whether name appears in decorators.
func HasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

// DecoratorWithSuffix returns the decorator that ends in "."+suffix (e.g. the
// `<name>.setter` form), and the prefix before the dot, if any matches.
func DecoratorWithSuffix(decorators []string, suffix string) (prefix string, ok bool) {
	tail := "." + suffix
	for _, d := range decorators {
		if strings.HasSuffix(d, tail) {
			return strings.TrimSuffix(d, tail), true
		}
	}
	return "", false
}

// IsConstructorName reports whether a function name is a constructor that
// the deferred walker set must drain before any other method (§4.5).
func IsConstructorName(name string) bool {
	return name == "__init__" || name == "__new__"
}

// InnerDefinition unwraps a decorated_definition down to the
// class_definition/function_definition it decorates; any other node is
// returned unchanged.
func InnerDefinition(n *sitter.Node) *sitter.Node {
	if n == nil || n.Type() != "decorated_definition" {
		return n
	}
	return n.ChildByFieldName("definition")
}

// NamedChildren returns every named child of n.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// Children returns every child (named and anonymous) of n.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// IsConstantName mirrors the teacher's ALL_CAPS constant-naming heuristic,
// used when deciding whether a bare module-level assignment reads as a
// constant for diagnostics purposes (cosmetic only; it does not change how
// the walker models the binding).
func IsConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
