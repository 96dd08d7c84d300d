package walker

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pysymtab/engine/model"
)

// parseParameters converts a function_definition's `parameters` node into
// the Parameter list an Overload is built from (§6 "Parameter kinds").
func (w *Walker) parseParameters(parametersNode *sitter.Node) []model.Parameter {
	if parametersNode == nil {
		return nil
	}
	evaluator := w.annotationEvaluator()
	var out []model.Parameter
	for _, param := range namedChildren(parametersNode) {
		switch param.Type() {
		case "identifier":
			out = append(out, model.Parameter{Name: w.text(param), Kind: model.ParamPositional})
		case "typed_parameter":
			name, kind := splatName(param, w.src)
			p := model.Parameter{Name: name, Kind: kind}
			if typeNode := param.ChildByFieldName("type"); typeNode != nil {
				t := evaluator.Evaluate(w.buildAnnotationExpr(typeNode))
				p.Types = annotationTypes(t)
			}
			out = append(out, p)
		case "default_parameter":
			name := w.text(param.ChildByFieldName("name"))
			value := param.ChildByFieldName("value")
			out = append(out, model.Parameter{
				Name:       name,
				Kind:       model.ParamPositional,
				HasDefault: value != nil && value.Type() != "ellipsis",
				Default:    w.text(value),
			})
		case "typed_default_parameter":
			name := w.text(param.ChildByFieldName("name"))
			value := param.ChildByFieldName("value")
			p := model.Parameter{
				Name:       name,
				Kind:       model.ParamPositional,
				HasDefault: value != nil && value.Type() != "ellipsis",
				Default:    w.text(value),
			}
			if typeNode := param.ChildByFieldName("type"); typeNode != nil {
				t := evaluator.Evaluate(w.buildAnnotationExpr(typeNode))
				p.Types = annotationTypes(t)
			}
			out = append(out, p)
		case "list_splat_pattern":
			out = append(out, model.Parameter{Name: strings.TrimPrefix(w.text(param), "*"), Kind: model.ParamVarPositional})
		case "dictionary_splat_pattern":
			out = append(out, model.Parameter{Name: strings.TrimPrefix(w.text(param), "**"), Kind: model.ParamVarKeyword})
		default:
			// "*" bare keyword-only marker, "/" positional-only marker,
			// default_parameter already covered above.
		}
	}
	return out
}

func splatName(param *sitter.Node, src []byte) (string, model.ParameterKind) {
	inner := firstNamedChild(param)
	if inner == nil {
		return "", model.ParamPositional
	}
	switch inner.Type() {
	case "list_splat_pattern":
		return strings.TrimPrefix(inner.Content(src), "*"), model.ParamVarPositional
	case "dictionary_splat_pattern":
		return strings.TrimPrefix(inner.Content(src), "**"), model.ParamVarKeyword
	default:
		return inner.Content(src), model.ParamPositional
	}
}

func annotationTypes(t model.Member) []model.Member {
	if multi, ok := t.(*model.MultipleMember); ok {
		return multi.Elements
	}
	return []model.Member{t}
}
