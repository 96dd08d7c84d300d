package walker

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/resolver"
)

// parseModule parses code as a full Python module and returns its root node,
// the way graph/parser_python_test.go parses fixtures for node-shape tests.
func parseModule(t *testing.T, code string) (*sitter.Node, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	defer parser.Close()

	src := []byte(code)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree.RootNode(), src
}

// fakeBuiltins is a minimal in-memory MemberContainer standing in for the
// builtins module during tests, mirroring scope_test.go's fake of the same
// name.
type fakeBuiltins struct {
	members map[string]model.Member
}

func (f *fakeBuiltins) Member(name string) (model.Member, bool) {
	v, ok := f.members[name]
	return v, ok
}
func (f *fakeBuiltins) Members() map[string]model.Member { return f.members }
func (f *fakeBuiltins) SetMember(name string, v model.Member, merge bool) {
	f.members[name] = v
}

func newBuiltins() *fakeBuiltins {
	mod := model.NewSourceModule("builtins")
	mk := func(name string) *model.Class { return model.NewClass(name, mod) }
	return &fakeBuiltins{members: map[string]model.Member{
		"int":      mk("int"),
		"str":      mk("str"),
		"bool":     mk("bool"),
		"float":    mk("float"),
		"object":   mk("object"),
		"NoneType": mk("NoneType"),
		"list":     mk("list"),
		"dict":     mk("dict"),
	}}
}

// recordingReporter collects every trace reported during a test.
type recordingReporter struct {
	traces []diagnostic.Trace
}

func (r *recordingReporter) Report(t diagnostic.Trace) { r.traces = append(r.traces, t) }

func (r *recordingReporter) has(event diagnostic.Event) bool {
	for _, t := range r.traces {
		if t.Event == event {
			return true
		}
	}
	return false
}

// newTestWalker builds a Walker over code, ready for Walk, using name as the
// module's fully qualified name and load as the cross-module resolver.
func newTestWalker(t *testing.T, name, code string, load LoadModule) (*Walker, *sitter.Node, *recordingReporter) {
	t.Helper()
	root, src := parseModule(t, code)
	mod := model.NewSourceModule(name)
	reporter := &recordingReporter{}
	w := New(mod, newBuiltins(), resolver.Version{Major: 3, Minor: 11}, false, name+".py", src, load, reporter)
	return w, root, reporter
}

func walkCode(t *testing.T, name, code string) (*model.Module, *recordingReporter) {
	t.Helper()
	w, root, reporter := newTestWalker(t, name, code, nil)
	w.Walk(root)
	return w.Module, reporter
}
