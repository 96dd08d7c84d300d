// Package walker implements the single-pass AST walker (§4.2 "AST walker
// (C3)"): it turns a parsed module's tree-sitter AST into the symbolic
// members of a model.Module, delegating expression evaluation to package
// scope, type-annotation evaluation to package annotation, return-type
// computation to package deferred, and inheritance resolution to package
// mro. It never touches the file system itself — a LoadModule callback is
// the walker's only way to reach another module, exactly as resolver's
// FileSystem keeps disk access an external collaborator.
package walker

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pysymtab/engine/annotation"
	"github.com/pysymtab/engine/deferred"
	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/internal/pyast"
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/resolver"
	"github.com/pysymtab/engine/scope"
)

// LoadModule resolves and (recursively) walks another module by its fully
// qualified dotted name, returning nil if it could not be found. The CLI
// layer wires this to resolver.Snapshot.Classify + modcache.Cache +
// recursive Walker.Walk calls; tests substitute an in-memory stub.
type LoadModule func(fullName string) *model.Module

// Walker holds the mutable state of one module's walk. A Walker is used for
// exactly one module and is not safe for concurrent use (§5, same rule as
// package scope's Stack and package deferred's Set, both of which it owns).
type Walker struct {
	Module   *model.Module
	Builtins model.MemberContainer
	Version  resolver.Version
	IsStub   bool // true for a .pyi file (affects typing-scope cleanup)
	Reporter diagnostic.Reporter
	Load     LoadModule

	src       []byte
	file      string
	scopes    *scope.Stack
	deferred  *deferred.Set
	evaluator *scope.Evaluator
	typingMod *model.Module
	typingSet map[string]bool

	// nodeStarts records the source byte offset each reused Class was first
	// created at, so a later encounter of the "same" top-level name can tell
	// a pre-pass placeholder apart from an unrelated re-bind (§4.2 "same
	// name and same start index").
	nodeStarts map[*model.Class]int
}

// New creates a walker for mod, sourced from src (the file's full text) at
// path file.
func New(mod *model.Module, builtins model.MemberContainer, version resolver.Version, isStub bool, file string, src []byte, load LoadModule, reporter diagnostic.Reporter) *Walker {
	stack := scope.New(builtins)
	return &Walker{
		Module:     mod,
		Builtins:   builtins,
		Version:    version,
		IsStub:     isStub,
		Reporter:   reporter,
		Load:       load,
		src:        src,
		file:       file,
		scopes:     stack,
		deferred:   deferred.New(),
		evaluator:  scope.NewEvaluator(stack),
		typingSet:  make(map[string]bool),
		nodeStarts: make(map[*model.Class]int),
	}
}

// annotationEvaluator creates a fresh C4 evaluator bound to the walker's
// current scope stack. A new value per call is cheap (it wraps no mutable
// state of its own) and keeps every call site from having to reach into the
// walker's private fields.
func (w *Walker) annotationEvaluator() *annotation.Evaluator {
	return annotation.NewEvaluator(w.scopes, w.Builtins)
}

func (w *Walker) report(t diagnostic.Trace) {
	if w.Reporter != nil {
		w.Reporter.Report(t)
	}
}

func (w *Walker) text(n *sitter.Node) string { return pyast.Text(n, w.src) }

func (w *Walker) loc(n *sitter.Node) model.Location {
	if n == nil {
		return model.Location{File: w.file}
	}
	start, end := n.StartPoint(), n.EndPoint()
	return model.Location{
		File:      w.file,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

// Walk runs the full §4.2 pipeline over root (a "module" node): pre-pass,
// main walk, deferred drain, and stub typing-scope cleanup.
func (w *Walker) Walk(root *sitter.Node) {
	body := pyast.NamedChildren(root)
	w.prePass(body)
	for _, stmt := range body {
		w.walkStatement(stmt)
	}
	w.deferred.ProcessSet()
	w.completeTypingScope()

	global := w.scopes.Global()
	for name, v := range global {
		w.Module.SetMember(name, v, false)
	}
}

// prePass collects top-level function/class definitions up front so forward
// references resolve, and aliases bare `lhs = rhs` top-level assignments
// where rhs is already a known name (§4.2 "Pre-pass").
func (w *Walker) prePass(body []*sitter.Node) {
	for _, stmt := range body {
		def := pyast.InnerDefinition(stmt)
		if def == nil {
			continue
		}
		switch def.Type() {
		case "function_definition":
			name := pyast.FieldText(def, "name", w.src)
			if name == "" {
				continue
			}
			if _, ok := w.scopes.GetInScope(name, nil); !ok {
				w.scopes.SetInScope(name, model.NewFunction(name, w.Module, nil), false, nil)
			}
		case "class_definition":
			name := pyast.FieldText(def, "name", w.src)
			if name == "" {
				continue
			}
			if _, ok := w.scopes.GetInScope(name, nil); !ok {
				cls := model.NewClass(name, w.Module)
				w.nodeStarts[cls] = int(def.StartByte())
				w.scopes.SetInScope(name, cls, false, nil)
			}
		}
	}
	for _, stmt := range body {
		if stmt.Type() != "expression_statement" {
			continue
		}
		assign := firstNamedChild(stmt)
		if assign == nil || assign.Type() != "assignment" {
			continue
		}
		lhs := assign.ChildByFieldName("left")
		rhs := assign.ChildByFieldName("right")
		if lhs == nil || rhs == nil || lhs.Type() != "identifier" || rhs.Type() != "identifier" {
			continue
		}
		if v, ok := w.scopes.GetInScope(w.text(rhs), nil); ok {
			w.scopes.SetInScope(w.text(lhs), v, false, nil)
		}
	}
}

// walkStatement dispatches one top-level-or-nested statement node.
func (w *Walker) walkStatement(stmt *sitter.Node) {
	switch stmt.Type() {
	case "import_statement":
		w.handleImportStatement(stmt)
	case "import_from_statement":
		w.handleImportFromStatement(stmt)
	case "if_statement":
		w.handleIfStatement(stmt)
	case "expression_statement":
		w.handleExpressionStatement(stmt)
	case "decorated_definition":
		w.handleDecoratedDefinition(stmt)
	case "class_definition":
		w.handleClassDefinition(stmt, nil)
	case "function_definition":
		w.handleFunctionDefinition(stmt, nil)
	case "block":
		for _, c := range pyast.NamedChildren(stmt) {
			w.walkStatement(c)
		}
	case "else_clause":
		if body := stmt.ChildByFieldName("body"); body != nil {
			w.walkStatement(body)
		}
	case "for_statement", "while_statement", "with_statement", "try_statement":
		// Bodies may contain further definitions/imports worth collecting;
		// the loop/context/exception machinery itself is not modelled.
		for _, c := range pyast.NamedChildren(stmt) {
			if c.Type() == "block" {
				w.walkStatement(c)
			}
		}
	default:
		// pass_statement, return_statement, raise_statement, etc. carry no
		// symbolic content at module/class level.
	}
}

func (w *Walker) handleDecoratedDefinition(stmt *sitter.Node) {
	decorators := pyast.Decorators(stmt, w.src)
	inner := pyast.InnerDefinition(stmt)
	switch inner.Type() {
	case "function_definition":
		w.handleFunctionDefinition(inner, decorators)
	case "class_definition":
		w.handleClassDefinition(inner, decorators)
	}
}

func (w *Walker) handleExpressionStatement(stmt *sitter.Node) {
	inner := firstNamedChild(stmt)
	if inner == nil {
		return
	}
	switch inner.Type() {
	case "assignment":
		w.handleAssignment(inner)
	}
}

// handleAssignment implements §4.2 "Assignments".
func (w *Walker) handleAssignment(assign *sitter.Node) {
	lhs := assign.ChildByFieldName("left")
	rhs := assign.ChildByFieldName("right")
	annot := assign.ChildByFieldName("type")
	if lhs == nil {
		return
	}
	name := w.text(lhs)
	if lhs.Type() != "identifier" {
		return // tuple/attribute/subscript targets are not modelled as bindings here
	}

	var rhsVal model.Member
	if rhs != nil {
		rhsExpr := w.buildScopeExpr(rhs)
		rhsVal = w.evaluator.Evaluate(rhsExpr)
		if rhs.Type() == "ellipsis" {
			rhsVal = model.NewUnknown(name, w.loc(rhs), "ellipsis assignment")
		}
	}

	if annot != nil {
		annotEval := w.annotationEvaluator()
		t := annotEval.Evaluate(w.buildAnnotationExpr(annot))
		types := annotation.GetUnionTypes(t)
		w.scopes.SetInScope(name, model.NewConstant(name, w.loc(lhs), types), false, nil)
		if rhsVal != nil && !model.IsUnknown(rhsVal) {
			w.scopes.SetInScope(name, rhsVal, true, nil)
		}
		return
	}

	if rhsVal == nil {
		rhsVal = model.NewUnknown(name, w.loc(lhs), "assignment with no value")
	}
	if multi, ok := rhsVal.(*model.MultipleMember); ok {
		clone := *multi
		rhsVal = &clone
	}
	w.scopes.SetInScope(name, rhsVal, true, nil)
}

const builtinsModuleName = "builtins"

// handleImportStatement implements the plain `import a.b.c [as d]` form of
// §4.2 "Imports".
func (w *Walker) handleImportStatement(stmt *sitter.Node) {
	for _, child := range pyast.Children(stmt) {
		switch child.Type() {
		case "dotted_name":
			dotted := w.text(child)
			w.bindPlainImport(firstSegment(dotted), dotted)
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			alias := w.text(child.ChildByFieldName("alias"))
			dotted := w.text(nameNode)
			w.bindPlainImport(alias, dotted)
		}
	}
}

func (w *Walker) bindPlainImport(localName, dotted string) {
	if dotted == w.Module.FullName {
		w.scopes.SetInScope(localName, w.Module, false, nil)
		return
	}
	w.scopes.SetInScope(localName, w.lazyModule(localName, dotted), false, nil)
}

// lazyModule wraps dotted as a nested lazy module named localName (the key
// it is bound under) and resolved on first access through Load, falling
// back to Unknown when Load is nil or finds nothing.
func (w *Walker) lazyModule(localName, dotted string) model.Member {
	return model.NewNestedModule(localName, dotted, func() *model.Module {
		if w.Load == nil {
			return nil
		}
		mod := w.Load(dotted)
		if mod == nil {
			w.report(diagnostic.Trace{Event: diagnostic.ImportNotFound, Target: dotted})
		}
		return mod
	})
}

// handleImportFromStatement implements the six `from M import X [as Y]`
// cases of §4.2.
func (w *Walker) handleImportFromStatement(stmt *sitter.Node) {
	moduleName := w.fromModuleName(stmt)
	names := w.fromImportedNames(stmt)
	isWildcard := w.fromIsWildcard(stmt)

	switch {
	case moduleName == "__future__":
		return
	case moduleName == "typing":
		w.handleTypingImport(names, isWildcard)
		return
	case moduleName == w.Module.FullName:
		// "M == self": only explicit aliases bind. The module's own member
		// table isn't populated until Walk finishes, so the lookup goes
		// through the scope stack — the same place every other top-level
		// name is visible mid-walk.
		for _, n := range names {
			if n.alias == "" {
				continue
			}
			if v, ok := w.scopes.GetInScope(n.name, nil); ok {
				w.scopes.SetInScope(n.alias, v, false, nil)
			}
		}
		return
	}

	if isWildcard {
		w.handleWildcardImport(moduleName)
		return
	}

	target := w.lazyModule(lastSegment(moduleName), moduleName)
	for _, n := range names {
		local := n.alias
		if local == "" {
			local = n.name
		}
		imported := n.name
		w.scopes.SetInScope(local, model.NewLazy(local, func() model.Member {
			mod := model.Resolve(target)
			container, ok := mod.(model.MemberContainer)
			if !ok {
				return model.NewUnknown(local, model.Location{}, "import target not a container")
			}
			if m, ok := container.Member(imported); ok {
				return m
			}
			return model.NewUnknown(local, model.Location{}, "undefined import member")
		}), false, nil)
	}
}

func (w *Walker) handleWildcardImport(moduleName string) {
	mod := model.Resolve(w.lazyModule(lastSegment(moduleName), moduleName))
	container, ok := mod.(model.MemberContainer)
	if !ok {
		w.report(diagnostic.Trace{Event: diagnostic.UnknownImport, Target: moduleName})
		return
	}
	for name, v := range container.Members() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if model.IsUnknown(v) {
			w.report(diagnostic.Trace{Event: diagnostic.UndefinedImport, Target: moduleName + "." + name})
		}
		w.scopes.SetInScope(name, v, false, nil)
	}
}

func (w *Walker) handleTypingImport(names []fromName, wildcard bool) {
	if w.typingMod == nil {
		w.typingMod = model.NewScrapedModule("typing")
	}
	bind := func(localName, memberName string) {
		member, ok := w.typingMod.Member(memberName)
		if !ok {
			member = model.NewClass(memberName, w.typingMod)
			w.typingMod.SetMember(memberName, member, false)
		}
		w.scopes.SetInScope(localName, member, false, nil)
		w.typingSet[localName] = true
	}
	if wildcard {
		for name, v := range w.typingMod.Members() {
			w.scopes.SetInScope(name, v, false, nil)
			w.typingSet[name] = true
		}
		return
	}
	for _, n := range names {
		local := n.alias
		if local == "" {
			local = n.name
		}
		bind(local, n.name)
	}
}

// completeTypingScope implements §4.2 "Completion": for .pyi files whose
// module isn't typing itself, names imported from typing are not
// re-exported, so they're removed from the global table again.
func (w *Walker) completeTypingScope() {
	if !w.IsStub || w.Module.FullName == "typing" {
		return
	}
	global := w.scopes.Global()
	for name := range w.typingSet {
		delete(global, name)
	}
}

type fromName struct{ name, alias string }

func (w *Walker) fromModuleName(stmt *sitter.Node) string {
	for _, child := range pyast.NamedChildren(stmt) {
		if child.Type() == "relative_import" {
			return w.resolveRelativeImport(child)
		}
	}
	if n := stmt.ChildByFieldName("module_name"); n != nil {
		return w.text(n)
	}
	return ""
}

func (w *Walker) resolveRelativeImport(relative *sitter.Node) string {
	dots := 0
	suffix := ""
	for _, c := range pyast.NamedChildren(relative) {
		switch c.Type() {
		case "import_prefix":
			dots = strings.Count(w.text(c), ".")
		case "dotted_name":
			suffix = w.text(c)
		}
	}
	if dots == 0 {
		return suffix
	}
	parts := strings.Split(w.Module.FullName, ".")
	// dots==1 refers to the current package (the module's own parent);
	// each further dot climbs one more level.
	climb := dots
	if climb > len(parts) {
		climb = len(parts)
	}
	base := strings.Join(parts[:len(parts)-climb], ".")
	if base == "" {
		return suffix
	}
	if suffix == "" {
		// "M == self" is detected by exact FullName match, so a bare
		// `from . import x` resolving to the current package's own
		// __init__ falls through to the package-module case normally.
		return base
	}
	return base + "." + suffix
}

func (w *Walker) fromIsWildcard(stmt *sitter.Node) bool {
	for _, c := range pyast.Children(stmt) {
		if c.Type() == "wildcard_import" {
			return true
		}
	}
	return false
}

func (w *Walker) fromImportedNames(stmt *sitter.Node) []fromName {
	moduleNode := stmt.ChildByFieldName("module_name")
	var out []fromName
	for _, child := range pyast.Children(stmt) {
		t := child.Type()
		if child == moduleNode || t == "from" || t == "import" || t == "(" || t == ")" || t == "," ||
			t == "relative_import" || t == "wildcard_import" {
			continue
		}
		switch t {
		case "aliased_import":
			out = append(out, fromName{
				name:  w.text(child.ChildByFieldName("name")),
				alias: w.text(child.ChildByFieldName("alias")),
			})
		case "dotted_name", "identifier":
			out = append(out, fromName{name: w.text(child)})
		}
	}
	return out
}

// handleIfStatement implements §4.2's `if sys.version_info <op> (M, N):`
// conditional. Recognised comparisons walk only the matching branch;
// anything else walks every branch. Only the statement's first alternative
// is followed: an else clause is walked, an elif clause is not.
func (w *Walker) handleIfStatement(stmt *sitter.Node) {
	cond := stmt.ChildByFieldName("condition")
	consequence := stmt.ChildByFieldName("consequence")
	alternative := stmt.ChildByFieldName("alternative")

	if branch, ok := w.versionGuardBranch(cond); ok {
		if branch {
			w.walkStatement(consequence)
		} else if alternative != nil {
			w.walkStatement(alternative)
		}
		return
	}

	w.walkStatement(consequence)
	if alternative != nil {
		w.walkStatement(alternative)
	}
}

// versionGuardBranch recognises `sys.version_info <op> (M, N)` (or
// `sys.version_info[:2] <op> (M, N)`) and reports whether the consequence
// branch should run.
func (w *Walker) versionGuardBranch(cond *sitter.Node) (takeConsequence, recognised bool) {
	if cond == nil || cond.Type() != "comparison_operator" {
		return false, false
	}
	// comparison_operator has no left/right fields; its operands are its
	// named children.
	if cond.NamedChildCount() < 2 {
		return false, false
	}
	left := cond.NamedChild(0)
	right := cond.NamedChild(1)
	if right.Type() != "tuple" {
		return false, false
	}
	if !strings.Contains(w.text(left), "version_info") {
		return false, false
	}
	major, minor, ok := parseVersionTuple(w.text(right))
	if !ok {
		return false, false
	}
	op := w.comparisonOperator(cond)
	cmp := compareVersions(w.Version.Major, w.Version.Minor, major, minor)
	switch op {
	case ">=":
		return cmp >= 0, true
	case ">":
		return cmp > 0, true
	case "<=":
		return cmp <= 0, true
	case "<":
		return cmp < 0, true
	case "==":
		return cmp == 0, true
	case "!=":
		return cmp != 0, true
	default:
		return false, false
	}
}

func (w *Walker) comparisonOperator(cond *sitter.Node) string {
	for _, c := range pyast.Children(cond) {
		switch w.text(c) {
		case ">=", ">", "<=", "<", "==", "!=":
			return w.text(c)
		}
	}
	return ""
}

func compareVersions(aMajor, aMinor, bMajor, bMinor int) int {
	if aMajor != bMajor {
		return aMajor - bMajor
	}
	return aMinor - bMinor
}

func parseVersionTuple(text string) (major, minor int, ok bool) {
	trimmed := strings.Trim(strings.TrimSpace(text), "()")
	parts := strings.Split(trimmed, ",")
	if len(parts) == 0 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	if len(parts) > 1 {
		minor, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			minor = 0
		}
	}
	return major, minor, true
}

func firstSegment(dotted string) string {
	if idx := strings.IndexByte(dotted, '.'); idx >= 0 {
		return dotted[:idx]
	}
	return dotted
}

func lastSegment(dotted string) string {
	if idx := strings.LastIndexByte(dotted, '.'); idx >= 0 {
		return dotted[idx+1:]
	}
	return dotted
}
