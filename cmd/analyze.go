package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/spf13/cobra"

	"github.com/pysymtab/engine/builtins"
	"github.com/pysymtab/engine/config"
	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/model"
	"github.com/pysymtab/engine/modcache"
	"github.com/pysymtab/engine/output"
	"github.com/pysymtab/engine/resolver"
	"github.com/pysymtab/engine/walker"
)

var (
	configPathFlag string
	versionFlag    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Walk a Python source tree and print its resolved member tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&configPathFlag, "config", "", "path to an InterpreterConfiguration YAML file")
	analyzeCmd.Flags().StringVar(&versionFlag, "python-version", "3.11", "Python version to model, as \"major.minor\"")
}

// osFileSystem adapts the standard library to resolver.FileSystem (§1
// non-goal: the resolver never touches os directly).
type osFileSystem struct{}

func (osFileSystem) IsDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func (osFileSystem) IsFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	version := parsePythonVersion(versionFlag, cfg.Version)

	searchPaths := cfg.SearchPaths
	if len(searchPaths) == 0 {
		searchPaths = []string{root}
	}

	logger := output.NewLogger(verbosity())
	snapshot := resolver.NewSnapshot(osFileSystem{}, searchPaths, cfg.StubPaths, version, cfg.RequireInitFile)

	reporter := &loggingReporter{logger: logger}
	cache := modcache.New(reporter)
	builtinsMod := builtins.New()

	ld := newLoader(cache, snapshot, builtinsMod, version, reporter, cfg.StubsExclusive)

	modules, err := discoverModules(root)
	if err != nil {
		return fmt.Errorf("discovering modules: %w", err)
	}

	logger.StartProgress("analyzing", len(modules))
	for _, name := range modules {
		ld.Load(name)
		logger.UpdateProgress(1)
	}
	logger.FinishProgress()

	printModules(cmd.OutOrStdout(), ld, modules)
	return nil
}

// loggingReporter forwards diagnostic traces to a Logger, the same fan-out
// shape package diagnostic's Sink describes but bound to the CLI's own
// verbosity-gated writer instead of a test-only recorder.
type loggingReporter struct {
	logger *output.Logger
}

func (r *loggingReporter) Report(t diagnostic.Trace) {
	if r.logger.IsDebug() {
		r.logger.Debug("%s: %s (%s)", t.Event, t.Target, t.Detail)
		return
	}
	switch t.Event {
	case diagnostic.ImportNotFound, diagnostic.RecursiveImport, diagnostic.ImportTimeout:
		r.logger.Warning("%s: %s", t.Event, t.Target)
	}
}

// classificationCacheSize bounds the in-memory resolver.Classification
// front cache (§4.7 "the disk-cache layout backs an LRU front, not an
// unbounded map"): large enough that every distinct dotted name imported
// across one analysis run hits it, without growing unbounded the way a
// plain map would across a long-lived process embedding this package.
const classificationCacheSize = 2048

// loader wires resolver.Snapshot + modcache.Cache + walker.Walker together
// into the recursive walker.LoadModule callback (§9.3).
type loader struct {
	cache          *modcache.Cache
	snapshot       *resolver.Snapshot
	builtins       model.MemberContainer
	version        resolver.Version
	reporter       diagnostic.Reporter
	classifyOnce   *lru.Cache[string, resolver.Classification]
	stubsExclusive bool
}

func newLoader(cache *modcache.Cache, snapshot *resolver.Snapshot, builtins model.MemberContainer, version resolver.Version, reporter diagnostic.Reporter, stubsExclusive bool) *loader {
	classifyOnce, err := lru.New[string, resolver.Classification](classificationCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// classificationCacheSize never is.
		panic(err)
	}
	return &loader{
		cache:          cache,
		snapshot:       snapshot,
		builtins:       builtins,
		version:        version,
		reporter:       reporter,
		classifyOnce:   classifyOnce,
		stubsExclusive: stubsExclusive,
	}
}

// Load resolves and walks fullName, satisfying walker.LoadModule.
func (l *loader) Load(fullName string) *model.Module {
	return l.loadWithContext(context.Background(), fullName)
}

func (l *loader) loadWithContext(ctx context.Context, fullName string) *model.Module {
	mod, _ := l.cache.ImportWithRetries(ctx, fullName, func(ctx context.Context) (*model.Module, error) {
		return l.resolve(ctx, fullName)
	})
	return mod
}

func (l *loader) classify(fullName string) resolver.Classification {
	if c, ok := l.classifyOnce.Get(fullName); ok {
		return c
	}
	c := l.snapshot.Classify(fullName)
	l.classifyOnce.Add(fullName, c)
	return c
}

func (l *loader) resolve(ctx context.Context, fullName string) (*model.Module, error) {
	classification := l.classify(fullName)
	if classification.Kind != resolver.Module {
		// PossibleModule/Compiled/NotFound: nothing for the walker to parse;
		// the caller sees a nil module and reports its own ImportNotFound.
		return nil, nil
	}

	mod, err := l.walkModule(ctx, fullName, classification.Path, classification.IsPackage)
	if err != nil {
		return nil, err
	}

	if classification.StubPath != "" {
		l.fuseStub(ctx, mod, fullName, classification.StubPath)
	}

	l.attachToParent(fullName, mod)
	return mod, nil
}

// walkModule parses and walks one source (or stub) file at path into a fresh
// module. A package directory with no __init__ file at all (a namespace
// package) walks to nothing: an empty module whose children are discovered
// later, one at a time, via attachToParent.
func (l *loader) walkModule(ctx context.Context, fullName, path string, isPackage bool) (*model.Module, error) {
	if isPackage {
		initPath := filepath.Join(path, "__init__.py")
		if !(osFileSystem{}).IsFile(initPath) {
			return model.NewSourceModule(fullName), nil
		}
		path = initPath
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := parseSource(src)
	if err != nil {
		return nil, err
	}

	mod := model.NewSourceModule(fullName)
	isStub := strings.HasSuffix(path, ".pyi")
	w := walker.New(mod, l.builtins, l.version, isStub, path, src, func(name string) *model.Module {
		return l.loadWithContext(ctx, name)
	}, l.reporter)
	w.Walk(root)
	return mod, nil
}

// fuseStub loads the typeshed-style stub found alongside a resolved module
// and fuses its declarations into it (§4.7 "if a module has both a code
// definition and a stub, fuse them") via the same MultipleMember merge
// rule (§4.6) an ordinary re-import uses: every stub member is unioned with
// its matching source-module member — or installed outright when the
// source never defined one — producing a MultipleMember wherever the two
// disagree (spec scenario 6). With stubsExclusive configured, the stub
// declaration replaces the source's outright instead of being unioned.
func (l *loader) fuseStub(ctx context.Context, mod *model.Module, fullName, stubPath string) {
	stub, err := l.walkModule(ctx, fullName, stubPath, false)
	if err != nil {
		l.reporter.Report(diagnostic.Trace{
			Event:  diagnostic.ImportTypeStub,
			Detail: err.Error(),
			Target: fullName,
		})
		return
	}
	for name, v := range stub.Members() {
		mod.SetMember(name, v, !l.stubsExclusive)
	}
}

// attachToParent registers mod as a directory-sibling ChildModule of its
// dotted parent package, if the parent has already been resolved (§3
// "children modules discovered from directory siblings", §6
// children_modules()). discoverModules sorts dotted names lexicographically,
// so a package's own entry always precedes its submodules in the load
// order the CLI drives, guaranteeing the parent is already published by the
// time its children resolve.
func (l *loader) attachToParent(fullName string, mod *model.Module) {
	if mod == nil {
		return
	}
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return
	}
	parentName, childName := fullName[:idx], fullName[idx+1:]
	parent, ok := l.cache.Peek(parentName)
	if !ok {
		return
	}
	parent.ChildModule(childName, func() *model.Module { return mod })
}

func parseSource(src []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	defer parser.Close()
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	return tree.RootNode(), nil
}

// discoverModules walks root for .py files and returns their dotted module
// names relative to root, in a stable (sorted) order.
func discoverModules(root string) ([]string, error) {
	var names []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".py") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(rel, ".py")
		rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
		dotted := strings.ReplaceAll(rel, string(filepath.Separator), ".")
		if dotted == "__init__" {
			return nil
		}
		names = append(names, dotted)
		return nil
	})
	sort.Strings(names)
	return names, err
}

func printModules(w io.Writer, ld *loader, names []string) {
	for _, name := range names {
		mod, ok := ld.cache.Peek(name)
		if !ok {
			continue
		}
		members := mod.Members()
		keys := make([]string, 0, len(members))
		for k := range members {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "%s\n", name)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, members[k].Kind())
		}
	}
}

func parsePythonVersion(flagValue string, cfgValue resolver.Version) resolver.Version {
	if cfgValue.Major != 0 {
		return cfgValue
	}
	parts := strings.SplitN(flagValue, ".", 2)
	if len(parts) != 2 {
		return resolver.Version{Major: 3, Minor: 11}
	}
	major, minor := 3, 11
	fmt.Sscanf(parts[0], "%d", &major)
	fmt.Sscanf(parts[1], "%d", &minor)
	return resolver.Version{Major: major, Minor: minor}
}
