// Package resolver classifies a dotted module name against a configured set
// of search paths (§4.7 "Resolution"). File-system access itself is an
// external collaborator (§1 non-goals: "file-system I/O primitives") — this
// package talks to it only through the small FileSystem interface, so tests
// substitute an in-memory fake and the CLI wires up the real os package.
package resolver

import (
	"path"
	"strconv"
	"strings"
)

// FileSystem is the minimal directory-probing surface the resolver needs.
type FileSystem interface {
	// IsDir reports whether p exists and is a directory.
	IsDir(p string) bool
	// IsFile reports whether p exists and is a regular file.
	IsFile(p string) bool
}

// Kind is the classification result vocabulary (§4.7).
type Kind int

const (
	NotFound Kind = iota
	Module
	PossibleModule
	PackageImport
	Builtin
	Compiled
)

func (k Kind) String() string {
	switch k {
	case Module:
		return "Module"
	case PossibleModule:
		return "PossibleModule"
	case PackageImport:
		return "PackageImport"
	case Builtin:
		return "Builtin"
	case Compiled:
		return "Compiled"
	default:
		return "NotFound"
	}
}

// Classification is the result of resolving one dotted module name.
type Classification struct {
	Kind      Kind
	Path      string // resolved file or directory path, empty for Builtin/NotFound
	IsPackage bool
	StubPath  string // typeshed-style stub path, if one was found alongside
}

// Version is the (major, minor) language-version tag used both for
// `sys.version_info` guards (§4.2) and for typeshed stub layout selection.
type Version struct {
	Major int
	Minor int
}

// Snapshot is a read-only view of the configured search paths, stub paths,
// and language version used to classify import targets (§4.7
// "path-resolver snapshot"). Constructing one may probe the file system
// once; every Classify call afterwards is pure with respect to that view.
type Snapshot struct {
	fs              FileSystem
	SearchPaths     []string
	StubPaths       []string
	Version         Version
	RequireInitFile bool // false for Python 3's implicit namespace packages
}

// NewSnapshot creates a resolution snapshot over fs.
func NewSnapshot(fs FileSystem, searchPaths, stubPaths []string, version Version, requireInitFile bool) *Snapshot {
	return &Snapshot{
		fs:              fs,
		SearchPaths:     searchPaths,
		StubPaths:       stubPaths,
		Version:         version,
		RequireInitFile: requireInitFile,
	}
}

const builtinsName = "builtins"

// Classify resolves a dotted module name against the snapshot's search
// paths, in configured order (§4.7 "Search paths are scanned in configured
// order").
func (s *Snapshot) Classify(dotted string) Classification {
	if dotted == builtinsName || dotted == "__builtin__" {
		return Classification{Kind: Builtin}
	}

	segments := strings.Split(dotted, ".")
	for _, root := range s.SearchPaths {
		if c, ok := s.classifyUnder(root, segments); ok {
			c.StubPath = s.findStub(dotted)
			return c
		}
	}

	// No search path contains even the first segment as a real file or
	// package directory: if a namespace-package candidate exists anywhere
	// (a bare directory with no init file, under a tree that otherwise
	// requires one), report PossibleModule instead of NotFound.
	for _, root := range s.SearchPaths {
		if s.isPossibleNamespacePackage(root, segments) {
			return Classification{Kind: PossibleModule, StubPath: s.findStub(dotted)}
		}
	}

	return Classification{Kind: NotFound}
}

// ZipPackageContents enumerates the module/package entries found inside a
// zip-file search-path entry (an egg or a frozen zipapp, mirroring Python's
// zipimporter). Reproduced as a faithful stub per spec §9 open question (b)
// ("the zip-file package enumerator is a stub returning no packages;
// reproduce the stub faithfully") rather than actually reading the archive.
func ZipPackageContents(zipPath string) ([]string, error) {
	return nil, nil
}

func isZipSearchPath(root string) bool {
	return strings.HasSuffix(root, ".zip") || strings.HasSuffix(root, ".egg")
}

func (s *Snapshot) classifyUnder(root string, segments []string) (Classification, bool) {
	if isZipSearchPath(root) {
		// The stub never reports any entries, so a zip/egg search-path root
		// never classifies anything — same externally-observable behaviour
		// as an absent root, but routed through the named enumerator rather
		// than silently skipped.
		entries, _ := ZipPackageContents(root)
		if len(entries) == 0 {
			return Classification{}, false
		}
	}

	dir := root
	for i, seg := range segments {
		last := i == len(segments)-1
		if last {
			if py := path.Join(dir, seg+".py"); s.fs.IsFile(py) {
				return Classification{Kind: Module, Path: py}, true
			}
			if pyi := path.Join(dir, seg+".pyi"); s.fs.IsFile(pyi) {
				return Classification{Kind: Module, Path: pyi}, true
			}
			if so := path.Join(dir, seg+".so"); s.fs.IsFile(so) {
				return Classification{Kind: Compiled, Path: so}, true
			}
			candidate := path.Join(dir, seg)
			if s.isPackageDir(candidate) {
				return Classification{Kind: Module, Path: candidate, IsPackage: true}, true
			}
			return Classification{}, false
		}
		candidate := path.Join(dir, seg)
		if !s.isPackageDir(candidate) {
			if s.fs.IsDir(candidate) {
				// Intermediate namespace-package segment: keep descending
				// and classify the final segment as usual. A segment that
				// lacked an init file does not change the result's Kind;
				// PackageImport is not reported here.
				dir = candidate
				continue
			}
			return Classification{}, false
		}
		dir = candidate
	}
	return Classification{}, false
}

// isPackageDir reports whether dir is usable as a package: it has the
// required init file (when the configured language version needs one), or
// it exists as a plain directory otherwise, or its name ends in "-stubs"
// (§4.7 "Names ending with -stubs are treated as directories regardless of
// init").
func (s *Snapshot) isPackageDir(dir string) bool {
	if strings.HasSuffix(dir, "-stubs") {
		return s.fs.IsDir(dir)
	}
	if !s.fs.IsDir(dir) {
		return false
	}
	if !s.RequireInitFile {
		return true
	}
	return s.fs.IsFile(path.Join(dir, "__init__.py")) || s.fs.IsFile(path.Join(dir, "__init__.pyi"))
}

func (s *Snapshot) isPossibleNamespacePackage(root string, segments []string) bool {
	dir := path.Join(append([]string{root}, segments...)...)
	return s.fs.IsDir(dir)
}

// findStub searches the canonical typeshed layout for dotted (§4.7
// "Typeshed-style stubs"): `{path}/stdlib/{version|major|"2and3"}/...` and
// `{path}/third_party/{...}`. Returns the first match across configured
// stub paths, or "" if none exists.
func (s *Snapshot) findStub(dotted string) string {
	rel := strings.ReplaceAll(dotted, ".", "/")
	versionDirs := []string{
		s.Version.String(),
		strconv.Itoa(s.Version.Major),
		"2and3",
	}
	for _, stubRoot := range s.StubPaths {
		for _, category := range []string{"stdlib", "third_party"} {
			for _, vdir := range versionDirs {
				base := path.Join(stubRoot, category, vdir)
				if p := path.Join(base, rel+".pyi"); s.fs.IsFile(p) {
					return p
				}
				if p := path.Join(base, rel, "__init__.pyi"); s.fs.IsFile(p) {
					return p
				}
			}
		}
	}
	return ""
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}
