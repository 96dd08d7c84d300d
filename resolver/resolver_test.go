package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFS struct {
	files map[string]bool
	dirs  map[string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[string]bool{}, dirs: map[string]bool{}}
}

func (f *fakeFS) addFile(p string) { f.files[p] = true }
func (f *fakeFS) addDir(p string)  { f.dirs[p] = true }

func (f *fakeFS) IsDir(p string) bool  { return f.dirs[p] }
func (f *fakeFS) IsFile(p string) bool { return f.files[p] }

func TestClassifyBuiltins(t *testing.T) {
	s := NewSnapshot(newFakeFS(), nil, nil, Version{3, 11}, true)
	c := s.Classify("builtins")
	assert.Equal(t, Builtin, c.Kind)
}

func TestClassifySingleFileModule(t *testing.T) {
	fs := newFakeFS()
	fs.addFile("/root/myapp.py")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("myapp")
	assert.Equal(t, Module, c.Kind)
	assert.Equal(t, "/root/myapp.py", c.Path)
}

func TestClassifyPackageWithInit(t *testing.T) {
	fs := newFakeFS()
	fs.addDir("/root/mypkg")
	fs.addFile("/root/mypkg/__init__.py")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("mypkg")
	assert.Equal(t, Module, c.Kind)
	assert.True(t, c.IsPackage)
}

func TestClassifyNamespacePackageWithoutInitWhenNotRequired(t *testing.T) {
	fs := newFakeFS()
	fs.addDir("/root/mypkg")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, false)

	c := s.Classify("mypkg")
	assert.Equal(t, Module, c.Kind)
}

func TestClassifyStubsDirTreatedAsPackageRegardlessOfInit(t *testing.T) {
	fs := newFakeFS()
	fs.addDir("/root/mypkg-stubs")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("mypkg-stubs")
	assert.Equal(t, Module, c.Kind)
}

func TestClassifyNestedDottedImport(t *testing.T) {
	fs := newFakeFS()
	fs.addDir("/root/pkg")
	fs.addFile("/root/pkg/__init__.py")
	fs.addFile("/root/pkg/sub.py")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("pkg.sub")
	assert.Equal(t, Module, c.Kind)
	assert.Equal(t, "/root/pkg/sub.py", c.Path)
}

func TestClassifyCompiledExtension(t *testing.T) {
	fs := newFakeFS()
	fs.addFile("/root/native.so")
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("native")
	assert.Equal(t, Compiled, c.Kind)
}

func TestClassifyNotFound(t *testing.T) {
	fs := newFakeFS()
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("nope")
	assert.Equal(t, NotFound, c.Kind)
}

func TestClassifyPossibleNamespacePackage(t *testing.T) {
	fs := newFakeFS()
	fs.addDir("/root/nspkg") // directory exists but lacks __init__.py, version requires it
	s := NewSnapshot(fs, []string{"/root"}, nil, Version{3, 11}, true)

	c := s.Classify("nspkg")
	assert.Equal(t, PossibleModule, c.Kind)
}

func TestClassifyFindsTypeshedStub(t *testing.T) {
	fs := newFakeFS()
	fs.addFile("/root/myapp.py")
	fs.addDir("/typeshed/stdlib")
	fs.addDir("/typeshed/stdlib/3.11")
	fs.addFile("/typeshed/stdlib/3.11/myapp.pyi")
	s := NewSnapshot(fs, []string{"/root"}, []string{"/typeshed"}, Version{3, 11}, true)

	c := s.Classify("myapp")
	assert.Equal(t, "/typeshed/stdlib/3.11/myapp.pyi", c.StubPath)
}
