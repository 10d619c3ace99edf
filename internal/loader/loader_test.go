package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira-lang/kira/internal/ast"
)

// fakeFrontend parses ".ki" source by looking it up from a map keyed by
// filename, sidestepping the need for a real lexer/parser in these tests
// (the loader treats its Frontend as an opaque interface boundary).
type fakeFrontend struct {
	programs map[string]*ast.Program
	err      error
}

func (f *fakeFrontend) Parse(filename string, src []byte) (*ast.Program, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.programs[filename]
	if !ok {
		return nil, os.ErrInvalid
	}
	return p, nil
}

func moduleProgram(path []string, imports ...[]string) *ast.Program {
	p := &ast.Program{Module: &ast.ModuleDecl{Path: path}}
	for _, imp := range imports {
		p.Imports = append(p.Imports, &ast.ImportDecl{Path: imp})
	}
	return p
}

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestValidatePathRejectsEmptyAndDotSegments(t *testing.T) {
	assert.Error(t, ValidatePath(nil))
	assert.Error(t, ValidatePath([]string{""}))
	assert.Error(t, ValidatePath([]string{"."}))
	assert.Error(t, ValidatePath([]string{".."}))
	assert.Error(t, ValidatePath([]string{"a/b"}))
	assert.Error(t, ValidatePath([]string{"a.b"}))
	assert.NoError(t, ValidatePath([]string{"std", "io"}))
}

func TestLoadModuleSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.ki"), "module main\n")

	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "main.ki"): moduleProgram([]string{"main"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	scopeID, err := sess.LoadModule([]string{"main"})
	require.NoError(t, err)
	assert.NotZero(t, scopeID+1) // scope 0 is valid (global scope elsewhere); just confirm no panic

	mod, ok := sess.Module([]string{"main"})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "main.ki"), mod.FilePath)
}

func TestLoadModuleIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.ki"), "module main\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "main.ki"): moduleProgram([]string{"main"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	id1, err := sess.LoadModule([]string{"main"})
	require.NoError(t, err)
	before := sess.TotalBytes

	id2, err := sess.LoadModule([]string{"main"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, before, sess.TotalBytes, "a repeat load must not re-count bytes")
}

func TestLoadModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	front := &fakeFrontend{programs: map[string]*ast.Program{}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	_, err = sess.LoadModule([]string{"missing"})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ModuleNotFound, le.Code)
}

func TestLoadModuleFollowsImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.ki"), "module main\n")
	writeFile(t, filepath.Join(dir, "util.ki"), "module util\n")

	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "main.ki"): moduleProgram([]string{"main"}, []string{"util"}),
		filepath.Join(dir, "util.ki"): moduleProgram([]string{"util"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	_, err = sess.LoadModule([]string{"main"})
	require.NoError(t, err)

	_, ok := sess.Module([]string{"util"})
	assert.True(t, ok, "loading main must transitively load its import util")
}

func TestLoadModuleDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ki"), "module a\n")
	writeFile(t, filepath.Join(dir, "b.ki"), "module b\n")

	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "a.ki"): moduleProgram([]string{"a"}, []string{"b"}),
		filepath.Join(dir, "b.ki"): moduleProgram([]string{"b"}, []string{"a"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	_, err = sess.LoadModule([]string{"a"})
	require.NoError(t, err, "the cycle is recorded as an ImportError on b, not a failure of the outer load")

	mod, ok := sess.Module([]string{"b"})
	require.True(t, ok)
	require.Len(t, mod.ImportErrors, 1)
	var le *LoadError
	require.ErrorAs(t, mod.ImportErrors[0], &le)
	assert.Equal(t, CircularDependency, le.Code)
}

func TestLoadModuleRejectsMissingModuleDecl(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.ki"), "// no module decl\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "bad.ki"): {},
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)

	_, err = sess.LoadModule([]string{"bad"})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ResolveError, le.Code)
}

func TestLoadModuleEnforcesTotalBytesCap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.ki"), "module big\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "big.ki"): moduleProgram([]string{"big"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)
	sess.MaxTotalBytes = 1

	_, err = sess.LoadModule([]string{"big"})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, TotalBytesExceeded, le.Code)
}

func TestLoadModuleEnforcesMaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deep.ki"), "module deep\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "deep.ki"): moduleProgram([]string{"deep"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)
	sess.MaxDepth = 0

	_, err = sess.LoadModule([]string{"deep"})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, MaxImportDepthExceeded, le.Code)
}

func TestDependencyGraphSnapshotIsIndependent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.ki"), "module main\n")
	writeFile(t, filepath.Join(dir, "util.ki"), "module util\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "main.ki"): moduleProgram([]string{"main"}, []string{"util"}),
		filepath.Join(dir, "util.ki"): moduleProgram([]string{"util"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)
	_, err = sess.LoadModule([]string{"main"})
	require.NoError(t, err)

	graph := sess.DependencyGraph()
	assert.Equal(t, []string{"util"}, graph["main"])

	graph["main"][0] = "mutated"
	graph2 := sess.DependencyGraph()
	if diff := cmp.Diff(map[string][]string{"main": {"util"}}, graph2); diff != "" {
		t.Errorf("session graph mutated by caller's copy (-want +got):\n%s", diff)
	}
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.ki"), "module main\n")
	writeFile(t, filepath.Join(dir, "util.ki"), "module util\n")
	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(dir, "main.ki"): moduleProgram([]string{"main"}, []string{"util"}),
		filepath.Join(dir, "util.ki"): moduleProgram([]string{"util"}),
	}}
	sess, err := NewSession(dir, front)
	require.NoError(t, err)
	_, err = sess.LoadModule([]string{"main"})
	require.NoError(t, err)

	order := sess.TopologicalSort()
	utilIdx, mainIdx := -1, -1
	for i, k := range order {
		switch k {
		case "util":
			utilIdx = i
		case "main":
			mainIdx = i
		}
	}
	require.NotEqual(t, -1, utilIdx)
	require.NotEqual(t, -1, mainIdx)
	assert.Less(t, utilIdx, mainIdx)
}

func TestLoadModuleViaProjectConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "kira.toml"), `[package]
name = "app"

[modules]
greet = "./greet.ki"
`)
	writeFile(t, filepath.Join(root, "greet.ki"), "module greet\n")

	front := &fakeFrontend{programs: map[string]*ast.Program{
		filepath.Join(root, "greet.ki"): moduleProgram([]string{"greet"}),
	}}
	sess, err := NewSession(root, front)
	require.NoError(t, err)
	require.NotNil(t, sess.Project)

	_, err = sess.LoadModule([]string{"greet"})
	require.NoError(t, err)
}
