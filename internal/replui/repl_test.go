package replui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira-lang/kira/internal/ast"
)

// fakeFrontend implements loader.Frontend by returning a fixed program for
// a given source string, so tests never need a real .ki parser.
type fakeFrontend struct {
	programs map[string]*ast.Program
	err      error
}

func (f *fakeFrontend) Parse(filename string, src []byte) (*ast.Program, error) {
	if f.err != nil {
		return nil, f.err
	}
	prog, ok := f.programs[string(src)]
	if !ok {
		return nil, fmt.Errorf("no fixture program for source: %s", src)
	}
	return prog, nil
}

func primType(k ast.PrimitiveKind) *ast.PrimitiveType { return &ast.PrimitiveType{Kind: k} }

func TestRunFragmentWithoutFrontendReportsConfigError(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	r.runFragment("<repl:1>", "let x: i32 = 1", &out)
	assert.Contains(t, out.String(), "no parser frontend configured")
}

func TestRunFragmentReportsParseError(t *testing.T) {
	r := New(&fakeFrontend{err: fmt.Errorf("boom")}, "1.0.0")
	var out bytes.Buffer
	r.runFragment("<repl:1>", "garbage", &out)
	assert.Contains(t, out.String(), "boom")
}

func TestRunFragmentReportsCheckerDiagnostics(t *testing.T) {
	src := "bad fragment"
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.FuncDecl{Name: "bad", Return: primType(ast.PrimI32), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.BoolLit{Value: true}},
		}}},
	}}
	r := New(&fakeFrontend{programs: map[string]*ast.Program{src: prog}}, "1.0.0")
	var out bytes.Buffer
	r.runFragment("<repl:1>", src, &out)
	assert.Contains(t, out.String(), "<repl:1>")
}

func TestRunFragmentWithoutMainReportsLoaded(t *testing.T) {
	src := "let MAX: i32 = 10"
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.ConstDecl{Name: "MAX", Type: primType(ast.PrimI32), Value: &ast.IntLit{Value: 10, Width: "i32"}},
	}}
	r := New(&fakeFrontend{programs: map[string]*ast.Program{src: prog}}, "1.0.0")
	var out bytes.Buffer
	r.runFragment("<repl:1>", src, &out)
	assert.Contains(t, out.String(), "loaded")
}

func TestRunFragmentRunsMainAndPrintsNonUnitResult(t *testing.T) {
	src := "fn main() io -> i32 { 7 }"
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.FuncDecl{
			Name:   "main",
			Effect: ast.EffectIO,
			Return: primType(ast.PrimI32),
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.ExprStmt{X: &ast.IntLit{Value: 7, Width: "i32"}},
			}},
		},
	}}
	r := New(&fakeFrontend{programs: map[string]*ast.Program{src: prog}}, "1.0.0")
	var out bytes.Buffer
	r.runFragment("<repl:1>", src, &out)
	assert.Contains(t, out.String(), "7")
}

func TestHandleCommandQuitSignalsExit(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	require.True(t, r.handleCommand(":quit", &out))
	assert.Contains(t, out.String(), "Goodbye")
}

func TestHandleCommandHelpListsCommands(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	assert.False(t, r.handleCommand(":help", &out))
	assert.Contains(t, out.String(), ":load")
}

func TestHandleCommandUnknownReportsError(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	assert.False(t, r.handleCommand(":bogus", &out))
	assert.True(t, strings.Contains(out.String(), "unknown command"))
}

func TestHandleCommandLoadMissingArgReportsUsage(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	assert.False(t, r.handleCommand(":load", &out))
	assert.Contains(t, out.String(), "Usage: :load")
}

func TestLoadFileReportsReadError(t *testing.T) {
	r := New(nil, "1.0.0")
	var out bytes.Buffer
	r.loadFile("/nonexistent/path/does-not-exist.ki", &out)
	assert.Contains(t, out.String(), "Error")
}
