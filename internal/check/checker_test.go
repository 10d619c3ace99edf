package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

func primType(k ast.PrimitiveKind) *ast.PrimitiveType { return &ast.PrimitiveType{Kind: k} }

func runProgram(t *testing.T, decls ...ast.Decl) (*Checker, symtab.ScopeId) {
	t.Helper()
	st := symtab.New()
	scope := st.EnterScope(symtab.ModuleScope)
	c := New(st)
	c.CheckProgram(&ast.Program{Decls: decls}, scope)
	return c, scope
}

func TestCheckProgramAcceptsWellTypedFunction(t *testing.T) {
	// func add(a: i32, b: i32) -> i32 { a + b }
	fn := &ast.FuncDecl{
		Name:   "add",
		Params: []ast.Param{{Name: "a", Type: primType(ast.PrimI32)}, {Name: "b", Type: primType(ast.PrimI32)}},
		Return: primType(ast.PrimI32),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}}},
		}},
	}
	c, _ := runProgram(t, fn)
	assert.False(t, c.Diags.HasErrors(), "%v", c.Diags.All())
}

func TestCheckProgramRejectsReturnTypeMismatch(t *testing.T) {
	// func bad() -> i32 { true }
	fn := &ast.FuncDecl{
		Name:   "bad",
		Return: primType(ast.PrimI32),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.BoolLit{Value: true}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, c.Diags.All()[0].Kind)
}

func TestCheckProgramRejectsPureCallingIO(t *testing.T) {
	ioFn := &ast.FuncDecl{Name: "sideEffect", Return: primType(ast.PrimVoid), Effect: ast.EffectIO,
		Body: &ast.Block{}}
	pureFn := &ast.FuncDecl{
		Name:   "caller",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.Call{Callee: &ast.Ident{Name: "sideEffect"}}},
		}},
	}
	c, _ := runProgram(t, ioFn, pureFn)
	require.True(t, c.Diags.HasErrors())
	found := false
	for _, d := range c.Diags.All() {
		if d.Kind == diag.KindEffectViolation {
			found = true
		}
	}
	assert.True(t, found, "a pure function calling an io function must be an effect violation")
}

func TestCheckProgramAllowsIOCallingPure(t *testing.T) {
	pureFn := &ast.FuncDecl{Name: "helper", Return: primType(ast.PrimI32), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{X: &ast.IntLit{Value: 1, Width: "i32"}},
	}}}
	ioFn := &ast.FuncDecl{
		Name:   "main",
		Return: primType(ast.PrimVoid),
		Effect: ast.EffectIO,
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarStmt{Name: "result", Type: primType(ast.PrimI32), Init: &ast.Call{Callee: &ast.Ident{Name: "helper"}}},
		}},
	}
	c, _ := runProgram(t, pureFn, ioFn)
	assert.False(t, c.Diags.HasErrors(), "%v", c.Diags.All())
}

func TestCheckProgramRequiresMainToBeIOEffect(t *testing.T) {
	fn := &ast.FuncDecl{Name: "main", Return: primType(ast.PrimVoid), Body: &ast.Block{}}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindEffectViolation, c.Diags.All()[0].Kind)
}

func TestCheckProgramDetectsDuplicateFunctionDefinition(t *testing.T) {
	fn1 := &ast.FuncDecl{Name: "dup", Return: primType(ast.PrimVoid), Body: &ast.Block{}}
	fn2 := &ast.FuncDecl{Name: "dup", Return: primType(ast.PrimVoid), Body: &ast.Block{}}
	c, _ := runProgram(t, fn1, fn2)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindDuplicateDefinition, c.Diags.All()[0].Kind)
}

func TestCheckProgramSumTypeVariantFieldsResolve(t *testing.T) {
	opt := &ast.TypeDecl{
		Name: "Box",
		Kind: ast.TypeDeclSum,
		Variants: []ast.VariantDecl{
			{Name: "Full", Fields: []ast.TypeExpr{primType(ast.PrimI32)}},
			{Name: "Empty"},
		},
	}
	c, scope := runProgram(t, opt)
	assert.False(t, c.Diags.HasErrors())

	symID, ok := c.Symtab.LookupFrom(scope, "Box")
	require.True(t, ok)
	sym := c.Symtab.Symbol(symID)
	require.Len(t, sym.Variants, 2)
	assert.Equal(t, "Full", sym.Variants[0].Name)
	assert.True(t, types.Equal(sym.Variants[0].Fields[0], types.Primitive{Kind: types.I32}))
}

func TestCheckProgramConstMustMatchDeclaredType(t *testing.T) {
	bad := &ast.ConstDecl{Name: "MAX", Type: primType(ast.PrimI32), Value: &ast.StringLit{Value: "nope"}}
	c, _ := runProgram(t, bad)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, c.Diags.All()[0].Kind)
}

func TestCheckProgramUndefinedTypeIsReported(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "x", Type: &ast.NamedType{Name: "DoesNotExist"}}},
		Return: primType(ast.PrimVoid),
		Body:   &ast.Block{},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindUndefinedType, c.Diags.All()[0].Kind)
}
