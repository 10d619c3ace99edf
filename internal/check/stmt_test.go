package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
)

func TestCheckLetStmtRejectsInitMismatch(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LetStmt{Pattern: &ast.IdentPattern{Name: "x"}, Type: primType(ast.PrimI32), Init: &ast.StringLit{Value: "nope"}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, firstErr(c))
}

func TestCheckVarStmtDefinesMutableBinding(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarStmt{Name: "n", Type: primType(ast.PrimI32), Init: &ast.IntLit{Value: 1, Width: "i32"}},
			&ast.AssignStmt{Target: &ast.Ident{Name: "n"}, Value: &ast.IntLit{Value: 2, Width: "i32"}},
		}},
	}
	c, _ := runProgram(t, fn)
	assert.False(t, c.Diags.HasErrors(), "%v", c.Diags.All())
}

func TestCheckAssignStmtRejectsImmutableTarget(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "n", Type: primType(ast.PrimI32)}},
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.AssignStmt{Target: &ast.Ident{Name: "n"}, Value: &ast.IntLit{Value: 2, Width: "i32"}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	found := false
	for _, d := range c.Diags.All() {
		if d.Kind == diag.KindInvalidOperand {
			found = true
		}
	}
	assert.True(t, found, "%v", c.Diags.All())
}

func TestCheckAssignStmtRejectsUndefinedTarget(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.AssignStmt{Target: &ast.Ident{Name: "ghost"}, Value: &ast.IntLit{Value: 1, Width: "i32"}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindUndefinedSymbol, firstErr(c))
}

func TestCheckIfStmtConditionMustBeBool(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{Cond: &ast.IntLit{Value: 1, Width: "i32"}, Then: &ast.Block{}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, firstErr(c))
}

func TestCheckIfStmtChainsElseIf(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BoolLit{Value: false},
				Then: &ast.Block{},
				Else: &ast.ElseBranch{If: &ast.IfStmt{
					Cond: &ast.IntLit{Value: 1, Width: "i32"},
					Then: &ast.Block{},
				}},
			},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors(), "the nested else-if condition must still be type-checked")
	assert.Equal(t, diag.KindTypeMismatch, firstErr(c))
}

func TestCheckForStmtRejectsNonIterable(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "n", Type: primType(ast.PrimI32)}},
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ForStmt{Pattern: &ast.IdentPattern{Name: "x"}, Iterable: &ast.Ident{Name: "n"}, Body: &ast.Block{}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindInvalidOperand, firstErr(c))
}

func TestCheckForStmtBindsElementType(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ForStmt{
				Pattern:  &ast.IdentPattern{Name: "x"},
				Iterable: &ast.ArrayLit{Elems: []ast.Expr{&ast.IntLit{Value: 1, Width: "i32"}}},
				Body: &ast.Block{Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 1, Width: "i32"}}},
				}},
			},
		}},
	}
	c, _ := runProgram(t, fn)
	assert.False(t, c.Diags.HasErrors(), "%v", c.Diags.All())
}

func TestCheckMatchStmtChecksEveryArmBody(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []ast.Param{{Name: "b", Type: primType(ast.PrimBool)}},
		Return: primType(ast.PrimVoid),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.MatchStmt{
				Subject: &ast.Ident{Name: "b"},
				Arms: []ast.MatchArm{
					{Pattern: &ast.LiteralPattern{Kind: ast.LitPatternBool, Bool: true}, Body: &ast.Ident{Name: "does-not-exist"}},
					{Pattern: &ast.WildcardPattern{}, Body: &ast.IntLit{Value: 0, Width: "i32"}},
				},
			},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindUndefinedSymbol, firstErr(c))
}

func TestCheckReturnStmtRequiresDeclaredType(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimI32),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.StringLit{Value: "nope"}},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, firstErr(c))
}

func TestCheckReturnStmtBareRequiresVoidFunction(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimI32),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{},
		}},
	}
	c, _ := runProgram(t, fn)
	require.True(t, c.Diags.HasErrors())
	assert.Equal(t, diag.KindTypeMismatch, firstErr(c))
}

func TestCheckBlockValueIsTrailingExprStmt(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:   "f",
		Return: primType(ast.PrimI32),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarStmt{Name: "n", Type: primType(ast.PrimI32), Init: &ast.IntLit{Value: 1, Width: "i32"}},
			&ast.ExprStmt{X: &ast.Ident{Name: "n"}},
		}},
	}
	c, _ := runProgram(t, fn)
	assert.False(t, c.Diags.HasErrors(), "%v", c.Diags.All())
}
