package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira-lang/kira/internal/ast"
)

func TestEvalVarStmtThenAssign(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	require.NoError(t, it.evalVarStmt(&ast.VarStmt{Name: "counter", Init: intLit(0, "i32")}, env))

	require.NoError(t, it.evalAssignStmt(&ast.AssignStmt{
		Target: &ast.Ident{Name: "counter"},
		Value:  intLit(5, "i32"),
	}, env))

	v, ok := env.Get("counter")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.(*IntValue).Val.Int64())
}

func TestEvalAssignToUndefinedFails(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	err := it.evalAssignStmt(&ast.AssignStmt{Target: &ast.Ident{Name: "nope"}, Value: intLit(1, "i32")}, env)
	assert.Error(t, err)
}

func TestEvalLetStmtDestructuresTuple(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	ls := &ast.LetStmt{
		Pattern: &ast.TuplePattern{Elems: []ast.Pattern{
			&ast.IdentPattern{Name: "a"},
			&ast.IdentPattern{Name: "b"},
		}},
		Init: &ast.TupleLit{Elems: []ast.Expr{intLit(1, "i32"), intLit(2, "i32")}},
	}
	require.NoError(t, it.evalLetStmt(ls, env))
	a, _ := env.Get("a")
	b, _ := env.Get("b")
	assert.Equal(t, int64(1), a.(*IntValue).Val.Int64())
	assert.Equal(t, int64(2), b.(*IntValue).Val.Int64())
}

func TestEvalIfStmtElseIfChain(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	env.Define("hit", NewInt(0, "i32"), true)

	stmt := &ast.IfStmt{
		Cond: &ast.BoolLit{Value: false},
		Then: block(),
		Else: &ast.ElseBranch{If: &ast.IfStmt{
			Cond: &ast.BoolLit{Value: true},
			Then: block(&ast.AssignStmt{Target: &ast.Ident{Name: "hit"}, Value: intLit(1, "i32")}),
		}},
	}
	require.NoError(t, it.evalIfStmt(stmt, env))
	v, _ := env.Get("hit")
	assert.Equal(t, int64(1), v.(*IntValue).Val.Int64())
}

func TestEvalForStmtOverArray(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	env.Define("total", NewInt(0, "i32"), true)

	fs := &ast.ForStmt{
		Pattern:  &ast.IdentPattern{Name: "n"},
		Iterable: &ast.ArrayLit{Elems: []ast.Expr{intLit(1, "i32"), intLit(2, "i32"), intLit(3, "i32")}},
		Body: block(&ast.AssignStmt{
			Target: &ast.Ident{Name: "total"},
			Value:  &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "total"}, Right: &ast.Ident{Name: "n"}},
		}),
	}
	require.NoError(t, it.evalForStmt(fs, env))
	v, _ := env.Get("total")
	assert.Equal(t, int64(6), v.(*IntValue).Val.Int64())
}

func TestEvalForStmtBreakStopsIteration(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	env.Define("seen", NewInt(0, "i32"), true)

	fs := &ast.ForStmt{
		Pattern:  &ast.IdentPattern{Name: "n"},
		Iterable: &ast.ArrayLit{Elems: []ast.Expr{intLit(1, "i32"), intLit(2, "i32"), intLit(3, "i32")}},
		Body: block(
			&ast.AssignStmt{Target: &ast.Ident{Name: "seen"}, Value: &ast.Ident{Name: "n"}},
			&ast.BreakStmt{},
		),
	}
	require.NoError(t, it.evalForStmt(fs, env))
	v, _ := env.Get("seen")
	assert.Equal(t, int64(1), v.(*IntValue).Val.Int64())
}

func TestEvalForStmtOverList(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	list := sliceToList([]Value{NewInt(10, "i32"), NewInt(20, "i32")})
	env.Define("xs", list, false)
	env.Define("total", NewInt(0, "i32"), true)

	fs := &ast.ForStmt{
		Pattern:  &ast.IdentPattern{Name: "n"},
		Iterable: &ast.Ident{Name: "xs"},
		Body: block(&ast.AssignStmt{
			Target: &ast.Ident{Name: "total"},
			Value:  &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "total"}, Right: &ast.Ident{Name: "n"}},
		}),
	}
	require.NoError(t, it.evalForStmt(fs, env))
	v, _ := env.Get("total")
	assert.Equal(t, int64(30), v.(*IntValue).Val.Int64())
}

func TestEvalMatchStmtRunsFirstMatchingArmBody(t *testing.T) {
	it := New(nil)
	env := it.Globals.Child()
	env.Define("n", NewInt(2, "i32"), false)
	env.Define("hit", NewInt(0, "i32"), true)
	it.Globals.Define("record", &BuiltinValue{Name: "record", Fn: func(args []Value) (Value, error) {
		env.Assign("hit", args[0])
		return Unit, nil
	}}, false)

	ms := &ast.MatchStmt{
		Subject: &ast.Ident{Name: "n"},
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.LiteralPattern{Kind: ast.LitPatternInt, Int: 1},
				Body:    &ast.Call{Callee: &ast.Ident{Name: "record"}, Args: []ast.Expr{intLit(111, "i32")}},
			},
			{
				Pattern: &ast.WildcardPattern{},
				Body:    &ast.Call{Callee: &ast.Ident{Name: "record"}, Args: []ast.Expr{intLit(222, "i32")}},
			},
		},
	}
	require.NoError(t, it.evalMatchStmt(ms, env))
	v, _ := env.Get("hit")
	assert.Equal(t, int64(222), v.(*IntValue).Val.Int64())
}

func TestListToSliceRoundTrips(t *testing.T) {
	elems := []Value{NewInt(1, "i32"), NewInt(2, "i32"), NewInt(3, "i32")}
	list := sliceToList(elems)
	back, err := listToSlice(list)
	require.NoError(t, err)
	require.Len(t, back, 3)
	for i, v := range back {
		assert.Equal(t, elems[i].(*IntValue).Val.Int64(), v.(*IntValue).Val.Int64())
	}
}
