package check

import (
	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// checkBlock checks every statement of b in sequence and returns the
// block's value type: the type of its trailing ExprStmt when the block is
// used in expression position and that last statement is not semicolon-
// terminated, or void otherwise. The parser marks semicolon-termination
// by simply not producing a trailing ExprStmt at all in that case, so a
// Block's value is always its last statement's type when that statement
// is an ExprStmt.
func (c *Checker) checkBlock(b *ast.Block) types.Type {
	if b == nil {
		return types.VoidType
	}
	scope := c.Symtab.EnterScope(symtab.BlockScope)
	defer c.Symtab.LeaveScope()

	result := types.Type(types.VoidType)
	for i, stmt := range b.Stmts {
		t := c.checkStmt(stmt)
		if i == len(b.Stmts)-1 {
			if _, ok := stmt.(*ast.ExprStmt); ok {
				result = t
			}
		}
	}
	return result
}

func (c *Checker) checkStmt(s ast.Stmt) types.Type {
	switch st := s.(type) {
	case *ast.LetStmt:
		c.checkLetStmt(st)
	case *ast.VarStmt:
		c.checkVarStmt(st)
	case *ast.AssignStmt:
		c.checkAssignStmt(st)
	case *ast.IfStmt:
		c.checkIfStmt(st)
	case *ast.ForStmt:
		c.checkForStmt(st)
	case *ast.MatchStmt:
		c.checkMatchStmt(st)
	case *ast.ReturnStmt:
		c.checkReturnStmt(st)
	case *ast.BreakStmt:
		// no type-level obligations
	case *ast.ExprStmt:
		return c.checkExpr(st.X)
	case *ast.Block:
		return c.checkBlock(st)
	}
	return types.VoidType
}

// checkLetStmt enforces the explicit-annotation rule for `let`: Type is
// never nil, and the initializer must be assignable to it. Bindings
// introduced by the pattern are recorded via checkPattern.
func (c *Checker) checkLetStmt(ls *ast.LetStmt) {
	want := c.ResolveType(c.Symtab.Current(), ls.Type)
	got := c.checkExpr(ls.Init)
	c.requireAssignable(ls.Span(), want, got)
	c.checkPattern(ls.Pattern, want, true)
}

func (c *Checker) checkVarStmt(vs *ast.VarStmt) {
	want := c.ResolveType(c.Symtab.Current(), vs.Type)
	if vs.Init != nil {
		got := c.checkExpr(vs.Init)
		c.requireAssignable(vs.Span(), want, got)
	}
	if _, err := c.Symtab.Define(symtab.Symbol{Name: vs.Name, Kind: symtab.VarSymbol, Span: vs.Span(), VarType: want, Mutable: true}); err != nil {
		c.Diags.Errorf(diag.KindDuplicateDefinition, vs.Span(), "%s", err.Error())
	}
}

// checkAssignStmt requires the target to resolve to a mutable variable
// (when the target is a bare identifier) and the value to match the
// target's type.
func (c *Checker) checkAssignStmt(as *ast.AssignStmt) {
	var targetT types.Type
	if id, ok := as.Target.(*ast.Ident); ok {
		symID, ok := c.Symtab.Lookup(id.Name)
		if !ok {
			c.Diags.Errorf(diag.KindUndefinedSymbol, id.Span(), "undefined symbol '%s'", id.Name)
			c.checkExpr(as.Value)
			return
		}
		sym := c.Symtab.Symbol(symID)
		if sym.Kind != symtab.VarSymbol || !sym.Mutable {
			c.Diags.Errorf(diag.KindInvalidOperand, id.Span(), "'%s' is not a mutable binding", id.Name)
		}
		targetT = sym.VarType
	} else {
		targetT = c.checkExpr(as.Target.(ast.Expr))
	}
	got := c.checkExpr(as.Value)
	c.requireAssignable(as.Span(), targetT, got)
}

func (c *Checker) checkIfStmt(is *ast.IfStmt) {
	condT := c.checkExpr(is.Cond)
	bo := types.Primitive{Kind: types.Bool}
	if !types.IsError(condT) && !types.Equal(condT, bo) {
		c.Diags.Errorf(diag.KindTypeMismatch, is.Cond.Span(), "if condition must be bool, found %s", render(condT))
	}
	c.checkBlock(is.Then)
	if is.Else != nil {
		if is.Else.If != nil {
			c.checkIfStmt(is.Else.If)
		} else {
			c.checkBlock(is.Else.Block)
		}
	}
}

// checkForStmt binds the loop pattern to the iterable's element type
// (List[T], Array, or a range expression's element type) and checks the
// body in a fresh scope.
func (c *Checker) checkForStmt(fs *ast.ForStmt) {
	iterT := c.checkExpr(fs.Iterable)
	elem, ok := containerElem(iterT)
	if !ok && !types.IsError(iterT) {
		c.Diags.Errorf(diag.KindInvalidOperand, fs.Iterable.Span(), "'for' requires a List, Array, or string, found %s", render(iterT))
		elem = types.Error
	}
	scope := c.Symtab.EnterScope(symtab.BlockScope)
	c.checkPattern(fs.Pattern, elem, true)
	c.checkBlock(fs.Body)
	c.Symtab.LeaveScope()
	_ = scope
}

func (c *Checker) checkMatchStmt(ms *ast.MatchStmt) {
	subjT := c.checkExpr(ms.Subject)
	for _, arm := range ms.Arms {
		c.checkPatternArm(subjT, arm)
		c.checkExpr(arm.Body)
	}
	c.checkMatchExhaustiveness(ms.Span(), subjT, ms.Arms)
}

// checkReturnStmt enforces the enclosing function's declared return type;
// a bare `return` is valid only for a void-returning function.
func (c *Checker) checkReturnStmt(rs *ast.ReturnStmt) {
	fc := c.cur()
	if fc == nil {
		return
	}
	if rs.Value == nil {
		if !types.Equal(fc.returnType, types.VoidType) {
			c.Diags.Errorf(diag.KindTypeMismatch, rs.Span(), "missing return value, expected %s", render(fc.returnType))
		}
		return
	}
	got := c.checkExpr(rs.Value)
	c.requireAssignable(rs.Span(), fc.returnType, got)
}
