package check

import (
	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// CheckProgram walks one module's declarations in three passes: types
// first (so forward references from function signatures resolve), then
// function signatures (so mutually recursive calls and forward
// references are valid before any body is walked), then bodies.
func (c *Checker) CheckProgram(prog *ast.Program, scope symtab.ScopeId) {
	prev := c.Symtab.Current()
	c.Symtab.SetCurrent(scope)
	defer c.Symtab.SetCurrent(prev)

	for _, imp := range prog.Imports {
		c.checkImport(scope, imp)
	}
	for _, d := range prog.Decls {
		if td, ok := d.(*ast.TypeDecl); ok {
			c.declareType(scope, td)
		}
	}
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			c.declareFuncSignature(scope, fd, nil)
		}
		if cd, ok := d.(*ast.ConstDecl); ok {
			c.declareConstSignature(scope, cd)
		}
		if ld, ok := d.(*ast.TopLevelLetDecl); ok {
			c.declareLetSignature(scope, ld)
		}
		if td, ok := d.(*ast.TraitDecl); ok {
			c.declareTrait(scope, td)
		}
		if id, ok := d.(*ast.ImplDecl); ok {
			c.registerImpl(scope, id)
		}
	}
	for _, d := range prog.Decls {
		switch dd := d.(type) {
		case *ast.FuncDecl:
			c.checkFuncBody(scope, dd, nil)
		case *ast.ConstDecl:
			c.checkConstBody(scope, dd)
		case *ast.TopLevelLetDecl:
			c.checkLetBody(scope, dd)
		case *ast.ImplDecl:
			c.checkImpl(scope, dd)
		case *ast.TestDecl:
			c.checkTest(scope, dd)
		}
	}
}

// checkImport binds the names one import declaration introduces into
// scope: `import a.b.c` (or `... as alias`) binds the module namespace
// itself under its last path segment or the alias; `import a.b.c.{x, y as
// z}` binds each selected pub symbol individually, under its own name or
// an `as` alias, as a copy of its definition local to the importing scope.
func (c *Checker) checkImport(scope symtab.ScopeId, imp *ast.ImportDecl) {
	if len(imp.Items) == 0 {
		if _, ok := c.Symtab.ResolveModule(imp.Path); !ok {
			c.Diags.Errorf(diag.KindModuleNotFound, imp.Span(), "module '%s' not found", joinDot(imp.Path))
			return
		}
		name := imp.Alias
		if name == "" {
			name = imp.Path[len(imp.Path)-1]
		}
		if _, err := c.Symtab.DefineIn(scope, symtab.Symbol{
			Name: name, Kind: symtab.ModuleSymbol, Public: false, Span: imp.Span(),
			ModulePath: append([]string{}, imp.Path...),
		}); err != nil {
			c.Diags.Errorf(diag.KindDuplicateDefinition, imp.Span(), "%s", err.Error())
		}
		return
	}
	for _, item := range imp.Items {
		symID, ok := c.Symtab.LookupQualifiedPub(imp.Path, item.Name)
		if !ok {
			c.Diags.Errorf(diag.KindUndefinedSymbol, imp.Span(), "'%s' is not a public member of '%s'", item.Name, joinDot(imp.Path))
			continue
		}
		bound := *c.Symtab.Symbol(symID)
		bound.Name = item.Name
		if item.Alias != "" {
			bound.Name = item.Alias
		}
		bound.Span = imp.Span()
		if _, err := c.Symtab.DefineIn(scope, bound); err != nil {
			c.Diags.Errorf(diag.KindDuplicateDefinition, imp.Span(), "%s", err.Error())
		}
	}
}

func (c *Checker) declareType(scope symtab.ScopeId, td *ast.TypeDecl) {
	symID, ok := c.Symtab.Lookup(td.Name)
	var sym *symtab.Symbol
	if ok {
		sym = c.Symtab.Symbol(symID)
	} else {
		id, err := c.Symtab.Define(symtab.Symbol{Name: td.Name, Kind: symtab.TypeSymbol, Public: td.Public, Span: td.Span()})
		if err != nil {
			c.Diags.Errorf(diag.KindDuplicateDefinition, td.Span(), "%s", err.Error())
			return
		}
		sym = c.Symtab.Symbol(id)
	}
	for _, g := range td.TypeParams {
		sym.TypeGenerics = append(sym.TypeGenerics, symtab.GenericParamInfo{Name: g.Name, Bounds: g.Bounds})
	}
	switch td.Kind {
	case ast.TypeDeclSum:
		for _, v := range td.Variants {
			fields := make([]types.Type, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = c.ResolveType(scope, f)
			}
			sym.Variants = append(sym.Variants, symtab.VariantInfo{Name: v.Name, Fields: fields})
		}
	case ast.TypeDeclProduct:
		for _, f := range td.Fields {
			sym.Fields = append(sym.Fields, symtab.FieldInfo{Name: f.Name, Type: c.ResolveType(scope, f.Type)})
		}
	case ast.TypeDeclAlias:
		sym.AliasTarget = c.ResolveType(scope, td.Alias)
	}
}

func (c *Checker) declareTrait(scope symtab.ScopeId, td *ast.TraitDecl) {
	id, err := c.Symtab.Define(symtab.Symbol{Name: td.Name, Kind: symtab.TraitSymbol, Public: true, Span: td.Span()})
	if err != nil {
		c.Diags.Errorf(diag.KindDuplicateDefinition, td.Span(), "%s", err.Error())
		return
	}
	sym := c.Symtab.Symbol(id)
	for _, m := range td.Methods {
		sym.Methods = append(sym.Methods, m.Name)
	}
}

func (c *Checker) declareFuncSignature(scope symtab.ScopeId, fd *ast.FuncDecl, selfType types.Type) {
	eff := types.Pure
	if fd.Effect == ast.EffectIO || fd.Effect == ast.EffectResult || fd.Effect == ast.EffectIOResult {
		switch fd.Effect {
		case ast.EffectIO:
			eff = types.IO
		case ast.EffectResult:
			eff = types.Result
		case ast.EffectIOResult:
			eff = types.IOResult
		}
	}
	ret := c.ResolveType(scope, fd.Return)
	if isResultLike(ret) {
		eff = types.Join(eff, types.Result)
	}
	if fd.Name == "main" && eff != types.IO && eff != types.IOResult {
		c.Diags.Errorf(diag.KindEffectViolation, fd.Span(), "'main' must have effect tag io or io_result")
	}

	paramTypes := make([]types.Type, len(fd.Params))
	paramNames := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		paramTypes[i] = c.ResolveType(scope, p.Type)
		paramNames[i] = p.Name
	}
	var generics []symtab.GenericParamInfo
	for _, g := range fd.TypeParams {
		generics = append(generics, symtab.GenericParamInfo{Name: g.Name, Bounds: g.Bounds})
	}

	id, err := c.Symtab.Define(symtab.Symbol{
		Name: fd.Name, Kind: symtab.FuncSymbol, Public: fd.Public, Span: fd.Span(),
		Generics: generics, ParamNames: paramNames, ParamTypes: paramTypes,
		ReturnType: ret, Effect: eff, HasBody: fd.Body != nil,
	})
	if err != nil {
		c.Diags.Errorf(diag.KindDuplicateDefinition, fd.Span(), "%s", err.Error())
	}
	_ = id
}

func (c *Checker) declareConstSignature(scope symtab.ScopeId, cd *ast.ConstDecl) {
	t := c.ResolveType(scope, cd.Type)
	if _, err := c.Symtab.Define(symtab.Symbol{Name: cd.Name, Kind: symtab.VarSymbol, Public: cd.Public, Span: cd.Span(), VarType: t}); err != nil {
		c.Diags.Errorf(diag.KindDuplicateDefinition, cd.Span(), "%s", err.Error())
	}
}

func (c *Checker) declareLetSignature(scope symtab.ScopeId, ld *ast.TopLevelLetDecl) {
	t := c.ResolveType(scope, ld.Type)
	if _, err := c.Symtab.Define(symtab.Symbol{Name: ld.Name, Kind: symtab.VarSymbol, Public: ld.Public, Span: ld.Span(), VarType: t}); err != nil {
		c.Diags.Errorf(diag.KindDuplicateDefinition, ld.Span(), "%s", err.Error())
	}
}

func (c *Checker) checkFuncBody(scope symtab.ScopeId, fd *ast.FuncDecl, selfType types.Type) {
	if fd.Body == nil {
		return
	}
	symID, ok := c.Symtab.Lookup(fd.Name)
	if !ok {
		return
	}
	sym := c.Symtab.Symbol(symID)

	fnScope := c.Symtab.EnterScope(symtab.FunctionScope)
	tp := map[string]symtab.GenericParamInfo{}
	for _, g := range sym.Generics {
		tp[g.Name] = g
	}
	for i, name := range sym.ParamNames {
		c.Symtab.Define(symtab.Symbol{Name: name, Kind: symtab.VarSymbol, Public: false, Span: fd.Span(), VarType: sym.ParamTypes[i]})
	}
	c.pushFunc(funcCtx{effect: sym.Effect, returnType: sym.ReturnType, typeParams: tp, selfType: selfType})
	bodyT := c.checkBlock(fd.Body)
	if n := len(fd.Body.Stmts); n > 0 {
		if _, ok := fd.Body.Stmts[n-1].(*ast.ExprStmt); ok {
			c.requireAssignable(fd.Body.Stmts[n-1].Span(), sym.ReturnType, bodyT)
		}
	}
	c.popFunc()
	c.Symtab.LeaveScope()
	_ = fnScope
}

func (c *Checker) checkConstBody(scope symtab.ScopeId, cd *ast.ConstDecl) {
	symID, ok := c.Symtab.Lookup(cd.Name)
	if !ok {
		return
	}
	want := c.Symtab.Symbol(symID).VarType
	c.pushFunc(funcCtx{effect: types.Pure, returnType: types.VoidType})
	got := c.checkExpr(cd.Value)
	c.popFunc()
	c.requireAssignable(cd.Span(), want, got)
}

func (c *Checker) checkLetBody(scope symtab.ScopeId, ld *ast.TopLevelLetDecl) {
	symID, ok := c.Symtab.Lookup(ld.Name)
	if !ok {
		return
	}
	want := c.Symtab.Symbol(symID).VarType
	c.pushFunc(funcCtx{effect: types.Pure, returnType: types.VoidType})
	got := c.checkExpr(ld.Init)
	c.popFunc()
	c.requireAssignable(ld.Span(), want, got)
}

// registerImpl records `impl Trait for Type` (or an inherent `impl Type`,
// under the empty trait name) in the impl registry. checkConstraints
// consults entries with a non-empty trait for generic trait-bound
// checking; findMethod consults every entry regardless of trait to
// resolve `receiver.method(...)` calls.
func (c *Checker) registerImpl(scope symtab.ScopeId, id *ast.ImplDecl) {
	forType := c.ResolveType(scope, id.ForType)
	c.impls[implKey{typeName: implTypeKey(forType), trait: id.Trait}] = id
}

func (c *Checker) checkImpl(scope symtab.ScopeId, id *ast.ImplDecl) {
	selfType := c.ResolveType(scope, id.ForType)
	implScope := c.Symtab.EnterScope(symtab.BlockScope)
	for _, m := range id.Methods {
		c.declareFuncSignature(implScope, m, selfType)
	}
	for _, m := range id.Methods {
		c.checkFuncBody(implScope, m, selfType)
	}
	c.Symtab.LeaveScope()
}

func (c *Checker) checkTest(scope symtab.ScopeId, td *ast.TestDecl) {
	c.pushFunc(funcCtx{effect: types.IOResult, returnType: types.VoidType})
	c.checkBlock(td.Body)
	c.popFunc()
}

// requireAssignable enforces `let x: T = e` compatibility: type_of(e)
// must equal T after structural equality. Mixed-integer relaxation does
// not apply to plain assignment, only to the binary operator rules in
// expr.go.
func (c *Checker) requireAssignable(span ast.Span, want, got types.Type) {
	if types.IsError(want) || types.IsError(got) {
		return
	}
	if !types.Equal(want, got) {
		c.Diags.Errorf(diag.KindTypeMismatch, span, "type mismatch: expected %s, found %s", render(want), render(got))
	}
}
