package check

import (
	"strings"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// checkExpr assigns a resolved type to e, recording it in the side table
// and returning it. Every expression gets exactly one type or is poisoned
// to types.Error, which participates in no further constraints.
func (c *Checker) checkExpr(e ast.Expr) types.Type {
	switch ex := e.(type) {
	case *ast.IntLit:
		return c.setType(e, intLitType(ex.Width))
	case *ast.FloatLit:
		return c.setType(e, floatLitType(ex.Width))
	case *ast.StringLit:
		return c.setType(e, types.Primitive{Kind: types.String})
	case *ast.CharLit:
		return c.setType(e, types.Primitive{Kind: types.Char})
	case *ast.BoolLit:
		return c.setType(e, types.Primitive{Kind: types.Bool})
	case *ast.Ident:
		return c.setType(e, c.checkIdent(ex))
	case *ast.SelfExpr:
		fc := c.cur()
		if fc == nil || fc.selfType == nil {
			c.Diags.Errorf(diag.KindSelfOutsideImpl, e.Span(), "'self' used outside an impl method")
			return c.setType(e, types.Error)
		}
		return c.setType(e, fc.selfType)
	case *ast.BinaryExpr:
		return c.setType(e, c.checkBinary(ex))
	case *ast.UnaryExpr:
		return c.setType(e, c.checkUnary(ex))
	case *ast.FieldAccess:
		return c.setType(e, c.checkFieldAccess(ex))
	case *ast.IndexAccess:
		return c.setType(e, c.checkIndex(ex))
	case *ast.TupleAccess:
		return c.setType(e, c.checkTupleAccess(ex))
	case *ast.Call:
		return c.setType(e, c.checkCall(ex))
	case *ast.MethodCall:
		return c.setType(e, c.checkMethodCall(ex))
	case *ast.Closure:
		return c.setType(e, c.checkClosure(ex))
	case *ast.MatchExpr:
		return c.setType(e, c.checkMatchExpr(ex))
	case *ast.TupleLit:
		elems := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = c.checkExpr(el)
		}
		return c.setType(e, types.Tuple{Elems: elems})
	case *ast.ArrayLit:
		if len(ex.Elems) == 0 {
			return c.setType(e, types.Array{Elem: types.Error, Size: 0})
		}
		elem := c.checkExpr(ex.Elems[0])
		for _, el := range ex.Elems[1:] {
			t := c.checkExpr(el)
			if !types.Equal(elem, t) && !types.IsError(t) {
				c.Diags.Errorf(diag.KindTypeMismatch, el.Span(), "array element type mismatch: expected %s, found %s", render(elem), render(t))
			}
		}
		return c.setType(e, types.Array{Elem: elem, Size: int64(len(ex.Elems))})
	case *ast.RecordLit:
		return c.setType(e, c.checkRecordLit(ex))
	case *ast.VariantConstructor:
		return c.setType(e, c.checkVariantConstructor(ex))
	case *ast.TypeCast:
		return c.setType(e, c.checkCast(ex))
	case *ast.RangeExpr:
		lo := c.checkExpr(ex.Lo)
		hi := c.checkExpr(ex.Hi)
		if !types.IsNumeric(lo) || !types.IsNumeric(hi) {
			c.Diags.Errorf(diag.KindInvalidOperand, e.Span(), "range bounds must be numeric")
		}
		return c.setType(e, types.List{Elem: lo})
	case *ast.Grouped:
		return c.setType(e, c.checkExpr(ex.Inner))
	case *ast.InterpString:
		for _, p := range ex.Parts {
			if p.Expr != nil {
				c.checkExpr(p.Expr)
			}
		}
		return c.setType(e, types.Primitive{Kind: types.String})
	case *ast.TryExpr:
		return c.setType(e, c.checkTry(ex))
	case *ast.NullCoalesce:
		return c.setType(e, c.checkNullCoalesce(ex))
	case *ast.BlockExpr:
		return c.setType(e, c.checkBlockExpr(ex.Block))
	case *ast.IfExpr:
		return c.setType(e, c.checkIfExpr(ex))
	default:
		return c.setType(e, types.Error)
	}
}

func intLitType(width string) types.Type {
	if k, ok := parsePrimWidth(width); ok {
		return types.Primitive{Kind: k}
	}
	return types.Primitive{Kind: types.I64}
}

func floatLitType(width string) types.Type {
	if width == "f32" {
		return types.Primitive{Kind: types.F32}
	}
	return types.Primitive{Kind: types.F64}
}

func parsePrimWidth(w string) (types.PrimKind, bool) {
	m := map[string]types.PrimKind{
		"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
		"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
		"f32": types.F32, "f64": types.F64,
	}
	k, ok := m[w]
	return k, ok
}

func (c *Checker) checkIdent(id *ast.Ident) types.Type {
	symID, ok := c.Symtab.Lookup(id.Name)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedSymbol, id.Span(), "undefined symbol '%s'", id.Name)
		return types.Error
	}
	sym := c.Symtab.Symbol(symID)
	switch sym.Kind {
	case symtab.VarSymbol:
		return sym.VarType
	case symtab.FuncSymbol:
		return c.instantiateFuncSymbol(id, sym)
	case symtab.ModuleSymbol:
		return types.Named{Name: "module:" + joinDot(sym.ModulePath)}
	default:
		c.Diags.Errorf(diag.KindUndefinedSymbol, id.Span(), "'%s' cannot be used as a value", id.Name)
		return types.Error
	}
}

// instantiateFuncSymbol builds the resolved function type for a reference
// to a (possibly generic) function symbol, substituting any explicit
// generic arguments given on the identifier. Rejecting a generic call
// with no type arguments is enforced at the call site in checkCall, not
// here, since a bare generic function reference with no call is legal
// e.g. when passed as a higher-order value, once its params no longer
// mention the unfilled variables.
func (c *Checker) instantiateFuncSymbol(id *ast.Ident, sym *symtab.Symbol) types.Type {
	base := types.Func{Params: append([]types.Type{}, sym.ParamTypes...), Return: sym.ReturnType, Effect: sym.Effect}
	if len(sym.Generics) == 0 {
		return base
	}
	if len(id.TypeArgs) == 0 {
		return base
	}
	if len(id.TypeArgs) != len(sym.Generics) {
		c.Diags.Errorf(diag.KindWrongTypeArgCount, id.Span(), "'%s' expects %d type argument(s), got %d", id.Name, len(sym.Generics), len(id.TypeArgs))
		return types.Error
	}
	subst := map[string]types.Type{}
	for i, g := range sym.Generics {
		argT := c.ResolveType(c.Symtab.Current(), id.TypeArgs[i])
		c.checkConstraints(id.Span(), argT, g.Bounds)
		subst[g.Name] = argT
	}
	return types.Substitute(base, subst).(types.Func)
}

// checkConstraints validates a generic argument against its trait bounds
// by consulting the impl registry: the ImplDecl nodes registerImpl has
// recorded, keyed by implTypeKey of the implementing type. A bound is
// satisfied only when an impl of that trait is registered under the
// argument's key.
func (c *Checker) checkConstraints(span ast.Span, t types.Type, bounds []string) {
	for _, trait := range bounds {
		if _, ok := c.impls[implKey{typeName: implTypeKey(t), trait: trait}]; !ok {
			c.Diags.Errorf(diag.KindConstraintNotSatisfied, span, "%s does not satisfy constraint '%s'", render(t), trait)
		}
	}
}

type implKey struct {
	typeName string
	trait    string
}

// implTypeKey reduces a resolved type to the name under which its impls
// are registered: a named/instantiated type's base name (so `impl Show
// for Box[T]` covers every instantiation of Box), or its rendered string
// for anything else.
func implTypeKey(t types.Type) string {
	if n := baseTypeName(t); n != "" {
		return n
	}
	return t.String()
}

func (c *Checker) checkFieldAccess(fa *ast.FieldAccess) types.Type {
	t := c.checkExpr(fa.Target)
	if types.IsError(t) {
		return types.Error
	}
	var baseName string
	switch tt := t.(type) {
	case types.Named:
		if modPath, isModule := strings.CutPrefix(tt.Name, "module:"); isModule {
			return c.checkModuleMember(fa, strings.Split(modPath, "."))
		}
		baseName = tt.Name
	case types.Instantiated:
		baseName = tt.Base
	default:
		c.Diags.Errorf(diag.KindNoSuchField, fa.Span(), "%s has no field '%s'", render(t), fa.Field)
		return types.Error
	}
	symID, ok := c.Symtab.Lookup(baseName)
	if !ok {
		return types.Error
	}
	sym := c.Symtab.Symbol(symID)
	for _, f := range sym.Fields {
		if f.Name == fa.Field {
			return f.Type
		}
	}
	c.Diags.Errorf(diag.KindNoSuchField, fa.Span(), "%s has no field '%s'", render(t), fa.Field)
	return types.Error
}

// checkModuleMember resolves `module.field` once fa.Target has typed as a
// module namespace: either a nested submodule (std.io inside std), which
// yields another module-tagged Named type for a further FieldAccess to
// chain off, or a pub function/value defined directly in it.
func (c *Checker) checkModuleMember(fa *ast.FieldAccess, modPath []string) types.Type {
	nested := append(append([]string{}, modPath...), fa.Field)
	if _, ok := c.Symtab.ResolveModule(nested); ok {
		return types.Named{Name: "module:" + joinDot(nested)}
	}
	symID, ok := c.Symtab.LookupQualifiedPub(modPath, fa.Field)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedSymbol, fa.Span(), "undefined symbol '%s.%s'", joinDot(modPath), fa.Field)
		return types.Error
	}
	sym := c.Symtab.Symbol(symID)
	switch sym.Kind {
	case symtab.FuncSymbol:
		return types.Func{Params: append([]types.Type{}, sym.ParamTypes...), Return: sym.ReturnType, Effect: sym.Effect}
	case symtab.VarSymbol:
		return sym.VarType
	default:
		c.Diags.Errorf(diag.KindUndefinedSymbol, fa.Span(), "'%s.%s' cannot be used as a value", joinDot(modPath), fa.Field)
		return types.Error
	}
}

func (c *Checker) checkIndex(ix *ast.IndexAccess) types.Type {
	t := c.checkExpr(ix.Target)
	idxT := c.checkExpr(ix.Index)
	if !types.IsError(idxT) && !types.IsNumeric(idxT) {
		c.Diags.Errorf(diag.KindInvalidOperand, ix.Index.Span(), "array/list index must be numeric, found %s", render(idxT))
	}
	switch tt := t.(type) {
	case types.Array:
		return tt.Elem
	case types.List:
		return tt.Elem
	case types.ErrorT:
		return types.Error
	default:
		c.Diags.Errorf(diag.KindInvalidOperand, ix.Span(), "%s cannot be indexed", render(t))
		return types.Error
	}
}

func (c *Checker) checkTupleAccess(ta *ast.TupleAccess) types.Type {
	t := c.checkExpr(ta.Target)
	tup, ok := t.(types.Tuple)
	if !ok {
		if !types.IsError(t) {
			c.Diags.Errorf(diag.KindInvalidTupleIndex, ta.Span(), "%s is not a tuple", render(t))
		}
		return types.Error
	}
	if ta.Index < 0 || ta.Index >= len(tup.Elems) {
		c.Diags.Errorf(diag.KindInvalidTupleIndex, ta.Span(), "tuple index %d out of range for %s", ta.Index, render(t))
		return types.Error
	}
	return tup.Elems[ta.Index]
}

// checkBinary implements Kira's binary operator rules: arithmetic admits
// mixed integer widths (result is the wider operand), comparison and
// equality accept same-signedness integer mixes, `and`/`or` require
// bool, `is` is a runtime type test always yielding bool, and `in`
// requires a container whose element type is compatible with the left
// operand.
func (c *Checker) checkBinary(b *ast.BinaryExpr) types.Type {
	l := c.checkExpr(b.Left)
	r := c.checkExpr(b.Right)
	if types.IsError(l) || types.IsError(r) {
		return types.Error
	}
	switch b.Op {
	case "+", "-", "*", "/", "%":
		if res, ok := types.ArithResult(l, r); ok {
			return res
		}
		if types.Equal(l, r) && types.IsNumeric(l) {
			return l
		}
		c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "operator '%s' requires compatible numeric operands, found %s and %s", b.Op, render(l), render(r))
		return types.Error
	case "==", "!=":
		if types.Equal(l, r) || types.SameSignedness(l, r) {
			return types.Primitive{Kind: types.Bool}
		}
		c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "operator '%s' requires equal types, found %s and %s", b.Op, render(l), render(r))
		return types.Error
	case "<", ">", "<=", ">=":
		if !types.IsNumeric(l) || !types.IsNumeric(r) {
			c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "operator '%s' requires numeric operands, found %s and %s", b.Op, render(l), render(r))
			return types.Error
		}
		if _, ok := types.ArithResult(l, r); !ok && !types.Equal(l, r) {
			c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "operator '%s' requires compatible numeric operands, found %s and %s", b.Op, render(l), render(r))
			return types.Error
		}
		return types.Primitive{Kind: types.Bool}
	case "and", "or":
		bo := types.Primitive{Kind: types.Bool}
		if !types.Equal(l, bo) || !types.Equal(r, bo) {
			c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "operator '%s' requires bool operands", b.Op)
			return types.Error
		}
		return bo
	case "is":
		return types.Primitive{Kind: types.Bool}
	case "in":
		elem, ok := containerElem(r)
		if !ok {
			c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "'in' requires a container on the right, found %s", render(r))
			return types.Error
		}
		if !types.Equal(l, elem) {
			c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "'in' element type %s does not match container element type %s", render(l), render(elem))
		}
		return types.Primitive{Kind: types.Bool}
	default:
		c.Diags.Errorf(diag.KindInvalidOperand, b.Span(), "unknown operator '%s'", b.Op)
		return types.Error
	}
}

func containerElem(t types.Type) (types.Type, bool) {
	switch tt := t.(type) {
	case types.List:
		return tt.Elem, true
	case types.Array:
		return tt.Elem, true
	case types.Primitive:
		if tt.Kind == types.String {
			return types.Primitive{Kind: types.Char}, true
		}
	}
	return nil, false
}

func (c *Checker) checkUnary(u *ast.UnaryExpr) types.Type {
	t := c.checkExpr(u.Operand)
	if types.IsError(t) {
		return types.Error
	}
	switch u.Op {
	case "-":
		if !types.IsNumeric(t) {
			c.Diags.Errorf(diag.KindInvalidOperand, u.Span(), "unary '-' requires a numeric operand, found %s", render(t))
			return types.Error
		}
		return t
	case "!":
		bo := types.Primitive{Kind: types.Bool}
		if !types.Equal(t, bo) {
			c.Diags.Errorf(diag.KindInvalidOperand, u.Span(), "unary '!' requires a bool operand, found %s", render(t))
			return types.Error
		}
		return bo
	default:
		c.Diags.Errorf(diag.KindInvalidOperand, u.Span(), "unknown unary operator '%s'", u.Op)
		return types.Error
	}
}

// checkCall validates a function-value call: arity must match, each
// argument type must equal the corresponding parameter type, and the
// caller's effect must be able to call the callee's effect (pure callers
// may not call non-pure callees). A call to a generic function by bare
// name must supply explicit type arguments. Variant construction uses the
// dedicated VariantConstructor node, not Call, so no constructor
// special-casing happens here.
func (c *Checker) checkCall(call *ast.Call) types.Type {
	calleeT := c.checkExpr(call.Callee)
	fn, ok := calleeT.(types.Func)
	if !ok {
		if !types.IsError(calleeT) {
			c.Diags.Errorf(diag.KindNotCallable, call.Span(), "%s is not callable", render(calleeT))
		}
		for _, a := range call.Args {
			c.checkExpr(a)
		}
		return types.Error
	}
	if id, isIdent := call.Callee.(*ast.Ident); isIdent && len(id.TypeArgs) == 0 {
		if symID, found := c.Symtab.Lookup(id.Name); found {
			if sym := c.Symtab.Symbol(symID); sym.Kind == symtab.FuncSymbol && len(sym.Generics) > 0 {
				c.Diags.Errorf(diag.KindWrongTypeArgCount, call.Span(), "generic function '%s' requires explicit type arguments", id.Name)
			}
		}
	}
	c.checkEffectCall(call.Span(), fn.Effect)
	if len(call.Args) != len(fn.Params) {
		c.Diags.Errorf(diag.KindWrongArgCount, call.Span(), "expected %d argument(s), got %d", len(fn.Params), len(call.Args))
		for _, a := range call.Args {
			c.checkExpr(a)
		}
		return fn.Return
	}
	for i, a := range call.Args {
		at := c.checkExpr(a)
		if !types.IsError(at) && !types.Equal(at, fn.Params[i]) {
			c.Diags.Errorf(diag.KindTypeMismatch, a.Span(), "argument %d: expected %s, found %s", i+1, render(fn.Params[i]), render(at))
		}
	}
	return fn.Return
}

// checkEffectCall enforces the call-site effect rule of types.CanCall:
// pure callers cannot call io/result/io_result callees, while any non-pure
// caller may call a callee of any effect.
func (c *Checker) checkEffectCall(span ast.Span, callee types.Effect) {
	fc := c.cur()
	if fc == nil {
		return
	}
	if !types.CanCall(fc.effect, callee) {
		c.Diags.Errorf(diag.KindEffectViolation, span, "cannot call a %s function from a %s function", callee, fc.effect)
	}
}

// checkMethodCall resolves `receiver.method(args)` against the receiver's
// type's trait impls: an inherent or trait impl for the receiver's named
// type must declare a method of that name.
func (c *Checker) checkMethodCall(mc *ast.MethodCall) types.Type {
	recvT := c.checkExpr(mc.Receiver)
	if types.IsError(recvT) {
		for _, a := range mc.Args {
			c.checkExpr(a)
		}
		return types.Error
	}
	fd, ok := c.findMethod(recvT, mc.Method)
	if !ok {
		c.Diags.Errorf(diag.KindNoSuchField, mc.Span(), "%s has no method '%s'", render(recvT), mc.Method)
		for _, a := range mc.Args {
			c.checkExpr(a)
		}
		return types.Error
	}
	scope := c.Symtab.Current()
	eff := types.Pure
	switch fd.Effect {
	case ast.EffectIO:
		eff = types.IO
	case ast.EffectResult:
		eff = types.Result
	case ast.EffectIOResult:
		eff = types.IOResult
	}
	ret := c.ResolveType(scope, fd.Return)
	if isResultLike(ret) {
		eff = types.Join(eff, types.Result)
	}
	c.checkEffectCall(mc.Span(), eff)

	params := make([]types.Type, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = c.ResolveType(scope, p.Type)
	}
	if len(mc.Args) != len(params) {
		c.Diags.Errorf(diag.KindWrongArgCount, mc.Span(), "expected %d argument(s), got %d", len(params), len(mc.Args))
		for _, a := range mc.Args {
			c.checkExpr(a)
		}
		return ret
	}
	for i, a := range mc.Args {
		at := c.checkExpr(a)
		if !types.IsError(at) && !types.Equal(at, params[i]) {
			c.Diags.Errorf(diag.KindTypeMismatch, a.Span(), "argument %d: expected %s, found %s", i+1, render(params[i]), render(at))
		}
	}
	return ret
}

// findMethod scans the registered trait impls (and, as a fallback, every
// impl the checker has recorded under any key) for a method of the given
// name whose receiver type name matches recvT's base name. Kira has no
// method overloading, so the first match by name is authoritative.
func (c *Checker) findMethod(recvT types.Type, name string) (*ast.FuncDecl, bool) {
	typeName := baseTypeName(recvT)
	if typeName == "" {
		return nil, false
	}
	for key, impl := range c.impls {
		if key.typeName != typeName {
			continue
		}
		for _, m := range impl.Methods {
			if m.Name == name {
				return m, true
			}
		}
	}
	return nil, false
}

// checkClosure produces the closure's function type; its body is checked
// in a fresh function scope carrying the closure's own effect context.
// Closures capture their defining environment, not the caller's, which
// the interpreter enforces at runtime; the checker only needs the static
// effect/return-type context here.
func (c *Checker) checkClosure(cl *ast.Closure) types.Type {
	scope := c.Symtab.EnterScope(symtab.FunctionScope)
	defer c.Symtab.LeaveScope()

	params := make([]types.Type, len(cl.Params))
	for i, p := range cl.Params {
		pt := c.ResolveType(scope, p.Type)
		params[i] = pt
		c.Symtab.Define(symtab.Symbol{Name: p.Name, Kind: symtab.VarSymbol, Span: cl.Span(), VarType: pt})
	}
	ret := c.ResolveType(scope, cl.ReturnType)
	eff := types.Pure
	if cl.IsEffect {
		eff = types.IO
	}
	if isResultLike(ret) {
		eff = types.Join(eff, types.Result)
	}
	var outerSelf types.Type
	if fc := c.cur(); fc != nil {
		outerSelf = fc.selfType
	}
	c.pushFunc(funcCtx{effect: eff, returnType: ret, selfType: outerSelf})
	bodyT := c.checkBlock(cl.Body)
	if n := len(cl.Body.Stmts); n > 0 {
		if _, ok := cl.Body.Stmts[n-1].(*ast.ExprStmt); ok {
			c.requireAssignable(cl.Body.Stmts[n-1].Span(), ret, bodyT)
		}
	}
	c.popFunc()
	return types.Func{Params: params, Return: ret, Effect: eff}
}

// checkMatchExpr requires every arm's body to type-agree; the resulting
// type is the first arm's, validated against the rest.
func (c *Checker) checkMatchExpr(m *ast.MatchExpr) types.Type {
	subjT := c.checkExpr(m.Subject)
	var result types.Type
	for i, arm := range m.Arms {
		c.checkPatternArm(subjT, arm)
		bodyT := c.checkExpr(arm.Body)
		if i == 0 {
			result = bodyT
			continue
		}
		if !types.IsError(bodyT) && !types.IsError(result) && !types.Equal(result, bodyT) {
			c.Diags.Errorf(diag.KindTypeMismatch, arm.Body.Span(), "match arm type mismatch: expected %s, found %s", render(result), render(bodyT))
		}
	}
	c.checkMatchExhaustiveness(m.Span(), subjT, m.Arms)
	if result == nil {
		return types.VoidType
	}
	return result
}

// checkRecordLit validates a `TypeName { field: value, ... }` literal
// against the declared product type's field set: every declared field
// must be supplied exactly once, with a compatible value type.
func (c *Checker) checkRecordLit(rl *ast.RecordLit) types.Type {
	symID, ok := c.Symtab.Lookup(rl.TypeName)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedType, rl.Span(), "undefined type '%s'", rl.TypeName)
		for _, f := range rl.Fields {
			c.checkExpr(f.Value)
		}
		return types.Error
	}
	sym := c.Symtab.Symbol(symID)
	want := map[string]types.Type{}
	for _, f := range sym.Fields {
		want[f.Name] = f.Type
	}
	seen := map[string]bool{}
	for _, f := range rl.Fields {
		vt := c.checkExpr(f.Value)
		ft, ok := want[f.Name]
		if !ok {
			c.Diags.Errorf(diag.KindNoSuchField, rl.Span(), "%s has no field '%s'", rl.TypeName, f.Name)
			continue
		}
		seen[f.Name] = true
		if !types.IsError(vt) && !types.Equal(ft, vt) {
			c.Diags.Errorf(diag.KindTypeMismatch, f.Value.Span(), "field '%s': expected %s, found %s", f.Name, render(ft), render(vt))
		}
	}
	for _, f := range sym.Fields {
		if !seen[f.Name] {
			c.Diags.Errorf(diag.KindTypeMismatch, rl.Span(), "missing field '%s' in %s literal", f.Name, rl.TypeName)
		}
	}
	if len(sym.TypeGenerics) > 0 {
		return types.Named{Name: rl.TypeName}
	}
	return types.Named{Name: rl.TypeName}
}

// checkVariantConstructor resolves `Name(args...)` / nullary `Name` as an
// application of a sum-type variant found among any declared type's
// Variants, validating field count and types against the variant's
// declared field types.
func (c *Checker) checkVariantConstructor(vc *ast.VariantConstructor) types.Type {
	if vc.Name == "Some" || vc.Name == "None" {
		want := 0
		if vc.Name == "Some" {
			want = 1
		}
		inner := types.Type(types.Error)
		for i, a := range vc.Args {
			if at := c.checkExpr(a); i == 0 && want == 1 {
				inner = at
			}
		}
		if len(vc.Args) != want {
			c.Diags.Errorf(diag.KindWrongArgCount, vc.Span(), "'%s' expects %d argument(s), got %d", vc.Name, want, len(vc.Args))
		}
		return types.OptionT{Inner: inner}
	}
	typeName, variant, ok := c.findVariant(vc.Name)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedSymbol, vc.Span(), "undefined constructor '%s'", vc.Name)
		for _, a := range vc.Args {
			c.checkExpr(a)
		}
		return types.Error
	}
	if len(vc.Args) != len(variant.Fields) {
		c.Diags.Errorf(diag.KindWrongArgCount, vc.Span(), "'%s' expects %d argument(s), got %d", vc.Name, len(variant.Fields), len(vc.Args))
	}
	n := len(vc.Args)
	if len(variant.Fields) < n {
		n = len(variant.Fields)
	}
	for i := 0; i < n; i++ {
		at := c.checkExpr(vc.Args[i])
		if !types.IsError(at) && !types.Equal(at, variant.Fields[i]) {
			c.Diags.Errorf(diag.KindTypeMismatch, vc.Args[i].Span(), "argument %d to '%s': expected %s, found %s", i+1, vc.Name, render(variant.Fields[i]), render(at))
		}
	}
	for _, a := range vc.Args[n:] {
		c.checkExpr(a)
	}
	return types.Named{Name: typeName}
}

func (c *Checker) findVariant(name string) (string, symtab.VariantInfo, bool) {
	switch name {
	case "Some", "None":
		// Option's variants are structural, not registered in the symbol
		// table; checkVariantConstructor types Some/None itself (None as
		// Option[<error>], which is compatible with any Option[T]).
		return "", symtab.VariantInfo{}, false
	}
	for scope, ok := c.Symtab.Current(), true; ok; scope, ok = c.Symtab.Parent(scope) {
		for _, n := range c.Symtab.Names(scope) {
			symID, ok := c.Symtab.LookupFrom(scope, n)
			if !ok {
				continue
			}
			sym := c.Symtab.Symbol(symID)
			if sym.Kind != symtab.TypeSymbol {
				continue
			}
			for _, v := range sym.Variants {
				if v.Name == name {
					return sym.Name, v, true
				}
			}
		}
	}
	return "", symtab.VariantInfo{}, false
}

// checkCast validates `expr as Type`: numeric-to-numeric widening/
// narrowing casts are always permitted; anything else requires the
// source and target types to already be equal.
func (c *Checker) checkCast(tc *ast.TypeCast) types.Type {
	src := c.checkExpr(tc.Target)
	dst := c.ResolveType(c.Symtab.Current(), tc.Type)
	if types.IsError(src) || types.IsError(dst) {
		return types.Error
	}
	if types.IsNumeric(src) && types.IsNumeric(dst) {
		return dst
	}
	if types.Equal(src, dst) {
		return dst
	}
	c.Diags.Errorf(diag.KindInvalidCast, tc.Span(), "cannot cast %s to %s", render(src), render(dst))
	return types.Error
}

// checkTry validates the `?` operator: it requires Inner: Result[T,E]
// (optionally IO-wrapped) or Option[T], unwraps to T, and requires the
// enclosing function's effect to carry `result` and its return type to be
// Result[_, _] (optionally IO-wrapped).
func (c *Checker) checkTry(t *ast.TryExpr) types.Type {
	inner := c.checkExpr(t.Inner)
	fc := c.cur()
	if fc == nil || !fc.effect.HasResult() || !isResultLike(fc.returnType) {
		c.Diags.Errorf(diag.KindInvalidTry, t.Span(), "'?' used outside a result or io_result function")
	}
	if types.IsError(inner) {
		return types.Error
	}
	unwrapped, ok := tryUnwrap(inner)
	if !ok {
		c.Diags.Errorf(diag.KindInvalidTry, t.Span(), "'?' requires a Result or Option operand, found %s", render(inner))
		return types.Error
	}
	return unwrapped
}

func tryUnwrap(t types.Type) (types.Type, bool) {
	switch tt := t.(type) {
	case types.ResultT:
		return tt.Ok, true
	case types.OptionT:
		return tt.Inner, true
	case types.IOT:
		return tryUnwrap(tt.Inner)
	default:
		return nil, false
	}
}

// checkNullCoalesce validates `expr ?? default`: Inner must be Option[T]
// or Result[T,_], Default must have type T, result is T.
func (c *Checker) checkNullCoalesce(nc *ast.NullCoalesce) types.Type {
	inner := c.checkExpr(nc.Inner)
	def := c.checkExpr(nc.Default)
	if types.IsError(inner) {
		return def
	}
	unwrapped, ok := tryUnwrap(inner)
	if !ok {
		c.Diags.Errorf(diag.KindInvalidOperand, nc.Span(), "'??' requires a Result or Option operand, found %s", render(inner))
		return def
	}
	if !types.IsError(def) && !types.Equal(unwrapped, def) {
		c.Diags.Errorf(diag.KindTypeMismatch, nc.Default.Span(), "'??' default: expected %s, found %s", render(unwrapped), render(def))
	}
	return unwrapped
}

// checkBlockExpr types a block used in expression position: its value is
// the trailing non-semicolon-terminated ExprStmt, or void if the block's
// last statement is not such an expression.
func (c *Checker) checkBlockExpr(b *ast.Block) types.Type {
	return c.checkBlock(b)
}

// checkIfExpr requires both branches to type-agree; an absent else
// branch is only valid when the whole expression is unused
// for its value, which the checker cannot see at this point, so a missing
// else always types to void and a used non-void value type still gets
// flagged by requireAssignable/checkBlock at the use site.
func (c *Checker) checkIfExpr(ie *ast.IfExpr) types.Type {
	condT := c.checkExpr(ie.Cond)
	bo := types.Primitive{Kind: types.Bool}
	if !types.IsError(condT) && !types.Equal(condT, bo) {
		c.Diags.Errorf(diag.KindTypeMismatch, ie.Cond.Span(), "if condition must be bool, found %s", render(condT))
	}
	thenT := c.checkBlock(ie.Then)
	if ie.Else == nil {
		return types.VoidType
	}
	elseT := c.checkBlock(ie.Else)
	if !types.IsError(thenT) && !types.IsError(elseT) && !types.Equal(thenT, elseT) {
		c.Diags.Errorf(diag.KindTypeMismatch, ie.Span(), "if branches disagree: %s vs %s", render(thenT), render(elseT))
	}
	return thenT
}
