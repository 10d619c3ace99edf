package interp

import "github.com/kira-lang/kira/internal/ast"

func (it *Interp) evalExpr(e ast.Expr, env *Env) (Value, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		return NewInt(ex.Value, widthOrDefault(ex.Width, "i64")), nil
	case *ast.FloatLit:
		return &FloatValue{Val: ex.Value, Width: widthOrDefault(ex.Width, "f64")}, nil
	case *ast.StringLit:
		return &StringValue{Val: ex.Value}, nil
	case *ast.CharLit:
		return &CharValue{Val: ex.Value}, nil
	case *ast.BoolLit:
		return &BoolValue{Val: ex.Value}, nil
	case *ast.Ident:
		v, ok := env.Get(ex.Name)
		if !ok {
			return nil, rtErrf("undefined symbol '%s'", ex.Name)
		}
		return v, nil
	case *ast.SelfExpr:
		v, ok := env.Get("self")
		if !ok {
			return nil, rtErrf("'self' used outside a method")
		}
		return v, nil
	case *ast.BinaryExpr:
		return it.evalBinary(ex, env)
	case *ast.UnaryExpr:
		return it.evalUnary(ex, env)
	case *ast.FieldAccess:
		target, err := it.evalExpr(ex.Target, env)
		if err != nil {
			return nil, err
		}
		switch t := target.(type) {
		case *RecordValue:
			fv, ok := t.Fields[ex.Field]
			if !ok {
				return nil, rtErrf("%s has no field '%s'", t.TypeName, ex.Field)
			}
			return fv, nil
		case *ModuleValue:
			v, ok := t.Env.Get(ex.Field)
			if !ok {
				return nil, rtErrf("module '%s' has no member '%s'", t.Path, ex.Field)
			}
			return v, nil
		default:
			return nil, rtErrf("%s has no fields", target.Type())
		}
	case *ast.IndexAccess:
		return it.evalIndex(ex, env)
	case *ast.TupleAccess:
		target, err := it.evalExpr(ex.Target, env)
		if err != nil {
			return nil, err
		}
		tup, ok := target.(*TupleValue)
		if !ok || ex.Index < 0 || ex.Index >= len(tup.Elems) {
			return nil, rtErrf("invalid tuple index %d", ex.Index)
		}
		return tup.Elems[ex.Index], nil
	case *ast.Call:
		return it.evalCall(ex, env)
	case *ast.MethodCall:
		return it.evalMethodCall(ex, env)
	case *ast.Closure:
		params := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			params[i] = p.Name
		}
		return &ClosureValue{Params: params, Body: ex.Body, Defined: env, IsEffect: ex.IsEffect}, nil
	case *ast.MatchExpr:
		return it.evalMatchExpr(ex, env)
	case *ast.TupleLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := it.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &TupleValue{Elems: elems}, nil
	case *ast.ArrayLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := it.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ArrayValue{Elems: elems}, nil
	case *ast.RecordLit:
		fields := map[string]Value{}
		order := make([]string, len(ex.Fields))
		for i, f := range ex.Fields {
			v, err := it.evalExpr(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
			order[i] = f.Name
		}
		return &RecordValue{TypeName: ex.TypeName, Fields: fields, Order: order}, nil
	case *ast.VariantConstructor:
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			v, err := it.evalExpr(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &VariantValue{TypeName: variantTypeNameOf(ex.Name), Ctor: ex.Name, Fields: args}, nil
	case *ast.TypeCast:
		return it.evalCast(ex, env)
	case *ast.RangeExpr:
		return it.evalRange(ex, env)
	case *ast.Grouped:
		return it.evalExpr(ex.Inner, env)
	case *ast.InterpString:
		return it.evalInterpString(ex, env)
	case *ast.TryExpr:
		return it.evalTry(ex, env)
	case *ast.NullCoalesce:
		return it.evalNullCoalesce(ex, env)
	case *ast.BlockExpr:
		return it.evalBlock(ex.Block, env)
	case *ast.IfExpr:
		return it.evalIfExpr(ex, env)
	default:
		return nil, rtErrf("unhandled expression %T", e)
	}
}

func widthOrDefault(w, def string) string {
	if w == "" {
		return def
	}
	return w
}

// variantTypeNameOf maps the well-known built-in constructor names to
// their carrying type's display name; user sum types are looked up by
// the checker at type-check time but the interpreter only needs a label
// for String()/Type(), so anything else reuses the constructor name.
func variantTypeNameOf(ctor string) string {
	switch ctor {
	case "Some", "None":
		return "Option"
	case "Ok", "Err":
		return "Result"
	case "Cons", "Nil":
		return "List"
	default:
		return ctor
	}
}

func (it *Interp) evalIndex(ix *ast.IndexAccess, env *Env) (Value, error) {
	target, err := it.evalExpr(ix.Target, env)
	if err != nil {
		return nil, err
	}
	idxV, err := it.evalExpr(ix.Index, env)
	if err != nil {
		return nil, err
	}
	iv, ok := idxV.(*IntValue)
	if !ok {
		return nil, rtErrf("index must be an integer")
	}
	idx := int(iv.Val.Int64())
	switch t := target.(type) {
	case *ArrayValue:
		if idx < 0 || idx >= len(t.Elems) {
			return nil, rtErrf("index %d out of bounds (len %d)", idx, len(t.Elems))
		}
		return t.Elems[idx], nil
	case *VariantValue:
		elems, err := listToSlice(t)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(elems) {
			return nil, rtErrf("index %d out of bounds (len %d)", idx, len(elems))
		}
		return elems[idx], nil
	default:
		return nil, rtErrf("%s is not indexable", target.Type())
	}
}

func (it *Interp) evalCall(call *ast.Call, env *Env) (Value, error) {
	calleeV, err := it.evalExpr(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := it.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch fn := calleeV.(type) {
	case *ClosureValue:
		return it.call(fn, args)
	case *BuiltinValue:
		return fn.Fn(args)
	default:
		return nil, rtErrf("%s is not callable", calleeV.Type())
	}
}

func (it *Interp) evalMethodCall(mc *ast.MethodCall, env *Env) (Value, error) {
	recv, err := it.evalExpr(mc.Receiver, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(mc.Args))
	for i, a := range mc.Args {
		v, err := it.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	typeName := recv.Type()
	if fnV, ok := it.Globals.Get(methodKey(typeName, mc.Method)); ok {
		fn := fnV.(*ClosureValue)
		frame := fn.Defined.Child()
		frame.Define("self", recv, false)
		for i, p := range fn.Params {
			if i < len(args) {
				frame.Define(p, args[i], false)
			}
		}
		v, err := it.evalBlock(fn.Body, frame)
		if err != nil {
			if rs, ok := err.(returnSignal); ok {
				return rs.val, nil
			}
			if tu, ok := err.(tryUnwind); ok {
				return tu.val, nil
			}
			return nil, err
		}
		return v, nil
	}
	return nil, rtErrf("%s has no method '%s'", typeName, mc.Method)
}

func (it *Interp) evalMatchExpr(m *ast.MatchExpr, env *Env) (Value, error) {
	subj, err := it.evalExpr(m.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range m.Arms {
		armEnv := env.Child()
		if !matchPattern(arm.Pattern, subj, armEnv) {
			continue
		}
		if arm.Guard != nil {
			g, err := it.evalExpr(arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			if !truthy(g) {
				continue
			}
		}
		return it.evalExpr(arm.Body, armEnv)
	}
	return nil, rtErrf("no match arm matched the scrutinee (non-exhaustive at runtime)")
}

func (it *Interp) evalRange(re *ast.RangeExpr, env *Env) (Value, error) {
	loV, err := it.evalExpr(re.Lo, env)
	if err != nil {
		return nil, err
	}
	hiV, err := it.evalExpr(re.Hi, env)
	if err != nil {
		return nil, err
	}
	lo, ok1 := loV.(*IntValue)
	hi, ok2 := hiV.(*IntValue)
	if !ok1 || !ok2 {
		return nil, rtErrf("range bounds must be integers")
	}
	var elems []Value
	end := hi.Val.Int64()
	if re.Inclusive {
		end++
	}
	for n := lo.Val.Int64(); n < end; n++ {
		elems = append(elems, NewInt(n, lo.Width))
	}
	return &ArrayValue{Elems: elems}, nil
}

func (it *Interp) evalInterpString(is *ast.InterpString, env *Env) (Value, error) {
	out := ""
	for _, p := range is.Parts {
		if p.Expr == nil {
			out += p.Text
			continue
		}
		v, err := it.evalExpr(p.Expr, env)
		if err != nil {
			return nil, err
		}
		out += v.String()
	}
	return &StringValue{Val: out}, nil
}

// evalTry implements the `?` operator: on Ok(x)/Some(x) it yields x; on
// Err(e)/None it unwinds the enclosing call as that function's return
// value.
func (it *Interp) evalTry(t *ast.TryExpr, env *Env) (Value, error) {
	v, err := it.evalExpr(t.Inner, env)
	if err != nil {
		return nil, err
	}
	vv, ok := v.(*VariantValue)
	if !ok {
		return nil, rtErrf("'?' operand is not a Result or Option")
	}
	switch vv.Ctor {
	case "Ok", "Some":
		return vv.Fields[0], nil
	case "Err", "None":
		return nil, tryUnwind{val: v}
	default:
		return nil, rtErrf("'?' operand has unexpected constructor '%s'", vv.Ctor)
	}
}

func (it *Interp) evalNullCoalesce(nc *ast.NullCoalesce, env *Env) (Value, error) {
	v, err := it.evalExpr(nc.Inner, env)
	if err != nil {
		return nil, err
	}
	vv, ok := v.(*VariantValue)
	if !ok {
		return nil, rtErrf("'??' operand is not a Result or Option")
	}
	switch vv.Ctor {
	case "Ok", "Some":
		return vv.Fields[0], nil
	default:
		return it.evalExpr(nc.Default, env)
	}
}

func (it *Interp) evalIfExpr(ie *ast.IfExpr, env *Env) (Value, error) {
	cond, err := it.evalExpr(ie.Cond, env)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return it.evalBlock(ie.Then, env)
	}
	if ie.Else == nil {
		return Unit, nil
	}
	return it.evalBlock(ie.Else, env)
}
