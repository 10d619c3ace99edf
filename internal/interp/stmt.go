package interp

import "github.com/kira-lang/kira/internal/ast"

// evalStmt evaluates one statement, returning its value when it is an
// ExprStmt (needed so evalBlock can report a block's tail value) and Unit
// otherwise.
func (it *Interp) evalStmt(s ast.Stmt, env *Env) (Value, error) {
	switch st := s.(type) {
	case *ast.LetStmt:
		return Unit, it.evalLetStmt(st, env)
	case *ast.VarStmt:
		return Unit, it.evalVarStmt(st, env)
	case *ast.AssignStmt:
		return Unit, it.evalAssignStmt(st, env)
	case *ast.IfStmt:
		return Unit, it.evalIfStmt(st, env)
	case *ast.ForStmt:
		return Unit, it.evalForStmt(st, env)
	case *ast.MatchStmt:
		return Unit, it.evalMatchStmt(st, env)
	case *ast.ReturnStmt:
		var v Value = Unit
		if st.Value != nil {
			var err error
			v, err = it.evalExpr(st.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{val: v}
	case *ast.BreakStmt:
		return nil, breakSignal{label: st.Label}
	case *ast.ExprStmt:
		return it.evalExpr(st.X, env)
	case *ast.Block:
		return it.evalBlock(st, env)
	default:
		return Unit, rtErrf("unhandled statement %T", s)
	}
}

func (it *Interp) evalLetStmt(ls *ast.LetStmt, env *Env) error {
	v, err := it.evalExpr(ls.Init, env)
	if err != nil {
		return err
	}
	if !matchPattern(ls.Pattern, v, env) {
		return rtErrf("let pattern failed to match its initializer")
	}
	return nil
}

func (it *Interp) evalVarStmt(vs *ast.VarStmt, env *Env) error {
	v := Value(Unit)
	if vs.Init != nil {
		var err error
		v, err = it.evalExpr(vs.Init, env)
		if err != nil {
			return err
		}
	}
	env.Define(vs.Name, v, true)
	return nil
}

func (it *Interp) evalAssignStmt(as *ast.AssignStmt, env *Env) error {
	v, err := it.evalExpr(as.Value, env)
	if err != nil {
		return err
	}
	switch t := as.Target.(type) {
	case *ast.Ident:
		if !env.Assign(t.Name, v) {
			return rtErrf("assignment to undefined variable '%s'", t.Name)
		}
	case *ast.FieldAccess:
		target, err := it.evalExpr(t.Target, env)
		if err != nil {
			return err
		}
		rec, ok := target.(*RecordValue)
		if !ok {
			return rtErrf("field assignment target is not a record")
		}
		rec.Fields[t.Field] = v
	case *ast.IndexAccess:
		target, err := it.evalExpr(t.Target, env)
		if err != nil {
			return err
		}
		idxV, err := it.evalExpr(t.Index, env)
		if err != nil {
			return err
		}
		idx := int(idxV.(*IntValue).Val.Int64())
		arr, ok := target.(*ArrayValue)
		if !ok {
			return rtErrf("index assignment target is not an array")
		}
		if idx < 0 || idx >= len(arr.Elems) {
			return rtErrf("index %d out of bounds", idx)
		}
		arr.Elems[idx] = v
	default:
		return rtErrf("unsupported assignment target %T", as.Target)
	}
	return nil
}

func (it *Interp) evalIfStmt(is *ast.IfStmt, env *Env) error {
	cond, err := it.evalExpr(is.Cond, env)
	if err != nil {
		return err
	}
	if truthy(cond) {
		_, err := it.evalBlock(is.Then, env)
		return err
	}
	if is.Else == nil {
		return nil
	}
	if is.Else.If != nil {
		return it.evalIfStmt(is.Else.If, env)
	}
	_, err = it.evalBlock(is.Else.Block, env)
	return err
}

// evalForStmt iterates a List, Array, or string and runs body once per
// element, binding the loop pattern in a fresh child scope each time.
// For loops run over finite, already-materialized sequences only.
func (it *Interp) evalForStmt(fs *ast.ForStmt, env *Env) error {
	iterable, err := it.evalExpr(fs.Iterable, env)
	if err != nil {
		return err
	}
	elems, err := toSlice(iterable)
	if err != nil {
		return err
	}
	for _, el := range elems {
		loopEnv := env.Child()
		if !matchPattern(fs.Pattern, el, loopEnv) {
			continue
		}
		_, err := it.evalBlock(fs.Body, loopEnv)
		if err != nil {
			if bs, ok := err.(breakSignal); ok {
				if bs.label == "" || bs.label == loopLabel(fs) {
					return nil
				}
			}
			return err
		}
	}
	return nil
}

func loopLabel(*ast.ForStmt) string { return "" }

// toSlice materializes an iterable runtime value (List, Array, or string
// of chars) into a Go slice for loop iteration.
func toSlice(v Value) ([]Value, error) {
	switch vv := v.(type) {
	case *ArrayValue:
		return vv.Elems, nil
	case *StringValue:
		runes := []rune(vv.Val)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = &CharValue{Val: r}
		}
		return out, nil
	case *VariantValue:
		return listToSlice(vv)
	default:
		return nil, rtErrf("value of type %s is not iterable", v.Type())
	}
}

// listToSlice flattens Kira's Cons/Nil linked-list representation.
func listToSlice(v Value) ([]Value, error) {
	var out []Value
	cur := v
	for {
		vv, ok := cur.(*VariantValue)
		if !ok {
			return nil, rtErrf("value of type %s is not a list", v.Type())
		}
		if vv.Ctor == "Nil" {
			return out, nil
		}
		if vv.Ctor != "Cons" || len(vv.Fields) != 2 {
			return nil, rtErrf("malformed list value")
		}
		out = append(out, vv.Fields[0])
		cur = vv.Fields[1]
	}
}

func sliceToList(elems []Value) Value {
	var v Value = &VariantValue{TypeName: "List", Ctor: "Nil"}
	for i := len(elems) - 1; i >= 0; i-- {
		v = &VariantValue{TypeName: "List", Ctor: "Cons", Fields: []Value{elems[i], v}}
	}
	return v
}

func (it *Interp) evalMatchStmt(ms *ast.MatchStmt, env *Env) error {
	subj, err := it.evalExpr(ms.Subject, env)
	if err != nil {
		return err
	}
	for _, arm := range ms.Arms {
		armEnv := env.Child()
		if !matchPattern(arm.Pattern, subj, armEnv) {
			continue
		}
		if arm.Guard != nil {
			g, err := it.evalExpr(arm.Guard, armEnv)
			if err != nil {
				return err
			}
			if !truthy(g) {
				continue
			}
		}
		_, err := it.evalExpr(arm.Body, armEnv)
		return err
	}
	return rtErrf("no match arm matched the scrutinee (non-exhaustive at runtime)")
}
