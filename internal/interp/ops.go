package interp

import (
	"math/big"

	"github.com/kira-lang/kira/internal/ast"
)

func (it *Interp) evalBinary(b *ast.BinaryExpr, env *Env) (Value, error) {
	switch b.Op {
	case "and":
		l, err := it.evalExpr(b.Left, env)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return &BoolValue{Val: false}, nil
		}
		r, err := it.evalExpr(b.Right, env)
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: truthy(r)}, nil
	case "or":
		l, err := it.evalExpr(b.Left, env)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return &BoolValue{Val: true}, nil
		}
		r, err := it.evalExpr(b.Right, env)
		if err != nil {
			return nil, err
		}
		return &BoolValue{Val: truthy(r)}, nil
	}

	l, err := it.evalExpr(b.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := it.evalExpr(b.Right, env)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case "+", "-", "*", "/", "%":
		return arith(b.Op, l, r)
	case "==":
		return &BoolValue{Val: valuesEqual(l, r)}, nil
	case "!=":
		return &BoolValue{Val: !valuesEqual(l, r)}, nil
	case "<", ">", "<=", ">=":
		return compare(b.Op, l, r)
	case "in":
		return containsOp(l, r)
	default:
		return nil, rtErrf("unhandled binary operator '%s'", b.Op)
	}
}

func (it *Interp) evalUnary(u *ast.UnaryExpr, env *Env) (Value, error) {
	v, err := it.evalExpr(u.Operand, env)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "-":
		switch vv := v.(type) {
		case *IntValue:
			return &IntValue{Val: wrap(new(big.Int).Neg(vv.Val), vv.Width), Width: vv.Width}, nil
		case *FloatValue:
			return &FloatValue{Val: -vv.Val, Width: vv.Width}, nil
		}
		return nil, rtErrf("'-' requires a numeric operand")
	case "!":
		bv, ok := v.(*BoolValue)
		if !ok {
			return nil, rtErrf("'!' requires a bool operand")
		}
		return &BoolValue{Val: !bv.Val}, nil
	default:
		return nil, rtErrf("unhandled unary operator '%s'", u.Op)
	}
}

// wideWidth picks the wider of two integer widths; when both have the same
// bit size, the signed one wins.
func wideWidth(a, b string) string {
	ra, sa := widthRank(a)
	rb, sb := widthRank(b)
	if ra != rb {
		if ra > rb {
			return a
		}
		return b
	}
	if sa {
		return a
	}
	return b
}

func widthRank(w string) (int, bool) {
	switch w {
	case "i8", "u8":
		return 8, w[0] == 'i'
	case "i16", "u16":
		return 16, w[0] == 'i'
	case "i32", "u32":
		return 32, w[0] == 'i'
	case "i64", "u64":
		return 64, w[0] == 'i'
	case "i128", "u128":
		return 128, w[0] == 'i'
	default:
		return 64, true
	}
}

// wrap truncates n to width's bit size, honoring two's-complement
// wraparound for signed widths the way the checker's static ArithResult
// rule assumes the runtime will.
func wrap(n *big.Int, width string) *big.Int {
	bits, signed := widthRank(width)
	m := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	r := new(big.Int).Mod(n, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if r.Cmp(half) >= 0 {
			r.Sub(r, m)
		}
	}
	return r
}

func arith(op string, l, r Value) (Value, error) {
	switch lv := l.(type) {
	case *IntValue:
		rv, ok := r.(*IntValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		width := wideWidth(lv.Width, rv.Width)
		var res *big.Int
		switch op {
		case "+":
			res = new(big.Int).Add(lv.Val, rv.Val)
		case "-":
			res = new(big.Int).Sub(lv.Val, rv.Val)
		case "*":
			res = new(big.Int).Mul(lv.Val, rv.Val)
		case "/":
			if rv.Val.Sign() == 0 {
				return nil, rtErrf("division by zero")
			}
			res = new(big.Int).Quo(lv.Val, rv.Val)
		case "%":
			if rv.Val.Sign() == 0 {
				return nil, rtErrf("division by zero")
			}
			res = new(big.Int).Rem(lv.Val, rv.Val)
		}
		return &IntValue{Val: wrap(res, width), Width: width}, nil
	case *FloatValue:
		rv, ok := r.(*FloatValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		width := lv.Width
		if width == "" {
			width = rv.Width
		}
		var res float64
		switch op {
		case "+":
			res = lv.Val + rv.Val
		case "-":
			res = lv.Val - rv.Val
		case "*":
			res = lv.Val * rv.Val
		case "/":
			res = lv.Val / rv.Val
		case "%":
			return nil, rtErrf("'%%' is not defined for floats")
		}
		return &FloatValue{Val: res, Width: width}, nil
	case *StringValue:
		rv, ok := r.(*StringValue)
		if !ok || op != "+" {
			return nil, rtErrf("unsupported operand types for '%s'", op)
		}
		return &StringValue{Val: lv.Val + rv.Val}, nil
	default:
		return nil, rtErrf("'%s' is not defined for %s", op, l.Type())
	}
}

func compare(op string, l, r Value) (Value, error) {
	var cmp int
	switch lv := l.(type) {
	case *IntValue:
		rv, ok := r.(*IntValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		cmp = lv.Val.Cmp(rv.Val)
	case *FloatValue:
		rv, ok := r.(*FloatValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		switch {
		case lv.Val < rv.Val:
			cmp = -1
		case lv.Val > rv.Val:
			cmp = 1
		}
	case *StringValue:
		rv, ok := r.(*StringValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		switch {
		case lv.Val < rv.Val:
			cmp = -1
		case lv.Val > rv.Val:
			cmp = 1
		}
	case *CharValue:
		rv, ok := r.(*CharValue)
		if !ok {
			return nil, rtErrf("mismatched operand types for '%s'", op)
		}
		switch {
		case lv.Val < rv.Val:
			cmp = -1
		case lv.Val > rv.Val:
			cmp = 1
		}
	default:
		return nil, rtErrf("'%s' is not defined for %s", op, l.Type())
	}
	var res bool
	switch op {
	case "<":
		res = cmp < 0
	case ">":
		res = cmp > 0
	case "<=":
		res = cmp <= 0
	case ">=":
		res = cmp >= 0
	}
	return &BoolValue{Val: res}, nil
}

func valuesEqual(l, r Value) bool {
	switch lv := l.(type) {
	case *IntValue:
		rv, ok := r.(*IntValue)
		return ok && lv.Val.Cmp(rv.Val) == 0
	case *FloatValue:
		rv, ok := r.(*FloatValue)
		return ok && lv.Val == rv.Val
	case *StringValue:
		rv, ok := r.(*StringValue)
		return ok && lv.Val == rv.Val
	case *CharValue:
		rv, ok := r.(*CharValue)
		return ok && lv.Val == rv.Val
	case *BoolValue:
		rv, ok := r.(*BoolValue)
		return ok && lv.Val == rv.Val
	case UnitValue:
		_, ok := r.(UnitValue)
		return ok
	case *TupleValue:
		rv, ok := r.(*TupleValue)
		if !ok || len(lv.Elems) != len(rv.Elems) {
			return false
		}
		for i := range lv.Elems {
			if !valuesEqual(lv.Elems[i], rv.Elems[i]) {
				return false
			}
		}
		return true
	case *ArrayValue:
		rv, ok := r.(*ArrayValue)
		if !ok || len(lv.Elems) != len(rv.Elems) {
			return false
		}
		for i := range lv.Elems {
			if !valuesEqual(lv.Elems[i], rv.Elems[i]) {
				return false
			}
		}
		return true
	case *RecordValue:
		rv, ok := r.(*RecordValue)
		if !ok || len(lv.Fields) != len(rv.Fields) {
			return false
		}
		for k, fv := range lv.Fields {
			ov, ok := rv.Fields[k]
			if !ok || !valuesEqual(fv, ov) {
				return false
			}
		}
		return true
	case *VariantValue:
		rv, ok := r.(*VariantValue)
		if !ok || lv.Ctor != rv.Ctor || len(lv.Fields) != len(rv.Fields) {
			return false
		}
		for i := range lv.Fields {
			if !valuesEqual(lv.Fields[i], rv.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func containsOp(needle, hay Value) (Value, error) {
	switch h := hay.(type) {
	case *ArrayValue:
		for _, e := range h.Elems {
			if valuesEqual(needle, e) {
				return &BoolValue{Val: true}, nil
			}
		}
		return &BoolValue{Val: false}, nil
	case *StringValue:
		n, ok := needle.(*StringValue)
		if !ok {
			return nil, rtErrf("'in' on a string requires a string operand")
		}
		for i := 0; i+len(n.Val) <= len(h.Val); i++ {
			if h.Val[i:i+len(n.Val)] == n.Val {
				return &BoolValue{Val: true}, nil
			}
		}
		return &BoolValue{Val: false}, nil
	case *VariantValue:
		elems, err := listToSlice(h)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			if valuesEqual(needle, e) {
				return &BoolValue{Val: true}, nil
			}
		}
		return &BoolValue{Val: false}, nil
	default:
		return nil, rtErrf("'in' is not defined for %s", hay.Type())
	}
}

func (it *Interp) evalCast(tc *ast.TypeCast, env *Env) (Value, error) {
	v, err := it.evalExpr(tc.Target, env)
	if err != nil {
		return nil, err
	}
	want := primitiveName(tc.Type)
	switch vv := v.(type) {
	case *IntValue:
		switch {
		case isIntWidth(want):
			return &IntValue{Val: wrap(new(big.Int).Set(vv.Val), want), Width: want}, nil
		case isFloatWidth(want):
			f := new(big.Float).SetInt(vv.Val)
			fv, _ := f.Float64()
			return &FloatValue{Val: fv, Width: want}, nil
		}
	case *FloatValue:
		switch {
		case isFloatWidth(want):
			return &FloatValue{Val: vv.Val, Width: want}, nil
		case isIntWidth(want):
			bi, _ := big.NewFloat(vv.Val).Int(nil)
			return &IntValue{Val: wrap(bi, want), Width: want}, nil
		}
	case *CharValue:
		if isIntWidth(want) {
			return &IntValue{Val: wrap(big.NewInt(int64(vv.Val)), want), Width: want}, nil
		}
	}
	return v, nil
}

func primitiveName(te ast.TypeExpr) string {
	if pt, ok := te.(*ast.PrimitiveType); ok {
		return pt.Kind.String()
	}
	return ""
}

func isIntWidth(w string) bool {
	switch w {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128":
		return true
	}
	return false
}

func isFloatWidth(w string) bool { return w == "f32" || w == "f64" }
