package interp

import "github.com/kira-lang/kira/internal/ast"

// matchPattern tries to match v against p, defining any names p binds
// into env. It is the interpreter's own linear pattern matcher and is
// authoritative at runtime regardless of the checker's advisory
// exhaustiveness verdict.
func matchPattern(p ast.Pattern, v Value, env *Env) bool {
	switch pp := p.(type) {
	case *ast.WildcardPattern, *ast.RestPattern:
		return true
	case *ast.IdentPattern:
		env.Define(pp.Name, v, pp.IsVar)
		return true
	case *ast.TypedPattern:
		return matchPattern(pp.Inner, v, env)
	case *ast.GuardedPattern:
		// Guard evaluation happens at the call site (evalMatchStmt /
		// evalMatchExpr), which needs the caller's env to have already
		// been extended by this match; matchPattern only performs the
		// structural match here.
		return matchPattern(pp.Inner, v, env)
	case *ast.OrPattern:
		for _, alt := range pp.Alts {
			if matchPattern(alt, v, env) {
				return true
			}
		}
		return false
	case *ast.LiteralPattern:
		return matchLiteral(pp, v)
	case *ast.RangePattern:
		return matchRange(pp, v)
	case *ast.ConstructorPattern:
		return matchConstructor(pp, v, env)
	case *ast.TuplePattern:
		tv, ok := v.(*TupleValue)
		if !ok || len(tv.Elems) != len(pp.Elems) {
			return false
		}
		for i, el := range pp.Elems {
			if !matchPattern(el, tv.Elems[i], env) {
				return false
			}
		}
		return true
	case *ast.RecordPattern:
		rv, ok := v.(*RecordValue)
		if !ok {
			return false
		}
		for _, f := range pp.Fields {
			fv, ok := rv.Fields[f.Name]
			if !ok || !matchPattern(f.Pattern, fv, env) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func matchLiteral(p *ast.LiteralPattern, v Value) bool {
	switch p.Kind {
	case ast.LitPatternInt:
		iv, ok := v.(*IntValue)
		return ok && iv.Val.IsInt64() && iv.Val.Int64() == p.Int
	case ast.LitPatternFloat:
		fv, ok := v.(*FloatValue)
		return ok && fv.Val == p.Float
	case ast.LitPatternString:
		sv, ok := v.(*StringValue)
		return ok && sv.Val == p.Str
	case ast.LitPatternChar:
		cv, ok := v.(*CharValue)
		return ok && cv.Val == p.Char
	case ast.LitPatternBool:
		bv, ok := v.(*BoolValue)
		return ok && bv.Val == p.Bool
	default:
		return false
	}
}

func matchRange(p *ast.RangePattern, v Value) bool {
	lo, loOk := p.Lo.(*ast.LiteralPattern)
	hi, hiOk := p.Hi.(*ast.LiteralPattern)
	if !loOk || !hiOk {
		return false
	}
	switch vv := v.(type) {
	case *IntValue:
		n := vv.Val.Int64()
		if p.Inclusive {
			return n >= lo.Int && n <= hi.Int
		}
		return n >= lo.Int && n < hi.Int
	case *CharValue:
		if p.Inclusive {
			return vv.Val >= lo.Char && vv.Val <= hi.Char
		}
		return vv.Val >= lo.Char && vv.Val < hi.Char
	default:
		return false
	}
}

// matchConstructor matches a sum-type variant, the built-in Option/Result
// shapes (Some/None/Ok/Err), or the Cons/Nil list representation.
func matchConstructor(p *ast.ConstructorPattern, v Value, env *Env) bool {
	vv, ok := v.(*VariantValue)
	if !ok || vv.Ctor != p.Name {
		return false
	}
	if len(p.Args) > len(vv.Fields) {
		return false
	}
	for i, ap := range p.Args {
		if !matchPattern(ap, vv.Fields[i], env) {
			return false
		}
	}
	return true
}
