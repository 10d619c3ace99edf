package check

import (
	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/dtree"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// checkPatternArm checks one match arm's pattern against the scrutinee
// type, then its optional guard, binding pattern names into the current
// scope. The caller checks Body after this returns, so pattern bindings
// are defined flatly rather than scoped to a dedicated block per arm.
func (c *Checker) checkPatternArm(subjT types.Type, arm ast.MatchArm) {
	c.checkPattern(arm.Pattern, subjT, true)
	if arm.Guard != nil {
		bo := types.Primitive{Kind: types.Bool}
		gt := c.checkExpr(arm.Guard)
		if !types.IsError(gt) && !types.Equal(gt, bo) {
			c.Diags.Errorf(diag.KindTypeMismatch, arm.Guard.Span(), "guard must be bool, found %s", render(gt))
		}
	}
}

// checkPattern type-checks p against want and defines every name it binds
// as a VarSymbol in the current scope, recording the binding list in
// c.Bindings for the interpreter's benefit. When defineSymbols is false
// (reserved for contexts that only need validation), bindings are still
// recorded but not defined in the symbol table.
func (c *Checker) checkPattern(p ast.Pattern, want types.Type, defineSymbols bool) {
	var bindings []Binding
	c.checkPatternRec(p, want, defineSymbols, &bindings)
	c.Bindings[p] = bindings
}

func (c *Checker) checkPatternRec(p ast.Pattern, want types.Type, defineSymbols bool, out *[]Binding) {
	switch pp := p.(type) {
	case *ast.WildcardPattern, *ast.RestPattern:
		// binds nothing
	case *ast.IdentPattern:
		b := Binding{Name: pp.Name, Type: want, Mutable: pp.IsVar}
		*out = append(*out, b)
		if defineSymbols {
			if _, err := c.Symtab.Define(symtab.Symbol{Name: pp.Name, Kind: symtab.VarSymbol, Span: pp.Span(), VarType: want, Mutable: pp.IsVar}); err != nil {
				c.Diags.Errorf(diag.KindDuplicateDefinition, pp.Span(), "%s", err.Error())
			}
		}
	case *ast.LiteralPattern:
		if !types.IsError(want) && !literalMatchesType(pp, want) {
			c.Diags.Errorf(diag.KindPatternTypeMismatch, pp.Span(), "pattern literal does not match scrutinee type %s", render(want))
		}
	case *ast.ConstructorPattern:
		c.checkConstructorPattern(pp, want, defineSymbols, out)
	case *ast.RecordPattern:
		c.checkRecordPattern(pp, want, defineSymbols, out)
	case *ast.TuplePattern:
		tup, ok := want.(types.Tuple)
		if !ok {
			if !types.IsError(want) {
				c.Diags.Errorf(diag.KindPatternTypeMismatch, pp.Span(), "tuple pattern against non-tuple type %s", render(want))
			}
			for _, el := range pp.Elems {
				c.checkPatternRec(el, types.Error, defineSymbols, out)
			}
			return
		}
		for i, el := range pp.Elems {
			et := types.Type(types.Error)
			if i < len(tup.Elems) {
				et = tup.Elems[i]
			}
			c.checkPatternRec(el, et, defineSymbols, out)
		}
	case *ast.OrPattern:
		for _, alt := range pp.Alts {
			var altBindings []Binding
			c.checkPatternRec(alt, want, defineSymbols, &altBindings)
			*out = append(*out, altBindings...)
		}
	case *ast.GuardedPattern:
		c.checkPatternRec(pp.Inner, want, defineSymbols, out)
	case *ast.RangePattern:
		if !types.IsError(want) && !types.IsNumeric(want) {
			if pr, ok := want.(types.Primitive); !ok || pr.Kind != types.Char {
				c.Diags.Errorf(diag.KindPatternTypeMismatch, pp.Span(), "range pattern requires a numeric or char scrutinee, found %s", render(want))
			}
		}
	case *ast.TypedPattern:
		ascribed := c.ResolveType(c.Symtab.Current(), pp.Type)
		if !types.IsError(want) && !types.Equal(ascribed, want) {
			c.Diags.Errorf(diag.KindPatternTypeMismatch, pp.Span(), "pattern ascription %s does not match scrutinee type %s", render(ascribed), render(want))
		}
		c.checkPatternRec(pp.Inner, ascribed, defineSymbols, out)
	}
}

func literalMatchesType(p *ast.LiteralPattern, t types.Type) bool {
	pr, ok := t.(types.Primitive)
	if !ok {
		return false
	}
	switch p.Kind {
	case ast.LitPatternInt:
		return pr.Kind.IsInteger()
	case ast.LitPatternFloat:
		return pr.Kind.IsFloat()
	case ast.LitPatternString:
		return pr.Kind == types.String
	case ast.LitPatternChar:
		return pr.Kind == types.Char
	case ast.LitPatternBool:
		return pr.Kind == types.Bool
	default:
		return false
	}
}

// checkConstructorPattern resolves a sum-type variant or the built-in
// Option/Result constructors by name and checks each sub-pattern against
// the variant's declared field types.
func (c *Checker) checkConstructorPattern(p *ast.ConstructorPattern, want types.Type, defineSymbols bool, out *[]Binding) {
	fields, ok := c.variantFieldTypes(p.Name, want)
	if !ok {
		for _, a := range p.Args {
			c.checkPatternRec(a, types.Error, defineSymbols, out)
		}
		return
	}
	if len(p.Args) != len(fields) {
		c.Diags.Errorf(diag.KindPatternTypeMismatch, p.Span(), "'%s' expects %d pattern argument(s), got %d", p.Name, len(fields), len(p.Args))
	}
	n := len(p.Args)
	if len(fields) < n {
		n = len(fields)
	}
	for i := 0; i < n; i++ {
		c.checkPatternRec(p.Args[i], fields[i], defineSymbols, out)
	}
	for _, a := range p.Args[n:] {
		c.checkPatternRec(a, types.Error, defineSymbols, out)
	}
}

// variantFieldTypes resolves a constructor pattern name's field types,
// handling the built-in Option/Result/List shapes specially since they
// have no user-visible TypeSymbol.Variants entry.
func (c *Checker) variantFieldTypes(name string, want types.Type) ([]types.Type, bool) {
	switch name {
	case "Some":
		if o, ok := want.(types.OptionT); ok {
			return []types.Type{o.Inner}, true
		}
		return nil, false
	case "None":
		return nil, true
	case "Ok":
		if r, ok := want.(types.ResultT); ok {
			return []types.Type{r.Ok}, true
		}
		return nil, false
	case "Err":
		if r, ok := want.(types.ResultT); ok {
			return []types.Type{r.Err}, true
		}
		return nil, false
	case "Cons":
		if l, ok := want.(types.List); ok {
			return []types.Type{l.Elem, l}, true
		}
		return nil, false
	case "Nil":
		return nil, true
	}
	typeName := baseTypeName(want)
	if typeName == "" {
		return nil, false
	}
	symID, ok := c.Symtab.Lookup(typeName)
	if !ok {
		return nil, false
	}
	sym := c.Symtab.Symbol(symID)
	for _, v := range sym.Variants {
		if v.Name == name {
			return v.Fields, true
		}
	}
	return nil, false
}

func baseTypeName(t types.Type) string {
	switch tt := t.(type) {
	case types.Named:
		return tt.Name
	case types.Instantiated:
		return tt.Base
	default:
		return ""
	}
}

func (c *Checker) checkRecordPattern(p *ast.RecordPattern, want types.Type, defineSymbols bool, out *[]Binding) {
	symID, ok := c.Symtab.Lookup(p.TypeName)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedType, p.Span(), "undefined type '%s'", p.TypeName)
		for _, f := range p.Fields {
			c.checkPatternRec(f.Pattern, types.Error, defineSymbols, out)
		}
		return
	}
	sym := c.Symtab.Symbol(symID)
	fieldTypes := map[string]types.Type{}
	for _, f := range sym.Fields {
		fieldTypes[f.Name] = f.Type
	}
	for _, f := range p.Fields {
		ft, ok := fieldTypes[f.Name]
		if !ok {
			c.Diags.Errorf(diag.KindNoSuchField, p.Span(), "%s has no field '%s'", p.TypeName, f.Name)
			ft = types.Error
		}
		c.checkPatternRec(f.Pattern, ft, defineSymbols, out)
	}
}

// checkMatchExhaustiveness runs the advisory pattern compiler over a
// match's arms and reports non-exhaustiveness / unreachable arms as
// diagnostics. It never affects the interpreter's own linear match
// semantics.
func (c *Checker) checkMatchExhaustiveness(span ast.Span, subjT types.Type, arms []ast.MatchArm) {
	if types.IsError(subjT) {
		return
	}
	dtreeArms := make([]dtree.Arm, len(arms))
	for i, a := range arms {
		dtreeArms[i] = dtree.Arm{Pattern: a.Pattern, Guarded: a.Guard != nil}
	}
	v := dtree.Compile(dtreeArms, subjT, symtabResolver{c.Symtab})
	if !v.Exhaustive {
		c.Diags.Errorf(diag.KindNonExhaustive, span, "non-exhaustive match, missing: %s", v.Missing[0])
	}
	for _, idx := range v.Unreachable {
		c.Diags.Warnf(diag.KindUnreachablePattern, arms[idx].Pattern.Span(), "unreachable pattern")
	}
}

// symtabResolver adapts a symbol table to dtree.Resolver, supplying the
// finite constructor sets of Option, Result, List, and user sum types.
type symtabResolver struct {
	st *symtab.Table
}

func (r symtabResolver) Constructors(t types.Type) ([]dtree.Ctor, bool) {
	switch tt := t.(type) {
	case types.OptionT:
		return []dtree.Ctor{
			{Name: "Some", Fields: []types.Type{tt.Inner}},
			{Name: "None"},
		}, true
	case types.ResultT:
		return []dtree.Ctor{
			{Name: "Ok", Fields: []types.Type{tt.Ok}},
			{Name: "Err", Fields: []types.Type{tt.Err}},
		}, true
	case types.List:
		return []dtree.Ctor{
			{Name: "Nil"},
			{Name: "Cons", Fields: []types.Type{tt.Elem, tt}},
		}, true
	case types.Tuple:
		return []dtree.Ctor{{Name: "#tuple", Fields: tt.Elems}}, true
	case types.Primitive:
		if tt.Kind == types.Bool {
			return []dtree.Ctor{{Name: "true"}, {Name: "false"}}, true
		}
		return nil, false
	case types.Named:
		symID, ok := r.st.Lookup(tt.Name)
		if !ok {
			return nil, false
		}
		sym := r.st.Symbol(symID)
		if len(sym.Variants) == 0 {
			return nil, false
		}
		out := make([]dtree.Ctor, len(sym.Variants))
		for i, v := range sym.Variants {
			out[i] = dtree.Ctor{Name: v.Name, Fields: v.Fields}
		}
		return out, true
	case types.Instantiated:
		symID, ok := r.st.Lookup(tt.Base)
		if !ok {
			return nil, false
		}
		sym := r.st.Symbol(symID)
		if len(sym.Variants) == 0 {
			return nil, false
		}
		subst := map[string]types.Type{}
		for i, g := range sym.TypeGenerics {
			if i < len(tt.Args) {
				subst[g.Name] = tt.Args[i]
			}
		}
		out := make([]dtree.Ctor, len(sym.Variants))
		for i, v := range sym.Variants {
			fields := make([]types.Type, len(v.Fields))
			for j, f := range v.Fields {
				fields[j] = types.Substitute(f, subst)
			}
			out[i] = dtree.Ctor{Name: v.Name, Fields: fields}
		}
		return out, true
	default:
		return nil, false
	}
}
