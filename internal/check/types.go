// Package check implements Kira's type+effect checker: declaration-
// ordered walking, explicit-annotation type assignment (never
// inference), mixed-integer arithmetic/comparison, generic instantiation
// by explicit substitution, effect propagation and `?`-operator
// validation, and match exhaustiveness via internal/dtree.
package check

import (
	"fmt"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/diag"
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// Checker walks one or more loaded modules, recording a resolved type for
// every expression in Types (a side table keyed by AST node identity,
// never written into the AST nodes themselves) and accumulating
// diagnostics in Diags.
type Checker struct {
	Symtab *symtab.Table
	Diags  *diag.Bag

	Types    map[ast.Expr]types.Type
	Bindings map[ast.Pattern][]Binding

	funcStack []funcCtx
	impls     map[implKey]*ast.ImplDecl
}

// Binding is one name a pattern introduces, with its resolved type: the
// annotation the interpreter consumes instead of re-deriving types at
// runtime.
type Binding struct {
	Name    string
	Type    types.Type
	Mutable bool
}

// funcCtx tracks the effect/return-type context of the function body
// currently being checked, so nested expressions can validate `?` and
// effect-violating calls without threading extra parameters everywhere.
type funcCtx struct {
	effect     types.Effect
	returnType types.Type
	typeParams map[string]symtab.GenericParamInfo
	selfType   types.Type // nil outside an impl method
}

// New creates a Checker over an already-populated symbol table (typically
// one produced by internal/loader), seeding it with the standard library
// module tree if it isn't already registered.
func New(st *symtab.Table) *Checker {
	registerStdlib(st)
	return &Checker{
		Symtab:   st,
		Diags:    &diag.Bag{},
		Types:    make(map[ast.Expr]types.Type),
		Bindings: make(map[ast.Pattern][]Binding),
		impls:    make(map[implKey]*ast.ImplDecl),
	}
}

func (c *Checker) typeOf(e ast.Expr) types.Type {
	if t, ok := c.Types[e]; ok {
		return t
	}
	return types.Error
}

func (c *Checker) setType(e ast.Expr, t types.Type) types.Type {
	c.Types[e] = t
	return t
}

func (c *Checker) cur() *funcCtx {
	if len(c.funcStack) == 0 {
		return nil
	}
	return &c.funcStack[len(c.funcStack)-1]
}

func (c *Checker) pushFunc(fc funcCtx) { c.funcStack = append(c.funcStack, fc) }
func (c *Checker) popFunc()            { c.funcStack = c.funcStack[:len(c.funcStack)-1] }

// ---------------------------------------------------------------------
// Type-expression resolution (ast.TypeExpr -> types.Type)
// ---------------------------------------------------------------------

// ResolveType converts a parser-shaped type annotation into a resolved
// type, looking up named/generic references in scope and validating
// generic-argument arity against the referenced definition.
func (c *Checker) ResolveType(scope symtab.ScopeId, te ast.TypeExpr) types.Type {
	if te == nil {
		return types.VoidType
	}
	switch t := te.(type) {
	case *ast.PrimitiveType:
		return types.Primitive{Kind: types.PrimKind(t.Kind)}
	case *ast.SelfType:
		return types.SelfT{}
	case *ast.TypeVarExpr:
		return types.TypeVar{Name: t.Name, Bounds: t.Bounds}
	case *ast.NamedType:
		return c.resolveNamedOrBuiltin(scope, t.Span(), t.Name, nil)
	case *ast.GenericType:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.ResolveType(scope, a)
		}
		return c.resolveNamedOrBuiltin(scope, t.Span(), t.Name, args)
	case *ast.PathType:
		sym, ok := c.Symtab.LookupQualifiedPub(t.Path, t.Name)
		if !ok {
			c.Diags.Errorf(diag.KindUndefinedType, t.Span(), "undefined type '%s.%s'", joinDot(t.Path), t.Name)
			return types.Error
		}
		s := c.Symtab.Symbol(sym)
		if len(t.Args) == 0 {
			return types.Named{Name: s.Name}
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.ResolveType(scope, a)
		}
		return types.Instantiated{Base: s.Name, Args: args}
	case *ast.FuncType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.ResolveType(scope, p)
		}
		eff := types.Pure
		if t.IsEffect {
			eff = types.IO
		}
		ret := c.ResolveType(scope, t.Return)
		if isResultLike(ret) {
			eff = types.Join(eff, types.Result)
		}
		return types.Func{Params: params, Return: ret, Effect: eff}
	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.ResolveType(scope, e)
		}
		return types.Tuple{Elems: elems}
	case *ast.ArrayType:
		return types.Array{Elem: c.ResolveType(scope, t.Elem), Size: t.Size}
	case *ast.IOType:
		return types.IOT{Inner: c.ResolveType(scope, t.Inner)}
	case *ast.ResultType:
		return types.ResultT{Ok: c.ResolveType(scope, t.Ok), Err: c.ResolveType(scope, t.Err)}
	case *ast.OptionType:
		return types.OptionT{Inner: c.ResolveType(scope, t.Inner)}
	default:
		return types.Error
	}
}

// resolveNamedOrBuiltin resolves a bare or generic name, recognizing the
// built-in generics (List, Option, Result, IO) that the surface grammar
// otherwise also expresses through dedicated ast.TypeExpr kinds, and
// falling back to a symbol-table lookup with arity validation for
// everything else.
func (c *Checker) resolveNamedOrBuiltin(scope symtab.ScopeId, span ast.Span, name string, args []types.Type) types.Type {
	switch name {
	case "List":
		if len(args) != 1 {
			c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'List' takes exactly 1 type argument, got %d", len(args))
			return types.Error
		}
		return types.List{Elem: args[0]}
	case "Option":
		if len(args) != 1 {
			c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'Option' takes exactly 1 type argument, got %d", len(args))
			return types.Error
		}
		return types.OptionT{Inner: args[0]}
	case "Result":
		if len(args) != 2 {
			c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'Result' takes exactly 2 type arguments, got %d", len(args))
			return types.Error
		}
		return types.ResultT{Ok: args[0], Err: args[1]}
	case "IO":
		if len(args) != 1 {
			c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'IO' takes exactly 1 type argument, got %d", len(args))
			return types.Error
		}
		return types.IOT{Inner: args[0]}
	}
	symID, ok := c.Symtab.Lookup(name)
	if !ok {
		c.Diags.Errorf(diag.KindUndefinedType, span, "undefined type '%s'", name)
		return types.Error
	}
	sym := c.Symtab.Symbol(symID)
	if sym.Kind != symtab.TypeSymbol {
		c.Diags.Errorf(diag.KindUndefinedType, span, "'%s' is not a type", name)
		return types.Error
	}
	if len(sym.TypeGenerics) == 0 {
		if len(args) != 0 {
			c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'%s' takes no type arguments, got %d", name, len(args))
			return types.Error
		}
		return types.Named{Name: name}
	}
	if len(args) != len(sym.TypeGenerics) {
		c.Diags.Errorf(diag.KindWrongTypeArgCount, span, "'%s' expects %d type argument(s), got %d", name, len(sym.TypeGenerics), len(args))
		return types.Error
	}
	return types.Instantiated{Base: name, Args: args}
}

func isResultLike(t types.Type) bool {
	switch tt := t.(type) {
	case types.ResultT:
		return true
	case types.IOT:
		return isResultLike(tt.Inner)
	default:
		return false
	}
}

func joinDot(path []string) string {
	out := ""
	for i, s := range path {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// render quotes a type name for diagnostic messages.
func render(t types.Type) string {
	if t == nil {
		return "'?'"
	}
	return fmt.Sprintf("'%s'", t.String())
}
