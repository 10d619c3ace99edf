package interp

import (
	"fmt"

	"github.com/kira-lang/kira/internal/ast"
)

// Interp evaluates a checked program. It carries no type information of
// its own: the checker has already validated every expression, so the
// interpreter trusts shapes and focuses purely on execution.
type Interp struct {
	Globals *Env
	Host    HostServices
}

// New creates an interpreter with the standard library registered in its
// global environment. A nil host gets the default fully-granted Host
// (the `kira run`/REPL trusted-embedder case); an embedder wanting a
// sandbox passes a Host built with NewSandboxedHost and only the
// capabilities it trusts the program to use.
func New(host HostServices) *Interp {
	if host == nil {
		host = NewHost()
	}
	it := &Interp{Globals: NewEnv(), Host: host}
	registerStdlib(it.Globals, host)
	return it
}

// returnSignal unwinds evalBlock/evalStmt up to the enclosing call frame.
type returnSignal struct{ val Value }

func (returnSignal) Error() string { return "return outside a function call" }

// breakSignal unwinds up to the enclosing for loop.
type breakSignal struct{ label string }

func (breakSignal) Error() string { return "break outside a loop" }

// tryUnwind carries a `?` operator's Err/None short-circuit up to the
// enclosing function call, which repackages it as that function's return
// value: `?` desugars to an early return of the failure case.
type tryUnwind struct{ val Value }

func (tryUnwind) Error() string { return "'?' propagation outside a function call" }

// runtimeError is a non-recoverable evaluation failure (a postcondition
// the checker guarantees cannot happen on a well-typed program, or a host
// I/O failure not represented as a Result).
type runtimeError struct{ msg string }

func (e *runtimeError) Error() string { return e.msg }

func rtErrf(format string, args ...any) error {
	return &runtimeError{msg: fmt.Sprintf(format, args...)}
}

// LoadDecls registers every top-level declaration of prog into the
// interpreter's global environment: functions as closures, consts and
// top-level lets as their evaluated initializer value.
func (it *Interp) LoadDecls(prog *ast.Program) error {
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Body != nil {
			params := make([]string, len(fd.Params))
			for i, p := range fd.Params {
				params[i] = p.Name
			}
			it.Globals.Define(fd.Name, &ClosureValue{
				Name: fd.Name, Params: params, Body: fd.Body,
				Defined: it.Globals, IsEffect: fd.Effect != ast.EffectPure,
			}, false)
		}
	}
	for _, d := range prog.Decls {
		switch dd := d.(type) {
		case *ast.ConstDecl:
			v, err := it.evalExpr(dd.Value, it.Globals)
			if err != nil {
				return err
			}
			it.Globals.Define(dd.Name, v, false)
		case *ast.TopLevelLetDecl:
			v, err := it.evalExpr(dd.Init, it.Globals)
			if err != nil {
				return err
			}
			it.Globals.Define(dd.Name, v, false)
		case *ast.ImplDecl:
			selfTypeName := implForTypeName(dd.ForType)
			for _, m := range dd.Methods {
				if m.Body == nil {
					continue
				}
				params := make([]string, len(m.Params))
				for i, p := range m.Params {
					params[i] = p.Name
				}
				it.Globals.Define(methodKey(selfTypeName, m.Name), &ClosureValue{
					Name: m.Name, Params: params, Body: m.Body,
					Defined: it.Globals, IsEffect: m.Effect != ast.EffectPure,
				}, false)
			}
		}
	}
	return nil
}

func methodKey(typeName, method string) string { return typeName + "::" + method }

func implForTypeName(te ast.TypeExpr) string {
	switch t := te.(type) {
	case *ast.NamedType:
		return t.Name
	case *ast.GenericType:
		return t.Name
	default:
		return ""
	}
}

// RunMain invokes the program's `main` function, if one is defined.
func (it *Interp) RunMain() (Value, error) {
	v, ok := it.Globals.Get("main")
	if !ok {
		return Unit, nil
	}
	fn, ok := v.(*ClosureValue)
	if !ok {
		return nil, rtErrf("'main' is not a function")
	}
	return it.call(fn, nil)
}

// call invokes a closure with already-evaluated arguments, binding
// params in a fresh frame off the closure's captured defining
// environment (never the caller's environment).
func (it *Interp) call(fn *ClosureValue, args []Value) (Value, error) {
	frame := fn.Defined.Child()
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

// evalBlock evaluates a statement sequence, returning the trailing
// expression-statement's value (or Unit) unless a control-flow signal
// unwinds through it.
func (it *Interp) evalBlock(b *ast.Block, env *Env) (Value, error) {
	if b == nil {
		return Unit, nil
	}
	child := env.Child()
	result := Value(Unit)
	for i, stmt := range b.Stmts {
		v, err := it.evalStmt(stmt, child)
		if err != nil {
			return nil, err
		}
		if i == len(b.Stmts)-1 {
			if _, ok := stmt.(*ast.ExprStmt); ok {
				result = v
			}
		}
	}
	return result, nil
}
