// Package types defines Kira's resolved type representation, distinct
// from the parser-shaped internal/ast type nodes, and the structural
// equality/compatibility rules the checker applies to it.
//
// The checker interns no structural types: two types are compared by
// recursive structural equality every time, never by a shared identity.
package types

import (
	"fmt"
	"strings"
)

// Type is any resolved type. Implementations are comparable with Equal and
// self-describing with String; there is no separate "kind" tag beyond the
// Go dynamic type itself.
type Type interface {
	String() string
	typeNode()
}

// Effect is the four-value effect lattice: Pure is the default for `fn`;
// IO is declared with `effect fn`; a Result-typed return
// raises Pure/IO to Result/IOResult. Effect -> Pure is never implicit; Pure
// -> Effect is forbidden at call sites (see internal/check).
type Effect int

const (
	Pure Effect = iota
	IO
	Result
	IOResult
)

func (e Effect) String() string {
	switch e {
	case Pure:
		return "pure"
	case IO:
		return "io"
	case Result:
		return "result"
	case IOResult:
		return "io_result"
	default:
		return "?"
	}
}

// HasIO reports whether e includes the io component.
func (e Effect) HasIO() bool { return e == IO || e == IOResult }

// HasResult reports whether e includes the result (fallible) component.
func (e Effect) HasResult() bool { return e == Result || e == IOResult }

// Join combines the effect a callee contributes into a caller's own
// effect: io + result = io_result, and a component already present is
// idempotent. Used when the checker raises an enclosing function's
// inferred effect surface is never inferred — but a return type of
// `Result[_,_]` raising a declared `effect fn`'s tag from IO to IOResult
// uses exactly this join.
func Join(a, b Effect) Effect {
	io := a.HasIO() || b.HasIO()
	res := a.HasResult() || b.HasResult()
	switch {
	case io && res:
		return IOResult
	case io:
		return IO
	case res:
		return Result
	default:
		return Pure
	}
}

// CanCall reports whether a caller with effect `caller` may call a callee
// with effect `callee`. Pure callers may only call pure callees; any
// effect caller may call anything (effect -> pure is free).
func CanCall(caller, callee Effect) bool {
	return caller != Pure || callee == Pure
}

// ---------------------------------------------------------------------
// Concrete types
// ---------------------------------------------------------------------

// PrimKind mirrors ast.PrimitiveKind for resolved types.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Char
	String
	Void
)

var primNames = [...]string{
	"i8", "i16", "i32", "i64", "i128",
	"u8", "u16", "u32", "u64", "u128",
	"f32", "f64", "bool", "char", "string", "void",
}

func (k PrimKind) String() string {
	if int(k) < len(primNames) {
		return primNames[k]
	}
	return "?"
}

// IsInteger reports whether k is a signed/unsigned integer width.
func (k PrimKind) IsInteger() bool { return k <= U128 }

// IsSigned reports whether k is a signed integer width.
func (k PrimKind) IsSigned() bool { return k <= I128 }

// IsFloat reports whether k is f32 or f64.
func (k PrimKind) IsFloat() bool { return k == F32 || k == F64 }

// bitWidth returns the bit width of an integer PrimKind for the
// "wider of the two" arithmetic-result rule; 0 for non-integers.
func (k PrimKind) bitWidth() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case I64, U64:
		return 64
	case I128, U128:
		return 128
	default:
		return 0
	}
}

// Primitive is a built-in scalar type.
type Primitive struct{ Kind PrimKind }

func (Primitive) typeNode()        {}
func (p Primitive) String() string { return p.Kind.String() }

// VoidType is the nullary unit type returned by a function with no
// explicit return value.
var VoidType Type = Primitive{Kind: Void}

// ErrorT is the poison type assigned to an unresolvable subexpression.
// It participates in no further constraints: every compatibility check
// involving Error silently succeeds so a single root-cause diagnostic
// does not cascade into a wall of follow-on errors.
type ErrorT struct{}

func (ErrorT) typeNode()        {}
func (ErrorT) String() string   { return "<error>" }

// Error is the shared poison-type value.
var Error Type = ErrorT{}

// IsError reports whether t is the poison type.
func IsError(t Type) bool { _, ok := t.(ErrorT); return ok }

// SelfT is the `Self` placeholder type inside a trait/impl signature.
type SelfT struct{}

func (SelfT) typeNode()      {}
func (SelfT) String() string { return "Self" }

// TypeVar is an unresolved generic parameter reference, carrying its
// trait bounds. It only ever appears inside a generic declaration's own
// signature; calls must supply concrete type arguments (no inference).
type TypeVar struct {
	Name   string
	Bounds []string
}

func (TypeVar) typeNode()      {}
func (t TypeVar) String() string { return t.Name }

// Named is a reference to a user type definition with no type arguments.
type Named struct {
	Name string
}

func (Named) typeNode()        {}
func (n Named) String() string { return n.Name }

// Instantiated is a generic base (sum/product/alias/trait) applied to
// concrete type arguments, e.g. `Option[i32]`, `Tree[string]`.
type Instantiated struct {
	Base string
	Args []Type
}

func (Instantiated) typeNode() {}
func (i Instantiated) String() string {
	parts := make([]string, len(i.Args))
	for idx, a := range i.Args {
		parts[idx] = a.String()
	}
	return fmt.Sprintf("%s[%s]", i.Base, strings.Join(parts, ", "))
}

// Func is a resolved function type: parameter types, return type, and the
// effect tag it carries at call sites.
type Func struct {
	Params []Type
	Return Type
	Effect Effect
}

func (Func) typeNode() {}
func (f Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	sig := fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
	switch f.Effect {
	case IO:
		return "IO " + sig
	case Result:
		return "Result " + sig
	case IOResult:
		return "IO Result " + sig
	default:
		return sig
	}
}

// Tuple is a fixed-arity tuple type.
type Tuple struct{ Elems []Type }

func (Tuple) typeNode() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Array is a fixed-size `[T; N]` array type.
type Array struct {
	Elem Type
	Size int64
}

func (Array) typeNode()      {}
func (a Array) String() string { return fmt.Sprintf("[%s; %d]", a.Elem.String(), a.Size) }

// List is the built-in singly-linked list type `List[T]`, matched
// structurally by its finite constructor set {Cons, Nil} in exhaustiveness
// checking. It is a first-class Instantiated-like type rather than a
// generic user TypeDecl because it is wired into the language itself.
type List struct{ Elem Type }

func (List) typeNode()        {}
func (l List) String() string { return fmt.Sprintf("List[%s]", l.Elem.String()) }

// IOT is `IO[T]`.
type IOT struct{ Inner Type }

func (IOT) typeNode()        {}
func (t IOT) String() string { return fmt.Sprintf("IO[%s]", t.Inner.String()) }

// ResultT is `Result[T, E]`.
type ResultT struct{ Ok, Err Type }

func (ResultT) typeNode() {}
func (t ResultT) String() string {
	return fmt.Sprintf("Result[%s, %s]", t.Ok.String(), t.Err.String())
}

// OptionT is `Option[T]`.
type OptionT struct{ Inner Type }

func (OptionT) typeNode()        {}
func (t OptionT) String() string { return fmt.Sprintf("Option[%s]", t.Inner.String()) }

// ---------------------------------------------------------------------
// Equality and compatibility
// ---------------------------------------------------------------------

// Equal reports structural equality between a and b under Kira's
// compatibility rules: integer primitives of the same signedness class
// are NOT equal to each other here (that relaxation is exposed separately
// via SameSignedness/ArithResult) — Equal is the strict "assignment
// requires the same type" relation used by `let x: T = e`.
func Equal(a, b Type) bool {
	if IsError(a) || IsError(b) {
		return true
	}
	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case ErrorT:
		return true
	case SelfT:
		_, ok := b.(SelfT)
		return ok
	case TypeVar:
		bt, ok := b.(TypeVar)
		return ok && at.Name == bt.Name
	case Named:
		bt, ok := b.(Named)
		return ok && at.Name == bt.Name
	case Instantiated:
		bt, ok := b.(Instantiated)
		if !ok || at.Base != bt.Base || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case Func:
		bt, ok := b.(Func)
		if !ok || len(at.Params) != len(bt.Params) || at.Effect != bt.Effect {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case Tuple:
		bt, ok := b.(Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !Equal(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		bt, ok := b.(Array)
		return ok && at.Size == bt.Size && Equal(at.Elem, bt.Elem)
	case List:
		bt, ok := b.(List)
		return ok && Equal(at.Elem, bt.Elem)
	case IOT:
		bt, ok := b.(IOT)
		return ok && Equal(at.Inner, bt.Inner)
	case ResultT:
		bt, ok := b.(ResultT)
		return ok && Equal(at.Ok, bt.Ok) && Equal(at.Err, bt.Err)
	case OptionT:
		bt, ok := b.(OptionT)
		return ok && Equal(at.Inner, bt.Inner)
	default:
		return false
	}
}

// SameSignedness reports whether a and b are both integer primitives of
// the same signedness class (both signed, or both unsigned): the
// relaxation comparison/equality operators grant across integer widths.
func SameSignedness(a, b Type) bool {
	ap, aok := a.(Primitive)
	bp, bok := b.(Primitive)
	if !aok || !bok || !ap.Kind.IsInteger() || !bp.Kind.IsInteger() {
		return false
	}
	return ap.Kind.IsSigned() == bp.Kind.IsSigned()
}

// ArithResult computes the result type of a binary arithmetic op (+ - * /
// %) between two numeric operand types: the wider of two same-class
// integers, the common float width, or nil if the operands are
// incompatible (mixed signedness, or a float paired with a non-identical
// float width).
func ArithResult(a, b Type) (Type, bool) {
	ap, aok := a.(Primitive)
	bp, bok := b.(Primitive)
	if !aok || !bok {
		return nil, false
	}
	switch {
	case ap.Kind.IsInteger() && bp.Kind.IsInteger():
		if ap.Kind.IsSigned() != bp.Kind.IsSigned() {
			return nil, false
		}
		if ap.Kind.bitWidth() >= bp.Kind.bitWidth() {
			return ap, true
		}
		return bp, true
	case ap.Kind.IsFloat() && bp.Kind.IsFloat():
		if ap.Kind != bp.Kind {
			return nil, false
		}
		return ap, true
	default:
		return nil, false
	}
}

// IsNumeric reports whether t is an integer or float primitive.
func IsNumeric(t Type) bool {
	p, ok := t.(Primitive)
	return ok && (p.Kind.IsInteger() || p.Kind.IsFloat())
}

// Substitute recursively replaces each TypeVar named in subst with its
// mapped concrete type throughout t, producing a fresh instantiated copy.
// This is the whole of Kira's generic instantiation: no unification, just
// substitution of explicitly supplied type arguments.
func Substitute(t Type, subst map[string]Type) Type {
	switch tt := t.(type) {
	case TypeVar:
		if r, ok := subst[tt.Name]; ok {
			return r
		}
		return tt
	case Instantiated:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Substitute(a, subst)
		}
		return Instantiated{Base: tt.Base, Args: args}
	case Func:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(p, subst)
		}
		return Func{Params: params, Return: Substitute(tt.Return, subst), Effect: tt.Effect}
	case Tuple:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = Substitute(e, subst)
		}
		return Tuple{Elems: elems}
	case Array:
		return Array{Elem: Substitute(tt.Elem, subst), Size: tt.Size}
	case List:
		return List{Elem: Substitute(tt.Elem, subst)}
	case IOT:
		return IOT{Inner: Substitute(tt.Inner, subst)}
	case ResultT:
		return ResultT{Ok: Substitute(tt.Ok, subst), Err: Substitute(tt.Err, subst)}
	case OptionT:
		return OptionT{Inner: Substitute(tt.Inner, subst)}
	default:
		return t
	}
}
