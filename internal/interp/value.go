// Package interp implements Kira's tree-walking interpreter: strict
// left-to-right evaluation over the checked AST, closures that
// capture their defining environment, linear arm-by-arm pattern matching,
// and a small capability-gated host surface for std.io/std.fs.
package interp

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/kira-lang/kira/internal/ast"
)

// Value is a runtime Kira value. Every concrete value type except UnitValue
// (a plain struct value) is a pointer, so identity-sensitive operations
// (closures, mutable cells) stay cheap to compare and pass around.
type Value interface {
	Type() string
	String() string
}

// IntValue holds an arbitrary-width integer tagged with its declared
// primitive width; arithmetic on it wraps the result to that width
// (two's complement) in the caller (see ops.go), not in IntValue itself.
type IntValue struct {
	Val   *big.Int
	Width string // "i8".."i128", "u8".."u128"
}

func NewInt(v int64, width string) *IntValue { return &IntValue{Val: big.NewInt(v), Width: width} }

func (i *IntValue) Type() string   { return i.Width }
func (i *IntValue) String() string { return i.Val.String() }

// FloatValue holds an f32 or f64.
type FloatValue struct {
	Val   float64
	Width string // "f32" or "f64"
}

func (f *FloatValue) Type() string   { return f.Width }
func (f *FloatValue) String() string { return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f.Val), "0"), ".") }

// StringValue is a UTF-8 string.
type StringValue struct{ Val string }

func (s *StringValue) Type() string   { return "string" }
func (s *StringValue) String() string { return s.Val }

// CharValue is a single Unicode code point.
type CharValue struct{ Val rune }

func (c *CharValue) Type() string   { return "char" }
func (c *CharValue) String() string { return string(c.Val) }

// BoolValue is true or false.
type BoolValue struct{ Val bool }

func (b *BoolValue) Type() string { return "bool" }
func (b *BoolValue) String() string {
	if b.Val {
		return "true"
	}
	return "false"
}

// UnitValue is the sole inhabitant of void.
type UnitValue struct{}

func (UnitValue) Type() string   { return "void" }
func (UnitValue) String() string { return "()" }

var Unit Value = UnitValue{}

// TupleValue is a fixed-arity heterogeneous tuple.
type TupleValue struct{ Elems []Value }

func (t *TupleValue) Type() string { return "tuple" }
func (t *TupleValue) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ArrayValue is a fixed-size mutable-element array.
type ArrayValue struct{ Elems []Value }

func (a *ArrayValue) Type() string { return "array" }
func (a *ArrayValue) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RecordValue is a named product-type instance.
type RecordValue struct {
	TypeName string
	Fields   map[string]Value
	Order    []string // field declaration order, for stable String()
}

func (r *RecordValue) Type() string { return r.TypeName }
func (r *RecordValue) String() string {
	parts := make([]string, 0, len(r.Order))
	for _, name := range r.Order {
		parts = append(parts, fmt.Sprintf("%s: %s", name, r.Fields[name].String()))
	}
	return fmt.Sprintf("%s { %s }", r.TypeName, strings.Join(parts, ", "))
}

// VariantValue is a sum-type instance: a constructor tag plus its field
// values, e.g. Some(42), Cons(1, Nil), Ok("done").
type VariantValue struct {
	TypeName string
	Ctor     string
	Fields   []Value
}

func (v *VariantValue) Type() string { return v.TypeName }
func (v *VariantValue) String() string {
	if len(v.Fields) == 0 {
		return v.Ctor
	}
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s(%s)", v.Ctor, strings.Join(parts, ", "))
}

// ClosureValue is a user-defined function or closure literal, carrying
// the environment active at its definition site: capture is by defining
// scope, never by call site.
type ClosureValue struct {
	Name     string // "" for anonymous closures
	Params   []string
	Body     *ast.Block
	Defined  *Env
	IsEffect bool
}

func (c *ClosureValue) Type() string   { return "closure" }
func (c *ClosureValue) String() string {
	if c.Name != "" {
		return fmt.Sprintf("<function %s>", c.Name)
	}
	return "<closure>"
}

// BuiltinValue wraps a host-implemented function from the standard
// library surface.
type BuiltinValue struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (b *BuiltinValue) Type() string   { return "builtin" }
func (b *BuiltinValue) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// ModuleValue is a namespace value bound by `import a.b.c as alias`.
type ModuleValue struct {
	Path string
	Env  *Env
}

func (m *ModuleValue) Type() string   { return "module" }
func (m *ModuleValue) String() string { return fmt.Sprintf("<module %s>", m.Path) }

func truthy(v Value) bool {
	b, ok := v.(*BoolValue)
	return ok && b.Val
}
