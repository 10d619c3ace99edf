// Package ast defines the value-type AST for Kira: expressions, statements,
// patterns, types, and declarations, all carrying source spans. Every node
// in a parsed program is allocated from one Arena and released with it.
package ast

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	Line   int
	Col    int
	Offset int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Span is a half-open range [Start, End) in a source file.
type Span struct {
	File  string
	Start Pos
	End   Pos
}

func (s Span) String() string {
	if s.File == "" {
		return s.Start.String()
	}
	return fmt.Sprintf("%s:%s", s.File, s.Start.String())
}

// Node is the base interface every AST node implements.
type Node interface {
	Span() Span
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is any pattern node.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is any type-annotation AST node (distinct from the checker's
// resolved types in package types).
type TypeExpr interface {
	Node
	typeNode()
}

// Decl is any top-level declaration node.
type Decl interface {
	Node
	declNode()
}

// base embeds a Span and gives every concrete node its Span() method.
type base struct{ Sp Span }

func (b base) Span() Span { return b.Sp }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// IntLit is an integer literal, e.g. 42, with an optional explicit width
// suffix captured by the parser (empty means unsuffixed; the checker types
// an unsuffixed literal as i64, independent of its context).
type IntLit struct {
	base
	Value int64
	Width string // e.g. "i32", "u64"; "" if unsuffixed
}

func (*IntLit) exprNode() {}

// FloatLit is a floating point literal.
type FloatLit struct {
	base
	Value float64
	Width string // "f32" or "f64"; "" defaults to f64
}

func (*FloatLit) exprNode() {}

// StringLit is a plain (non-interpolated) string literal.
type StringLit struct {
	base
	Value string
}

func (*StringLit) exprNode() {}

// CharLit is a single Unicode scalar value literal.
type CharLit struct {
	base
	Value rune
}

func (*CharLit) exprNode() {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) exprNode() {}

// Ident is an identifier reference, optionally carrying explicit generic
// arguments (`f[i32, string](...)`).
type Ident struct {
	base
	Name     string
	TypeArgs []TypeExpr
}

func (*Ident) exprNode() {}

// SelfExpr is the `self` receiver expression inside an impl method body.
type SelfExpr struct{ base }

func (*SelfExpr) exprNode() {}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is `op operand` (`-x`, `!b`).
type UnaryExpr struct {
	base
	Op      string
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// FieldAccess is `expr.field`.
type FieldAccess struct {
	base
	Target Expr
	Field  string
}

func (*FieldAccess) exprNode() {}

// IndexAccess is `expr[index]`.
type IndexAccess struct {
	base
	Target Expr
	Index  Expr
}

func (*IndexAccess) exprNode() {}

// TupleAccess is `expr.0`, `expr.1`, ...
type TupleAccess struct {
	base
	Target Expr
	Index  int
}

func (*TupleAccess) exprNode() {}

// Call is a function call `callee(args...)`; explicit generic arguments are
// carried on the callee Ident when present.
type Call struct {
	base
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// MethodCall is `receiver.method(args...)`.
type MethodCall struct {
	base
	Receiver Expr
	Method   string
	TypeArgs []TypeExpr
	Args     []Expr
}

func (*MethodCall) exprNode() {}

// ClosureParam is one parameter of a closure literal.
type ClosureParam struct {
	Name string
	Type TypeExpr // always explicit; no parameter type is ever inferred
}

// Closure is a `fn(params) -> ret { body }` closure expression. Closures
// capture the environment in which they are defined, not the environment
// of their eventual caller (see interp.Environment).
type Closure struct {
	base
	Params     []ClosureParam
	ReturnType TypeExpr
	IsEffect   bool
	Body       *Block
}

func (*Closure) exprNode() {}

// MatchArm is one arm of a match expression or statement.
type MatchArm struct {
	Sp      Span
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
}

// MatchExpr is a match used in expression position; every arm's Body must
// type-agree under the checker's block-expression typing rule.
type MatchExpr struct {
	base
	Subject Expr
	Arms    []MatchArm
}

func (*MatchExpr) exprNode() {}

// TupleLit is `(a, b, c)`.
type TupleLit struct {
	base
	Elems []Expr
}

func (*TupleLit) exprNode() {}

// ArrayLit is `[a, b, c]`.
type ArrayLit struct {
	base
	Elems []Expr
}

func (*ArrayLit) exprNode() {}

// RecordField is one `name: value` entry of a record literal.
type RecordField struct {
	Name  string
	Value Expr
}

// RecordLit is `TypeName { field: value, ... }`.
type RecordLit struct {
	base
	TypeName string
	Fields   []RecordField
}

func (*RecordLit) exprNode() {}

// VariantConstructor is a sum-type constructor application, e.g.
// `Some(42)` or the nullary `None`.
type VariantConstructor struct {
	base
	Name string
	Args []Expr
}

func (*VariantConstructor) exprNode() {}

// TypeCast is `expr as Type`.
type TypeCast struct {
	base
	Target Expr
	Type   TypeExpr
}

func (*TypeCast) exprNode() {}

// RangeExpr is `lo..hi` or `lo..=hi`.
type RangeExpr struct {
	base
	Lo, Hi    Expr
	Inclusive bool
}

func (*RangeExpr) exprNode() {}

// Grouped is a parenthesized expression, kept distinct so diagnostics can
// report the original paren span rather than collapsing to the inner expr.
type Grouped struct {
	base
	Inner Expr
}

func (*Grouped) exprNode() {}

// InterpPart is one fragment of an interpolated string: a literal text run
// (Expr == nil) or an embedded expression.
type InterpPart struct {
	Text string
	Expr Expr
}

// InterpString is `"text ${expr} more text"`.
type InterpString struct {
	base
	Parts []InterpPart
}

func (*InterpString) exprNode() {}

// TryExpr is `expr?`, valid only inside a function whose effect tag is
// result or io_result and whose return type is Result[_, _] (possibly
// IO-wrapped); see the checker's effect-propagation rules.
type TryExpr struct {
	base
	Inner Expr
}

func (*TryExpr) exprNode() {}

// NullCoalesce is `expr ?? default`.
type NullCoalesce struct {
	base
	Inner   Expr
	Default Expr
}

func (*NullCoalesce) exprNode() {}

// BlockExpr wraps a Block so it can appear in expression position: the
// trailing expression-statement of the block, if not semicolon-terminated,
// is the block's value.
type BlockExpr struct {
	base
	Block *Block
}

func (*BlockExpr) exprNode() {}

// IfExpr is `if cond { then } else { else }` used as an expression; both
// branches must type-agree.
type IfExpr struct {
	base
	Cond Expr
	Then *Block
	Else *Block // nil only when the whole expression types to void
}

func (*IfExpr) exprNode() {}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// LetStmt is `let pat: Type = init`. Type is never nil: the checker
// rejects a missing annotation rather than inferring one.
type LetStmt struct {
	base
	Pattern Pattern
	Type    TypeExpr
	Init    Expr
}

func (*LetStmt) stmtNode() {}

// VarStmt is `var name: Type = init` (mutable binding; Init optional).
type VarStmt struct {
	base
	Name string
	Type TypeExpr
	Init Expr // nil if no initializer
}

func (*VarStmt) stmtNode() {}

// AssignTarget is the left-hand side of an AssignStmt.
type AssignTarget interface {
	Node
	assignTargetNode()
}

func (*Ident) assignTargetNode()       {}
func (*FieldAccess) assignTargetNode() {}
func (*IndexAccess) assignTargetNode() {}

// AssignStmt is `target = value`.
type AssignStmt struct {
	base
	Target AssignTarget
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

// ElseBranch is either another IfStmt (else-if chaining) or a plain Block.
type ElseBranch struct {
	If    *IfStmt
	Block *Block
}

// IfStmt is an `if` used in statement position, with optional else-if
// chaining or a trailing else block.
type IfStmt struct {
	base
	Cond Expr
	Then *Block
	Else *ElseBranch // nil if no else
}

func (*IfStmt) stmtNode() {}

// ForStmt is `for pattern in iterable { body }`.
type ForStmt struct {
	base
	Pattern  Pattern
	Iterable Expr
	Body     *Block
}

func (*ForStmt) stmtNode() {}

// MatchStmt is a match used in statement position.
type MatchStmt struct {
	base
	Subject Expr
	Arms    []MatchArm
}

func (*MatchStmt) stmtNode() {}

// ReturnStmt is `return expr` (Value nil for a bare `return` in a void
// function).
type ReturnStmt struct {
	base
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// BreakStmt is `break` or `break 'label`.
type BreakStmt struct {
	base
	Label string // "" if unlabeled
}

func (*BreakStmt) stmtNode() {}

// ExprStmt wraps an expression evaluated for its effect, or for its value
// when it is a block's tail statement.
type ExprStmt struct {
	base
	X Expr
}

func (*ExprStmt) stmtNode() {}

// Block is a `{ stmt; stmt; ... }` sequence. The last ExprStmt, if any and
// not semicolon-terminated, is the block's value in expression position.
type Block struct {
	base
	Stmts []Stmt
}

func (*Block) stmtNode() {}

// ---------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------

// WildcardPattern is `_`.
type WildcardPattern struct{ base }

func (*WildcardPattern) patternNode() {}

// IdentPattern binds the scrutinee (or part of it) to a name.
type IdentPattern struct {
	base
	Name  string
	IsVar bool // `var x` binds mutably
}

func (*IdentPattern) patternNode() {}

// LitPatternKind enumerates the literal kinds a LiteralPattern can hold.
type LitPatternKind int

const (
	LitPatternInt LitPatternKind = iota
	LitPatternFloat
	LitPatternString
	LitPatternChar
	LitPatternBool
)

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	base
	Kind  LitPatternKind
	Int   int64
	Float float64
	Str   string
	Char  rune
	Bool  bool
}

func (*LiteralPattern) patternNode() {}

// ConstructorPattern matches a sum-type variant, e.g. `Cons(h, t)`,
// `Some(x)`, nullary `None`.
type ConstructorPattern struct {
	base
	Name string
	Args []Pattern
}

func (*ConstructorPattern) patternNode() {}

// RecordFieldPattern is one `name: pattern` entry of a RecordPattern.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern matches a record/product type by field.
type RecordPattern struct {
	base
	TypeName string
	Fields   []RecordFieldPattern
	HasRest  bool // trailing `..`
}

func (*RecordPattern) patternNode() {}

// TuplePattern matches a tuple positionally.
type TuplePattern struct {
	base
	Elems []Pattern
}

func (*TuplePattern) patternNode() {}

// OrPattern matches if any alternative matches (`p1 | p2 | ...`). All
// alternatives must bind the same names at the same types.
type OrPattern struct {
	base
	Alts []Pattern
}

func (*OrPattern) patternNode() {}

// GuardedPattern is `pat if cond`. Guards never contribute to
// exhaustiveness coverage: a guard may fail at runtime even when its
// inner pattern matches.
type GuardedPattern struct {
	base
	Inner Pattern
	Cond  Expr
}

func (*GuardedPattern) patternNode() {}

// RangePattern matches an int or char range, `lo..hi` or `lo..=hi`.
type RangePattern struct {
	base
	Lo, Hi    Pattern // LiteralPattern (int or char)
	Inclusive bool
}

func (*RangePattern) patternNode() {}

// RestPattern is `..`, used inside array/tuple patterns to match the
// remaining elements without binding them.
type RestPattern struct{ base }

func (*RestPattern) patternNode() {}

// TypedPattern is `pat: Type`, an explicit type ascription on a pattern.
type TypedPattern struct {
	base
	Inner Pattern
	Type  TypeExpr
}

func (*TypedPattern) patternNode() {}

// ---------------------------------------------------------------------
// Type AST
// ---------------------------------------------------------------------

// PrimitiveKind enumerates Kira's built-in scalar types.
type PrimitiveKind int

const (
	PrimI8 PrimitiveKind = iota
	PrimI16
	PrimI32
	PrimI64
	PrimI128
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimF32
	PrimF64
	PrimBool
	PrimChar
	PrimString
	PrimVoid
)

func (k PrimitiveKind) String() string {
	names := [...]string{
		"i8", "i16", "i32", "i64", "i128",
		"u8", "u16", "u32", "u64", "u128",
		"f32", "f64", "bool", "char", "string", "void",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// IsInteger reports whether k is one of the signed/unsigned integer widths.
func (k PrimitiveKind) IsInteger() bool { return k <= PrimU128 }

// IsSigned reports whether k is a signed integer width.
func (k PrimitiveKind) IsSigned() bool { return k <= PrimI128 }

// IsFloat reports whether k is f32 or f64.
func (k PrimitiveKind) IsFloat() bool { return k == PrimF32 || k == PrimF64 }

// PrimitiveType is a built-in scalar type reference.
type PrimitiveType struct {
	base
	Kind PrimitiveKind
}

func (*PrimitiveType) typeNode() {}

// NamedType is a reference to a user-defined type by name with no type
// arguments (use GenericType for `Name[Args...]`).
type NamedType struct {
	base
	Name string
}

func (*NamedType) typeNode() {}

// GenericType is `Name[T1, T2, ...]`.
type GenericType struct {
	base
	Name string
	Args []TypeExpr
}

func (*GenericType) typeNode() {}

// FuncType is `fn(A, B) -> C`, optionally effectful.
type FuncType struct {
	base
	Params   []TypeExpr
	Return   TypeExpr
	IsEffect bool
}

func (*FuncType) typeNode() {}

// TupleType is `(A, B, C)`.
type TupleType struct {
	base
	Elems []TypeExpr
}

func (*TupleType) typeNode() {}

// ArrayType is `[T; N]`.
type ArrayType struct {
	base
	Elem TypeExpr
	Size int64
}

func (*ArrayType) typeNode() {}

// IOType is `IO[T]`.
type IOType struct {
	base
	Inner TypeExpr
}

func (*IOType) typeNode() {}

// ResultType is `Result[T, E]`.
type ResultType struct {
	base
	Ok  TypeExpr
	Err TypeExpr
}

func (*ResultType) typeNode() {}

// OptionType is `Option[T]`.
type OptionType struct {
	base
	Inner TypeExpr
}

func (*OptionType) typeNode() {}

// SelfType is `Self`, used inside a trait/impl signature.
type SelfType struct{ base }

func (*SelfType) typeNode() {}

// TypeVarExpr is a generic parameter reference, optionally trait-bounded
// (`T: Show + Eq`).
type TypeVarExpr struct {
	base
	Name   string
	Bounds []string
}

func (*TypeVarExpr) typeNode() {}

// PathType is a qualified type reference, `module.Name[Args...]`.
type PathType struct {
	base
	Path []string
	Name string
	Args []TypeExpr
}

func (*PathType) typeNode() {}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// Param is one parameter of a top-level or trait-method function.
type Param struct {
	Name string
	Type TypeExpr
}

// EffectTag enumerates the four effect annotations a function can carry.
type EffectTag int

const (
	EffectPure EffectTag = iota
	EffectIO
	EffectResult
	EffectIOResult
)

func (e EffectTag) String() string {
	switch e {
	case EffectPure:
		return "pure"
	case EffectIO:
		return "io"
	case EffectResult:
		return "result"
	case EffectIOResult:
		return "io_result"
	default:
		return "?"
	}
}

// FuncDecl is a top-level (or trait/impl member) function declaration.
type FuncDecl struct {
	base
	Name       string
	Public     bool
	TypeParams []TypeVarExpr
	Params     []Param
	Return     TypeExpr
	Effect     EffectTag
	Body       *Block // nil for a trait method signature with no default
}

func (*FuncDecl) declNode() {}

// VariantDecl is one constructor of a sum TypeDecl.
type VariantDecl struct {
	Name   string
	Fields []TypeExpr // positional field types; empty for a nullary variant
}

// ProductField is one field of a record (product) TypeDecl.
type ProductField struct {
	Name string
	Type TypeExpr
}

// TypeDeclKind distinguishes the three shapes a TypeDecl can take.
type TypeDeclKind int

const (
	TypeDeclSum TypeDeclKind = iota
	TypeDeclProduct
	TypeDeclAlias
)

// TypeDecl is a user-defined `type Name[Params] = ...` declaration: a sum
// type (variants), a product/record type (fields), or a plain alias.
type TypeDecl struct {
	base
	Name       string
	Public     bool
	TypeParams []TypeVarExpr
	Kind       TypeDeclKind
	Variants   []VariantDecl  // TypeDeclSum
	Fields     []ProductField // TypeDeclProduct
	Alias      TypeExpr       // TypeDeclAlias
}

func (*TypeDecl) declNode() {}

// TraitDecl is a `trait Name[Self] { ... }` declaration.
type TraitDecl struct {
	base
	Name    string
	Public  bool
	Methods []*FuncDecl
}

func (*TraitDecl) declNode() {}

// ImplDecl is an `impl Trait for Type { ... }` (or bare `impl Type { ... }`
// inherent block) declaration.
type ImplDecl struct {
	base
	Trait   string // "" for an inherent impl with no trait
	ForType TypeExpr
	Methods []*FuncDecl
}

func (*ImplDecl) declNode() {}

// ImportItem is one selected name in a `.{x, y as z}` import clause.
type ImportItem struct {
	Name  string
	Alias string // "" if unaliased (bind under Name)
}

// ImportDecl is a module import: `import a.b.c`, `import a.b.c as alias`,
// or `import a.b.c.{x, y as z}` selecting individual pub symbols. Items is
// empty for the first two forms, in which case the module namespace itself
// is bound (under Alias if set, else the path's last segment).
type ImportDecl struct {
	base
	Path  []string
	Alias string // "" if unaliased
	Items []ImportItem
}

func (*ImportDecl) declNode() {}

// ConstDecl is a top-level `const NAME: Type = value`.
type ConstDecl struct {
	base
	Name  string
	Public bool
	Type  TypeExpr
	Value Expr
}

func (*ConstDecl) declNode() {}

// TopLevelLetDecl is a top-level `let name: Type = value` binding, distinct
// from ConstDecl in that its initializer may be any pure expression rather
// than a literal constant.
type TopLevelLetDecl struct {
	base
	Name string
	Public bool
	Type TypeExpr
	Init Expr
}

func (*TopLevelLetDecl) declNode() {}

// TestDecl is a `test "name" { ... }` block.
type TestDecl struct {
	base
	Name string
	Body *Block
}

func (*TestDecl) declNode() {}

// ModuleDecl declares the module path of the file it appears in, e.g.
// `module a.b.c`.
type ModuleDecl struct {
	base
	Path []string
}

func (*ModuleDecl) declNode() {}

// Program is the root of one parsed compilation unit: its module
// declaration, imports, and remaining top-level declarations.
type Program struct {
	base
	File    string
	Module  *ModuleDecl
	Imports []*ImportDecl
	Decls   []Decl
}

func (*Program) declNode() {}
