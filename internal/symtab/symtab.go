// Package symtab implements Kira's symbol table: nested scopes with
// parent pointers, a name->symbol table per scope, visibility rules, and
// the module registry that the loader and checker share through a
// common Session.
package symtab

import (
	"fmt"
	"sort"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/types"
)

// ScopeId identifies a Scope. The global scope is always 0.
type ScopeId int

// SymbolId identifies a Symbol within the table that owns it.
type SymbolId int

// ScopeKind classifies what a Scope was opened for.
type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	ModuleScope
	FunctionScope
	BlockScope
)

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	VarSymbol SymbolKind = iota
	FuncSymbol
	TypeSymbol
	TraitSymbol
	ModuleSymbol
)

// GenericParamInfo records one generic parameter of a function or type
// definition: its name and trait bounds.
type GenericParamInfo struct {
	Name   string
	Bounds []string
}

// Symbol is a named entity defined at a particular scope, carrying enough
// information for the checker to validate references to it without
// re-walking its declaration.
type Symbol struct {
	ID      SymbolId
	Name    string
	Kind    SymbolKind
	Scope   ScopeId
	Public  bool
	Span    ast.Span
	Doc     string // doc-comment text, if any

	// VarSymbol
	VarType Type
	Mutable bool

	// FuncSymbol
	Generics   []GenericParamInfo
	ParamNames []string
	ParamTypes []Type
	ReturnType Type
	Effect     types.Effect
	HasBody    bool

	// TypeSymbol
	TypeGenerics []GenericParamInfo
	Variants     []VariantInfo // sum type
	Fields       []FieldInfo   // product type
	AliasTarget  Type          // alias type

	// TraitSymbol
	SuperTraits []string
	Methods     []string // method names with signatures in a side index

	// ModuleSymbol
	ModulePath []string
}

// Type is an alias to avoid importing internal/types under a different
// name at every call site; resolved types live in internal/types.
type Type = types.Type

// VariantInfo is one constructor of a sum TypeSymbol.
type VariantInfo struct {
	Name   string
	Fields []Type
}

// FieldInfo is one field of a product TypeSymbol.
type FieldInfo struct {
	Name string
	Type Type
}

// scope is the internal mutable representation of one lexical scope.
type scope struct {
	id       ScopeId
	kind     ScopeKind
	parent   ScopeId
	hasParent bool
	names    map[string]SymbolId
	order    []string
}

// DuplicateDefinition is returned by Define when name is already bound in
// the same scope.
type DuplicateDefinition struct {
	Name     string
	Existing ast.Span
	New      ast.Span
}

func (e *DuplicateDefinition) Error() string {
	return fmt.Sprintf("duplicate definition of '%s' (first defined at %s)", e.Name, e.Existing)
}

// Table is the symbol table for one Session: every scope ever opened, every
// symbol ever defined, and the module-path registry.
type Table struct {
	scopes   []*scope
	symbols  []*Symbol
	current  ScopeId
	modules  map[string]ScopeId // dotted module path -> its module scope
}

// New creates a table with scope 0 pre-opened as the global scope.
func New() *Table {
	t := &Table{modules: make(map[string]ScopeId)}
	g := &scope{id: 0, kind: GlobalScope, names: make(map[string]SymbolId)}
	t.scopes = append(t.scopes, g)
	t.current = 0
	return t
}

// EnterScope opens a new child scope of the current scope and makes it
// current, returning its id. Callers restore the prior current scope with
// SetCurrent (or LeaveScope, its paired convenience) when done.
func (t *Table) EnterScope(kind ScopeKind) ScopeId {
	id := ScopeId(len(t.scopes))
	s := &scope{id: id, kind: kind, parent: t.current, hasParent: true, names: make(map[string]SymbolId)}
	t.scopes = append(t.scopes, s)
	t.current = id
	return id
}

// LeaveScope moves current back to the current scope's parent. It is a
// no-op (stays at global) if current has no parent.
func (t *Table) LeaveScope() {
	s := t.scopes[t.current]
	if s.hasParent {
		t.current = s.parent
	}
}

// SetCurrent explicitly sets the current scope, used when the checker or
// loader needs to resume population of a scope opened earlier (e.g.
// a module scope revisited for a later file in the same module, or a
// closure's defining scope reopened for a nested reference).
func (t *Table) SetCurrent(id ScopeId) { t.current = id }

// Current returns the scope currently being populated.
func (t *Table) Current() ScopeId { return t.current }

// Parent returns s's parent scope and whether it has one (false only for
// the global scope).
func (t *Table) Parent(s ScopeId) (ScopeId, bool) {
	sc := t.scopes[s]
	return sc.parent, sc.hasParent
}

// Kind returns the ScopeKind the scope was opened with.
func (t *Table) Kind(s ScopeId) ScopeKind { return t.scopes[s].kind }

// Define inserts sym into the current scope under sym.Name. Redefining a
// name already bound in THIS scope is a DuplicateDefinition error;
// shadowing a name bound in an outer scope is always permitted.
func (t *Table) Define(sym Symbol) (SymbolId, error) {
	return t.DefineIn(t.current, sym)
}

// DefineIn is Define targeting an explicit scope, used by the loader to
// populate a module scope that is not necessarily current.
func (t *Table) DefineIn(scopeID ScopeId, sym Symbol) (SymbolId, error) {
	s := t.scopes[scopeID]
	if existingID, ok := s.names[sym.Name]; ok {
		existing := t.symbols[existingID]
		return 0, &DuplicateDefinition{Name: sym.Name, Existing: existing.Span, New: sym.Span}
	}
	id := SymbolId(len(t.symbols))
	sym.ID = id
	sym.Scope = scopeID
	t.symbols = append(t.symbols, &sym)
	s.names[sym.Name] = id
	s.order = append(s.order, sym.Name)
	return id, nil
}

// Lookup searches for name starting at the current scope and walking
// parent pointers. It applies no visibility filter: every symbol on the
// parent chain is found. Cross-module visibility is enforced by
// LookupQualifiedPub, not here.
func (t *Table) Lookup(name string) (SymbolId, bool) {
	return t.lookupFrom(t.current, name)
}

// LookupFrom is Lookup starting at an explicit scope rather than current,
// used by the checker to resolve a name against a scope other than the
// current one.
func (t *Table) LookupFrom(scopeID ScopeId, name string) (SymbolId, bool) {
	return t.lookupFrom(scopeID, name)
}

func (t *Table) lookupFrom(start ScopeId, name string) (SymbolId, bool) {
	id := start
	for {
		s := t.scopes[id]
		if symID, ok := s.names[name]; ok {
			return symID, true
		}
		if !s.hasParent {
			return 0, false
		}
		id = s.parent
	}
}

// LookupQualified resolves `path.name` by first resolving path in the
// module registry, then looking up name directly in that module's own
// scope (not walking its parents, since the module scope's parent is the
// global scope and would leak unrelated globals). It returns private
// symbols as well as pub ones; callers outside the module must use
// LookupQualifiedPub.
func (t *Table) LookupQualified(path []string, name string) (SymbolId, bool) {
	modScope, ok := t.ResolveModule(path)
	if !ok {
		return 0, false
	}
	s := t.scopes[modScope]
	symID, ok := s.names[name]
	if !ok {
		return 0, false
	}
	return symID, true
}

// LookupQualifiedPub is LookupQualified restricted to symbols visible
// across a module boundary, i.e. Public == true — the rule an import
// clause or a `module.symbol` reference from another module must obey.
func (t *Table) LookupQualifiedPub(path []string, name string) (SymbolId, bool) {
	id, ok := t.LookupQualified(path, name)
	if !ok {
		return 0, false
	}
	if !t.symbols[id].Public {
		return 0, false
	}
	return id, true
}

// RegisterModule records that the module at dotted path lives at scope.
// Called once by the loader per loaded module.
func (t *Table) RegisterModule(path []string, scope ScopeId) {
	t.modules[dotted(path)] = scope
}

// ResolveModule looks up a previously registered module path.
func (t *Table) ResolveModule(path []string) (ScopeId, bool) {
	s, ok := t.modules[dotted(path)]
	return s, ok
}

// Symbol returns the symbol with the given id.
func (t *Table) Symbol(id SymbolId) *Symbol { return t.symbols[id] }

// Names returns the names defined directly in scope, in declaration order.
func (t *Table) Names(scopeID ScopeId) []string {
	s := t.scopes[scopeID]
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SortedModulePaths returns every registered module's dotted path, sorted,
// for deterministic diagnostics/dumps.
func (t *Table) SortedModulePaths() []string {
	out := make([]string, 0, len(t.modules))
	for p := range t.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func dotted(path []string) string {
	out := ""
	for i, s := range path {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
