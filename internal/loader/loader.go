// Package loader implements Kira's module loader: path resolution against
// nested package configuration, an idempotent module cache, cycle
// detection, and byte/depth resource caps.
package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/config"
	"github.com/kira-lang/kira/internal/symtab"
)

// Frontend is the external AST producer: Kira's lexer and parser are out
// of this core's scope and are supplied by the host as this single
// interface boundary.
type Frontend interface {
	Parse(filename string, src []byte) (*ast.Program, error)
}

// Code enumerates loader failure modes.
type Code string

const (
	ModuleNotFound        Code = "module-not-found"
	CircularDependency    Code = "circular-dependency"
	ParseError            Code = "parse-error"
	ResolveError          Code = "resolve-error"
	FileReadError         Code = "file-read-error"
	TotalBytesExceeded    Code = "total-bytes-exceeded"
	MaxImportDepthExceeded Code = "max-import-depth-exceeded"
	InvalidPath           Code = "invalid-path"
)

// LoadError is the loader's structured failure, recorded with the
// originating module path and (when relevant) a file path, a span, and
// the set of candidate paths tried during resolution.
type LoadError struct {
	Code    Code
	Path    string // the module path that failed to load
	File    string // resolved file path, if resolution got that far
	Tried   []string
	Cycle   []string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if len(e.Tried) > 0 {
		return fmt.Sprintf("%s: %s (tried: %s)", e.Code, e.Message, strings.Join(e.Tried, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// LoadedModule is a cached, fully-populated module.
type LoadedModule struct {
	Path     []string
	ScopeID  symtab.ScopeId
	FilePath string
	Program  *ast.Program
	Source   []byte
	// ImportErrors holds diagnostics from this module's own import
	// statements: these are collected but do not abort the outer load.
	ImportErrors []error
}

// Session is the process-wide owning container: a single symbol table, a
// single module cache, and a single monotonically increasing
// loaded-bytes counter, threaded explicitly rather than held in
// package-level globals.
type Session struct {
	Symtab *symtab.Table
	Front  Frontend

	Project    *config.Project   // discovered kira.toml at the root, if any
	SearchDirs []string          // additional configured search directories
	WorkDir    string            // cwd fallback for step 4 of resolution

	MaxDepth       int
	MaxTotalBytes  int64
	TotalBytes     int64
	depth          int

	cache       map[string]*LoadedModule // dotted path -> loaded module
	loading     map[string]bool          // cycle-detection set
	loadStack   []string

	pkgConfigs map[string]*config.Project // package name -> its own kira.toml, loaded once
	edges      map[string][]string        // dotted module path -> its direct imports, load order
}

// DefaultMaxDepth and DefaultMaxTotalBytes bound import-chain depth and
// cumulative source size loaded by one Session.
const (
	DefaultMaxDepth      = 64
	DefaultMaxTotalBytes = 100 * 1024 * 1024
)

// NewSession creates a Session rooted at workDir, discovering kira.toml by
// walking parent directories from workDir.
func NewSession(workDir string, front Frontend) (*Session, error) {
	proj, err := config.Discover(workDir)
	if err != nil {
		return nil, err
	}
	return &Session{
		Symtab:        symtab.New(),
		Front:         front,
		Project:       proj,
		WorkDir:       workDir,
		MaxDepth:      DefaultMaxDepth,
		MaxTotalBytes: DefaultMaxTotalBytes,
		cache:         make(map[string]*LoadedModule),
		loading:       make(map[string]bool),
		pkgConfigs:    make(map[string]*config.Project),
		edges:         make(map[string][]string),
	}, nil
}

// ValidatePath checks a dotted module path against the grammar
// `ident(.ident)*` where ident excludes `.`, `/`, `\`, and is non-empty;
// `.` and `..` segments are rejected outright.
func ValidatePath(segments []string) error {
	if len(segments) == 0 {
		return fmt.Errorf("empty module path")
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid path segment %q", seg)
		}
		if strings.ContainsAny(seg, "/\\.") {
			return fmt.Errorf("invalid path segment %q", seg)
		}
	}
	return nil
}

// LoadModule resolves, parses, and populates the module named by the
// dotted path, returning its ScopeId. Idempotent: a second call with the
// same path returns the cached ScopeId and leaves TotalBytes unchanged.
func (s *Session) LoadModule(path []string) (symtab.ScopeId, error) {
	if err := ValidatePath(path); err != nil {
		return 0, &LoadError{Code: InvalidPath, Path: dotted(path), Message: err.Error()}
	}
	key := dotted(path)

	if mod, ok := s.cache[key]; ok {
		return mod.ScopeID, nil
	}
	if s.loading[key] {
		cycle := append(append([]string{}, s.loadStack...), key)
		return 0, &LoadError{Code: CircularDependency, Path: key, Cycle: cycle,
			Message: fmt.Sprintf("circular dependency loading %s", key)}
	}
	if s.depth >= s.MaxDepth {
		return 0, &LoadError{Code: MaxImportDepthExceeded, Path: key,
			Message: fmt.Sprintf("import chain depth exceeds %d", s.MaxDepth)}
	}

	filePath, tried, err := s.resolvePath(path)
	if err != nil {
		return 0, &LoadError{Code: ModuleNotFound, Path: key, Tried: tried,
			Message: fmt.Sprintf("module %q not found", key)}
	}

	s.loading[key] = true
	s.loadStack = append(s.loadStack, key)
	s.depth++
	defer func() {
		s.depth--
		s.loadStack = s.loadStack[:len(s.loadStack)-1]
		delete(s.loading, key)
	}()

	scopeID, err := s.loadFile(path, filePath)
	if err != nil {
		return 0, err
	}
	return scopeID, nil
}

// loadFile reads, parses, and populates a single module file, recursing
// into its imports. File handles are opened, fully read under the byte
// cap, then released immediately.
func (s *Session) loadFile(path []string, filePath string) (symtab.ScopeId, error) {
	key := dotted(path)
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, &LoadError{Code: FileReadError, Path: key, File: filePath, Message: err.Error(), Cause: err}
	}
	if s.TotalBytes+info.Size() > s.MaxTotalBytes {
		return 0, &LoadError{Code: TotalBytesExceeded, Path: key, File: filePath,
			Message: fmt.Sprintf("loading %s would exceed the %d-byte total source cap", filePath, s.MaxTotalBytes)}
	}
	src, err := os.ReadFile(filePath)
	if err != nil {
		return 0, &LoadError{Code: FileReadError, Path: key, File: filePath, Message: err.Error(), Cause: err}
	}
	s.TotalBytes += int64(len(src))

	program, err := s.Front.Parse(filePath, src)
	if err != nil {
		return 0, &LoadError{Code: ParseError, Path: key, File: filePath, Message: err.Error(), Cause: err}
	}
	if program.Module == nil {
		return 0, &LoadError{Code: ResolveError, Path: key, File: filePath,
			Message: fmt.Sprintf("%s has no 'module' declaration", filePath)}
	}

	scopeID := s.Symtab.EnterScope(symtab.ModuleScope)
	s.Symtab.LeaveScope()
	s.Symtab.RegisterModule(path, scopeID)

	mod := &LoadedModule{Path: path, ScopeID: scopeID, FilePath: filePath, Program: program, Source: src}
	s.cache[key] = mod

	prevCurrent := s.Symtab.Current()
	s.Symtab.SetCurrent(scopeID)
	s.populateDecls(mod)
	s.Symtab.SetCurrent(prevCurrent)

	for _, imp := range program.Imports {
		s.edges[key] = append(s.edges[key], dotted(imp.Path))
		if _, err := s.LoadModule(imp.Path); err != nil {
			mod.ImportErrors = append(mod.ImportErrors, err)
		}
	}

	return scopeID, nil
}

// DependencyGraph returns a snapshot of every loaded module's direct
// imports, keyed by dotted path, in the order they were encountered.
// Cheap to expose since loadFile already tracks edges for cycle
// detection.
func (s *Session) DependencyGraph() map[string][]string {
	out := make(map[string][]string, len(s.edges))
	for k, v := range s.edges {
		out[k] = append([]string{}, v...)
	}
	return out
}

// TopologicalSort orders loaded modules so each appears after every module
// it imports, panicking-free even on a malformed graph: a module is marked
// visited before its imports are walked, so a cycle ends the walk instead
// of looping, and every module (cycle members included) appears exactly
// once. Import targets that never loaded can appear too, since edges are
// followed whether or not their target is in the cache.
func (s *Session) TopologicalSort() []string {
	visited := make(map[string]bool)
	var order []string
	var visit func(string)
	visit = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		for _, dep := range s.edges[key] {
			visit(dep)
		}
		order = append(order, key)
	}
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		visit(k)
	}
	return order
}

// populateDecls defines a symbol for every top-level function/type/const/
// let declaration in the module's own scope. It never errors: a duplicate
// definition is recorded as an ImportError-style entry on the module
// rather than aborting population, so errors are collected but do not
// abort the outer load.
func (s *Session) populateDecls(mod *LoadedModule) {
	for _, decl := range mod.Program.Decls {
		var sym symtab.Symbol
		switch d := decl.(type) {
		case *ast.FuncDecl:
			sym = symtab.Symbol{Name: d.Name, Kind: symtab.FuncSymbol, Public: isPub(decl), Span: d.Span(), HasBody: d.Body != nil}
		case *ast.TypeDecl:
			sym = symtab.Symbol{Name: d.Name, Kind: symtab.TypeSymbol, Public: isPub(decl), Span: d.Span()}
		case *ast.TraitDecl:
			sym = symtab.Symbol{Name: d.Name, Kind: symtab.TraitSymbol, Public: isPub(decl), Span: d.Span()}
		case *ast.ConstDecl:
			sym = symtab.Symbol{Name: d.Name, Kind: symtab.VarSymbol, Public: isPub(decl), Span: d.Span()}
		case *ast.TopLevelLetDecl:
			sym = symtab.Symbol{Name: d.Name, Kind: symtab.VarSymbol, Public: isPub(decl), Span: d.Span()}
		default:
			continue
		}
		if _, err := s.Symtab.Define(sym); err != nil {
			mod.ImportErrors = append(mod.ImportErrors, err)
		}
	}
}

// isPub reports a declaration's visibility, per the `Public` flag the
// parser attaches to each top-level declaration kind. Only pub symbols
// are importable from another module.
func isPub(d ast.Decl) bool {
	switch dd := d.(type) {
	case *ast.FuncDecl:
		return dd.Public
	case *ast.TypeDecl:
		return dd.Public
	case *ast.TraitDecl:
		return dd.Public
	case *ast.ConstDecl:
		return dd.Public
	case *ast.TopLevelLetDecl:
		return dd.Public
	default:
		return false
	}
}

// Module returns the cached LoadedModule for a dotted path, if loaded.
func (s *Session) Module(path []string) (*LoadedModule, bool) {
	m, ok := s.cache[dotted(path)]
	return m, ok
}

func dotted(path []string) string { return strings.Join(path, ".") }
