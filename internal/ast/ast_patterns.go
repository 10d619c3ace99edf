package ast

// Arena owns every node allocated while building one Program. Allocating
// through the arena rather than with bare `new`/`&T{}` lets a caller drop
// an entire parsed-but-discarded file (e.g. a module that failed a later
// validation step) by releasing the arena instead of chasing pointers.
type Arena struct {
	program *Program
	nodes   []Node
}

// NewArena creates an empty arena for one file's worth of AST nodes.
func NewArena() *Arena {
	return &Arena{}
}

// Track records n as belonging to this arena and returns it unchanged, so
// call sites can wrap a constructor: `id := a.Track(&Ident{...}).(*Ident)`.
func (a *Arena) Track(n Node) Node {
	a.nodes = append(a.nodes, n)
	return n
}

// SetProgram records the arena's root Program, once parsing completes.
func (a *Arena) SetProgram(p *Program) { a.program = p }

// Program returns the arena's root Program, or nil if none was set.
func (a *Arena) Program() *Program { return a.program }

// Len reports how many nodes the arena has tracked.
func (a *Arena) Len() int { return len(a.nodes) }

// Release drops the arena's references so its nodes become eligible for
// garbage collection even if the Arena value itself outlives them.
func (a *Arena) Release() {
	a.nodes = nil
	a.program = nil
}
