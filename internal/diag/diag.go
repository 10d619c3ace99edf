// Package diag defines Kira's structured diagnostics: the taxonomy of
// checker/loader/runtime failure kinds, and the "kind: message at
// line:col" rendering contract shared by `kira check` and `kira run`.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kira-lang/kira/internal/ast"
)

// Severity classifies how a Diagnostic should affect the process exit code.
type Severity int

const (
	Error Severity = iota
	Warning
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	default:
		return "error"
	}
}

// Kind is the taxonomy of diagnostic conditions Kira can report. It is
// descriptive metadata only: rendering never branches on it beyond
// grouping related notes.
type Kind string

const (
	KindTypeMismatch          Kind = "type-mismatch"
	KindInvalidOperand        Kind = "invalid-operand"
	KindNotCallable           Kind = "not-callable"
	KindWrongArgCount         Kind = "wrong-argument-count"
	KindNoSuchField           Kind = "no-such-field"
	KindInvalidTupleIndex     Kind = "invalid-tuple-index"
	KindPatternTypeMismatch   Kind = "pattern-type-mismatch"
	KindNonExhaustive         Kind = "non-exhaustive-match"
	KindUnreachablePattern    Kind = "unreachable-pattern"
	KindWrongTypeArgCount     Kind = "wrong-type-argument-count"
	KindConstraintNotSatisfied Kind = "constraint-not-satisfied"
	KindEffectViolation       Kind = "effect-violation"
	KindInvalidTry            Kind = "invalid-try"
	KindDuplicateDefinition   Kind = "duplicate-definition"
	KindUndefinedSymbol       Kind = "undefined-symbol"
	KindUndefinedType         Kind = "undefined-type"
	KindInvalidCast           Kind = "invalid-cast"
	KindCyclicType            Kind = "cyclic-type"
	KindSelfOutsideImpl       Kind = "self-outside-impl"
	KindModuleNotFound        Kind = "module-not-found"
	KindCircularDependency    Kind = "circular-dependency"
	KindParseError            Kind = "parse-error"
	KindResolveError          Kind = "resolve-error"
	KindFileReadError         Kind = "file-read-error"
	KindTotalBytesExceeded    Kind = "total-bytes-exceeded"
	KindMaxImportDepth        Kind = "max-import-depth-exceeded"
	KindInvalidPath           Kind = "invalid-path"
)

// Note is a related secondary location attached to a Diagnostic, e.g. "the
// expected type was declared here".
type Note struct {
	Message string
	Span    ast.Span
}

// Diagnostic is one structured message with a primary span and optional
// related notes. It carries no exception-like control flow: checker and
// loader code accumulate Diagnostics in a slice rather than returning them
// as Go errors on the hot path (see Bag).
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Code     Code
	Message  string
	Span     ast.Span
	Notes    []Note
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s at %s", d.Severity, d.Message, lineCol(d.Span))
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s at %s", n.Message, lineCol(n.Span))
	}
	return b.String()
}

func lineCol(sp ast.Span) string {
	return fmt.Sprintf("%d:%d", sp.Start.Line, sp.Start.Col)
}

// Bag accumulates diagnostics during a single check/load pass. It is the
// checker's and loader's error channel: a local failure poisons the
// offending subexpression (see internal/types.Error) and appends one
// Diagnostic here, rather than aborting the walk.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag, filling in its Code from Kind if
// the caller left it unset.
func (b *Bag) Add(d Diagnostic) {
	if d.Code == "" {
		d.Code = CodeFor(d.Kind)
	}
	b.items = append(b.items, d)
}

// Errorf appends an Error-severity diagnostic built from a format string.
func (b *Bag) Errorf(kind Kind, span ast.Span, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Kind: kind, Code: CodeFor(kind), Message: fmt.Sprintf(format, args...), Span: span})
}

// Warnf appends a Warning-severity diagnostic built from a format string.
func (b *Bag) Warnf(kind Kind, span ast.Span, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Kind: kind, Code: CodeFor(kind), Message: fmt.Sprintf(format, args...), Span: span})
}

// All returns every accumulated diagnostic, in the order they were added.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether the bag contains at least one Error-severity
// diagnostic. A bag holding only warnings/hints does not fail `kira check`.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len reports the number of accumulated diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// Sorted returns the diagnostics ordered by file, then line, then column —
// the order `kira check` prints them in, independent of the (arbitrary)
// order in which the checker visited declarations.
func (b *Bag) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Span, out[j].Span
		if si.File != sj.File {
			return si.File < sj.File
		}
		if si.Start.Line != sj.Start.Line {
			return si.Start.Line < sj.Start.Line
		}
		return si.Start.Col < sj.Start.Col
	})
	return out
}

// Render formats one diagnostic in the `file:line:col: kind: message`
// form used for `kira check` output.
func Render(file string, d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s", file, d.Span.Start.Line, d.Span.Start.Col, d.Severity, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  %s:%d:%d: note: %s", file, n.Span.Start.Line, n.Span.Start.Col, n.Message)
	}
	return b.String()
}
