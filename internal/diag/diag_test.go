package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kira-lang/kira/internal/ast"
)

func span(line, col int) ast.Span {
	return ast.Span{File: "main.ki", Start: ast.Pos{Line: line, Col: col}, End: ast.Pos{Line: line, Col: col}}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "hint", Hint.String())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Kind:     KindTypeMismatch,
		Message:  "expected i32, got bool",
		Span:     span(3, 5),
	}
	assert.Equal(t, "error: expected i32, got bool at 3:5", d.String())
}

func TestDiagnosticStringIncludesNotes(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Kind:     KindTypeMismatch,
		Message:  "mismatch",
		Span:     span(3, 5),
		Notes:    []Note{{Message: "declared here", Span: span(1, 1)}},
	}
	s := d.String()
	assert.Contains(t, s, "mismatch at 3:5")
	assert.Contains(t, s, "note: declared here at 1:1")
}

func TestBagAddAndAll(t *testing.T) {
	var b Bag
	b.Add(Diagnostic{Severity: Error, Kind: KindUndefinedSymbol, Message: "x"})
	assert.Equal(t, 1, b.Len())
	assert.Len(t, b.All(), 1)
}

func TestBagErrorfAndWarnf(t *testing.T) {
	var b Bag
	b.Errorf(KindUndefinedSymbol, span(1, 1), "undefined symbol %q", "foo")
	b.Warnf(KindNonExhaustive, span(2, 1), "missing variant %s", "None")
	require := b.All()
	assert.Equal(t, Error, require[0].Severity)
	assert.Equal(t, `undefined symbol "foo"`, require[0].Message)
	assert.Equal(t, Warning, require[1].Severity)
}

func TestBagHasErrors(t *testing.T) {
	var b Bag
	b.Warnf(KindNonExhaustive, span(1, 1), "warn only")
	assert.False(t, b.HasErrors())
	b.Errorf(KindUndefinedSymbol, span(1, 1), "real error")
	assert.True(t, b.HasErrors())
}

func TestBagSortedOrdersByFileLineCol(t *testing.T) {
	var b Bag
	b.Add(Diagnostic{Severity: Error, Message: "c", Span: ast.Span{File: "b.ki", Start: ast.Pos{Line: 1, Col: 1}}})
	b.Add(Diagnostic{Severity: Error, Message: "a", Span: ast.Span{File: "a.ki", Start: ast.Pos{Line: 5, Col: 1}}})
	b.Add(Diagnostic{Severity: Error, Message: "b", Span: ast.Span{File: "a.ki", Start: ast.Pos{Line: 2, Col: 9}}})

	sorted := b.Sorted()
	assert.Equal(t, "b", sorted[0].Message)
	assert.Equal(t, "a", sorted[1].Message)
	assert.Equal(t, "c", sorted[2].Message)
}

func TestRenderIncludesFileAndNotes(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Kind:     KindTypeMismatch,
		Message:  "bad type",
		Span:     span(4, 2),
		Notes:    []Note{{Message: "see here", Span: span(1, 1)}},
	}
	out := Render("main.ki", d)
	assert.Contains(t, out, "main.ki:4:2: error: bad type")
	assert.Contains(t, out, "main.ki:1:1: note: see here")
}
