// Package dtree compiles a match statement's arms into a constructor-
// product decision structure and computes exhaustiveness/reachability
// verdicts. It is advisory: the interpreter's linear arm-by-arm match
// remains authoritative for binding semantics at runtime; this package
// exists for diagnostics.
package dtree

import (
	"fmt"
	"strings"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/types"
)

// Ctor is one member of a type's finite constructor set.
type Ctor struct {
	Name       string
	Fields     []types.Type
	FieldNames []string // non-empty only for record/product constructors
}

// Resolver supplies the finite constructor set of a type, or reports that
// the type has an infinite domain (int/float/string), in which case a
// column over it is exhaustive only via a catch-all pattern.
type Resolver interface {
	Constructors(t types.Type) (ctors []Ctor, finite bool)
}

// Arm is one match arm reduced to what the pattern compiler needs: its
// pattern and whether it carries a guard. Guarded arms never contribute
// coverage, since a guard may fail at runtime even when its pattern matches.
type Arm struct {
	Pattern ast.Pattern
	Guarded bool
}

// Verdict is the pattern compiler's output for one match.
type Verdict struct {
	Exhaustive  bool
	Missing     []string // human-readable uncovered shapes (at least one)
	Unreachable []int    // 0-based arm indices subsumed by earlier arms
}

// Compile computes the exhaustiveness and unreachable-pattern verdicts for
// a sequence of arms matching a value of scrutineeType.
func Compile(arms []Arm, scrutineeType types.Type, resolver Resolver) Verdict {
	var seen [][]ast.Pattern
	var unreachable []int

	for i, arm := range arms {
		rows := expandOr(arm.Pattern)
		if !arm.Guarded {
			useful := false
			for _, row := range rows {
				if isUseful(seen, row, []types.Type{scrutineeType}, resolver) {
					useful = true
					break
				}
			}
			if !useful && len(seen) > 0 {
				unreachable = append(unreachable, i)
			}
			seen = append(seen, rows...)
		}
	}

	ok, witness := checkExhaustive(seen, []types.Type{scrutineeType}, resolver)
	v := Verdict{Exhaustive: ok, Unreachable: unreachable}
	if !ok {
		v.Missing = []string{strings.Join(witness, ", ")}
	}
	return v
}

// expandOr flattens a top-level or-pattern into one row per alternative;
// any other pattern becomes a single one-column row.
func expandOr(p ast.Pattern) [][]ast.Pattern {
	if or, ok := p.(*ast.OrPattern); ok {
		var rows [][]ast.Pattern
		for _, alt := range or.Alts {
			rows = append(rows, []ast.Pattern{alt})
		}
		return rows
	}
	return [][]ast.Pattern{{p}}
}

// npKind classifies a single normalized pattern position.
type npKind int

const (
	npWild npKind = iota
	npCtor
)

type normPattern struct {
	kind npKind
	name string
	args []ast.Pattern
}

// normalize reduces one AST pattern to a wildcard-or-constructor shape.
// Range and nested or-patterns are approximated as opaque constructors
// that only the same pattern node matches: this under-specializes (never
// over-claims coverage), which is the safe direction for a diagnostic
// that must not miss a real non-exhaustiveness.
func normalize(p ast.Pattern) normPattern {
	switch pp := p.(type) {
	case *ast.WildcardPattern:
		return normPattern{kind: npWild}
	case *ast.IdentPattern:
		return normPattern{kind: npWild}
	case *ast.RestPattern:
		return normPattern{kind: npWild}
	case *ast.RangePattern, *ast.OrPattern:
		return normPattern{kind: npCtor, name: fmt.Sprintf("#opaque:%p", pp)}
	case *ast.TypedPattern:
		return normalize(pp.Inner)
	case *ast.GuardedPattern:
		return normalize(pp.Inner)
	case *ast.LiteralPattern:
		return normPattern{kind: npCtor, name: literalCtorName(pp)}
	case *ast.ConstructorPattern:
		return normPattern{kind: npCtor, name: pp.Name, args: pp.Args}
	case *ast.TuplePattern:
		elems := make([]ast.Pattern, len(pp.Elems))
		copy(elems, pp.Elems)
		return normPattern{kind: npCtor, name: "#tuple", args: elems}
	case *ast.RecordPattern:
		args := make([]ast.Pattern, len(pp.Fields))
		for i, f := range pp.Fields {
			args[i] = f.Pattern
		}
		return normPattern{kind: npCtor, name: "#record:" + pp.TypeName, args: args}
	default:
		return normPattern{kind: npWild}
	}
}

func literalCtorName(p *ast.LiteralPattern) string {
	switch p.Kind {
	case ast.LitPatternBool:
		if p.Bool {
			return "true"
		}
		return "false"
	case ast.LitPatternInt:
		return fmt.Sprintf("int:%d", p.Int)
	case ast.LitPatternFloat:
		return fmt.Sprintf("float:%v", p.Float)
	case ast.LitPatternString:
		return fmt.Sprintf("string:%q", p.Str)
	case ast.LitPatternChar:
		return fmt.Sprintf("char:%q", p.Char)
	default:
		return "?"
	}
}

// checkExhaustive reports whether matrix covers every value of colTypes,
// and if not, a human-readable witness for one uncovered shape.
func checkExhaustive(matrix [][]ast.Pattern, colTypes []types.Type, resolver Resolver) (bool, []string) {
	if len(colTypes) == 0 {
		return len(matrix) > 0, nil
	}

	ctors, finite := resolver.Constructors(colTypes[0])
	if !finite {
		hasWild := false
		for _, row := range matrix {
			if normalize(row[0]).kind == npWild {
				hasWild = true
				break
			}
		}
		if !hasWild {
			return false, append([]string{"_"}, placeholders(colTypes[1:])...)
		}
		def := specializeDefault(matrix)
		ok, witness := checkExhaustive(def, colTypes[1:], resolver)
		if ok {
			return true, nil
		}
		return false, append([]string{"_"}, witness...)
	}

	var missing []string
	allOK := true
	for _, c := range ctors {
		spec := specializeCtor(matrix, c)
		newColTypes := append(append([]types.Type{}, c.Fields...), colTypes[1:]...)
		ok, witness := checkExhaustive(spec, newColTypes, resolver)
		if !ok {
			allOK = false
			missing = append(missing, describeCtor(c, witness))
		}
	}
	if allOK {
		return true, nil
	}
	return false, missing
}

func placeholders(colTypes []types.Type) []string {
	out := make([]string, len(colTypes))
	for i := range colTypes {
		out[i] = "_"
	}
	return out
}

func describeCtor(c Ctor, witness []string) string {
	if len(c.Fields) == 0 {
		return c.Name
	}
	fieldWitness := witness
	if len(fieldWitness) > len(c.Fields) {
		fieldWitness = fieldWitness[:len(c.Fields)]
	}
	for len(fieldWitness) < len(c.Fields) {
		fieldWitness = append(fieldWitness, "_")
	}
	name := c.Name
	if strings.HasPrefix(name, "#tuple") {
		return "(" + strings.Join(fieldWitness, ", ") + ")"
	}
	return fmt.Sprintf("%s(%s)", strings.TrimPrefix(name, "#record:"), strings.Join(fieldWitness, ", "))
}

// specializeDefault keeps only the wildcard rows of an infinite-domain
// column, dropping that column.
func specializeDefault(matrix [][]ast.Pattern) [][]ast.Pattern {
	var out [][]ast.Pattern
	for _, row := range matrix {
		if normalize(row[0]).kind == npWild {
			out = append(out, row[1:])
		}
	}
	return out
}

// specializeCtor keeps rows whose head matches c (or is a wildcard,
// expanded to c's arity) and replaces column 0 with c's sub-columns.
func specializeCtor(matrix [][]ast.Pattern, c Ctor) [][]ast.Pattern {
	var out [][]ast.Pattern
	for _, row := range matrix {
		np := normalize(row[0])
		switch {
		case np.kind == npWild:
			newRow := make([]ast.Pattern, 0, len(c.Fields)+len(row)-1)
			for range c.Fields {
				newRow = append(newRow, wildcard)
			}
			newRow = append(newRow, row[1:]...)
			out = append(out, newRow)
		case np.kind == npCtor && np.name == c.Name:
			newRow := make([]ast.Pattern, 0, len(c.Fields)+len(row)-1)
			args := np.args
			for len(args) < len(c.Fields) {
				args = append(args, wildcard)
			}
			newRow = append(newRow, args[:len(c.Fields)]...)
			newRow = append(newRow, row[1:]...)
			out = append(out, newRow)
		}
	}
	return out
}

var wildcard ast.Pattern = &ast.WildcardPattern{}

// isUseful reports whether row can match a value not already matched by
// any row of prefix — the standard usefulness check that drives
// unreachable-pattern detection (Maranget's algorithm, specialized to
// Kira's finite constructor types).
func isUseful(prefix [][]ast.Pattern, row []ast.Pattern, colTypes []types.Type, resolver Resolver) bool {
	if len(colTypes) == 0 {
		return len(prefix) == 0
	}
	np := normalize(row[0])
	ctors, finite := resolver.Constructors(colTypes[0])

	if np.kind == npCtor {
		c, ok := findCtor(ctors, np.name)
		if !ok {
			c = Ctor{Name: np.name, Fields: typesFromArgsLen(len(np.args))}
		}
		args := np.args
		for len(args) < len(c.Fields) {
			args = append(args, wildcard)
		}
		newRow := append(append([]ast.Pattern{}, args[:len(c.Fields)]...), row[1:]...)
		newColTypes := append(append([]types.Type{}, c.Fields...), colTypes[1:]...)
		return isUseful(specializeCtor(prefix, c), newRow, newColTypes, resolver)
	}

	// Wildcard query.
	if !finite {
		return isUseful(specializeDefault(prefix), row[1:], colTypes[1:], resolver)
	}
	headNames := map[string]bool{}
	for _, r := range prefix {
		n := normalize(r[0])
		if n.kind == npCtor {
			headNames[n.name] = true
		}
	}
	complete := len(ctors) > 0
	for _, c := range ctors {
		if !headNames[c.Name] {
			complete = false
			break
		}
	}
	if !complete {
		return isUseful(specializeDefault(prefix), row[1:], colTypes[1:], resolver)
	}
	for _, c := range ctors {
		newRow := make([]ast.Pattern, 0, len(c.Fields)+len(row)-1)
		for range c.Fields {
			newRow = append(newRow, wildcard)
		}
		newRow = append(newRow, row[1:]...)
		newColTypes := append(append([]types.Type{}, c.Fields...), colTypes[1:]...)
		if isUseful(specializeCtor(prefix, c), newRow, newColTypes, resolver) {
			return true
		}
	}
	return false
}

func findCtor(ctors []Ctor, name string) (Ctor, bool) {
	for _, c := range ctors {
		if c.Name == name {
			return c, true
		}
	}
	return Ctor{}, false
}

func typesFromArgsLen(n int) []types.Type {
	out := make([]types.Type, n)
	for i := range out {
		out[i] = types.Error
	}
	return out
}
