package dtree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kira-lang/kira/internal/ast"
	"github.com/kira-lang/kira/internal/types"
)

// boolResolver reports bool as a two-constructor finite type, the way the
// checker's real resolver reports user-defined enums; it stands in for that
// resolver so these tests don't need a full symbol table.
type boolResolver struct{}

func (boolResolver) Constructors(t types.Type) ([]Ctor, bool) {
	if p, ok := t.(types.Primitive); ok && p.Kind == types.Bool {
		return []Ctor{{Name: "true"}, {Name: "false"}}, true
	}
	return nil, false
}

type optionResolver struct{}

func (optionResolver) Constructors(t types.Type) ([]Ctor, bool) {
	switch tt := t.(type) {
	case types.OptionT:
		return []Ctor{
			{Name: "Some", Fields: []types.Type{tt.Inner}},
			{Name: "None"},
		}, true
	case types.Primitive:
		if tt.Kind == types.I32 {
			return nil, false
		}
	}
	return nil, false
}

func litBool(v bool) ast.Pattern {
	return &ast.LiteralPattern{Kind: ast.LitPatternBool, Bool: v}
}

func wild() ast.Pattern { return &ast.WildcardPattern{} }

func TestCompileExhaustiveBoolMatch(t *testing.T) {
	arms := []Arm{
		{Pattern: litBool(true)},
		{Pattern: litBool(false)},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.True(t, v.Exhaustive)
	assert.Empty(t, v.Missing)
	assert.Empty(t, v.Unreachable)
}

func TestCompileNonExhaustiveBoolMatch(t *testing.T) {
	arms := []Arm{
		{Pattern: litBool(true)},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.False(t, v.Exhaustive)
	assert.NotEmpty(t, v.Missing)
}

func TestCompileWildcardMakesExhaustive(t *testing.T) {
	arms := []Arm{
		{Pattern: litBool(true)},
		{Pattern: wild()},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.True(t, v.Exhaustive)
}

func TestCompileDetectsUnreachableArm(t *testing.T) {
	arms := []Arm{
		{Pattern: wild()},
		{Pattern: litBool(true)},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.True(t, v.Exhaustive)
	assert.Equal(t, []int{1}, v.Unreachable)
}

func TestCompileGuardedArmNeverContributesCoverage(t *testing.T) {
	arms := []Arm{
		{Pattern: litBool(true), Guarded: true},
		{Pattern: litBool(true)},
		{Pattern: litBool(false)},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.True(t, v.Exhaustive)
	assert.Empty(t, v.Unreachable, "a guarded arm must not mark a later identical pattern unreachable")
}

func TestCompileOptionExhaustiveWithSomeAndNone(t *testing.T) {
	optT := types.OptionT{Inner: types.Primitive{Kind: types.I32}}
	arms := []Arm{
		{Pattern: &ast.ConstructorPattern{Name: "Some", Args: []ast.Pattern{wild()}}},
		{Pattern: &ast.ConstructorPattern{Name: "None"}},
	}
	v := Compile(arms, optT, optionResolver{})
	assert.True(t, v.Exhaustive)
}

func TestCompileOptionMissingNoneIsReported(t *testing.T) {
	optT := types.OptionT{Inner: types.Primitive{Kind: types.I32}}
	arms := []Arm{
		{Pattern: &ast.ConstructorPattern{Name: "Some", Args: []ast.Pattern{wild()}}},
	}
	v := Compile(arms, optT, optionResolver{})
	assert.False(t, v.Exhaustive)
	assert.Contains(t, v.Missing[0], "None")
}

func TestCompileOrPatternExpandsToMultipleRows(t *testing.T) {
	arms := []Arm{
		{Pattern: &ast.OrPattern{Alts: []ast.Pattern{litBool(true), litBool(false)}}},
	}
	v := Compile(arms, types.Primitive{Kind: types.Bool}, boolResolver{})
	assert.True(t, v.Exhaustive)
}
