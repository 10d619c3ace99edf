package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSectionsAndEntries(t *testing.T) {
	src := `
# a comment
[package]
name = "myapp"

[modules]
io = "./vendor/io"
fs = './vendor/fs'
`
	doc, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)

	pkg, ok := doc.Section("package")
	require.True(t, ok)
	name, ok := pkg.Get("name")
	require.True(t, ok)
	assert.Equal(t, "myapp", name)

	mods, ok := doc.Section("modules")
	require.True(t, ok)
	io, ok := mods.Get("io")
	require.True(t, ok)
	assert.Equal(t, "./vendor/io", io)
	fs, ok := mods.Get("fs")
	require.True(t, ok)
	assert.Equal(t, "./vendor/fs", fs)
}

func TestParseRejectsKeyOutsideSection(t *testing.T) {
	_, err := Parse(strings.NewReader(`name = "x"`))
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseRejectsUnterminatedSection(t *testing.T) {
	_, err := Parse(strings.NewReader("[package\nname = \"x\""))
	require.Error(t, err)
}

func TestParseRejectsUnquotedValue(t *testing.T) {
	_, err := Parse(strings.NewReader("[package]\nname = myapp"))
	require.Error(t, err)
}

func TestParseRejectsInvalidKey(t *testing.T) {
	_, err := Parse(strings.NewReader(`[package]
"bad key" = "x"`))
	require.Error(t, err)
}

func TestUnquoteAcceptsBothQuoteStyles(t *testing.T) {
	v, err := unquote(`"hello"`)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = unquote(`'hello'`)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestUnquoteRejectsBareValue(t *testing.T) {
	_, err := unquote("hello")
	assert.Error(t, err)
}

func TestSectionGetMissingKey(t *testing.T) {
	s := Section{Name: "package", Entries: []Entry{{Key: "name", Value: "x"}}}
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestDocSectionMissing(t *testing.T) {
	doc := Doc{}
	_, ok := doc.Section("nope")
	assert.False(t, ok)
}
