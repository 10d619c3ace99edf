package interp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(stdin string) (*Host, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	h := NewSandboxedHost(strings.NewReader(stdin), &out, &errBuf)
	h.Grant(CapIO)
	h.Grant(CapFS)
	return h, &out, &errBuf
}

func callBuiltin(t *testing.T, env *Env, name string, args ...Value) Value {
	t.Helper()
	v, ok := env.Get(name)
	require.True(t, ok, "builtin %q not registered", name)
	b, ok := v.(*BuiltinValue)
	require.True(t, ok)
	result, err := b.Fn(args)
	require.NoError(t, err)
	return result
}

func TestStdIOPrintlnWritesToHostStdout(t *testing.T) {
	host, out, _ := newTestHost("")
	it := New(host)
	callBuiltin(t, it.Globals, "std.io.println", &StringValue{Val: "hello"})
	assert.Equal(t, "hello\n", out.String())
}

func TestStdIOEprintlnWritesToHostStderr(t *testing.T) {
	host, _, errBuf := newTestHost("")
	it := New(host)
	callBuiltin(t, it.Globals, "std.io.eprintln", &StringValue{Val: "oops"})
	assert.Equal(t, "oops\n", errBuf.String())
}

func TestStdIOReadLineReturnsSomeThenNone(t *testing.T) {
	host, _, _ := newTestHost("first\n")
	it := New(host)
	v := callBuiltin(t, it.Globals, "std.io.read_line")
	vv, ok := v.(*VariantValue)
	require.True(t, ok)
	assert.Equal(t, "Some", vv.Ctor)
	assert.Equal(t, "first", vv.Fields[0].(*StringValue).Val)

	v = callBuiltin(t, it.Globals, "std.io.read_line")
	vv, ok = v.(*VariantValue)
	require.True(t, ok)
	assert.Equal(t, "None", vv.Ctor, "exhausted stdin must yield None rather than an error")
}

func TestBareNameAliasesResolveToSameBuiltin(t *testing.T) {
	it := New(nil)
	qualified, ok := it.Globals.Get("std.string.trim")
	require.True(t, ok)
	bare, ok := it.Globals.Get("trim")
	require.True(t, ok)
	assert.Same(t, qualified.(*BuiltinValue), bare.(*BuiltinValue))
}

func TestStdFsWriteReadRoundTrip(t *testing.T) {
	it := New(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	v := callBuiltin(t, it.Globals, "std.fs.write_file", &StringValue{Val: path}, &StringValue{Val: "payload"})
	assertOk(t, v)

	v = callBuiltin(t, it.Globals, "std.fs.read_file", &StringValue{Val: path})
	vv := assertOk(t, v)
	assert.Equal(t, "payload", vv.(*StringValue).Val)
}

func TestStdFsReadMissingFileReturnsErr(t *testing.T) {
	it := New(nil)
	v := callBuiltin(t, it.Globals, "std.fs.read_file", &StringValue{Val: filepath.Join(t.TempDir(), "missing.txt")})
	vv, ok := v.(*VariantValue)
	require.True(t, ok)
	assert.Equal(t, "Err", vv.Ctor)
}

func TestStdFsExistsAndRemove(t *testing.T) {
	it := New(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	exists := callBuiltin(t, it.Globals, "std.fs.exists", &StringValue{Val: path})
	assert.True(t, exists.(*BoolValue).Val)

	v := callBuiltin(t, it.Globals, "std.fs.remove", &StringValue{Val: path})
	assertOk(t, v)

	exists = callBuiltin(t, it.Globals, "std.fs.exists", &StringValue{Val: path})
	assert.False(t, exists.(*BoolValue).Val)
}

func TestStdFsIsFileIsDir(t *testing.T) {
	it := New(nil)
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, callBuiltin(t, it.Globals, "std.fs.is_file", &StringValue{Val: file}).(*BoolValue).Val)
	assert.False(t, callBuiltin(t, it.Globals, "std.fs.is_dir", &StringValue{Val: file}).(*BoolValue).Val)
	assert.True(t, callBuiltin(t, it.Globals, "std.fs.is_dir", &StringValue{Val: dir}).(*BoolValue).Val)
}

func TestStdStringLengthCountsRunesNotBytes(t *testing.T) {
	it := New(nil)
	v := callBuiltin(t, it.Globals, "std.string.length", &StringValue{Val: "héllo"})
	assert.Equal(t, int64(5), v.(*IntValue).Val.Int64())
}

func TestStdStringSubstring(t *testing.T) {
	it := New(nil)
	v := callBuiltin(t, it.Globals, "std.string.substring", &StringValue{Val: "abcdef"}, NewInt(1, "i64"), NewInt(4, "i64"))
	assert.Equal(t, "bcd", v.(*StringValue).Val)
}

func TestStdStringParseIntValidAndInvalid(t *testing.T) {
	it := New(nil)
	v := callBuiltin(t, it.Globals, "std.string.parse_int", &StringValue{Val: "42"})
	vv := v.(*VariantValue)
	assert.Equal(t, "Some", vv.Ctor)
	assert.Equal(t, int64(42), vv.Fields[0].(*IntValue).Val.Int64())

	v = callBuiltin(t, it.Globals, "std.string.parse_int", &StringValue{Val: "nope"})
	assert.Equal(t, "None", v.(*VariantValue).Ctor)
}

func TestStdStringCaseConversion(t *testing.T) {
	it := New(nil)
	up := callBuiltin(t, it.Globals, "std.string.to_upper", &StringValue{Val: "hello"})
	assert.Equal(t, "HELLO", up.(*StringValue).Val)

	low := callBuiltin(t, it.Globals, "std.string.to_lower", &StringValue{Val: "HELLO"})
	assert.Equal(t, "hello", low.(*StringValue).Val)
}

func TestStdStringSplitAndJoin(t *testing.T) {
	it := New(nil)
	parts := callBuiltin(t, it.Globals, "std.string.split", &StringValue{Val: "a,b,c"}, &StringValue{Val: ","})
	elems, err := listToSlice(parts)
	require.NoError(t, err)
	require.Len(t, elems, 3)

	joined := callBuiltin(t, it.Globals, "std.string.join", parts, &StringValue{Val: "-"})
	assert.Equal(t, "a-b-c", joined.(*StringValue).Val)
}

func TestStdCharConversions(t *testing.T) {
	it := New(nil)
	code := callBuiltin(t, it.Globals, "std.char.to_i32", &CharValue{Val: 'A'})
	assert.Equal(t, int64(65), code.(*IntValue).Val.Int64())

	ch := callBuiltin(t, it.Globals, "std.char.from_i32", NewInt(97, "i32"))
	assert.Equal(t, 'a', ch.(*CharValue).Val)

	assert.True(t, callBuiltin(t, it.Globals, "std.char.is_digit", &CharValue{Val: '5'}).(*BoolValue).Val)
	assert.False(t, callBuiltin(t, it.Globals, "std.char.is_digit", &CharValue{Val: 'x'}).(*BoolValue).Val)
}

// assertOk requires v to be an Ok(...) Result and returns its payload.
func assertOk(t *testing.T, v Value) Value {
	t.Helper()
	vv, ok := v.(*VariantValue)
	require.True(t, ok)
	require.Equal(t, "Ok", vv.Ctor)
	return vv.Fields[0]
}
