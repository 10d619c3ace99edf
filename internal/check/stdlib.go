package check

import (
	"github.com/kira-lang/kira/internal/symtab"
	"github.com/kira-lang/kira/internal/types"
)

// stdFunc is one std.* builtin's checked signature, mirroring the runtime
// builtin internal/interp/stdlib.go registers under the same dotted name.
// Generic element/key/value positions use types.Error as a wildcard: Equal
// treats it as compatible with anything, which is the cheapest way to type
// a handful of container-shaped builtins in a checker that otherwise never
// unifies generics (every other generic reference requires an explicit
// type argument, see instantiateFuncSymbol).
type stdFunc struct {
	name   string
	params []types.Type
	ret    types.Type
	effect types.Effect
}

type stdModule struct {
	segment string
	funcs   []stdFunc
}

var (
	strT  = types.Primitive{Kind: types.String}
	boolT = types.Primitive{Kind: types.Bool}
	i64T  = types.Primitive{Kind: types.I64}
	i32T  = types.Primitive{Kind: types.I32}
	f64T  = types.Primitive{Kind: types.F64}
	charT = types.Primitive{Kind: types.Char}
	voidT = types.VoidType
	anyT  = types.Error // generic placeholder, see stdFunc doc comment
)

func strResult() types.Type  { return types.ResultT{Ok: strT, Err: strT} }
func voidResult() types.Type { return types.ResultT{Ok: voidT, Err: strT} }
func anyList() types.Type    { return types.List{Elem: anyT} }
func anyOption() types.Type  { return types.OptionT{Inner: anyT} }
func anyResult() types.Type  { return types.ResultT{Ok: anyT, Err: anyT} }

var stdModules = []stdModule{
	{"io", []stdFunc{
		{"print", []types.Type{strT}, voidT, types.IO},
		{"println", []types.Type{strT}, voidT, types.IO},
		{"eprintln", []types.Type{strT}, voidT, types.IO},
		{"read_line", nil, types.OptionT{Inner: strT}, types.IO},
	}},
	{"fs", []stdFunc{
		{"read_file", []types.Type{strT}, strResult(), types.IOResult},
		{"write_file", []types.Type{strT, strT}, voidResult(), types.IOResult},
		{"append_file", []types.Type{strT, strT}, voidResult(), types.IOResult},
		{"exists", []types.Type{strT}, boolT, types.IO},
		{"remove", []types.Type{strT}, voidResult(), types.IOResult},
		{"is_file", []types.Type{strT}, boolT, types.IO},
		{"is_dir", []types.Type{strT}, boolT, types.IO},
		{"create_dir", []types.Type{strT}, voidResult(), types.IOResult},
		{"read_dir", []types.Type{strT}, types.ResultT{Ok: types.List{Elem: strT}, Err: strT}, types.IOResult},
	}},
	{"string", []stdFunc{
		{"length", []types.Type{strT}, i64T, types.Pure},
		{"substring", []types.Type{strT, i64T, i64T}, strT, types.Pure},
		{"parse_int", []types.Type{strT}, types.OptionT{Inner: i64T}, types.Pure},
		{"parse_float", []types.Type{strT}, types.OptionT{Inner: f64T}, types.Pure},
		{"starts_with", []types.Type{strT, strT}, boolT, types.Pure},
		{"ends_with", []types.Type{strT, strT}, boolT, types.Pure},
		{"contains", []types.Type{strT, strT}, boolT, types.Pure},
		{"index_of", []types.Type{strT, strT}, types.OptionT{Inner: i64T}, types.Pure},
		{"chars", []types.Type{strT}, types.List{Elem: charT}, types.Pure},
		{"to_upper", []types.Type{strT}, strT, types.Pure},
		{"to_lower", []types.Type{strT}, strT, types.Pure},
		{"trim", []types.Type{strT}, strT, types.Pure},
		{"split", []types.Type{strT, strT}, types.List{Elem: strT}, types.Pure},
		{"join", []types.Type{types.List{Elem: strT}, strT}, strT, types.Pure},
	}},
	{"char", []stdFunc{
		{"to_i32", []types.Type{charT}, i32T, types.Pure},
		{"from_i32", []types.Type{i32T}, charT, types.Pure},
		{"is_digit", []types.Type{charT}, boolT, types.Pure},
		{"is_alpha", []types.Type{charT}, boolT, types.Pure},
	}},
	{"list", []stdFunc{
		{"length", []types.Type{anyList()}, i64T, types.Pure},
		{"push", []types.Type{anyList(), anyT}, anyList(), types.Pure},
		{"reverse", []types.Type{anyList()}, anyList(), types.Pure},
		{"head", []types.Type{anyList()}, anyOption(), types.Pure},
		{"tail", []types.Type{anyList()}, types.OptionT{Inner: anyList()}, types.Pure},
		{"is_empty", []types.Type{anyList()}, boolT, types.Pure},
		{"concat", []types.Type{anyList(), anyList()}, anyList(), types.Pure},
		{"sort", []types.Type{anyList()}, anyList(), types.Pure},
	}},
	{"option", []stdFunc{
		{"is_some", []types.Type{anyOption()}, boolT, types.Pure},
		{"is_none", []types.Type{anyOption()}, boolT, types.Pure},
		{"unwrap_or", []types.Type{anyOption(), anyT}, anyT, types.Pure},
	}},
	{"result", []stdFunc{
		{"is_ok", []types.Type{anyResult()}, boolT, types.Pure},
		{"is_err", []types.Type{anyResult()}, boolT, types.Pure},
		{"unwrap_or", []types.Type{anyResult(), anyT}, anyT, types.Pure},
	}},
	{"map", []stdFunc{
		{"get", []types.Type{anyList(), anyT}, anyOption(), types.Pure},
		{"insert", []types.Type{anyList(), anyT, anyT}, anyList(), types.Pure},
	}},
}

// registerStdlib seeds the symbol table with a "std" module and one
// submodule per entry in stdModules, each populated with its pub function
// signatures. It is idempotent: a table that already has "std" registered
// (e.g. a second Checker built over a Session reused across files) is left
// untouched.
func registerStdlib(st *symtab.Table) {
	if _, ok := st.ResolveModule([]string{"std"}); ok {
		return
	}
	prev := st.Current()
	defer st.SetCurrent(prev)

	st.SetCurrent(0)
	stdScope := st.EnterScope(symtab.ModuleScope)
	st.RegisterModule([]string{"std"}, stdScope)
	st.DefineIn(0, symtab.Symbol{Name: "std", Kind: symtab.ModuleSymbol, Public: true, ModulePath: []string{"std"}})

	for _, mod := range stdModules {
		st.SetCurrent(0)
		modScope := st.EnterScope(symtab.ModuleScope)
		path := []string{"std", mod.segment}
		st.RegisterModule(path, modScope)
		for _, fn := range mod.funcs {
			st.DefineIn(modScope, symtab.Symbol{
				Name: fn.name, Kind: symtab.FuncSymbol, Public: true,
				ParamTypes: fn.params, ReturnType: fn.ret, Effect: fn.effect,
			})
		}
	}
}
